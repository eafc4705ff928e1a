package model

import "github.com/google/uuid"

// catalogNamespace roots the name-derived ids of seeded reference data
var catalogNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://fritkotgp.be/catalog"))

// TeamID uniquely identifies a team
type TeamID string

// Team is read-only reference data
type Team struct {
	ID          TeamID
	Name        string
	Description string
}

// TrackID uniquely identifies a track
type TrackID string

// Track is read-only reference data
type Track struct {
	ID       TrackID
	Name     string
	City     string
	LengthKm float64
}

// TeamIDFromName derives the stable id of a seeded team
func TeamIDFromName(name string) TeamID {
	return TeamID(uuid.NewSHA1(catalogNamespace, []byte("team:"+name)).String())
}

// TrackIDFromName derives the stable id of a seeded track
func TrackIDFromName(name string) TrackID {
	return TrackID(uuid.NewSHA1(catalogNamespace, []byte("track:"+name)).String())
}
