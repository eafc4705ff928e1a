package catalog

import "github.com/fritkotgp/raceapi/internal/model"

func team(name, description string) model.Team {
	return model.Team{ID: model.TeamIDFromName(name), Name: name, Description: description}
}

func track(name, city string, lengthKm float64) model.Track {
	return model.Track{ID: model.TrackIDFromName(name), Name: name, City: city, LengthKm: lengthKm}
}

// DefaultTeams returns the teams seeded into an empty store
func DefaultTeams() []model.Team {
	return []model.Team{
		team("Frietkot Racing", "Double-fried and never soggy in the corners"),
		team("Bicky Burger Motorsport", "Sauce on the side, throttle to the floor"),
		team("Stoofvlees Speed", "Slow-cooked setup, fast on the straights"),
		team("Samurai Saus Squadron", "Spicy on the brakes"),
		team("Mitraillette Motors", "Everything in one baguette"),
	}
}

// DefaultTracks returns the tracks seeded into an empty store
func DefaultTracks() []model.Track {
	return []model.Track{
		track("Spa-Francorchamps", "Stavelot", 7.004),
		track("Circuit Zolder", "Heusden-Zolder", 4.011),
		track("Zandvoort", "Zandvoort", 4.259),
		track("Monaco", "Monte Carlo", 3.337),
		track("Monza", "Monza", 5.793),
		track("Silverstone", "Silverstone", 5.891),
	}
}
