package redis

import (
	"fmt"

	"github.com/fritkotgp/raceapi/internal/model"
)

// Key prefix for all race data
const keyPrefix = "fritkotgp"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, model.NormalizeEmail(email))
}

func teamKey(id model.TeamID) string {
	return fmt.Sprintf("%s:team:%s", keyPrefix, id)
}

// teamsIndexKey returns the Redis key for the SET of all team ids
func teamsIndexKey() string {
	return fmt.Sprintf("%s:idx:teams", keyPrefix)
}

func trackKey(id model.TrackID) string {
	return fmt.Sprintf("%s:track:%s", keyPrefix, id)
}

// tracksIndexKey returns the Redis key for the SET of all track ids
func tracksIndexKey() string {
	return fmt.Sprintf("%s:idx:tracks", keyPrefix)
}

// resultKeyPrefix is concatenated with a result id inside Lua scripts
func resultKeyPrefix() string {
	return fmt.Sprintf("%s:result:", keyPrefix)
}

// resultKey returns the Redis key for a RaceResult payload
func resultKey(id model.ResultID) string {
	return resultKeyPrefix() + string(id)
}

// resultIndexKey returns the HASH {id, lap} guarding the (user, team, track) uniqueness
func resultIndexKey(key model.ResultKey) string {
	return fmt.Sprintf("%s:idx:result:%s:%s:%s", keyPrefix, key.UserID, key.TeamID, key.TrackID)
}

// latestIndexKey returns the ZSET of a user's result ids scored by negated update time
func latestIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:user_results_latest:%s", keyPrefix, userID)
}

// fastestIndexKey returns the ZSET of a user's result ids scored by lap time
func fastestIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:user_results_fastest:%s", keyPrefix, userID)
}
