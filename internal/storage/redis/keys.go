package redis

import (
	"fmt"

	"github.com/mcoot/scoreboard/internal/model"
)

// Key prefix for all scoreboard data
const keyPrefix = "scoreboard"

// userKey returns the Redis key for a User document
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// scoreKey returns the Redis key for a Score document. The owner is part of
// the key, so a lookup with the wrong owner simply finds nothing.
func scoreKey(ownerID model.UserID, id model.ScoreID) string {
	return fmt.Sprintf("%s:score:%s:%s", keyPrefix, ownerID, id)
}

// scoresForOwnerIndexKey returns the Redis key for the ZSET of an owner's
// score ids, ranked by insertion sequence
func scoresForOwnerIndexKey(ownerID model.UserID) string {
	return fmt.Sprintf("%s:idx:scores_for_owner:%s", keyPrefix, ownerID)
}

// scoreSequenceKey returns the Redis key of the global insertion counter
func scoreSequenceKey() string {
	return fmt.Sprintf("%s:seq:scores", keyPrefix)
}
