package redis

import (
	"fmt"

	"github.com/mcoot/multitetris/internal/model"
)

// Key prefix for all history data
const keyPrefix = "mtetris"

// playerKey returns the Redis key for a player aggregate
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// highScoreIndexKey returns the Redis key for the ZSET of player ids by best score
func highScoreIndexKey() string {
	return fmt.Sprintf("%s:idx:high_scores", keyPrefix)
}

// sessionKey returns the Redis key for a session log entry
func sessionKey(id int64) string {
	return fmt.Sprintf("%s:session:%d", keyPrefix, id)
}

// sessionsByEndIndexKey returns the Redis key for the ZSET of session ids by end time
func sessionsByEndIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions_by_end", keyPrefix)
}

// sessionSeqKey returns the Redis key of the session id counter
func sessionSeqKey() string {
	return fmt.Sprintf("%s:seq:session", keyPrefix)
}
