package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/storage"
)

// maxTxRetries bounds optimistic-lock retries on contended player updates
const maxTxRetries = 5

// Storage is a Redis-backed implementation of the history store
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.HistoryStore = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, result model.PlayerResult) (model.SavePlayerResult, error) {
	key := playerKey(result.ID)
	var out model.SavePlayerResult

	txf := func(tx *redis.Tx) error {
		stats, created, err := s.loadOrCreate(ctx, tx, key, result)
		if err != nil {
			return err
		}

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, highScoreIndexKey(), redis.Z{
				Score:  float64(stats.HighScore),
				Member: string(stats.ID),
			})
			return nil
		})
		if err != nil {
			return err
		}

		out = model.SavePlayerResult{
			Created:      created,
			Updated:      !created,
			NewHighScore: stats.HighScore,
		}
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return model.SavePlayerResult{}, err
	}
	return model.SavePlayerResult{}, fmt.Errorf("save player %s: too much contention", result.ID)
}

// loadOrCreate reads the watched aggregate and folds the result into it
func (s *Storage) loadOrCreate(ctx context.Context, tx *redis.Tx, key string, result model.PlayerResult) (model.PlayerStats, bool, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return storage.NewPlayerStats(result), true, nil
	}
	if err != nil {
		return model.PlayerStats{}, false, err
	}

	var existing model.PlayerStats
	if err := json.Unmarshal(data, &existing); err != nil {
		return model.PlayerStats{}, false, err
	}
	return storage.MergePlayer(existing, result), false, nil
}

func (s *Storage) GetPlayerStats(ctx context.Context, id model.PlayerID) (*model.PlayerStats, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var stats model.PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Storage) GetTopPlayers(ctx context.Context, limit int) ([]model.PlayerStats, error) {
	limit = storage.NormalizeLimit(limit, storage.DefaultTopPlayersLimit)

	ids, err := s.client.ZRevRange(ctx, highScoreIndexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.PlayerStats{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]model.PlayerStats, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Index entry without a record
		}
		var stats model.PlayerStats
		if err := json.Unmarshal([]byte(str), &stats); err != nil {
			continue // Skip invalid data
		}
		players = append(players, stats)
	}
	return players, nil
}

// Session operations

func (s *Storage) SaveGameSession(ctx context.Context, session model.SessionResult) (int64, error) {
	id, err := s.client.Incr(ctx, sessionSeqKey()).Result()
	if err != nil {
		return 0, err
	}

	data, err := json.Marshal(storage.NewGameSession(id, session))
	if err != nil {
		return 0, err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(id), data, s.cfg.SessionTTL)
	pipe.ZAdd(ctx, sessionsByEndIndexKey(), redis.Z{
		Score:  float64(session.EndTime.UnixMilli()),
		Member: strconv.FormatInt(id, 10),
	})
	if s.cfg.MaxSessions > 0 {
		// Keep only the newest MaxSessions entries in the index
		pipe.ZRemRangeByRank(ctx, sessionsByEndIndexKey(), 0, -s.cfg.MaxSessions-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Storage) GetRecentSessions(ctx context.Context, limit int) ([]model.GameSession, error) {
	limit = storage.NormalizeLimit(limit, storage.DefaultRecentSessionsLimit)

	ids, err := s.client.ZRevRange(ctx, sessionsByEndIndexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.GameSession{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, sessionKey(id))
	}
	if len(keys) == 0 {
		return []model.GameSession{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]model.GameSession, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Session may have expired
		}
		var gs model.GameSession
		if err := json.Unmarshal([]byte(str), &gs); err != nil {
			continue // Skip invalid data
		}
		sessions = append(sessions, gs)
	}
	return sessions, nil
}
