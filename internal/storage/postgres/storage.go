package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Storage is a PostgreSQL implementation of the history store
type Storage struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Connect opens and verifies a connection pool for the given DSN
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Storage{
		conn:   conn,
		logger: logger.With(slog.String("component", "postgres")),
	}
	s.logger.Info("connected to postgres")
	return s, nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.conn.Close()
}

// Ping checks the database is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Migrate applies the embedded schema files in name order
func (s *Storage) Migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := s.conn.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		s.logger.Info("applied migration", slog.String("name", entry.Name()))
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.HistoryStore = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, result model.PlayerResult) (model.SavePlayerResult, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return model.SavePlayerResult{}, fmt.Errorf("saving player: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing model.PlayerStats
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, high_score, total_games, total_lines, highest_level, first_played, last_played
		FROM players WHERE id = $1
		FOR UPDATE
	`, string(result.ID)).Scan(
		&existing.ID, &existing.Name, &existing.HighScore, &existing.TotalGames,
		&existing.TotalLines, &existing.HighestLevel, &existing.FirstPlayed, &existing.LastPlayed,
	)

	var out model.SavePlayerResult
	switch {
	case errors.Is(err, sql.ErrNoRows):
		stats := storage.NewPlayerStats(result)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO players (id, name, high_score, total_games, total_lines, highest_level, first_played, last_played)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, string(stats.ID), stats.Name, stats.HighScore, stats.TotalGames,
			stats.TotalLines, stats.HighestLevel, stats.FirstPlayed, stats.LastPlayed)
		out = model.SavePlayerResult{Created: true, NewHighScore: stats.HighScore}

	case err != nil:
		return model.SavePlayerResult{}, fmt.Errorf("loading player: %w", err)

	default:
		stats := storage.MergePlayer(existing, result)
		_, err = tx.ExecContext(ctx, `
			UPDATE players SET
				high_score = $2,
				total_games = $3,
				total_lines = $4,
				highest_level = $5,
				last_played = $6
			WHERE id = $1
		`, string(stats.ID), stats.HighScore, stats.TotalGames,
			stats.TotalLines, stats.HighestLevel, stats.LastPlayed)
		out = model.SavePlayerResult{Updated: true, NewHighScore: stats.HighScore}
	}
	if err != nil {
		return model.SavePlayerResult{}, fmt.Errorf("saving player: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.SavePlayerResult{}, fmt.Errorf("committing player: %w", err)
	}
	return out, nil
}

func (s *Storage) SaveGameSession(ctx context.Context, session model.SessionResult) (int64, error) {
	gs := storage.NewGameSession(0, session)

	var id int64
	err := s.conn.QueryRowContext(ctx, `
		INSERT INTO game_sessions (player_id, player_name, score, level, lines, duration, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, string(gs.PlayerID), gs.PlayerName, gs.Score, gs.Level, gs.Lines,
		gs.Duration, gs.StartedAt, gs.EndedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("saving game session: %w", err)
	}
	return id, nil
}

func (s *Storage) GetTopPlayers(ctx context.Context, limit int) ([]model.PlayerStats, error) {
	limit = storage.NormalizeLimit(limit, storage.DefaultTopPlayersLimit)

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, high_score, total_games, total_lines, highest_level, first_played, last_played
		FROM players
		ORDER BY high_score DESC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top players: %w", err)
	}
	defer rows.Close()

	players := []model.PlayerStats{}
	for rows.Next() {
		var p model.PlayerStats
		if err := rows.Scan(&p.ID, &p.Name, &p.HighScore, &p.TotalGames,
			&p.TotalLines, &p.HighestLevel, &p.FirstPlayed, &p.LastPlayed); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Storage) GetRecentSessions(ctx context.Context, limit int) ([]model.GameSession, error) {
	limit = storage.NormalizeLimit(limit, storage.DefaultRecentSessionsLimit)

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, player_id, player_name, score, level, lines, duration, started_at, ended_at
		FROM game_sessions
		ORDER BY ended_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.GameSession{}
	for rows.Next() {
		var gs model.GameSession
		if err := rows.Scan(&gs.ID, &gs.PlayerID, &gs.PlayerName, &gs.Score, &gs.Level,
			&gs.Lines, &gs.Duration, &gs.StartedAt, &gs.EndedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, gs)
	}
	return sessions, rows.Err()
}

func (s *Storage) GetPlayerStats(ctx context.Context, id model.PlayerID) (*model.PlayerStats, error) {
	var p model.PlayerStats
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, name, high_score, total_games, total_lines, highest_level, first_played, last_played
		FROM players WHERE id = $1
	`, string(id)).Scan(&p.ID, &p.Name, &p.HighScore, &p.TotalGames,
		&p.TotalLines, &p.HighestLevel, &p.FirstPlayed, &p.LastPlayed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return &p, nil
}
