package room

import (
	"context"
	"log/slog"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/protocol"
	"github.com/mcoot/multitetris/internal/storage"
)

// BuildDashboard combines the live ranking with history lookups. A failed
// lookup is logged and its section left out.
func BuildDashboard(
	ctx context.Context,
	history storage.HistoryStore,
	ranking model.Ranking,
	cfg Config,
	logger *slog.Logger,
) protocol.DashboardPayload {
	payload := protocol.DashboardPayload{
		TopPlayers: ranking.TopPlayers,
		AllPlayers: ranking.AllPlayers,
	}
	if history == nil {
		return payload
	}

	top, err := history.GetTopPlayers(ctx, cfg.TopPlayersLimit)
	if err != nil {
		logger.Warn("dashboard top players unavailable", slog.String("error", err.Error()))
	} else {
		payload.TopPlayersAllTime = top
	}

	recent, err := history.GetRecentSessions(ctx, cfg.RecentSessionLimit)
	if err != nil {
		logger.Warn("dashboard recent sessions unavailable", slog.String("error", err.Error()))
	} else {
		payload.RecentSessions = recent
	}
	return payload
}
