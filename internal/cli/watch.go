package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/protocol"
	tetrisclient "github.com/mcoot/multitetris/internal/services/client"
)

func newWatchCmd() *cobra.Command {
	var room string
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream a room's live ranking",
		Long: `Connect to the room's websocket without joining and print every
ranking update the server broadcasts.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchRoom(ctx, cmd, room, count)
		},
	}

	cmd.Flags().StringVarP(&room, "room", "r", "", "Room code (default room if empty)")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Exit after this many updates (0 = until interrupted)")

	return cmd
}

func watchRoom(ctx context.Context, cmd *cobra.Command, room string, count int) error {
	if room == "" {
		room = string(model.DefaultRoom)
	}
	logger := cfg.Logger().With(slog.String("component", "watch"))

	conn, err := tetrisclient.Dial(ctx, cfg.ServerURL, room)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	out := NewOutput(cfg.Output, cmd.OutOrStdout())
	seen := 0
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		env, err := protocol.Decode(data)
		if err != nil {
			logger.Warn("ignoring malformed message", slog.String("error", err.Error()))
			continue
		}
		if env.Type != protocol.TypeGameUpdate {
			logger.Debug("skipping message", slog.String("type", string(env.Type)))
			continue
		}
		ranking, err := protocol.DecodePayload[protocol.GameUpdatePayload](env)
		if err != nil {
			logger.Warn("ignoring malformed ranking", slog.String("error", err.Error()))
			continue
		}

		out.Print(RankingUpdate{
			Room:       room,
			ReceivedAt: time.Now(),
			TopPlayers: ranking.TopPlayers,
			AllPlayers: ranking.AllPlayers,
		})
		seen++
		if count > 0 && seen >= count {
			return nil
		}
	}
}
