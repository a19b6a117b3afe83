package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/multitetris/internal/dependencies/clock"
	"github.com/mcoot/multitetris/internal/dependencies/random"
	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/services/bot"
	tetrisclient "github.com/mcoot/multitetris/internal/services/client"
	"github.com/mcoot/multitetris/internal/services/engine"
)

const (
	botNameLength   = 4
	botNameAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// playOptions holds the flags of the play command
type playOptions struct {
	name         string
	room         string
	strategy     string
	duration     time.Duration
	moveInterval time.Duration
	gravity      *bool
}

func newPlayCmd() *cobra.Command {
	opts := playOptions{}
	var gravity bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join a room as a bot player",
		Long: `Join a room and play with a bot strategy until the game ends, the
duration elapses, or the command is interrupted.

Strategies: random, greedy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("gravity") {
				opts.gravity = &gravity
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := playGame(ctx, opts)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "Display name (random bot name if empty)")
	cmd.Flags().StringVarP(&opts.room, "room", "r", "", "Room code (default room if empty)")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", bot.StrategyGreedy, "Bot strategy: random, greedy")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 0, "Stop after this long (0 = until game over)")
	cmd.Flags().DurationVar(&opts.moveInterval, "move-interval", 250*time.Millisecond, "Time between bot placements")
	cmd.Flags().BoolVar(&gravity, "gravity", true, "Requested gravity setting if this player opens the room")

	return cmd
}

func playGame(ctx context.Context, opts playOptions) (PlayResult, error) {
	if opts.room == "" {
		opts.room = string(model.DefaultRoom)
	}
	logger := cfg.Logger()
	rnd := random.New()
	clk := clock.New()

	if opts.name == "" {
		opts.name = "bot-" + rnd.String(botNameLength, botNameAlphabet)
	}

	bots := bot.NewService(bot.DefaultStrategies(rnd), logger)
	strategy, err := bots.Strategy(opts.strategy)
	if err != nil {
		return PlayResult{}, err
	}

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	conn, err := tetrisclient.Dial(ctx, cfg.ServerURL, opts.room)
	if err != nil {
		return PlayResult{}, err
	}
	defer func() { _ = conn.Close() }()

	e := engine.New(engine.DefaultConfig(), rnd, logger)
	player := tetrisclient.New(tetrisclient.Config{
		Name:           opts.name,
		GravityEnabled: opts.gravity,
	}, e, conn, logger)

	control := throttle(clk, opts.moveInterval, func(e *engine.Engine) {
		bots.PlayPiece(e, strategy)
	})

	err = player.Run(ctx, conn, clk, tetrisclient.RunConfig{StopOnGameOver: true}, control)
	if err != nil {
		return PlayResult{}, err
	}

	snap := e.State()
	logger.Info("bot game finished",
		slog.String("player_id", string(player.PlayerID())),
		slog.Int("score", snap.Score),
	)
	return PlayResult{
		Room:     opts.room,
		PlayerID: string(player.PlayerID()),
		Name:     opts.name,
		Strategy: opts.strategy,
		Score:    snap.Score,
		Level:    snap.Level,
		Lines:    snap.Lines,
		Status:   string(snap.Status),
	}, nil
}

// throttle runs control at most once per interval
func throttle(clk clock.Clock, interval time.Duration, control tetrisclient.Controller) tetrisclient.Controller {
	var last time.Time
	return func(e *engine.Engine) {
		now := clk.Now()
		if !last.IsZero() && now.Sub(last) < interval {
			return
		}
		last = now
		control(e)
	}
}
