package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/multitetris/internal/dependencies/clock"
	"github.com/mcoot/multitetris/internal/services/engine"
)

// DefaultTickInterval is how often the runner advances the engine
const DefaultTickInterval = 16 * time.Millisecond

// Controller makes the player's moves once per tick
type Controller func(e *engine.Engine)

// RunConfig holds runner settings
type RunConfig struct {
	TickInterval   time.Duration
	StopOnGameOver bool
}

// Run joins the game and plays until ctx ends, the connection fails, or the
// game ends with StopOnGameOver set. The connection is not closed.
func (c *Client) Run(ctx context.Context, conn Conn, clk clock.Clock, cfg RunConfig, control Controller) error {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	incoming := make(chan []byte, 64)
	readErr := make(chan error, 1)
	go func() {
		for {
			data, err := conn.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case incoming <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := c.Join(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()
	last := clk.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-readErr:
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err

		case data := <-incoming:
			if err := c.HandleMessage(data); err != nil {
				c.logger.Warn("ignoring server message", slog.String("error", err.Error()))
			}
			if err := c.Flush(ctx); err != nil {
				return err
			}

		case <-ticker.C:
			if !c.joined {
				continue
			}
			wasRunning := c.engine.Running()
			if control != nil && wasRunning {
				control(c.engine)
			}
			now := clk.Now()
			c.engine.Update(now.Sub(last))
			last = now
			if err := c.Flush(ctx); err != nil {
				return err
			}
			if cfg.StopOnGameOver && wasRunning && !c.engine.Running() {
				return nil
			}
		}
	}
}
