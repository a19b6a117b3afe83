package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/protocol"
	"github.com/mcoot/multitetris/internal/services/engine"
)

// Outbound writes encoded messages to the server
type Outbound interface {
	Write(ctx context.Context, data []byte) error
}

// Config holds headless client settings
type Config struct {
	Name string
	// GravityEnabled is the preference offered when joining; only the first
	// player's preference is used by the room
	GravityEnabled *bool
}

// Client plays one engine against a server. It turns engine events into
// protocol messages and applies server messages to the engine. A Client is
// owned by one goroutine, like its engine.
type Client struct {
	cfg    Config
	engine *engine.Engine
	out    Outbound
	logger *slog.Logger

	playerID      model.PlayerID
	joined        bool
	isFirstPlayer bool
	ranking       model.Ranking
	lastError     string
}

// New creates a client around a stopped engine
func New(cfg Config, e *engine.Engine, out Outbound, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		engine: e,
		out:    out,
		logger: logger.With(slog.String("component", "client"), slog.String("name", cfg.Name)),
	}
}

// Engine returns the simulation driven by the client
func (c *Client) Engine() *engine.Engine {
	return c.engine
}

// PlayerID returns the id assigned by the server, empty before joining
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// Joined returns true once the server acknowledged the join
func (c *Client) Joined() bool {
	return c.joined
}

// IsFirstPlayer returns true while this client controls room settings
func (c *Client) IsFirstPlayer() bool {
	return c.isFirstPlayer
}

// Ranking returns the last ranking received
func (c *Client) Ranking() model.Ranking {
	return c.ranking
}

// LastError returns the last error message reported by the server
func (c *Client) LastError() string {
	return c.lastError
}

// Join asks the server for a session
func (c *Client) Join(ctx context.Context) error {
	return c.send(ctx, protocol.TypeJoinGame, protocol.JoinGamePayload{
		Name:           c.cfg.Name,
		GravityEnabled: c.cfg.GravityEnabled,
	})
}

// Restart starts a new game locally and tells the server
func (c *Client) Restart(ctx context.Context) error {
	if !c.joined {
		return model.ErrNotJoined
	}
	if err := c.send(ctx, protocol.TypeRestartGame, nil); err != nil {
		return err
	}
	c.engine.Restart()
	return c.Flush(ctx)
}

// SetGravity asks the server to change the room's gravity setting
func (c *Client) SetGravity(ctx context.Context, enabled bool) error {
	if !c.isFirstPlayer {
		return model.ErrNotFirstPlayer
	}
	return c.send(ctx, protocol.TypeUpdateGravity, protocol.GravityPayload{GravityEnabled: enabled})
}

// RequestDashboard asks the server for dashboard data
func (c *Client) RequestDashboard(ctx context.Context) error {
	return c.send(ctx, protocol.TypeGetDashboard, nil)
}

// HandleMessage applies one server message
func (c *Client) HandleMessage(data []byte) error {
	env, err := protocol.Decode(data)
	if err != nil {
		return err
	}

	switch env.Type {
	case protocol.TypeGameSettings:
		settings, err := protocol.DecodePayload[protocol.GameSettingsPayload](env)
		if err != nil {
			return err
		}
		c.engine.SetGravityEnabled(settings.GravityEnabled)

	case protocol.TypeGameJoined:
		joined, err := protocol.DecodePayload[protocol.GameJoinedPayload](env)
		if err != nil {
			return err
		}
		c.playerID = joined.PlayerID
		c.isFirstPlayer = joined.IsFirstPlayer
		c.joined = true
		c.engine.SetGravityEnabled(joined.GravityEnabled)
		c.engine.Start()
		c.logger.Info("joined game",
			slog.String("player_id", string(joined.PlayerID)),
			slog.Bool("first_player", joined.IsFirstPlayer),
			slog.Bool("gravity", joined.GravityEnabled))

	case protocol.TypeGarbageAttack:
		attack, err := protocol.DecodePayload[protocol.GarbageAttackPayload](env)
		if err != nil {
			return err
		}
		c.engine.AddIncomingGarbage(attack.Amount)
		c.logger.Debug("garbage received",
			slog.Int("amount", attack.Amount),
			slog.String("from", attack.FromPlayer))

	case protocol.TypeGravityUpdate:
		update, err := protocol.DecodePayload[protocol.GravityPayload](env)
		if err != nil {
			return err
		}
		c.engine.SetGravityEnabled(update.GravityEnabled)

	case protocol.TypeBecomeFirstPlayer:
		c.isFirstPlayer = true
		c.logger.Info("became first player")

	case protocol.TypeGameUpdate:
		ranking, err := protocol.DecodePayload[protocol.GameUpdatePayload](env)
		if err != nil {
			return err
		}
		c.ranking = ranking

	case protocol.TypeDashboardData:
		// only used by watchers

	case protocol.TypeError:
		payload, err := protocol.DecodePayload[protocol.ErrorPayload](env)
		if err != nil {
			return err
		}
		c.lastError = payload.Message
		c.logger.Warn("server reported error", slog.String("message", payload.Message))

	default:
		return fmt.Errorf("%w: %s", model.ErrUnknownMessage, env.Type)
	}
	return nil
}

// Flush drains engine events and sends the matching messages. Several
// state changes in one flush produce a single gameState push.
func (c *Client) Flush(ctx context.Context) error {
	if !c.joined {
		c.engine.Events()
		return nil
	}

	dirty := false
	for _, ev := range c.engine.Events() {
		switch ev.Type {
		case model.EventStateChanged, model.EventScoreChanged:
			dirty = true

		case model.EventGarbageAttack:
			payload, _ := ev.Payload.(model.GarbageAttackPayload)
			if err := c.send(ctx, protocol.TypeSendGarbage, protocol.SendGarbagePayload{Amount: payload.Amount}); err != nil {
				return err
			}

		case model.EventGameOver:
			if err := c.send(ctx, protocol.TypeGameOver, c.engine.State()); err != nil {
				return err
			}
			c.logger.Info("game over",
				slog.Int("score", c.engine.State().Score),
				slog.Int("lines", c.engine.State().Lines))
			dirty = false
		}
	}

	if dirty {
		return c.send(ctx, protocol.TypeGameState, c.engine.State())
	}
	return nil
}

func (c *Client) send(ctx context.Context, t protocol.MessageType, payload any) error {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	if err := c.out.Write(ctx, data); err != nil {
		return fmt.Errorf("send %s: %w", t, err)
	}
	return nil
}

