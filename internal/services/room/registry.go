package room

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mcoot/multitetris/internal/dependencies/clock"
	"github.com/mcoot/multitetris/internal/dependencies/random"
	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/protocol"
	"github.com/mcoot/multitetris/internal/storage"
)

// MaxNameLength is the longest display name kept, in runes
const MaxNameLength = 24

// Sender delivers an encoded message to a connection handle
type Sender interface {
	Send(conn model.ConnID, data []byte) error
}

// RoomState is the shared, mutable setting of one room
type RoomState struct {
	GravityEnabled bool
	FirstPlayer    model.ConnID // empty when no joined session holds the role
}

// Config holds registry behaviour settings
type Config struct {
	DefaultGravity     bool
	TopN               int
	PersistTimeout     time.Duration
	TopPlayersLimit    int
	RecentSessionLimit int
}

// DefaultConfig returns the standard room settings
func DefaultConfig() Config {
	return Config{
		DefaultGravity:     true,
		TopN:               model.DefaultTopN,
		PersistTimeout:     5 * time.Second,
		TopPlayersLimit:    storage.DefaultTopPlayersLimit,
		RecentSessionLimit: storage.DefaultRecentSessionsLimit,
	}
}

// Registry holds the sessions of one room. It is not safe for concurrent
// use; every call is made from the room's Loop.
type Registry struct {
	code    model.RoomCode
	cfg     Config
	state   RoomState
	sender  Sender
	history storage.HistoryStore
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	conns    []model.ConnID
	sessions map[model.ConnID]*model.PlayerSession
	seq      uint64

	// background persistence and dashboard lookups
	wg sync.WaitGroup
}

// NewRegistry creates an empty room. history may be nil to disable persistence.
func NewRegistry(
	code model.RoomCode,
	cfg Config,
	sender Sender,
	history storage.HistoryStore,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Registry {
	if cfg.TopN <= 0 {
		cfg.TopN = model.DefaultTopN
	}
	return &Registry{
		code:     code,
		cfg:      cfg,
		state:    RoomState{GravityEnabled: cfg.DefaultGravity},
		sender:   sender,
		history:  history,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "room"), slog.String("room", string(code))),
		sessions: make(map[model.ConnID]*model.PlayerSession),
	}
}

// Code returns the room code
func (r *Registry) Code() model.RoomCode {
	return r.code
}

// State returns a copy of the shared room settings
func (r *Registry) State() RoomState {
	return r.state
}

// ConnectionCount returns the number of open connections
func (r *Registry) ConnectionCount() int {
	return len(r.conns)
}

// SessionCount returns the number of joined sessions
func (r *Registry) SessionCount() int {
	return len(r.sessions)
}

// Session returns a copy of the session record for a connection
func (r *Registry) Session(conn model.ConnID) (model.PlayerSession, bool) {
	p, ok := r.sessions[conn]
	if !ok {
		return model.PlayerSession{}, false
	}
	cp := *p
	cp.Grid = p.Grid.Clone()
	return cp, true
}

// Ranking returns the live ranking of all joined sessions
func (r *Registry) Ranking() model.Ranking {
	return model.Rank(r.orderedSessions(), r.cfg.TopN)
}

// Wait blocks until background persistence and dashboard lookups finish
func (r *Registry) Wait() {
	r.wg.Wait()
}

// Connect registers a connection and tells it the current settings
func (r *Registry) Connect(conn model.ConnID) {
	if !r.hasConn(conn) {
		r.conns = append(r.conns, conn)
	}
	r.logger.Info("connection opened",
		slog.String("conn", string(conn)),
		slog.Int("connections", len(r.conns)),
	)
	r.send(conn, protocol.TypeGameSettings, protocol.GameSettingsPayload{
		GravityEnabled: r.state.GravityEnabled,
		IsFirstPlayer:  r.state.FirstPlayer == "",
	})
}

// Join creates a session for the connection
func (r *Registry) Join(conn model.ConnID, req protocol.JoinGamePayload) error {
	if _, ok := r.sessions[conn]; ok {
		return model.ErrAlreadyJoined
	}
	name, err := normalizeName(req.Name)
	if err != nil {
		return err
	}
	if !r.hasConn(conn) {
		r.conns = append(r.conns, conn)
	}

	now := r.clock.Now()
	session := model.NewPlayerSession(model.PlayerID(r.random.UUID()), name, conn, now)
	r.seq++
	session.SetSeq(r.seq)
	r.sessions[conn] = session

	isFirst := r.state.FirstPlayer == ""
	if isFirst {
		r.state.FirstPlayer = conn
		if req.GravityEnabled != nil {
			r.state.GravityEnabled = *req.GravityEnabled
		}
	}

	r.logger.Info("player joined",
		slog.String("player_id", string(session.ID)),
		slog.String("name", name),
		slog.Bool("first_player", isFirst),
	)

	r.send(conn, protocol.TypeGameJoined, protocol.GameJoinedPayload{
		PlayerID:       session.ID,
		PlayerName:     name,
		IsFirstPlayer:  isFirst,
		GravityEnabled: r.state.GravityEnabled,
	})
	r.broadcastRanking()
	return nil
}

// GameState merges a pushed snapshot into the session
func (r *Registry) GameState(conn model.ConnID, snap model.Snapshot) error {
	session, ok := r.sessions[conn]
	if !ok {
		return model.ErrNotJoined
	}
	session.Merge(snap)
	r.broadcastRanking()
	return nil
}

// GameOver merges the final snapshot, ends the session and records it
func (r *Registry) GameOver(conn model.ConnID, snap model.Snapshot) error {
	session, ok := r.sessions[conn]
	if !ok {
		return model.ErrNotJoined
	}
	session.Merge(snap)
	session.Status = model.StatusGameOver

	if session.Recorded {
		r.logger.Debug("repeated game over ignored", slog.String("player_id", string(session.ID)))
		r.broadcastRanking()
		return nil
	}
	session.Recorded = true

	r.logger.Info("player game over",
		slog.String("player_id", string(session.ID)),
		slog.Int("score", session.Score),
	)

	r.persist(session, r.clock.Now())
	r.broadcastRanking()
	return nil
}

// Restart resets the session for a new game
func (r *Registry) Restart(conn model.ConnID) error {
	session, ok := r.sessions[conn]
	if !ok {
		return model.ErrNotJoined
	}
	session.Reset(r.clock.Now())
	r.logger.Info("player restarted", slog.String("player_id", string(session.ID)))
	r.broadcastRanking()
	return nil
}

// SendGarbage relays an attack to every other playing session.
// Non-positive amounts are ignored.
func (r *Registry) SendGarbage(conn model.ConnID, amount int) error {
	sender, ok := r.sessions[conn]
	if !ok {
		return model.ErrNotJoined
	}
	if amount <= 0 {
		return nil
	}

	data, err := protocol.Encode(protocol.TypeGarbageAttack, protocol.GarbageAttackPayload{
		Amount:     amount,
		FromPlayer: sender.Name,
	})
	if err != nil {
		return err
	}

	targets := 0
	for _, target := range r.orderedSessions() {
		if target.Conn == conn || !target.IsPlaying() {
			continue
		}
		r.sendRaw(target.Conn, data)
		targets++
	}

	r.logger.Debug("garbage sent",
		slog.String("player_id", string(sender.ID)),
		slog.Int("amount", amount),
		slog.Int("targets", targets),
	)
	return nil
}

// UpdateGravity changes the shared gravity setting. Only the first player
// may change it.
func (r *Registry) UpdateGravity(conn model.ConnID, enabled bool) error {
	if conn != r.state.FirstPlayer {
		return model.ErrNotFirstPlayer
	}
	r.state.GravityEnabled = enabled
	r.logger.Info("gravity updated", slog.Bool("enabled", enabled))
	r.broadcast(protocol.TypeGravityUpdate, protocol.GravityPayload{GravityEnabled: enabled})
	return nil
}

// Dashboard sends the live ranking plus history to the connection. The
// history lookup runs in the background.
func (r *Registry) Dashboard(conn model.ConnID) {
	ranking := r.Ranking()
	if r.history == nil {
		r.send(conn, protocol.TypeDashboardData, BuildDashboard(context.Background(), nil, ranking, r.cfg, r.logger))
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.PersistTimeout)
		defer cancel()
		r.send(conn, protocol.TypeDashboardData, BuildDashboard(ctx, r.history, ranking, r.cfg, r.logger))
	}()
}

// Disconnect removes the connection and its session. A session still
// playing with points is recorded, and the first player role moves to the
// earliest-joined remaining session.
func (r *Registry) Disconnect(conn model.ConnID) {
	r.removeConn(conn)

	session, ok := r.sessions[conn]
	if !ok {
		if r.state.FirstPlayer == conn {
			r.state.FirstPlayer = ""
		}
		return
	}

	if session.IsPlaying() && session.Score > 0 && !session.Recorded {
		r.persist(session, r.clock.Now())
	}
	delete(r.sessions, conn)

	r.logger.Info("player disconnected",
		slog.String("player_id", string(session.ID)),
		slog.Int("score", session.Score),
	)

	if r.state.FirstPlayer == conn {
		r.handoffFirstPlayer()
	}
	r.broadcastRanking()
}

// HandleMessage decodes and dispatches one message from a connection.
// Returned errors have already been logged or reported to the client.
func (r *Registry) HandleMessage(conn model.ConnID, data []byte) error {
	env, err := protocol.Decode(data)
	if err != nil {
		r.reject(conn, err)
		return err
	}

	err = r.dispatch(conn, env)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFirstPlayer):
		r.logger.Warn("gravity update rejected",
			slog.String("conn", string(conn)),
			slog.String("error", err.Error()),
		)
	case errors.Is(err, model.ErrNotJoined):
		r.logger.Debug("message before join ignored",
			slog.String("conn", string(conn)),
			slog.String("type", string(env.Type)),
		)
	default:
		r.reject(conn, err)
	}
	return err
}

func (r *Registry) dispatch(conn model.ConnID, env protocol.Envelope) error {
	switch env.Type {
	case protocol.TypeJoinGame:
		req, err := protocol.DecodePayload[protocol.JoinGamePayload](env)
		if err != nil {
			return err
		}
		return r.Join(conn, req)

	case protocol.TypeGameState:
		snap, err := r.decodeSnapshot(conn, env)
		if err != nil {
			return err
		}
		return r.GameState(conn, snap)

	case protocol.TypeGameOver:
		snap, err := r.decodeSnapshot(conn, env)
		if err != nil {
			return err
		}
		return r.GameOver(conn, snap)

	case protocol.TypeRestartGame:
		return r.Restart(conn)

	case protocol.TypeSendGarbage:
		req, err := protocol.DecodePayload[protocol.SendGarbagePayload](env)
		if err != nil {
			return err
		}
		return r.SendGarbage(conn, req.Amount)

	case protocol.TypeUpdateGravity:
		req, err := protocol.DecodePayload[protocol.GravityPayload](env)
		if err != nil {
			return err
		}
		return r.UpdateGravity(conn, req.GravityEnabled)

	case protocol.TypeGetDashboard:
		r.Dashboard(conn)
		return nil

	default:
		return model.ErrUnknownMessage
	}
}

// decodeSnapshot decodes a pushed snapshot. An invalid grid is logged and
// left out so the remaining fields still apply.
func (r *Registry) decodeSnapshot(conn model.ConnID, env protocol.Envelope) (model.Snapshot, error) {
	snap, gridDropped, err := protocol.DecodeSnapshot(env)
	if err != nil {
		return snap, err
	}
	if gridDropped {
		r.logger.Warn("invalid grid ignored",
			slog.String("conn", string(conn)),
			slog.String("type", string(env.Type)),
		)
	}
	return snap, nil
}

// reject logs a bad message and reports it to the client
func (r *Registry) reject(conn model.ConnID, err error) {
	r.logger.Warn("message rejected",
		slog.String("conn", string(conn)),
		slog.String("error", err.Error()),
	)
	r.send(conn, protocol.TypeError, protocol.ErrorPayload{Message: err.Error()})
}

func (r *Registry) handoffFirstPlayer() {
	r.state.FirstPlayer = ""

	var next *model.PlayerSession
	for _, s := range r.orderedSessions() {
		if next == nil || s.JoinTime.Before(next.JoinTime) {
			next = s
		}
	}
	if next == nil {
		return
	}

	r.state.FirstPlayer = next.Conn
	r.logger.Info("first player handed off", slog.String("player_id", string(next.ID)))
	r.send(next.Conn, protocol.TypeBecomeFirstPlayer, protocol.BecomeFirstPlayerPayload{IsFirstPlayer: true})
}

// persist records a finished session in the background. Failures are
// logged only.
func (r *Registry) persist(session *model.PlayerSession, end time.Time) {
	if r.history == nil {
		return
	}

	player := model.PlayerResult{
		ID:       session.ID,
		Name:     session.Name,
		Score:    session.Score,
		Level:    session.Level,
		Lines:    session.Lines,
		PlayedAt: end,
	}
	record := model.SessionResult{
		PlayerID:   session.ID,
		PlayerName: session.Name,
		Score:      session.Score,
		Level:      session.Level,
		Lines:      session.Lines,
		StartTime:  session.SessionStart,
		EndTime:    end,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.PersistTimeout)
		defer cancel()

		res, err := r.history.SavePlayer(ctx, player)
		if err != nil {
			r.logger.Error("failed to save player",
				slog.String("player_id", string(player.ID)),
				slog.String("error", err.Error()),
			)
			return
		}
		sessionID, err := r.history.SaveGameSession(ctx, record)
		if err != nil {
			r.logger.Error("failed to save game session",
				slog.String("player_id", string(player.ID)),
				slog.String("error", err.Error()),
			)
			return
		}
		r.logger.Info("game session saved",
			slog.String("player_id", string(player.ID)),
			slog.Int64("session_id", sessionID),
			slog.Int("high_score", res.NewHighScore),
			slog.Bool("new_player", res.Created),
		)
	}()
}

func (r *Registry) broadcastRanking() {
	r.broadcast(protocol.TypeGameUpdate, r.Ranking())
}

func (r *Registry) broadcast(t protocol.MessageType, payload any) {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		r.logger.Error("failed to encode broadcast",
			slog.String("type", string(t)),
			slog.String("error", err.Error()),
		)
		return
	}
	for _, conn := range r.conns {
		r.sendRaw(conn, data)
	}
}

func (r *Registry) send(conn model.ConnID, t protocol.MessageType, payload any) {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		r.logger.Error("failed to encode message",
			slog.String("type", string(t)),
			slog.String("error", err.Error()),
		)
		return
	}
	r.sendRaw(conn, data)
}

func (r *Registry) sendRaw(conn model.ConnID, data []byte) {
	if err := r.sender.Send(conn, data); err != nil {
		r.logger.Debug("send failed",
			slog.String("conn", string(conn)),
			slog.String("error", err.Error()),
		)
	}
}

// orderedSessions returns sessions in join order
func (r *Registry) orderedSessions() []*model.PlayerSession {
	out := make([]*model.PlayerSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Seq() < out[j].Seq()
	})
	return out
}

func (r *Registry) hasConn(conn model.ConnID) bool {
	for _, c := range r.conns {
		if c == conn {
			return true
		}
	}
	return false
}

func (r *Registry) removeConn(conn model.ConnID) {
	for i, c := range r.conns {
		if c == conn {
			r.conns = append(r.conns[:i], r.conns[i+1:]...)
			return
		}
	}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.ErrInvalidName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name, nil
}
