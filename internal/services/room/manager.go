package room

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/multitetris/internal/dependencies/clock"
	"github.com/mcoot/multitetris/internal/dependencies/random"
	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/storage"
)

// Manager owns the loops of all rooms
type Manager struct {
	cfg     Config
	sender  Sender
	history storage.HistoryStore
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.RWMutex
	rooms map[model.RoomCode]*Loop

	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// NewManager creates a manager with no rooms
func NewManager(
	cfg Config,
	sender Sender,
	history storage.HistoryStore,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:     cfg,
		sender:  sender,
		history: history,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "room-manager")),
		rooms:   make(map[model.RoomCode]*Loop),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// GetOrCreate returns the loop for a room, starting one if needed.
// An empty code selects the default room.
func (m *Manager) GetOrCreate(code model.RoomCode) *Loop {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateLocked(code)
}

// Connect adds a connection to a room, creating the room if needed. The
// Connect op is queued before the manager lock is released, so a concurrent
// CleanupEmptyRooms counts the connection.
func (m *Manager) Connect(code model.RoomCode, conn model.ConnID) (*Loop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loop := m.getOrCreateLocked(code)
	if err := loop.Submit(func(r *Registry) { r.Connect(conn) }); err != nil {
		return nil, err
	}
	return loop, nil
}

func (m *Manager) getOrCreateLocked(code model.RoomCode) *Loop {
	if code == "" {
		code = model.DefaultRoom
	}
	if loop, ok := m.rooms[code]; ok {
		return loop
	}

	registry := NewRegistry(code, m.cfg, m.sender, m.history, m.clock, m.random, m.logger)
	loop := NewLoop(registry, m.logger)
	m.rooms[code] = loop

	m.running.Add(1)
	go func() {
		defer m.running.Done()
		loop.Run(m.ctx)
	}()

	m.logger.Info("room created", slog.String("room", string(code)))
	return loop
}

// Get returns the loop for an existing room
func (m *Manager) Get(code model.RoomCode) (*Loop, bool) {
	if code == "" {
		code = model.DefaultRoom
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	loop, ok := m.rooms[code]
	return loop, ok
}

// Codes returns the codes of all open rooms, sorted
func (m *Manager) Codes() []model.RoomCode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	codes := make([]model.RoomCode, 0, len(m.rooms))
	for code := range m.rooms {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// CleanupEmptyRooms stops rooms other than the default room that have no
// connections. Returns the number removed.
func (m *Manager) CleanupEmptyRooms(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for code, loop := range m.rooms {
		if code == model.DefaultRoom {
			continue
		}
		var count int
		if err := loop.Do(ctx, func(r *Registry) { count = r.ConnectionCount() }); err != nil {
			continue
		}
		if count == 0 {
			loop.Close()
			delete(m.rooms, code)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("empty rooms cleaned up", slog.Int("removed", removed))
	}
	return removed
}

// Shutdown stops every room loop once its queued ops have run, then waits
// for background persistence
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	loops := make([]*Loop, 0, len(m.rooms))
	for _, loop := range m.rooms {
		loops = append(loops, loop)
	}
	m.mu.Unlock()

	for _, loop := range loops {
		loop.Close()
	}
	m.cancel()

	finished := make(chan struct{})
	go func() {
		m.running.Wait()
		for _, loop := range loops {
			loop.Registry().Wait()
		}
		close(finished)
	}()

	select {
	case <-finished:
		m.logger.Info("rooms stopped", slog.Int("rooms", len(loops)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
