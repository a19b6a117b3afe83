package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/multitetris/internal/dependencies/mocks"
	"github.com/mcoot/multitetris/internal/services/room"
	"github.com/mcoot/multitetris/internal/storage/memory"
	"github.com/mcoot/multitetris/internal/transport/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The mock random is not safe for concurrent use, so tests drive rooms from
// a single goroutine through loop.Do.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, mockClock, mockRandom, room.DefaultConfig(), ws.HandlerConfig{}, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
