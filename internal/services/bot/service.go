package bot

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mcoot/multitetris/internal/dependencies/random"
	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/services/engine"
)

const (
	StrategyRandom = "random"
	StrategyGreedy = "greedy"

	// MaxMoves is a safety limit on sideways moves for one placement
	MaxMoves = model.Cols * 2
)

// Action describes one placement a bot made
type Action struct {
	Piece     model.PieceType
	Rotations int // rotations that succeeded
	X         int // column reached before dropping
	Dropped   int // rows fallen on hard drop
}

// Service drives engines with the registered strategies
type Service struct {
	strategies map[string]Strategy
	logger     *slog.Logger
}

// DefaultStrategies returns the built-in strategies keyed by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		StrategyRandom: NewRandomStrategy(rnd),
		StrategyGreedy: NewGreedyStrategy(),
	}
}

// NewService creates a new bot Service
func NewService(strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		strategies: strategies,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// Strategy returns a registered strategy by name
func (s *Service) Strategy(name string) (Strategy, error) {
	strategy, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot strategy: %s", name)
	}
	return strategy, nil
}

// Names returns the registered strategy names, sorted
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlayPiece asks the strategy for a placement of the current piece, then
// rotates, shifts and hard drops it. Returns false when there is no piece
// to play, e.g. during a clear animation.
func (s *Service) PlayPiece(e *engine.Engine, strategy Strategy) (Action, bool) {
	piece, ok := e.CurrentPiece()
	if !ok || !e.Running() || e.Paused() {
		return Action{}, false
	}

	plan := strategy.ChoosePlacement(e.Grid(), piece, e.RotationDirection())
	action := Action{Piece: piece.Type}

	for i := 0; i < plan.Rotations; i++ {
		if !e.RotatePiece() {
			break
		}
		action.Rotations++
	}

	for moves := 0; moves < MaxMoves; moves++ {
		current, _ := e.CurrentPiece()
		if current.X == plan.X {
			break
		}
		dx := 1
		if plan.X < current.X {
			dx = -1
		}
		if !e.MovePiece(dx, 0) {
			break
		}
	}

	current, _ := e.CurrentPiece()
	action.X = current.X
	action.Dropped = e.HardDrop()

	s.logger.Debug("bot placed piece",
		slog.String("piece", string(action.Piece)),
		slog.Int("rotations", action.Rotations),
		slog.Int("x", action.X),
		slog.Int("dropped", action.Dropped),
	)
	return action, true
}
