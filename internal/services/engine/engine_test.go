package engine

import (
	"testing"
	"time"

	"github.com/mcoot/multitetris/internal/dependencies/mocks"
	"github.com/mcoot/multitetris/internal/model"
	"github.com/mcoot/multitetris/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type EngineSuite struct {
	suite.Suite
	random *mocks.MockRandom
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.engine = New(DefaultConfig(), s.random, testutil.NopLogger())
}

// fillRow sets every cell of the row to garbage except the given columns
func (s *EngineSuite) fillRow(row int, except ...int) {
	skip := make(map[int]bool, len(except))
	for _, x := range except {
		skip[x] = true
	}
	for x := 0; x < model.Cols; x++ {
		if !skip[x] {
			s.engine.grid[row][x] = model.CellGarbage
		}
	}
}

func (s *EngineSuite) eventsOfType(events []model.Event, t model.EventType) []model.Event {
	var out []model.Event
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (s *EngineSuite) requirePiece() model.Piece {
	p, ok := s.engine.CurrentPiece()
	s.Require().True(ok, "expected a current piece")
	return p
}

// Start tests

func (s *EngineSuite) TestNewEngineIsStopped() {
	s.False(s.engine.Running())
	s.Equal(model.StatusGameOver, s.engine.State().Status)
	s.False(s.engine.MovePiece(1, 0))
}

func (s *EngineSuite) TestStartSpawnsPieces() {
	s.engine.Start()

	s.True(s.engine.Running())
	s.True(s.engine.grid.IsEmpty())

	current := s.requirePiece()
	s.Equal(model.PieceI, current.Type)
	s.Equal(3, current.X)
	s.Equal(0, current.Y)

	_, ok := s.engine.NextPiece()
	s.True(ok)

	s.NotEmpty(s.eventsOfType(s.engine.Events(), model.EventStateChanged))
}

func (s *EngineSuite) TestStartUsesRandomPieceOrder() {
	s.random.QueueIntn(1, 2) // O then T

	s.engine.Start()

	current := s.requirePiece()
	next, _ := s.engine.NextPiece()
	s.Equal(model.PieceO, current.Type)
	s.Equal(model.PieceT, next.Type)
}

// Movement tests

func (s *EngineSuite) TestMoveBlockedByWall() {
	s.engine.Start()

	s.True(s.engine.MovePiece(-3, 0))
	s.False(s.engine.MovePiece(-1, 0))
	s.Equal(0, s.requirePiece().X)
}

func (s *EngineSuite) TestBlockedDownwardMoveLocksPiece() {
	s.engine.Start()

	for i := 0; i < 18; i++ {
		s.Require().True(s.engine.MovePiece(0, 1))
	}
	s.False(s.engine.MovePiece(0, 1))

	for x := 3; x <= 6; x++ {
		s.Equal(1, s.engine.grid[19][x])
	}
	s.Equal(0, s.requirePiece().Y)
}

func (s *EngineSuite) TestHardDropLandsOnFloor() {
	s.engine.Start()

	dropped := s.engine.HardDrop()

	s.Equal(18, dropped)
	s.Equal(4, s.engine.grid.FilledCount())
	for x := 3; x <= 6; x++ {
		s.Equal(1, s.engine.grid[19][x])
	}
	s.Equal(0, s.requirePiece().Y)
}

func (s *EngineSuite) TestLockingConservesCells() {
	s.random.QueueIntn(1, 1, 1, 1, 1, 1)
	s.engine.Start()

	s.engine.HardDrop()
	s.engine.MovePiece(-4, 0)
	s.engine.HardDrop()
	s.engine.MovePiece(-2, 0)
	s.engine.HardDrop()
	s.engine.MovePiece(2, 0)
	s.engine.HardDrop()

	s.Equal(16, s.engine.grid.FilledCount())
	s.True(s.engine.grid.Valid())
	s.Equal(PhaseIdle, s.engine.Phase())
}

func (s *EngineSuite) TestGhostY() {
	s.engine.Start()
	s.Equal(18, s.engine.GhostY())

	s.engine.grid[10][4] = model.CellGarbage
	s.Equal(8, s.engine.GhostY())
}

// Rotation tests

func (s *EngineSuite) TestRotateUsesCounterClockwiseByDefault() {
	s.engine.Start()

	s.True(s.engine.RotatePiece())
	s.Equal(model.ShapeOf(model.PieceI).Rotate(model.CounterClockwise), s.requirePiece().Shape)
}

func (s *EngineSuite) TestRotationRejectedOnCollision() {
	s.engine.Start()
	s.engine.grid[2][4] = model.CellGarbage

	s.False(s.engine.RotatePiece())
	s.Equal(model.ShapeOf(model.PieceI), s.requirePiece().Shape)
}

func (s *EngineSuite) TestToggleRotationDirection() {
	s.engine.Start()
	s.Equal(model.CounterClockwise, s.engine.RotationDirection())

	s.Equal(model.Clockwise, s.engine.ToggleRotationDirection())
	s.True(s.engine.RotatePiece())
	s.Equal(model.ShapeOf(model.PieceI).Rotate(model.Clockwise), s.requirePiece().Shape)

	s.Equal(model.CounterClockwise, s.engine.ToggleRotationDirection())
}

// Update tests

func (s *EngineSuite) TestUpdateDropsPieceOnInterval() {
	s.engine.Start()

	s.engine.Update(999 * time.Millisecond)
	s.Equal(0, s.requirePiece().Y)

	s.engine.Update(time.Millisecond)
	s.Equal(1, s.requirePiece().Y)
}

func (s *EngineSuite) TestPauseBlocksInputAndTimers() {
	s.engine.Start()
	s.engine.Pause()

	s.True(s.engine.Paused())
	s.False(s.engine.MovePiece(1, 0))
	s.False(s.engine.RotatePiece())
	s.Equal(0, s.engine.HardDrop())
	s.engine.Update(2 * time.Second)
	s.Equal(0, s.requirePiece().Y)

	s.engine.Pause()
	s.False(s.engine.Paused())
	s.True(s.engine.MovePiece(1, 0))
}

// Line clear tests

func (s *EngineSuite) TestSingleLineClear() {
	s.engine.Start()
	s.fillRow(19, 6, 7, 8, 9)
	s.engine.Events()

	s.engine.MovePiece(3, 0)
	s.engine.HardDrop()

	s.Equal(PhaseClearing, s.engine.Phase())
	s.Equal([]int{19}, s.engine.ClearingRows())
	_, ok := s.engine.CurrentPiece()
	s.False(ok, "spawn is deferred while clearing")

	s.engine.Update(499 * time.Millisecond)
	s.Equal(PhaseClearing, s.engine.Phase())

	s.engine.Update(time.Millisecond)
	s.Equal(PhaseIdle, s.engine.Phase())
	s.Equal(40, s.engine.score)
	s.Equal(1, s.engine.lines)
	s.Equal(1, s.engine.level)
	s.True(s.engine.grid.IsEmpty())
	s.Len(s.engine.grid, model.Rows)
	s.requirePiece()

	events := s.engine.Events()
	scores := s.eventsOfType(events, model.EventScoreChanged)
	s.Require().Len(scores, 1)
	s.Equal(model.ScoreChangedPayload{Score: 40, Level: 1, Lines: 1}, scores[0].Payload)
	s.Empty(s.eventsOfType(events, model.EventGarbageAttack))
}

func (s *EngineSuite) TestInputIgnoredWhileClearing() {
	s.engine.Start()
	s.fillRow(19, 6, 7, 8, 9)
	s.engine.MovePiece(3, 0)
	s.engine.HardDrop()

	s.False(s.engine.MovePiece(-1, 0))
	s.Equal(0, s.engine.HardDrop())
	s.False(s.engine.RotatePiece())
}

// dropVerticalI rotates the spawned I piece upright, moves it to the right
// wall and drops it, filling column 9 of rows 16-19
func (s *EngineSuite) dropVerticalI() {
	s.Require().True(s.engine.RotatePiece())
	s.Require().True(s.engine.MovePiece(5, 0))
	s.engine.HardDrop()
}

func (s *EngineSuite) TestFourLineClearScoresAndAttacks() {
	s.engine.Start()
	for row := 16; row < model.Rows; row++ {
		s.fillRow(row, 9)
	}
	s.engine.Events()

	s.dropVerticalI()
	s.Equal([]int{19, 18, 17, 16}, s.engine.ClearingRows())

	s.engine.Update(500 * time.Millisecond)

	s.Equal(1200, s.engine.score)
	s.Equal(4, s.engine.lines)
	s.True(s.engine.grid.IsEmpty())

	attacks := s.eventsOfType(s.engine.Events(), model.EventGarbageAttack)
	s.Require().Len(attacks, 1)
	s.Equal(model.GarbageAttackPayload{Amount: 4}, attacks[0].Payload)
}

func (s *EngineSuite) TestOutgoingGarbageCancelsIncoming() {
	s.engine.Start()
	for row := 16; row < model.Rows; row++ {
		s.fillRow(row, 9)
	}
	s.dropVerticalI()

	s.engine.AddIncomingGarbage(3)
	s.engine.Events()
	s.engine.Update(500 * time.Millisecond)

	s.Equal(0, s.engine.IncomingGarbage())
	attacks := s.eventsOfType(s.engine.Events(), model.EventGarbageAttack)
	s.Require().Len(attacks, 1)
	s.Equal(model.GarbageAttackPayload{Amount: 1}, attacks[0].Payload)
}

func (s *EngineSuite) TestIncomingGarbageAbsorbsSmallAttack() {
	s.engine.Start()
	s.engine.incomingGarbage = 5
	s.engine.Events()

	s.engine.reconcileGarbage(GarbageForLines(2))

	s.Equal(4, s.engine.IncomingGarbage())
	s.Empty(s.engine.Events())
}

func (s *EngineSuite) TestLevelUpShortensDropInterval() {
	s.engine.Start()
	s.engine.lines = 9
	s.fillRow(19, 6, 7, 8, 9)
	s.engine.MovePiece(3, 0)
	s.engine.HardDrop()

	s.engine.Update(500 * time.Millisecond)

	s.Equal(10, s.engine.lines)
	s.Equal(2, s.engine.level)
	s.Equal(40, s.engine.score, "points use the level before the clear")
	s.Equal(950*time.Millisecond, s.engine.DropInterval())
}

// Gravity tests

// setupFloatingBlock arranges a single-row clear that leaves the block at
// column 5 floating one row above the floor
func (s *EngineSuite) setupFloatingBlock() {
	s.engine.Start()
	s.fillRow(19, 6, 7, 8, 9)
	s.engine.grid[18][0] = model.CellGarbage
	s.engine.grid[17][5] = model.CellGarbage
	s.engine.MovePiece(3, 0)
	s.engine.HardDrop()
}

func (s *EngineSuite) TestGravityCompactsFloatingBlocks() {
	s.setupFloatingBlock()

	s.engine.Update(500 * time.Millisecond)

	s.Equal(PhaseGravity, s.engine.Phase())
	s.Equal([]GravityBlock{{Col: 5, StartRow: 18, EndRow: 19, Value: model.CellGarbage}}, s.engine.GravityBlocks())
	s.Equal(model.CellGarbage, s.engine.grid[19][0])
	s.Equal(model.CellGarbage, s.engine.grid[19][5])
	s.Equal(model.CellEmpty, s.engine.grid[18][5])
	_, ok := s.engine.CurrentPiece()
	s.False(ok, "spawn is deferred while settling")

	s.engine.Update(150 * time.Millisecond)
	progress := s.engine.GravityBlocks()[0].Progress
	s.Greater(progress, 0.0)
	s.Less(progress, 1.0)

	s.engine.Update(150 * time.Millisecond)
	s.Equal(PhaseIdle, s.engine.Phase())
	s.Empty(s.engine.GravityBlocks())
	s.requirePiece()
}

func (s *EngineSuite) TestSingleUpdateRunsClearAndGravity() {
	s.setupFloatingBlock()

	s.engine.Update(800 * time.Millisecond)

	s.Equal(PhaseIdle, s.engine.Phase())
	s.Equal(2, s.engine.grid.FilledCount())
	s.requirePiece()
}

func (s *EngineSuite) TestGravityDisabledLeavesFloatingBlocks() {
	s.engine.SetGravityEnabled(false)
	s.setupFloatingBlock()

	s.engine.Update(500 * time.Millisecond)

	s.Equal(PhaseIdle, s.engine.Phase())
	s.Equal(model.CellGarbage, s.engine.grid[18][5])
	s.Equal(model.CellEmpty, s.engine.grid[19][5])
	s.requirePiece()
}

// setupCascade arranges a clear whose gravity pass completes another row
func (s *EngineSuite) setupCascade() {
	s.engine.Start()
	s.fillRow(19, 9)
	s.fillRow(18, 2, 9)
	s.engine.grid[17][2] = model.CellGarbage
	s.dropVerticalI()
	s.Require().Equal([]int{19}, s.engine.ClearingRows())
}

func (s *EngineSuite) TestGravityCascadeClearsAgain() {
	s.setupCascade()

	s.engine.Update(500 * time.Millisecond)
	s.Equal(PhaseGravity, s.engine.Phase())

	s.engine.Update(300 * time.Millisecond)
	s.Equal(PhaseClearing, s.engine.Phase())
	s.Equal([]int{19}, s.engine.ClearingRows())

	s.engine.Update(500 * time.Millisecond)
	s.Equal(PhaseIdle, s.engine.Phase())
	s.Equal(80, s.engine.score)
	s.Equal(2, s.engine.lines)
	s.Equal(2, s.engine.grid.FilledCount())
	s.Equal(1, s.engine.grid[19][9])
	s.Equal(1, s.engine.grid[18][9])
	s.requirePiece()
}

func (s *EngineSuite) TestCascadeRunsToFixedPointInOneUpdate() {
	s.setupCascade()
	s.engine.Events()

	s.engine.Update(1300 * time.Millisecond)

	s.Equal(PhaseIdle, s.engine.Phase())
	s.Equal(80, s.engine.score)
	s.Len(s.eventsOfType(s.engine.Events(), model.EventScoreChanged), 2)
}

func (s *EngineSuite) TestCascadeGuardStopsFurtherClears() {
	cfg := DefaultConfig()
	cfg.MaxCascade = 1
	s.engine = New(cfg, s.random, testutil.NopLogger())
	s.setupCascade()

	s.engine.Update(800 * time.Millisecond)

	s.Equal(PhaseIdle, s.engine.Phase())
	s.Equal(40, s.engine.score)
	s.True(s.engine.grid.RowFull(19))
	s.requirePiece()
}

// Garbage tests

func (s *EngineSuite) TestGarbageInsertedAtLock() {
	s.engine.Start()
	s.engine.AddIncomingGarbage(2)
	s.random.QueueIntn(3, 7)

	s.engine.HardDrop()

	s.Equal(0, s.engine.IncomingGarbage())
	s.True(s.engine.Running())
	for x := 3; x <= 6; x++ {
		s.Equal(1, s.engine.grid[17][x])
	}
	for x := 0; x < model.Cols; x++ {
		if x == 3 {
			s.Equal(model.CellEmpty, s.engine.grid[18][x])
		} else {
			s.Equal(model.CellGarbage, s.engine.grid[18][x])
		}
		if x == 7 {
			s.Equal(model.CellEmpty, s.engine.grid[19][x])
		} else {
			s.Equal(model.CellGarbage, s.engine.grid[19][x])
		}
	}
	s.Equal(22, s.engine.grid.FilledCount())
	s.Len(s.engine.grid, model.Rows)
}

func (s *EngineSuite) TestGarbageOverflowEndsGame() {
	s.engine.Start()
	s.engine.grid[4][0] = model.CellGarbage
	s.engine.AddIncomingGarbage(3)
	s.engine.Events()

	s.engine.HardDrop()

	s.False(s.engine.Running())
	s.Equal(model.StatusGameOver, s.engine.State().Status)
	over := s.eventsOfType(s.engine.Events(), model.EventGameOver)
	s.Require().Len(over, 1)
	s.Equal(model.GameOverPayload{Score: 0, Lines: 0}, over[0].Payload)
}

func (s *EngineSuite) TestAddIncomingGarbageIgnoresNonPositive() {
	s.engine.Start()
	s.engine.AddIncomingGarbage(0)
	s.engine.AddIncomingGarbage(-2)
	s.Equal(0, s.engine.IncomingGarbage())
}

// Game over tests

func (s *EngineSuite) TestBlockedSpawnEndsGame() {
	s.engine.Start()
	s.engine.grid[1][4] = model.CellGarbage
	s.engine.Events()

	s.engine.HardDrop()

	s.False(s.engine.Running())
	s.Len(s.eventsOfType(s.engine.Events(), model.EventGameOver), 1)

	s.False(s.engine.MovePiece(1, 0))
	s.Equal(0, s.engine.HardDrop())
	s.engine.AddIncomingGarbage(2)
	s.Equal(0, s.engine.IncomingGarbage())
}

// Restart tests

func (s *EngineSuite) TestRestartResetsState() {
	s.engine.Start()
	s.engine.score = 500
	s.engine.lines = 12
	s.engine.level = 2
	s.engine.incomingGarbage = 3
	s.engine.grid[19][0] = model.CellGarbage
	s.engine.ToggleRotationDirection()
	s.engine.Events()

	s.engine.Restart()

	state := s.engine.State()
	s.Equal(0, state.Score)
	s.Equal(1, state.Level)
	s.Equal(0, state.Lines)
	s.Equal(0, state.IncomingGarbage)
	s.True(state.Grid.IsEmpty())
	s.Equal(model.StatusPlaying, state.Status)
	s.Equal(model.CounterClockwise, s.engine.RotationDirection())

	events := s.engine.Events()
	scores := s.eventsOfType(events, model.EventScoreChanged)
	s.Require().Len(scores, 1)
	s.Equal(model.ScoreChangedPayload{Score: 0, Level: 1, Lines: 0}, scores[0].Payload)
	s.NotEmpty(s.eventsOfType(events, model.EventStateChanged))
}

func (s *EngineSuite) TestRestartAfterGameOver() {
	s.engine.Start()
	s.engine.grid[1][4] = model.CellGarbage
	s.engine.HardDrop()
	s.Require().False(s.engine.Running())

	s.engine.Restart()

	s.True(s.engine.Running())
	s.requirePiece()
}

// Snapshot tests

func (s *EngineSuite) TestStateReturnsCopy() {
	s.engine.Start()

	state := s.engine.State()
	state.Grid[0][0] = model.CellGarbage

	s.Equal(model.CellEmpty, s.engine.grid[0][0])
}

func (s *EngineSuite) TestEventsAreDrained() {
	s.engine.Start()

	s.NotEmpty(s.engine.Events())
	s.Empty(s.engine.Events())
}
