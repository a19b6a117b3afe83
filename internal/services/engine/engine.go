package engine

import (
	"log/slog"
	"time"

	"github.com/mcoot/multitetris/internal/dependencies/random"
	"github.com/mcoot/multitetris/internal/model"
)

// Phase is the animation state of the engine
type Phase string

const (
	// PhaseIdle means a piece is falling (or the game is stopped)
	PhaseIdle Phase = "idle"
	// PhaseClearing means full rows are flashing before removal
	PhaseClearing Phase = "clearing"
	// PhaseGravity means floating blocks are settling after a clear
	PhaseGravity Phase = "gravity"
)

// Config holds the timing and rule settings of an engine
type Config struct {
	ClearDuration    time.Duration
	GravityDuration  time.Duration
	BaseDropInterval time.Duration
	MinDropInterval  time.Duration
	DropIntervalStep time.Duration
	GravityEnabled   bool
	MaxCascade       int
}

// DefaultConfig returns the standard game rules
func DefaultConfig() Config {
	return Config{
		ClearDuration:    500 * time.Millisecond,
		GravityDuration:  300 * time.Millisecond,
		BaseDropInterval: 1000 * time.Millisecond,
		MinDropInterval:  50 * time.Millisecond,
		DropIntervalStep: 50 * time.Millisecond,
		GravityEnabled:   true,
		MaxCascade:       model.Rows,
	}
}

// GravityBlock describes one cell falling during the gravity animation.
// The grid already holds the settled result; blocks are for renderers only.
type GravityBlock struct {
	Col      int
	StartRow int
	EndRow   int
	Value    int
	Progress float64 // eased, 0 at start and 1 once landed
}

// Engine is the simulation of a single player's game.
// An Engine is not safe for concurrent use; it is owned by one goroutine.
type Engine struct {
	cfg    Config
	random random.Random
	logger *slog.Logger

	grid    model.Grid
	current *model.Piece
	next    *model.Piece

	score        int
	level        int
	lines        int
	dropInterval time.Duration
	dropElapsed  time.Duration

	running  bool
	paused   bool
	rotation model.Direction

	phase          Phase
	clearRows      []int
	clearElapsed   time.Duration
	gravityBlocks  []GravityBlock
	gravityElapsed time.Duration
	cascade        int

	incomingGarbage int
	gravityEnabled  bool

	events []model.Event
}

// New creates a stopped engine with an empty grid
func New(cfg Config, rnd random.Random, logger *slog.Logger) *Engine {
	if cfg.MaxCascade <= 0 {
		cfg.MaxCascade = model.Rows
	}
	e := &Engine{
		cfg:            cfg,
		random:         rnd,
		logger:         logger.With(slog.String("component", "engine")),
		gravityEnabled: cfg.GravityEnabled,
	}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.grid = model.NewGrid()
	e.current = nil
	e.next = nil
	e.score = 0
	e.level = 1
	e.lines = 0
	e.dropInterval = e.cfg.BaseDropInterval
	e.dropElapsed = 0
	e.running = false
	e.paused = false
	e.rotation = model.CounterClockwise
	e.phase = PhaseIdle
	e.clearRows = nil
	e.clearElapsed = 0
	e.gravityBlocks = nil
	e.gravityElapsed = 0
	e.cascade = 0
	e.incomingGarbage = 0
}

// Start resets the engine to a fresh game and spawns the first piece
func (e *Engine) Start() {
	e.reset()
	e.running = true
	e.next = e.randomPiece()
	e.spawn()
	e.emit(model.EventStateChanged, nil)
	e.logger.Debug("game started")
}

// Restart performs a full state reset and starts a new game
func (e *Engine) Restart() {
	e.Start()
	e.emitScore()
}

// Pause toggles the paused flag of a running game
func (e *Engine) Pause() {
	if !e.running {
		return
	}
	e.paused = !e.paused
}

// MovePiece translates the current piece. A blocked downward move locks the
// piece. Returns true if the piece moved.
func (e *Engine) MovePiece(dx, dy int) bool {
	if !e.active() || e.current == nil {
		return false
	}
	if !e.grid.Collides(*e.current, dx, dy, nil) {
		e.current.X += dx
		e.current.Y += dy
		return true
	}
	if dy > 0 {
		e.lockPiece()
	}
	return false
}

// RotatePiece rotates the current piece in the configured direction.
// A rotation that would collide is rejected. Returns true if it rotated.
func (e *Engine) RotatePiece() bool {
	if !e.active() || e.current == nil {
		return false
	}
	rotated := e.current.Shape.Rotate(e.rotation)
	if e.grid.Collides(*e.current, 0, 0, rotated) {
		return false
	}
	e.current.Shape = rotated
	return true
}

// ToggleRotationDirection flips the rotation direction and returns the new one
func (e *Engine) ToggleRotationDirection() model.Direction {
	if !e.active() {
		return e.rotation
	}
	e.rotation = e.rotation.Opposite()
	return e.rotation
}

// HardDrop moves the current piece straight down until blocked and locks it.
// Returns the number of rows dropped.
func (e *Engine) HardDrop() int {
	if !e.active() || e.current == nil {
		return 0
	}
	dropped := 0
	for !e.grid.Collides(*e.current, 0, dropped+1, nil) {
		dropped++
	}
	e.current.Y += dropped
	e.lockPiece()
	return dropped
}

// AddIncomingGarbage queues garbage rows to be inserted at the next lock
func (e *Engine) AddIncomingGarbage(n int) {
	if !e.running || n <= 0 {
		return
	}
	e.incomingGarbage += n
	e.emit(model.EventStateChanged, nil)
}

// Update advances timers by delta. Pending clear and gravity animations are
// stepped first; any leftover time feeds the drop timer.
func (e *Engine) Update(delta time.Duration) {
	if !e.active() || delta <= 0 {
		return
	}

	remaining := delta
	// Each clear/gravity cycle takes two steps; bound the loop by the cascade guard
	maxSteps := 2*e.cfg.MaxCascade + 2
	for step := 0; step < maxSteps; step++ {
		switch e.phase {
		case PhaseClearing:
			need := e.cfg.ClearDuration - e.clearElapsed
			if remaining < need {
				e.clearElapsed += remaining
				return
			}
			remaining -= need
			e.completeClear()

		case PhaseGravity:
			need := e.cfg.GravityDuration - e.gravityElapsed
			if remaining < need {
				e.gravityElapsed += remaining
				e.updateGravityProgress()
				return
			}
			remaining -= need
			e.completeGravity()

		default:
			e.dropElapsed += remaining
			if e.dropElapsed >= e.dropInterval {
				e.dropElapsed = 0
				e.MovePiece(0, 1)
			}
			return
		}

		if !e.running {
			return
		}
	}

	e.logger.Warn("update step limit reached",
		slog.String("phase", string(e.phase)),
		slog.Int("cascade", e.cascade),
	)
}

// State returns the public snapshot of the engine
func (e *Engine) State() model.Snapshot {
	status := model.StatusPlaying
	if !e.running {
		status = model.StatusGameOver
	}
	return model.Snapshot{
		Grid:            e.grid.Clone(),
		Score:           e.score,
		Level:           e.level,
		Lines:           e.lines,
		Status:          status,
		IncomingGarbage: e.incomingGarbage,
	}
}

// Events drains and returns the events emitted since the last call
func (e *Engine) Events() []model.Event {
	events := e.events
	e.events = nil
	return events
}

// SetGravityEnabled changes whether floating blocks settle after a clear.
// It takes effect from the next clear.
func (e *Engine) SetGravityEnabled(enabled bool) {
	e.gravityEnabled = enabled
}

// GravityEnabled returns the current gravity setting
func (e *Engine) GravityEnabled() bool {
	return e.gravityEnabled
}

// Running returns true while the game has not ended
func (e *Engine) Running() bool {
	return e.running
}

// Paused returns true while the game is paused
func (e *Engine) Paused() bool {
	return e.paused
}

// Phase returns the current animation phase
func (e *Engine) Phase() Phase {
	return e.phase
}

// Grid returns a copy of the locked cells
func (e *Engine) Grid() model.Grid {
	return e.grid.Clone()
}

// CurrentPiece returns a copy of the falling piece, if any
func (e *Engine) CurrentPiece() (model.Piece, bool) {
	if e.current == nil {
		return model.Piece{}, false
	}
	return e.current.Clone(), true
}

// NextPiece returns a copy of the upcoming piece, if any
func (e *Engine) NextPiece() (model.Piece, bool) {
	if e.next == nil {
		return model.Piece{}, false
	}
	return e.next.Clone(), true
}

// RotationDirection returns the direction RotatePiece turns
func (e *Engine) RotationDirection() model.Direction {
	return e.rotation
}

// IncomingGarbage returns the number of queued garbage rows
func (e *Engine) IncomingGarbage() int {
	return e.incomingGarbage
}

// DropInterval returns the current automatic drop period
func (e *Engine) DropInterval() time.Duration {
	return e.dropInterval
}

// ClearingRows returns the rows pending removal during the clearing phase
func (e *Engine) ClearingRows() []int {
	out := make([]int, len(e.clearRows))
	copy(out, e.clearRows)
	return out
}

// ClearProgress returns how far the clearing animation is, from 0 to 1
func (e *Engine) ClearProgress() float64 {
	if e.phase != PhaseClearing || e.cfg.ClearDuration <= 0 {
		return 0
	}
	return float64(e.clearElapsed) / float64(e.cfg.ClearDuration)
}

// GravityBlocks returns the blocks currently falling
func (e *Engine) GravityBlocks() []GravityBlock {
	out := make([]GravityBlock, len(e.gravityBlocks))
	copy(out, e.gravityBlocks)
	return out
}

// GhostY returns the row the current piece would land on, or -1 with no piece
func (e *Engine) GhostY() int {
	if e.current == nil {
		return -1
	}
	dy := 0
	for !e.grid.Collides(*e.current, 0, dy+1, nil) {
		dy++
	}
	return e.current.Y + dy
}

func (e *Engine) active() bool {
	return e.running && !e.paused
}

func (e *Engine) randomPiece() *model.Piece {
	types := model.AllPieceTypes()
	p := model.NewPiece(types[e.random.Intn(len(types))])
	return &p
}

// spawn promotes the next piece. Returns false and ends the game if the
// new piece collides at its spawn position.
func (e *Engine) spawn() bool {
	if e.next == nil {
		e.next = e.randomPiece()
	}
	e.current = e.next
	e.next = e.randomPiece()
	e.dropElapsed = 0

	if e.grid.Collides(*e.current, 0, 0, nil) {
		e.gameOver("spawn blocked")
		return false
	}
	return true
}

func (e *Engine) lockPiece() {
	e.grid.Place(*e.current)
	e.current = nil
	e.cascade = 0

	e.insertGarbageLines()
	if !e.running {
		return
	}
	e.emit(model.EventStateChanged, nil)

	if e.detectClears() {
		return
	}
	e.spawn()
}

// detectClears enters the clearing phase if any row is full
func (e *Engine) detectClears() bool {
	rows := e.grid.FullRows()
	if len(rows) == 0 {
		return false
	}
	e.phase = PhaseClearing
	e.clearRows = rows
	e.clearElapsed = 0
	return true
}

func (e *Engine) completeClear() {
	cleared := len(e.clearRows)
	e.grid = e.grid.WithoutRows(e.clearRows)
	e.clearRows = nil
	e.clearElapsed = 0

	e.lines += cleared
	e.score += LinePoints(cleared) * e.level
	e.level = LevelForLines(e.lines)
	e.dropInterval = e.dropIntervalFor(e.level)

	e.reconcileGarbage(GarbageForLines(cleared))
	e.emitScore()

	if e.gravityEnabled && e.startGravity() {
		e.phase = PhaseGravity
		e.emit(model.EventStateChanged, nil)
		return
	}

	e.phase = PhaseIdle
	e.emit(model.EventStateChanged, nil)
	e.spawn()
}

// startGravity settles every column bottom-up. The grid takes its final
// form immediately and the moved cells are recorded for animation.
// Returns false if nothing was floating.
func (e *Engine) startGravity() bool {
	settled, blocks := settle(e.grid)
	if len(blocks) == 0 {
		return false
	}
	e.grid = settled
	e.gravityBlocks = blocks
	e.gravityElapsed = 0
	return true
}

func (e *Engine) updateGravityProgress() {
	t := 1.0
	if e.cfg.GravityDuration > 0 {
		t = float64(e.gravityElapsed) / float64(e.cfg.GravityDuration)
	}
	progress := EaseOutBounce(t)
	for i := range e.gravityBlocks {
		e.gravityBlocks[i].Progress = progress
	}
}

func (e *Engine) completeGravity() {
	e.gravityBlocks = nil
	e.gravityElapsed = 0
	e.phase = PhaseIdle
	e.cascade++

	if e.cascade < e.cfg.MaxCascade {
		if e.detectClears() {
			return
		}
	} else {
		e.logger.Warn("cascade limit reached",
			slog.Int("cascade", e.cascade),
		)
	}

	e.emit(model.EventStateChanged, nil)
	e.spawn()
}

// reconcileGarbage cancels outgoing garbage against queued incoming garbage
// one for one and emits the remainder as an attack
func (e *Engine) reconcileGarbage(outgoing int) {
	if outgoing <= 0 {
		return
	}
	cancelled := min(e.incomingGarbage, outgoing)
	e.incomingGarbage -= cancelled
	if remaining := outgoing - cancelled; remaining > 0 {
		e.emit(model.EventGarbageAttack, model.GarbageAttackPayload{Amount: remaining})
	}
}

// insertGarbageLines pushes queued garbage rows in from the bottom. The
// game ends if any block is pushed into the top two rows.
func (e *Engine) insertGarbageLines() {
	if e.incomingGarbage <= 0 || !e.running {
		return
	}
	n := min(e.incomingGarbage, model.Rows)
	e.incomingGarbage = 0

	grid := e.grid[n:]
	for i := 0; i < n; i++ {
		row := make([]int, model.Cols)
		gap := e.random.Intn(model.Cols)
		for x := range row {
			if x != gap {
				row[x] = model.CellGarbage
			}
		}
		grid = append(grid, row)
	}
	e.grid = grid

	e.logger.Debug("garbage inserted", slog.Int("rows", n))

	if e.grid.AnyOccupied(2) {
		e.gameOver("garbage overflow")
	}
}

func (e *Engine) gameOver(reason string) {
	e.running = false
	e.current = nil
	e.phase = PhaseIdle
	e.clearRows = nil
	e.gravityBlocks = nil
	e.emit(model.EventGameOver, model.GameOverPayload{Score: e.score, Lines: e.lines})
	e.logger.Debug("game over",
		slog.String("reason", reason),
		slog.Int("score", e.score),
		slog.Int("lines", e.lines),
	)
}

func (e *Engine) emitScore() {
	e.emit(model.EventScoreChanged, model.ScoreChangedPayload{
		Score: e.score,
		Level: e.level,
		Lines: e.lines,
	})
}

func (e *Engine) emit(t model.EventType, payload any) {
	e.events = append(e.events, model.Event{Type: t, Payload: payload})
}

func (e *Engine) dropIntervalFor(level int) time.Duration {
	return max(e.cfg.MinDropInterval, e.cfg.BaseDropInterval-time.Duration(level-1)*e.cfg.DropIntervalStep)
}
