package engine

// ActorID is a stable handle into the registry.
type ActorID int

// MovementMode selects how the player reads input.
type MovementMode string

const (
	// MoveSmooth evaluates every held key each tick, with wall and box checks.
	MoveSmooth MovementMode = "smooth"
	// MovePrecise consumes the last pressed key once, without collision checks.
	MovePrecise MovementMode = "precise"
)

// Actor is any entity on the stage.
type Actor struct {
	ID   ActorID
	Kind Kind
	at   point

	Player  *PlayerState
	Monster *MonsterState
}

// PlayerState holds what only the player carries.
type PlayerState struct {
	Stars     int
	Mode      MovementMode
	LastEvent Direction
}

// MonsterState holds the per-step displacement and the speed gate.
type MonsterState struct {
	DX, DY     int
	Delay      int
	DelayCount int
	// Step is the ghost chase distance per tick, in sub-tile units.
	Step int
}

// NewActor creates an immobile or pushable actor of the given kind at p.
func NewActor(kind Kind, p Position) *Actor {
	return &Actor{Kind: kind, at: p.point()}
}

// NewPlayer creates the player at p.
func NewPlayer(p Position, mode MovementMode) *Actor {
	a := NewActor(KindPlayer, p)
	a.Player = &PlayerState{Mode: mode}
	return a
}

// NewMonster creates a monster of the given kind at p. Patrolling monsters
// start heading right and down; their first move happens when the delay
// counter wraps to zero.
func NewMonster(kind Kind, p Position, delay, ghostStep int) *Actor {
	if delay <= 0 {
		delay = DefaultMonsterDelay
	}
	if ghostStep <= 0 {
		ghostStep = DefaultGhostStep
	}
	a := NewActor(kind, p)
	a.Monster = &MonsterState{
		DX:         1,
		DY:         1,
		Delay:      delay,
		DelayCount: 1 % delay,
		Step:       ghostStep,
	}
	return a
}

// Tile returns the tile the actor occupies, rounding toward negative infinity
// when it sits between tiles.
func (a *Actor) Tile() Position {
	return Position{X: floorDiv(a.at.x, SubTiles), Y: floorDiv(a.at.y, SubTiles)}
}

// Aligned reports whether the actor sits exactly on a tile.
func (a *Actor) Aligned() bool {
	return a.at.aligned()
}

// Occupies reports whether the actor sits exactly on p.
func (a *Actor) Occupies(p Position) bool {
	return a.at == p.point()
}

// Location returns the actor's position in tiles, fractions included.
func (a *Actor) Location() (float64, float64) {
	return float64(a.at.x) / SubTiles, float64(a.at.y) / SubTiles
}

// moveBy shifts the actor by whole tiles.
func (a *Actor) moveBy(dx, dy int) {
	a.at.x += dx * SubTiles
	a.at.y += dy * SubTiles
}

// SetTile places the actor exactly on p.
func (a *Actor) SetTile(p Position) {
	a.at = p.point()
}

// RegisterEvent records the most recent key-down for precise movement.
func (a *Actor) RegisterEvent(d Direction) {
	if a.Player != nil && d != NoDirection {
		a.Player.LastEvent = d
	}
}

// StarCount returns how many stars the player collected; zero for non-players.
func (a *Actor) StarCount() int {
	if a.Player == nil {
		return 0
	}
	return a.Player.Stars
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
