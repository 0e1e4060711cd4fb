package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the variant of an actor. Capabilities are derived from the
// kind once, never from runtime type checks.
type Kind string

const (
	KindPlayer            Kind = "player"
	KindStar              Kind = "star"
	KindKey               Kind = "key"
	KindWall              Kind = "wall"
	KindDoor              Kind = "door"
	KindBox               Kind = "box"
	KindGhost             Kind = "ghost"
	KindSquishy           Kind = "squishy"
	KindSquishyHorizontal Kind = "squishy_horizontal"
	KindSquishyVertical   Kind = "squishy_vertical"

	// SubTiles is the number of sub-tile units per tile. Actor locations are
	// stored in these units so fractional chase movement stays exact.
	SubTiles = 8

	// Validation constants
	MinStageSize        = 3
	MaxStageSize        = 80
	MaxFillerAttempts   = 100000
	MaxBulkTicks        = 200
	DefaultMonsterDelay = 5
	DefaultGhostStep    = 1 // 0.5 * 0.25 of a tile, in sub-tile units
	WebSocketBufferSize = 256
)

var (
	ErrUnknownDirection = errors.New("unknown direction")
	ErrUnknownKind      = errors.New("unknown actor kind")
)

// IsMonster reports whether actors of this kind kill the player on contact.
func (k Kind) IsMonster() bool {
	switch k {
	case KindGhost, KindSquishy, KindSquishyHorizontal, KindSquishyVertical:
		return true
	}
	return false
}

// IsSquishy reports whether the kind belongs to the box-squishable patrol family.
func (k Kind) IsSquishy() bool {
	switch k {
	case KindSquishy, KindSquishyHorizontal, KindSquishyVertical:
		return true
	}
	return false
}

// Collectible reports whether the player picks the actor up by stepping on it.
func (k Kind) Collectible() bool {
	return k == KindStar || k == KindKey
}

// BlocksMonsters reports whether a patrolling monster bounces off this kind.
func (k Kind) BlocksMonsters() bool {
	return k == KindWall || k == KindBox
}

// Pushable reports whether the player can shove this kind.
func (k Kind) Pushable() bool {
	return k == KindBox
}

// Valid reports whether k names a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPlayer, KindStar, KindKey, KindWall, KindDoor, KindBox,
		KindGhost, KindSquishy, KindSquishyHorizontal, KindSquishyVertical:
		return true
	}
	return false
}

// Glyph returns the single character used for text renderings.
func (k Kind) Glyph() rune {
	switch k {
	case KindPlayer:
		return 'P'
	case KindStar:
		return '*'
	case KindKey:
		return 'K'
	case KindWall:
		return '#'
	case KindDoor:
		return 'D'
	case KindBox:
		return 'B'
	case KindGhost:
		return 'G'
	case KindSquishy:
		return 'M'
	case KindSquishyHorizontal:
		return 'H'
	case KindSquishyVertical:
		return 'V'
	}
	return '.'
}

// Position represents x,y tile coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position offset by dx, dy.
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) point() point {
	return point{x: p.X * SubTiles, y: p.Y * SubTiles}
}

// point is a location in sub-tile units.
type point struct {
	x, y int
}

func (p point) aligned() bool {
	return p.x%SubTiles == 0 && p.y%SubTiles == 0
}

// Direction is a logical movement key.
type Direction int

const (
	NoDirection Direction = iota
	Left
	Right
	Up
	Down
)

// moveOrder is the fixed order in which held keys are evaluated.
var moveOrder = [...]Direction{Left, Right, Up, Down}

// Delta returns the unit offset for the direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return ""
}

// ParseDirection accepts arrow names and their WASD aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "a":
		return Left, nil
	case "right", "d":
		return Right, nil
	case "up", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	case "", "none":
		return NoDirection, nil
	}
	return NoDirection, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Keys is the set of directions currently held down.
type Keys uint8

// With returns the set including d.
func (k Keys) With(d Direction) Keys {
	if d == NoDirection {
		return k
	}
	return k | 1<<uint(d)
}

// Has reports whether d is held.
func (k Keys) Has(d Direction) bool {
	return d != NoDirection && k&(1<<uint(d)) != 0
}

// HeldKeys builds a key set from directions.
func HeldKeys(dirs ...Direction) Keys {
	var k Keys
	for _, d := range dirs {
		k = k.With(d)
	}
	return k
}

// Input is the abstract input state for a single tick. Held drives smooth
// movement; Pressed is the most recent key-down event for precise movement.
type Input struct {
	Held    Keys
	Pressed Direction
}

// Status is the overall game status.
type Status string

const (
	StatusRunning  Status = "running"
	StatusWon      Status = "won"
	StatusGameOver Status = "game_over"
)

// Terminal reports whether the simulation has halted.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusGameOver
}

// EventType names something that happened during a tick.
type EventType string

const (
	EventStarCollected   EventType = "star_collected"
	EventKeyCollected    EventType = "key_collected"
	EventBoxPushed       EventType = "box_pushed"
	EventMonsterSquished EventType = "monster_squished"
	EventDoorRejected    EventType = "door_rejected"
	EventLevelAdvanced   EventType = "level_advanced"
	EventPlayerDied      EventType = "player_died"
	EventWon             EventType = "won"
)

// Event is raised by the simulation during a tick.
type Event struct {
	Type     EventType `json:"type"`
	Message  string    `json:"message,omitempty"`
	Position Position  `json:"position"`
	Level    int       `json:"level"`
}

// RenderItem is one drawable actor.
type RenderItem struct {
	ID   ActorID `json:"id"`
	Kind Kind    `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Snapshot represents the complete presentation state after a tick
type Snapshot struct {
	Level          int          `json:"level"`
	LevelName      string       `json:"level_name"`
	LevelCount     int          `json:"level_count"`
	Status         Status       `json:"status"`
	GoalMessage    string       `json:"goal_message"`
	Message        string       `json:"message"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	Tick           int          `json:"tick"`
	StarsCollected int          `json:"stars_collected"`
	GoalStars      int          `json:"goal_stars"`
	MonsterCount   int          `json:"monster_count"`
	KeyCollected   bool         `json:"key_collected"`
	PlayerAlive    bool         `json:"player_alive"`
	Player         *Position    `json:"player,omitempty"`
	Actors         []RenderItem `json:"actors"`
}

// TickResult is what a single call to Tick produces.
type TickResult struct {
	Snapshot *Snapshot `json:"snapshot"`
	Events   []Event   `json:"events,omitempty"`
}
