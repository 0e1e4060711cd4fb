package engine

import (
	"errors"
	"testing"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input     string
		expected  Direction
		expectErr bool
	}{
		{"left", Left, false},
		{"A", Left, false},
		{"right", Right, false},
		{"d", Right, false},
		{" Up ", Up, false},
		{"w", Up, false},
		{"down", Down, false},
		{"s", Down, false},
		{"", NoDirection, false},
		{"none", NoDirection, false},
		{"diagonal", NoDirection, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if tt.expectErr {
				if !errors.Is(err, ErrUnknownDirection) {
					t.Errorf("Expected ErrUnknownDirection, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDirectionDelta(t *testing.T) {
	tests := []struct {
		dir    Direction
		dx, dy int
		name   string
	}{
		{Left, -1, 0, "left"},
		{Right, 1, 0, "right"},
		{Up, 0, -1, "up"},
		{Down, 0, 1, "down"},
		{NoDirection, 0, 0, ""},
	}

	for _, tt := range tests {
		dx, dy := tt.dir.Delta()
		if dx != tt.dx || dy != tt.dy {
			t.Errorf("%v: expected (%d,%d), got (%d,%d)", tt.dir, tt.dx, tt.dy, dx, dy)
		}
		if tt.dir.String() != tt.name {
			t.Errorf("Expected name %q, got %q", tt.name, tt.dir.String())
		}
	}
}

func TestKeys(t *testing.T) {
	k := HeldKeys(Left, Down, NoDirection)
	if !k.Has(Left) || !k.Has(Down) {
		t.Error("Expected left and down to be held")
	}
	if k.Has(Right) || k.Has(Up) || k.Has(NoDirection) {
		t.Error("Expected only left and down to be held")
	}
	if k.With(NoDirection) != k {
		t.Error("Expected NoDirection to leave the set unchanged")
	}
}

func TestKindCapabilities(t *testing.T) {
	tests := []struct {
		kind      Kind
		monster   bool
		squishy   bool
		blocks    bool
		pushable  bool
		collected bool
		glyph     rune
	}{
		{KindPlayer, false, false, false, false, false, 'P'},
		{KindStar, false, false, false, false, true, '*'},
		{KindKey, false, false, false, false, true, 'K'},
		{KindWall, false, false, true, false, false, '#'},
		{KindDoor, false, false, false, false, false, 'D'},
		{KindBox, false, false, true, true, false, 'B'},
		{KindGhost, true, false, false, false, false, 'G'},
		{KindSquishy, true, true, false, false, false, 'M'},
		{KindSquishyHorizontal, true, true, false, false, false, 'H'},
		{KindSquishyVertical, true, true, false, false, false, 'V'},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if !tt.kind.Valid() {
				t.Error("Expected kind to be valid")
			}
			if tt.kind.IsMonster() != tt.monster {
				t.Errorf("IsMonster: expected %v", tt.monster)
			}
			if tt.kind.IsSquishy() != tt.squishy {
				t.Errorf("IsSquishy: expected %v", tt.squishy)
			}
			if tt.kind.BlocksMonsters() != tt.blocks {
				t.Errorf("BlocksMonsters: expected %v", tt.blocks)
			}
			if tt.kind.Pushable() != tt.pushable {
				t.Errorf("Pushable: expected %v", tt.pushable)
			}
			if tt.kind.Collectible() != tt.collected {
				t.Errorf("Collectible: expected %v", tt.collected)
			}
			if tt.kind.Glyph() != tt.glyph {
				t.Errorf("Glyph: expected %c, got %c", tt.glyph, tt.kind.Glyph())
			}
		})
	}

	if Kind("dragon").Valid() {
		t.Error("Expected unknown kind to be invalid")
	}
}

func TestActorTileBetweenTiles(t *testing.T) {
	a := NewActor(KindGhost, Position{X: 2, Y: 0})
	a.at.x -= 3
	if got := a.Tile(); got != (Position{X: 1, Y: 0}) {
		t.Errorf("Expected tile (1,0), got %+v", got)
	}
	if a.Aligned() {
		t.Error("Expected actor between tiles not to be aligned")
	}
	if x, _ := a.Location(); x != 1.625 {
		t.Errorf("Expected x=1.625, got %v", x)
	}

	b := NewActor(KindGhost, Position{X: 0, Y: 0})
	b.at.x = -1
	if got := b.Tile(); got.X != -1 {
		t.Errorf("Expected floor toward negative infinity, got %+v", got)
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusRunning.Terminal() {
		t.Error("Running should not be terminal")
	}
	if !StatusWon.Terminal() || !StatusGameOver.Terminal() {
		t.Error("Won and game over should be terminal")
	}
}
