package engine

import (
	"strings"
	"testing"
)

func TestManhattanDistance(t *testing.T) {
	if d := ManhattanDistance(Position{X: 1, Y: 1}, Position{X: 4, Y: 0}); d != 4 {
		t.Errorf("Expected distance 4, got %d", d)
	}
}

func TestRenderText(t *testing.T) {
	e := newTestEngine(t, testLevel("X X X X", "X P B X", "X . D X", "X X X X"))

	rows := RenderText(e.Snapshot())
	want := []string{"####", "#PB#", "#.D#", "####"}
	if strings.Join(rows, "\n") != strings.Join(want, "\n") {
		t.Errorf("Expected\n%s\ngot\n%s", strings.Join(want, "\n"), strings.Join(rows, "\n"))
	}
}

func TestFindNearestAndThreat(t *testing.T) {
	level := testLevel(
		"X X X X X X X",
		"X P . . . G X",
		"X . . . . . X",
		"X X X X X X X",
	)
	e := newTestEngine(t, level)
	s := e.Snapshot()

	pos, dist, found := FindNearest(s, IsKind(KindGhost))
	if !found || pos != (Position{X: 5, Y: 1}) || dist != 4 {
		t.Errorf("Expected ghost at (5,1) distance 4, got %+v %d %v", pos, dist, found)
	}
	if _, _, found := FindNearest(s, IsKind(KindKey)); found {
		t.Error("Expected no key")
	}
	if got := AnalyzeThreat(s); !strings.HasPrefix(got, "SAFE") {
		t.Errorf("Expected SAFE, got %q", got)
	}

	for i := 0; i < 2*SubTiles; i++ {
		e.Tick(Input{})
	}
	if got := AnalyzeThreat(e.Snapshot()); !strings.HasPrefix(got, "CAUTION") {
		t.Errorf("Expected CAUTION, got %q", got)
	}
}

func TestDoorReachable(t *testing.T) {
	open := testLevel("X X X X X", "X P . D X", "X X X X X")
	if ok, err := DoorReachable(&open); err != nil || !ok {
		t.Errorf("Expected door reachable, got %v %v", ok, err)
	}

	walled := testLevel("X X X X X", "X P X D X", "X X X X X")
	if ok, err := DoorReachable(&walled); err != nil || ok {
		t.Errorf("Expected door unreachable, got %v %v", ok, err)
	}
}
