package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
)

var (
	ErrNoPlayer   = errors.New("layout has no player tile")
	ErrRaggedMap  = errors.New("layout rows have inconsistent lengths")
	ErrEmptyMap   = errors.New("layout is empty")
	ErrNoFreeTile = errors.New("not enough free tiles")
)

// ParseMap reads whitespace-delimited token rows. Blank lines are skipped.
func ParseMap(r io.Reader) ([][]string, error) {
	var rows [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	return rows, checkRectangular(rows)
}

// ParseLayout splits layout rows into tokens.
func ParseLayout(layout []string) ([][]string, error) {
	return ParseMap(strings.NewReader(strings.Join(layout, "\n")))
}

// LoadMapFile reads a map text file and returns its rows re-joined with
// single spaces, ready to be used as a level layout.
func LoadMapFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map file: %w", err)
	}
	defer f.Close()

	tiles, err := ParseMap(f)
	if err != nil {
		return nil, fmt.Errorf("map file '%s': %w", path, err)
	}
	layout := make([]string, len(tiles))
	for i, row := range tiles {
		layout[i] = strings.Join(row, " ")
	}
	return layout, nil
}

func checkRectangular(rows [][]string) error {
	if len(rows) == 0 {
		return ErrEmptyMap
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d tiles, want %d", ErrRaggedMap, i+1, len(row), width)
		}
	}
	return nil
}

// BuildWorld populates a fresh world for level. Static tokens are registered
// in scan order, then the player, then ghosts, then the random filler. This
// ordering decides which actor ActorAt reports when two share a tile.
func BuildWorld(level *LevelConfig, index int, rng *rand.Rand) (*World, error) {
	tiles, err := ParseLayout(level.Layout)
	if err != nil {
		return nil, err
	}
	height, width := len(tiles), len(tiles[0])
	w := NewWorld(width, height)
	w.level = index

	mode := level.Movement
	if mode == "" {
		mode = MoveSmooth
	}

	var player *Actor
	var ghosts []*Actor
	for y, row := range tiles {
		for x, token := range row {
			kind, ok := level.Legend[token]
			if !ok {
				continue
			}
			p := Position{X: x, Y: y}
			switch {
			case kind == KindPlayer:
				player = NewPlayer(p, mode)
			case kind == KindGhost:
				ghosts = append(ghosts, NewMonster(kind, p, level.MonsterDelay, level.GhostStep))
			case kind.IsMonster():
				w.Add(NewMonster(kind, p, level.MonsterDelay, level.GhostStep))
			default:
				w.Add(NewActor(kind, p))
			}
		}
	}
	if player == nil {
		return nil, ErrNoPlayer
	}
	w.Add(player)
	for _, g := range ghosts {
		w.Add(g)
	}

	if err := placeFiller(w, level.Filler, rng); err != nil {
		return nil, err
	}
	return w, nil
}

// placeFiller drops Count actors on uniformly sampled unoccupied tiles.
func placeFiller(w *World, filler FillerConfig, rng *rand.Rand) error {
	placed, attempts := 0, 0
	for placed < filler.Count {
		if attempts >= MaxFillerAttempts {
			return fmt.Errorf("%w: placed %d of %d %s", ErrNoFreeTile, placed, filler.Count, filler.Kind)
		}
		attempts++
		p := Position{X: rng.IntN(w.width), Y: rng.IntN(w.height)}
		if w.ActorAt(p) != nil {
			continue
		}
		w.Add(NewActor(filler.Kind, p))
		placed++
	}
	return nil
}
