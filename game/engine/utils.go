package engine

import "math"

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Tile returns the tile a render item sits on, rounding toward the nearest
// tile for actors caught between two.
func (item RenderItem) Tile() Position {
	return Position{X: int(math.Round(item.X)), Y: int(math.Round(item.Y))}
}

// FindNearest finds the closest actor of the given kind to the player and
// returns its tile and distance.
func FindNearest(s *Snapshot, match func(Kind) bool) (Position, int, bool) {
	if s.Player == nil {
		return Position{}, -1, false
	}
	minDistance := -1
	var nearestPos Position
	found := false

	for _, item := range s.Actors {
		if !match(item.Kind) {
			continue
		}
		pos := item.Tile()
		distance := ManhattanDistance(*s.Player, pos)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearestPos = pos
			found = true
		}
	}

	return nearestPos, minDistance, found
}

// IsKind returns a matcher for FindNearest.
func IsKind(k Kind) func(Kind) bool {
	return func(other Kind) bool { return other == k }
}

// AnalyzeThreat assesses how close the nearest monster is to the player
func AnalyzeThreat(s *Snapshot) string {
	if !s.PlayerAlive {
		return "CRITICAL: Player is dead!"
	}

	_, distance, found := FindNearest(s, Kind.IsMonster)
	if !found {
		return "SAFE: No monsters left"
	}

	if distance <= 1 {
		return "DANGER: Monster adjacent!"
	} else if distance <= 3 {
		return "CAUTION: Monster nearby"
	}

	return "SAFE: Monsters are far away"
}

// CountKind counts the actors of a specific kind in the snapshot
func CountKind(s *Snapshot, kind Kind) int {
	count := 0
	for _, item := range s.Actors {
		if item.Kind == kind {
			count++
		}
	}
	return count
}

// RenderText draws the snapshot as rows of glyphs, one rune per tile. When
// two actors share a tile the one registered first wins, matching ActorAt.
func RenderText(s *Snapshot) []string {
	grid := make([][]rune, s.Height)
	for y := range grid {
		grid[y] = make([]rune, s.Width)
		for x := range grid[y] {
			grid[y][x] = '.'
		}
	}
	drawn := make(map[Position]bool, len(s.Actors))
	for _, item := range s.Actors {
		pos := item.Tile()
		if pos.X < 0 || pos.Y < 0 || pos.X >= s.Width || pos.Y >= s.Height || drawn[pos] {
			continue
		}
		drawn[pos] = true
		grid[pos.Y][pos.X] = item.Kind.Glyph()
	}
	rows := make([]string, s.Height)
	for y, row := range grid {
		rows[y] = string(row)
	}
	return rows
}

// DoorReachable reports whether the player can walk from its start tile to a
// door on the level's static layout, treating walls as the only obstacles.
func DoorReachable(level *LevelConfig) (bool, error) {
	tiles, err := ParseLayout(level.Layout)
	if err != nil {
		return false, err
	}
	height, width := len(tiles), len(tiles[0])

	var start Position
	found := false
	for y, row := range tiles {
		for x, token := range row {
			if level.Legend[token] == KindPlayer {
				start = Position{X: x, Y: y}
				found = true
			}
		}
	}
	if !found {
		return false, ErrNoPlayer
	}

	visited := map[Position]bool{start: true}
	queue := []Position{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if level.Legend[tiles[cur.Y][cur.X]] == KindDoor {
			return true, nil
		}
		for _, d := range moveOrder {
			next := cur.Add(d.Delta())
			if next.X < 0 || next.Y < 0 || next.X >= width || next.Y >= height || visited[next] {
				continue
			}
			if level.Legend[tiles[next.Y][next.X]] == KindWall {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return false, nil
}
