package engine

// step advances a single actor by one tick.
func (w *World) step(a *Actor, in Input) {
	switch a.Kind {
	case KindPlayer:
		if a == w.player {
			w.movePlayer(a, in)
		}
	case KindGhost:
		w.moveGhost(a)
	case KindSquishy:
		w.moveSquishy(a, true, true)
	case KindSquishyHorizontal:
		w.moveSquishy(a, true, false)
	case KindSquishyVertical:
		w.moveSquishyVertical(a)
	}
	// Stars, keys, walls, doors and boxes never move on their own.
}

// movePlayer applies one tick of player input, then collects whatever sits
// on the destination tile.
func (w *World) movePlayer(p *Actor, in Input) {
	if in.Pressed != NoDirection {
		p.RegisterEvent(in.Pressed)
	}

	var dx, dy int
	switch p.Player.Mode {
	case MovePrecise:
		dx, dy = p.Player.LastEvent.Delta()
		p.Player.LastEvent = NoDirection
	default:
		dx, dy = w.smoothDelta(p, in.Held)
	}
	if dx == 0 && dy == 0 {
		return
	}

	dest := p.Tile().Add(dx, dy)
	w.collect(p, dest)
	p.SetTile(dest)
}

// smoothDelta evaluates each held direction independently in the fixed order
// left, right, up, down. A wall cancels that direction; a box must be pushable
// out of the way or the direction is cancelled. Pushes are committed only for
// the directions that survive the diagonal corner check.
func (w *World) smoothDelta(p *Actor, held Keys) (int, int) {
	type axisStep struct {
		dx, dy int
		box    *Actor
	}

	origin := p.Tile()
	var dx, dy int
	var steps []axisStep
	for _, d := range moveOrder {
		if !held.Has(d) {
			continue
		}
		ddx, ddy := d.Delta()
		var box *Actor
		if occupant := w.ActorAt(origin.Add(ddx, ddy)); occupant != nil {
			if occupant.Kind == KindWall {
				continue
			}
			if occupant.Kind.Pushable() {
				if !w.canPush(occupant, ddx, ddy) {
					continue
				}
				box = occupant
			}
		}
		steps = append(steps, axisStep{dx: ddx, dy: ddy, box: box})
		dx += ddx
		dy += ddy
	}

	// Each axis was validated on its own; a combined diagonal step must also
	// land on a tile the player could enter, otherwise keep only the x axis.
	dropY := false
	if dx != 0 && dy != 0 {
		corner := w.ActorAt(origin.Add(dx, dy))
		if corner != nil && (corner.Kind == KindWall || corner.Kind.Pushable()) {
			dropY = true
			dy = 0
		}
	}

	for _, s := range steps {
		if s.box == nil || (dropY && s.dy != 0) {
			continue
		}
		w.push(s.box, s.dx, s.dy)
	}
	return dx, dy
}

// collect picks up stars and keys lying on dest.
func (w *World) collect(p *Actor, dest Position) {
	if a := w.ActorAt(dest); a != nil && a.Kind == KindStar {
		p.Player.Stars++
		w.Remove(a)
		w.emit(EventStarCollected, dest, "")
	}
	if a := w.ActorAt(dest); a != nil && a.Kind == KindKey {
		w.keyCollected = true
		w.Remove(a)
		w.emit(EventKeyCollected, dest, "")
	}
}

// push moves box b by dx, dy. It fails without side effects only when a wall
// is in the way. A box in the way is pushed along too, but its own outcome is
// ignored: the pushing box always advances. A monster in the way is squished.
func (w *World) push(b *Actor, dx, dy int) bool {
	if !w.canPush(b, dx, dy) {
		return false
	}
	dest := b.Tile().Add(dx, dy)
	occupant := w.ActorAt(dest)
	b.moveBy(dx, dy)
	w.emit(EventBoxPushed, dest, "")
	if occupant != nil {
		switch {
		case occupant.Kind.Pushable():
			w.push(occupant, dx, dy)
		case occupant.Kind.IsMonster():
			w.kill(occupant)
		}
	}
	return true
}

// canPush reports whether box b can move by dx, dy: only a wall directly
// ahead stops it.
func (w *World) canPush(b *Actor, dx, dy int) bool {
	occupant := w.ActorAt(b.Tile().Add(dx, dy))
	return occupant == nil || occupant.Kind != KindWall
}

// moveGhost closes in on the player by one ghost step along a single axis,
// x before y, never overshooting the player's coordinate.
func (w *World) moveGhost(g *Actor) {
	if w.player == nil {
		return
	}
	target := w.player.at
	step := g.Monster.Step
	switch {
	case target.x > g.at.x:
		g.at.x += min(step, target.x-g.at.x)
	case target.x < g.at.x:
		g.at.x -= min(step, g.at.x-target.x)
	case target.y > g.at.y:
		g.at.y += min(step, target.y-g.at.y)
	case target.y < g.at.y:
		g.at.y -= min(step, g.at.y-target.y)
	}
	w.checkPlayerDeath(g)
}

// moveSquishy advances a patrolling monster one tile every Delay ticks along
// the enabled axes. After moving it looks at the tile ahead and reverses if a
// wall or box is there, so a blocked monster turns around without moving.
func (w *World) moveSquishy(m *Actor, alongX, alongY bool) {
	ms := m.Monster
	if ms.DelayCount == 0 {
		if !w.monsterBlocked(m, alongX, alongY) {
			m.moveBy(axis(ms.DX, alongX), axis(ms.DY, alongY))
		}
		if w.monsterBlocked(m, alongX, alongY) {
			if alongX {
				ms.DX = -ms.DX
			}
			if alongY {
				ms.DY = -ms.DY
			}
		}
	}
	ms.DelayCount = (ms.DelayCount + 1) % ms.Delay
	w.checkPlayerDeath(m)
}

// moveSquishyVertical patrols the y axis. Another squishy monster ahead stops
// it for the tick; only walls and boxes turn it around.
func (w *World) moveSquishyVertical(m *Actor) {
	ms := m.Monster
	ahead := w.ActorAt(m.Tile().Add(0, ms.DY))
	if ms.DelayCount == 0 {
		if ahead == nil || !(ahead.Kind.BlocksMonsters() || ahead.Kind.IsSquishy()) {
			m.moveBy(0, ms.DY)
		}
		if ahead != nil && ahead.Kind.BlocksMonsters() {
			ms.DY = -ms.DY
		}
	}
	ms.DelayCount = (ms.DelayCount + 1) % ms.Delay
	w.checkPlayerDeath(m)
}

func (w *World) monsterBlocked(m *Actor, alongX, alongY bool) bool {
	ms := m.Monster
	ahead := w.ActorAt(m.Tile().Add(axis(ms.DX, alongX), axis(ms.DY, alongY)))
	return ahead != nil && ahead.Kind.BlocksMonsters()
}

// checkPlayerDeath ends the game when monster m shares the player's spot.
func (w *World) checkPlayerDeath(m *Actor) {
	if w.player != nil && m.at == w.player.at {
		w.killPlayer()
	}
}

func axis(v int, enabled bool) int {
	if enabled {
		return v
	}
	return 0
}
