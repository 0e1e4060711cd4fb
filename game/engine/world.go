package engine

// World is the simulation context handed to every actor step. It is the only
// way an actor can see or change its siblings.
type World struct {
	reg          *Registry
	player       *Actor
	monsterCount int
	keyCollected bool
	width        int
	height       int
	level        int
	events       []Event
}

// NewWorld creates an empty world of the given stage size.
func NewWorld(width, height int) *World {
	return &World{
		reg:    NewRegistry(),
		width:  width,
		height: height,
	}
}

// ActorAt returns the first actor registered on p, or nil.
func (w *World) ActorAt(p Position) *Actor {
	return w.reg.ActorAt(p)
}

// Add registers a. Squishy monsters count toward the live monster total and
// the first player added becomes the world's player. Ghosts are not counted.
func (w *World) Add(a *Actor) {
	w.reg.Add(a)
	if a.Kind.IsSquishy() {
		w.monsterCount++
	}
	if a.Kind == KindPlayer && w.player == nil {
		w.player = a
	}
}

// Remove drops a from the registry without touching any counter.
func (w *World) Remove(a *Actor) {
	w.reg.Remove(a)
}

// Player returns the live player, or nil once it has been killed.
func (w *World) Player() *Actor {
	return w.player
}

// MonsterCount returns the number of squishy monsters still alive.
func (w *World) MonsterCount() int {
	return w.monsterCount
}

// KeyCollected reports whether the level key has been picked up.
func (w *World) KeyCollected() bool {
	return w.keyCollected
}

// Registry exposes the underlying registry for read-only iteration.
func (w *World) Registry() *Registry {
	return w.reg
}

// Size returns the stage width and height in tiles.
func (w *World) Size() (int, int) {
	return w.width, w.height
}

// kill removes a monster. Squishy monsters also leave the live monster count.
func (w *World) kill(m *Actor) {
	if !w.reg.Contains(m) {
		return
	}
	w.reg.Remove(m)
	if m.Kind.IsSquishy() {
		w.monsterCount--
	}
	w.emit(EventMonsterSquished, m.Tile(), "")
}

// killPlayer ends the game. The player's actor stays registered so it can
// still be drawn.
func (w *World) killPlayer() {
	if w.player == nil {
		return
	}
	w.emit(EventPlayerDied, w.player.Tile(), "")
	w.player = nil
}

// advance steps every live actor once in registration order and returns the
// events raised. Actors removed earlier in the same tick are skipped. The
// pass keeps going after the player dies.
func (w *World) advance(in Input) []Event {
	for _, a := range w.reg.Live() {
		if !w.reg.Contains(a) {
			continue
		}
		w.step(a, in)
	}
	return w.drainEvents()
}

func (w *World) emit(t EventType, p Position, msg string) {
	w.events = append(w.events, Event{Type: t, Position: p, Message: msg, Level: w.level})
}

// drainEvents returns and clears the events raised so far.
func (w *World) drainEvents() []Event {
	ev := w.events
	w.events = nil
	return ev
}
