package engine

// Registry is the insertion-ordered set of live actors for one level.
// Slots are never reused, so an ActorID stays valid (or nil) for the lifetime
// of the registry and removal during a tick never shifts later actors.
type Registry struct {
	slots []*Actor
	live  int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a and assigns its ID.
func (r *Registry) Add(a *Actor) ActorID {
	a.ID = ActorID(len(r.slots))
	r.slots = append(r.slots, a)
	r.live++
	return a.ID
}

// Remove drops a from the registry. Removing an absent actor is a no-op.
func (r *Registry) Remove(a *Actor) bool {
	if a == nil || int(a.ID) < 0 || int(a.ID) >= len(r.slots) || r.slots[a.ID] != a {
		return false
	}
	r.slots[a.ID] = nil
	r.live--
	return true
}

// Get returns the live actor with the given ID, or nil.
func (r *Registry) Get(id ActorID) *Actor {
	if int(id) < 0 || int(id) >= len(r.slots) {
		return nil
	}
	return r.slots[id]
}

// Contains reports whether a is still registered.
func (r *Registry) Contains(a *Actor) bool {
	return a != nil && r.Get(a.ID) == a
}

// ActorAt returns the first actor, in registration order, sitting exactly on p.
func (r *Registry) ActorAt(p Position) *Actor {
	target := p.point()
	for _, a := range r.slots {
		if a != nil && a.at == target {
			return a
		}
	}
	return nil
}

// KindAt reports whether any actor of kind k sits exactly on p.
func (r *Registry) KindAt(p Position, k Kind) bool {
	target := p.point()
	for _, a := range r.slots {
		if a != nil && a.Kind == k && a.at == target {
			return true
		}
	}
	return false
}

// Live returns the live actors in registration order. The slice is a copy.
func (r *Registry) Live() []*Actor {
	out := make([]*Actor, 0, r.live)
	for _, a := range r.slots {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// Count returns how many live actors have kind k.
func (r *Registry) Count(k Kind) int {
	n := 0
	for _, a := range r.slots {
		if a != nil && a.Kind == k {
			n++
		}
	}
	return n
}

// Len returns the number of live actors.
func (r *Registry) Len() int {
	return r.live
}
