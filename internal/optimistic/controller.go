package optimistic

import (
	"context"
)

func NewController(remote Toggler, opts Options) *Controller {
	return &Controller{
		items:  make(map[string]*entry),
		remote: remote,
		opts:   opts,
	}
}

// Hydrate replaces local state with a fresh fetch. Toggles still in flight
// complete without touching the new state.
func (c *Controller) Hydrate(items []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.items = make(map[string]*entry, len(items))
	c.order = c.order[:0]

	for _, it := range items {
		if it.LikesCount < 0 {
			it.LikesCount = 0
		}

		if _, dup := c.items[it.ID]; !dup {
			c.order = append(c.order, it.ID)
		}

		c.items[it.ID] = &entry{item: it}
	}
}

// returns the displayed items in feed order
func (c *Controller) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].item)
	}

	return out
}

func (c *Controller) Item(id string) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[id]
	if !ok {
		return Item{}, false
	}

	return e.item, true
}

// reports whether a toggle for id is waiting on the server
func (c *Controller) InFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[id]
	return ok && e.inflight > 0
}

// Observe adopts a like count pushed by the server for an idle item. Items
// with a toggle in flight or queued keep their local state.
func (c *Controller) Observe(id string, likesCount int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[id]
	if !ok || e.inflight > 0 || e.deferred > 0 {
		return false
	}

	e.item.LikesCount = max(likesCount, 0)

	return true
}

// Begin applies the optimistic toggle for id. Callers send the returned
// pending with Send unless it is Deferred.
func (c *Controller) Begin(id string) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[id]
	if !ok {
		return nil, ErrUnknownItem
	}

	before := e.item
	e.item = Apply(e.item)

	p := &Pending{
		ID:     id,
		Before: before,
		After:  e.item,
		gen:    c.gen,
	}

	if c.opts.SerializePerItem && e.inflight > 0 {
		e.deferred++
		p.Deferred = true

		return p, nil
	}

	e.inflight++

	return p, nil
}

// performs the remote toggle for p
func (c *Controller) Send(ctx context.Context, p *Pending) (*Result, error) {
	return c.remote.ToggleLike(ctx, p.ID)
}

// Complete settles p with the remote outcome. Any error rolls the item back
// to its state before p, or by one toggle when others have since touched it. The returned pending, if any, carries queued taps that now
// need to be sent.
func (c *Controller) Complete(p *Pending, result *Result, err error) *Pending {
	next := c.complete(p, result, err)

	if err != nil && c.opts.OnError != nil {
		c.opts.OnError(p.ID, err)
	}

	return next
}

func (c *Controller) complete(p *Pending, result *Result, err error) *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[p.ID]
	if !ok || p.gen != c.gen {
		// superseded by a fetch
		return nil
	}

	if e.inflight > 0 {
		e.inflight--
	}

	if err != nil {
		if e.inflight == 0 && e.deferred == 0 && e.item == p.After {
			// nothing else touched the item; restore exactly, even when the
			// hydrated state was liked with a zero count
			e.item = p.Before
		} else {
			e.item = Invert(e.item)
		}
	} else if c.opts.Reconcile == ReconcileServer && result != nil && e.inflight == 0 && e.deferred == 0 {
		e.item.Liked = result.Liked
		e.item.LikesCount = max(result.LikesCount, 0)
	}

	if !c.opts.SerializePerItem || e.deferred == 0 {
		return nil
	}

	taps := e.deferred
	e.deferred = 0

	// an even number of queued taps cancels out
	if taps%2 == 0 {
		return nil
	}

	e.inflight++

	return &Pending{
		ID:     p.ID,
		Before: Invert(e.item),
		After:  e.item,
		gen:    c.gen,
	}
}

// Toggle runs a full toggle for callers outside an event loop. The first
// remote error is returned after rollback; a deferred tap returns nil.
func (c *Controller) Toggle(ctx context.Context, id string) error {
	p, err := c.Begin(id)
	if err != nil {
		return err
	}

	if p.Deferred {
		return nil
	}

	var firstErr error

	for p != nil {
		result, err := c.Send(ctx, p)
		if err != nil && firstErr == nil {
			firstErr = err
		}

		p = c.Complete(p, result, err)
	}

	return firstErr
}
