package optimistic

import (
	"context"
	"errors"
	"sync"
)

var ErrUnknownItem = errors.New("optimistic: item not loaded")

// a likeable item as displayed to the user
type Item struct {
	ID         string `json:"id"`
	LikesCount int    `json:"likes_count"`
	Liked      bool   `json:"liked"`
}

// body returned by the like toggle endpoint
type Result struct {
	PostID     string `json:"post_id"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

// Toggler performs the authoritative toggle on the server.
type Toggler interface {
	ToggleLike(ctx context.Context, id string) (*Result, error)
}

type ReconcileMode int

const (
	// keep the optimistic state after a successful toggle
	ReconcileNone ReconcileMode = iota
	// adopt the server's liked/likes_count after a successful toggle
	ReconcileServer
)

type Options struct {
	Reconcile ReconcileMode

	// queue taps on an item while its toggle is in flight
	SerializePerItem bool

	// called outside the lock after a failed toggle was rolled back
	OnError func(id string, err error)
}

// Pending is one toggle that has been applied locally. Deferred pendings are
// already visible but must not be sent; the controller hands out a sendable
// pending for them from Complete.
type Pending struct {
	ID       string
	Before   Item
	After    Item
	Deferred bool

	gen uint64
}

type entry struct {
	item     Item
	inflight int
	deferred int
}

// owns the displayed like state for a feed
type Controller struct {
	mu     sync.Mutex
	items  map[string]*entry
	order  []string
	gen    uint64
	remote Toggler
	opts   Options
}
