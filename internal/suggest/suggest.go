// ABOUTME: Autocomplete controller: local recency entries plus at most one in-flight remote lookup
// ABOUTME: Input renders synchronously; Query.Run suspends; Apply merges results and frees the gate

package suggest

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	pilog "github.com/mauromedda/pi-post-go/internal/log"
	"github.com/mauromedda/pi-post-go/internal/mention"
)

// State is the controller's position in the suggestion cycle.
type State int

const (
	Idle State = iota
	RenderedLocal
	AwaitingRemote
	RenderedMerged
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RenderedLocal:
		return "rendered-local"
	case AwaitingRemote:
		return "awaiting-remote"
	case RenderedMerged:
		return "rendered-merged"
	default:
		return "unknown"
	}
}

// Source tags where a suggestion entry came from.
type Source int

const (
	SourceLocal Source = iota
	SourceAuto
)

// Entry is one visible suggestion.
type Entry struct {
	Text   string
	Source Source
}

// LocalSource supplies the recency-cache entries shown on every keystroke.
type LocalSource interface {
	Rendered() []string
}

// Searcher performs the remote lookup for a token without its marker.
type Searcher interface {
	Search(ctx context.Context, id string) ([]string, error)
}

// Controller owns the suggestion list for one input field.
// It is safe for concurrent use.
type Controller struct {
	local  LocalSource
	search Searcher
	gate   *semaphore.Weighted

	mu      sync.Mutex
	entries []Entry
	state   State
}

// New creates a controller in the Idle state.
func New(local LocalSource, search Searcher) *Controller {
	return &Controller{
		local:  local,
		search: search,
		gate:   semaphore.NewWeighted(1),
	}
}

// Query is an admitted remote lookup. It holds the controller's gate until
// its Response is applied.
type Query struct {
	c     *Controller
	Token string
	ID    string
	once  sync.Once
}

// Response is the outcome of a Query.
type Response struct {
	Query   *Query
	Results []string
	Err     error
}

// Input handles a content change. The local entries are re-rendered before
// it returns. A Query is returned only when text ends in a token and no
// other lookup is outstanding; otherwise the trigger is dropped.
func (c *Controller) Input(text string) (*Query, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.renderLocalLocked()
	c.state = RenderedLocal

	token, ok := mention.FindTrailing(text)
	if !ok {
		return nil, false
	}
	if !c.gate.TryAcquire(1) {
		pilog.Debug("suggest: lookup in flight, dropping trigger for %q", token)
		return nil, false
	}
	c.state = AwaitingRemote
	return &Query{c: c, Token: token, ID: mention.Query(token)}, true
}

// Run performs the remote lookup. It may run on any goroutine.
func (q *Query) Run(ctx context.Context) Response {
	results, err := q.c.search.Search(ctx, q.ID)
	return Response{Query: q, Results: results, Err: err}
}

// Apply merges a response into the list. Non-empty results are appended as
// auto entries after whatever local baseline is current; empty results and
// errors leave the list alone. The gate is released once per Query no
// matter how often its response is applied.
func (c *Controller) Apply(r Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.Err != nil {
		pilog.Debug("suggest: search failed: %v", r.Err)
	}
	if r.Err == nil && len(r.Results) > 0 {
		for _, s := range r.Results {
			c.entries = append(c.entries, Entry{Text: s, Source: SourceAuto})
		}
		c.state = RenderedMerged
	} else {
		c.state = RenderedLocal
	}

	if q := r.Query; q != nil && q.c == c {
		q.once.Do(func() { c.gate.Release(1) })
	}
}

// Trigger runs Input and, when a lookup is admitted, runs it and applies the
// result on a new goroutine. The returned channel closes once the
// continuation finishes; it is already closed when nothing was admitted.
func (c *Controller) Trigger(ctx context.Context, text string) <-chan struct{} {
	done := make(chan struct{})
	q, ok := c.Input(text)
	if !ok {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		c.Apply(q.Run(ctx))
	}()
	return done
}

// Select splices suggestion into field.
func (c *Controller) Select(field, suggestion string) string {
	return mention.Splice(field, suggestion)
}

// Entries returns a copy of the visible suggestions, local first.
func (c *Controller) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InFlight reports whether a remote lookup holds the gate.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gate.TryAcquire(1) {
		c.gate.Release(1)
		return false
	}
	return true
}

// renderLocalLocked drops auto entries and rebuilds the local ones.
func (c *Controller) renderLocalLocked() {
	c.entries = c.entries[:0]
	if c.local == nil {
		return
	}
	for _, s := range c.local.Rendered() {
		c.entries = append(c.entries, Entry{Text: s, Source: SourceLocal})
	}
}
