// ABOUTME: Tests for the autocomplete controller: admission gate, merge order, stale responses, splice
// ABOUTME: Remote lookups are faked with a blocking searcher to hold queries in flight

package suggest

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeLocal struct {
	mu     sync.Mutex
	tokens []string
}

func (f *fakeLocal) Rendered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tokens)
}

func (f *fakeLocal) set(tokens ...string) {
	f.mu.Lock()
	f.tokens = tokens
	f.mu.Unlock()
}

type fakeSearcher struct {
	calls   atomic.Int32
	release chan struct{}
	results []string
	err     error

	mu  sync.Mutex
	ids []string
}

func (f *fakeSearcher) Search(ctx context.Context, id string) ([]string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.ids = append(f.ids, id)
	f.mu.Unlock()
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func texts(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("continuation did not finish")
	}
}

func TestTrigger_OneQueryInFlight(t *testing.T) {
	t.Parallel()

	local := &fakeLocal{tokens: []string{"@old"}}
	search := &fakeSearcher{release: make(chan struct{}), results: []string{"@bob"}}
	c := New(local, search)

	first := c.Trigger(context.Background(), "hi @b")
	if c.State() != AwaitingRemote || !c.InFlight() {
		t.Fatalf("after first trigger: state=%v inflight=%v", c.State(), c.InFlight())
	}

	local.set("@old", "@new")
	second := c.Trigger(context.Background(), "hi @bo")
	select {
	case <-second:
	default:
		t.Fatal("second trigger should be dropped immediately")
	}
	if got := texts(c.Entries()); !slices.Equal(got, []string{"@old", "@new"}) {
		t.Errorf("entries after second keystroke = %v, want local re-render", got)
	}

	close(search.release)
	wait(t, first)

	if n := search.calls.Load(); n != 1 {
		t.Errorf("remote calls = %d, want 1", n)
	}
	if !slices.Equal(search.ids, []string{"b"}) {
		t.Errorf("searched ids = %v, want [b]", search.ids)
	}
	if c.InFlight() {
		t.Error("gate still held after continuation")
	}
}

func TestTrigger_NewQueryAfterResolution(t *testing.T) {
	t.Parallel()

	search := &fakeSearcher{results: []string{"#go"}}
	c := New(&fakeLocal{}, search)

	wait(t, c.Trigger(context.Background(), "#g"))
	wait(t, c.Trigger(context.Background(), "#go"))
	if n := search.calls.Load(); n != 2 {
		t.Errorf("remote calls = %d, want 2", n)
	}
}

func TestInput_NoTrailingToken(t *testing.T) {
	t.Parallel()

	search := &fakeSearcher{}
	c := New(&fakeLocal{tokens: []string{"@a", "#b"}}, search)

	for _, text := range []string{"", "plain words", "hello @bob "} {
		q, ok := c.Input(text)
		if ok || q != nil {
			t.Errorf("Input(%q) admitted a query", text)
		}
		if c.State() != RenderedLocal {
			t.Errorf("Input(%q): state = %v, want rendered-local", text, c.State())
		}
		if got := texts(c.Entries()); !slices.Equal(got, []string{"@a", "#b"}) {
			t.Errorf("Input(%q): entries = %v", text, got)
		}
	}
	if search.calls.Load() != 0 {
		t.Error("search called without a trailing token")
	}
}

func TestApply_MergesAutoEntriesAfterLocal(t *testing.T) {
	t.Parallel()

	c := New(&fakeLocal{tokens: []string{"@a"}}, &fakeSearcher{results: []string{"@bob", "@bobby"}})

	q, ok := c.Input("cc @bo")
	if !ok {
		t.Fatal("query not admitted")
	}
	if q.Token != "@bo" || q.ID != "bo" {
		t.Errorf("query token=%q id=%q", q.Token, q.ID)
	}
	c.Apply(q.Run(context.Background()))

	want := []Entry{{"@a", SourceLocal}, {"@bob", SourceAuto}, {"@bobby", SourceAuto}}
	if got := c.Entries(); !slices.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
	if c.State() != RenderedMerged {
		t.Errorf("state = %v, want rendered-merged", c.State())
	}

	c.Input("cc @bob and")
	if got := c.Entries(); !slices.Equal(got, []Entry{{"@a", SourceLocal}}) {
		t.Errorf("auto entries not cleared on keystroke: %v", got)
	}
}

func TestApply_EmptyOrFailedLeavesLocal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		results []string
		err     error
	}{
		{"empty", nil, nil},
		{"failure", []string{"@ignored"}, errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := New(&fakeLocal{tokens: []string{"@a"}}, &fakeSearcher{results: tt.results, err: tt.err})
			wait(t, c.Trigger(context.Background(), "@x"))

			if got := texts(c.Entries()); !slices.Equal(got, []string{"@a"}) {
				t.Errorf("entries = %v, want local only", got)
			}
			if c.State() != RenderedLocal {
				t.Errorf("state = %v, want rendered-local", c.State())
			}
			if c.InFlight() {
				t.Error("gate not released")
			}
		})
	}
}

func TestApply_StaleResponseUsesCurrentBaseline(t *testing.T) {
	t.Parallel()

	local := &fakeLocal{tokens: []string{"@a"}}
	c := New(local, &fakeSearcher{results: []string{"@early"}})

	q, ok := c.Input("@e")
	if !ok {
		t.Fatal("query not admitted")
	}
	resp := q.Run(context.Background())

	local.set("@a", "@z")
	if _, ok := c.Input("@ea something else"); ok {
		t.Fatal("second query admitted while first outstanding")
	}
	c.Apply(resp)

	if got := texts(c.Entries()); !slices.Equal(got, []string{"@a", "@z", "@early"}) {
		t.Errorf("entries = %v, want stale results after current baseline", got)
	}
}

func TestApply_ReleasesOncePerQuery(t *testing.T) {
	t.Parallel()

	c := New(&fakeLocal{}, &fakeSearcher{results: []string{"@a"}})
	q, _ := c.Input("@a")
	resp := q.Run(context.Background())

	c.Apply(resp)
	c.Apply(resp)
	c.Apply(Response{})

	if c.InFlight() {
		t.Error("gate held after apply")
	}
	if _, ok := c.Input("@a"); !ok {
		t.Error("gate not available after repeated apply")
	}
	if !c.InFlight() {
		t.Error("second query should hold the gate")
	}
}

func TestControllers_IndependentGates(t *testing.T) {
	t.Parallel()

	a := New(&fakeLocal{}, &fakeSearcher{})
	b := New(&fakeLocal{}, &fakeSearcher{})

	if _, ok := a.Input("@x"); !ok {
		t.Fatal("a: not admitted")
	}
	if _, ok := b.Input("@y"); !ok {
		t.Error("b blocked by a's outstanding query")
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	tests := []struct {
		field, suggestion, want string
	}{
		{"reply to @b", "@bob", "reply to @bob "},
		{"hi", "😀", "hi😀"},
		{"tag #g", "#golang", "tag #golang "},
		{"no partial", "@bob", "no partial@bob "},
	}
	for _, tt := range tests {
		if got := c.Select(tt.field, tt.suggestion); got != tt.want {
			t.Errorf("Select(%q, %q) = %q, want %q", tt.field, tt.suggestion, got, tt.want)
		}
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	if Idle.String() != "idle" || RenderedMerged.String() != "rendered-merged" || State(42).String() != "unknown" {
		t.Error("unexpected State strings")
	}
	if New(nil, nil).State() != Idle {
		t.Error("new controller should be idle")
	}
}
