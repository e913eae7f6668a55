// ABOUTME: Shared UI state behind the compose widget handles (NSFW toggle, preview, view, busy)
// ABOUTME: Mutated from tea.Cmd goroutines, read by View; a mutex guards every field

package interactive

import (
	"sync"

	"github.com/mauromedda/pi-post-go/internal/compose"
	"github.com/mauromedda/pi-post-go/internal/transcode"
)

// State is the screen state the widget drives through its handles.
// Model values share one *State, the way tea copies models but keeps pointers.
type State struct {
	mu          sync.Mutex
	nsfwVisible bool
	label       string
	preview     []byte
	busy        bool
	refreshed   string
}

// NewState returns an empty screen state.
func NewState() *State { return &State{} }

// Handles exposes s as the widget's injected controls.
func (s *State) Handles() compose.Handles {
	return compose.Handles{
		NSFW:    nsfwHandle{s},
		Preview: previewHandle{s},
		View:    viewHandle{s},
		Busy:    busyHandle{s},
	}
}

type snapshot struct {
	nsfwVisible bool
	label       string
	preview     []byte
	busy        bool
	refreshed   string
}

func (s *State) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		nsfwVisible: s.nsfwVisible,
		label:       s.label,
		preview:     s.preview,
		busy:        s.busy,
		refreshed:   s.refreshed,
	}
}

type nsfwHandle struct{ s *State }

func (h nsfwHandle) SetVisible(v bool) {
	h.s.mu.Lock()
	h.s.nsfwVisible = v
	h.s.mu.Unlock()
}

type previewHandle struct{ s *State }

func (h previewHandle) Show(res transcode.Result) {
	data, _ := res.Payload()
	h.s.mu.Lock()
	h.s.label = res.Label()
	h.s.preview = data
	h.s.mu.Unlock()
}

func (h previewHandle) Clear() {
	h.s.mu.Lock()
	h.s.label = ""
	h.s.preview = nil
	h.s.mu.Unlock()
}

type viewHandle struct{ s *State }

func (h viewHandle) RefreshReplies(parent string) {
	h.s.mu.Lock()
	h.s.refreshed = "reply posted to " + parent
	h.s.mu.Unlock()
}

func (h viewHandle) Reload() {
	h.s.mu.Lock()
	h.s.refreshed = "posted"
	h.s.mu.Unlock()
}

type busyHandle struct{ s *State }

func (h busyHandle) Begin() func() {
	h.s.mu.Lock()
	h.s.busy = true
	h.s.mu.Unlock()
	return func() {
		h.s.mu.Lock()
		h.s.busy = false
		h.s.mu.Unlock()
	}
}
