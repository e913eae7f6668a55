// ABOUTME: Local stand-in for the discussion server: fuzzy mention search and post creation
// ABOUTME: Speaks the same form/JSON wire format as production so the client can run offline

package devserver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mailru/easyjson"
	"github.com/oklog/ulid/v2"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/unicode/norm"

	"github.com/mauromedda/pi-post-go/internal/api"
	pihttp "github.com/mauromedda/pi-post-go/internal/http"
	pilog "github.com/mauromedda/pi-post-go/internal/log"
	"github.com/mauromedda/pi-post-go/internal/mention"
	"github.com/mauromedda/pi-post-go/internal/transcode"
)

// MaxResults caps the suggestions returned per search.
const MaxResults = 8

// maxFormBytes leaves room for a full-budget image plus the other fields.
const maxFormBytes = 4 << 20

// Seed names served before any post is accepted.
var (
	DefaultUsers = []string{"alice", "bob", "bobby", "carol", "dave", "erin"}
	DefaultTags  = []string{"news", "go", "golang", "meta", "art", "music"}
)

// Post is an accepted submission. Replies may name it by ID or Key.
type Post struct {
	ID      int
	Key     string
	Content string
	Image   string
	NSFW    bool
	Parent  string
	At      time.Time
}

// Server holds the known names and accepted posts. Its ULID
// entropy is used under mu only.
type Server struct {
	mu      sync.Mutex
	names   []string // marker-prefixed, in insertion order
	posts   []Post
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// New creates a server seeded with users and tags, given without markers.
func New(users, tags []string) *Server {
	s := &Server{now: time.Now, entropy: ulid.Monotonic(rand.Reader, 0)}
	for _, u := range users {
		s.learn("@" + u)
	}
	for _, t := range tags {
		s.learn("#" + t)
	}
	return s
}

func (s *Server) learn(token string) {
	if !slices.Contains(s.names, token) {
		s.names = append(s.names, token)
	}
}

// Search ranks known names against id, a token without its marker.
func (s *Server) Search(id string) []string {
	id = strings.TrimSpace(norm.NFC.String(id))
	if id == "" {
		return nil
	}

	s.mu.Lock()
	names := slices.Clone(s.names)
	s.mu.Unlock()

	bare := make([]string, len(names))
	for i, n := range names {
		bare[i] = norm.NFC.String(n[1:])
	}
	matches := fuzzy.Find(id, bare)
	out := make([]string, 0, min(len(matches), MaxResults))
	for _, m := range matches {
		if len(out) == MaxResults {
			break
		}
		out = append(out, names[m.Index])
	}
	return out
}

// Posts returns the accepted posts, oldest first.
func (s *Server) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.posts)
}

// create validates and stores a post, returning the wire reply.
func (s *Server) create(p api.NewPost) string {
	if strings.TrimSpace(p.Content) == "" && p.Image == "" {
		return "post is empty"
	}
	if len(p.Image) > transcode.DefaultBudget {
		return fmt.Sprintf("image too large: %d > %d", len(p.Image), transcode.DefaultBudget)
	}
	if p.Image != "" && !strings.HasPrefix(p.Image, "data:image/") {
		return "image must be a data URI"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Parent != "" && !s.hasPostLocked(p.Parent) {
		return "no such thread: " + p.Parent
	}
	for _, tok := range mention.FindAll(p.Content) {
		s.learn(tok)
	}
	at := s.now()
	s.posts = append(s.posts, Post{
		ID:      len(s.posts) + 1,
		Key:     ulid.MustNew(ulid.Timestamp(at), s.entropy).String(),
		Content: p.Content,
		Image:   p.Image,
		NSFW:    p.NSFW,
		Parent:  p.Parent,
		At:      at,
	})
	return "ok"
}

func (s *Server) hasPostLocked(id string) bool {
	for _, p := range s.posts {
		if fmt.Sprint(p.ID) == id || p.Key == id {
			return true
		}
	}
	return false
}

// Handler routes the search and creation endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+api.SearchPath, s.handleSearch)
	mux.HandleFunc("POST "+api.CreatePath, s.handleCreate)
	return mux
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	res := api.SearchResults(s.Search(r.PostForm.Get("id")))
	w.Header().Set("Content-Type", "application/json")
	if _, _, err := easyjson.MarshalToHTTPResponseWriter(res, w); err != nil {
		pilog.Debug("devserver: writing search results: %v", err)
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "request too large or malformed", http.StatusBadRequest)
		return
	}
	f := r.PostForm
	reply := s.create(api.NewPost{
		Content: f.Get(api.FieldContent),
		Image:   f.Get(api.FieldImage),
		NSFW:    f.Get(api.FieldNSFW) == "1",
		Parent:  f.Get(api.FieldParent),
	})
	pilog.Info("devserver: create parent=%q -> %s", f.Get(api.FieldParent), reply)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, reply)
}

// ListenAndServe serves h on addr until ctx is cancelled. ready, if not nil,
// receives the bound address once the listener is open.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, ready func(addr string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("dev server listen: %w", err)
	}
	srv := pihttp.SecureHTTPServer(h, ln.Addr().String())
	if ready != nil {
		ready(ln.Addr().String())
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dev server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("dev server shutdown: %w", err)
		}
		return nil
	}
}
