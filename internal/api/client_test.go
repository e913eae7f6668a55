// ABOUTME: Tests for the API client: form encoding, search decoding, retry policy, raw replies
// ABOUTME: Uses httptest.NewServer for deterministic, isolated test scenarios

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mailru/easyjson"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second, WithBackoff(time.Millisecond))
}

func TestSearch_SendsIDAndDecodes(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != SearchPath {
			t.Errorf("got %s %s, want POST %s", r.Method, r.URL.Path, SearchPath)
		}
		if got := r.FormValue("id"); got != "bo" {
			t.Errorf("id = %q, want bo", got)
		}
		w.Write([]byte(`["@bob", "@bobby"]`))
	})

	got, err := c.Search(context.Background(), "bo")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !slices.Equal(got, []string{"@bob", "@bobby"}) {
		t.Errorf("Search = %v", got)
	}
}

func TestSearch_NullAndEmpty(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"null", "[]", " [ ] "} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(body))
		})
		got, err := c.Search(context.Background(), "x")
		if err != nil {
			t.Errorf("body %q: err = %v", body, err)
		}
		if len(got) != 0 {
			t.Errorf("body %q: got %v, want empty", body, got)
		}
	}
}

func TestSearch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"malformed", http.StatusOK, `["@a",`},
		{"wrong type", http.StatusOK, `[1,2]`},
		{"object", http.StatusOK, `{"a":"b"}`},
		{"trailing data", http.StatusOK, `["@a"] ["@b"]`},
		{"not found", http.StatusNotFound, `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			if _, err := c.Search(context.Background(), "x"); err == nil {
				t.Error("Search: want error")
			}
		})
	}
}

func TestSearch_RetriesOn5xx(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`["#go"]`))
	})

	got, err := c.Search(context.Background(), "g")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !slices.Equal(got, []string{"#go"}) {
		t.Errorf("Search = %v", got)
	}
	if n := attempts.Load(); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestCreate_SendsFormAndReturnsRawReply(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != CreatePath {
			t.Errorf("path = %s, want %s", r.URL.Path, CreatePath)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		r.ParseForm()
		want := map[string]string{
			FieldContent: "hey @carol",
			FieldImage:   "data:image/png;base64,AAAA",
			FieldNSFW:    "1",
			FieldParent:  "p42",
		}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
		w.Write([]byte("ok"))
	})

	reply, err := c.Create(context.Background(), NewPost{
		Content: "hey @carol",
		Image:   "data:image/png;base64,AAAA",
		NSFW:    true,
		Parent:  "p42",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if reply != "ok" {
		t.Errorf("reply = %q, want ok", reply)
	}
}

func TestCreate_NeverRetried(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("database is down"))
	})

	reply, err := c.Create(context.Background(), NewPost{Content: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if reply != "database is down" {
		t.Errorf("reply = %q, want raw body", reply)
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestCreate_EmptyErrorBodyUsesStatus(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	reply, err := c.Create(context.Background(), NewPost{Content: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if reply != "403 Forbidden" {
		t.Errorf("reply = %q, want 403 Forbidden", reply)
	}
}

func TestCreate_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	if _, err := c.Create(context.Background(), NewPost{Content: "x"}); err == nil {
		t.Error("Create against closed server: want error")
	}
}

func TestNewPost_ValuesEmptyFlags(t *testing.T) {
	t.Parallel()

	v := NewPost{Content: "hi"}.Values()
	if v.Get(FieldNSFW) != "" || v.Get(FieldParent) != "" || v.Get(FieldImage) != "" {
		t.Errorf("Values() = %v, want empty nsfw/parent/image", v)
	}
	if !v.Has(FieldNSFW) || !v.Has(FieldParent) {
		t.Error("empty fields must still be sent")
	}
}

func TestSearchResults_MarshalRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := easyjson.Marshal(SearchResults{"@a", `#"q"`})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `["@a","#\"q\""`) {
		t.Errorf("Marshal = %s", data)
	}
	var back SearchResults
	if err := easyjson.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(back, SearchResults{"@a", `#"q"`}) {
		t.Errorf("round trip = %v", back)
	}

	empty, _ := easyjson.Marshal(SearchResults(nil))
	if string(empty) != "[]" {
		t.Errorf("Marshal(nil) = %s, want []", empty)
	}
}
