// ABOUTME: Post submission: records mention tokens, creates the post, refreshes the view on success
// ABOUTME: Outcome is a tagged OK/Error result; the busy state is restored exactly once per call

package post

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/pi-post-go/internal/api"
	pilog "github.com/mauromedda/pi-post-go/internal/log"
	"github.com/mauromedda/pi-post-go/internal/mention"
)

// okReply is the literal success reply of the create endpoint.
const okReply = "ok"

// Post is a composed post ready for submission.
type Post struct {
	Content string
	Image   string // data URI or empty
	NSFW    bool
	Parent  string // empty for a top-level post
}

// Creator sends a post to the server and returns its raw reply.
type Creator interface {
	Create(ctx context.Context, p api.NewPost) (string, error)
}

// Recorder stores used tokens for later suggestions.
type Recorder interface {
	Record(tokens []string)
}

// View is refreshed after a successful submission.
type View interface {
	RefreshReplies(parent string)
	Reload()
}

// Busy marks the triggering control as busy. Begin returns the func that
// restores it.
type Busy interface {
	Begin() (stop func())
}

// Outcome is the result of a submission: OK, or an error message to show.
type Outcome struct {
	ok  bool
	msg string
}

// OK returns the success outcome.
func OK() Outcome { return Outcome{ok: true} }

// Error returns a failure outcome carrying msg.
func Error(msg string) Outcome { return Outcome{msg: msg} }

// IsOK reports whether the submission succeeded.
func (o Outcome) IsOK() bool { return o.ok }

// Message returns the error message; empty for OK.
func (o Outcome) Message() string { return o.msg }

func (o Outcome) String() string {
	if o.ok {
		return "ok"
	}
	return "error: " + o.msg
}

// outcomeFromReply maps the wire reply onto an Outcome. Only the exact
// literal counts as success.
func outcomeFromReply(reply string) Outcome {
	if reply == okReply {
		return OK()
	}
	return Error(reply)
}

// Submitter wires the collaborators of a submission. Cache, View and Busy
// may be nil.
type Submitter struct {
	Creator Creator
	Cache   Recorder
	View    View
	Busy    Busy
}

// Submit records the tokens of p.Content, creates the post and refreshes
// the view when the server accepts it. Cache recording runs alongside the
// network call and happens whatever the outcome.
func (s *Submitter) Submit(ctx context.Context, p Post) Outcome {
	stop := s.begin()
	defer stop()

	tokens := mention.FindAll(p.Content)

	var reply string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.Cache != nil && len(tokens) > 0 {
			s.Cache.Record(tokens)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reply, err = s.Creator.Create(gctx, api.NewPost{
			Content: p.Content,
			Image:   p.Image,
			NSFW:    p.NSFW,
			Parent:  p.Parent,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		pilog.Debug("post: submit failed: %v", err)
		return Error(err.Error())
	}

	out := outcomeFromReply(reply)
	if !out.IsOK() {
		return out
	}
	if s.View != nil {
		if p.Parent != "" {
			s.View.RefreshReplies(p.Parent)
		} else {
			s.View.Reload()
		}
	}
	return out
}

// begin enters the busy state and returns an idempotent restore func.
func (s *Submitter) begin() func() {
	if s.Busy == nil {
		return func() {}
	}
	var once sync.Once
	stop := s.Busy.Begin()
	return func() {
		once.Do(func() {
			if stop != nil {
				stop()
			}
		})
	}
}
