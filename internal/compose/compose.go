// ABOUTME: Compose widget: ties image attachment, autocomplete and submission to injected UI handles
// ABOUTME: Handles are passed at construction so each widget reacts only through its own controls

package compose

import (
	"context"
	"errors"
	"sync"

	pilog "github.com/mauromedda/pi-post-go/internal/log"
	"github.com/mauromedda/pi-post-go/internal/post"
	"github.com/mauromedda/pi-post-go/internal/suggest"
	"github.com/mauromedda/pi-post-go/internal/transcode"
)

// Toggle is the "mark as sensitive" control, visible only with an image.
type Toggle interface {
	SetVisible(visible bool)
}

// Preview shows the attached image and its size label.
type Preview interface {
	Show(res transcode.Result)
	Clear()
}

// Imager fits an attachment under the upload budget.
type Imager interface {
	Transcode(ctx context.Context, data []byte) (transcode.Result, error)
}

// Handles are the UI controls a widget drives. Nil handles are ignored.
type Handles struct {
	NSFW    Toggle
	Preview Preview
	View    post.View
	Busy    post.Busy
}

// Widget is one compose form.
type Widget struct {
	images  Imager
	suggest *suggest.Controller
	submit  *post.Submitter
	handles Handles
	parent  string

	mu      sync.Mutex
	content string
	image   string
}

// Option configures a Widget.
type Option func(*Widget)

// WithParent makes the widget compose replies to the given post.
func WithParent(id string) Option {
	return func(w *Widget) { w.parent = id }
}

// New builds a widget. The submitter's View and Busy are taken from h.
func New(images Imager, ctrl *suggest.Controller, creator post.Creator, cache post.Recorder, h Handles, opts ...Option) *Widget {
	w := &Widget{
		images:  images,
		suggest: ctrl,
		handles: h,
		submit: &post.Submitter{
			Creator: creator,
			Cache:   cache,
			View:    h.View,
			Busy:    h.Busy,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Parent returns the id replied to, or empty.
func (w *Widget) Parent() string { return w.parent }

// Content returns the current text.
func (w *Widget) Content() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.content
}

// Image returns the attached data URI, or empty.
func (w *Widget) Image() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.image
}

// Attach replaces the attachment with data. The previous attachment is
// always dropped first; empty data stops there and is not an error. On
// failure the widget stays without an image and the error is returned.
func (w *Widget) Attach(ctx context.Context, data []byte) (transcode.Result, error) {
	w.resetImage()
	if len(data) == 0 {
		return transcode.Result{}, nil
	}

	res, err := w.images.Transcode(ctx, data)
	if err != nil {
		if errors.Is(err, transcode.ErrEmpty) {
			return transcode.Result{}, nil
		}
		pilog.Debug("compose: attachment rejected: %v", err)
		return transcode.Result{}, err
	}

	w.mu.Lock()
	w.image = res.DataURI
	w.mu.Unlock()
	if w.handles.Preview != nil {
		w.handles.Preview.Show(res)
	}
	if w.handles.NSFW != nil {
		w.handles.NSFW.SetVisible(true)
	}
	return res, nil
}

// Detach drops the attachment.
func (w *Widget) Detach() { w.resetImage() }

func (w *Widget) resetImage() {
	w.mu.Lock()
	w.image = ""
	w.mu.Unlock()
	if w.handles.NSFW != nil {
		w.handles.NSFW.SetVisible(false)
	}
	if w.handles.Preview != nil {
		w.handles.Preview.Clear()
	}
}

// Input sets the text and runs the autocomplete cycle for it.
func (w *Widget) Input(ctx context.Context, text string) <-chan struct{} {
	w.mu.Lock()
	w.content = text
	w.mu.Unlock()
	return w.suggest.Trigger(ctx, text)
}

// Edit sets the text and renders the local suggestions. The admitted
// lookup, if any, is returned for the caller to run and hand to Resolve.
func (w *Widget) Edit(text string) (*suggest.Query, bool) {
	w.mu.Lock()
	w.content = text
	w.mu.Unlock()
	return w.suggest.Input(text)
}

// Resolve applies a finished lookup.
func (w *Widget) Resolve(r suggest.Response) {
	w.suggest.Apply(r)
}

// Suggestions returns the visible suggestion entries.
func (w *Widget) Suggestions() []suggest.Entry {
	return w.suggest.Entries()
}

// Select splices a suggestion into the text and returns the new text.
func (w *Widget) Select(suggestion string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.content = w.suggest.Select(w.content, suggestion)
	return w.content
}

// Submit sends the current text and attachment. On success the form is
// cleared; on error it is left intact for a retry.
func (w *Widget) Submit(ctx context.Context, nsfw bool) post.Outcome {
	w.mu.Lock()
	p := post.Post{Content: w.content, Image: w.image, NSFW: nsfw, Parent: w.parent}
	w.mu.Unlock()

	out := w.submit.Submit(ctx, p)
	if out.IsOK() {
		w.mu.Lock()
		w.content = ""
		w.mu.Unlock()
		w.resetImage()
	}
	return out
}
