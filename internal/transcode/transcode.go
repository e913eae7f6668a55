// ABOUTME: Adaptive image transcoder: shrinks an attachment under a data-URI byte budget
// ABOUTME: Accepts small originals as-is, never re-encodes GIF, walks a JPEG quality ladder

package transcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	goimage "image"
	"image/jpeg"
	"math"
	"strings"

	// Register decoders for standard formats.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultBudget is the largest accepted data URI, in characters.
const DefaultBudget = 1_400_000

// DefaultMaxPixels bounds decode memory; larger headers are rejected unread.
const DefaultMaxPixels = 50_000_000

// base64Expansion approximates the data URI to payload size ratio.
const base64Expansion = 1.33

// DefaultQualities is the lossy ladder tried, best first.
var DefaultQualities = []float64{0.8, 0.6, 0.4, 0.2}

var (
	// ErrEmpty means no file was selected. Callers reset rather than fail.
	ErrEmpty = errors.New("empty image data")
	// ErrUnusable covers every failed transcode.
	ErrUnusable = errors.New("image unusable")
	// ErrNotReencodable is returned for over-budget GIFs.
	ErrNotReencodable = fmt.Errorf("%w: format cannot be re-encoded", ErrUnusable)
	// ErrOverBudget is returned when no quality rung fits.
	ErrOverBudget = fmt.Errorf("%w: over budget at every quality", ErrUnusable)
)

// Result is a size-bounded image ready to embed.
type Result struct {
	DataURI   string
	MIME      string
	Quality   float64 // 1.0 when the original was kept
	Reencoded bool
	Width     int
	Height    int
}

// ApproxBytes estimates the decoded payload size from the data URI length.
func (r Result) ApproxBytes() int {
	return int(float64(len(r.DataURI)) / base64Expansion)
}

// Label renders the size in KB and, for re-encoded images, the quality.
func (r Result) Label() string {
	label := fmt.Sprintf("%.0fKB", float64(len(r.DataURI))/base64Expansion/1024)
	if r.Quality != 1 {
		label += fmt.Sprintf("/%.1f", r.Quality)
	}
	return label
}

// Transcoder fits images under a budget by quality reduction only; pixel
// dimensions are never changed.
type Transcoder struct {
	budget    int
	qualities []float64
	maxPixels int64
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithBudget sets the maximum data URI length. Non-positive values are ignored.
func WithBudget(n int) Option {
	return func(t *Transcoder) {
		if n > 0 {
			t.budget = n
		}
	}
}

// WithQualities replaces the quality ladder. An empty ladder is ignored.
func WithQualities(qs []float64) Option {
	return func(t *Transcoder) {
		if len(qs) > 0 {
			t.qualities = append([]float64(nil), qs...)
		}
	}
}

// WithMaxPixels bounds width*height accepted for decode.
func WithMaxPixels(n int64) Option {
	return func(t *Transcoder) {
		if n > 0 {
			t.maxPixels = n
		}
	}
}

// New creates a Transcoder with the default budget and ladder.
func New(opts ...Option) *Transcoder {
	t := &Transcoder{
		budget:    DefaultBudget,
		qualities: append([]float64(nil), DefaultQualities...),
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Budget returns the configured data URI limit.
func (t *Transcoder) Budget() int { return t.budget }

// Transcode produces a representation of data whose data URI fits the budget.
//
// Algorithm:
//  1. Decode; failures wrap ErrUnusable.
//  2. If the original data URI fits, return it untouched at quality 1.0.
//  3. GIF sources are never re-encoded: fail with ErrNotReencodable.
//  4. Rasterize at natural size and encode JPEG down the quality ladder,
//     returning the first rung that fits.
//  5. Otherwise fail with ErrOverBudget.
func (t *Transcoder) Transcode(ctx context.Context, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, ErrEmpty
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	hdr, err := Probe(data)
	if err == nil && hdr.Pixels() > t.maxPixels {
		return Result{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnusable, hdr.Width, hdr.Height, t.maxPixels)
	}

	img, format, err := goimage.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decoding image: %w: %w", ErrUnusable, err)
	}
	mime := hdr.MIME
	if mime == "application/octet-stream" {
		mime = "image/" + format
	}
	b := img.Bounds()

	if natural := DataURI(mime, data); len(natural) <= t.budget {
		return Result{DataURI: natural, MIME: mime, Quality: 1, Width: b.Dx(), Height: b.Dy()}, nil
	}

	if mime == "image/gif" {
		return Result{}, ErrNotReencodable
	}

	canvas := rasterize(img)
	var buf bytes.Buffer
	for _, q := range t.qualities {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		buf.Reset()
		if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality(q)}); err != nil {
			return Result{}, fmt.Errorf("encoding JPEG at %.1f: %w: %w", q, ErrUnusable, err)
		}
		if uri := DataURI("image/jpeg", buf.Bytes()); len(uri) <= t.budget {
			return Result{
				DataURI:   uri,
				MIME:      "image/jpeg",
				Quality:   q,
				Reencoded: true,
				Width:     b.Dx(),
				Height:    b.Dy(),
			}, nil
		}
	}
	return Result{}, ErrOverBudget
}

// DataURI builds a base64 data URI for payload.
func DataURI(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

// Payload decodes the bytes carried by the data URI.
func (r Result) Payload() ([]byte, error) {
	_, enc, ok := strings.Cut(r.DataURI, ";base64,")
	if !ok {
		return nil, errors.New("not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("decoding data URI: %w", err)
	}
	return data, nil
}

// rasterize copies src onto an RGBA canvas of natural size anchored at the
// origin. Transparent pixels encode as black.
func rasterize(src goimage.Image) *goimage.RGBA {
	b := src.Bounds()
	dst := goimage.NewRGBA(goimage.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// jpegQuality maps a 0-1 factor to the encoder's 1-100 scale.
func jpegQuality(q float64) int {
	return min(max(int(math.Round(q*100)), 1), 100)
}
