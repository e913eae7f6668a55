// ABOUTME: Shared command wiring: loads settings, opens storage, builds cache, client, transcoder
// ABOUTME: Every subcommand opens one App and closes it before returning

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mauromedda/pi-post-go/internal/api"
	"github.com/mauromedda/pi-post-go/internal/compose"
	"github.com/mauromedda/pi-post-go/internal/config"
	pilog "github.com/mauromedda/pi-post-go/internal/log"
	"github.com/mauromedda/pi-post-go/internal/recent"
	"github.com/mauromedda/pi-post-go/internal/storage"
	"github.com/mauromedda/pi-post-go/internal/suggest"
	"github.com/mauromedda/pi-post-go/internal/transcode"
)

// Globals are the persistent root flags.
type Globals struct {
	Verbose     bool
	ProjectRoot string
	BaseURL     string
}

// App bundles the collaborators a command needs.
type App struct {
	Root       string
	Settings   *config.Settings
	Store      storage.Store
	Cache      *recent.Cache
	Client     *api.Client
	Transcoder *transcode.Transcoder
}

// openApp loads settings for g and opens the configured store.
func openApp(g *Globals) (*App, error) {
	root := g.ProjectRoot
	if root == "" {
		root, _ = os.Getwd()
	}
	settings, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if g.BaseURL != "" {
		settings.Server.BaseURL = g.BaseURL
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	pilog.SetLevel(pilog.ParseLevel(settings.LogLevel))
	if g.Verbose {
		pilog.SetLevel(pilog.LevelDebug)
	}

	path := settings.StoragePath()
	if settings.Storage.Backend != "memory" {
		if err := config.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("creating storage dir: %w", err)
		}
	}
	store, err := storage.Open(settings.Storage.Backend, path)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	pilog.Debug("cli: storage %s at %s, server %s", settings.Storage.Backend, path, settings.Server.BaseURL)

	return &App{
		Root:     root,
		Settings: settings,
		Store:    store,
		Cache: recent.New(store,
			recent.WithCapacity(settings.Cache.Capacity),
			recent.WithKey(settings.Cache.Key),
		),
		Client: api.NewClient(settings.Server.BaseURL, settings.Server.Timeout),
		Transcoder: transcode.New(
			transcode.WithBudget(settings.Image.Budget),
			transcode.WithQualities(settings.Image.Qualities),
		),
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// Widget builds a compose widget over the app's collaborators.
func (a *App) Widget(h compose.Handles, parent string) *compose.Widget {
	ctrl := suggest.New(a.Cache, a.Client)
	var opts []compose.Option
	if parent != "" {
		opts = append(opts, compose.WithParent(parent))
	}
	return compose.New(a.Transcoder, ctrl, a.Client, a.Cache, h, opts...)
}

// printHandles reports widget transitions as text lines.
type printHandles struct {
	out io.Writer
	err io.Writer
}

func (p printHandles) handles() compose.Handles {
	return compose.Handles{NSFW: p, Preview: p, View: p, Busy: p}
}

func (p printHandles) SetVisible(bool) {}

func (p printHandles) Show(res transcode.Result) {
	fmt.Fprintf(p.out, "image: %s (%s %dx%d)\n", res.Label(), res.MIME, res.Width, res.Height)
}

func (p printHandles) Clear() {}

func (p printHandles) RefreshReplies(parent string) {
	fmt.Fprintf(p.out, "reply posted to %s\n", parent)
}

func (p printHandles) Reload() {
	fmt.Fprintln(p.out, "posted")
}

func (p printHandles) Begin() func() {
	fmt.Fprintln(p.err, "posting…")
	return func() {}
}
