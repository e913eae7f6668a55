// ABOUTME: Cobra subcommands: compose (TUI), suggest, attach, submit, recent, dev-server
// ABOUTME: Headless commands drive the same widget and controller the TUI uses

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mauromedda/pi-post-go/internal/devserver"
	"github.com/mauromedda/pi-post-go/internal/keybindings"
	pilog "github.com/mauromedda/pi-post-go/internal/log"
	"github.com/mauromedda/pi-post-go/internal/mode/interactive"
	"github.com/mauromedda/pi-post-go/internal/suggest"
)

// NewRootCmd builds the pi-post command tree.
func NewRootCmd(version string) *cobra.Command {
	g := &Globals{}
	root := &cobra.Command{
		Use:   "pi-post",
		Short: "Compose posts with mention autocomplete and size-bounded image attachments",
		Long: `pi-post composes posts for a discussion server.

Typing @user or #tag at the end of the text suggests recently used tokens
and asks the server for matches. Attached images are re-encoded until they
fit the upload budget.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&g.Verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&g.ProjectRoot, "project", "", "Project root for .pi-post/config.yml (default: cwd)")
	root.PersistentFlags().StringVar(&g.BaseURL, "base-url", "", "Server base URL (overrides config and env)")

	root.AddCommand(
		newComposeCmd(g),
		newSuggestCmd(g),
		newAttachCmd(g),
		newSubmitCmd(g),
		newRecentCmd(g),
		newDevServerCmd(),
	)
	return root
}

func newComposeCmd(g *Globals) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Open the interactive compose screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("compose needs a terminal on stdin; use submit for scripted posts")
			}
			app, err := openApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			keys := keybindings.ForProject(app.Root)
			for _, c := range keys.Conflicts() {
				pilog.Warn("keybindings: %s bound to %v", c.Key, c.Actions)
			}
			state := interactive.NewState()
			return interactive.Run(cmd.Context(), app.Widget(state.Handles(), parent), state,
				interactive.WithKeys(keys))
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Reply to this post id")
	return cmd
}

func newSuggestCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <text>",
		Short: "Print the suggestion list for text as typed",
		Example: `  pi-post suggest "hello @bo"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			ctrl := suggest.New(app.Cache, app.Client)
			<-ctrl.Trigger(cmd.Context(), args[0])

			out := cmd.OutOrStdout()
			for _, e := range ctrl.Entries() {
				src := "local"
				if e.Source == suggest.SourceAuto {
					src = "auto"
				}
				fmt.Fprintf(out, "%s\t%s\n", src, e.Text)
			}
			return nil
		},
	}
}

func newAttachCmd(g *Globals) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "attach <image>",
		Short: "Fit an image under the upload budget and report the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			res, err := app.Transcoder.Transcode(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("attaching %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%dx%d\n", res.Label(), res.MIME, res.Width, res.Height)
			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(res.DataURI), 0o600); err != nil {
					return fmt.Errorf("writing data URI: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the data URI to this file")
	return cmd
}

func newSubmitCmd(g *Globals) *cobra.Command {
	var (
		parent    string
		imagePath string
		nsfw      bool
	)
	cmd := &cobra.Command{
		Use:   "submit <text>...",
		Short: "Post text, optionally with an image, without the TUI",
		Example: `  pi-post submit "hey @carol"
  pi-post submit --parent 42 --image cat.png --nsfw "look at this"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			ph := printHandles{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
			w := app.Widget(ph.handles(), parent)
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("reading image: %w", err)
				}
				if _, err := w.Attach(cmd.Context(), data); err != nil {
					return fmt.Errorf("attaching %s: %w", imagePath, err)
				}
			}
			if nsfw && w.Image() == "" {
				return fmt.Errorf("--nsfw needs an attached image")
			}
			w.Edit(strings.Join(args, " "))

			out := w.Submit(cmd.Context(), nsfw)
			if !out.IsOK() {
				return fmt.Errorf("server: %s", out.Message())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Reply to this post id")
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Attach this image")
	cmd.Flags().BoolVar(&nsfw, "nsfw", false, "Mark the attached image as sensitive")
	return cmd
}

func newRecentCmd(g *Globals) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List or clear recently used mention tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			if reset {
				app.Cache.Clear()
				return nil
			}
			for _, t := range app.Cache.Load() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "clear", false, "Empty the list")
	return cmd
}

func newDevServerCmd() *cobra.Command {
	var (
		addr  string
		users []string
		tags  []string
	)
	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run a local search and post-creation server for offline use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := devserver.New(users, tags)
			ready := func(a string) {
				fmt.Fprintf(cmd.OutOrStdout(), "listening on http://%s\n", a)
			}
			return devserver.ListenAndServe(cmd.Context(), addr, srv.Handler(), ready)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().StringSliceVar(&users, "users", devserver.DefaultUsers, "Known user names")
	cmd.Flags().StringSliceVar(&tags, "tags", devserver.DefaultTags, "Known tag names")
	return cmd
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, root *cobra.Command) error {
	return root.ExecuteContext(ctx)
}
