// ABOUTME: Bubble Tea compose screen: editor, merged suggestion list, image status, submit
// ABOUTME: Remote lookups, attachment and posting run as tea.Cmd; results are applied in Update

package interactive

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/pi-post-go/internal/compose"
	"github.com/mauromedda/pi-post-go/internal/keybindings"
	"github.com/mauromedda/pi-post-go/internal/post"
	"github.com/mauromedda/pi-post-go/internal/suggest"
)

// Emoji is the static palette listed after the token suggestions.
var Emoji = []string{"😀", "😂", "😍", "🤔", "👍", "🔥", "🎉", "😢"}

const (
	previewCols = 40
	previewRows = 10
)

type itemKind int

const (
	itemLocal itemKind = iota
	itemAuto
	itemEmoji
)

type item struct {
	text string
	kind itemKind
}

// suggestionsMsg carries a finished remote lookup.
type suggestionsMsg struct{ resp suggest.Response }

// attachedMsg reports the outcome of an attachment.
type attachedMsg struct {
	label string
	err   error
	reset bool
}

// submittedMsg reports the outcome of a submission.
type submittedMsg struct{ out post.Outcome }

// Model is the compose screen. It has value semantics; the widget and
// State are shared pointers.
type Model struct {
	ctx      context.Context
	widget   *compose.Widget
	state    *State
	styles   Styles
	keys     *keybindings.Manager
	readFile func(string) ([]byte, error)

	text       string
	path       string
	pathMode   bool
	selected   int
	nsfw       bool
	submitting bool
	preview    []string
	status     string
	statusErr  bool
	width      int
}

// Option configures a Model.
type Option func(*Model)

// WithReadFile replaces the file reader used for attachments.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(m *Model) { m.readFile = fn }
}

// WithKeys replaces the default key bindings.
func WithKeys(k *keybindings.Manager) Option {
	return func(m *Model) { m.keys = k }
}

// WithStyles replaces the palette.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// New creates the compose screen for widget. state must be the State whose
// Handles the widget was built with.
func New(ctx context.Context, widget *compose.Widget, state *State, opts ...Option) Model {
	m := Model{
		ctx:      ctx,
		widget:   widget,
		state:    state,
		styles:   DefaultStyles(),
		keys:     keybindings.Default(),
		readFile: os.ReadFile,
		selected: -1,
		width:    80,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init renders the local suggestions for the empty field.
func (m Model) Init() tea.Cmd {
	m.widget.Edit("")
	return nil
}

// Update handles keys and async results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case suggestionsMsg:
		m.widget.Resolve(msg.resp)
		if m.selected >= len(m.items()) {
			m.selected = -1
		}
	case attachedMsg:
		m.applyAttached(msg)
	case submittedMsg:
		m.submitting = false
		if msg.out.IsOK() {
			m.text = ""
			m.nsfw = false
			m.preview = nil
			m.selected = -1
			m.setStatus(m.state.snapshot().refreshed, false)
		} else {
			m.setStatus(msg.out.Message(), true)
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.ActionFor(msg.String())
	// The form is frozen while posting; an OK reply clears it.
	if m.submitting && action != keybindings.ActionQuit && action != keybindings.ActionCancel {
		return m, nil
	}
	switch action {
	case keybindings.ActionQuit:
		return m, tea.Quit
	case keybindings.ActionCancel:
		if m.pathMode {
			m.pathMode = false
			m.path = ""
			return m, nil
		}
		return m, tea.Quit
	case keybindings.ActionAttach:
		m.pathMode = true
		m.path = ""
	case keybindings.ActionToggleNSFW:
		if m.state.snapshot().nsfwVisible {
			m.nsfw = !m.nsfw
		}
	case keybindings.ActionSubmit:
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		m.setStatus("", false)
		return m, m.submitCmd()
	case keybindings.ActionNext:
		m.move(1)
	case keybindings.ActionPrev:
		m.move(-1)
	case keybindings.ActionInsert:
		if m.pathMode {
			path := strings.TrimSpace(m.path)
			m.pathMode = false
			m.path = ""
			return m, m.attachCmd(path)
		}
		if items := m.items(); m.selected >= 0 && m.selected < len(items) {
			m.text = m.widget.Select(items[m.selected].text)
			m.selected = -1
		}
	case keybindings.ActionDeleteBack:
		if m.pathMode {
			m.path = dropLastGrapheme(m.path)
			return m, nil
		}
		return m.edit(dropLastGrapheme(m.text))
	default:
		switch msg.Type {
		case tea.KeySpace:
			return m.typed(" ")
		case tea.KeyRunes:
			return m.typed(string(msg.Runes))
		}
	}
	return m, nil
}

func (m Model) typed(s string) (tea.Model, tea.Cmd) {
	if m.pathMode {
		m.path += s
		return m, nil
	}
	return m.edit(m.text + s)
}

// edit is the content-change path: local entries are rendered before a
// lookup is dispatched.
func (m Model) edit(text string) (tea.Model, tea.Cmd) {
	m.text = text
	m.selected = -1
	q, ok := m.widget.Edit(text)
	if !ok {
		return m, nil
	}
	ctx := m.ctx
	return m, func() tea.Msg { return suggestionsMsg{resp: q.Run(ctx)} }
}

func (m Model) attachCmd(path string) tea.Cmd {
	ctx, w, read := m.ctx, m.widget, m.readFile
	return func() tea.Msg {
		if path == "" {
			w.Attach(ctx, nil)
			return attachedMsg{reset: true}
		}
		data, err := read(path)
		if err != nil {
			w.Detach()
			return attachedMsg{err: err}
		}
		res, err := w.Attach(ctx, data)
		if err != nil {
			return attachedMsg{err: err}
		}
		if len(data) == 0 {
			return attachedMsg{reset: true}
		}
		return attachedMsg{label: res.Label()}
	}
}

func (m *Model) applyAttached(msg attachedMsg) {
	snap := m.state.snapshot()
	if !snap.nsfwVisible {
		m.nsfw = false
	}
	switch {
	case msg.err != nil:
		m.preview = nil
		m.setStatus("image rejected: "+msg.err.Error(), true)
	case msg.reset:
		m.preview = nil
		m.setStatus("image removed", false)
	default:
		m.preview = renderPreview(snap.preview, min(previewCols, m.width), previewRows)
		m.setStatus("attached "+msg.label, false)
	}
}

func (m Model) submitCmd() tea.Cmd {
	ctx, w, nsfw := m.ctx, m.widget, m.nsfw
	return func() tea.Msg { return submittedMsg{out: w.Submit(ctx, nsfw)} }
}

func (m *Model) move(delta int) {
	n := len(m.items())
	if n == 0 {
		m.selected = -1
		return
	}
	switch {
	case m.selected < 0 && delta > 0:
		m.selected = 0
	case m.selected < 0:
		m.selected = n - 1
	default:
		m.selected = (m.selected + delta + n) % n
	}
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// items lists local entries, then auto entries, then the emoji palette.
func (m Model) items() []item {
	entries := m.widget.Suggestions()
	out := make([]item, 0, len(entries)+len(Emoji))
	for _, e := range entries {
		kind := itemLocal
		if e.Source == suggest.SourceAuto {
			kind = itemAuto
		}
		out = append(out, item{text: e.Text, kind: kind})
	}
	for _, e := range Emoji {
		out = append(out, item{text: e, kind: itemEmoji})
	}
	return out
}

// Text returns the editor content.
func (m Model) Text() string { return m.text }

// NSFW reports whether the post will be marked sensitive.
func (m Model) NSFW() bool { return m.nsfw }

// View renders the compose screen.
func (m Model) View() string {
	s := m.styles
	snap := m.state.snapshot()
	inner := max(m.width-4, 8)

	var b strings.Builder
	title := "New post"
	if p := m.widget.Parent(); p != "" {
		title = "Reply to " + p
	}
	b.WriteString(s.Title.Render(title))
	b.WriteByte('\n')

	cursor := "▏"
	if m.pathMode {
		cursor = ""
	}
	b.WriteString(s.Prompt.Render("> ") + tailWidth(m.text, inner) + cursor)
	b.WriteByte('\n')

	var emoji []string
	for i, it := range m.items() {
		label := fitWidth(it.text, inner)
		switch it.kind {
		case itemLocal:
			label = s.Local.Render(label)
		case itemAuto:
			label = s.Auto.Render(label)
		case itemEmoji:
			label = s.Emoji.Render(label)
		}
		if i == m.selected {
			label = s.Selection.Render(label)
		}
		if it.kind == itemEmoji {
			emoji = append(emoji, label)
			continue
		}
		b.WriteString("  " + label + "\n")
	}
	b.WriteString("  " + strings.Join(emoji, " ") + "\n")

	if snap.label != "" {
		line := "image " + snap.label
		if snap.nsfwVisible {
			box := "[ ]"
			if m.nsfw {
				box = "[x]"
			}
			line += "  " + box + " nsfw"
		}
		b.WriteString(s.Success.Render(line) + "\n")
		for _, l := range m.preview {
			b.WriteString(l + "\n")
		}
	} else {
		b.WriteString(s.Dim.Render("no image") + "\n")
	}

	if m.pathMode {
		b.WriteString(s.Prompt.Render("attach: ") + tailWidth(m.path, inner) + "▏\n")
	}

	switch {
	case m.submitting || snap.busy:
		b.WriteString(s.Warning.Render("posting…") + "\n")
	case m.status != "" && m.statusErr:
		b.WriteString(s.Error.Render(fitWidth(m.status, inner)) + "\n")
	case m.status != "":
		b.WriteString(s.Success.Render(fitWidth(m.status, inner)) + "\n")
	}

	b.WriteString(s.Dim.Render(fitWidth(m.keys.Help(), inner)))
	return b.String()
}
