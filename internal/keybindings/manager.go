// ABOUTME: Keybindings manager for the compose screen with O(1) key-to-action lookup
// ABOUTME: Merges global and project YAML overrides onto defaults and detects conflicts

package keybindings

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mauromedda/pi-post-go/internal/config"
	pilog "github.com/mauromedda/pi-post-go/internal/log"
)

// Action is a compose-screen command.
type Action string

const (
	ActionQuit       Action = "quit"
	ActionCancel     Action = "cancel"
	ActionAttach     Action = "attach"
	ActionToggleNSFW Action = "toggle_nsfw"
	ActionSubmit     Action = "submit"
	ActionNext       Action = "next"
	ActionPrev       Action = "prev"
	ActionInsert     Action = "insert"
	ActionDeleteBack Action = "delete_back"
)

// FileName is the keybindings file looked up in the global and project dirs.
const FileName = "keybindings.yml"

// Keys use the names bubbletea gives them ("ctrl+s", "shift+tab", "esc").
func defaults() map[Action][]string {
	return map[Action][]string{
		ActionQuit:       {"ctrl+c"},
		ActionCancel:     {"esc"},
		ActionAttach:     {"ctrl+o"},
		ActionToggleNSFW: {"ctrl+n"},
		ActionSubmit:     {"ctrl+s"},
		ActionNext:       {"tab", "down"},
		ActionPrev:       {"shift+tab", "up"},
		ActionInsert:     {"enter"},
		ActionDeleteBack: {"backspace"},
	}
}

// file is the on-disk shape: bindings: {submit: [ctrl+p]}.
type file struct {
	Bindings map[Action][]string `yaml:"bindings"`
}

// ConflictInfo describes a key bound to more than one action.
type ConflictInfo struct {
	Key     string
	Actions []Action
}

// Manager maps key names to actions.
type Manager struct {
	bindings map[Action][]string
	lookup   map[string]Action
}

// Default returns a Manager with the built-in bindings.
func Default() *Manager {
	m := &Manager{bindings: defaults()}
	m.buildLookup()
	return m
}

// New creates a Manager from global and local keybinding files. Local
// bindings override global ones per action. Missing files are ignored.
func New(globalPath, localPath string) *Manager {
	m := &Manager{bindings: defaults()}
	for _, path := range []string{globalPath, localPath} {
		if path == "" {
			continue
		}
		over, err := load(path)
		if err != nil {
			if !os.IsNotExist(err) {
				pilog.Warn("keybindings: %v", err)
			}
			continue
		}
		maps.Copy(m.bindings, over)
	}
	m.buildLookup()
	return m
}

// ForProject loads the global and project keybinding files.
func ForProject(projectRoot string) *Manager {
	return New(
		filepath.Join(config.GlobalDir(), FileName),
		filepath.Join(config.ProjectDir(projectRoot), FileName),
	)
}

func load(path string) (map[Action][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for action := range f.Bindings {
		if _, ok := defaults()[action]; !ok {
			return nil, fmt.Errorf("%s: unknown action %q", path, action)
		}
	}
	return f.Bindings, nil
}

// ActionFor returns the action bound to key, or "" if unbound.
func (m *Manager) ActionFor(key string) Action {
	return m.lookup[key]
}

// Keys returns the keys bound to action.
func (m *Manager) Keys(action Action) []string {
	return m.bindings[action]
}

// Conflicts reports keys bound to multiple actions, sorted by key.
func (m *Manager) Conflicts() []ConflictInfo {
	byKey := make(map[string][]Action)
	for action, keys := range m.bindings {
		for _, k := range keys {
			byKey[k] = append(byKey[k], action)
		}
	}
	var out []ConflictInfo
	for _, k := range slices.Sorted(maps.Keys(byKey)) {
		if actions := byKey[k]; len(actions) > 1 {
			slices.Sort(actions)
			out = append(out, ConflictInfo{Key: k, Actions: actions})
		}
	}
	return out
}

// Help renders the one-line key hint shown under the editor.
func (m *Manager) Help() string {
	hints := []struct {
		action Action
		label  string
	}{
		{ActionNext, "select"},
		{ActionInsert, "insert"},
		{ActionSubmit, "post"},
		{ActionToggleNSFW, "nsfw"},
		{ActionAttach, "attach"},
		{ActionCancel, "quit"},
	}
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		keys := m.bindings[h.action]
		if len(keys) == 0 {
			continue
		}
		parts = append(parts, short(keys[0])+" "+h.label)
	}
	return strings.Join(parts, " • ")
}

func short(key string) string {
	if rest, ok := strings.CutPrefix(key, "ctrl+"); ok {
		return "^" + rest
	}
	return key
}

// Last binding wins when a key is listed for two actions; Conflicts reports it.
func (m *Manager) buildLookup() {
	m.lookup = make(map[string]Action, len(m.bindings)*2)
	for _, action := range slices.Sorted(maps.Keys(m.bindings)) {
		for _, k := range m.bindings[action] {
			m.lookup[k] = action
		}
	}
}
