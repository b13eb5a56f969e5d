// Package hotkey registers the global shortcut that shows or hides the
// in-game window.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// Name identifies the toggle shortcut in logs and the tray menu.
const Name = "tempo_league_toggle"

var ErrEmptyCombo = errors.New("hotkey: empty key combination")

var modifiers = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"cmd":     "cmd",
	"command": "cmd",
	"super":   "cmd",
}

// ParseCombo turns "Ctrl+Shift+T" into gohook key names, modifiers first.
// Exactly one non-modifier key is required.
func ParseCombo(s string) ([]string, error) {
	parts := strings.Split(strings.ToLower(strings.ReplaceAll(s, " ", "")), "+")

	var mods []string
	key := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if m, ok := modifiers[p]; ok {
			mods = append(mods, m)
			continue
		}
		if key != "" {
			return nil, fmt.Errorf("hotkey: %q has more than one key", s)
		}
		key = p
	}
	if key == "" {
		return nil, fmt.Errorf("%w: %q", ErrEmptyCombo, s)
	}
	return append(mods, key), nil
}

// Manager owns the global keyboard hook.
type Manager struct {
	keys     []string
	onToggle func()

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewManager parses combo and prepares a manager calling onToggle on press.
func NewManager(combo string, onToggle func()) (*Manager, error) {
	keys, err := ParseCombo(combo)
	if err != nil {
		return nil, err
	}
	return &Manager{keys: keys, onToggle: onToggle}, nil
}

// Keys returns the parsed key names.
func (m *Manager) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Start installs the hook and processes events in the background.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	hook.Register(hook.KeyDown, m.keys, func(hook.Event) {
		slog.Debug("hotkey pressed", "name", Name)
		m.onToggle()
	})

	evChan := hook.Start()
	m.done = make(chan struct{})
	m.running = true

	go func(done chan struct{}) {
		<-hook.Process(evChan)
		close(done)
	}(m.done)

	slog.Info("hotkey registered", "name", Name, "keys", strings.Join(m.keys, "+"))
	return nil
}

// Stop removes the hook and waits for the event loop to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	hook.End()
	<-m.done
	m.running = false
}
