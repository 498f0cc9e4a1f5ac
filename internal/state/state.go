// Package state remembers the last view (group and visible leaf types) per
// data source between runs. Positions are never stored; they are recomputed.
package state

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/gridmap/internal/taxonomy"
)

// View is the remembered view of one source.
type View struct {
	Group     string       `toml:"group"`
	Visible   taxonomy.Set `toml:"visible"`
	UpdatedAt time.Time    `toml:"updated_at"`
}

// State maps a source (base URL or dataset path) to its last view.
type State struct {
	Views map[string]View `toml:"views"`
}

func statePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gridmap", "state.toml")
}

// Load reads the state file, returning empty state if it doesn't exist.
func Load() *State {
	s := &State{Views: make(map[string]View)}
	data, err := os.ReadFile(statePath())
	if err != nil {
		return s
	}
	_ = toml.Unmarshal(data, s)
	if s.Views == nil {
		s.Views = make(map[string]View)
	}
	return s
}

// Save writes the state file to disk.
func Save(s *State) error {
	path := statePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(s)
}

// Record stores the view of source. An empty group forgets it.
func Record(source, group string, visible taxonomy.Set) error {
	s := Load()
	if group == "" {
		delete(s.Views, source)
	} else {
		s.Views[source] = View{Group: group, Visible: visible, UpdatedAt: time.Now()}
	}
	return Save(s)
}

// Last returns the remembered view of source.
func Last(source string) (View, bool) {
	v, ok := Load().Views[source]
	return v, ok
}
