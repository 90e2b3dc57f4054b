// Package prefs persists the selected island.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/namaadhu/namaadhu/internal/store"
	"github.com/namaadhu/namaadhu/pkg/logger"
	"github.com/spf13/afero"
)

// FileName is the name of the selection file inside the config directory.
const FileName = "selected_island.json"

// Prefs stores the selected island as JSON on fs.
type Prefs struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	log  logger.Logger
}

// New returns Prefs keeping its file in dir. A nil log discards messages.
func New(fs afero.Fs, dir string, log logger.Logger) *Prefs {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Prefs{fs: fs, path: filepath.Join(dir, FileName), log: log}
}

// Path returns the selection file path.
func (p *Prefs) Path() string {
	return p.path
}

// Selected returns the persisted island, or nil when none is selected. An
// unreadable or corrupt file counts as no selection.
func (p *Prefs) Selected() *store.Island {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, err := afero.ReadFile(p.fs, p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		p.log.Warning("prefs: failed to read %s: %v", p.path, err)
		return nil
	}
	var is store.Island
	if err := json.Unmarshal(b, &is); err != nil {
		p.log.Warning("prefs: failed to decode selected island: %v", err)
		return nil
	}
	return &is
}

// Save persists is as the selected island.
func (p *Prefs) Save(is store.Island) error {
	b, err := json.Marshal(is)
	if err != nil {
		return fmt.Errorf("error: failed to encode selected island: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fs.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("error: failed to create config directory: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := afero.WriteFile(p.fs, tmp, b, 0o644); err != nil {
		return fmt.Errorf("error: failed to write selected island: %w", err)
	}
	if err := p.fs.Rename(tmp, p.path); err != nil {
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("error: failed to write selected island: %w", err)
	}
	return nil
}

// Clear forgets the selection.
func (p *Prefs) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.fs.Remove(p.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error: failed to clear selected island: %w", err)
	}
	return nil
}
