// Package fs persists saves, history, and profiles as JSON files under a
// single data directory. It is the zero-dependency alternative to the
// postgres backend for single-machine installs.
//
// Layout:
//
//	<root>/saves/<game-id>.json
//	<root>/history.json
//	<root>/profiles/<name-key>.json
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cory-johannsen/dicehall/internal/game/player"
	"github.com/cory-johannsen/dicehall/internal/storage"
)

const (
	savesDir    = "saves"
	profilesDir = "profiles"
	historyFile = "history.json"
)

// writeJSON writes v to path atomically: encode into a temp file in the same
// directory, then rename over the target.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// safeName reports whether s can be used as a file name without escaping the
// store directory.
func safeName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// Saves is a file-backed SaveStore, one file per suspended game.
type Saves struct {
	dir string
}

// NewSaves returns a save store rooted at dir/saves.
func NewSaves(dir string) *Saves {
	return &Saves{dir: filepath.Join(dir, savesDir)}
}

func (s *Saves) pathFor(id string) string {
	return filepath.Join(s.dir, strings.TrimSpace(id)+".json")
}

func (s *Saves) Put(_ context.Context, save storage.SaveGame) error {
	if !safeName(strings.TrimSpace(save.GameID)) {
		return fmt.Errorf("fs: invalid game id %q", save.GameID)
	}
	return writeJSON(s.pathFor(save.GameID), save)
}

func (s *Saves) Get(_ context.Context, id string) (storage.SaveGame, error) {
	if !safeName(strings.TrimSpace(id)) {
		return storage.SaveGame{}, storage.ErrSaveNotFound
	}
	var save storage.SaveGame
	if err := readJSON(s.pathFor(id), &save); err != nil {
		if os.IsNotExist(err) {
			return storage.SaveGame{}, storage.ErrSaveNotFound
		}
		return storage.SaveGame{}, err
	}
	return save, nil
}

func (s *Saves) Delete(_ context.Context, id string) error {
	if !safeName(strings.TrimSpace(id)) {
		return nil
	}
	err := os.Remove(s.pathFor(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Saves) List(_ context.Context) ([]storage.SaveGame, error) {
	ents, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []storage.SaveGame
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		var save storage.SaveGame
		if err := readJSON(filepath.Join(s.dir, e.Name()), &save); err != nil {
			// Skip unreadable or partial files rather than failing the
			// whole listing.
			continue
		}
		if save.GameID == "" {
			continue
		}
		out = append(out, save)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GameStartTime.After(out[j].GameStartTime)
	})
	return out, nil
}

// History is a file-backed HistoryStore holding all retained entries in a
// single JSON file. Appends rewrite the file, which is cheap at the 50-entry
// cap.
type History struct {
	mu   sync.Mutex
	path string
}

// NewHistory returns a history store rooted at dir.
func NewHistory(dir string) *History {
	return &History{path: filepath.Join(dir, historyFile)}
}

func (h *History) load() ([]storage.HistoryEntry, error) {
	var entries []storage.HistoryEntry
	if err := readJSON(h.path, &entries); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

func (h *History) Append(_ context.Context, e storage.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	entries, err := h.load()
	if err != nil {
		return err
	}
	entries = append([]storage.HistoryEntry{e}, entries...)
	if len(entries) > storage.HistoryCap {
		entries = entries[:storage.HistoryCap]
	}
	return writeJSON(h.path, entries)
}

func (h *History) List(_ context.Context) ([]storage.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

// Profiles is a file-backed ProfileStore, one file per player keyed by the
// folded name.
type Profiles struct {
	dir string
}

// NewProfiles returns a profile store rooted at dir/profiles.
func NewProfiles(dir string) *Profiles {
	return &Profiles{dir: filepath.Join(dir, profilesDir)}
}

func (p *Profiles) pathFor(name string) string {
	return filepath.Join(p.dir, player.Key(name)+".json")
}

func (p *Profiles) Get(_ context.Context, name string) (storage.Profile, error) {
	if !safeName(player.Key(name)) {
		return storage.Profile{}, storage.ErrProfileNotFound
	}
	var profile storage.Profile
	if err := readJSON(p.pathFor(name), &profile); err != nil {
		if os.IsNotExist(err) {
			return storage.Profile{}, storage.ErrProfileNotFound
		}
		return storage.Profile{}, err
	}
	return profile, nil
}

func (p *Profiles) Upsert(_ context.Context, profile storage.Profile) error {
	if !safeName(player.Key(profile.Name)) {
		return fmt.Errorf("fs: invalid profile name %q", profile.Name)
	}
	return writeJSON(p.pathFor(profile.Name), profile)
}

func (p *Profiles) List(_ context.Context) ([]storage.Profile, error) {
	ents, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []storage.Profile
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		var profile storage.Profile
		if err := readJSON(filepath.Join(p.dir, e.Name()), &profile); err != nil {
			continue
		}
		if profile.Name == "" {
			continue
		}
		out = append(out, profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// NewStores bundles the three file-backed stores under one data directory.
func NewStores(dir string) storage.Stores {
	return storage.Stores{
		Saves:    NewSaves(dir),
		History:  NewHistory(dir),
		Profiles: NewProfiles(dir),
	}
}
