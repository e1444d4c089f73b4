// Package memory provides in-memory store implementations. It backs the
// "none" persistence mode and the game engine tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cory-johannsen/dicehall/internal/game/player"
	"github.com/cory-johannsen/dicehall/internal/storage"
)

// Saves is an in-memory SaveStore.
type Saves struct {
	mu   sync.Mutex
	byID map[string]storage.SaveGame
}

// NewSaves returns an empty save store.
func NewSaves() *Saves {
	return &Saves{byID: make(map[string]storage.SaveGame)}
}

func (s *Saves) Put(_ context.Context, save storage.SaveGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[save.GameID] = save
	return nil
}

func (s *Saves) Get(_ context.Context, id string) (storage.SaveGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	save, ok := s.byID[id]
	if !ok {
		return storage.SaveGame{}, storage.ErrSaveNotFound
	}
	return save, nil
}

func (s *Saves) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *Saves) List(_ context.Context) ([]storage.SaveGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.SaveGame, 0, len(s.byID))
	for _, save := range s.byID {
		out = append(out, save)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GameStartTime.After(out[j].GameStartTime)
	})
	return out, nil
}

// History is an in-memory HistoryStore capped at storage.HistoryCap entries.
type History struct {
	mu      sync.Mutex
	entries []storage.HistoryEntry
}

// NewHistory returns an empty history store.
func NewHistory() *History {
	return &History{}
}

func (h *History) Append(_ context.Context, e storage.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append([]storage.HistoryEntry{e}, h.entries...)
	if len(h.entries) > storage.HistoryCap {
		h.entries = h.entries[:storage.HistoryCap]
	}
	return nil
}

func (h *History) List(_ context.Context) ([]storage.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]storage.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out, nil
}

// Profiles is an in-memory ProfileStore keyed by the folded player name.
type Profiles struct {
	mu    sync.Mutex
	byKey map[string]storage.Profile
}

// NewProfiles returns an empty profile store.
func NewProfiles() *Profiles {
	return &Profiles{byKey: make(map[string]storage.Profile)}
}

func (p *Profiles) Get(_ context.Context, name string) (storage.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.byKey[player.Key(name)]
	if !ok {
		return storage.Profile{}, storage.ErrProfileNotFound
	}
	return profile, nil
}

func (p *Profiles) Upsert(_ context.Context, profile storage.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byKey[player.Key(profile.Name)] = profile
	return nil
}

func (p *Profiles) List(_ context.Context) ([]storage.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]storage.Profile, 0, len(p.byKey))
	for _, profile := range p.byKey {
		out = append(out, profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// NewStores bundles fresh in-memory implementations of all three stores.
func NewStores() storage.Stores {
	return storage.Stores{
		Saves:    NewSaves(),
		History:  NewHistory(),
		Profiles: NewProfiles(),
	}
}
