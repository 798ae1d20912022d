package flipper

import (
	"sort"
	"sync"

	"osrs-flipper/internal/models"
)

// memStore mirrors the MySQL store's semantics closely enough for service
// tests: version-checked saves, append-only de-duplicated history.
type memStore struct {
	mu    sync.Mutex
	flips map[string]*models.Flip

	// beforeSave runs inside SaveFlips before the version check, letting
	// tests race a concurrent writer.
	beforeSave func(s *memStore)

	userFlipsErr error
}

func newMemStore() *memStore {
	return &memStore{flips: make(map[string]*models.Flip)}
}

func (s *memStore) OpenFlip(displayName string, itemID int) (*models.Flip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest *models.Flip
	for _, f := range s.flips {
		if f.AccountDisplayName != displayName || f.ItemID != itemID || f.IsClosed {
			continue
		}
		if oldest == nil || f.OpenedTime < oldest.OpenedTime {
			oldest = f
		}
	}
	if oldest == nil {
		return nil, nil
	}
	return copyFlip(oldest), nil
}

func (s *memStore) UserFlips(displayName string) ([]models.Flip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userFlipsErr != nil {
		return nil, s.userFlipsErr
	}
	var out []models.Flip
	for _, f := range s.flips {
		if f.AccountDisplayName == displayName {
			out = append(out, *copyFlip(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) SaveFlips(flips []*models.Flip) error {
	s.mu.Lock()
	hook := s.beforeSave
	s.beforeSave = nil
	s.mu.Unlock()
	if hook != nil {
		hook(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before applying any of it.
	for _, f := range flips {
		if f.Version != 0 {
			stored, ok := s.flips[f.ID]
			if !ok || stored.Version != f.Version {
				return models.ErrVersionConflict
			}
		}
	}
	for _, f := range flips {
		if f.Version == 0 {
			f.Version = 1
		} else {
			f.Version++
		}
		s.flips[f.ID] = copyFlip(f)
	}
	return nil
}

// bumpVersion simulates a concurrent writer landing first.
func (s *memStore) bumpVersion(flipID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.flips[flipID]; ok {
		f.Version++
	}
}

func (s *memStore) flipIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.flips))
	for id := range s.flips {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copyFlip(f *models.Flip) *models.Flip {
	c := *f
	c.Transactions = append([]models.FlipTransaction(nil), f.Transactions...)
	return &c
}
