package region

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/udisondev/regionspawn/internal/model"
)

var (
	ErrRegionExists       = errors.New("region already exists")
	ErrRegionNotFound     = errors.New("region not found")
	ErrNameInUse          = errors.New("region name already in use")
	ErrCandidateExists    = errors.New("candidate already configured")
	ErrCandidateNotFound  = errors.New("candidate not configured")
	ErrAmbiguousCandidate = errors.New("several forms configured, form required")
)

// Store holds region configuration keyed by coordinate.
//
// Readers get snapshots: a stored *model.Region is never mutated, edits
// clone it and swap the pointer. Writers are serialized by mu so
// read-modify-write edits do not lose updates; reads stay lock-free.
type Store struct {
	regions sync.Map // map[model.Coord]*model.Region
	editing sync.Map // map[model.Coord]struct{}, open edit sessions
	count   atomic.Int32

	mu sync.Mutex
}

// NewStore creates an empty region store.
func NewStore() *Store {
	return &Store{}
}

// Add inserts a new region. Fails if the key or the name is taken.
func (s *Store) Add(r model.Region) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regions.Load(r.Key); ok {
		return fmt.Errorf("adding region at %s: %w", r.Key, ErrRegionExists)
	}
	if owner, ok := s.nameOwner(r.Name); ok && owner != r.Key {
		return fmt.Errorf("adding region %q: %w", r.Name, ErrNameInUse)
	}

	snap := r.Clone()
	if snap.Dimension == "" {
		snap.Dimension = model.DefaultDimension
	}
	snap.Dimension = model.NormalizeDimension(snap.Dimension)
	for i := range snap.Candidates {
		snap.Candidates[i].Normalize()
	}
	s.regions.Store(r.Key, &snap)
	s.count.Add(1)
	return nil
}

// Get returns a copy of the region stored at key.
func (s *Store) Get(key model.Coord) (model.Region, bool) {
	v, ok := s.regions.Load(key)
	if !ok {
		return model.Region{}, false
	}
	return v.(*model.Region).Clone(), true
}

// Snapshot returns the stored region without copying.
// The result is shared and must not be modified.
func (s *Store) Snapshot(key model.Coord) (*model.Region, bool) {
	v, ok := s.regions.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*model.Region), true
}

// FindByName returns the region with the given name.
func (s *Store) FindByName(name string) (model.Region, bool) {
	var found *model.Region
	s.regions.Range(func(_, v any) bool {
		r := v.(*model.Region)
		if r.Name == name {
			found = r
			return false
		}
		return true
	})
	if found == nil {
		return model.Region{}, false
	}
	return found.Clone(), true
}

// Remove deletes the region and closes any edit session on it.
// Returns false if no region was stored at key.
func (s *Store) Remove(key model.Coord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regions.LoadAndDelete(key); !ok {
		return false
	}
	s.count.Add(-1)
	s.editing.Delete(key)
	return true
}

// Update applies fn to a copy of the region and stores the result if fn
// returns nil and the edited region is still valid. The key cannot change.
func (s *Store) Update(key model.Coord, fn func(r *model.Region) error) (model.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.regions.Load(key)
	if !ok {
		return model.Region{}, fmt.Errorf("updating region at %s: %w", key, ErrRegionNotFound)
	}

	current := v.(*model.Region)
	edited := current.Clone()
	if err := fn(&edited); err != nil {
		return model.Region{}, err
	}
	edited.Key = key
	if err := edited.Validate(); err != nil {
		return model.Region{}, err
	}
	// A region loaded with malformed entries stays editable so they can be
	// removed one by one, but an edit may not add to them.
	if errs := edited.ValidateCandidates(); len(errs) > len(current.ValidateCandidates()) {
		return model.Region{}, fmt.Errorf("updating region at %s: %w", key, errors.Join(errs...))
	}
	if owner, ok := s.nameOwner(edited.Name); ok && owner != key {
		return model.Region{}, fmt.Errorf("updating region %q: %w", edited.Name, ErrNameInUse)
	}
	edited.Dimension = model.NormalizeDimension(edited.Dimension)
	for i := range edited.Candidates {
		edited.Candidates[i].Normalize()
	}

	s.regions.Store(key, &edited)
	return edited.Clone(), nil
}

// Rename changes the display name of a region.
func (s *Store) Rename(current, next string) error {
	r, ok := s.FindByName(current)
	if !ok {
		return fmt.Errorf("renaming %q: %w", current, ErrRegionNotFound)
	}
	_, err := s.Update(r.Key, func(r *model.Region) error {
		if owner, ok := s.nameOwner(next); ok && owner != r.Key {
			return fmt.Errorf("renaming %q to %q: %w", current, next, ErrNameInUse)
		}
		r.Name = next
		return nil
	})
	return err
}

// AddCandidate appends a candidate unless the same species and form is
// already configured.
func (s *Store) AddCandidate(key model.Coord, c model.CandidateSpec) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("adding candidate to %s: %w", key, err)
	}
	_, err := s.Update(key, func(r *model.Region) error {
		if r.FindCandidate(c.Species, c.Form) >= 0 {
			return fmt.Errorf("adding %s/%s to %s: %w", c.Species, c.Form, key, ErrCandidateExists)
		}
		r.Candidates = append(r.Candidates, c)
		return nil
	})
	return err
}

// RemoveCandidate removes the entry for species and form. An empty form
// matches the only configured entry of the species; if the species is
// configured with several forms the call fails with ErrAmbiguousCandidate.
func (s *Store) RemoveCandidate(key model.Coord, species, form string) error {
	_, err := s.Update(key, func(r *model.Region) error {
		idx := r.FindCandidate(species, form)
		if idx < 0 && form == "" {
			var matches []int
			for i, c := range r.Candidates {
				if c.Matches(species, c.Form) {
					matches = append(matches, i)
				}
			}
			switch len(matches) {
			case 0:
			case 1:
				idx = matches[0]
			default:
				return fmt.Errorf("removing %s from %s: %w", species, key, ErrAmbiguousCandidate)
			}
		}
		if idx < 0 {
			return fmt.Errorf("removing %s/%s from %s: %w", species, form, key, ErrCandidateNotFound)
		}
		r.Candidates = slices.Delete(r.Candidates, idx, idx+1)
		return nil
	})
	return err
}

// ToggleVisibility flips the visible flag and returns the new value.
func (s *Store) ToggleVisibility(key model.Coord) (bool, error) {
	r, err := s.Update(key, func(r *model.Region) error {
		r.Visible = !r.Visible
		return nil
	})
	if err != nil {
		return false, err
	}
	return r.Visible, nil
}

// BeginEdit marks an edit session as open. Returns false if the region does
// not exist or a session is already open.
func (s *Store) BeginEdit(key model.Coord) bool {
	if _, ok := s.regions.Load(key); !ok {
		return false
	}
	_, loaded := s.editing.LoadOrStore(key, struct{}{})
	return !loaded
}

// EndEdit closes the edit session on key, if any.
func (s *Store) EndEdit(key model.Coord) {
	s.editing.Delete(key)
}

// IsEditing reports whether an edit session is open on key.
func (s *Store) IsEditing(key model.Coord) bool {
	_, ok := s.editing.Load(key)
	return ok
}

// All returns copies of every region ordered by name, then key.
func (s *Store) All() []model.Region {
	out := make([]model.Region, 0, s.Len())
	s.regions.Range(func(_, v any) bool {
		out = append(out, v.(*model.Region).Clone())
		return true
	})
	slices.SortFunc(out, func(a, b model.Region) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.Key.Compare(b.Key)
	})
	return out
}

// Snapshots returns the stored regions without copying, in no particular
// order. The results must not be modified.
func (s *Store) Snapshots() []*model.Region {
	out := make([]*model.Region, 0, s.Len())
	s.regions.Range(func(_, v any) bool {
		out = append(out, v.(*model.Region))
		return true
	})
	return out
}

// Len returns the number of regions (O(1) cached count).
func (s *Store) Len() int {
	return int(s.count.Load())
}

// NextName returns the first free "region_N" name, starting at Len()+1.
func (s *Store) NextName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for n := s.Len() + 1; ; n++ {
		name := fmt.Sprintf("region_%d", n)
		if _, ok := s.nameOwner(name); !ok {
			return name
		}
	}
}

// Replace drops every region and edit session and stores the given list.
// Invalid or duplicate entries are logged and skipped.
func (s *Store) Replace(regions []model.Region) int {
	s.Clear()
	loaded := 0
	for _, r := range regions {
		if r.Name == "" {
			r.Name = s.NextName()
		}
		for _, err := range r.ValidateCandidates() {
			slog.Warn("malformed candidate, region will not spawn until fixed", "region", r.Name, "key", r.Key, "error", err)
		}
		if err := s.Add(r); err != nil {
			slog.Error("skipping region", "region", r.Name, "key", r.Key, "error", err)
			continue
		}
		loaded++
	}
	return loaded
}

// Clear removes every region and edit session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions.Clear()
	s.editing.Clear()
	s.count.Store(0)
}

// nameOwner returns the key of the region using name. Caller holds mu.
func (s *Store) nameOwner(name string) (model.Coord, bool) {
	var (
		owner model.Coord
		found bool
	)
	s.regions.Range(func(k, v any) bool {
		if v.(*model.Region).Name == name {
			owner, found = k.(model.Coord), true
			return false
		}
		return true
	})
	return owner, found
}
