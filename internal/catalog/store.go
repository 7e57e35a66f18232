// Package catalog holds the in-memory drama catalog. The store is the
// only shared mutable state in the process; every exported method is a
// single critical section, so each merge and each read observes a
// fully-consistent snapshot.
package catalog

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"dramahub/pkg/models"
)

// Update is one ingestion event to merge into the catalog. Title and
// Cover are last-write-wins when non-empty; Episode, when set, is
// merged at per-number granularity.
type Update struct {
	ID      string
	Title   string
	Cover   models.MediaHandle
	Episode *models.Episode
}

// Result reports what a merge did, so the caller can word its
// confirmation without a second lookup.
type Result struct {
	Created    bool // drama did not exist before this merge
	EpisodeNew bool // the episode number was not present before
	CoverNew   bool // no cover was set before
	Episodes   int  // episode count after the merge
	Title      string
}

// Store maps catalog ids to dramas. Iteration order for search is
// insertion order; display order is title-ascending via ListAll.
type Store struct {
	mu     sync.RWMutex
	dramas map[string]*models.Drama
	order  []string // ids in first-ingestion order
}

func NewStore() *Store {
	return &Store{dramas: make(map[string]*models.Drama)}
}

// MergeDrama applies one ingestion event atomically: create the drama
// if absent, then merge fields. Ids are never renamed or split; an
// episode number always resolves to the most recently ingested media.
func (s *Store) MergeDrama(u Update) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dramas[u.ID]
	if !ok {
		d = &models.Drama{ID: u.ID, Episodes: make(map[string]models.Episode)}
		s.dramas[u.ID] = d
		s.order = append(s.order, u.ID)
	}

	res := Result{Created: !ok}

	if u.Title != "" {
		d.Title = u.Title
	}
	if u.Cover != "" {
		res.CoverNew = !d.HasCover()
		d.Cover = u.Cover
	}
	if u.Episode != nil {
		_, exists := d.Episodes[u.Episode.Number]
		res.EpisodeNew = !exists
		d.Episodes[u.Episode.Number] = *u.Episode
	}

	res.Episodes = len(d.Episodes)
	res.Title = d.Title
	return res
}

// Get returns a snapshot copy of one drama.
func (s *Store) Get(id string) (models.Drama, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dramas[id]
	if !ok {
		return models.Drama{}, false
	}
	return cloneDrama(d), true
}

// ListAll returns every drama sorted by title ascending (id as
// tiebreak, so repeated listings are identical).
func (s *Store) ListAll() []models.Drama {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Drama, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneDrama(s.dramas[id]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Search returns dramas whose title contains query, case-insensitive,
// in first-ingestion order.
func (s *Store) Search(query string) []models.Drama {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Drama
	for _, id := range s.order {
		d := s.dramas[id]
		if strings.Contains(strings.ToLower(d.Title), q) {
			out = append(out, cloneDrama(d))
		}
	}
	return out
}

// Size returns the number of dramas. Cheap enough for health handlers.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dramas)
}

// TotalEpisodes returns the episode count summed over all dramas.
func (s *Store) TotalEpisodes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, d := range s.dramas {
		total += len(d.Episodes)
	}
	return total
}

func cloneDrama(d *models.Drama) models.Drama {
	c := *d
	c.Episodes = make(map[string]models.Episode, len(d.Episodes))
	for k, v := range d.Episodes {
		c.Episodes[k] = v
	}
	return c
}

// SortedEpisodeNumbers returns d's episode numbers for display:
// numeric keys first in numeric order ("10" after "9"), then any
// non-numeric keys in lexical order.
func SortedEpisodeNumbers(d models.Drama) []string {
	nums := make([]string, 0, len(d.Episodes))
	for n := range d.Episodes {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool {
		a, aerr := strconv.Atoi(nums[i])
		b, berr := strconv.Atoi(nums[j])
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return nums[i] < nums[j]
		}
	})
	return nums
}
