package wall

import (
	"math/rand"
	"time"

	"koubei/internal/domain/testimonial"
)

// Store is the in-memory reconciliation list behind the carousel. It merges
// the initial bulk load, live feed inserts and the client's own insert echo
// into one sequence without duplicate ids.
//
// All access is confined to the UI event loop, so there is no locking.
type Store struct {
	rng  *rand.Rand
	rows []testimonial.Row
}

// NewStore builds a store around the given random source; nil gets a
// time-seeded source. Tests pass a fixed seed.
func NewStore(rng *rand.Rand) *Store {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Store{rng: rng}
}

// Load replaces the sequence with a uniformly shuffled copy of rows, so the
// wall does not always surface the same testimonials first.
func (s *Store) Load(rows []testimonial.Row) {
	shuffled := make([]testimonial.Row, len(rows))
	copy(shuffled, rows)

	// Fisher-Yates.
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	s.rows = shuffled
}

// Upsert replaces the row with the same id in place, or prepends when the id
// is new. Last observed version of an id wins; untouched order is preserved.
func (s *Store) Upsert(row testimonial.Row) {
	for i := range s.rows {
		if s.rows[i].ID == row.ID {
			s.rows[i] = row
			return
		}
	}
	s.rows = append([]testimonial.Row{row}, s.rows...)
}

// Rows returns the current sequence. Callers must not mutate it.
func (s *Store) Rows() []testimonial.Row {
	return s.rows
}

func (s *Store) Len() int {
	return len(s.rows)
}

// At returns the row at index, guarding against stale indexes.
func (s *Store) At(index int) (testimonial.Row, bool) {
	if index < 0 || index >= len(s.rows) {
		return testimonial.Row{}, false
	}
	return s.rows[index], true
}
