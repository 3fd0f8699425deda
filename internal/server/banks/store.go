// Package banks owns the named question banks: an in-memory store plus a
// service layer that validates mutations and snapshots them to the archive.
package banks

import (
	"sync"

	"github.com/examhub/examhub/internal/common"
)

// Store holds question banks keyed by bank id. Banks are returned and
// accepted by copy, so callers can never observe a half-written bank.
type Store struct {
	mu    sync.Mutex
	banks map[string][]Question
	order []string
}

func NewStore() *Store {
	return &Store{banks: make(map[string][]Question)}
}

// Insert adds a new bank. Returns common.ErrAlreadyExists when the id is
// taken.
func (s *Store) Insert(bankID string, questions []Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.banks[bankID]; ok {
		return common.ErrAlreadyExists
	}
	s.banks[bankID] = cloneQuestions(questions)
	s.order = append(s.order, bankID)
	return nil
}

// List returns bank ids in insertion order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Get returns the bank's questions, or common.ErrNotFound.
func (s *Store) Get(bankID string) ([]Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	questions, ok := s.banks[bankID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneQuestions(questions), nil
}

// Replace swaps the bank's questions wholesale, or returns
// common.ErrNotFound for an unknown id.
func (s *Store) Replace(bankID string, questions []Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.banks[bankID]; !ok {
		return common.ErrNotFound
	}
	s.banks[bankID] = cloneQuestions(questions)
	return nil
}

// Delete removes the bank, or returns common.ErrNotFound.
func (s *Store) Delete(bankID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.banks[bankID]; !ok {
		return common.ErrNotFound
	}
	delete(s.banks, bankID)
	for i, id := range s.order {
		if id == bankID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneQuestions(questions []Question) []Question {
	cloned := make([]Question, len(questions))
	for i, q := range questions {
		cloned[i] = q
		cloned[i].Options = append([]string(nil), q.Options...)
	}
	return cloned
}
