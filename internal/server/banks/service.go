package banks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/examhub/examhub/internal/logging"
)

// Archiver receives a JSON snapshot of a bank after every mutation. The
// archive package provides an S3-backed implementation and a no-op.
type Archiver interface {
	StoreBankSnapshot(ctx context.Context, bankID string, snapshot []byte) error
}

const snapshotTimeout = 30 * time.Second

// Service validates bank mutations, applies them to the store, and ships
// snapshots to the archiver in the background. Bank ids are the bank names
// given at import time.
type Service struct {
	store    *Store
	archiver Archiver
	logger   logging.Logger
}

func NewService(store *Store, archiver Archiver, logger logging.Logger) *Service {
	return &Service{
		store:    store,
		archiver: archiver,
		logger:   logger.With("module", "banks"),
	}
}

// Import creates a bank named bankName and returns its id.
func (s *Service) Import(ctx context.Context, bankName string, questions []Question) (string, error) {
	if err := ValidateQuestions(questions); err != nil {
		return "", err
	}
	if err := s.store.Insert(bankName, questions); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "bank imported", "bank_id", bankName, "questions", len(questions))
	s.snapshot(bankName, questions)
	return bankName, nil
}

func (s *Service) List(ctx context.Context) []string {
	return s.store.List()
}

func (s *Service) Get(ctx context.Context, bankID string) ([]Question, error) {
	return s.store.Get(bankID)
}

// Update replaces the bank's questions wholesale.
func (s *Service) Update(ctx context.Context, bankID string, questions []Question) error {
	if err := ValidateQuestions(questions); err != nil {
		return err
	}
	if err := s.store.Replace(bankID, questions); err != nil {
		return err
	}

	s.logger.Info(ctx, "bank updated", "bank_id", bankID, "questions", len(questions))
	s.snapshot(bankID, questions)
	return nil
}

func (s *Service) Delete(ctx context.Context, bankID string) error {
	questions, err := s.store.Get(bankID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(bankID); err != nil {
		return err
	}

	s.logger.Info(ctx, "bank deleted", "bank_id", bankID)
	// Final snapshot preserves the content the delete removed.
	s.snapshot(bankID, questions)
	return nil
}

// snapshot uploads asynchronously; archive failures are logged, never
// surfaced to the client.
func (s *Service) snapshot(bankID string, questions []Question) {
	payload, err := json.Marshal(questions)
	if err != nil {
		s.logger.Error(context.Background(), "marshalling bank snapshot", "bank_id", bankID, "error", err.Error())
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()

		if err := s.archiver.StoreBankSnapshot(ctx, bankID, payload); err != nil {
			s.logger.Error(ctx, "storing bank snapshot", "bank_id", bankID, "error", err.Error())
		}
	}()
}
