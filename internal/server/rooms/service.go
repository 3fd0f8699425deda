// Package rooms owns exam rooms and their recorded attempts: creation and
// deletion, wall-clock derived lifecycle status, the start/submit exam
// flow, and per-room statistics.
package rooms

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/examhub/examhub/internal/common"
	"github.com/examhub/examhub/internal/logging"
	"github.com/examhub/examhub/internal/server/banks"
	"github.com/google/uuid"
)

// BankReader resolves a question bank id to its questions. Satisfied by
// banks.Service.
type BankReader interface {
	Get(ctx context.Context, bankID string) ([]banks.Question, error)
}

// ServedQuestion is a question as handed to an examinee: the correct
// index is withheld.
type ServedQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// ExamSheet is the data returned by START_EXAM.
type ExamSheet struct {
	AttemptID string           `json:"attempt_id"`
	Questions []ServedQuestion `json:"questions"`
}

// ExamResult is the data returned by SUBMIT_EXAM.
type ExamResult struct {
	Score         int `json:"score"`
	Correct       int `json:"correct"`
	Total         int `json:"total"`
	AttemptNumber int `json:"attempt_number"`
}

// openAttempt is an exam in progress: the exact selection served to one
// participant, pending submission.
type openAttempt struct {
	roomID    string
	userName  string
	questions []banks.Question
}

type Service struct {
	mu       sync.Mutex
	banks    BankReader
	rooms    map[string]*Room
	order    []string
	attempts map[string][]Attempt
	open     map[string]*openAttempt
	now      func() time.Time
	logger   logging.Logger
}

func NewService(bankReader BankReader, logger logging.Logger) *Service {
	return &Service{
		banks:    bankReader,
		rooms:    make(map[string]*Room),
		attempts: make(map[string][]Attempt),
		open:     make(map[string]*openAttempt),
		now:      time.Now,
		logger:   logger.With("module", "rooms"),
	}
}

// Create validates the parameters against the referenced bank and adds the
// room. The bank lookup and the insert are not atomic against a concurrent
// bank update; per-entity consistency is enough here.
func (s *Service) Create(ctx context.Context, name, bankID string, startTime, endTime int64, numQuestions, allowedAttempts int) (*Room, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", common.ErrValidation)
	}
	if endTime <= startTime {
		return nil, fmt.Errorf("%w: end_time must be after start_time", common.ErrValidation)
	}
	if numQuestions < 1 {
		return nil, fmt.Errorf("%w: num_questions must be at least 1", common.ErrValidation)
	}
	if allowedAttempts < 1 {
		return nil, fmt.Errorf("%w: allowed_attempts must be at least 1", common.ErrValidation)
	}

	questions, err := s.banks.Get(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("%w: question bank %q does not exist", common.ErrValidation, bankID)
	}
	if numQuestions > len(questions) {
		return nil, fmt.Errorf("%w: num_questions %d exceeds bank size %d", common.ErrValidation, numQuestions, len(questions))
	}

	room := &Room{
		ID:              uuid.NewString(),
		Name:            name,
		QuestionBankID:  bankID,
		StartTime:       startTime,
		EndTime:         endTime,
		NumQuestions:    numQuestions,
		AllowedAttempts: allowedAttempts,
	}

	s.mu.Lock()
	s.rooms[room.ID] = room
	s.order = append(s.order, room.ID)
	s.mu.Unlock()

	s.logger.Info(ctx, "room created", "room_id", room.ID, "name", name, "bank_id", bankID)
	return room, nil
}

// List returns room summaries in creation order, with status computed at
// call time.
func (s *Service) List(ctx context.Context) []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	summaries := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		room := s.rooms[id]
		summaries = append(summaries, Summary{
			ID:              room.ID,
			Name:            room.Name,
			NumQuestions:    room.NumQuestions,
			AllowedAttempts: room.AllowedAttempts,
			Status:          room.StatusAt(now),
		})
	}
	return summaries
}

// Stats returns the room, the aggregate of its recorded attempts, and the
// individual results in recording order.
func (s *Service) Stats(ctx context.Context, roomID string) (*Info, *Stats, []Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil, nil, common.ErrNotFound
	}

	recorded := s.attempts[roomID]
	results := make([]Attempt, len(recorded))
	copy(results, recorded)

	stats := &Stats{TotalAttempts: len(results)}
	if len(results) > 0 {
		sum := 0
		for _, a := range results {
			sum += a.Score
		}
		stats.AverageScore = float64(sum) / float64(len(results))
	}

	info := &Info{Room: *room, Status: room.StatusAt(s.now())}
	return info, stats, results, nil
}

// Delete removes the room and cascades its attempt records, both recorded
// and in progress.
func (s *Service) Delete(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return common.ErrNotFound
	}
	delete(s.rooms, roomID)
	delete(s.attempts, roomID)
	for id, attempt := range s.open {
		if attempt.roomID == roomID {
			delete(s.open, id)
		}
	}
	for i, id := range s.order {
		if id == roomID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.logger.Info(ctx, "room deleted", "room_id", roomID)
	return nil
}

// StartExam opens an attempt for the user: it checks the room is active
// and the user has attempts left, draws the room's question count from the
// bank, and returns the selection with correct answers withheld.
func (s *Service) StartExam(ctx context.Context, roomID, userName string) (*ExamSheet, error) {
	s.mu.Lock()
	room, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return nil, common.ErrNotFound
	}
	if status := room.StatusAt(s.now()); status != StatusActive {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: room is %s", common.ErrValidation, status)
	}
	if s.attemptCount(roomID, userName) >= room.AllowedAttempts {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: no attempts left", common.ErrValidation)
	}
	bankID := room.QuestionBankID
	numQuestions := room.NumQuestions
	s.mu.Unlock()

	// Bank lookup happens outside the lock; the bank may have been deleted
	// since the room was created.
	questions, err := s.banks.Get(ctx, bankID)
	if err != nil {
		return nil, common.ErrNotFound
	}
	if numQuestions > len(questions) {
		return nil, fmt.Errorf("%w: bank %q no longer has enough questions", common.ErrValidation, bankID)
	}

	selection := drawQuestions(questions, numQuestions)

	served := make([]ServedQuestion, len(selection))
	for i, q := range selection {
		served[i] = ServedQuestion{Question: q.Question, Options: q.Options}
	}

	attempt := &openAttempt{roomID: roomID, userName: userName, questions: selection}
	attemptID := uuid.NewString()

	s.mu.Lock()
	s.open[attemptID] = attempt
	s.mu.Unlock()

	s.logger.Info(ctx, "exam started", "room_id", roomID, "username", userName, "attempt_id", attemptID)
	return &ExamSheet{AttemptID: attemptID, Questions: served}, nil
}

// SubmitExam scores the answers against the served selection and records
// the attempt. An attempt id can be submitted once; submitting someone
// else's attempt is NotFound.
func (s *Service) SubmitExam(ctx context.Context, attemptID, userName string, answers []int) (*ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.open[attemptID]
	if !ok || attempt.userName != userName {
		return nil, common.ErrNotFound
	}

	room, ok := s.rooms[attempt.roomID]
	if !ok {
		delete(s.open, attemptID)
		return nil, common.ErrNotFound
	}

	number := s.attemptCount(attempt.roomID, userName) + 1
	if number > room.AllowedAttempts {
		delete(s.open, attemptID)
		return nil, fmt.Errorf("%w: no attempts left", common.ErrValidation)
	}

	delete(s.open, attemptID)

	correct := 0
	for i, q := range attempt.questions {
		if i < len(answers) && answers[i] == q.CorrectIndex {
			correct++
		}
	}
	total := len(attempt.questions)
	score := int(math.Round(100 * float64(correct) / float64(total)))

	s.attempts[attempt.roomID] = append(s.attempts[attempt.roomID], Attempt{
		UserName:      userName,
		Score:         score,
		AttemptNumber: number,
	})

	s.logger.Info(ctx, "exam submitted", "room_id", attempt.roomID, "username", userName, "score", score)
	return &ExamResult{Score: score, Correct: correct, Total: total, AttemptNumber: number}, nil
}

// attemptCount returns recorded attempts for the user in the room.
// Callers must hold s.mu.
func (s *Service) attemptCount(roomID, userName string) int {
	count := 0
	for _, a := range s.attempts[roomID] {
		if a.UserName == userName {
			count++
		}
	}
	return count
}

// drawQuestions picks a uniform random sample of k questions, keeping the
// bank's original order within the selection.
func drawQuestions(questions []banks.Question, k int) []banks.Question {
	if k >= len(questions) {
		return questions
	}

	indexes := rand.Perm(len(questions))[:k]
	sort.Ints(indexes)

	selection := make([]banks.Question, k)
	for i, idx := range indexes {
		selection[i] = questions[idx]
	}
	return selection
}
