package rooms

import (
	"context"
	"testing"
	"time"

	"github.com/examhub/examhub/internal/common"
	"github.com/examhub/examhub/internal/logging"
	"github.com/examhub/examhub/internal/server/banks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBanks struct {
	banks map[string][]banks.Question
}

func (f *fakeBanks) Get(ctx context.Context, bankID string) ([]banks.Question, error) {
	questions, ok := f.banks[bankID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return questions, nil
}

func mathBank() []banks.Question {
	return []banks.Question{
		{Question: "1+1=?", Options: []string{"1", "2", "3", "4"}, CorrectIndex: 1},
		{Question: "2+2=?", Options: []string{"3", "4", "5", "6"}, CorrectIndex: 1},
		{Question: "3+3=?", Options: []string{"5", "6", "7", "8"}, CorrectIndex: 1},
		{Question: "4+4=?", Options: []string{"7", "8", "9", "10"}, CorrectIndex: 1},
		{Question: "5+5=?", Options: []string{"9", "10", "11", "12"}, CorrectIndex: 1},
	}
}

func newTestService() *Service {
	s := NewService(&fakeBanks{banks: map[string][]banks.Question{"math_101": mathBank()}}, logging.NopLogger{})
	return s
}

// activeWindow returns a [start, end) window that contains now.
func activeWindow(s *Service) (int64, int64) {
	now := s.now().Unix()
	return now - 60, now + 3600
}

func TestCreateAndList(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	start, end := activeWindow(s)

	room, err := s.Create(ctx, "Advanced Math", "math_101", start, end, 5, 3)
	require.NoError(t, err)
	require.NotEmpty(t, room.ID)

	list := s.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, room.ID, list[0].ID)
	assert.Equal(t, "Advanced Math", list[0].Name)
	assert.Equal(t, 5, list[0].NumQuestions)
	assert.Equal(t, 3, list[0].AllowedAttempts)
	assert.Equal(t, StatusActive, list[0].Status)
}

func TestCreateValidation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	start, end := activeWindow(s)

	tests := []struct {
		name            string
		roomName        string
		bankID          string
		start, end      int64
		numQuestions    int
		allowedAttempts int
	}{
		{"unknown bank", "R", "ghost", start, end, 1, 1},
		{"end before start", "R", "math_101", end, start, 1, 1},
		{"end equals start", "R", "math_101", start, start, 1, 1},
		{"too many questions", "R", "math_101", start, end, 6, 1},
		{"zero questions", "R", "math_101", start, end, 0, 1},
		{"zero attempts", "R", "math_101", start, end, 1, 0},
		{"empty name", "", "math_101", start, end, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.roomName, tt.bankID, tt.start, tt.end, tt.numQuestions, tt.allowedAttempts)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestStatusDerivedFromClock(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	fixed := time.Unix(1_000_000, 0)
	s.now = func() time.Time { return fixed }

	_, err := s.Create(ctx, "Upcoming", "math_101", fixed.Unix()+100, fixed.Unix()+200, 2, 1)
	require.NoError(t, err)
	_, err = s.Create(ctx, "Active", "math_101", fixed.Unix()-100, fixed.Unix()+100, 2, 1)
	require.NoError(t, err)
	_, err = s.Create(ctx, "Closed", "math_101", fixed.Unix()-200, fixed.Unix()-100, 2, 1)
	require.NoError(t, err)

	byName := map[string]string{}
	for _, summary := range s.List(ctx) {
		byName[summary.Name] = summary.Status
	}
	assert.Equal(t, StatusUpcoming, byName["Upcoming"])
	assert.Equal(t, StatusActive, byName["Active"])
	assert.Equal(t, StatusClosed, byName["Closed"])

	// Advancing the clock flips the statuses without any mutation.
	s.now = func() time.Time { return fixed.Add(150 * time.Second) }
	for _, summary := range s.List(ctx) {
		if summary.Name == "Upcoming" {
			assert.Equal(t, StatusActive, summary.Status)
		}
	}
}

func TestStatsEmptyRoom(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	start, end := activeWindow(s)

	room, err := s.Create(ctx, "Advanced Math", "math_101", start, end, 5, 3)
	require.NoError(t, err)

	info, stats, results, err := s.Stats(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, info.ID)
	assert.Equal(t, "Advanced Math", info.Name)
	assert.Equal(t, 0, stats.TotalAttempts)
	assert.Equal(t, 0.0, stats.AverageScore)
	assert.Empty(t, results)
}

func TestStatsUnknownRoom(t *testing.T) {
	s := newTestService()
	_, _, _, err := s.Stats(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestExamFlow(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	start, end := activeWindow(s)

	room, err := s.Create(ctx, "Exam", "math_101", start, end, 3, 2)
	require.NoError(t, err)

	sheet, err := s.StartExam(ctx, room.ID, "alice")
	require.NoError(t, err)
	require.Len(t, sheet.Questions, 3)
	for _, q := range sheet.Questions {
		assert.NotEmpty(t, q.Question)
		assert.NotEmpty(t, q.Options)
	}

	// Every served question in the bank has correct index 1.
	result, err := s.SubmitExam(ctx, sheet.AttemptID, "alice", []int{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 67, result.Score)
	assert.Equal(t, 1, result.AttemptNumber)

	info, stats, results, err := s.Stats(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, info.Status)
	assert.Equal(t, 1, stats.TotalAttempts)
	assert.Equal(t, 67.0, stats.AverageScore)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].UserName)
	assert.Equal(t, 1, results[0].AttemptNumber)
}

func TestSubmitExamTwice(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	start, end := activeWindow(s)

	room, err := s.Create(ctx, "Exam", "math_101", start, end, 2, 3)
	require.NoError(t, err)

	sheet, err := s.StartExam(ctx, room.ID, "alice")
	require.NoError(t, err)

	_, err = s.SubmitExam(ctx, sheet.AttemptID, "alice", []int{1, 1})
	require.NoError(t, err)

	_, err = s.SubmitExam(ctx, sheet.AttemptID, "alice", []int{1, 1})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmitForeignAttempt(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	start, end := activeWindow(s)

	room, err := s.Create(ctx, "Exam", "math_101", start, end, 2, 3)
	require.NoError(t, err)

	sheet, err := s.StartExam(ctx, room.ID, "alice")
	require.NoError(t, err)

	_, err = s.SubmitExam(ctx, sheet.AttemptID, "mallory", []int{1, 1})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAllowedAttemptsExhausted(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	start, end := activeWindow(s)

	room, err := s.Create(ctx, "Exam", "math_101", start, end, 2, 1)
	require.NoError(t, err)

	sheet, err := s.StartExam(ctx, room.ID, "alice")
	require.NoError(t, err)
	_, err = s.SubmitExam(ctx, sheet.AttemptID, "alice", []int{1, 1})
	require.NoError(t, err)

	_, err = s.StartExam(ctx, room.ID, "alice")
	assert.ErrorIs(t, err, common.ErrValidation)

	// Other participants are unaffected.
	_, err = s.StartExam(ctx, room.ID, "bob")
	assert.NoError(t, err)
}

func TestStartExamOutsideWindow(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	now := s.now().Unix()

	upcoming, err := s.Create(ctx, "Upcoming", "math_101", now+3600, now+7200, 2, 1)
	require.NoError(t, err)
	_, err = s.StartExam(ctx, upcoming.ID, "alice")
	assert.ErrorIs(t, err, common.ErrValidation)

	closed, err := s.Create(ctx, "Closed", "math_101", now-7200, now-3600, 2, 1)
	require.NoError(t, err)
	_, err = s.StartExam(ctx, closed.ID, "alice")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestStartExamDanglingBank(t *testing.T) {
	reader := &fakeBanks{banks: map[string][]banks.Question{"math_101": mathBank()}}
	s := NewService(reader, logging.NopLogger{})
	ctx := context.Background()
	now := s.now().Unix()

	room, err := s.Create(ctx, "Exam", "math_101", now-60, now+3600, 2, 1)
	require.NoError(t, err)

	// Bank deleted after the room was created.
	delete(reader.banks, "math_101")

	_, err = s.StartExam(ctx, room.ID, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// The room itself is still listed and reports stats.
	assert.Len(t, s.List(ctx), 1)
	_, _, _, err = s.Stats(ctx, room.ID)
	assert.NoError(t, err)
}

func TestDeleteCascadesAttempts(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	start, end := activeWindow(s)

	room, err := s.Create(ctx, "Exam", "math_101", start, end, 2, 3)
	require.NoError(t, err)

	sheet, err := s.StartExam(ctx, room.ID, "alice")
	require.NoError(t, err)
	_, err = s.SubmitExam(ctx, sheet.AttemptID, "alice", []int{1, 1})
	require.NoError(t, err)

	open, err := s.StartExam(ctx, room.ID, "alice")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, room.ID))
	assert.Empty(t, s.List(ctx))

	_, _, _, err = s.Stats(ctx, room.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// The in-flight attempt died with the room.
	_, err = s.SubmitExam(ctx, open.AttemptID, "alice", []int{1, 1})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteUnknownRoom(t *testing.T) {
	s := newTestService()
	assert.ErrorIs(t, s.Delete(context.Background(), "ghost"), common.ErrNotFound)
}

func TestDrawQuestionsSubset(t *testing.T) {
	bank := mathBank()

	for i := 0; i < 20; i++ {
		selection := drawQuestions(bank, 3)
		require.Len(t, selection, 3)

		// Selection preserves bank order and holds no duplicates.
		positions := make([]int, 0, 3)
		for _, q := range selection {
			for idx, orig := range bank {
				if orig.Question == q.Question {
					positions = append(positions, idx)
				}
			}
		}
		require.Len(t, positions, 3)
		assert.Less(t, positions[0], positions[1])
		assert.Less(t, positions[1], positions[2])
	}
}

func TestDrawQuestionsWholeBank(t *testing.T) {
	bank := mathBank()
	assert.Equal(t, bank, drawQuestions(bank, len(bank)))
	assert.Equal(t, bank, drawQuestions(bank, len(bank)+10))
}
