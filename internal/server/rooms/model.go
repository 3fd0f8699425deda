package rooms

import "time"

// Room statuses derived from wall-clock time. Status is never stored;
// it is recomputed on every read.
const (
	StatusUpcoming = "upcoming"
	StatusActive   = "active"
	StatusClosed   = "closed"
)

// Room is one time-boxed exam instance. It references a question bank by
// id without owning it.
type Room struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	QuestionBankID  string `json:"question_bank_id"`
	StartTime       int64  `json:"start_time"`
	EndTime         int64  `json:"end_time"`
	NumQuestions    int    `json:"num_questions"`
	AllowedAttempts int    `json:"allowed_attempts"`
}

// StatusAt computes the room's lifecycle status for the given instant.
// The time window is half-open: [StartTime, EndTime).
func (r *Room) StatusAt(now time.Time) string {
	ts := now.Unix()
	switch {
	case ts < r.StartTime:
		return StatusUpcoming
	case ts < r.EndTime:
		return StatusActive
	default:
		return StatusClosed
	}
}

// Summary is one LIST_ROOMS entry.
type Summary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	NumQuestions    int    `json:"num_questions"`
	AllowedAttempts int    `json:"allowed_attempts"`
	Status          string `json:"status"`
}

// Info is the room object embedded in a GET_ROOM_STATS response.
type Info struct {
	Room
	Status string `json:"status"`
}

// Attempt is one participant's recorded, scored pass at a room. Score is
// the percentage of correct answers, 0-100.
type Attempt struct {
	UserName      string `json:"username"`
	Score         int    `json:"score"`
	AttemptNumber int    `json:"attempt_number"`
}

// Stats aggregates a room's recorded attempts. AverageScore is 0 when
// there are no attempts.
type Stats struct {
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
}
