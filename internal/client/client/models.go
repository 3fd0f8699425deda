package client

// Wire shapes for the exam server's request and response payloads. These
// mirror the server's JSON contract without importing its internals.

type Question struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

type LoginResult struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

type RoomSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	NumQuestions    int    `json:"num_questions"`
	AllowedAttempts int    `json:"allowed_attempts"`
	Status          string `json:"status"`
}

type RoomSpec struct {
	RoomName        string `json:"room_name"`
	QuestionBankID  string `json:"question_bank_id"`
	StartTime       int64  `json:"start_time"`
	EndTime         int64  `json:"end_time"`
	NumQuestions    int    `json:"num_questions"`
	AllowedAttempts int    `json:"allowed_attempts"`
}

type ExamQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type ExamSheet struct {
	AttemptID string         `json:"attempt_id"`
	Questions []ExamQuestion `json:"questions"`
}

type ExamResult struct {
	Score         int `json:"score"`
	Correct       int `json:"correct"`
	Total         int `json:"total"`
	AttemptNumber int `json:"attempt_number"`
}

type RoomInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	QuestionBankID  string `json:"question_bank_id"`
	StartTime       int64  `json:"start_time"`
	EndTime         int64  `json:"end_time"`
	NumQuestions    int    `json:"num_questions"`
	AllowedAttempts int    `json:"allowed_attempts"`
	Status          string `json:"status"`
}

type AttemptRecord struct {
	Username      string `json:"username"`
	Score         int    `json:"score"`
	AttemptNumber int    `json:"attempt_number"`
}

type RoomStats struct {
	Room  RoomInfo `json:"room"`
	Stats struct {
		TotalAttempts int     `json:"total_attempts"`
		AverageScore  float64 `json:"average_score"`
	} `json:"stats"`
	Results []AttemptRecord `json:"results"`
}
