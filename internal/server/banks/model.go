package banks

import (
	"fmt"

	"github.com/examhub/examhub/internal/common"
)

// Question is one multiple-choice question. CorrectIndex points into
// Options.
type Question struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// ValidateQuestions checks the shape of an imported or updated question
// set: at least one question, every question with at least one option and
// an in-bounds correct index.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: question list is empty", common.ErrValidation)
	}
	for i, q := range questions {
		if q.Question == "" {
			return fmt.Errorf("%w: question %d has no text", common.ErrValidation, i)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: question %d has no options", common.ErrValidation, i)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: question %d correct_index %d out of range", common.ErrValidation, i, q.CorrectIndex)
		}
	}
	return nil
}
