package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/examhub/examhub/internal/client/client"
)

// readQuestionsFile loads a JSON array of questions from disk:
//
//	[{"question": "...", "options": ["...", "..."], "correct_index": 0}, ...]
func readQuestionsFile(path string) ([]client.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var questions []client.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return questions, nil
}

func (a *App) ImportBank(ctx context.Context) error {

	name, err := GetSimpleText(a.reader, "Enter bank name", os.Stdout)
	if err != nil {
		return err
	}
	path, err := GetSimpleText(a.reader, "Enter questions file (JSON)", os.Stdout)
	if err != nil {
		return err
	}

	questions, err := readQuestionsFile(path)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	bankID, err := a.api.ImportQuestions(ctx, name, questions)
	if err != nil {
		a.reportError(err)
		return err
	}

	log.Printf("Imported %d questions as bank %s", len(questions), bankID)
	return nil
}

func (a *App) Banks(ctx context.Context) error {

	ids, err := a.api.ListQuestionBanks(ctx)
	if err != nil {
		a.reportError(err)
		return err
	}

	if len(ids) == 0 {
		fmt.Println("No question banks")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func (a *App) ShowBank(ctx context.Context) error {

	bankID, err := GetSimpleText(a.reader, "Enter bank id", os.Stdout)
	if err != nil {
		return err
	}

	questions, err := a.api.GetQuestionBank(ctx, bankID)
	if err != nil {
		a.reportError(err)
		return err
	}

	for i, q := range questions {
		fmt.Printf("%d. %s\n", i+1, q.Question)
		for j, option := range q.Options {
			marker := " "
			if j == q.CorrectIndex {
				marker = "*"
			}
			fmt.Printf("  %s %d) %s\n", marker, j+1, option)
		}
	}
	return nil
}

func (a *App) UpdateBank(ctx context.Context) error {

	bankID, err := GetSimpleText(a.reader, "Enter bank id", os.Stdout)
	if err != nil {
		return err
	}
	path, err := GetSimpleText(a.reader, "Enter questions file (JSON)", os.Stdout)
	if err != nil {
		return err
	}

	questions, err := readQuestionsFile(path)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.api.UpdateQuestionBank(ctx, bankID, questions); err != nil {
		a.reportError(err)
		return err
	}

	log.Printf("Bank %s updated (%d questions)", bankID, len(questions))
	return nil
}

func (a *App) DeleteBank(ctx context.Context) error {

	bankID, err := GetSimpleText(a.reader, "Enter bank id", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.DeleteQuestionBank(ctx, bankID); err != nil {
		a.reportError(err)
		return err
	}

	log.Println("Bank deleted")
	return nil
}
