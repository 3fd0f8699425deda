package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/examhub/examhub/internal/client/client"
)

func (a *App) Rooms(ctx context.Context) error {

	rooms, err := a.api.ListRooms(ctx)
	if err != nil {
		a.reportError(err)
		return err
	}

	if len(rooms) == 0 {
		fmt.Println("No rooms")
		return nil
	}

	for _, r := range rooms {
		fmt.Printf("%s  %-20s  %-8s  questions: %d  attempts: %d\n",
			r.ID, r.Name, r.Status, r.NumQuestions, r.AllowedAttempts)
	}
	return nil
}

// Exam runs one full exam pass: start an attempt, ask every question on
// the sheet, submit the answers and print the score.
func (a *App) Exam(ctx context.Context) error {

	roomID, err := GetSimpleText(a.reader, "Enter room id", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	sheet, err := a.api.StartExam(ctx, roomID)
	if err != nil {
		a.reportError(err)
		return err
	}

	answers := make([]int, len(sheet.Questions))
	for i, q := range sheet.Questions {
		fmt.Printf("\nQuestion %d/%d: %s\n", i+1, len(sheet.Questions), q.Question)
		for j, option := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, option)
		}

		for {
			n, err := GetInt(a.reader, fmt.Sprintf("Your answer (1-%d)", len(q.Options)), os.Stdout)
			if err != nil {
				log.Printf("error: %v", err)
				return err
			}
			if n < 1 || n > len(q.Options) {
				fmt.Println("Answer out of range")
				continue
			}
			answers[i] = n - 1
			break
		}
	}

	result, err := a.api.SubmitExam(ctx, sheet.AttemptID, answers)
	if err != nil {
		a.reportError(err)
		return err
	}

	fmt.Printf("\nScore: %d%% (%d/%d correct), attempt %d\n",
		result.Score, result.Correct, result.Total, result.AttemptNumber)
	return nil
}

func (a *App) CreateRoom(ctx context.Context) error {

	name, err := GetSimpleText(a.reader, "Enter room name", os.Stdout)
	if err != nil {
		return err
	}
	bankID, err := GetSimpleText(a.reader, "Enter question bank id", os.Stdout)
	if err != nil {
		return err
	}
	startIn, err := GetInt(a.reader, "Starts in how many minutes (0 = now)", os.Stdout)
	if err != nil {
		return err
	}
	durationMin, err := GetInt(a.reader, "Duration, minutes", os.Stdout)
	if err != nil {
		return err
	}
	numQuestions, err := GetInt(a.reader, "Number of questions", os.Stdout)
	if err != nil {
		return err
	}
	attempts, err := GetInt(a.reader, "Allowed attempts", os.Stdout)
	if err != nil {
		return err
	}

	start := time.Now().Add(time.Duration(startIn) * time.Minute).Unix()
	spec := &client.RoomSpec{
		RoomName:        name,
		QuestionBankID:  bankID,
		StartTime:       start,
		EndTime:         start + int64(durationMin)*60,
		NumQuestions:    numQuestions,
		AllowedAttempts: attempts,
	}

	roomID, err := a.api.CreateRoom(ctx, spec)
	if err != nil {
		a.reportError(err)
		return err
	}

	log.Printf("Room created: %s", roomID)
	return nil
}

func (a *App) Stats(ctx context.Context) error {

	roomID, err := GetSimpleText(a.reader, "Enter room id", os.Stdout)
	if err != nil {
		return err
	}

	stats, err := a.api.GetRoomStats(ctx, roomID)
	if err != nil {
		a.reportError(err)
		return err
	}

	fmt.Printf("Room %s (%s), status %s\n", stats.Room.Name, stats.Room.ID, stats.Room.Status)
	fmt.Printf("Attempts: %d, average score: %.1f%%\n", stats.Stats.TotalAttempts, stats.Stats.AverageScore)
	for _, r := range stats.Results {
		fmt.Printf("  %-20s  %3d%%  attempt %d\n", r.Username, r.Score, r.AttemptNumber)
	}
	return nil
}

func (a *App) DeleteRoom(ctx context.Context) error {

	roomID, err := GetSimpleText(a.reader, "Enter room id", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.DeleteRoom(ctx, roomID); err != nil {
		a.reportError(err)
		return err
	}

	log.Println("Room deleted")
	return nil
}
