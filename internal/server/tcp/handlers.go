package tcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/examhub/examhub/internal/common"
	"github.com/examhub/examhub/internal/logging"
	"github.com/examhub/examhub/internal/protocol"
	"github.com/examhub/examhub/internal/server/auth"
	"github.com/examhub/examhub/internal/server/banks"
	"github.com/examhub/examhub/internal/server/rooms"
	"github.com/examhub/examhub/internal/server/users"
)

// Request data shapes. The codec only guarantees a JSON object; field
// validation happens here and in the services.

type credentialsData struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type importQuestionsData struct {
	BankName  string           `json:"bank_name"`
	Questions []banks.Question `json:"questions"`
}

type bankIDData struct {
	BankID string `json:"bank_id"`
}

type updateBankData struct {
	BankID    string           `json:"bank_id"`
	Questions []banks.Question `json:"questions"`
}

type createRoomData struct {
	RoomName        string `json:"room_name"`
	QuestionBankID  string `json:"question_bank_id"`
	StartTime       int64  `json:"start_time"`
	EndTime         int64  `json:"end_time"`
	NumQuestions    int    `json:"num_questions"`
	AllowedAttempts int    `json:"allowed_attempts"`
}

type roomIDData struct {
	RoomID string `json:"room_id"`
}

type submitExamData struct {
	AttemptID string `json:"attempt_id"`
	Answers   []int  `json:"answers"`
}

type loginData struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

type roomStatsData struct {
	Room    *rooms.Info     `json:"room"`
	Stats   *rooms.Stats    `json:"stats"`
	Results []rooms.Attempt `json:"results"`
}

func success(message string, data any) *protocol.Response {
	return &protocol.Response{Status: protocol.StatusSuccess, Message: message, Data: data}
}

func failure(message string) *protocol.Response {
	return &protocol.Response{Status: protocol.StatusFailure, Message: message}
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", common.ErrValidation)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

// dispatch authorizes and routes one request. Undispatchable requests get
// a failure response; the connection itself stays open.
func (s *Server) dispatch(ctx context.Context, c *conn, logger logging.Logger, payload []byte) *protocol.Response {
	var req protocol.Request
	if err := json.Unmarshal(payload, &req); err != nil || req.Action == "" {
		return failure("missing action")
	}

	if c.session == nil {
		switch req.Action {
		case protocol.ActionRegister:
			return s.handleRegister(ctx, logger, req.Data)
		case protocol.ActionLogin:
			return s.handleLogin(ctx, c, logger, req.Data)
		default:
			return failure("authentication required")
		}
	}

	switch req.Action {
	case protocol.ActionRegister:
		return s.handleRegister(ctx, logger, req.Data)
	case protocol.ActionLogin:
		return s.handleLogin(ctx, c, logger, req.Data)
	case protocol.ActionLogout:
		s.sessions.Release(ctx, c.session)
		c.session = nil
		return success("logged out", nil)
	case protocol.ActionListRooms:
		return success("", s.rooms.List(ctx))
	case protocol.ActionStartExam:
		return s.handleStartExam(ctx, c, req.Data)
	case protocol.ActionSubmitExam:
		return s.handleSubmitExam(ctx, c, req.Data)
	case protocol.ActionImportQuestions,
		protocol.ActionListQuestionBanks,
		protocol.ActionGetQuestionBank,
		protocol.ActionUpdateQuestionBank,
		protocol.ActionDeleteQuestionBank,
		protocol.ActionCreateRoom,
		protocol.ActionDeleteRoom,
		protocol.ActionGetRoomStats:
		if c.session.Role != users.RoleAdmin {
			return failure("permission denied")
		}
		return s.dispatchAdmin(ctx, &req)
	default:
		return failure(fmt.Sprintf("unknown action %q", req.Action))
	}
}

func (s *Server) dispatchAdmin(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Action {
	case protocol.ActionImportQuestions:
		return s.handleImportQuestions(ctx, req.Data)
	case protocol.ActionListQuestionBanks:
		return success("", s.banks.List(ctx))
	case protocol.ActionGetQuestionBank:
		return s.handleGetQuestionBank(ctx, req.Data)
	case protocol.ActionUpdateQuestionBank:
		return s.handleUpdateQuestionBank(ctx, req.Data)
	case protocol.ActionDeleteQuestionBank:
		return s.handleDeleteQuestionBank(ctx, req.Data)
	case protocol.ActionCreateRoom:
		return s.handleCreateRoom(ctx, req.Data)
	case protocol.ActionDeleteRoom:
		return s.handleDeleteRoom(ctx, req.Data)
	default: // protocol.ActionGetRoomStats
		return s.handleGetRoomStats(ctx, req.Data)
	}
}

func (s *Server) handleRegister(ctx context.Context, logger logging.Logger, raw json.RawMessage) *protocol.Response {
	var data credentialsData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	_, err := s.users.Register(ctx, data.Username, data.Password)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return failure("username already exists")
		}
		if errors.Is(err, common.ErrValidation) {
			return failure(err.Error())
		}
		logger.Error(ctx, "registration failed", "error", err.Error())
		return failure("registration failed")
	}

	logger.Info(ctx, "user registered", "username", data.Username)
	return success("registered", nil)
}

func (s *Server) handleLogin(ctx context.Context, c *conn, logger logging.Logger, raw json.RawMessage) *protocol.Response {
	var data credentialsData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	user, err := s.users.Authenticate(ctx, data.Username, data.Password)
	if err != nil {
		return failure("invalid username or password")
	}

	token, err := auth.GenerateToken(user.UserName, user.Role, s.jwtSecret, s.tokenValidity)
	if err != nil {
		logger.Error(ctx, "minting session token", "error", err.Error())
		token = ""
	}

	// A connection re-authenticating as a different user gives up its old
	// binding first; Bind then kicks any other connection holding the user.
	if c.session != nil {
		s.sessions.Release(ctx, c.session)
	}
	c.session = s.sessions.Bind(ctx, user.UserName, user.Role, c)

	logger.Info(ctx, "user logged in", "username", user.UserName, "role", user.Role)
	return success("logged in", loginData{Username: user.UserName, Role: user.Role, Token: token})
}

func (s *Server) handleImportQuestions(ctx context.Context, raw json.RawMessage) *protocol.Response {
	var data importQuestionsData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}
	if data.BankName == "" {
		return failure("bank_name is required")
	}

	bankID, err := s.banks.Import(ctx, data.BankName, data.Questions)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return failure("bank already exists")
		}
		return failure(err.Error())
	}

	return success("questions imported", map[string]string{"bank_id": bankID})
}

func (s *Server) handleGetQuestionBank(ctx context.Context, raw json.RawMessage) *protocol.Response {
	var data bankIDData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	questions, err := s.banks.Get(ctx, data.BankID)
	if err != nil {
		return failure("bank not found")
	}
	return success("", questions)
}

func (s *Server) handleUpdateQuestionBank(ctx context.Context, raw json.RawMessage) *protocol.Response {
	var data updateBankData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	if err := s.banks.Update(ctx, data.BankID, data.Questions); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return failure("bank not found")
		}
		return failure(err.Error())
	}
	return success("bank updated", nil)
}

func (s *Server) handleDeleteQuestionBank(ctx context.Context, raw json.RawMessage) *protocol.Response {
	var data bankIDData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	if err := s.banks.Delete(ctx, data.BankID); err != nil {
		return failure("bank not found")
	}
	return success("bank deleted", nil)
}

func (s *Server) handleCreateRoom(ctx context.Context, raw json.RawMessage) *protocol.Response {
	var data createRoomData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	room, err := s.rooms.Create(ctx, data.RoomName, data.QuestionBankID, data.StartTime, data.EndTime,
		data.NumQuestions, data.AllowedAttempts)
	if err != nil {
		return failure(err.Error())
	}
	return success("room created", map[string]string{"room_id": room.ID})
}

func (s *Server) handleGetRoomStats(ctx context.Context, raw json.RawMessage) *protocol.Response {
	var data roomIDData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	info, stats, results, err := s.rooms.Stats(ctx, data.RoomID)
	if err != nil {
		return failure("room not found")
	}
	return success("", roomStatsData{Room: info, Stats: stats, Results: results})
}

func (s *Server) handleDeleteRoom(ctx context.Context, raw json.RawMessage) *protocol.Response {
	var data roomIDData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	if err := s.rooms.Delete(ctx, data.RoomID); err != nil {
		return failure("room not found")
	}
	return success("room deleted", nil)
}

func (s *Server) handleStartExam(ctx context.Context, c *conn, raw json.RawMessage) *protocol.Response {
	var data roomIDData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	sheet, err := s.rooms.StartExam(ctx, data.RoomID, c.session.UserName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return failure("room not found")
		}
		return failure(err.Error())
	}
	return success("exam started", sheet)
}

func (s *Server) handleSubmitExam(ctx context.Context, c *conn, raw json.RawMessage) *protocol.Response {
	var data submitExamData
	if err := decodeData(raw, &data); err != nil {
		return failure(err.Error())
	}

	result, err := s.rooms.SubmitExam(ctx, data.AttemptID, c.session.UserName, data.Answers)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return failure("attempt not found")
		}
		return failure(err.Error())
	}
	return success("exam submitted", result)
}
