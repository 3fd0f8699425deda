// Package protocol implements the framed wire protocol spoken between the
// exam server and its clients.
//
// Every frame is a 7-byte header followed by a JSON object:
//
//	4 bytes  total frame length, unsigned big-endian (header included)
//	3 bytes  ASCII message type tag
//	N bytes  UTF-8 JSON payload (N = total length - 7)
//
// Clients send REQ frames; the server answers with RES frames and may push
// an unsolicited ERR frame (currently only for the session kick).
package protocol

import "encoding/json"

const (
	TypeRequest  = "REQ"
	TypeResponse = "RES"
	TypeError    = "ERR"
)

const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// Request actions understood by the server.
const (
	ActionRegister           = "REGISTER"
	ActionLogin              = "LOGIN"
	ActionLogout             = "LOGOUT"
	ActionImportQuestions    = "IMPORT_QUESTIONS"
	ActionListQuestionBanks  = "LIST_QUESTION_BANKS"
	ActionGetQuestionBank    = "GET_QUESTION_BANK"
	ActionUpdateQuestionBank = "UPDATE_QUESTION_BANK"
	ActionDeleteQuestionBank = "DELETE_QUESTION_BANK"
	ActionCreateRoom         = "CREATE_ROOM"
	ActionListRooms          = "LIST_ROOMS"
	ActionGetRoomStats       = "GET_ROOM_STATS"
	ActionDeleteRoom         = "DELETE_ROOM"
	ActionStartExam          = "START_EXAM"
	ActionSubmitExam         = "SUBMIT_EXAM"
)

// Request is the payload of a REQ frame.
type Request struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Response is the payload of a RES frame.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorNotice is the payload of an ERR frame.
type ErrorNotice struct {
	Message string `json:"message"`
}
