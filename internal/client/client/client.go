// Package client implements the exam server's wire protocol from the
// consumer side: one TCP connection, synchronous request/response calls,
// and detection of the server-side session kick.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/examhub/examhub/internal/protocol"
)

const dialTimeout = 5 * time.Second

// Client is a connection to the exam server. Calls are serialized: the
// protocol has no request ids, so at most one request may be in flight.
type Client struct {
	mu     sync.Mutex
	socket net.Conn
	reader *bufio.Reader

	kicked     bool
	kickReason string
}

// Dial connects to the exam server at address (host:port).
func Dial(address string) (*Client, error) {
	socket, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", address, err)
	}
	return &Client{socket: socket, reader: bufio.NewReader(socket)}, nil
}

// Close tears the connection down.
func (c *Client) Close() error {
	return c.socket.Close()
}

// Kicked reports whether the server has terminated this session, together
// with the server's reason.
func (c *Client) Kicked() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kicked, c.kickReason
}

// call sends one request and waits for its response. An unsolicited ERR
// frame received while waiting marks the client kicked and fails the call.
func (c *Client) call(ctx context.Context, action string, data any, result any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kicked {
		return ErrKicked
	}

	req := protocol.Request{Action: action}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		req.Data = raw
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.socket.SetDeadline(deadline)
	} else {
		c.socket.SetDeadline(time.Time{})
	}

	if err := protocol.Write(c.socket, protocol.TypeRequest, req); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}

	for {
		msgType, payload, err := protocol.Decode(c.reader)
		if err != nil {
			if err == io.EOF {
				return ErrConnectionClosed
			}
			return err
		}

		switch msgType {
		case protocol.TypeError:
			var notice protocol.ErrorNotice
			_ = json.Unmarshal(payload, &notice)
			c.kicked = true
			c.kickReason = notice.Message
			return ErrKicked

		case protocol.TypeResponse:
			return decodeResponse(payload, result)

		default:
			return fmt.Errorf("unexpected message type %q", msgType)
		}
	}
}

func decodeResponse(payload []byte, result any) error {
	var resp struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if resp.Status != protocol.StatusSuccess {
		return &RequestError{Message: resp.Message}
	}
	if result != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, result); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	data := map[string]string{"username": username, "password": password}
	return c.call(ctx, protocol.ActionRegister, data, nil)
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	data := map[string]string{"username": username, "password": password}
	var result LoginResult
	if err := c.call(ctx, protocol.ActionLogin, data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, protocol.ActionLogout, nil, nil)
}

func (c *Client) ImportQuestions(ctx context.Context, bankName string, questions []Question) (string, error) {
	data := map[string]any{"bank_name": bankName, "questions": questions}
	var result struct {
		BankID string `json:"bank_id"`
	}
	if err := c.call(ctx, protocol.ActionImportQuestions, data, &result); err != nil {
		return "", err
	}
	return result.BankID, nil
}

func (c *Client) ListQuestionBanks(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.call(ctx, protocol.ActionListQuestionBanks, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) GetQuestionBank(ctx context.Context, bankID string) ([]Question, error) {
	var questions []Question
	if err := c.call(ctx, protocol.ActionGetQuestionBank, map[string]string{"bank_id": bankID}, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *Client) UpdateQuestionBank(ctx context.Context, bankID string, questions []Question) error {
	data := map[string]any{"bank_id": bankID, "questions": questions}
	return c.call(ctx, protocol.ActionUpdateQuestionBank, data, nil)
}

func (c *Client) DeleteQuestionBank(ctx context.Context, bankID string) error {
	return c.call(ctx, protocol.ActionDeleteQuestionBank, map[string]string{"bank_id": bankID}, nil)
}

func (c *Client) CreateRoom(ctx context.Context, spec *RoomSpec) (string, error) {
	var result struct {
		RoomID string `json:"room_id"`
	}
	if err := c.call(ctx, protocol.ActionCreateRoom, spec, &result); err != nil {
		return "", err
	}
	return result.RoomID, nil
}

func (c *Client) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	var list []RoomSummary
	if err := c.call(ctx, protocol.ActionListRooms, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetRoomStats(ctx context.Context, roomID string) (*RoomStats, error) {
	var stats RoomStats
	if err := c.call(ctx, protocol.ActionGetRoomStats, map[string]string{"room_id": roomID}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	return c.call(ctx, protocol.ActionDeleteRoom, map[string]string{"room_id": roomID}, nil)
}

func (c *Client) StartExam(ctx context.Context, roomID string) (*ExamSheet, error) {
	var sheet ExamSheet
	if err := c.call(ctx, protocol.ActionStartExam, map[string]string{"room_id": roomID}, &sheet); err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (c *Client) SubmitExam(ctx context.Context, attemptID string, answers []int) (*ExamResult, error) {
	data := map[string]any{"attempt_id": attemptID, "answers": answers}
	var result ExamResult
	if err := c.call(ctx, protocol.ActionSubmitExam, data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
