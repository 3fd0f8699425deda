package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const headerSize = 7

// maxPayloadSize caps a declared frame size so a corrupted or hostile
// length prefix cannot make the reader allocate gigabytes.
const maxPayloadSize = 4 << 20

// ErrMalformedFrame is returned when a frame cannot be decoded: short or
// truncated header, inconsistent declared length, a type tag that is not
// three printable ASCII bytes, or a payload that is not a JSON object.
var ErrMalformedFrame = errors.New("malformed frame")

// Encode builds a complete frame carrying payload marshalled as JSON.
func Encode(msgType string, payload any) ([]byte, error) {
	if len(msgType) != 3 {
		return nil, fmt.Errorf("%w: type tag %q", ErrMalformedFrame, msgType)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	frame := make([]byte, headerSize+len(body))
	binary.BigEndian.PutUint32(frame[:4], uint32(headerSize+len(body)))
	copy(frame[4:7], msgType)
	copy(frame[7:], body)
	return frame, nil
}

// Write encodes payload and writes the resulting frame to w in one call.
func Write(w io.Writer, msgType string, payload any) error {
	frame, err := Encode(msgType, payload)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// Decode reads exactly one frame from r and returns its type tag and raw
// JSON payload. io.EOF is returned unwrapped when the stream ends cleanly
// before the first header byte; any other short read or inconsistency is
// reported as ErrMalformedFrame.
func Decode(r io.Reader) (string, []byte, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF {
			return "", nil, io.EOF
		}
		return "", nil, fmt.Errorf("%w: reading header: %v", ErrMalformedFrame, err)
	}

	totalLength := binary.BigEndian.Uint32(header[:4])
	if totalLength < headerSize || totalLength > headerSize+maxPayloadSize {
		return "", nil, fmt.Errorf("%w: declared length %d", ErrMalformedFrame, totalLength)
	}

	msgType := string(header[4:7])
	for _, b := range header[4:7] {
		if b < 0x20 || b > 0x7e {
			return "", nil, fmt.Errorf("%w: type tag %q", ErrMalformedFrame, msgType)
		}
	}

	payload := make([]byte, totalLength-headerSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", nil, fmt.Errorf("%w: reading payload: %v", ErrMalformedFrame, err)
	}

	if !isJSONObject(payload) {
		return "", nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformedFrame)
	}

	return msgType, payload, nil
}

func isJSONObject(payload []byte) bool {
	trimmed := bytes.TrimLeft(payload, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(payload)
}
