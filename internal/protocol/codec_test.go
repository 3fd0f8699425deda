package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	req := Request{Action: ActionLogin, Data: json.RawMessage(`{"username":"bob","password":"123"}`)}

	frame, err := Encode(TypeRequest, req)
	require.NoError(t, err)

	msgType, payload, err := Decode(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, TypeRequest, msgType)

	var decoded Request
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, req.Action, decoded.Action)
	assert.JSONEq(t, string(req.Data), string(decoded.Data))
}

func TestEncodeHeaderLayout(t *testing.T) {
	frame, err := Encode(TypeResponse, Response{Status: StatusSuccess})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(frame), headerSize)
	assert.Equal(t, uint32(len(frame)), binary.BigEndian.Uint32(frame[:4]))
	assert.Equal(t, "RES", string(frame[4:7]))
}

func TestEncodeRejectsBadTypeTag(t *testing.T) {
	_, err := Encode("TOOLONG", Request{})
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecodeCleanEOF(t *testing.T) {
	_, _, err := Decode(bytes.NewReader(nil))
	assert.Equal(t, io.EOF, err)
}

func TestDecodeShortHeader(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte{0, 0, 0}))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecodeTruncatedPayload(t *testing.T) {
	frame, err := Encode(TypeRequest, Request{Action: ActionListRooms})
	require.NoError(t, err)

	_, _, err = Decode(bytes.NewReader(frame[:len(frame)-2]))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecodeDeclaredLengthTooSmall(t *testing.T) {
	frame := make([]byte, headerSize)
	binary.BigEndian.PutUint32(frame[:4], 3)
	copy(frame[4:7], "REQ")

	_, _, err := Decode(bytes.NewReader(frame))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecodeDeclaredLengthTooLarge(t *testing.T) {
	frame := make([]byte, headerSize)
	binary.BigEndian.PutUint32(frame[:4], headerSize+maxPayloadSize+1)
	copy(frame[4:7], "REQ")

	_, _, err := Decode(bytes.NewReader(frame))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestDecodeNonObjectPayload(t *testing.T) {
	for _, body := range []string{`[1,2,3]`, `"text"`, `{"broken":`} {
		frame := make([]byte, headerSize+len(body))
		binary.BigEndian.PutUint32(frame[:4], uint32(len(frame)))
		copy(frame[4:7], "REQ")
		copy(frame[7:], body)

		_, _, err := Decode(bytes.NewReader(frame))
		assert.ErrorIs(t, err, ErrMalformedFrame, "payload %s", body)
	}
}

func TestDecodeRejectsBinaryTypeTag(t *testing.T) {
	body := `{}`
	frame := make([]byte, headerSize+len(body))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(frame)))
	copy(frame[4:7], []byte{0x01, 0x02, 0x03})
	copy(frame[7:], body)

	_, _, err := Decode(bytes.NewReader(frame))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}
