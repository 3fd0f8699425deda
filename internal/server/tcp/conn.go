package tcp

import (
	"net"
	"sync"
	"time"

	"github.com/examhub/examhub/internal/protocol"
	"github.com/examhub/examhub/internal/server/sessions"
)

const (
	outboundQueueSize = 32
	writeTimeout      = 10 * time.Second
)

type outFrame struct {
	msgType string
	payload any
}

// conn pairs one TCP socket with a buffered outbound queue. The writer
// goroutine is the only code that writes to or closes the socket; everyone
// else (the connection's own handler, and the session manager performing a
// kick) just queues frames. That keeps cross-connection operations free of
// blocking writes, as a kick must not deadlock against the victim's own
// traffic.
type conn struct {
	socket net.Conn
	out    chan outFrame

	mu     sync.Mutex
	closed bool

	// session is the connection's bound identity. Only the reader
	// goroutine touches it.
	session *sessions.Session
}

var _ sessions.Endpoint = (*conn)(nil)

func newConn(socket net.Conn) *conn {
	return &conn{
		socket: socket,
		out:    make(chan outFrame, outboundQueueSize),
	}
}

// writeLoop drains the outbound queue and closes the socket once the queue
// is closed or the peer stops accepting writes.
func (c *conn) writeLoop() {
	for frame := range c.out {
		c.socket.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := protocol.Write(c.socket, frame.msgType, frame.payload); err != nil {
			break
		}
	}
	c.socket.Close()
}

// trySend queues a frame without blocking. Returns false when the
// connection is already shut down or the queue is full.
func (c *conn) trySend(msgType string, payload any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.out <- outFrame{msgType: msgType, payload: payload}:
		return true
	default:
		return false
	}
}

// PushError implements sessions.Endpoint.
func (c *conn) PushError(message string) {
	c.trySend(protocol.TypeError, protocol.ErrorNotice{Message: message})
}

// Shutdown implements sessions.Endpoint. Safe to call multiple times; any
// queued frames are flushed before the socket closes.
func (c *conn) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.out)
}
