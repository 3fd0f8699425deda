// Package tcp runs the exam server's wire protocol: a TCP accept loop, one
// reader and one writer goroutine per connection, and the request
// dispatcher that authorizes each action against the connection's session
// and routes it to the user, bank, or room services.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/examhub/examhub/internal/logging"
	"github.com/examhub/examhub/internal/protocol"
	"github.com/examhub/examhub/internal/server/banks"
	"github.com/examhub/examhub/internal/server/rooms"
	"github.com/examhub/examhub/internal/server/sessions"
	"github.com/examhub/examhub/internal/server/users"
)

type Server struct {
	address       string
	logger        logging.Logger
	users         *users.Service
	sessions      *sessions.Manager
	banks         *banks.Service
	rooms         *rooms.Service
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewServer(address string, logger logging.Logger, us *users.Service, sm *sessions.Manager,
	bs *banks.Service, rs *rooms.Service, secretKey string, tokenValidity time.Duration) *Server {
	return &Server{
		address:       address,
		logger:        logger.With("module", "tcp_server"),
		users:         us,
		sessions:      sm,
		banks:         bs,
		rooms:         rs,
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections from listener, one reader goroutine per
// connection, until ctx is cancelled. It takes ownership of the listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping TCP server...")
		listener.Close()
	}()

	s.logger.Info(ctx, "Starting TCP server", "address", listener.Addr().String())

	for {
		socket, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, socket)
	}
}

// handleConn is the per-connection reader loop: decode one frame, dispatch,
// queue the response. It releases the connection's session and shuts the
// writer down on the way out.
func (s *Server) handleConn(ctx context.Context, socket net.Conn) {
	logger := s.logger.With("remote", socket.RemoteAddr().String())
	logger.Info(ctx, "client connected")

	c := newConn(socket)
	go c.writeLoop()

	defer func() {
		s.sessions.Release(ctx, c.session)
		c.Shutdown()
		logger.Info(ctx, "client disconnected")
	}()

	reader := bufio.NewReader(socket)
	for {
		msgType, payload, err := protocol.Decode(reader)
		if err != nil {
			if errors.Is(err, protocol.ErrMalformedFrame) {
				logger.Warn(ctx, "malformed frame, closing connection", "error", err.Error())
				c.PushError("malformed frame")
			} else if err != io.EOF {
				logger.Debug(ctx, "read error", "error", err.Error())
			}
			return
		}

		if msgType != protocol.TypeRequest {
			c.trySend(protocol.TypeResponse, failure("unexpected message type"))
			continue
		}

		response := s.dispatch(ctx, c, logger, payload)
		c.trySend(protocol.TypeResponse, response)
	}
}
