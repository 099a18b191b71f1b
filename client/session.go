package client

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/model"
)

// Session owns one Engine and is the only goroutine that touches it. Input
// handlers and the renderer talk to it through Move and View.
type Session struct {
	ID        uuid.UUID
	engine    *Engine
	transport *Transport
	outbound  chan model.MoveRequest
	moves     chan model.Direction
	log       *log.Entry

	mu   sync.RWMutex
	view View
}

func Connect(ctx context.Context, url string, opts Options) (*Session, error) {
	id := uuid.New()
	logger := log.WithField("session", id.String())
	t, err := Dial(ctx, url, logger)
	if err != nil {
		return nil, err
	}
	return newSession(id, opts, t, logger), nil
}

func NewSession(opts Options, t *Transport) *Session {
	id := uuid.New()
	return newSession(id, opts, t, log.WithField("session", id.String()))
}

func newSession(id uuid.UUID, opts Options, t *Transport, logger *log.Entry) *Session {
	s := &Session{
		ID:        id,
		transport: t,
		outbound:  make(chan model.MoveRequest, 4),
		moves:     make(chan model.Direction, 4),
		log:       logger,
	}
	s.engine = NewEngine(opts, SenderFunc(s.send), logger)
	s.view = s.engine.View()
	return s
}

func (s *Session) send(req model.MoveRequest) error {
	select {
	case s.outbound <- req:
		return nil
	default:
		return &TransportError{Op: "send", Err: ErrQueueFull}
	}
}

// Move queues one step of the local player. It never blocks; false means the
// step was dropped.
func (s *Session) Move(d model.Direction) bool {
	select {
	case s.moves <- d:
		return true
	default:
		s.log.Warn("Session.Move dropping input, queue full")
		return false
	}
}

func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Session) publish(err error) {
	v := s.engine.View()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		v.Notice = err.Error()
	} else if v.Winner != "" {
		v.Notice = v.Winner + " wins!"
	}
	s.view = v
}

// Loop runs until ctx is done or the connection fails. A failed connection is
// returned as *TransportError.
func (s *Session) Loop(ctx context.Context) error {
	s.log.Info("Session.Loop starting")
	go s.transport.LoopChannelRead()
	go s.transport.LoopChannelWrite(s.outbound)
	defer s.transport.Close()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Session.Loop cancelled")
			return nil
		case frame := <-s.transport.Frames:
			s.handle(frame)
		case d := <-s.moves:
			_, err := s.engine.RequestMove(d.DX, d.DY)
			if err != nil {
				s.log.WithError(err).Info("Session.Loop move refused")
			}
			s.publish(err)
			var te *TransportError
			if errors.As(err, &te) {
				return te
			}
		case err := <-s.transport.Failures:
			s.drain()
			s.log.WithError(err).Warn("Session.Loop connection lost")
			s.publish(err)
			return err
		}
	}
}

func (s *Session) handle(frame []byte) {
	_, err := s.engine.Handle(frame)
	if err != nil {
		s.log.WithError(err).Warn("Session.Loop inbound")
	}
	s.publish(err)
}

// drain applies frames read before the connection failed.
func (s *Session) drain() {
	for {
		select {
		case frame := <-s.transport.Frames:
			s.handle(frame)
		default:
			return
		}
	}
}
