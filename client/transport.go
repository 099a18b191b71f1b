package client

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/model"
)

const writeWait = time.Second

// Transport moves frames between a websocket and channels. Frames are
// delivered strictly in the order they were read.
type Transport struct {
	Conn     *websocket.Conn
	Frames   chan []byte
	Failures chan error

	done      chan struct{}
	closeOnce sync.Once
	log       *log.Entry
}

func Dial(ctx context.Context, url string, logger *log.Entry) (*Transport, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (http %d)", err, resp.StatusCode)
		}
		return nil, &TransportError{Op: "dial", Err: err}
	}
	return NewTransport(conn, logger), nil
}

func NewTransport(conn *websocket.Conn, logger *log.Entry) *Transport {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	t := &Transport{
		Conn:     conn,
		Frames:   make(chan []byte, 16),
		Failures: make(chan error, 1),
		done:     make(chan struct{}),
		log:      logger,
	}
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(writeWait))
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	return t
}

func (t *Transport) fail(op string, err error) {
	select {
	case <-t.done:
		return
	default:
	}
	select {
	case t.Failures <- &TransportError{Op: op, Err: err}:
	default:
	}
}

func (t *Transport) LoopChannelRead() {
	t.log.Debug("Transport.LoopChannelRead STARTED")
	defer t.log.Debug("Transport.LoopChannelRead ENDED")
	for {
		_, data, err := t.Conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = fmt.Errorf("%w: %v", ErrClosed, err)
			}
			t.fail("read", err)
			return
		}
		select {
		case t.Frames <- data:
		case <-t.done:
			return
		}
	}
}

// LoopChannelWrite only consumes out, so a full queue never blocks the engine.
func (t *Transport) LoopChannelWrite(out <-chan model.MoveRequest) {
	t.log.Debug("Transport.LoopChannelWrite STARTED")
	defer t.log.Debug("Transport.LoopChannelWrite ENDED")
	for {
		select {
		case <-t.done:
			return
		case req := <-out:
			_ = t.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.Conn.WriteJSON(req); err != nil {
				t.fail("write", err)
				return
			}
		}
	}
}

func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		_ = t.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = t.Conn.Close()
	})
	return err
}
