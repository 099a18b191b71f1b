package client

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/model"
)

type State int

const (
	Unassigned State = iota + 1
	Ready
	AwaitingConfirmation
	Ended
)

func (s State) Name() string {
	switch s {
	case Unassigned:
		return "UNASSIGNED"
	case Ready:
		return "READY"
	case AwaitingConfirmation:
		return "AWAITING"
	case Ended:
		return "ENDED"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

// Sender hands a move request to the transport.
type Sender interface {
	Send(model.MoveRequest) error
}

type SenderFunc func(model.MoveRequest) error

func (f SenderFunc) Send(r model.MoveRequest) error {
	return f(r)
}

type Options struct {
	// Size is the maze side. Zero takes it from the first snapshot.
	Size         int
	EnforceTurns bool
	// Optimistic applies local moves before the server echoes them.
	Optimistic bool
}

type EventKind int

const (
	EventIgnored EventKind = iota
	EventSnapshot
	EventMove
	EventTurn
	EventWin
	EventServerError
	EventSent
)

type Event struct {
	Kind   EventKind
	Color  model.Color
	To     model.Position
	Winner string
}

type pendingMove struct {
	to   model.Position
	undo *model.Undo
}

// Engine is the client state machine. It is not safe for concurrent use;
// Session feeds it from a single goroutine.
type Engine struct {
	opts      Options
	validator model.Validator
	sender    Sender
	log       *log.Entry

	state   State
	grid    *model.Grid
	players *model.Players
	turn    model.Turn
	winner  string
	pending *pendingMove
}

func NewEngine(opts Options, sender Sender, logger *log.Entry) *Engine {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Engine{
		opts:      opts,
		validator: model.Validator{EnforceTurns: opts.EnforceTurns},
		sender:    sender,
		log:       logger,
		state:     Unassigned,
		players:   model.NewPlayers(),
		turn:      model.RedToMove,
	}
}

func (e *Engine) State() State            { return e.state }
func (e *Engine) Turn() model.Turn        { return e.turn }
func (e *Engine) Winner() string          { return e.winner }
func (e *Engine) Grid() *model.Grid       { return e.grid }
func (e *Engine) Players() *model.Players { return e.players }

// Handle decodes and applies one inbound frame.
func (e *Engine) Handle(frame []byte) (Event, error) {
	if e.state == Ended {
		return Event{Kind: EventIgnored}, nil
	}
	msg, err := model.DecodeServerMessage(frame)
	if err != nil {
		e.log.WithError(err).Warn("Engine.Handle dropping frame")
		return Event{}, err
	}
	return e.Apply(msg)
}

func (e *Engine) Apply(msg model.ServerMessage) (Event, error) {
	if e.state == Ended {
		return Event{Kind: EventIgnored}, nil
	}
	switch m := msg.(type) {
	case model.Snapshot:
		return e.applySnapshot(m)
	case model.MoveBroadcast:
		if e.state == Unassigned {
			return Event{}, fmt.Errorf("move %s: %w", m.Color, ErrNotReady)
		}
		return e.applyMove(m)
	case model.TurnUpdate:
		if e.state == Unassigned {
			return Event{}, fmt.Errorf("turn update: %w", ErrNotReady)
		}
		e.turn = model.TurnOf(m.Turn)
		e.log.Debugf("Engine turn -> %s", e.turn.Name())
		return Event{Kind: EventTurn, Color: m.Turn}, nil
	case model.GameWin:
		e.state = Ended
		e.winner = m.Winner
		e.pending = nil
		e.log.Infof("Engine game over, winner %q", m.Winner)
		return Event{Kind: EventWin, Winner: m.Winner}, nil
	case model.ErrorMessage:
		e.reject()
		e.log.Warnf("Engine server error: %s", m.Message)
		return Event{Kind: EventServerError}, &ServerError{Message: m.Message}
	default:
		return Event{}, &model.ProtocolError{Type: msg.Type(), Err: model.ErrUnknownType}
	}
}

func (e *Engine) applySnapshot(m model.Snapshot) (Event, error) {
	fail := func(err error) (Event, error) {
		e.log.WithError(err).Warn("Engine snapshot rejected")
		return Event{}, &model.ProtocolError{Type: model.TypeSnapshot, Err: err}
	}
	size := e.opts.Size
	// the size is fixed once a grid exists
	if e.grid != nil {
		size = e.grid.Size()
	}
	grid, err := model.DecodeGrid(m.Maze, size)
	if err != nil {
		return fail(err)
	}
	for _, c := range model.Colors {
		pos, ok := m.Positions[c]
		if !ok {
			return fail(fmt.Errorf("%s: %w", c, ErrNoPosition))
		}
		if !grid.InBounds(pos) {
			return fail(fmt.Errorf("%s at %s: %w", c, pos, model.ErrOutOfBounds))
		}
	}
	if !m.Color.Valid() {
		return fail(fmt.Errorf("player color %d", m.Color))
	}
	if local, ok := e.players.LocalColor(); ok && local != m.Color {
		return fail(ErrIdentityChanged)
	}

	players := model.NewPlayers()
	players.Reset(m.Positions[model.Red], m.Positions[model.Blue])
	_ = players.Assign(m.Color)

	e.grid = grid
	e.players = players
	if m.Turn.Valid() {
		e.turn = model.TurnOf(m.Turn)
	}
	e.pending = nil
	e.state = Ready
	e.log.Infof("Engine snapshot %dx%d as %s, %s", grid.Size(), grid.Size(), m.Color, e.turn.Name())
	return Event{Kind: EventSnapshot, Color: m.Color}, nil
}

func (e *Engine) applyMove(m model.MoveBroadcast) (Event, error) {
	if !e.grid.InBounds(m.To) {
		err := fmt.Errorf("%s to %s: %w", m.Color, m.To, model.ErrOutOfBounds)
		return Event{}, &model.ProtocolError{Type: model.TypeMove, Err: err}
	}
	confirmed := false
	if local, _ := e.players.LocalColor(); m.Color == local && e.pending != nil {
		if u := e.pending.undo; u != nil {
			if m.To == e.pending.to {
				confirmed = true
			} else {
				e.log.Warnf("Engine server moved %s to %s, not %s", m.Color, m.To, e.pending.to)
				u.Revert(e.grid, e.players)
			}
		}
		e.pending = nil
		e.state = Ready
	}

	from := e.players.Position(m.Color)
	moved := from != m.To
	if moved {
		e.players.ApplyMove(m.Color, m.To)
		e.grid.MarkTrail(from, m.Color)
	}
	if (moved || confirmed) && e.turn.Color() == m.Color {
		e.turn = e.turn.Next()
	}
	return Event{Kind: EventMove, Color: m.Color, To: m.To}, nil
}

// reject releases a pending move after the server refused it, taking back an
// optimistic application.
func (e *Engine) reject() {
	if e.pending == nil {
		return
	}
	if u := e.pending.undo; u != nil {
		u.Revert(e.grid, e.players)
	}
	e.pending = nil
	if e.state == AwaitingConfirmation {
		e.state = Ready
	}
}

// RequestMove validates a step for the local player and sends it.
func (e *Engine) RequestMove(dx, dy int) (Event, error) {
	switch e.state {
	case Unassigned:
		return Event{}, ErrNotReady
	case Ended:
		return Event{}, ErrGameOver
	case AwaitingConfirmation:
		return Event{}, ErrMovePending
	}
	local, ok := e.players.LocalColor()
	if !ok {
		return Event{}, ErrNotReady
	}
	if err := e.validator.Check(e.grid, e.players, e.turn, local, dx, dy); err != nil {
		return Event{}, err
	}
	to := e.players.Position(local).Add(dx, dy)
	if err := e.sender.Send(model.NewMoveRequest(local, to)); err != nil {
		return Event{}, err
	}
	pending := &pendingMove{to: to}
	if e.opts.Optimistic {
		u := model.ApplyLocal(e.grid, e.players, local, to)
		pending.undo = &u
	}
	e.pending = pending
	e.state = AwaitingConfirmation
	e.log.Debugf("Engine sent %s -> %s", local, to)
	return Event{Kind: EventSent, Color: local, To: to}, nil
}

// View is a copy of the engine state, safe to hand to another goroutine.
type View struct {
	State        State
	Grid         *model.Grid
	Red, Blue    model.Player
	Local        model.Color
	Turn         model.Turn
	EnforceTurns bool
	Winner       string
	Notice       string
}

// cellsBeforeSnapshot sizes cells until a maze is known.
const cellsBeforeSnapshot = 20

// CellPixels is the width of one maze cell when the board spans pixels.
func (v View) CellPixels(pixels int) int {
	n := cellsBeforeSnapshot
	if v.Grid != nil && v.Grid.Size() > 0 {
		n = v.Grid.Size()
	}
	return pixels / n
}

func (e *Engine) View() View {
	v := View{
		State:        e.state,
		Red:          e.players.Player(model.Red),
		Blue:         e.players.Player(model.Blue),
		Turn:         e.turn,
		EnforceTurns: e.opts.EnforceTurns,
		Winner:       e.winner,
	}
	v.Local, _ = e.players.LocalColor()
	if e.grid != nil {
		v.Grid = e.grid.Clone()
	}
	return v
}
