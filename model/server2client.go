package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Inbound message tags. Older servers used "action" instead of "type".
const (
	TypeSnapshot      = "maze"
	TypeSnapshotAlias = "snapshot"
	TypeMove          = "move"
	TypeTurnUpdate    = "turn_update"
	TypeGameWin       = "game_win"
	TypeError         = "error"
)

// ProtocolError is a malformed or unrecognised wire message.
type ProtocolError struct {
	Type string
	Err  error
}

func (e *ProtocolError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("protocol: %v", e.Err)
	}
	return fmt.Sprintf("protocol: %s: %v", e.Type, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrMissingType = errors.New("message has no type")
	ErrMissingMove = errors.New("move payload missing")
)

// ServerMessage is one of Snapshot, MoveBroadcast, TurnUpdate, GameWin or
// ErrorMessage.
type ServerMessage interface {
	Type() string
}

type Snapshot struct {
	Maze      string
	Positions map[Color]Position
	Color     Color
	// Turn is NoColor when the server did not say whose turn it is.
	Turn Color
}

type MoveBroadcast struct {
	Color Color
	To    Position
}

type TurnUpdate struct {
	Turn Color
}

type GameWin struct {
	Winner string
}

type ErrorMessage struct {
	Message string
}

func (Snapshot) Type() string      { return TypeSnapshot }
func (MoveBroadcast) Type() string { return TypeMove }
func (TurnUpdate) Type() string    { return TypeTurnUpdate }
func (GameWin) Type() string       { return TypeGameWin }
func (ErrorMessage) Type() string  { return TypeError }

type wireMove struct {
	Color Color `json:"color"`
	X     *int  `json:"x"`
	Y     *int  `json:"y"`
}

type envelope struct {
	Type            string              `json:"type"`
	Action          string              `json:"action"`
	Maze            json.RawMessage     `json:"maze"`
	PlayerPositions map[string]Position `json:"player_positions"`
	PlayerColor     string              `json:"player_color"`
	PlayerColorAlt  string              `json:"playerColor"`
	Move            *wireMove           `json:"move"`
	Turn            json.RawMessage     `json:"turn"`
	Winner          string              `json:"winner"`
	Message         string              `json:"message"`
}

func (e *envelope) tag() string {
	if e.Type != "" {
		return e.Type
	}
	return e.Action
}

// DecodeServerMessage turns one inbound frame into its typed variant.
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ProtocolError{Err: err}
	}
	tag := env.tag()
	fail := func(err error) (ServerMessage, error) {
		return nil, &ProtocolError{Type: tag, Err: err}
	}
	switch tag {
	case "":
		return fail(ErrMissingType)
	case TypeSnapshot, TypeSnapshotAlias:
		s, err := env.snapshot()
		if err != nil {
			return fail(err)
		}
		return s, nil
	case TypeMove:
		m, err := env.Move.decode()
		if err != nil {
			return fail(err)
		}
		return m, nil
	case TypeTurnUpdate:
		c, err := decodeTurn(env.Turn)
		if err != nil {
			return fail(err)
		}
		if c == NoColor {
			return fail(errors.New("turn missing"))
		}
		return TurnUpdate{Turn: c}, nil
	case TypeGameWin:
		return GameWin{Winner: env.Winner}, nil
	case TypeError:
		return ErrorMessage{Message: env.Message}, nil
	default:
		return fail(fmt.Errorf("%w %q", ErrUnknownType, tag))
	}
}

func (m *wireMove) decode() (MoveBroadcast, error) {
	if m == nil {
		return MoveBroadcast{}, ErrMissingMove
	}
	if !m.Color.Valid() {
		return MoveBroadcast{}, errors.New("move color missing")
	}
	if m.X == nil || m.Y == nil {
		return MoveBroadcast{}, errors.New("move coordinates missing")
	}
	return MoveBroadcast{Color: m.Color, To: Position{X: *m.X, Y: *m.Y}}, nil
}

func (e *envelope) snapshot() (Snapshot, error) {
	maze, err := decodeMaze(e.Maze)
	if err != nil {
		return Snapshot{}, err
	}
	name := e.PlayerColor
	if name == "" {
		name = e.PlayerColorAlt
	}
	color, err := ParseColor(name)
	if err != nil {
		return Snapshot{}, fmt.Errorf("player color: %w", err)
	}
	positions := make(map[Color]Position, 2)
	for key, pos := range e.PlayerPositions {
		c, err := ParseColor(key)
		if err != nil {
			return Snapshot{}, fmt.Errorf("player positions: %w", err)
		}
		positions[c] = pos
	}
	for _, c := range Colors {
		if _, ok := positions[c]; !ok {
			return Snapshot{}, fmt.Errorf("player positions: %s missing", c)
		}
	}
	turn, err := decodeTurn(e.Turn)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Maze: maze, Positions: positions, Color: color, Turn: turn}, nil
}

// decodeMaze accepts either the flat digit string or an array of rows.
func decodeMaze(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("maze missing")
	}
	if raw[0] == '"' {
		var flat string
		if err := json.Unmarshal(raw, &flat); err != nil {
			return "", err
		}
		return flat, nil
	}
	var rows [][]int
	if err := json.Unmarshal(raw, &rows); err != nil {
		return "", err
	}
	return FlattenRows(rows)
}

// FlattenRows converts an array-encoded maze to the flat wire form.
func FlattenRows(rows [][]int) (string, error) {
	var b strings.Builder
	for _, row := range rows {
		if len(row) != len(rows) {
			return "", &DecodeError{Length: len(row), Size: len(rows)}
		}
		for _, v := range row {
			if v < 0 || v > 9 {
				b.WriteByte('?')
				continue
			}
			b.WriteByte(byte('0' + v))
		}
	}
	return b.String(), nil
}

// decodeTurn reads a color name or the 1 (Red) / 2 (Blue) numbering.
func decodeTurn(raw json.RawMessage) (Color, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NoColor, nil
	}
	if raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return NoColor, err
		}
		return ParseColor(name)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return NoColor, fmt.Errorf("turn: %w", err)
	}
	switch n {
	case 1:
		return Red, nil
	case 2:
		return Blue, nil
	}
	return NoColor, fmt.Errorf("turn: unknown player %d", n)
}
