package model

import (
	"encoding/json"
	"errors"
)

type MovePayload struct {
	Color Color `json:"color"`
	X     int   `json:"x"`
	Y     int   `json:"y"`
}

// MoveRequest is the only message a client sends.
type MoveRequest struct {
	Type string      `json:"type"`
	Move MovePayload `json:"move"`
}

func NewMoveRequest(c Color, to Position) MoveRequest {
	return MoveRequest{
		Type: TypeMove,
		Move: MovePayload{Color: c, X: to.X, Y: to.Y},
	}
}

func (r MoveRequest) Target() Position {
	return Position{X: r.Move.X, Y: r.Move.Y}
}

// DecodeMoveRequest reads a client frame. The oldest clients sent the move
// without a type.
func DecodeMoveRequest(data []byte) (MoveRequest, error) {
	var req struct {
		Type string    `json:"type"`
		Move *wireMove `json:"move"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return MoveRequest{}, &ProtocolError{Err: err}
	}
	if req.Type != "" && req.Type != TypeMove {
		return MoveRequest{}, &ProtocolError{Type: req.Type, Err: ErrUnknownType}
	}
	m, err := req.Move.decode()
	if err != nil {
		return MoveRequest{}, &ProtocolError{Type: TypeMove, Err: err}
	}
	return NewMoveRequest(m.Color, m.To), nil
}

var errNoPositions = errors.New("snapshot needs both positions")

// SnapshotFrame is the outbound form of a snapshot, written by servers.
type SnapshotFrame struct {
	Type            string              `json:"type"`
	Maze            string              `json:"maze"`
	PlayerPositions map[string]Position `json:"player_positions"`
	PlayerColor     Color               `json:"player_color"`
	Turn            Color               `json:"turn"`
}

func NewSnapshotFrame(g *Grid, positions map[Color]Position, local Color, turn Turn) (SnapshotFrame, error) {
	wire := make(map[string]Position, len(positions))
	for _, c := range Colors {
		p, ok := positions[c]
		if !ok {
			return SnapshotFrame{}, errNoPositions
		}
		wire[c.String()] = p
	}
	return SnapshotFrame{
		Type:            TypeSnapshot,
		Maze:            g.String(),
		PlayerPositions: wire,
		PlayerColor:     local,
		Turn:            turn.Color(),
	}, nil
}

type MoveFrame struct {
	Type string      `json:"type"`
	Move MovePayload `json:"move"`
}

type TurnFrame struct {
	Type string `json:"type"`
	Turn Color  `json:"turn"`
}

type WinFrame struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
