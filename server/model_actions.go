package server

import (
	"context"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/model"
)

const defaultSize = 21

func NewGameServer(settings Settings) (*GameServer, error) {
	if settings.Size == 0 {
		settings.Size = defaultSize
	}
	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &GameServer{
		Settings:     settings,
		GameSessions: make([]*GameSession, 0),
		SeatRequests: make(chan SeatRequest),
		Upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		rnd:   rand.New(rand.NewSource(seed)),
		seats: make(map[*GameSession]int),
	}
	if settings.MazeFile != "" {
		grid, err := Load(settings.MazeFile)
		if err != nil {
			return nil, err
		}
		log.Infof("GameServer serving %s (%dx%d)", settings.MazeFile, grid.Size(), grid.Size())
		s.MazeFactory = func() (*model.Grid, error) { return grid.Clone(), nil }
	} else {
		s.MazeFactory = func() (*model.Grid, error) { return GenerateMaze(settings.Size, s.rnd) }
	}
	return s, nil
}

func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	timeout := 200 * time.Millisecond
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("HandleHttpCall - connection received")

		seats := make(chan Seat, 1)
		select {
		case s.SeatRequests <- SeatRequest{Reply: seats}:
		case <-time.After(timeout):
			log.Warn("HandleHttpCall lobby busy")
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}

		var seat Seat
		select {
		case seat = <-seats:
			if seat.Status != SeatGranted {
				log.Warnf("HandleHttpCall no seat, status %d", seat.Status)
				w.WriteHeader(seat.Status.HTTPStatus())
				return
			}
		case <-time.After(timeout):
			log.Warn("HandleHttpCall seat reply timed out")
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}

		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already answered the request.
			log.Warnf("HandleHttpCall websocket upgrade err %v", err)
			return
		}
		defer con.Close()

		gameOver := make(chan struct{})
		select {
		case seat.Session.Joins <- Join{Conn: con, GameOver: gameOver}:
		case <-seat.Session.done:
			return
		case <-time.After(timeout):
			return
		}

		log.Debug("HandleHttpCall waiting for gameover")
		<-gameOver
	}
}

// Loop hands out seats: a new session is created whenever no open one is
// waiting for a second player.
func (s *GameServer) Loop(ctx context.Context) {
	log.Info("GameServer.Loop starting")
	for {
		select {
		case <-ctx.Done():
			log.Info("GameServer.Loop ended")
			return
		case req := <-s.SeatRequests:
			gs := s.openSession()
			if gs == nil {
				grid, err := s.MazeFactory()
				if err != nil {
					log.WithError(err).Error("GameServer.Loop cannot build maze")
					req.Reply <- Seat{Status: SeatNoMaze}
					continue
				}
				gs = NewGameSession(grid, s.Settings.EnforceTurns)
				go gs.Loop()
				s.GameSessions = append(s.GameSessions, gs)
			}
			s.seats[gs]++
			if s.seats[gs] == len(model.Colors) {
				// full sessions are forgotten here; they live on in their own loop
				s.GameSessions = removeSession(s.GameSessions, gs)
				delete(s.seats, gs)
			}
			req.Reply <- Seat{Status: SeatGranted, Session: gs}
		}
	}
}

// openSession forgets sessions abandoned while waiting and returns one that
// still has a free seat, if any.
func (s *GameServer) openSession() *GameSession {
	alive := s.GameSessions[:0]
	for _, gs := range s.GameSessions {
		select {
		case <-gs.done:
			delete(s.seats, gs)
			continue
		default:
		}
		alive = append(alive, gs)
	}
	s.GameSessions = alive
	for _, gs := range s.GameSessions {
		if s.seats[gs] < len(model.Colors) {
			return gs
		}
	}
	return nil
}

func removeSession(sessions []*GameSession, gs *GameSession) []*GameSession {
	for i, candidate := range sessions {
		if candidate == gs {
			return append(sessions[:i], sessions[i+1:]...)
		}
	}
	return sessions
}

func NewGameSession(grid *model.Grid, enforceTurns bool) *GameSession {
	id := uuid.New()
	starts := startPositions(grid.Size())
	players := model.NewPlayers()
	players.Reset(starts[model.Red], starts[model.Blue])
	return &GameSession{
		Id:        id,
		State:     GS_NEW,
		Grid:      grid,
		Players:   players,
		Turn:      model.RedToMove,
		Validator: model.Validator{EnforceTurns: enforceTurns},
		Goals: map[model.Color]model.Position{
			model.Red:  starts[model.Blue],
			model.Blue: starts[model.Red],
		},
		PlayerSessions: make([]*PlayerSession, 0, len(model.Colors)),
		Errors:         make(chan model.Color),
		Events:         make(chan PlayerEvent, 8),
		Joins:          make(chan Join),
		done:           make(chan struct{}),
		log:            log.WithField("game", id.String()),
	}
}

func (gs *GameSession) Loop() {
	gs.log.Info("GameSession.Loop start")
	defer gs.log.Info("GameSession.Loop ended")
	for {
		select {
		case join := <-gs.Joins:
			gs.addPlayer(join.Conn, join.GameOver)
			if len(gs.PlayerSessions) < len(model.Colors) {
				gs.State = GS_WAIT
				gs.log.Infof("GameSession.Loop %s", gs.State)
				continue
			}
			gs.State = GS_PLAY
			gs.log.Infof("GameSession.Loop %s", gs.State)
			for _, ps := range gs.PlayerSessions {
				ps.State = PS_PLAY
				setup, err := gs.MakeGameSetupMessage(ps.Color)
				if err != nil {
					gs.log.WithError(err).Error("GameSession.Loop setup")
					continue
				}
				ps.MessagesToSend <- setup
			}
		case errPlayer := <-gs.Errors:
			gs.log.Warnf("killing GS, %s left", errPlayer)
			gs.State = GS_ERR
			for _, ps := range gs.PlayerSessions {
				if ps.Color == errPlayer {
					ps.State = PS_ERR
				} else {
					ps.MessagesToSend <- model.ErrorFrame{Type: model.TypeError, Message: errPlayer.String() + " left the game"}
				}
			}
			gs.finish()
			return
		case pe := <-gs.Events:
			toPlayer, toAll := gs.Arbitrate(pe)
			for _, ps := range gs.PlayerSessions {
				if ps.Color == pe.Color {
					for _, m := range toPlayer {
						ps.MessagesToSend <- m
					}
				}
				for _, m := range toAll {
					ps.MessagesToSend <- m
				}
			}
			if gs.State == GS_OVER {
				gs.finish()
				return
			}
		}
	}
}

// finish closes every outgoing queue; each writer flushes what is left and
// then releases its HTTP handler.
func (gs *GameSession) finish() {
	close(gs.done)
	for _, ps := range gs.PlayerSessions {
		if ps.State != PS_ERR {
			ps.State = PS_OVER
		}
		ps.log.Debugf("GameSession.finish %s, player %s", gs.State, ps.State)
		close(ps.MessagesToSend)
	}
}

// Arbitrate decides one move request. Rejections go back to the mover only.
func (gs *GameSession) Arbitrate(pe PlayerEvent) (toPlayer []interface{}, toAll []interface{}) {
	reject := func(reason string) ([]interface{}, []interface{}) {
		gs.log.Infof("GameSession.Arbitrate %s rejected: %s", pe.Color, reason)
		return []interface{}{model.ErrorFrame{Type: model.TypeError, Message: reason}}, nil
	}
	if gs.State != GS_PLAY {
		return reject("game is not running")
	}
	if pe.Problem != "" {
		return reject(pe.Problem)
	}
	if pe.Request.Move.Color != pe.Color {
		return reject("you play " + pe.Color.String())
	}
	from := gs.Players.Position(pe.Color)
	to := pe.Request.Target()
	if err := gs.Validator.Check(gs.Grid, gs.Players, gs.Turn, pe.Color, to.X-from.X, to.Y-from.Y); err != nil {
		return reject(err.Error())
	}

	gs.Players.ApplyMove(pe.Color, to)
	gs.Grid.MarkTrail(from, pe.Color)
	gs.Turn = gs.Turn.Next()
	toAll = []interface{}{
		model.MoveFrame{Type: model.TypeMove, Move: model.MovePayload{Color: pe.Color, X: to.X, Y: to.Y}},
	}
	if to == gs.Goals[pe.Color] {
		gs.State = GS_OVER
		gs.log.Infof("GameSession.Arbitrate %s wins", pe.Color)
		return nil, append(toAll, model.WinFrame{Type: model.TypeGameWin, Winner: pe.Color.String()})
	}
	return nil, append(toAll, model.TurnFrame{Type: model.TypeTurnUpdate, Turn: gs.Turn.Color()})
}

func (gs *GameSession) addPlayer(conn *websocket.Conn, gameOver chan struct{}) {
	color := model.Colors[len(gs.PlayerSessions)]
	gs.log.Infof("GameSession.addPlayer %s", color)
	ps := &PlayerSession{
		State:          PS_NEW,
		Color:          color,
		GameSession:    gs,
		Conn:           conn,
		GameOver:       gameOver,
		MessagesToSend: make(chan interface{}, 10),
		log:            gs.log.WithField("color", color.String()),
	}
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	go ps.LoopChannelRead()
	go ps.LoopChannelWrite()
	gs.PlayerSessions = append(gs.PlayerSessions, ps)
}

func (gs *GameSession) MakeGameSetupMessage(c model.Color) (model.SnapshotFrame, error) {
	positions := make(map[model.Color]model.Position, len(model.Colors))
	for _, color := range model.Colors {
		positions[color] = gs.Players.Position(color)
	}
	return model.NewSnapshotFrame(gs.Grid, positions, c, gs.Turn)
}

func (ps *PlayerSession) LoopChannelRead() {
	ps.log.Debug("LoopChannelRead STARTED")
	defer ps.log.Debug("LoopChannelRead ENDED")
	for {
		_, data, err := ps.Conn.ReadMessage()
		if err != nil {
			select {
			case ps.GameSession.Errors <- ps.Color:
			case <-ps.GameSession.done:
			}
			return
		}
		pe := PlayerEvent{Color: ps.Color}
		pe.Request, err = model.DecodeMoveRequest(data)
		if err != nil {
			ps.log.WithError(err).Warn("LoopChannelRead cant decode")
			pe.Problem = err.Error()
		}
		select {
		case ps.GameSession.Events <- pe:
		case <-ps.GameSession.done:
			return
		default:
			ps.log.Warn("Dropping move read from socket, GameSession.Events FULL")
		}
	}
}

// LoopChannelWrite only consumes. When the queue is closed it says goodbye
// and releases the HTTP handler.
func (ps *PlayerSession) LoopChannelWrite() {
	ps.log.Debug("LoopChannelWrite STARTED")
	defer close(ps.GameOver)
	for mes := range ps.MessagesToSend {
		if err := ps.Conn.WriteJSON(mes); err != nil {
			ps.log.Warnf("LoopChannelWrite cant write %v", err)
			break
		}
	}
	for range ps.MessagesToSend {
	}
	_ = ps.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"),
		time.Now().Add(time.Second))
	ps.log.Debug("LoopChannelWrite ENDED")
}
