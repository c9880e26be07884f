package ws

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"cardroom/internal/session"
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

func newConnID() string {
	ulidEntropyMu.Lock()
	defer ulidEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// Client is one WebSocket connection. Outbound frames go through the send
// channel so the write loop is the only goroutine touching the socket.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Send implements session.Conn.
func (c *Client) Send(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal_event_failed")
		return
	}
	msg, _ := json.Marshal(Envelope{Event: event, Data: payload})
	safeSend(c.send, msg)
}

func (c *Client) sendError(message string) {
	c.Send("error", ErrorPayload{Message: message})
}

type Server struct {
	registry *session.Registry
	upgrader websocket.Upgrader
}

func NewServer(registry *session.Registry) *Server {
	return &Server{
		registry: registry,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{id: newConnID(), conn: conn, send: make(chan []byte, 16)}
	s.registry.Register(client)
	log.Info().Str("conn_id", client.id).Str("remote", r.RemoteAddr).Msg("ws_connected")

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.registry.Disconnect(c)
		safeClose(c.send)
		_ = c.conn.Close()
		log.Info().Str("conn_id", c.id).Msg("ws_disconnected")
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			c.sendError("invalid message format")
			continue
		}
		s.dispatch(c, env)
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) dispatch(c *Client, env Envelope) {
	var err error
	switch env.Event {
	case "createRoom":
		var m CreateRoomMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.CreateRoom(c, m.Name, m.PlayerID, m.Nickname, m.GameType, m.Password)
		}
	case "joinRoom":
		var m JoinRoomMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.JoinRoom(c, m.Name, m.PlayerID, m.Nickname, m.Password)
		}
	case "verifyPassword":
		var m VerifyPasswordMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.VerifyPassword(c, m.Name, m.Password)
		}
	case "leaveRoom":
		var m LeaveRoomMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.LeaveRoom(c, m.Name)
		}
	case "kickPlayer":
		var m KickPlayerMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.KickPlayer(c, m.RoomName, m.TargetPlayerID)
		}
	case "getRooms":
		c.Send("roomList", map[string]any{"rooms": s.registry.Rooms()})
	case "getPlayerList":
		var m RoomNameMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.PlayerList(c, m.RoomName)
		}
	case "roomMessage":
		var m RoomMessageMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.RoomMessage(c, m.RoomName, m.Message)
		}
	case "message":
		var text string
		_ = json.Unmarshal(env.Data, &text)
		c.Send("message", "Echo: "+text)
	case "startGame":
		var m RoomNameMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.StartGame(c, m.RoomName)
		}
	case "firstDraw":
		var m RoomNameMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.FirstDraw(c, m.RoomName)
		}
	case "selectChip":
		var m SelectChipMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.SelectChip(c, m.RoomName, m.ChipNumber)
		}
	case "playerReady":
		var m RoomNameMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.PlayerReady(c, m.RoomName)
		}
	case "readyNextRound":
		var m RoomNameMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.ReadyNextRound(c, m.RoomName)
		}
	case "drawCard":
		var m RoomNameMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.DrawCard(c, m.RoomName)
		}
	case "bid":
		var m BidMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.Bid(c, m.RoomName, m.Bid)
		}
	case "playCard":
		var m PlayCardMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.PlayCard(c, m.RoomName, m.CardIndex, m.TigressDeclared, m.DeclaredSuit, m.DeclaredNumber)
		}
	case "nextRound":
		var m RoomNameMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.NextRound(c, m.RoomName)
		}
	case "pass":
		var m RoomNameMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.PassTurn(c, m.RoomName)
		}
	case "challenge":
		var m ChallengeMessage
		if err = json.Unmarshal(env.Data, &m); err == nil {
			err = s.registry.ChallengeDeclaration(c, m.RoomName, m.Kind)
		}
	default:
		c.sendError("unknown event: " + env.Event)
		return
	}
	if err != nil {
		log.Debug().Str("conn_id", c.id).Str("event", env.Event).Err(err).Msg("event_rejected")
		c.sendError(err.Error())
	}
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	ch <- msg
}
