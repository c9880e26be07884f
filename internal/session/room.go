package session

import (
	"time"

	"cardroom/internal/game"
)

// Conn is the outbound half of a player connection. Implementations
// must not block; the ws layer queues onto a buffered send channel.
type Conn interface {
	Send(event string, data any)
}

type seat struct {
	conn     Conn
	id       game.PlayerID
	nickname string
}

// engine is what the registry needs from a running game regardless of
// its type; type-specific operations go through a type switch.
type engine interface {
	Kind() game.Type
	HandCounts() []game.HandCount
	Snapshot(viewer game.PlayerID) any
	RemovePlayer(pid game.PlayerID) []game.Event
}

// Room is one named table. All state transitions, including timer
// callbacks, run under mu.
type Room struct {
	name         string
	gameType     game.Type
	password     string
	createdAt    time.Time
	host         game.PlayerID
	hostNickname string

	seats   []seat
	status  *game.Status
	session engine

	graceTimers map[game.PlayerID]*time.Timer
}

// PlayerInfo is one row of a room's ordered player list.
type PlayerInfo struct {
	PlayerID game.PlayerID `json:"playerId"`
	Nickname string        `json:"nickname"`
	Order    int           `json:"order"`
}

// RoomInfo is the lobby summary of a room.
type RoomInfo struct {
	Name        string    `json:"name"`
	GameType    game.Type `json:"gameType"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
	GameStarted bool      `json:"gameStarted"`
	IsPrivate   bool      `json:"isPrivate"`
}

func (r *Room) seatOf(pid game.PlayerID) *seat {
	for i := range r.seats {
		if r.seats[i].id == pid {
			return &r.seats[i]
		}
	}
	return nil
}

func (r *Room) seatByConn(conn Conn) *seat {
	for i := range r.seats {
		if r.seats[i].conn == conn {
			return &r.seats[i]
		}
	}
	return nil
}

func (r *Room) removeSeat(pid game.PlayerID) {
	for i := range r.seats {
		if r.seats[i].id == pid {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			return
		}
	}
}

func (r *Room) players() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(r.seats))
	for i, s := range r.seats {
		out = append(out, PlayerInfo{PlayerID: s.id, Nickname: s.nickname, Order: i})
	}
	return out
}

func (r *Room) roster() []game.Player {
	out := make([]game.Player, 0, len(r.seats))
	for _, s := range r.seats {
		out = append(out, game.Player{ID: s.id, Nickname: s.nickname})
	}
	return out
}

func (r *Room) broadcast(event string, data any) {
	for _, s := range r.seats {
		if s.conn != nil {
			s.conn.Send(event, data)
		}
	}
}

func (r *Room) sendTo(pid game.PlayerID, event string, data any) {
	if s := r.seatOf(pid); s != nil && s.conn != nil {
		s.conn.Send(event, data)
	}
}

// dispatch routes engine events: an empty To is a room broadcast,
// anything else goes to that player's connection only.
func (r *Room) dispatch(events []game.Event) {
	for _, e := range events {
		if e.To == "" {
			r.broadcast(e.Name, e.Data)
		} else {
			r.sendTo(e.To, e.Name, e.Data)
		}
	}
}

func (r *Room) handCounts() []game.HandCount {
	if r.session != nil {
		return r.session.HandCounts()
	}
	counts := make([]game.HandCount, 0, len(r.seats))
	for _, s := range r.seats {
		counts = append(counts, game.HandCount{PlayerID: s.id, Nickname: s.nickname})
	}
	return counts
}

func (r *Room) info() RoomInfo {
	return RoomInfo{
		Name:        r.name,
		GameType:    r.gameType,
		MemberCount: len(r.seats),
		CreatedAt:   r.createdAt,
		GameStarted: r.status.Started,
		IsPrivate:   r.password != "",
	}
}

// joinedPayload is the full room slice a player receives on create,
// join, or reconnect. GameState carries the per-game snapshot once a
// session exists.
type joinedPayload struct {
	Name           string           `json:"name"`
	GameType       game.Type        `json:"gameType"`
	MemberCount    int              `json:"memberCount"`
	Players        []PlayerInfo     `json:"players"`
	HostPlayerID   game.PlayerID    `json:"hostPlayerId"`
	HostNickname   string           `json:"hostNickname"`
	GameStarted    bool             `json:"gameStarted"`
	GameFinished   bool             `json:"gameFinished"`
	GameOver       bool             `json:"gameOver"`
	GameOverResult string           `json:"gameOverResult,omitempty"`
	PlayerHands    []game.HandCount `json:"playerHands"`
	GameState      any              `json:"gameState,omitempty"`
}

func (r *Room) joined(viewer game.PlayerID) joinedPayload {
	p := joinedPayload{
		Name:           r.name,
		GameType:       r.gameType,
		MemberCount:    len(r.seats),
		Players:        r.players(),
		HostPlayerID:   r.host,
		HostNickname:   r.hostNickname,
		GameStarted:    r.status.Started,
		GameFinished:   r.status.Finished,
		GameOver:       r.status.Over,
		GameOverResult: r.status.Result,
		PlayerHands:    r.handCounts(),
	}
	if r.session != nil {
		p.GameState = r.session.Snapshot(viewer)
	}
	return p
}

type userJoinedPayload struct {
	RoomName    string        `json:"roomName"`
	MemberCount int           `json:"memberCount"`
	PlayerID    game.PlayerID `json:"playerId"`
	Nickname    string        `json:"nickname"`
	Order       int           `json:"order"`
	Players     []PlayerInfo  `json:"players"`
}

type userLeftPayload struct {
	RoomName     string        `json:"roomName"`
	MemberCount  int           `json:"memberCount"`
	PlayerID     game.PlayerID `json:"playerId"`
	Nickname     string        `json:"nickname"`
	HostPlayerID game.PlayerID `json:"hostPlayerId"`
	Players      []PlayerInfo  `json:"players"`
}
