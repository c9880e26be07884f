package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"cardroom/internal/config"
	"cardroom/internal/game"
)

// Registry owns every room and the connection index. A single mutex
// serializes all transitions, including grace and challenge-window
// timer callbacks, so engine state never sees concurrent access.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	conns map[Conn]map[string]bool

	decks  *game.DeckProvider
	grace  time.Duration
	window time.Duration
}

func NewRegistry(cfg config.GameConfig, decks *game.DeckProvider) *Registry {
	return &Registry{
		rooms:  map[string]*Room{},
		conns:  map[Conn]map[string]bool{},
		decks:  decks,
		grace:  cfg.DisconnectGrace,
		window: cfg.ChallengeWindow,
	}
}

// Register tracks a fresh connection before it joins any room.
func (reg *Registry) Register(conn Conn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.conns[conn] == nil {
		reg.conns[conn] = map[string]bool{}
	}
}

// CreateRoom opens a new room with the creator seated and hosting.
func (reg *Registry) CreateRoom(conn Conn, name string, pid game.PlayerID, nickname string, gameType game.Type, password string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if gameType == "" {
		gameType = game.TypeGang
	}
	if !game.ValidType(gameType) {
		return fmt.Errorf("unknown game type %q", gameType)
	}
	if _, exists := reg.rooms[name]; exists {
		return fmt.Errorf("room %q already exists", name)
	}

	r := &Room{
		name:         name,
		gameType:     gameType,
		password:     password,
		createdAt:    time.Now(),
		host:         pid,
		hostNickname: nickname,
		seats:        []seat{{conn: conn, id: pid, nickname: nickname}},
		status:       &game.Status{},
		graceTimers:  map[game.PlayerID]*time.Timer{},
	}
	reg.rooms[name] = r
	reg.trackConn(conn, name)

	log.Info().Str("room", name).Str("game_type", string(gameType)).
		Str("player_id", string(pid)).Int("total_rooms", len(reg.rooms)).
		Msg("room_created")

	conn.Send("roomCreated", r.joined(pid))
	return nil
}

// JoinRoom seats a player, or swaps the connection back in when the
// identity is inside its disconnect grace window.
func (reg *Registry) JoinRoom(conn Conn, name string, pid game.PlayerID, nickname, password string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return fmt.Errorf("room %q does not exist", name)
	}
	if r.password != "" && r.password != password {
		return fmt.Errorf("wrong password for room %q", name)
	}

	if timer, pending := r.graceTimers[pid]; pending {
		timer.Stop()
		delete(r.graceTimers, pid)

		st := r.seatOf(pid)
		if st == nil {
			return fmt.Errorf("no seat held for %q in room %q", pid, name)
		}
		if st.conn != nil {
			reg.untrackConn(st.conn, name)
		}
		st.conn = conn
		reg.trackConn(conn, name)

		log.Info().Str("room", name).Str("player_id", string(pid)).Msg("player_reconnected")

		conn.Send("roomJoined", r.joined(pid))
		r.broadcastExcept(pid, "userJoined", userJoinedPayload{
			RoomName:    name,
			MemberCount: len(r.seats),
			PlayerID:    pid,
			Nickname:    st.nickname,
			Order:       r.orderOf(pid),
			Players:     r.players(),
		})
		return nil
	}

	if r.status.Started {
		return fmt.Errorf("room %q already started its game", name)
	}
	if st := r.seatOf(pid); st != nil {
		return fmt.Errorf("player %q is already seated in room %q", pid, name)
	}

	r.seats = append(r.seats, seat{conn: conn, id: pid, nickname: nickname})
	reg.trackConn(conn, name)

	log.Info().Str("room", name).Str("player_id", string(pid)).
		Int("member_count", len(r.seats)).Msg("player_joined")

	conn.Send("roomJoined", r.joined(pid))
	r.broadcastExcept(pid, "userJoined", userJoinedPayload{
		RoomName:    name,
		MemberCount: len(r.seats),
		PlayerID:    pid,
		Nickname:    nickname,
		Order:       len(r.seats) - 1,
		Players:     r.players(),
	})
	return nil
}

// VerifyPassword checks a room password without joining.
func (reg *Registry) VerifyPassword(conn Conn, name, password string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return fmt.Errorf("room %q does not exist", name)
	}
	success := r.password == "" || r.password == password
	conn.Send("passwordVerified", map[string]any{"name": name, "success": success})
	return nil
}

// LeaveRoom removes the caller's seat immediately.
func (reg *Registry) LeaveRoom(conn Conn, name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return fmt.Errorf("room %q does not exist", name)
	}
	st := r.seatByConn(conn)
	if st == nil {
		return fmt.Errorf("you are not in room %q", name)
	}
	pid := st.id
	reg.evict(r, pid)
	conn.Send("roomLeft", map[string]any{"name": name})
	return nil
}

// KickPlayer ejects a player. Host only, lobby only, never the host
// themselves.
func (reg *Registry) KickPlayer(conn Conn, name string, target game.PlayerID) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return fmt.Errorf("room %q does not exist", name)
	}
	caller := r.seatByConn(conn)
	if caller == nil {
		return fmt.Errorf("you are not in room %q", name)
	}
	if caller.id != r.host {
		return fmt.Errorf("only the host can kick players")
	}
	if r.status.Started {
		return fmt.Errorf("cannot kick after the game started")
	}
	if target == r.host {
		return fmt.Errorf("the host cannot kick themselves")
	}
	st := r.seatOf(target)
	if st == nil {
		return fmt.Errorf("player %q is not in room %q", target, name)
	}

	r.sendTo(target, "kicked", map[string]any{"roomName": name})
	reg.evict(r, target)

	log.Info().Str("room", name).Str("player_id", string(target)).Msg("player_kicked")
	return nil
}

// Rooms lists every room for the lobby, newest first.
func (reg *Registry) Rooms() []RoomInfo {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	out := make([]RoomInfo, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		out = append(out, r.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// PlayerList sends the ordered player roster of a room to the caller.
func (reg *Registry) PlayerList(conn Conn, name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return fmt.Errorf("room %q does not exist", name)
	}
	if r.seatByConn(conn) == nil {
		return fmt.Errorf("you are not in room %q", name)
	}
	conn.Send("playerList", map[string]any{"roomName": name, "players": r.players()})
	return nil
}

// RoomMessage relays an arbitrary chat payload to the whole room.
func (reg *Registry) RoomMessage(conn Conn, name string, message any) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return fmt.Errorf("room %q does not exist", name)
	}
	if r.seatByConn(conn) == nil {
		return fmt.Errorf("you are not in room %q", name)
	}
	r.broadcast("roomMessage", map[string]any{"roomName": name, "message": message})
	return nil
}

// Disconnect starts a grace timer for every seat held by conn. The
// identity keeps its seat until the timer fires; a reconnect inside
// the window cancels it.
func (reg *Registry) Disconnect(conn Conn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for name := range reg.conns[conn] {
		r, ok := reg.rooms[name]
		if !ok {
			continue
		}
		st := r.seatByConn(conn)
		if st == nil {
			continue
		}
		st.conn = nil
		pid := st.id
		roomName := name
		r.graceTimers[pid] = time.AfterFunc(reg.grace, func() {
			reg.graceExpired(roomName, pid)
		})
		log.Info().Str("room", name).Str("player_id", string(pid)).
			Dur("grace", reg.grace).Msg("player_disconnected")
	}
	delete(reg.conns, conn)
}

// graceExpired is the deferred eviction. The timer handle doubles as
// the single-use token: if a reconnect already consumed it, the entry
// is gone and the callback is a no-op.
func (reg *Registry) graceExpired(name string, pid game.PlayerID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return
	}
	if _, pending := r.graceTimers[pid]; !pending {
		return
	}
	delete(r.graceTimers, pid)
	log.Info().Str("room", name).Str("player_id", string(pid)).Msg("grace_expired")
	reg.evict(r, pid)
}

// evict removes pid's seat, reassigns the host if needed, deletes the
// room when it empties, and lets a running game recompute its state.
// Callers hold reg.mu.
func (reg *Registry) evict(r *Room, pid game.PlayerID) {
	st := r.seatOf(pid)
	if st == nil {
		return
	}
	if timer, pending := r.graceTimers[pid]; pending {
		timer.Stop()
		delete(r.graceTimers, pid)
	}
	if st.conn != nil {
		reg.untrackConn(st.conn, r.name)
	}
	nickname := st.nickname
	r.removeSeat(pid)

	if len(r.seats) == 0 {
		delete(reg.rooms, r.name)
		log.Info().Str("room", r.name).Msg("room_deleted")
		return
	}

	if r.host == pid {
		r.host = r.seats[0].id
		r.hostNickname = r.seats[0].nickname
	}

	var events []game.Event
	if r.session != nil {
		events = r.session.RemovePlayer(pid)
	}
	r.broadcast("userLeft", userLeftPayload{
		RoomName:     r.name,
		MemberCount:  len(r.seats),
		PlayerID:     pid,
		Nickname:     nickname,
		HostPlayerID: r.host,
		Players:      r.players(),
	})
	r.dispatch(events)
}

func (reg *Registry) trackConn(conn Conn, name string) {
	if reg.conns[conn] == nil {
		reg.conns[conn] = map[string]bool{}
	}
	reg.conns[conn][name] = true
}

func (reg *Registry) untrackConn(conn Conn, name string) {
	if set := reg.conns[conn]; set != nil {
		delete(set, name)
	}
}

func (r *Room) orderOf(pid game.PlayerID) int {
	for i, s := range r.seats {
		if s.id == pid {
			return i
		}
	}
	return 0
}

func (r *Room) broadcastExcept(pid game.PlayerID, event string, data any) {
	for _, s := range r.seats {
		if s.id != pid && s.conn != nil {
			s.conn.Send(event, data)
		}
	}
}
