package session

import (
	"sync"
	"testing"
	"time"

	"cardroom/internal/config"
	"cardroom/internal/game"
)

type recordedEvent struct {
	Name string
	Data any
}

// fakeConn records everything sent to it. Timer callbacks deliver from
// other goroutines, so access is locked.
type fakeConn struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (c *fakeConn) Send(event string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, recordedEvent{Name: event, Data: data})
}

func (c *fakeConn) count(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Name == event {
			n++
		}
	}
	return n
}

func (c *fakeConn) has(event string) bool { return c.count(event) > 0 }

func (c *fakeConn) last(event string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Name == event {
			return c.events[i].Data, true
		}
	}
	return nil, false
}

func testRegistry(grace, window time.Duration) *Registry {
	cfg := config.GameConfig{DisconnectGrace: grace, ChallengeWindow: window}
	return NewRegistry(cfg, game.NewDeckProvider(""))
}

// seatThree creates a gang room with three seated players.
func seatThree(t *testing.T, reg *Registry) (conns [3]*fakeConn, pids [3]game.PlayerID) {
	t.Helper()
	for i := range conns {
		conns[i] = &fakeConn{}
		pids[i] = game.PlayerID(string(rune('a' + i)))
	}
	if err := reg.CreateRoom(conns[0], "den", pids[0], "host", game.TypeGang, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 1; i < 3; i++ {
		if err := reg.JoinRoom(conns[i], "den", pids[i], "guest", ""); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	return conns, pids
}

func TestCreateRoomDuplicateName(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	c := &fakeConn{}
	if err := reg.CreateRoom(c, "den", "a", "alice", game.TypeGang, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !c.has("roomCreated") {
		t.Fatal("creator should receive roomCreated")
	}
	if err := reg.CreateRoom(&fakeConn{}, "den", "b", "bob", game.TypeGang, ""); err == nil {
		t.Fatal("expected duplicate room name to be rejected")
	}
}

func TestCreateRoomUnknownGameType(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	if err := reg.CreateRoom(&fakeConn{}, "den", "a", "alice", "chess", ""); err == nil {
		t.Fatal("expected unknown game type to be rejected")
	}
}

func TestJoinRoomPassword(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	if err := reg.CreateRoom(&fakeConn{}, "vault", "a", "alice", game.TypeGang, "hunter2"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := reg.JoinRoom(&fakeConn{}, "vault", "b", "bob", "wrong"); err == nil {
		t.Fatal("expected wrong password to be rejected")
	}
	joiner := &fakeConn{}
	if err := reg.JoinRoom(joiner, "vault", "b", "bob", "hunter2"); err != nil {
		t.Fatalf("join with password: %v", err)
	}
	if !joiner.has("roomJoined") {
		t.Fatal("joiner should receive roomJoined")
	}
}

func TestVerifyPassword(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	if err := reg.CreateRoom(&fakeConn{}, "vault", "a", "alice", game.TypeGang, "hunter2"); err != nil {
		t.Fatalf("create: %v", err)
	}
	c := &fakeConn{}
	if err := reg.VerifyPassword(c, "vault", "hunter2"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	data, ok := c.last("passwordVerified")
	if !ok {
		t.Fatal("expected passwordVerified")
	}
	if !data.(map[string]any)["success"].(bool) {
		t.Fatal("correct password should verify")
	}
}

func TestJoinDuplicateIdentityRejected(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	seatThree(t, reg)
	if err := reg.JoinRoom(&fakeConn{}, "den", "a", "imposter", ""); err == nil {
		t.Fatal("expected an active identity to be unjoinable from a second connection")
	}
}

func TestJoinStartedRoomRejected(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	conns, _ := seatThree(t, reg)
	if err := reg.StartGame(conns[0], "den"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := reg.JoinRoom(&fakeConn{}, "den", "d", "dave", ""); err == nil {
		t.Fatal("expected a started room to reject new identities")
	}
}

func TestLeaveRoomReassignsHost(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	conns, pids := seatThree(t, reg)

	if err := reg.LeaveRoom(conns[0], "den"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	data, ok := conns[1].last("userLeft")
	if !ok {
		t.Fatal("remaining players should see userLeft")
	}
	left := data.(userLeftPayload)
	if left.HostPlayerID != pids[1] {
		t.Fatalf("host = %s after host left, want first remaining seat %s", left.HostPlayerID, pids[1])
	}
	if left.MemberCount != 2 {
		t.Fatalf("member count = %d, want 2", left.MemberCount)
	}
}

func TestLeaveLastPlayerDeletesRoom(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	c := &fakeConn{}
	if err := reg.CreateRoom(c, "den", "a", "alice", game.TypeGang, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := reg.LeaveRoom(c, "den"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := len(reg.Rooms()); got != 0 {
		t.Fatalf("%d rooms after the last player left, want 0", got)
	}
}

func TestKickRules(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	conns, pids := seatThree(t, reg)

	if err := reg.KickPlayer(conns[1], "den", pids[2]); err == nil {
		t.Fatal("expected a non-host kick to fail")
	}
	if err := reg.KickPlayer(conns[0], "den", pids[0]); err == nil {
		t.Fatal("expected a self-kick to fail")
	}
	if err := reg.KickPlayer(conns[0], "den", pids[2]); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if !conns[2].has("kicked") {
		t.Fatal("the target should be told they were kicked")
	}

	remaining := [3]*fakeConn{conns[0], conns[1], &fakeConn{}}
	if err := reg.JoinRoom(remaining[2], "den", "c2", "carol", ""); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if err := reg.StartGame(conns[0], "den"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := reg.KickPlayer(conns[0], "den", "c2"); err == nil {
		t.Fatal("expected kicking after game start to fail")
	}
}

func TestDisconnectReconnectKeepsSeat(t *testing.T) {
	reg := testRegistry(200*time.Millisecond, time.Second)
	conns, pids := seatThree(t, reg)
	if err := reg.StartGame(conns[0], "den"); err != nil {
		t.Fatalf("start: %v", err)
	}

	reg.Disconnect(conns[1])

	replacement := &fakeConn{}
	if err := reg.JoinRoom(replacement, "den", pids[1], "guest", ""); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	data, ok := replacement.last("roomJoined")
	if !ok {
		t.Fatal("reconnect should deliver the room slice")
	}
	joined := data.(joinedPayload)
	if !joined.GameStarted {
		t.Fatal("reconnect payload should show the running game")
	}
	if joined.GameState == nil {
		t.Fatal("reconnect payload should carry the game snapshot")
	}
	if joined.MemberCount != 3 {
		t.Fatalf("member count = %d after reconnect, want 3", joined.MemberCount)
	}

	// The cancelled timer must not evict later.
	time.Sleep(300 * time.Millisecond)
	rooms := reg.Rooms()
	if len(rooms) != 1 || rooms[0].MemberCount != 3 {
		t.Fatal("a reconnect inside the grace window must keep the seat")
	}
}

func TestDisconnectGraceExpiryEvicts(t *testing.T) {
	reg := testRegistry(50*time.Millisecond, time.Second)
	conns, _ := seatThree(t, reg)

	reg.Disconnect(conns[2])
	time.Sleep(150 * time.Millisecond)

	rooms := reg.Rooms()
	if len(rooms) != 1 || rooms[0].MemberCount != 2 {
		t.Fatalf("room has %d members after grace expiry, want 2", rooms[0].MemberCount)
	}
	if !conns[0].has("userLeft") {
		t.Fatal("remaining players should see userLeft after eviction")
	}
}

func TestRejoinAfterGraceExpiryIsNewJoin(t *testing.T) {
	reg := testRegistry(50*time.Millisecond, time.Second)
	conns, pids := seatThree(t, reg)
	if err := reg.StartGame(conns[0], "den"); err != nil {
		t.Fatalf("start: %v", err)
	}

	reg.Disconnect(conns[2])
	time.Sleep(150 * time.Millisecond)

	// The grace seat is gone, so the identity is a stranger to a
	// started room.
	if err := reg.JoinRoom(&fakeConn{}, "den", pids[2], "guest", ""); err == nil {
		t.Fatal("rejoin after grace expiry must be rejected while the game runs")
	}

	// In a lobby room the same identity joins fresh, with no seat
	// state carried over.
	if err := reg.CreateRoom(&fakeConn{}, "lobby", "x", "xavier", game.TypeGang, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	late := &fakeConn{}
	if err := reg.JoinRoom(late, "lobby", "y", "yusuf", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	reg.Disconnect(late)
	time.Sleep(150 * time.Millisecond)

	again := &fakeConn{}
	if err := reg.JoinRoom(again, "lobby", "y", "yusuf", ""); err != nil {
		t.Fatalf("rejoin after expiry in the lobby should be a fresh join: %v", err)
	}
	data, ok := again.last("roomJoined")
	if !ok {
		t.Fatal("fresh join should deliver the room slice")
	}
	joined := data.(joinedPayload)
	if joined.GameStarted || joined.GameState != nil {
		t.Fatal("fresh join must not restore game state")
	}
	if joined.MemberCount != 2 {
		t.Fatalf("member count = %d after fresh join, want 2", joined.MemberCount)
	}
	for _, hc := range joined.PlayerHands {
		if hc.CardCount != 0 {
			t.Fatalf("fresh join restored a hand of %d cards for %s", hc.CardCount, hc.PlayerID)
		}
	}
}

func TestRoomsListing(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	if err := reg.CreateRoom(&fakeConn{}, "open", "a", "alice", game.TypeGang, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := reg.CreateRoom(&fakeConn{}, "locked", "b", "bob", game.TypeSkulking, "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	rooms := reg.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("listed %d rooms, want 2", len(rooms))
	}
	byName := map[string]RoomInfo{}
	for _, r := range rooms {
		byName[r.Name] = r
	}
	if !byName["locked"].IsPrivate {
		t.Fatal("password rooms must list as private")
	}
	if byName["open"].IsPrivate {
		t.Fatal("open rooms must not list as private")
	}
	if byName["locked"].GameType != game.TypeSkulking {
		t.Fatalf("game type = %s, want skulking", byName["locked"].GameType)
	}
}

func TestPlayerListRequiresMembership(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	conns, _ := seatThree(t, reg)

	if err := reg.PlayerList(&fakeConn{}, "den"); err == nil {
		t.Fatal("expected a non-member player list request to fail")
	}
	if err := reg.PlayerList(conns[1], "den"); err != nil {
		t.Fatalf("player list: %v", err)
	}
	data, ok := conns[1].last("playerList")
	if !ok {
		t.Fatal("expected playerList")
	}
	players := data.(map[string]any)["players"].([]PlayerInfo)
	if len(players) != 3 || players[0].Order != 0 {
		t.Fatalf("players = %v, want three ordered seats", players)
	}
}

func TestRoomMessageRelay(t *testing.T) {
	reg := testRegistry(time.Second, time.Second)
	conns, _ := seatThree(t, reg)

	if err := reg.RoomMessage(conns[1], "den", "hello"); err != nil {
		t.Fatalf("room message: %v", err)
	}
	for i, c := range conns {
		if !c.has("roomMessage") {
			t.Fatalf("conn %d missed the relayed message", i)
		}
	}
	if err := reg.RoomMessage(&fakeConn{}, "den", "spoof"); err == nil {
		t.Fatal("expected a non-member relay to fail")
	}
}
