package session

import (
	"fmt"
	"time"

	"cardroom/internal/game"
)

// roomPlayer resolves the caller's seat. Callers hold reg.mu.
func (reg *Registry) roomPlayer(conn Conn, name string) (*Room, game.PlayerID, error) {
	r, ok := reg.rooms[name]
	if !ok {
		return nil, "", fmt.Errorf("room %q does not exist", name)
	}
	st := r.seatByConn(conn)
	if st == nil {
		return nil, "", fmt.Errorf("you are not in room %q", name)
	}
	return r, st.id, nil
}

// StartGame builds a fresh engine for the room's game type and starts
// it. The trick-taking game is host-gated; the others may be started
// by any seated player.
func (reg *Registry) StartGame(conn Conn, name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}

	var (
		eng    engine
		events []game.Event
	)
	switch r.gameType {
	case game.TypeSkulking:
		if pid != r.host {
			return fmt.Errorf("only the host can start the game")
		}
		sk := game.NewSkulking(reg.decks, r.status, name, r.roster())
		if events, err = sk.Start(); err != nil {
			return err
		}
		eng = sk
	case game.TypeSpice:
		sp := game.NewSpice(reg.decks, r.status, name, r.roster())
		if events, err = sp.Start(); err != nil {
			return err
		}
		eng = sp
	default:
		gg := game.NewGang(reg.decks, r.status, name, r.roster())
		if events, err = gg.Start(); err != nil {
			return err
		}
		eng = gg
	}
	r.session = eng
	r.dispatch(events)
	return nil
}

// FirstDraw performs the seating draw for the games that open with
// one.
func (reg *Registry) FirstDraw(conn Conn, name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	switch eng := r.session.(type) {
	case *game.Skulking:
		events, err := eng.DrawSeat(pid)
		if err != nil {
			return err
		}
		r.dispatch(events)
	case *game.Spice:
		events, err := eng.DrawSeat(pid)
		if err != nil {
			return err
		}
		r.dispatch(events)
	default:
		return fmt.Errorf("room %q has no seating draw", name)
	}
	return nil
}

// SelectChip claims a chip in the chip-bid game.
func (reg *Registry) SelectChip(conn Conn, name string, chipNumber int) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	eng, ok := r.session.(*game.Gang)
	if !ok {
		return fmt.Errorf("room %q is not playing the chip game", name)
	}
	events, err := eng.SelectChip(pid, chipNumber)
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}

// PlayerReady marks the caller ready for the current chip step.
func (reg *Registry) PlayerReady(conn Conn, name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	eng, ok := r.session.(*game.Gang)
	if !ok {
		return fmt.Errorf("room %q is not playing the chip game", name)
	}
	events, err := eng.Ready(pid)
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}

// ReadyNextRound gates the chip game's redeal.
func (reg *Registry) ReadyNextRound(conn Conn, name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	eng, ok := r.session.(*game.Gang)
	if !ok {
		return fmt.Errorf("room %q is not playing the chip game", name)
	}
	events, err := eng.ReadyNextRound(pid)
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}

// DrawCard runs the chip game's simple draw variant.
func (reg *Registry) DrawCard(conn Conn, name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	eng, ok := r.session.(*game.Gang)
	if !ok {
		return fmt.Errorf("room %q is not playing the chip game", name)
	}
	events, err := eng.DrawCard(pid)
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}

// Bid submits a trick-taking bid.
func (reg *Registry) Bid(conn Conn, name string, bid int) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	eng, ok := r.session.(*game.Skulking)
	if !ok {
		return fmt.Errorf("room %q is not playing the trick game", name)
	}
	events, err := eng.Bid(pid, bid)
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}

// PlayTrickCard plays a card into the current trick.
func (reg *Registry) PlayTrickCard(conn Conn, name string, cardIndex int, tigressDeclared string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	eng, ok := r.session.(*game.Skulking)
	if !ok {
		return fmt.Errorf("room %q is not playing the trick game", name)
	}
	events, err := eng.PlayCard(pid, cardIndex, tigressDeclared)
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}

// NextRound moves the trick-taking match to its next round; host only.
func (reg *Registry) NextRound(conn Conn, name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	if pid != r.host {
		return fmt.Errorf("only the host can advance the round")
	}
	eng, ok := r.session.(*game.Skulking)
	if !ok {
		return fmt.Errorf("room %q is not playing the trick game", name)
	}
	events, err := eng.NextRound()
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}

// PlayCard routes the shared play-card action to whichever game the
// room is running.
func (reg *Registry) PlayCard(conn Conn, name string, cardIndex int, tigressDeclared string, declaredSuit game.Suit, declaredNumber int) error {
	reg.mu.Lock()
	isBluff := false
	if r, ok := reg.rooms[name]; ok {
		_, isBluff = r.session.(*game.Spice)
	}
	reg.mu.Unlock()

	if isBluff {
		return reg.PlayBluffCard(conn, name, cardIndex, declaredSuit, declaredNumber)
	}
	return reg.PlayTrickCard(conn, name, cardIndex, tigressDeclared)
}

// PlayBluffCard plays a face-down card with a declared pair and arms
// the challenge-window timer.
func (reg *Registry) PlayBluffCard(conn Conn, name string, cardIndex int, declaredSuit game.Suit, declaredNumber int) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	eng, ok := r.session.(*game.Spice)
	if !ok {
		return fmt.Errorf("room %q is not playing the bluff game", name)
	}
	events, token, err := eng.Play(pid, cardIndex, declaredSuit, declaredNumber)
	if err != nil {
		return err
	}
	r.dispatch(events)
	if token != 0 {
		time.AfterFunc(reg.window, func() {
			reg.bluffWindowExpired(name, token)
		})
	}
	return nil
}

// bluffWindowExpired is the deferred auto-accept. The engine discards
// stale tokens, so a timer beaten by an explicit challenge or a
// removal fires harmlessly.
func (reg *Registry) bluffWindowExpired(name string, token int64) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return
	}
	eng, ok := r.session.(*game.Spice)
	if !ok {
		return
	}
	r.dispatch(eng.ResolveTimeout(token))
}

// PassTurn draws a card and passes in the bluff game.
func (reg *Registry) PassTurn(conn Conn, name string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	eng, ok := r.session.(*game.Spice)
	if !ok {
		return fmt.Errorf("room %q is not playing the bluff game", name)
	}
	events, err := eng.Pass(pid)
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}

// ChallengeDeclaration disputes the pending declaration's suit or
// number.
func (reg *Registry) ChallengeDeclaration(conn Conn, name, kind string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, pid, err := reg.roomPlayer(conn, name)
	if err != nil {
		return err
	}
	eng, ok := r.session.(*game.Spice)
	if !ok {
		return fmt.Errorf("room %q is not playing the bluff game", name)
	}
	events, err := eng.Challenge(pid, kind)
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}
