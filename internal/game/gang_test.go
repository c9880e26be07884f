package game

import "testing"

func gangFixture(t *testing.T, n int) (*Gang, []Player) {
	t.Helper()
	roster := make([]Player, 0, n)
	for i := 0; i < n; i++ {
		roster = append(roster, Player{
			ID:       PlayerID(string(rune('a' + i))),
			Nickname: "player-" + string(rune('a'+i)),
		})
	}
	g := NewGang(NewDeckProvider(""), &Status{}, "den", roster)
	return g, roster
}

func TestGangStartRequiresThreePlayers(t *testing.T) {
	g, _ := gangFixture(t, 2)
	if _, err := g.Start(); err == nil {
		t.Fatal("expected start with two players to fail")
	}
}

func TestGangStartDealsTwoCardsEach(t *testing.T) {
	g, roster := gangFixture(t, 3)
	events, err := g.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected one gameStarted per player, got %d events", len(events))
	}
	for _, e := range events {
		if e.To == "" {
			t.Fatalf("gameStarted must be targeted, got broadcast %q", e.Name)
		}
	}
	for _, p := range roster {
		if got := len(g.hands[p.ID]); got != 2 {
			t.Fatalf("player %s dealt %d cards, want 2", p.ID, got)
		}
	}
	if len(g.deck) != 52-6 {
		t.Fatalf("deck has %d cards after deal, want 46", len(g.deck))
	}
	if len(g.chips) != 3 {
		t.Fatalf("got %d chips, want one per player", len(g.chips))
	}
	for _, c := range g.chips {
		if c.Owner != "" {
			t.Fatalf("chip %d should start unclaimed", c.Number)
		}
	}
	if !g.status.Started {
		t.Fatal("status not marked started")
	}
}

func TestGangThirdCardAfterTwoWins(t *testing.T) {
	g, roster := gangFixture(t, 3)
	g.successCount = 2
	g.record = map[PlayerID][]bool{}
	g.dealRound()
	if got := len(g.hands[roster[0].ID]); got != 3 {
		t.Fatalf("dealt %d cards after two wins, want 3", got)
	}
}

func TestGangChipStealFromUnreadyOwner(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	a, b := roster[0].ID, roster[1].ID

	if _, err := g.SelectChip(a, 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	events, err := g.SelectChip(b, 1)
	if err != nil {
		t.Fatalf("steal from unready owner: %v", err)
	}
	if g.findChip(1).Owner != b {
		t.Fatalf("chip 1 owned by %s, want %s", g.findChip(1).Owner, b)
	}
	var sawMessage bool
	for _, e := range events {
		if e.Name == "roomMessage" {
			sawMessage = true
		}
	}
	if !sawMessage {
		t.Fatal("steal should announce a system room message")
	}
}

func TestGangReadyFreezesChip(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	a, b := roster[0].ID, roster[1].ID

	if _, err := g.SelectChip(a, 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := g.Ready(a); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if _, err := g.SelectChip(b, 1); err == nil {
		t.Fatal("expected steal from a ready owner to be rejected")
	}
}

func TestGangSwitchingChipsRevokesOwnReadiness(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	a := roster[0].ID

	if _, err := g.SelectChip(a, 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := g.Ready(a); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if _, err := g.SelectChip(a, 2); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if g.ready[a] {
		t.Fatal("switching chips should revoke readiness")
	}
	if g.findChip(1).Owner != "" {
		t.Fatal("old chip should be released on switch")
	}
}

func TestGangReadyWithoutChipRejected(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := g.Ready(roster[0].ID); err == nil {
		t.Fatal("expected ready without a chip to fail")
	}
}

// Full round: everyone keeps the same chip through all four steps and
// the hands rank in chip order, so the table wins together.
func TestGangFullRoundCollectiveWin(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	a, b, c := roster[0].ID, roster[1].ID, roster[2].ID

	g.hands[a] = []Card{{Suit: Hearts, Value: 3}, {Suit: Spades, Value: 5}}
	g.hands[b] = []Card{{Suit: Hearts, Value: 6}, {Suit: Spades, Value: 8}}
	g.hands[c] = []Card{{Suit: Hearts, Value: 10}, {Suit: Hearts, Value: 13}}
	g.deck = []Card{
		{Suit: Clubs, Value: 4},
		{Suit: Spades, Value: 12},
		{Suit: Hearts, Value: 9},
		{Suit: Diamonds, Value: 7},
		{Suit: Clubs, Value: 2},
	}

	var finished *gangFinishedPayload
	for step := 1; step <= gangSteps; step++ {
		for i, pid := range []PlayerID{a, b, c} {
			if _, err := g.SelectChip(pid, i+1); err != nil {
				t.Fatalf("step %d select: %v", step, err)
			}
		}
		for _, pid := range []PlayerID{a, b, c} {
			events, err := g.Ready(pid)
			if err != nil {
				t.Fatalf("step %d ready: %v", step, err)
			}
			for _, e := range events {
				if e.Name == "gameFinished" {
					p := e.Data.(gangFinishedPayload)
					finished = &p
				}
			}
		}
		if step < gangSteps && g.step != step+1 {
			t.Fatalf("after step %d all ready, engine at step %d", step, g.step)
		}
	}

	if finished == nil {
		t.Fatal("round never finished")
	}
	if len(g.open) != 5 {
		t.Fatalf("got %d open cards at showdown, want 5", len(g.open))
	}
	if !finished.WinLossRecord[a][0] {
		t.Fatal("ascending ranks in chip order should record a win")
	}
	if g.successCount != 1 {
		t.Fatalf("successCount = %d after a win, want 1", g.successCount)
	}
	if finished.GameOver {
		t.Fatal("one win should not end the match")
	}
	if got := g.chipHistory[a]; len(got) != 4 || got[3] != 1 {
		t.Fatalf("chip history for a = %v, want four entries ending in 1", got)
	}
}

func TestGangRoundLossOnDescendingRanks(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	a, b, c := roster[0].ID, roster[1].ID, roster[2].ID

	// Chip 1 holds a pair, later chips only high cards.
	g.hands[a] = []Card{{Suit: Hearts, Value: 2}, {Suit: Spades, Value: 2}}
	g.hands[b] = []Card{{Suit: Hearts, Value: 6}, {Suit: Spades, Value: 8}}
	g.hands[c] = []Card{{Suit: Hearts, Value: 10}, {Suit: Hearts, Value: 13}}
	g.open = []Card{
		{Suit: Clubs, Value: 4},
		{Suit: Spades, Value: 12},
		{Suit: Hearts, Value: 9},
		{Suit: Diamonds, Value: 7},
		{Suit: Clubs, Value: 3},
	}
	g.step = gangSteps
	g.chips[0].Owner = a
	g.chips[1].Owner = b
	g.chips[2].Owner = c

	events := g.advanceStep()
	var finished *gangFinishedPayload
	for _, e := range events {
		if e.Name == "gameFinished" {
			p := e.Data.(gangFinishedPayload)
			finished = &p
		}
	}
	if finished == nil {
		t.Fatal("expected gameFinished")
	}
	if finished.WinLossRecord[a][0] {
		t.Fatal("pair ahead of high cards should record a loss")
	}
	if g.successCount != 0 {
		t.Fatalf("successCount = %d after a loss, want 0", g.successCount)
	}
}

func TestGangEqualLabelsTie(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	a, b, c := roster[0].ID, roster[1].ID, roster[2].ID

	// a and b both top out with an eight; same label means a tie even
	// though their kickers differ.
	g.hands[a] = []Card{{Suit: Hearts, Value: 8}, {Suit: Spades, Value: 6}}
	g.hands[b] = []Card{{Suit: Diamonds, Value: 8}, {Suit: Clubs, Value: 5}}
	g.hands[c] = []Card{{Suit: Hearts, Value: 10}, {Suit: Hearts, Value: 13}}
	g.open = []Card{
		{Suit: Clubs, Value: 4},
		{Suit: Spades, Value: 12},
		{Suit: Hearts, Value: 9},
		{Suit: Diamonds, Value: 7},
		{Suit: Clubs, Value: 2},
	}
	g.step = gangSteps
	g.chips[0].Owner = a
	g.chips[1].Owner = b
	g.chips[2].Owner = c

	g.advanceStep()
	if !g.record[a][0] {
		t.Fatal("equal labels should tie and the round should be won")
	}
}

func TestGangMatchOverAtThreeLosses(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, p := range roster {
		g.record[p.ID] = []bool{false, false}
	}
	g.hands[roster[0].ID] = []Card{{Suit: Hearts, Value: 2}, {Suit: Spades, Value: 2}}
	g.open = []Card{{Suit: Clubs, Value: 4}}

	events := g.finishRound(false)
	payload := events[0].Data.(gangFinishedPayload)
	if !payload.GameOver {
		t.Fatal("third loss should end the match")
	}
	if payload.GameOverResult != "defeat" {
		t.Fatalf("result = %q, want defeat", payload.GameOverResult)
	}
	if g.status.Started {
		t.Fatal("match over should clear the started flag")
	}
}

func TestGangWinLossLedgerCapped(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, p := range roster {
		g.record[p.ID] = []bool{true, false, true, false, true}
	}
	g.finishRound(false)
	rec := g.record[roster[0].ID]
	if len(rec) != winLossHistoryCap {
		t.Fatalf("ledger grew to %d, cap is %d", len(rec), winLossHistoryCap)
	}
	if rec[0] != false || rec[len(rec)-1] != false {
		t.Fatalf("ledger %v should drop the oldest entry and append the loss", rec)
	}
}

func TestGangReadyNextRoundRedeals(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	g.record[roster[0].ID] = []bool{true}
	g.successCount = 1

	var redealt bool
	for _, p := range roster {
		events, err := g.ReadyNextRound(p.ID)
		if err != nil {
			t.Fatalf("readyNextRound: %v", err)
		}
		for _, e := range events {
			if e.Name == "gameStarted" {
				redealt = true
			}
		}
	}
	if !redealt {
		t.Fatal("all players ready should trigger a redeal")
	}
	if len(g.record[roster[0].ID]) != 1 {
		t.Fatal("redeal must keep the win/loss ledger")
	}
	if g.successCount != 1 {
		t.Fatal("redeal must keep the success count")
	}
	if g.step != 1 {
		t.Fatalf("redeal left step at %d, want 1", g.step)
	}
}

func TestGangDrawCardAdvancesTurn(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	before := len(g.deck)
	events, err := g.DrawCard(roster[0].ID)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(g.deck) != before-1 {
		t.Fatal("draw should consume the top card")
	}
	if g.turn != 1 {
		t.Fatalf("turn = %d after draw, want 1", g.turn)
	}
	payload := events[0].Data.(cardDrawnPayload)
	if payload.PlayerNickname != roster[0].Nickname {
		t.Fatalf("card went to %q, want current-turn player %q",
			payload.PlayerNickname, roster[0].Nickname)
	}
	if got := len(g.hands[roster[0].ID]); got != 3 {
		t.Fatalf("drawer holds %d cards, want 3", got)
	}
}

func TestGangRemovePlayerReleasesChipAndAdvances(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	a, b, c := roster[0].ID, roster[1].ID, roster[2].ID

	for i, pid := range []PlayerID{a, b, c} {
		if _, err := g.SelectChip(pid, i+1); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	if _, err := g.Ready(a); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if _, err := g.Ready(b); err != nil {
		t.Fatalf("ready: %v", err)
	}

	events := g.RemovePlayer(c)
	if len(g.roster) != 2 {
		t.Fatalf("roster has %d players after removal, want 2", len(g.roster))
	}
	if g.findChip(3).Owner != "" {
		t.Fatal("departing player's chip should be released")
	}
	var advanced bool
	for _, e := range events {
		if e.Name == "nextStep" {
			advanced = true
		}
	}
	if !advanced {
		t.Fatal("removal leaving everyone ready should advance the step")
	}
	if g.step != 2 {
		t.Fatalf("step = %d, want 2", g.step)
	}
}

func TestGangSnapshotHidesOtherHands(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := g.Snapshot(roster[0].ID).(gangSnapshot)
	if len(snap.MyHand) != 2 {
		t.Fatalf("snapshot hand has %d cards, want 2", len(snap.MyHand))
	}
	for _, hc := range snap.PlayerHands {
		if hc.CardCount != 2 {
			t.Fatalf("hand count for %s = %d, want 2", hc.PlayerID, hc.CardCount)
		}
	}
}

// gangCardTotal sums every card still in play: the deck, every hand
// and the open cards.
func gangCardTotal(g *Gang) int {
	total := len(g.deck) + len(g.open)
	for _, h := range g.hands {
		total += len(h)
	}
	return total
}

func TestGangCardConservation(t *testing.T) {
	g, roster := gangFixture(t, 3)
	if _, err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := gangCardTotal(g); got != 52 {
		t.Fatalf("after deal %d cards in play, want 52", got)
	}

	for step := 1; step <= gangSteps; step++ {
		for i, p := range roster {
			if _, err := g.SelectChip(p.ID, i+1); err != nil {
				t.Fatalf("step %d select: %v", step, err)
			}
			if got := gangCardTotal(g); got != 52 {
				t.Fatalf("step %d after select %d cards in play, want 52", step, got)
			}
		}
		for _, p := range roster {
			if _, err := g.Ready(p.ID); err != nil {
				t.Fatalf("step %d ready: %v", step, err)
			}
			if got := gangCardTotal(g); got != 52 {
				t.Fatalf("step %d after ready %d cards in play, want 52", step, got)
			}
		}
	}
	if !g.status.Finished {
		t.Fatal("round should be scored after the final step")
	}

	for _, p := range roster {
		if _, err := g.ReadyNextRound(p.ID); err != nil {
			t.Fatalf("ready next round: %v", err)
		}
	}
	if got := gangCardTotal(g); got != 52 {
		t.Fatalf("redeal left %d cards in play, want 52", got)
	}

	if _, err := g.DrawCard(roster[0].ID); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := gangCardTotal(g); got != 52 {
		t.Fatalf("draw left %d cards in play, want 52", got)
	}

	evicted := roster[2].ID
	dropped := len(g.hands[evicted])
	if dropped == 0 {
		t.Fatal("evicted player should hold cards")
	}
	g.RemovePlayer(evicted)
	if got := gangCardTotal(g); got != 52-dropped {
		t.Fatalf("after eviction %d cards in play, want %d", got, 52-dropped)
	}
}
