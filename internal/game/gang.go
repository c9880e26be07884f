package game

import (
	"errors"
	"fmt"
	"sort"
)

const (
	gangMinPlayers = 3
	gangSteps      = 4

	// winLossHistoryCap bounds the per-player match ledger; the oldest
	// result drops once the cap is hit.
	winLossHistoryCap = 5
	matchTarget       = 3
)

// Chip is a selectable token. State is the cosmetic severity tier that
// rises each step; Owner is empty while unclaimed.
type Chip struct {
	Number int      `json:"number"`
	State  int      `json:"state"`
	Owner  PlayerID `json:"owner,omitempty"`
}

// GangResult is one player's share of the round outcome.
type GangResult struct {
	PlayerID PlayerID `json:"playerId"`
	Nickname string   `json:"nickname"`
	Hand     []Card   `json:"hand"`
	Chips    []int    `json:"chips"`
	Rank     HandRank `json:"rank"`
}

// Gang runs the chip-bid hand game: deal, four chip-selection steps,
// then a collective poker evaluation ordered by final chip number.
type Gang struct {
	decks    *DeckProvider
	status   *Status
	roomName string

	roster []Player
	deck   []Card
	hands  map[PlayerID][]Card
	open   []Card
	chips  []Chip
	step   int
	turn   int

	ready          map[PlayerID]bool
	nextRoundReady map[PlayerID]bool
	chipHistory    map[PlayerID][]int
	record         map[PlayerID][]bool
	successCount   int

	lastResults []GangResult
}

func NewGang(decks *DeckProvider, status *Status, roomName string, roster []Player) *Gang {
	return &Gang{
		decks:    decks,
		status:   status,
		roomName: roomName,
		roster:   append([]Player(nil), roster...),
	}
}

func (g *Gang) Kind() Type { return TypeGang }

// Start begins a fresh match: ledgers reset, hand size back to the
// base two cards.
func (g *Gang) Start() ([]Event, error) {
	if len(g.roster) < gangMinPlayers {
		return nil, errors.New("need at least 3 players to start")
	}
	g.record = map[PlayerID][]bool{}
	g.successCount = 0
	g.lastResults = nil
	return g.dealRound(), nil
}

// dealRound resets the transient phase state and deals a new round.
// Cross-round ledgers survive; Start clears them first for a fresh
// match.
func (g *Gang) dealRound() []Event {
	g.status.Started = true
	g.status.Finished = false
	g.status.Over = false
	g.status.Result = ""

	g.deck = g.decks.CreateDeck(TypeGang)
	g.open = nil
	g.step = 1
	g.turn = 0
	g.ready = map[PlayerID]bool{}
	g.nextRoundReady = map[PlayerID]bool{}
	g.chipHistory = map[PlayerID][]int{}

	g.chips = make([]Chip, len(g.roster))
	for i := range g.chips {
		g.chips[i] = Chip{Number: i + 1}
	}

	g.hands = map[PlayerID][]Card{}
	cardsPerPlayer := 2
	if g.successCount >= 2 {
		cardsPerPlayer = 3
	}
	for i := 0; i < cardsPerPlayer; i++ {
		for _, p := range g.roster {
			if len(g.deck) == 0 {
				break
			}
			var c Card
			c, g.deck = drawTop(g.deck)
			g.hands[p.ID] = append(g.hands[p.ID], c)
		}
	}

	events := make([]Event, 0, len(g.roster))
	for _, p := range g.roster {
		events = append(events, targeted(p.ID, "gameStarted", gangStartedPayload{
			RoomName:       g.roomName,
			DeckCount:      len(g.deck),
			MyHand:         g.hands[p.ID],
			PlayerHands:    g.HandCounts(),
			OpenCards:      g.open,
			Chips:          g.chips,
			WinLossRecord:  g.record,
			GameOver:       g.status.Over,
			GameOverResult: g.status.Result,
		}))
	}
	return events
}

// SelectChip claims a chip for pid. Stealing from another player is
// allowed until that player marks ready, which freezes their chip.
func (g *Gang) SelectChip(pid PlayerID, number int) ([]Event, error) {
	if !g.status.Started {
		return nil, errors.New("game is not in progress")
	}
	chip := g.findChip(number)
	if chip == nil {
		return nil, errors.New("no such chip")
	}
	previousOwner := chip.Owner
	if previousOwner != "" && previousOwner != pid && g.ready[previousOwner] {
		return nil, errors.New("that chip is locked by a ready player")
	}

	for i := range g.chips {
		if g.chips[i].Owner == pid {
			g.chips[i].Owner = ""
		}
	}
	chip.Owner = pid

	revoked := false
	for _, affected := range []PlayerID{pid, previousOwner} {
		if affected != "" && g.ready[affected] {
			delete(g.ready, affected)
			revoked = true
		}
	}

	events := []Event{}
	stolen := previousOwner != "" && previousOwner != pid
	if stolen {
		events = append(events, broadcast("roomMessage", systemMessagePayload{
			RoomName: g.roomName,
			Message: fmt.Sprintf("%s took chip %d from %s",
				g.nickname(pid), number, g.nickname(previousOwner)),
			IsSystem: true,
		}))
	}
	sel := chipSelectedPayload{
		RoomName:     g.roomName,
		Chips:        g.chips,
		ReadyPlayers: g.readyList(),
	}
	if stolen {
		sel.StolenFrom = previousOwner
		sel.StolenBy = pid
		sel.StolenFromName = g.nickname(previousOwner)
		sel.StolenByName = g.nickname(pid)
		sel.ChipNumber = number
	}
	events = append(events, broadcast("chipSelected", sel))
	if revoked {
		events = append(events, broadcast("playerReadyUpdate", readyUpdatePayload{
			RoomName:     g.roomName,
			ReadyPlayers: g.readyList(),
			AllReady:     false,
		}))
	}
	return events, nil
}

// Ready marks pid ready for the current step; the step advances once
// every seated player is ready.
func (g *Gang) Ready(pid PlayerID) ([]Event, error) {
	if !g.status.Started {
		return nil, errors.New("game is not in progress")
	}
	if g.ownedChip(pid) == nil {
		return nil, errors.New("select a chip first")
	}
	g.ready[pid] = true

	allReady := len(g.ready) == len(g.roster)
	events := []Event{broadcast("playerReadyUpdate", readyUpdatePayload{
		RoomName:     g.roomName,
		ReadyPlayers: g.readyList(),
		AllReady:     allReady,
	})}
	if allReady {
		events = append(events, g.advanceStep()...)
	}
	return events, nil
}

func (g *Gang) advanceStep() []Event {
	for _, chip := range g.chips {
		if chip.Owner != "" {
			g.chipHistory[chip.Owner] = append(g.chipHistory[chip.Owner], chip.Number)
		}
	}
	g.step++

	if g.step > gangSteps {
		return g.finishRound(g.roundWon())
	}

	tier := g.step - 1
	for i := range g.chips {
		g.chips[i].State = tier
		g.chips[i].Owner = ""
	}
	// Entering step 2 reveals the first three open cards at once, the
	// later steps one each.
	reveal := 1
	if g.step == 2 {
		reveal = 3
	}
	for i := 0; i < reveal && len(g.deck) > 0; i++ {
		var c Card
		c, g.deck = drawTop(g.deck)
		g.open = append(g.open, c)
	}
	g.ready = map[PlayerID]bool{}

	return []Event{broadcast("nextStep", nextStepPayload{
		RoomName:      g.roomName,
		CurrentStep:   g.step,
		OpenCards:     g.open,
		Chips:         g.chips,
		DeckCount:     len(g.deck),
		PreviousChips: g.chipHistory,
	})}
}

// roundWon checks the ordering law: sorted by final chip number, the
// evaluated hand ranks must be non-decreasing, with equal category
// labels counting as a tie.
func (g *Gang) roundWon() bool {
	results := g.results()
	sorted := append([]GangResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lastChip(sorted[i].Chips) < lastChip(sorted[j].Chips)
	})
	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]
		if cur.Rank.Label == next.Rank.Label {
			continue
		}
		if CompareRanks(cur.Rank, next.Rank) > 0 {
			return false
		}
	}
	return true
}

func (g *Gang) finishRound(won bool) []Event {
	results := g.results()
	for _, r := range results {
		record := g.record[r.PlayerID]
		if len(record) >= winLossHistoryCap {
			record = record[1:]
		}
		g.record[r.PlayerID] = append(record, won)
	}
	g.ready = map[PlayerID]bool{}

	wins, losses := 0, 0
	if len(results) > 0 {
		for _, w := range g.record[results[0].PlayerID] {
			if w {
				wins++
			} else {
				losses++
			}
		}
	}
	over := wins >= matchTarget || losses >= matchTarget
	result := ""
	if over {
		if wins >= matchTarget {
			result = "victory"
		} else {
			result = "defeat"
		}
		g.status.Started = false
	}
	g.status.Finished = true
	g.status.Over = over
	g.status.Result = result
	g.lastResults = results
	if won {
		g.successCount++
	}

	return []Event{broadcast("gameFinished", gangFinishedPayload{
		RoomName:       g.roomName,
		FinalChips:     g.chips,
		PreviousChips:  g.chipHistory,
		OpenCards:      g.open,
		PlayerResults:  results,
		WinLossRecord:  g.record,
		GameOver:       over,
		GameOverResult: result,
	})}
}

// ReadyNextRound gates the redeal; once everyone is ready a new round
// starts with the win/loss ledger and success count intact.
func (g *Gang) ReadyNextRound(pid PlayerID) ([]Event, error) {
	if !g.status.Started {
		return nil, errors.New("game is not in progress")
	}
	g.nextRoundReady[pid] = true

	allReady := len(g.nextRoundReady) == len(g.roster)
	events := []Event{broadcast("nextRoundReadyUpdate", readyUpdatePayload{
		RoomName:     g.roomName,
		ReadyPlayers: keys(g.nextRoundReady),
		AllReady:     allReady,
	})}
	if allReady {
		events = append(events, g.dealRound()...)
	}
	return events, nil
}

// DrawCard is the legacy simple variant: the current-turn player draws
// the top card face up and the turn advances.
func (g *Gang) DrawCard(pid PlayerID) ([]Event, error) {
	if len(g.deck) == 0 {
		return nil, errors.New("the deck is empty")
	}
	if g.turn >= len(g.roster) {
		return nil, errors.New("invalid turn")
	}
	target := g.roster[g.turn]
	var c Card
	c, g.deck = drawTop(g.deck)
	g.hands[target.ID] = append(g.hands[target.ID], c)
	g.turn = (g.turn + 1) % len(g.roster)

	return []Event{broadcast("cardDrawn", cardDrawnPayload{
		RoomName:       g.roomName,
		Card:           c,
		DeckCount:      len(g.deck),
		PlayerNickname: target.Nickname,
		PlayerHands:    g.HandCounts(),
	})}, nil
}

// RemovePlayer splices pid out of the match. Their hand cards leave
// play; they are not returned to the deck.
func (g *Gang) RemovePlayer(pid PlayerID) []Event {
	g.roster = spliceRoster(g.roster, pid)
	delete(g.hands, pid)
	delete(g.ready, pid)
	delete(g.nextRoundReady, pid)
	for i := range g.chips {
		if g.chips[i].Owner == pid {
			g.chips[i].Owner = ""
		}
	}
	if len(g.roster) > 0 && g.turn >= len(g.roster) {
		g.turn = 0
	}
	if len(g.roster) == 0 || !g.status.Started {
		return nil
	}

	events := []Event{}
	if len(g.ready) == len(g.roster) && len(g.ready) > 0 {
		events = append(events, g.advanceStep()...)
	} else if len(g.nextRoundReady) == len(g.roster) && len(g.nextRoundReady) > 0 {
		events = append(events, g.dealRound()...)
	}
	return events
}

func (g *Gang) HandCounts() []HandCount {
	counts := make([]HandCount, 0, len(g.roster))
	for _, p := range g.roster {
		counts = append(counts, HandCount{
			PlayerID:  p.ID,
			Nickname:  p.Nickname,
			CardCount: len(g.hands[p.ID]),
		})
	}
	return counts
}

// Snapshot is the viewer's full resync slice after a reconnect.
func (g *Gang) Snapshot(viewer PlayerID) any {
	return gangSnapshot{
		DeckCount:       len(g.deck),
		MyHand:          g.hands[viewer],
		PlayerHands:     g.HandCounts(),
		OpenCards:       g.open,
		Chips:           g.chips,
		CurrentStep:     g.step,
		ReadyPlayers:    g.readyList(),
		PreviousChips:   g.chipHistory,
		WinLossRecord:   g.record,
		LastGameResults: g.lastResults,
		SuccessCount:    g.successCount,
	}
}

func (g *Gang) findChip(number int) *Chip {
	for i := range g.chips {
		if g.chips[i].Number == number {
			return &g.chips[i]
		}
	}
	return nil
}

func (g *Gang) ownedChip(pid PlayerID) *Chip {
	for i := range g.chips {
		if g.chips[i].Owner == pid {
			return &g.chips[i]
		}
	}
	return nil
}

func (g *Gang) results() []GangResult {
	results := make([]GangResult, 0, len(g.roster))
	for _, p := range g.roster {
		results = append(results, GangResult{
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Hand:     g.hands[p.ID],
			Chips:    g.chipHistory[p.ID],
			Rank:     EvaluateGangHand(g.hands[p.ID], g.open),
		})
	}
	return results
}

func (g *Gang) nickname(pid PlayerID) string {
	for _, p := range g.roster {
		if p.ID == pid {
			return p.Nickname
		}
	}
	return string(pid)
}

func (g *Gang) readyList() []PlayerID {
	return keys(g.ready)
}

func lastChip(chips []int) int {
	if len(chips) == 0 {
		return 0
	}
	return chips[len(chips)-1]
}

func spliceRoster(roster []Player, pid PlayerID) []Player {
	out := roster[:0]
	for _, p := range roster {
		if p.ID != pid {
			out = append(out, p)
		}
	}
	return out
}

func keys(set map[PlayerID]bool) []PlayerID {
	out := make([]PlayerID, 0, len(set))
	for pid := range set {
		out = append(out, pid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type gangStartedPayload struct {
	RoomName       string              `json:"roomName"`
	DeckCount      int                 `json:"deckCount"`
	MyHand         []Card              `json:"myHand"`
	PlayerHands    []HandCount         `json:"playerHands"`
	OpenCards      []Card              `json:"openCards"`
	Chips          []Chip              `json:"chips"`
	WinLossRecord  map[PlayerID][]bool `json:"winLossRecord"`
	GameOver       bool                `json:"gameOver"`
	GameOverResult string              `json:"gameOverResult,omitempty"`
}

type systemMessagePayload struct {
	RoomName string `json:"roomName"`
	Message  string `json:"message"`
	IsSystem bool   `json:"isSystem"`
}

type chipSelectedPayload struct {
	RoomName       string     `json:"roomName"`
	Chips          []Chip     `json:"chips"`
	ReadyPlayers   []PlayerID `json:"readyPlayers"`
	StolenFrom     PlayerID   `json:"stolenFrom,omitempty"`
	StolenBy       PlayerID   `json:"stolenBy,omitempty"`
	StolenFromName string     `json:"stolenFromName,omitempty"`
	StolenByName   string     `json:"stolenByName,omitempty"`
	ChipNumber     int        `json:"chipNumber,omitempty"`
}

type readyUpdatePayload struct {
	RoomName     string     `json:"roomName"`
	ReadyPlayers []PlayerID `json:"readyPlayers"`
	AllReady     bool       `json:"allReady"`
}

type nextStepPayload struct {
	RoomName      string             `json:"roomName"`
	CurrentStep   int                `json:"currentStep"`
	OpenCards     []Card             `json:"openCards"`
	Chips         []Chip             `json:"chips"`
	DeckCount     int                `json:"deckCount"`
	PreviousChips map[PlayerID][]int `json:"previousChips"`
}

type gangFinishedPayload struct {
	RoomName       string              `json:"roomName"`
	FinalChips     []Chip              `json:"finalChips"`
	PreviousChips  map[PlayerID][]int  `json:"previousChips"`
	OpenCards      []Card              `json:"openCards"`
	PlayerResults  []GangResult        `json:"playerResults"`
	WinLossRecord  map[PlayerID][]bool `json:"winLossRecord"`
	GameOver       bool                `json:"gameOver"`
	GameOverResult string              `json:"gameOverResult,omitempty"`
}

type cardDrawnPayload struct {
	RoomName       string      `json:"roomName"`
	Card           Card        `json:"card"`
	DeckCount      int         `json:"deckCount"`
	PlayerNickname string      `json:"playerNickname"`
	PlayerHands    []HandCount `json:"playerHands"`
}

type gangSnapshot struct {
	DeckCount       int                 `json:"deckCount"`
	MyHand          []Card              `json:"myHand"`
	PlayerHands     []HandCount         `json:"playerHands"`
	OpenCards       []Card              `json:"openCards"`
	Chips           []Chip              `json:"chips"`
	CurrentStep     int                 `json:"currentStep"`
	ReadyPlayers    []PlayerID          `json:"readyPlayers"`
	PreviousChips   map[PlayerID][]int  `json:"previousChips"`
	WinLossRecord   map[PlayerID][]bool `json:"winLossRecord"`
	LastGameResults []GangResult        `json:"lastGameResults,omitempty"`
	SuccessCount    int                 `json:"successCount"`
}
