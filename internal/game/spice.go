package game

import (
	"errors"
	"fmt"
)

const (
	spiceMinPlayers   = 2
	spiceHandSize     = 6
	spiceOpenRangeMax = 5
	spicePenaltyCards = 2
	spiceTrophyCap    = 2
	spiceTrophyTotal  = 3
	spiceMaxDeclared  = 10
)

// spiceChallenge is a face-down play waiting out its window. The card
// stays server-side until the window lapses or someone challenges.
type spiceChallenge struct {
	player         PlayerID
	card           Card
	declaredSuit   Suit
	declaredNumber int
	nextPlayer     PlayerID
	handEmpty      bool
	token          int64
}

// Spice runs the bluff game: players declare a hidden card's suit and
// number, opponents may dispute one attribute inside a timed window,
// and emptied hands earn trophies.
type Spice struct {
	decks    *DeckProvider
	status   *Status
	roomName string
	roster   []Player

	drawPool    []int
	drawResults map[PlayerID]int
	seatDraw    bool

	deck  []Card
	hands map[PlayerID][]Card

	current       PlayerID
	currentSuit   Suit
	currentNumber int
	tableStack    []Card

	challenge  *spiceChallenge
	tokenSeq   int64
	trophies   map[PlayerID]int
	wonCards   map[PlayerID][]Card
	lastScores map[PlayerID]int
}

func NewSpice(decks *DeckProvider, status *Status, roomName string, roster []Player) *Spice {
	return &Spice{
		decks:    decks,
		status:   status,
		roomName: roomName,
		roster:   append([]Player(nil), roster...),
	}
}

func (s *Spice) Kind() Type { return TypeSpice }

// Start opens the seating draw; the highest number acts first.
func (s *Spice) Start() ([]Event, error) {
	if len(s.roster) < spiceMinPlayers {
		return nil, errors.New("need at least 2 players to start")
	}
	if s.status.Started {
		return nil, errors.New("game already in progress")
	}
	s.status.Started = true
	s.status.Finished = false
	s.status.Over = false
	s.status.Result = ""

	s.seatDraw = true
	s.drawPool = s.decks.DrawPool()
	s.drawResults = map[PlayerID]int{}

	return []Event{broadcast("spiceFirstDrawStarted", skFirstDrawStartedPayload{
		RoomName: s.roomName,
		Players:  s.roster,
	})}, nil
}

func (s *Spice) DrawSeat(pid PlayerID) ([]Event, error) {
	if !s.seatDraw {
		return nil, errors.New("the seating draw is over")
	}
	if _, done := s.drawResults[pid]; done {
		return nil, errors.New("you already drew a number")
	}
	if len(s.drawPool) == 0 {
		return nil, errors.New("the draw pool is empty")
	}

	n := s.drawPool[len(s.drawPool)-1]
	s.drawPool = s.drawPool[:len(s.drawPool)-1]
	s.drawResults[pid] = n

	drawn, total := len(s.drawResults), len(s.roster)
	events := []Event{
		targeted(pid, "spiceFirstDrawResult", skFirstDrawResultPayload{
			RoomName:    s.roomName,
			PlayerID:    pid,
			DrawnNumber: n,
			DrawnCount:  drawn,
			TotalCount:  total,
		}),
		broadcast("spiceFirstDrawProgress", skFirstDrawProgressPayload{
			RoomName:   s.roomName,
			DrawnCount: drawn,
			TotalCount: total,
		}),
	}
	if drawn == total {
		first := s.highestDraw()
		events = append(events, broadcast("spiceFirstDrawFinished", skFirstDrawFinishedPayload{
			RoomName:      s.roomName,
			Results:       s.drawResults,
			FirstPlayerID: first,
			FirstNickname: s.nickname(first),
		}))
		events = append(events, s.startMatch(first)...)
	}
	return events, nil
}

func (s *Spice) highestDraw() PlayerID {
	best, max := PlayerID(""), -1
	for _, p := range s.roster {
		if n, ok := s.drawResults[p.ID]; ok && n > max {
			best, max = p.ID, n
		}
	}
	return best
}

func (s *Spice) startMatch(first PlayerID) []Event {
	s.seatDraw = false
	s.drawPool = nil
	s.drawResults = nil

	s.deck = s.decks.CreateDeck(TypeSpice)
	s.hands = map[PlayerID][]Card{}
	for i := 0; i < spiceHandSize; i++ {
		for _, p := range s.roster {
			if len(s.deck) == 0 {
				break
			}
			var c Card
			c, s.deck = drawTop(s.deck)
			s.hands[p.ID] = append(s.hands[p.ID], c)
		}
	}

	s.current = first
	s.currentSuit = ""
	s.currentNumber = 0
	s.tableStack = nil
	s.challenge = nil
	s.trophies = map[PlayerID]int{}
	s.wonCards = map[PlayerID][]Card{}

	events := make([]Event, 0, len(s.roster)+1)
	for _, p := range s.roster {
		events = append(events, targeted(p.ID, "spiceGameStarted", spiceStartedPayload{
			RoomName:    s.roomName,
			DeckCount:   len(s.deck),
			MyHand:      s.hands[p.ID],
			PlayerHands: s.HandCounts(),
		}))
	}
	events = append(events, broadcast("spiceTurnUpdate", skTurnUpdatePayload{
		CurrentPlayerID: s.current,
		CurrentNickname: s.nickname(s.current),
	}))
	return events
}

// Pass draws one card and hands the turn on. Passing never opens a
// challenge window.
func (s *Spice) Pass(pid PlayerID) ([]Event, error) {
	if err := s.checkTurn(pid); err != nil {
		return nil, err
	}
	if len(s.deck) == 0 {
		return s.endMatch(), nil
	}
	var c Card
	c, s.deck = drawTop(s.deck)
	s.hands[pid] = append(s.hands[pid], c)
	s.current = s.nextSeat(pid)

	events := []Event{
		targeted(pid, "spiceCardDrawn", spiceDrawnPayload{
			RoomName:  s.roomName,
			Card:      c,
			DeckCount: len(s.deck),
		}),
		broadcast("spicePassed", spicePassedPayload{
			PlayerID:    pid,
			Nickname:    s.nickname(pid),
			DeckCount:   len(s.deck),
			PlayerHands: s.HandCounts(),
		}),
		broadcast("spiceTurnUpdate", skTurnUpdatePayload{
			CurrentPlayerID: s.current,
			CurrentNickname: s.nickname(s.current),
		}),
	}
	if len(s.deck) == 0 {
		events = append(events, s.endMatch()...)
	}
	return events, nil
}

// Play puts hand[cardIndex] face down under the declared pair and opens
// the challenge window. A fresh sequence must open low; afterwards each
// declaration must climb. The returned token identifies the window for
// the deferred auto-accept.
func (s *Spice) Play(pid PlayerID, cardIndex int, declaredSuit Suit, declaredNumber int) ([]Event, int64, error) {
	if err := s.checkTurn(pid); err != nil {
		return nil, 0, err
	}
	hand := s.hands[pid]
	if cardIndex < 0 || cardIndex >= len(hand) {
		return nil, 0, errors.New("invalid card index")
	}
	if !isSpiceSuit(declaredSuit) {
		return nil, 0, fmt.Errorf("%s is not a spice", declaredSuit)
	}
	if s.currentNumber == 0 {
		if declaredNumber < 1 || declaredNumber > spiceOpenRangeMax {
			return nil, 0, fmt.Errorf("a fresh declaration must be between 1 and %d", spiceOpenRangeMax)
		}
	} else {
		if declaredNumber <= s.currentNumber || declaredNumber > spiceMaxDeclared {
			return nil, 0, fmt.Errorf("declaration must be higher than %d", s.currentNumber)
		}
	}

	card := hand[cardIndex]
	s.hands[pid] = append(hand[:cardIndex:cardIndex], hand[cardIndex+1:]...)

	s.tokenSeq++
	s.challenge = &spiceChallenge{
		player:         pid,
		card:           card,
		declaredSuit:   declaredSuit,
		declaredNumber: declaredNumber,
		nextPlayer:     s.nextSeat(pid),
		handEmpty:      len(s.hands[pid]) == 0,
		token:          s.tokenSeq,
	}

	events := []Event{broadcast("spiceCardPlayed", spicePlayedPayload{
		PlayerID:       pid,
		Nickname:       s.nickname(pid),
		DeclaredSuit:   declaredSuit,
		DeclaredNumber: declaredNumber,
		TableCount:     len(s.tableStack) + 1,
		PlayerHands:    s.HandCounts(),
	})}
	return events, s.tokenSeq, nil
}

// ResolveTimeout accepts the declaration if the window identified by
// token is still open. A stale token is a no-op, so a timer that lost
// the race to an explicit challenge fires harmlessly.
func (s *Spice) ResolveTimeout(token int64) []Event {
	ch := s.challenge
	if ch == nil || ch.token != token {
		return nil
	}
	s.challenge = nil

	s.tableStack = append(s.tableStack, ch.card)
	s.currentSuit = ch.declaredSuit
	s.currentNumber = ch.declaredNumber
	s.current = ch.nextPlayer

	events := []Event{broadcast("spiceDeclarationAccepted", spiceAcceptedPayload{
		PlayerID:       ch.player,
		Nickname:       s.nickname(ch.player),
		DeclaredSuit:   ch.declaredSuit,
		DeclaredNumber: ch.declaredNumber,
		TableCount:     len(s.tableStack),
		NextPlayerID:   s.current,
		NextNickname:   s.nickname(s.current),
	})}
	if ch.handEmpty {
		events = append(events, s.awardTrophy(ch.player)...)
	} else if over := s.matchOverEvents(); over != nil {
		events = append(events, over...)
	}
	return events
}

// Challenge disputes one attribute of the pending declaration. The
// wild cards decide mechanically: a number-wild never loses a number
// challenge and never survives a suit challenge, and the suit-wild is
// its mirror.
func (s *Spice) Challenge(pid PlayerID, kind string) ([]Event, error) {
	ch := s.challenge
	if ch == nil {
		return nil, errors.New("there is nothing to challenge")
	}
	if pid == ch.player {
		return nil, errors.New("you cannot challenge your own play")
	}
	if kind != "number" && kind != "suit" {
		return nil, errors.New("challenge must name number or suit")
	}
	s.challenge = nil

	var truthful bool
	switch kind {
	case "number":
		switch ch.card.Suit {
		case WildNumber:
			truthful = true
		case WildSuit:
			truthful = false
		default:
			truthful = ch.card.Value == ch.declaredNumber
		}
	case "suit":
		switch ch.card.Suit {
		case WildSuit:
			truthful = true
		case WildNumber:
			truthful = false
		default:
			truthful = ch.card.Suit == ch.declaredSuit
		}
	}
	succeeded := !truthful

	loser, winner := pid, ch.player
	if succeeded {
		loser, winner = ch.player, pid
	}

	penalty := make([]Card, 0, spicePenaltyCards)
	for i := 0; i < spicePenaltyCards && len(s.deck) > 0; i++ {
		var c Card
		c, s.deck = drawTop(s.deck)
		penalty = append(penalty, c)
	}
	s.hands[loser] = append(s.hands[loser], penalty...)

	pot := append(s.tableStack, ch.card)
	s.wonCards[winner] = append(s.wonCards[winner], pot...)
	s.tableStack = nil
	s.currentSuit = ""
	s.currentNumber = 0
	s.current = loser

	events := []Event{
		broadcast("spiceChallengeResult", spiceChallengeResultPayload{
			ChallengerID:   pid,
			Challenger:     s.nickname(pid),
			TargetID:       ch.player,
			Target:         s.nickname(ch.player),
			Kind:           kind,
			DeclaredSuit:   ch.declaredSuit,
			DeclaredNumber: ch.declaredNumber,
			ActualCard:     ch.card,
			Succeeded:      succeeded,
			LoserID:        loser,
			WinnerID:       winner,
			PotSize:        len(pot),
			WonCounts:      s.wonCounts(),
			PlayerHands:    s.HandCounts(),
			DeckCount:      len(s.deck),
		}),
		targeted(loser, "spicePenaltyDrawn", spicePenaltyPayload{
			RoomName: s.roomName,
			Cards:    penalty,
		}),
	}

	// A survived challenge still empties the hand; a lost one refills
	// it with the penalty cards, so no trophy.
	if ch.handEmpty && !succeeded {
		events = append(events, s.awardTrophy(ch.player)...)
		if s.status.Over {
			return events, nil
		}
	} else if over := s.matchOverEvents(); over != nil {
		return append(events, over...), nil
	}

	events = append(events, broadcast("spiceTurnUpdate", skTurnUpdatePayload{
		CurrentPlayerID: s.current,
		CurrentNickname: s.nickname(s.current),
	}))
	return events, nil
}

func (s *Spice) awardTrophy(pid PlayerID) []Event {
	if s.trophies[pid] < spiceTrophyCap {
		s.trophies[pid]++
	}

	events := []Event{broadcast("spiceTrophyAwarded", spiceTrophyPayload{
		PlayerID: pid,
		Nickname: s.nickname(pid),
		Trophies: s.trophies,
	})}

	if over := s.matchOverEvents(); over != nil {
		return append(events, over...)
	}

	// Refill the emptied hand so the match can continue.
	dealt := make([]Card, 0, spiceHandSize)
	for i := 0; i < spiceHandSize && len(s.deck) > 0; i++ {
		var c Card
		c, s.deck = drawTop(s.deck)
		dealt = append(dealt, c)
	}
	s.hands[pid] = dealt
	events = append(events,
		targeted(pid, "spiceHandRefilled", spiceRefillPayload{
			RoomName: s.roomName,
			MyHand:   dealt,
		}),
		broadcast("spiceHandCounts", spiceHandCountsPayload{
			DeckCount:   len(s.deck),
			PlayerHands: s.HandCounts(),
		}),
	)
	if over := s.matchOverEvents(); over != nil {
		events = append(events, over...)
	}
	return events
}

// matchOverEvents ends the match when a player holds two trophies,
// three trophies exist in total, or the deck has run dry.
func (s *Spice) matchOverEvents() []Event {
	total := 0
	capped := false
	for _, n := range s.trophies {
		total += n
		if n >= spiceTrophyCap {
			capped = true
		}
	}
	if capped || total >= spiceTrophyTotal || len(s.deck) == 0 {
		return s.endMatch()
	}
	return nil
}

func (s *Spice) endMatch() []Event {
	if s.status.Over {
		return nil
	}
	s.challenge = nil
	s.status.Started = false
	s.status.Finished = true
	s.status.Over = true

	scores := map[PlayerID]int{}
	best := 0
	for i, p := range s.roster {
		score := len(s.wonCards[p.ID]) + 10*s.trophies[p.ID] - len(s.hands[p.ID])
		scores[p.ID] = score
		if i == 0 || score > best {
			best = score
		}
	}
	winners := []PlayerID{}
	for _, p := range s.roster {
		if scores[p.ID] == best {
			winners = append(winners, p.ID)
		}
	}
	s.lastScores = scores

	return []Event{broadcast("spiceGameOver", spiceGameOverPayload{
		FinalScores: scores,
		Winners:     winners,
		Trophies:    s.trophies,
		WonCounts:   s.wonCounts(),
		PlayerHands: s.HandCounts(),
	})}
}

// RemovePlayer drops pid. An open window on their play is folded into
// the table as if accepted, minus any trophy.
func (s *Spice) RemovePlayer(pid PlayerID) []Event {
	wasCurrent := s.current == pid
	next := s.nextSeat(pid)

	s.roster = spliceRoster(s.roster, pid)
	delete(s.hands, pid)
	delete(s.trophies, pid)
	delete(s.wonCards, pid)
	if len(s.roster) == 0 {
		s.challenge = nil
		return nil
	}

	var events []Event
	if ch := s.challenge; ch != nil {
		switch pid {
		case ch.player:
			s.challenge = nil
			s.tableStack = append(s.tableStack, ch.card)
			s.currentSuit = ch.declaredSuit
			s.currentNumber = ch.declaredNumber
			s.current = ch.nextPlayer
			events = append(events, broadcast("spiceDeclarationAccepted", spiceAcceptedPayload{
				PlayerID:       ch.player,
				DeclaredSuit:   ch.declaredSuit,
				DeclaredNumber: ch.declaredNumber,
				TableCount:     len(s.tableStack),
				NextPlayerID:   s.current,
				NextNickname:   s.nickname(s.current),
			}))
		case ch.nextPlayer:
			ch.nextPlayer = next
		}
	}

	if s.seatDraw {
		delete(s.drawResults, pid)
		if len(s.drawResults) == len(s.roster) && len(s.drawResults) > 0 {
			first := s.highestDraw()
			events = append(events, broadcast("spiceFirstDrawFinished", skFirstDrawFinishedPayload{
				RoomName:      s.roomName,
				Results:       s.drawResults,
				FirstPlayerID: first,
				FirstNickname: s.nickname(first),
			}))
			return append(events, s.startMatch(first)...)
		}
		return events
	}

	if wasCurrent && s.challenge == nil && s.current == pid {
		s.current = next
		events = append(events, broadcast("spiceTurnUpdate", skTurnUpdatePayload{
			CurrentPlayerID: s.current,
			CurrentNickname: s.nickname(s.current),
		}))
	}
	return events
}

func (s *Spice) HandCounts() []HandCount {
	counts := make([]HandCount, 0, len(s.roster))
	for _, p := range s.roster {
		counts = append(counts, HandCount{
			PlayerID:  p.ID,
			Nickname:  p.Nickname,
			CardCount: len(s.hands[p.ID]),
		})
	}
	return counts
}

func (s *Spice) Snapshot(viewer PlayerID) any {
	if s.seatDraw {
		return skSeatDrawSnapshot{
			IsFirstDraw: true,
			DrawnCount:  len(s.drawResults),
			TotalCount:  len(s.roster),
		}
	}
	snap := spiceSnapshot{
		DeckCount:       len(s.deck),
		MyHand:          s.hands[viewer],
		PlayerHands:     s.HandCounts(),
		CurrentSuit:     s.currentSuit,
		CurrentNumber:   s.currentNumber,
		TableCount:      len(s.tableStack),
		CurrentPlayerID: s.current,
		Trophies:        s.trophies,
		WonCounts:       s.wonCounts(),
		FinalScores:     s.lastScores,
	}
	if ch := s.challenge; ch != nil {
		snap.ChallengePending = &spiceChallengeSnapshot{
			PlayerID:       ch.player,
			DeclaredSuit:   ch.declaredSuit,
			DeclaredNumber: ch.declaredNumber,
		}
	}
	return snap
}

func (s *Spice) checkTurn(pid PlayerID) error {
	if !s.status.Started || s.seatDraw {
		return errors.New("game is not in progress")
	}
	if s.challenge != nil {
		return errors.New("a challenge window is open")
	}
	if pid != s.current {
		return errors.New("it is not your turn")
	}
	return nil
}

func (s *Spice) nextSeat(pid PlayerID) PlayerID {
	n := len(s.roster)
	for i, p := range s.roster {
		if p.ID == pid {
			return s.roster[(i+1)%n].ID
		}
	}
	if n > 0 {
		return s.roster[0].ID
	}
	return ""
}

func (s *Spice) nickname(pid PlayerID) string {
	for _, p := range s.roster {
		if p.ID == pid {
			return p.Nickname
		}
	}
	return string(pid)
}

func (s *Spice) wonCounts() map[PlayerID]int {
	counts := map[PlayerID]int{}
	for pid, cards := range s.wonCards {
		counts[pid] = len(cards)
	}
	return counts
}

func isSpiceSuit(s Suit) bool {
	return s == Pepper || s == Cinnamon || s == Saffron
}

type spiceStartedPayload struct {
	RoomName    string      `json:"roomName"`
	DeckCount   int         `json:"deckCount"`
	MyHand      []Card      `json:"myHand"`
	PlayerHands []HandCount `json:"playerHands"`
}

type spiceDrawnPayload struct {
	RoomName  string `json:"roomName"`
	Card      Card   `json:"card"`
	DeckCount int    `json:"deckCount"`
}

type spicePassedPayload struct {
	PlayerID    PlayerID    `json:"playerId"`
	Nickname    string      `json:"nickname"`
	DeckCount   int         `json:"deckCount"`
	PlayerHands []HandCount `json:"playerHands"`
}

type spicePlayedPayload struct {
	PlayerID       PlayerID    `json:"playerId"`
	Nickname       string      `json:"nickname"`
	DeclaredSuit   Suit        `json:"declaredSuit"`
	DeclaredNumber int         `json:"declaredNumber"`
	TableCount     int         `json:"tableCount"`
	PlayerHands    []HandCount `json:"playerHands"`
}

type spiceAcceptedPayload struct {
	PlayerID       PlayerID `json:"playerId"`
	Nickname       string   `json:"nickname,omitempty"`
	DeclaredSuit   Suit     `json:"declaredSuit"`
	DeclaredNumber int      `json:"declaredNumber"`
	TableCount     int      `json:"tableCount"`
	NextPlayerID   PlayerID `json:"nextPlayerId"`
	NextNickname   string   `json:"nextNickname"`
}

type spiceChallengeResultPayload struct {
	ChallengerID   PlayerID         `json:"challengerId"`
	Challenger     string           `json:"challengerNickname"`
	TargetID       PlayerID         `json:"targetId"`
	Target         string           `json:"targetNickname"`
	Kind           string           `json:"kind"`
	DeclaredSuit   Suit             `json:"declaredSuit"`
	DeclaredNumber int              `json:"declaredNumber"`
	ActualCard     Card             `json:"actualCard"`
	Succeeded      bool             `json:"succeeded"`
	LoserID        PlayerID         `json:"loserId"`
	WinnerID       PlayerID         `json:"winnerId"`
	PotSize        int              `json:"potSize"`
	WonCounts      map[PlayerID]int `json:"wonCounts"`
	PlayerHands    []HandCount      `json:"playerHands"`
	DeckCount      int              `json:"deckCount"`
}

type spicePenaltyPayload struct {
	RoomName string `json:"roomName"`
	Cards    []Card `json:"cards"`
}

type spiceTrophyPayload struct {
	PlayerID PlayerID         `json:"playerId"`
	Nickname string           `json:"nickname"`
	Trophies map[PlayerID]int `json:"trophies"`
}

type spiceRefillPayload struct {
	RoomName string `json:"roomName"`
	MyHand   []Card `json:"myHand"`
}

type spiceHandCountsPayload struct {
	DeckCount   int         `json:"deckCount"`
	PlayerHands []HandCount `json:"playerHands"`
}

type spiceGameOverPayload struct {
	FinalScores map[PlayerID]int `json:"finalScores"`
	Winners     []PlayerID       `json:"winners"`
	Trophies    map[PlayerID]int `json:"trophies"`
	WonCounts   map[PlayerID]int `json:"wonCounts"`
	PlayerHands []HandCount      `json:"playerHands"`
}

type spiceChallengeSnapshot struct {
	PlayerID       PlayerID `json:"playerId"`
	DeclaredSuit   Suit     `json:"declaredSuit"`
	DeclaredNumber int      `json:"declaredNumber"`
}

type spiceSnapshot struct {
	DeckCount        int                     `json:"deckCount"`
	MyHand           []Card                  `json:"myHand"`
	PlayerHands      []HandCount             `json:"playerHands"`
	CurrentSuit      Suit                    `json:"currentSuit,omitempty"`
	CurrentNumber    int                     `json:"currentNumber"`
	TableCount       int                     `json:"tableCount"`
	CurrentPlayerID  PlayerID                `json:"currentPlayerId"`
	Trophies         map[PlayerID]int        `json:"trophies"`
	WonCounts        map[PlayerID]int        `json:"wonCounts"`
	ChallengePending *spiceChallengeSnapshot `json:"challengePending,omitempty"`
	FinalScores      map[PlayerID]int        `json:"finalScores,omitempty"`
}
