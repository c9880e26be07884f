package game

import (
	"errors"
	"fmt"
	"sort"
)

const (
	skulkingMinPlayers  = 2
	skulkingTotalRounds = 10
)

const (
	phaseSeatDraw = "draw"
	phaseBid      = "bid"
	phasePlay     = "play"
)

// TrickEntry is one face-up card on the table. TigressDeclared carries
// the mandatory escape-or-pirate declaration for the tigress.
type TrickEntry struct {
	PlayerID        PlayerID `json:"playerId"`
	Nickname        string   `json:"nickname,omitempty"`
	Card            Card     `json:"card"`
	TigressDeclared string   `json:"tigressDeclared,omitempty"`
}

// SkulkingRank is one row of the final standings.
type SkulkingRank struct {
	PlayerID PlayerID `json:"playerId"`
	Nickname string   `json:"nickname"`
	Score    int      `json:"score"`
	Rank     int      `json:"rank"`
}

// Skulking runs the trick-taking match: a seating draw picks the first
// leader, then ten rounds of bid and play with cumulative scoring.
type Skulking struct {
	decks    *DeckProvider
	status   *Status
	roomName string
	roster   []Player

	drawPool    []int
	drawResults map[PlayerID]int

	deck  []Card
	hands map[PlayerID][]Card
	round int
	phase string

	bids     map[PlayerID]int
	bidOrder []PlayerID
	bidIndex int

	tricks      map[PlayerID]int
	scores      map[PlayerID]int
	roundScores map[PlayerID][]int

	currentTrick []TrickEntry
	trickCount   int
	trickOrder   []PlayerID
	trickIndex   int
	leader       PlayerID
	current      PlayerID
}

func NewSkulking(decks *DeckProvider, status *Status, roomName string, roster []Player) *Skulking {
	return &Skulking{
		decks:    decks,
		status:   status,
		roomName: roomName,
		roster:   append([]Player(nil), roster...),
	}
}

func (s *Skulking) Kind() Type { return TypeSkulking }

// Start opens the seating draw. Every player pops a number from a
// shuffled 1..10 pool; the highest draw leads round one.
func (s *Skulking) Start() ([]Event, error) {
	if len(s.roster) < skulkingMinPlayers {
		return nil, errors.New("need at least 2 players to start")
	}
	if s.status.Started {
		return nil, errors.New("game already in progress")
	}
	s.status.Started = true
	s.status.Finished = false
	s.status.Over = false
	s.status.Result = ""

	s.phase = phaseSeatDraw
	s.drawPool = s.decks.DrawPool()
	s.drawResults = map[PlayerID]int{}

	return []Event{broadcast("skulkingFirstDrawStarted", skFirstDrawStartedPayload{
		RoomName: s.roomName,
		Players:  s.roster,
	})}, nil
}

// DrawSeat pops the next pool number for pid. When the last player has
// drawn, the results go out and round one starts immediately.
func (s *Skulking) DrawSeat(pid PlayerID) ([]Event, error) {
	if s.phase != phaseSeatDraw {
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
		targeted(pid, "skulkingFirstDrawResult", skFirstDrawResultPayload{
			RoomName:    s.roomName,
			PlayerID:    pid,
			DrawnNumber: n,
			DrawnCount:  drawn,
			TotalCount:  total,
		}),
		broadcast("skulkingFirstDrawProgress", skFirstDrawProgressPayload{
			RoomName:   s.roomName,
			DrawnCount: drawn,
			TotalCount: total,
		}),
	}

	if drawn == total {
		first := s.highestDraw()
		events = append(events, broadcast("skulkingFirstDrawFinished", skFirstDrawFinishedPayload{
			RoomName:      s.roomName,
			Results:       s.drawResults,
			FirstPlayerID: first,
			FirstNickname: s.nickname(first),
		}))
		events = append(events, s.startMatch(first)...)
	}
	return events, nil
}

func (s *Skulking) highestDraw() PlayerID {
	best, max := PlayerID(""), -1
	for _, p := range s.roster {
		if n, ok := s.drawResults[p.ID]; ok && n > max {
			best, max = p.ID, n
		}
	}
	return best
}

func (s *Skulking) startMatch(first PlayerID) []Event {
	s.drawPool = nil
	s.drawResults = nil

	s.scores = map[PlayerID]int{}
	s.roundScores = map[PlayerID][]int{}
	for _, p := range s.roster {
		s.scores[p.ID] = 0
		s.roundScores[p.ID] = []int{}
	}
	s.tricks = map[PlayerID]int{}
	s.leader = first

	return s.startRound(1)
}

// startRound resets the deck, deals `round` cards each and opens the
// bid phase with the order rotated to the round leader.
func (s *Skulking) startRound(round int) []Event {
	s.deck = s.decks.CreateDeck(TypeSkulking)
	s.round = round
	s.phase = phaseBid
	s.bids = map[PlayerID]int{}
	s.currentTrick = nil
	s.trickCount = 0

	s.bidOrder = s.rotatedOrder(s.leader)
	s.bidIndex = 0

	s.hands = map[PlayerID][]Card{}
	for i := 0; i < round; i++ {
		for _, p := range s.roster {
			if len(s.deck) == 0 {
				break
			}
			var c Card
			c, s.deck = drawTop(s.deck)
			s.hands[p.ID] = append(s.hands[p.ID], c)
		}
	}

	events := make([]Event, 0, len(s.roster)+1)
	for _, p := range s.roster {
		events = append(events, targeted(p.ID, "skulkingRoundStarted", skRoundStartedPayload{
			Round:       round,
			MyHand:      s.hands[p.ID],
			PlayerHands: s.HandCounts(),
			Scores:      s.scores,
			RoundScores: s.roundScores,
		}))
	}
	first := s.bidOrder[0]
	events = append(events, broadcast("skulkingBidPhase", skBidPhasePayload{
		Round:              round,
		CurrentBidPlayerID: first,
		CurrentBidNickname: s.nickname(first),
		Bids:               map[PlayerID]int{},
		BidCount:           0,
		TotalPlayers:       len(s.roster),
	}))
	return events
}

// Bid records pid's bid for the round. Bids are sequential in seating
// order and must land in [0, round].
func (s *Skulking) Bid(pid PlayerID, bid int) ([]Event, error) {
	if s.phase != phaseBid {
		return nil, errors.New("it is not the bid phase")
	}
	if s.bidIndex >= len(s.bidOrder) || s.bidOrder[s.bidIndex] != pid {
		return nil, errors.New("it is not your turn to bid")
	}
	if bid < 0 || bid > s.round {
		return nil, fmt.Errorf("bid must be between 0 and %d", s.round)
	}

	s.bids[pid] = bid
	s.bidIndex++
	allDone := s.bidIndex >= len(s.bidOrder)

	update := skBidUpdatePayload{
		PlayerID:     pid,
		Nickname:     s.nickname(pid),
		Bid:          bid,
		Bids:         s.bids,
		BidCount:     len(s.bids),
		TotalPlayers: len(s.roster),
	}
	if !allDone {
		next := s.bidOrder[s.bidIndex]
		update.NextBidPlayerID = next
		update.NextBidNickname = s.nickname(next)
	}
	events := []Event{broadcast("skulkingBidUpdate", update)}

	if allDone {
		events = append(events, s.startPlayPhase()...)
	}
	return events, nil
}

func (s *Skulking) startPlayPhase() []Event {
	s.phase = phasePlay
	s.trickCount = 0
	s.tricks = map[PlayerID]int{}
	for _, p := range s.roster {
		s.tricks[p.ID] = 0
	}
	s.startTrick(s.leader)

	return []Event{broadcast("skulkingPlayPhase", skPlayPhasePayload{
		LeadPlayerID: s.leader,
		LeadNickname: s.nickname(s.leader),
		Bids:         s.bids,
	})}
}

func (s *Skulking) startTrick(leader PlayerID) {
	s.currentTrick = nil
	s.leader = leader
	s.trickOrder = s.rotatedOrder(leader)
	s.trickIndex = 0
	s.current = s.trickOrder[0]
}

// PlayCard plays hand[cardIndex] face up into the current trick. The
// tigress must declare escape or pirate; numbered off-suit plays are
// rejected while the player still holds the lead suit.
func (s *Skulking) PlayCard(pid PlayerID, cardIndex int, tigressDeclared string) ([]Event, error) {
	if s.phase != phasePlay {
		return nil, errors.New("it is not the play phase")
	}
	if pid != s.current {
		return nil, errors.New("it is not your turn")
	}
	hand := s.hands[pid]
	if cardIndex < 0 || cardIndex >= len(hand) {
		return nil, errors.New("invalid card index")
	}
	card := hand[cardIndex]

	if card.Suit == SkTigress {
		if tigressDeclared != "escape" && tigressDeclared != "pirate" {
			return nil, errors.New("the tigress must be declared as escape or pirate")
		}
	} else {
		tigressDeclared = ""
	}

	if lead, ok := s.leadSuit(); ok {
		if !isSpecialSuit(card.Suit) && card.Suit != lead && holdsSuit(hand, lead) {
			return nil, fmt.Errorf("you must follow the %s suit", lead)
		}
	}

	s.hands[pid] = append(hand[:cardIndex:cardIndex], hand[cardIndex+1:]...)
	entry := TrickEntry{
		PlayerID:        pid,
		Nickname:        s.nickname(pid),
		Card:            card,
		TigressDeclared: tigressDeclared,
	}
	s.currentTrick = append(s.currentTrick, entry)

	events := []Event{broadcast("skulkingCardPlayed", skCardPlayedPayload{
		PlayerID:        pid,
		Nickname:        entry.Nickname,
		Card:            card,
		TigressDeclared: tigressDeclared,
		CurrentTrick:    s.currentTrick,
		PlayerHands:     s.HandCounts(),
	})}

	s.trickIndex++
	if s.trickIndex >= len(s.trickOrder) {
		events = append(events, s.resolveTrick()...)
	} else {
		s.current = s.trickOrder[s.trickIndex]
		events = append(events, broadcast("skulkingTurnUpdate", skTurnUpdatePayload{
			CurrentPlayerID: s.current,
			CurrentNickname: s.nickname(s.current),
		}))
	}
	return events, nil
}

// leadSuit is the effective suit of the first numbered-suit card in the
// trick; escapes and other specials never set the lead.
func (s *Skulking) leadSuit() (Suit, bool) {
	for _, e := range s.currentTrick {
		if suit := effectiveSuit(e); isNumberSuit(suit) {
			return suit, true
		}
	}
	return "", false
}

func (s *Skulking) resolveTrick() []Event {
	winner := trickWinner(s.currentTrick)
	s.tricks[winner]++

	bonus := trickBonus(s.currentTrick, winner)
	if bonus > 0 {
		s.scores[winner] += bonus
	}
	s.trickCount++

	events := []Event{broadcast("skulkingTrickResult", skTrickResultPayload{
		WinnerID:       winner,
		WinnerNickname: s.nickname(winner),
		Trick:          s.currentTrick,
		Tricks:         s.tricks,
		Bonus:          bonus,
		TrickCount:     s.trickCount,
		TotalTricks:    s.round,
	})}

	if s.trickCount >= s.round {
		events = append(events, s.endRound()...)
	} else {
		s.startTrick(winner)
		events = append(events, broadcast("skulkingTurnUpdate", skTurnUpdatePayload{
			CurrentPlayerID: winner,
			CurrentNickname: s.nickname(winner),
		}))
	}
	return events
}

// endRound scores the round. A zero bid stakes ten points per round
// number; otherwise an exact bid pays twenty per trick and every trick
// of error costs ten.
func (s *Skulking) endRound() []Event {
	roundScores := map[PlayerID]int{}
	for _, p := range s.roster {
		bid, ok := s.bids[p.ID]
		if !ok {
			continue
		}
		won := s.tricks[p.ID]
		var score int
		switch {
		case bid == 0 && won == 0:
			score = s.round * 10
		case bid == 0:
			score = -s.round * 10
		case bid == won:
			score = bid * 20
		default:
			score = -10 * abs(bid-won)
		}
		roundScores[p.ID] = score
		s.scores[p.ID] += score
		s.roundScores[p.ID] = append(s.roundScores[p.ID], score)
	}
	s.phase = ""
	s.currentTrick = nil

	return []Event{broadcast("skulkingRoundResult", skRoundResultPayload{
		Round:             s.round,
		Bids:              s.bids,
		Tricks:            s.tricks,
		RoundScores:       roundScores,
		TotalScores:       s.scores,
		RoundScoreHistory: s.roundScores,
		IsLastRound:       s.round >= skulkingTotalRounds,
	})}
}

// NextRound advances to the next round, or ends the match after round
// ten. The session layer restricts this to the host.
func (s *Skulking) NextRound() ([]Event, error) {
	if !s.status.Started {
		return nil, errors.New("game is not in progress")
	}
	next := s.round + 1
	if next > skulkingTotalRounds {
		return s.endMatch(), nil
	}
	return s.startRound(next), nil
}

func (s *Skulking) endMatch() []Event {
	s.status.Started = false
	s.status.Finished = true
	s.status.Over = true

	ranking := make([]SkulkingRank, 0, len(s.roster))
	for _, p := range s.roster {
		ranking = append(ranking, SkulkingRank{
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Score:    s.scores[p.ID],
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	for i := range ranking {
		ranking[i].Rank = i + 1
	}

	return []Event{broadcast("skulkingGameOver", skGameOverPayload{
		FinalScores:       s.scores,
		Ranking:           ranking,
		RoundScoreHistory: s.roundScores,
	})}
}

// RemovePlayer drops pid mid-match. Cards they already played stay on
// the table; the turn skips past them if it was theirs.
func (s *Skulking) RemovePlayer(pid PlayerID) []Event {
	s.roster = spliceRoster(s.roster, pid)
	delete(s.hands, pid)
	delete(s.bids, pid)
	delete(s.tricks, pid)
	delete(s.scores, pid)
	delete(s.roundScores, pid)
	if len(s.roster) == 0 {
		return nil
	}
	if s.leader == pid {
		s.leader = s.roster[0].ID
	}

	switch s.phase {
	case phaseSeatDraw:
		delete(s.drawResults, pid)
		if len(s.drawResults) == len(s.roster) && len(s.drawResults) > 0 {
			first := s.highestDraw()
			events := []Event{broadcast("skulkingFirstDrawFinished", skFirstDrawFinishedPayload{
				RoomName:      s.roomName,
				Results:       s.drawResults,
				FirstPlayerID: first,
				FirstNickname: s.nickname(first),
			})}
			return append(events, s.startMatch(first)...)
		}
	case phaseBid:
		if i := indexOf(s.bidOrder, pid); i >= 0 {
			s.bidOrder = append(s.bidOrder[:i], s.bidOrder[i+1:]...)
			if i < s.bidIndex {
				s.bidIndex--
			}
		}
		if s.bidIndex >= len(s.bidOrder) {
			return s.startPlayPhase()
		}
	case phasePlay:
		if i := indexOf(s.trickOrder, pid); i >= 0 {
			s.trickOrder = append(s.trickOrder[:i], s.trickOrder[i+1:]...)
			if i < s.trickIndex {
				s.trickIndex--
			}
		}
		if s.trickIndex >= len(s.trickOrder) {
			if len(s.currentTrick) > 0 {
				return s.resolveTrick()
			}
			return nil
		}
		if s.current == pid {
			s.current = s.trickOrder[s.trickIndex]
			return []Event{broadcast("skulkingTurnUpdate", skTurnUpdatePayload{
				CurrentPlayerID: s.current,
				CurrentNickname: s.nickname(s.current),
			})}
		}
	}
	return nil
}

func (s *Skulking) HandCounts() []HandCount {
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

func (s *Skulking) Snapshot(viewer PlayerID) any {
	if s.phase == phaseSeatDraw {
		return skSeatDrawSnapshot{
			IsFirstDraw: true,
			DrawnCount:  len(s.drawResults),
			TotalCount:  len(s.roster),
		}
	}
	snap := skSnapshot{
		Round:           s.round,
		Phase:           s.phase,
		MyHand:          s.hands[viewer],
		PlayerHands:     s.HandCounts(),
		Bids:            s.bids,
		Tricks:          s.tricks,
		Scores:          s.scores,
		RoundScores:     s.roundScores,
		CurrentPlayerID: s.current,
		LeadPlayerID:    s.leader,
		CurrentTrick:    s.currentTrick,
	}
	if s.phase == phaseBid && s.bidIndex < len(s.bidOrder) {
		snap.CurrentBidPlayerID = s.bidOrder[s.bidIndex]
	}
	return snap
}

func (s *Skulking) rotatedOrder(first PlayerID) []PlayerID {
	ids := make([]PlayerID, 0, len(s.roster))
	for _, p := range s.roster {
		ids = append(ids, p.ID)
	}
	i := indexOf(ids, first)
	if i <= 0 {
		return ids
	}
	return append(ids[i:len(ids):len(ids)], ids[:i]...)
}

func (s *Skulking) nickname(pid PlayerID) string {
	for _, p := range s.roster {
		if p.ID == pid {
			return p.Nickname
		}
	}
	return string(pid)
}

// trickWinner applies the capture ladder: the skull king takes the
// trick unless a mermaid is present, then the first pirate, then a
// mermaid, then the highest black trump, then the highest card of the
// lead suit, and finally the first card played.
func trickWinner(trick []TrickEntry) PlayerID {
	var skullKing, firstMermaid, firstPirate *TrickEntry
	for i := range trick {
		e := &trick[i]
		switch {
		case e.Card.Suit == SkSkullKing && skullKing == nil:
			skullKing = e
		case e.Card.Suit == SkMermaid && firstMermaid == nil:
			firstMermaid = e
		case isPirate(*e) && firstPirate == nil:
			firstPirate = e
		}
	}

	if skullKing != nil {
		if firstMermaid != nil {
			return firstMermaid.PlayerID
		}
		return skullKing.PlayerID
	}
	if firstPirate != nil {
		return firstPirate.PlayerID
	}
	if firstMermaid != nil {
		return firstMermaid.PlayerID
	}

	if best := highestOfSuit(trick, SkBlack); best != nil {
		return best.PlayerID
	}

	if lead := effectiveSuit(trick[0]); isNumberSuit(lead) {
		if best := highestOfSuit(trick, lead); best != nil {
			return best.PlayerID
		}
	}
	return trick[0].PlayerID
}

func highestOfSuit(trick []TrickEntry, suit Suit) *TrickEntry {
	var best *TrickEntry
	for i := range trick {
		e := &trick[i]
		if e.Card.Suit != suit {
			continue
		}
		if best == nil || e.Card.Value > best.Card.Value {
			best = e
		}
	}
	return best
}

// trickBonus pays the skull king thirty per pirate it captures and a
// mermaid twenty for toppling the skull king.
func trickBonus(trick []TrickEntry, winner PlayerID) int {
	var winnerEntry *TrickEntry
	for i := range trick {
		if trick[i].PlayerID == winner {
			winnerEntry = &trick[i]
			break
		}
	}
	if winnerEntry == nil {
		return 0
	}

	bonus := 0
	switch effectiveSuit(*winnerEntry) {
	case SkSkullKing:
		for _, e := range trick {
			if isPirate(e) {
				bonus += 30
			}
		}
	case SkMermaid:
		for _, e := range trick {
			if e.Card.Suit == SkSkullKing {
				bonus += 20
				break
			}
		}
	}
	return bonus
}

func effectiveSuit(e TrickEntry) Suit {
	if e.Card.Suit == SkTigress {
		if e.TigressDeclared == "pirate" {
			return SkPirate
		}
		return SkEscape
	}
	return e.Card.Suit
}

func isPirate(e TrickEntry) bool {
	return e.Card.Suit == SkPirate ||
		(e.Card.Suit == SkTigress && e.TigressDeclared == "pirate")
}

func isNumberSuit(s Suit) bool {
	return s == SkBlack || s == SkYellow || s == SkPurple || s == SkGreen
}

func isSpecialSuit(s Suit) bool {
	switch s {
	case SkEscape, SkPirate, SkMermaid, SkSkullKing, SkTigress:
		return true
	}
	return false
}

func holdsSuit(hand []Card, suit Suit) bool {
	for _, c := range hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

func indexOf(ids []PlayerID, pid PlayerID) int {
	for i, id := range ids {
		if id == pid {
			return i
		}
	}
	return -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type skFirstDrawStartedPayload struct {
	RoomName string   `json:"roomName"`
	Players  []Player `json:"players"`
}

type skFirstDrawResultPayload struct {
	RoomName    string   `json:"roomName"`
	PlayerID    PlayerID `json:"playerId"`
	DrawnNumber int      `json:"drawnNumber"`
	DrawnCount  int      `json:"drawnCount"`
	TotalCount  int      `json:"totalCount"`
}

type skFirstDrawProgressPayload struct {
	RoomName   string `json:"roomName"`
	DrawnCount int    `json:"drawnCount"`
	TotalCount int    `json:"totalCount"`
}

type skFirstDrawFinishedPayload struct {
	RoomName      string           `json:"roomName"`
	Results       map[PlayerID]int `json:"results"`
	FirstPlayerID PlayerID         `json:"firstPlayerId"`
	FirstNickname string           `json:"firstNickname"`
}

type skRoundStartedPayload struct {
	Round       int                `json:"round"`
	MyHand      []Card             `json:"myHand"`
	PlayerHands []HandCount        `json:"playerHands"`
	Scores      map[PlayerID]int   `json:"scores"`
	RoundScores map[PlayerID][]int `json:"roundScores"`
}

type skBidPhasePayload struct {
	Round              int              `json:"round"`
	CurrentBidPlayerID PlayerID         `json:"currentBidPlayerId"`
	CurrentBidNickname string           `json:"currentBidNickname"`
	Bids               map[PlayerID]int `json:"bids"`
	BidCount           int              `json:"bidCount"`
	TotalPlayers       int              `json:"totalPlayers"`
}

type skBidUpdatePayload struct {
	PlayerID        PlayerID         `json:"playerId"`
	Nickname        string           `json:"nickname"`
	Bid             int              `json:"bid"`
	Bids            map[PlayerID]int `json:"bids"`
	BidCount        int              `json:"bidCount"`
	TotalPlayers    int              `json:"totalPlayers"`
	NextBidPlayerID PlayerID         `json:"nextBidPlayerId,omitempty"`
	NextBidNickname string           `json:"nextBidNickname,omitempty"`
}

type skPlayPhasePayload struct {
	LeadPlayerID PlayerID         `json:"leadPlayerId"`
	LeadNickname string           `json:"leadNickname"`
	Bids         map[PlayerID]int `json:"bids"`
}

type skCardPlayedPayload struct {
	PlayerID        PlayerID     `json:"playerId"`
	Nickname        string       `json:"nickname"`
	Card            Card         `json:"card"`
	TigressDeclared string       `json:"tigressDeclared,omitempty"`
	CurrentTrick    []TrickEntry `json:"currentTrick"`
	PlayerHands     []HandCount  `json:"playerHands"`
}

type skTurnUpdatePayload struct {
	CurrentPlayerID PlayerID `json:"currentPlayerId"`
	CurrentNickname string   `json:"currentNickname"`
}

type skTrickResultPayload struct {
	WinnerID       PlayerID         `json:"winnerId"`
	WinnerNickname string           `json:"winnerNickname"`
	Trick          []TrickEntry     `json:"trick"`
	Tricks         map[PlayerID]int `json:"tricks"`
	Bonus          int              `json:"bonus"`
	TrickCount     int              `json:"trickCount"`
	TotalTricks    int              `json:"totalTricks"`
}

type skRoundResultPayload struct {
	Round             int                `json:"round"`
	Bids              map[PlayerID]int   `json:"bids"`
	Tricks            map[PlayerID]int   `json:"tricks"`
	RoundScores       map[PlayerID]int   `json:"roundScores"`
	TotalScores       map[PlayerID]int   `json:"totalScores"`
	RoundScoreHistory map[PlayerID][]int `json:"roundScoreHistory"`
	IsLastRound       bool               `json:"isLastRound"`
}

type skGameOverPayload struct {
	FinalScores       map[PlayerID]int   `json:"finalScores"`
	Ranking           []SkulkingRank     `json:"ranking"`
	RoundScoreHistory map[PlayerID][]int `json:"roundScoreHistory"`
}

type skSeatDrawSnapshot struct {
	IsFirstDraw bool `json:"skulkingIsFirstDraw"`
	DrawnCount  int  `json:"skulkingDrawnCount"`
	TotalCount  int  `json:"skulkingTotalCount"`
}

type skSnapshot struct {
	Round              int                `json:"skulkingRound"`
	Phase              string             `json:"skulkingPhase"`
	MyHand             []Card             `json:"myHand"`
	PlayerHands        []HandCount        `json:"playerHands"`
	CurrentBidPlayerID PlayerID           `json:"skulkingCurrentBidPlayerId,omitempty"`
	Bids               map[PlayerID]int   `json:"bids"`
	Tricks             map[PlayerID]int   `json:"tricks"`
	Scores             map[PlayerID]int   `json:"scores"`
	RoundScores        map[PlayerID][]int `json:"roundScores"`
	CurrentPlayerID    PlayerID           `json:"skulkingCurrentPlayerId"`
	LeadPlayerID       PlayerID           `json:"skulkingLeadPlayerId"`
	CurrentTrick       []TrickEntry       `json:"currentTrick"`
}
