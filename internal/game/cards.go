package game

// Type identifies which state machine a room runs.
type Type string

const (
	TypeGang     Type = "gang"
	TypeSkulking Type = "skulking"
	TypeSpice    Type = "spice"
)

func ValidType(t Type) bool {
	switch t {
	case TypeGang, TypeSkulking, TypeSpice:
		return true
	}
	return false
}

// Suit covers all three decks. Standard suits belong to the gang deck,
// sk-* to skulking and the spice suits plus wilds to spice.
type Suit string

const (
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Hearts   Suit = "hearts"
	Spades   Suit = "spades"

	SkBlack     Suit = "sk-black"
	SkYellow    Suit = "sk-yellow"
	SkPurple    Suit = "sk-purple"
	SkGreen     Suit = "sk-green"
	SkEscape    Suit = "sk-escape"
	SkPirate    Suit = "sk-pirate"
	SkMermaid   Suit = "sk-mermaid"
	SkSkullKing Suit = "sk-skulking"
	SkTigress   Suit = "sk-tigress"

	Pepper     Suit = "pepper"
	Cinnamon   Suit = "cinnamon"
	Saffron    Suit = "saffron"
	WildNumber Suit = "wild-number"
	WildSuit   Suit = "wild-suit"
)

// Card is an immutable value; Name doubles as the card's identity
// within a single deck.
type Card struct {
	Suit  Suit   `json:"type"`
	Value int    `json:"value"`
	Image string `json:"image,omitempty"`
	Name  string `json:"name"`
}

// PlayerID is the stable identity that survives reconnects. The live
// connection is resolved only at the transport boundary.
type PlayerID string

type Player struct {
	ID       PlayerID `json:"playerId"`
	Nickname string   `json:"nickname"`
}

// HandCount is the only view other players ever get of a hand.
type HandCount struct {
	PlayerID  PlayerID `json:"playerId"`
	Nickname  string   `json:"nickname"`
	CardCount int      `json:"cardCount"`
}

// Status carries the room-visible lifecycle of the active session.
type Status struct {
	Started  bool
	Finished bool
	Over     bool
	Result   string // "victory", "defeat" or "" where win/loss applies
}

// Event is an outbound notification produced by a transition. An empty
// To means room broadcast.
type Event struct {
	To   PlayerID
	Name string
	Data any
}

func broadcast(name string, data any) Event {
	return Event{Name: name, Data: data}
}

func targeted(to PlayerID, name string, data any) Event {
	return Event{To: to, Name: name, Data: data}
}
