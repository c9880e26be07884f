package game

import (
	"fmt"
	"math/rand"
	"time"
)

// DeckProvider builds the shuffled deck for each game type. A deck is
// created once per fresh match or round and is exclusively owned by
// one session afterwards.
type DeckProvider struct {
	imageBaseURL string
	rnd          *rand.Rand
}

func NewDeckProvider(imageBaseURL string) *DeckProvider {
	return &DeckProvider{
		imageBaseURL: imageBaseURL,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *DeckProvider) CreateDeck(t Type) []Card {
	var deck []Card
	switch t {
	case TypeSkulking:
		deck = p.skulkingDeck()
	case TypeSpice:
		deck = p.spiceDeck()
	default:
		deck = p.standardDeck()
	}
	p.rnd.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// DrawPool returns the shuffled 1..10 pool used by the seating draw.
func (p *DeckProvider) DrawPool() []int {
	pool := make([]int, 10)
	for i := range pool {
		pool[i] = i + 1
	}
	p.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}

// standardDeck is the 52-card gang deck.
func (p *DeckProvider) standardDeck() []Card {
	suits := []Suit{Clubs, Diamonds, Hearts, Spades}
	deck := make([]Card, 0, 52)
	for _, s := range suits {
		for v := 1; v <= 13; v++ {
			name := fmt.Sprintf("%s_%s", s, valueName(v))
			deck = append(deck, Card{
				Suit:  s,
				Value: v,
				Image: fmt.Sprintf("%s/%s.svg", p.imageBaseURL, name),
				Name:  name,
			})
		}
	}
	return deck
}

// skulkingDeck: 4 suits x 1..13 plus 5 escapes, 5 pirates, 2 mermaids,
// the skull king and the tigress = 66 cards.
func (p *DeckProvider) skulkingDeck() []Card {
	suits := []Suit{SkBlack, SkYellow, SkPurple, SkGreen}
	deck := make([]Card, 0, 66)
	for _, s := range suits {
		for v := 1; v <= 13; v++ {
			deck = append(deck, Card{Suit: s, Value: v, Name: fmt.Sprintf("%s_%d", s, v)})
		}
	}
	for i := 1; i <= 5; i++ {
		deck = append(deck, Card{Suit: SkEscape, Name: fmt.Sprintf("escape_%d", i)})
	}
	for i := 1; i <= 5; i++ {
		deck = append(deck, Card{Suit: SkPirate, Name: fmt.Sprintf("pirate_%d", i)})
	}
	for i := 1; i <= 2; i++ {
		deck = append(deck, Card{Suit: SkMermaid, Name: fmt.Sprintf("mermaid_%d", i)})
	}
	deck = append(deck, Card{Suit: SkSkullKing, Name: "skull_king"})
	deck = append(deck, Card{Suit: SkTigress, Name: "tigress"})
	return deck
}

// spiceDeck: 3 spice suits x 1..10 x 3 copies plus 5 number wilds and
// 5 suit wilds = 100 cards.
func (p *DeckProvider) spiceDeck() []Card {
	suits := []Suit{Pepper, Cinnamon, Saffron}
	deck := make([]Card, 0, 100)
	for _, s := range suits {
		for v := 1; v <= 10; v++ {
			for n := 1; n <= 3; n++ {
				deck = append(deck, Card{Suit: s, Value: v, Name: fmt.Sprintf("%s_%d_%d", s, v, n)})
			}
		}
	}
	for i := 1; i <= 5; i++ {
		deck = append(deck, Card{Suit: WildNumber, Name: fmt.Sprintf("wild_number_%d", i)})
	}
	for i := 1; i <= 5; i++ {
		deck = append(deck, Card{Suit: WildSuit, Name: fmt.Sprintf("wild_suit_%d", i)})
	}
	return deck
}

func valueName(v int) string {
	switch v {
	case 1:
		return "ace"
	case 11:
		return "jack"
	case 12:
		return "queen"
	case 13:
		return "king"
	default:
		return fmt.Sprintf("%d", v)
	}
}

// drawTop pops the top card. Callers must check len(deck) first.
func drawTop(deck []Card) (Card, []Card) {
	c := deck[len(deck)-1]
	return c, deck[:len(deck)-1]
}
