package game

import (
	"fmt"
	"sort"
)

// Hand categories for the chip-bid game, low to high.
const (
	CatHighCard = iota + 1
	CatOnePair
	CatTwoPair
	CatThreeOfAKind
	CatStraight
	CatFlush
	CatFullHouse
	CatFourOfAKind
	CatStraightFlush
	CatRoyalStraightFlush
)

// HandRank is the evaluated strength of a player's cards combined with
// the open cards. Label names the category plus its deciding rank;
// equal labels count as a tie regardless of kickers.
type HandRank struct {
	Category int    `json:"category"`
	Kickers  []int  `json:"kickers"`
	Label    string `json:"label"`
}

// CompareRanks orders two evaluated hands: negative when a is weaker,
// positive when a is stronger, zero on a category-and-kicker tie.
func CompareRanks(a, b HandRank) int {
	if a.Category != b.Category {
		return a.Category - b.Category
	}
	for i := 0; i < len(a.Kickers) && i < len(b.Kickers); i++ {
		if a.Kickers[i] != b.Kickers[i] {
			return a.Kickers[i] - b.Kickers[i]
		}
	}
	return 0
}

// EvaluateGangHand ranks own ∪ open. Aces read high (14) except in a
// wheel straight. When the deciding combination contains none of the
// player's own cards the rank decays to a high card over the player's
// own cards, so purely communal combinations cannot carry a player.
func EvaluateGangHand(own, open []Card) HandRank {
	all := make([]Card, 0, len(own)+len(open))
	all = append(all, own...)
	all = append(all, open...)

	if r, ok := straightFlushRank(all); ok {
		return r
	}

	groups := rankGroups(all)

	if len(groups) > 0 && len(groups[0].cards) == 4 {
		v := aceHigh(groups[0].value)
		return HandRank{
			Category: CatFourOfAKind,
			Kickers:  []int{v},
			Label:    fmt.Sprintf("four of a kind %s", valueLabel(groups[0].value)),
		}
	}

	if len(groups) >= 2 && len(groups[0].cards) == 3 && len(groups[1].cards) >= 2 {
		return HandRank{
			Category: CatFullHouse,
			Kickers:  []int{aceHigh(groups[0].value), aceHigh(groups[1].value)},
			Label: fmt.Sprintf("full house %s over %s",
				valueLabel(groups[0].value), valueLabel(groups[1].value)),
		}
	}

	if suitCards, ok := flushCards(all); ok {
		vals := aceHighValues(suitCards)
		sort.Sort(sort.Reverse(sort.IntSlice(vals)))
		vals = vals[:5]
		return HandRank{
			Category: CatFlush,
			Kickers:  vals,
			Label:    fmt.Sprintf("%s high flush", valueLabel(fromAceHigh(vals[0]))),
		}
	}

	if ok, _ := hasStraight(all); ok {
		top := straightTop(all)
		return HandRank{
			Category: CatStraight,
			Kickers:  []int{top},
			Label:    fmt.Sprintf("%s high straight", valueLabel(fromAceHigh(top))),
		}
	}

	if len(groups) > 0 && len(groups[0].cards) == 3 {
		if !containsOwn(groups[0].cards, own) {
			return ownHighCard(own)
		}
		kickers := topValuesExcluding(all, groups[0].cards, 2)
		return HandRank{
			Category: CatThreeOfAKind,
			Kickers:  append([]int{aceHigh(groups[0].value)}, kickers...),
			Label:    fmt.Sprintf("three of a kind %s", valueLabel(groups[0].value)),
		}
	}

	if len(groups) >= 2 && len(groups[0].cards) == 2 && len(groups[1].cards) == 2 {
		pairCards := append(append([]Card{}, groups[0].cards...), groups[1].cards...)
		if !containsOwn(pairCards, own) {
			return ownHighCard(own)
		}
		kickers := topValuesExcluding(all, pairCards, 1)
		kicker := 0
		if len(kickers) > 0 {
			kicker = kickers[0]
		}
		return HandRank{
			Category: CatTwoPair,
			Kickers:  []int{aceHigh(groups[0].value), aceHigh(groups[1].value), kicker},
			Label: fmt.Sprintf("two pair %s and %s",
				valueLabel(groups[0].value), valueLabel(groups[1].value)),
		}
	}

	if len(groups) > 0 && len(groups[0].cards) == 2 {
		if !containsOwn(groups[0].cards, own) {
			return ownHighCard(own)
		}
		kickers := topValuesExcluding(all, groups[0].cards, 3)
		return HandRank{
			Category: CatOnePair,
			Kickers:  append([]int{aceHigh(groups[0].value)}, kickers...),
			Label:    fmt.Sprintf("one pair %s", valueLabel(groups[0].value)),
		}
	}

	vals := aceHighValues(all)
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	if len(vals) > 5 {
		vals = vals[:5]
	}
	label := "high card"
	if top := highestOwn(own); top != 0 {
		label = fmt.Sprintf("high card %s", valueLabel(fromAceHigh(top)))
	} else if len(vals) > 0 {
		label = fmt.Sprintf("high card %s", valueLabel(fromAceHigh(vals[0])))
	}
	return HandRank{Category: CatHighCard, Kickers: vals, Label: label}
}

type rankGroup struct {
	value int // raw card value, ace as 1
	cards []Card
}

// rankGroups buckets cards by value, ordered by count then ace-high
// value, both descending.
func rankGroups(cards []Card) []rankGroup {
	byValue := map[int][]Card{}
	for _, c := range cards {
		byValue[c.Value] = append(byValue[c.Value], c)
	}
	groups := make([]rankGroup, 0, len(byValue))
	for v, cs := range byValue {
		groups = append(groups, rankGroup{value: v, cards: cs})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].cards) != len(groups[j].cards) {
			return len(groups[i].cards) > len(groups[j].cards)
		}
		return aceHigh(groups[i].value) > aceHigh(groups[j].value)
	})
	return groups
}

func straightFlushRank(all []Card) (HandRank, bool) {
	bySuit := map[Suit][]Card{}
	for _, c := range all {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}
	for _, suitCards := range bySuit {
		if len(suitCards) < 5 {
			continue
		}
		ok, _ := hasStraight(suitCards)
		if !ok {
			continue
		}
		if hasValues(suitCards, 1, 10, 11, 12, 13) {
			return HandRank{
				Category: CatRoyalStraightFlush,
				Kickers:  []int{14},
				Label:    "royal straight flush",
			}, true
		}
		top := 0
		for _, c := range suitCards {
			if v := aceHigh(c.Value); v > top {
				top = v
			}
		}
		return HandRank{
			Category: CatStraightFlush,
			Kickers:  []int{top},
			Label:    fmt.Sprintf("%s high straight flush", valueLabel(fromAceHigh(top))),
		}, true
	}
	return HandRank{}, false
}

func flushCards(all []Card) ([]Card, bool) {
	bySuit := map[Suit][]Card{}
	for _, c := range all {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}
	for _, cs := range bySuit {
		if len(cs) >= 5 {
			return cs, true
		}
	}
	return nil, false
}

func hasStraight(cards []Card) (bool, int) {
	if len(cards) < 5 {
		return false, 0
	}
	vals := aceHighValues(cards)
	sort.Ints(vals)
	run := 1
	for i := 1; i < len(vals); i++ {
		switch {
		case vals[i] == vals[i-1]:
			continue
		case vals[i] == vals[i-1]+1:
			run++
			if run >= 5 {
				return true, vals[i]
			}
		default:
			run = 1
		}
	}
	if hasValues(cards, 1, 2, 3, 4, 5) {
		return true, 5
	}
	return false, 0
}

// straightTop mirrors the original ruling: an ace together with a five
// marks the wheel and caps the straight at five high, otherwise the
// highest card in the pool tops it.
func straightTop(cards []Card) int {
	hasAce := false
	hasFive := false
	top := 0
	for _, c := range cards {
		if c.Value == 1 {
			hasAce = true
		}
		if c.Value == 5 {
			hasFive = true
		}
		if v := aceHigh(c.Value); v > top {
			top = v
		}
	}
	if hasAce && hasFive {
		return 5
	}
	return top
}

func containsOwn(combo []Card, own []Card) bool {
	for _, c := range combo {
		for _, oc := range own {
			if c.Name == oc.Name {
				return true
			}
		}
	}
	return false
}

func ownHighCard(own []Card) HandRank {
	vals := aceHighValues(own)
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	label := "high card"
	if len(vals) > 0 {
		label = fmt.Sprintf("high card %s", valueLabel(fromAceHigh(vals[0])))
	}
	return HandRank{Category: CatHighCard, Kickers: vals, Label: label}
}

func highestOwn(own []Card) int {
	top := 0
	for _, c := range own {
		if v := aceHigh(c.Value); v > top {
			top = v
		}
	}
	return top
}

func topValuesExcluding(all []Card, excluded []Card, n int) []int {
	skip := map[string]bool{}
	for _, c := range excluded {
		skip[c.Name] = true
	}
	vals := []int{}
	for _, c := range all {
		if !skip[c.Name] {
			vals = append(vals, aceHigh(c.Value))
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	if len(vals) > n {
		vals = vals[:n]
	}
	return vals
}

func aceHigh(v int) int {
	if v == 1 {
		return 14
	}
	return v
}

func fromAceHigh(v int) int {
	if v == 14 {
		return 1
	}
	return v
}

func aceHighValues(cards []Card) []int {
	vals := make([]int, 0, len(cards))
	for _, c := range cards {
		vals = append(vals, aceHigh(c.Value))
	}
	return vals
}

func hasValues(cards []Card, want ...int) bool {
	have := map[int]bool{}
	for _, c := range cards {
		have[c.Value] = true
	}
	for _, w := range want {
		if !have[w] {
			return false
		}
	}
	return true
}

func valueLabel(v int) string {
	switch v {
	case 1:
		return "A"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return fmt.Sprintf("%d", v)
	}
}
