package poker

import (
	"fmt"
	"strconv"
	"strings"
)

// Card is a value from the fixed estimation deck.
type Card int

// The deck. CardPause is the only non-numeric card.
const (
	CardPause Card = -1
	Card1     Card = 1
	Card2     Card = 2
	Card3     Card = 3
	Card5     Card = 5
	Card8     Card = 8
	Card13    Card = 13
	Card21    Card = 21
)

const pauseText = "pause"

// Deck lists every valid card in display order.
var Deck = []Card{Card1, Card2, Card3, Card5, Card8, Card13, Card21, CardPause}

// ParseCard parses the textual form of a card ("5", "pause").
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == pauseText || s == "☕" {
		return CardPause, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVoteValue, s)
	}
	c := Card(n)
	if !c.Valid() || c == CardPause {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVoteValue, s)
	}
	return c, nil
}

// Valid reports whether c is part of the deck.
func (c Card) Valid() bool {
	switch c {
	case Card1, Card2, Card3, Card5, Card8, Card13, Card21, CardPause:
		return true
	}
	return false
}

// Numeric reports whether c takes part in the mean and consensus checks.
func (c Card) Numeric() bool {
	return c.Valid() && c != CardPause
}

func (c Card) String() string {
	if c == CardPause {
		return pauseText
	}
	return strconv.Itoa(int(c))
}

// MarshalText encodes the card as its string form so cards can be used as
// JSON map keys in vote distributions.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVoteValue, int(c))
	}
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalJSON accepts the string form as well as a bare number, so both
// {"value":"5"} and {"value":5} decode.
func (c *Card) UnmarshalJSON(b []byte) error {
	s := string(b)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return c.UnmarshalText([]byte(s))
}
