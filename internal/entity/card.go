package entity

import (
	"errors"
	"fmt"
	"math/rand"
)

type CardStatus string

const (
	StatusHidden   CardStatus = "hidden"
	StatusRevealed CardStatus = "revealed"
	StatusMatched  CardStatus = "matched"
)

// Icon identifies a card face. Each icon is dealt exactly twice.
type Icon string

var ErrInvalidPosition = errors.New("invalid card position")

type Card struct {
	Position int        `json:"position"`
	Icon     Icon       `json:"icon,omitempty"`
	Status   CardStatus `json:"status"`
}

func (that Card) IsHidden() bool {
	return that.Status == StatusHidden
}

func (that Card) IsMatched() bool {
	return that.Status == StatusMatched
}

type Board []Card

// NewDeck - duplicates every icon, producing the unshuffled deck [a, a, b, b, ...].
func NewDeck(icons []Icon) []Icon {
	deck := make([]Icon, 0, len(icons)*2)
	for _, icon := range icons {
		deck = append(deck, icon, icon)
	}

	return deck
}

// Shuffle - in-place Fisher–Yates permutation of the deck.
func Shuffle(deck []Icon, intn func(n int) int) {
	for i := len(deck) - 1; i > 0; i-- {
		j := intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// RandomShuffle - Shuffle driven by math/rand.
func RandomShuffle(deck []Icon) {
	Shuffle(deck, rand.Intn) //nolint: gosec // it's ok, cards are not a secret worth crypto
}

// Deal - lays the deck out as a board, one hidden card per position.
func Deal(deck []Icon) Board {
	board := make(Board, len(deck))
	for i, icon := range deck {
		board[i] = Card{Position: i, Icon: icon, Status: StatusHidden}
	}

	return board
}

func (that Board) Card(position int) (Card, error) {
	if position < 0 || position >= len(that) {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}

	return that[position], nil
}

// Clone - returns a copy safe to hand to listeners.
func (that Board) Clone() Board {
	board := make(Board, len(that))
	copy(board, that)

	return board
}

// Masked - copy of the board with the icons of non-revealed cards removed.
func (that Board) Masked() Board {
	board := that.Clone()
	for i := range board {
		if board[i].IsHidden() {
			board[i].Icon = ""
		}
	}

	return board
}

// IconCounts - how many times each icon occurs on the board.
func (that Board) IconCounts() map[Icon]int {
	counts := make(map[Icon]int, len(that)/2)
	for _, card := range that {
		counts[card.Icon]++
	}

	return counts
}
