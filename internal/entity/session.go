package entity

const pairSize = 2

// Session is the state of one round. It is mutated only by the game engine.
// AcceptingInput is the settle lock only and stays true while the round is paused;
// presentation code should ask CanSelect whether a card may be flipped.
type Session struct {
	Generation     uint64 `json:"generation"`
	PlayerName     string `json:"player_name"`
	Board          Board  `json:"board"`
	TotalPairs     int    `json:"total_pairs"`
	Attempts       int    `json:"attempts"`
	PairsFound     int    `json:"pairs_found"`
	Pending        []int  `json:"pending,omitempty"`
	Active         bool   `json:"active"`
	AcceptingInput bool   `json:"accepting_input"`
	Paused         bool   `json:"paused"`
}

func NewSession(generation uint64, playerName string, deck []Icon) *Session {
	return &Session{
		Generation:     generation,
		PlayerName:     playerName,
		Board:          Deal(deck),
		TotalPairs:     len(deck) / pairSize,
		Active:         true,
		AcceptingInput: true,
	}
}

// CanSelect reports whether a new card may be flipped right now.
func (that *Session) CanSelect() bool {
	return that.Active && that.AcceptingInput && !that.Paused
}

// Reveal flips a hidden card and appends it to the pending selection.
// It returns false, leaving the session untouched, when the flip is not allowed.
func (that *Session) Reveal(position int) bool {
	if !that.CanSelect() || len(that.Pending) >= pairSize {
		return false
	}

	card, err := that.Board.Card(position)
	if err != nil || !card.IsHidden() {
		return false
	}

	that.Board[position].Status = StatusRevealed
	that.Pending = append(that.Pending, position)

	// the pair is judged after a settle period, no flips until then
	if len(that.Pending) == pairSize {
		that.AcceptingInput = false
	}

	return true
}

// PendingPair returns the two revealed, unresolved positions.
func (that *Session) PendingPair() ([2]int, bool) {
	if len(that.Pending) != pairSize {
		return [2]int{}, false
	}

	return [2]int{that.Pending[0], that.Pending[1]}, true
}

// Resolve counts one attempt and judges the pending pair.
// A match is settled at once; a mismatch keeps the pair pending until HidePending.
func (that *Session) Resolve() (positions [2]int, matched, ok bool) {
	positions, ok = that.PendingPair()
	if !ok {
		return positions, false, false
	}

	that.Attempts++

	first, second := positions[0], positions[1]
	if that.Board[first].Icon != that.Board[second].Icon {
		return positions, false, true
	}

	that.Board[first].Status = StatusMatched
	that.Board[second].Status = StatusMatched
	that.PairsFound++
	that.Pending = nil
	that.AcceptingInput = true

	if that.IsWon() {
		that.Active = false
	}

	return positions, true, true
}

// HidePending turns a mismatched pair face down again and unlocks input.
func (that *Session) HidePending() ([2]int, bool) {
	positions, ok := that.PendingPair()
	if !ok {
		return positions, false
	}

	for _, position := range positions {
		that.Board[position].Status = StatusHidden
	}

	that.Pending = nil
	that.AcceptingInput = true

	return positions, true
}

func (that *Session) IsWon() bool {
	return that.TotalPairs > 0 && that.PairsFound == that.TotalPairs
}

// Clone returns a deep copy of the session.
func (that *Session) Clone() Session {
	clone := *that
	clone.Board = that.Board.Clone()
	if that.Pending != nil {
		clone.Pending = append([]int(nil), that.Pending...)
	}

	return clone
}
