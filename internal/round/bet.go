package round

import "time"

// Bet is one participant's stake on one segment. Bets are immutable once
// recorded and live only until the round resets.
type Bet struct {
	Participant string
	Segment     Segment
	Amount      int64
	PlacedAt    time.Time
}

// BetView is the wire shape of one entry in the updateBets broadcast.
type BetView struct {
	Segment string `json:"segment"`
	Amount  int64  `json:"amount"`
}

// View returns the broadcast shape of the bet.
func (b Bet) View() BetView {
	return BetView{Segment: b.Segment.String(), Amount: b.Amount}
}
