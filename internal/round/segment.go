// Package round implements the betting round engine: the in-memory ledger of
// the single active round, winner resolution against the landed segment, and
// the controller that keeps concurrent bet placement race-free against the
// external points service.
package round

import "strconv"

// Segment is one wedge of the wheel. Numeric segments carry their own label
// as the payout multiplier; the bonus wedge has no fixed multiplier and is
// resolved per winner at spin time.
type Segment int

// Bonus is the special wedge: every bettor wins regardless of their chosen
// segment, with a multiplier drawn independently per winner.
const Bonus Segment = -1

// BonusMarker is the wire text the wheel client sends when the bonus wedge
// lands.
const BonusMarker = "BONUS"

// Labels lists the numeric segments viewers can bet on, in wheel order.
var Labels = []Segment{1, 2, 5, 10, 20}

// Valid reports whether s is part of the wheel's fixed enumeration.
func (s Segment) Valid() bool {
	if s == Bonus {
		return true
	}
	for _, l := range Labels {
		if s == l {
			return true
		}
	}
	return false
}

// IsBonus reports whether s is the bonus wedge.
func (s Segment) IsBonus() bool {
	return s == Bonus
}

// Bettable reports whether viewers may place a bet on s. The bonus wedge can
// land but cannot be bet on.
func (s Segment) Bettable() bool {
	return s.Valid() && s != Bonus
}

// Multiplier returns the fixed payout multiplier for a numeric segment. The
// bonus wedge has none; its multiplier is drawn by the resolver.
func (s Segment) Multiplier() int64 {
	if s == Bonus {
		return 0
	}
	return int64(s)
}

func (s Segment) String() string {
	if s == Bonus {
		return BonusMarker
	}
	return strconv.Itoa(int(s))
}

// ParseSegment maps the wheel client's wire text to a Segment: either the
// bonus marker or a stringified multiplier.
func ParseSegment(text string) (Segment, bool) {
	if text == BonusMarker {
		return Bonus, true
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	s := Segment(n)
	if !s.Bettable() {
		return 0, false
	}
	return s, true
}
