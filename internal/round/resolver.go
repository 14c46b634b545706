package round

import (
	rand "math/rand/v2"

	"github.com/MrOmnes/iRonWheel/internal/randutil"
)

// Payout is one winner's resolved result. It is derived data: computed once
// per spin, cached by the controller for crediting and broadcast, and never
// recomputed, since the bonus draw is random per winner and running it again
// would change the outcome.
type Payout struct {
	Participant string `json:"participant"`
	Stake       int64  `json:"stake"`
	Multiplier  int64  `json:"multiplier"`
	Credited    int64  `json:"credited"`
}

// bonusMultipliers are the possible per-winner draws when the bonus wedge
// lands. A fair coin, drawn independently for each winner.
var bonusMultipliers = []int64{20, 100}

// Resolver computes the winner set and payouts for a landed segment. The
// randomness source is injected so bonus draws can be seeded in tests and
// reproduced from a logged seed in production.
type Resolver struct {
	rng *rand.Rand
}

// NewResolver creates a resolver drawing bonus multipliers from rng.
func NewResolver(rng *rand.Rand) *Resolver {
	return &Resolver{rng: rng}
}

// Resolve returns one payout per winner of the round. On a numeric segment
// the winners are exactly the bets on that segment; on the bonus wedge every
// bettor wins. A winner is credited their winnings plus their stake back:
// credited = stake*multiplier + stake.
func (r *Resolver) Resolve(bets []Bet, winning Segment) []Payout {
	payouts := make([]Payout, 0, len(bets))
	for _, b := range bets {
		var multiplier int64
		switch {
		case winning.IsBonus():
			multiplier = randutil.Pick(r.rng, bonusMultipliers...)
		case b.Segment == winning:
			multiplier = winning.Multiplier()
		default:
			continue
		}

		payouts = append(payouts, Payout{
			Participant: b.Participant,
			Stake:       b.Amount,
			Multiplier:  multiplier,
			Credited:    b.Amount*multiplier + b.Amount,
		})
	}
	return payouts
}
