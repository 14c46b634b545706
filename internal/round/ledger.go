package round

import (
	"errors"
	"sort"
	"sync"

	"github.com/coder/quartz"
)

var (
	// ErrAlreadyBet means the participant already has a recorded bet this
	// round and rebetting is disabled.
	ErrAlreadyBet = errors.New("participant already has a bet this round")

	// ErrInvalidSegment means the segment is not part of the wheel.
	ErrInvalidSegment = errors.New("segment is not on the wheel")

	// ErrInvalidStake means the stake was not a positive amount. The parser
	// never produces one, but the ledger enforces the invariant regardless.
	ErrInvalidStake = errors.New("stake must be positive")
)

// Ledger holds the bets of the single active round. It enforces the
// per-participant uniqueness invariant; it knows nothing about balances or
// round state, which belong to the controller.
type Ledger struct {
	mu         sync.Mutex
	bets       map[string]Bet
	clock      quartz.Clock
	allowRebet bool
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock replaces the clock used for bet timestamps, mainly for tests.
func WithClock(c quartz.Clock) LedgerOption {
	return func(l *Ledger) { l.clock = c }
}

// WithRebet switches the duplicate-bet policy: when enabled, a later bet from
// the same participant silently replaces the earlier one instead of being
// rejected. Disabled by default.
func WithRebet(allow bool) LedgerOption {
	return func(l *Ledger) { l.allowRebet = allow }
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		bets:  make(map[string]Bet),
		clock: quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Validate runs the checks Place would run, without recording anything.
// The controller calls it before debiting the stake so that a rejected bet
// never touches the points service.
func (l *Ledger) Validate(participant string, segment Segment, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.validateLocked(participant, segment, amount)
}

func (l *Ledger) validateLocked(participant string, segment Segment, amount int64) error {
	if !segment.Valid() {
		return ErrInvalidSegment
	}
	if amount <= 0 {
		return ErrInvalidStake
	}
	if _, exists := l.bets[participant]; exists && !l.allowRebet {
		return ErrAlreadyBet
	}
	return nil
}

// Place records a bet for the participant. The recorded bet is returned so
// the caller can confirm it back to the viewer.
func (l *Ledger) Place(participant string, segment Segment, amount int64) (Bet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validateLocked(participant, segment, amount); err != nil {
		return Bet{}, err
	}

	bet := Bet{
		Participant: participant,
		Segment:     segment,
		Amount:      amount,
		PlacedAt:    l.clock.Now(),
	}
	l.bets[participant] = bet
	return bet, nil
}

// Lookup returns the participant's recorded bet this round, if any.
func (l *Ledger) Lookup(participant string) (Bet, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bets[participant]
	return b, ok
}

// Has reports whether the participant has a recorded bet this round.
func (l *Ledger) Has(participant string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.bets[participant]
	return ok
}

// Len returns the number of recorded bets.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bets)
}

// Bets returns a snapshot of all recorded bets ordered by placement time,
// ties broken by participant name.
func (l *Ledger) Bets() []Bet {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Bet, 0, len(l.bets))
	for _, b := range l.bets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].Participant < out[j].Participant
		}
		return out[i].PlacedAt.Before(out[j].PlacedAt)
	})
	return out
}

// Snapshot returns the full bet map in broadcast shape. An empty round yields
// an empty (non-nil) map so the wire shape is identical before the first bet
// and after a reset.
func (l *Ledger) Snapshot() map[string]BetView {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]BetView, len(l.bets))
	for name, b := range l.bets {
		out[name] = b.View()
	}
	return out
}

// Clear empties the ledger. Only the round controller calls this, on reset.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bets = make(map[string]Bet)
}
