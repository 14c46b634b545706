package round

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// State is the lifecycle position of the single active round.
type State int

const (
	// StateOpen accepts bets.
	StateOpen State = iota
	// StateLocked is entered the instant a spin is initiated; bets arriving
	// afterward are rejected, never queued for the next round.
	StateLocked
	// StateResolving is held while payouts are in flight.
	StateResolving
	// StateResolved is the brief window between the last credit attempt and
	// the reset back to open.
	StateResolved
)

func (s State) String() string {
	return [...]string{"open", "locked", "resolving", "resolved"}[s]
}

var (
	// ErrBettingClosed means the round is not open for bets.
	ErrBettingClosed = errors.New("betting is closed")

	// ErrInsufficientFunds means the participant's balance cannot cover the
	// stake. No debit is issued.
	ErrInsufficientFunds = errors.New("not enough points")

	// ErrSpinInProgress means a spin arrived while another was resolving.
	ErrSpinInProgress = errors.New("a spin is already being resolved")
)

// Wallet is the slice of the external points service the controller needs.
type Wallet interface {
	Balance(ctx context.Context, participant string) (int64, error)
	Debit(ctx context.Context, participant string, amount int64) error
	Credit(ctx context.Context, participant string, amount int64) error
}

// Broadcaster pushes the current bet map to connected display and admin
// clients. Implemented by the websocket server.
type Broadcaster interface {
	BroadcastBets(bets map[string]BetView)
}

// Announcer delivers human-readable round results to the audience.
// Implemented by the chat client.
type Announcer interface {
	AnnounceWinners(winning Segment, payouts []Payout)
	AnnounceNoWinner(winning Segment)
}

// Outcome is the cached result of one spin. The payout slice is computed
// exactly once; crediting, chat announcement and console display all read
// this same value.
type Outcome struct {
	Winning Segment
	Payouts []Payout
	// Failed lists participants whose credit call failed. Failures are
	// logged and do not block other winners or the round's reset.
	Failed []string
}

// Controller owns the single active round and is the only component that
// talks to the wallet and the broadcaster. All bet and spin handling funnels
// through it.
type Controller struct {
	wallet      Wallet
	ledger      *Ledger
	resolver    *Resolver
	broadcaster Broadcaster
	announcer   Announcer
	logger      *log.Logger

	// stateMu guards state and generation. Placements never hold it across
	// wallet calls; they snapshot both before the wallet round-trips and
	// recheck after the debit, so a hung wallet call cannot delay a spin or
	// an operator reset. generation advances every time the ledger is
	// cleared, letting a stalled operation detect that its round is gone.
	stateMu    sync.RWMutex
	state      State
	generation uint64

	// participantMu guards participantLocks. Each participant's lock
	// serialises that participant's placements so two concurrent attempts
	// cannot both validate against the same stale balance.
	participantMu    sync.Mutex
	participantLocks map[string]*sync.Mutex
}

// NewController creates a controller in the open state.
func NewController(wallet Wallet, ledger *Ledger, resolver *Resolver, broadcaster Broadcaster, announcer Announcer, logger *log.Logger) *Controller {
	return &Controller{
		wallet:           wallet,
		ledger:           ledger,
		resolver:         resolver,
		broadcaster:      broadcaster,
		announcer:        announcer,
		logger:           logger.WithPrefix("round"),
		state:            StateOpen,
		participantLocks: make(map[string]*sync.Mutex),
	}
}

// State returns the round's current lifecycle position.
func (c *Controller) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// PlaceBet validates and records one bet: duplicate and segment checks first,
// then balance check, then debit, then record, then broadcast. A rejection at
// any step leaves both the ledger and the participant's balance untouched.
// Under the rebet policy a replacement bet refunds the stake it displaces.
func (c *Controller) PlaceBet(ctx context.Context, participant string, segment Segment, amount int64) (Bet, error) {
	lock := c.lockFor(participant)
	lock.Lock()
	defer lock.Unlock()

	c.stateMu.RLock()
	state, gen := c.state, c.generation
	c.stateMu.RUnlock()

	if state != StateOpen {
		return Bet{}, ErrBettingClosed
	}
	if !segment.Bettable() {
		return Bet{}, ErrInvalidSegment
	}
	if err := c.ledger.Validate(participant, segment, amount); err != nil {
		return Bet{}, err
	}
	// Only possible with the rebet policy enabled; Validate rejects the
	// duplicate otherwise.
	prior, hasPrior := c.ledger.Lookup(participant)

	balance, err := c.wallet.Balance(ctx, participant)
	if err != nil {
		return Bet{}, err
	}
	// A replaced bet's stake is refunded below, so it still counts toward
	// covering the new one.
	if hasPrior {
		balance += prior.Amount
	}
	if balance < amount {
		return Bet{}, ErrInsufficientFunds
	}

	if err := c.wallet.Debit(ctx, participant, amount); err != nil {
		return Bet{}, err
	}

	// The wallet round-trips ran without holding stateMu, so a spin or reset
	// may have closed this round meanwhile. Recheck before recording; a
	// stale debit is refunded, never carried into the next round.
	c.stateMu.RLock()
	if c.state != StateOpen || c.generation != gen {
		c.stateMu.RUnlock()
		c.refund(ctx, participant, amount)
		return Bet{}, ErrBettingClosed
	}
	bet, err := c.ledger.Place(participant, segment, amount)
	c.stateMu.RUnlock()
	if err != nil {
		c.refund(ctx, participant, amount)
		return Bet{}, err
	}

	if hasPrior {
		c.logger.Info("bet replaced, refunding previous stake",
			"participant", participant, "refund", prior.Amount)
		c.refund(ctx, participant, prior.Amount)
	}

	c.logger.Info("bet placed",
		"participant", participant, "segment", segment.String(), "amount", amount)
	c.broadcaster.BroadcastBets(c.ledger.Snapshot())
	return bet, nil
}

// Spin locks the round, resolves it against the landed segment, credits the
// winners, announces the result and reopens an empty round. Credit failures
// are logged per winner and never abort the remaining credits or the reset.
func (c *Controller) Spin(ctx context.Context, winning Segment) (*Outcome, error) {
	if !winning.Valid() {
		return nil, ErrInvalidSegment
	}

	c.stateMu.Lock()
	if c.state != StateOpen {
		c.stateMu.Unlock()
		return nil, ErrSpinInProgress
	}
	c.state = StateLocked
	gen := c.generation
	bets := c.ledger.Bets()
	c.state = StateResolving
	c.stateMu.Unlock()

	c.logger.Info("round locked", "winning", winning.String(), "bets", len(bets))

	// Resolved exactly once; the bonus draw is random per winner, so this
	// slice is the round's outcome of record.
	outcome := &Outcome{Winning: winning, Payouts: c.resolver.Resolve(bets, winning)}

	for _, p := range outcome.Payouts {
		if err := c.wallet.Credit(ctx, p.Participant, p.Credited); err != nil {
			c.logger.Error("credit failed",
				"participant", p.Participant, "credited", p.Credited, "error", err)
			outcome.Failed = append(outcome.Failed, p.Participant)
			continue
		}
		c.logger.Info("winner credited",
			"participant", p.Participant, "stake", p.Stake,
			"multiplier", p.Multiplier, "credited", p.Credited)
	}

	if len(outcome.Payouts) > 0 {
		c.announcer.AnnounceWinners(winning, outcome.Payouts)
	} else {
		c.logger.Info("no winners", "winning", winning.String())
		c.announcer.AnnounceNoWinner(winning)
	}

	// Only this spin's own round may be cleared. If an operator reset
	// intervened while credits were in flight, the ledger already holds the
	// next round's bets and must stay untouched.
	c.stateMu.Lock()
	finished := c.state == StateResolving && c.generation == gen
	if finished {
		c.state = StateResolved
		c.ledger.Clear()
		c.state = StateOpen
		c.generation++
	}
	c.stateMu.Unlock()

	if finished {
		c.broadcaster.BroadcastBets(c.ledger.Snapshot())
	} else {
		c.logger.Warn("round was reset during resolution",
			"winning", winning.String())
	}
	return outcome, nil
}

// Reset is the operator override: it forces an empty open round from any
// state, broadcasting the now-empty bet map.
func (c *Controller) Reset(ctx context.Context) {
	c.stateMu.Lock()
	c.ledger.Clear()
	c.state = StateOpen
	c.generation++
	c.stateMu.Unlock()

	c.logger.Info("round reset")
	c.broadcaster.BroadcastBets(c.ledger.Snapshot())
}

// refund returns a debited stake whose bet could not stand. A failed refund
// can only be logged; there is no ledger record left to retry from.
func (c *Controller) refund(ctx context.Context, participant string, amount int64) {
	if err := c.wallet.Credit(ctx, participant, amount); err != nil {
		c.logger.Error("refund failed",
			"participant", participant, "amount", amount, "error", err)
	}
}

func (c *Controller) lockFor(participant string) *sync.Mutex {
	key := strings.ToLower(participant)
	c.participantMu.Lock()
	defer c.participantMu.Unlock()
	l, ok := c.participantLocks[key]
	if !ok {
		l = &sync.Mutex{}
		c.participantLocks[key] = l
	}
	return l
}
