package round

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerPlace(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	bet, err := l.Place("alice", 10, 50)
	require.NoError(t, err)
	assert.Equal(t, "alice", bet.Participant)
	assert.Equal(t, Segment(10), bet.Segment)
	assert.Equal(t, int64(50), bet.Amount)
	assert.True(t, l.Has("alice"))
	assert.Equal(t, 1, l.Len())
}

func TestLedgerRejectsDuplicates(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	_, err := l.Place("alice", 10, 50)
	require.NoError(t, err)

	_, err = l.Place("alice", 5, 25)
	require.ErrorIs(t, err, ErrAlreadyBet)

	// The original bet is untouched.
	bets := l.Bets()
	require.Len(t, bets, 1)
	assert.Equal(t, Segment(10), bets[0].Segment)
	assert.Equal(t, int64(50), bets[0].Amount)
}

func TestLedgerRebetPolicy(t *testing.T) {
	t.Parallel()

	l := NewLedger(WithRebet(true))
	_, err := l.Place("alice", 10, 50)
	require.NoError(t, err)

	// With rebetting enabled a later bet replaces the earlier one.
	_, err = l.Place("alice", 5, 25)
	require.NoError(t, err)

	bets := l.Bets()
	require.Len(t, bets, 1)
	assert.Equal(t, Segment(5), bets[0].Segment)
	assert.Equal(t, int64(25), bets[0].Amount)
}

func TestLedgerValidation(t *testing.T) {
	t.Parallel()

	l := NewLedger()

	_, err := l.Place("alice", 7, 50)
	require.ErrorIs(t, err, ErrInvalidSegment)

	_, err = l.Place("alice", 10, 0)
	require.ErrorIs(t, err, ErrInvalidStake)

	_, err = l.Place("alice", 10, -5)
	require.ErrorIs(t, err, ErrInvalidStake)

	assert.Equal(t, 0, l.Len())

	// Validate mirrors Place without recording.
	require.ErrorIs(t, l.Validate("alice", 7, 50), ErrInvalidSegment)
	require.NoError(t, l.Validate("alice", 10, 50))
	assert.False(t, l.Has("alice"))
}

func TestLedgerClear(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	_, err := l.Place("alice", 10, 50)
	require.NoError(t, err)
	_, err = l.Place("bob", 2, 30)
	require.NoError(t, err)

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Bets())
	assert.False(t, l.Has("alice"))
}

func TestLedgerSnapshotShape(t *testing.T) {
	t.Parallel()

	l := NewLedger()

	// Empty snapshot is an empty map, not nil: the broadcast before the first
	// bet and after a reset must have an identical wire shape.
	empty := l.Snapshot()
	require.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err := l.Place("alice", 20, 100)
	require.NoError(t, err)

	snap := l.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, BetView{Segment: "20", Amount: 100}, snap["alice"])

	l.Clear()
	assert.Equal(t, empty, l.Snapshot())
}

func TestLedgerPlacedAtUsesClock(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	start := clock.Now()
	l := NewLedger(WithClock(clock))

	_, err := l.Place("alice", 10, 50)
	require.NoError(t, err)

	clock.Advance(3 * time.Second)
	_, err = l.Place("bob", 2, 30)
	require.NoError(t, err)

	bets := l.Bets()
	require.Len(t, bets, 2)
	assert.Equal(t, "alice", bets[0].Participant)
	assert.Equal(t, start, bets[0].PlacedAt)
	assert.Equal(t, "bob", bets[1].Participant)
	assert.Equal(t, start.Add(3*time.Second), bets[1].PlacedAt)
}

func TestLedgerBetsOrderTiesByName(t *testing.T) {
	t.Parallel()

	clock := quartz.NewMock(t)
	l := NewLedger(WithClock(clock))

	for _, name := range []string{"zoe", "alice", "mallory"} {
		_, err := l.Place(name, 1, 10)
		require.NoError(t, err)
	}

	bets := l.Bets()
	require.Len(t, bets, 3)
	assert.Equal(t, "alice", bets[0].Participant)
	assert.Equal(t, "mallory", bets[1].Participant)
	assert.Equal(t, "zoe", bets[2].Participant)
}
