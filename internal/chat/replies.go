package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrOmnes/iRonWheel/internal/command"
	"github.com/MrOmnes/iRonWheel/internal/round"
)

// ReplyConfirmation is the chat reply for a recorded bet.
func ReplyConfirmation(name string, bet round.Bet) string {
	return fmt.Sprintf("%s, you bet %d points on %s.", name, bet.Amount, bet.Segment)
}

// ReplyForError maps the engine's error taxonomy to a user-facing chat reply.
func ReplyForError(name string, intent command.PlaceBet, err error) string {
	switch {
	case errors.Is(err, round.ErrBettingClosed):
		return fmt.Sprintf("%s, betting is closed right now.", name)
	case errors.Is(err, round.ErrInvalidSegment):
		return fmt.Sprintf("%s, invalid segment. Bet on %s.", name, segmentList())
	case errors.Is(err, round.ErrInvalidStake):
		return fmt.Sprintf("%s, your bet must be at least 1 point.", name)
	case errors.Is(err, round.ErrAlreadyBet):
		return fmt.Sprintf("%s, you already placed a bet this round.", name)
	case errors.Is(err, round.ErrInsufficientFunds):
		return fmt.Sprintf("%s, you don't have enough points to bet %d.", name, intent.Amount)
	default:
		return fmt.Sprintf("%s, something went wrong while placing your bet.", name)
	}
}

// WinnerAnnouncement is the channel-wide message for a resolved round with
// winners.
func WinnerAnnouncement(winning round.Segment, payouts []round.Payout) string {
	names := make([]string, len(payouts))
	for i, p := range payouts {
		names[i] = p.Participant
	}
	return fmt.Sprintf("🎉 Congratulations to the winners: %s! The winning segment was \"%s\". 🎯",
		strings.Join(names, ", "), winning)
}

// NoWinnerAnnouncement is the channel-wide message for a round nobody won.
func NoWinnerAnnouncement(winning round.Segment) string {
	return fmt.Sprintf("😢 No winners this time. The winning segment was \"%s\".", winning)
}

func segmentList() string {
	labels := make([]string, len(round.Labels))
	for i, s := range round.Labels {
		labels[i] = s.String()
	}
	if len(labels) == 1 {
		return labels[0]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " or " + labels[len(labels)-1]
}
