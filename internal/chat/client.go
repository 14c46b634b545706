// Package chat connects the betting engine to Twitch chat: it parses viewer
// commands into bets and speaks the engine's replies and announcements back
// into the channel.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/MrOmnes/iRonWheel/internal/command"
	"github.com/MrOmnes/iRonWheel/internal/round"
)

// betTimeout bounds one placement including its wallet round-trips.
const betTimeout = 30 * time.Second

// Bets is the slice of the round controller the chat transport drives.
type Bets interface {
	PlaceBet(ctx context.Context, participant string, segment round.Segment, amount int64) (round.Bet, error)
}

// Client is the Twitch IRC client for one channel.
type Client struct {
	irc     *twitch.Client
	channel string
	bets    Bets
	logger  *log.Logger
}

// NewClient creates a chat client for the channel. The round controller is
// attached later with SetBets because the two reference each other.
func NewClient(username, token, channel string, logger *log.Logger) *Client {
	c := &Client{
		irc:     twitch.NewClient(username, token),
		channel: channel,
		logger:  logger.WithPrefix("chat"),
	}
	c.irc.OnConnect(func() {
		c.logger.Info("connected to chat", "channel", channel)
	})
	c.irc.OnPrivateMessage(c.onMessage)
	return c
}

// SetBets attaches the round controller.
func (c *Client) SetBets(bets Bets) {
	c.bets = bets
}

// Run joins the channel and serves the IRC connection until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	c.irc.Join(c.channel)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.irc.Connect()
	}()

	select {
	case <-ctx.Done():
		_ = c.irc.Disconnect()
		return nil
	case err := <-errCh:
		return err
	}
}

// Say sends one line of chat to the channel.
func (c *Client) Say(text string) {
	c.irc.Say(c.channel, text)
}

// AnnounceWinners implements round.Announcer.
func (c *Client) AnnounceWinners(winning round.Segment, payouts []round.Payout) {
	c.Say(WinnerAnnouncement(winning, payouts))
}

// AnnounceNoWinner implements round.Announcer.
func (c *Client) AnnounceNoWinner(winning round.Segment) {
	c.Say(NoWinnerAnnouncement(winning))
}

func (c *Client) onMessage(msg twitch.PrivateMessage) {
	intent, ok := command.Parse(msg.Message)
	if !ok {
		// Anything that isn't a bet command is other people chatting.
		return
	}
	if c.bets == nil {
		c.logger.Warn("bet command before controller attached", "user", msg.User.Name)
		return
	}

	name := msg.User.DisplayName
	if name == "" {
		name = msg.User.Name
	}

	// Placements run concurrently across participants; the controller
	// serialises attempts by the same participant.
	go c.placeBet(name, intent)
}

func (c *Client) placeBet(name string, intent command.PlaceBet) {
	ctx, cancel := context.WithTimeout(context.Background(), betTimeout)
	defer cancel()

	bet, err := c.bets.PlaceBet(ctx, name, round.Segment(intent.Segment), intent.Amount)
	if err != nil {
		c.logger.Debug("bet rejected", "participant", name, "error", err)
		c.Say(ReplyForError(name, intent, err))
		return
	}
	c.Say(ReplyConfirmation(name, bet))
}
