// Package command turns raw chat text into structured betting intents.
package command

import (
	"regexp"
	"strconv"
)

// PlaceBet is the parsed form of a betting command. Segment is the numeric
// label the viewer typed; whether it actually exists on the wheel, and whether
// the viewer can afford the amount, is decided later by the round controller.
type PlaceBet struct {
	Segment int
	Amount  int64
}

var betPattern = regexp.MustCompile(`^!(\d+)\s+(\d+)$`)

// Parse extracts a PlaceBet intent from raw chat text. It only recognises the
// "!<segment> <amount>" shape; anything else is silently ignored, including
// zero stakes and numbers too large to represent.
func Parse(text string) (PlaceBet, bool) {
	m := betPattern.FindStringSubmatch(text)
	if m == nil {
		return PlaceBet{}, false
	}

	segment, err := strconv.Atoi(m[1])
	if err != nil {
		return PlaceBet{}, false
	}
	amount, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || amount <= 0 {
		return PlaceBet{}, false
	}

	return PlaceBet{Segment: segment, Amount: amount}, true
}
