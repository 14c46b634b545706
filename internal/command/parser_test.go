package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want PlaceBet
		ok   bool
	}{
		{name: "simple bet", text: "!10 50", want: PlaceBet{Segment: 10, Amount: 50}, ok: true},
		{name: "single digit segment", text: "!1 5", want: PlaceBet{Segment: 1, Amount: 5}, ok: true},
		{name: "extra whitespace between groups", text: "!5   200", want: PlaceBet{Segment: 5, Amount: 200}, ok: true},
		{name: "unknown segment still parses", text: "!7 50", want: PlaceBet{Segment: 7, Amount: 50}, ok: true},
		{name: "plain chat message", text: "hello everyone"},
		{name: "missing amount", text: "!10"},
		{name: "missing bang", text: "10 50"},
		{name: "trailing text", text: "!10 50 please"},
		{name: "leading whitespace", text: " !10 50"},
		{name: "negative amount", text: "!10 -50"},
		{name: "zero amount", text: "!10 0"},
		{name: "decimal amount", text: "!10 50.5"},
		{name: "amount overflows int64", text: "!10 99999999999999999999"},
		{name: "empty string", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
