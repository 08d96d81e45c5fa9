package rating

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTransitDays(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"3 days", 3},
		{"2-4 business days", 2},
		{"1", 1},
		{"Delivered in 10 days", 10},
		{"Next day", DefaultTransitDays},
		{"", DefaultTransitDays},
		{"99999999999999999999999 days", DefaultTransitDays},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, ParseTransitDays(tc.in), "input %q", tc.in)
	}
}
