package droprate_test

import (
	"fmt"
	"testing"

	"github.com/cory-johannsen/dropcalc/internal/game/droprate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseRate_Forms(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1/358", 1.0 / 358},
		{" 1 / 128 ", 1.0 / 128},
		{"3/4", 0.75},
		{"0.0078", 0.0078},
		{"1", 1},
		{"2.5%", 0.025},
		{"100%", 1},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			r, err := droprate.ParseRate(tc.in)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, float64(r), 1e-12)
		})
	}
}

func TestParseRate_Malformed(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1/", "/5", "1/x", "x%", "1/0"} {
		_, err := droprate.ParseRate(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseRate_Blank(t *testing.T) {
	for _, in := range []string{"", " \t "} {
		_, err := droprate.ParseRate(in)
		assert.ErrorIs(t, err, droprate.ErrEmptyRate, "input %q", in)
	}
}

func TestParseRate_OutOfRange(t *testing.T) {
	for _, in := range []string{"0", "1.5", "3/2", "-1/50", "150%", "0%"} {
		_, err := droprate.ParseRate(in)
		assert.ErrorIs(t, err, droprate.ErrInvalidRate, "input %q", in)
	}
}

func TestProperty_ParseRate_FractionRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		den := rapid.IntRange(1, 100000).Draw(rt, "den")
		r, err := droprate.ParseRate(fmt.Sprintf("1/%d", den))
		require.NoError(rt, err)
		assert.Equal(rt, fmt.Sprintf("1/%d", den), r.String())
	})
}
