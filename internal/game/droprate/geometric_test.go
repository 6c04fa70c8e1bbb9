package droprate_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cory-johannsen/dropcalc/internal/game/droprate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDropChance_KnownValue(t *testing.T) {
	chance, err := droprate.DropChance(1.0/50, 75)
	require.NoError(t, err)
	assert.InDelta(t, 0.780236, chance, 0.0001)
}

func TestDropChance_GuaranteedDrop(t *testing.T) {
	chance, err := droprate.DropChance(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, chance, "a guaranteed drop must be exactly 1 after one kill")
}

func TestDropChance_ZeroKills(t *testing.T) {
	for _, kills := range []droprate.Kills{0, -5} {
		chance, err := droprate.DropChance(1.0/128, kills)
		require.NoError(t, err)
		assert.Equal(t, 0.0, chance)
	}
}

func TestDropChance_InvalidRate(t *testing.T) {
	for _, rate := range []droprate.Rate{0, -0.1, 1.5, droprate.Rate(math.NaN())} {
		chance, err := droprate.DropChance(rate, 10)
		assert.ErrorIs(t, err, droprate.ErrInvalidRate, "rate %v", rate)
		assert.Equal(t, 0.0, chance)
	}
}

func TestKillsForConfidence_KnownValue(t *testing.T) {
	kills, err := droprate.KillsForConfidence(1.0/50, 0.90)
	require.NoError(t, err)
	assert.Equal(t, droprate.Kills(114), kills)
}

func TestKillsForConfidence_GuaranteedDrop(t *testing.T) {
	kills, err := droprate.KillsForConfidence(1, 0.99)
	require.NoError(t, err)
	assert.Equal(t, droprate.Kills(1), kills)
}

func TestKillsForConfidence_InvalidInput(t *testing.T) {
	cases := []struct {
		name       string
		rate       droprate.Rate
		confidence float64
		want       error
	}{
		{"zero rate", 0, 0.5, droprate.ErrInvalidRate},
		{"rate above one", 1.5, 0.5, droprate.ErrInvalidRate},
		{"zero confidence", 0.1, 0, droprate.ErrInvalidProbability},
		{"full confidence", 0.1, 1, droprate.ErrInvalidProbability},
		{"negative confidence", 0.1, -0.2, droprate.ErrInvalidProbability},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kills, err := droprate.KillsForConfidence(tc.rate, tc.confidence)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, droprate.Infinite, kills)
		})
	}
}

func TestInterval_KnownValue(t *testing.T) {
	b, err := droprate.Interval(1.0/50, 0.5)
	require.NoError(t, err)
	assert.Equal(t, droprate.Bounds{Lower: 15, Upper: 69}, b)
}

func TestInterval_DefaultWidth(t *testing.T) {
	b, err := droprate.Interval(1.0/128, droprate.DefaultInterval)
	require.NoError(t, err)
	assert.Equal(t, droprate.Bounds{Lower: 4, Upper: 471}, b)
}

func TestInterval_GuaranteedDrop(t *testing.T) {
	b, err := droprate.Interval(1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, droprate.Bounds{Lower: 1, Upper: 1}, b)
}

func TestInterval_InvalidInput(t *testing.T) {
	b, err := droprate.Interval(0, 0.5)
	assert.ErrorIs(t, err, droprate.ErrInvalidRate)
	assert.True(t, b.IsUnbounded())

	b, err = droprate.Interval(1.5, 0.5)
	assert.ErrorIs(t, err, droprate.ErrInvalidRate)
	assert.True(t, b.IsUnbounded())

	for _, width := range []float64{0, 1, 1.2} {
		b, err = droprate.Interval(0.1, width)
		assert.ErrorIs(t, err, droprate.ErrInvalidProbability)
		assert.True(t, b.IsUnbounded())
	}
}

func TestQuantile_SmallestSatisfyingKill(t *testing.T) {
	// With rate 1/2 the CDF runs 0.5, 0.75, 0.875 ...
	k, err := droprate.Quantile(0.5, 0.7)
	require.NoError(t, err)
	assert.Equal(t, droprate.Kills(2), k)

	k, err = droprate.Quantile(0.5, 0.8)
	require.NoError(t, err)
	assert.Equal(t, droprate.Kills(3), k)

	k, err = droprate.Quantile(0.5, 0.4)
	require.NoError(t, err)
	assert.Equal(t, droprate.Kills(1), k)
}

func TestQuantile_ExtremeConfidenceReturnsPromptly(t *testing.T) {
	done := make(chan struct{})
	var (
		k    droprate.Kills
		b    droprate.Bounds
		err  error
		ierr error
	)
	go func() {
		defer close(done)
		k, err = droprate.Quantile(1e-12, 0.9999999999999999)
		b, ierr = droprate.Interval(1e-17, 0.9999999999999998)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("quantile near p=1 did not return within 2s")
	}

	require.NoError(t, err)
	assert.InDelta(t, 36.7e12, float64(k), 0.1e12)
	require.NoError(t, ierr)
	assert.Less(t, b.Lower, b.Upper)
	assert.NotEqual(t, droprate.Infinite, b.Upper)
}

func TestExpected(t *testing.T) {
	mean, err := droprate.Expected(1.0 / 128)
	require.NoError(t, err)
	assert.InDelta(t, 128.0, mean, 1e-9)

	_, err = droprate.Expected(0)
	assert.ErrorIs(t, err, droprate.ErrInvalidRate)
}

func TestKills_String(t *testing.T) {
	assert.Equal(t, "114", droprate.Kills(114).String())
	assert.Equal(t, "∞", droprate.Infinite.String())
	assert.Equal(t, "15 to 69", droprate.Bounds{Lower: 15, Upper: 69}.String())
}

func TestRate_String(t *testing.T) {
	assert.Equal(t, "1/358", droprate.Rate(1.0/358).String())
	assert.Equal(t, "1/1", droprate.Rate(1).String())
	assert.Equal(t, "0.3", droprate.Rate(0.3).String())
}

func rateGen() *rapid.Generator[droprate.Rate] {
	return rapid.Custom(func(t *rapid.T) droprate.Rate {
		return droprate.Rate(rapid.Float64Range(0.0001, 1).Draw(t, "rate"))
	})
}

func TestProperty_DropChance_InUnitRangeAndMonotone(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rate := rateGen().Draw(rt, "rate")
		k1 := droprate.Kills(rapid.Int64Range(0, 100000).Draw(rt, "k1"))
		k2 := k1 + droprate.Kills(rapid.Int64Range(0, 100000).Draw(rt, "delta"))

		c1, err := droprate.DropChance(rate, k1)
		require.NoError(rt, err)
		c2, err := droprate.DropChance(rate, k2)
		require.NoError(rt, err)

		assert.GreaterOrEqual(rt, c1, 0.0)
		assert.LessOrEqual(rt, c2, 1.0)
		assert.LessOrEqual(rt, c1, c2, "DropChance must be non-decreasing in kills")
	})
}

func TestProperty_KillsForConfidence_IsMinimal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rate := rateGen().Draw(rt, "rate")
		confidence := rapid.Float64Range(0.001, 0.999).Draw(rt, "confidence")

		k, err := droprate.KillsForConfidence(rate, confidence)
		require.NoError(rt, err)
		require.GreaterOrEqual(rt, k, droprate.Kills(1))

		at, err := droprate.DropChance(rate, k)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, at, confidence)

		if k >= 2 {
			before, err := droprate.DropChance(rate, k-1)
			require.NoError(rt, err)
			assert.Less(rt, before, confidence)
		}
	})
}

func TestProperty_Interval_WidensWithWidth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rate := rateGen().Draw(rt, "rate")
		narrow := rapid.Float64Range(0.01, 0.98).Draw(rt, "narrow")
		wide := rapid.Float64Range(narrow, 0.99).Draw(rt, "wide")

		bn, err := droprate.Interval(rate, narrow)
		require.NoError(rt, err)
		bw, err := droprate.Interval(rate, wide)
		require.NoError(rt, err)

		assert.LessOrEqual(rt, bn.Lower, bn.Upper)
		assert.LessOrEqual(rt, bw.Lower, bn.Lower)
		assert.GreaterOrEqual(rt, bw.Upper, bn.Upper)
	})
}
