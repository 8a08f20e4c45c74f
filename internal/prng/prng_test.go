package prng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedHashWrapsAt32Bits(t *testing.T) {
	assert.Equal(t, int32(0), SeedHash(""))
	assert.Equal(t, int32(97), SeedHash("a"))
	assert.Equal(t, int32(657029983), SeedHash("marie-curiosity-Oui bien-20"))

	// long seeds overflow int32 many times over and must still be stable
	long := "abcdefghijklmnopqrstuvwxyz0123456789-ex_crush-J'ai des doutes-50"
	assert.Equal(t, SeedHash(long), SeedHash(long))
}

func TestNextKnownSequence(t *testing.T) {
	cases := []struct {
		seed string
		raw  []int64
	}{
		{seed: "a", raw: []int64{1814292358, 326670407, 1453893748, 115032477}},
		{seed: "marie-curiosity-Oui bien-20", raw: []int64{1522182572, 1748293237, 190129674, 982806139}},
		{seed: "", raw: []int64{12345, 1406932606, 654583775, 1449466924}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.seed, func(t *testing.T) {
			src := New(tc.seed)
			for i, want := range tc.raw {
				got := src.Next()
				require.InDelta(t, float64(want)/float64(1<<31), got, 0, "draw %d", i)
			}
		})
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	a := New("léa-friend-Peut-être-7")
	b := New("léa-friend-Peut-être-7")
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Next(), b.Next(), "draw %d", i)
	}
}

func TestNextStaysInUnitInterval(t *testing.T) {
	src := New("range-check")
	for i := 0; i < 100000; i++ {
		v := src.Next()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestIntnBounds(t *testing.T) {
	src := New("intn")
	for _, n := range []int{1, 3, 4, 8, 9, 16, 60} {
		for i := 0; i < 2000; i++ {
			v := src.Intn(n)
			require.GreaterOrEqual(t, v, 0)
			require.Less(t, v, n)
		}
	}
	assert.Equal(t, 0, src.Intn(0))
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New("marie-curiosity-Oui bien-20")
	b := New("marie-curiosity-Oui bien-21")
	assert.NotEqual(t, a.Next(), b.Next())
}
