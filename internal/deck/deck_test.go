package deck

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mathRandSource adapts math/rand.Rand to Source so tests get
// deterministic, seedable shuffles.
type mathRandSource struct{ r *rand.Rand }

func (s mathRandSource) Intn(n int) int { return s.r.Intn(n) }

func newSeededDeck(seed int64) *Deck {
	return NewWithSource(mathRandSource{rand.New(rand.NewSource(seed))})
}

func TestNewWithSource_Produces52UniqueCards(t *testing.T) {
	d := newSeededDeck(1)
	seen := make(map[Card]bool, 52)
	for i := 0; i < 52; i++ {
		c, err := d.Deal()
		require.NoError(t, err)
		assert.False(t, seen[c], "duplicate card dealt: %v", c)
		seen[c] = true
	}
	assert.Len(t, seen, 52)
}

func TestDeal_ExhaustionIsFatalPerSpecButReturnsErrorHere(t *testing.T) {
	d := newSeededDeck(2)
	_, err := d.DealN(52)
	require.NoError(t, err)

	_, err = d.Deal()
	assert.ErrorIs(t, err, ErrDeckExhausted)
	assert.Equal(t, 0, d.Remaining())
}

func TestDealN_EquivalentToSequentialDeals(t *testing.T) {
	a := newSeededDeck(42)
	b := newSeededDeck(42)

	got, err := a.DealN(7)
	require.NoError(t, err)

	want := make([]Card, 7)
	for i := range want {
		c, err := b.Deal()
		require.NoError(t, err)
		want[i] = c
	}

	assert.Equal(t, want, got)
}

func TestDealN_ExhaustedWhenNotEnoughCardsRemain(t *testing.T) {
	d := newSeededDeck(3)
	_, err := d.DealN(50)
	require.NoError(t, err)

	_, err = d.DealN(3)
	assert.ErrorIs(t, err, ErrDeckExhausted)
	// A failed DealN must not partially advance the cursor.
	assert.Equal(t, 2, d.Remaining())
}

func TestBurn_AdvancesCursorWithoutReturningCard(t *testing.T) {
	d := newSeededDeck(4)
	before := d.Remaining()
	require.NoError(t, d.Burn())
	assert.Equal(t, before-1, d.Remaining())
}

func TestDeterministicSourceReproducesExactShuffle(t *testing.T) {
	a := newSeededDeck(7)
	b := newSeededDeck(7)

	ca, _ := a.DealN(52)
	cb, _ := b.DealN(52)
	assert.Equal(t, ca, cb, "identical seeds must yield identical shuffles")
}

func TestNewDeck_UsesCryptoSourceAndShufflesFullDeck(t *testing.T) {
	d := NewDeck()
	assert.Equal(t, 52, d.Remaining())
	cards, err := d.DealN(52)
	require.NoError(t, err)

	seen := make(map[Card]bool, 52)
	for _, c := range cards {
		assert.False(t, seen[c])
		seen[c] = true
	}
	assert.Len(t, seen, 52)
}

func TestCryptoSourceRejectsNonPositiveN(t *testing.T) {
	assert.Panics(t, func() { cryptoSource{}.Intn(0) })
}
