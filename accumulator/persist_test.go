package accumulator

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bren2010/esa/db/memory"
)

func TestPersistRestore(t *testing.T) {
	a := newTestAccumulator(t, 3, 5, 11)
	store := memory.NewAccumulatorStore()
	require.NoError(t, a.Persist(store))
	assert.Equal(t, 1, store.Commits)

	b, err := Restore(store)
	require.NoError(t, err)
	assert.Equal(t, a.Elements(), b.Elements())
	assert.True(t, a.Value().Equal(b.Value()))
	assert.Equal(t, a.Suite().Id(), b.Suite().Id())
	assert.Zero(t, a.Params().Modulus.Cmp(b.Params().Modulus))

	// Proofs from one verify against the other.
	proof := a.GenerateMembershipProof(big.NewInt(5))
	assert.True(t, b.VerifyMembershipProof(proof, big.NewInt(5)))
}

func TestPersistRemovesStaleElements(t *testing.T) {
	a := newTestAccumulator(t, 3, 5)
	store := memory.NewAccumulatorStore()
	require.NoError(t, a.Persist(store))

	require.NoError(t, a.Remove(big.NewInt(3)))
	require.NoError(t, a.Persist(store))
	assert.Len(t, store.Elements, 1)

	b, err := Restore(store)
	require.NoError(t, err)
	assert.Equal(t, ints(5), b.Elements())
}

func TestRestoreErrors(t *testing.T) {
	store := memory.NewAccumulatorStore()
	_, err := Restore(store)
	assert.True(t, errors.Is(err, ErrNoParams))

	a := newTestAccumulator(t, 3, 5)
	require.NoError(t, a.Persist(store))
	require.NoError(t, store.PutElement(big.NewInt(7).Bytes()))
	_, err = Restore(store)
	assert.True(t, errors.Is(err, ErrValueMismatch))

	store.Params = []byte{0xff}
	_, err = Restore(store)
	assert.Error(t, err)
}

func TestRestoreWithoutValue(t *testing.T) {
	a := newTestAccumulator(t, 2, 4)
	store := memory.NewAccumulatorStore()
	require.NoError(t, a.Persist(store))
	store.Value = nil

	b, err := Restore(store)
	require.NoError(t, err)
	assert.True(t, a.Value().Equal(b.Value()))
	assertInvariant(t, b)
}
