package group

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testModulus, _ = new(big.Int).SetString("fffffffffffffa43", 16)

func TestElementArithmetic(t *testing.T) {
	g := NewElement(big.NewInt(2), testModulus)
	require.True(t, g.Valid())

	a := g.Power(big.NewInt(10))
	b := g.Power(big.NewInt(32))
	assert.True(t, a.Multiply(b).Equal(g.Power(big.NewInt(42))))

	inv, err := a.Inverse()
	require.NoError(t, err)
	assert.True(t, a.Multiply(inv).Equal(Identity(testModulus)))

	assert.Equal(t, int64(1024), a.Value().Int64())
	assert.True(t, g.Power(big.NewInt(0)).Equal(Identity(testModulus)))
}

func TestElementReducesValue(t *testing.T) {
	x := new(big.Int).Add(testModulus, big.NewInt(5))
	e := NewElement(x, testModulus)
	assert.Equal(t, int64(5), e.Value().Int64())
}

func TestInvalidPropagates(t *testing.T) {
	var invalid Element
	g := NewElement(big.NewInt(2), testModulus)

	assert.False(t, invalid.Valid())
	assert.Nil(t, invalid.Value())
	assert.False(t, g.Multiply(invalid).Valid())
	assert.False(t, invalid.Power(big.NewInt(3)).Valid())
	assert.False(t, g.Power(big.NewInt(-1)).Valid())
	assert.False(t, invalid.Equal(invalid))

	_, err := invalid.Inverse()
	assert.True(t, errors.Is(err, ErrInvalidElement))

	other := NewElement(big.NewInt(2), big.NewInt(23))
	assert.False(t, g.Multiply(other).Valid())
	assert.False(t, g.Equal(other))
}

func TestInverseOfZero(t *testing.T) {
	zero := NewElement(big.NewInt(0), testModulus)
	_, err := zero.Inverse()
	assert.True(t, errors.Is(err, ErrArithmetic))
}

func TestGenerator(t *testing.T) {
	g, err := Generator(testModulus)
	require.NoError(t, err)
	assert.Equal(t, int64(2), g.Value().Int64())

	q := new(big.Int).Rsh(testModulus, 1)
	assert.False(t, g.Power(q).Equal(Identity(testModulus)))

	p128, _ := new(big.Int).SetString("ffffffffffffffffffffffffffffc3a7", 16)
	g, err = Generator(p128)
	require.NoError(t, err)
	assert.Equal(t, int64(5), g.Value().Int64())
}

func TestNewParams(t *testing.T) {
	params, err := NewParams(testModulus, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), params.Generator.Value().Int64())
	assert.Equal(t, new(big.Int).Sub(testModulus, big.NewInt(1)), params.Order())

	_, err = NewParams(testModulus, big.NewInt(1))
	assert.True(t, errors.Is(err, ErrInvalidParams))

	minusOne := new(big.Int).Sub(testModulus, big.NewInt(1))
	_, err = NewParams(testModulus, minusOne)
	assert.True(t, errors.Is(err, ErrInvalidParams))

	notPrime := new(big.Int).Add(testModulus, big.NewInt(1))
	_, err = NewParams(notPrime, nil)
	assert.True(t, errors.Is(err, ErrInvalidParams))

	_, err = NewParams(big.NewInt(23), nil)
	assert.True(t, errors.Is(err, ErrInvalidParams))
}

func TestGenerateParams(t *testing.T) {
	params, err := GenerateParams(MinModulusBits)
	require.NoError(t, err)
	assert.Equal(t, MinModulusBits, params.Modulus.BitLen())
	assert.True(t, params.Modulus.ProbablyPrime(20))
	assert.True(t, new(big.Int).Rsh(params.Modulus, 1).ProbablyPrime(20))
	assert.True(t, params.Generator.Valid())

	_, err = GenerateParams(32)
	assert.True(t, errors.Is(err, ErrInvalidParams))
}

func TestRandomExponent(t *testing.T) {
	for range 100 {
		r, err := RandomExponent(rand.Reader, big.NewInt(5))
		require.NoError(t, err)
		assert.True(t, r.Sign() > 0 && r.Cmp(big.NewInt(5)) < 0)
	}
}
