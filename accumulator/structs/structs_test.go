package structs

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bren2010/esa/crypto/group"
	"github.com/Bren2010/esa/crypto/suites"
)

var testModulus, _ = new(big.Int).SetString("fffffffffffffa43", 16)

func testProof() *Proof {
	g := group.NewElement(big.NewInt(2), testModulus)
	return &Proof{
		Kind:       Subset,
		Commitment: g.Power(big.NewInt(12345)),
		Challenge:  big.NewInt(987654321),
		Response:   big.NewInt(0),
		Auxiliary:  []group.Element{g, g.Power(big.NewInt(7))},
		Randomness: big.NewInt(12345),
		Valid:      true,
	}
}

func TestProofEncoding(t *testing.T) {
	proof := testProof()
	raw, err := Marshal(proof)
	require.NoError(t, err)
	assert.Equal(t, byte(Subset), raw[0], "kind must be encoded first")

	parsed, err := ParseProof(raw)
	require.NoError(t, err)
	assert.Equal(t, proof.Kind, parsed.Kind)
	assert.True(t, parsed.Valid)
	assert.True(t, proof.Commitment.Equal(parsed.Commitment))
	assert.Zero(t, proof.Challenge.Cmp(parsed.Challenge))
	assert.Zero(t, proof.Response.Cmp(parsed.Response))
	assert.Zero(t, proof.Randomness.Cmp(parsed.Randomness))
	require.Len(t, parsed.Auxiliary, 2)
	assert.True(t, proof.Auxiliary[1].Equal(parsed.Auxiliary[1]))
}

func TestPublicStripsRandomness(t *testing.T) {
	proof := testProof()
	public := proof.Public()
	assert.Nil(t, public.Randomness)
	assert.NotNil(t, proof.Randomness)

	raw, err := Marshal(public)
	require.NoError(t, err)
	parsed, err := ParseProof(raw)
	require.NoError(t, err)
	assert.Nil(t, parsed.Randomness)
}

func TestInvalidProofEncoding(t *testing.T) {
	raw, err := Marshal(&Proof{Kind: Membership})
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(Membership), 0}, raw)

	parsed, err := ParseProof(raw)
	require.NoError(t, err)
	assert.False(t, parsed.Valid)
	assert.Equal(t, Membership, parsed.Kind)
}

func TestProofDecodingErrors(t *testing.T) {
	raw, err := Marshal(testProof())
	require.NoError(t, err)

	_, err = ParseProof(raw[:len(raw)-1])
	assert.Error(t, err)
	_, err = ParseProof(append(raw, 0))
	assert.Error(t, err)
	_, err = ParseProof([]byte{0xff, 0})
	assert.Error(t, err)
	_, err = ParseProof([]byte{byte(Membership), 2})
	assert.Error(t, err)

	_, err = Marshal(&Proof{Kind: Membership, Valid: true})
	assert.Error(t, err)
}

func TestSetOperationResultEncoding(t *testing.T) {
	proof := testProof()
	proof.Kind = Union
	res := &SetOperationResult{
		ResultSet: []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(0)},
		Proof:     proof,
		Valid:     true,
	}
	buf := &bytes.Buffer{}
	require.NoError(t, res.Marshal(buf))

	parsed, err := ParseSetOperationResult(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	require.Len(t, parsed.ResultSet, 3)
	assert.Equal(t, int64(0), parsed.ResultSet[2].Int64())
	assert.Equal(t, Union, parsed.Proof.Kind)
}

func TestParamsEncoding(t *testing.T) {
	gp, err := group.NewParams(testModulus, nil)
	require.NoError(t, err)
	params := &Params{Suite: suites.ESASha3_256{}, Params: *gp}

	raw, err := Marshal(params)
	require.NoError(t, err)
	parsed, err := ParseParams(raw)
	require.NoError(t, err)
	assert.Equal(t, params.Suite.Id(), parsed.Suite.Id())
	assert.Zero(t, testModulus.Cmp(parsed.Modulus))
	assert.True(t, gp.Generator.Equal(parsed.Generator))
}

func TestProofKindNames(t *testing.T) {
	for kind, name := range kindNames {
		parsed, err := ParseProofKind(name)
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
		assert.Equal(t, name, kind.String())
	}
	_, err := ParseProofKind("superset")
	assert.Error(t, err)
	assert.True(t, Complement.IsSetOperation())
	assert.False(t, Subset.IsSetOperation())
}
