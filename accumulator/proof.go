package accumulator

import (
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/Bren2010/esa/accumulator/structs"
	"github.com/Bren2010/esa/crypto/group"
	"github.com/Bren2010/esa/crypto/suites"
)

// challenge computes H(C || A || statement) mod p, where C and A are encoded
// as decimal strings.
func challenge(cs suites.CipherSuite, params *group.Params, commitment, value group.Element, stmt []byte) *big.Int {
	h := cs.Hash()
	h.Write([]byte(commitment.Value().String()))
	h.Write([]byte(value.Value().String()))
	h.Write(stmt)

	c := new(big.Int).SetBytes(h.Sum(nil))
	return c.Mod(c, params.Modulus)
}

// Prove returns a proof of `stmt` against the current accumulator value. If
// the statement does not hold for the current set, the returned proof has
// Valid set to false and carries nothing else.
func (a *Accumulator) Prove(stmt Statement) *structs.Proof {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.prove(stmt)
}

func (a *Accumulator) prove(stmt Statement) *structs.Proof {
	proof := &structs.Proof{Kind: stmt.Kind()}
	if !stmt.wellFormed() || !stmt.holds(a.contains) {
		log.WithField("kind", stmt.Kind()).Debug("statement does not hold, returning invalid proof")
		return proof
	}

	r, err := group.RandomExponent(a.rand, a.params.Modulus)
	if err != nil {
		log.Errorf("failed to generate proof: %v", err)
		return proof
	}
	commitment := a.params.Generator.Power(r)
	c := challenge(a.suite, a.params, commitment, a.value, stmt.transcript())

	// s = r + c*x, reduced modulo the group order so that g^s is unchanged.
	s := new(big.Int).Mul(c, stmt.exponent(a.params))
	s.Add(s, r)
	s.Mod(s, a.params.Order())

	proof.Commitment = commitment
	proof.Challenge = c
	proof.Response = s
	proof.Randomness = r
	proof.Valid = true
	return proof
}

// GenerateMembershipProof proves that `e` is in the set.
func (a *Accumulator) GenerateMembershipProof(e *big.Int) *structs.Proof {
	return a.Prove(Membership{Element: e})
}

// GenerateNonMembershipProof proves that `e` is not in the set.
func (a *Accumulator) GenerateNonMembershipProof(e *big.Int) *structs.Proof {
	return a.Prove(NonMembership{Element: e})
}

// GenerateSubsetProof proves that every element of `subset` is in the set.
func (a *Accumulator) GenerateSubsetProof(subset []*big.Int) *structs.Proof {
	return a.Prove(Subset{Elements: subset})
}

// GenerateBatchMembershipProof proves that every one of `elems` is in the set.
func (a *Accumulator) GenerateBatchMembershipProof(elems []*big.Int) *structs.Proof {
	return a.Prove(BatchMembership{Elements: elems})
}

// Verifier checks proofs and witnesses using only public information: the
// group parameters, the cipher suite, and an accumulator value.
type Verifier struct {
	Suite  suites.CipherSuite
	Params *group.Params
	Value  group.Element
}

// Verifier returns a verifier for the current accumulator value.
func (a *Accumulator) Verifier() *Verifier {
	return &Verifier{Suite: a.suite, Params: a.params, Value: a.Value()}
}

// VerifyWitness returns true if w * g^e equals the accumulator value.
func (v *Verifier) VerifyWitness(w group.Element, e *big.Int) bool {
	if checkElement(e) != nil {
		return false
	}
	return w.Multiply(v.Params.Generator.Power(e)).Equal(v.Value)
}

// Verify returns true if `proof` is a valid proof of `stmt`: it must be
// marked valid, be of the statement's kind, carry the challenge derived from
// its commitment and the verifier's accumulator value, and satisfy the
// Schnorr relation.
func (v *Verifier) Verify(proof *structs.Proof, stmt Statement) bool {
	if proof == nil || !proof.Valid || proof.Kind != stmt.Kind() || !stmt.wellFormed() {
		return false
	} else if !v.inGroup(proof.Commitment) || proof.Challenge == nil {
		return false
	}
	expected := challenge(v.Suite, v.Params, proof.Commitment, v.Value, stmt.transcript())
	if expected.Cmp(proof.Challenge) != 0 {
		log.WithField("kind", proof.Kind).Debug("challenge mismatch")
		return false
	}
	return v.relation(proof, stmt.exponent(v.Params))
}

func (v *Verifier) inGroup(e group.Element) bool {
	return e.Valid() && e.Modulus().Cmp(v.Params.Modulus) == 0
}

// relation checks g^s == C * g^(c*x).
func (v *Verifier) relation(proof *structs.Proof, x *big.Int) bool {
	if !v.inGroup(proof.Commitment) || proof.Challenge == nil || proof.Response == nil {
		return false
	}
	cx := new(big.Int).Mul(proof.Challenge, x)
	cx.Mod(cx, v.Params.Order())

	g := v.Params.Generator
	left := g.Power(proof.Response)
	right := proof.Commitment.Multiply(g.Power(cx))
	return left.Equal(right)
}

// VerifyMembershipProof verifies a proof that `e` is in the set.
func (v *Verifier) VerifyMembershipProof(proof *structs.Proof, e *big.Int) bool {
	return v.Verify(proof, Membership{Element: e})
}

// VerifyNonMembershipProof verifies a proof that `e` is not in the set.
func (v *Verifier) VerifyNonMembershipProof(proof *structs.Proof, e *big.Int) bool {
	return v.Verify(proof, NonMembership{Element: e})
}

// VerifySubsetProof verifies a proof that `subset` is contained in the set.
func (v *Verifier) VerifySubsetProof(proof *structs.Proof, subset []*big.Int) bool {
	return v.Verify(proof, Subset{Elements: subset})
}

// VerifyBatchMembershipProof verifies a proof that all of `elems` are in the set.
func (v *Verifier) VerifyBatchMembershipProof(proof *structs.Proof, elems []*big.Int) bool {
	return v.Verify(proof, BatchMembership{Elements: elems})
}

// VerifyMembershipProof verifies a membership proof against the current
// accumulator value.
func (a *Accumulator) VerifyMembershipProof(proof *structs.Proof, e *big.Int) bool {
	return a.Verifier().VerifyMembershipProof(proof, e)
}

// VerifyNonMembershipProof verifies a non-membership proof against the current
// accumulator value.
func (a *Accumulator) VerifyNonMembershipProof(proof *structs.Proof, e *big.Int) bool {
	return a.Verifier().VerifyNonMembershipProof(proof, e)
}

// VerifySubsetProof verifies a subset proof against the current accumulator value.
func (a *Accumulator) VerifySubsetProof(proof *structs.Proof, subset []*big.Int) bool {
	return a.Verifier().VerifySubsetProof(proof, subset)
}

// VerifyBatchMembershipProof verifies a batch membership proof against the current
// accumulator value.
func (a *Accumulator) VerifyBatchMembershipProof(proof *structs.Proof, elems []*big.Int) bool {
	return a.Verifier().VerifyBatchMembershipProof(proof, elems)
}
