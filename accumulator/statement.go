package accumulator

import (
	"math/big"
	"strings"

	"github.com/Bren2010/esa/accumulator/structs"
	"github.com/Bren2010/esa/crypto/group"
)

// Statement is the public claim a proof is about. It is implemented only by
// the types in this package: Membership, NonMembership, Subset,
// BatchMembership and SetOperation.
//
// Every kind of proof uses the same Schnorr relation g^s = C * g^(c*x); a
// statement decides the exponent x and the bytes mixed into the challenge.
type Statement interface {
	Kind() structs.ProofKind
	// wellFormed returns false if the statement has nil or negative elements,
	// or names an unknown operation.
	wellFormed() bool
	// holds returns true if the prover may prove the statement against a set
	// with the given membership test. The statement must be well-formed.
	holds(contains func(*big.Int) bool) bool
	exponent(params *group.Params) *big.Int
	transcript() []byte
}

// Membership claims that Element is in the set.
type Membership struct{ Element *big.Int }

func (s Membership) Kind() structs.ProofKind { return structs.Membership }

func (s Membership) wellFormed() bool                        { return checkElement(s.Element) == nil }
func (s Membership) holds(contains func(*big.Int) bool) bool { return contains(s.Element) }

func (s Membership) exponent(*group.Params) *big.Int { return new(big.Int).Set(s.Element) }
func (s Membership) transcript() []byte              { return []byte(s.Element.String()) }

// NonMembership claims that Element is not in the set.
type NonMembership struct{ Element *big.Int }

func (s NonMembership) Kind() structs.ProofKind { return structs.NonMembership }

func (s NonMembership) wellFormed() bool                        { return checkElement(s.Element) == nil }
func (s NonMembership) holds(contains func(*big.Int) bool) bool { return !contains(s.Element) }

func (s NonMembership) exponent(params *group.Params) *big.Int {
	return new(big.Int).Sub(params.Modulus, s.Element)
}

func (s NonMembership) transcript() []byte { return []byte(s.Element.String()) }

// Subset claims that every one of Elements is in the set. Elements are
// treated as a set: order and repetition do not affect the proof.
type Subset struct{ Elements []*big.Int }

func (s Subset) Kind() structs.ProofKind { return structs.Subset }

func (s Subset) canonical() []*big.Int {
	out := canonicalize(s.Elements)
	dedup := out[:0]
	for _, e := range out {
		if len(dedup) == 0 || e.Cmp(dedup[len(dedup)-1]) != 0 {
			dedup = append(dedup, e)
		}
	}
	return dedup
}

func (s Subset) wellFormed() bool                        { return allWellFormed(s.Elements) }
func (s Subset) holds(contains func(*big.Int) bool) bool { return allMembers(s.Elements, contains) }

func (s Subset) exponent(params *group.Params) *big.Int {
	return product(s.canonical(), params.Modulus)
}

func (s Subset) transcript() []byte { return joinElements(s.canonical()) }

// BatchMembership claims that every one of Elements is in the set. Order does
// not affect the proof, but repeated elements do.
type BatchMembership struct{ Elements []*big.Int }

func (s BatchMembership) Kind() structs.ProofKind { return structs.BatchMembership }

func (s BatchMembership) wellFormed() bool { return allWellFormed(s.Elements) }

func (s BatchMembership) holds(contains func(*big.Int) bool) bool {
	return allMembers(s.Elements, contains)
}

func (s BatchMembership) exponent(params *group.Params) *big.Int {
	return product(canonicalize(s.Elements), params.Modulus)
}

func (s BatchMembership) transcript() []byte { return joinElements(canonicalize(s.Elements)) }

// SetOperation claims that a set operation of kind Op on the accumulated set
// produced a result with Cardinality elements.
type SetOperation struct {
	Op          structs.ProofKind
	Cardinality int
}

func (s SetOperation) Kind() structs.ProofKind { return s.Op }

func (s SetOperation) wellFormed() bool {
	return s.Op.IsSetOperation() && s.Cardinality >= 0
}

func (s SetOperation) holds(func(*big.Int) bool) bool { return true }

func (s SetOperation) exponent(*group.Params) *big.Int { return big.NewInt(int64(s.Cardinality)) }
func (s SetOperation) transcript() []byte              { return []byte(s.Op.String()) }

func allWellFormed(elems []*big.Int) bool {
	for _, e := range elems {
		if checkElement(e) != nil {
			return false
		}
	}
	return true
}

func allMembers(elems []*big.Int, contains func(*big.Int) bool) bool {
	for _, e := range elems {
		if !contains(e) {
			return false
		}
	}
	return true
}

// canonicalize returns a sorted copy of `elems`.
func canonicalize(elems []*big.Int) []*big.Int {
	out := make([]*big.Int, len(elems))
	copy(out, elems)
	sortElements(out)
	return out
}

func product(elems []*big.Int, modulus *big.Int) *big.Int {
	out := big.NewInt(1)
	for _, e := range elems {
		out.Mul(out, e)
		out.Mod(out, modulus)
	}
	return out
}

func joinElements(elems []*big.Int) []byte {
	strs := make([]string, len(elems))
	for i, e := range elems {
		strs[i] = e.String()
	}
	return []byte(strings.Join(strs, ","))
}
