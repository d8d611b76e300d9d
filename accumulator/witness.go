package accumulator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/Bren2010/esa/crypto/commitments"
	"github.com/Bren2010/esa/crypto/group"
)

// GenerateWitness returns the membership witness for `e`: the product of the
// commitments of every other member. Multiplying it by g^e yields the
// accumulator value.
func (a *Accumulator) GenerateWitness(e *big.Int) (group.Element, error) {
	if err := checkElement(e); err != nil {
		return group.Element{}, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	k := key(e)
	if _, ok := a.elements[k]; !ok {
		return group.Element{}, errors.Wrapf(ErrNotFound, "%v", e)
	}
	w := a.params.Identity()
	for other, c := range a.commitments {
		if other != k {
			w = w.Multiply(c)
		}
	}
	return w, nil
}

// UpdateWitness brings a witness up to date after `e` was added to
// (isAddition) or removed from the set. It must be called once for each
// mutation that does not involve the witness's own element. A replacement is
// a removal followed by an addition.
func (a *Accumulator) UpdateWitness(w group.Element, e *big.Int, isAddition bool) (group.Element, error) {
	return UpdateWitness(a.params, w, e, isAddition)
}

// UpdateWitness is the stateless form of Accumulator.UpdateWitness, for
// witness holders that only know the group parameters.
func UpdateWitness(params *group.Params, w group.Element, e *big.Int, isAddition bool) (group.Element, error) {
	if err := checkElement(e); err != nil {
		return group.Element{}, err
	} else if !w.Valid() {
		return group.Element{}, group.ErrInvalidElement
	}
	c := commitments.Commit(params, e)
	if !isAddition {
		inv, err := c.Inverse()
		if err != nil {
			return group.Element{}, err
		}
		c = inv
	}
	out := w.Multiply(c)
	if !out.Valid() {
		return group.Element{}, errors.Wrap(group.ErrInvalidElement, "witness is from a different group")
	}
	return out, nil
}

// VerifyWitness returns true if `w` is a valid witness for `e` against the
// current accumulator value.
func (a *Accumulator) VerifyWitness(w group.Element, e *big.Int) bool {
	return a.Verifier().VerifyWitness(w, e)
}
