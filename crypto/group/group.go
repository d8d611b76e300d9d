// Package group implements arithmetic in the multiplicative group of integers
// modulo a prime.
package group

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

var (
	// ErrArithmetic is returned when a modular inverse does not exist.
	ErrArithmetic = errors.New("element is not invertible")
	// ErrInvalidElement is returned when an operation is given an invalid
	// element, or two elements from different groups.
	ErrInvalidElement = errors.New("invalid group element")

	one = big.NewInt(1)
)

// Element is a member of (Z/nZ)*. The zero value is an invalid element.
//
// Elements are immutable: every operation returns a new Element and the
// underlying integers are never modified after construction.
type Element struct {
	value   *big.Int
	modulus *big.Int
	valid   bool
}

// NewElement returns the element `value mod modulus`.
func NewElement(value, modulus *big.Int) Element {
	if modulus == nil || modulus.Cmp(one) <= 0 || value == nil {
		return Element{}
	}
	v := new(big.Int).Mod(value, modulus)
	return Element{value: v, modulus: new(big.Int).Set(modulus), valid: true}
}

// Identity returns the identity element of the group modulo `modulus`.
func Identity(modulus *big.Int) Element {
	return NewElement(one, modulus)
}

// Valid returns true if the element carries a meaningful value.
func (e Element) Valid() bool { return e.valid }

// Value returns a copy of the element's value, or nil if invalid.
func (e Element) Value() *big.Int {
	if !e.valid {
		return nil
	}
	return new(big.Int).Set(e.value)
}

// Modulus returns a copy of the element's modulus, or nil if invalid.
func (e Element) Modulus() *big.Int {
	if !e.valid {
		return nil
	}
	return new(big.Int).Set(e.modulus)
}

func (e Element) sameGroup(other Element) bool {
	return e.valid && other.valid && e.modulus.Cmp(other.modulus) == 0
}

// Multiply returns e*other. The output is invalid if either input is invalid
// or the two elements belong to different groups.
func (e Element) Multiply(other Element) Element {
	if !e.sameGroup(other) {
		return Element{}
	}
	v := new(big.Int).Mul(e.value, other.value)
	v.Mod(v, e.modulus)
	return Element{value: v, modulus: e.modulus, valid: true}
}

// Power returns e^exponent. Negative exponents are not supported and produce
// an invalid element.
func (e Element) Power(exponent *big.Int) Element {
	if !e.valid || exponent == nil || exponent.Sign() < 0 {
		return Element{}
	}
	v := new(big.Int).Exp(e.value, exponent, e.modulus)
	return Element{value: v, modulus: e.modulus, valid: true}
}

// Inverse returns e^-1.
func (e Element) Inverse() (Element, error) {
	if !e.valid {
		return Element{}, ErrInvalidElement
	}
	v := new(big.Int).ModInverse(e.value, e.modulus)
	if v == nil {
		return Element{}, errors.Wrapf(ErrArithmetic, "%v mod %v", e.value, e.modulus)
	}
	return Element{value: v, modulus: e.modulus, valid: true}, nil
}

// Equal returns true if both elements are valid and have the same value and
// modulus.
func (e Element) Equal(other Element) bool {
	return e.sameGroup(other) && e.value.Cmp(other.value) == 0
}

func (e Element) String() string {
	if !e.valid {
		return "invalid"
	}
	return fmt.Sprintf("%v (mod %v)", e.value, e.modulus)
}
