// Package commitments implements the per-element commitment g^e that an
// accumulator multiplies into its value.
package commitments

import (
	"math/big"

	"github.com/Bren2010/esa/crypto/group"
)

// Commit returns the commitment to `element` under the generator in
// `params`. The output is invalid if `element` is negative.
func Commit(params *group.Params, element *big.Int) group.Element {
	return params.Generator.Power(element)
}

// Verify returns true if `commitment` is a commitment to `element`.
func Verify(params *group.Params, commitment group.Element, element *big.Int) bool {
	return commitment.Equal(Commit(params, element))
}
