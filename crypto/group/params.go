package group

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

// MinModulusBits is the smallest modulus size accepted by GenerateParams.
// Anything this small is only suitable for tests.
const MinModulusBits = 64

const primalityRounds = 40

var (
	// ErrInvalidParams is returned when a modulus or generator is rejected.
	ErrInvalidParams = errors.New("invalid group parameters")

	two = big.NewInt(2)
)

// Params are the public parameters of an accumulator: a prime modulus and a
// generator of the multiplicative group modulo it.
type Params struct {
	Modulus   *big.Int
	Generator Element
}

// Order returns the order of the multiplicative group, which is modulus-1.
// Exponents only matter modulo this value.
func (p *Params) Order() *big.Int {
	return new(big.Int).Sub(p.Modulus, one)
}

// Identity returns the identity element of the group.
func (p *Params) Identity() Element { return Identity(p.Modulus) }

// NewParams validates a modulus and generator supplied from configuration. If
// `generator` is nil, the deterministic generator for `modulus` is used.
func NewParams(modulus, generator *big.Int) (*Params, error) {
	if modulus == nil || modulus.BitLen() < MinModulusBits {
		return nil, errors.Wrapf(ErrInvalidParams, "modulus must have at least %v bits", MinModulusBits)
	} else if !modulus.ProbablyPrime(primalityRounds) {
		return nil, errors.Wrap(ErrInvalidParams, "modulus is not prime")
	}
	if generator == nil {
		g, err := Generator(modulus)
		if err != nil {
			return nil, err
		}
		return &Params{Modulus: new(big.Int).Set(modulus), Generator: g}, nil
	}

	if generator.Cmp(one) <= 0 || generator.Cmp(modulus) >= 0 {
		return nil, errors.Wrap(ErrInvalidParams, "generator out of range")
	}
	g := NewElement(generator, modulus)
	if g.Power(two).Equal(Identity(modulus)) {
		return nil, errors.Wrap(ErrInvalidParams, "generator has order at most 2")
	}
	return &Params{Modulus: new(big.Int).Set(modulus), Generator: g}, nil
}

// Generator returns the smallest primitive root of a safe prime `modulus`.
// For a safe prime p = 2q+1, g generates the full group exactly when
// g^2 != 1 and g^q != 1, so its order is p-1.
func Generator(modulus *big.Int) (Element, error) {
	q := new(big.Int).Rsh(modulus, 1)
	if !q.ProbablyPrime(primalityRounds) {
		return Element{}, errors.Wrap(ErrInvalidParams, "modulus is not a safe prime, a generator must be supplied")
	}
	id := Identity(modulus)
	for h := big.NewInt(2); h.Cmp(modulus) < 0; h.Add(h, one) {
		g := NewElement(h, modulus)
		if !g.Power(two).Equal(id) && !g.Power(q).Equal(id) {
			return g, nil
		}
	}
	return Element{}, errors.Wrap(ErrInvalidParams, "no generator found")
}

// GenerateParams generates a fresh safe prime of the given bit length and its
// deterministic generator.
func GenerateParams(bits int) (*Params, error) {
	return generateParams(rand.Reader, bits)
}

func generateParams(r io.Reader, bits int) (*Params, error) {
	if bits < MinModulusBits {
		return nil, errors.Wrapf(ErrInvalidParams, "modulus must have at least %v bits", MinModulusBits)
	}
	p, err := SafePrime(r, bits)
	if err != nil {
		return nil, err
	}
	g, err := Generator(p)
	if err != nil {
		return nil, err
	}
	return &Params{Modulus: p, Generator: g}, nil
}

// SafePrime returns a prime p of exactly `bits` bits such that (p-1)/2 is
// also prime.
func SafePrime(r io.Reader, bits int) (*big.Int, error) {
	for {
		q, err := rand.Prime(r, bits-1)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate prime")
		}
		p := new(big.Int).Lsh(q, 1)
		p.Add(p, one)
		if p.BitLen() == bits && p.ProbablyPrime(primalityRounds) {
			return p, nil
		}
	}
}

// RandomExponent returns a uniformly random integer in [1, modulus-1].
func RandomExponent(r io.Reader, modulus *big.Int) (*big.Int, error) {
	bound := new(big.Int).Sub(modulus, one)
	x, err := rand.Int(r, bound)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sample random exponent")
	}
	return x.Add(x, one), nil
}
