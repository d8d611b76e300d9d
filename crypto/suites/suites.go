// Package suites implements each supported cipher suite.
package suites

import (
	"hash"

	"github.com/pkg/errors"
)

// CipherSuite is the interface implemented by each supported cipher suite. A
// suite fixes the hash function used to derive Fiat-Shamir challenges, so a
// prover and verifier must agree on it.
type CipherSuite interface {
	Id() uint16
	// Name returns the name used to select the suite in configuration files.
	Name() string
	Hash() hash.Hash
	HashSize() int
}

var supported = []CipherSuite{ESASha256{}, ESASha3_256{}}

// Default returns the cipher suite used when none is configured.
func Default() CipherSuite { return ESASha256{} }

// FromId returns the cipher suite with the given identifier.
func FromId(id uint16) (CipherSuite, error) {
	for _, cs := range supported {
		if cs.Id() == id {
			return cs, nil
		}
	}
	return nil, errors.Errorf("unknown cipher suite id: %v", id)
}

// FromName returns the cipher suite with the given configuration name. An
// empty name selects the default suite.
func FromName(name string) (CipherSuite, error) {
	if name == "" {
		return Default(), nil
	}
	for _, cs := range supported {
		if cs.Name() == name {
			return cs, nil
		}
	}
	return nil, errors.Errorf("unknown cipher suite: %q", name)
}
