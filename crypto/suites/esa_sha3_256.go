package suites

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// ESASha3_256 derives challenges with SHA3-256.
type ESASha3_256 struct{}

var _ CipherSuite = ESASha3_256{}

func (s ESASha3_256) Id() uint16      { return 0x02 }
func (s ESASha3_256) Name() string    { return "sha3-256" }
func (s ESASha3_256) Hash() hash.Hash { return sha3.New256() }
func (s ESASha3_256) HashSize() int   { return 32 }
