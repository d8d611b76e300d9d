package suites

import (
	"crypto/sha256"
	"hash"
)

// ESASha256 derives challenges with SHA-256.
type ESASha256 struct{}

var _ CipherSuite = ESASha256{}

func (s ESASha256) Id() uint16      { return 0x01 }
func (s ESASha256) Name() string    { return "sha256" }
func (s ESASha256) Hash() hash.Hash { return sha256.New() }
func (s ESASha256) HashSize() int   { return sha256.Size }
