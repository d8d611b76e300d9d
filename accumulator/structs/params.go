package structs

import (
	"bytes"
	"encoding/binary"

	"github.com/Bren2010/esa/crypto/group"
	"github.com/Bren2010/esa/crypto/suites"
)

// Params is the stored form of an accumulator's public configuration.
type Params struct {
	Suite suites.CipherSuite
	group.Params
}

func NewParams(buf *bytes.Buffer) (*Params, error) {
	var id uint16
	if err := binary.Read(buf, binary.BigEndian, &id); err != nil {
		return nil, err
	}
	cs, err := suites.FromId(id)
	if err != nil {
		return nil, err
	}
	modulus, err := readInt(buf)
	if err != nil {
		return nil, err
	}
	generator, err := readInt(buf)
	if err != nil {
		return nil, err
	}
	params, err := group.NewParams(modulus, generator)
	if err != nil {
		return nil, err
	}
	return &Params{Suite: cs, Params: *params}, nil
}

func (p *Params) Marshal(buf *bytes.Buffer) error {
	if err := binary.Write(buf, binary.BigEndian, p.Suite.Id()); err != nil {
		return err
	} else if err := writeInt(buf, p.Modulus, "modulus"); err != nil {
		return err
	} else if err := writeInt(buf, p.Generator.Value(), "generator"); err != nil {
		return err
	}
	return nil
}

// ParseParams decodes parameters that were encoded with Marshal.
func ParseParams(raw []byte) (*Params, error) {
	buf := bytes.NewBuffer(raw)
	params, err := NewParams(buf)
	if err != nil {
		return nil, err
	}
	return params, finish(buf)
}
