// Package structs implements the encoding and decoding of structures produced
// by an accumulator: proofs, set-operation results, and group parameters.
package structs

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/Bren2010/esa/crypto/group"
)

const (
	maxUint8  int = 255
	maxUint16 int = 65535
	maxUint32 int = 4294967295
)

func readU16Bytes(buf *bytes.Buffer) ([]byte, error) {
	var size uint16
	if err := binary.Read(buf, binary.BigEndian, &size); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	if _, err := io.ReadFull(buf, out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeU16Bytes(buf *bytes.Buffer, out []byte, name string) error {
	if len(out) > maxUint16 {
		return errors.New(name + " is too long to marshal")
	} else if err := binary.Write(buf, binary.BigEndian, uint16(len(out))); err != nil {
		return err
	} else if _, err := buf.Write(out); err != nil {
		return err
	}
	return nil
}

func readOptional(buf *bytes.Buffer) (bool, error) {
	present, err := buf.ReadByte()
	if err != nil {
		return false, err
	} else if present != 0 && present != 1 {
		return false, errors.New("read unexpected value in optional")
	}
	return present == 1, nil
}

func writeOptional(buf *bytes.Buffer, present bool) error {
	if present {
		return buf.WriteByte(1)
	}
	return buf.WriteByte(0)
}

// Integers are encoded as unsigned big-endian bytes with a 16-bit length
// prefix.
func readInt(buf *bytes.Buffer) (*big.Int, error) {
	raw, err := readU16Bytes(buf)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

func writeInt(buf *bytes.Buffer, x *big.Int, name string) error {
	if x == nil {
		return errors.New(name + " is missing")
	} else if x.Sign() < 0 {
		return errors.New(name + " is negative")
	}
	return writeU16Bytes(buf, x.Bytes(), name)
}

func readElement(buf *bytes.Buffer) (group.Element, error) {
	value, err := readInt(buf)
	if err != nil {
		return group.Element{}, err
	}
	modulus, err := readInt(buf)
	if err != nil {
		return group.Element{}, err
	}
	if value.Cmp(modulus) >= 0 {
		return group.Element{}, errors.New("group element is not reduced")
	}
	elem := group.NewElement(value, modulus)
	if !elem.Valid() {
		return group.Element{}, errors.New("invalid group element")
	}
	return elem, nil
}

func writeElement(buf *bytes.Buffer, elem group.Element, name string) error {
	if !elem.Valid() {
		return errors.New(name + " is not a valid group element")
	} else if err := writeInt(buf, elem.Value(), name); err != nil {
		return err
	} else if err := writeInt(buf, elem.Modulus(), name+" modulus"); err != nil {
		return err
	}
	return nil
}

type Marshaller interface {
	Marshal(buf *bytes.Buffer) error
}

// Marshal takes a structure as input and returns the marshalled struct as a
// byte slice.
func Marshal(x Marshaller) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := x.Marshal(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func finish(buf *bytes.Buffer) error {
	if buf.Len() != 0 {
		return errors.Errorf("unexpected %v trailing bytes", buf.Len())
	}
	return nil
}
