package structs

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/Bren2010/esa/crypto/group"
)

// ProofKind identifies the statement a proof is about.
type ProofKind byte

const (
	Membership ProofKind = iota + 1
	NonMembership
	Union
	Intersection
	Difference
	Complement
	Subset
	BatchMembership
)

var kindNames = map[ProofKind]string{
	Membership:      "membership",
	NonMembership:   "non-membership",
	Union:           "union",
	Intersection:    "intersection",
	Difference:      "difference",
	Complement:      "complement",
	Subset:          "subset",
	BatchMembership: "batch-membership",
}

func (k ProofKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsSetOperation returns true for the kinds produced by set algebra.
func (k ProofKind) IsSetOperation() bool {
	return k == Union || k == Intersection || k == Difference || k == Complement
}

// ParseProofKind returns the kind with the given name.
func ParseProofKind(name string) (ProofKind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, errors.Errorf("unknown proof kind: %q", name)
}

// Proof is a non-interactive Schnorr-style proof. A proof with Valid set to
// false carries only its kind: it signals that the prover's precondition did
// not hold.
type Proof struct {
	Kind       ProofKind
	Commitment group.Element
	Challenge  *big.Int
	Response   *big.Int
	Auxiliary  []group.Element
	// Randomness is the prover's nonce. It is stripped by Public and should
	// not be sent to a verifier.
	Randomness *big.Int
	Valid      bool
}

// Public returns a copy of the proof without the prover's nonce.
func (p *Proof) Public() *Proof {
	out := *p
	out.Randomness = nil
	out.Auxiliary = append([]group.Element(nil), p.Auxiliary...)
	return &out
}

func NewProof(buf *bytes.Buffer) (*Proof, error) {
	rawKind, err := buf.ReadByte()
	if err != nil {
		return nil, err
	}
	kind := ProofKind(rawKind)
	if _, ok := kindNames[kind]; !ok {
		return nil, errors.Errorf("unknown proof kind: %v", rawKind)
	}
	valid, err := readOptional(buf)
	if err != nil {
		return nil, err
	} else if !valid {
		return &Proof{Kind: kind}, nil
	}

	commitment, err := readElement(buf)
	if err != nil {
		return nil, errors.Wrap(err, "commitment")
	}
	challenge, err := readInt(buf)
	if err != nil {
		return nil, errors.Wrap(err, "challenge")
	}
	response, err := readInt(buf)
	if err != nil {
		return nil, errors.Wrap(err, "response")
	}

	numAux, err := buf.ReadByte()
	if err != nil {
		return nil, err
	}
	var aux []group.Element
	for range int(numAux) {
		elem, err := readElement(buf)
		if err != nil {
			return nil, errors.Wrap(err, "auxiliary data")
		}
		aux = append(aux, elem)
	}

	var randomness *big.Int
	if present, err := readOptional(buf); err != nil {
		return nil, err
	} else if present {
		if randomness, err = readInt(buf); err != nil {
			return nil, errors.Wrap(err, "randomness")
		}
	}

	return &Proof{
		Kind:       kind,
		Commitment: commitment,
		Challenge:  challenge,
		Response:   response,
		Auxiliary:  aux,
		Randomness: randomness,
		Valid:      true,
	}, nil
}

func (p *Proof) Marshal(buf *bytes.Buffer) error {
	if _, ok := kindNames[p.Kind]; !ok {
		return errors.Errorf("unknown proof kind: %v", byte(p.Kind))
	} else if err := buf.WriteByte(byte(p.Kind)); err != nil {
		return err
	} else if err := writeOptional(buf, p.Valid); err != nil {
		return err
	} else if !p.Valid {
		return nil
	}

	if err := writeElement(buf, p.Commitment, "commitment"); err != nil {
		return err
	} else if err := writeInt(buf, p.Challenge, "challenge"); err != nil {
		return err
	} else if err := writeInt(buf, p.Response, "response"); err != nil {
		return err
	}

	if len(p.Auxiliary) > maxUint8 {
		return errors.New("auxiliary data is too long to marshal")
	} else if err := buf.WriteByte(byte(len(p.Auxiliary))); err != nil {
		return err
	}
	for _, elem := range p.Auxiliary {
		if err := writeElement(buf, elem, "auxiliary data"); err != nil {
			return err
		}
	}

	if err := writeOptional(buf, p.Randomness != nil); err != nil {
		return err
	} else if p.Randomness != nil {
		if err := writeInt(buf, p.Randomness, "randomness"); err != nil {
			return err
		}
	}
	return nil
}

// ParseProof decodes a proof that was encoded with Marshal.
func ParseProof(raw []byte) (*Proof, error) {
	buf := bytes.NewBuffer(raw)
	proof, err := NewProof(buf)
	if err != nil {
		return nil, err
	}
	return proof, finish(buf)
}

// SetOperationResult is the output of a set-algebra operation on an
// accumulator, along with a proof bound to the result's cardinality.
type SetOperationResult struct {
	ResultSet []*big.Int
	Proof     *Proof
	Valid     bool
}

func NewSetOperationResult(buf *bytes.Buffer) (*SetOperationResult, error) {
	valid, err := readOptional(buf)
	if err != nil {
		return nil, err
	}
	var size uint32
	if err := binary.Read(buf, binary.BigEndian, &size); err != nil {
		return nil, err
	}
	set := make([]*big.Int, 0)
	for range int(size) {
		elem, err := readInt(buf)
		if err != nil {
			return nil, errors.Wrap(err, "result set")
		}
		set = append(set, elem)
	}
	proof, err := NewProof(buf)
	if err != nil {
		return nil, err
	}
	return &SetOperationResult{ResultSet: set, Proof: proof, Valid: valid}, nil
}

func (r *SetOperationResult) Marshal(buf *bytes.Buffer) error {
	if r.Proof == nil {
		return errors.New("set operation result has no proof")
	} else if len(r.ResultSet) > maxUint32 {
		return errors.New("result set is too long to marshal")
	} else if err := writeOptional(buf, r.Valid); err != nil {
		return err
	} else if err := binary.Write(buf, binary.BigEndian, uint32(len(r.ResultSet))); err != nil {
		return err
	}
	for _, elem := range r.ResultSet {
		if err := writeInt(buf, elem, "result set element"); err != nil {
			return err
		}
	}
	return r.Proof.Marshal(buf)
}

// ParseSetOperationResult decodes a result that was encoded with Marshal.
func ParseSetOperationResult(raw []byte) (*SetOperationResult, error) {
	buf := bytes.NewBuffer(raw)
	res, err := NewSetOperationResult(buf)
	if err != nil {
		return nil, err
	}
	return res, finish(buf)
}
