// Package memory provides in-memory implementations of the database interfaces.
package memory

import (
	"encoding/hex"
	"errors"

	"github.com/Bren2010/esa/db"
)

func dup(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// AccumulatorStore is an AccumulatorStore that keeps everything in memory.
// Writes take effect immediately and Commit only counts calls.
type AccumulatorStore struct {
	Params, Value []byte
	Elements      map[string][]byte
	Commits       int

	ReadOnly bool
}

func NewAccumulatorStore() *AccumulatorStore {
	return &AccumulatorStore{Elements: make(map[string][]byte)}
}

func (as *AccumulatorStore) Clone() db.AccumulatorStore {
	return &AccumulatorStore{
		Params:   as.Params,
		Value:    as.Value,
		Elements: as.Elements,
		Commits:  as.Commits,

		ReadOnly: true,
	}
}

func (as *AccumulatorStore) checkWritable() error {
	if as.ReadOnly {
		return errors.New("store is readonly")
	}
	return nil
}

func (as *AccumulatorStore) GetParams() ([]byte, error) { return dup(as.Params), nil }

func (as *AccumulatorStore) PutParams(raw []byte) error {
	if err := as.checkWritable(); err != nil {
		return err
	} else if raw == nil {
		return errors.New("unable to store nil params")
	}
	as.Params = dup(raw)
	return nil
}

func (as *AccumulatorStore) GetValue() ([]byte, error) { return dup(as.Value), nil }

func (as *AccumulatorStore) PutValue(raw []byte) error {
	if err := as.checkWritable(); err != nil {
		return err
	} else if raw == nil {
		return errors.New("unable to store nil value")
	}
	as.Value = dup(raw)
	return nil
}

func (as *AccumulatorStore) ListElements() ([][]byte, error) {
	out := make([][]byte, 0, len(as.Elements))
	for _, elem := range as.Elements {
		out = append(out, dup(elem))
	}
	return out, nil
}

func (as *AccumulatorStore) PutElement(elem []byte) error {
	if err := as.checkWritable(); err != nil {
		return err
	}
	as.Elements[hex.EncodeToString(elem)] = append([]byte{}, elem...)
	return nil
}

func (as *AccumulatorStore) DeleteElement(elem []byte) error {
	if err := as.checkWritable(); err != nil {
		return err
	}
	delete(as.Elements, hex.EncodeToString(elem))
	return nil
}

func (as *AccumulatorStore) Commit() error {
	if err := as.checkWritable(); err != nil {
		return err
	}
	as.Commits++
	return nil
}
