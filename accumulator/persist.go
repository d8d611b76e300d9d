package accumulator

import (
	"bytes"
	"math/big"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Bren2010/esa/accumulator/structs"
	"github.com/Bren2010/esa/db"
)

var (
	// ErrNoParams is returned by Restore when the store has never been
	// initialized.
	ErrNoParams = errors.New("no parameters in store")
	// ErrValueMismatch is returned by Restore when the stored accumulator
	// value does not match the one recomputed from the stored elements.
	ErrValueMismatch = errors.New("stored accumulator value does not match elements")
)

// Restore rebuilds an accumulator from the parameters and elements in
// `store`. The accumulator value is recomputed from the elements and checked
// against the stored value, if there is one.
func Restore(store db.AccumulatorStore) (*Accumulator, error) {
	rawParams, err := store.GetParams()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read params")
	} else if rawParams == nil {
		return nil, ErrNoParams
	}
	params, err := structs.ParseParams(rawParams)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse params")
	}
	a := New(params.Suite, &params.Params)

	elems, err := store.ListElements()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list elements")
	}
	for _, raw := range elems {
		a.insert(new(big.Int).SetBytes(raw))
	}
	a.recompute()

	rawValue, err := store.GetValue()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read accumulator value")
	} else if rawValue != nil && !bytes.Equal(rawValue, a.value.Value().Bytes()) {
		return nil, ErrValueMismatch
	}

	log.WithFields(log.Fields{"size": len(a.elements), "suite": a.suite.Name()}).Info("restored accumulator")
	return a, nil
}

// Persist writes the accumulator's parameters, value and full element set to
// `store`, removes any stored element that is no longer a member, and commits.
func (a *Accumulator) Persist(store db.AccumulatorStore) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rawParams, err := structs.Marshal(&structs.Params{Suite: a.suite, Params: *a.params})
	if err != nil {
		return errors.Wrap(err, "failed to encode params")
	} else if err := store.PutParams(rawParams); err != nil {
		return err
	}

	stored, err := store.ListElements()
	if err != nil {
		return errors.Wrap(err, "failed to list elements")
	}
	for _, raw := range stored {
		if !a.contains(new(big.Int).SetBytes(raw)) {
			if err := store.DeleteElement(raw); err != nil {
				return err
			}
		}
	}
	for _, e := range a.elements {
		if err := store.PutElement(e.Bytes()); err != nil {
			return err
		}
	}
	if err := store.PutValue(a.value.Value().Bytes()); err != nil {
		return err
	}
	return store.Commit()
}
