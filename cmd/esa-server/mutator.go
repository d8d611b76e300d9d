package main

import (
	"fmt"
	"math/big"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Bren2010/esa/accumulator"
	"github.com/Bren2010/esa/crypto/group"
	"github.com/Bren2010/esa/db"
)

type MutationOp string

const (
	OpAdd     MutationOp = "add"
	OpRemove  MutationOp = "remove"
	OpReplace MutationOp = "replace"
)

type MutationRequest struct {
	Op          MutationOp
	Element     *big.Int
	Replacement *big.Int // Only for OpReplace.
	Resp        chan<- MutationResponse
}

type MutationResponse struct {
	Value group.Element
	Err   error
}

// mutator is a goroutine that receives mutation requests over `ch`, applies
// them to the accumulator one at a time, writes each successful mutation
// through to the database, and responds with the new accumulator value. It
// returns when `ch` is closed.
func mutator(acc *accumulator.Accumulator, store db.AccumulatorStore, ch <-chan MutationRequest) {
	for req := range ch {
		start := time.Now()
		err := apply(acc, req)
		mutationOps.WithLabelValues(string(req.Op), fmt.Sprint(err == nil)).Inc()
		mutationDur.Observe(float64(time.Since(start).Microseconds()))

		value := acc.Value()
		if err == nil {
			if perr := persist(store, req, value); perr != nil {
				log.Fatalf("Failed to persist %v of %v: %v", req.Op, req.Element, perr)
			}
			accumulatorSize.Set(float64(acc.Size()))
		}

		select {
		case req.Resp <- MutationResponse{value, err}:
		default:
		}
	}
}

func apply(acc *accumulator.Accumulator, req MutationRequest) error {
	switch req.Op {
	case OpAdd:
		return acc.Add(req.Element)
	case OpRemove:
		return acc.Remove(req.Element)
	case OpReplace:
		return acc.Replace(req.Element, req.Replacement)
	default:
		return errors.Errorf("unknown mutation: %q", req.Op)
	}
}

func persist(store db.AccumulatorStore, req MutationRequest, value group.Element) error {
	switch req.Op {
	case OpAdd:
		if err := store.PutElement(req.Element.Bytes()); err != nil {
			return err
		}
	case OpRemove:
		if err := store.DeleteElement(req.Element.Bytes()); err != nil {
			return err
		}
	case OpReplace:
		if err := store.DeleteElement(req.Element.Bytes()); err != nil {
			return err
		} else if err := store.PutElement(req.Replacement.Bytes()); err != nil {
			return err
		}
	}
	if err := store.PutValue(value.Value().Bytes()); err != nil {
		return err
	}
	return store.Commit()
}

// setupAccumulator restores the accumulator from the database, or creates and
// stores a new one from the configured or freshly generated parameters.
func setupAccumulator(ac *AccumulatorConfig, store db.AccumulatorStore) (*accumulator.Accumulator, error) {
	acc, err := accumulator.Restore(store)
	if err == nil {
		if ac.params != nil && ac.params.Modulus.Cmp(acc.Params().Modulus) != 0 {
			return nil, errors.New("configured modulus does not match the one in the database")
		} else if ac.suite.Id() != acc.Suite().Id() {
			return nil, errors.Errorf("configured suite %v does not match %v in the database", ac.suite.Name(), acc.Suite().Name())
		}
		return acc, nil
	} else if !errors.Is(err, accumulator.ErrNoParams) {
		return nil, err
	}

	params := ac.params
	if params == nil {
		log.Infof("Generating %v-bit accumulator parameters.", ac.ModulusBits)
		params, err = group.GenerateParams(ac.ModulusBits)
		if err != nil {
			return nil, err
		}
	}
	acc = accumulator.New(ac.suite, params)
	if err := acc.Persist(store); err != nil {
		return nil, errors.Wrap(err, "failed to store new accumulator")
	}
	log.WithField("suite", ac.suite.Name()).Info("Initialized new accumulator.")
	return acc, nil
}
