// Package accumulator implements a dynamic accumulator over a set of
// non-negative integers, with membership witnesses and Fiat-Shamir proofs of
// membership, non-membership, subset, batch membership, and set algebra.
//
// The accumulator value is g^(sum of elements) modulo a prime. It is
// recomputed or updated on every mutation so that it always matches the
// current set.
package accumulator

import (
	"crypto/rand"
	"io"
	"math/big"
	"sort"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Bren2010/esa/crypto/commitments"
	"github.com/Bren2010/esa/crypto/group"
	"github.com/Bren2010/esa/crypto/suites"
)

var (
	// ErrDuplicateElement is returned when adding an element that is already
	// a member.
	ErrDuplicateElement = errors.New("element already in set")
	// ErrNotFound is returned when an element is expected to be a member but
	// is not.
	ErrNotFound = errors.New("element not in set")
	// ErrInvalidElement is returned for nil or negative elements.
	ErrInvalidElement = errors.New("element must be a non-negative integer")
)

func key(e *big.Int) string { return e.String() }

func checkElement(e *big.Int) error {
	if e == nil || e.Sign() < 0 {
		return ErrInvalidElement
	}
	return nil
}

// sortElements sorts a slice of integers in ascending order, in place.
func sortElements(elems []*big.Int) {
	sort.Slice(elems, func(i, j int) bool { return elems[i].Cmp(elems[j]) < 0 })
}

// Accumulator holds a set of integers and the group element that represents
// it. It is safe for concurrent use: mutations are serialized by a write lock,
// and proofs and verification run under a read lock.
type Accumulator struct {
	suite  suites.CipherSuite
	params *group.Params
	rand   io.Reader

	mu          sync.RWMutex
	elements    map[string]*big.Int
	commitments map[string]group.Element // Cache of g^e for each member.
	value       group.Element
}

// New returns an empty accumulator over the given group parameters.
func New(cs suites.CipherSuite, params *group.Params) *Accumulator {
	return &Accumulator{
		suite:  cs,
		params: params,
		rand:   rand.Reader,

		elements:    make(map[string]*big.Int),
		commitments: make(map[string]group.Element),
		value:       params.Identity(),
	}
}

// Suite returns the cipher suite used for proof challenges.
func (a *Accumulator) Suite() suites.CipherSuite { return a.suite }

// Params returns the accumulator's group parameters.
func (a *Accumulator) Params() *group.Params { return a.params }

// Value returns the current accumulator value.
func (a *Accumulator) Value() group.Element {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value
}

// Size returns the number of elements in the set.
func (a *Accumulator) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.elements)
}

// Contains returns true if `e` is in the set.
func (a *Accumulator) Contains(e *big.Int) bool {
	if e == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.contains(e)
}

func (a *Accumulator) contains(e *big.Int) bool {
	_, ok := a.elements[key(e)]
	return ok
}

// Elements returns a copy of the set, sorted in ascending order.
func (a *Accumulator) Elements() []*big.Int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sortedElements()
}

func (a *Accumulator) sortedElements() []*big.Int {
	out := make([]*big.Int, 0, len(a.elements))
	for _, e := range a.elements {
		out = append(out, new(big.Int).Set(e))
	}
	sortElements(out)
	return out
}

// Commitment returns the cached commitment g^e for a member of the set.
func (a *Accumulator) Commitment(e *big.Int) (group.Element, error) {
	if err := checkElement(e); err != nil {
		return group.Element{}, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.commitments[key(e)]
	if !ok {
		return group.Element{}, errors.Wrapf(ErrNotFound, "%v", e)
	}
	return c, nil
}

// Add inserts `e` into the set and multiplies its commitment into the
// accumulator value.
func (a *Accumulator) Add(e *big.Int) error {
	if err := checkElement(e); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.contains(e) {
		log.WithField("element", e).Debug("refusing to add duplicate element")
		return errors.Wrapf(ErrDuplicateElement, "%v", e)
	}
	c := a.insert(e)
	a.value = a.value.Multiply(c)

	log.WithFields(log.Fields{"element": e, "value": a.value.Value()}).Debug("added element")
	return nil
}

// Remove deletes `e` from the set and recomputes the accumulator value from
// the remaining elements.
func (a *Accumulator) Remove(e *big.Int) error {
	if err := checkElement(e); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.contains(e) {
		log.WithField("element", e).Debug("refusing to remove absent element")
		return errors.Wrapf(ErrNotFound, "%v", e)
	}
	a.evict(e)
	a.recompute()

	log.WithFields(log.Fields{"element": e, "value": a.value.Value()}).Debug("removed element")
	return nil
}

// Replace swaps `old` for `repl` in the set with a single recomputation of the
// accumulator value. It fails without changing anything if `old` is not a
// member or `repl` already is.
func (a *Accumulator) Replace(old, repl *big.Int) error {
	if err := checkElement(old); err != nil {
		return err
	} else if err := checkElement(repl); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.contains(old) {
		log.WithField("element", old).Debug("refusing to replace absent element")
		return errors.Wrapf(ErrNotFound, "%v", old)
	} else if a.contains(repl) {
		log.WithField("element", repl).Debug("refusing to replace with duplicate element")
		return errors.Wrapf(ErrDuplicateElement, "%v", repl)
	}
	a.evict(old)
	a.insert(repl)
	a.recompute()

	log.WithFields(log.Fields{"old": old, "new": repl, "value": a.value.Value()}).Debug("replaced element")
	return nil
}

func (a *Accumulator) insert(e *big.Int) group.Element {
	k := key(e)
	c := commitments.Commit(a.params, e)
	a.elements[k] = new(big.Int).Set(e)
	a.commitments[k] = c
	return c
}

func (a *Accumulator) evict(e *big.Int) {
	k := key(e)
	delete(a.elements, k)
	delete(a.commitments, k)
}

// recompute sets the accumulator value to the product of every cached
// commitment, or the identity if the set is empty.
func (a *Accumulator) recompute() {
	value := a.params.Identity()
	for _, c := range a.commitments {
		value = value.Multiply(c)
	}
	a.value = value
}
