// Package db implements database wrappers that match a common interface.
package db

// AccumulatorStore is the interface an accumulator uses to persist its
// parameters and element set.
//
// Elements are stored as the big-endian bytes of the integer. Writes are
// buffered until Commit is called; reads observe uncommitted writes.
type AccumulatorStore interface {
	// Clone returns a read-only clone of the current store, suitable for
	// distributing to child goroutines.
	Clone() AccumulatorStore

	// GetParams returns the encoded accumulator parameters, or nil if none
	// have been stored yet.
	GetParams() ([]byte, error)
	PutParams(raw []byte) error

	// GetValue returns the encoded accumulator value as of the last write,
	// or nil if none has been stored yet.
	GetValue() ([]byte, error)
	PutValue(raw []byte) error

	// ListElements returns every stored element, in no particular order.
	ListElements() ([][]byte, error)
	PutElement(elem []byte) error
	DeleteElement(elem []byte) error

	Commit() error
}
