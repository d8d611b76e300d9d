package db

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	leveldbParamsKey  = "params"
	leveldbValueKey   = "value"
	leveldbElemPrefix = "e"
)

func dup(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func elementKey(elem []byte) string {
	return leveldbElemPrefix + hex.EncodeToString(elem)
}

// ldbConn is a wrapper around a base LevelDB database that handles batching
// writes between commits transparently. A nil value in the batch marks a
// pending delete.
type ldbConn struct {
	conn     *leveldb.DB
	readonly bool
	batch    map[string][]byte
}

func newLDBConn(conn *leveldb.DB, readonly bool) *ldbConn {
	return &ldbConn{conn, readonly, make(map[string][]byte)}
}

func (c *ldbConn) Get(key string) ([]byte, error) {
	if value, ok := c.batch[key]; ok {
		if value == nil {
			return nil, leveldb.ErrNotFound
		}
		return dup(value), nil
	}
	return c.conn.Get([]byte(key), nil)
}

func (c *ldbConn) Put(key string, value []byte) {
	if c.readonly {
		panic("connection is readonly")
	}
	c.batch[key] = dup(value)
}

func (c *ldbConn) Delete(key string) {
	if c.readonly {
		panic("connection is readonly")
	}
	c.batch[key] = nil
}

// Keys returns every key with the given prefix, including uncommitted writes
// and excluding uncommitted deletes.
func (c *ldbConn) Keys(prefix string) ([]string, error) {
	seen := make(map[string]struct{})

	iter := c.conn.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	for iter.Next() {
		seen[string(iter.Key())] = struct{}{}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}
	for key, value := range c.batch {
		if !strings.HasPrefix(key, prefix) {
			continue
		} else if value == nil {
			delete(seen, key)
		} else {
			seen[key] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	return out, nil
}

func (c *ldbConn) Commit() error {
	if c.readonly {
		panic("connection is readonly")
	}

	b := new(leveldb.Batch)
	for key, value := range c.batch {
		if value == nil {
			b.Delete([]byte(key))
		} else {
			b.Put([]byte(key), value)
		}
	}
	if err := c.conn.Write(b, nil); err != nil {
		return err
	}

	c.batch = make(map[string][]byte)
	return nil
}

// ldbAccumulatorStore implements the AccumulatorStore interface over a
// LevelDB database.
type ldbAccumulatorStore struct {
	conn *ldbConn
}

// NewLDBAccumulatorStore opens the LevelDB database in `file`, recovering it
// if it is corrupted.
func NewLDBAccumulatorStore(file string) (AccumulatorStore, error) {
	conn, err := leveldb.OpenFile(file, nil)
	if ldberrors.IsCorrupted(err) {
		conn, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	return &ldbAccumulatorStore{newLDBConn(conn, false)}, nil
}

func (ldb *ldbAccumulatorStore) Clone() AccumulatorStore {
	return &ldbAccumulatorStore{newLDBConn(ldb.conn.conn, true)}
}

func (ldb *ldbAccumulatorStore) get(key string) ([]byte, error) {
	raw, err := ldb.conn.Get(key)
	if err == leveldb.ErrNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return raw, nil
}

func (ldb *ldbAccumulatorStore) GetParams() ([]byte, error) { return ldb.get(leveldbParamsKey) }

func (ldb *ldbAccumulatorStore) PutParams(raw []byte) error {
	ldb.conn.Put(leveldbParamsKey, raw)
	return nil
}

func (ldb *ldbAccumulatorStore) GetValue() ([]byte, error) { return ldb.get(leveldbValueKey) }

func (ldb *ldbAccumulatorStore) PutValue(raw []byte) error {
	ldb.conn.Put(leveldbValueKey, raw)
	return nil
}

func (ldb *ldbAccumulatorStore) ListElements() ([][]byte, error) {
	keys, err := ldb.conn.Keys(leveldbElemPrefix)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(keys))
	for _, key := range keys {
		elem, err := hex.DecodeString(strings.TrimPrefix(key, leveldbElemPrefix))
		if err != nil {
			return nil, errors.Wrapf(err, "malformed element key %q", key)
		}
		out = append(out, elem)
	}
	return out, nil
}

func (ldb *ldbAccumulatorStore) PutElement(elem []byte) error {
	ldb.conn.Put(elementKey(elem), []byte{})
	return nil
}

func (ldb *ldbAccumulatorStore) DeleteElement(elem []byte) error {
	ldb.conn.Delete(elementKey(elem))
	return nil
}

func (ldb *ldbAccumulatorStore) Commit() error {
	return ldb.conn.Commit()
}
