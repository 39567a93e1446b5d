// Package store is the append-only registry of committed cells and
// deployed contracts backing a verification context.
package store

import (
	"encoding/binary"
	"fmt"
	"time"

	"cellkit.dev/harness/chain"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketCells     = []byte("cells_by_outpoint")
	bucketContracts = []byte("contracts_by_code_hash")
	bucketMeta      = []byte("meta")

	keyCreated = []byte("created_unix")
)

type DB struct {
	dir string
	db  *bolt.DB
}

func Open(dir string) (*DB, error) {
	if dir == "" {
		return nil, fmt.Errorf("store dir required")
	}
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	bdb, err := bolt.Open(DBPath(dir), 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	d := &DB{dir: dir, db: bdb}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketCells, bucketContracts, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		if meta.Get(keyCreated) == nil {
			var ts [8]byte
			binary.LittleEndian.PutUint64(ts[:], uint64(time.Now().Unix())) // #nosec G115 -- wall clock is past 1970.
			return meta.Put(keyCreated, ts[:])
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Dir() string { return d.dir }

// PutCell commits a cell. Committed cells are never overwritten.
func (d *DB) PutCell(op chain.OutPoint, e Entry) error {
	key := encodeOutpointKey(op)
	val, err := encodeEntry(e)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCells)
		if b.Get(key) != nil {
			return storeErr(STORE_ERR_EXISTS, "cell %s already committed", op)
		}
		return b.Put(key, val)
	})
}

func (d *DB) GetCell(op chain.OutPoint) (Entry, bool, error) {
	var out Entry
	var ok bool
	key := encodeOutpointKey(op)
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCells).Get(key)
		if v == nil {
			return nil
		}
		e, err := decodeEntry(v)
		if err != nil {
			return err
		}
		out = e
		ok = true
		return nil
	})
	return out, ok, err
}

// ForEachCell visits committed cells in outpoint key order.
func (d *DB) ForEachCell(fn func(op chain.OutPoint, e Entry) error) error {
	return d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCells).ForEach(func(k, v []byte) error {
			op, err := decodeOutpointKey(k)
			if err != nil {
				return err
			}
			e, err := decodeEntry(v)
			if err != nil {
				return err
			}
			return fn(op, e)
		})
	})
}

func (d *DB) CellCount() (int, error) {
	n := 0
	err := d.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketCells).Stats().KeyN
		return nil
	})
	return n, err
}

// NextSequence returns a monotonically increasing counter, starting at 1.
func (d *DB) NextSequence() (uint64, error) {
	var seq uint64
	err := d.db.Update(func(tx *bolt.Tx) error {
		var err error
		seq, err = tx.Bucket(bucketMeta).NextSequence()
		return err
	})
	return seq, err
}

// PutContract indexes a deployed contract cell by its code hash. The first
// deployment of a binary wins.
func (d *DB) PutContract(codeHash chain.Hash, op chain.OutPoint) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketContracts)
		if b.Get(codeHash[:]) != nil {
			return nil
		}
		return b.Put(codeHash[:], encodeOutpointKey(op))
	})
}

func (d *DB) GetContract(codeHash chain.Hash) (chain.OutPoint, bool, error) {
	var out chain.OutPoint
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketContracts).Get(codeHash[:])
		if v == nil {
			return nil
		}
		op, err := decodeOutpointKey(v)
		if err != nil {
			return err
		}
		out = op
		ok = true
		return nil
	})
	return out, ok, err
}
