package tracking

import (
	"bytes"
	"time"

	"go.etcd.io/bbolt"
)

// bucketName holds every tracked item in one flat bbolt bucket, keyed
// by its canonical path -- the bbolt analogue of Store's one-file-per-
// path layout, chosen so a local repository with many tracked items
// doesn't pay one open-file-descriptor per item (spec.md §6 "Tracking
// file" [NEW] bbolt-backed alternate; teacher parallel: storj's
// storage/boltdb backend for the same KeyValueStore contract).
var bucketName = []byte("tracking")

// Bolt is a bbolt-backed Backend: same Properties-per-canonical-path
// contract as Store, traded for one shared database file instead of
// many small ones.
type Bolt struct {
	db *bbolt.DB
}

var _ Backend = (*Bolt)(nil)

// OpenBolt opens (creating if absent) a bbolt database at path and
// ensures its tracking bucket exists.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, Error.Wrap(err)
	}
	return &Bolt{db: db}, nil
}

// Close releases the underlying database file.
func (b *Bolt) Close() error { return b.db.Close() }

// Read implements Backend.
func (b *Bolt) Read(path string) (Properties, error) {
	var props Properties
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(canonicalize(path)))
		if data == nil {
			props = Properties{}
			return nil
		}
		decoded, err := decodeProperties(bytes.NewReader(data))
		if err != nil {
			return err
		}
		props = decoded
		return nil
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return props, nil
}

// Write implements Backend.
func (b *Bolt) Write(path string, props Properties) error {
	var buf bytes.Buffer
	if err := encodeProperties(&buf, props); err != nil {
		return Error.Wrap(err)
	}
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(canonicalize(path)), buf.Bytes())
	})
	if err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// Update implements Backend. bbolt serializes all writer transactions
// against one another, so the read-modify-write here needs no lock of
// its own the way Store's per-path mutex does.
func (b *Bolt) Update(path string, fn func(Properties) Properties) error {
	key := []byte(canonicalize(path))
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		data := bucket.Get(key)
		var current Properties
		if data == nil {
			current = Properties{}
		} else {
			decoded, err := decodeProperties(bytes.NewReader(data))
			if err != nil {
				return err
			}
			current = decoded
		}
		updated := fn(current)
		var buf bytes.Buffer
		if err := encodeProperties(&buf, updated); err != nil {
			return err
		}
		return bucket.Put(key, buf.Bytes())
	})
	if err != nil {
		return Error.Wrap(err)
	}
	return nil
}
