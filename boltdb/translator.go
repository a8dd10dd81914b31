// Package boltdb provides a wdk.Translator implementation using boltdb.
// Allocation goes through a write transaction, so the leveldb translator is
// faster when many new values are expected.
package boltdb

import (
	"encoding/binary"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
	"github.com/webdata/wdk"
)

var (
	idBucket  = []byte("idKey")
	valBucket = []byte("valKey")
)

var _ wdk.Translator = &Translator{}

// Translator is a wdk.Translator which stores the two way val/id mapping in
// boltdb. Ids are allocated from the id bucket's sequence and start at 1.
type Translator struct {
	Db *bolt.DB
}

// Close syncs and closes the underlying boltdb.
func (bt *Translator) Close() error {
	err := bt.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return bt.Db.Close()
}

// NewTranslator opens or creates a Translator in filename.
func NewTranslator(filename string) (bt *Translator, err error) {
	bt = &Translator{}
	bt.Db, err = bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second, NoGrowSync: true})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	bt.Db.MaxBatchDelay = 400 * time.Microsecond
	err = bt.Db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(idBucket); err != nil {
			return errors.Wrap(err, "creating idKey bucket")
		}
		if _, err := tx.CreateBucketIfNotExists(valBucket); err != nil {
			return errors.Wrap(err, "creating valKey bucket")
		}
		return nil
	})
	if err != nil {
		bt.Db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return bt, nil
}

// Get returns the value previously mapped to id by GetID.
func (bt *Translator) Get(id uint64) (val string, err error) {
	found := false
	err = bt.Db.View(func(tx *bolt.Tx) error {
		idBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(idBytes, id)
		if v := tx.Bucket(idBucket).Get(idBytes); v != nil {
			val, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "reading idKey bucket")
	}
	if !found {
		return "", errors.Wrapf(wdk.ErrUnknownID, "%d", id)
	}
	return val, nil
}

// GetID maps val to a monotonic id, allocating one if val is new.
func (bt *Translator) GetID(val string) (id uint64, err error) {
	bsval := []byte(val)
	// look up to see if this val is already mapped to an id
	var ret []byte
	err = bt.Db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(valBucket).Get(bsval); v != nil {
			ret = append(ret, v...)
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "reading valKey bucket")
	}
	if len(ret) == 8 {
		return binary.BigEndian.Uint64(ret), nil
	}
	// get new id, and map it in both directions
	err = bt.Db.Batch(func(tx *bolt.Tx) error {
		ib := tx.Bucket(idBucket)
		vb := tx.Bucket(valBucket)
		// another writer may have mapped val since the lookup
		if v := vb.Get(bsval); len(v) == 8 {
			id = binary.BigEndian.Uint64(v)
			return nil
		}
		var err error
		id, err = ib.NextSequence()
		if err != nil {
			return err
		}
		keybytes := make([]byte, 8)
		binary.BigEndian.PutUint64(keybytes, id)
		if err := ib.Put(keybytes, bsval); err != nil {
			return errors.Wrap(err, "inserting into idKey bucket")
		}
		if err := vb.Put(bsval, keybytes); err != nil {
			return errors.Wrap(err, "inserting into valKey bucket")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}
