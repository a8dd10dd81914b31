// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package leveldb provides a wdk.Translator which stores its mapping in two
// leveldb databases, one per direction.
package leveldb

import (
	"encoding/binary"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/webdata/wdk"
)

var _ wdk.Translator = &Translator{}

// Translator is a wdk.Translator which stores the two way val/id mapping in
// leveldb. Ids start at 0, and a reopened Translator continues after the
// highest id it finds.
type Translator struct {
	lock   valueLocker
	idMap  *leveldb.DB
	valMap *leveldb.DB
	curID  *uint64
}

// NewTranslator opens or creates a Translator in dirname.
func NewTranslator(dirname string) (*Translator, error) {
	err := os.MkdirAll(dirname, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "making directory")
	}
	var initialID uint64
	lt := &Translator{
		curID: &initialID,
		lock:  newBucketVLock(),
	}
	lt.idMap, err = leveldb.OpenFile(filepath.Join(dirname, "id"), &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", filepath.Join(dirname, "id"))
	}
	lt.valMap, err = leveldb.OpenFile(filepath.Join(dirname, "val"), &opt.Options{})
	if err != nil {
		lt.idMap.Close()
		return nil, errors.Wrapf(err, "opening leveldb at %v", filepath.Join(dirname, "val"))
	}

	it := lt.idMap.NewIterator(nil, nil)
	if it.Last() {
		*lt.curID = binary.BigEndian.Uint64(it.Key()) + 1
	}
	it.Release()
	if err := it.Error(); err != nil {
		lt.Close()
		return nil, errors.Wrap(err, "finding last id")
	}
	return lt, nil
}

// Close closes the two leveldbs used by the Translator.
func (lt *Translator) Close() error {
	var errs wdk.Errors
	if err := lt.idMap.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "closing idMap"))
	}
	if err := lt.valMap.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "closing valMap"))
	}
	return errs.Err()
}

// Get returns the value mapped to the given id.
func (lt *Translator) Get(id uint64) (string, error) {
	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, id)
	data, err := lt.idMap.Get(idBytes, nil)
	if err == leveldb.ErrNotFound {
		return "", errors.Wrapf(wdk.ErrUnknownID, "%d", id)
	} else if err != nil {
		return "", errors.Wrap(err, "fetching from idMap")
	}
	return string(data), nil
}

// GetID returns the integer id associated with the given value. It allocates a
// new ID if the value is not found.
func (lt *Translator) GetID(val string) (id uint64, err error) {
	valBytes := []byte(val)
	var data []byte

	// if you're expecting most of the mapping to already be done, this would be faster
	data, err = lt.valMap.Get(valBytes, &opt.ReadOptions{})
	if err != nil && err != leveldb.ErrNotFound {
		return 0, errors.Wrap(err, "trying to read value map")
	} else if err == nil {
		return binary.BigEndian.Uint64(data), nil
	}

	// else, val not found
	lt.lock.Lock(valBytes)
	defer lt.lock.Unlock(valBytes)
	// re-read after locking
	data, err = lt.valMap.Get(valBytes, &opt.ReadOptions{})
	if err != nil && err != leveldb.ErrNotFound {
		return 0, errors.Wrap(err, "trying to read value map")
	} else if err == nil {
		return binary.BigEndian.Uint64(data), nil
	}

	idBytes := make([]byte, 8)
	next := atomic.AddUint64(lt.curID, 1)
	binary.BigEndian.PutUint64(idBytes, next-1)
	err = lt.idMap.Put(idBytes, valBytes, &opt.WriteOptions{})
	if err != nil {
		return 0, errors.Wrap(err, "putting new id into idmap")
	}
	err = lt.valMap.Put(valBytes, idBytes, &opt.WriteOptions{})
	if err != nil {
		return 0, errors.Wrap(err, "putting new id into valmap")
	}
	return next - 1, nil
}

type valueLocker interface {
	Lock(val []byte)
	Unlock(val []byte)
}

// bucketVLock serializes allocation per value without a lock per value.
type bucketVLock struct {
	ms []sync.Mutex
}

func newBucketVLock() bucketVLock {
	return bucketVLock{
		ms: make([]sync.Mutex, 1000),
	}
}

func (b bucketVLock) Lock(val []byte) {
	hsh := fnv.New32a()
	hsh.Write(val) // never returns error for hash
	b.ms[hsh.Sum32()%1000].Lock()
}

func (b bucketVLock) Unlock(val []byte) {
	hsh := fnv.New32a()
	hsh.Write(val) // never returns error for hash
	b.ms[hsh.Sum32()%1000].Unlock()
}
