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

package boltdb

import (
	"io/ioutil"
	"os"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/webdata/wdk"
)

func TestBoltTranslator(t *testing.T) {
	boltFile := tempFileName(t)
	defer os.Remove(boltFile)
	bt, err := NewTranslator(boltFile)
	if err != nil {
		t.Fatalf("couldn't get bolt db: %v", err)
	}
	id1, err := bt.GetID("hello")
	if err != nil {
		t.Fatalf("couldn't get id for hello: %v", err)
	}
	if id1 != 1 {
		t.Fatalf("expected first id to be 1, got %d", id1)
	}
	id2, err := bt.GetID("world")
	if err != nil {
		t.Fatalf("couldn't get id for world: %v", err)
	}
	if id2 != 2 {
		t.Fatalf("expected second id to be 2, got %d", id2)
	}

	val, err := bt.Get(id1)
	if err != nil || val != "hello" {
		t.Fatalf("unexpected value for hello id: %s, %v", val, err)
	}
	if _, err := bt.Get(99); errors.Cause(err) != wdk.ErrUnknownID {
		t.Fatalf("expected ErrUnknownID for unallocated id, got %v", err)
	}

	if err := bt.Close(); err != nil {
		t.Fatalf("closing bolt db: %v", err)
	}

	bt, err = NewTranslator(boltFile)
	if err != nil {
		t.Fatalf("getting new translator: %v", err)
	}
	defer bt.Close()
	val, err = bt.Get(id2)
	if err != nil || val != "world" {
		t.Fatalf("after reopen, unexpected value for world id: %s, %v", val, err)
	}
	id1again, err := bt.GetID("hello")
	if err != nil {
		t.Fatalf("couldn't get id again for hello: %v", err)
	}
	if id1again != id1 {
		t.Fatalf("didn't get same id for same value: %v, again: %v", id1, id1again)
	}
	id3, err := bt.GetID("newval")
	if err != nil {
		t.Fatalf("couldn't get id for newval: %v", err)
	}
	if id3 != 3 {
		t.Fatalf("expected allocation to continue at 3 after reopen, got %d", id3)
	}
}

func TestBoltTranslatorConcurrent(t *testing.T) {
	boltFile := tempFileName(t)
	defer os.Remove(boltFile)
	bt, err := NewTranslator(boltFile)
	if err != nil {
		t.Fatalf("couldn't get bolt db: %v", err)
	}
	defer bt.Close()

	vals := []string{"a", "b", "c", "d", "e", "f"}
	ids := make([][]uint64, 4)
	wg := sync.WaitGroup{}
	for g := range ids {
		ids[g] = make([]uint64, len(vals))
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i, v := range vals {
				id, err := bt.GetID(v)
				if err != nil {
					t.Errorf("getting id for %s: %v", v, err)
					return
				}
				ids[g][i] = id
			}
		}(g)
	}
	wg.Wait()

	seen := map[uint64]string{}
	for i, v := range vals {
		id := ids[0][i]
		for g := range ids {
			if ids[g][i] != id {
				t.Fatalf("goroutine %d got id %d for %s, expected %d", g, ids[g][i], v, id)
			}
		}
		if other, ok := seen[id]; ok {
			t.Fatalf("id %d mapped to both %s and %s", id, other, v)
		}
		seen[id] = v
	}
	if len(seen) != len(vals) {
		t.Fatalf("expected %d distinct ids, got %d", len(vals), len(seen))
	}
}

func tempFileName(t *testing.T) string {
	tf, err := ioutil.TempFile("", "")
	if err != nil {
		t.Fatalf("couldn't get temp file: %v", err)
	}
	err = tf.Close()
	if err != nil {
		t.Fatalf("couldn't close temp file: %v", err)
	}
	return tf.Name()
}
