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

// Package kafka streams N-Quads through Kafka topics. Source consumes a
// topic as a wdk.StatementSource and Producer publishes input files to one.
package kafka

import (
	"io"
	"io/ioutil"
	"log"
	"strings"

	"github.com/Shopify/sarama"
	cluster "github.com/bsm/sarama-cluster"
	"github.com/pkg/errors"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/nquads"
)

// consumer is the part of a cluster.Consumer a Source uses.
type consumer interface {
	Messages() <-chan *sarama.ConsumerMessage
	MarkOffset(msg *sarama.ConsumerMessage, metadata string)
	Close() error
}

// Source is a wdk.StatementSource reading statements from Kafka. Each
// message value holds one or more N-Quads lines. Malformed lines are
// counted and skipped.
type Source struct {
	Hosts   []string
	Topics  []string
	Group   string
	MaxMsgs int
	Stats   wdk.Statter
	Log     wdk.Logger

	numMsgs int
	pending []string
	skipped int64

	consumer consumer
}

// NewSource gets a new Source.
func NewSource() *Source {
	return &Source{
		Hosts:  []string{"localhost:9092"},
		Topics: []string{"nquads"},
		Group:  "wdk",
		Stats:  wdk.NopStatter{},
		Log:    wdk.NopLogger{},
	}
}

// Next returns the next well formed statement. It returns io.EOF once
// MaxMsgs messages have been read, if MaxMsgs is positive, or when the
// consumer is closed.
func (s *Source) Next() (wdk.Statement, error) {
	for {
		for len(s.pending) > 0 {
			line := strings.TrimSpace(s.pending[0])
			s.pending = s.pending[1:]
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			st, err := nquads.ParseLine(line)
			if err != nil {
				s.skipped++
				s.Stats.Count("kafka.skipped", 1, 1.0)
				s.Log.Debugf("skipping malformed statement: %v", err)
				continue
			}
			return st, nil
		}
		if err := s.fill(); err != nil {
			return wdk.Statement{}, err
		}
	}
}

// fill reads the next message into pending.
func (s *Source) fill() error {
	if s.consumer == nil {
		return errors.New("source is not open")
	}
	if s.MaxMsgs > 0 {
		if s.numMsgs >= s.MaxMsgs {
			return io.EOF
		}
		s.numMsgs++
	}
	msg, ok := <-s.consumer.Messages()
	if !ok {
		return io.EOF
	}
	s.Stats.Count("kafka.messages", 1, 1.0)
	s.pending = strings.Split(string(msg.Value), "\n")
	s.consumer.MarkOffset(msg, "") // mark message as processed
	return nil
}

// Skipped returns the number of malformed lines skipped so far.
func (s *Source) Skipped() int64 { return s.skipped }

// Open initializes the kafka source.
func (s *Source) Open() error {
	// init (custom) config, enable errors and notifications
	sarama.Logger = log.New(ioutil.Discard, "", 0)
	config := cluster.NewConfig()
	config.Config.Version = sarama.V0_10_0_0
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Group.Return.Notifications = true

	c, err := cluster.NewConsumer(s.Hosts, s.Group, s.Topics, config)
	if err != nil {
		return errors.Wrap(err, "getting new consumer")
	}
	s.consumer = c

	// consume errors
	go func() {
		for err := range c.Errors() {
			s.Log.Printf("kafka error: %v", err)
		}
	}()

	// consume notifications
	go func() {
		for ntf := range c.Notifications() {
			s.Log.Debugf("rebalanced: %+v", ntf)
		}
	}()
	return nil
}

// Close closes the underlying kafka consumer.
func (s *Source) Close() error {
	if s.consumer == nil {
		return nil
	}
	err := s.consumer.Close()
	return errors.Wrap(err, "closing kafka consumer")
}
