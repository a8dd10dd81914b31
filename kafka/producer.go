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

package kafka

import (
	"bufio"
	"io"
	"strings"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"github.com/webdata/wdk"
)

// Producer publishes the lines of input files to a Kafka topic, several
// lines per message. Messages are keyed by file name.
type Producer struct {
	Topic       string
	LinesPerMsg int
	Log         wdk.Logger

	producer sarama.SyncProducer
	sent     int64
}

// NewProducer connects a Producer for topic to the brokers at hosts.
func NewProducer(hosts []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V0_10_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true
	sp, err := sarama.NewSyncProducer(hosts, config)
	if err != nil {
		return nil, errors.Wrap(err, "getting sync producer")
	}
	return newProducer(sp, topic), nil
}

func newProducer(sp sarama.SyncProducer, topic string) *Producer {
	return &Producer{
		Topic:       topic,
		LinesPerMsg: 100,
		Log:         wdk.NopLogger{},
		producer:    sp,
	}
}

// Publish sends every line of r and returns the number of messages sent.
func (p *Producer) Publish(r io.Reader, key string) (int, error) {
	per := p.LinesPerMsg
	if per < 1 {
		per = 1
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	batch := make([]string, 0, per)
	msgs := 0
	send := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.Topic,
			Key:   sarama.StringEncoder(key),
			Value: sarama.StringEncoder(strings.Join(batch, "\n")),
		})
		if err != nil {
			return errors.Wrapf(err, "sending message %d of %s", msgs, key)
		}
		msgs++
		p.sent++
		batch = batch[:0]
		return nil
	}
	for scanner.Scan() {
		batch = append(batch, scanner.Text())
		if len(batch) == per {
			if err := send(); err != nil {
				return msgs, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return msgs, errors.Wrapf(err, "reading %s", key)
	}
	return msgs, send()
}

// PublishAll publishes every file of src.
func (p *Producer) PublishAll(src wdk.RawSource) error {
	for {
		rc, err := src.NextReader()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "getting next reader")
		}
		n, err := p.Publish(rc, rc.Name())
		rc.Close()
		if err != nil {
			return err
		}
		p.Log.Printf("published %s in %d messages", rc.Name(), n)
	}
}

// Sent returns the number of messages sent so far.
func (p *Producer) Sent() int64 { return p.sent }

// Close closes the underlying producer.
func (p *Producer) Close() error {
	return errors.Wrap(p.producer.Close(), "closing kafka producer")
}
