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
	"github.com/pkg/errors"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/file"
)

// PublishMain holds the options for publishing N-Quads files to Kafka.
type PublishMain struct {
	Path        string   `help:"File or directory of N-Quads files to publish."`
	Hosts       []string `help:"Comma separated list of Kafka hosts and ports"`
	Topic       string   `help:"Kafka topic"`
	LinesPerMsg int      `help:"Number of lines sent in each message."`

	Log wdk.Logger `flag:"-"`
}

// NewPublishMain returns a new PublishMain.
func NewPublishMain() *PublishMain {
	return &PublishMain{
		Hosts:       []string{"localhost:9092"},
		Topic:       "nquads",
		LinesPerMsg: 100,
		Log:         wdk.NopLogger{},
	}
}

// Run publishes every file under Path.
func (m *PublishMain) Run() error {
	src, err := file.NewRawSource(m.Path)
	if err != nil {
		return errors.Wrap(err, "getting file source")
	}
	p, err := NewProducer(m.Hosts, m.Topic)
	if err != nil {
		return errors.Wrap(err, "getting producer")
	}
	p.LinesPerMsg = m.LinesPerMsg
	p.Log = m.Log
	if err := p.PublishAll(src); err != nil {
		p.Close()
		return errors.Wrap(err, "publishing")
	}
	m.Log.Printf("sent %d messages to %s", p.Sent(), m.Topic)
	return p.Close()
}
