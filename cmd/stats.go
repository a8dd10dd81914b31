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

package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
	"github.com/webdata/wdk/usecase/stats"
)

// StatsMain is wrapped by NewStatsCommand and only exported for testing purposes.
var StatsMain *stats.Main

// NewStatsCommand returns a new cobra command wrapping StatsMain.
func NewStatsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	StatsMain = stats.NewMain()
	StatsMain.Out = stdout
	statsCommand := &cobra.Command{
		Use:   "stats",
		Short: "stats - profile N-Quads from files, an S3 bucket or Kafka",
		Long: `Counts the classes and properties of every typed entity, how many
property values are links or literals, and optionally which properties
are used together. Reads files under --path, objects in --bucket or
messages from --kafka-hosts and writes a JSON report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err = StatsMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := statsCommand.Flags()
	err = commandeer.Flags(flags, StatsMain)
	if err != nil {
		panic(err)
	}
	return statsCommand
}

func init() {
	subcommandFns["stats"] = NewStatsCommand
}
