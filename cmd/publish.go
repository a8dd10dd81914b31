package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/kafka"
)

// PublishMain is wrapped by NewPublishCommand and only exported for testing purposes.
var PublishMain *kafka.PublishMain

// NewPublishCommand returns a new cobra command wrapping PublishMain.
func NewPublishCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	PublishMain = kafka.NewPublishMain()
	PublishMain.Log = wdk.StdLogger{Logger: log.New(stderr, "", log.LstdFlags)}
	publishCommand := &cobra.Command{
		Use:   "publish",
		Short: "Publishes N-Quads files to a Kafka topic for the stats command to consume.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err = PublishMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := publishCommand.Flags()
	err = commandeer.Flags(flags, PublishMain)
	if err != nil {
		panic(err)
	}
	return publishCommand
}

func init() {
	subcommandFns["publish"] = NewPublishCommand
}
