package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
	"github.com/webdata/wdk/usecase/entitystats"
)

// EntityStatsMain is wrapped by NewEntityStatsCommand and only exported for testing purposes.
var EntityStatsMain *entitystats.Main

// NewEntityStatsCommand returns a new cobra command wrapping EntityStatsMain.
func NewEntityStatsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	EntityStatsMain = entitystats.NewMain()
	EntityStatsMain.Out = stdout
	entitystatsCommand := &cobra.Command{
		Use:   "entitystats",
		Short: "Describes the properties used by the entities of one class.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err = EntityStatsMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := entitystatsCommand.Flags()
	err = commandeer.Flags(flags, EntityStatsMain)
	if err != nil {
		panic(err)
	}
	return entitystatsCommand
}

func init() {
	subcommandFns["entitystats"] = NewEntityStatsCommand
}
