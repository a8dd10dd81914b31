package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
	"github.com/webdata/wdk/usecase/table"
)

// TableMain is wrapped by NewTableCommand and only exported for testing purposes.
var TableMain *table.Main

// NewTableCommand returns a new cobra command wrapping TableMain.
func NewTableCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	TableMain = table.NewMain()
	TableMain.Out = stdout
	tableCommand := &cobra.Command{
		Use:   "table",
		Short: "Writes a CSV table per input file with a row per matching entity, e.g. hCards.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err = TableMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := tableCommand.Flags()
	err = commandeer.Flags(flags, TableMain)
	if err != nil {
		panic(err)
	}
	return tableCommand
}

func init() {
	subcommandFns["table"] = NewTableCommand
}
