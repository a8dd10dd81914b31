package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
	"github.com/webdata/wdk/usecase/pagestat"
)

// PageStatMain is wrapped by NewPageStatCommand and only exported for testing purposes.
var PageStatMain *pagestat.Main

// NewPageStatCommand returns a new cobra command wrapping PageStatMain.
func NewPageStatCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	PageStatMain = pagestat.NewMain()
	PageStatMain.Out = stdout
	pagestatCommand := &cobra.Command{
		Use:   "pagestat",
		Short: "Reports on the page and data statistics of an extraction run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err = PageStatMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := pagestatCommand.Flags()
	err = commandeer.Flags(flags, PageStatMain)
	if err != nil {
		panic(err)
	}
	return pagestatCommand
}

func init() {
	subcommandFns["pagestat"] = NewPageStatCommand
}
