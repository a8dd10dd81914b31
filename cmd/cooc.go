package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
	"github.com/webdata/wdk/cooc"
)

// CoocMain is wrapped by NewCoocCommand and only exported for testing purposes.
var CoocMain *cooc.Main

// NewCoocCommand returns a new cobra command wrapping CoocMain.
func NewCoocCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	CoocMain = cooc.NewMain()
	CoocMain.Out = stdout
	coocCommand := &cobra.Command{
		Use:   "cooc",
		Short: "Finds groups of keys which frequently occur together in a file of pair counts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err = CoocMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := coocCommand.Flags()
	err = commandeer.Flags(flags, CoocMain)
	if err != nil {
		panic(err)
	}
	return coocCommand
}

func init() {
	subcommandFns["cooc"] = NewCoocCommand
}
