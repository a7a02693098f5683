package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"

	"github.com/metsearch/mdk/metadata"
)

// FileMain is wrapped by NewFileCommand and only exported for testing purposes.
var FileMain *metadata.Main

// NewFileCommand returns a new cobra command wrapping FileMain.
func NewFileCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	FileMain = metadata.NewMain()
	fileCommand := &cobra.Command{
		Use:   "file",
		Short: "index metadata XML from a file or all XML files in a directory",
		Long: `Reads MMD XML documents from the given path, transforms each into a
search index document and pushes it to Solr. Level 2 runs link each
dataset to its parent as part of indexing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err = FileMain.Run()
			if err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := fileCommand.Flags()
	err = commandeer.Flags(flags, FileMain)
	if err != nil {
		panic(err)
	}
	return fileCommand
}

func init() {
	subcommandFns["file"] = NewFileCommand
}
