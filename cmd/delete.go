package cmd

import (
	"io"
	"log"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/metsearch/mdk"
	"github.com/metsearch/mdk/solr"
)

// NewDeleteCommand returns a cobra command that removes a dataset from
// the index by its identifier.
func NewDeleteCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var solrURL, core string
	deleteCommand := &cobra.Command{
		Use:   "delete <metadata identifier>",
		Short: "remove a dataset document from the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := mdk.SanitizeID(args[0])
			idx, err := solr.NewClient(solrURL, core)
			if err != nil {
				return errors.Wrap(err, "setting up Solr")
			}
			if err := idx.Delete(id); err != nil {
				return err
			}
			if err := idx.Close(); err != nil {
				return err
			}
			log.Printf("deleted %s", id)
			return nil
		},
	}
	flags := deleteCommand.Flags()
	flags.StringVar(&solrURL, "solr-url", "http://localhost:8983/solr", "Base URL of the Solr server.")
	flags.StringVar(&core, "core", "datasets", "Solr core holding the dataset documents.")
	return deleteCommand
}

func init() {
	subcommandFns["delete"] = NewDeleteCommand
}
