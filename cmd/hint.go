package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/sql-sandbox/pkg/render"
)

// noHintText is printed when no rule matches.
const noHintText = "No hint."

var hintCmd = &cobra.Command{
	Use:   "hint [statement...]",
	Short: "Show the dialect hint for a statement",
	Long: `Look a statement up in the dialect hint catalog.

The statement is taken from the arguments, or from stdin when there are none.
The command always succeeds; an unmatched statement prints "No hint.".`,
	Example: `  sql-sandbox hint "ALTER TABLE sensores DROP COLUMN tipo;"
  echo "USE casa;" | sql-sandbox hint -o json`,
	RunE: runHint,
}

func init() {
	rootCmd.AddCommand(hintCmd)
	hintCmd.Flags().Bool("markup", false, "keep the hint markup")
}

func runHint(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	statement := strings.Join(args, " ")
	if len(args) == 0 {
		if stdinIsTerminal() {
			return errors.New("no statement given")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "failed to read stdin")
		}
		statement = string(data)
	}

	res := hintSet(settings).Find(statement)
	out := cmd.OutOrStdout()
	if settings.Output != "text" {
		return writeStructured(out, settings.Output, res)
	}
	if !res.Matched {
		_, err := fmt.Fprintln(out, noHintText)
		return err
	}
	text := res.Text
	if markup, _ := cmd.Flags().GetBool("markup"); !markup {
		text = render.StripMarkup(text)
	}
	_, err = hintColor.Fprintln(out, text)
	return err
}
