package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/sql-sandbox/pkg/tui"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Open the terminal editor",
	Long: `Open an interactive editor on a sandbox.

  ctrl+r  run the script
  ctrl+l  reset the database
  ctrl+s  switch between rooms and schema
  esc     quit`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, _ []string) error {
	if !stdinIsTerminal() {
		return errors.New("repl needs a terminal; use run for scripts")
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	session, err := openSession(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer session.Close()
	return tui.Run(cmd.Context(), session)
}
