package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nsxbet/sql-sandbox/pkg/render"
	"github.com/nsxbet/sql-sandbox/pkg/sandbox"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <sql-file|->",
	Short: "Run a SQL script on a fresh sandbox",
	Long: `Run the statements of a file (or stdin with "-") on a freshly seeded
sandbox and print the result tables, or the engine error with its hint.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("rooms", false, "print the rooms and their sensors afterwards")
	runCmd.Flags().Bool("schema", false, "print the tables and their columns afterwards")
}

// runReport is the structured output of the run command.
type runReport struct {
	Outcome *sandbox.Outcome              `json:"outcome"          yaml:"outcome"`
	Rooms   []sandbox.Room                `json:"rooms,omitempty"  yaml:"rooms,omitempty"`
	Schema  *types.DatabaseSchemaMetadata `json:"schema,omitempty" yaml:"schema,omitempty"`
}

func runRun(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	script, err := readScript(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := openSession(ctx, settings)
	if err != nil {
		return err
	}
	defer session.Close()

	outcome, err := session.Exec(ctx, script)
	if err != nil {
		return err
	}

	showRooms, _ := cmd.Flags().GetBool("rooms")
	showSchema, _ := cmd.Flags().GetBool("schema")
	rooms, roomsErr := session.Rooms(ctx)
	schema, schemaErr := session.Schema(ctx)

	out := cmd.OutOrStdout()
	if settings.Output != "text" {
		report := runReport{Outcome: outcome}
		if showRooms {
			report.Rooms = rooms
		}
		if showSchema {
			report.Schema = schema
		}
		return writeStructured(out, settings.Output, report)
	}

	if failed := outcome.Failed; failed != nil {
		errorColor.Fprintf(out, "%s%s\n", render.ErrorPrefix, failed.Err)
		if failed.Hint.Matched {
			hintColor.Fprintln(out, render.StripMarkup(failed.Hint.Text))
		}
	} else {
		fmt.Fprint(out, render.ResultText(outcome))
	}
	if showRooms {
		fmt.Fprintln(out)
		fmt.Fprint(out, render.RoomsText(rooms, roomsErr))
	}
	if showSchema {
		fmt.Fprintln(out)
		fmt.Fprint(out, render.SchemaText(schema, schemaErr))
	}
	return nil
}
