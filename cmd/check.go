package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsxbet/sql-sandbox/pkg/advisor"
	"github.com/nsxbet/sql-sandbox/pkg/config"
	"github.com/nsxbet/sql-sandbox/pkg/render"
	"github.com/nsxbet/sql-sandbox/pkg/reviewer"
	"github.com/nsxbet/sql-sandbox/pkg/types"
)

// errReviewFailed makes the command exit non-zero without printing usage.
var errReviewFailed = errors.New("review found issues")

var checkCmd = &cobra.Command{
	Use:   "check [flags] <sql-file>",
	Short: "Check a SQL script before running it on the sandbox",
	Long: `Check the statements of a file against the configured review rules.

By default every statement is looked up in the dialect hint catalog. With
--dry-run the script is also executed on a fresh sandbox inside a transaction
that is rolled back, and the first statement SQLite rejects is reported.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if listRules, _ := cmd.Flags().GetBool("list-rules"); listRules {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Flags for check command
	checkCmd.Flags().StringP("rules", "r", "", "path to rules configuration file")
	checkCmd.Flags().Bool("dry-run", false, "execute the script on a sandbox and roll it back")
	checkCmd.Flags().Bool("fail-on-error", false, "exit with non-zero code if errors are found")
	checkCmd.Flags().Bool("fail-on-warning", false, "exit with non-zero code if warnings are found")
	checkCmd.Flags().Bool("list-rules", false, "list the review rules and hint rules, then exit")

	// Bind flags to viper
	_ = viper.BindPFlag("rules", checkCmd.Flags().Lookup("rules"))
	_ = viper.BindPFlag("dry-run", checkCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("fail-on-error", checkCmd.Flags().Lookup("fail-on-error"))
	_ = viper.BindPFlag("fail-on-warning", checkCmd.Flags().Lookup("fail-on-warning"))
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	slog.Debug("Starting check command", "args", args)

	if listRules, _ := cmd.Flags().GetBool("list-rules"); listRules {
		return listCheckRules(cmd.OutOrStdout(), settings)
	}

	script, err := readScript(args[0])
	if err != nil {
		return err
	}

	r := reviewer.New(types.Engine_SQLITE)
	if settings.Rules != "" {
		if err := r.WithConfig(settings.Rules); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	opts := []reviewer.ReviewOption{reviewer.WithHints(hintSet(settings))}
	if viper.GetBool("dry-run") {
		session, err := openSession(ctx, settings)
		if err != nil {
			return err
		}
		defer session.Close()
		opts = append(opts, reviewer.WithDriver(session.DB()))
	}

	result, err := r.Review(ctx, script, opts...)
	if err != nil {
		return err
	}
	result.SortByPosition()

	out := cmd.OutOrStdout()
	if settings.Output == "text" {
		err = outputText(out, result)
	} else {
		err = writeStructured(out, settings.Output, result)
	}
	if err != nil {
		return err
	}

	if result.HasErrors() && viper.GetBool("fail-on-error") {
		return errReviewFailed
	}
	if result.HasWarnings() && viper.GetBool("fail-on-warning") {
		return errReviewFailed
	}
	return nil
}

func outputText(w io.Writer, result *reviewer.ReviewResult) error {
	if len(result.Advices) == 0 {
		_, err := successColor.Fprintln(w, "No issues found.")
		return err
	}

	for _, advice := range result.Advices {
		var prefix string
		switch advice.Status {
		case types.Advice_ERROR:
			prefix = errorColor.Sprint("ERROR")
		case types.Advice_WARNING:
			prefix = warningColor.Sprint("WARNING")
		default:
			prefix = infoColor.Sprint("INFO")
		}

		position := ""
		if advice.StartPosition != nil {
			position = fmt.Sprintf(" at line %d, column %d", advice.StartPosition.Line, advice.StartPosition.Column)
		}

		fmt.Fprintf(w, "[%s] %s%s\n", prefix, advice.Title, position)
		if advice.Content != "" {
			fmt.Fprintf(w, "  %s\n", render.StripMarkup(advice.Content))
		}
		fmt.Fprintln(w)
	}

	_, err := fmt.Fprintf(w, "Summary: %d error(s), %d warning(s)\n", result.Summary.Errors, result.Summary.Warnings)
	return err
}

func listCheckRules(w io.Writer, settings *config.Settings) error {
	fmt.Fprintln(w, "Review rules:")
	for _, ruleType := range advisor.RegisteredTypes(types.Engine_SQLITE) {
		fmt.Fprintf(w, "  %s\n", ruleType)
	}
	fmt.Fprintln(w, "Hint rules:")
	for _, rule := range hintSet(settings).Rules() {
		fmt.Fprintf(w, "  %d  %-32s %s\n", rule.Code, rule.Type, rule.Title)
	}
	return nil
}
