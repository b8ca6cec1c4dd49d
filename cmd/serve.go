package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsxbet/sql-sandbox/pkg/logger"
	"github.com/nsxbet/sql-sandbox/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sandbox editor over HTTP",
	Long: `Serve the web editor: a text area, Run (ctrl+enter) and Reset buttons, the
result of the last script, the room cards and the schema.

JSON endpoints: POST /api/run {"sql": "..."}, POST /api/reset and
GET /api/hint?sql=...`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "listen address (default 127.0.0.1:8080)")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := openSession(ctx, settings)
	if err != nil {
		return err
	}
	defer session.Close()

	log := logger.NewWithLevel(min(logLevel(), slog.LevelInfo)).With("listen", settings.Listen)
	return server.ListenAndServe(ctx, settings.Listen, server.New(session, log), log)
}
