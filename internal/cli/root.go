package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/botadmin/internal/logging"
	"github.com/me/botadmin/internal/ui"
	"github.com/me/botadmin/pkg/botapi"
)

var (
	flagAPI       string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger  *slog.Logger
	client  *botapi.Client
	catalog *ui.Catalog
)

// defaultAPI returns the default bot API URL, checking BOTADMIN_API env var first.
func defaultAPI() string {
	if s := os.Getenv("BOTADMIN_API"); s != "" {
		return s
	}
	return botapi.DefaultBaseURL
}

// NewRootCmd creates the root cobra command for the botadm CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "botadm",
		Short: "botadm manages the bot's users, messages and mailings",
		Long:  "botadm is the terminal client of the bot admin panel: it lists, browses and deletes bot entities.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
			client = botapi.NewClient(botapi.DefaultConfig().WithBaseURL(flagAPI), logger)
			catalog = ui.NewCatalog(client, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagAPI, "api", defaultAPI(), "Bot API URL (or BOTADMIN_API env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newLoginCmd(),
		newSignupCmd(),
		newLogoutCmd(),
		newListCmd(),
		newDeleteCmd(),
		newBrowseCmd(),
	)

	return root
}
