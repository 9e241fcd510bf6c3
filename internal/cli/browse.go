package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/me/botadmin/internal/logging"
	"github.com/me/botadmin/internal/tui"
	"github.com/me/botadmin/internal/ui"
	"github.com/me/botadmin/pkg/botapi"
	"github.com/me/botadmin/pkg/model"
)

func newBrowseCmd() *cobra.Command {
	var (
		pageSize int
		logFile  string
	)

	cmd := &cobra.Command{
		Use:   "browse <screen>",
		Short: "Browse a screen interactively",
		Long: "Open an interactive table of a screen.\n" +
			"Keys: ←/→ pages, / filter, s sort, S reverse, d delete, r refresh, q quit.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := authContext(cmd.Context())
			if err != nil {
				return err
			}

			// The browser owns the terminal, so logs go to a file.
			if logFile == "" {
				if logFile, err = defaultLogFile(); err != nil {
					return err
				}
			}
			fileLogger, closer, err := logging.NewFileLogger(logging.ParseLevel(flagLogLevel), flagLogFormat, logFile)
			if err != nil {
				return err
			}
			defer closer.Close()
			logger = fileLogger
			client = botapi.NewClient(botapi.DefaultConfig().WithBaseURL(flagAPI), logger)
			catalog = ui.NewCatalog(client, logger)

			view, err := catalog.NewView(args[0], pageSize)
			if err != nil {
				return err
			}

			m := tui.New(ctx, view, catalog.Title(args[0]))
			p := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("browse %s: %w", args[0], err)
			}
			if fm, ok := final.(tui.Model); ok {
				return withLoginHint(fm.Err())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", model.DefaultPageSize, "Rows per page")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file (default ~/.botadmin/botadm.log)")
	return cmd
}

func defaultLogFile() (string, error) {
	p, err := credentialsPath()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return filepath.Join(dir, "botadm.log"), nil
}
