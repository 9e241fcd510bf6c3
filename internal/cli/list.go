package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/me/botadmin/internal/listview"
	"github.com/me/botadmin/pkg/model"
)

func newListCmd() *cobra.Command {
	var (
		page     int
		pageSize int
		filter   string
		sortKey  string
		desc     bool
	)

	cmd := &cobra.Command{
		Use:   "list <screen>",
		Short: "Print one page of a screen",
		Long: "Print one page of users, messages, actions, mailings, groups or responses.\n" +
			"--filter narrows the page to rows whose filter column contains the text.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := authContext(cmd.Context())
			if err != nil {
				return err
			}
			view, err := catalog.NewView(args[0], pageSize)
			if err != nil {
				return err
			}

			if err := view.Load(ctx, 1); err != nil {
				return withLoginHint(err)
			}
			if page != 1 {
				if err := view.SetPage(ctx, page); err != nil {
					return withLoginHint(err)
				}
			}
			view.SetFilterText(filter)
			if sortKey != "" {
				if err := view.SetSort(sortKey, desc); err != nil {
					return err
				}
			}

			printSnapshot(cmd.OutOrStdout(), view.Snapshot())
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", model.DefaultPageSize, "Rows per page")
	cmd.Flags().StringVar(&filter, "filter", "", "Show only rows whose filter column contains this text")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort the page by this column")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <screen> <id>",
		Short: "Delete one entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := authContext(cmd.Context())
			if err != nil {
				return err
			}
			view, err := catalog.NewView(args[0], model.DefaultPageSize)
			if err != nil {
				return err
			}
			if err := view.Load(ctx, 1); err != nil {
				return withLoginHint(err)
			}
			if err := view.DeleteRow(ctx, args[1]); err != nil {
				return withLoginHint(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s.\n", args[0], args[1])
			return nil
		},
	}
}

// printSnapshot renders a list snapshot as a bordered table followed by
// the paging line.
func printSnapshot(w io.Writer, s listview.Snapshot) {
	if len(s.Rows) == 0 {
		fmt.Fprintln(w, "No rows.")
	} else {
		headers := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			headers[i] = strings.ToUpper(c.Title)
			if c.Key == s.SortKey {
				headers[i] += sortArrow(s.SortDesc)
			}
		}
		rows := make([][]string, len(s.Rows))
		for i, r := range s.Rows {
			rows[i] = r.Cells
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(headers...).
			Rows(rows...)
		fmt.Fprintln(w, t.Render())
	}

	line := fmt.Sprintf("page %d of %d", s.PageNumber, s.TotalPages)
	if s.FilterText != "" {
		line += fmt.Sprintf(", %d of %d rows match %s~%q", len(s.Rows), s.Loaded, s.FilterColumn, s.FilterText)
	}
	fmt.Fprintln(w, line)
}

func sortArrow(desc bool) string {
	if desc {
		return " ▼"
	}
	return " ▲"
}
