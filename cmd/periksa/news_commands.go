package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"periksa/internal/api"
)

type newsListPayload struct {
	Total int            `json:"total"`
	News  []api.NewsItem `json:"news"`
}

func newNewsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Browse ingested news records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newNewsListCommand(ctx, "list", "Show recently ingested records", "/api/news"))
	cmd.AddCommand(newNewsListCommand(ctx, "unlabeled", "Show records awaiting an admin label", "/api/admin/unlabeled"))
	cmd.AddCommand(newNewsLabeledCommand(ctx))
	cmd.AddCommand(newNewsShowCommand(ctx))
	return cmd
}

func newNewsListCommand(ctx *commandContext, use, short, path string) *cobra.Command {
	var jsonOut bool
	var limit int

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var payload newsListPayload
			if err := client.get(cmd.Context(), path+"?limit="+strconv.Itoa(limit), &payload); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, payload)
			}
			printNewsTable(cmd, payload.News)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum records to list")
	return cmd
}

func newNewsLabeledCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var limit int
	var trained string

	cmd := &cobra.Command{
		Use:   "labeled",
		Short: "Show admin-labeled records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			path := "/api/admin/labeled?limit=" + strconv.Itoa(limit)
			if trained != "" {
				if _, err := strconv.ParseBool(trained); err != nil {
					return fmt.Errorf("invalid --trained value %q", trained)
				}
				path += "&trained=" + trained
			}
			var payload newsListPayload
			if err := client.get(cmd.Context(), path, &payload); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, payload)
			}
			printNewsTable(cmd, payload.News)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum records to list")
	cmd.Flags().StringVar(&trained, "trained", "", "Filter by trained status (true/false)")
	return cmd
}

func newNewsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <news-id>",
		Short: "Show one record in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var item api.NewsItem
			if err := client.get(cmd.Context(), "/api/news/"+args[0], &item); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, item)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", item.ID)
			fmt.Fprintf(out, "Title:       %s\n", item.Title)
			fmt.Fprintf(out, "Source:      %s\n", item.Source)
			fmt.Fprintf(out, "Link:        %s\n", item.Link)
			fmt.Fprintf(out, "Label:       %s (by %s)\n", effectiveLabel(item), item.LabeledBy)
			fmt.Fprintf(out, "Confidence:  %.3f\n", item.SystemConfidence)
			fmt.Fprintf(out, "Training:    eligible=%t trained=%t\n", item.CanUseForTraining, item.Trained)
			if item.LabelNotes != "" {
				fmt.Fprintf(out, "Notes:       %s\n", item.LabelNotes)
			}
			fmt.Fprintf(out, "Created:     %s\n", item.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "\n%s\n", item.Content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func printNewsTable(cmd *cobra.Command, items []api.NewsItem) {
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No records found.")
		return
	}
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{
			shortID(item.ID),
			truncate(item.Title, 60),
			item.Source,
			effectiveLabel(item),
			item.LabeledBy,
			fmt.Sprintf("%t", item.Trained),
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Title", "Source", "Label", "Labeled By", "Trained"},
		rows,
		nil,
	))
}

func effectiveLabel(item api.NewsItem) string {
	if item.ManualLabel != "" {
		return item.ManualLabel
	}
	return item.SystemLabel
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
