package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"periksa/internal/api"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check text or a URL for hoax indications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCheckTextCommand(ctx))
	cmd.AddCommand(newCheckURLCommand(ctx))
	cmd.AddCommand(newCheckStatsCommand(ctx))
	cmd.AddCommand(newCheckRecentCommand(ctx))
	return cmd
}

func newCheckTextCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var title string

	cmd := &cobra.Command{
		Use:   "text [content]",
		Short: "Check article text (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			if len(args) == 1 {
				content = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				content = strings.TrimSpace(string(data))
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			request := api.CheckRequest{Title: title, Content: content}
			var response api.CheckResponse
			if err := client.post(cmd.Context(), "/api/checker/check", request, &response); err != nil {
				return err
			}
			return printCheckResponse(cmd, response, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().StringVar(&title, "title", "", "Article title")
	return cmd
}

func newCheckURLCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "url <url>",
		Short: "Fetch an article by URL and check it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			request := struct {
				URL string `json:"url"`
			}{URL: args[0]}
			var response api.CheckResponse
			if err := client.post(cmd.Context(), "/api/checker/check-url", request, &response); err != nil {
				return err
			}
			return printCheckResponse(cmd, response, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func printCheckResponse(cmd *cobra.Command, response api.CheckResponse, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, response)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Prediction: %s (confidence %.1f%%)\n", response.Prediction, response.Confidence*100)
	fmt.Fprintln(out, response.Message)
	if response.Warning != "" {
		fmt.Fprintf(out, "\n%s\n", response.Warning)
	}
	return nil
}

func newCheckStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate checker usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var stats api.CheckStatsResponse
			if err := client.get(cmd.Context(), "/api/checker/stats", &stats); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Unique articles: %d\n", stats.UniqueArticles)
			fmt.Fprintf(out, "Total checks:    %d\n", stats.TotalChecks)
			fmt.Fprintf(out, "Hoax verdicts:   %d\n", stats.HoaxPredictions)
			fmt.Fprintf(out, "Valid verdicts:  %d\n", stats.NonHoaxPredictions)
			fmt.Fprintf(out, "Hoax ratio:      %.1f%%\n", stats.HoaxRatio*100)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newCheckRecentCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent checker submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var payload struct {
				Total  int               `json:"total"`
				Checks []api.CheckRecord `json:"checks"`
			}
			if err := client.get(cmd.Context(), "/api/checker/recent?limit="+strconv.Itoa(limit), &payload); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, payload)
			}
			if len(payload.Checks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No checks recorded.")
				return nil
			}
			rows := make([][]string, len(payload.Checks))
			for i, check := range payload.Checks {
				rows[i] = []string{
					check.ID,
					truncate(check.Title, 40),
					check.Prediction,
					fmt.Sprintf("%.2f", check.Confidence),
					strconv.Itoa(check.CheckCount),
					check.LastCheckedAt.Format(time.RFC3339),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Prediction", "Confidence", "Checks", "Last Checked"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum checks to list")
	return cmd
}
