package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"periksa/internal/api"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Trigger one RSS ingestion cycle now",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var summary api.IngestSummary
			if err := client.post(cmd.Context(), "/api/news/fetch", nil, &summary); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d items: %d new, %d already known, %d failed\n",
				summary.Total, summary.Processed, summary.Skipped, summary.Failed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newLabelCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var notes string
	var labeledBy string

	cmd := &cobra.Command{
		Use:   "label <news-id> <hoax|non-hoax>",
		Short: "Label a record; admin labels feed the training queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			request := api.LabelRequest{
				NewsID:    args[0],
				Label:     args[1],
				Notes:     notes,
				LabeledBy: labeledBy,
			}
			var response api.LabelResponse
			if err := client.post(cmd.Context(), "/api/admin/label", request, &response); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, response)
			}
			fmt.Fprintln(cmd.OutOrStdout(), response.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().StringVar(&notes, "notes", "", "Reviewer notes to store with the label")
	cmd.Flags().StringVar(&labeledBy, "by", "", "Labeler identity (admin or user; default admin)")
	return cmd
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show training queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var status api.QueueStatusResponse
			if err := client.get(cmd.Context(), "/api/admin/training-queue", &status); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pending:   %d\n", status.TotalPending)
			fmt.Fprintf(out, "Trained:   %d\n", status.TotalTrained)
			fmt.Fprintf(out, "Threshold: %d\n", status.Threshold)
			fmt.Fprintf(out, "Ready:     %t\n", status.ReadyForTraining)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}

func newPendingCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var limit int

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List records waiting for the next retrain",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var payload struct {
				Total int               `json:"total"`
				Items []api.PendingItem `json:"items"`
			}
			if err := client.get(cmd.Context(), "/api/admin/pending-training?limit="+strconv.Itoa(limit), &payload); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, payload)
			}
			if len(payload.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending training data.")
				return nil
			}
			rows := make([][]string, len(payload.Items))
			for i, item := range payload.Items {
				labeledAt := ""
				if item.LabeledAt != nil {
					labeledAt = item.LabeledAt.Format(time.RFC3339)
				}
				rows[i] = []string{
					shortID(item.ID),
					truncate(item.Text, 60),
					strconv.Itoa(item.Label),
					item.Source,
					labeledAt,
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Text", "Label", "Source", "Labeled At"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum items to list")
	return cmd
}

func newRetrainCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var force bool

	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Trigger a model retrain from pending labeled data",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			path := "/api/admin/trigger-retrain"
			if force {
				path += "?force=true"
			}
			var response api.RetrainResponse
			if err := client.post(cmd.Context(), path, nil, &response); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, response)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, response.Message)
			if response.Success {
				fmt.Fprintf(out, "Samples used: %d\n", response.SamplesUsed)
				if response.Accuracy != nil {
					fmt.Fprintf(out, "Accuracy:     %.4f\n", *response.Accuracy)
				}
				if response.F1 != nil {
					fmt.Fprintf(out, "F1:           %.4f\n", *response.F1)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().BoolVar(&force, "force", false, "Retrain even when the threshold is not met")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past retrain runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var payload struct {
				Total   int               `json:"total"`
				History []api.HistoryItem `json:"history"`
			}
			if err := client.get(cmd.Context(), "/api/admin/training-history?limit="+strconv.Itoa(limit), &payload); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, payload)
			}
			if len(payload.History) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No training history.")
				return nil
			}
			rows := make([][]string, len(payload.History))
			for i, entry := range payload.History {
				rows[i] = []string{
					entry.TrainedAt.Format(time.RFC3339),
					entry.Status,
					strconv.Itoa(entry.SamplesUsed),
					formatMetric(entry.Accuracy),
					formatMetric(entry.F1),
					truncate(entry.Message, 50),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Trained At", "Status", "Samples", "Accuracy", "F1", "Message"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum runs to list")
	return cmd
}

func formatMetric(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', 4, 64)
}
