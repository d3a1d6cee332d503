package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"periksa/internal/api"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

type statusPayload struct {
	Running      bool                    `json:"running"`
	DatabasePath string                  `json:"database_path"`
	LockPath     string                  `json:"lock_path"`
	Queue        api.QueueStatusResponse `json:"queue"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and training queue summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var payload statusPayload
			if err := client.get(cmd.Context(), "/api/status", &payload); err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, payload)
			}

			state := "stopped"
			if payload.Running {
				state = "running"
			}
			if isTerminal(cmd.OutOrStdout()) {
				if payload.Running {
					state = ansiGreen + state + ansiReset
				} else {
					state = ansiRed + state + ansiReset
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:    %s\n", state)
			fmt.Fprintf(out, "Database:  %s\n", payload.DatabasePath)
			fmt.Fprintf(out, "Lock file: %s\n", payload.LockPath)
			fmt.Fprintf(out, "Pending:   %d / %d (trained: %d, ready: %t)\n",
				payload.Queue.TotalPending,
				payload.Queue.Threshold,
				payload.Queue.TotalTrained,
				payload.Queue.ReadyForTraining)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON output")
	return cmd
}
