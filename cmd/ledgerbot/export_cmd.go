package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketdesk/transcript-ledger/internal/export"
	"github.com/ticketdesk/transcript-ledger/internal/ledger"
)

type exportOutput struct {
	Command    string `json:"command"`
	Path       string `json:"path"`
	Records    int    `json:"records"`
	DurationMS int64  `json:"duration_ms"`
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ledger to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync() //nolint:errcheck

			if out == "" {
				out = fmt.Sprintf("ledger-%s.xlsx", time.Now().Format("20060102"))
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			start := time.Now()
			book := ledger.New(ledger.Dependencies{Store: rt.store, Layout: rt.layout, Logger: rt.logger})
			n, err := export.Ledger(cmd.Context(), book, f)
			if err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			return writeJSON(exportOutput{
				Command:    "export",
				Path:       out,
				Records:    n,
				DurationMS: time.Since(start).Milliseconds(),
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output path (default ledger-YYYYMMDD.xlsx)")
	return cmd
}
