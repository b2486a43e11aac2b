package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketdesk/transcript-ledger/internal/config"
	"github.com/ticketdesk/transcript-ledger/internal/domain"
	"github.com/ticketdesk/transcript-ledger/internal/service"
)

type tokenOutput struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the reporting API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			meta, token, err := service.NewAccessService(cfg.Auth).Issue(subject, domain.Role(strings.ToUpper(role)))
			if err != nil {
				return err
			}
			return writeJSON(tokenOutput{Token: token, Subject: meta.SubjectID, Role: string(meta.Role), ExpiresAt: meta.ExpiresAt})
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject, e.g. the dashboard name (required)")
	cmd.Flags().StringVar(&role, "role", "reporter", "Role: reporter or admin")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newHashKeyCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "hash-key",
		Short: "Hash a reporter key for AUTH_REPORTER_KEY_HASH",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			hash, err := service.NewAccessService(cfg.Auth).HashKey(key)
			if err != nil {
				return err
			}
			return writeJSON(map[string]string{"hash": hash})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Reporter key (required)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
