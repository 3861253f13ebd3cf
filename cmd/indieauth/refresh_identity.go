package main

import (
	"fmt"

	"github.com/lmaotrigine/indieauth/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func refreshIdentityCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "refresh-identity",
		Short: "Exchange the stored GitLab refresh token of a federated identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.New()
			setupLogger(cfg)

			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.federation == nil {
				return errors.New("no federated provider is configured")
			}

			identity, err := a.federation.Refresh(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "refreshed identity %s for GitLab user %d\n", identity.ID, identity.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "identity id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
