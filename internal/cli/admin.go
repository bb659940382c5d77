package cli

import (
	"fmt"

	"cohort-admin/internal/app"
	"cohort-admin/internal/config"
	"cohort-admin/internal/infra/postgres"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewInitAdminCmd points the admin staff account at ADMIN_ADDRESS, creating it if needed.
func NewInitAdminCmd(configPath *string) *cobra.Command {
	var wallet string
	cmd := &cobra.Command{
		Use:   "init-admin",
		Short: "Create or update the admin staff wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			if wallet == "" {
				wallet = cfg.Admin.Wallet
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			db := postgres.Open(cfg.Postgres.URL)
			defer db.Close()

			dir := app.NewWalletDirectory(postgres.NewStaffStore(db), postgres.NewRegistrationStore(db), log)
			admin, created, err := dir.EnsureAdmin(cmd.Context(), wallet)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"staff_id": admin.ID, "wallet": admin.WalletAddress, "created": created}).Info("admin wallet set")
			return nil
		},
	}
	cmd.Flags().StringVar(&wallet, "wallet", "", "admin wallet address (defaults to ADMIN_ADDRESS)")
	return cmd
}
