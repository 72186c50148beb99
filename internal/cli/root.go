package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"storyfeed-backend/internal/common/config"
	"storyfeed-backend/internal/common/logger"
	userrepo "storyfeed-backend/internal/features/user/repository"
	userservice "storyfeed-backend/internal/features/user/service"
	"storyfeed-backend/internal/platform/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool

	cfg *config.Config
}

// NewRootCommand creates the root command for the socialctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "socialctl",
		Short: "Administrative tasks for the storyfeed backend",
		Long:  "Runs one-off maintenance against the configured content store: schema migration and privileged account setup.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			level := cfg.LogLevel
			if opts.Verbose {
				level = "debug"
			}
			// stdout is reserved for command output
			logger.Init(logger.Options{Service: "socialctl", Level: level, Output: cmd.ErrOrStderr()})
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSetOwnerCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))

	return cmd
}

func (o *RootOptions) openStore(ctx context.Context) (store.Store, error) {
	if o.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return store.Open(ctx, o.cfg.Store)
}

// userService runs without a stats cache or counters; the CLI only touches accounts.
func (o *RootOptions) userService(st store.Store) userservice.UserService {
	cost := o.cfg.Auth.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return userservice.NewUserService(userrepo.NewUserRepository(st), nil, nil, nil, userservice.Config{BcryptCost: cost})
}
