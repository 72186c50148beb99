package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"storyfeed-backend/internal/platform/store"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create the records table in the configured SQL store",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := store.Migrate(cmd.Context(), st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "store %q migrated\n", rootOpts.cfg.Store.Driver)
			return nil
		},
	}
}

// NewSetOwnerCommand creates the set-owner command.
func NewSetOwnerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-owner <user-id>",
		Short: "Grant the owner role to an existing user",
		Long: `Grant the owner role to an existing user.

The owner role cannot be assigned through the API; this command is the only
way to create one.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			user, err := rootOpts.userService(st).SetOwner(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", user.ID, user.Email, user.Role)
			return nil
		},
	}
}

type createAdminOptions struct {
	email    string
	password string
	name     string
}

// NewCreateAdminCommand creates the create-admin command.
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &createAdminOptions{}

	cmd := &cobra.Command{
		Use:          "create-admin",
		Short:        "Create an admin account",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			user, err := rootOpts.userService(st).CreateAdmin(cmd.Context(), opts.email, opts.password, opts.name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "display name, defaults to the email")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
