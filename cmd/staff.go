package main

import (
	"fmt"

	"github.com/franciscosanchezn/gin-pizzeria/internal/models"
	"github.com/franciscosanchezn/gin-pizzeria/internal/services"
	"github.com/spf13/cobra"
)

func newStaffCmd() *cobra.Command {
	staff := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}

	var req services.NewStaff
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := setupDatabase(conf)
			if err != nil {
				return err
			}

			user, err := services.NewUserService(db).CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %s (id %d)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&req.Email, "email", "", "login email")
	create.Flags().StringVar(&req.Name, "name", "", "display name")
	create.Flags().StringVar(&req.Password, "password", "", "login password")
	create.Flags().StringVar(&req.Role, "role", models.RoleKitchen, "kitchen, manager or admin")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	staff.AddCommand(create)
	return staff
}

func newClientCmd() *cobra.Command {
	client := &cobra.Command{
		Use:   "client",
		Short: "Manage OAuth2 machine clients",
	}

	var (
		owner string
		req   services.NewClient
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a client credentials client acting as a staff user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := setupDatabase(conf)
			if err != nil {
				return err
			}

			user, err := services.NewUserService(db).GetUserByEmail(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("staff user %s: %w", owner, err)
			}
			issued, err := services.NewClientService(db).CreateClient(cmd.Context(), user.ID, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Client ID:     %s\n", issued.Client.ID)
			fmt.Fprintf(out, "Client Secret: %s\n", issued.Secret)
			fmt.Fprintf(out, "Role:          %s\n", user.Role)
			fmt.Fprintln(out, "The secret is not stored and cannot be shown again.")
			return nil
		},
	}
	create.Flags().StringVar(&owner, "email", "", "email of the owning staff user")
	create.Flags().StringVar(&req.Name, "name", "cli client", "client name")
	create.Flags().StringVar(&req.Domain, "domain", "", "client domain")
	create.Flags().StringVar(&req.Scopes, "scopes", "read", "space separated scopes")
	_ = create.MarkFlagRequired("email")

	client.AddCommand(create)
	return client
}
