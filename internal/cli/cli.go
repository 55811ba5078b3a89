// Package cli holds the operator commands run against the service database.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/lshigami/orientation-event/internal/model"
	"github.com/lshigami/orientation-event/internal/repository"
	"github.com/lshigami/orientation-event/internal/service"
)

// OpenDB returns a migrated database handle.
type OpenDB func() (*gorm.DB, error)

func NewRootCommand(open OpenDB) *cobra.Command {
	root := &cobra.Command{
		Use:           "orientctl",
		Short:         "Operator commands for the orientation event service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCreateUserCommand(open), newSetSuperAdminCommand(open))
	return root
}

func newCreateUserCommand(open OpenDB) *cobra.Command {
	var (
		email, password     string
		firstName, lastName string
		staff               bool
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			users := repository.NewUserRepository(db)
			ctx := cmd.Context()

			email = strings.TrimSpace(email)
			existing, err := users.FindByEmail(ctx, email)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("un utilisateur avec l'email %q existe déjà", email)
			}
			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}
			user := &model.User{Email: email, Password: hash, IsStaff: staff}
			if firstName != "" {
				user.FirstName = &firstName
			}
			if lastName != "" {
				user.LastName = &lastName
			}
			if err := users.Create(ctx, user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Utilisateur %s créé (id %d, rôles %s)\n",
				user.Email, user.ID, strings.Join(user.Roles(), ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the account")
	cmd.Flags().StringVar(&password, "password", "", "password of the account")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().BoolVar(&staff, "staff", false, "create a staff member")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSetSuperAdminCommand(open OpenDB) *cobra.Command {
	return &cobra.Command{
		Use:   "set-super-admin <email>",
		Short: "Grant the super admin role to an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			users := repository.NewUserRepository(db)
			ctx := cmd.Context()

			user, err := users.FindByEmail(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("utilisateur avec l'email %q non trouvé", args[0])
			}
			user.IsStaff = true
			user.IsSuperAdmin = true
			if err := users.Save(ctx, user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s est maintenant super administrateur\n", user.Email)
			return nil
		},
	}
}
