package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"records-portal-api/models"
	"records-portal-api/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type seedUserOptions struct {
	email    string
	name     string
	role     string
	password string
}

// newSeedUsersCommand creates or updates a user account. An existing email
// keeps its id; role, name and password are overwritten.
func newSeedUsersCommand(app *App) *cobra.Command {
	opts := &seedUserOptions{}

	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Create or update a user with a role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.database()
			if err != nil {
				return err
			}
			user, created, err := seedUser(db, opts)
			if err != nil {
				return err
			}

			verb := "updated"
			if created {
				verb = "created"
			}
			if app.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"user": user, "created": created})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s user %d %s (%s)\n", verb, user.UserID, user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.role, "role", "", "role, e.g. recordsOfficer or boardChair (required)")
	cmd.Flags().StringVar(&opts.password, "password", "", "initial password, at least 8 characters (required)")
	return cmd
}

func seedUser(db *gorm.DB, opts *seedUserOptions) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(opts.email))
	if !utils.ValidateEmail(email) {
		return nil, false, fmt.Errorf("invalid email %q", opts.email)
	}
	role, ok := utils.NormalizeRole(opts.role)
	if !ok || !models.IsUserRole(string(role)) {
		return nil, false, fmt.Errorf("invalid role %q: must be one of %v", opts.role, models.UserRoles)
	}
	if valid, msg := utils.ValidatePassword(opts.password); !valid {
		return nil, false, errors.New(msg)
	}
	hash, err := utils.HashPassword(opts.password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	var user models.User
	err = db.Where("email = ?", email).First(&user).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return nil, false, fmt.Errorf("load user: %w", err)
	}

	user.Email = email
	user.Role = string(role)
	user.Password = hash
	user.IsActive = true
	user.UpdateAt = &now
	if name := strings.TrimSpace(opts.name); name != "" {
		user.FullName = name
	}
	if created {
		user.CreateAt = &now
		err = db.Create(&user).Error
	} else {
		err = db.Save(&user).Error
	}
	if err != nil {
		return nil, false, fmt.Errorf("save user: %w", err)
	}
	return &user, created, nil
}

// newHashPasswordsCommand hashes any plain-text passwords left from an import.
func newHashPasswordsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-passwords",
		Short: "Hash plain-text passwords with bcrypt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.database()
			if err != nil {
				return err
			}

			var users []models.User
			if err := db.Find(&users).Error; err != nil {
				return fmt.Errorf("fetch users: %w", err)
			}

			out := cmd.OutOrStdout()
			updated := 0
			for _, user := range users {
				// bcrypt hashes start with $2
				if user.Password == "" || strings.HasPrefix(user.Password, "$2") {
					continue
				}
				hashed, err := utils.HashPassword(user.Password)
				if err != nil {
					fmt.Fprintf(out, "failed to hash password for %s: %v\n", user.Email, err)
					continue
				}
				if err := db.Model(&models.User{}).Where("user_id = ?", user.UserID).Update("password", hashed).Error; err != nil {
					fmt.Fprintf(out, "failed to update password for %s: %v\n", user.Email, err)
					continue
				}
				updated++
			}
			fmt.Fprintf(out, "%d password(s) hashed\n", updated)
			return nil
		},
	}
}
