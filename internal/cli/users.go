package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"usermgr/internal/domain"
	"usermgr/internal/service"
)

const (
	msgInitialized = "Database Initialized"
	msgNoUsers     = "No users found"
	msgTaken       = "Username or email already taken!"
)

func (a *app) initializeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "initialize",
		Short: "Reset database and create default user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				seed, err := users.Initialize(cmd.Context())
				if err != nil {
					return fmt.Errorf("initialize: %w", err)
				}
				a.logger.Debugf("seeded user %s with id %d", seed.Username, seed.ID)
				fmt.Fprintln(cmd.OutOrStdout(), msgInitialized)
				return nil
			})
		},
	}
}

func (a *app) getUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-user USERNAME",
		Short: "Get a user by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				user, err := users.Get(cmd.Context(), username)
				if errors.Is(err, service.ErrUserNotFound) {
					printNotFound(cmd.OutOrStdout(), username)
					return nil
				}
				if err != nil {
					return fmt.Errorf("get user: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), user)
				return nil
			})
		},
	}
}

func (a *app) getAllUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-all-users",
		Short: "Get all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				all, err := users.ListAll(cmd.Context())
				if err != nil {
					return fmt.Errorf("get all users: %w", err)
				}
				printUsers(cmd.OutOrStdout(), all)
				return nil
			})
		},
	}
}

func (a *app) findUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find-user QUERY",
		Short: "Find user by partial username or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				found, err := users.Find(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("find user: %w", err)
				}
				printUsers(cmd.OutOrStdout(), found)
				return nil
			})
		},
	}
}

func (a *app) listUsersCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list-users",
		Short: "List users with limit and offset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				page, err := users.List(cmd.Context(), limit, offset)
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
				printUsers(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of users")
	cmd.Flags().IntVar(&offset, "offset", 0, "Users to skip")
	return cmd
}

func (a *app) changeEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-email USERNAME NEW_EMAIL",
		Short: "Change a user's email",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, newEmail := args[0], args[1]
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				err := users.ChangeEmail(cmd.Context(), username, newEmail)
				switch {
				case errors.Is(err, service.ErrUserNotFound):
					printNotFound(cmd.OutOrStdout(), username)
				case errors.Is(err, service.ErrUserAlreadyExists):
					fmt.Fprintln(cmd.OutOrStdout(), msgTaken)
				case err != nil:
					return fmt.Errorf("change email: %w", err)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "Updated %s's email\n", username)
				}
				return nil
			})
		},
	}
}

func (a *app) createUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-user USERNAME EMAIL PASSWORD",
		Short: "Create a new user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				user, err := users.Create(cmd.Context(), args[0], args[1], args[2])
				if errors.Is(err, service.ErrUserAlreadyExists) {
					fmt.Fprintln(cmd.OutOrStdout(), msgTaken)
					return nil
				}
				if err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), user)
				return nil
			})
		},
	}
}

func (a *app) deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user USERNAME",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				err := users.Delete(cmd.Context(), username)
				if errors.Is(err, service.ErrUserNotFound) {
					printNotFound(cmd.OutOrStdout(), username)
					return nil
				}
				if err != nil {
					return fmt.Errorf("delete user: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", username)
				return nil
			})
		},
	}
}

func printNotFound(w io.Writer, username string) {
	fmt.Fprintf(w, "%s not found!\n", username)
}

func printUsers(w io.Writer, users []domain.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, msgNoUsers)
		return
	}
	for _, user := range users {
		fmt.Fprintln(w, user)
	}
}
