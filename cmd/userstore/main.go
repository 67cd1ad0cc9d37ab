package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"userstore/internal/config"
	"userstore/internal/repository/sqlite"
	"userstore/internal/service"
)

var logger = logrus.New()

// withService runs one operation inside a session scoped to the invocation:
// configuration and database are built fresh, the operation runs once, and
// the connection is released on every exit path.
func withService(fn func(ctx context.Context, users service.UserService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// schema creation belongs to initialize alone; any other command on an
	// uninitialized store surfaces the store error
	repo := sqlite.NewUserRepository(db)

	logger.Debugf("using database %s", cfg.Database.Path)
	return fn(context.Background(), service.NewUserService(repo))
}

func runInitialize(ctx context.Context, users service.UserService) error {
	if _, err := users.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	fmt.Println("Database Initialized")
	return nil
}

func runGetUser(ctx context.Context, users service.UserService, username string) error {
	user, err := users.Get(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Printf("%s not found!\n", username)
		return nil
	}
	fmt.Println(user)
	return nil
}

func runGetAllUsers(ctx context.Context, users service.UserService) error {
	all, err := users.List(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No users found!")
		return nil
	}
	for _, user := range all {
		fmt.Println(user)
	}
	return nil
}

func runChangeEmail(ctx context.Context, users service.UserService, username, newEmail string) error {
	// a uniqueness collision on the new address is not converted to a
	// message here; it surfaces as a process failure
	user, old, err := users.ChangeEmail(ctx, username, newEmail)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Printf("%s not found! Unable to update email.\n", username)
		return nil
	}
	fmt.Printf("Updated %s's email from %s to %s\n", user.Username, old, user.Email)
	return nil
}

func runCreateUser(ctx context.Context, users service.UserService, username, email, password string) error {
	user, err := users.Create(ctx, username, email, password)
	if errors.Is(err, service.ErrAlreadyTaken) {
		fmt.Println("Username or email already taken!")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(user)
	return nil
}

func runDeleteUser(ctx context.Context, users service.UserService, username string) error {
	found, err := users.Delete(ctx, username)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("%s not found! Unable to delete user.\n", username)
		return nil
	}
	fmt.Printf("User %s deleted successfully.\n", username)
	return nil
}

func runFindUserPartial(ctx context.Context, users service.UserService, partial string) error {
	matches, err := users.FindPartial(ctx, partial)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Printf("No users found matching %q\n", partial)
		return nil
	}
	for _, user := range matches {
		fmt.Println(user)
	}
	return nil
}

func runListUsers(ctx context.Context, users service.UserService, limit, offset int) error {
	page, err := users.ListPage(ctx, limit, offset)
	if err != nil {
		return err
	}
	if len(page) == 0 {
		fmt.Println("No users found!")
		return nil
	}
	for _, user := range page {
		fmt.Println(user)
	}
	return nil
}

func main() {
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	rootCmd := &cobra.Command{
		Use:           "userstore",
		Short:         "Manage the users datastore",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "initialize",
		Short: "Initialize the database and create the default user 'bob'",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(runInitialize)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "get-user <username>",
		Short: "Retrieve and print a user by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, users service.UserService) error {
				return runGetUser(ctx, users, args[0])
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "get-all-users",
		Short: "Retrieve and print all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(runGetAllUsers)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "change-email <username> <new_email>",
		Short: "Update a user's email by username",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, users service.UserService) error {
				return runChangeEmail(ctx, users, args[0], args[1])
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "create-user <username> <email> <password>",
		Short: "Create a new user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, users service.UserService) error {
				return runCreateUser(ctx, users, args[0], args[1], args[2])
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "delete-user <username>",
		Short: "Delete a user by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, users service.UserService) error {
				return runDeleteUser(ctx, users, args[0])
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "find-user-partial <partial>",
		Short: "Find users whose username or email contains the given string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, users service.UserService) error {
				return runFindUserPartial(ctx, users, args[0])
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list-users [limit] [offset]",
		Short: "List users a page at a time (default limit 10, offset 0)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, offset := 10, 0
			var err error
			if len(args) > 0 {
				if limit, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("invalid limit %q: %w", args[0], err)
				}
			}
			if len(args) > 1 {
				if offset, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid offset %q: %w", args[1], err)
				}
			}
			return withService(func(ctx context.Context, users service.UserService) error {
				return runListUsers(ctx, users, limit, offset)
			})
		},
	})

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
}
