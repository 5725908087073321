// Package cli maps each usermgr subcommand onto one user service call.
package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"usermgr/internal/config"
	"usermgr/internal/repository/sqlstore"
	"usermgr/internal/service"
	"usermgr/internal/storage"
)

// StorageFactory builds the export storage from configuration.
type StorageFactory func(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error)

// Options wires external collaborators into the command tree.
type Options struct {
	Logger     *logrus.Logger
	NewStorage StorageFactory
}

type app struct {
	logger     *logrus.Logger
	newStorage StorageFactory
	cfg        config.Config
}

// NewRootCommand builds the usermgr command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{
		logger:     opts.Logger,
		newStorage: opts.NewStorage,
	}
	if a.logger == nil {
		a.logger = logrus.New()
	}
	if a.newStorage == nil {
		a.newStorage = buildStorage
	}

	root := &cobra.Command{
		Use:           "usermgr",
		Short:         "Manage the users table",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// arguments are valid by now; later failures are not usage mistakes
			cmd.SilenceUsage = true

			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.logger.SetLevel(cfg.LogLevel())
			a.logger.Debugf("running %s", cmd.CommandPath())
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("driver", "", "database driver: sqlite or postgres (default sqlite)")
	flags.String("database", "", "sqlite database path (default data/users.db)")
	flags.String("database-url", "", "postgres connection string")
	flags.String("log-level", "", "log level: debug, info, warn, error (default warn)")

	root.AddCommand(
		a.initializeCmd(),
		a.getUserCmd(),
		a.getAllUsersCmd(),
		a.findUserCmd(),
		a.listUsersCmd(),
		a.changeEmailCmd(),
		a.createUserCmd(),
		a.deleteUserCmd(),
		a.exportUsersCmd(),
		a.listExportsCmd(),
	)
	return root
}

// withUsers opens the store for the duration of one command.
func (a *app) withUsers(ctx context.Context, fn func(service.UserService) error) error {
	store, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver: a.cfg.Database.Driver,
		Path:   a.cfg.Database.Path,
		URL:    a.cfg.Database.URL,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warnf("close database: %v", err)
		}
	}()
	a.logger.Debugf("opened %s store", store.Driver())

	return fn(service.NewUserService(store))
}
