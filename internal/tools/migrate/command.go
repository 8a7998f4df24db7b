package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"real-estate-service/internal/config"
	"real-estate-service/internal/database"
	"real-estate-service/internal/tools/common"
	"real-estate-service/internal/tools/ui"
)

type options struct {
	envFile string
	ci      bool
	timeout time.Duration
}

// NewRootCommand builds the schema migration CLI.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before connecting")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive mode with JSON output")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending schema changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "migrate up", "up", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				if err := database.Migrate(db.WithContext(ctx)); err != nil {
					return nil, fmt.Errorf("apply migrations: %w", err)
				}
				return []string{"schema is up to date"}, nil
			})
			return err
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "migrate status", "status", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				return tableStatus(db.WithContext(ctx)), nil
			})
			return err
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "plan",
		Short: "List the tables a migration would manage",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "migrate plan", "plan", func(ctx context.Context) ([]string, error) {
				details := make([]string, 0, len(managedTables))
				for _, table := range managedTables {
					details = append(details, "manage table "+table)
				}
				return details, nil
			})
			return err
		},
	})

	return root
}

var managedTables = []string{"users", "properties", "password_reset_tokens"}

func tableStatus(db *gorm.DB) []string {
	migrator := db.Migrator()
	details := make([]string, 0, len(managedTables))
	for _, table := range managedTables {
		state := "missing"
		if migrator.HasTable(table) {
			state = "present"
		}
		details = append(details, fmt.Sprintf("%s: %s", table, state))
	}
	return details
}

func run(opts *options, title, name string, action func(ctx context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx := context.Background()
		if opts.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.timeout)
			defer cancel()
		}
		details, err := action(ctx)
		common.PrintCIResult(err == nil, title, details, err)
		return details, err
	}
	return ui.Run(title, action)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}
