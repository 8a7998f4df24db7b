package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"real-estate-service/internal/config"
	"real-estate-service/internal/database"
	"real-estate-service/internal/domain"
	"real-estate-service/internal/tools/common"
	"real-estate-service/internal/tools/ui"
)

type options struct {
	envFile string
	ci      bool
	timeout time.Duration
}

// NewRootCommand builds the bootstrap data CLI.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Manage bootstrap data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before connecting")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive mode with JSON output")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create or update the bootstrap admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "seed apply", "apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				report, err := database.SeedAdmin(db.WithContext(ctx), cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
				if err != nil {
					return nil, err
				}
				return describeReport(cfg.BootstrapAdminEmail, report), nil
			})
			return err
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "dry-run",
		Short: "Show what apply would change without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "seed dry-run", "dry-run", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				if cfg.BootstrapAdminEmail == "" {
					return nil, errors.New("BOOTSTRAP_ADMIN_EMAIL is not set")
				}
				var existing domain.User
				err = db.WithContext(ctx).Where("email = ?", cfg.BootstrapAdminEmail).First(&existing).Error
				switch {
				case errors.Is(err, gorm.ErrRecordNotFound):
					return []string{fmt.Sprintf("would create admin %s", cfg.BootstrapAdminEmail)}, nil
				case err != nil:
					return nil, fmt.Errorf("look up admin user: %w", err)
				case existing.Role != domain.RoleAdmin:
					return []string{fmt.Sprintf("would promote %s to ADMIN", cfg.BootstrapAdminEmail)}, nil
				default:
					return []string{fmt.Sprintf("admin %s already seeded", cfg.BootstrapAdminEmail)}, nil
				}
			})
			return err
		},
	})

	verify := &cobra.Command{
		Use:   "verify-admin",
		Short: "Check that an admin account exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			_, err := run(opts, "seed verify-admin", "verify-admin", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				target := strings.TrimSpace(strings.ToLower(email))
				if target == "" {
					target = cfg.BootstrapAdminEmail
				}
				if target == "" {
					return nil, errors.New("no email given and BOOTSTRAP_ADMIN_EMAIL is not set")
				}
				var user domain.User
				if err := db.WithContext(ctx).Where("email = ?", target).First(&user).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return nil, fmt.Errorf("no account for %s", target)
					}
					return nil, fmt.Errorf("look up account: %w", err)
				}
				if user.Role != domain.RoleAdmin {
					return nil, fmt.Errorf("%s exists but has role %s", target, user.Role)
				}
				return []string{fmt.Sprintf("%s is an admin (user %s)", target, user.ID)}, nil
			})
			return err
		},
	}
	verify.Flags().String("email", "", "email to check (defaults to BOOTSTRAP_ADMIN_EMAIL)")
	root.AddCommand(verify)

	return root
}

func describeReport(email string, report database.SeedReport) []string {
	switch {
	case report.CreatedAdmin:
		return []string{fmt.Sprintf("created admin %s", email)}
	case report.UpdatedAdmin:
		return []string{fmt.Sprintf("updated admin %s", email)}
	default:
		return []string{fmt.Sprintf("admin %s already up to date", email)}
	}
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
