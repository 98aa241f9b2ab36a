// Command wbctl manages the WorkBooster database: creating it, applying migrations and
// seeding the admin account or demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"workbooster/internal/config"
	"workbooster/internal/database"
	"workbooster/internal/demodata"
	"workbooster/internal/logger"
	"workbooster/internal/models"
	"workbooster/internal/repositories"
	"workbooster/internal/services"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "wbctl",
	Short:         "WorkBooster database administration",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.SetDefault(logger.New(cfg.LogLevel, os.Stderr))
	},
}

var createDBCmd = &cobra.Command{
	Use:   "create-db",
	Short: "Create the configured database if it does not exist",
	Long: `Connect to the postgres maintenance database with DB_ADMIN_USER and
DB_ADMIN_PASSWORD (falling back to DB_USERNAME/DB_PASSWORD) and create DB_DATABASE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.EnsureDatabaseExists(cmd.Context(), cfg)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
			applied, err := database.RunMigrations(cmd.Context(), pool)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s), schema at version %d\n", applied, database.LatestVersion())
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and when they were applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
			states, err := database.MigrationStatus(cmd.Context(), pool)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
			for _, s := range states {
				applied := "pending"
				if s.AppliedAt != nil {
					applied = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.Name, applied)
			}
			return w.Flush()
		})
	},
}

var adminName string

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin user or reset its password",
	Long:  `Upsert the user ADMIN_EMAIL with role admin and password ADMIN_PASSWORD.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
			users := services.NewUserService(repositories.NewUserRepository(pool))
			user, err := users.SeedAdmin(cmd.Context(), adminName, cfg.AdminEmail, cfg.AdminPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready (id %d)\n", user.Email, user.ID)
			return nil
		})
	},
}

var demo demodata.Config

var seedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Fill the database with fake accounts, leads and calls",
	Long: `Generate demo data through the same services the API uses, so every row passes
the normal validation. Runs as the admin user, create it first with seed-admin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if demo.Seed == 0 {
			demo.Seed = time.Now().UnixNano()
		}
		return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
			userRepo := repositories.NewUserRepository(pool)
			admin, err := userRepo.FindByEmail(cmd.Context(), cfg.AdminEmail)
			if err != nil {
				return err
			}
			if admin == nil || admin.Role != models.RoleAdmin {
				return fmt.Errorf("admin %s not found, run `wbctl seed-admin` first", cfg.AdminEmail)
			}

			accountRepo := repositories.NewAccountRepository(pool)
			leadRepo := repositories.NewLeadRepository(pool)
			lookupRepo := repositories.NewLookupRepository(pool)
			seeder := demodata.NewSeeder(
				services.NewAccountService(accountRepo, userRepo, cfg.PhoneDefaultRegion),
				services.NewLeadService(leadRepo, accountRepo, lookupRepo, userRepo, nil),
				services.NewTelecallService(repositories.NewTelecallRepository(pool), leadRepo, nil),
				lookupRepo,
			)
			sum, err := seeder.Seed(cmd.Context(), &models.Session{UserID: admin.ID, Role: admin.Role}, demo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d account(s), %d lead(s), %d call(s); skipped %d (seed %d)\n",
				sum.Accounts, sum.Leads, sum.Calls, sum.Skipped, demo.Seed)
			return nil
		})
	},
}

// withPool opens a pool for one command and closes it once fn returns.
func withPool(ctx context.Context, fn func(pool *pgxpool.Pool) error) error {
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(pool)
}

func init() {
	seedAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name of the admin user")

	seedDemoCmd.Flags().IntVar(&demo.Accounts, "accounts", 25, "number of accounts to create")
	seedDemoCmd.Flags().IntVar(&demo.LeadsPerAccount, "leads", 2, "leads per account")
	seedDemoCmd.Flags().Float64Var(&demo.CallChance, "call-chance", 0.5, "probability that a lead gets a logged call")
	seedDemoCmd.Flags().Int64Var(&demo.Seed, "seed", 0, "random seed (0 picks one)")

	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(createDBCmd, migrateCmd, seedAdminCmd, seedDemoCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
