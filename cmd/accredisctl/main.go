// Command accredisctl runs operational tasks: schema migrations and
// development bearer tokens.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwttoken "accredis/internal/jwt_token"
	"accredis/internal/platform/postgres"
	id "accredis/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "accredisctl",
		Short:        "Operate an accredis deployment",
		Version:      version,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(newMigrateCmd(), newTokenCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.PersistentFlags().StringVar(&dsn, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string (defaults to $DATABASE_URL)")

	withDB := func(fn func(ctx context.Context, cmd *cobra.Command, db *sql.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			ctx := cmd.Context()
			db, err := postgres.Open(ctx, dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(ctx, cmd, db)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *sql.DB) error {
				if err := postgres.Migrate(ctx, db); err != nil {
					return err
				}
				return printVersion(ctx, cmd, db)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *sql.DB) error {
				if err := postgres.MigrateDown(ctx, db); err != nil {
					return err
				}
				return printVersion(ctx, cmd, db)
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE:  withDB(printVersion),
		},
	)
	return cmd
}

func printVersion(ctx context.Context, cmd *cobra.Command, db *sql.DB) error {
	v, err := postgres.Version(ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
	return nil
}

type tokenFlags struct {
	user       string
	ttl        time.Duration
	signingKey string
	issuer     string
}

func newTokenCmd() *cobra.Command {
	var flags tokenFlags
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a principal (development only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runToken(cmd.OutOrStdout(), flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.user, "user", "", "Principal user id (a new id is generated when empty)")
	f.DurationVar(&flags.ttl, "ttl", time.Hour, "Token lifetime")
	f.StringVar(&flags.signingKey, "signing-key", os.Getenv("JWT_SIGNING_KEY"), "HMAC signing key (defaults to $JWT_SIGNING_KEY)")
	f.StringVar(&flags.issuer, "issuer", envOr("JWT_ISSUER", "accredis"), "Token issuer (defaults to $JWT_ISSUER)")
	return cmd
}

func runToken(out io.Writer, flags tokenFlags) error {
	if flags.signingKey == "" {
		return errors.New("--signing-key or JWT_SIGNING_KEY is required")
	}
	if flags.ttl <= 0 {
		return errors.New("--ttl must be positive")
	}

	userID := id.NewUserID()
	if flags.user != "" {
		parsed, err := id.ParseUserID(flags.user)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		userID = parsed
	}

	token, err := jwttoken.NewJWTService(flags.signingKey, flags.issuer).GenerateAccessToken(userID, flags.ttl)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "user_id: %s\ntoken: %s\n", userID, token)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
