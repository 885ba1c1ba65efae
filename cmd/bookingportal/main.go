package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luciodale/booking-portal-sub002/internal/booking"
	"github.com/luciodale/booking-portal-sub002/internal/clock"
	"github.com/luciodale/booking-portal-sub002/internal/config"
	"github.com/luciodale/booking-portal-sub002/internal/fee"
	"github.com/luciodale/booking-portal-sub002/internal/migration"
	"github.com/luciodale/booking-portal-sub002/internal/notification"
	"github.com/luciodale/booking-portal-sub002/internal/observability"
	"github.com/luciodale/booking-portal-sub002/internal/payment"
	"github.com/luciodale/booking-portal-sub002/internal/pricing"
	"github.com/luciodale/booking-portal-sub002/internal/property"
	"github.com/luciodale/booking-portal-sub002/internal/rates"
	"github.com/luciodale/booking-portal-sub002/internal/redis"
	"github.com/luciodale/booking-portal-sub002/internal/server"
	"github.com/luciodale/booking-portal-sub002/internal/settlement"
	"github.com/luciodale/booking-portal-sub002/internal/tax"
	"github.com/luciodale/booking-portal-sub002/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "bookingportal",
		Short:   "Booking portal pricing and settlement service",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd(), newWorkerCmd(), newAllCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(base(), server.Module).Run()
			return nil
		},
	}
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued confirmation notices",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx.New(
				config.Module,
				observability.Module,
				notification.WorkerModule,
			).Run()
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run migrations, then the HTTP API and the notice worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runMigrate(); err != nil {
				return err
			}
			fx.New(base(), server.Module, notification.WorkerModule).Run()
			return nil
		},
	}
}

// base wires every domain module the API needs.
func base() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		rates.Module,
		property.Module,
		tax.Module,
		fee.Module,
		pricing.Module,
		booking.Module,
		notification.Module,
		settlement.Module,
		payment.Module,
	)
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func registerSnowflake() (*snowflake.Node, error) {
	id := int64(1)
	if raw := strings.TrimSpace(os.Getenv("NODE_ID")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NODE_ID %q: %w", raw, err)
		}
		id = parsed
	}
	return snowflake.NewNode(id)
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
