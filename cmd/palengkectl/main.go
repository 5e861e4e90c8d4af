package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/palengke-app/palengke/internal/app"
	"github.com/palengke-app/palengke/internal/platform/cache"
	"github.com/palengke-app/palengke/internal/platform/db"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "palengkectl",
		Short:         "Admin utilities for the palengke backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(pingCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

func loadConfig() (*app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to Postgres and Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			if pool, err := db.New(ctx, cfg.PGDSN); err != nil {
				fmt.Println(red("✗"), "postgres:", err)
			} else {
				pool.Close()
				fmt.Println(green("✓"), "postgres ok")
			}

			if rdb, err := cache.New(ctx, cfg.RedisAddr); err != nil {
				fmt.Println(red("✗"), "redis:", err)
			} else {
				_ = rdb.Close()
				fmt.Println(green("✓"), "redis ok")
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo catalog, navigation and conversation data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pool, err := db.New(ctx, cfg.PGDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := seed(ctx, pool); err != nil {
				return err
			}
			fmt.Println(green("✓"), "seed data inserted")
			return nil
		},
	}
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []struct {
		label string
		sql   string
	}{
		{"products", `
			INSERT INTO products (sku, name, category, price, stock, is_active) VALUES
			('DM-001', 'Dried mangoes 200g', 'Snacks', 150, 120, true),
			('BC-001', 'Banana chips 250g', 'Snacks', 80, 200, true),
			('CV-001', 'Coconut vinegar 500ml', 'Pantry', 65, 80, true),
			('TB-001', 'Tablea cacao 10pc', 'Pantry', 210, 45, true)
			ON CONFLICT (sku) DO NOTHING`},
		{"navigation", `
			INSERT INTO navigation_items (label, icon, path, section, position, is_active) VALUES
			('Dashboard', 'eye', '/dashboard', 'Overview', 1, true),
			('Orders', 'truck', '/orders', 'Commerce', 1, true),
			('Products', 'plus', '/products', 'Commerce', 2, true),
			('Payments', 'wallet', '/payments', 'Commerce', 3, true),
			('Users', 'mail', '/users', 'Admin', 1, true),
			('Support', 'bell', '/chat', 'Admin', 2, true)
			ON CONFLICT (path) DO NOTHING`},
		{"conversations", `
			INSERT INTO conversations (customer_id, customer_name, status, last_message)
			SELECT 1, 'Maria Santos', 'OPEN', 'Kamusta, available pa ba ang dried mangoes?'
			WHERE NOT EXISTS (SELECT 1 FROM conversations)`},
	}

	for _, st := range statements {
		if _, err := pool.Exec(ctx, st.sql); err != nil {
			return fmt.Errorf("seed %s: %w", st.label, err)
		}
		fmt.Println(green("•"), st.label)
	}
	return nil
}
