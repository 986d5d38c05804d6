package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecopay/ecoledger/internal/infrastructure/auth"
	"github.com/ecopay/ecoledger/internal/infrastructure/postgres"
)

var (
	baseURL   string
	authToken string
	timeout   time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ecoledger-cli",
		Short: "EcoLedger admin CLI",
		Long:  `A command line interface for operating the EcoLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the EcoLedger API")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("ECOLEDGER_TOKEN"), "Bearer token for authenticated endpoints")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		listingsCmd(),
		accountsCmd(),
		ordersCmd(),
		ledgerCmd(),
		tokenCmd(),
		migrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Marketplace listing moderation",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List listings awaiting approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/v1/admin/listings/pending", nil)
		},
	})

	for _, action := range []string{"approve", "reject", "suspend", "reactivate"} {
		action := action
		cmd.AddCommand(&cobra.Command{
			Use:   action + " <listing-id>",
			Short: capitalize(action) + " a listing",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := fmt.Sprintf("/api/v1/admin/listings/%s/%s", url.PathEscape(args[0]), action)
				return call(http.MethodPost, path, nil)
			},
		})
	}

	return cmd
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account administration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "freeze <handle>",
		Short: "Freeze an account by payment handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/admin/accounts/%s/freeze", url.PathEscape(args[0]))
			return call(http.MethodPost, path, nil)
		},
	})

	return cmd
}

func ordersCmd() *cobra.Command {
	var batchSize int

	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Expire stale order reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/admin/orders/sweep?batch_size=%d", batchSize)
			return call(http.MethodPost, path, nil)
		},
	}
	sweep.Flags().IntVar(&batchSize, "batch-size", 100, "Maximum reservations to expire per sweep")

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Order administration",
	}
	cmd.AddCommand(sweep)

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(http.MethodGet, "/api/v1/ledger/consistency", nil)
		},
	})

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		handle string
		role   string
		expiry time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a bearer token",
		Long:  `Generates a signed JWT using the JWT_SECRET environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("JWT_SECRET must be set")
			}
			if role != string(auth.RoleUser) && role != string(auth.RoleAdmin) {
				return fmt.Errorf("role must be %q or %q", auth.RoleUser, auth.RoleAdmin)
			}

			manager := auth.NewJWTManager(secret, expiry)
			token, err := manager.Generate(auth.Principal{Handle: handle, Role: auth.Role(role)})
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&handle, "handle", "", "Payment handle the token is issued for")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleUser), "Token role (user or admin)")
	cmd.Flags().DurationVar(&expiry, "expiry", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("handle")

	return cmd
}

func migrateCmd() *cobra.Command {
	var migrationsPath string

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(os.Getenv("DATABASE_URL"), migrationsPath)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(os.Getenv("DATABASE_URL"), migrationsPath)
		},
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Path to migration files")
	cmd.AddCommand(up, down)

	return cmd
}

// call issues an HTTP request against the API and pretty-prints the
// JSON response. Non-2xx statuses become errors.
func call(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if len(raw) == 0 {
		fmt.Printf("OK (status %d)\n", resp.StatusCode)
		return nil
	}

	var pretty any
	if err := json.Unmarshal(raw, &pretty); err != nil {
		fmt.Println(string(raw))
		return nil
	}

	printJSON(pretty)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(out))
}
