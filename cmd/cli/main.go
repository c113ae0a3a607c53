package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/fundme/internal/domain"
	"github.com/iho/fundme/internal/infrastructure/auth"
	"github.com/iho/fundme/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// apiClient talks to the FundMe HTTP API.
type apiClient struct {
	baseURL string
	timeout time.Duration
	caller  string
	token   string
}

// apiError is a non-2xx response.
type apiError struct {
	Status  int
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e *apiError) String() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Error, e.Message, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Error, e.Status)
}

func (c *apiClient) do(method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, strings.TrimRight(c.baseURL, "/")+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.caller != "" {
		req.Header.Set("X-Caller-Address", c.caller)
	}

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	return resp.StatusCode, data, nil
}

// call performs a request and decodes the error body of non-2xx responses.
func (c *apiClient) call(method, path string, body any) ([]byte, error) {
	status, data, err := c.do(method, path, body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		apiErr := &apiError{Status: status}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return nil, errors.New(apiErr.String())
	}
	return data, nil
}

func newRootCmd() *cobra.Command {
	client := &apiClient{}

	rootCmd := &cobra.Command{
		Use:          "fundme-cli",
		Short:        "FundMe CLI tool",
		Long:         `A command line interface for interacting with the FundMe API.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&client.baseURL, "url", "http://localhost:8080", "Base URL of the FundMe API")
	rootCmd.PersistentFlags().DurationVar(&client.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&client.caller, "caller", "", "Caller address sent as X-Caller-Address")
	rootCmd.PersistentFlags().StringVar(&client.token, "token", "", "Bearer token carrying the caller address")

	get := func(path string) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			data, err := client.call(http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		}
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "fund <amount>",
			Short: "Contribute amount native units as the caller",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := client.call(http.MethodPost, "/api/v1/fund", map[string]string{"amount": args[0]})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), data)
			},
		},
		&cobra.Command{
			Use:   "withdraw",
			Short: "Withdraw the whole balance (owner only)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := client.call(http.MethodPost, "/api/v1/withdraw", nil)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), data)
			},
		},
		&cobra.Command{
			Use:   "ledger",
			Short: "Show the ledger summary",
			Args:  cobra.NoArgs,
			RunE:  get("/api/v1/ledger"),
		},
		&cobra.Command{
			Use:   "price-feed",
			Short: "Show the price feed address",
			Args:  cobra.NoArgs,
			RunE:  get("/api/v1/price-feed"),
		},
		&cobra.Command{
			Use:   "funder <index>",
			Short: "Show the funder at index",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return get("/api/v1/funders/"+url.PathEscape(args[0]))(cmd, args)
			},
		},
		&cobra.Command{
			Use:   "funded <address>",
			Short: "Show the amount funded by address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return get("/api/v1/funded/"+url.PathEscape(args[0]))(cmd, args)
			},
		},
		fundersCmd(client),
		&cobra.Command{
			Use:   "quote <amount>",
			Short: "Value amount in USD at the current price",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return get("/api/v1/quote?amount="+url.QueryEscape(args[0]))(cmd, args)
			},
		},
		consistencyCmd(client),
		tokenCmd(),
		migrateCmd(),
	)

	return rootCmd
}

func fundersCmd(client *apiClient) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "funders",
		Short: "List the funders list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := client.call(http.MethodGet, fmt.Sprintf("/api/v1/funders?limit=%d&offset=%d", limit, offset), nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func consistencyCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := client.do(http.MethodGet, "/api/v1/ledger/consistency", nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status != http.StatusOK {
				fmt.Fprintf(out, "Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
				return fmt.Errorf("ledger is inconsistent")
			}

			var result struct {
				Status      string `json:"status"`
				Consistent  bool   `json:"consistent"`
				Balance     string `json:"balance"`
				TotalFunded string `json:"total_funded"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Fprintf(out, "Consistency check PASSED\n")
			fmt.Fprintf(out, "Consistent: %v\n", result.Consistent)
			fmt.Fprintf(out, "Balance: %s\n", result.Balance)
			fmt.Fprintf(out, "Total funded: %s\n", result.TotalFunded)
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <address>",
		Short: "Mint a caller token for address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret is required")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(domain.Address(args[0]))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret shared with the server")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply all migrations or roll back the last one",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("--database-url is required")
			}

			log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
			if args[0] == "down" {
				return postgres.RunMigrationsDown(databaseURL, path, log)
			}
			return postgres.RunMigrations(databaseURL, path, log)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.Flags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "migrations"), "Migrations directory")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// printJSON pretty-prints a JSON document.
func printJSON(w io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, strings.TrimSpace(string(data)))
		return err
	}
	_, err := fmt.Fprintln(w, strings.TrimSpace(buf.String()))
	return err
}
