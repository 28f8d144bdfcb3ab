package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio exposure and option risk dashboard backend",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiHandler, cfg, err := InitializeDependencies()
		if err != nil {
			return err
		}
		return apiHandler.StartApi(cfg.Port)
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <portfolio.csv>",
	Short: "Load a brokerage export and print the portfolio summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiHandler, _, err := InitializeDependencies()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		snapshot, err := apiHandler.PortfolioHandler.LoadFromCSV(cmd.Context(), f)
		if err != nil {
			return err
		}

		return printJSON(snapshot.Summary)
	},
}

var simulateChanges string

var simulateCmd = &cobra.Command{
	Use:   "simulate <portfolio.csv>",
	Short: "Load a brokerage export and sweep it across SPY changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiHandler, _, err := InitializeDependencies()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		snapshot, err := apiHandler.PortfolioHandler.LoadFromCSV(cmd.Context(), f)
		if err != nil {
			return err
		}

		changes, err := parseChanges(simulateChanges)
		if err != nil {
			return err
		}

		points := apiHandler.PortfolioHandler.Simulate(snapshot, changes)
		return printJSON(points)
	},
}

func parseChanges(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	changes := make([]float64, 0, len(parts))
	for _, part := range parts {
		c, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid spy change %q: %w", part, err)
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func printJSON(v interface{}) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}

func Execute() {
	simulateCmd.Flags().StringVar(&simulateChanges, "changes", "", "comma-separated fractional changes, e.g. -0.1,0,0.1")
	rootCmd.AddCommand(serveCmd, loadCmd, simulateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
