package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"fastcoding/internal/usage"
)

var resetUsage bool

// usageCmd prints request totals
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show model requests per backend and feature",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

func registerUsageFlags() {
	usageCmd.Flags().BoolVar(&resetUsage, "reset", false, "Clear the totals")
}

func runUsage(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.usage == nil {
		return fmt.Errorf("usage tracking is not available")
	}
	if resetUsage {
		a.usage.Reset()
		fmt.Println("Usage totals cleared.")
		return nil
	}

	stats := a.usage.Stats()
	fmt.Printf("Usage file: %s\n\n", a.usage.Path())
	printCounts("Total", stats.Total)
	printSection("By backend", stats.ByBackend)
	printSection("By feature", stats.ByFeature)
	return nil
}

func printSection(title string, m map[string]usage.Counts) {
	if len(m) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printCounts("  "+k, m[k])
	}
}

func printCounts(label string, c usage.Counts) {
	fmt.Printf("%-36s %6d requests %4d failed %9d chars in %9d chars out\n",
		label, c.Requests, c.Failures, c.PromptChars, c.OutputChars)
}
