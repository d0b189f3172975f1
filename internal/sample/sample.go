// Package sample bundles small example datasets so the CLI is usable
// before the user has any data of their own.
package sample

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed data/*.csv
var dataFS embed.FS

var descriptions = map[string]string{
	"retail_sales.csv":        "Monthly store sales by region and product category",
	"customer_churn.csv":      "Subscription accounts with spend, tenure, and churn flags (includes messy rows)",
	"marketing_campaigns.csv": "Campaign spend and conversion funnel by channel",
}

// List returns the bundled dataset names. ReadDir sorts by name.
func List() []string {
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Load returns the raw bytes of a bundled dataset.
func Load(name string) ([]byte, error) {
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("unknown sample %q", name)
	}
	b, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("unknown sample %q (available: %s)", name, strings.Join(List(), ", "))
	}
	return b, nil
}

// Describe returns the one-line blurb for a dataset, or "" for
// unknown names.
func Describe(name string) string {
	return descriptions[name]
}
