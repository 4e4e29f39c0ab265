// Package setup implements the interactive configuration wizard that
// runs on first use: library export paths, locale, price and discount
// thresholds.
package setup

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/lepinkainen/tbrdeals/internal/tui"
)

var (
	input        io.Reader = os.Stdin
	selectLocale           = tui.SelectChoice
)

// localeChoices mirrors the storefront regions the retailers know about.
var localeChoices = []tui.Choice{
	{Label: "US and all other countries not listed", Value: "us"},
	{Label: "Canada", Value: "ca"},
	{Label: "UK and Ireland", Value: "uk"},
	{Label: "Australia and New Zealand", Value: "au"},
	{Label: "France, Belgium, Switzerland", Value: "fr"},
	{Label: "Germany, Austria, Switzerland", Value: "de"},
	{Label: "Japan", Value: "jp"},
	{Label: "Italy", Value: "it"},
	{Label: "India", Value: "in"},
	{Label: "Spain", Value: "es"},
	{Label: "Brazil", Value: "br"},
}

// SetupWithParams runs the wizard and writes the answers to configFile.
func SetupWithParams(configFile string) error {
	reader := bufio.NewReader(input)

	exports, err := promptString(reader, "Paths to your StoryGraph export CSV files (comma-separated)")
	if err != nil {
		return err
	}
	if len(splitPaths(exports)) == 0 {
		return fmt.Errorf("at least one library export path is required")
	}

	locale, err := selectLocale("Select your locale", localeChoices)
	if err != nil {
		return err
	}

	maxPrice, err := promptFloat(reader, "Maximum price for deals", 8.0)
	if err != nil {
		return err
	}

	minDiscount, err := promptInt(reader, "Minimum discount percentage", 35)
	if err != nil {
		return err
	}

	viper.Set("libraryexports", splitPaths(exports))
	viper.Set("locale", locale)
	viper.Set("maxprice", maxPrice)
	viper.Set("mindiscount", minDiscount)

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("Configuration saved", "path", configFile)
	return nil
}

func promptString(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Printf("%s: ", prompt)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptFloat(reader *bufio.Reader, prompt string, defaultValue float64) (float64, error) {
	raw, err := promptString(reader, fmt.Sprintf("%s [%.2f]", prompt, defaultValue))
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return value, nil
}

func promptInt(reader *bufio.Reader, prompt string, defaultValue int) (int, error) {
	raw, err := promptString(reader, fmt.Sprintf("%s [%d]", prompt, defaultValue))
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return value, nil
}

func splitPaths(raw string) []string {
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
