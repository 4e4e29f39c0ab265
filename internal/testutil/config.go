package testutil

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/tbrdeals/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	MaxPrice         float64
	MinDiscount      int
	Locale           string
	TrackedRetailers []string
	LibraryExports   []string
	DealsDBFile      string
	CoverDir         string
	DataDir          string
	DatasetteEnabled bool
	RunTime          time.Time
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		MaxPrice:         config.MaxPrice,
		MinDiscount:      config.MinDiscount,
		Locale:           config.Locale,
		TrackedRetailers: config.TrackedRetailers,
		LibraryExports:   config.LibraryExports,
		DealsDBFile:      config.DealsDBFile,
		CoverDir:         config.CoverDir,
		DataDir:          config.DataDir,
		DatasetteEnabled: config.DatasetteEnabled,
		RunTime:          config.RunTime,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.MaxPrice = state.MaxPrice
	config.MinDiscount = state.MinDiscount
	config.Locale = state.Locale
	config.TrackedRetailers = state.TrackedRetailers
	config.LibraryExports = state.LibraryExports
	config.DealsDBFile = state.DealsDBFile
	config.CoverDir = state.CoverDir
	config.DataDir = state.DataDir
	config.DatasetteEnabled = state.DatasetteEnabled
	config.RunTime = state.RunTime
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()

	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// Note: viper has no Unset, so a previously unset key stays set.
	})
}
