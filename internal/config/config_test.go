package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()

	assert.Equal(t, 8.0, MaxPrice)
	assert.Equal(t, 35, MinDiscount)
	assert.Equal(t, "us", Locale)
	assert.Equal(t, []string{"Chirp"}, TrackedRetailers)
	assert.Equal(t, "./tbrdeals.db", DealsDBFile)
}

func TestInitConfigReadsOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("maxprice", 12.5)
	viper.Set("mindiscount", 50)
	viper.Set("retailers", []string{"Chirp", "Libro FM"})
	viper.Set("libraryexports", []string{"a.csv", "b.csv"})

	InitConfig()

	assert.Equal(t, 12.5, MaxPrice)
	assert.Equal(t, 50, MinDiscount)
	assert.Equal(t, []string{"Chirp", "Libro FM"}, TrackedRetailers)
	assert.Equal(t, []string{"a.csv", "b.csv"}, LibraryExports)
}

func TestSetRunTimeTruncatesToSeconds(t *testing.T) {
	original := RunTime
	t.Cleanup(func() { RunTime = original })

	stamp := time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.Local)
	SetRunTime(stamp)

	assert.Equal(t, time.UTC, RunTime.Location())
	assert.Zero(t, RunTime.Nanosecond())
}
