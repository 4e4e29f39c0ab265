package config

import (
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// MaxPrice is the highest current price a deal may have.
	MaxPrice float64
	// MinDiscount is the minimum discount percentage for a deal.
	MinDiscount int
	// Locale selects the retailer storefront region.
	Locale string
	// TrackedRetailers lists the retailer identifiers to query.
	TrackedRetailers []string
	// LibraryExports are paths to StoryGraph/Goodreads export CSVs.
	LibraryExports []string
	// DealsDBFile is the path to the deal history SQLite database.
	DealsDBFile string
	// CoverDir is where cover thumbnails are cached.
	CoverDir string
	// DataDir holds auth token caches and other per-user state.
	DataDir string
	// DatasetteEnabled mirrors appended deals to a remote Datasette.
	DatasetteEnabled bool
	// DatasetteRemote is the base URL of the Datasette instance.
	DatasetteRemote string
	// DatasetteToken authenticates against the Datasette insert API.
	DatasetteToken string
	// LibroFMUsername and LibroFMPassword authenticate the Libro.fm
	// password grant; usually supplied via environment variables.
	LibroFMUsername string
	LibroFMPassword string

	// RunTime is the shared timestamp for every observation of the
	// current run. Stamped once by the run driver.
	RunTime time.Time
)

// InitConfig initializes the global configuration
func InitConfig() {
	viper.SetDefault("maxprice", 8.0)
	viper.SetDefault("mindiscount", 35)
	viper.SetDefault("locale", "us")
	viper.SetDefault("retailers", []string{"Chirp"})
	viper.SetDefault("deals.dbfile", "./tbrdeals.db")
	viper.SetDefault("covers.dir", "./covers")
	viper.SetDefault("datadir", ".")
	viper.SetDefault("datasette.enabled", false)

	MaxPrice = viper.GetFloat64("maxprice")
	MinDiscount = viper.GetInt("mindiscount")
	Locale = viper.GetString("locale")
	TrackedRetailers = viper.GetStringSlice("retailers")
	LibraryExports = viper.GetStringSlice("libraryexports")
	DealsDBFile = viper.GetString("deals.dbfile")
	CoverDir = viper.GetString("covers.dir")
	DataDir = viper.GetString("datadir")
	DatasetteEnabled = viper.GetBool("datasette.enabled")
	DatasetteRemote = viper.GetString("datasette.remote")
	DatasetteToken = viper.GetString("datasette.token")
	LibroFMUsername = viper.GetString("librofm.username")
	LibroFMPassword = viper.GetString("librofm.password")
}

// SetRunTime stamps the shared run timestamp. Truncated to seconds so
// the value survives a round trip through the store unchanged.
func SetRunTime(t time.Time) {
	RunTime = t.UTC().Truncate(time.Second)
}

// SetDealsDBFile overrides the database path from the CLI flag.
func SetDealsDBFile(path string) {
	DealsDBFile = path
}
