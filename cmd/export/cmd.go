// Package export automates downloading the StoryGraph library export
// CSV with a headless browser, so the deal finder always works against
// a current to-be-read list.
package export

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
)

var downloadStoryGraphCSV = AutomateStoryGraphExport

// ExportWithParams downloads a fresh StoryGraph export into downloadDir.
// Credentials come from config or the STORYGRAPH_EMAIL/STORYGRAPH_PASSWORD
// environment variables.
func ExportWithParams(downloadDir string, headless bool) (string, error) {
	email := viper.GetString("storygraph.email")
	password := viper.GetString("storygraph.password")
	if email == "" || password == "" {
		return "", fmt.Errorf("storygraph credentials missing (set storygraph.email/storygraph.password in config or STORYGRAPH_EMAIL/STORYGRAPH_PASSWORD)")
	}

	timeout := viper.GetDuration("storygraph.automation.timeout")
	if downloadDir == "" {
		downloadDir = viper.GetString("storygraph.automation.download_dir")
	}

	return downloadStoryGraphCSV(context.Background(), AutomationOptions{
		Email:       email,
		Password:    password,
		DownloadDir: downloadDir,
		Headless:    headless,
		Timeout:     timeout,
	})
}
