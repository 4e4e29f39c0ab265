package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

const (
	exportPollInterval   = 3 * time.Second
	downloadPollInterval = 2 * time.Second
	exportFileName       = "storygraph_export.csv"

	defaultAutomationTimeout = 3 * time.Minute
)

var (
	chromedpExecAllocator = chromedp.NewExecAllocator
	chromedpContext       = chromedp.NewContext
	chromedpRunner        = chromedp.Run
)

// AutomationOptions configures the StoryGraph export download.
type AutomationOptions struct {
	Email       string
	Password    string
	DownloadDir string
	Headless    bool
	Timeout     time.Duration
}

// AutomateStoryGraphExport logs in to StoryGraph, requests a library
// export and downloads the generated CSV. Returns the path of the
// downloaded file.
func AutomateStoryGraphExport(parentCtx context.Context, opts AutomationOptions) (string, error) {
	if opts.Email == "" || opts.Password == "" {
		return "", errors.New("storygraph automation requires both email and password")
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultAutomationTimeout
	}

	ctx, cancel := context.WithTimeout(parentCtx, timeout)
	defer cancel()

	downloadDir, cleanup, err := prepareDownloadDir(opts.DownloadDir)
	if err != nil {
		return "", err
	}
	defer func() {
		if cleanup != nil {
			cleanup()
		}
	}()
	slog.Info("Prepared StoryGraph download directory", "path", downloadDir, "headless", opts.Headless)

	allocCtx, cancelAllocator := chromedpExecAllocator(ctx, buildExecAllocatorOptions(opts)...)
	defer cancelAllocator()

	browserCtx, cancelBrowser := chromedpContext(allocCtx)
	defer cancelBrowser()

	if err := configureDownloadDirectory(browserCtx, downloadDir); err != nil {
		return "", err
	}

	if err := performStoryGraphLogin(browserCtx, opts); err != nil {
		return "", err
	}

	if err := triggerStoryGraphExport(browserCtx); err != nil {
		return "", err
	}

	exportLink, err := waitForExportLink(browserCtx)
	if err != nil {
		return "", err
	}

	if err := chromedpRunner(browserCtx, chromedp.Navigate(exportLink)); err != nil {
		return "", fmt.Errorf("failed to start StoryGraph export download: %w", err)
	}

	csvPath, err := waitForDownload(browserCtx, downloadDir)
	if err != nil {
		return "", err
	}

	finalPath, err := moveDownloadedCSV(csvPath, opts.DownloadDir)
	if err != nil {
		return "", err
	}

	slog.Info("StoryGraph export downloaded", "path", finalPath)
	return finalPath, nil
}

func buildExecAllocatorOptions(opts AutomationOptions) []chromedp.ExecAllocatorOption {
	return []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("no-default-browser-check", true),
	}
}

func prepareDownloadDir(path string) (string, func(), error) {
	if path != "" {
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", nil, fmt.Errorf("failed to create download directory: %w", err)
		}
		return filepath.Clean(path), nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "tbrdeals-storygraph-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary download directory: %w", err)
	}

	return tmpDir, func() { _ = os.RemoveAll(tmpDir) }, nil
}

func configureDownloadDirectory(ctx context.Context, downloadDir string) error {
	action := browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
		WithDownloadPath(downloadDir).
		WithEventsEnabled(true)
	slog.Debug("Configuring download directory", "path", downloadDir)
	if err := chromedpRunner(ctx, action); err != nil {
		return fmt.Errorf("failed to configure download directory: %w", err)
	}
	return nil
}

func performStoryGraphLogin(ctx context.Context, opts AutomationOptions) error {
	slog.Info("Logging in to StoryGraph", "email", opts.Email)

	tasks := chromedp.Tasks{
		chromedp.Navigate("https://app.thestorygraph.com/users/sign_in"),
		chromedp.WaitVisible(`input#user_email`, chromedp.ByQuery),
		chromedp.SendKeys(`input#user_email`, opts.Email, chromedp.ByQuery),
		chromedp.WaitVisible(`input#user_password`, chromedp.ByQuery),
		chromedp.SendKeys(`input#user_password`, opts.Password, chromedp.ByQuery),
		chromedp.Click(`//button[@type="submit" or contains(., "Sign in")] | //input[@type="submit"]`, chromedp.BySearch),
		// The avatar menu only renders once the session is live.
		chromedp.WaitVisible(`//a[contains(@href, "/profile")] | //nav//img[contains(@class, "avatar")]`, chromedp.BySearch),
	}

	if err := chromedpRunner(ctx, tasks...); err != nil {
		return fmt.Errorf("failed to log in to StoryGraph: %w", err)
	}

	slog.Info("StoryGraph login completed")
	return nil
}

func triggerStoryGraphExport(ctx context.Context) error {
	slog.Info("Requesting StoryGraph export")

	tasks := chromedp.Tasks{
		chromedp.Navigate("https://app.thestorygraph.com/user-export"),
		chromedp.WaitVisible(`//button[contains(., "Generate export")] | //input[@value="Generate export"]`, chromedp.BySearch),
		chromedp.Click(`//button[contains(., "Generate export")] | //input[@value="Generate export"]`, chromedp.BySearch),
	}

	if err := chromedpRunner(ctx, tasks...); err != nil {
		return fmt.Errorf("failed to request StoryGraph export: %w", err)
	}

	return nil
}

func waitForExportLink(ctx context.Context) (string, error) {
	start := time.Now()
	ticker := time.NewTicker(exportPollInterval)
	defer ticker.Stop()

	tries := 0
	for {
		var exportLink string
		if err := chromedpRunner(ctx, chromedp.Evaluate(`
			(() => {
				const link = document.querySelector('a[href*="user_export"][href$=".csv"], a[href*="export"][download]');
				return link ? link.href : "";
			})()
		`, &exportLink)); err != nil {
			return "", fmt.Errorf("failed to check StoryGraph export link: %w", err)
		}

		if exportLink != "" {
			slog.Info("Found StoryGraph export link", "waited", time.Since(start))
			return exportLink, nil
		}

		if tries%5 == 0 {
			slog.Info("Waiting for StoryGraph export link", "elapsed", time.Since(start))
		}
		tries++

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for StoryGraph export link: %w", ctx.Err())
		case <-ticker.C:
		}

		if err := chromedpRunner(ctx, chromedp.Reload()); err != nil {
			slog.Debug("Failed to refresh StoryGraph export page", "error", err)
		}
	}
}

func waitForDownload(ctx context.Context, downloadDir string) (string, error) {
	start := time.Now()
	ticker := time.NewTicker(downloadPollInterval)
	defer ticker.Stop()

	tries := 0
	for {
		path, found, err := findDownloadedCSV(downloadDir)
		if err != nil {
			return "", err
		}

		if found {
			slog.Info("StoryGraph export download completed", "path", path, "waited", time.Since(start))
			return path, nil
		}

		if tries%5 == 0 {
			slog.Info("Waiting for StoryGraph export download", "elapsed", time.Since(start))
		}
		tries++

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for StoryGraph export download: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func findDownloadedCSV(downloadDir string) (string, bool, error) {
	entries, err := os.ReadDir(downloadDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to read download directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".csv") && !strings.HasSuffix(name, ".crdownload") {
			return filepath.Join(downloadDir, name), true, nil
		}
	}

	return "", false, nil
}

func moveDownloadedCSV(downloadedPath, requestedDir string) (string, error) {
	targetDir := requestedDir
	if targetDir == "" {
		targetDir = "exports"
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create target directory: %w", err)
	}

	targetPath := filepath.Join(targetDir, exportFileName)

	if downloadedPath == targetPath {
		return targetPath, nil
	}

	if err := os.Rename(downloadedPath, targetPath); err != nil {
		if copyErr := copyFile(downloadedPath, targetPath); copyErr != nil {
			return "", fmt.Errorf("failed to move downloaded export: %v (copy error: %w)", err, copyErr)
		}
		_ = os.Remove(downloadedPath)
	}

	return targetPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Sync()
}
