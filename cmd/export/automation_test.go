package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestPrepareDownloadDirCreatesTemp(t *testing.T) {
	dir, cleanup, err := prepareDownloadDir("")
	require.NoError(t, err)
	require.DirExists(t, dir)
	require.NotNil(t, cleanup)

	cleanup()

	_, statErr := os.Stat(dir)
	require.Error(t, statErr)
	require.True(t, os.IsNotExist(statErr))
}

func TestMoveDownloadedCSVToCustomDir(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "original.csv")
	require.NoError(t, os.WriteFile(source, []byte("data"), 0o644))

	targetDir := filepath.Join(tempDir, "target")
	targetPath, err := moveDownloadedCSV(source, targetDir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(targetDir, exportFileName), targetPath)
	require.FileExists(t, targetPath)

	_, err = os.Stat(source)
	require.True(t, os.IsNotExist(err))
}

func TestWaitForDownloadFindsExistingFile(t *testing.T) {
	tempDir := t.TempDir()
	target := filepath.Join(tempDir, exportFileName)
	require.NoError(t, os.WriteFile(target, []byte("ok"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	path, err := waitForDownload(ctx, tempDir)
	require.NoError(t, err)
	require.Equal(t, target, path)
}

func TestFindDownloadedCSVSkipsPartialFiles(t *testing.T) {
	tempDir := t.TempDir()
	partial := filepath.Join(tempDir, exportFileName+".crdownload")
	require.NoError(t, os.WriteFile(partial, []byte("incomplete"), 0o644))

	_, found, err := findDownloadedCSV(tempDir)
	require.NoError(t, err)
	require.False(t, found)
}

func TestAutomateRequiresCredentials(t *testing.T) {
	_, err := AutomateStoryGraphExport(context.Background(), AutomationOptions{})
	require.Error(t, err)
}

func TestExportWithParamsRequiresCredentials(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := ExportWithParams("", true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "credentials missing")
}

func TestExportWithParamsPassesConfigThrough(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("storygraph.email", "reader@example.com")
	viper.Set("storygraph.password", "hunter2")
	viper.Set("storygraph.automation.timeout", "5m")
	viper.Set("storygraph.automation.download_dir", "/tmp/exports")

	var got AutomationOptions
	orig := downloadStoryGraphCSV
	downloadStoryGraphCSV = func(_ context.Context, opts AutomationOptions) (string, error) {
		got = opts
		return "/tmp/exports/storygraph_export.csv", nil
	}
	t.Cleanup(func() { downloadStoryGraphCSV = orig })

	path, err := ExportWithParams("", true)
	require.NoError(t, err)
	require.Equal(t, "/tmp/exports/storygraph_export.csv", path)
	require.Equal(t, "reader@example.com", got.Email)
	require.Equal(t, "hunter2", got.Password)
	require.Equal(t, "/tmp/exports", got.DownloadDir)
	require.Equal(t, 5*time.Minute, got.Timeout)
	require.True(t, got.Headless)
}
