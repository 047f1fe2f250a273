package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-boop-chasey/vite-docs/pkg/classify"
	"github.com/alex-boop-chasey/vite-docs/pkg/config"
	"github.com/alex-boop-chasey/vite-docs/pkg/output"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func sampleFiles() map[string]string {
	return map[string]string{
		"index.md":                   "# Welcome\n\nStart here.\n",
		"guide/intro.md":             "---\ntitle: Intro\n---\n\nHello <b>there</b>.\n",
		"guide/config.yaml":          "nav:\n  - text: Guide\n",
		"guide/logo.png":             "\x89PNG\x00\x00",
		"blog/post.md":               "# post\n",
		"node_modules/pkg/readme.md": "never\n",
	}
}

func testConfig(root string) *config.Config {
	cfg := config.Defaults()
	cfg.Root = root
	cfg.Output.Flat = filepath.Join(root, "dist", "docs.txt")
	cfg.Output.Grouped = filepath.Join(root, "compiled-grouped.md")
	return &cfg
}

func TestRunWritesArtifacts(t *testing.T) {
	root := writeTree(t, sampleFiles())
	cfg := testConfig(root)
	cfg.Output.Log = filepath.Join(root, "dist", "run.log")
	cfg.Output.Archive = filepath.Join(root, "dist", "docs.txt.gz")

	res, err := Run(context.Background(), cfg, Options{})
	require.NoError(t, err)

	flat, err := os.ReadFile(cfg.Output.Flat)
	require.NoError(t, err)
	assert.Contains(t, string(flat), "## Intro")
	assert.Contains(t, string(flat), "Hello there.")
	assert.Contains(t, string(flat), "\"text\": \"Guide\"")
	assert.NotContains(t, string(flat), "post")
	assert.NotContains(t, string(flat), "never")

	grouped, err := os.ReadFile(cfg.Output.Grouped)
	require.NoError(t, err)
	assert.Contains(t, string(grouped), "# Guide")
	assert.Contains(t, string(grouped), "# General")

	logText, err := os.ReadFile(cfg.Output.Log)
	require.NoError(t, err)
	assert.Contains(t, string(logText), "✅ guide/intro.md")
	assert.Contains(t, string(logText), "⏭️ node_modules/")

	gz, err := os.ReadFile(cfg.Output.Archive)
	require.NoError(t, err)
	zr, err := gzip.NewReader(bytes.NewReader(gz))
	require.NoError(t, err)
	assert.Equal(t, "docs.txt", zr.Name)
	unpacked, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, flat, unpacked)

	assert.Equal(t, 3, res.Summary.FilesProcessed)
	kinds := make([]string, 0, len(res.Artifacts))
	for _, a := range res.Artifacts {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []string{"flat", "grouped", "archive", "log"}, kinds)
}

func TestRunIsDeterministicAndSkipsOwnOutput(t *testing.T) {
	root := writeTree(t, sampleFiles())
	cfg := testConfig(root)

	_, err := Run(context.Background(), cfg, Options{})
	require.NoError(t, err)
	first, err := os.ReadFile(cfg.Output.Grouped)
	require.NoError(t, err)

	res, err := Run(context.Background(), cfg, Options{})
	require.NoError(t, err)
	second, err := os.ReadFile(cfg.Output.Grouped)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	for _, r := range res.Records {
		if r.RelPath == "compiled-grouped.md" {
			assert.Equal(t, classify.StatusExcludedPath, r.Status)
		}
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	root := writeTree(t, sampleFiles())
	cfg := testConfig(root)

	res, err := Run(context.Background(), cfg, Options{DryRun: true})
	require.NoError(t, err)
	assert.Len(t, res.Artifacts, 2)

	_, err = os.Stat(cfg.Output.Flat)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(cfg.Output.Grouped)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRunDryRunSinkListsArtifacts(t *testing.T) {
	root := writeTree(t, sampleFiles())
	cfg := testConfig(root)
	cfg.Output.Archive = filepath.Join(root, "dist", "bundle")
	cfg.Output.ArchiveFormat = config.ArchiveZstd

	sink := &output.DryRunSink{}
	res, err := Run(context.Background(), cfg, Options{DryRun: true, Sink: sink})
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "compiled-grouped.md"),
		filepath.Join(root, "dist", "bundle.zst"),
		filepath.Join(root, "dist", "docs.txt"),
	}
	assert.Equal(t, want, sink.Names())
	require.Len(t, res.Artifacts, 3)
	assert.Equal(t, filepath.Join(root, "dist", "bundle.zst"), res.Artifacts[2].Path)
}

func TestRunExcludesSuffixedArchiveFromInput(t *testing.T) {
	root := writeTree(t, sampleFiles())
	cfg := testConfig(root)
	cfg.Output.Archive = filepath.Join(root, "bundle")
	require.NoError(t, os.WriteFile(filepath.Join(root, "bundle.gz"), []byte("stale"), 0o644))

	res, err := Run(context.Background(), cfg, Options{Sink: output.NewMemorySink()})
	require.NoError(t, err)
	found := false
	for _, r := range res.Records {
		if r.RelPath == "bundle.gz" {
			found = true
			assert.Equal(t, classify.StatusExcludedPath, r.Status)
		}
	}
	assert.True(t, found)
}

func TestRunMissingRoot(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing"))
	_, err := Run(context.Background(), cfg, Options{Sink: output.NewMemorySink()})
	assert.ErrorIs(t, err, ErrRootUnreadable)
}

func TestRunRootIsFile(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "x"})
	cfg := testConfig(filepath.Join(root, "a.md"))
	_, err := Run(context.Background(), cfg, Options{Sink: output.NewMemorySink()})
	assert.ErrorIs(t, err, ErrRootUnreadable)
}

func TestRunOutputWriteFailure(t *testing.T) {
	root := writeTree(t, sampleFiles())
	cfg := testConfig(root)
	sink := output.NewMemorySink()
	sink.Fail = map[string]error{cfg.Output.Grouped: errors.New("disk full")}

	_, err := Run(context.Background(), cfg, Options{Sink: sink})
	assert.ErrorIs(t, err, ErrOutputWrite)
	_, ok := sink.Get(cfg.Output.Flat)
	assert.True(t, ok, "flat output is written before the failing grouped output")
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.GroupBy = "sideways"
	_, err := Run(context.Background(), cfg, Options{})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunCancelled(t *testing.T) {
	root := writeTree(t, sampleFiles())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testConfig(root), Options{Sink: output.NewMemorySink()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRespectsIgnoreFiles(t *testing.T) {
	files := sampleFiles()
	files[".gitignore"] = "drafts/\n"
	files["drafts/wip.md"] = "# WIP\n"
	files[".vitedocsignore"] = "index.md\n"
	root := writeTree(t, files)

	cfg := testConfig(root)
	cfg.RespectGitignore = true
	sink := output.NewMemorySink()

	_, err := Run(context.Background(), cfg, Options{Sink: sink})
	require.NoError(t, err)
	flat, ok := sink.Get(cfg.Output.Flat)
	require.True(t, ok)
	assert.NotContains(t, string(flat), "WIP")
	assert.NotContains(t, string(flat), "Welcome")
	assert.Contains(t, string(flat), "## Intro")
}

func TestRunProgressAndClock(t *testing.T) {
	root := writeTree(t, sampleFiles())
	var stderr bytes.Buffer
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Second)
	}

	res, err := Run(context.Background(), testConfig(root), Options{
		Progress: true,
		Stderr:   &stderr,
		Sink:     output.NewMemorySink(),
		Clock:    clock,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Summary.DurationSeconds, 1e-9)
	assert.Equal(t, 3, res.Summary.FilesProcessed)
}

func TestArtifactsInside(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "docs")
	got := artifactsInside(root, []string{
		filepath.Join(root, "out.txt"),
		filepath.Join(root, "dist", "docs.txt"),
		filepath.Join(string(filepath.Separator), "work", "out.txt"),
		filepath.Join(string(filepath.Separator), "work", "docs-other", "x.txt"),
	})
	assert.Equal(t, []string{"out.txt", "dist/docs.txt"}, got)
}
