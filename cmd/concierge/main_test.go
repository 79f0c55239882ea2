package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/concierge"
	"github.com/poiesic/concierge/core"
)

func init() {
	color.NoColor = true
}

var demo = []*core.Residence{
	{Id: "r1", Name: "Marina Heights", City: "Dubai", Country: "UAE", PriceMin: 6_000_000, Amenities: []string{"Helipad"},
		Rankings: []core.RankingScore{{Position: 1, Category: core.RankingCategory{Title: "Best Views"}}}},
	{Id: "r2", Name: "Mayfair House", City: "London", Country: "UK", PriceMin: 4_000_000, Amenities: []string{"Spa"}},
}

func findFlag(t *testing.T, cmd *cli.Command, name string) cli.Flag {
	t.Helper()
	for _, f := range cmd.Flags {
		if f.Names()[0] == name {
			return f
		}
	}
	t.Fatalf("flag %s not found on %s", name, cmd.Name)
	return nil
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	cmd := app.Command(name)
	require.NotNil(t, cmd, "command %s", name)
	return cmd
}

func TestSyncCommandFlags(t *testing.T) {
	app := newApp()
	cmd := findCommand(t, app, "sync")

	t.Run("upstream-url is required", func(t *testing.T) {
		err := newApp().Run([]string{"concierge", "sync", "--db", t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upstream-url")
	})

	t.Run("db is required", func(t *testing.T) {
		err := newApp().Run([]string{"concierge", "sync", "--upstream-url", "http://localhost"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("upstream-url reads the environment", func(t *testing.T) {
		f := findFlag(t, cmd, "upstream-url").(*cli.StringFlag)
		assert.Equal(t, []string{"CONCIERGE_UPSTREAM_URL"}, f.EnvVars)
	})

	t.Run("page-size has default value of 100", func(t *testing.T) {
		f := findFlag(t, cmd, "page-size").(*cli.IntFlag)
		assert.Equal(t, 100, f.Value)
	})

	t.Run("page-size must be positive", func(t *testing.T) {
		err := newApp().Run([]string{"concierge", "sync", "--db", t.TempDir(), "--upstream-url", "http://localhost", "--page-size", "0"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "page-size must be greater than 0")
	})
}

func TestServeCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "serve")

	addr := findFlag(t, cmd, "addr").(*cli.StringFlag)
	assert.Equal(t, ":8080", addr.Value)

	model := findFlag(t, cmd, "ai-model").(*cli.StringFlag)
	assert.Equal(t, "qwen2.5:3b", model.Value)

	enabled := findFlag(t, cmd, "ai").(*cli.BoolFlag)
	assert.False(t, enabled.Value)
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}

func TestNewHandler_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concierge.log")
	logger := slog.New(newHandler(os.Stderr, path, slog.LevelInfo))
	logger.Info("hello", "component", "test")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "hello", entry["msg"])

	var buf bytes.Buffer
	slog.New(newHandler(&buf, "", slog.LevelWarn)).Info("dropped")
	assert.Empty(t, buf.String())
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONCIERGE_TEST_VALUE=from-file\n"), 0644))
	t.Setenv("CONCIERGE_TEST_VALUE", "")
	os.Unsetenv("CONCIERGE_TEST_VALUE")

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("CONCIERGE_TEST_VALUE"))
}

func writeResidences(t *testing.T, residences any) string {
	t.Helper()
	data, err := json.Marshal(residences)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "residences.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestReadResidences(t *testing.T) {
	got, err := readResidences(writeResidences(t, demo))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Marina Heights", got[0].Name)

	_, err = readResidences(writeResidences(t, []map[string]any{{"name": "No Id"}}))
	assert.ErrorIs(t, err, core.ErrInvalidResidence)

	_, err = readResidences(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "db")
	sqlitePath := filepath.Join(dir, "catalog.sqlite")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run([]string{"concierge", "import", "--db", db, "--sqlite", sqlitePath, writeResidences(t, demo)})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Imported 2 residences")

	c, err := concierge.New(context.Background(), db)
	require.NoError(t, err)
	defer c.Close()
	n, err := c.Catalog().CountResidences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = os.Stat(sqlitePath)
	assert.NoError(t, err)
}

func TestBadgeCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	require.NoError(t, app.Run([]string{"concierge", "badge", "1", "4", "11"}))
	assert.Equal(t, "1: [GOLD]\n4: [CLASSIC]\n11: [NONE]\n", out.String())

	assert.Error(t, newApp().Run([]string{"concierge", "badge", "first"}))
	assert.Error(t, newApp().Run([]string{"concierge", "badge"}))
}

func TestRunChat(t *testing.T) {
	ctx := context.Background()
	c, err := concierge.New(ctx, "", concierge.WithInMemory())
	require.NoError(t, err)
	defer c.Close()

	pipeline, err := c.NewIngestionPipeline()
	require.NoError(t, err)
	require.NoError(t, pipeline.Ingest(ctx, demo))
	pipeline.Release()

	var out bytes.Buffer
	err = runChat(ctx, c.Sessions(), strings.NewReader("in Dubai\n\n/quit\n"), &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "I found 1 residence")
	assert.Contains(t, text, "1. Marina Heights, Dubai (100%) [GOLD Best Views]")

	locations, err := c.Vocabulary().LoadVocabulary(ctx, core.FieldLocation)
	require.NoError(t, err)
	assert.Contains(t, locations, "Dubai")
}

func TestRenderBadge(t *testing.T) {
	assert.Equal(t, "[SILVER]", renderBadge(core.BadgeSilver, ""))
	assert.Equal(t, "[BRONZE Best Spa]", renderBadge(core.BadgeBronze, "Best Spa"))
}
