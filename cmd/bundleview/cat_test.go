package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchantrell/bundleview/internal/bundle"
	"github.com/jchantrell/bundleview/internal/config"
)

func useConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{CacheDir: t.TempDir()}
	t.Cleanup(func() { cfg = prev })
}

func writeBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"logs/":        "",
		"logs/app.log": "started\nready\n",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if body != "" {
			_, err = io.WriteString(w, body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return path
}

func TestCatEntryToStdout(t *testing.T) {
	useConfig(t)
	path := writeBundle(t)

	var out bytes.Buffer
	require.NoError(t, catEntry(context.Background(), &out, path, "logs/app.log", ""))
	assert.Equal(t, "started\nready\n", out.String())
}

func TestCatEntryToFile(t *testing.T) {
	useConfig(t)
	path := writeBundle(t)
	output := filepath.Join(t.TempDir(), "app.log")

	var out bytes.Buffer
	require.NoError(t, catEntry(context.Background(), &out, path, "logs/app.log", output))
	assert.Zero(t, out.Len())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "started\nready\n", string(data))
}

func TestCatEntryErrors(t *testing.T) {
	useConfig(t)
	path := writeBundle(t)
	var out bytes.Buffer

	assert.ErrorContains(t, catEntry(context.Background(), &out, path, "logs/", ""), "is a directory")

	err := catEntry(context.Background(), &out, path, "logs/missing.log", "")
	assert.True(t, bundle.IsNotFound(err))

	var indexErr *bundle.IndexError
	err = catEntry(context.Background(), &out, filepath.Join(t.TempDir(), "none.zip"), "a", "")
	assert.ErrorAs(t, err, &indexErr)

	assert.Zero(t, out.Len())
}

func TestCatCommand(t *testing.T) {
	useConfig(t)
	path := writeBundle(t)

	var out bytes.Buffer
	catCmd.SetOut(&out)
	catCmd.SetContext(context.Background())
	t.Cleanup(func() { catCmd.SetOut(nil) })

	require.NoError(t, catCmd.RunE(catCmd, []string{path, "logs/app.log"}))
	assert.Equal(t, "started\nready\n", out.String())
}
