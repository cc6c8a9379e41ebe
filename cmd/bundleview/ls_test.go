package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jchantrell/bundleview/internal/bundle"
)

func TestWriteListing(t *testing.T) {
	idx := bundle.NewIndex("a.txt\nb/\nb/c.txt")

	var text bytes.Buffer
	require.NoError(t, writeListing(&text, "x.zip", idx, "text"))
	assert.Equal(t, "a.txt\nb/\nb/c.txt\n", text.String())

	want := listing{
		Source: "x.zip",
		Entries: []listEntry{
			{Name: "a.txt"},
			{Name: "b/", Dir: true},
			{Name: "b/c.txt"},
		},
	}

	var jsonOut bytes.Buffer
	require.NoError(t, writeListing(&jsonOut, "x.zip", idx, "json"))
	var gotJSON listing
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &gotJSON))
	assert.Equal(t, want, gotJSON)

	var yamlOut bytes.Buffer
	require.NoError(t, writeListing(&yamlOut, "x.zip", idx, "yaml"))
	var gotYAML listing
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &gotYAML))
	assert.Equal(t, want, gotYAML)

	assert.Error(t, writeListing(&text, "x.zip", idx, "csv"))
}
