package notebook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNotebook = `{
  "cells": [
    {"cell_type": "markdown", "source": "# Homework 1"},
    {"cell_type": "code", "source": ["sales <- read_csv('x')\n", "head(sales)\n"], "execution_count": 1}
  ],
  "nbformat": 4
}`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alice.ipynb")
	require.NoError(t, os.WriteFile(path, []byte(sampleNotebook), 0o644))

	nb, err := Load(path)
	require.NoError(t, err)
	require.Len(t, nb.Cells, 2)
	assert.Equal(t, "sales <- read_csv('x')\nhead(sales)\n", nb.Cells[1].Source.String())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ipynb"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}

func TestReadParseError(t *testing.T) {
	_, err := Read(strings.NewReader("{not a notebook"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")
}

func TestReadNoCells(t *testing.T) {
	_, err := Read(strings.NewReader(`{"cells": [], "nbformat": 4}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cells")
}
