package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func runCtl(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAddListDelete(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lessons.json")

	out, err := runCtl(t, "--file", file, "add", "2025-10-21", "17:00", "Prepare", "curriculum")
	require.NoError(t, err)
	assert.Contains(t, out, "Added #1: 2025-10-21 17:00 Prepare curriculum")

	_, err = runCtl(t, "--file", file, "add", "2025-10-22", "9:05", "Scratch")
	require.NoError(t, err)

	out, err = runCtl(t, "--file", file, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Prepare curriculum")
	assert.Contains(t, out, "09:05")

	out, err = runCtl(t, "--file", file, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted: 2025-10-21 17:00 Prepare curriculum")

	out, err = runCtl(t, "--file", file, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Prepare curriculum")
	assert.Contains(t, out, "Scratch")
}

func TestEmptyList(t *testing.T) {
	out, err := runCtl(t, "--file", filepath.Join(t.TempDir(), "lessons.json"), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No lessons")
}

func TestRefusals(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lessons.json")

	_, err := runCtl(t, "--file", file, "add", "21.10.2025", "17:00", "x")
	assert.Error(t, err)
	_, err = runCtl(t, "--file", file, "delete", "first")
	assert.Error(t, err)
	_, err = runCtl(t, "--file", file, "delete", "1")
	assert.Error(t, err)
	_, err = runCtl(t, "--file", file, "--timezone", "Mars/Olympus", "list")
	assert.Error(t, err)

	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err), "refused commands must not create the file")
}

func TestBrokenFileIsNotOverwritten(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lessons.json")
	require.NoError(t, os.WriteFile(file, []byte("{broken"), 0o644))

	_, err := runCtl(t, "--file", file, "add", "2025-10-21", "17:00", "x")
	assert.Error(t, err)

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(content))
}

func TestBlankFileIsUsable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "lessons.json")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	out, err := runCtl(t, "--file", file, "add", "2025-10-21", "17:00", "first")
	require.NoError(t, err)
	assert.Contains(t, out, "Added #1")
}

func TestExportXlsx(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lessons.json")
	xlsName := filepath.Join(dir, "lessons.xlsx")

	_, err := runCtl(t, "--file", file, "add", "2025-10-21", "17:00", "Prepare", "curriculum")
	require.NoError(t, err)
	out, err := runCtl(t, "--file", file, "export", "--xlsx", xlsName)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 lessons")

	xls, err := xlsx.OpenFile(xlsName)
	require.NoError(t, err)
	require.Len(t, xls.Sheets, 1)
	sh := xls.Sheets[0]
	assert.Equal(t, "Date", sh.Cell(0, 1).Value)
	assert.Equal(t, "2025-10-21", sh.Cell(1, 1).Value)
	assert.Equal(t, "Prepare curriculum", sh.Cell(1, 3).Value)
}
