package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	det01 "github.com/next-exp/det01_go/pkg"
)

func TestApplyFlags(t *testing.T) {
	config := det01.DefaultConfiguration()
	defaults := config

	applyFlags(&config, "", -1, "", "", 0, 0)
	assert.Equal(t, defaults, config)

	applyFlags(&config, "v01", 250, "out/run7", "root", 8, 42)
	assert.Equal(t, "v01", config.Version)
	assert.Equal(t, 250, config.NumEvents)
	assert.Equal(t, "out/run7", config.FileOut)
	assert.Equal(t, "root", config.FileType)
	assert.Equal(t, 8, config.NumWorkers)
	assert.Equal(t, uint64(42), config.Seed)

	// zero events is a valid request
	applyFlags(&config, "", 0, "", "", 0, 0)
	assert.Equal(t, 0, config.NumEvents)
}

func TestLoadConditionsWithoutDatabase(t *testing.T) {
	config := det01.DefaultConfiguration()
	config.NoDB = true
	conds, err := loadConditions(config)
	require.NoError(t, err)
	assert.Nil(t, conds)
}

func TestRunExitCodes(t *testing.T) {
	assert.Equal(t, 2, run([]string{"-no-such-flag"}))
	assert.Equal(t, 1, run([]string{"-version", "v99"}))
	assert.Equal(t, 1, run([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}))
}

func TestRunWritesOutput(t *testing.T) {
	base := filepath.Join(t.TempDir(), "DET01_Cosmic_Result")
	code := run([]string{"-version", "v0200", "-nevts", "20", "-type", "csv", "-o", base, "-workers", "2"})
	require.Equal(t, 0, code)

	info, err := os.Stat(det01.NewCsvWriter(base).NtupleFilename(det01.NtupleName))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunStopsMonitor(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "det01.yaml")
	content := "version: v01\nnum_events: 5\nfile_type: none\nmonitor_addr: 127.0.0.1:0\nfile_out: " +
		filepath.Join(dir, "run") + "\n"
	require.NoError(t, os.WriteFile(config, []byte(content), 0o644))

	assert.Equal(t, 0, run([]string{"-config", config}))
}
