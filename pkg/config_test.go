package det01

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigurationJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"version": "v0100",
		"num_events": 250,
		"num_workers": 4,
		"file_type": "csv",
		"primary_flags": true
	}`)

	config, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, "v0100", config.Version)
	assert.Equal(t, 250, config.NumEvents)
	assert.Equal(t, 4, config.NumWorkers)
	assert.Equal(t, "csv", config.FileType)
	assert.True(t, config.PrimaryFlags)

	// keys missing from the file keep their defaults
	assert.Equal(t, uint64(12345), config.Seed)
	assert.Equal(t, "DET01_Cosmic_Result", config.FileOut)
	assert.True(t, config.NoDB)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigurationYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
version: v00
num_events: 10
seed: 7
kafka_brokers:
  - broker1:9092
  - broker2:9092
`)

	config, err := LoadConfiguration(path)
	require.NoError(t, err)
	assert.Equal(t, "v00", config.Version)
	assert.Equal(t, 10, config.NumEvents)
	assert.Equal(t, uint64(7), config.Seed)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, config.KafkaBrokers)
	assert.Equal(t, "det01.cosmicdata", config.KafkaTopic)
}

func TestLoadConfigurationErrors(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	var openErr *ErrOpenFile
	assert.ErrorAs(t, err, &openErr)

	path := writeFile(t, "broken.json", `{"version": `)
	_, err = LoadConfiguration(path)
	assert.ErrorContains(t, err, "error decoding configuration")
}

func TestConfigurationValidate(t *testing.T) {
	config := DefaultConfiguration()
	require.NoError(t, config.Validate())

	spec, err := LookupVersion(config.Version)
	require.NoError(t, err)
	assert.Equal(t, "root", config.OutputFileType(spec))

	bad := config
	bad.Version = "v9"
	var unknown *ErrUnknownVersion
	assert.ErrorAs(t, bad.Validate(), &unknown)

	bad = config
	bad.FileType = "xml"
	var unknownType *ErrUnknownFileType
	assert.ErrorAs(t, bad.Validate(), &unknownType)

	bad = config
	bad.NumWorkers = 0
	assert.Error(t, bad.Validate())

	bad = config
	bad.MaxStep = 0
	assert.Error(t, bad.Validate())
}

func TestSetConfiguration(t *testing.T) {
	defer SetConfiguration(DefaultConfiguration())

	config := DefaultConfiguration()
	config.Verbosity = 3
	SetConfiguration(config)
	assert.Equal(t, 3, GetConfiguration().Verbosity)
}
