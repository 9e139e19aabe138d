package det01

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

type Configuration struct {
	Version          string   `json:"version" yaml:"version"`
	NumEvents        int      `json:"num_events" yaml:"num_events"`
	Skip             int      `json:"skip" yaml:"skip"`
	Seed             uint64   `json:"seed" yaml:"seed"`
	NumWorkers       int      `json:"num_workers" yaml:"num_workers"`
	FileOut          string   `json:"file_out" yaml:"file_out"`
	FileType         string   `json:"file_type" yaml:"file_type"`
	Verbosity        int      `json:"verbosity" yaml:"verbosity"`
	PrimaryFlags     bool     `json:"primary_flags" yaml:"primary_flags"`
	Cherenkov        bool     `json:"cherenkov" yaml:"cherenkov"`
	MaxStep          float64  `json:"max_step" yaml:"max_step"`
	DeltaProb        float64  `json:"delta_prob" yaml:"delta_prob"`
	LightYieldScale  float64  `json:"light_yield_scale" yaml:"light_yield_scale"`
	CollectionEff    float64  `json:"collection_eff" yaml:"collection_eff"`
	QuantumEff       float64  `json:"quantum_eff" yaml:"quantum_eff"`
	ReflectionSpread float64  `json:"reflection_spread" yaml:"reflection_spread"`
	MuonMeanEnergy   float64  `json:"muon_mean_energy" yaml:"muon_mean_energy"`
	MuonMinEnergy    float64  `json:"muon_min_energy" yaml:"muon_min_energy"`
	SourceHalfX      float64  `json:"source_half_x" yaml:"source_half_x"`
	SourceHalfZ      float64  `json:"source_half_z" yaml:"source_half_z"`
	RunNumber        int      `json:"run_number" yaml:"run_number"`
	NoDB             bool     `json:"no_db" yaml:"no_db"`
	Host             string   `json:"host" yaml:"host"`
	User             string   `json:"user" yaml:"user"`
	Passwd           string   `json:"pass" yaml:"pass"`
	DBName           string   `json:"dbname" yaml:"dbname"`
	MonitorAddr      string   `json:"monitor_addr" yaml:"monitor_addr"`
	KafkaBrokers     []string `json:"kafka_brokers" yaml:"kafka_brokers"`
	KafkaTopic       string   `json:"kafka_topic" yaml:"kafka_topic"`
	CompressionLevel int      `json:"compression_level" yaml:"compression_level"`
}

var configuration = DefaultConfiguration()

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// DefaultConfiguration returns the values used for every key missing from a
// configuration file.
func DefaultConfiguration() Configuration {
	var config Configuration

	config.Version = "v0200"
	config.NumEvents = 1000
	config.Skip = 0
	config.Seed = 12345
	config.NumWorkers = 1
	config.FileOut = "DET01_Cosmic_Result"
	config.FileType = ""
	config.Verbosity = 0
	config.PrimaryFlags = false
	config.Cherenkov = true
	config.MaxStep = 10 * mm
	config.DeltaProb = 0.05
	config.LightYieldScale = 1.0
	config.CollectionEff = 0.01
	config.QuantumEff = 0.25
	config.ReflectionSpread = 0.5
	config.MuonMeanEnergy = 4 * GeV
	config.MuonMinEnergy = 1 * GeV
	config.SourceHalfX = 100 * mm
	config.SourceHalfZ = 100 * mm
	config.RunNumber = 0
	config.NoDB = true
	config.Host = "localhost"
	config.User = "det01reader"
	config.Passwd = "readonly"
	config.DBName = "DET01"
	config.MonitorAddr = ""
	config.KafkaTopic = "det01.cosmicdata"
	config.CompressionLevel = 4
	return config
}

func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return config, fmt.Errorf("error decoding configuration %q: %w", filename, err)
	}
	return config, nil
}

// Validate checks the values that would otherwise only fail deep inside a run.
func (c Configuration) Validate() error {
	spec, err := LookupVersion(c.Version)
	if err != nil {
		return err
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("num_workers must be positive, got %d", c.NumWorkers)
	}
	if c.NumEvents < 0 || c.Skip < 0 {
		return fmt.Errorf("num_events and skip must not be negative")
	}
	if c.MaxStep <= 0 {
		return fmt.Errorf("max_step must be positive, got %g", c.MaxStep)
	}
	if _, err := ParseFileType(c.OutputFileType(spec)); err != nil {
		return err
	}
	return nil
}

// OutputFileType returns the configured file type, falling back to the
// version default when none is set.
func (c Configuration) OutputFileType(spec VersionSpec) string {
	if c.FileType != "" {
		return c.FileType
	}
	return spec.DefaultFileType
}

func PrintConfiguration(config Configuration) {
	logger.Info(fmt.Sprintf("Version: %s", config.Version), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Number of events: %d", config.NumEvents), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Seed: %d", config.Seed), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("File type: %s", config.FileType), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Primary flags: %t", config.PrimaryFlags), "config")
	logger.Info(fmt.Sprintf("Cherenkov: %t", config.Cherenkov), "config")
	logger.Info(fmt.Sprintf("Max step: %g mm", config.MaxStep/mm), "config")
	logger.Info(fmt.Sprintf("Delta probability: %g", config.DeltaProb), "config")
	logger.Info(fmt.Sprintf("Light yield scale: %g", config.LightYieldScale), "config")
	logger.Info(fmt.Sprintf("Collection efficiency: %g", config.CollectionEff), "config")
	logger.Info(fmt.Sprintf("Quantum efficiency: %g", config.QuantumEff), "config")
	logger.Info(fmt.Sprintf("Muon mean energy: %g MeV", config.MuonMeanEnergy/MeV), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Monitor address: %s", config.MonitorAddr), "config")
	logger.Info(fmt.Sprintf("Kafka topic: %s", config.KafkaTopic), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
}
