package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	det01 "github.com/next-exp/det01_go/pkg"
)

var configuration det01.Configuration

var (
	logger         det01.SlogLogger
	VerbosityLevel int
)

func init() {
	logger = det01.NewSlogLogger(os.Stdout, os.Stderr)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one simulation and returns the process exit code, so that
// deferred cleanup always runs before the exit.
func run(args []string) int {
	flags := flag.NewFlagSet("det01", flag.ContinueOnError)
	configFilename := flags.String("config", "", "Configuration file path (JSON or YAML)")
	version := flags.String("version", "", fmt.Sprintf("Application version, one of %s", strings.Join(det01.VersionNames(), ", ")))
	nevts := flags.Int("nevts", -1, "Number of events to simulate")
	fileOut := flags.String("o", "", "Output file name without extension")
	fileType := flags.String("type", "", "Output file type: root, csv, hdf5, kafka or none")
	workers := flags.Int("workers", 0, "Number of worker goroutines")
	seed := flags.Uint64("seed", 0, "Random seed")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	var err error
	configuration = det01.DefaultConfiguration()
	if *configFilename != "" {
		configuration, err = det01.LoadConfiguration(*configFilename)
		if err != nil {
			message := fmt.Errorf("Error reading configuration file: %w", err)
			logger.Error(message.Error())
			return 1
		}
	}
	applyFlags(&configuration, *version, *nevts, *fileOut, *fileType, *workers, *seed)

	det01.SetConfiguration(configuration)
	det01.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		det01.PrintConfiguration(configuration)
	}

	if err := configuration.Validate(); err != nil {
		logger.Error(fmt.Errorf("Invalid configuration: %w", err).Error())
		return 1
	}

	conds, err := loadConditions(configuration)
	if err != nil {
		logger.Error(err.Error())
		return 1
	}

	runManager, err := det01.SetupRun(configuration, conds)
	if err != nil {
		logger.Error(fmt.Errorf("Error setting up run: %w", err).Error())
		return 1
	}
	metrics := det01.NewMetrics()
	runManager.SetMetrics(metrics)

	if configuration.MonitorAddr != "" {
		monitor := det01.NewMonitor(configuration.MonitorAddr, runManager.Status(), metrics)
		monitor.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := monitor.Shutdown(ctx); err != nil {
				logger.Error(fmt.Errorf("Error stopping monitor: %w", err).Error())
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	summary, err := runManager.BeamOn(ctx, configuration.NumEvents)
	if err != nil {
		logger.Error(fmt.Errorf("Run failed: %w", err).Error())
	}
	message := fmt.Sprintf("Total events processed: %d in %d ms", summary.Events, time.Since(start).Milliseconds())
	logger.Info(message, "main")
	if err != nil {
		return 1
	}
	return 0
}

// applyFlags overrides the configuration with the flags given on the
// command line.
func applyFlags(config *det01.Configuration, version string, nevts int, fileOut string, fileType string, workers int, seed uint64) {
	if version != "" {
		config.Version = version
	}
	if nevts >= 0 {
		config.NumEvents = nevts
	}
	if fileOut != "" {
		config.FileOut = fileOut
	}
	if fileType != "" {
		config.FileType = fileType
	}
	if workers > 0 {
		config.NumWorkers = workers
	}
	if seed != 0 {
		config.Seed = seed
	}
}

func loadConditions(config det01.Configuration) (det01.Conditions, error) {
	if config.NoDB {
		return nil, nil
	}
	dbConn, err := det01.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
	if err != nil {
		return nil, fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()

	spec, err := det01.LookupVersion(config.Version)
	if err != nil {
		return nil, err
	}
	defaults := det01.DefaultConditions(spec.NDetectors, config)
	conds, err := det01.LoadConditions(dbConn, config.RunNumber, defaults)
	if err != nil {
		return nil, fmt.Errorf("error getting channel conditions from database: %w", err)
	}
	return conds, nil
}
