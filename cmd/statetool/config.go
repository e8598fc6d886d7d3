package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/qurulab/Waves/infrastructure/logger"
	"github.com/qurulab/Waves/version"
)

const (
	defaultLogFilename    = "statetool.log"
	defaultErrLogFilename = "statetool_err.log"
	defaultLogLevel       = "info"
)

type configFlags struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	DataDir     string `short:"b" long:"datadir" description:"Location of the state database directory"`
	LogDir      string `long:"logdir" description:"Directory to write log files to"`
	LogLevel    string `short:"d" long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical, off}"`
}

func defaultHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".wavesstate")
}

func parseConfig() (*configFlags, []string, error) {
	cfg := &configFlags{
		DataDir:  filepath.Join(defaultHomeDir(), "data"),
		LogLevel: defaultLogLevel,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	parser.Usage = "statetool [OPTIONS] COMMAND\n\nCommands:\n" +
		"  status                  Print the tip height and score\n" +
		"  block HEIGHT            Print the block meta at the given height\n" +
		"  rollback HEIGHT         Roll the state back to the given height\n" +
		"  dump TAG                List the keys stored under the given tag byte"
	remainingArgs, err := parser.Parse()

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if err != nil {
		return nil, nil, err
	}
	if len(remainingArgs) == 0 {
		return nil, nil, errors.New("no command given, see --help")
	}

	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(defaultHomeDir(), "logs")
	}
	level, ok := logger.LevelFromString(cfg.LogLevel)
	if !ok {
		return nil, nil, errors.Errorf("unrecognized log level %q", cfg.LogLevel)
	}
	err = logger.InitLog(
		filepath.Join(cfg.LogDir, defaultLogFilename),
		filepath.Join(cfg.LogDir, defaultErrLogFilename))
	if err != nil {
		return nil, nil, err
	}
	logger.SetLogLevels(level)

	return cfg, remainingArgs, nil
}
