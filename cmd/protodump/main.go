package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/anirudhraja/protodesc/wire"
)

func main() {
	app := kingpin.New("protodump", "Print the fields of a protobuf payload without a schema.")

	var (
		configPath string
		hexInput   bool
		nested     bool
		maxDepth   int
		logLevel   string
		input      string
	)
	app.Flag("config", "TOML config file").StringVar(&configPath)
	app.Flag("hex", "Input is hex text instead of raw bytes").BoolVar(&hexInput)
	app.Flag("nested", "Print length-delimited fields that parse as messages recursively").BoolVar(&nested)
	app.Flag("max-depth", "Maximum nesting depth").IntVar(&maxDepth)
	app.Flag("log-level", "Log level: trace, debug, info, warn, error, off").StringVar(&logLevel)
	app.Arg("input", "Payload file; stdin when omitted").StringVar(&input)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg := defaultConfig()
	if configPath != "" {
		loaded, err := loadConfig(configPath, cfg)
		if err != nil {
			exitWithErr(err)
		}
		cfg = loaded
	}
	applyEnvOverrides(&cfg)
	if lvl, ok := parseLevel(logLevel); ok {
		cfg.LogLevel = lvl
	} else if logLevel != "" {
		exitWithErr(errors.Errorf("unknown log level %q", logLevel))
	}
	if maxDepth > 0 {
		cfg.MaxDepth = maxDepth
	}
	cfg.Hex = cfg.Hex || hexInput
	cfg.Nested = cfg.Nested || nested

	logger := newLogger(cfg.LogLevel)
	if err := run(cfg, input, os.Stdout, logger); err != nil {
		exitWithErr(errors.Wrapf(err, "dump %s", inputName(input)))
	}
}

func newLogger(level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "protodump").Logger()
}

func run(cfg dumpConfig, input string, out io.Writer, logger zerolog.Logger) error {
	data, err := readInput(input)
	if err != nil {
		return err
	}
	if cfg.Hex {
		if data, err = parseHex(data); err != nil {
			return err
		}
	}
	logger.Debug().Int("bytes", len(data)).Int("max_depth", cfg.MaxDepth).Bool("nested", cfg.Nested).Msg("decoding payload")

	c := wire.CurrentConfig()
	c.MaxDepth = cfg.MaxDepth
	c.Logger = logger

	w := bufio.NewWriter(out)
	if err := dump(w, data, c, cfg.Nested); err != nil {
		return err
	}
	return w.Flush()
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	return data, nil
}

func inputName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
