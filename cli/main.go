package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	docopt "github.com/docopt/docopt-go"
	"github.com/sirupsen/logrus"

	"github.com/castawaylabs/statuspage"
	"github.com/castawaylabs/statuspage/config"
	"github.com/castawaylabs/statuspage/system"
)

const version = "1.0.0"

const usage = `statuspage reads the public status of a Statuspage hosted page.

Usage:
  statuspage summary [options]
  statuspage status [options]
  statuspage components [options]
  statuspage incidents [options]
  statuspage incident <id> [options]
  statuspage webhook <file> [options]
  statuspage watch [options]
  statuspage serve [options]
  statuspage resolve <domain> [options]
  statuspage -h | --help
  statuspage --version

Options:
  -c PATH --config=PATH  Config file path or http(s) url.
  --url=URL              Page url, overrides base_url.
  --json                 Print records as JSON.
  --log=PATH             Write logs to PATH instead of stderr.
  --dns=SERVER           DNS server (IP:port) used by resolve.
  -h --help              Show this screen.
  --version              Show version.

Environment:
  STATUSPAGE_URL         Page url, overrides base_url in the config file.
  STATUSPAGE_SLACK_URL   Slack incoming webhook url for watch and serve.`

var commands = []string{"summary", "status", "components", "incidents", "incident", "webhook", "watch", "serve", "resolve"}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(argv []string, stdout io.Writer) int {
	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpOnly}
	opts, err := parser.ParseArgs(usage, argv, version)
	if err != nil {
		return 2
	}
	if opts == nil {
		// help or version was printed
		return 0
	}

	app, err := newApp(opts, stdout)
	if err != nil {
		logrus.Error(err)
		return 1
	}
	defer app.close()

	command := ""
	for _, c := range commands {
		if ok, _ := opts.Bool(c); ok {
			command = c
		}
	}

	if command == "" {
		return 0
	}

	if err := app.dispatch(command); err != nil {
		logrus.WithField("command", command).Error(err)
		return 1
	}

	return 0
}

// app carries what every command needs.
type app struct {
	opts   docopt.Opts
	cfg    *config.Config
	out    io.Writer
	log    *logrus.Entry
	asJSON bool

	logFile *os.File
}

func newApp(opts docopt.Opts, stdout io.Writer) (*app, error) {
	a := &app{opts: opts, out: stdout}

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	if err := a.setupLogging(); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n - %s", strings.Join(errs, "\n - "))
	}
	logrus.Debug("Configuration valid")

	a.asJSON, _ = opts.Bool("--json")
	a.log = logrus.WithField("host", system.Hostname())

	return a, nil
}

func loadConfig(opts docopt.Opts) (*config.Config, error) {
	var cfg *config.Config

	if path, _ := opts.String("--config"); len(path) > 0 {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
		cfg.ApplyEnv(os.LookupEnv)
		cfg.SetDefaults()
	}

	if url, _ := opts.String("--url"); len(url) > 0 {
		cfg.BaseURL = url
	}
	if server, _ := opts.String("--dns"); len(server) > 0 {
		cfg.DNSServer = server
	}
	if len(cfg.UserAgent) == 0 {
		cfg.UserAgent = system.UserAgent("statuspage", version)
	}

	return cfg, nil
}

func (a *app) setupLogging() error {
	if logPath, _ := a.opts.String("--log"); len(logPath) > 0 {
		file, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("unable to open '%v' for logging: %w", logPath, err)
		}
		a.logFile = file
		logrus.SetOutput(file)
	} else {
		logrus.SetOutput(os.Stderr)
	}

	if a.cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	// unparsable levels are reported by Validate
	if level, err := logrus.ParseLevel(a.cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		logrus.SetOutput(os.Stderr)
		a.logFile.Close()
	}
}

func (a *app) client() (*statuspage.Client, error) {
	if err := a.cfg.RequireBaseURL(); err != nil {
		return nil, err
	}
	return statuspage.NewClient(a.cfg.BaseURL, a.cfg.ClientOptions(a.log)...)
}
