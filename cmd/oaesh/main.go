// oaesh is an interactive shell for the Apereo OAE REST API.
//
// It binds a session to a tenant host and an identity, exposes the commands
// that fit that combination and runs them against the platform:
//
//	oaesh -U http://cam.oae.com -u admin
//	oaesh -i -U https://admin.oae.com -u administrator -p administrator -- search-reindex-all
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/oaeproject/oaesh/pkg/commands"
	"github.com/oaeproject/oaesh/pkg/config"
	"github.com/oaeproject/oaesh/pkg/errors"
	"github.com/oaeproject/oaesh/pkg/logging"
	"github.com/oaeproject/oaesh/pkg/output"
	"github.com/oaeproject/oaesh/pkg/rest"
	"github.com/oaeproject/oaesh/pkg/session"
	"github.com/oaeproject/oaesh/pkg/shell"
	"github.com/oaeproject/oaesh/pkg/spinner"
)

const version = "0.4.0"

// app holds the process streams and the seams tests replace.
type app struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer

	// dial overrides how connections are made. Nil uses the network.
	dial func(ctx context.Context, network, addr string) (net.Conn, error)

	// prompter reads passwords. Nil reads from stdin.
	prompter shell.Prompter
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}

// options are the parsed process flags.
type options struct {
	insecure   bool
	url        string
	username   string
	password   string
	configPath string
	initConfig bool
	logLevel   string
	version    bool
	help       bool
	command    []string
}

func newFlagSet(o *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("oaesh", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.BoolVarP(&o.insecure, "insecure", "i", false, "Accept invalid TLS certificates")
	fs.StringVarP(&o.url, "url", "U", "", "The target OAE host, e.g. https://cam.oae.com")
	fs.StringVarP(&o.username, "username", "u", "", "Log in as this user after connecting")
	fs.StringVarP(&o.password, "password", "p", "", "The password of --username. Prompted for when omitted")
	fs.StringVar(&o.configPath, "config", "", "Config file path (default: ~/.config/oaesh/config.yaml)")
	fs.BoolVar(&o.initConfig, "init", false, "Write a default config file and exit")
	fs.StringVar(&o.logLevel, "log-level", "", "Diagnostic log level: debug, info, warn or error")
	fs.BoolVar(&o.version, "version", false, "Show version and exit")
	fs.BoolVarP(&o.help, "help", "h", false, "Show this help")
	return fs
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `Usage: oaesh [flags] [-- <command> [args...]]

Without a command oaesh starts an interactive shell. With one, it connects,
logs in, runs the command and exits.

Flags:
%s`, fs.FlagUsages())
}

// fileOf returns w as a file when it is one.
func fileOf(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}

func run(ctx context.Context, args []string, a *app) int {
	var opts options
	fs := newFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(a.stderr, "oaesh: %v\n\n", err)
		printUsage(a.stderr, fs)
		return 1
	}
	opts.command = fs.Args()

	if opts.help {
		printUsage(a.stdout, fs)
		return 0
	}
	if opts.version {
		fmt.Fprintf(a.stdout, "oaesh %s\n", version)
		return 0
	}

	formatter := &errors.Formatter{
		Writer:   a.stderr,
		UseColor: output.ColorEnabled(config.ColorAuto, fileOf(a.stderr)),
		Indent:   "  ",
	}

	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	if opts.initConfig {
		created, err := config.InitConfig(cfgPath)
		if err != nil {
			formatter.Display(err)
			return 1
		}
		if created {
			fmt.Fprintf(a.stdout, "Config initialized at: %s\n", cfgPath)
		} else {
			fmt.Fprintf(a.stdout, "Config already exists at: %s\n", cfgPath)
		}
		return 0
	}

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		formatter.Display(err)
		return 1
	}
	formatter.UseColor = output.ColorEnabled(cfg.Output.Color, fileOf(a.stderr))

	levelName := cfg.LogLevel
	if fs.Changed("log-level") {
		levelName = opts.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		fmt.Fprintf(a.stderr, "oaesh: %v\n", err)
		return 1
	}
	logger := logging.New(a.stderr, level)
	formatter.Verbose = level <= slog.LevelDebug

	target := strings.TrimSpace(opts.url)
	if target == "" {
		target = cfg.URL
	}
	if opts.username != "" && target == "" {
		fmt.Fprintln(a.stderr, "If a username is specified, a target URL must be specified as well")
		fmt.Fprintln(a.stderr)
		printUsage(a.stderr, fs)
		return 1
	}

	interactive := len(opts.command) == 0
	clientOpts := rest.Options{
		Logger:      logger,
		Timeout:     cfg.RequestTimeout,
		UserAgent:   "oaesh/" + version,
		DialContext: a.dial,
	}
	if interactive {
		clientOpts.Wait = func(send func() error) error {
			sc := spinner.DefaultConfig()
			sc.Writer = a.stderr
			return spinner.Run(sc, send)
		}
	}
	client := rest.NewClient(clientOpts)

	registry := shell.NewRegistry()
	commands.Register(registry)
	allow := session.DefaultAllowList()
	for c, names := range cfg.ContextExtensions() {
		allow.Extend(c, names...)
	}
	if err := allow.Validate(registry.Has); err != nil {
		formatter.Display(errors.AttachSuggestions(
			errors.ConfigError(errors.ErrConfigInvalid, err.Error()).WithContext("path", cfgPath)))
		return 1
	}

	prompter := a.prompter
	if prompter == nil {
		prompter = shell.NewTerminalPrompterWithIO(a.stdin, a.stderr)
	}
	color := output.ColorEnabled(cfg.Output.Color, fileOf(a.stdout))
	env := &shell.Env{
		Store:    session.NewStore(client, logger),
		API:      client,
		Prompter: prompter,
		Out:      output.NewPrinter(a.stdout, cfg.Output.Format, color),
		Logger:   logger,
		Keys:     shell.NewConfigKeyCache(client),
		Insecure: opts.insecure || cfg.Insecure,
		Color:    color,
	}

	pipeline := shell.NewPipeline(formatter, logger)
	dispatcher := shell.NewDispatcher(registry, allow, env)
	shellCfg := shell.Config{
		HistoryFile: cfg.HistoryPath(),
		Color:       color,
		Stdout:      a.stdout,
		Stderr:      a.stderr,
	}
	if a.stdin != nil {
		shellCfg.Stdin = a.stdin
	}
	sh := shell.New(dispatcher, pipeline, shellCfg)

	var startup [][]string
	if target != "" {
		startup = append(startup, []string{"use", target})
	}
	if opts.username != "" {
		login := []string{"login", "--username", opts.username}
		if opts.password != "" {
			login = append(login, "--password", opts.password)
		}
		startup = append(startup, login)
	}
	for _, argv := range startup {
		if d, _ := sh.ExecuteArgs(ctx, argv); d == shell.Terminate {
			return 1
		}
	}
	pipeline.MarkStarted()
	logger.Debug("startup complete",
		"context", string(env.Store.State().Context),
		"interactive", interactive)

	if !interactive {
		if _, err := sh.ExecuteArgs(ctx, opts.command); err != nil && !stderrors.Is(err, shell.ErrQuit) {
			return 1
		}
		return 0
	}

	if err := sh.Run(ctx); err != nil {
		fmt.Fprintf(a.stderr, "oaesh: %v\n", err)
		return 1
	}
	return 0
}
