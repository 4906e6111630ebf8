/*
storesnap captures the homepage, a category page and a product page of a
list of online stores.

Without a command it opens the terminal form, `storesnap run` does the same
headless.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/jakopako/storesnap/internal/browser"
	"github.com/jakopako/storesnap/internal/config"
	"github.com/jakopako/storesnap/internal/log"
	"github.com/jakopako/storesnap/internal/output"
	"github.com/jakopako/storesnap/internal/run"
	"github.com/jakopako/storesnap/internal/ui"
)

var version = "dev"

const defaultUILogFile = "storesnap.log"

type VersionFlag string

func (v VersionFlag) Decode(_ *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                       { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

type Globals struct {
	Version VersionFlag `short:"v" long:"version" help:"Print the version and exit."`
	Debug   bool        `short:"d" long:"debug" help:"Set log level to 'debug'."`
	Config  string      `short:"c" long:"config" default:"./config.yml" help:"The configuration file. Environment variables and defaults are used if it does not exist." type:"path"`
}

type cli struct {
	Globals

	UI   UICmd    `cmd:"" default:"1" help:"Open the terminal form (default)."`
	Run  RunCmd   `cmd:"" help:"Capture the given stores without the terminal form."`
	Show ConfigCmd `cmd:"" name:"config" help:"Print the effective configuration as yaml."`
}

// setup loads the configuration and points the default logger at the
// configured output. The returned closer flushes the log file.
func setup(g *Globals, forceLogFile bool) (*config.Config, io.Closer, error) {
	cfg, err := config.NewConfig(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if forceLogFile && cfg.Log.File == "" {
		// the terminal belongs to the form
		cfg.Log.File = defaultUILogFile
	}
	w := log.Output(cfg.Log)
	log.InitializeDefaultLogger(w)
	return cfg, w, nil
}

type UICmd struct{}

func (u *UICmd) Run(g *Globals) error {
	cfg, closer, err := setup(g, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	runner := run.NewRunner(cfg, browser.NewChromeLauncher(&cfg.Browser))
	slog.Info("starting terminal form", slog.String("version", getVersion()))
	return ui.NewApp(context.Background(), runner).Run()
}

type RunCmd struct {
	URLs []string `arg:"" optional:"" name:"url" help:"Store URLs to capture."`
	File string   `short:"f" help:"Read store URLs from this file, one per line. Use - for stdin."`
}

func (r *RunCmd) input() (string, error) {
	lines := append([]string{}, r.URLs...)
	switch r.File {
	case "":
	case "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		lines = append(lines, string(b))
	default:
		b, err := os.ReadFile(r.File)
		if err != nil {
			return "", err
		}
		lines = append(lines, string(b))
	}
	return strings.Join(lines, "\n"), nil
}

func (r *RunCmd) Run(g *Globals) error {
	cfg, closer, err := setup(g, false)
	if err != nil {
		return err
	}
	defer closer.Close()

	raw, err := r.input()
	if err != nil {
		slog.Error(fmt.Sprintf("error reading urls: %v", err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := run.NewRunner(cfg, browser.NewChromeLauncher(&cfg.Browser))
	res, err := runner.Run(ctx, raw, &stdoutLog{w: os.Stdout}, &stdoutProgress{w: os.Stdout})
	if errors.Is(err, run.ErrNoTargets) {
		return errors.New("please enter at least one store URL")
	}
	if err != nil {
		slog.Error(err.Error())
		return err
	}

	fmt.Println()
	output.WriteSummary(os.Stdout, res)
	return nil
}

type ConfigCmd struct{}

func (c *ConfigCmd) Run(g *Globals) error {
	cfg, err := config.NewConfig(g.Config)
	if err != nil {
		return err
	}
	return cfg.Write(os.Stdout)
}

// stdoutLog prints run log lines as they come.
type stdoutLog struct {
	w io.Writer
}

func (s *stdoutLog) Clear() {}

func (s *stdoutLog) Append(line string) {
	fmt.Fprintln(s.w, line)
}

type stdoutProgress struct {
	w   io.Writer
	max int
}

func (s *stdoutProgress) SetMax(max int) {
	s.max = max
}

func (s *stdoutProgress) SetValue(value int) {
	if value == 0 {
		return
	}
	fmt.Fprintf(s.w, "[%d/%d] stores done\n", value, s.max)
}

func getVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if ok {
		if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			return buildInfo.Main.Version
		}
	}
	return version
}

func main() {
	cli := cli{
		Globals: Globals{
			Version: VersionFlag(getVersion()),
		},
	}

	ctx := kong.Parse(&cli,
		kong.Name("storesnap"),
		kong.Description("Screenshots of store homepages, category pages and product pages."),
		kong.Vars{
			"version": string(cli.Version),
		})

	config.Debug = cli.Debug
	log.InitializeDefaultLogger(os.Stderr)

	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
