package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/livebud/cli"
	"github.com/livebud/esm"
	"github.com/livebud/esm/internal/config"
	"github.com/livebud/watcher"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "esm"})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger) error {
	cli := cli.New("esm", "convert es modules to other module formats")

	{ // convert [flags] [files...]
		cmd := &Convert{Log: logger}
		cli := cli.Command("convert", "convert modules once")
		cmd.flags(cli)
		cli.Run(cmd.Run)
	}

	{ // watch [flags] [files...]
		cmd := &Watch{Convert{Log: logger}}
		cli := cli.Command("watch", "convert modules whenever they change")
		cmd.flags(cli)
		cli.Run(cmd.Run)
	}

	return cli.Parse(ctx, os.Args[1:]...)
}

type Convert struct {
	Log     *log.Logger
	Dir     string
	Config  string
	Format  string
	Out     string
	Paths   string
	Verbose bool
	Files   []string
}

func (c *Convert) flags(cli cli.Command) {
	cli.Flag("dir", "directory modules are resolved from").String(&c.Dir).Default(".")
	cli.Flag("config", "configuration file").String(&c.Config).Default(config.File)
	cli.Flag("format", "output format: "+strings.Join(esm.Formats(), ", ")).String(&c.Format).Default("")
	cli.Flag("out", "output directory or .js file").String(&c.Out).Default("")
	cli.Flag("paths", "comma separated search paths for bare imports").String(&c.Paths).Default("")
	cli.Flag("verbose", "log every step").Bool(&c.Verbose).Default(false)
	cli.Args("files").Strings(&c.Files)
}

// load the configuration file and let flags override it
func (c *Convert) load() (*config.Config, error) {
	path := c.Config
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Dir, path)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.Out != "" {
		cfg.Out = c.Out
	}
	if c.Paths != "" {
		cfg.Paths = strings.Split(c.Paths, ",")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Convert) Run(ctx context.Context) error {
	if c.Verbose {
		c.Log.SetLevel(log.DebugLevel)
	}
	if len(c.Files) == 0 {
		return errors.New("esm: no files to convert")
	}
	cfg, err := c.load()
	if err != nil {
		return err
	}
	return c.convert(ctx, cfg)
}

// convert runs one conversion. Compilers convert once, so every run gets a
// new one.
func (c *Convert) convert(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	compiler, err := esm.New(os.DirFS(c.Dir), &esm.Options{
		Format: cfg.Format,
		Paths:  cfg.Paths,
		Root:   cfg.Globals.Root,
		Names:  cfg.Globals.Names,
		Log:    c.Log,
	})
	if err != nil {
		return err
	}
	if err := compiler.Load(c.Files...); err != nil {
		return err
	}
	out := cfg.Out
	if !filepath.IsAbs(out) {
		out = filepath.Join(c.Dir, out)
	}
	if err := compiler.Write(ctx, out); err != nil {
		return err
	}
	c.Log.Info("converted", "format", cfg.Format, "modules", len(compiler.Order()), "out", cfg.Out, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

type Watch struct {
	Convert
}

func (w *Watch) Run(ctx context.Context) error {
	if w.Verbose {
		w.Log.SetLevel(log.DebugLevel)
	}
	if len(w.Files) == 0 {
		return errors.New("esm: no files to watch")
	}
	cfg, err := w.load()
	if err != nil {
		return err
	}
	if err := w.convert(ctx, cfg); err != nil {
		w.Log.Error(err.Error())
	}
	err = watcher.Watch(ctx, w.Dir, func(events []watcher.Event) error {
		if w.ignore(cfg, events) {
			return nil
		}
		w.Log.Debug("changed", "files", len(events))
		if err := w.convert(ctx, cfg); err != nil {
			// keep watching until the error is fixed
			w.Log.Error(err.Error())
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ignore reports whether every event is inside of the output path, which
// the watcher would otherwise see after each conversion
func (w *Watch) ignore(cfg *config.Config, events []watcher.Event) bool {
	out, err := filepath.Abs(filepath.Join(w.Dir, cfg.Out))
	if err != nil {
		return false
	}
	for _, event := range events {
		path, err := filepath.Abs(event.Path)
		if err != nil {
			return false
		}
		if path != out && !strings.HasPrefix(path, out+string(filepath.Separator)) {
			return false
		}
	}
	return true
}
