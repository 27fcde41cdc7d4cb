// Package cmd implements the CLI application to clean the pharmacy exports.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/apotek"
	"github.com/etnz/apotek/config"
	"github.com/etnz/apotek/logger"
	"github.com/google/subcommands"
)

// Commands are the subcommands of apotek, in the order of the pipeline.
var Commands = []subcommands.Command{
	&cleanCmd{},
	&detectCmd{},
	&handleCmd{},
	&trainCmd{},
	&runCmd{},
	&summaryCmd{},
	&assistCmd{},
	&topicCmd{},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands[:4] {
		c.Register(cmd, "steps")
	}
	for _, cmd := range Commands[4:] {
		c.Register(cmd, "")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file (default "+config.DefaultFile+" if present)")
var plain = flag.Bool("plain", false, "Print markdown as is, without terminal styling")

// flagKeys maps command flags to the configuration keys they override.
type flagKeys map[string]string

// loadConfig loads the configuration, overridden by the flags of f that were
// explicitly set. It returns a context carrying the logger configured for it.
func loadConfig(ctx context.Context, f *flag.FlagSet, keys flagKeys) (context.Context, *config.Config, error) {
	overrides := make(map[string]any)
	f.Visit(func(fl *flag.Flag) {
		key, ok := keys[fl.Name]
		if !ok {
			return
		}
		if g, ok := fl.Value.(flag.Getter); ok {
			overrides[key] = g.Get()
		}
	})
	cfg, err := config.Load(*configFile, overrides)
	if err != nil {
		return ctx, nil, err
	}
	log, err := logger.WithLevel(logger.New(), cfg.LogLevel)
	if err != nil {
		return ctx, nil, err
	}
	if cfg.File != "" {
		log.Debug().Str("file", cfg.File).Msg("loaded configuration")
	}
	return logger.WithContext(ctx, log), cfg, nil
}

// printMarkdown prints md to stdout, styled for the terminal unless -plain.
func printMarkdown(md string) {
	if *plain {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// fprintMarkdown is printMarkdown for any writer, used by the assistant.
func fprintMarkdown(w io.Writer, md string) {
	if *plain {
		fmt.Fprintln(w, md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		out = md
	}
	fmt.Fprint(w, out)
}

// create creates the file at path, and its parent directories.
func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}
	return os.Create(path)
}

// writeFile creates path and writes to it with encode.
func writeFile(path string, encode func(io.Writer) error) (err error) {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := encode(f); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// readFile opens path and reads it with decode.
func readFile[T any](path string, decode func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	v, err := decode(f)
	if err != nil {
		return v, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return v, nil
}

// readLedger parses the raw ledger export.
func readLedger(cfg *config.Config) ([]apotek.Transaction, error) {
	opts := apotek.LedgerOptions{SaleColumnOffset: cfg.Ledger.SaleColumnOffset}
	return readFile(cfg.Input.Ledger, func(r io.Reader) ([]apotek.Transaction, error) {
		return apotek.ParseLedger(r, opts)
	})
}

// readRawStock parses the raw stock export.
func readRawStock(cfg *config.Config) ([]apotek.Stock, error) {
	return readFile(cfg.Input.Stock, apotek.ParseStock)
}

// fail reports err on stderr and returns the failure status.
func fail(msg string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	return subcommands.ExitFailure
}
