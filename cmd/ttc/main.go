// Command ttc parses, typechecks, normalizes, and pretty-prints
// ThingTalk programs from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/urfave/cli.v1"

	"github.com/stanford-oval/thingtalk-go/ast"
	"github.com/stanford-oval/thingtalk-go/config"
	"github.com/stanford-oval/thingtalk-go/normalize"
	"github.com/stanford-oval/thingtalk-go/parser"
	"github.com/stanford-oval/thingtalk-go/printer"
	"github.com/stanford-oval/thingtalk-go/schema"
	"github.com/stanford-oval/thingtalk-go/typecheck"
)

func main() {
	app := cli.NewApp()
	app.Name = "ttc"
	app.Usage = "compile a ThingTalk program: parse, typecheck, normalize, pretty-print"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "input, i", Usage: "path to a .tt file, or - for stdin", Value: "-"},
		cli.StringFlag{Name: "config, c", Usage: "path to a YAML config file; unset flags fall back to its values"},
		cli.BoolFlag{Name: "typecheck, t", Usage: "typecheck against the program's own inline class definitions"},
		cli.BoolFlag{Name: "normalize, n", Usage: "normalize before printing"},
		cli.BoolFlag{Name: "permission, p", Usage: "parse the input as a permission rule instead of a program"},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ttc:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	src, err := readInput(c.String("input"))
	if err != nil {
		return err
	}
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if c.Bool("permission") {
		return runPermissionRule(c, cfg, src, log)
	}

	prog, err := parser.ParseProgram(src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if c.Bool("typecheck") {
		r, err := retrieverFor(prog, cfg, log)
		if err != nil {
			return err
		}
		if errs := typecheck.Program(context.Background(), r, prog); errs.HasErrors() {
			return fmt.Errorf("typecheck: %s", errs)
		}
	}
	if c.Bool("normalize") {
		prog = normalize.Program(prog)
	}
	fmt.Println(printer.Program(prog))
	return nil
}

func runPermissionRule(c *cli.Context, cfg config.Config, src string, log *zap.Logger) error {
	pr, err := parser.ParsePermissionRule(src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if c.Bool("typecheck") {
		r, err := schema.NewCachingRetriever(schema.NewMemoryRetriever(), 128, time.Duration(cfg.SchemaCacheTTLSeconds)*time.Second, log)
		if err != nil {
			return err
		}
		if errs := typecheck.PermissionRule(context.Background(), r, pr); errs.HasErrors() {
			return fmt.Errorf("typecheck: %s", errs)
		}
	}
	if c.Bool("normalize") {
		pr = normalize.PermissionRule(pr)
	}
	fmt.Println(printer.PermissionRule(pr))
	return nil
}

// loadConfig reads --config, falling back to config.Default() when
// unset; CLI flags set explicitly always override whatever it
// supplies.
func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// retrieverFor builds a MemoryRetriever seeded from prog's own inline
// class definitions, wrapped in the caching layer so its
// SchemaCacheTTLSeconds setting has an effect even for a single-shot
// CLI invocation.
func retrieverFor(prog *ast.Program, cfg config.Config, log *zap.Logger) (*schema.CachingRetriever, error) {
	r := schema.NewMemoryRetriever()
	for _, cls := range prog.Classes {
		r.Classes[cls.Name] = cls
	}
	return schema.NewCachingRetriever(r, 128, time.Duration(cfg.SchemaCacheTTLSeconds)*time.Second, log)
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
