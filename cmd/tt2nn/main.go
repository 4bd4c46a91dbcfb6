// Command tt2nn converts between ThingTalk surface syntax and the
// whitespace-tokenised NN syntax.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/stanford-oval/thingtalk-go/ast"
	"github.com/stanford-oval/thingtalk-go/config"
	"github.com/stanford-oval/thingtalk-go/nnsyntax"
	"github.com/stanford-oval/thingtalk-go/parser"
	"github.com/stanford-oval/thingtalk-go/printer"
)

func main() {
	app := cli.NewApp()
	app.Name = "tt2nn"
	app.Usage = "convert ThingTalk programs to and from NN token syntax"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "path to a YAML config file; unset flags fall back to its values"},
	}
	app.Commands = []cli.Command{
		{
			Name:  "encode",
			Usage: "convert a surface ThingTalk program to NN tokens",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "input, i", Value: "-"},
				cli.StringFlag{Name: "sentence, s", Usage: "utterance the program was parsed from, for entity grounding"},
				cli.StringFlag{Name: "mode, m", Usage: "sequential|consecutive|non-consecutive"},
				cli.BoolFlag{Name: "require-grounding, g", Usage: "reject literals that cannot be matched against sentence"},
				cli.BoolFlag{Name: "permission, p"},
			},
			Action: encode,
		},
		{
			Name:  "decode",
			Usage: "convert NN tokens plus an entity dictionary (JSON) back to surface ThingTalk",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "tokens, t", Value: "-", Usage: "path to a file of NN tokens, or - for stdin"},
				cli.StringFlag{Name: "entities, e", Usage: "path to a JSON entity dictionary"},
				cli.StringFlag{Name: "legacy-version, l", Usage: "NN syntax version the tokens were produced with"},
			},
			Action: decode,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tt2nn:", err)
		os.Exit(1)
	}
}

// loadConfig reads the --config file given on the parent app context,
// falling back to config.Default() when no path was given; CLI flags
// set on the subcommand always override whatever it supplies.
func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.GlobalString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func encode(c *cli.Context) error {
	src, err := readInput(c.String("input"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	mode := cfg.EntityAllocation
	if c.IsSet("mode") {
		mode = nnsyntax.AllocationMode(c.String("mode"))
	}
	requireGrounding := cfg.RequireGrounding
	if c.IsSet("require-grounding") {
		requireGrounding = c.Bool("require-grounding")
	}
	opts := nnsyntax.Options{
		Mode:             mode,
		Sentence:         c.String("sentence"),
		RequireGrounding: requireGrounding,
	}
	var (
		tokens string
		dict   nnsyntax.Dict
	)
	if c.Bool("permission") {
		pr, perr := parser.ParsePermissionRule(src)
		if perr != nil {
			return fmt.Errorf("parse: %w", perr)
		}
		tokens, dict, err = nnsyntax.Encode(pr, opts)
	} else {
		prog, perr := parser.ParseProgram(src)
		if perr != nil {
			return fmt.Errorf("parse: %w", perr)
		}
		tokens, dict, err = nnsyntax.Encode(prog, opts)
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Println(tokens)
	return json.NewEncoder(os.Stdout).Encode(dict)
}

func decode(c *cli.Context) error {
	tokens, err := readInput(c.String("tokens"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	version := cfg.NNVersion
	if c.IsSet("legacy-version") {
		version = c.String("legacy-version")
	}
	if version != "" {
		tokens = nnsyntax.UpgradeLegacy(tokens, version)
	}
	dict := nnsyntax.Dict{}
	if path := c.String("entities"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var rawDict map[string]json.RawMessage
		if err := json.Unmarshal(raw, &rawDict); err != nil {
			return fmt.Errorf("entities: %w", err)
		}
		for tok, rawVal := range rawDict {
			v, err := ast.DecodeValue(rawVal)
			if err != nil {
				return fmt.Errorf("entities: %s: %w", tok, err)
			}
			dict[tok] = v
		}
	}
	input, err := nnsyntax.Decode(tokens, dict)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	switch v := input.(type) {
	case *ast.Program:
		fmt.Println(printer.Program(v))
	case *ast.PermissionRule:
		fmt.Println(printer.PermissionRule(v))
	default:
		return fmt.Errorf("decode: unsupported root input %T", input)
	}
	return nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
