// Command barewire is a small CLI driver over the BAREWire library: schema
// validation/inspection and payload decoding, in the spirit of
// ipld-go-car's carve tool (a single flat main.go, one cli.App with a
// Commands list).
package main

import (
	"encoding/json"
	"fmt"
	"os"

	bare "github.com/barewire/barewire"
	"github.com/barewire/barewire/schema"
	"github.com/barewire/barewire/wire"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "barewire",
		Usage: "inspect and exercise BARE schemas and wire payloads",
		Commands: []*cli.Command{
			validateCommand,
			inspectCommand,
			decodeCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "barewire: %s\n", err)
		os.Exit(1)
	}
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "validate a schema definition file",
	ArgsUsage: "<schema.json>",
	Action: func(c *cli.Context) error {
		_, err := loadValidatedSchema(c.Args().First())
		if err != nil {
			return err
		}
		fmt.Println("schema is valid")
		return nil
	},
}

var inspectCommand = &cli.Command{
	Name:      "inspect",
	Usage:     "print size bounds and alignment for a schema's root type",
	ArgsUsage: "<schema.json>",
	Action: func(c *cli.Context) error {
		sch, err := loadValidatedSchema(c.Args().First())
		if err != nil {
			return err
		}
		an := schema.NewAnalyzer(sch)
		root := sch.RootType()
		bounds := an.SizeOf(root)
		align := an.AlignmentOf(root)

		fmt.Printf("root: %s\n", sch.Root())
		fmt.Printf("min size: %s\n", humanize.Bytes(bounds.MinBytes))
		if bounds.MaxBytes != nil {
			fmt.Printf("max size: %s\n", humanize.Bytes(*bounds.MaxBytes))
		} else {
			fmt.Println("max size: unbounded")
		}
		fmt.Printf("fixed: %v\n", bounds.IsFixed)
		fmt.Printf("alignment: %d\n", align)
		return nil
	},
}

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "decode a BARE-encoded payload against a schema and print its JSON shape",
	ArgsUsage: "<schema.json> <payload.bin>",
	Action: func(c *cli.Context) error {
		if c.Args().Len() < 2 {
			return fmt.Errorf("usage: barewire decode <schema.json> <payload.bin>")
		}
		sch, err := loadValidatedSchema(c.Args().Get(0))
		if err != nil {
			return err
		}
		payload, err := os.ReadFile(c.Args().Get(1))
		if err != nil {
			return err
		}
		v, err := wire.Decode(sch, payload)
		if err != nil {
			return err
		}
		fmt.Printf("decoded %s of payload into %s\n", humanize.Bytes(uint64(len(payload))), sch.Root())
		return printJSON(v)
	},
}

// schemaFile is the on-disk JSON shape a schema definition file is loaded
// from: a flat list of named type definitions plus a root name.
type schemaFile struct {
	Root  string                     `json:"root"`
	Types map[string]json.RawMessage `json:"types"`
}

func loadValidatedSchema(path string) (*schema.ValidatedSchema, error) {
	if path == "" {
		return nil, fmt.Errorf("a schema file path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf schemaFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return nil, bare.Wrap(bare.InvalidValue, err, "parse schema file %s", path)
	}

	d := schema.NewDraftSchema(sf.Root)
	for name, raw := range sf.Types {
		t, err := decodeTypeJSON(raw)
		if err != nil {
			return nil, bare.Wrap(bare.InvalidValue, err, "decode type %q", name)
		}
		d.Define(name, t)
	}

	vs, errs := schema.Validate(d)
	if len(errs) > 0 {
		return nil, bare.NewError(bare.InvalidValue, "schema is invalid: %v", errs[0])
	}
	return vs, nil
}

func printJSON(v bare.Value) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(valueToJSON(v))
}
