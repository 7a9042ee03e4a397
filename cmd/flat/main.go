package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/delaneyj/flatsignals/flat"
	"github.com/delaneyj/flatsignals/reactive"
	"github.com/urfave/cli/v3"
)

const (
	separatorKey = "sep"
	prefixKey    = "prefix"
	strictKey    = "strict"
	formatKey    = "format"
)

func main() {
	cmd := &cli.Command{
		Name:  "flat",
		Usage: "Flatten and unflatten JSON documents",
		Commands: []*cli.Command{
			{
				Name:      "flatten",
				Usage:     "Print the flat path encoding of a JSON document",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					sepFlag(),
					&cli.StringFlag{
						Name:  prefixKey,
						Usage: "Prefix for every path",
					},
					&cli.BoolFlag{
						Name:  strictKey,
						Usage: "Fail on colliding paths",
					},
					&cli.StringFlag{
						Name:  formatKey,
						Usage: "Output format, json or table",
						Value: "json",
					},
				},
				Action: flattenAction,
			},
			{
				Name:      "unflatten",
				Usage:     "Rebuild a JSON document from its flat encoding",
				ArgsUsage: "[file]",
				Flags:     []cli.Flag{sepFlag()},
				Action:    unflattenAction,
			},
			{
				Name:      "fingerprint",
				Usage:     "Print the xxhash fingerprint of a document's flat encoding",
				ArgsUsage: "[file]",
				Flags:     []cli.Flag{sepFlag()},
				Action:    fingerprintAction,
			},
			{
				Name:      "merge",
				Usage:     "Merge patches into a base document, reporting each change",
				ArgsUsage: "base patch [patch...]",
				Flags:     []cli.Flag{sepFlag()},
				Action:    mergeAction,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func sepFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  separatorKey,
		Usage: "Separator between object keys",
		Value: flat.DefaultSeparator,
	}
}

func flattenAction(ctx context.Context, cmd *cli.Command) error {
	doc, err := readDocument(cmd.Args().First())
	if err != nil {
		return err
	}

	c := &flat.Codec{Separator: cmd.String(separatorKey), Strict: cmd.Bool(strictKey)}
	m, err := c.Flatten(doc, cmd.String(prefixKey))
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("document is not an object or array")
	}

	switch cmd.String(formatKey) {
	case "table":
		renderTable(os.Stdout, m)
		return nil
	case "json":
		return writeJSON(os.Stdout, m)
	default:
		return fmt.Errorf("unknown format %q", cmd.String(formatKey))
	}
}

func unflattenAction(ctx context.Context, cmd *cli.Command) error {
	doc, err := readDocument(cmd.Args().First())
	if err != nil {
		return err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return fmt.Errorf("flat document must be a JSON object, got %T", doc)
	}

	v, err := flat.Unflatten(flat.Map(obj), cmd.String(separatorKey))
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, v)
}

func fingerprintAction(ctx context.Context, cmd *cli.Command) error {
	doc, err := readDocument(cmd.Args().First())
	if err != nil {
		return err
	}

	rs := reactive.CreateReactiveSystem(logError, reactive.WithCodec(&flat.Codec{Separator: cmd.String(separatorKey)}))
	s := reactive.Signal(rs, doc)
	fmt.Printf("%016x\n", s.Fingerprint())
	return nil
}

// mergeAction feeds every patch through a signal and lets an effect report
// the fingerprint after each write.
func mergeAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return fmt.Errorf("merge needs a base and at least one patch")
	}

	base, err := readDocument(cmd.Args().First())
	if err != nil {
		return err
	}

	rs := reactive.CreateReactiveSystem(logError, reactive.WithCodec(&flat.Codec{Separator: cmd.String(separatorKey)}))
	doc := reactive.Signal(rs, base)

	writes := 0
	err = reactive.Effect(rs, func() error {
		doc.Value()
		log.Printf("revision %d: %016x", writes, doc.Fingerprint())
		writes++
		return nil
	})
	if err != nil {
		return err
	}

	for _, name := range cmd.Args().Tail() {
		patch, err := readDocument(name)
		if err != nil {
			return err
		}
		obj, ok := patch.(map[string]any)
		if !ok {
			return fmt.Errorf("patch %s must be a JSON object, got %T", name, patch)
		}
		if err := doc.Set(reactive.Merge(obj)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}

	v, err := doc.Peek()
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, v)
}

func logError(from reactive.SignalAware, err error) {
	log.Printf("signal error: %v", err)
}
