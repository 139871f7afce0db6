package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/chrisuehlinger/vellum"
	"github.com/chrisuehlinger/vellum/parser"
	"github.com/chrisuehlinger/vellum/tree"
)

// runFmt re-serializes a document under the requested formatting policy.
// With -check nothing is written; instead a diff against the input is shown
// and drift becomes a non-zero exit.
func runFmt(args []string) error {
	flags := flag.NewFlagSet("fmt", flag.ExitOnError)
	indent := flags.String("indent", "  ", "indentation per nesting level, empty for raw output")
	width := flags.Int("width", 0, "wrap text content at this many code points")
	align := flags.Bool("align", false, "align attributes vertically")
	reduce := flags.Bool("reduce-whitespace", false, "normalize insignificant whitespace first")
	check := flags.Bool("check", false, "report whether the input is formatted, without writing")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("fmt expects exactly one source argument")
	}
	source := flags.Arg(0)

	var loadOptions []vellum.LoadOption
	if *reduce {
		loadOptions = append(loadOptions, vellum.WithParserOptions(parser.Options{ReduceWhitespace: true}))
	}
	document, err := loadSource(context.Background(), source, loadOptions...)
	if err != nil {
		return err
	}

	formatted, err := document.Serialize(tree.SerializationOptions{
		Indentation:     *indent,
		TextWidth:       *width,
		AlignAttributes: *align,
	})
	if err != nil {
		return err
	}

	if *check {
		original, err := readSource(source)
		if err != nil {
			return err
		}
		if original == formatted {
			return nil
		}
		printDiff(original, formatted)
		return fmt.Errorf("%s is not formatted", source)
	}

	_, err = os.Stdout.WriteString(formatted)
	return err
}

// readSource fetches the raw text of a file argument; -check compares
// against it byte for byte.
func readSource(source string) (string, error) {
	if source == "-" {
		return "", fmt.Errorf("-check cannot re-read standard input")
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printDiff(original, formatted string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(original, formatted, false))

	deleted := color.New(color.FgRed, color.CrossedOut)
	inserted := color.New(color.FgGreen)
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			deleted.Fprint(os.Stderr, diff.Text)
		case diffmatchpatch.DiffInsert:
			inserted.Fprint(os.Stderr, diff.Text)
		default:
			fmt.Fprint(os.Stderr, diff.Text)
		}
	}
	fmt.Fprintln(os.Stderr)
}
