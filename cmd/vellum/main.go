// Command vellum formats, queries and converts XML documents.
//
//	vellum fmt [-indent STR] [-width N] [-align] [-reduce-whitespace] [-check] SOURCE
//	vellum query [-css] [-ns prefix=uri] EXPRESSION SOURCE
//	vellum convert [-to yaml|json] SOURCE
//
// SOURCE is a file path, an http(s) URL or "-" for standard input.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/chrisuehlinger/vellum"
	"github.com/chrisuehlinger/vellum/tree"
)

func main() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "fmt":
		err = runFmt(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	case "convert":
		err = runConvert(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "vellum: "+err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, strings.TrimSpace(`
usage:
  vellum fmt [-indent STR] [-width N] [-align] [-reduce-whitespace] [-check] SOURCE
  vellum query [-css] [-ns prefix=uri] EXPRESSION SOURCE
  vellum convert [-to yaml|json] SOURCE
`))
}

// loadSource materializes the document named by a command line argument.
// Standard input is read in full first so that it flows through the same
// loader chain as everything else.
func loadSource(ctx context.Context, source string, opts ...vellum.LoadOption) (*tree.Document, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return vellum.Load(ctx, data, opts...)
	}
	return vellum.Load(ctx, source, opts...)
}

type namespaceFlags tree.Namespaces

func (f namespaceFlags) String() string { return "" }

func (f namespaceFlags) Set(value string) error {
	prefix, uri, found := strings.Cut(value, "=")
	if !found || uri == "" {
		return fmt.Errorf("namespace bindings take the form prefix=uri, got %q", value)
	}
	f[prefix] = uri
	return nil
}
