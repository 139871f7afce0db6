package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/chrisuehlinger/vellum/css"
	"github.com/chrisuehlinger/vellum/tree"
	"github.com/chrisuehlinger/vellum/xpath"
)

// runQuery evaluates an XPath expression, or with -css a CSS selector,
// against a document and prints every match.
func runQuery(args []string) error {
	flags := flag.NewFlagSet("query", flag.ExitOnError)
	useCSS := flags.Bool("css", false, "treat the expression as a CSS selector")
	namespaces := namespaceFlags(tree.Namespaces{})
	flags.Var(namespaces, "ns", "bind a namespace prefix, e.g. -ns tei=http://www.tei-c.org/ns/1.0")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		return fmt.Errorf("query expects an expression and a source argument")
	}
	expression, source := flags.Arg(0), flags.Arg(1)

	document, err := loadSource(context.Background(), source)
	if err != nil {
		return err
	}

	var results *xpath.QueryResults
	if *useCSS {
		results, err = css.Evaluate(document.Root().AsNode(), expression, tree.Namespaces(namespaces))
	} else {
		results, err = xpath.Evaluate(document.Root().AsNode(), expression, tree.Namespaces(namespaces))
	}
	if err != nil {
		return err
	}

	marker := color.New(color.FgCyan)
	for i, node := range results.All() {
		marker.Printf("%d:\t", i+1)
		fmt.Println(node.String())
	}
	offset := len(results.All())
	for i, attr := range results.Attributes() {
		marker.Printf("%d:\t", offset+i+1)
		fmt.Printf("%s=%q\n", attr.UniversalName(), attr.Value())
	}

	color.New(color.Faint).Fprintf(os.Stderr, "%d match(es)\n", results.Size())
	return nil
}
