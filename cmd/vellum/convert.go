package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/chrisuehlinger/vellum/tree"
)

// runConvert renders a document as YAML or JSON. Tags become ordered
// mappings: attributes under "@name" keys, text content under "#text",
// child tags under their local names with repetitions collected into lists.
func runConvert(args []string) error {
	flags := flag.NewFlagSet("convert", flag.ExitOnError)
	target := flags.String("to", "yaml", "output format, yaml or json")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("convert expects exactly one source argument")
	}

	document, err := loadSource(context.Background(), flags.Arg(0))
	if err != nil {
		return err
	}
	root := document.Root()
	value := yaml.MapSlice{{Key: root.LocalName(), Value: tagValue(root)}}

	switch *target {
	case "yaml":
		out, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	case "json":
		var b strings.Builder
		if err := writeJSON(&b, value); err != nil {
			return err
		}
		_, err := fmt.Println(b.String())
		return err
	}
	return fmt.Errorf("unknown conversion target %q", *target)
}

// tagValue maps a tag to a plain value. A tag without attributes whose only
// content is text collapses to that string.
func tagValue(t *tree.Tag) any {
	var items yaml.MapSlice
	for _, attr := range t.Attributes().All() {
		items = append(items, yaml.MapItem{Key: "@" + attr.UniversalName(), Value: attr.Value()})
	}
	for node := range t.AsNode().Children() {
		switch {
		case node.Tag() != nil:
			items = appendChildValue(items, node.Tag().LocalName(), tagValue(node.Tag()))
		case node.Text() != nil:
			items = appendChildValue(items, "#text", node.Text().Content())
		}
	}

	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 && items[0].Key == "#text" {
		return items[0].Value
	}
	return items
}

// appendChildValue adds a child's value under its key, turning repeated
// keys into lists while keeping first-occurrence order.
func appendChildValue(items yaml.MapSlice, key string, value any) yaml.MapSlice {
	for i, item := range items {
		if item.Key != key {
			continue
		}
		if list, ok := item.Value.([]any); ok {
			items[i].Value = append(list, value)
		} else if key == "#text" {
			// interleaved text runs concatenate
			items[i].Value = fmt.Sprint(item.Value) + fmt.Sprint(value)
		} else {
			items[i].Value = []any{item.Value, value}
		}
		return items
	}
	return append(items, yaml.MapItem{Key: key, Value: value})
}

// writeJSON renders the ordered structure that tagValue builds; the
// standard library's maps would lose the key order.
func writeJSON(b *strings.Builder, value any) error {
	switch v := value.(type) {
	case yaml.MapSlice:
		b.WriteString("{")
		for i, item := range v {
			if i > 0 {
				b.WriteString(",")
			}
			key, err := json.Marshal(fmt.Sprint(item.Key))
			if err != nil {
				return err
			}
			b.Write(key)
			b.WriteString(":")
			if err := writeJSON(b, item.Value); err != nil {
				return err
			}
		}
		b.WriteString("}")
	case []any:
		b.WriteString("[")
		for i, item := range v {
			if i > 0 {
				b.WriteString(",")
			}
			if err := writeJSON(b, item); err != nil {
				return err
			}
		}
		b.WriteString("]")
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(encoded)
	}
	return nil
}
