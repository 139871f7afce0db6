package vellum

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/chrisuehlinger/vellum/parser"
	"github.com/chrisuehlinger/vellum/tree"
)

var defaultLoaders = []Loader{
	tagLoader,
	documentLoader,
	literalLoader,
	httpLoader,
	fileLoader,
	bytesLoader,
	readerLoader,
}

// tagLoader wraps a tag node in a fresh document. The subtree is deep
// cloned, the source tree stays untouched.
func tagLoader(_ context.Context, source any, _ *Config) (*tree.Document, string, error) {
	var tag *tree.Tag
	switch s := source.(type) {
	case *tree.Tag:
		tag = s
	case *tree.Node:
		if tag = s.Tag(); tag == nil {
			return nil, "the source is a non-tag node", nil
		}
	default:
		return nil, "the source is no tag node", nil
	}
	document, err := tree.NewDocument(tag.AsNode().Clone(true).Tag())
	return document, "", err
}

// documentLoader clones an existing document.
func documentLoader(_ context.Context, source any, _ *Config) (*tree.Document, string, error) {
	document, ok := source.(*tree.Document)
	if !ok {
		return nil, "the source is no document", nil
	}
	return document.Clone(), "", nil
}

// literalLoader parses strings that hold serialized XML, recognized by a
// leading angle bracket.
func literalLoader(_ context.Context, source any, config *Config) (*tree.Document, string, error) {
	text, ok := source.(string)
	if !ok {
		return nil, "the source is no string", nil
	}
	if !strings.HasPrefix(strings.TrimLeft(text, " \t\r\n"), "<") {
		return nil, "the string contains no markup", nil
	}
	document, err := parser.ParseString(text, config.ParserOptions)
	return document, "", err
}

// httpLoader fetches http and https URLs.
func httpLoader(ctx context.Context, source any, config *Config) (*tree.Document, string, error) {
	url, ok := source.(string)
	if !ok {
		return nil, "the source is no string", nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, "the string is no http(s) URL", nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	response, err := config.HTTPClient.Do(request)
	if err != nil {
		return nil, "", err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, "", tree.ErrParsing("fetching %s returned status %q", url, response.Status)
	}

	document, err := parser.Parse(response.Body, config.ParserOptions)
	if err != nil {
		return nil, "", err
	}
	document.SourceURL = url
	return document, "", nil
}

// fileLoader treats remaining strings as filesystem paths.
func fileLoader(_ context.Context, source any, config *Config) (*tree.Document, string, error) {
	path, ok := source.(string)
	if !ok {
		return nil, "the source is no string", nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, "the string names no file", nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	document, err := parser.Parse(f, config.ParserOptions)
	if err != nil {
		return nil, "", err
	}
	document.SourceURL = path
	return document, "", nil
}

// bytesLoader parses byte slices.
func bytesLoader(_ context.Context, source any, config *Config) (*tree.Document, string, error) {
	data, ok := source.([]byte)
	if !ok {
		return nil, "the source is no byte slice", nil
	}
	document, err := parser.ParseBytes(data, config.ParserOptions)
	return document, "", err
}

// readerLoader parses anything that can be read from.
func readerLoader(_ context.Context, source any, config *Config) (*tree.Document, string, error) {
	r, ok := source.(io.Reader)
	if !ok {
		return nil, "the source is no reader", nil
	}
	document, err := parser.Parse(r, config.ParserOptions)
	return document, "", err
}
