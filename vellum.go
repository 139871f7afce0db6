// Package vellum loads XML documents into mutable, document-order-preserving
// trees. Text, comments and processing instructions are first-class siblings
// of tags; see the tree package for the node model and its mutation,
// navigation and traversal operations, the xpath and css packages for
// queries and the parser package for the decoding front-end.
package vellum

import (
	"context"
	"net/http"
	"strings"

	"github.com/chrisuehlinger/vellum/parser"
	"github.com/chrisuehlinger/vellum/tree"
)

// Config carries the settings the loaders work with.
type Config struct {
	// ParserOptions are handed to the parser front-end by every loader that
	// decodes a byte stream. May be nil.
	ParserOptions *parser.Options

	// HTTPClient performs the requests of the URL loader.
	HTTPClient *http.Client
}

// Loader inspects a source value and either materializes a document from
// it, or excuses itself with a short reason why the source is none of its
// business. An error aborts the whole loading attempt.
type Loader func(ctx context.Context, source any, config *Config) (*tree.Document, string, error)

// LoadOption configures a Load call.
type LoadOption func(*loadSetup)

type loadSetup struct {
	config Config
	chain  []Loader
}

// WithParserOptions sets the options for all parsing loaders.
func WithParserOptions(opts parser.Options) LoadOption {
	return func(s *loadSetup) {
		s.config.ParserOptions = &opts
	}
}

// WithHTTPClient sets the client the URL loader uses.
func WithHTTPClient(client *http.Client) LoadOption {
	return func(s *loadSetup) {
		s.config.HTTPClient = client
	}
}

// WithLoaders prepends loaders to the default chain. They are consulted in
// the given order before any of the built-in loaders.
func WithLoaders(loaders ...Loader) LoadOption {
	return func(s *loadSetup) {
		s.chain = append(append([]Loader{}, loaders...), s.chain...)
	}
}

// Load materializes a document from an arbitrary source value by walking a
// chain of loaders. Out of the box these handle, in order: *tree.Tag and
// *tree.Node tag nodes (deep-cloned under a fresh document), *tree.Document
// (cloned), strings holding literal XML, http(s) URLs or file paths, []byte
// and io.Reader values. When no loader applies, a *LoadError lists every
// loader's excuse.
func Load(ctx context.Context, source any, options ...LoadOption) (*tree.Document, error) {
	setup := &loadSetup{
		config: Config{HTTPClient: http.DefaultClient},
		chain:  defaultLoaders,
	}
	for _, option := range options {
		option(setup)
	}

	excuses := make([]string, 0, len(setup.chain))
	for _, loader := range setup.chain {
		document, excuse, err := loader(ctx, source, &setup.config)
		if err != nil {
			return nil, err
		}
		if document != nil {
			return document, nil
		}
		excuses = append(excuses, excuse)
	}
	return nil, &LoadError{Excuses: excuses}
}

// LoadError reports that no loader handled a source. Excuses holds one
// reason per consulted loader, in chain order.
type LoadError struct {
	Excuses []string
}

func (e *LoadError) Error() string {
	return "no loader could handle the source: " + strings.Join(e.Excuses, "; ")
}
