package jobs

import (
	"fmt"

	"github.com/mkovacev/gridjob/pkg/chunk"
)

// SplitFunc breaks an input payload into ordered chunks.
type SplitFunc func(input []byte) ([]chunk.Chunk, error)

// ExecuteFunc transforms a single chunk into its partial result.
type ExecuteFunc func(c chunk.Chunk) ([]byte, error)

// MergeFunc combines per-chunk partial results, in chunk order, into the
// final job result.
type MergeFunc func(results [][]byte) ([]byte, error)

// DefaultChunkSize is the fixed-size split used when a definition does not
// supply its own split function.
const DefaultChunkSize = 64 * 1024

// Definition is a named split/execute/merge triple describing a distributable
// computation. A definition is built with options, validated exactly once and
// immutable afterwards. Missing functions are filled with documented
// defaults: fixed-size split, identity execute, concatenation merge.
type Definition struct {
	name     string
	metadata map[string]string

	split   SplitFunc
	execute ExecuteFunc
	merge   MergeFunc

	validated bool
}

// Option configures a Definition before validation.
type Option func(*Definition)

func WithSplit(fn SplitFunc) Option {
	return func(d *Definition) { d.split = fn }
}

func WithExecute(fn ExecuteFunc) Option {
	return func(d *Definition) { d.execute = fn }
}

func WithMerge(fn MergeFunc) Option {
	return func(d *Definition) { d.merge = fn }
}

func WithMetadata(metadata map[string]string) Option {
	return func(d *Definition) {
		for k, v := range metadata {
			d.metadata[k] = v
		}
	}
}

// NewDefinition builds a definition with the given name and options.
func NewDefinition(name string, opts ...Option) *Definition {
	d := &Definition{
		name:     name,
		metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Validate checks the definition and substitutes defaults for missing
// functions. It runs at most once; subsequent calls are no-ops.
func (d *Definition) Validate() error {
	if d.validated {
		return nil
	}
	if d.name == "" {
		return fmt.Errorf("job definition requires a name")
	}

	if d.split == nil {
		d.split = func(input []byte) ([]chunk.Chunk, error) {
			return chunk.SplitFixed(input, DefaultChunkSize)
		}
	}
	if d.execute == nil {
		d.execute = func(c chunk.Chunk) ([]byte, error) {
			return c.Data, nil
		}
	}
	if d.merge == nil {
		d.merge = func(results [][]byte) ([]byte, error) {
			var merged []byte
			for _, r := range results {
				merged = append(merged, r...)
			}
			return merged, nil
		}
	}

	d.validated = true
	return nil
}

func (d *Definition) Name() string { return d.name }

// Metadata returns a copy of the definition metadata.
func (d *Definition) Metadata() map[string]string {
	out := make(map[string]string, len(d.metadata))
	for k, v := range d.metadata {
		out[k] = v
	}
	return out
}

// Split invokes the definition's split function. The definition must have
// been validated.
func (d *Definition) Split(input []byte) ([]chunk.Chunk, error) {
	if !d.validated {
		return nil, fmt.Errorf("job definition %q not validated", d.name)
	}
	return d.split(input)
}

func (d *Definition) Execute(c chunk.Chunk) ([]byte, error) {
	if !d.validated {
		return nil, fmt.Errorf("job definition %q not validated", d.name)
	}
	return d.execute(c)
}

func (d *Definition) Merge(results [][]byte) ([]byte, error) {
	if !d.validated {
		return nil, fmt.Errorf("job definition %q not validated", d.name)
	}
	return d.merge(results)
}
