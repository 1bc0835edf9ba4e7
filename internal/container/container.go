// Package container reads and writes Avro object container files: a schema
// header followed by a sequence of schema-conformant records. Writes are
// append-only and streaming; reads are forward-only and single-pass.
package container

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hamba/avro/v2/ocf"
)

// LineSchema is the input schema: one unstructured text value per record.
const LineSchema = `"string"`

// PairSchema is the output schema for worker results. The value field is
// marked "ignore" so it does not contribute to record ordering.
const PairSchema = `{
  "type": "record",
  "name": "Pair",
  "namespace": "org.apache.avro.mapred",
  "fields": [{"name": "key", "type": "string"},
             {"name": "value", "type": "long", "order": "ignore"}]
}`

// Pair is one output record: a word and its occurrence count.
type Pair struct {
	Key   string `avro:"key"`
	Value int64  `avro:"value"`
}

// EncodingError reports a record that does not conform to the file schema.
type EncodingError struct {
	Path string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("container: encoding record for %s: %v", e.Path, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// CorruptFileError reports an unreadable header or a malformed record.
type CorruptFileError struct {
	Path string
	Err  error
}

func (e *CorruptFileError) Error() string {
	return fmt.Sprintf("container: corrupt file %s: %v", e.Path, e.Err)
}

func (e *CorruptFileError) Unwrap() error { return e.Err }

// Option configures a container write.
type Option func(*writeOptions)

type writeOptions struct {
	codec ocf.CodecName
}

// WithCodec selects the block compression codec: "null", "deflate" or
// "snappy".
func WithCodec(name string) Option {
	return func(o *writeOptions) {
		o.codec = ocf.CodecName(name)
	}
}

// WriteLines creates (overwriting) a container file at path holding each
// line as one LineSchema record, in input order. Missing parent directories
// are created.
func WriteLines(path string, lines []string, opts ...Option) error {
	return write(path, LineSchema, opts, func(enc *ocf.Encoder) error {
		for _, line := range lines {
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
		return nil
	})
}

// WritePairs creates (overwriting) a container file at path holding each
// pair as one PairSchema record, in input order.
func WritePairs(path string, pairs []Pair, opts ...Option) error {
	return write(path, PairSchema, opts, func(enc *ocf.Encoder) error {
		for _, pair := range pairs {
			if err := enc.Encode(pair); err != nil {
				return err
			}
		}
		return nil
	})
}

func write(path string, schemaText string, opts []Option, encodeAll func(*ocf.Encoder) error) error {
	options := writeOptions{codec: ocf.Null}
	for _, opt := range opts {
		opt(&options)
	}

	schema, err := ParseSchema(schemaText)
	if err != nil {
		return &EncodingError{Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("container: creating parent directories for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("container: creating %s: %w", path, err)
	}

	enc, err := ocf.NewEncoder(schema.String(), file, ocf.WithCodec(options.codec))
	if err != nil {
		file.Close()
		return &EncodingError{Path: path, Err: err}
	}

	if err := encodeAll(enc); err != nil {
		enc.Close()
		file.Close()
		return &EncodingError{Path: path, Err: err}
	}

	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("container: flushing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("container: closing %s: %w", path, err)
	}
	return nil
}

// Reader iterates records of a container file in stored order. It is
// single-pass: re-reading requires reopening the file. Close must be called
// on every path, including early termination of the traversal.
type Reader struct {
	path   string
	file   *os.File
	dec    *ocf.Decoder
	schema Schema
	err    error
}

// OpenReader opens path and parses its schema header.
func OpenReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("container: opening %s: %w", path, err)
	}

	dec, err := ocf.NewDecoder(file)
	if err != nil {
		file.Close()
		return nil, &CorruptFileError{Path: path, Err: err}
	}

	schema, err := ParseSchema(string(dec.Metadata()["avro.schema"]))
	if err != nil {
		file.Close()
		return nil, &CorruptFileError{Path: path, Err: err}
	}

	return &Reader{path: path, file: file, dec: dec, schema: schema}, nil
}

// Schema returns the schema declared in the file header.
func (r *Reader) Schema() Schema { return r.schema }

// Next reports whether another record is available.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	return r.dec.HasNext()
}

// Decode reads the next record into v.
func (r *Reader) Decode(v any) error {
	if r.err != nil {
		return r.err
	}
	if err := r.dec.Decode(v); err != nil {
		r.err = &CorruptFileError{Path: r.path, Err: err}
		return r.err
	}
	return nil
}

// Err returns the first error encountered during the traversal, if any.
func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}
	if err := r.dec.Error(); err != nil && err != io.EOF {
		r.err = &CorruptFileError{Path: r.path, Err: err}
	}
	return r.err
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadLines reads every LineSchema record from path.
func ReadLines(path string) ([]string, error) {
	reader, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var lines []string
	for reader.Next() {
		var line string
		if err := reader.Decode(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, reader.Err()
}

// ReadPairs reads every PairSchema record from path.
func ReadPairs(path string) ([]Pair, error) {
	reader, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var pairs []Pair
	for reader.Next() {
		var pair Pair
		if err := reader.Decode(&pair); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, reader.Err()
}
