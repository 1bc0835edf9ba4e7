package container

import (
	"path/filepath"
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/require"
)

func TestParseSchema_Line(t *testing.T) {
	schema, err := ParseSchema(LineSchema)
	require.NoError(t, err)
	require.Equal(t, avro.String, schema.Type())
}

func TestParseSchema_Pair(t *testing.T) {
	schema, err := ParseSchema(PairSchema)
	require.NoError(t, err)
	require.Equal(t, avro.Record, schema.Type())

	record, ok := schema.(*avro.RecordSchema)
	require.True(t, ok)
	require.Equal(t, "org.apache.avro.mapred.Pair", record.FullName())
	require.Len(t, record.Fields(), 2)
}

func TestParseSchema_Invalid(t *testing.T) {
	_, err := ParseSchema(`{"type": "nonsense"}`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing schema")
}

func TestMustParseSchema(t *testing.T) {
	require.NotNil(t, MustParseSchema(LineSchema))
	require.Panics(t, func() { MustParseSchema("{") })
}

func TestReader_SchemaFromHeader(t *testing.T) {
	tmpDir := t.TempDir()

	linesPath := filepath.Join(tmpDir, "lines.avro")
	require.NoError(t, WriteLines(linesPath, []string{"a"}))

	reader, err := OpenReader(linesPath)
	require.NoError(t, err)
	defer reader.Close()
	require.Equal(t, avro.String, reader.Schema().Type())

	pairsPath := filepath.Join(tmpDir, "part-00000.avro")
	require.NoError(t, WritePairs(pairsPath, []Pair{{Key: "a", Value: 1}}))

	pairReader, err := OpenReader(pairsPath)
	require.NoError(t, err)
	defer pairReader.Close()
	require.Equal(t, avro.Record, pairReader.Schema().Type())
}
