package chunk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFixed_ChunkBoundaries(t *testing.T) {
	chunks, err := SplitFixed([]byte("abcdefg"), 3)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, []byte("abc"), chunks[0].Data)
	assert.Equal(t, []byte("def"), chunks[1].Data)
	assert.Equal(t, []byte("g"), chunks[2].Data)

	assert.Equal(t, 0, chunks[0].Offset)
	assert.Equal(t, 3, chunks[1].Offset)
	assert.Equal(t, 6, chunks[2].Offset)
	assert.Equal(t, 1, chunks[2].Size)
}

func TestSplitFixed_InvalidSize(t *testing.T) {
	_, err := SplitFixed([]byte("abc"), 0)
	require.Error(t, err)
}

func TestSplitFixed_EmptyInput(t *testing.T) {
	chunks, err := SplitFixed(nil, 4)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitLines_NeverSplitsLine(t *testing.T) {
	data := []byte("first line\nsecond line\nthird\nfourth line here\n")
	chunks, err := SplitLines(data, 16)
	require.NoError(t, err)

	for _, c := range chunks {
		// Every chunk must end at a line boundary, except possibly the last.
		if c.Index < len(chunks)-1 {
			assert.True(t, bytes.HasSuffix(c.Data, []byte("\n")), "chunk %d ends mid-line: %q", c.Index, c.Data)
		}
	}

	merged, err := Merge(chunks)
	require.NoError(t, err)
	assert.Equal(t, data, merged)
}

func TestSplitLines_OversizedLine(t *testing.T) {
	data := []byte("short\n" + "this single line is far longer than the target size\n" + "tail\n")
	chunks, err := SplitLines(data, 10)
	require.NoError(t, err)

	merged, err := Merge(chunks)
	require.NoError(t, err)
	assert.Equal(t, data, merged)
}

func TestSplitRecords_CustomDelimiter(t *testing.T) {
	data := []byte("one::two::three::four::")
	chunks, err := SplitRecords(data, []byte("::"), 10)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		if i < len(chunks)-1 {
			assert.True(t, bytes.HasSuffix(c.Data, []byte("::")), "chunk %d ends mid-record: %q", i, c.Data)
		}
	}

	merged, err := Merge(chunks)
	require.NoError(t, err)
	assert.Equal(t, data, merged)
}

func TestSplitRecords_EmptyDelimiter(t *testing.T) {
	_, err := SplitRecords([]byte("abc"), nil, 10)
	require.Error(t, err)
}

func TestSplitAdaptive_PicksLineStrategy(t *testing.T) {
	data := []byte("alpha\nbeta\ngamma\ndelta\n")
	chunks, err := SplitAdaptive(data, 12)
	require.NoError(t, err)

	for i, c := range chunks {
		if i < len(chunks)-1 {
			assert.True(t, bytes.HasSuffix(c.Data, []byte("\n")))
		}
	}
}

func TestSplitAdaptive_PicksFixedStrategy(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 100)
	chunks, err := SplitAdaptive(data, 30)
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	assert.Equal(t, 30, chunks[0].Size)
	assert.Equal(t, 10, chunks[3].Size)
}

func TestSplitAdaptive_NewlineBeyondProbe(t *testing.T) {
	// Newline only after the first 1KB: adaptive must treat this as binary.
	data := append(bytes.Repeat([]byte("x"), 2000), '\n')
	chunks, err := SplitAdaptive(data, 512)
	require.NoError(t, err)
	assert.Equal(t, 512, chunks[0].Size)
}

func TestMerge_RoundTripAllStrategies(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("a"),
		[]byte("abcdefg"),
		[]byte("line one\nline two\nline three\n"),
		bytes.Repeat([]byte{0x00, 0xff, 0x7f}, 500),
	}

	type splitter struct {
		name  string
		split func([]byte) ([]Chunk, error)
	}
	splitters := []splitter{
		{"fixed", func(b []byte) ([]Chunk, error) { return SplitFixed(b, 7) }},
		{"lines", func(b []byte) ([]Chunk, error) { return SplitLines(b, 7) }},
		{"records", func(b []byte) ([]Chunk, error) { return SplitRecords(b, []byte{0xff}, 7) }},
		{"adaptive", func(b []byte) ([]Chunk, error) { return SplitAdaptive(b, 7) }},
	}

	for _, s := range splitters {
		for _, input := range inputs {
			chunks, err := s.split(input)
			require.NoError(t, err, s.name)

			merged, err := Merge(chunks)
			require.NoError(t, err, s.name)
			assert.Equal(t, len(input), len(merged), s.name)
			assert.True(t, bytes.Equal(input, merged), "%s round trip failed", s.name)
		}
	}
}

func TestMerge_RejectsOutOfOrder(t *testing.T) {
	chunks, err := SplitFixed([]byte("abcdef"), 3)
	require.NoError(t, err)

	chunks[0], chunks[1] = chunks[1], chunks[0]
	_, err = Merge(chunks)
	require.Error(t, err)
}

func TestVerifyIntegrity(t *testing.T) {
	data := []byte("payload under test")
	chunks, err := SplitFixed(data, 5)
	require.NoError(t, err)

	ok, err := VerifyIntegrity(chunks, HashBytes(data))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyIntegrity(chunks, HashBytes([]byte("different")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyIntegrity_CorruptedChunk(t *testing.T) {
	data := []byte("payload under test")
	chunks, err := SplitFixed(data, 5)
	require.NoError(t, err)

	chunks[1].Data = []byte("XXXXX")
	ok, err := VerifyIntegrity(chunks, HashBytes(data))
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}
