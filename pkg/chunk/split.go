package chunk

import (
	"bytes"
	"fmt"
)

// adaptiveProbeSize is how much of the payload SplitAdaptive inspects when
// deciding between line-based and fixed-size splitting.
const adaptiveProbeSize = 1024

// SplitFixed splits data into contiguous slices of size bytes each. The last
// chunk may be shorter.
func SplitFixed(data []byte, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}

	var chunks []Chunk
	for offset := 0; offset < len(data); offset += size {
		end := min(offset+size, len(data))
		chunks = append(chunks, newChunk(len(chunks), offset, data[offset:end]))
	}
	return chunks, nil
}

// SplitLines accumulates whole lines until adding the next line would exceed
// target, then flushes. Lines are never split across chunks; a single line
// longer than target becomes its own chunk.
func SplitLines(data []byte, target int) ([]Chunk, error) {
	return splitDelimited(data, []byte("\n"), target)
}

// SplitRecords applies the same accumulation rule as SplitLines over an
// arbitrary multi-byte delimiter.
func SplitRecords(data []byte, delim []byte, target int) ([]Chunk, error) {
	if len(delim) == 0 {
		return nil, fmt.Errorf("record delimiter must not be empty")
	}
	return splitDelimited(data, delim, target)
}

// SplitAdaptive inspects the first 1KB of the payload for a newline. If one
// is present it delegates to SplitLines, otherwise to SplitFixed. This is a
// default heuristic, not a guarantee; callers needing a specific strategy
// must select it explicitly.
func SplitAdaptive(data []byte, target int) ([]Chunk, error) {
	probe := data
	if len(probe) > adaptiveProbeSize {
		probe = probe[:adaptiveProbeSize]
	}
	if bytes.ContainsRune(probe, '\n') {
		return SplitLines(data, target)
	}
	return SplitFixed(data, target)
}

func splitDelimited(data []byte, delim []byte, target int) ([]Chunk, error) {
	if target <= 0 {
		return nil, fmt.Errorf("target chunk size must be positive, got %d", target)
	}

	var chunks []Chunk
	offset := 0
	flush := func(end int) {
		if end > offset {
			chunks = append(chunks, newChunk(len(chunks), offset, data[offset:end]))
			offset = end
		}
	}

	pos := 0
	pending := 0 // end of the last complete record within the current chunk
	for pos < len(data) {
		next := bytes.Index(data[pos:], delim)
		var recordEnd int
		if next < 0 {
			recordEnd = len(data)
		} else {
			recordEnd = pos + next + len(delim)
		}

		if pending > offset && recordEnd-offset > target {
			flush(pending)
		}
		pending = recordEnd
		pos = recordEnd
	}
	flush(len(data))

	return chunks, nil
}
