package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Chunk is a contiguous byte range of a larger payload. Chunks produced by
// the splitters never overlap, appear in increasing offset order and
// concatenate back to the exact original byte sequence.
type Chunk struct {
	Index  int
	Offset int
	Size   int
	Hash   string
	Data   []byte
}

// HashBytes returns the hex-encoded SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func newChunk(index, offset int, data []byte) Chunk {
	return Chunk{
		Index:  index,
		Offset: offset,
		Size:   len(data),
		Hash:   HashBytes(data),
		Data:   data,
	}
}

// Merge reassembles chunks into the original payload. It checks that chunks
// are ordered, contiguous and consistent with their declared sizes.
func Merge(chunks []Chunk) ([]byte, error) {
	total := 0
	offset := 0
	for i, c := range chunks {
		if c.Index != i {
			return nil, fmt.Errorf("chunk out of order: index %d at position %d", c.Index, i)
		}
		if c.Offset != offset {
			return nil, fmt.Errorf("chunk %d not contiguous: offset %d, expected %d", c.Index, c.Offset, offset)
		}
		if c.Size != len(c.Data) {
			return nil, fmt.Errorf("chunk %d size mismatch: declared %d, actual %d", c.Index, c.Size, len(c.Data))
		}
		offset += c.Size
		total += c.Size
	}

	merged := make([]byte, 0, total)
	for _, c := range chunks {
		merged = append(merged, c.Data...)
	}
	return merged, nil
}

// VerifyIntegrity merges chunks and compares the digest of the result against
// expectedHash. The returned bool reports only the overall hash comparison.
// Per-chunk hash mismatches and structural problems are aggregated into the
// returned error.
func VerifyIntegrity(chunks []Chunk, expectedHash string) (bool, error) {
	var errs *multierror.Error
	for _, c := range chunks {
		if actual := HashBytes(c.Data); actual != c.Hash {
			errs = multierror.Append(errs, fmt.Errorf("chunk %d hash mismatch: declared %s, actual %s", c.Index, c.Hash, actual))
		}
	}

	merged, err := Merge(chunks)
	if err != nil {
		errs = multierror.Append(errs, err)
		return false, errs.ErrorOrNil()
	}

	return HashBytes(merged) == expectedHash, errs.ErrorOrNil()
}
