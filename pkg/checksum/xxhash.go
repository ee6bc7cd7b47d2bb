package checksum

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// unitSeparator cannot appear in a resale CSV cell, so distinct records never
// feed the same bytes to the digest.
const unitSeparator = "\x1f"

// Reader returns the hex encoded xxhash digest of everything read from r.
func Reader(r io.Reader) (string, error) {
	digest := xxhash.New()
	if _, err := io.Copy(digest, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

func File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for checksum: %w", path, err)
	}
	defer file.Close()

	sum, err := Reader(file)
	if err != nil {
		return "", fmt.Errorf("failed to checksum %s: %w", path, err)
	}
	return sum, nil
}

// Record digests the cells of one row.
func Record(cells []string) string {
	digest := xxhash.New()
	for i, cell := range cells {
		if i > 0 {
			digest.WriteString(unitSeparator)
		}
		digest.WriteString(cell)
	}
	return hex.EncodeToString(digest.Sum(nil))
}
