// Package store persists root collections as flat complex-number arrays and
// keeps a SQLite catalog of computed runs. The array format is headerless:
// consecutive little-endian float64 (real, imag) pairs, lossless to double
// precision, deterministically named from the degree.
package store

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"polyroots/internal/logging"
)

// ErrBadFormat is returned when persisted content is not a flat complex
// array (its length is not a whole number of complex values).
var ErrBadFormat = errors.New("file is not a flat complex array")

// complexSize is the on-disk size of one complex128: two float64 components.
const complexSize = 16

// chunkRoots bounds the encode/decode buffer so large collections stream
// instead of materializing a second copy in memory.
const chunkRoots = 1 << 16

// FileName returns the deterministic data file name for a degree.
func FileName(degree int) string {
	return fmt.Sprintf("roots_degree_%d.dat", degree)
}

// PathFor returns the data file path for a degree inside dataDir.
func PathFor(dataDir string, degree int) string {
	return filepath.Join(dataDir, FileName(degree))
}

// Save writes the collection to path. IO failures are wrapped with the
// path so stage-level errors carry context.
func Save(roots []complex128, path string) error {
	log := logging.Get(logging.CategoryStore)
	log.Info("saving %d roots to %s", len(roots), path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for off := 0; off < len(roots); off += chunkRoots {
		end := off + chunkRoots
		if end > len(roots) {
			end = len(roots)
		}
		if err := binary.Write(w, binary.LittleEndian, roots[off:end]); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	log.Info("saved %s (%d bytes)", path, len(roots)*complexSize)
	return nil
}

// Load reads a collection back. A file whose size is not a multiple of the
// complex element size fails with ErrBadFormat.
func Load(path string) ([]complex128, error) {
	log := logging.Get(logging.CategoryStore)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size()%complexSize != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes, not a multiple of %d",
			ErrBadFormat, path, info.Size(), complexSize)
	}

	count := int(info.Size() / complexSize)
	roots := make([]complex128, 0, count)

	r := bufio.NewReader(f)
	buf := make([]complex128, chunkRoots)
	for remaining := count; remaining > 0; {
		n := remaining
		if n > chunkRoots {
			n = chunkRoots
		}
		if err := binary.Read(r, binary.LittleEndian, buf[:n]); err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				return nil, fmt.Errorf("%w: %s truncated mid-element", ErrBadFormat, path)
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		roots = append(roots, buf[:n]...)
		remaining -= n
	}

	log.Info("loaded %d roots from %s", count, path)
	return roots, nil
}
