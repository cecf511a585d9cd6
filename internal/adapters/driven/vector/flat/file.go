package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// File layout (little endian):
//
//	0..3   magic "SRVX"
//	4..5   version (uint16)
//	6..7   reserved
//	8..11  dim (uint32)
//	12..19 count (uint64)
//	then count records of id (int64) followed by dim float32 values
//	then a CRC32 (IEEE) of everything before it
const (
	headerSize    = 20
	trailerSize   = 4
	formatVersion = 1
)

var fileMagic = [4]byte{'S', 'R', 'V', 'X'}

// Save writes the complete index to path.
// The file is written to a temporary sibling and renamed into place, so a
// reader sees either the previous file or the new one.
func (idx *Index) Save(path string) error {
	if path == "" {
		return fmt.Errorf("%w: index path is empty", domain.ErrInvalidConfig)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.ready {
		return domain.ErrIndexNotLoaded
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("flat: create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vectors-*.tmp")
	if err != nil {
		return fmt.Errorf("flat: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := idx.writeTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flat: sync index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flat: close index: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flat: replace index: %w", err)
	}

	return nil
}

// writeTo serialises the index. Caller holds the read lock.
func (idx *Index) writeTo(w io.Writer) error {
	crc := crc32.NewIEEE()
	bw := bufio.NewWriter(io.MultiWriter(w, crc))

	var header [headerSize]byte
	copy(header[0:4], fileMagic[:])
	binary.LittleEndian.PutUint16(header[4:6], formatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(idx.dim))
	binary.LittleEndian.PutUint64(header[12:20], uint64(len(idx.ids)))
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("flat: write header: %w", err)
	}

	record := make([]byte, 8+4*idx.dim)
	for row, id := range idx.ids {
		binary.LittleEndian.PutUint64(record[0:8], uint64(id))
		vec := idx.data[row*idx.dim : (row+1)*idx.dim]
		for i, f := range vec {
			binary.LittleEndian.PutUint32(record[8+4*i:], math.Float32bits(f))
		}
		if _, err := bw.Write(record); err != nil {
			return fmt.Errorf("flat: write vector %d: %w", id, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flat: flush index: %w", err)
	}

	var trailer [trailerSize]byte
	binary.LittleEndian.PutUint32(trailer[:], crc.Sum32())
	if _, err := w.Write(trailer[:]); err != nil {
		return fmt.Errorf("flat: write checksum: %w", err)
	}

	return nil
}

// Load replaces the index contents with the file at path.
// A missing file wraps domain.ErrNotFound; a damaged one wraps domain.ErrCorruptIndex.
func (idx *Index) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: index file %s", domain.ErrNotFound, path)
		}
		return fmt.Errorf("flat: open index: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("flat: stat index: %w", err)
	}

	dim, ids, data, err := readFrom(f, info.Size())
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.dim = dim
	idx.ids = ids
	idx.data = data
	idx.ready = true
	idx.closed = false

	return nil
}

func readFrom(r io.Reader, size int64) (int, []int64, []float32, error) {
	if size < headerSize+trailerSize {
		return 0, nil, nil, fmt.Errorf("%w: file too small (%d bytes)", domain.ErrCorruptIndex, size)
	}

	crc := crc32.NewIEEE()
	br := bufio.NewReader(r)
	body := io.TeeReader(io.LimitReader(br, size-trailerSize), crc)

	var header [headerSize]byte
	if _, err := io.ReadFull(body, header[:]); err != nil {
		return 0, nil, nil, fmt.Errorf("%w: read header: %v", domain.ErrCorruptIndex, err)
	}

	var magic [4]byte
	copy(magic[:], header[0:4])
	if magic != fileMagic {
		return 0, nil, nil, fmt.Errorf("%w: magic mismatch", domain.ErrCorruptIndex)
	}
	if v := binary.LittleEndian.Uint16(header[4:6]); v != formatVersion {
		return 0, nil, nil, fmt.Errorf("%w: unsupported version %d", domain.ErrCorruptIndex, v)
	}

	dim := int(binary.LittleEndian.Uint32(header[8:12]))
	count := binary.LittleEndian.Uint64(header[12:20])
	if dim == 0 {
		return 0, nil, nil, fmt.Errorf("%w: zero dimension", domain.ErrCorruptIndex)
	}

	recordSize := int64(8 + 4*dim)
	if count > uint64((size-headerSize-trailerSize)/recordSize) ||
		headerSize+int64(count)*recordSize+trailerSize != size {
		return 0, nil, nil, fmt.Errorf("%w: size %d does not match %d vectors of dimension %d",
			domain.ErrCorruptIndex, size, count, dim)
	}

	ids := make([]int64, count)
	data := make([]float32, int(count)*dim)
	record := make([]byte, recordSize)

	for row := range ids {
		if _, err := io.ReadFull(body, record); err != nil {
			return 0, nil, nil, fmt.Errorf("%w: read vector %d: %v", domain.ErrCorruptIndex, row, err)
		}
		ids[row] = int64(binary.LittleEndian.Uint64(record[0:8]))
		vec := data[row*dim : (row+1)*dim]
		for i := range vec {
			vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(record[8+4*i:]))
		}
	}

	var trailer [trailerSize]byte
	if _, err := io.ReadFull(br, trailer[:]); err != nil {
		return 0, nil, nil, fmt.Errorf("%w: read checksum: %v", domain.ErrCorruptIndex, err)
	}
	if binary.LittleEndian.Uint32(trailer[:]) != crc.Sum32() {
		return 0, nil, nil, fmt.Errorf("%w: checksum mismatch", domain.ErrCorruptIndex)
	}

	return dim, ids, data, nil
}
