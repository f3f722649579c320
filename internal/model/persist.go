package model

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/hyperjump/tabiji/internal/neighbors"
	"github.com/hyperjump/tabiji/internal/vectorize"
)

// File format: magic (4 bytes), version (uint32 little endian), then a zstd stream
// holding one gob-encoded bundleFile.
var magic = [4]byte{'T', 'B', 'J', 'B'}

const formatVersion uint32 = 1

type bundleFile struct {
	ID         string
	BuiltAt    time.Time
	Vocabulary map[string]int
	IDF        []float64
	Matrix     vectorize.Matrix
	Points     []neighbors.Point
}

// Save writes the bundle to path, creating the directory if needed. The file is
// replaced atomically.
func (b *Bundle) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bundle-*")
	if err != nil {
		return fmt.Errorf("create bundle file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := b.Encode(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close bundle file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename bundle file: %w", err)
	}
	return nil
}

// Encode writes the bundle to w.
func (b *Bundle) Encode(w io.Writer) error {
	if b == nil || b.Vectorizer == nil || b.EventMatrix == nil || b.LocationIndex == nil {
		return fmt.Errorf("save: %w", ErrIncompleteBundle)
	}
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, formatVersion); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}
	payload := bundleFile{
		ID:         b.ID,
		BuiltAt:    b.BuiltAt,
		Vocabulary: b.Vectorizer.Vocabulary,
		IDF:        b.Vectorizer.IDF,
		Matrix:     *b.EventMatrix,
		Points:     b.LocationIndex.Points(),
	}
	if err := gob.NewEncoder(enc).Encode(&payload); err != nil {
		enc.Close()
		return fmt.Errorf("encode bundle: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush encoder: %w", err)
	}
	return nil
}

// Load reads a bundle written by Save. A missing file returns an error that matches
// os.ErrNotExist; any decoding failure matches ErrBadBundle.
func Load(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Decode reads a bundle from r and refits the neighbor indexes from the stored data.
func Decode(r io.Reader) (*Bundle, error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("%w: read magic: %v", ErrBadBundle, err)
	}
	if !bytes.Equal(head[:], magic[:]) {
		return nil, fmt.Errorf("%w: not a bundle file", ErrBadBundle)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: read version: %v", ErrBadBundle, err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: format version %d, expected %d", ErrBadBundle, version, formatVersion)
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBundle, err)
	}
	defer dec.Close()

	var payload bundleFile
	if err := gob.NewDecoder(dec).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrBadBundle, err)
	}

	vocabulary := payload.Vocabulary
	if vocabulary == nil {
		vocabulary = make(map[string]int)
	}
	b := &Bundle{
		ID:         payload.ID,
		BuiltAt:    payload.BuiltAt,
		Vectorizer: &vectorize.TfidfVectorizer{Vocabulary: vocabulary, IDF: payload.IDF},
	}
	matrix := payload.Matrix
	b.EventMatrix = &matrix
	if b.EventIndex, err = neighbors.NewSparseIndex(b.EventMatrix); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBundle, err)
	}
	if b.LocationIndex, err = neighbors.NewHaversineIndex(payload.Points); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBundle, err)
	}
	return b, nil
}
