package ftrl

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/YuminosukeSato/ftrl/core/frame"
	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

// Compression selects how the snapshot payload is stored.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZstd uses Zstandard (better ratio).
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCompression maps "none", "lz4" and "zstd" to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	}
	return CompressionNone, errors.NewValidationError("compression", "must be one of none, lz4, zstd", s)
}

var (
	snapshotMagic = [4]byte{'F', 'T', 'R', 'L'}
	castagnoli    = crc32.MakeTable(crc32.Castagnoli)
)

const (
	snapshotVersion uint16 = 2
	// maxPayloadSize rejects headers claiming absurd sizes before allocating.
	maxPayloadSize = 1 << 36
)

// snapshotHeader precedes the payload. Checksum covers the stored bytes.
type snapshotHeader struct {
	Magic       [4]byte
	Version     uint16
	Compression Compression
	Reserved    uint8
	RawSize     uint64
	StoredSize  uint64
	Checksum    uint32
}

var headerSize = binary.Size(snapshotHeader{})

// zstd encoder/decoder pools
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// compress returns the stored bytes and the compression actually applied.
// Payloads that do not shrink are stored uncompressed.
func compress(raw []byte, c Compression) ([]byte, Compression, error) {
	var out []byte
	switch c {
	case CompressionNone:
		return raw, CompressionNone, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return nil, c, errors.Wrap(err, "lz4 compress")
		}
		out = dst[:n]
	case CompressionZstd:
		enc := getZstdEncoder()
		out = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, c, errors.NewValidationError("compression", "unknown compression", uint8(c))
	}
	if len(out) == 0 || len(out) >= len(raw) {
		return raw, CompressionNone, nil
	}
	return out, c, nil
}

func decompress(stored []byte, c Compression, rawSize uint64) ([]byte, error) {
	switch c {
	case CompressionNone:
		if uint64(len(stored)) != rawSize {
			return nil, errors.Wrap(errors.ErrCorruptSnapshot, "payload size mismatch")
		}
		return stored, nil
	case CompressionLZ4:
		raw := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "lz4 decompress"), errors.ErrCorruptSnapshot)
		}
		if uint64(n) != rawSize {
			return nil, errors.Wrap(errors.ErrCorruptSnapshot, "decompressed size mismatch")
		}
		return raw, nil
	case CompressionZstd:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		raw, err := dec.DecodeAll(stored, make([]byte, 0, rawSize))
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "zstd decompress"), errors.ErrCorruptSnapshot)
		}
		if uint64(len(raw)) != rawSize {
			return nil, errors.Wrap(errors.ErrCorruptSnapshot, "decompressed size mismatch")
		}
		return raw, nil
	}
	return nil, errors.Wrapf(errors.ErrCorruptSnapshot, "unknown compression %d", uint8(c))
}

// writeSnapshot writes header and payload to w.
func writeSnapshot(w io.Writer, s *Snapshot, c Compression) (int64, error) {
	raw := encodePayload(s)
	stored, applied, err := compress(raw, c)
	if err != nil {
		return 0, err
	}

	hdr := snapshotHeader{
		Magic:       snapshotMagic,
		Version:     snapshotVersion,
		Compression: applied,
		RawSize:     uint64(len(raw)),
		StoredSize:  uint64(len(stored)),
		Checksum:    crc32.Checksum(stored, castagnoli),
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return 0, errors.Wrap(err, "write snapshot header")
	}
	n, err := w.Write(stored)
	if err != nil {
		return int64(headerSize + n), errors.Wrap(err, "write snapshot payload")
	}
	return int64(headerSize + n), nil
}

// readSnapshot reads one snapshot from r.
func readSnapshot(r io.Reader) (*Snapshot, int64, error) {
	var hdr snapshotHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, 0, errors.Mark(errors.Wrap(err, "read snapshot header"), errors.ErrCorruptSnapshot)
	}
	read := int64(headerSize)
	if hdr.Magic != snapshotMagic {
		return nil, read, errors.Wrap(errors.ErrCorruptSnapshot, "bad magic")
	}
	if hdr.Version != snapshotVersion {
		return nil, read, errors.Wrapf(errors.ErrCorruptSnapshot, "unsupported version %d", hdr.Version)
	}
	if hdr.StoredSize > maxPayloadSize || hdr.RawSize > maxPayloadSize {
		return nil, read, errors.Wrap(errors.ErrCorruptSnapshot, "payload too large")
	}

	stored := make([]byte, hdr.StoredSize)
	n, err := io.ReadFull(r, stored)
	read += int64(n)
	if err != nil {
		return nil, read, errors.Mark(errors.Wrap(err, "read snapshot payload"), errors.ErrCorruptSnapshot)
	}
	if crc32.Checksum(stored, castagnoli) != hdr.Checksum {
		return nil, read, errors.Wrap(errors.ErrCorruptSnapshot, "checksum mismatch")
	}
	raw, err := decompress(stored, hdr.Compression, hdr.RawSize)
	if err != nil {
		return nil, read, err
	}

	var s *Snapshot
	err = errors.SafeExecute("decode snapshot", func() error {
		var derr error
		s, derr = decodePayload(raw)
		return derr
	})
	return s, read, err
}

// ===========================================================================
// payload
// ===========================================================================

type payloadWriter struct {
	buf bytes.Buffer
	tmp [8]byte
}

func (w *payloadWriter) u8(v uint8) { w.buf.WriteByte(v) }

func (w *payloadWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.tmp[:], v)
	w.buf.Write(w.tmp[:])
}

func (w *payloadWriter) f64(v float64) { w.u64(math.Float64bits(v)) }

func (w *payloadWriter) flag(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *payloadWriter) f64s(vs []float64) {
	w.u64(uint64(len(vs)))
	for _, v := range vs {
		w.f64(v)
	}
}

func (w *payloadWriter) u64s(vs []uint64) {
	w.u64(uint64(len(vs)))
	for _, v := range vs {
		w.u64(v)
	}
}

func (w *payloadWriter) strs(vs []string) {
	w.u64(uint64(len(vs)))
	for _, v := range vs {
		w.u64(uint64(len(v)))
		w.buf.WriteString(v)
	}
}

func (w *payloadWriter) types(v []frame.Type) {
	w.u64(uint64(len(v)))
	for _, t := range v {
		w.u8(uint8(t))
	}
}

func encodePayload(s *Snapshot) []byte {
	w := &payloadWriter{}
	p := s.Params
	w.f64(p.Alpha)
	w.f64(p.Beta)
	w.f64(p.Lambda1)
	w.f64(p.Lambda2)
	w.u64(uint64(p.D))
	w.u64(uint64(p.NEpochs))
	w.flag(p.Interactions)

	w.flag(s.Model != nil)
	if s.Model != nil {
		w.f64s(s.Model.Z)
		w.f64s(s.Model.N)
	}
	w.flag(s.Importance != nil)
	if s.Importance != nil {
		w.f64s(s.Importance)
	}
	w.u64s(s.ColumnHashes)
	w.strs(s.ColumnNames)
	w.types(s.ColumnTypes)
	w.u64(uint64(s.NSamples))
	return w.buf.Bytes()
}

type payloadReader struct {
	data []byte
	off  int
	err  error
}

func (r *payloadReader) take(n uint64) []byte {
	if r.err != nil {
		return nil
	}
	if n > uint64(len(r.data)-r.off) {
		r.err = errors.Wrap(errors.ErrCorruptSnapshot, "truncated payload")
		return nil
	}
	b := r.data[r.off : r.off+int(n)]
	r.off += int(n)
	return b
}

func (r *payloadReader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *payloadReader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *payloadReader) f64() float64 { return math.Float64frombits(r.u64()) }

func (r *payloadReader) flag() bool { return r.u8() != 0 }

// count reads a length prefix and checks that elemSize*n bytes remain.
func (r *payloadReader) count(elemSize uint64) int {
	n := r.u64()
	if r.err == nil && n > uint64(len(r.data)-r.off)/elemSize {
		r.err = errors.Wrap(errors.ErrCorruptSnapshot, "length prefix exceeds payload")
	}
	if r.err != nil {
		return 0
	}
	return int(n)
}

func (r *payloadReader) f64s() []float64 {
	n := r.count(8)
	out := make([]float64, n)
	for i := range out {
		out[i] = r.f64()
	}
	return out
}

func (r *payloadReader) u64s() []uint64 {
	n := r.count(8)
	if n == 0 {
		return nil
	}
	out := make([]uint64, n)
	for i := range out {
		out[i] = r.u64()
	}
	return out
}

func (r *payloadReader) strs() []string {
	n := r.count(8)
	if n == 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = string(r.take(r.u64()))
	}
	return out
}

func (r *payloadReader) types() []frame.Type {
	n := r.count(1)
	if n == 0 {
		return nil
	}
	out := make([]frame.Type, n)
	for i := range out {
		out[i] = frame.Type(r.u8())
	}
	return out
}

func decodePayload(data []byte) (*Snapshot, error) {
	r := &payloadReader{data: data}
	s := &Snapshot{}
	s.Params = Params{
		Alpha:   r.f64(),
		Beta:    r.f64(),
		Lambda1: r.f64(),
		Lambda2: r.f64(),
		D:       int(r.u64()),
		NEpochs: int(r.u64()),
	}
	s.Params.Interactions = r.flag()

	if r.flag() {
		s.Model = &Model{Z: r.f64s(), N: r.f64s()}
	}
	if r.flag() {
		s.Importance = r.f64s()
	}
	s.ColumnHashes = r.u64s()
	s.ColumnNames = r.strs()
	s.ColumnTypes = r.types()
	s.NSamples = int(r.u64())

	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(data) {
		return nil, errors.Wrap(errors.ErrCorruptSnapshot, "trailing bytes after payload")
	}
	return s, nil
}
