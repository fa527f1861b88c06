package ftrl

import (
	"bytes"
	"io"
	"os"

	"github.com/YuminosukeSato/ftrl/core/frame"
	"github.com/YuminosukeSato/ftrl/pkg/errors"
	"github.com/YuminosukeSato/ftrl/pkg/log"
)

// Snapshot is a complete, self-contained copy of a learner.
type Snapshot struct {
	Params       Params
	Model        *Model    // nil when untrained
	Importance   []float64 // nil when untrained
	ColumnHashes []uint64
	ColumnNames  []string
	ColumnTypes  []frame.Type
	NSamples     int
}

// Snapshot returns a deep copy of the learner state.
func (f *FTRL) Snapshot() *Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, nSamples := f.state.GetDimensions()
	s := &Snapshot{
		Params:       f.params,
		Model:        f.model.Clone(),
		ColumnHashes: append([]uint64(nil), f.colHashes...),
		ColumnNames:  append([]string(nil), f.colNames...),
		ColumnTypes:  append([]frame.Type(nil), f.colTypes...),
		NSamples:     nSamples,
	}
	if f.importance != nil {
		s.Importance = append([]float64(nil), f.importance...)
	}
	return s
}

// Validate checks the internal consistency of s.
func (s *Snapshot) Validate() error {
	if err := s.Params.Validate(); err != nil {
		return err
	}
	if s.Model == nil {
		if s.Importance != nil {
			return errors.NewIncompatibleModelError("snapshot has feature importance but no model")
		}
		return nil
	}
	if err := s.Model.Validate(s.Params.D); err != nil {
		return err
	}
	if s.Importance != nil && s.ColumnNames != nil && len(s.Importance) != len(s.ColumnNames) {
		return errors.NewIncompatibleModelError(
			"snapshot has %d feature importance values for %d columns", len(s.Importance), len(s.ColumnNames))
	}
	if s.ColumnHashes != nil && s.ColumnNames != nil && len(s.ColumnHashes) != len(s.ColumnNames) {
		return errors.NewIncompatibleModelError(
			"snapshot has %d column hashes for %d columns", len(s.ColumnHashes), len(s.ColumnNames))
	}
	if s.ColumnTypes != nil && s.ColumnNames != nil && len(s.ColumnTypes) != len(s.ColumnNames) {
		return errors.NewIncompatibleModelError(
			"snapshot has %d column types for %d columns", len(s.ColumnTypes), len(s.ColumnNames))
	}
	for _, t := range s.ColumnTypes {
		if t < frame.Bool || t > frame.String {
			return errors.NewIncompatibleModelError("snapshot has unknown column type %d", int(t))
		}
	}
	return nil
}

// Restore replaces the whole learner state with a copy of s. An invalid
// snapshot leaves the learner unchanged.
func (f *FTRL) Restore(s *Snapshot) error {
	if s == nil {
		return errors.NewIncompatibleModelError("snapshot is nil")
	}
	if err := s.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == nil {
		f.init(nil, DefaultStringCacheSize)
	}

	f.params = s.Params
	f.model = s.Model.Clone()
	f.importance = nil
	if s.Importance != nil {
		f.importance = append([]float64(nil), s.Importance...)
	}
	f.colHashes = append([]uint64(nil), s.ColumnHashes...)
	f.colNames = append([]string(nil), s.ColumnNames...)
	f.colTypes = append([]frame.Type(nil), s.ColumnTypes...)

	f.state.Reset()
	if f.model != nil {
		f.state.SetDimensions(len(f.importance), s.NSamples)
		f.state.SetFitted()
	}
	f.logger.Debug("Snapshot restored", log.OperationKey, log.OperationRestore, log.HashDimKey, s.Params.D)
	return nil
}

// MarshalBinary encodes the learner in the uncompressed snapshot format. It
// lets encoding/gob and model.SaveModel persist a learner.
func (f *FTRL) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := writeSnapshot(&buf, f.Snapshot(), CompressionNone); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary restores a learner encoded by MarshalBinary or WriteTo.
func (f *FTRL) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	s, _, err := readSnapshot(r)
	if err != nil {
		return err
	}
	if r.Len() != 0 {
		return errors.Wrap(errors.ErrCorruptSnapshot, "trailing bytes after snapshot")
	}
	return f.Restore(s)
}

// WriteTo writes an uncompressed snapshot to w.
func (f *FTRL) WriteTo(w io.Writer) (int64, error) {
	return f.WriteSnapshot(w, CompressionNone)
}

// WriteSnapshot writes a snapshot to w with the given payload compression.
func (f *FTRL) WriteSnapshot(w io.Writer, c Compression) (int64, error) {
	n, err := writeSnapshot(w, f.Snapshot(), c)
	if err != nil {
		return n, err
	}
	f.logger.Debug("Snapshot written",
		log.OperationKey, log.OperationSnapshot,
		log.DataSizeKey, n,
		"compression", c.String())
	return n, nil
}

// ReadFrom restores the learner from a snapshot read from r.
func (f *FTRL) ReadFrom(r io.Reader) (int64, error) {
	s, n, err := readSnapshot(r)
	if err != nil {
		return n, err
	}
	return n, f.Restore(s)
}

// SaveFile writes f to path.
func SaveFile(path string, f *FTRL, c Compression) error {
	fh, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if _, err := f.WriteSnapshot(fh, c); err != nil {
		fh.Close()
		return err
	}
	return errors.Wrapf(fh.Close(), "close %s", path)
}

// LoadFile reads a learner from path. opts configure the non-persisted
// settings such as the logger.
func LoadFile(path string, opts ...Option) (*FTRL, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer fh.Close()

	f, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if _, err := f.ReadFrom(fh); err != nil {
		return nil, err
	}
	return f, nil
}
