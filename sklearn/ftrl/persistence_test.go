package ftrl

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ftrl/core/frame"
	"github.com/YuminosukeSato/ftrl/core/model"
	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

func trainedFixture(t *testing.T) (*FTRL, *frame.Frame, *frame.Frame) {
	t.Helper()
	X, y := uniqueFixture(10)
	clf := MustNew(WithD(10))
	require.NoError(t, clf.Fit(X, y))
	return clf, X, y
}

func assertSameLearner(t *testing.T, want, got *FTRL, X, y *frame.Frame) {
	t.Helper()
	assert.Equal(t, want.Params(), got.Params())
	assert.Equal(t, want.Model(), got.Model())
	assert.Equal(t, want.FeatureImportance(), got.FeatureImportance())
	assert.Equal(t, want.ColumnHashes(), got.ColumnHashes())
	assert.Equal(t, want.ColumnNames(), got.ColumnNames())
	assert.Equal(t, want.ColumnTypes(), got.ColumnTypes())
	assert.Equal(t, want.NSamples(), got.NSamples())

	p1, err := want.Predict(X)
	require.NoError(t, err)
	p2, err := got.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(p1, p2))

	// training continues along the same trajectory
	require.NoError(t, want.Fit(X, y))
	require.NoError(t, got.Fit(X, y))
	assert.Equal(t, want.Model(), got.Model())
}

func TestSnapshotRestore(t *testing.T) {
	clf, X, y := trainedFixture(t)
	snap := clf.Snapshot()

	assert.Equal(t, X.Types(), snap.ColumnTypes)

	restored := MustNew()
	require.NoError(t, restored.Restore(snap))
	assertSameLearner(t, clf, restored, X, y)

	// the snapshot is a copy
	snap.Model.Z[0] = 42
	assert.NotEqual(t, 42.0, restored.Model().Z[0])
}

func TestRestoreInvalidLeavesLearnerUnchanged(t *testing.T) {
	clf, _, _ := trainedFixture(t)
	before := clf.Snapshot()

	bad := clf.Snapshot()
	bad.Model.N[3] = -1
	err := clf.Restore(bad)
	assert.True(t, errors.Is(err, errors.ErrIncompatibleModel))

	bad = clf.Snapshot()
	bad.Params.Alpha = 0
	assert.True(t, errors.Is(clf.Restore(bad), errors.ErrInvalidParameter))

	bad = clf.Snapshot()
	bad.ColumnTypes = bad.ColumnTypes[1:]
	assert.True(t, errors.Is(clf.Restore(bad), errors.ErrIncompatibleModel))

	bad = clf.Snapshot()
	bad.ColumnTypes[0] = frame.Type(9)
	assert.True(t, errors.Is(clf.Restore(bad), errors.ErrIncompatibleModel))

	bad = clf.Snapshot()
	bad.Model = nil
	assert.True(t, errors.Is(clf.Restore(bad), errors.ErrIncompatibleModel))

	assert.Error(t, clf.Restore(nil))
	assert.Equal(t, before, clf.Snapshot())
}

func TestRestoreUntrainedSnapshot(t *testing.T) {
	clf, _, _ := trainedFixture(t)
	require.NoError(t, clf.Restore(MustNew(WithParams(testParams)).Snapshot()))
	assert.Nil(t, clf.Model())
	assert.Equal(t, model.Untrained, clf.State())
	assert.Equal(t, testParams, clf.Params())
}

func TestBinaryRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			clf, X, y := trainedFixture(t)
			var buf bytes.Buffer
			n, err := clf.WriteSnapshot(&buf, c)
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			restored := MustNew()
			read, err := restored.ReadFrom(&buf)
			require.NoError(t, err)
			assert.Equal(t, n, read)
			assertSameLearner(t, clf, restored, X, y)
		})
	}
}

func TestCompressionShrinksLargeModel(t *testing.T) {
	clf := MustNew(WithD(100000))
	require.NoError(t, clf.Fit(frame.MustNew(frame.Range("", 10)), frame.MustNew(frame.Bools("", repeatBool(true, 10)...))))

	var plain, zst bytes.Buffer
	_, err := clf.WriteTo(&plain)
	require.NoError(t, err)
	_, err = clf.WriteSnapshot(&zst, CompressionZstd)
	require.NoError(t, err)
	assert.Less(t, zst.Len(), plain.Len()/10)
}

func TestMarshalBinaryAndGob(t *testing.T) {
	clf, X, y := trainedFixture(t)

	data, err := clf.MarshalBinary()
	require.NoError(t, err)
	restored := MustNew()
	require.NoError(t, restored.UnmarshalBinary(data))
	assertSameLearner(t, clf, restored, X, y)

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(clf, &buf))
	var fromGob FTRL
	require.NoError(t, model.LoadModelFromReader(&fromGob, &buf))
	assertSameLearner(t, clf, &fromGob, X, y)
}

func TestSaveLoadFile(t *testing.T) {
	clf, X, y := trainedFixture(t)
	path := filepath.Join(t.TempDir(), "model.ftrl")
	require.NoError(t, SaveFile(path, clf, CompressionLZ4))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assertSameLearner(t, clf, loaded, X, y)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.ftrl"))
	assert.Error(t, err)
}

func TestCorruptSnapshot(t *testing.T) {
	clf, _, _ := trainedFixture(t)
	data, err := clf.MarshalBinary()
	require.NoError(t, err)

	flipped := append([]byte(nil), data...)
	flipped[len(flipped)-1] ^= 0xff
	badMagic := append([]byte(nil), data...)
	badMagic[0] = 'X'

	for name, blob := range map[string][]byte{
		"checksum":  flipped,
		"magic":     badMagic,
		"truncated": data[:len(data)-5],
		"header":    data[:3],
		"trailing":  append(append([]byte(nil), data...), 0),
	} {
		t.Run(name, func(t *testing.T) {
			fresh := MustNew()
			err := fresh.UnmarshalBinary(blob)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCorruptSnapshot), "%v", err)
			assert.Nil(t, fresh.Model())
		})
	}
}

func TestDecodePayloadRejectsHugeLength(t *testing.T) {
	w := &payloadWriter{}
	for i := 0; i < 4; i++ {
		w.f64(1)
	}
	w.u64(10)
	w.u64(1)
	w.flag(false)
	w.flag(true)
	w.u64(1 << 60)
	_, err := decodePayload(w.buf.Bytes())
	assert.True(t, errors.Is(err, errors.ErrCorruptSnapshot))
}

func TestParseCompression(t *testing.T) {
	for in, want := range map[string]Compression{"": CompressionNone, "none": CompressionNone, "LZ4": CompressionLZ4, "zstd": CompressionZstd} {
		got, err := ParseCompression(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCompression("gzip")
	assert.True(t, errors.Is(err, errors.ErrInvalidParameter))
}

func TestSetModelValidation(t *testing.T) {
	d := testParams.D
	rnd := func() []float64 {
		out := make([]float64, d)
		for i := range out {
			out[i] = float64(i) / 10
		}
		return out
	}
	neg := rnd()
	neg[2] = -0.1
	tests := []struct {
		name    string
		set     func(*FTRL) error
		message string
	}{
		{"negative n", func(f *FTRL) error { return f.SetModel(&Model{Z: rnd(), N: neg}) }, "values in column `n` cannot be negative"},
		{"wrong rows", func(f *FTRL) error { return f.SetModel(&Model{Z: rnd()[:3], N: rnd()[:3]}) }, "must have 5 rows"},
		{"one column frame", func(f *FTRL) error {
			return f.SetModelFrame(frame.MustNew(frame.Floats("n", rnd()...)))
		}, "FTRL model frame must have 5 rows, and 2 columns, whereas your frame has 5 rows and 1 column"},
		{"string column", func(f *FTRL) error {
			s := make([]string, d)
			for i := range s {
				s[i] = "foo"
			}
			return f.SetModelFrame(frame.MustNew(frame.Strings("z", s...), frame.Floats("n", rnd()...)))
		}, "both column types as `float64`, whereas your frame has the following column types: `str` and `float64`"},
		{"negative n frame", func(f *FTRL) error {
			return f.SetModelFrame(frame.MustNew(frame.Floats("z", rnd()...), frame.Floats("n", neg...)))
		}, "cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := MustNew(WithParams(testParams))
			err := tt.set(clf)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrIncompatibleModel))
			assert.Contains(t, err.Error(), tt.message)
			assert.Nil(t, clf.Model())
		})
	}
}

func TestGetSetModel(t *testing.T) {
	d := testParams.D
	z := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	n := []float64{1, 2, 3, 4, 5}

	clf := MustNew(WithParams(testParams))
	require.NoError(t, clf.SetModel(&Model{Z: z, N: n}))
	assert.Equal(t, &Model{Z: z, N: n}, clf.Model())
	assert.True(t, clf.IsFitted())

	z[0] = 99
	assert.Equal(t, 0.1, clf.Model().Z[0], "input is copied")

	mf := clf.ModelFrame()
	assert.Equal(t, []string{ModelZColumn, ModelNColumn}, mf.Names())
	assert.Equal(t, []frame.Type{frame.Float, frame.Float}, mf.Types())
	assert.Equal(t, d, mf.NRows())

	other := MustNew(WithParams(testParams))
	require.NoError(t, other.SetModelFrame(mf))
	assert.Equal(t, clf.Model(), other.Model())

	pred, err := other.Predict(frame.MustNew(frame.Ints("", 1, 2)))
	require.NoError(t, err)
	r, _ := pred.Dims()
	assert.Equal(t, 2, r)

	require.NoError(t, clf.SetModel(nil))
	assert.Nil(t, clf.Model())
	assert.False(t, clf.IsFitted())

	require.NoError(t, other.SetModelFrame(nil))
	assert.Nil(t, other.ModelFrame())
}
