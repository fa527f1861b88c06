package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/ftrl/pkg/log"
)

const trainCSV = `color,size,target
red,1,true
blue,2,false
red,3,true
green,4,false
red,5,true
blue,6,false
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTrainThenPredict(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "train.csv", trainCSV)
	modelPath := filepath.Join(dir, "model.ftrl")
	plotPath := filepath.Join(dir, "importance.png")
	logger, _ := log.NewTestLogger(log.LevelDebug)

	train := &trainCmd{
		Input: input, Target: "target", Output: modelPath,
		Alpha: 0.1, Beta: 1, Lambda2: 1, D: 100, NEpochs: 10,
		Compression: "lz4", Plot: plotPath,
	}
	require.NoError(t, runTrain(context.Background(), train, logger))
	assert.FileExists(t, modelPath)
	assert.FileExists(t, plotPath)
	assert.True(t, logger.ContainsMessage("Evaluation"))

	out := filepath.Join(dir, "pred.csv")
	require.NoError(t, runPredict(&predictCmd{Input: input, Model: modelPath, Target: "target", Output: out}, logger))
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, "target", lines[0])
	assert.Len(t, lines, 7)

	// continue training from the snapshot
	train.Model = modelPath
	train.D = 5
	train.Plot = ""
	require.NoError(t, runTrain(context.Background(), train, logger))
}

func readPredictions(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(raw)), "\n")[1:]
}

func TestPredictReadsTrainingColumnTypes(t *testing.T) {
	dir := t.TempDir()
	logger, _ := log.NewTestLogger(log.LevelInfo)
	input := writeFile(t, dir, "train.csv", "x,target\n1,true\n2.5,false\n1,true\n2.5,false\n")
	modelPath := filepath.Join(dir, "model.ftrl")
	require.NoError(t, runTrain(context.Background(), &trainCmd{
		Input: input, Target: "target", Output: modelPath,
		Alpha: 0.1, Beta: 1, Lambda2: 1, D: 100, NEpochs: 50, Compression: "none",
	}, logger))

	// x is inferred as int64 on its own; it must still hash as float64
	sameTypes := filepath.Join(dir, "same.csv")
	intLooking := writeFile(t, dir, "ints.csv", "x\n1\n2\n")
	require.NoError(t, runPredict(&predictCmd{Input: input, Model: modelPath, Target: "target", Output: sameTypes}, logger))
	other := filepath.Join(dir, "ints_pred.csv")
	require.NoError(t, runPredict(&predictCmd{Input: intLooking, Model: modelPath, Target: "target", Output: other}, logger))

	want := readPredictions(t, sameTypes)
	got := readPredictions(t, other)
	assert.Equal(t, want[0], got[0])
	assert.NotEqual(t, "0.5", got[0])

	bad := writeFile(t, dir, "bad.csv", "x\nabc\n")
	assert.Error(t, runPredict(&predictCmd{Input: bad, Model: modelPath, Target: "target"}, logger))
}

func TestPredictWritesBeforeEvaluating(t *testing.T) {
	dir := t.TempDir()
	logger, _ := log.NewTestLogger(log.LevelInfo)
	input := writeFile(t, dir, "train.csv", trainCSV)
	modelPath := filepath.Join(dir, "model.ftrl")
	require.NoError(t, runTrain(context.Background(), &trainCmd{
		Input: input, Target: "target", Output: modelPath,
		Alpha: 0.1, Beta: 1, Lambda2: 1, D: 100, NEpochs: 1, Compression: "zstd",
	}, logger))

	scored := writeFile(t, dir, "scored.csv", "color,size,target\nred,1,yes\nblue,2,no\n")
	out := filepath.Join(dir, "pred.csv")
	err := runPredict(&predictCmd{Input: scored, Model: modelPath, Target: "target", Output: out}, logger)
	assert.ErrorContains(t, err, "bool")
	assert.Len(t, readPredictions(t, out), 2)
}

func TestTrainMissingTarget(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "train.csv", "a,b\n1,2\n")
	logger, _ := log.NewTestLogger(log.LevelInfo)

	err := runTrain(context.Background(), &trainCmd{
		Input: input, Target: "target", Output: filepath.Join(dir, "m"),
		Alpha: 0.1, Beta: 1, D: 10, NEpochs: 1, Compression: "none",
	}, logger)
	assert.ErrorContains(t, err, `"target"`)
}

func TestTrainBadCompression(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	err := runTrain(context.Background(), &trainCmd{Compression: "gzip"}, logger)
	assert.Error(t, err)
}

func TestPlotImportanceEmpty(t *testing.T) {
	assert.Error(t, plotImportance(filepath.Join(t.TempDir(), "x.png"), nil, nil))
}
