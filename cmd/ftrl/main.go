// Command ftrl trains and applies FTRL-Proximal binary classifiers on CSV data.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"

	"github.com/YuminosukeSato/ftrl/core/frame"
	"github.com/YuminosukeSato/ftrl/metrics"
	"github.com/YuminosukeSato/ftrl/pkg/errors"
	"github.com/YuminosukeSato/ftrl/pkg/log"
	"github.com/YuminosukeSato/ftrl/sklearn/ftrl"
)

type trainCmd struct {
	Input        string  `arg:"positional,required" help:"CSV file with a header row."`
	Target       string  `arg:"-t,--target" default:"target" help:"Name of the boolean target column."`
	Output       string  `arg:"-o,--output,required" help:"Path to write the model snapshot to."`
	Model        string  `arg:"-m,--model" help:"Continue training from an existing snapshot."`
	Alpha        float64 `default:"0.005" help:"Learning rate."`
	Beta         float64 `default:"1" help:"Learning rate smoothing."`
	Lambda1      float64 `default:"0" help:"L1 regularisation."`
	Lambda2      float64 `default:"1" help:"L2 regularisation."`
	D            int     `arg:"-d" default:"1000000" help:"Number of hash bins."`
	NEpochs      int     `arg:"--nepochs" default:"1" help:"Passes over the training data."`
	Interactions bool    `help:"Add second order column interactions."`
	Compression  string  `default:"zstd" help:"Snapshot compression: none, lz4 or zstd."`
	Plot         string  `help:"Write a feature importance bar chart (png, svg or pdf)."`
}

type predictCmd struct {
	Input  string `arg:"positional,required" help:"CSV file with a header row."`
	Model  string `arg:"-m,--model,required" help:"Model snapshot to load."`
	Target string `arg:"-t,--target" default:"target" help:"Target column, dropped before predicting and used for evaluation when present."`
	Output string `arg:"-o,--output" help:"Write predictions to this CSV file instead of stdout."`
}

type args struct {
	Train    *trainCmd   `arg:"subcommand:train" help:"Fit a model on a CSV file."`
	Predict  *predictCmd `arg:"subcommand:predict" help:"Predict probabilities for a CSV file."`
	LogLevel string      `arg:"--log-level" default:"info" help:"debug, info, warn or error."`
}

func (args) Version() string {
	return "ftrl 0.1.0"
}

func (args) Description() string {
	return `Online binary classification with FTRL-Proximal and the hashing trick.`
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}
	if err := log.SetupLogger(a.LogLevel); err != nil {
		p.Fail(err.Error())
	}
	logger := log.GetLoggerWithName("ftrl")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case a.Train != nil:
		err = runTrain(ctx, a.Train, logger)
	case a.Predict != nil:
		err = runPredict(a.Predict, logger)
	}
	if err != nil {
		logger.Error("command failed", err)
		os.Exit(1)
	}
}

func splitTarget(data *frame.Frame, target string) (X, y *frame.Frame, err error) {
	col, ok := data.Lookup(target)
	if !ok {
		return data, nil, nil
	}
	y, err = frame.New(col)
	if err != nil {
		return nil, nil, err
	}
	return data.Drop(target), y, nil
}

func runTrain(ctx context.Context, c *trainCmd, logger log.Logger) error {
	compression, err := ftrl.ParseCompression(c.Compression)
	if err != nil {
		return err
	}
	params := ftrl.Params{
		Alpha:        c.Alpha,
		Beta:         c.Beta,
		Lambda1:      c.Lambda1,
		Lambda2:      c.Lambda2,
		D:            c.D,
		NEpochs:      c.NEpochs,
		Interactions: c.Interactions,
	}
	var model *ftrl.FTRL
	if c.Model != "" {
		model, err = ftrl.LoadFile(c.Model, ftrl.WithLogger(logger))
		if err == nil {
			// the hash dimension is fixed by the snapshot
			params.D = model.Params().D
			err = model.SetAllParams(params)
		}
	} else {
		model, err = ftrl.New(ftrl.WithParams(params), ftrl.WithLogger(logger))
	}
	if err != nil {
		return err
	}

	data, err := frame.ReadCSVFileWithTypes(c.Input, trainedTypes(model))
	if err != nil {
		return err
	}
	X, y, err := splitTarget(data, c.Target)
	if err != nil {
		return err
	}
	if y == nil {
		return errors.NewValueError("train", fmt.Sprintf("target column %q not found", c.Target))
	}

	if err := model.FitContext(ctx, X, y); err != nil {
		return err
	}
	pred, err := model.PredictFrame(X)
	if err != nil {
		return err
	}
	if err := evaluate(pred, y, logger); err != nil {
		return err
	}
	if err := ftrl.SaveFile(c.Output, model, compression); err != nil {
		return err
	}
	logger.Info("Model saved", "path", c.Output, "compression", compression.String())

	if c.Plot != "" {
		if err := plotImportance(c.Plot, model.ColumnNames(), model.FeatureImportance()); err != nil {
			return err
		}
		logger.Info("Feature importance plotted", "path", c.Plot)
	}
	return nil
}

func runPredict(c *predictCmd, logger log.Logger) error {
	model, err := ftrl.LoadFile(c.Model, ftrl.WithLogger(logger))
	if err != nil {
		return err
	}
	data, err := frame.ReadCSVFileWithTypes(c.Input, trainedTypes(model))
	if err != nil {
		return err
	}
	X, y, err := splitTarget(data, c.Target)
	if err != nil {
		return err
	}

	pred, err := model.PredictFrame(X)
	if err != nil {
		return err
	}
	if err := writePredictions(c.Output, pred); err != nil {
		return err
	}
	if y != nil {
		return evaluate(pred, y, logger)
	}
	return nil
}

// trainedTypes maps the training column names of model to their types, so
// that a CSV file is read the way the model was trained.
func trainedTypes(model *ftrl.FTRL) map[string]frame.Type {
	names, types := model.ColumnNames(), model.ColumnTypes()
	if len(names) != len(types) {
		return nil
	}
	out := make(map[string]frame.Type, len(names))
	for j, name := range names {
		out[name] = types[j]
	}
	return out
}

func writePredictions(path string, pred *frame.Frame) error {
	var w io.Writer = os.Stdout
	if path != "" {
		fh, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create %s", path)
		}
		defer fh.Close()
		w = fh
	}
	return frame.WriteCSV(w, pred)
}

// evaluate logs log loss, AUC and accuracy of the predicted probabilities in
// pred over the rows with a known target.
func evaluate(pred, y *frame.Frame, logger log.Logger) error {
	truth, keep, err := metrics.TargetVector(y.Col(0))
	if err != nil {
		return err
	}
	proba := pred.Col(0).(*frame.FloatColumn).Values()

	var yt, yp []float64
	for i, ok := range keep {
		if ok {
			yt = append(yt, truth.AtVec(i))
			yp = append(yp, proba[i])
		}
	}
	if len(yt) == 0 {
		logger.Warn("No labelled rows to evaluate")
		return nil
	}
	yTrue, yPred := vector(yt), vector(yp)

	logloss, err := metrics.BinaryLogLoss(yTrue, yPred)
	if err != nil {
		return err
	}
	auc, err := metrics.AUC(yTrue, yPred)
	if err != nil {
		return err
	}
	acc, err := metrics.Accuracy(yTrue, metrics.Threshold(yPred, 0.5))
	if err != nil {
		return err
	}
	logger.Info("Evaluation", "rows", len(yt), "logloss", logloss, "auc", auc, "accuracy", acc)
	return nil
}
