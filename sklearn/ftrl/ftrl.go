package ftrl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/ftrl/core/frame"
	"github.com/YuminosukeSato/ftrl/core/model"
	"github.com/YuminosukeSato/ftrl/core/parallel"
	"github.com/YuminosukeSato/ftrl/pkg/errors"
	"github.com/YuminosukeSato/ftrl/pkg/log"
)

const modelName = "FTRL"

// FTRL is an online binary classifier trained with the FTRL-proximal
// algorithm over hashed features.
//
// All methods are safe for concurrent use. Fits are serialized and never run
// concurrently with predictions.
type FTRL struct {
	mu sync.RWMutex

	params Params
	state  *model.StateManager

	model      *Model
	importance []float64
	colHashes  []uint64
	colNames   []string
	colTypes   []frame.Type

	hasher           *Hasher
	logger           log.Logger
	id               string
	predictThreshold int
}

var (
	_ model.OnlineClassifier = (*FTRL)(nil)
	_ model.ParameterGetter  = (*FTRL)(nil)
	_ model.ParameterSetter  = (*FTRL)(nil)
)

// New creates an untrained learner.
//
//	clf, err := ftrl.New(ftrl.WithAlpha(0.1), ftrl.WithNEpochs(10))
func New(opts ...Option) (*FTRL, error) {
	o := &options{
		individual:       make(map[string]interface{}),
		cacheSize:        DefaultStringCacheSize,
		predictThreshold: parallel.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	params, err := o.resolve()
	if err != nil {
		return nil, err
	}

	f := &FTRL{params: params, predictThreshold: o.predictThreshold}
	f.init(o.logger, o.cacheSize)
	return f, nil
}

// MustNew is like New but panics on invalid options.
func MustNew(opts ...Option) *FTRL {
	f, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *FTRL) init(logger log.Logger, cacheSize int) {
	f.id = uuid.NewString()
	f.state = model.NewStateManager()
	f.hasher = NewHasher(cacheSize)
	if logger == nil {
		logger = log.GetLoggerWithName("ftrl")
	}
	f.logger = logger.With(log.ModelNameKey, modelName, log.EstimatorIDKey, f.id)
	if f.predictThreshold <= 0 {
		f.predictThreshold = parallel.DefaultThreshold
	}
}

// ID returns the estimator id attached to log lines.
func (f *FTRL) ID() string { return f.id }

// State returns the lifecycle state.
func (f *FTRL) State() model.EstimatorState { return f.state.Get() }

// IsFitted reports whether a model is present.
func (f *FTRL) IsFitted() bool { return f.state.IsFitted() }

// NSamples returns the number of target rows trained on since the last Reset,
// counting each row once regardless of the number of epochs.
func (f *FTRL) NSamples() int {
	_, n := f.state.GetDimensions()
	return n
}

// Fit trains for NEpochs passes over X and y. The first fit allocates the
// model; later fits continue from it. Fit(nil, nil) does nothing.
func (f *FTRL) Fit(X, y *frame.Frame) error {
	return f.fit(context.Background(), X, y, -1, log.OperationFit)
}

// FitContext is Fit with cancellation checked before every epoch. Epochs
// that completed before cancellation stay applied.
func (f *FTRL) FitContext(ctx context.Context, X, y *frame.Frame) error {
	return f.fit(ctx, X, y, -1, log.OperationFit)
}

// PartialFit runs exactly one pass over X and y regardless of NEpochs.
func (f *FTRL) PartialFit(X, y *frame.Frame) error {
	return f.fit(context.Background(), X, y, 1, log.OperationPartialFit)
}

// FitStream calls PartialFit for every batch received until dataChan is
// closed or ctx is done.
func (f *FTRL) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			if batch == nil {
				continue
			}
			if err := f.fit(ctx, batch.X, batch.Y, 1, log.OperationPartialFit); err != nil {
				return err
			}
		}
	}
}

// validateTraining checks X and y before any state is touched.
func (f *FTRL) validateTraining(X, y *frame.Frame) (*frame.BoolColumn, error) {
	if X == nil {
		return nil, errors.NewTrainingInputError("training frame parameter is missing")
	}
	if y == nil {
		return nil, errors.NewTrainingInputError("target frame parameter is missing")
	}
	if X.NCols() == 0 {
		return nil, errors.NewTrainingInputError("training frame must have at least one column")
	}
	if y.NCols() != 1 {
		return nil, errors.NewTrainingInputError("target frame must have exactly one column")
	}
	target, ok := y.Col(0).(*frame.BoolColumn)
	if !ok {
		return nil, errors.NewTrainingInputError("target column must be of a `bool` type")
	}
	if X.NRows() != y.NRows() {
		return nil, errors.NewTrainingInputError(fmt.Sprintf(
			"target frame must have the same number of rows as the training frame, %d vs %d", y.NRows(), X.NRows()))
	}
	if f.importance != nil && len(f.importance) != X.NCols() {
		return nil, errors.NewDimensionError("Fit", len(f.importance), X.NCols(), 1)
	}
	return target, nil
}

func (f *FTRL) fit(ctx context.Context, X, y *frame.Frame, epochs int, op string) (err error) {
	if X == nil && y == nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	defer errors.Recover(&err, "FTRL.Fit")

	target, err := f.validateTraining(X, y)
	if err != nil {
		return err
	}
	if epochs < 0 {
		epochs = f.params.NEpochs
	}

	skipped := 0
	for i := 0; i < target.Len(); i++ {
		if target.IsNA(i) {
			skipped++
		}
	}
	if skipped > 0 {
		errors.Warn(errors.NewDataConversionWarning("bool", "skipped rows",
			fmt.Sprintf("%d rows with a missing target were skipped", skipped)))
	}

	logger := f.logger.With(log.OperationKey, op, log.PhaseKey, log.PhaseTraining)
	logger.Info("Training FTRL",
		log.SamplesKey, X.NRows(),
		log.FeaturesKey, X.NCols(),
		log.SkippedKey, skipped,
		log.EpochsKey, epochs,
		log.HashDimKey, f.params.D,
		log.InteractionsKey, f.params.Interactions,
		log.HyperParamsKey, f.params.String())
	start := time.Now()

	if f.model == nil {
		f.model = newModel(f.params.D)
	}
	if f.importance == nil {
		f.importance = make([]float64, X.NCols())
	}
	f.colHashes = columnHashes(X)
	f.colNames = X.Names()
	f.colTypes = X.Types()
	f.state.BeginTraining()
	defer f.state.SetFitted()

	mapper := newFeatureMapper(X, f.colHashes, uint64(f.params.D), f.params.Interactions, f.hasher)
	u := &updater{
		coefficients: newCoefficients(f.params),
		model:        f.model,
		importance:   f.importance,
		owner:        mapper.owner,
	}
	buf := mapper.newBuffer()

	trained := X.NRows() - skipped
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("Training interrupted", log.EpochKey, epoch, log.EpochsKey, epochs)
			f.recordSamples(X.NCols(), trained, epoch)
			return err
		}
		var loss float64
		for i := 0; i < X.NRows(); i++ {
			if target.IsNA(i) {
				continue
			}
			mapper.mapRow(i, buf)
			yi := target.Value(i)
			loss += logLoss(u.step(buf, yi), yi)
		}
		if trained > 0 {
			loss /= float64(trained)
		}
		if err := errors.CheckScalar("FTRL.Fit", loss, epoch); err != nil {
			logger.Warn("Unstable epoch loss", err)
		}
		if logger.Enabled(ctx, log.LevelDebug) {
			logger.Debug("Epoch finished", log.EpochKey, epoch+1, log.LossKey, loss)
		}
	}
	f.recordSamples(X.NCols(), trained, epochs)

	logger.Info("Training completed", log.DurationMsKey, time.Since(start).Milliseconds())
	return nil
}

// recordSamples adds the rows of a fit to the sample count when at least one
// epoch ran over them.
func (f *FTRL) recordSamples(ncols, rows, epochsRun int) {
	_, n := f.state.GetDimensions()
	if epochsRun > 0 {
		n += rows
	}
	f.state.SetDimensions(ncols, n)
}

// Reset discards the model, feature importance and column hashes. Params
// are kept.
func (f *FTRL) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.model = nil
	f.importance = nil
	f.colHashes = nil
	f.colNames = nil
	f.colTypes = nil
	f.state.Reset()
}

// Model returns a copy of the model, or nil when untrained.
func (f *FTRL) Model() *Model {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.model.Clone()
}

// SetModel replaces the model with a copy of m. A nil m clears the model and
// the feature importance. An invalid m leaves the learner unchanged.
func (f *FTRL) SetModel(m *Model) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m == nil {
		f.clearModelLocked()
		return nil
	}
	if err := m.Validate(f.params.D); err != nil {
		return err
	}
	f.model = m.Clone()
	f.state.SetFitted()
	return nil
}

// ModelFrame returns the model as a d×2 frame with columns z and n, or nil.
func (f *FTRL) ModelFrame() *frame.Frame {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.model == nil {
		return nil
	}
	return f.model.Frame()
}

// SetModelFrame is SetModel for a frame with float64 columns z and n.
func (f *FTRL) SetModelFrame(mf *frame.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mf == nil {
		f.clearModelLocked()
		return nil
	}
	m, err := modelFromFrame(mf, f.params.D)
	if err != nil {
		return err
	}
	f.model = m
	f.state.SetFitted()
	return nil
}

func (f *FTRL) clearModelLocked() {
	f.model = nil
	f.importance = nil
	f.state.Reset()
}

// FeatureImportance returns a copy of the accumulated importance, one entry
// per training column, or nil.
func (f *FTRL) FeatureImportance() []float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]float64(nil), f.importance...)
}

// FeatureImportanceFrame returns the importance as a one-column frame, or nil.
func (f *FTRL) FeatureImportanceFrame() *frame.Frame {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.importance == nil {
		return nil
	}
	return frame.MustNew(frame.Floats(FeatureImportanceCol, f.importance...))
}

// ColumnHashes returns the hashes of the columns of the last fit, in order.
func (f *FTRL) ColumnHashes() []uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]uint64(nil), f.colHashes...)
}

// ColumnNames returns the names of the columns of the last fit, in order.
func (f *FTRL) ColumnNames() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.colNames...)
}

// ColumnTypes returns the types of the columns of the last fit, in order.
// Value hashes depend on the column type, so prediction frames should use
// the same types.
func (f *FTRL) ColumnTypes() []frame.Type {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]frame.Type(nil), f.colTypes...)
}
