// Package log defines standard attribute keys for learner operations.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples") so that
// log lines from fitting, prediction and persistence can be filtered uniformly.
package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "FTRL".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one learner instance (a UUID).
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed ("fit", "predict", ...).
	OperationKey = "ml.operation"

	// ComponentKey identifies the component emitting the log line.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle ("training", "inference").
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey is the number of rows in the frame being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of input columns.
	FeaturesKey = "data.features"

	// SkippedKey is the number of rows skipped (e.g. missing target).
	SkippedKey = "data.skipped"

	// DataSizeKey is a payload size in bytes.
	DataSizeKey = "data.size_bytes"

	// BatchSizeKey is the size of a streamed batch.
	BatchSizeKey = "data.batch_size"
)

// Performance and training progress
const (
	// DurationMsKey is the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey is the mean log-loss observed during an epoch.
	LossKey = "metrics.loss"

	// EpochKey is the current epoch number.
	EpochKey = "training.epoch"

	// EpochsKey is the total number of epochs requested.
	EpochsKey = "training.epochs"
)

// Hyperparameters
const (
	// HyperParamsKey contains model hyperparameters as a structured object.
	HyperParamsKey = "model.hyperparams"

	// HashDimKey is the size of the hashed weight space (d).
	HashDimKey = "hyperparams.d"

	// InteractionsKey reports whether pairwise interaction features are enabled.
	InteractionsKey = "hyperparams.interactions"
)

// Error context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// ErrAttrKey carries the error value itself.
	ErrAttrKey = "error"

	// StacktraceKey contains stack trace information extracted from cockroachdb/errors.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit        = "fit"
	OperationPartialFit = "partial_fit"
	OperationPredict    = "predict"
	OperationSnapshot   = "snapshot"
	OperationRestore    = "restore"

	PhaseTraining  = "training"
	PhaseInference = "inference"
)
