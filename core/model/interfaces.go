package model

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ftrl/core/frame"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit は特徴量フレーム X と目的変数フレーム y で学習する
	Fit(X, y *frame.Frame) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は各行の予測値を n×1 行列で返す
	Predict(X *frame.Frame) (*mat.Dense, error)
}

// IncrementalLearner is the interface for models that support incremental learning.
type IncrementalLearner interface {
	// PartialFit performs exactly one pass over the given rows.
	PartialFit(X, y *frame.Frame) error
}

// StreamingLearner trains from a channel of batches until the channel is closed
// or the context is done.
type StreamingLearner interface {
	IncrementalLearner
	FitStream(ctx context.Context, dataChan <-chan *Batch) error
}

// Classifier combines the training and prediction interfaces.
type Classifier interface {
	Fitter
	Predictor

	// Reset discards the learned model, keeping hyperparameters.
	Reset()
}

// OnlineClassifier is a classifier that can also learn from streams.
type OnlineClassifier interface {
	Classifier
	StreamingLearner
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}
