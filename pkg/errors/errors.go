// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 学習器が返すエラーは5つの種類（kind）に分類され、それぞれに番兵エラーが対応します。
// 型付きエラーは Is(target) を実装しているため、errors.Is で種類を判定できます。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	エラーの種類（番兵エラー）
//
// ===========================================================================

var (
	// ErrInvalidParameter はハイパーパラメータの型または値が不正な場合の種類です。
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrIncompatibleModel は設定しようとしたモデルの形状・型・値が不正な場合の種類です。
	ErrIncompatibleModel = errors.New("incompatible model")

	// ErrInvalidTrainingInput は学習用フレームまたは目的変数フレームが不正な場合の種類です。
	ErrInvalidTrainingInput = errors.New("invalid training input")

	// ErrNotTrained はモデルが存在しない状態で予測しようとした場合の種類です。
	ErrNotTrained = errors.New("model is not trained")

	// ErrShapeMismatch は予測フレームの列数が学習時と異なる場合の種類です。
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = errors.New("empty data")

	// ErrCorruptSnapshot はスナップショットのバイト列が壊れている場合のエラーです。
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("ftrl-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// DataConversionWarning はデータが暗黙的に変換・除外された場合に発生する警告です。
type DataConversionWarning struct {
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning は新しいDataConversionWarningを作成します。
func NewDataConversionWarning(from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{FromType: from, ToType: to, Reason: reason}
}

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
// 例えば、ROC AUCを計算する際に目的変数が片方のクラスしか含まない場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが存在しない状態で `Predict` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("ftrl: %s: cannot make any predictions, train or set the model first (called %s)", e.ModelName, e.Method)
}

// Is は ErrNotTrained との比較を可能にします。
func (e *NotFittedError) Is(target error) bool { return target == ErrNotTrained }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("ftrl: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

// Is は ErrShapeMismatch との比較を可能にします。
func (e *DimensionError) Is(target error) bool { return target == ErrShapeMismatch }

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError はパラメータの値が定義域外の場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ftrl: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// Is は ErrInvalidParameter との比較を可能にします。
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidParameter }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ParamTypeError はパラメータに期待と異なる型の値が渡された場合のエラーです。
type ParamTypeError struct {
	ParamName string
	Expected  string // "float", "integer", "boolean", ...
	Got       string
}

func (e *ParamTypeError) Error() string {
	return fmt.Sprintf("ftrl: parameter '%s' should be %s, instead got %s", e.ParamName, e.Expected, e.Got)
}

// Is は ErrInvalidParameter との比較を可能にします。
func (e *ParamTypeError) Is(target error) bool { return target == ErrInvalidParameter }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ParamTypeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("expected", e.Expected).
		Str("got", e.Got).
		Str("type", "ParamTypeError")
}

// NewParamTypeError は新しいParamTypeErrorを作成し、スタックトレースを付与します。
func NewParamTypeError(param, expected string, value interface{}) error {
	err := &ParamTypeError{ParamName: param, Expected: expected, Got: fmt.Sprintf("%T", value)}
	return errors.WithStack(err)
}

// IncompatibleModelError は設定しようとしたモデルが学習器と両立しない場合のエラーです。
type IncompatibleModelError struct {
	Reason string
}

func (e *IncompatibleModelError) Error() string {
	return fmt.Sprintf("ftrl: incompatible model: %s", e.Reason)
}

// Is は ErrIncompatibleModel との比較を可能にします。
func (e *IncompatibleModelError) Is(target error) bool { return target == ErrIncompatibleModel }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *IncompatibleModelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("reason", e.Reason).
		Str("type", "IncompatibleModelError")
}

// NewIncompatibleModelError は新しいIncompatibleModelErrorを作成し、スタックトレースを付与します。
func NewIncompatibleModelError(format string, args ...interface{}) error {
	err := &IncompatibleModelError{Reason: fmt.Sprintf(format, args...)}
	return errors.WithStack(err)
}

// TrainingInputError は学習入力が不正な場合のエラーです。
// 重みの更新が始まる前に報告されます。
type TrainingInputError struct {
	Reason string
}

func (e *TrainingInputError) Error() string {
	return fmt.Sprintf("ftrl: invalid training input: %s", e.Reason)
}

// Is は ErrInvalidTrainingInput との比較を可能にします。
func (e *TrainingInputError) Is(target error) bool { return target == ErrInvalidTrainingInput }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *TrainingInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("reason", e.Reason).
		Str("type", "TrainingInputError")
}

// NewTrainingInputError は新しいTrainingInputErrorを作成し、スタックトレースを付与します。
func NewTrainingInputError(reason string) error {
	err := &TrainingInputError{Reason: reason}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("ftrl: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Infを検出します。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("ftrl: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Mark はエラーに種類の印を付けます。errors.Is(err, kind) が真になります。
func Mark(err error, kind error) error {
	return errors.Mark(err, kind)
}
