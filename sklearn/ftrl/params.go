package ftrl

import (
	"fmt"
	"math"
	"sort"

	"github.com/YuminosukeSato/ftrl/pkg/errors"
	"github.com/YuminosukeSato/ftrl/pkg/log"
)

// Params are the hyperparameters of the learner.
type Params struct {
	Alpha        float64 // learning rate, > 0
	Beta         float64 // learning rate smoothing, >= 0
	Lambda1      float64 // L1 regularization, >= 0
	Lambda2      float64 // L2 regularization, >= 0
	D            int     // number of hash bins, > 0
	NEpochs      int     // passes over the training frame, >= 0
	Interactions bool    // add second-order column pairs
}

// DefaultParams returns the default hyperparameters.
func DefaultParams() Params {
	return Params{
		Alpha:        0.005,
		Beta:         1,
		Lambda1:      0,
		Lambda2:      1,
		D:            1000000,
		NEpochs:      1,
		Interactions: false,
	}
}

type paramKind int

const (
	kindFloat paramKind = iota
	kindInt
	kindBool
)

func (k paramKind) String() string {
	switch k {
	case kindFloat:
		return "a float"
	case kindInt:
		return "an integer"
	default:
		return "a boolean"
	}
}

// paramSpec is one row of the parameter schema. check returns a non-empty
// reason when the value is rejected.
type paramSpec struct {
	kind  paramKind
	check func(v float64) string
	get   func(p *Params) interface{}
	set   func(p *Params, v interface{})
}

func positive(v float64) string {
	if v > 0 {
		return ""
	}
	return "should be positive"
}

func nonNegative(v float64) string {
	if v >= 0 {
		return ""
	}
	return "cannot be negative"
}

var paramSchema = map[string]paramSpec{
	"alpha": {kindFloat, positive,
		func(p *Params) interface{} { return p.Alpha },
		func(p *Params, v interface{}) { p.Alpha = v.(float64) }},
	"beta": {kindFloat, nonNegative,
		func(p *Params) interface{} { return p.Beta },
		func(p *Params, v interface{}) { p.Beta = v.(float64) }},
	"lambda1": {kindFloat, nonNegative,
		func(p *Params) interface{} { return p.Lambda1 },
		func(p *Params, v interface{}) { p.Lambda1 = v.(float64) }},
	"lambda2": {kindFloat, nonNegative,
		func(p *Params) interface{} { return p.Lambda2 },
		func(p *Params, v interface{}) { p.Lambda2 = v.(float64) }},
	"d": {kindInt, positive,
		func(p *Params) interface{} { return p.D },
		func(p *Params, v interface{}) { p.D = v.(int) }},
	"nepochs": {kindInt, nonNegative,
		func(p *Params) interface{} { return p.NEpochs },
		func(p *Params, v interface{}) { p.NEpochs = v.(int) }},
	"interactions": {kindBool, nil,
		func(p *Params) interface{} { return p.Interactions },
		func(p *Params, v interface{}) { p.Interactions = v.(bool) }},
}

// ParamNames returns the names accepted by SetParams, sorted.
func ParamNames() []string {
	names := make([]string, 0, len(paramSchema))
	for name := range paramSchema {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// coerce converts raw to the canonical Go type of the parameter kind
// (float64, int or bool) and validates it.
func coerce(name string, raw interface{}) (interface{}, error) {
	spec, ok := paramSchema[name]
	if !ok {
		return nil, errors.NewValidationError(name, "unknown parameter", raw)
	}

	var v interface{}
	var num float64
	switch spec.kind {
	case kindFloat:
		switch x := raw.(type) {
		case float64:
			v, num = x, x
		case float32:
			v, num = float64(x), float64(x)
		case int:
			v, num = float64(x), float64(x)
		case int64:
			v, num = float64(x), float64(x)
		}
	case kindInt:
		n, isInt, fits := toInt(raw)
		if isInt && !fits {
			return nil, errors.NewValidationError(name, "out of range for int", raw)
		}
		if isInt {
			v, num = n, float64(n)
		}
	case kindBool:
		if x, ok := raw.(bool); ok {
			v = x
		}
	}
	if v == nil {
		return nil, errors.NewParamTypeError(name, spec.kind.String(), raw)
	}
	if spec.check != nil {
		if reason := spec.check(num); reason != "" {
			return nil, errors.NewValidationError(name, reason, raw)
		}
	}
	return v, nil
}

// toInt converts an integer of any width to int. fits is false when the
// value does not survive the conversion.
func toInt(raw interface{}) (n int, isInt, fits bool) {
	switch x := raw.(type) {
	case int:
		return x, true, true
	case int32:
		return int(x), true, true
	case int64:
		return int(x), true, int64(int(x)) == x
	case uint:
		return int(x), true, x <= math.MaxInt
	case uint32:
		return int(x), true, uint64(x) <= math.MaxInt
	case uint64:
		return int(x), true, x <= math.MaxInt
	}
	return 0, false, false
}

// Validate checks every field of p.
func (p Params) Validate() error {
	for _, name := range ParamNames() {
		spec := paramSchema[name]
		if _, err := coerce(name, spec.get(&p)); err != nil {
			return err
		}
	}
	return nil
}

// asMap returns p keyed by schema name.
func (p Params) asMap() map[string]interface{} {
	out := make(map[string]interface{}, len(paramSchema))
	for name, spec := range paramSchema {
		out[name] = spec.get(&p)
	}
	return out
}

// String formats p for logs.
func (p Params) String() string {
	return fmt.Sprintf("alpha=%g beta=%g lambda1=%g lambda2=%g d=%d nepochs=%d interactions=%t",
		p.Alpha, p.Beta, p.Lambda1, p.Lambda2, p.D, p.NEpochs, p.Interactions)
}

// ===========================================================================
// functional options
// ===========================================================================

type options struct {
	bulk       *Params
	individual map[string]interface{}
	order      []string

	logger           log.Logger
	cacheSize        int
	predictThreshold int
}

// Option configures a learner at construction.
type Option func(*options)

// WithParams sets all hyperparameters at once. It cannot be combined with the
// per-field options.
func WithParams(p Params) Option {
	return func(o *options) {
		cp := p
		o.bulk = &cp
	}
}

func withField(name string, v interface{}) Option {
	return func(o *options) {
		if _, seen := o.individual[name]; !seen {
			o.order = append(o.order, name)
		}
		o.individual[name] = v
	}
}

// WithAlpha sets the learning rate.
func WithAlpha(alpha float64) Option { return withField("alpha", alpha) }

// WithBeta sets the learning rate smoothing term.
func WithBeta(beta float64) Option { return withField("beta", beta) }

// WithLambda1 sets the L1 regularization strength.
func WithLambda1(lambda1 float64) Option { return withField("lambda1", lambda1) }

// WithLambda2 sets the L2 regularization strength.
func WithLambda2(lambda2 float64) Option { return withField("lambda2", lambda2) }

// WithD sets the number of hash bins.
func WithD(d int) Option { return withField("d", d) }

// WithNEpochs sets the number of training passes per Fit.
func WithNEpochs(nepochs int) Option { return withField("nepochs", nepochs) }

// WithInteractions enables second-order feature interactions.
func WithInteractions(inter bool) Option { return withField("interactions", inter) }

// WithLogger replaces the package logger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStringCacheSize bounds the string hash cache. Zero disables it.
func WithStringCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithPredictThreshold sets the row count above which Predict runs in parallel.
func WithPredictThreshold(n int) Option {
	return func(o *options) { o.predictThreshold = n }
}

// resolve turns the collected options into validated Params.
func (o *options) resolve() (Params, error) {
	if o.bulk != nil && len(o.individual) > 0 {
		return Params{}, errors.NewValidationError("params",
			"either pass all the parameters with WithParams or any of the individual parameters, but not both at the same time",
			o.order)
	}
	if o.bulk != nil {
		if err := o.bulk.Validate(); err != nil {
			return Params{}, err
		}
		return *o.bulk, nil
	}

	p := DefaultParams()
	for _, name := range o.order {
		v, err := coerce(name, o.individual[name])
		if err != nil {
			return Params{}, err
		}
		paramSchema[name].set(&p, v)
	}
	return p, nil
}

// ===========================================================================
// learner accessors
// ===========================================================================

// Params returns the current hyperparameters.
func (f *FTRL) Params() Params {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.params
}

// GetParams returns the hyperparameters keyed by name.
func (f *FTRL) GetParams() map[string]interface{} {
	return f.Params().asMap()
}

// SetParams updates the named hyperparameters. Either every entry is applied
// or, on the first invalid one, none is.
func (f *FTRL) SetParams(params map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.params
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := coerce(name, params[name])
		if err != nil {
			return err
		}
		paramSchema[name].set(&next, v)
	}
	if err := f.checkDLocked(next.D); err != nil {
		return err
	}
	f.params = next
	return nil
}

// SetAllParams replaces every hyperparameter at once.
func (f *FTRL) SetAllParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkDLocked(p.D); err != nil {
		return err
	}
	f.params = p
	return nil
}

// checkDLocked rejects a change of D while a model sized for the old D exists.
func (f *FTRL) checkDLocked(d int) error {
	if f.model != nil && d != f.params.D {
		return errors.NewValidationError("d",
			"cannot change the number of bins while a model is present, call Reset first", d)
	}
	return nil
}

func (f *FTRL) setParam(name string, v interface{}) error {
	return f.SetParams(map[string]interface{}{name: v})
}

// SetAlpha sets the learning rate.
func (f *FTRL) SetAlpha(alpha float64) error { return f.setParam("alpha", alpha) }

// SetBeta sets the learning rate smoothing term.
func (f *FTRL) SetBeta(beta float64) error { return f.setParam("beta", beta) }

// SetLambda1 sets the L1 regularization strength.
func (f *FTRL) SetLambda1(lambda1 float64) error { return f.setParam("lambda1", lambda1) }

// SetLambda2 sets the L2 regularization strength.
func (f *FTRL) SetLambda2(lambda2 float64) error { return f.setParam("lambda2", lambda2) }

// SetD sets the number of hash bins.
func (f *FTRL) SetD(d int) error { return f.setParam("d", d) }

// SetNEpochs sets the number of passes per Fit.
func (f *FTRL) SetNEpochs(nepochs int) error { return f.setParam("nepochs", nepochs) }

// SetInteractions toggles second-order interactions.
func (f *FTRL) SetInteractions(inter bool) error { return f.setParam("interactions", inter) }
