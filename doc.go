// Package ftrl is an online binary classification library for Go built around
// the FTRL-Proximal algorithm and the hashing trick.
//
// Input is a column-oriented frame of bool, int64, float64 and string
// columns. Every cell is hashed together with its column name into one of d
// bins, so no vocabulary or one-hot encoding is needed and unseen categories
// at prediction time are handled for free.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/ftrl/core/frame"
//	    "github.com/YuminosukeSato/ftrl/sklearn/ftrl"
//	)
//
//	func main() {
//	    X := frame.MustNew(
//	        frame.Strings("site", "news", "shop", "shop", "news"),
//	        frame.Ints("hour", 9, 21, 22, 10),
//	    )
//	    y := frame.MustNew(frame.Bools("click", false, true, true, false))
//
//	    clf := ftrl.MustNew(ftrl.WithAlpha(0.1), ftrl.WithD(1<<20))
//	    if err := clf.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    proba, err := clf.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(proba.At(0, 0))
//	}
//
// # Packages
//
//   - sklearn/ftrl: the FTRL-Proximal learner, feature hashing and snapshots
//   - core/frame: typed columns with missing values, CSV reading and writing
//   - core/model: estimator state, learner interfaces and mini batch streams
//   - core/parallel: chunked parallel execution used for prediction
//   - metrics: AUC, log loss and accuracy for binary classifiers
//   - pkg/errors: error types, warnings and numerical checks
//   - pkg/log: structured logging on top of zerolog
//
// The cmd/ftrl command trains and applies models on CSV files.
package ftrl
