// Package ftrl implements an online binary classifier trained with the
// FTRL-proximal algorithm (McMahan et al., "Ad Click Prediction: a View from
// the Trenches") over hashed features.
//
// Every (column, value) cell of a training frame is hashed into one of D bins,
// so columns of any type (bool, int, float, string) are consumed as they are,
// without one-hot encoding or a vocabulary. With interactions enabled every
// unordered pair of columns adds one more hashed feature.
//
// # Basic Usage
//
//	clf, err := ftrl.New(ftrl.WithAlpha(0.1), ftrl.WithNEpochs(10))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := clf.Fit(X, y); err != nil { // y: one bool column
//	    log.Fatal(err)
//	}
//	proba, err := clf.Predict(Xtest) // n×1, P(y = true)
//
// # Persistence
//
// A learner can be written as a checksummed binary snapshot, optionally LZ4 or
// Zstandard compressed:
//
//	err := ftrl.SaveFile("model.ftrl", clf, ftrl.CompressionZstd)
//	clf2, err := ftrl.LoadFile("model.ftrl")
//
// FTRL also implements encoding.BinaryMarshaler, so encoding/gob and
// model.SaveModel work unchanged.
//
// # Model Access
//
// The learned state is exposed as copies: Model (z and n per bin),
// FeatureImportance (sum of |w| credited to each training column) and
// ColumnHashes. SetModel and Restore validate their input and leave the
// learner untouched on error.
package ftrl
