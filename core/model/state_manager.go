// Package model provides state management and shared interfaces for learners.
package model

import (
	"sync"

	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

// EstimatorState is the lifecycle stage of a learner.
type EstimatorState int

const (
	// Untrained means no model arrays exist.
	Untrained EstimatorState = iota
	// Training means a fit is in progress.
	Training
	// Trained means model arrays exist and predictions are possible.
	Trained
)

func (s EstimatorState) String() string {
	switch s {
	case Untrained:
		return "untrained"
	case Training:
		return "training"
	case Trained:
		return "trained"
	default:
		return "unknown"
	}
}

// StateManager manages the lifecycle state of a model in a thread-safe manner.
type StateManager struct {
	State EstimatorState // Public for gob encoding
	mu    sync.RWMutex

	// Metadata recorded by the last fit - Public for gob encoding
	NFeatures int
	NSamples  int
}

// NewStateManager creates a new StateManager in the Untrained state.
func NewStateManager() *StateManager {
	return &StateManager{State: Untrained}
}

// IsFitted reports whether the model is Trained.
func (s *StateManager) IsFitted() bool {
	return s.Get() == Trained
}

// Get returns the current state.
func (s *StateManager) Get() EstimatorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.State
}

// BeginTraining moves to Training.
func (s *StateManager) BeginTraining() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = Training
}

// SetFitted marks the model as Trained.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = Trained
}

// Reset returns to Untrained and clears metadata.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = Untrained
	s.NFeatures = 0
	s.NSamples = 0
}

// SetDimensions records the number of features and the cumulative number of samples.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// RequireFitted returns a NotFittedError if the model is not Trained.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
