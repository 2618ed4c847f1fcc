package types

import "fmt"

// Error taxonomy. Every failure in the workflow is classified as one of these
// or propagated unclassified; callers log once at the boundary and exit.

// ConfigError reports a missing or invalid configuration value, including a
// missing credential or a bad corpus directory.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// StoreUnavailableError reports a failure to reach the vector store or to
// complete a collection-level operation against it.
type StoreUnavailableError struct {
	Endpoint string
	Err      error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("vector store unavailable at %s: %v", e.Endpoint, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// DocumentLoadError reports a failure reading the corpus.
type DocumentLoadError struct {
	Dir string
	Err error
}

func (e *DocumentLoadError) Error() string {
	return fmt.Sprintf("failed to load documents from %s: %v", e.Dir, e.Err)
}

func (e *DocumentLoadError) Unwrap() error { return e.Err }
