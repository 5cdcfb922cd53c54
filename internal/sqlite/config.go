package sqlite

import (
	"errors"
	"time"
)

// Config selects the backend and its parameters for Backend.Attach.
type Config struct {
	Backend      string `json:"backend" yaml:"backend"`
	DataDir      string `json:"data_dir" yaml:"data_dir"`
	SyncStrategy string `json:"sync_strategy" yaml:"sync_strategy"`

	// BatchSize and BatchInterval apply to SyncBatch. Zero selects the
	// defaults.
	BatchSize     int           `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	BatchInterval time.Duration `json:"batch_interval,omitempty" yaml:"batch_interval,omitempty"`
}

// BackendSQLite is the only supported backend name.
const BackendSQLite = "sqlite"

// Sync strategies control when JSONL files are rewritten.
const (
	// SyncImmediate rewrites the JSONL files after every mutation.
	SyncImmediate = "immediate"
	// SyncOnClose rewrites them once, on Flush or Detach.
	SyncOnClose = "on_close"
	// SyncBatch rewrites them after BatchSize mutations or BatchInterval
	// after the first unwritten mutation, whichever comes first.
	SyncBatch = "batch"
)

// Batch defaults.
const (
	DefaultBatchSize     = 100
	DefaultBatchInterval = 5 * time.Second
)

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrSyncStrategyUnknown  = errors.New("unknown sync strategy")
	ErrBatchSizeInvalid     = errors.New("batch size must not be negative")
	ErrBatchIntervalInvalid = errors.New("batch interval must not be negative")
)

// Validate checks that the Config is well-formed. An empty sync strategy
// means SyncImmediate.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if c.Backend != BackendSQLite {
		return ErrBackendUnknown
	}
	switch c.SyncStrategy {
	case "", SyncImmediate, SyncOnClose:
		return nil
	case SyncBatch:
		if c.BatchSize < 0 {
			return ErrBatchSizeInvalid
		}
		if c.BatchInterval < 0 {
			return ErrBatchIntervalInvalid
		}
		return nil
	default:
		return ErrSyncStrategyUnknown
	}
}

// batchSize returns BatchSize or its default.
func (c Config) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

// batchInterval returns BatchInterval or its default.
func (c Config) batchInterval() time.Duration {
	if c.BatchInterval > 0 {
		return c.BatchInterval
	}
	return DefaultBatchInterval
}
