package backend

import (
	"context"

	"ledger/internal/amqp"
	"ledger/internal/ports"
)

// BackendResult contains the store and, when events are enabled and the
// broker was reachable, the AMQP client used to publish ledger changes.
type BackendResult struct {
	Store  ports.Store
	Events *amqp.Client
}

// Close releases the store and the AMQP client.
func (r *BackendResult) Close() error {
	var err error
	if r.Store != nil {
		err = r.Store.Close()
	}
	if r.Events != nil {
		if cerr := r.Events.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend seed directory
	DataDirectory string

	// Optional; events are disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
