package svn

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultBinary is the svn client executable used unless overridden.
	DefaultBinary = "svn"

	// DefaultCreateRepoBinary provisions new repositories on the host.
	DefaultCreateRepoBinary = "createrepo"

	// DefaultTimeout bounds every single backend invocation.
	DefaultTimeout = 30 * time.Second
)

// ClientOption defines a functional option for configuring Client.
type ClientOption func(*ClientOptions) error

// ClientOptions contains optional configuration for the backend adapter.
type ClientOptions struct {
	// binary is the svn client executable.
	binary string

	// createRepoBinary is the executable that provisions a new repository.
	createRepoBinary string

	// timeout bounds every single backend invocation.
	timeout time.Duration

	// runner executes backend processes.
	runner Runner
}

func NewClientOptions(opts ...ClientOption) (ClientOptions, error) {
	// Default options.
	o := ClientOptions{
		binary:           DefaultBinary,
		createRepoBinary: DefaultCreateRepoBinary,
		timeout:          DefaultTimeout,
		runner:           execRunner{},
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return ClientOptions{}, err
		}
	}

	return o, nil
}

// WithBinary sets the svn client executable.
func WithBinary(binary string) ClientOption {
	return func(o *ClientOptions) error {
		binary = strings.TrimSpace(binary)
		if binary == "" {
			return fmt.Errorf("binary cannot be empty")
		}
		o.binary = binary
		return nil
	}
}

// WithCreateRepoBinary sets the executable that provisions a new repository.
func WithCreateRepoBinary(binary string) ClientOption {
	return func(o *ClientOptions) error {
		binary = strings.TrimSpace(binary)
		if binary == "" {
			return fmt.Errorf("create-repo binary cannot be empty")
		}
		o.createRepoBinary = binary
		return nil
	}
}

// WithTimeout sets the per-invocation timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *ClientOptions) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

// WithRunner replaces the process runner, used by tests.
func WithRunner(runner Runner) ClientOption {
	return func(o *ClientOptions) error {
		if runner == nil {
			return fmt.Errorf("runner cannot be nil")
		}
		o.runner = runner
		return nil
	}
}
