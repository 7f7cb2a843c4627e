package handlers

import (
	"fmt"
	"sync"

	"github.com/sttts/kmanage/pkg/workload"
)

// Registry maps workload kinds to resource handlers
type Registry struct {
	handlers map[workload.Kind]ResourceHandler
	mutex    sync.RWMutex
}

// NewRegistry creates a new handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[workload.Kind]ResourceHandler),
	}
}

// Register registers a handler for its kind
func (r *Registry) Register(handler ResourceHandler) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.handlers[handler.Kind()] = handler
}

// Get returns the handler for a specific kind
func (r *Registry) Get(kind workload.Kind) (ResourceHandler, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	handler, exists := r.handlers[kind]
	if !exists {
		return nil, fmt.Errorf("no handler registered for kind %q", kind)
	}

	return handler, nil
}

// Has checks if a handler is registered for a kind
func (r *Registry) Has(kind workload.Kind) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.handlers[kind]
	return exists
}

// Global registry instance
var globalRegistry = NewDefaultRegistry()

// NewDefaultRegistry returns a registry with pod and deployment handlers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPodHandler())
	r.Register(NewDeploymentHandler())
	return r
}

// Get returns a handler from the global registry
func Get(kind workload.Kind) (ResourceHandler, error) {
	return globalRegistry.Get(kind)
}

// Has checks if a handler is registered in the global registry
func Has(kind workload.Kind) bool {
	return globalRegistry.Has(kind)
}
