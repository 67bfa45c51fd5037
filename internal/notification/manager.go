package notification

import (
	"sync"

	"github.com/raolivei/canopy-go/internal/errors"
)

// ErrServiceNotInitialized is returned by the package-level helpers when no
// service has been initialized. Calling a helper outside an initialized
// scope is a wiring bug; the error propagates so the bug surfaces instead of
// the notification vanishing. Compare with errors.Is.
var ErrServiceNotInitialized = errors.Newf("notification service not initialized").
	Component("notification").
	Category(errors.CategoryState).
	Build()

var (
	instance *Service
	once     sync.Once
	mu       sync.RWMutex
)

// Initialize sets up the global notification service instance and returns
// it. Repeated calls keep the first instance.
func Initialize(config *ServiceConfig) *Service {
	once.Do(func() {
		service := NewService(config)
		mu.Lock()
		instance = service
		mu.Unlock()
	})
	return GetService()
}

// GetService returns the global notification service instance, or nil when
// none has been initialized.
func GetService() *Service {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// SetService allows setting a custom service instance (mainly for testing)
func SetService(service *Service) {
	mu.Lock()
	defer mu.Unlock()
	instance = service
}

// MustGetService returns the service instance or panics if not initialized
func MustGetService() *Service {
	service := GetService()
	if service == nil {
		panic("notification service not initialized")
	}
	return service
}

// IsInitialized checks if the notification service has been initialized
func IsInitialized() bool {
	mu.RLock()
	defer mu.RUnlock()
	return instance != nil
}

// Stop shuts down the global service instance, if any, and clears it.
// Helper calls made afterwards report ErrServiceNotInitialized.
func Stop() {
	mu.Lock()
	service := instance
	instance = nil
	mu.Unlock()

	if service != nil {
		service.Stop()
	}
}
