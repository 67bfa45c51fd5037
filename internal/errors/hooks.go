// Package errors - error hook registration
package errors

import (
	"sync"
)

// ErrorHook is a callback invoked for every enhanced error built while any
// hook is registered. Hooks must be fast and must not build enhanced errors
// themselves (that would recurse).
type ErrorHook func(ee *EnhancedError)

var (
	hooksMu    sync.RWMutex
	errorHooks []ErrorHook
)

// AddErrorHook registers a hook to be called for each built error
func AddErrorHook(hook ErrorHook) {
	if hook == nil {
		return
	}
	hooksMu.Lock()
	errorHooks = append(errorHooks, hook)
	hooksMu.Unlock()
	updateReportingState()
}

// ClearErrorHooks removes all registered hooks
func ClearErrorHooks() {
	hooksMu.Lock()
	errorHooks = nil
	hooksMu.Unlock()
	updateReportingState()
}

// hasErrorHooks reports whether any hook is registered
func hasErrorHooks() bool {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return len(errorHooks) > 0
}

// runErrorHooks invokes all registered hooks for the given error
func runErrorHooks(ee *EnhancedError) {
	hooksMu.RLock()
	hooks := errorHooks
	hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ee)
	}
}
