package test

import (
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// ConfigLogging quiets the global logger during test runs.
func ConfigLogging() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

// CallWatcher records mock invocations. Safe for concurrent use so mocks can
// be driven from multiple goroutines.
type CallWatcher struct {
	mu            sync.Mutex
	functionCalls map[string][][]interface{}
}

func NewCallWatcher() *CallWatcher {
	return &CallWatcher{functionCalls: make(map[string][][]interface{})}
}

// GetCall looks up recorded calls by function name. Calls are keyed by the
// fully qualified name runtime reports, so a bare method name matches by
// suffix.
func (w *CallWatcher) GetCall(funcName string) [][]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	for name, calls := range w.functionCalls {
		if name == funcName || strings.HasSuffix(name, "."+funcName) {
			return calls
		}
	}
	return nil
}

func (w *CallWatcher) GetCallCount(funcName string) int {
	return len(w.GetCall(funcName))
}

func (w *CallWatcher) VerifyCount(funcName string, want int, t *testing.T) {
	t.Helper()
	if got := w.GetCallCount(funcName); got != want {
		t.Errorf("unexpected call count for %s got=%d want=%d", funcName, got, want)
	}
}

func (w *CallWatcher) AddCall(args ...interface{}) {
	pc := make([]uintptr, 15)
	n := runtime.Callers(2, pc)
	frames := runtime.CallersFrames(pc[:n])
	frame, _ := frames.Next()
	funcName := frame.Func.Name()

	w.mu.Lock()
	defer w.mu.Unlock()
	calls := w.functionCalls[funcName]
	w.functionCalls[funcName] = append(calls, args)
}
