package jsonpath

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/itchyny/gojq"
)

// JQStrategy evaluates jq expressions with gojq. Compiled programs are cached;
// every run is bounded by a timeout and a maximum number of outputs.
type JQStrategy struct {
	timeout      time.Duration
	maxOutputs   int
	maxCacheSize int

	mu    sync.RWMutex
	cache map[string]*gojq.Code
}

// NewJQStrategy creates a jq strategy. Zero limits mean unbounded.
func NewJQStrategy(timeout time.Duration, maxOutputs, maxCacheSize int) *JQStrategy {
	return &JQStrategy{
		timeout:      timeout,
		maxOutputs:   maxOutputs,
		maxCacheSize: maxCacheSize,
		cache:        make(map[string]*gojq.Code),
	}
}

func (js *JQStrategy) Name() string {
	return "jq"
}

// Evaluate runs path against value. Several outputs are returned as an array,
// none as nil.
func (js *JQStrategy) Evaluate(value any, path string) (any, error) {
	program := ToJQ(path)
	code, err := js.compile(program)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if js.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, js.timeout)
		defer cancel()
	}

	var outputs []any
	iter := code.RunWithContext(ctx, value)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq %q: %w", program, err)
		}
		outputs = append(outputs, v)
		if js.maxOutputs > 0 && len(outputs) > js.maxOutputs {
			return nil, fmt.Errorf("jq %q: more than %d outputs", program, js.maxOutputs)
		}
	}

	switch len(outputs) {
	case 0:
		return nil, nil
	case 1:
		return outputs[0], nil
	default:
		return outputs, nil
	}
}

func (js *JQStrategy) compile(program string) (*gojq.Code, error) {
	js.mu.RLock()
	code, ok := js.cache[program]
	js.mu.RUnlock()
	if ok {
		return code, nil
	}

	query, err := gojq.Parse(program)
	if err != nil {
		return nil, fmt.Errorf("jq parse %q: %w", program, err)
	}
	code, err = gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compile %q: %w", program, err)
	}

	js.mu.Lock()
	if js.maxCacheSize > 0 && len(js.cache) >= js.maxCacheSize {
		js.cache = make(map[string]*gojq.Code)
	}
	if js.maxCacheSize != 0 {
		js.cache[program] = code
	}
	js.mu.Unlock()
	return code, nil
}

// CacheLen returns the number of cached programs
func (js *JQStrategy) CacheLen() int {
	js.mu.RLock()
	defer js.mu.RUnlock()
	return len(js.cache)
}
