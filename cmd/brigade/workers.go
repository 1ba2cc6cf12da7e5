package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/basui01/brigade/invoke"
)

// workerRegistry maps a --worker flag value to a built-in invoke.Worker.
// Real integrations supply their own worker instead of reaching for this
// registry; it exists purely so brigade's CLI has something to run out of
// the box.
var workerRegistry = map[string]invoke.Worker{
	"echo":      echoWorker,
	"uppercase": uppercaseWorker,
}

func lookupWorker(name string) (invoke.Worker, error) {
	w, ok := workerRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown worker %q (known: echo, uppercase)", name)
	}
	return w, nil
}

// echoWorker returns its input unchanged, logging that it ran.
func echoWorker(ctx context.Context, wc *invoke.WorkerContext, data json.RawMessage) (json.RawMessage, error) {
	wc.Log("echo")
	return data, nil
}

// uppercaseWorker expects a JSON string and returns it upper-cased.
func uppercaseWorker(ctx context.Context, wc *invoke.WorkerContext, data json.RawMessage) (json.RawMessage, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("expected a JSON string, got %s: %w", data, err)
	}
	wc.Log(fmt.Sprintf("uppercasing %q", s))
	return json.Marshal(strings.ToUpper(s))
}
