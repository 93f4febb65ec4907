//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Mutation edits a request body that has been flattened to a JSON map.
type Mutation func(m map[string]any)

// RequestMap round-trips v through JSON so table cases can break individual
// fields without declaring a malformed struct for each one.
func RequestMap(t *testing.T, v any, muts ...Mutation) map[string]any {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err, "marshal request body")

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m), "request body must be a JSON object")

	for _, mut := range muts {
		if mut != nil {
			mut(m)
		}
	}
	return m
}

func With(key string, value any) Mutation {
	return func(m map[string]any) {
		m[key] = value
	}
}

func Without(keys ...string) Mutation {
	return func(m map[string]any) {
		for _, k := range keys {
			delete(m, k)
		}
	}
}
