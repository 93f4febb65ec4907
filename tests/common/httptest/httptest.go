//go:build unit || e2e

package httptest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PerformRequest sends body as JSON. An empty authToken sends no
// Authorization header.
func PerformRequest(t *testing.T, router *gin.Engine, method, path string, body any, authToken string) *httptest.ResponseRecorder {
	t.Helper()
	return PerformRequestWithHeaders(t, router, method, path, body, nil, authToken)
}

// PerformRequestWithHeaders is PerformRequest plus extra headers such as
// Idempotency-Key. Headers win over the defaults it sets.
func PerformRequestWithHeaders(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string, authToken string) *httptest.ResponseRecorder {
	t.Helper()

	var payload io.Reader = http.NoBody
	base := map[string]string{}
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "encode request body")
		payload = bytes.NewReader(raw)
		base["Content-Type"] = "application/json"
	}
	if authToken != "" {
		base["Authorization"] = "Bearer " + authToken
	}
	for k, v := range headers {
		base[k] = v
	}
	return serve(router, method, path, payload, base)
}

// PerformRawRequest sends payload bytes untouched, for signed webhook deliveries.
func PerformRawRequest(t *testing.T, router *gin.Engine, method, path string, payload []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	all := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		all[k] = v
	}
	return serve(router, method, path, bytes.NewReader(payload), all)
}

// DecodeResponseBody does not stop the test on failure, so it is safe to
// call from goroutines; callers decide whether a decode error is fatal.
func DecodeResponseBody(t *testing.T, body *bytes.Buffer, target any) error {
	t.Helper()

	err := json.NewDecoder(body).Decode(target)
	assert.NoError(t, err, "decode response body")
	return err
}

func serve(router *gin.Engine, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
