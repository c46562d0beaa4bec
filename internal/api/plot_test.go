package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathPlot(t *testing.T) {
	srv, eng := newTestServer(t)
	mux := srv.ServeMux()

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/path-plot", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, _ = doJSON(t, mux, http.MethodPost, "/api/inspection/start", startBody)
	defer eng.Stop()

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/path-plot", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "echarts")
}
