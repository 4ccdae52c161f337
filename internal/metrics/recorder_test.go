package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counts(t *testing.T) {
	p := NewPrometheus(nil)
	p.ObserveInsertion("ok", "embeddable", 100, time.Millisecond)
	p.ObserveInsertion("ok", "embeddable", 50, time.Millisecond)
	p.ObserveInsertion("write", "linkable", 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.outcomes.WithLabelValues("ok", "embeddable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.outcomes.WithLabelValues("write", "linkable")))
	assert.Equal(t, 150.0, testutil.ToFloat64(p.copiedOut))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus(nil)
	p.ObserveInsertion("ok", "linkable", 1, time.Millisecond)

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "localref_insertions_total"))
}
