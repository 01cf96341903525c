package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueueReporter map[string][2]int

func (f fakeQueueReporter) QueueLens() map[string][2]int {
	return f
}

func TestHandleHealthzReportsQueueLens(t *testing.T) {
	s := New(":0", fakeQueueReporter{"blocks": {3, 500}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handleHealthz(rec, req, httprouter.Params{})

	assert.Equal(t, http.StatusOK, rec.Code)

	var body healthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	require.Contains(t, body.Queues, "blocks")
	assert.Equal(t, 3, body.Queues["blocks"].Depth)
	assert.Equal(t, 500, body.Queues["blocks"].Capacity)
}

func TestHandleHealthzWithNilReporter(t *testing.T) {
	s := New(":0", nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handleHealthz(rec, req, httprouter.Params{})

	var body healthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Queues)
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	s := New(":0", nil)
	assert.NotPanics(t, func() {
		s.Stop()
	})
}
