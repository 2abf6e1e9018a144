package debughttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	"github.com/petermattis/goid"
	"github.com/stretchr/testify/require"

	"github.com/tracekit/asyncstack/pkg/asyncstack"
)

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	NewHandler(log.NewNopLogger()).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec
}

func TestGoroutineRootsEndpoint(t *testing.T) {
	scope := asyncstack.ActivateRoot()
	defer scope.Release()

	var frame asyncstack.Frame
	frame.CaptureReturnAddress()
	scope.ActivateFrame(&frame)
	defer scope.DeactivateFrame(&frame)

	rec := get(t, "/debug/asyncstack/roots")

	var resp struct {
		Roots []struct {
			GoroutineID int64 `json:"goroutine_id"`
			Stack       []struct {
				Function string `json:"function"`
			} `json:"stack"`
		} `json:"roots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	gid := goid.Get()
	var found bool
	for _, root := range resp.Roots {
		if root.GoroutineID != gid {
			continue
		}
		found = true
		require.NotEmpty(t, root.Stack)
		require.Contains(t, root.Stack[0].Function, "TestGoroutineRootsEndpoint")
	}
	require.True(t, found, "current goroutine's root not reported")
}

func TestSuspendedLeavesEndpointShape(t *testing.T) {
	rec := get(t, "/debug/asyncstack/leaves")

	var resp struct {
		FrameTracking bool              `json:"frame_tracking_enabled"`
		DebugTracking bool              `json:"debug_tracking_compiled_in"`
		Leaves        []json.RawMessage `json:"leaves"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, asyncstack.DebugTracking, resp.DebugTracking)
	require.Empty(t, resp.Leaves)
}

func TestUnknownMethod(t *testing.T) {
	r := mux.NewRouter()
	NewHandler(log.NewNopLogger()).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/asyncstack/leaves", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
