// Package debughttp exposes in-process async stack state over HTTP for
// same-process tooling: health checks, crash handlers and humans with curl.
// Responses are best-effort snapshots; chains may mutate while they are
// being read.
package debughttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"unsafe"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/tracekit/asyncstack/pkg/asyncstack"
	"github.com/tracekit/asyncstack/pkg/asyncstack/stacktrace"
)

type Handler struct {
	logger   log.Logger
	maxDepth int
}

func NewHandler(logger log.Logger) *Handler {
	return &Handler{
		logger:   logger,
		maxDepth: stacktrace.DefaultMaxDepth,
	}
}

// RegisterRoutes attaches the debug endpoints to r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/debug/asyncstack/leaves", h.SuspendedLeaves).Methods("GET")
	r.HandleFunc("/debug/asyncstack/roots", h.GoroutineRoots).Methods("GET")
}

type leafResponse struct {
	FrameTracking bool   `json:"frame_tracking_enabled"`
	DebugTracking bool   `json:"debug_tracking_compiled_in"`
	Leaves        []leaf `json:"leaves"`
}

type leaf struct {
	Frame string             `json:"frame"`
	Stack []stacktrace.Entry `json:"stack"`
}

// SuspendedLeaves reports every currently registered suspended leaf frame
// with its symbolized logical stack. The list is empty unless the process
// was built with the asyncstackdebug tag.
func (h *Handler) SuspendedLeaves(w http.ResponseWriter, req *http.Request) {
	resp := leafResponse{
		FrameTracking: asyncstack.FrameTrackingEnabled(),
		DebugTracking: asyncstack.DebugTracking,
		Leaves:        []leaf{},
	}
	asyncstack.SweepSuspendedLeafFrames(func(f *asyncstack.Frame) {
		resp.Leaves = append(resp.Leaves, leaf{
			Frame: fmt.Sprintf("%#x", uintptr(unsafe.Pointer(f))),
			Stack: stacktrace.Symbolize(stacktrace.WalkFrame(f, h.maxDepth)),
		})
	})
	h.writeJSON(w, resp)
}

type rootsResponse struct {
	Roots []goroutineRoot `json:"roots"`
}

type goroutineRoot struct {
	GoroutineID int64              `json:"goroutine_id"`
	Stack       []stacktrace.Entry `json:"stack"`
}

// GoroutineRoots reports, per goroutine with an active root, the symbolized
// logical stack anchored there.
func (h *Handler) GoroutineRoots(w http.ResponseWriter, req *http.Request) {
	resp := rootsResponse{Roots: []goroutineRoot{}}
	asyncstack.VisitGoroutineRoots(func(gid int64, root *asyncstack.Root) bool {
		resp.Roots = append(resp.Roots, goroutineRoot{
			GoroutineID: gid,
			Stack:       stacktrace.Symbolize(stacktrace.WalkRoot(root, h.maxDepth)),
		})
		return true
	})
	h.writeJSON(w, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// The status line is already sent; all we can do is log.
		level.Error(h.logger).Log("msg", "failed to write async stack debug response", "err", errors.Wrap(err, "encoding response"))
	}
}
