//go:build asyncstackdebug

package debughttp

import (
	"encoding/json"
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/tracekit/asyncstack/pkg/asyncstack"
)

func TestSuspendedLeavesEndpointListsMarkedFrames(t *testing.T) {
	var frame asyncstack.Frame
	frame.CaptureReturnAddress()
	asyncstack.ActivateSuspendedLeaf(&frame)
	defer asyncstack.DeactivateSuspendedLeaf(&frame)

	rec := get(t, "/debug/asyncstack/leaves")

	var resp struct {
		Leaves []struct {
			Frame string `json:"frame"`
			Stack []struct {
				Function string `json:"function"`
			} `json:"stack"`
		} `json:"leaves"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Leaves, 1)
	require.Equal(t, fmt.Sprintf("%#x", uintptr(unsafe.Pointer(&frame))), resp.Leaves[0].Frame)
	require.NotEmpty(t, resp.Leaves[0].Stack)
	require.Contains(t, resp.Leaves[0].Stack[0].Function, "TestSuspendedLeavesEndpointListsMarkedFrames")
}
