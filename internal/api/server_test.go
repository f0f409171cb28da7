package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0Nera/cpuprobe/internal/config"
	"github.com/0Nera/cpuprobe/internal/cpuid"
	"github.com/0Nera/cpuprobe/internal/diag"
	"github.com/0Nera/cpuprobe/internal/topology"
)

func testServer() *Server {
	rep := &cpuid.Report{
		Flags:  cpuid.Flags{FPU: true, MMX: true, SSE2: true},
		Vendor: "AuthenticAMD",
		Brand:  "AMD Ryzen 7 5800X 8-Core Processor",
		L2:     cpuid.L2Cache{LineSize: 64, Assoc: 2, SizeKB: 512},
	}
	host := &topology.Host{
		ModelName:     "AMD Ryzen 7 5800X 8-Core Processor",
		LogicalCores:  16,
		PhysicalCores: 8,
		PCores:        16,
		NUMANodes:     1,
	}
	return NewServer(&config.Config{}, rep, host, diag.NewRecorder())
}

func get(t *testing.T, srv *Server, path string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	body := get(t, testServer(), "/health")
	assert.Equal(t, "ok", body["status"])
}

func TestReport(t *testing.T) {
	body := get(t, testServer(), "/api/report")

	report, ok := body["report"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "AuthenticAMD", report["vendor"])

	flags, ok := report["flags"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, flags["fpu"])
	assert.Equal(t, true, flags["mmx"])
	assert.Equal(t, false, flags["avx"])

	host, ok := body["host"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(16), host["logical_cores"])

	assert.Equal(t, "FPU MMX SSE2", body["summary"])
}

func TestDiag(t *testing.T) {
	body := get(t, testServer(), "/api/diag")
	assert.Contains(t, body, "leaves_queried")
	assert.Contains(t, body, "probe_ms")
}
