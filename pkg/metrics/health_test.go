package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetHealth(t *testing.T) {
	t.Helper()
	health = &healthRegistry{
		components: make(map[Component]componentStatus),
		startTime:  health.startTime,
	}
}

func TestGetHealthAllComponentsHealthy(t *testing.T) {
	resetHealth(t)
	RegisterComponent(ComponentIndex, true, "")
	RegisterComponent(ComponentPages, true, "")
	RegisterComponent(ComponentCatalog, true, "")

	h := GetHealth()
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "healthy", h.Components["index"])
	assert.Equal(t, "healthy", h.Components["pages"])
	assert.Equal(t, "healthy", h.Components["catalog"])
}

func TestGetHealthOneComponentUnhealthy(t *testing.T) {
	resetHealth(t)
	RegisterComponent(ComponentIndex, true, "")
	RegisterComponent(ComponentPages, false, "migration queue full")
	RegisterComponent(ComponentCatalog, true, "")

	h := GetHealth()
	assert.Equal(t, "unhealthy", h.Status)
	assert.Equal(t, "unhealthy: migration queue full", h.Components["pages"])
}

func TestGetReadinessWaitsForAllThreeComponents(t *testing.T) {
	resetHealth(t)
	RegisterComponent(ComponentIndex, true, "")
	RegisterComponent(ComponentPages, true, "")

	r := GetReadiness()
	assert.Equal(t, "not_ready", r.Status)
	assert.Equal(t, "not registered", r.Components["catalog"])

	RegisterComponent(ComponentCatalog, true, "")
	r = GetReadiness()
	assert.Equal(t, "ready", r.Status)
}

func TestGetReadinessNotReadyWhenRegisteredUnhealthy(t *testing.T) {
	resetHealth(t)
	RegisterComponent(ComponentIndex, false, "index rebuild in progress")
	RegisterComponent(ComponentPages, true, "")
	RegisterComponent(ComponentCatalog, true, "")

	r := GetReadiness()
	assert.Equal(t, "not_ready", r.Status)
	assert.Contains(t, r.Components["index"], "not ready")
}

func TestRegisterComponentOverwritesPriorStatus(t *testing.T) {
	resetHealth(t)
	RegisterComponent(ComponentPages, false, "broken")
	RegisterComponent(ComponentPages, true, "")

	h := GetHealth()
	assert.Equal(t, "healthy", h.Components["pages"])
}

func TestSetVersionReflectedInHealthAndReadiness(t *testing.T) {
	resetHealth(t)
	SetVersion("1.2.3")
	defer SetVersion("")

	RegisterComponent(ComponentIndex, true, "")
	RegisterComponent(ComponentPages, true, "")
	RegisterComponent(ComponentCatalog, true, "")

	assert.Equal(t, "1.2.3", GetHealth().Version)
	assert.Equal(t, "1.2.3", GetReadiness().Version)
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	resetHealth(t)
	RegisterComponent(ComponentIndex, false, "down")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	HealthHandler()(w, req)
	assert.Equal(t, 503, w.Code)
}

func TestReadyHandlerReturnsOKOnceAllComponentsReady(t *testing.T) {
	resetHealth(t)
	RegisterComponent(ComponentIndex, true, "")
	RegisterComponent(ComponentPages, true, "")
	RegisterComponent(ComponentCatalog, true, "")

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()
	ReadyHandler()(w, req)
	assert.Equal(t, 200, w.Code)
}

func TestLivenessHandlerAlwaysOK(t *testing.T) {
	req := httptest.NewRequest("GET", "/live", nil)
	w := httptest.NewRecorder()
	LivenessHandler()(w, req)
	require.Equal(t, 200, w.Code)
}
