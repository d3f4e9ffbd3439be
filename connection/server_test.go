package connection

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradi/config"
	"cradi/logger"
	"cradi/metrics"
	"cradi/notify"
	"cradi/repository"
	"cradi/services"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()
	m := metrics.New()
	deps := services.Deps{
		Store:  repository.NewMemoryStore(),
		Pusher: notify.NewLogPusher(log),
		Workflow: config.WorkflowConfig{
			EscalationTimeout:   30 * time.Minute,
			EscalationBatchSize: 100,
			PeerLimit:           50,
		},
		Log:     log,
		Metrics: m,
	}
	return NewRouter(NewWorkflow(deps), m, log)
}

func TestNewRouter_Health(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Api is running!")
}

func TestNewRouter_MetricsExposeWorkflowRuns(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/jobs/escalation", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `cradi_workflow_runs_total{component="escalation",outcome="success"} 1`)
	assert.Contains(t, w.Body.String(), `cradi_http_requests_total{route="/jobs/escalation",status="200"} 1`)
}

func TestOpen_MemoryStoreWithLogPusher(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.StoreMemory},
		Push:  config.PushConfig{Provider: config.PushLog},
	}

	clients, err := Open(t.Context(), cfg, logger.Discard())
	require.NoError(t, err)
	defer clients.Close()

	assert.IsType(t, &repository.MemoryStore{}, clients.Store)
	assert.IsType(t, &notify.LogPusher{}, clients.Pusher)
	assert.False(t, clients.SMSEnabled)
	assert.Nil(t, clients.Images)
	assert.Nil(t, clients.Redis)
}
