package event

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradi/config"
	"cradi/logger"
	"cradi/model"
	"cradi/notify"
	"cradi/repository"
	"cradi/services"
)

type countingSMS struct {
	sent []notify.SMSMessage
}

func (s *countingSMS) SendSMS(ctx context.Context, msg notify.SMSMessage) (*notify.SMSResult, error) {
	s.sent = append(s.sent, msg)
	return &notify.SMSResult{Accepted: len(msg.To)}, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *repository.MemoryStore, *countingSMS) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	sms := &countingSMS{}
	log := logger.Discard()
	deps := services.Deps{
		Store:      store,
		Pusher:     notify.NewLogPusher(log),
		SMS:        sms,
		SMSEnabled: true,
		Workflow:   config.WorkflowConfig{EscalationTimeout: 30 * time.Minute, EscalationBatchSize: 100, PeerLimit: 50},
		Log:        log,
	}

	router := gin.New()
	EventController(router, services.NewIntakeNotifier(deps), services.NewAlertDistributor(deps))
	return router, store, sms
}

func post(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func reportBody(status string) map[string]interface{} {
	return map[string]interface{}{
		"id":          "rep-1",
		"userId":      "reporter",
		"hazardType":  "Flood",
		"severity":    "high",
		"description": "Water rising",
		"status":      status,
		"submittedAt": "2024-06-01T12:00:00Z",
		"ward":        "Ward 3",
		"lga":         "Port Harcourt",
		"state":       "Rivers",
	}
}

func TestReportCreated_NotifiesPeers(t *testing.T) {
	router, store, _ := setupRouter(t)
	store.PutUser(model.User{ID: "p1", Ward: "Ward 3", LGA: "Port Harcourt"})

	w := post(router, "/events/reports/created", gin.H{"report": reportBody("pending")})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                  `json:"success"`
		Result  services.IntakeResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"p1"}, resp.Result.Peers)
	assert.True(t, resp.Result.Push.Sent)
}

func TestReportCreated_InvalidPayload(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := post(router, "/events/reports/created", gin.H{"report": gin.H{"id": "rep-1"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid input")
}

func TestReportUpdated_TransitionSendsAlert(t *testing.T) {
	router, store, sms := setupRouter(t)
	store.PutAuthority(model.AuthorityContact{ID: "a1", State: "Rivers", LGA: "Port Harcourt", Phone: "+2348000000001"})

	w := post(router, "/events/reports/updated", gin.H{
		"report":   reportBody("validated"),
		"previous": reportBody("pending"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result services.AlertResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Result.Distributed)
	assert.True(t, resp.Result.SMS.Sent)
	assert.True(t, resp.Result.Push.Sent)
	assert.Len(t, sms.sent, 1)
}

func TestReportUpdated_AlreadyValidatedIsSkipped(t *testing.T) {
	router, store, sms := setupRouter(t)
	store.PutAuthority(model.AuthorityContact{ID: "a1", State: "Rivers", LGA: "Port Harcourt", Phone: "+2348000000001"})

	w := post(router, "/events/reports/updated", gin.H{
		"report":   reportBody("validated"),
		"previous": reportBody("validated"),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sms.sent)
}

func TestReportUpdated_UnlistedStatusIsSkipped(t *testing.T) {
	router, store, sms := setupRouter(t)
	store.PutAuthority(model.AuthorityContact{ID: "a1", State: "Rivers", LGA: "Port Harcourt", Phone: "+2348000000001"})

	w := post(router, "/events/reports/updated", gin.H{
		"report":   reportBody("under_review"),
		"previous": reportBody("submitted"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result services.AlertResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Result.Distributed)
	assert.False(t, resp.Result.SMS.Attempted)
	assert.False(t, resp.Result.Push.Attempted)
	assert.Empty(t, sms.sent)
}

func TestReportCreated_UnlistedStatusStillNotifiesPeers(t *testing.T) {
	router, store, _ := setupRouter(t)
	store.PutUser(model.User{ID: "p1", Ward: "Ward 3", LGA: "Port Harcourt"})

	w := post(router, "/events/reports/created", gin.H{"report": reportBody("submitted")})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result services.IntakeResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"p1"}, resp.Result.Peers)
	assert.True(t, resp.Result.Push.Sent)
}

func TestReportUpdated_MissingStatus(t *testing.T) {
	router, _, _ := setupRouter(t)
	body := reportBody("")
	delete(body, "status")

	w := post(router, "/events/reports/updated", gin.H{"report": body})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
