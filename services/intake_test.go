package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradi/model"
	"cradi/repository"
)

func newReport() model.Report {
	return model.Report{
		ID:          "rep-1",
		UserID:      "reporter",
		HazardType:  "Flood",
		Severity:    "high",
		Description: "River overflowing its banks near the market",
		Status:      model.StatusPending,
		Ward:        "Ward 3",
		LGA:         "Port Harcourt",
		State:       "Rivers",
		SubmittedAt: fixedNow,
	}
}

func TestHandleCreated_NoPeers(t *testing.T) {
	store := repository.NewMemoryStore()
	store.PutUser(model.User{ID: "reporter", Ward: "Ward 3", LGA: "Port Harcourt"})
	store.PutUser(model.User{ID: "elsewhere", Ward: "Ward 9", LGA: "Port Harcourt"})
	pusher := &recordingPusher{}

	result, err := NewIntakeNotifier(testDeps(store, pusher, nil)).HandleCreated(context.Background(), newReport())
	require.NoError(t, err)

	assert.Empty(t, result.Peers)
	assert.False(t, result.Push.Attempted)
	assert.Equal(t, "No peers found to verify", result.Message)
	assert.Empty(t, pusher.calls())
}

func TestHandleCreated_NotifiesPeersOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	store.PutUser(model.User{ID: "reporter", Ward: "Ward 3", LGA: "Port Harcourt"})
	store.PutUser(model.User{ID: "p1", Ward: "Ward 3", LGA: "Port Harcourt"})
	store.PutUser(model.User{ID: "p2", Ward: "Ward 3", LGA: "Port Harcourt"})
	store.PutUser(model.User{ID: "other-lga", Ward: "Ward 3", LGA: "Obio/Akpor"})
	pusher := &recordingPusher{}

	result, err := NewIntakeNotifier(testDeps(store, pusher, nil)).HandleCreated(context.Background(), newReport())
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2"}, result.Peers)
	assert.True(t, result.Push.Sent)

	calls := pusher.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"p1", "p2"}, calls[0].UserIDs)
	assert.Empty(t, calls[0].Topics)
	assert.Equal(t, "Verify Report", calls[0].Title)
	assert.Equal(t, "🔍 Action Required: New Flood report in Ward 3 needs your verification.", calls[0].Body)
	assert.Equal(t, map[string]string{"type": "verification_request", "reportId": "rep-1"}, calls[0].Data)
}

func TestHandleCreated_RespectsPeerLimit(t *testing.T) {
	store := repository.NewMemoryStore()
	for i := 0; i < 60; i++ {
		store.PutUser(model.User{ID: fmt.Sprintf("p%02d", i), Ward: "Ward 3", LGA: "Port Harcourt"})
	}
	pusher := &recordingPusher{}

	result, err := NewIntakeNotifier(testDeps(store, pusher, nil)).HandleCreated(context.Background(), newReport())
	require.NoError(t, err)

	assert.Len(t, result.Peers, 50)
	require.Len(t, pusher.calls(), 1)
	assert.Len(t, pusher.calls()[0].UserIDs, 50)
}

func TestHandleCreated_PushFailureStillSucceeds(t *testing.T) {
	store := repository.NewMemoryStore()
	store.PutUser(model.User{ID: "p1", Ward: "Ward 3", LGA: "Port Harcourt"})
	pusher := &recordingPusher{err: errBoom}

	result, err := NewIntakeNotifier(testDeps(store, pusher, nil)).HandleCreated(context.Background(), newReport())
	require.NoError(t, err)

	assert.True(t, result.Push.Attempted)
	assert.False(t, result.Push.Sent)
	assert.Equal(t, "boom", result.Push.Error)
}

func TestHandleCreated_PeerQueryFailure(t *testing.T) {
	store := &faultyStore{MemoryStore: repository.NewMemoryStore(), peersErr: errBoom}
	pusher := &recordingPusher{}

	_, err := NewIntakeNotifier(testDeps(store, pusher, nil)).HandleCreated(context.Background(), newReport())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, pusher.calls())
}
