package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cradi/config"
	"cradi/model"
)

// setupTestFirestore connects to the emulator on FIRESTORE_EMULATOR_HOST
// and gives each test its own collections.
func setupTestFirestore(t *testing.T) (*FirestoreStore, *firestore.Client) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("Firestore emulator not available for testing: FIRESTORE_EMULATOR_HOST is unset")
	}

	client, err := firestore.NewClient(context.Background(), "cradi-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	suffix := uuid.NewString()[:8]
	cols := config.CollectionConfig{
		Reports:     "reports_" + suffix,
		Users:       "users_" + suffix,
		Authorities: "authorities_" + suffix,
		Statistics:  "statistics_" + suffix,
	}
	return NewFirestoreStore(client, cols), client
}

func putFirestoreReport(t *testing.T, client *firestore.Client, col string, report model.Report) {
	_, err := client.Collection(col).Doc(report.ID).Set(context.Background(), report)
	require.NoError(t, err)
}

func TestFirestoreStore_TransitionStatus(t *testing.T) {
	store, client := setupTestFirestore(t)
	ctx := context.Background()
	submitted := time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)
	escalatedAt := submitted.Add(time.Hour)

	putFirestoreReport(t, client, store.cols.Reports, model.Report{ID: "pending", Status: model.StatusPending, SubmittedAt: submitted})
	putFirestoreReport(t, client, store.cols.Reports, model.Report{ID: "validated", Status: model.StatusValidated, SubmittedAt: submitted})

	transition := Transition{
		From:             model.StatusPending,
		To:               model.StatusEscalated,
		EscalatedAt:      &escalatedAt,
		EscalationReason: "Peer verification timeout (30m)",
	}

	t.Run("success", func(t *testing.T) {
		require.NoError(t, store.TransitionStatus(ctx, "pending", transition))

		doc, err := client.Collection(store.cols.Reports).Doc("pending").Get(ctx)
		require.NoError(t, err)
		var report model.Report
		require.NoError(t, doc.DataTo(&report))
		assert.Equal(t, model.StatusEscalated, report.Status)
		require.NotNil(t, report.EscalatedAt)
		assert.True(t, report.EscalatedAt.Equal(escalatedAt))
		assert.Equal(t, "Peer verification timeout (30m)", report.EscalationReason)
	})

	t.Run("already escalated is a conflict", func(t *testing.T) {
		err := store.TransitionStatus(ctx, "pending", transition)
		assert.ErrorIs(t, err, ErrStatusConflict)
	})

	t.Run("validated report is left alone", func(t *testing.T) {
		err := store.TransitionStatus(ctx, "validated", transition)
		assert.ErrorIs(t, err, ErrStatusConflict)

		doc, err := client.Collection(store.cols.Reports).Doc("validated").Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, string(model.StatusValidated), doc.Data()["status"])
		assert.Nil(t, doc.Data()["escalatedAt"])
	})

	t.Run("not found", func(t *testing.T) {
		err := store.TransitionStatus(ctx, "missing", transition)
		assert.ErrorIs(t, err, ErrReportNotFound)
	})
}

func TestFirestoreStore_ListOverduePending(t *testing.T) {
	store, client := setupTestFirestore(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	putFirestoreReport(t, client, store.cols.Reports, model.Report{ID: "newer", Status: model.StatusPending, SubmittedAt: now.Add(-40 * time.Minute)})
	putFirestoreReport(t, client, store.cols.Reports, model.Report{ID: "oldest", Status: model.StatusPending, SubmittedAt: now.Add(-2 * time.Hour)})
	putFirestoreReport(t, client, store.cols.Reports, model.Report{ID: "fresh", Status: model.StatusPending, SubmittedAt: now.Add(-5 * time.Minute)})
	putFirestoreReport(t, client, store.cols.Reports, model.Report{ID: "done", Status: model.StatusValidated, SubmittedAt: now.Add(-3 * time.Hour)})

	reports, err := store.ListOverduePending(ctx, now.Add(-30*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "oldest", reports[0].ID)
	assert.Equal(t, "newer", reports[1].ID)

	reports, err = store.ListOverduePending(ctx, now.Add(-30*time.Minute), 1)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "oldest", reports[0].ID)
}
