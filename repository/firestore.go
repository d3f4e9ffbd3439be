package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cradi/config"
	"cradi/model"
)

type FirestoreStore struct {
	client *firestore.Client
	cols   config.CollectionConfig
}

func NewFirestoreStore(client *firestore.Client, cols config.CollectionConfig) *FirestoreStore {
	return &FirestoreStore{client: client, cols: cols}
}

func (s *FirestoreStore) reports() *firestore.CollectionRef {
	return s.client.Collection(s.cols.Reports)
}

func (s *FirestoreStore) ListOverduePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Report, error) {
	iter := s.reports().
		Where("status", "==", string(model.StatusPending)).
		Where("submittedAt", "<", cutoff).
		OrderBy("submittedAt", firestore.Asc).
		Limit(limit).
		Documents(ctx)
	return collectReports(iter)
}

func (s *FirestoreStore) TransitionStatus(ctx context.Context, id string, t Transition) error {
	ref := s.reports().Doc(id)

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrReportNotFound
			}
			return fmt.Errorf("failed to get report %s: %w", id, err)
		}

		current, _ := doc.Data()["status"].(string)
		if model.ReportStatus(current) != t.From {
			return fmt.Errorf("%w: report %s is %q, expected %q", ErrStatusConflict, id, current, t.From)
		}

		updates := []firestore.Update{{Path: "status", Value: string(t.To)}}
		if t.EscalatedAt != nil {
			updates = append(updates, firestore.Update{Path: "escalatedAt", Value: *t.EscalatedAt})
		}
		if t.EscalationReason != "" {
			updates = append(updates, firestore.Update{Path: "escalationReason", Value: t.EscalationReason})
		}
		return tx.Update(ref, updates)
	})
}

func (s *FirestoreStore) CountReports(ctx context.Context, st model.ReportStatus) (int64, error) {
	query := s.reports().Query
	if st != "" {
		query = query.Where("status", "==", string(st))
	}

	results, err := query.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}

	value, ok := results["total"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result type %T", results["total"])
	}
	return value.GetIntegerValue(), nil
}

func (s *FirestoreStore) ListRecentReports(ctx context.Context, limit int) ([]model.Report, error) {
	iter := s.reports().
		OrderBy("submittedAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	return collectReports(iter)
}

func collectReports(iter *firestore.DocumentIterator) ([]model.Report, error) {
	defer iter.Stop()

	var reports []model.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query reports: %w", err)
		}

		var report model.Report
		if err := doc.DataTo(&report); err != nil {
			return nil, fmt.Errorf("failed to decode report %s: %w", doc.Ref.ID, err)
		}
		report.ID = doc.Ref.ID
		reports = append(reports, report)
	}
	return reports, nil
}

// ListPeers over-fetches by one so the reporter can be filtered out
// client-side without losing a slot.
func (s *FirestoreStore) ListPeers(ctx context.Context, ward, lga, excludeUserID string, limit int) ([]model.User, error) {
	iter := s.client.Collection(s.cols.Users).
		Where("ward", "==", ward).
		Where("lga", "==", lga).
		Limit(limit + 1).
		Documents(ctx)
	defer iter.Stop()

	users := make([]model.User, 0, limit)
	for len(users) < limit {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query peers: %w", err)
		}
		if doc.Ref.ID == excludeUserID {
			continue
		}

		var user model.User
		if err := doc.DataTo(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", doc.Ref.ID, err)
		}
		user.ID = doc.Ref.ID
		users = append(users, user)
	}
	return users, nil
}

func (s *FirestoreStore) PushTokens(ctx context.Context, userIDs []string) (map[string]string, error) {
	tokens := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return tokens, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(userIDs))
	for _, id := range userIDs {
		refs = append(refs, s.client.Collection(s.cols.Users).Doc(id))
	}

	docs, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		token, ok := doc.Data()["fcmToken"].(string)
		if !ok || token == "" {
			continue
		}
		tokens[doc.Ref.ID] = token
	}
	return tokens, nil
}

func (s *FirestoreStore) ListAuthorities(ctx context.Context, state, lga string) ([]model.AuthorityContact, error) {
	iter := s.client.Collection(s.cols.Authorities).
		Where("state", "==", state).
		Where("lga", "==", lga).
		Documents(ctx)
	defer iter.Stop()

	var contacts []model.AuthorityContact
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query authorities: %w", err)
		}

		var contact model.AuthorityContact
		if err := doc.DataTo(&contact); err != nil {
			return nil, fmt.Errorf("failed to decode authority %s: %w", doc.Ref.ID, err)
		}
		contact.ID = doc.Ref.ID
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

// CreateSnapshot uses Create rather than Set so an existing snapshot is
// never overwritten.
func (s *FirestoreStore) CreateSnapshot(ctx context.Context, snapshot *model.StatisticsSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if _, err := s.client.Collection(s.cols.Statistics).Doc(snapshot.ID).Create(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save statistics snapshot: %w", err)
	}
	return nil
}

func (s *FirestoreStore) LatestSnapshot(ctx context.Context) (*model.StatisticsSnapshot, error) {
	iter := s.client.Collection(s.cols.Statistics).
		OrderBy("timestamp", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}

	var snapshot model.StatisticsSnapshot
	if err := doc.DataTo(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", doc.Ref.ID, err)
	}
	snapshot.ID = doc.Ref.ID
	return &snapshot, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
