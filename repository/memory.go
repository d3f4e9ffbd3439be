package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cradi/model"
)

// MemoryStore is an in-process Store for local runs and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	reports     map[string]model.Report
	users       map[string]model.User
	authorities map[string]model.AuthorityContact
	snapshots   []model.StatisticsSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports:     make(map[string]model.Report),
		users:       make(map[string]model.User),
		authorities: make(map[string]model.AuthorityContact),
	}
}

func (s *MemoryStore) PutReport(report model.Report) model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	s.reports[report.ID] = report
	return report
}

func (s *MemoryStore) PutUser(user model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[user.ID] = user
	return user
}

func (s *MemoryStore) PutAuthority(contact model.AuthorityContact) model.AuthorityContact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	s.authorities[contact.ID] = contact
	return contact
}

// Report returns a copy of the stored report.
func (s *MemoryStore) Report(id string) (model.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	return report, ok
}

func (s *MemoryStore) Snapshots() []model.StatisticsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.StatisticsSnapshot(nil), s.snapshots...)
}

func (s *MemoryStore) ListOverduePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reports []model.Report
	for _, report := range s.reports {
		if report.Status == model.StatusPending && report.SubmittedAt.Before(cutoff) {
			reports = append(reports, report)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].SubmittedAt.Before(reports[j].SubmittedAt)
	})
	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

func (s *MemoryStore) TransitionStatus(ctx context.Context, id string, t Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	if report.Status != t.From {
		return ErrStatusConflict
	}

	report.Status = t.To
	if t.EscalatedAt != nil {
		at := *t.EscalatedAt
		report.EscalatedAt = &at
	}
	if t.EscalationReason != "" {
		report.EscalationReason = t.EscalationReason
	}
	s.reports[id] = report
	return nil
}

func (s *MemoryStore) CountReports(ctx context.Context, status model.ReportStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, report := range s.reports {
		if status == "" || report.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ListRecentReports(ctx context.Context, limit int) ([]model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]model.Report, 0, len(s.reports))
	for _, report := range s.reports {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].SubmittedAt.After(reports[j].SubmittedAt)
	})
	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

func (s *MemoryStore) ListPeers(ctx context.Context, ward, lga, excludeUserID string, limit int) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []model.User
	for _, user := range s.users {
		if user.Ward == ward && user.LGA == lga && user.ID != excludeUserID {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (s *MemoryStore) PushTokens(ctx context.Context, userIDs []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if user, ok := s.users[id]; ok && user.FCMToken != "" {
			tokens[id] = user.FCMToken
		}
	}
	return tokens, nil
}

func (s *MemoryStore) ListAuthorities(ctx context.Context, state, lga string) ([]model.AuthorityContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var contacts []model.AuthorityContact
	for _, contact := range s.authorities {
		if contact.State == state && contact.LGA == lga {
			contacts = append(contacts, contact)
		}
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].ID < contacts[j].ID })
	return contacts, nil
}

func (s *MemoryStore) CreateSnapshot(ctx context.Context, snapshot *model.StatisticsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	s.snapshots = append(s.snapshots, *snapshot)
	return nil
}

func (s *MemoryStore) LatestSnapshot(ctx context.Context) (*model.StatisticsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return nil, ErrSnapshotNotFound
	}
	latest := s.snapshots[0]
	for _, snapshot := range s.snapshots[1:] {
		if !snapshot.Timestamp.Before(latest.Timestamp) {
			latest = snapshot
		}
	}
	return &latest, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
