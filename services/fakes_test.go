package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"cradi/config"
	"cradi/logger"
	"cradi/model"
	"cradi/notify"
	"cradi/repository"
)

var errBoom = errors.New("boom")

type recordingPusher struct {
	mu       sync.Mutex
	messages []notify.PushMessage
	err      error
}

func (p *recordingPusher) Push(ctx context.Context, msg notify.PushMessage) (*notify.PushResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	if p.err != nil {
		return nil, p.err
	}
	return &notify.PushResult{MessageID: "m1", SuccessCount: 1}, nil
}

func (p *recordingPusher) calls() []notify.PushMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.PushMessage(nil), p.messages...)
}

type recordingSMS struct {
	mu       sync.Mutex
	messages []notify.SMSMessage
	err      error
}

func (s *recordingSMS) SendSMS(ctx context.Context, msg notify.SMSMessage) (*notify.SMSResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	if s.err != nil {
		return nil, s.err
	}
	return &notify.SMSResult{Accepted: len(msg.To)}, nil
}

func (s *recordingSMS) calls() []notify.SMSMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.SMSMessage(nil), s.messages...)
}

type stubSigner struct {
	err error
}

func (s stubSigner) SignedURL(ctx context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://images.example.com/" + key + "?sig=1", nil
}

// faultyStore overrides selected MemoryStore calls with failures.
type faultyStore struct {
	*repository.MemoryStore
	transitionErrs map[string]error
	peersErr       error
	authoritiesErr error
	countErr       error
}

func (s *faultyStore) TransitionStatus(ctx context.Context, id string, t repository.Transition) error {
	if err, ok := s.transitionErrs[id]; ok {
		return err
	}
	return s.MemoryStore.TransitionStatus(ctx, id, t)
}

func (s *faultyStore) ListPeers(ctx context.Context, ward, lga, excludeUserID string, limit int) ([]model.User, error) {
	if s.peersErr != nil {
		return nil, s.peersErr
	}
	return s.MemoryStore.ListPeers(ctx, ward, lga, excludeUserID, limit)
}

func (s *faultyStore) ListAuthorities(ctx context.Context, state, lga string) ([]model.AuthorityContact, error) {
	if s.authoritiesErr != nil {
		return nil, s.authoritiesErr
	}
	return s.MemoryStore.ListAuthorities(ctx, state, lga)
}

func (s *faultyStore) CountReports(ctx context.Context, status model.ReportStatus) (int64, error) {
	if s.countErr != nil && status == model.StatusEscalated {
		return 0, s.countErr
	}
	return s.MemoryStore.CountReports(ctx, status)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testDeps(store repository.Store, pusher notify.Pusher, sms notify.SMSSender) Deps {
	return Deps{
		Store:      store,
		Pusher:     pusher,
		SMS:        sms,
		SMSEnabled: true,
		Workflow: config.WorkflowConfig{
			EscalationTimeout:   30 * time.Minute,
			EscalationBatchSize: 100,
			PeerLimit:           50,
			StatsSampleSize:     100,
		},
		Log: logger.Discard(),
		Now: func() time.Time { return fixedNow },
	}
}
