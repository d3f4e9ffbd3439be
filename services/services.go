package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"cradi/config"
	"cradi/metrics"
	"cradi/notify"
	"cradi/objectstore"
	"cradi/repository"
)

const (
	ComponentEscalation = "escalation"
	ComponentIntake     = "intake"
	ComponentAlert      = "alert"
	ComponentStatistics = "statistics"
)

// maxInFlight bounds concurrent per-item calls within one invocation.
const maxInFlight = 10

// Deps carries everything the workflow components share. Images and
// Metrics may be nil.
type Deps struct {
	Store      repository.Store
	Pusher     notify.Pusher
	SMS        notify.SMSSender
	SMSEnabled bool
	Images     objectstore.URLSigner
	Workflow   config.WorkflowConfig
	Log        *logrus.Logger
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// ItemFailure is one fan-out item that could not be completed.
type ItemFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// ChannelOutcome reports what happened on one notification channel.
type ChannelOutcome struct {
	Attempted  bool        `json:"attempted"`
	Sent       bool        `json:"sent"`
	Recipients int         `json:"recipients"`
	Skipped    string      `json:"skipped,omitempty"`
	Error      string      `json:"error,omitempty"`
	Detail     interface{} `json:"detail,omitempty"`
}
