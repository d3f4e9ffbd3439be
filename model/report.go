package model

import (
	"regexp"
	"strings"
	"time"
)

type ReportStatus string

const (
	StatusPending   ReportStatus = "pending"
	StatusValidated ReportStatus = "validated"
	StatusEscalated ReportStatus = "escalated"
	StatusRejected  ReportStatus = "rejected"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusValidated, StatusEscalated, StatusRejected:
		return true
	}
	return false
}

type Report struct {
	ID                string       `json:"id" firestore:"-" gorm:"column:id;primaryKey;type:varchar(64)"`
	UserID            string       `json:"userId" firestore:"userId" gorm:"column:user_id;type:varchar(255);not null;index"`
	HazardType        string       `json:"hazardType" firestore:"hazardType" gorm:"column:hazard_type;type:varchar(100);not null"`
	Severity          string       `json:"severity" firestore:"severity" gorm:"column:severity;type:varchar(50);not null"`
	Latitude          float64      `json:"latitude" firestore:"latitude" gorm:"column:latitude"`
	Longitude         float64      `json:"longitude" firestore:"longitude" gorm:"column:longitude"`
	LocationDetails   string       `json:"locationDetails" firestore:"locationDetails" gorm:"column:location_details;type:varchar(500)"`
	Description       string       `json:"description" firestore:"description" gorm:"column:description;type:text"`
	ImageIDs          []string     `json:"imageIds" firestore:"imageIds" gorm:"column:image_ids;serializer:json"`
	Status            ReportStatus `json:"status" firestore:"status" gorm:"column:status;type:varchar(50);not null;default:'pending';index"`
	IsAlert           bool         `json:"isAlert" firestore:"isAlert" gorm:"column:is_alert"`
	SubmittedAt       time.Time    `json:"submittedAt" firestore:"submittedAt" gorm:"column:submitted_at;not null;index"`
	VerificationCount int          `json:"verificationCount" firestore:"verificationCount" gorm:"column:verification_count;default:0"`
	EscalatedAt       *time.Time   `json:"escalatedAt,omitempty" firestore:"escalatedAt,omitempty" gorm:"column:escalated_at"`
	EscalationReason  string       `json:"escalationReason,omitempty" firestore:"escalationReason,omitempty" gorm:"column:escalation_reason;type:varchar(255)"`
	Ward              string       `json:"ward" firestore:"ward" gorm:"column:ward;type:varchar(100);index:idx_reports_area"`
	LGA               string       `json:"lga" firestore:"lga" gorm:"column:lga;type:varchar(100);index:idx_reports_area"`
	State             string       `json:"state" firestore:"state" gorm:"column:state;type:varchar(100)"`
}

func (Report) TableName() string {
	return "reports"
}

// Topics returns the push topics subscribed to by residents of the
// report's LGA and state.
func (r Report) Topics() []string {
	return []string{LGATopic(r.LGA), StateTopic(r.State)}
}

var whitespace = regexp.MustCompile(`\s+`)

// LGATopic lowercases an LGA name and replaces whitespace runs with "_".
func LGATopic(lga string) string {
	return strings.ToLower(whitespace.ReplaceAllString(lga, "_"))
}

func StateTopic(state string) string {
	return strings.ToLower(state)
}
