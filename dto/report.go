package dto

import (
	"time"

	"cradi/model"
)

// ReportPayload is a report document as delivered by the store's
// create/update hooks.
type ReportPayload struct {
	ID                string     `json:"id" binding:"required"`
	UserID            string     `json:"userId" binding:"required"`
	HazardType        string     `json:"hazardType" binding:"required"`
	Severity          string     `json:"severity"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	LocationDetails   string     `json:"locationDetails"`
	Description       string     `json:"description"`
	ImageIDs          []string   `json:"imageIds"`
	Status            string     `json:"status" binding:"required"`
	IsAlert           bool       `json:"isAlert"`
	SubmittedAt       time.Time  `json:"submittedAt"`
	VerificationCount int        `json:"verificationCount"`
	EscalatedAt       *time.Time `json:"escalatedAt"`
	EscalationReason  string     `json:"escalationReason"`
	Ward              string     `json:"ward"`
	LGA               string     `json:"lga"`
	State             string     `json:"state"`
}

func (p ReportPayload) ToModel() model.Report {
	return model.Report{
		ID:                p.ID,
		UserID:            p.UserID,
		HazardType:        p.HazardType,
		Severity:          p.Severity,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		LocationDetails:   p.LocationDetails,
		Description:       p.Description,
		ImageIDs:          p.ImageIDs,
		Status:            model.ReportStatus(p.Status),
		IsAlert:           p.IsAlert,
		SubmittedAt:       p.SubmittedAt,
		VerificationCount: p.VerificationCount,
		EscalatedAt:       p.EscalatedAt,
		EscalationReason:  p.EscalationReason,
		Ward:              p.Ward,
		LGA:               p.LGA,
		State:             p.State,
	}
}

type ReportCreatedEvent struct {
	Report ReportPayload `json:"report"`
}

// ReportUpdatedEvent carries the previous version when the hook supplies it.
type ReportUpdatedEvent struct {
	Report   ReportPayload  `json:"report"`
	Previous *ReportPayload `json:"previous"`
}

func (e ReportUpdatedEvent) PreviousModel() *model.Report {
	if e.Previous == nil {
		return nil
	}
	prev := e.Previous.ToModel()
	return &prev
}
