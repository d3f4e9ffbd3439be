package model

import "time"

// StatisticsSnapshot is written once per aggregation run and never updated.
type StatisticsSnapshot struct {
	ID             string         `json:"id" firestore:"-" gorm:"column:id;primaryKey;type:varchar(64)"`
	Timestamp      time.Time      `json:"timestamp" firestore:"timestamp" gorm:"column:timestamp;not null;index"`
	TotalCount     int64          `json:"totalCount" firestore:"totalCount" gorm:"column:total_count"`
	ValidatedCount int64          `json:"validatedCount" firestore:"validatedCount" gorm:"column:validated_count"`
	EscalatedCount int64          `json:"escalatedCount" firestore:"escalatedCount" gorm:"column:escalated_count"`
	HazardSample   map[string]int `json:"hazardSample,omitempty" firestore:"hazardSample,omitempty" gorm:"column:hazard_sample;serializer:json"`
}

func (StatisticsSnapshot) TableName() string {
	return "statistics"
}
