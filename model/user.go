package model

import "time"

const RoleEWM = "ewm"

// User is a registered reporter. Peers of a report are users sharing its
// ward and LGA.
type User struct {
	ID          string    `json:"id" firestore:"-" gorm:"column:id;primaryKey;type:varchar(64)"`
	Email       string    `json:"email" firestore:"email" gorm:"column:email;type:varchar(255);uniqueIndex"`
	Name        string    `json:"name" firestore:"name" gorm:"column:name;type:varchar(255)"`
	Role        string    `json:"role" firestore:"role" gorm:"column:role;type:varchar(50);default:'ewm'"`
	PhoneNumber string    `json:"phoneNumber" firestore:"phoneNumber" gorm:"column:phone_number;type:varchar(20)"`
	Ward        string    `json:"ward" firestore:"ward" gorm:"column:ward;type:varchar(100);index:idx_users_area"`
	LGA         string    `json:"lga" firestore:"lga" gorm:"column:lga;type:varchar(100);index:idx_users_area"`
	State       string    `json:"state" firestore:"state" gorm:"column:state;type:varchar(100)"`
	FCMToken    string    `json:"-" firestore:"fcmToken" gorm:"column:fcm_token;type:varchar(512)"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt" gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
