package model

// AuthorityContact is an emergency authority reachable by SMS for one
// state and LGA.
type AuthorityContact struct {
	ID    string `json:"id" firestore:"-" gorm:"column:id;primaryKey;type:varchar(64)"`
	Name  string `json:"name" firestore:"name" gorm:"column:name;type:varchar(255)"`
	Phone string `json:"phone" firestore:"phone" gorm:"column:phone;type:varchar(20);not null"`
	State string `json:"state" firestore:"state" gorm:"column:state;type:varchar(100);index:idx_authorities_area"`
	LGA   string `json:"lga" firestore:"lga" gorm:"column:lga;type:varchar(100);index:idx_authorities_area"`
}

func (AuthorityContact) TableName() string {
	return "authorities"
}
