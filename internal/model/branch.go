package model

// Branch is a physical business location. Customers and projects are scoped
// to a branch; so are the LINE bot credentials in the full CRM.
type Branch struct {
	BaseModel
	Name string `gorm:"type:varchar(128);not null" json:"name"`
	Code string `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
}

func (Branch) TableName() string {
	return "branches"
}
