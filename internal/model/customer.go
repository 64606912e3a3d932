package model

// Customer is a tenant or owner managed by the CRM. The automation core
// reads customers only; the CRUD surface that maintains them lives in the
// main CRM application.
type Customer struct {
	BaseModel
	BranchID    int64  `gorm:"not null;index" json:"branch_id"`
	Name        string `gorm:"type:varchar(128);not null" json:"name"`
	CompanyName string `gorm:"type:varchar(128)" json:"company_name"`
	LineUserID  string `gorm:"type:varchar(64);index" json:"line_user_id"`
	Email       string `gorm:"type:varchar(254)" json:"email"`
	Phone       string `gorm:"type:varchar(32)" json:"phone"`
}

func (Customer) TableName() string {
	return "customers"
}

// HasChannelID reports whether the customer can receive LINE messages.
func (c *Customer) HasChannelID() bool {
	return c.LineUserID != ""
}
