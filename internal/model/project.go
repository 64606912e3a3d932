package model

import "time"

// ProjectStatus is the contract lifecycle state maintained by the CRM.
type ProjectStatus string

const (
	ProjectStatusActive     ProjectStatus = "active"
	ProjectStatusTerminated ProjectStatus = "terminated"
	ProjectStatusDraft      ProjectStatus = "draft"
)

// Project is a lease/service contract ("project" in CRM terms) between the
// business and a customer. The scanner derives reminder dates from
// NextPayDay and EndDay; either may be unset.
type Project struct {
	BaseModel
	BranchID   int64         `gorm:"not null;index" json:"branch_id"`
	CustomerID int64         `gorm:"not null;index" json:"customer_id"`
	Name       string        `gorm:"type:varchar(128);not null" json:"name"`
	Status     ProjectStatus `gorm:"type:varchar(16);not null;default:'draft';index" json:"status"`
	MonthlyFee int64         `gorm:"not null;default:0" json:"monthly_fee"`
	StartDay   *time.Time    `gorm:"type:date" json:"start_day,omitempty"`
	EndDay     *time.Time    `gorm:"type:date" json:"end_day,omitempty"`
	NextPayDay *time.Time    `gorm:"type:date" json:"next_pay_day,omitempty"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}
