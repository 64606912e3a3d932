package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TaskType identifies what kind of reminder a task carries.
type TaskType string

const (
	TaskTypePaymentReminder TaskType = "payment_reminder"
	TaskTypeRenewalReminder TaskType = "renewal_reminder"
)

// ValidTaskType reports whether t is a known task type.
func ValidTaskType(t TaskType) bool {
	return t == TaskTypePaymentReminder || t == TaskTypeRenewalReminder
}

// TaskStatus is the task state machine: pending is the only non-terminal
// state; executed, failed and cancelled are terminal.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusExecuted  TaskStatus = "executed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// TaskChannel is the delivery channel. Only LINE is implemented; email and
// sms are reserved values.
type TaskChannel string

const (
	TaskChannelLine  TaskChannel = "line"
	TaskChannelEmail TaskChannel = "email"
	TaskChannelSMS   TaskChannel = "sms"
)

// AutomationTask is one scheduled outbound reminder.
type AutomationTask struct {
	BaseModel
	TaskCode    int64       `gorm:"uniqueIndex;not null" json:"task_code"`
	TaskType    TaskType    `gorm:"type:varchar(32);not null;index:idx_automation_tasks_dedup" json:"task_type"`
	CustomerID  *int64      `gorm:"index:idx_automation_tasks_dedup" json:"customer_id,omitempty"`
	ProjectID   *int64      `gorm:"index:idx_automation_tasks_dedup" json:"project_id,omitempty"`
	Status      TaskStatus  `gorm:"type:varchar(16);not null;default:'pending';index:idx_automation_tasks_status" json:"status"`
	Channel     TaskChannel `gorm:"type:varchar(16);not null;default:'line'" json:"channel"`
	Payload     JSONB       `gorm:"type:jsonb;not null" json:"payload"`
	Result      JSONB       `gorm:"type:jsonb" json:"result,omitempty"`
	RetryCount  int         `gorm:"type:smallint;not null;default:0" json:"retry_count"`
	ScheduledAt time.Time   `gorm:"type:timestamptz;not null;index:idx_automation_tasks_status;index:idx_automation_tasks_dedup" json:"scheduled_at"`
	ExecutedAt  *time.Time  `gorm:"type:timestamptz" json:"executed_at,omitempty"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Project  *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (AutomationTask) TableName() string {
	return "automation_tasks"
}

// Message returns the pre-rendered text stored at scan time, or "".
func (t *AutomationTask) Message() string {
	if t.Payload == nil {
		return ""
	}
	msg, _ := t.Payload["message"].(string)
	return msg
}

// Terminal reports whether the task left the pending state.
func (t *AutomationTask) Terminal() bool {
	return t.Status != TaskStatusPending
}

// JSONB is a loosely-typed jsonb column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("failed to unmarshal JSONB value")
	}
}
