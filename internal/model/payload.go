package model

import "time"

// The payload column is jsonb, but each task type writes a fixed shape.
// These constructors are the only writers, so the shapes below are the
// de facto schema:
//
//	{customer_name, company_name, project_name, next_pay_day|end_day,
//	 amount?, days_before, message}

// PaymentReminderPayload is the rendering input of a payment_reminder task.
type PaymentReminderPayload struct {
	CustomerName string
	CompanyName  string
	ProjectName  string
	NextPayDay   time.Time
	Amount       int64
	DaysBefore   int
	Message      string
}

func (p PaymentReminderPayload) ToJSONB() JSONB {
	return JSONB{
		"customer_name": p.CustomerName,
		"company_name":  p.CompanyName,
		"project_name":  p.ProjectName,
		"next_pay_day":  p.NextPayDay.Format("2006-01-02"),
		"amount":        p.Amount,
		"days_before":   p.DaysBefore,
		"message":       p.Message,
	}
}

// RenewalReminderPayload is the rendering input of a renewal_reminder task.
type RenewalReminderPayload struct {
	CustomerName string
	CompanyName  string
	ProjectName  string
	EndDay       time.Time
	DaysBefore   int
	Message      string
}

func (p RenewalReminderPayload) ToJSONB() JSONB {
	return JSONB{
		"customer_name": p.CustomerName,
		"company_name":  p.CompanyName,
		"project_name":  p.ProjectName,
		"end_day":       p.EndDay.Format("2006-01-02"),
		"days_before":   p.DaysBefore,
		"message":       p.Message,
	}
}
