package scanner

import (
	"fmt"
	"time"

	"EstateLink/internal/model"
	"EstateLink/utils"
)

// Messages are rendered once at scan time and stored in payload.message, so
// later template edits never rewrite already-scheduled reminders.

func greeting(customer *model.Customer) string {
	if customer.CompanyName != "" {
		return fmt.Sprintf("%s\n%s様", customer.CompanyName, customer.Name)
	}
	return fmt.Sprintf("%s様", customer.Name)
}

// RenderPaymentReminder builds the payment reminder text.
func RenderPaymentReminder(customer *model.Customer, project *model.Project, nextPayDay time.Time, daysBefore int) string {
	return fmt.Sprintf(
		"%s\n\n「%s」のお家賃 %s円 のお支払い期日が %s に近づいております（あと%d日）。\nお支払いのご準備をお願いいたします。\n\n※本メッセージは自動送信です。",
		greeting(customer),
		project.Name,
		utils.FormatYen(project.MonthlyFee),
		utils.FormatDate(nextPayDay),
		daysBefore,
	)
}

// RenderRenewalReminder builds the contract renewal reminder text.
func RenderRenewalReminder(customer *model.Customer, project *model.Project, endDay time.Time, daysBefore int) string {
	return fmt.Sprintf(
		"%s\n\n「%s」のご契約満了日は %s です（あと%d日）。\n更新のご意向につきまして、担当者までご連絡をお願いいたします。\n\n※本メッセージは自動送信です。",
		greeting(customer),
		project.Name,
		utils.FormatDate(endDay),
		daysBefore,
	)
}
