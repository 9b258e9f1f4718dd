package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/annex-account/pkg/mailer"
	mailtpl "github.com/oksasatya/annex-account/pkg/mailer/templates"
)

func SubjectForUniversal(data map[string]any) string {
	typeStr := fmt.Sprintf("%v", data["Type"])
	switch strings.ToLower(typeStr) {
	case mailtpl.Welcome:
		return "Welcome to ANNEX"
	case mailtpl.ProfileUpdated:
		return "Your profile was updated successfully"
	case mailtpl.PasswordChanged:
		return "Your password was changed"
	case mailtpl.EmailAdded:
		return "A new email address was added to your account"
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// MapTypeToUniversal rewrites a job addressed by bare type ("welcome") to the
// universal template with Data.Type set.
func MapTypeToUniversal(job *mailer.EmailJob) {
	switch strings.ToLower(job.Template) {
	case mailtpl.Welcome, mailtpl.ProfileUpdated, mailtpl.PasswordChanged, mailtpl.EmailAdded:
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		if _, ok := job.Data["Type"]; !ok || fmt.Sprintf("%v", job.Data["Type"]) == "" {
			job.Data["Type"] = strings.ToLower(job.Template)
		}
		job.Template = mailtpl.Universal
	}
}
