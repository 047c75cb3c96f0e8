package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/estate-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/estate-marketplace/pkg/mailer/templates"
)

// SubjectFor returns the explicit subject or the default for the job's type.
func SubjectFor(job mailer.EmailJob) string {
	if s := strings.TrimSpace(job.Subject); s != "" {
		return s
	}
	return mailtpl.Subject(fmt.Sprintf("%v", job.Data["Type"]))
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

// RenderJob fills subject, text and html for a templated job. Jobs without
// a template are returned as queued.
func RenderJob(job mailer.EmailJob) (subject, text, html string, err error) {
	EnsureRecipientAndEmail(&job)
	if job.Template == "" {
		return SubjectFor(job), job.Text, job.HTML, nil
	}
	subject, text, html, err = mailtpl.Render(strings.ToLower(job.Template), job.Data)
	if err != nil {
		return "", "", "", err
	}
	if strings.TrimSpace(subject) == "" {
		subject = SubjectFor(job)
	}
	return strings.TrimSpace(subject), text, html, nil
}
