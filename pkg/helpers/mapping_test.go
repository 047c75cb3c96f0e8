package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/estate-marketplace/pkg/mailer"
	mailtpl "github.com/oksasatya/estate-marketplace/pkg/mailer/templates"
)

func TestEnsureRecipientAndEmail(t *testing.T) {
	job := mailer.EmailJob{To: "a@x.com"}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "a@x.com", job.Data["Email"])
	assert.Equal(t, "a@x.com", job.Data["RecipientEmail"])

	job = mailer.EmailJob{To: "a@x.com", Data: map[string]any{"Email": "other@x.com"}}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "other@x.com", job.Data["Email"])
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "Custom", SubjectFor(mailer.EmailJob{Subject: " Custom "}))
	assert.Equal(t, "Your subscription is active", SubjectFor(mailer.EmailJob{Data: map[string]any{"Type": mailtpl.PlanActivated}}))
	assert.Equal(t, "Notification", SubjectFor(mailer.EmailJob{}))
}

func TestRenderJob(t *testing.T) {
	data := mailtpl.ToMap(mailtpl.NewBaseEmailData(mailtpl.Brand{AppName: "Estate"}, mailtpl.Welcome, "Jo", "", ""))
	subject, text, html, err := RenderJob(mailer.EmailJob{To: "jo@x.com", Template: "Universal", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Estate", subject)
	assert.Contains(t, text, "jo@x.com")
	assert.NotEmpty(t, html)

	subject, text, html, err = RenderJob(mailer.EmailJob{To: "jo@x.com", Subject: "Hi", Text: "plain"})
	require.NoError(t, err)
	assert.Equal(t, "Hi", subject)
	assert.Equal(t, "plain", text)
	assert.Empty(t, html)

	_, _, _, err = RenderJob(mailer.EmailJob{To: "jo@x.com", Template: "nope"})
	assert.Error(t, err)
}
