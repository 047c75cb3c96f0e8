package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either set Template and Data, or Subject with Text and optional HTML.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "universal"; Data["Type"] picks welcome or plan_activated
	Data     map[string]any `json:"data,omitempty"`
}
