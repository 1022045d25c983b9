package email

// Email is one outgoing message.
type Email struct {
	From     string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData - values available to a template
type TemplateData map[string]interface{}
