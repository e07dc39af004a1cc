package template

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttmpl "text/template"
)

type TemplateService struct {
	emailPath string
	smsPath   string
}

func NewTemplateService(emailPath, smsPath string) *TemplateService {
	return &TemplateService{
		emailPath: emailPath,
		smsPath:   smsPath,
	}
}

// Render produces a channel-specific body for an event type. Unknown event
// types fall back to the "generic" template; callers fall back to the raw
// message body when rendering fails entirely.
func (t *TemplateService) Render(channel, eventType string, data map[string]any) (string, error) {
	tmplName := strings.ToLower(eventType)
	if tmplName == "" {
		tmplName = "generic"
	}
	if data == nil {
		data = map[string]any{}
	}

	switch channel {
	case "email":
		basePath := fmt.Sprintf("%s/base.html", t.emailPath)
		bodyPath := fmt.Sprintf("%s/%s.html", t.emailPath, tmplName)

		tmpl, err := template.ParseFiles(basePath, bodyPath)
		if err != nil {
			// retry with the generic body before giving up
			if tmplName != "generic" {
				return t.Render(channel, "generic", data)
			}
			return "", fmt.Errorf("parse email templates: %w", err)
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
			return "", fmt.Errorf("execute email template: %w", err)
		}
		return buf.String(), nil

	case "sms":
		basePath := fmt.Sprintf("%s/base.txt", t.smsPath)
		bodyPath := fmt.Sprintf("%s/%s.txt", t.smsPath, tmplName)

		tmpl, err := texttmpl.ParseFiles(basePath, bodyPath)
		if err != nil {
			if tmplName != "generic" {
				return t.Render(channel, "generic", data)
			}
			return "", fmt.Errorf("parse sms templates: %w", err)
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, "base.txt", data); err != nil {
			return "", fmt.Errorf("execute sms template: %w", err)
		}
		return buf.String(), nil

	default:
		return "", fmt.Errorf("unsupported channel: %s", channel)
	}
}
