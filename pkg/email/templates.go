package email

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// linkEmailData feeds the shared link-email template.
type linkEmailData struct {
	AppName   string
	Intro     string
	ActionURL string
	Action    string
	ExpiresIn string
	Support   string
}

var linkEmailTmpl = template.Must(template.New("link_email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; max-width: 560px; margin: 0 auto; padding: 24px;">
	<h2>{{.AppName}}</h2>
	<p>{{.Intro}}</p>
	<p><a href="{{.ActionURL}}" style="display: inline-block; padding: 10px 20px; background: #1a73e8; color: #fff; text-decoration: none; border-radius: 4px;">{{.Action}}</a></p>
	<p>Or paste this link into your browser:<br><a href="{{.ActionURL}}">{{.ActionURL}}</a></p>
	<p>The link expires in {{.ExpiresIn}}. If you did not request this, you can safely ignore this email.</p>
	<p>Questions? Write to <a href="mailto:{{.Support}}">{{.Support}}</a>.</p>
</body>
</html>
`))

func renderLinkEmail(data linkEmailData) (string, error) {
	var sb strings.Builder
	if err := linkEmailTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return sb.String(), nil
}

// NewConfirmationEmail builds the email-confirmation message carrying the
// signed confirmation link.
func NewConfirmationEmail(cfg Config, appName, sendTo, actionURL string, ttl time.Duration) (SendEmailParams, error) {
	body, err := renderLinkEmail(linkEmailData{
		AppName:   appName,
		Intro:     "Welcome! Confirm your email address to activate your membership.",
		ActionURL: actionURL,
		Action:    "Confirm email",
		ExpiresIn: humanDuration(ttl),
		Support:   cfg.SupportEmail,
	})
	if err != nil {
		return SendEmailParams{}, err
	}
	return SendEmailParams{
		SendTo:   sendTo,
		Subject:  fmt.Sprintf("Confirm your email for %s", appName),
		BodyHTML: body,
		Tag:      "email-confirmation",
	}, nil
}

// NewPasswordResetEmail builds the password-reset message carrying the
// signed reset link.
func NewPasswordResetEmail(cfg Config, appName, sendTo, actionURL string, ttl time.Duration) (SendEmailParams, error) {
	body, err := renderLinkEmail(linkEmailData{
		AppName:   appName,
		Intro:     "We received a request to reset your password.",
		ActionURL: actionURL,
		Action:    "Reset password",
		ExpiresIn: humanDuration(ttl),
		Support:   cfg.SupportEmail,
	})
	if err != nil {
		return SendEmailParams{}, err
	}
	return SendEmailParams{
		SendTo:   sendTo,
		Subject:  fmt.Sprintf("Reset your %s password", appName),
		BodyHTML: body,
		Tag:      "password-reset",
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	case d >= time.Hour && d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	default:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
}
