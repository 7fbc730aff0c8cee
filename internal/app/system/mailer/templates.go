package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// InvitationEmailData fills the invitation email template.
type InvitationEmailData struct {
	OrganizationTitle string
	AcceptURL         string
	ExpiresInDays     int
}

const invitationHTML = `<!doctype html>
<html>
  <body style="font-family: sans-serif; color: #222;">
    <h2>You have been invited to join {{.OrganizationTitle}}</h2>
    <p>
      An administrator of {{.OrganizationTitle}} invited you to become a member.
      Click the link below to accept the invitation.
    </p>
    <p><a href="{{.AcceptURL}}">Accept invitation</a></p>
    <p>This invitation expires in {{.ExpiresInDays}} days.</p>
    <p>If you were not expecting this email, you can safely ignore it.</p>
  </body>
</html>`

var invitationTmpl = template.Must(template.New("invitation").Parse(invitationHTML))

// BuildInvitationEmail renders the invitation message for a recipient.
func BuildInvitationEmail(to string, data InvitationEmailData) (Email, error) {
	var buf bytes.Buffer
	if err := invitationTmpl.Execute(&buf, data); err != nil {
		return Email{}, fmt.Errorf("render invitation email: %w", err)
	}
	text := fmt.Sprintf(
		"You have been invited to join %s.\n\nAccept the invitation: %s\n\nThis invitation expires in %d days.\n",
		data.OrganizationTitle, data.AcceptURL, data.ExpiresInDays,
	)
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Invitation to join %s", data.OrganizationTitle),
		TextBody: text,
		HTMLBody: buf.String(),
	}, nil
}
