package mail

import (
	"context"

	"github.com/othmanee23/oraxonoptic/jobs"
)

// QueueMailer enqueues mail tasks instead of talking SMTP inline, so a slow
// relay never blocks an HTTP handler. The worker delivers via SMTPMailer.
type QueueMailer struct {
	client *jobs.Client
}

// NewQueueMailer constructs a QueueMailer.
func NewQueueMailer(client *jobs.Client) *QueueMailer {
	return &QueueMailer{client: client}
}

// SendVerification enqueues the verification mail.
func (m *QueueMailer) SendVerification(ctx context.Context, email, token string) error {
	_, err := m.client.EnqueueVerificationMail(ctx, jobs.MailPayload{To: email, Token: token})
	return err
}

// SendPasswordReset enqueues the password reset mail.
func (m *QueueMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	_, err := m.client.EnqueuePasswordResetMail(ctx, jobs.MailPayload{To: email, Token: token})
	return err
}
