package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/annex-account/pkg/helpers"
	"github.com/oksasatya/annex-account/pkg/mailer"
	mailtpl "github.com/oksasatya/annex-account/pkg/mailer/templates"
)

// errPermanent marks jobs that will never succeed and must not be requeued.
var errPermanent = errors.New("permanent failure")

type sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type worker struct {
	mail     sender
	resolver mailtpl.GeoResolver
	logger   logrus.FieldLogger
	timeout  time.Duration
}

// render fills subject and bodies for templated jobs. Jobs that carry their
// own Subject/Text/HTML pass through unchanged.
func (w *worker) render(ctx context.Context, job *mailer.EmailJob) error {
	helpers.EnsureRecipientAndEmail(job)
	helpers.MapTypeToUniversal(job)
	if job.Template == "" {
		return nil
	}
	if !strings.EqualFold(job.Template, mailtpl.Universal) {
		return fmt.Errorf("%w: unknown template %q", errPermanent, job.Template)
	}
	helpers.LocalizeEmailData(ctx, w.resolver, job.Data)

	html, err := mailtpl.RenderHTML(mailtpl.Universal, job.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}
	text, err := mailtpl.RenderText(mailtpl.Universal, job.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}
	job.Subject, job.Text, job.HTML = helpers.SubjectForUniversal(job.Data), text, html
	return nil
}

// handle decodes, renders and sends one queued message. A permanent error
// means the message should be dropped; any other error means retry.
func (w *worker) handle(ctx context.Context, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode: %v", errPermanent, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", errPermanent)
	}
	if err := w.render(ctx, &job); err != nil {
		return err
	}

	c, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.mail.Send(c, job.To, job.Subject, job.Text, job.HTML); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	w.logger.WithFields(logrus.Fields{"to": job.To, "type": job.Data["Type"]}).Info("email sent")
	return nil
}
