package handlers

import (
	"fmt"

	"github.com/trinexa/trinexa-web/internal/mailer"
	"github.com/trinexa/trinexa-web/internal/notify"
	"github.com/trinexa/trinexa-web/internal/template"
	"github.com/trinexa/trinexa-web/internal/web/models"
)

// enqueue queues a notification for background delivery. It is best-effort:
// a full or broken outbox is logged and swallowed so the triggering action
// still succeeds.
func (h *Handlers) enqueue(kind string, email mailer.Email) {
	if h.outbox == nil {
		return
	}
	n := notify.NewNotification(kind, email)
	if err := h.outbox.Enqueue(n); err != nil {
		h.logger.Error("notification enqueue failed", "kind", kind, "to", email.To, "error", err)
		if h.sink != nil {
			h.sink.Error("notification enqueue failed",
				map[string]any{"kind": kind, "error": err.Error()}, "notify")
		}
	}
}

// templatedEmail builds an email from the first active template of the given
// category, falling back to the supplied subject and body when none exists.
func (h *Handlers) templatedEmail(category, to, toName, subject, body string, vars map[string]string) mailer.Email {
	tmpls, err := h.emailTemplates.List(models.TemplateListFilter{Category: category, ActiveOnly: true, Limit: 1})
	if err != nil {
		h.logger.Warn("template lookup failed", "category", category, "error", err)
	}
	if len(tmpls) > 0 {
		subject = tmpls[0].Subject
		body = tmpls[0].Content
	}

	return mailer.Email{
		To:       to,
		ToName:   toName,
		Subject:  template.Substitute(subject, vars),
		TextBody: template.Substitute(body, vars),
	}
}

func (h *Handlers) enqueueWelcome(user *models.User) {
	vars := map[string]string{
		"name":    user.Name,
		"email":   user.Email,
		"company": h.cfg.Site.CompanyName,
	}
	email := h.templatedEmail(models.EmailCategoryWelcome, user.Email, user.Name,
		fmt.Sprintf("Welcome to %s", h.cfg.Site.CompanyName),
		"Hi {name},\n\nYour account is ready. Sign in any time to manage your demos and applications.\n\nThe {company} team",
		vars)
	h.enqueue(notify.KindWelcome, email)
}

func (h *Handlers) enqueueDemoConfirmation(b *models.DemoBooking) {
	vars := map[string]string{
		"name":           b.Name,
		"email":          b.Email,
		"company":        b.Company,
		"preferred_date": b.PreferredDate,
		"product":        h.cfg.Site.ProductName,
	}
	email := h.templatedEmail(models.EmailCategoryConfirmation, b.Email, b.Name,
		fmt.Sprintf("Your %s demo request", h.cfg.Site.ProductName),
		"Hi {name},\n\nThanks for requesting a {product} demo. Our team will reach out to confirm a time.\n\nThe Trinexa team",
		vars)
	h.enqueue(notify.KindDemoConfirmation, email)
}

func (h *Handlers) enqueueApplicationConfirmation(name, email, position string) {
	vars := map[string]string{
		"name":     name,
		"email":    email,
		"position": position,
		"company":  h.cfg.Site.CompanyName,
	}
	msg := h.templatedEmail(models.EmailCategoryConfirmation, email, name,
		"We received your application",
		"Hi {name},\n\nThanks for applying{position}. We review every application and will get back to you.\n\nThe {company} team",
		vars)
	h.enqueue(notify.KindApplicationConfirmation, msg)
}
