package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trinexa/trinexa-web/internal/web/middleware"
	"github.com/trinexa/trinexa-web/internal/web/models"
)

// MessagesAdmin lists scheduled messages.
func (h *Handlers) MessagesAdmin(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.List(models.MessageListFilter{})
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}
	h.render(w, r, "messages", map[string]any{"Messages": messages})
}

// MessageCompose shows the composer with the message templates available
// for prefill.
func (h *Handlers) MessageCompose(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Form": map[string]string{}}
	if templates, err := h.messageTemplates.List(models.TemplateListFilter{ActiveOnly: true}); err == nil {
		data["Templates"] = templates
	}
	h.render(w, r, "message_edit", data)
}

// MessageSchedule validates and schedules a broadcast. Scheduling an
// audience that currently resolves to zero recipients is refused outright,
// because such a message would sit in the queue and then send nothing.
func (h *Handlers) MessageSchedule(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{
		"subject":        strings.TrimSpace(r.FormValue("subject")),
		"content":        r.FormValue("content"),
		"recipient_type": r.FormValue("recipient_type"),
		"scheduled_for":  r.FormValue("scheduled_for"),
	}

	// Template prefill replaces empty fields only.
	if id := r.FormValue("template_id"); id != "" && (form["subject"] == "" || strings.TrimSpace(form["content"]) == "") {
		if tmpl, err := h.messageTemplates.GetByID(id); err == nil && tmpl != nil {
			if form["subject"] == "" {
				form["subject"] = tmpl.Subject
			}
			if strings.TrimSpace(form["content"]) == "" {
				form["content"] = tmpl.Content
			}
		}
	}

	var errs []string
	if form["subject"] == "" {
		errs = append(errs, "Subject is required")
	}
	if strings.TrimSpace(form["content"]) == "" {
		errs = append(errs, "Content is required")
	}
	if !models.ValidRecipientType(form["recipient_type"]) {
		errs = append(errs, "Unknown audience")
	}

	scheduledFor, err := time.ParseInLocation("2006-01-02T15:04", form["scheduled_for"], time.Local)
	if err != nil {
		errs = append(errs, "A valid schedule time is required")
	} else if scheduledFor.Before(time.Now()) {
		errs = append(errs, "Schedule time must be in the future")
	}

	if len(errs) == 0 {
		count, err := h.messages.CountRecipients(form["recipient_type"])
		if err != nil {
			h.error(w, http.StatusInternalServerError, "failed to resolve audience")
			return
		}
		if count == 0 {
			errs = append(errs, "The selected audience has no recipients")
		}
	}

	if len(errs) > 0 {
		data := map[string]any{"Errors": errs, "Form": form}
		if templates, err := h.messageTemplates.List(models.TemplateListFilter{ActiveOnly: true}); err == nil {
			data["Templates"] = templates
		}
		h.render(w, r, "message_edit", data)
		return
	}

	msg := &models.ScheduledMessage{
		Subject:       form["subject"],
		Content:       form["content"],
		RecipientType: form["recipient_type"],
		ScheduledFor:  scheduledFor,
	}
	if user := middleware.UserFromContext(r); user != nil {
		msg.CreatedBy = user.ID
	}
	if err := h.messages.Schedule(msg); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to schedule message")
		return
	}

	h.auditLog(r, "message.schedule", "scheduled_message", msg.ID)
	http.Redirect(w, r, "/admin/messages", http.StatusSeeOther)
}

// MessageCancel cancels a pending message. Sent and cancelled messages are
// terminal; the repository rejects the transition.
func (h *Handlers) MessageCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.messages.Cancel(id); err != nil {
		h.error(w, http.StatusConflict, "message can no longer be cancelled")
		return
	}
	h.auditLog(r, "message.cancel", "scheduled_message", id)
	http.Redirect(w, r, "/admin/messages", http.StatusSeeOther)
}
