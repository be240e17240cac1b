package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trinexa/trinexa-web/internal/template"
	"github.com/trinexa/trinexa-web/internal/web/models"
)

var emailCategories = []string{
	models.EmailCategoryWelcome,
	models.EmailCategoryConfirmation,
	models.EmailCategoryInterview,
	models.EmailCategoryRejection,
	models.EmailCategoryMarketing,
}

var messageCategories = []string{
	models.MessageCategoryAnnouncement,
	models.MessageCategoryNewsletter,
	models.MessageCategoryPromotion,
	models.MessageCategorySystem,
}

// TemplatesAdmin lists both template families.
func (h *Handlers) TemplatesAdmin(w http.ResponseWriter, r *http.Request) {
	emails, err := h.emailTemplates.List(models.TemplateListFilter{})
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load templates")
		return
	}
	messages, err := h.messageTemplates.List(models.TemplateListFilter{})
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load templates")
		return
	}
	h.render(w, r, "templates", map[string]any{
		"EmailTemplates":   emails,
		"MessageTemplates": messages,
	})
}

// TemplateNew shows an empty template form. kind comes from the query
// string and is "email" or "message".
func (h *Handlers) TemplateNew(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	categories, ok := templateCategories(kind)
	if !ok {
		h.error(w, http.StatusNotFound, "unknown template kind")
		return
	}
	h.render(w, r, "template_edit", map[string]any{
		"Kind":       kind,
		"Template":   &models.EmailTemplate{IsActive: true},
		"Categories": categories,
	})
}

// TemplateCreate creates a template of the requested kind.
func (h *Handlers) TemplateCreate(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	form, errs := templateForm(kind, r)
	if len(errs) > 0 {
		categories, _ := templateCategories(kind)
		h.render(w, r, "template_edit", map[string]any{
			"Kind":       kind,
			"Template":   form,
			"Categories": categories,
			"Errors":     errs,
		})
		return
	}

	var err error
	var id string
	switch kind {
	case "email":
		t := &models.EmailTemplate{
			Name: form.Name, Category: form.Category,
			Subject: form.Subject, Content: form.Content, IsActive: form.IsActive,
		}
		err = h.emailTemplates.Create(t)
		id = t.ID
	case "message":
		t := &models.MessageTemplate{
			Name: form.Name, Category: form.Category,
			Subject: form.Subject, Content: form.Content, IsActive: form.IsActive,
		}
		err = h.messageTemplates.Create(t)
		id = t.ID
	default:
		h.error(w, http.StatusNotFound, "unknown template kind")
		return
	}
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	h.auditLog(r, "template.create", kind+"_template", id)
	http.Redirect(w, r, "/admin/templates", http.StatusSeeOther)
}

// TemplateEditPage shows the edit form for an existing template.
func (h *Handlers) TemplateEditPage(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	tmpl, ok := h.loadTemplate(w, kind, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	categories, _ := templateCategories(kind)
	h.render(w, r, "template_edit", map[string]any{
		"Kind":       kind,
		"Template":   tmpl,
		"Categories": categories,
	})
}

// TemplateUpdate updates an existing template. Variables are re-derived
// from the edited content by the repository.
func (h *Handlers) TemplateUpdate(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")
	form, errs := templateForm(kind, r)
	if len(errs) > 0 {
		categories, _ := templateCategories(kind)
		form.ID = id
		h.render(w, r, "template_edit", map[string]any{
			"Kind":       kind,
			"Template":   form,
			"Categories": categories,
			"Errors":     errs,
		})
		return
	}

	var err error
	switch kind {
	case "email":
		err = h.emailTemplates.Update(&models.EmailTemplate{
			ID: id, Name: form.Name, Category: form.Category,
			Subject: form.Subject, Content: form.Content, IsActive: form.IsActive,
		})
	case "message":
		err = h.messageTemplates.Update(&models.MessageTemplate{
			ID: id, Name: form.Name, Category: form.Category,
			Subject: form.Subject, Content: form.Content, IsActive: form.IsActive,
		})
	default:
		h.error(w, http.StatusNotFound, "unknown template kind")
		return
	}
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to update template")
		return
	}

	h.auditLog(r, "template.update", kind+"_template", id)
	http.Redirect(w, r, "/admin/templates", http.StatusSeeOther)
}

// TemplateDelete removes a template.
func (h *Handlers) TemplateDelete(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")

	var err error
	switch kind {
	case "email":
		err = h.emailTemplates.Delete(id)
	case "message":
		err = h.messageTemplates.Delete(id)
	default:
		h.error(w, http.StatusNotFound, "unknown template kind")
		return
	}
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to delete template")
		return
	}

	h.auditLog(r, "template.delete", kind+"_template", id)
	http.Redirect(w, r, "/admin/templates", http.StatusSeeOther)
}

// TemplatePreview renders a template with sample values for every
// placeholder.
func (h *Handlers) TemplatePreview(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	tmpl, ok := h.loadTemplate(w, kind, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.render(w, r, "template_preview", map[string]any{
		"Template": tmpl,
		"Subject":  template.Preview(tmpl.Subject),
		"Body":     template.Preview(tmpl.Content),
	})
}

// TemplatesExport downloads both template families as a JSON document.
func (h *Handlers) TemplatesExport(w http.ResponseWriter, r *http.Request) {
	emails, err := h.emailTemplates.List(models.TemplateListFilter{})
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load templates")
		return
	}
	messages, err := h.messageTemplates.List(models.TemplateListFilter{})
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load templates")
		return
	}

	filename := "templates-" + time.Now().Format("2006-01-02") + ".json"
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	h.json(w, http.StatusOK, map[string]any{
		"exported_at":       time.Now().Format(time.RFC3339),
		"email_templates":   emails,
		"message_templates": messages,
	})
}

// loadTemplate fetches either kind of template into the common EmailTemplate
// shape for rendering.
func (h *Handlers) loadTemplate(w http.ResponseWriter, kind, id string) (*models.EmailTemplate, bool) {
	switch kind {
	case "email":
		t, err := h.emailTemplates.GetByID(id)
		if err != nil {
			h.error(w, http.StatusInternalServerError, "failed to load template")
			return nil, false
		}
		if t == nil {
			h.error(w, http.StatusNotFound, "template not found")
			return nil, false
		}
		return t, true
	case "message":
		t, err := h.messageTemplates.GetByID(id)
		if err != nil {
			h.error(w, http.StatusInternalServerError, "failed to load template")
			return nil, false
		}
		if t == nil {
			h.error(w, http.StatusNotFound, "template not found")
			return nil, false
		}
		return &models.EmailTemplate{
			ID: t.ID, Name: t.Name, Category: t.Category, Subject: t.Subject,
			Content: t.Content, Variables: t.Variables, IsActive: t.IsActive,
			CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
		}, true
	default:
		h.error(w, http.StatusNotFound, "unknown template kind")
		return nil, false
	}
}

func templateCategories(kind string) ([]string, bool) {
	switch kind {
	case "email":
		return emailCategories, true
	case "message":
		return messageCategories, true
	default:
		return nil, false
	}
}

func templateForm(kind string, r *http.Request) (*models.EmailTemplate, []string) {
	form := &models.EmailTemplate{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Category: r.FormValue("category"),
		Subject:  strings.TrimSpace(r.FormValue("subject")),
		Content:  r.FormValue("content"),
		IsActive: r.FormValue("is_active") != "",
	}

	var errs []string
	if form.Name == "" {
		errs = append(errs, "Name is required")
	}
	if form.Subject == "" {
		errs = append(errs, "Subject is required")
	}
	if strings.TrimSpace(form.Content) == "" {
		errs = append(errs, "Content is required")
	}
	switch kind {
	case "email":
		if !models.ValidEmailCategory(form.Category) {
			errs = append(errs, "Unknown category")
		}
	case "message":
		if !models.ValidMessageCategory(form.Category) {
			errs = append(errs, "Unknown category")
		}
	}
	return form, errs
}
