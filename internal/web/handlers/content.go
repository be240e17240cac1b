package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trinexa/trinexa-web/internal/content"
	"github.com/trinexa/trinexa-web/internal/web/middleware"
	"github.com/trinexa/trinexa-web/internal/web/models"
)

// ContentIndex lists the editable sections of one page.
func (h *Handlers) ContentIndex(w http.ResponseWriter, r *http.Request) {
	pageID := r.URL.Query().Get("page")
	if pageID == "" {
		pageID = models.PageHome
	}
	if !models.IsKnownPage(pageID) {
		h.error(w, http.StatusNotFound, "unknown page")
		return
	}

	sections, err := h.sections.ListAll(pageID)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load sections")
		return
	}
	rows, err := h.pageContent.ByPage(pageID)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load content")
		return
	}
	overridden := map[string]bool{}
	for _, row := range rows {
		overridden[row.SectionID] = true
	}

	type sectionRow struct {
		SectionID   string
		SectionName string
		SectionType string
		HasOverride bool
	}
	list := make([]sectionRow, 0, len(sections))
	for _, s := range sections {
		list = append(list, sectionRow{
			SectionID:   s.SectionID,
			SectionName: s.SectionName,
			SectionType: s.SectionType,
			HasOverride: overridden[s.SectionID],
		})
	}

	h.render(w, r, "content", map[string]any{
		"Pages":    models.KnownPages,
		"PageID":   pageID,
		"Sections": list,
	})
}

// ContentEdit shows the JSON editor for one section.
func (h *Handlers) ContentEdit(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	sectionID := chi.URLParam(r, "sectionID")

	section, err := h.sections.Get(pageID, sectionID)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load section")
		return
	}
	if section == nil {
		h.error(w, http.StatusNotFound, "unknown section")
		return
	}

	raw := section.DefaultContent
	hasOverride := false
	row, err := h.pageContent.Get(pageID, sectionID)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load content")
		return
	}
	if row != nil {
		raw = row.Content
		hasOverride = true
	}

	h.render(w, r, "content_edit", map[string]any{
		"PageID":      pageID,
		"Section":     section,
		"Content":     raw,
		"HasOverride": hasOverride,
	})
}

// ContentSave persists edited section content. Content that is not valid
// JSON for the section type is rejected with 400 and the stored row is left
// untouched.
func (h *Handlers) ContentSave(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	sectionID := chi.URLParam(r, "sectionID")

	section, err := h.sections.Get(pageID, sectionID)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load section")
		return
	}
	if section == nil {
		h.error(w, http.StatusNotFound, "unknown section")
		return
	}

	raw := r.FormValue("content")
	if _, err := content.Normalize(section.SectionType, []byte(raw)); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "content_edit", map[string]any{
			"PageID":      pageID,
			"Section":     section,
			"Content":     raw,
			"HasOverride": true,
			"Error":       "Invalid content: " + err.Error(),
		})
		return
	}

	row := &models.PageContent{
		PageID:    pageID,
		SectionID: sectionID,
		Content:   raw,
	}
	if user := middleware.UserFromContext(r); user != nil {
		row.UpdatedBy = user.ID
	}
	if err := h.pageContent.Upsert(row); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to save content")
		return
	}

	h.cache.Invalidate(pageID)
	h.auditLog(r, "content.update", "page_content", pageID+"/"+sectionID)
	http.Redirect(w, r, "/admin/content?page="+pageID, http.StatusSeeOther)
}

// ContentReset deletes the stored row so the section falls back to its
// default content.
func (h *Handlers) ContentReset(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	sectionID := chi.URLParam(r, "sectionID")

	if err := h.pageContent.Delete(pageID, sectionID); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to reset content")
		return
	}

	h.cache.Invalidate(pageID)
	h.auditLog(r, "content.reset", "page_content", pageID+"/"+sectionID)
	http.Redirect(w, r, "/admin/content?page="+pageID, http.StatusSeeOther)
}
