package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

// PositionDetail shows a public position page with its application form.
func (h *Handlers) PositionDetail(w http.ResponseWriter, r *http.Request) {
	position, ok := h.activePosition(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.renderSite(w, "position", map[string]any{
		"Position": position,
		"Form":     map[string]string{},
	})
}

// ApplyJob handles an application for a specific position. The application
// row is the primary effect; resume storage failures degrade to an
// application without attachment, and the confirmation email is queued
// best-effort.
func (h *Handlers) ApplyJob(w http.ResponseWriter, r *http.Request) {
	position, ok := h.activePosition(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	form, errs := h.applicantForm(r)
	if len(errs) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		h.renderSite(w, "position", map[string]any{
			"Position": position,
			"Errors":   errs,
			"Form":     form,
		})
		return
	}

	app := &models.JobApplication{
		PositionID:  position.ID,
		Name:        form["name"],
		Email:       form["email"],
		Phone:       form["phone"],
		CoverLetter: strings.TrimSpace(r.FormValue("cover_letter")),
		ResumePath:  h.saveResume(r),
	}
	if err := h.applications.CreateJob(app); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to save application")
		return
	}

	h.countForm("job_application")
	h.enqueueApplicationConfirmation(app.Name, app.Email, " for the "+position.Title+" role")
	h.renderSite(w, "position", map[string]any{
		"Position":  position,
		"Submitted": true,
	})
}

// ApplyGeneralPage shows the open application form.
func (h *Handlers) ApplyGeneralPage(w http.ResponseWriter, r *http.Request) {
	h.renderSite(w, "apply", map[string]any{"Form": map[string]string{}})
}

// ApplyGeneral handles an open application not tied to a position.
func (h *Handlers) ApplyGeneral(w http.ResponseWriter, r *http.Request) {
	form, errs := h.applicantForm(r)
	if len(errs) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		h.renderSite(w, "apply", map[string]any{"Errors": errs, "Form": form})
		return
	}

	app := &models.GeneralApplication{
		Name:       form["name"],
		Email:      form["email"],
		Phone:      form["phone"],
		Message:    strings.TrimSpace(r.FormValue("message")),
		ResumePath: h.saveResume(r),
	}
	if err := h.applications.CreateGeneral(app); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to save application")
		return
	}

	h.countForm("general_application")
	h.enqueueApplicationConfirmation(app.Name, app.Email, "")
	h.renderSite(w, "apply", map[string]any{"Submitted": true})
}

// ApplicationsAdmin lists both pipelines with an optional status filter.
func (h *Handlers) ApplicationsAdmin(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	filter := models.ApplicationListFilter{Status: status}

	jobs, err := h.applications.ListJob(filter)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load applications")
		return
	}
	general, err := h.applications.ListGeneral(filter)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load applications")
		return
	}

	// Resolve position titles; deleted positions show as blank.
	titles := map[string]string{}
	for _, a := range jobs {
		if _, seen := titles[a.PositionID]; seen {
			continue
		}
		if p, err := h.positions.GetByID(a.PositionID); err == nil && p != nil {
			titles[a.PositionID] = p.Title
		} else {
			titles[a.PositionID] = ""
		}
	}

	h.render(w, r, "applications", map[string]any{
		"JobApplications":     jobs,
		"GeneralApplications": general,
		"PositionTitles":      titles,
		"Status":              status,
	})
}

// ApplicationSetStatus transitions an application through the pipeline.
// kind is "job" or "general".
func (h *Handlers) ApplicationSetStatus(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")
	status := r.FormValue("status")
	if !models.ValidApplicationStatus(status) {
		h.error(w, http.StatusBadRequest, "invalid status")
		return
	}

	var err error
	switch kind {
	case "job":
		err = h.applications.SetJobStatus(id, status)
	case "general":
		err = h.applications.SetGeneralStatus(id, status)
	default:
		h.error(w, http.StatusNotFound, "unknown application kind")
		return
	}
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to update application")
		return
	}

	h.auditLog(r, "application.status", kind+"_application", id)
	http.Redirect(w, r, "/admin/applications", http.StatusSeeOther)
}

// ResumeDownload streams a stored resume to an admin.
func (h *Handlers) ResumeDownload(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		h.error(w, http.StatusNotFound, "uploads are not configured")
		return
	}
	name := chi.URLParam(r, "name")
	f, err := h.uploads.Open(name)
	if err != nil {
		h.error(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warn("resume download interrupted", "file", name, "error", err)
	}
}

func (h *Handlers) activePosition(w http.ResponseWriter, id string) (*models.JobPosition, bool) {
	position, err := h.positions.GetByID(id)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load position")
		return nil, false
	}
	if position == nil || !position.IsActive {
		h.error(w, http.StatusNotFound, "position not found")
		return nil, false
	}
	return position, true
}

func (h *Handlers) applicantForm(r *http.Request) (map[string]string, []string) {
	form := map[string]string{
		"name":  strings.TrimSpace(r.FormValue("name")),
		"email": strings.TrimSpace(strings.ToLower(r.FormValue("email"))),
		"phone": strings.TrimSpace(r.FormValue("phone")),
	}

	var errs []string
	if form["name"] == "" {
		errs = append(errs, "Name is required")
	}
	if !emailPattern.MatchString(form["email"]) {
		errs = append(errs, "A valid email address is required")
	}
	return form, errs
}

// saveResume stores an uploaded resume and returns its stored name. Any
// failure is logged and the application proceeds without an attachment.
func (h *Handlers) saveResume(r *http.Request) string {
	if h.uploads == nil {
		return ""
	}
	file, header, err := r.FormFile("resume")
	if err != nil {
		return ""
	}
	defer file.Close()

	name, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		h.logger.Warn("resume upload rejected", "filename", header.Filename, "error", err)
		return ""
	}
	return name
}
