package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

// PositionsAdmin lists all positions.
func (h *Handlers) PositionsAdmin(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positions.List(models.PositionListFilter{})
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load positions")
		return
	}
	h.render(w, r, "positions", map[string]any{"Positions": positions})
}

// PositionNew shows the empty position form.
func (h *Handlers) PositionNew(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "position_edit", map[string]any{
		"Position": &models.JobPosition{Type: "full-time", IsActive: true},
	})
}

// PositionEditPage shows the edit form for an existing position.
func (h *Handlers) PositionEditPage(w http.ResponseWriter, r *http.Request) {
	position, err := h.positions.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load position")
		return
	}
	if position == nil {
		h.error(w, http.StatusNotFound, "position not found")
		return
	}
	h.render(w, r, "position_edit", map[string]any{"Position": position})
}

// PositionCreate creates a position.
func (h *Handlers) PositionCreate(w http.ResponseWriter, r *http.Request) {
	position := &models.JobPosition{}
	if errs := positionFromForm(position, r); len(errs) > 0 {
		h.render(w, r, "position_edit", map[string]any{"Position": position, "Errors": errs})
		return
	}
	if err := h.positions.Create(position); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to create position")
		return
	}
	h.auditLog(r, "position.create", "job_position", position.ID)
	http.Redirect(w, r, "/admin/positions", http.StatusSeeOther)
}

// PositionUpdate updates an existing position.
func (h *Handlers) PositionUpdate(w http.ResponseWriter, r *http.Request) {
	position, err := h.positions.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load position")
		return
	}
	if position == nil {
		h.error(w, http.StatusNotFound, "position not found")
		return
	}
	if errs := positionFromForm(position, r); len(errs) > 0 {
		h.render(w, r, "position_edit", map[string]any{"Position": position, "Errors": errs})
		return
	}
	if err := h.positions.Update(position); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to update position")
		return
	}
	h.auditLog(r, "position.update", "job_position", position.ID)
	http.Redirect(w, r, "/admin/positions", http.StatusSeeOther)
}

// PositionDelete removes a position. Existing applications keep their weak
// reference to the deleted ID.
func (h *Handlers) PositionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.positions.Delete(id); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to delete position")
		return
	}
	h.auditLog(r, "position.delete", "job_position", id)
	http.Redirect(w, r, "/admin/positions", http.StatusSeeOther)
}

func positionFromForm(p *models.JobPosition, r *http.Request) []string {
	p.Title = strings.TrimSpace(r.FormValue("title"))
	p.Department = strings.TrimSpace(r.FormValue("department"))
	p.Location = strings.TrimSpace(r.FormValue("location"))
	p.Type = r.FormValue("type")
	p.SalaryRange = strings.TrimSpace(r.FormValue("salary_range"))
	p.Description = strings.TrimSpace(r.FormValue("description"))
	p.Requirements = strings.TrimSpace(r.FormValue("requirements"))
	p.IsActive = r.FormValue("is_active") != ""

	var errs []string
	if p.Title == "" {
		errs = append(errs, "Title is required")
	}
	if p.Department == "" {
		errs = append(errs, "Department is required")
	}
	if p.Location == "" {
		errs = append(errs, "Location is required")
	}
	if p.Description == "" {
		errs = append(errs, "Description is required")
	}
	return errs
}
