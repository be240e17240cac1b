package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

// BookDemoPage shows the public demo booking form.
func (h *Handlers) BookDemoPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Form": map[string]string{}}
	if products, err := h.products.List(true); err == nil {
		data["Products"] = products
	}
	h.renderSite(w, "book_demo", data)
}

// BookDemo handles the public demo booking form. The booking row is the
// primary effect; the confirmation email is queued best-effort afterwards.
func (h *Handlers) BookDemo(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{
		"name":           strings.TrimSpace(r.FormValue("name")),
		"email":          strings.TrimSpace(strings.ToLower(r.FormValue("email"))),
		"company":        strings.TrimSpace(r.FormValue("company")),
		"phone":          strings.TrimSpace(r.FormValue("phone")),
		"preferred_date": strings.TrimSpace(r.FormValue("preferred_date")),
		"message":        strings.TrimSpace(r.FormValue("message")),
	}

	var errs []string
	if form["name"] == "" {
		errs = append(errs, "Name is required")
	}
	if !emailPattern.MatchString(form["email"]) {
		errs = append(errs, "A valid email address is required")
	}
	if len(errs) > 0 {
		w.WriteHeader(http.StatusBadRequest)
		data := map[string]any{"Errors": errs, "Form": form}
		if products, err := h.products.List(true); err == nil {
			data["Products"] = products
		}
		h.renderSite(w, "book_demo", data)
		return
	}

	booking := &models.DemoBooking{
		Name:          form["name"],
		Email:         form["email"],
		Company:       form["company"],
		Phone:         form["phone"],
		ProductID:     r.FormValue("product_id"),
		PreferredDate: form["preferred_date"],
		Message:       form["message"],
	}
	if err := h.bookings.Create(booking); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to save booking")
		return
	}

	h.countForm("book_demo")
	h.enqueueDemoConfirmation(booking)
	h.renderSite(w, "book_demo", map[string]any{"Submitted": true})
}

// BookingsAdmin lists demo bookings with an optional status filter.
func (h *Handlers) BookingsAdmin(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	bookings, err := h.bookings.List(models.BookingListFilter{Status: status})
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load bookings")
		return
	}
	h.render(w, r, "bookings", map[string]any{
		"Bookings": bookings,
		"Status":   status,
	})
}

// BookingSetStatus transitions a booking through the pipeline.
func (h *Handlers) BookingSetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.FormValue("status")
	if !models.ValidBookingStatus(status) {
		h.error(w, http.StatusBadRequest, "invalid status")
		return
	}
	if err := h.bookings.SetStatus(id, status); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to update booking")
		return
	}
	h.auditLog(r, "booking.status", "demo_booking", id)
	http.Redirect(w, r, "/admin/bookings", http.StatusSeeOther)
}
