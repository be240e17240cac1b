package handlers

import (
	"net/http"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

// Dashboard shows operational counts and the latest bookings.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"PendingBookings":     0,
		"PendingApplications": 0,
		"ActivePositions":     0,
		"ScheduledMessages":   0,
	}

	if counts, err := h.bookings.CountByStatus(); err == nil {
		data["PendingBookings"] = counts[models.BookingPending]
	} else {
		h.logger.Warn("booking counts unavailable", "error", err)
	}
	if counts, err := h.applications.CountJobByStatus(); err == nil {
		data["PendingApplications"] = counts[models.ApplicationPending]
	} else {
		h.logger.Warn("application counts unavailable", "error", err)
	}
	if n, err := h.positions.CountActive(); err == nil {
		data["ActivePositions"] = n
	}
	if n, err := h.messages.CountPending(); err == nil {
		data["ScheduledMessages"] = n
	}
	if recent, err := h.bookings.List(models.BookingListFilter{Limit: 5}); err == nil {
		data["RecentBookings"] = recent
	}

	h.render(w, r, "dashboard", data)
}
