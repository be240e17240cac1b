package handlers

import (
	"net/http"

	"github.com/trinexa/trinexa-web/internal/render"
	"github.com/trinexa/trinexa-web/internal/web/models"
)

var pageTitles = map[string]string{
	models.PageHome:     "Trinexa - AI That Works For Your Business",
	models.PageAbout:    "About - Trinexa",
	models.PageCareers:  "Careers - Trinexa",
	models.PageProducts: "Products - Trinexa",
}

// Home renders the home page.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.page(w, models.PageHome, nil)
}

// About renders the about page.
func (h *Handlers) About(w http.ResponseWriter, r *http.Request) {
	h.page(w, models.PageAbout, nil)
}

// Careers renders the careers page with the open positions below the
// editable sections.
func (h *Handlers) Careers(w http.ResponseWriter, r *http.Request) {
	extra := map[string]any{}
	positions, err := h.positions.List(models.PositionListFilter{ActiveOnly: true})
	if err != nil {
		h.logger.Error("position list failed", "error", err)
	} else {
		extra["Positions"] = positions
	}
	h.page(w, models.PageCareers, extra)
}

// Products renders the products page with the active product catalogue.
func (h *Handlers) Products(w http.ResponseWriter, r *http.Request) {
	extra := map[string]any{}
	products, err := h.products.List(true)
	if err != nil {
		h.logger.Error("product list failed", "error", err)
	} else {
		extra["Products"] = products
	}
	h.page(w, models.PageProducts, extra)
}

func (h *Handlers) page(w http.ResponseWriter, pageID string, extra map[string]any) {
	sections, err := h.cache.Get(pageID)
	if err != nil {
		h.logger.Error("page resolve failed", "page", pageID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if h.metrics != nil {
		h.metrics.PageRendersTotal.WithLabelValues(pageID).Inc()
	}

	data := map[string]any{
		"Title": pageTitles[pageID],
		"Body":  render.Page(sections),
	}
	for k, v := range extra {
		data[k] = v
	}
	h.renderSite(w, "public", data)
}
