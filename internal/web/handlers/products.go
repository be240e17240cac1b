package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

// ProductsAdmin lists all products.
func (h *Handlers) ProductsAdmin(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(false)
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	h.render(w, r, "products", map[string]any{"Products": products})
}

// ProductNew shows the empty product form.
func (h *Handlers) ProductNew(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "product_edit", map[string]any{
		"Product": &models.Product{IsActive: true},
	})
}

// ProductEditPage shows the edit form for an existing product.
func (h *Handlers) ProductEditPage(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	if product == nil {
		h.error(w, http.StatusNotFound, "product not found")
		return
	}
	h.render(w, r, "product_edit", map[string]any{"Product": product})
}

// ProductCreate creates a product.
func (h *Handlers) ProductCreate(w http.ResponseWriter, r *http.Request) {
	product := &models.Product{}
	if errs := productFromForm(product, r); len(errs) > 0 {
		h.render(w, r, "product_edit", map[string]any{"Product": product, "Errors": errs})
		return
	}
	if err := h.products.Create(product); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	h.auditLog(r, "product.create", "product", product.ID)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// ProductUpdate updates an existing product.
func (h *Handlers) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.error(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	if product == nil {
		h.error(w, http.StatusNotFound, "product not found")
		return
	}
	if errs := productFromForm(product, r); len(errs) > 0 {
		h.render(w, r, "product_edit", map[string]any{"Product": product, "Errors": errs})
		return
	}
	if err := h.products.Update(product); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	h.auditLog(r, "product.update", "product", product.ID)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

// ProductDelete removes a product.
func (h *Handlers) ProductDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.products.Delete(id); err != nil {
		h.error(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	h.auditLog(r, "product.delete", "product", id)
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func productFromForm(p *models.Product, r *http.Request) []string {
	p.Name = strings.TrimSpace(r.FormValue("name"))
	p.Tagline = strings.TrimSpace(r.FormValue("tagline"))
	p.Description = strings.TrimSpace(r.FormValue("description"))
	p.Features = strings.TrimSpace(r.FormValue("features"))
	p.PricingInfo = strings.TrimSpace(r.FormValue("pricing_info"))
	p.IsActive = r.FormValue("is_active") != ""
	if n, err := strconv.Atoi(r.FormValue("sort_order")); err == nil {
		p.SortOrder = n
	}

	var errs []string
	if p.Name == "" {
		errs = append(errs, "Name is required")
	}
	if p.Description == "" {
		errs = append(errs, "Description is required")
	}
	if p.Features != "" {
		var features []string
		if err := json.Unmarshal([]byte(p.Features), &features); err != nil {
			errs = append(errs, "Features must be a JSON array of strings")
		}
	}
	return errs
}
