package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iurnickita/bakery/internal/model"
)

func (h *handler) AdminGetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.Admin().Orders(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ordersJSON(orders))
}

type PatchOrderStatusJSONRequest struct {
	Status string `json:"status"`
}

func (h *handler) AdminPatchOrderStatus(w http.ResponseWriter, r *http.Request) {
	var statusReq PatchOrderStatusJSONRequest
	if !h.readJSON(w, r, &statusReq) {
		return
	}
	if err := h.service.Admin().UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), statusReq.Status); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminSaveProduct создаёт товар (POST) или обновляет его (PUT /{id}).
func (h *handler) AdminSaveProduct(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if !h.readJSON(w, r, &product) {
		return
	}
	product.ID = chi.URLParam(r, "id")

	saved, err := h.service.Admin().SaveProduct(r.Context(), product)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, savedStatus(product.ID), saved)
}

func (h *handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Admin().DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) AdminSaveCategory(w http.ResponseWriter, r *http.Request) {
	var category model.Category
	if !h.readJSON(w, r, &category) {
		return
	}
	category.ID = chi.URLParam(r, "id")

	saved, err := h.service.Admin().SaveCategory(r.Context(), category)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, savedStatus(category.ID), saved)
}

func (h *handler) AdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Admin().DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) AdminGetCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.Admin().Customers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, customers)
}

func (h *handler) AdminGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Admin().Settings(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

func (h *handler) AdminPutSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if !h.readJSON(w, r, &settings) {
		return
	}
	saved, err := h.service.Admin().SaveSettings(r.Context(), settings)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

func savedStatus(id string) int {
	if id == "" {
		return http.StatusCreated
	}
	return http.StatusOK
}
