package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-cart/internal/adapter/view"
	"github.com/rl1809/shop-cart/internal/core/service"
)

type HTTPHandler struct {
	widget *service.Widget
	view   *view.HTMLView
	log    logrus.FieldLogger
}

type AddItemHTTPRequest struct {
	ProductID int `json:"product_id"`
}

type CartHTTPResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Cart    *CartResponse `json:"cart,omitempty"`
}

func NewHTTPHandler(widget *service.Widget, v *view.HTMLView, log logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{widget: widget, view: v, log: log}
}

func (h *HTTPHandler) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", h.Page).Methods(http.MethodGet)
	r.HandleFunc("/fragments/cart", h.CartFragment).Methods(http.MethodGet)
	r.HandleFunc("/cart/add", h.AddForm).Methods(http.MethodPost)
	r.HandleFunc("/cart/remove", h.RemoveForm).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/cart", h.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart/items", h.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{index}", h.RemoveItem).Methods(http.MethodDelete)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	return LogRequests(h.log, r)
}

func (h *HTTPHandler) Page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.view.WritePage(w); err != nil {
		h.log.Errorf("failed to write page: %v", err)
	}
}

func (h *HTTPHandler) CartFragment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.view.WriteCart(w); err != nil {
		h.log.Errorf("failed to write cart fragment: %v", err)
	}
}

// AddForm handles the catalog's "Adicionar" buttons and sends the browser back to the page.
func (h *HTTPHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.FormValue("product_id"))
	if err != nil {
		http.Error(w, "invalid product_id", http.StatusBadRequest)
		return
	}
	if _, err := h.widget.Add(r.Context(), id); err != nil {
		status, message := h.statusFor(err)
		http.Error(w, message, status)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *HTTPHandler) RemoveForm(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	if _, err := h.widget.Remove(r.Context(), index); err != nil {
		status, message := h.statusFor(err)
		http.Error(w, message, status)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ListProductsResponse{Products: toProductResponses(h.widget.Products())})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCartResponse(h.widget.Snapshot()))
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CartHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	if req.ProductID <= 0 {
		writeJSON(w, http.StatusBadRequest, CartHTTPResponse{
			Success: false,
			Message: "missing required fields",
		})
		return
	}

	snapshot, err := h.widget.Add(r.Context(), req.ProductID)
	if err != nil {
		status, message := h.statusFor(err)
		writeJSON(w, status, CartHTTPResponse{Success: false, Message: message})
		return
	}

	writeJSON(w, http.StatusOK, CartHTTPResponse{
		Success: true,
		Message: "item added",
		Cart:    toCartResponse(snapshot),
	})
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, CartHTTPResponse{
			Success: false,
			Message: "invalid index",
		})
		return
	}

	snapshot, err := h.widget.Remove(r.Context(), index)
	if err != nil {
		status, message := h.statusFor(err)
		writeJSON(w, status, CartHTTPResponse{Success: false, Message: message})
		return
	}

	writeJSON(w, http.StatusOK, CartHTTPResponse{
		Success: true,
		Message: "item removed",
		Cart:    toCartResponse(snapshot),
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnknownProduct):
		return http.StatusNotFound, "unknown product"
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, "cart item not found"
	default:
		h.log.Errorf("cart action failed: %v", err)
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
