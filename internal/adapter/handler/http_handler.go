package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rl1809/warehouse/internal/adapter/remote"
	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/core/service"
	"github.com/rl1809/warehouse/internal/port"
)

const incidentListLimit = 50

type NotificationSource interface {
	List() []domain.Notification
}

type HTTPHandler struct {
	warehouse     *service.Warehouse
	notifications NotificationSource
	incidents     port.IncidentRepository
	logger        *zap.Logger
}

type CreateSaleHTTPRequest struct {
	ProductID  string        `json:"productId"`
	AmountSold QuantityInput `json:"amountSold"`
}

type SaleHTTPResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Sale    *domain.Sale `json:"sale,omitempty"`
}

// QuantityInput accepts a quantity sent either as a JSON number or a string.
type QuantityInput string

func (q *QuantityInput) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*q = QuantityInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*q = QuantityInput(n.String())
	return nil
}

func NewHTTPHandler(warehouse *service.Warehouse, notifications NotificationSource, incidents port.IncidentRepository, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		warehouse:     warehouse,
		notifications: notifications,
		incidents:     incidents,
		logger:        logger,
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Post("/load", h.Load)
		r.Get("/notifications", h.Notifications)
		r.Get("/incidents", h.Incidents)

		r.Post("/sales", h.CreateSale)
		r.Patch("/sales/{id}", h.UpdateSale)
		r.Delete("/sales/{id}", h.DeleteSale)

		r.Post("/articles", h.CreateArticle)
		r.Patch("/articles/{id}", h.UpdateArticle)
		r.Delete("/articles/{id}", h.DeleteArticle)

		r.Post("/products", h.CreateProduct)
		r.Get("/products/{id}/availability", h.Availability)
		r.Patch("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)
	})
	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if !h.warehouse.Ready() {
		status = "loading"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *HTTPHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.warehouse.State(r.Context()))
}

func (h *HTTPHandler) Load(w http.ResponseWriter, r *http.Request) {
	if err := h.warehouse.Load(r.Context()); err != nil {
		writeJSON(w, http.StatusBadGateway, SaleHTTPResponse{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, h.warehouse.State(r.Context()))
}

func (h *HTTPHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.notifications.List())
}

func (h *HTTPHandler) Incidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.incidents.ListIncidents(r.Context(), incidentListLimit)
	if err != nil {
		h.logger.Error("error listing incidents", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, SaleHTTPResponse{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, incidents)
}

func (h *HTTPHandler) Availability(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("quantity")
	if raw == "" {
		raw = "1"
	}
	quantity, err := domain.ParseCandidateQuantity(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, SaleHTTPResponse{Message: err.Error()})
		return
	}

	result, err := h.warehouse.Products.Availability(chi.URLParam(r, "id"), quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SaleHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, SaleHTTPResponse{
			Success: false,
			Message: "missing required fields",
		})
		return
	}

	amount, err := domain.ParseQuantity(string(req.AmountSold))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, SaleHTTPResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	stock, err := h.warehouse.Products.Availability(req.ProductID, amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !stock.Available {
		writeJSON(w, http.StatusUnprocessableEntity, SaleHTTPResponse{
			Success: false,
			Message: "insufficient stock",
		})
		return
	}

	// A client disconnect must not abandon a sale mid-cycle.
	ctx := context.WithoutCancel(r.Context())
	sale, err := h.warehouse.Sales.CreateSale(ctx, domain.SaleRequest{ProductID: req.ProductID, AmountSold: amount})
	if err != nil {
		status := http.StatusInternalServerError
		message := "internal error"
		var body *domain.Sale

		switch {
		case errors.Is(err, service.ErrSaleInProgress):
			status = http.StatusConflict
			message = "sale in progress"
		case errors.Is(err, service.ErrWarehouseNotUpdated):
			status = http.StatusMultiStatus
			message = domain.MessageWarehouseNotUpdated
			body = &sale
		case errors.Is(err, service.ErrSaleNotRegistered):
			status = http.StatusBadGateway
			message = domain.MessageSaleNotRegistered
		case errors.Is(err, domain.ErrInvalidQuantity):
			status = http.StatusBadRequest
			message = err.Error()
		}

		writeJSON(w, status, SaleHTTPResponse{
			Success: false,
			Message: message,
			Sale:    body,
		})
		return
	}

	writeJSON(w, http.StatusCreated, SaleHTTPResponse{
		Success: true,
		Message: "sale registered successfully",
		Sale:    &sale,
	})
}

func (h *HTTPHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	var fields domain.SaleFields
	if !decodeBody(w, r, &fields) {
		return
	}
	sale, err := h.warehouse.Sales.UpdateSale(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (h *HTTPHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := h.warehouse.Sales.DeleteSale(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var fields domain.ArticleFields
	if !decodeBody(w, r, &fields) {
		return
	}
	article, err := h.warehouse.Articles.CreateArticle(r.Context(), fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

func (h *HTTPHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var fields domain.ArticleFields
	if !decodeBody(w, r, &fields) {
		return
	}
	article, err := h.warehouse.Articles.UpdateArticle(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *HTTPHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.warehouse.Articles.DeleteArticle(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var fields domain.ProductFields
	if !decodeBody(w, r, &fields) {
		return
	}
	product, err := h.warehouse.Products.CreateProduct(r.Context(), fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var fields domain.ProductFields
	if !decodeBody(w, r, &fields) {
		return
	}
	product, err := h.warehouse.Products.UpdateProduct(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.warehouse.Products.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps engine errors to statuses. Remote 4xx answers pass through;
// anything else from the inventory service is a bad gateway.
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var re *remote.Error
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrArticleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity):
		status = http.StatusBadRequest
	case errors.As(err, &re):
		status = http.StatusBadGateway
		if re.Status >= 400 && re.Status < 500 {
			status = re.Status
		}
	}

	writeJSON(w, status, SaleHTTPResponse{Success: false, Message: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, SaleHTTPResponse{
			Success: false,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
