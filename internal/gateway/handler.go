package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/ussdlab/journey-console/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter Filter) ([]Gateway, error)
	GetByID(ctx context.Context, id string) (*Gateway, error)
	Create(ctx context.Context, dto CreateGatewayDTO) (*Gateway, error)
	Update(ctx context.Context, id string, dto UpdateGatewayDTO) (*Gateway, error)
	UpdateStatus(ctx context.Context, id string, dto UpdateGatewayStatusDTO) (*Gateway, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// FilterFromQuery builds the list filter from query parameters: country is the
// scope key, everything else is optional.
func FilterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	return Filter{
		Country:     q.Get("country"),
		Status:      q.Get("status"),
		CarrierID:   q.Get("carrier_id"),
		GatewayType: q.Get("gateway_type"),
		Search:      q.Get("search"),
	}
}

func (h *Handler) ListGateways(w http.ResponseWriter, r *http.Request) {
	gateways, err := h.Service.List(r.Context(), FilterFromQuery(r))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GatewaysResponse{Gateways: gateways})
}

func (h *Handler) GetGateway(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) CreateGateway(w http.ResponseWriter, r *http.Request) {
	var dto CreateGatewayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) UpdateGateway(w http.ResponseWriter, r *http.Request) {
	var dto UpdateGatewayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) UpdateGatewayStatus(w http.ResponseWriter, r *http.Request) {
	var dto UpdateGatewayStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record)
}
