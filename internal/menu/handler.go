package menu

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/ussdlab/journey-console/internal/transport"
)

type ServiceAPI interface {
	ListByGateway(ctx context.Context, gatewayID string) ([]GatewayMenu, error)
	Create(ctx context.Context, gatewayID string, dto CreateMenuDTO) (*GatewayMenu, error)
	Update(ctx context.Context, id string, dto UpdateMenuDTO) (*GatewayMenu, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, gatewayID string, dto ReorderDTO) ([]GatewayMenu, error)
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

func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.Service.ListByGateway(r.Context(), chi.URLParam(r, "gatewayID"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MenusResponse{Menus: menus})
}

func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var dto CreateMenuDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Create(r.Context(), chi.URLParam(r, "gatewayID"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	var dto UpdateMenuDTO
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

func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ReorderMenus(w http.ResponseWriter, r *http.Request) {
	var dto ReorderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	menus, err := h.Service.Reorder(r.Context(), chi.URLParam(r, "gatewayID"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MenusResponse{Menus: menus})
}
