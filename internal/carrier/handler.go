package carrier

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/ussdlab/journey-console/internal/transport"
)

type ServiceAPI interface {
	ListByCountry(ctx context.Context, country string) ([]Carrier, error)
	GetByID(ctx context.Context, id string) (*Carrier, error)
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

func (h *Handler) ListCarriers(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")

	carriers, err := h.Service.ListByCountry(r.Context(), country)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	responses := make([]CarrierResponse, 0, len(carriers))
	for i := range carriers {
		responses = append(responses, carriers[i].ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, CarriersResponse{Carriers: responses})
}

func (h *Handler) GetCarrier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}
