package journey

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/ussdlab/journey-console/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter Filter) ([]Journey, error)
	Get(ctx context.Context, id string) (*Journey, error)
	Create(ctx context.Context, dto CreateJourneyDTO) (*Journey, error)
	Update(ctx context.Context, id string, dto UpdateJourneyDTO) (*Journey, error)
	Publish(ctx context.Context, id string) (*Journey, error)
	Archive(ctx context.Context, id string) (*Journey, error)
	ListVersions(ctx context.Context, journeyID string) ([]Version, error)
	CreateVersion(ctx context.Context, journeyID string, dto CreateVersionDTO) (*Version, error)
	PublishVersion(ctx context.Context, journeyID, versionID string) (*Version, error)
	PromoteVersionToCurrent(ctx context.Context, journeyID, versionID string) (*Journey, error)
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

func (h *Handler) ListJourneys(w http.ResponseWriter, r *http.Request) {
	journeys, err := h.Service.List(r.Context(), FilterFromQuery(r.URL.Query()))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	responses := make([]JourneyResponse, 0, len(journeys))
	for i := range journeys {
		responses = append(responses, journeys[i].ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, JourneysResponse{Journeys: responses})
}

func (h *Handler) GetJourney(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}

func (h *Handler) CreateJourney(w http.ResponseWriter, r *http.Request) {
	var dto CreateJourneyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, record.ToResponse())
}

func (h *Handler) UpdateJourney(w http.ResponseWriter, r *http.Request) {
	var dto UpdateJourneyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}

func (h *Handler) PublishJourney(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}

func (h *Handler) ArchiveJourney(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Archive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}

func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.Service.ListVersions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	responses := make([]VersionResponse, 0, len(versions))
	for i := range versions {
		responses = append(responses, versions[i].ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, VersionsResponse{Versions: responses})
}

func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var dto CreateVersionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	version, err := h.Service.CreateVersion(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, version.ToResponse())
}

func (h *Handler) PublishVersion(w http.ResponseWriter, r *http.Request) {
	version, err := h.Service.PublishVersion(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "versionID"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, version.ToResponse())
}

func (h *Handler) PromoteVersion(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.PromoteVersionToCurrent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "versionID"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}
