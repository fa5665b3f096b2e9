package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/ussdlab/journey-console/internal/transport"
)

type ServiceAPI interface {
	ListByProvider(ctx context.Context, providerID string) ([]PaymentMethod, error)
	GetByID(ctx context.Context, id string) (*PaymentMethod, error)
	Create(ctx context.Context, dto CreateMethodDTO) (*PaymentMethod, error)
	Update(ctx context.Context, id string, dto UpdateMethodDTO) (*PaymentMethod, error)
	Delete(ctx context.Context, id string) error
	SetDefault(ctx context.Context, id string) (*PaymentMethod, error)
	CreateTransaction(ctx context.Context, methodID string, dto CreateTransactionDTO) (*PaymentTransaction, error)
	CompleteTransaction(ctx context.Context, id string) (*PaymentTransaction, error)
	FailTransaction(ctx context.Context, id string, dto FailTransactionDTO) (*PaymentTransaction, error)
	CancelTransaction(ctx context.Context, id string) (*PaymentTransaction, error)
	ListTransactions(ctx context.Context, methodID string) ([]PaymentTransaction, error)
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

func (h *Handler) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.Service.ListByProvider(r.Context(), r.URL.Query().Get("provider_id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MethodsResponse{Methods: methods})
}

func (h *Handler) GetMethod(w http.ResponseWriter, r *http.Request) {
	method, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, method)
}

func (h *Handler) CreateMethod(w http.ResponseWriter, r *http.Request) {
	var dto CreateMethodDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, method)
}

func (h *Handler) UpdateMethod(w http.ResponseWriter, r *http.Request) {
	var dto UpdateMethodDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, method)
}

func (h *Handler) DeleteMethod(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetDefaultMethod(w http.ResponseWriter, r *http.Request) {
	method, err := h.Service.SetDefault(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, method)
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto CreateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transaction, err := h.Service.CreateTransaction(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, transaction)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.Service.ListTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, TransactionsResponse{Transactions: transactions})
}

func (h *Handler) CompleteTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.Service.CompleteTransaction(r.Context(), chi.URLParam(r, "txnID"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transaction)
}

func (h *Handler) FailTransaction(w http.ResponseWriter, r *http.Request) {
	var dto FailTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	transaction, err := h.Service.FailTransaction(r.Context(), chi.URLParam(r, "txnID"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transaction)
}

func (h *Handler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.Service.CancelTransaction(r.Context(), chi.URLParam(r, "txnID"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, transaction)
}
