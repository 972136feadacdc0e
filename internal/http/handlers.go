package http

import (
	"context"
	"net/http"
	"time"

	"finance/internal/charts"
	"finance/internal/core"
	applog "finance/internal/log"
)

// readyTimeout bounds the store probe behind /readyz.
const readyTimeout = 2 * time.Second

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := s.transactions.List(r.Context())
	if err != nil {
		errorFor(r, applog.OpList, err).Write(w)
		return
	}
	NewJSONResponse().Body(items).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSONBody(w, r, &in); err != nil {
		errorFor(r, applog.OpCreate, err).Write(w)
		return
	}

	t, err := s.transactions.Create(r.Context(), in)
	if err != nil {
		errorFor(r, applog.OpCreate, err).Write(w)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogTransactionChanged(r.Context(), applog.OpCreate, t)
	NewJSONResponse().Status(http.StatusCreated).Body(t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSONBody(w, r, &in); err != nil {
		errorFor(r, applog.OpUpdate, err).Write(w)
		return
	}

	t, err := s.transactions.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		errorFor(r, applog.OpUpdate, err).Write(w)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogTransactionChanged(r.Context(), applog.OpUpdate, t)
	NewJSONResponse().Body(t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		errorFor(r, applog.OpDelete, err).Write(w)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction delete succeeded",
		applog.FieldTransactionID, id,
		applog.FieldOperation, applog.OpDelete)
	MessageResponse("transaction deleted").Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.transactions.Summary(r.Context())
	if err != nil {
		errorFor(r, applog.OpSummary, err).Write(w)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handleSummaryChart(w http.ResponseWriter, r *http.Request) {
	summary, err := s.transactions.Summary(r.Context())
	if err != nil {
		errorFor(r, applog.OpRender, err).Write(w)
		return
	}

	png, err := charts.CategoryPie(summary)
	if err != nil {
		errorFor(r, applog.OpRender, err).Write(w)
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c core.Credentials
	if err := decodeJSONBody(w, r, &c); err != nil {
		errorFor(r, applog.OpLogin, err).Write(w)
		return
	}

	res, err := s.auth.Login(r.Context(), c)
	if err != nil {
		errorFor(r, applog.OpLogin, err).Write(w)
		return
	}
	NewJSONResponse().Body(res).Write(w)
}

type statusBody struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(statusBody{
		Status:    "online",
		Version:   Version,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.transactions.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness probe failed", applog.FieldError, err)
		ErrorResponse(http.StatusServiceUnavailable, "store unavailable").Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
