// Package api exposes the authorization engine over HTTP. The caller's
// identity is taken from the X-Principal header; verifying that the request
// really originates from that principal (signatures, mTLS) is the job of
// the deployment in front of this service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/multisig-authorization-engine/internal/engine"
	"github.com/sheikh-saqib/multisig-authorization-engine/internal/models"
)

const principalHeader = "X-Principal"

type API struct {
	engine *engine.Engine
	logger zerolog.Logger
}

func NewAPI(eng *engine.Engine, logger zerolog.Logger) *API {
	return &API{engine: eng, logger: logger}
}

// Register attaches all routes to the router.
func (api *API) Register(router *mux.Router) {
	router.HandleFunc("/health", api.Health).Methods("GET")

	router.HandleFunc("/transactions", api.Propose).Methods("POST")
	router.HandleFunc("/transactions", api.ListTransactions).Methods("GET")
	router.HandleFunc("/transactions/{index}", api.GetTransaction).Methods("GET")
	router.HandleFunc("/transactions/{index}/confirmations", api.GetConfirmations).Methods("GET")
	router.HandleFunc("/transactions/{index}/confirm", api.Confirm).Methods("POST")
	router.HandleFunc("/transactions/{index}/revoke", api.Revoke).Methods("POST")
	router.HandleFunc("/transactions/{index}/execute", api.Execute).Methods("POST")

	router.HandleFunc("/signers", api.ListSigners).Methods("GET")
	router.HandleFunc("/signers", api.AddSigner).Methods("POST")
	router.HandleFunc("/signers/{identity}", api.RemoveSigner).Methods("DELETE")
	router.HandleFunc("/threshold", api.SetThreshold).Methods("PUT")
}

func (api *API) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		api.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (api *API) writeError(w http.ResponseWriter, err error) {
	api.writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps the engine's error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, engine.ErrTxNotFound) {
		return http.StatusNotFound
	}
	switch engine.KindOf(err) {
	case engine.KindValidation:
		return http.StatusBadRequest
	case engine.KindAuthorization:
		return http.StatusForbidden
	case engine.KindStateConflict:
		return http.StatusConflict
	case engine.KindCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (api *API) principal(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	principal := models.Identity(r.Header.Get(principalHeader))
	if principal.IsZero() {
		api.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing " + principalHeader + " header"})
		return "", false
	}
	return principal, true
}

func txIndex(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["index"], 10, 64)
}

func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	api.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (api *API) Propose(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.principal(w, r)
	if !ok {
		return
	}

	var req struct {
		Recipient models.Identity `json:"recipient"`
		Value     uint64          `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	index, err := api.engine.Propose(r.Context(), principal, req.Recipient, req.Value)
	if err != nil {
		api.logger.Error().Err(err).Str("principal", string(principal)).Msg("propose rejected")
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, map[string]uint64{"index": index})
}

func (api *API) ListTransactions(w http.ResponseWriter, r *http.Request) {
	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": api.engine.Transactions(),
		"count":        api.engine.TransactionCount(),
		"threshold":    api.engine.Threshold(),
	})
}

func (api *API) GetTransaction(w http.ResponseWriter, r *http.Request) {
	index, err := txIndex(r)
	if err != nil {
		api.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid transaction index"})
		return
	}
	tx, err := api.engine.Transaction(index)
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, tx)
}

func (api *API) GetConfirmations(w http.ResponseWriter, r *http.Request) {
	index, err := txIndex(r)
	if err != nil {
		api.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid transaction index"})
		return
	}
	signers, err := api.engine.Confirmations(index)
	if err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"index":      index,
		"confirmers": signers,
	})
}

func (api *API) Confirm(w http.ResponseWriter, r *http.Request) {
	api.mutateTransaction(w, r, api.engine.Confirm, "confirmed")
}

func (api *API) Revoke(w http.ResponseWriter, r *http.Request) {
	api.mutateTransaction(w, r, api.engine.Revoke, "revoked")
}

func (api *API) Execute(w http.ResponseWriter, r *http.Request) {
	api.mutateTransaction(w, r, api.engine.Execute, "executed")
}

func (api *API) mutateTransaction(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, caller models.Identity, index uint64) error,
	status string,
) {
	principal, ok := api.principal(w, r)
	if !ok {
		return
	}
	index, err := txIndex(r)
	if err != nil {
		api.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid transaction index"})
		return
	}
	if err := op(r.Context(), principal, index); err != nil {
		api.logger.Error().Err(err).Uint64("index", index).Str("principal", string(principal)).Msg("operation rejected")
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]interface{}{"index": index, "status": status})
}

func (api *API) ListSigners(w http.ResponseWriter, r *http.Request) {
	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"signers":   api.engine.Signers(),
		"threshold": api.engine.Threshold(),
	})
}

func (api *API) AddSigner(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Identity models.Identity `json:"identity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := api.engine.AddSigner(r.Context(), principal, req.Identity); err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, map[string]interface{}{"identity": req.Identity})
}

func (api *API) RemoveSigner(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.principal(w, r)
	if !ok {
		return
	}
	identity := models.Identity(mux.Vars(r)["identity"])
	if err := api.engine.RemoveSigner(r.Context(), principal, identity); err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]interface{}{"identity": identity, "status": "removed"})
}

func (api *API) SetThreshold(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Threshold int `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := api.engine.SetThreshold(r.Context(), principal, req.Threshold); err != nil {
		api.writeError(w, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]int{"threshold": req.Threshold})
}
