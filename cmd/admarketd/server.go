// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"net/http"

	"github.com/adxyz/admarket/pkg/analytics"
	"github.com/adxyz/admarket/pkg/errs"
	"github.com/adxyz/admarket/pkg/escrow"
	"github.com/adxyz/admarket/pkg/event"
	"github.com/adxyz/admarket/pkg/ids"
	"github.com/adxyz/admarket/pkg/ledger"
	"github.com/adxyz/admarket/pkg/log"
	"github.com/adxyz/admarket/pkg/market"
	"github.com/adxyz/admarket/pkg/metric"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// server wires the marketplace components to the HTTP surface. Caller
// identity arrives as a field in the request body: transport authentication
// is an external collaborator's job, the daemon trusts the declared signer.
type server struct {
	registry *market.Registry
	vault    *escrow.Vault
	ledger   *ledger.Ledger
	bus      *event.Bus
	tracker  *analytics.Tracker
	metrics  *metric.Metrics
	log      log.Logger

	upgrader websocket.Upgrader
}

func newServer(registry *market.Registry, vault *escrow.Vault, l *ledger.Ledger, bus *event.Bus, tracker *analytics.Tracker, m *metric.Metrics, logger log.Logger) *server {
	return &server{
		registry: registry,
		vault:    vault,
		ledger:   l,
		bus:      bus,
		tracker:  tracker,
		metrics:  m,
		log:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.GetGatherer(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/slots", s.handleCreateSlot).Methods(http.MethodPost)
	v1.HandleFunc("/slots", s.handleListSlots).Methods(http.MethodGet)
	v1.HandleFunc("/slots/{key}", s.handleGetSlot).Methods(http.MethodGet)
	v1.HandleFunc("/slots/{key}/buy", s.handleBuyFixed).Methods(http.MethodPost)
	v1.HandleFunc("/slots/{key}/bid", s.handlePlaceBid).Methods(http.MethodPost)
	v1.HandleFunc("/slots/{key}/close", s.handleCloseAuction).Methods(http.MethodPost)
	v1.HandleFunc("/slots/{key}/deactivate", s.handleDeactivate).Methods(http.MethodPost)
	v1.HandleFunc("/slots/{key}/view", s.handleIncrementView).Methods(http.MethodPost)
	v1.HandleFunc("/ads", s.handleCreateAd).Methods(http.MethodPost)
	v1.HandleFunc("/ads/{key}", s.handleGetAd).Methods(http.MethodGet)
	v1.HandleFunc("/escrows", s.handleFundEscrow).Methods(http.MethodPost)
	v1.HandleFunc("/escrows/{key}", s.handleGetEscrow).Methods(http.MethodGet)
	v1.HandleFunc("/escrows/{key}/release", s.handleReleaseEscrow).Methods(http.MethodPost)
	v1.HandleFunc("/escrows/{key}/refund", s.handleRefundEscrow).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{id}/deposit", s.handleDeposit).Methods(http.MethodPost)
	v1.HandleFunc("/accounts/{id}", s.handleGetAccount).Methods(http.MethodGet)
	v1.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCreateSlot(w http.ResponseWriter, r *http.Request) {
	var p market.CreateSlotParams
	if !s.decode(w, r, &p) {
		return
	}
	slot, err := s.registry.CreateSlot(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"slot": slot,
		"key":  slot.Key(),
	})
}

func (s *server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.registry.ListSlots()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"slots": slots})
}

func (s *server) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	slot, err := s.registry.GetSlot(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, slot)
}

type callerRequest struct {
	Caller ids.ID `json:"caller"`
}

func (s *server) handleBuyFixed(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.registry.BuyFixed(r.Context(), key, req.Caller); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	var req struct {
		Caller ids.ID `json:"caller"`
		Amount uint64 `json:"amount"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.registry.PlaceBid(r.Context(), key, req.Caller, req.Amount); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handleCloseAuction(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	if err := s.registry.CloseAuction(r.Context(), key); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.registry.Deactivate(r.Context(), key, req.Caller); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handleIncrementView(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	if err := s.registry.IncrementView(r.Context(), key); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handleCreateAd(w http.ResponseWriter, r *http.Request) {
	var p market.CreateAdParams
	if !s.decode(w, r, &p) {
		return
	}
	ad, err := s.registry.CreateAd(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ad":  ad,
		"key": ad.Key(),
	})
}

func (s *server) handleGetAd(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	ad, err := s.registry.GetAd(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ad)
}

func (s *server) handleFundEscrow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Advertiser ids.ID `json:"advertiser"`
		SlotKey    ids.ID `json:"slot_key"`
		Amount     uint64 `json:"amount"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	esc, key, err := s.vault.Fund(r.Context(), req.Advertiser, req.SlotKey, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"escrow": esc,
		"key":    key,
	})
}

func (s *server) handleGetEscrow(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	esc, err := s.vault.Get(key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, esc)
}

func (s *server) handleReleaseEscrow(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.vault.Release(r.Context(), key, req.Caller); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) handleRefundEscrow(w http.ResponseWriter, r *http.Request) {
	key, ok := s.pathID(w, r, "key")
	if !ok {
		return
	}
	var req callerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.vault.Refund(r.Context(), key, req.Caller); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleDeposit is the dev faucet: it credits an account so flows can be
// exercised without a real chain behind the ledger.
func (s *server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	account, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Amount uint64 `json:"amount"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	s.ledger.Deposit(account, req.Amount)
	s.writeJSON(w, http.StatusOK, map[string]uint64{"balance": s.ledger.Balance(account)})
}

func (s *server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]uint64{"balance": s.ledger.Balance(account)})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Stats())
}

// wsFrame is one event on the websocket feed.
type wsFrame struct {
	Type  event.Type  `json:"type"`
	Event event.Event `json:"event"`
}

// handleEvents streams marketplace events to the client as JSON frames.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.bus.Subscribe(256)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(wsFrame{Type: ev.Type(), Event: ev}); err != nil {
				return
			}
		}
	}
}

// Helpers

func (s *server) pathID(w http.ResponseWriter, r *http.Request, name string) (ids.ID, bool) {
	id, err := ids.FromString(mux.Vars(r)[name])
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return ids.Empty, false
	}
	return id, true
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case errs.KindValidation:
		status = http.StatusBadRequest
	case errs.KindStateConflict:
		status = http.StatusConflict
	case errs.KindAuthorization:
		status = http.StatusForbidden
	case errs.KindEconomic:
		status = http.StatusPaymentRequired
	case errs.KindNotFound:
		status = http.StatusNotFound
	}

	requestID := uuid.NewString()
	s.log.Info("request failed",
		"request_id", requestID,
		"path", r.URL.Path,
		"kind", kind.String(),
		"error", err)

	s.writeJSON(w, status, map[string]interface{}{
		"error":      err.Error(),
		"kind":       kind.String(),
		"retryable":  kind.Retryable(),
		"request_id": requestID,
	})
}
