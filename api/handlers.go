/*
handlers.go - HTTP request handlers

PURPOSE:
  Implements the HTTP endpoints. Handlers stay thin: decode, call the
  store or a pure derivation from the ledger package, encode. No
  business arithmetic lives here.

STOCK MAINTENANCE:
  The confirmed snapshot is the store's running total, moved only when a
  line completes (or a completed line is cancelled or corrected). Only
  branch legs move stock: partner legs are tracked through the ledger
  alone, so a partner never appears in the snapshot.

ERROR MAPPING:
  ledger.IsNotFound    -> 404
  ledger.IsClientError -> 400
  everything else      -> 500

SEE ALSO:
  - dto.go:    Request/response types
  - server.go: Route definitions
  - seed.go:   Demo dataset
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/depotline/pallet-engine/factory"
	"github.com/depotline/pallet-engine/ledger"
)

// Store is everything the handlers need from persistence.
type Store interface {
	ledger.Store
	ledger.PartnerStore
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store   Store
	factory *factory.PartnerFactory
	log     *logrus.Logger
}

func NewHandler(store Store, log *logrus.Logger) *Handler {
	return &Handler{
		store:   store,
		factory: factory.NewPartnerFactory(),
		log:     log,
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// respondError maps domain errors to HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

var movementTypes = map[string]ledger.TxType{
	"in":          ledger.TxIn,
	"out":         ledger.TxOut,
	"adjust":      ledger.TxAdjust,
	"maintenance": ledger.TxMaintenance,
}

// =============================================================================
// MOVEMENT WORKFLOWS
// =============================================================================

// CreateMovement records a shipment: one transaction per line, all sharing
// a document number. Lines start pending unless "completed" is set, in
// which case branch stock moves immediately.
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req CreateMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txType, ok := movementTypes[req.Type]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown movement type: "+req.Type)
		return
	}
	if len(req.Lines) == 0 {
		writeError(w, http.StatusBadRequest, "movement needs at least one line")
		return
	}
	date, err := ledger.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	docNo := req.DocNo
	if docNo == "" {
		docNo = "MOV-" + uuid.NewString()[:8]
	}
	status := ledger.StatusPending
	if req.Completed {
		status = ledger.StatusCompleted
	}

	txs := make([]ledger.Transaction, 0, len(req.Lines))
	for _, line := range req.Lines {
		txs = append(txs, ledger.Transaction{
			ID:             uuid.NewString(),
			Type:           txType,
			Source:         ledger.EntityID(req.Source),
			Dest:           ledger.EntityID(req.Dest),
			PalletID:       ledger.PalletID(line.PalletID),
			Qty:            line.Qty,
			Date:           date,
			Status:         status,
			DocNo:          docNo,
			ReferenceDocNo: req.ReferenceDocNo,
			ScrapQty:       line.ScrapQty,
			Note:           req.Note,
			CreatedAt:      ledger.Today(),
		})
	}

	if err := h.store.AppendBatch(r.Context(), txs); err != nil {
		respondError(w, err)
		return
	}
	if req.Completed {
		for _, tx := range txs {
			if err := h.applyStock(r, tx, +1); err != nil {
				respondError(w, err)
				return
			}
		}
	}

	h.log.WithFields(logrus.Fields{
		"doc_no": docNo,
		"type":   req.Type,
		"lines":  len(txs),
		"status": string(status),
	}).Info("movement recorded")

	writeJSON(w, http.StatusCreated, toTransactionDTOs(txs))
}

// CompleteMovement confirms a pending line and moves branch stock.
func (h *Handler) CompleteMovement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := h.findTransaction(r, id)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.store.SetStatus(r.Context(), id, ledger.StatusCompleted); err != nil {
		respondError(w, err)
		return
	}
	tx.Status = ledger.StatusCompleted
	if err := h.applyStock(r, tx, +1); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// CancelMovement voids a line. Cancelling a completed line reverses its
// stock effect; the row itself stays in the log.
func (h *Handler) CancelMovement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := h.findTransaction(r, id)
	if err != nil {
		respondError(w, err)
		return
	}
	wasCompleted := tx.Status == ledger.StatusCompleted

	if err := h.store.SetStatus(r.Context(), id, ledger.StatusCancelled); err != nil {
		respondError(w, err)
		return
	}
	if wasCompleted {
		if err := h.applyStock(r, tx, -1); err != nil {
			respondError(w, err)
			return
		}
	}
	tx.Status = ledger.StatusCancelled

	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

// CorrectMovement amends a completed received line with what was actually
// on the truck, preserving the originally recorded figures.
func (h *Handler) CorrectMovement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CorrectMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	old, err := h.findTransaction(r, id)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.store.Correct(r.Context(), id, ledger.PalletID(req.PalletID), req.Qty); err != nil {
		respondError(w, err)
		return
	}

	// Re-point branch stock from the originally recorded line to the
	// corrected one.
	if err := h.applyStock(r, old, -1); err != nil {
		respondError(w, err)
		return
	}
	corrected := old
	corrected.PalletID = ledger.PalletID(req.PalletID)
	corrected.Qty = req.Qty
	if err := h.applyStock(r, corrected, +1); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.findTransaction(r, id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(updated))
}

// findTransaction loads the full log and locates one row by id.
func (h *Handler) findTransaction(r *http.Request, id string) (ledger.Transaction, error) {
	txs, err := h.store.Transactions(r.Context())
	if err != nil {
		return ledger.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return ledger.Transaction{}, ledger.ErrTransactionNotFound
}

// applyStock moves the confirmed snapshot for the branch legs of a
// completed line. sign is +1 when the line takes effect, -1 when it is
// reversed. Partner legs never touch the snapshot.
func (h *Handler) applyStock(r *http.Request, tx ledger.Transaction, sign int) error {
	cfg, err := h.store.Partners(r.Context())
	if err != nil {
		return err
	}
	isBranch := func(e ledger.EntityID) bool {
		if e == "" {
			return false
		}
		_, partner := cfg[e]
		return !partner
	}

	if isBranch(tx.Dest) {
		if err := h.store.AdjustStock(r.Context(), tx.Dest, tx.PalletID, sign*tx.Qty); err != nil {
			return err
		}
	}
	if isBranch(tx.Source) {
		if err := h.store.AdjustStock(r.Context(), tx.Source, tx.PalletID, -sign*tx.Qty); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// LEDGER READS
// =============================================================================

// ListTransactions returns the movement log, optionally limited to a
// from/to date range (inclusive, YYYY-MM-DD).
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	var txs []ledger.Transaction
	var err error
	if fromStr != "" && toStr != "" {
		var from, to ledger.TimePoint
		if from, err = ledger.ParseDay(fromStr); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		if to, err = ledger.ParseDay(toStr); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		txs, err = h.store.TransactionsInRange(r.Context(), from, to)
	} else {
		txs, err = h.store.Transactions(r.Context())
	}
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// GetBalances returns the derived positions for one entity across every
// pallet type it has touched.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	entity := ledger.EntityID(chi.URLParam(r, "entity"))

	txs, err := h.store.Transactions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	clean, _ := ledger.ValidateTransactions(txs)

	positions := ledger.PositionsFor(clean, entity)
	dtos := make([]BalanceDTO, len(positions))
	for i, p := range positions {
		dtos[i] = BalanceDTO{
			EntityID:  string(p.EntityID),
			PalletID:  string(p.PalletID),
			Balance:   p.Balance,
			InTransit: p.InTransit,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAgingSummary returns the aging/rental report as of a given day
// (query param as_of, default today).
func (h *Handler) GetAgingSummary(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOfParam(w, r)
	if !ok {
		return
	}

	txs, err := h.store.Transactions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	cfg, err := h.store.Partners(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	summary := ledger.BuildAgingSummary(txs, cfg, asOf)
	writeJSON(w, http.StatusOK, toAgingSummaryDTO(summary))
}

// =============================================================================
// STOCK
// =============================================================================

// GetStock returns the confirmed on-hand snapshot.
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.store.StockSnapshot(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	out := make(map[string]map[string]int, len(snapshot))
	for branch, byPallet := range snapshot {
		m := make(map[string]int, len(byPallet))
		for pallet, qty := range byPallet {
			m[string(pallet)] = qty
		}
		out[string(branch)] = m
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPredictions returns depletion forecasts for at-risk branch/pallet
// pairs (query param as_of, default today).
func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOfParam(w, r)
	if !ok {
		return
	}

	txs, err := h.store.Transactions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	snapshot, err := h.store.StockSnapshot(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	clean, _ := ledger.ValidateTransactions(txs)

	predictions := ledger.PredictAll(clean, snapshot, asOf)
	dtos := make([]PredictionDTO, len(predictions))
	for i, p := range predictions {
		dtos[i] = toPredictionDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// AGGREGATES AND AUDIT
// =============================================================================

// GetKPIs returns the dashboard aggregates for a period (query params
// from/to, default the trailing 30 days).
func (h *Handler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	to := ledger.Today()
	from := to.AddDays(-30)

	var err error
	if s := r.URL.Query().Get("to"); s != "" {
		if to, err = ledger.ParseDay(s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		from = to.AddDays(-30)
	}
	if s := r.URL.Query().Get("from"); s != "" {
		if from, err = ledger.ParseDay(s); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to before from")
		return
	}

	txs, err := h.store.Transactions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	snapshot, err := h.store.StockSnapshot(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	cfg, err := h.store.Partners(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	clean, _ := ledger.ValidateTransactions(txs)

	writeJSON(w, http.StatusOK, toKPIDTO(ledger.ComputeKPIs(clean, snapshot, cfg, from, to)))
}

// GetDiscrepancies runs the consistency check and returns every
// ledger/snapshot divergence.
func (h *Handler) GetDiscrepancies(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.Transactions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	snapshot, err := h.store.StockSnapshot(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	cfg, err := h.store.Partners(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	discrepancies := ledger.CheckConsistency(txs, snapshot, cfg)
	dtos := make([]DiscrepancyDTO, len(discrepancies))
	for i, d := range discrepancies {
		dtos[i] = toDiscrepancyDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PARTNER CONFIGURATION
// =============================================================================

// ListPartners returns every configured partner, ordered by id.
func (h *Handler) ListPartners(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Partners(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	dtos := make([]factory.PartnerJSON, 0, len(cfg))
	for _, p := range cfg {
		dtos = append(dtos, factory.ToJSON(p))
	}
	sortPartnerJSON(dtos)
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePartner saves a partner configuration. Posting an existing id
// replaces its configuration.
func (h *Handler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var pj factory.PartnerJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	partner, err := h.factory.FromJSON(pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.SavePartner(r.Context(), partner); err != nil {
		respondError(w, err)
		return
	}

	h.log.WithField("partner_id", pj.ID).Info("partner configuration saved")
	writeJSON(w, http.StatusCreated, factory.ToJSON(partner))
}

func sortPartnerJSON(pjs []factory.PartnerJSON) {
	sort.Slice(pjs, func(i, j int) bool { return pjs[i].ID < pjs[j].ID })
}

// =============================================================================
// SHARED PARSING
// =============================================================================

// asOfParam reads the as_of query param, defaulting to today. The bool is
// false when the response has already been written.
func (h *Handler) asOfParam(w http.ResponseWriter, r *http.Request) (ledger.TimePoint, bool) {
	s := r.URL.Query().Get("as_of")
	if s == "" {
		return ledger.Today(), true
	}
	asOf, err := ledger.ParseDay(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid as_of date, want YYYY-MM-DD")
		return ledger.TimePoint{}, false
	}
	return asOf, true
}
