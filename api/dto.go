/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Decimal money
  fields are serialized as strings so clients never see float artifacts.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - factory/partner.go: PartnerJSON type reused for partner config
*/
package api

import (
	"time"

	"github.com/depotline/pallet-engine/ledger"
)

// =============================================================================
// MOVEMENT TYPES
// =============================================================================

// MovementLine is one pallet-type line of a shipment.
type MovementLine struct {
	PalletID string `json:"pallet_id"`
	Qty      int    `json:"qty"`
	ScrapQty int    `json:"scrap_qty,omitempty"` // maintenance write-offs
}

// CreateMovementRequest creates a (possibly multi-line) shipment under
// one document number.
type CreateMovementRequest struct {
	Type           string         `json:"type"` // in, out, adjust, maintenance
	Source         string         `json:"source"`
	Dest           string         `json:"dest"`
	Date           string         `json:"date"` // YYYY-MM-DD
	Lines          []MovementLine `json:"lines"`
	DocNo          string         `json:"doc_no,omitempty"` // generated when empty
	ReferenceDocNo string         `json:"reference_doc_no,omitempty"`
	Note           string         `json:"note,omitempty"`
	Completed      bool           `json:"completed,omitempty"` // confirm immediately
}

// CorrectMovementRequest amends a completed received line.
type CorrectMovementRequest struct {
	PalletID string `json:"pallet_id"`
	Qty      int    `json:"qty"`
}

// TransactionDTO represents a ledger transaction.
type TransactionDTO struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	Source           string `json:"source"`
	Dest             string `json:"dest"`
	PalletID         string `json:"pallet_id"`
	Qty              int    `json:"qty"`
	Date             string `json:"date"`
	Status           string `json:"status"`
	DocNo            string `json:"doc_no,omitempty"`
	ReferenceDocNo   string `json:"reference_doc_no,omitempty"`
	OriginalPalletID string `json:"original_pallet_id,omitempty"`
	OriginalQty      int    `json:"original_qty,omitempty"`
	ScrapQty         int    `json:"scrap_qty,omitempty"`
	Note             string `json:"note,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// =============================================================================
// DERIVED READ MODELS
// =============================================================================

// BalanceDTO is one (entity, pallet) position.
type BalanceDTO struct {
	EntityID  string `json:"entity_id"`
	PalletID  string `json:"pallet_id"`
	Balance   int    `json:"balance"`
	InTransit int    `json:"in_transit"`
}

// LoanDTO is one open loan with its accrual figures.
type LoanDTO struct {
	PartnerID   string `json:"partner_id"`
	PalletID    string `json:"pallet_id"`
	DocNo       string `json:"doc_no,omitempty"`
	BorrowDate  string `json:"borrow_date"`
	Qty         int    `json:"qty"`
	AgeDays     int    `json:"age_days"`
	OverdueDays int    `json:"overdue_days"`
	RentalRate  string `json:"rental_rate"`
	AccruedRent string `json:"accrued_rent"` // rounded to 2dp
}

// PartnerSummaryDTO is the per-partner rollup.
type PartnerSummaryDTO struct {
	PartnerID   string `json:"partner_id"`
	PartnerName string `json:"partner_name,omitempty"`
	Balance     int    `json:"balance"`
	OpenQty     int    `json:"open_qty"`
	LoanCount   int    `json:"loan_count"`
	TotalRent   string `json:"total_rent"`
	AvgAgeDays  int    `json:"avg_age_days"`
	DangerQty   int    `json:"danger_qty"`
	WarningQty  int    `json:"warning_qty"`
	AccruesRent bool   `json:"accrues_rent"`
}

// AgingSummaryDTO is the full aging/rental report.
type AgingSummaryDTO struct {
	AsOf        string              `json:"as_of"`
	Loans       []LoanDTO           `json:"loans"`
	Partners    []PartnerSummaryDTO `json:"partners"`
	TotalRent   string              `json:"total_rent"`
	Diagnostics []string            `json:"diagnostics,omitempty"`
}

// PredictionDTO is one depletion forecast.
type PredictionDTO struct {
	BranchID                 string `json:"branch_id"`
	PalletID                 string `json:"pallet_id"`
	CurrentStock             int    `json:"current_stock"`
	AvgDailyIn               string `json:"avg_daily_in"`
	AvgDailyOut              string `json:"avg_daily_out"`
	BurnRate                 string `json:"burn_rate"`
	DaysUntilEmpty           int    `json:"days_until_empty"`
	Status                   string `json:"status"`
	RecommendedReplenishment int    `json:"recommended_replenishment"`
}

// KPIDTO is the dashboard aggregate block.
type KPIDTO struct {
	From                string `json:"from"`
	To                  string `json:"to"`
	TotalIn             int    `json:"total_in"`
	TotalOut            int    `json:"total_out"`
	TotalMaintenance    int    `json:"total_maintenance"`
	TotalScrap          int    `json:"total_scrap"`
	MovedQty            int    `json:"moved_qty"`
	UtilizationRate     string `json:"utilization_rate"`
	MaintenanceRate     string `json:"maintenance_rate"`
	MovementTrendPct    string `json:"movement_trend_pct"`
	MaintenanceTrendPct string `json:"maintenance_trend_pct"`
}

// DiscrepancyDTO is one ledger/snapshot divergence.
type DiscrepancyDTO struct {
	Kind        string `json:"kind"`
	EntityID    string `json:"entity_id"`
	PalletID    string `json:"pallet_id"`
	LedgerQty   int    `json:"ledger_qty"`
	SnapshotQty int    `json:"snapshot_qty"`
	Delta       int    `json:"delta"`
	Severity    string `json:"severity"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:               tx.ID,
		Type:             string(tx.Type),
		Source:           string(tx.Source),
		Dest:             string(tx.Dest),
		PalletID:         string(tx.PalletID),
		Qty:              tx.Qty,
		Date:             tx.Date.String(),
		Status:           string(tx.Status),
		DocNo:            tx.DocNo,
		ReferenceDocNo:   tx.ReferenceDocNo,
		OriginalPalletID: string(tx.OriginalPalletID),
		OriginalQty:      tx.OriginalQty,
		ScrapQty:         tx.ScrapQty,
		Note:             tx.Note,
	}
	if !tx.CreatedAt.IsZero() {
		dto.CreatedAt = tx.CreatedAt.Time.Format(time.RFC3339)
	}
	return dto
}

func toTransactionDTOs(txs []ledger.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos
}

func toLoanDTO(l ledger.Loan) LoanDTO {
	return LoanDTO{
		PartnerID:   string(l.PartnerID),
		PalletID:    string(l.PalletID),
		DocNo:       l.DocNo,
		BorrowDate:  l.BorrowDate.String(),
		Qty:         l.Qty,
		AgeDays:     l.AgeDays,
		OverdueDays: l.OverdueDays,
		RentalRate:  l.RentalRate.String(),
		AccruedRent: l.RoundedRent().StringFixed(2),
	}
}

func toAgingSummaryDTO(s ledger.AgingRentalSummary) AgingSummaryDTO {
	dto := AgingSummaryDTO{
		AsOf:      s.AsOf.String(),
		Loans:     make([]LoanDTO, len(s.Loans)),
		Partners:  make([]PartnerSummaryDTO, len(s.Partners)),
		TotalRent: s.TotalRent.StringFixed(2),
	}
	for i, l := range s.Loans {
		dto.Loans[i] = toLoanDTO(l)
	}
	for i, ps := range s.Partners {
		dto.Partners[i] = PartnerSummaryDTO{
			PartnerID:   string(ps.PartnerID),
			PartnerName: ps.PartnerName,
			Balance:     ps.Balance,
			OpenQty:     ps.OpenQty,
			LoanCount:   ps.LoanCount,
			TotalRent:   ps.TotalRent.StringFixed(2),
			AvgAgeDays:  ps.AvgAgeDays,
			DangerQty:   ps.DangerQty,
			WarningQty:  ps.WarningQty,
			AccruesRent: ps.AccruesRent,
		}
	}
	for _, d := range s.Diagnostics {
		dto.Diagnostics = append(dto.Diagnostics, d.String())
	}
	return dto
}

func toPredictionDTO(p ledger.Prediction) PredictionDTO {
	return PredictionDTO{
		BranchID:                 string(p.BranchID),
		PalletID:                 string(p.PalletID),
		CurrentStock:             p.CurrentStock,
		AvgDailyIn:               p.AvgDailyIn.StringFixed(2),
		AvgDailyOut:              p.AvgDailyOut.StringFixed(2),
		BurnRate:                 p.BurnRate.StringFixed(2),
		DaysUntilEmpty:           p.DaysUntilEmpty,
		Status:                   string(p.Status),
		RecommendedReplenishment: p.RecommendedReplenishment,
	}
}

func toKPIDTO(k ledger.KPISnapshot) KPIDTO {
	return KPIDTO{
		From:                k.From.String(),
		To:                  k.To.String(),
		TotalIn:             k.TotalIn,
		TotalOut:            k.TotalOut,
		TotalMaintenance:    k.TotalMaintenance,
		TotalScrap:          k.TotalScrap,
		MovedQty:            k.MovedQty,
		UtilizationRate:     k.UtilizationRate.StringFixed(4),
		MaintenanceRate:     k.MaintenanceRate.StringFixed(4),
		MovementTrendPct:    k.MovementTrendPct.StringFixed(1),
		MaintenanceTrendPct: k.MaintenanceTrendPct.StringFixed(1),
	}
}

func toDiscrepancyDTO(d ledger.Discrepancy) DiscrepancyDTO {
	return DiscrepancyDTO{
		Kind:        string(d.Kind),
		EntityID:    string(d.EntityID),
		PalletID:    string(d.PalletID),
		LedgerQty:   d.LedgerQty,
		SnapshotQty: d.SnapshotQty,
		Delta:       d.Delta,
		Severity:    string(d.Severity),
	}
}
