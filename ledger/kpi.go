/*
kpi.go - Ratio and trend aggregates for the dashboard

PURPOSE:
  Simple ratio/delta arithmetic over a date-filtered slice of the ledger.
  Nothing here is clever; it exists so the presentation layer never does
  arithmetic on raw transactions.

DEFINITIONS:
  utilizationRate = unitsOnLoan / (unitsOnLoan + unitsOnHand)
                    where unitsOnLoan sums positive partner balances and
                    unitsOnHand sums the stock snapshot.
  maintenanceRate = maintenanceQty / totalMovedQty in the period.
  trend%          = (current - previous) / previous * 100 against the
                    preceding period of equal length; 0 when the previous
                    period had no activity.
*/
package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// KPI SNAPSHOT
// =============================================================================

// KPISnapshot holds period aggregates plus period-over-period trends.
type KPISnapshot struct {
	From TimePoint
	To   TimePoint

	TotalIn          int
	TotalOut         int
	TotalMaintenance int
	TotalScrap       int
	MovedQty         int // all completed movement in the period

	UtilizationRate decimal.Decimal // 0..1
	MaintenanceRate decimal.Decimal // 0..1

	MovementTrendPct    decimal.Decimal
	MaintenanceTrendPct decimal.Decimal
}

// ComputeKPIs derives dashboard aggregates for [from, to]. The partner
// config identifies which entities count as "on loan" for utilization;
// the snapshot supplies on-hand stock.
func ComputeKPIs(txs []Transaction, snapshot StockSnapshot, cfg PartnerConfig, from, to TimePoint) KPISnapshot {
	period := FilterByDate(txs, from, to)
	k := KPISnapshot{From: from, To: to}

	for _, tx := range Completed(period) {
		k.MovedQty += tx.Qty
		switch tx.Type {
		case TxIn:
			k.TotalIn += tx.Qty
		case TxOut:
			k.TotalOut += tx.Qty
		case TxMaintenance:
			k.TotalMaintenance += tx.Qty
			k.TotalScrap += tx.ScrapQty
		}
	}

	// Utilization is a point-in-time figure over the full ledger, not the
	// period slice: loans opened before the period still count.
	onLoan := 0
	for id, partner := range cfg {
		pallets := partner.AllowedPallets
		if len(pallets) == 0 {
			pallets = PalletTypes(txs)
		}
		onLoan += AggregateBalance(txs, id, pallets)
	}
	onHand := 0
	for _, byPallet := range snapshot {
		for _, qty := range byPallet {
			onHand += qty
		}
	}
	k.UtilizationRate = ratio(onLoan, onLoan+onHand)
	k.MaintenanceRate = ratio(k.TotalMaintenance, k.MovedQty)

	// Trends against the preceding period of equal length.
	span := DaysBetween(from, to)
	prev := FilterByDate(txs, from.AddDays(-span-1), from.AddDays(-1))
	prevMoved, prevMaint := 0, 0
	for _, tx := range Completed(prev) {
		prevMoved += tx.Qty
		if tx.Type == TxMaintenance {
			prevMaint += tx.Qty
		}
	}
	k.MovementTrendPct = trendPct(k.MovedQty, prevMoved)
	k.MaintenanceTrendPct = trendPct(k.TotalMaintenance, prevMaint)

	return k
}

func ratio(num, den int) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(num)).Div(decimal.NewFromInt(int64(den)))
}

func trendPct(current, previous int) decimal.Decimal {
	if previous == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(current - previous)).
		Div(decimal.NewFromInt(int64(previous))).
		Mul(decimal.NewFromInt(100))
}
