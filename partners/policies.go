/*
policies.go - Pre-built partner configurations

PURPOSE:
  Ready-to-use partner configurations for the rental programs currently
  in effect. Only two partners accrue rent under the current rule set;
  every other partner is balance-only by design.

AVAILABLE CONFIGURATIONS:
  TieredRentalPartner:
    - Volume-tiered daily rate (1.25 base, 1.19 at 2000+, 1.14 at 3000+)
    - No grace period: rent accrues from day one
    - Used for the high-volume pooling partner

  FlatRentalPartner:
    - Single negotiated daily rate
    - Grace period before accrual starts
    - Used for fixed-fee rental customers

  BalanceOnlyPartner:
    - No rate schedule; loans age but never accrue rent
    - The default for ordinary customers and providers

SEE ALSO:
  - rates.go:          Schedule implementations
  - factory/partner.go: JSON-based partner creation
*/
package partners

import (
	"github.com/shopspring/decimal"

	"github.com/depotline/pallet-engine/ledger"
)

// Current tiered program thresholds and rates.
var (
	tieredBaseRate = decimal.RequireFromString("1.25")
	tier2000Rate   = decimal.RequireFromString("1.19")
	tier3000Rate   = decimal.RequireFromString("1.14")
)

// TieredRentalPartner creates the volume-tiered rental configuration.
// The per-unit rate drops as the partner's aggregate open balance crosses
// 2000 and 3000 units.
func TieredRentalPartner(id ledger.EntityID, name string, pallets ...ledger.PalletID) ledger.Partner {
	return ledger.Partner{
		ID:             id,
		Name:           name,
		Type:           ledger.PartnerCustomer,
		AllowedPallets: pallets,
		GracePeriod:    0,
		Rates: &TieredRate{
			Base: tieredBaseRate,
			Tiers: []Tier{
				{MinBalance: 2000, Rate: tier2000Rate},
				{MinBalance: 3000, Rate: tier3000Rate},
			},
		},
	}
}

// FlatRentalPartner creates a fixed-fee rental configuration with a
// grace period before accrual starts.
func FlatRentalPartner(id ledger.EntityID, name string, dailyRate decimal.Decimal, graceDays int, pallets ...ledger.PalletID) ledger.Partner {
	return ledger.Partner{
		ID:             id,
		Name:           name,
		Type:           ledger.PartnerCustomer,
		AllowedPallets: pallets,
		GracePeriod:    graceDays,
		Rates:          &FlatRate{Rate: dailyRate},
	}
}

// BalanceOnlyPartner creates a partner that tracks balances and loan ages
// but never accrues rent.
func BalanceOnlyPartner(id ledger.EntityID, name string, ptype ledger.PartnerType, pallets ...ledger.PalletID) ledger.Partner {
	return ledger.Partner{
		ID:             id,
		Name:           name,
		Type:           ptype,
		AllowedPallets: pallets,
	}
}
