/*
Package factory provides JSON to Go partner-config conversion.

PURPOSE:
  Converts JSON partner definitions into ledger.Partner values with the
  right rate schedule attached. Operations staff can adjust rental terms
  in JSON without code changes; the factory validates the structure and
  builds the proper Go structs.

JSON SCHEMA:
  {
    "id": "partner-grandunion",
    "name": "Grand Union Pooling",
    "type": "customer",
    "allowed_pallets": ["EURO", "STANDARD"],
    "grace_period_days": 0,
    "rates": {
      "type": "tiered",
      "base_rate": "1.25",
      "tiers": [
        {"min_balance": 2000, "rate": "1.19"},
        {"min_balance": 3000, "rate": "1.14"}
      ]
    }
  }

  "rates" may be omitted entirely for balance-only partners, or use
  {"type": "flat", "base_rate": "1.50"} for a fixed fee.

VALIDATION:
  Structural validation uses go-playground/validator struct tags; rate
  strings are parsed with shopspring/decimal so "1.19" stays exact.

SEE ALSO:
  - partners/rates.go:    Schedule implementations built here
  - partners/policies.go: Go-based pre-built configurations
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/depotline/pallet-engine/ledger"
	"github.com/depotline/pallet-engine/partners"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PartnerJSON is the JSON representation of a partner configuration.
type PartnerJSON struct {
	ID              string     `json:"id" validate:"required"`
	Name            string     `json:"name" validate:"required"`
	Type            string     `json:"type" validate:"required,oneof=customer provider"`
	AllowedPallets  []string   `json:"allowed_pallets,omitempty"`
	GracePeriodDays int        `json:"grace_period_days" validate:"gte=0"`
	Rates           *RatesJSON `json:"rates,omitempty"`
}

// RatesJSON represents a rate schedule.
type RatesJSON struct {
	Type     string     `json:"type" validate:"required,oneof=flat tiered"`
	BaseRate string     `json:"base_rate" validate:"required"`
	Tiers    []TierJSON `json:"tiers,omitempty" validate:"dive"`
}

// TierJSON is one volume tier. The tier applies at balances >= MinBalance.
type TierJSON struct {
	MinBalance int    `json:"min_balance" validate:"gt=0"`
	Rate       string `json:"rate" validate:"required"`
}

// =============================================================================
// PARTNER FACTORY
// =============================================================================

// PartnerFactory converts JSON partner definitions to ledger.Partner.
type PartnerFactory struct {
	validate *validator.Validate
}

func NewPartnerFactory() *PartnerFactory {
	return &PartnerFactory{validate: validator.New()}
}

// ParsePartner builds a ledger.Partner from a JSON definition.
func (f *PartnerFactory) ParsePartner(jsonStr string) (ledger.Partner, error) {
	var pj PartnerJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return ledger.Partner{}, fmt.Errorf("invalid partner JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts an already-decoded definition.
func (f *PartnerFactory) FromJSON(pj PartnerJSON) (ledger.Partner, error) {
	if err := f.validate.Struct(pj); err != nil {
		return ledger.Partner{}, fmt.Errorf("invalid partner config: %w", err)
	}

	p := ledger.Partner{
		ID:          ledger.EntityID(pj.ID),
		Name:        pj.Name,
		Type:        ledger.PartnerType(pj.Type),
		GracePeriod: pj.GracePeriodDays,
	}
	for _, pallet := range pj.AllowedPallets {
		p.AllowedPallets = append(p.AllowedPallets, ledger.PalletID(pallet))
	}

	if pj.Rates != nil {
		rates, err := buildRates(*pj.Rates)
		if err != nil {
			return ledger.Partner{}, err
		}
		p.Rates = rates
	}
	return p, nil
}

// ToJSON converts a partner back to its JSON definition, for persistence
// and the admin API.
func ToJSON(p ledger.Partner) PartnerJSON {
	pj := PartnerJSON{
		ID:              string(p.ID),
		Name:            p.Name,
		Type:            string(p.Type),
		GracePeriodDays: p.GracePeriod,
	}
	for _, pallet := range p.AllowedPallets {
		pj.AllowedPallets = append(pj.AllowedPallets, string(pallet))
	}

	switch r := p.Rates.(type) {
	case *partners.FlatRate:
		pj.Rates = &RatesJSON{Type: "flat", BaseRate: r.Rate.String()}
	case *partners.TieredRate:
		rj := &RatesJSON{Type: "tiered", BaseRate: r.Base.String()}
		for _, t := range r.Tiers {
			rj.Tiers = append(rj.Tiers, TierJSON{MinBalance: t.MinBalance, Rate: t.Rate.String()})
		}
		pj.Rates = rj
	}
	return pj
}

func buildRates(rj RatesJSON) (ledger.RateSchedule, error) {
	base, err := decimal.NewFromString(rj.BaseRate)
	if err != nil {
		return nil, fmt.Errorf("invalid base_rate %q: %w", rj.BaseRate, err)
	}

	switch rj.Type {
	case "flat":
		return &partners.FlatRate{Rate: base}, nil
	case "tiered":
		tr := &partners.TieredRate{Base: base}
		for _, tj := range rj.Tiers {
			rate, err := decimal.NewFromString(tj.Rate)
			if err != nil {
				return nil, fmt.Errorf("invalid tier rate %q: %w", tj.Rate, err)
			}
			tr.Tiers = append(tr.Tiers, partners.Tier{MinBalance: tj.MinBalance, Rate: rate})
		}
		return tr, nil
	default:
		return nil, fmt.Errorf("unknown rate schedule type %q", rj.Type)
	}
}
