package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotline/pallet-engine/factory"
	"github.com/depotline/pallet-engine/ledger"
	"github.com/depotline/pallet-engine/partners"
)

// =============================================================================
// PARTNER FACTORY TESTS
// =============================================================================

func TestParsePartner_Tiered(t *testing.T) {
	f := factory.NewPartnerFactory()

	p, err := f.ParsePartner(`{
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
	}`)
	require.NoError(t, err)

	assert.Equal(t, ledger.EntityID("partner-grandunion"), p.ID)
	assert.Equal(t, ledger.PartnerCustomer, p.Type)
	assert.Equal(t, []ledger.PalletID{ledger.PalletEuro, ledger.PalletStandard}, p.AllowedPallets)

	tiered, ok := p.Rates.(*partners.TieredRate)
	require.True(t, ok, "expected a tiered schedule")
	assert.Equal(t, "1.25", tiered.Base.String())
	require.Len(t, tiered.Tiers, 2)
	assert.Equal(t, 2000, tiered.Tiers[0].MinBalance)
	assert.Equal(t, "1.19", tiered.Tiers[0].Rate.String())
}

func TestParsePartner_FlatWithGrace(t *testing.T) {
	f := factory.NewPartnerFactory()

	p, err := f.ParsePartner(`{
		"id": "partner-nordfresh",
		"name": "NordFresh Logistics",
		"type": "customer",
		"grace_period_days": 5,
		"rates": {"type": "flat", "base_rate": "1.50"}
	}`)
	require.NoError(t, err)

	assert.Equal(t, 5, p.GracePeriod)
	flat, ok := p.Rates.(*partners.FlatRate)
	require.True(t, ok, "expected a flat schedule")
	assert.Equal(t, "1.50", flat.Rate.String())
}

func TestParsePartner_BalanceOnlyWithoutRates(t *testing.T) {
	f := factory.NewPartnerFactory()

	p, err := f.ParsePartner(`{
		"id": "provider-poolco",
		"name": "PoolCo Supply",
		"type": "provider"
	}`)
	require.NoError(t, err)
	assert.Nil(t, p.Rates)
	assert.Equal(t, ledger.PartnerProvider, p.Type)
}

func TestParsePartner_Invalid(t *testing.T) {
	f := factory.NewPartnerFactory()

	cases := map[string]string{
		"not json":          `{`,
		"missing id":        `{"name": "X", "type": "customer"}`,
		"bad type":          `{"id": "p", "name": "X", "type": "frenemy"}`,
		"negative grace":    `{"id": "p", "name": "X", "type": "customer", "grace_period_days": -1}`,
		"bad rate string":   `{"id": "p", "name": "X", "type": "customer", "rates": {"type": "flat", "base_rate": "cheap"}}`,
		"bad schedule type": `{"id": "p", "name": "X", "type": "customer", "rates": {"type": "hourly", "base_rate": "1.0"}}`,
		"zero tier minimum": `{"id": "p", "name": "X", "type": "customer", "rates": {"type": "tiered", "base_rate": "1.0", "tiers": [{"min_balance": 0, "rate": "0.9"}]}}`,
	}
	for name, body := range cases {
		if _, err := f.ParsePartner(body); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewPartnerFactory()
	original := partners.TieredRentalPartner("partner-grandunion", "Grand Union Pooling",
		ledger.PalletEuro, ledger.PalletStandard)

	pj := factory.ToJSON(original)
	restored, err := f.FromJSON(pj)
	require.NoError(t, err)

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.AllowedPallets, restored.AllowedPallets)
	assert.Equal(t, original.GracePeriod, restored.GracePeriod)

	// The restored schedule must price identically.
	for _, balance := range []int{0, 1999, 2000, 2999, 3000} {
		assert.True(t, original.Rates.DailyRate(balance).Equal(restored.Rates.DailyRate(balance)),
			"rates diverge at balance %d", balance)
	}
}
