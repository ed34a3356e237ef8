package hub

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seaport-data/fixturewalk/laycan"
	"github.com/seaport-data/fixturewalk/mapping"
	"github.com/seaport-data/fixturewalk/value"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func ptr(f float64) *float64 { return &f }

func TestAssemble_SpotCharter(t *testing.T) {
	k := mapping.Keyed{
		mapping.ReportedDateKey: day(2018, time.November, 26),
		"vessel.name":           "ALPINE EAGLE",
		"vessel.dwt":            115000,
		"charterer":             "ENI",
		"status":                "fully_fixed",
		"laycan":                laycan.Range{Start: day(2018, time.November, 29), End: day(2018, time.December, 1)},
		"departure_zone":        "Mediterranean",
		"arrival_zone":          []string{"UK Continent"},
		"rate":                  value.Rate{Kind: value.RateWorldscale, Value: ptr(92.5), Raw: "WS 92.5"},
		"cargo.product":         []string{"butane", "propane"},
		"cargo.volume":          value.Quantity{Value: 44, Unit: value.UnitKilotons},
	}

	r, err := Assemble(KindSpotCharter, k, Meta{Provider: "Banchero Costa"})
	require.NoError(t, err)

	sc, ok := r.(*SpotCharter)
	require.True(t, ok)
	assert.Equal(t, day(2018, time.November, 26), sc.Meta.ReportedDate)

	want := map[string]any{
		"kind":          "spot_charter",
		"provider_name": "Banchero Costa",
		"reported_date": "2018-11-26T00:00:00",
		"vessel": map[string]any{
			"name": "ALPINE EAGLE",
			"dwt":  115000,
		},
		"charterer":      "ENI",
		"status":         "fully_fixed",
		"lay_can_start":  "2018-11-29T00:00:00",
		"lay_can_end":    "2018-12-01T00:00:00",
		"departure_zone": "Mediterranean",
		"arrival_zone":   []any{"UK Continent"},
		"rate_type":      "worldscale",
		"rate_value":     92.5,
		"rate_raw_value": "WS 92.5",
		"cargo": map[string]any{
			"product":     "butane/propane",
			"volume":      44.0,
			"volume_unit": "kilotons",
		},
	}
	assert.Equal(t, want, r.Fields())
}

func TestAssemble_SpotCharterDrops(t *testing.T) {
	lay := laycan.Range{Start: day(2018, time.November, 6), End: day(2018, time.November, 6)}

	tests := []struct {
		name      string
		keyed     mapping.Keyed
		wantField string
	}{
		{"no vessel", mapping.Keyed{"laycan": lay}, "vessel.name"},
		{"vessel placeholder", mapping.Keyed{"vessel.name": "TBN", "laycan": lay}, "vessel.name"},
		{"no laycan", mapping.Keyed{"vessel.name": "OCEAN STAR"}, "laycan"},
		{"null laycan", mapping.Keyed{"vessel.name": "OCEAN STAR", "laycan": laycan.Range{}}, "laycan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Assemble(KindSpotCharter, tt.keyed, Meta{})
			require.ErrorIs(t, err, ErrDropped)
			assert.Nil(t, r)

			var drop *DropError
			require.True(t, errors.As(err, &drop))
			assert.Equal(t, tt.wantField, drop.Field)
		})
	}
}

func TestAssemble_CargoMovementSplitsProducts(t *testing.T) {
	base := func() mapping.Keyed {
		return mapping.Keyed{
			"vessel.name":    "MAERSK KOBE",
			"port_name":      "SANTOS",
			"cargo.movement": "load",
			"cargo.volume":   value.Quantity{Value: 35000, Unit: value.UnitTons},
			"arrival":        day(2018, time.November, 25),
		}
	}

	k := base()
	k["cargo.product"] = []string{"sugar", "corn"}
	r, err := Assemble(KindCargoMovement, k, Meta{Provider: "Porto de Santos"})
	require.NoError(t, err)

	cm := r.(*CargoMovement)
	require.Len(t, cm.Cargoes, 2)
	assert.Equal(t, "sugar", cm.Cargoes[0].Product)
	assert.Equal(t, "corn", cm.Cargoes[1].Product)
	assert.Nil(t, cm.Cargoes[0].Volume, "volume is ambiguous across products")
	assert.Equal(t, "load", cm.Cargoes[1].Movement)
	assert.Equal(t, "2018-11-25T00:00:00", r.Fields()["arrival"])

	k = base()
	k["cargo.product"] = "sugar"
	r, err = Assemble(KindCargoMovement, k, Meta{})
	require.NoError(t, err)
	cm = r.(*CargoMovement)
	require.Len(t, cm.Cargoes, 1)
	require.NotNil(t, cm.Cargoes[0].Volume)
	assert.InDelta(t, 35000, *cm.Cargoes[0].Volume, 1e-9)
	assert.Equal(t, "tons", cm.Cargoes[0].VolumeUnit)

	k = base()
	delete(k, "port_name")
	_, err = Assemble(KindCargoMovement, k, Meta{})
	assert.ErrorIs(t, err, ErrDropped)
}

func TestAssemble_MarketFigure(t *testing.T) {
	k := mapping.Keyed{
		"country":      "United States",
		"country_type": "country",
		"product":      "crude oil",
		"balance":      "import",
		"unit":         "kb/d",
		"value":        7012.5,
		"period":       laycan.Range{Start: day(2018, time.November, 1), End: day(2018, time.November, 30)},
	}

	r, err := Assemble(KindMarketFigure, k, Meta{Provider: "EIA", ReportedDate: day(2018, time.December, 5)})
	require.NoError(t, err)

	f := r.Fields()
	assert.Equal(t, "2018-11-01T00:00:00", f["start_date"])
	assert.Equal(t, "2018-11-30T00:00:00", f["end_date"])
	assert.Equal(t, 7012.5, f["value"])
	assert.Equal(t, "2018-12-05T00:00:00", f["reported_date"])

	delete(k, "value")
	_, err = Assemble(KindMarketFigure, k, Meta{})
	assert.ErrorIs(t, err, ErrDropped)
}

func TestAssemble_BillOfLading(t *testing.T) {
	k := mapping.Keyed{
		"shipper":       "Cargill Agricola",
		"consignee":     "Bunge Ltd",
		"notify_party":  []string{"Bunge", "Same As Consignee", "Louis Dreyfus"},
		"cargo.product": "soybeans",
		"arrival_date":  day(2019, time.March, 2),
	}

	r, err := Assemble(KindBillOfLading, k, Meta{})
	require.NoError(t, err)

	bl := r.(*BillOfLading)
	assert.Equal(t, []string{"Louis Dreyfus"}, bl.NotifyParty)
	require.NotNil(t, bl.Cargo)
	assert.Equal(t, "soybeans", bl.Cargo.Product)

	_, err = Assemble(KindBillOfLading, mapping.Keyed{"consignee": "Bunge"}, Meta{})
	assert.ErrorIs(t, err, ErrDropped)
}

func TestAssemble_UnknownKind(t *testing.T) {
	_, err := Assemble(Kind("tanker"), mapping.Keyed{}, Meta{})
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.NotErrorIs(t, err, ErrDropped)
}

func TestParseKind(t *testing.T) {
	for _, name := range mapping.Kinds {
		if _, err := ParseKind(name); err != nil {
			t.Errorf("ParseKind(%q) error = %v", name, err)
		}
	}
	if _, err := ParseKind("tanker"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(tanker) error = %v, want ErrUnknownKind", err)
	}
}

func TestMarshalJSON(t *testing.T) {
	r := &SpotCharter{
		Meta:   Meta{Provider: "Gibson", ReportedDate: day(2019, time.August, 17)},
		Vessel: Vessel{Name: "GAS VENUS", DWT: 54000},
		LayCan: laycan.Range{Start: day(2019, time.March, 31), End: day(2019, time.April, 1)},
	}

	data, err := MarshalJSON(r)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Gibson", got["provider_name"])
	assert.Equal(t, "2019-03-31T00:00:00", got["lay_can_start"])
	assert.Equal(t, map[string]any{"name": "GAS VENUS", "dwt": 54000.0}, got["vessel"])

	s, err := ToStruct(r)
	require.NoError(t, err)
	assert.Equal(t, "spot_charter", FromStruct(s)["kind"])
}
