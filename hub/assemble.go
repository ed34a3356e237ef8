package hub

import (
	"errors"
	"fmt"
	"strings"

	"github.com/seaport-data/fixturewalk/helpers"
	"github.com/seaport-data/fixturewalk/mapping"
	"github.com/seaport-data/fixturewalk/value"
)

// ErrDropped is returned when a record fails an identity filter.
var ErrDropped = errors.New("record dropped")

// DropError names the field that made a record unusable.
type DropError struct {
	Field  string
	Reason string
}

func (e *DropError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrDropped, e.Field, e.Reason)
}

func (e *DropError) Unwrap() error {
	return ErrDropped
}

func missing(field string) error {
	return &DropError{Field: field, Reason: "is missing"}
}

// Assemble builds a canonical record from mapped fields. Dotted keys become
// sub-records and date ranges are split into start and end. Records whose
// identity fields are absent or hold a placeholder are dropped with a
// DropError; no partial record is returned.
func Assemble(kind Kind, k mapping.Keyed, meta Meta) (Record, error) {
	if meta.ReportedDate.IsZero() {
		meta.ReportedDate = k.Time(mapping.ReportedDateKey)
	}

	switch kind {
	case KindSpotCharter:
		return assembleSpotCharter(k, meta)
	case KindCargoMovement:
		return assembleCargoMovement(k, meta)
	case KindMarketFigure:
		return assembleMarketFigure(k, meta)
	case KindBillOfLading:
		return assembleBillOfLading(k, meta)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
}

func assembleSpotCharter(k mapping.Keyed, meta Meta) (Record, error) {
	vessel := vesselFrom(k)
	if known(vessel.Name) == "" {
		return nil, missing("vessel.name")
	}
	lay := k.Range("laycan")
	if lay.IsZero() {
		return nil, missing("laycan")
	}

	r := &SpotCharter{
		Meta:          meta,
		Vessel:        vessel,
		Charterer:     known(k.String("charterer")),
		Status:        k.String("status"),
		LayCan:        lay,
		DepartureZone: known(k.String("departure_zone")),
		ArrivalZone:   k.Strings("arrival_zone"),
	}

	if rate, ok := k["rate"].(value.Rate); ok {
		r.RateType = string(rate.Kind)
		r.RateValue = rate.Value
		r.RateRaw = rate.Raw
	}

	// A fixture carries one parcel; several grades share its volume.
	if products := k.Strings("cargo.product"); len(products) > 0 || k.Has("cargo.volume") {
		c := cargoFrom(k, strings.Join(products, "/"))
		c.Volume, c.VolumeUnit = volume(k)
		r.Cargo = &c
	}

	return r, nil
}

func assembleCargoMovement(k mapping.Keyed, meta Meta) (Record, error) {
	vessel := vesselFrom(k)
	if known(vessel.Name) == "" {
		return nil, missing("vessel.name")
	}
	port := known(k.String("port_name"))
	if port == "" {
		return nil, missing("port_name")
	}

	r := &CargoMovement{
		Meta:         meta,
		PortName:     port,
		Berth:        known(k.String("berth")),
		Installation: known(k.String("installation")),
		Vessel:       vessel,
		ETA:          k.Time("eta"),
		Arrival:      k.Time("arrival"),
		Berthed:      k.Time("berthed"),
		Departure:    k.Time("departure"),
	}

	// The reported volume belongs to the whole call and is kept only when it
	// cannot be misattributed.
	products := k.Strings("cargo.product")
	for _, product := range products {
		c := cargoFrom(k, product)
		if len(products) == 1 {
			c.Volume, c.VolumeUnit = volume(k)
		}
		r.Cargoes = append(r.Cargoes, c)
	}

	return r, nil
}

func assembleMarketFigure(k mapping.Keyed, meta Meta) (Record, error) {
	product := known(k.String("product"))
	if product == "" {
		return nil, missing("product")
	}
	if !k.Has("value") {
		return nil, missing("value")
	}

	return &MarketFigure{
		Meta:        meta,
		Country:     known(k.String("country")),
		CountryType: k.String("country_type"),
		Product:     product,
		Balance:     k.String("balance"),
		Unit:        k.String("unit"),
		Value:       value.Float(k["value"]),
		Period:      k.Range("period"),
	}, nil
}

func assembleBillOfLading(k mapping.Keyed, meta Meta) (Record, error) {
	vessel := vesselFrom(k)
	shipper := known(k.String("shipper"))
	if known(vessel.Name) == "" && shipper == "" {
		return nil, &DropError{Field: "vessel.name", Reason: "and shipper are both missing"}
	}

	r := &BillOfLading{
		Meta:         meta,
		Number:       k.String("bill_of_lading_number"),
		Vessel:       vessel,
		Shipper:      shipper,
		Consignee:    known(k.String("consignee")),
		PortOfLoad:   known(k.String("port_of_load")),
		PortOfUnload: known(k.String("port_of_unload")),
		ArrivalDate:  k.Time("arrival_date"),
		BillDate:     k.Time("bill_of_lading_date"),
	}
	r.NotifyParty = notifyParties(k.Strings("notify_party"), r.Consignee)

	if products := k.Strings("cargo.product"); len(products) > 0 || k.Has("cargo.volume") {
		c := cargoFrom(k, strings.Join(products, "/"))
		c.Volume, c.VolumeUnit = volume(k)
		r.Cargo = &c
	}

	return r, nil
}

// notifyParties drops entries that repeat the consignee.
func notifyParties(parties []string, consignee string) []string {
	var out []string
	for _, p := range parties {
		key := helpers.NormalizeParty(p)
		if strings.HasPrefix(key, "SAME AS") {
			continue
		}
		if consignee != "" && key == helpers.NormalizeParty(consignee) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func vesselFrom(k mapping.Keyed) Vessel {
	return Vessel{
		Name:       known(k.String("vessel.name")),
		IMO:        k.String("vessel.imo"),
		DWT:        value.Int(k["vessel.dwt"]),
		BuildYear:  value.Int(k["vessel.build_year"]),
		Flag:       known(k.String("vessel.flag")),
		VesselType: known(k.String("vessel.vessel_type")),
	}
}

func cargoFrom(k mapping.Keyed, product string) Cargo {
	c := Cargo{
		Product:  product,
		Movement: k.String("cargo.movement"),
	}
	if name := known(k.String("cargo.buyer.name")); name != "" {
		c.Buyer = &Party{Name: name}
	}
	if name := known(k.String("cargo.seller.name")); name != "" {
		c.Seller = &Party{Name: name}
	}
	return c
}

func volume(k mapping.Keyed) (*float64, string) {
	q, ok := k["cargo.volume"].(value.Quantity)
	if !ok {
		return nil, ""
	}
	v := q.Value
	return &v, string(q.Unit)
}

// known blanks out placeholder values.
func known(s string) string {
	if helpers.IsUnknown(s) {
		return ""
	}
	return s
}
