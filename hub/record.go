// Package hub defines the canonical maritime records every adapter produces
// and assembles them from mapped fields.
package hub

import (
	"errors"
	"fmt"
	"time"

	"github.com/seaport-data/fixturewalk/laycan"
)

// ErrUnknownKind is returned for record kinds outside the canonical set.
var ErrUnknownKind = errors.New("unknown record kind")

// Kind names a canonical schema.
type Kind string

const (
	KindSpotCharter   Kind = "spot_charter"
	KindCargoMovement Kind = "cargo_movement"
	KindMarketFigure  Kind = "market_figure"
	KindBillOfLading  Kind = "bill_of_lading"
)

// Kinds lists the canonical kinds.
func Kinds() []Kind {
	return []Kind{KindSpotCharter, KindCargoMovement, KindMarketFigure, KindBillOfLading}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// Record is a normalized record of one of the canonical kinds. Records are
// built once by Assemble and not modified afterwards.
type Record interface {
	Kind() Kind
	GetMeta() Meta
	// Fields returns the record as nested plain values (string, int,
	// float64, []any, map[string]any) keyed by canonical field name.
	Fields() map[string]any
}

// Meta is common to every record.
type Meta struct {
	Provider     string
	ReportedDate time.Time
	// Source is the adapter that produced the record
	Source string
}

func (m Meta) fields(kind Kind) fieldMap {
	f := fieldMap{"kind": string(kind)}
	f.str("provider_name", m.Provider)
	f.date("reported_date", m.ReportedDate)
	return f
}

// Vessel is the vessel sub-record.
type Vessel struct {
	Name       string
	IMO        string
	DWT        int
	BuildYear  int
	Flag       string
	VesselType string
}

func (v Vessel) fields() map[string]any {
	f := fieldMap{}
	f.str("name", v.Name)
	f.str("imo", v.IMO)
	f.integer("dwt", v.DWT)
	f.integer("build_year", v.BuildYear)
	f.str("flag", v.Flag)
	f.str("vessel_type", v.VesselType)
	return f
}

// Party is a buyer or seller.
type Party struct {
	Name string
}

// Cargo is the cargo sub-record. Volume is nil when not reported.
type Cargo struct {
	Product    string
	Movement   string
	Volume     *float64
	VolumeUnit string
	Buyer      *Party
	Seller     *Party
}

func (c Cargo) fields() map[string]any {
	f := fieldMap{}
	f.str("product", c.Product)
	f.str("movement", c.Movement)
	f.num("volume", c.Volume)
	f.str("volume_unit", c.VolumeUnit)
	if c.Buyer != nil {
		f.sub("buyer", fieldMap{"name": c.Buyer.Name})
	}
	if c.Seller != nil {
		f.sub("seller", fieldMap{"name": c.Seller.Name})
	}
	return f
}

// SpotCharter is a single tanker or gas carrier fixture.
type SpotCharter struct {
	Meta          Meta
	Vessel        Vessel
	Charterer     string
	Status        string
	LayCan        laycan.Range
	DepartureZone string
	ArrivalZone   []string
	RateType      string
	RateValue     *float64
	RateRaw       string
	Cargo         *Cargo
}

func (r *SpotCharter) Kind() Kind    { return KindSpotCharter }
func (r *SpotCharter) GetMeta() Meta { return r.Meta }

func (r *SpotCharter) Fields() map[string]any {
	f := r.Meta.fields(r.Kind())
	f.sub("vessel", r.Vessel.fields())
	f.str("charterer", r.Charterer)
	f.str("status", r.Status)
	f.date("lay_can_start", r.LayCan.Start)
	f.date("lay_can_end", r.LayCan.End)
	f.str("departure_zone", r.DepartureZone)
	f.list("arrival_zone", r.ArrivalZone)
	f.str("rate_type", r.RateType)
	f.num("rate_value", r.RateValue)
	f.str("rate_raw_value", r.RateRaw)
	if r.Cargo != nil {
		f.sub("cargo", r.Cargo.fields())
	}
	return f
}

// CargoMovement is a port call from a line-up or port bulletin.
type CargoMovement struct {
	Meta         Meta
	PortName     string
	Berth        string
	Installation string
	Vessel       Vessel
	Cargoes      []Cargo
	ETA          time.Time
	Arrival      time.Time
	Berthed      time.Time
	Departure    time.Time
}

func (r *CargoMovement) Kind() Kind    { return KindCargoMovement }
func (r *CargoMovement) GetMeta() Meta { return r.Meta }

func (r *CargoMovement) Fields() map[string]any {
	f := r.Meta.fields(r.Kind())
	f.str("port_name", r.PortName)
	f.str("berth", r.Berth)
	f.str("installation", r.Installation)
	f.sub("vessel", r.Vessel.fields())
	if len(r.Cargoes) > 0 {
		cargoes := make([]any, 0, len(r.Cargoes))
		for _, c := range r.Cargoes {
			cargoes = append(cargoes, c.fields())
		}
		f["cargoes"] = cargoes
	}
	f.date("eta", r.ETA)
	f.date("arrival", r.Arrival)
	f.date("berthed", r.Berthed)
	f.date("departure", r.Departure)
	return f
}

// MarketFigure is one statistic: a balance item for a product, area and
// period.
type MarketFigure struct {
	Meta        Meta
	Country     string
	CountryType string
	Product     string
	Balance     string
	Unit        string
	Value       float64
	Period      laycan.Range
}

func (r *MarketFigure) Kind() Kind    { return KindMarketFigure }
func (r *MarketFigure) GetMeta() Meta { return r.Meta }

func (r *MarketFigure) Fields() map[string]any {
	f := r.Meta.fields(r.Kind())
	f.str("country", r.Country)
	f.str("country_type", r.CountryType)
	f.str("product", r.Product)
	f.str("balance", r.Balance)
	f.str("unit", r.Unit)
	f["value"] = r.Value
	f.date("start_date", r.Period.Start)
	f.date("end_date", r.Period.End)
	return f
}

// BillOfLading is one customs manifest entry.
type BillOfLading struct {
	Meta         Meta
	Number       string
	Vessel       Vessel
	Cargo        *Cargo
	Shipper      string
	Consignee    string
	NotifyParty  []string
	PortOfLoad   string
	PortOfUnload string
	ArrivalDate  time.Time
	BillDate     time.Time
}

func (r *BillOfLading) Kind() Kind    { return KindBillOfLading }
func (r *BillOfLading) GetMeta() Meta { return r.Meta }

func (r *BillOfLading) Fields() map[string]any {
	f := r.Meta.fields(r.Kind())
	f.str("bill_of_lading_number", r.Number)
	f.sub("vessel", r.Vessel.fields())
	if r.Cargo != nil {
		f.sub("cargo", r.Cargo.fields())
	}
	f.str("shipper", r.Shipper)
	f.str("consignee", r.Consignee)
	f.list("notify_party", r.NotifyParty)
	f.str("port_of_load", r.PortOfLoad)
	f.str("port_of_unload", r.PortOfUnload)
	f.date("arrival_date", r.ArrivalDate)
	f.date("bill_of_lading_date", r.BillDate)
	return f
}

// fieldMap builds Fields output, omitting empty values.
type fieldMap map[string]any

func (f fieldMap) str(key, v string) {
	if v != "" {
		f[key] = v
	}
}

func (f fieldMap) integer(key string, v int) {
	if v != 0 {
		f[key] = v
	}
}

func (f fieldMap) num(key string, v *float64) {
	if v != nil {
		f[key] = *v
	}
}

func (f fieldMap) date(key string, t time.Time) {
	if !t.IsZero() {
		f[key] = t.Format(laycan.ISOLayout)
	}
}

func (f fieldMap) list(key string, vs []string) {
	if len(vs) == 0 {
		return
	}
	l := make([]any, len(vs))
	for i, v := range vs {
		l[i] = v
	}
	f[key] = l
}

func (f fieldMap) sub(key string, m map[string]any) {
	if len(m) > 0 {
		f[key] = m
	}
}
