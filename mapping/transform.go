package mapping

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/seaport-data/fixturewalk/helpers"
	"github.com/seaport-data/fixturewalk/laycan"
	"github.com/seaport-data/fixturewalk/value"
)

// ErrBadValue is returned by transforms for values outside their vocabulary.
var ErrBadValue = errors.New("bad value")

// TransformFunc converts one cleaned cell. Returning a nil value leaves the
// destination unset.
type TransformFunc func(in string, fm FieldMapping, env *Env) (any, error)

// TransformRegistry manages named transforms.
type TransformRegistry struct {
	mu         sync.RWMutex
	transforms map[string]TransformFunc
}

// NewTransformRegistry creates a registry with the built-in transforms.
func NewTransformRegistry() *TransformRegistry {
	r := &TransformRegistry{
		transforms: make(map[string]TransformFunc),
	}
	r.registerDefaults()
	return r
}

// Register adds a transform to the registry.
func (r *TransformRegistry) Register(name string, fn TransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[name] = fn
}

// Get retrieves a transform by name.
func (r *TransformRegistry) Get(name string) (TransformFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.transforms[name]
	return fn, ok
}

// Apply runs a named transform. The empty name passes the cleaned text through.
func (r *TransformRegistry) Apply(name, in string, fm FieldMapping, env *Env) (any, error) {
	if name == "" {
		name = "clean_text"
	}
	fn, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTransform, name)
	}
	return fn(in, fm, env)
}

// Names returns all registered transform names, sorted.
func (r *TransformRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// registerDefaults registers all built-in transforms.
func (r *TransformRegistry) registerDefaults() {
	r.Register("clean_text", transformCleanText)
	r.Register("clean_vessel", transformCleanVessel)
	r.Register("upper", transformUpper)
	r.Register("zone", transformZone)
	r.Register("zones", transformZones)
	r.Register("product", transformProduct)
	r.Register("products", transformProducts)
	r.Register("party", transformParty)
	r.Register("parties", transformParties)
	r.Register("laycan", transformLaycan)
	r.Register("date", transformDate)
	r.Register("month_period", transformMonthPeriod)
	r.Register("volume", transformVolume)
	r.Register("volume_kt", transformVolumeKT)
	r.Register("number", transformNumber)
	r.Register("int", transformInt)
	r.Register("rate", transformRate)
	r.Register("status", transformStatus)
	r.Register("movement", transformMovement)
	r.Register("imo", transformIMO)
	r.Register("balance", transformBalance)
	r.Register("country_type", transformCountryType)
}

// Default transform registry instance.
var defaultTransformRegistry = NewTransformRegistry()

// DefaultTransforms returns the default transform registry.
func DefaultTransforms() *TransformRegistry {
	return defaultTransformRegistry
}

func nonEmpty(s string) any {
	if s == "" || helpers.IsUnknown(s) {
		return nil
	}
	return s
}

func separator(fm FieldMapping, env *Env) string {
	if fm.Delimiter != "" {
		return fm.Delimiter
	}
	return env.Separator
}

func transformCleanText(in string, _ FieldMapping, env *Env) (any, error) {
	return nonEmpty(env.Text.Clean(in)), nil
}

func transformCleanVessel(in string, _ FieldMapping, env *Env) (any, error) {
	return nonEmpty(env.Vessel.Clean(in)), nil
}

func transformUpper(in string, _ FieldMapping, _ *Env) (any, error) {
	return nonEmpty(strings.ToUpper(helpers.NormalizeWhitespace(in))), nil
}

func transformZone(in string, _ FieldMapping, env *Env) (any, error) {
	s := env.Text.Clean(in)
	if helpers.IsUnknown(s) {
		return nil, nil
	}
	return helpers.Zone(s), nil
}

func transformZones(in string, fm FieldMapping, env *Env) (any, error) {
	var zones []string
	for _, part := range env.Text.Split(in, separator(fm, env)) {
		if !helpers.IsUnknown(part) {
			zones = append(zones, helpers.Zone(part))
		}
	}
	if len(zones) == 0 {
		return nil, nil
	}
	return zones, nil
}

func transformProduct(in string, _ FieldMapping, env *Env) (any, error) {
	s := env.Text.Clean(in)
	if helpers.IsUnknown(s) {
		return nil, nil
	}
	return helpers.Product(s), nil
}

func transformProducts(in string, fm FieldMapping, env *Env) (any, error) {
	var products []string
	for _, part := range env.Text.Split(in, separator(fm, env)) {
		if !helpers.IsUnknown(part) {
			products = append(products, helpers.Product(part))
		}
	}
	if len(products) == 0 {
		return nil, nil
	}
	return products, nil
}

func transformParty(in string, _ FieldMapping, env *Env) (any, error) {
	s := env.Text.Clean(in)
	if helpers.IsUnknown(s) {
		return nil, nil
	}
	return s, nil
}

func transformParties(in string, _ FieldMapping, env *Env) (any, error) {
	var parties []string
	for _, p := range helpers.SplitParties(in) {
		if p = env.Text.Clean(p); !helpers.IsUnknown(p) {
			parties = append(parties, p)
		}
	}
	if len(parties) == 0 {
		return nil, nil
	}
	return parties, nil
}

// transformLaycan resolves a date expression against the record anchor. An
// unparseable expression is not an error here: it yields the null range and
// the assembler decides whether the record survives without it.
func transformLaycan(in string, _ FieldMapping, env *Env) (any, error) {
	rng, err := env.Resolver.Resolve(in, env.Anchor)
	if err != nil {
		env.Logger.Warn("unresolved date expression", "value", in, "anchor", env.Anchor.Format(time.DateOnly), "error", err)
		return laycan.Range{}, nil
	}
	return rng, nil
}

func transformDate(in string, fm FieldMapping, env *Env) (any, error) {
	v, err := transformLaycan(in, fm, env)
	if err != nil {
		return nil, err
	}
	rng := v.(laycan.Range)
	if rng.IsZero() {
		return nil, nil
	}
	return rng.Start, nil
}

var yearMonthRegex = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})$`)

// transformMonthPeriod resolves statistics periods: "NOV 2018", "2018-11",
// "November".
func transformMonthPeriod(in string, fm FieldMapping, env *Env) (any, error) {
	if m := yearMonthRegex.FindStringSubmatch(strings.TrimSpace(in)); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return nil, fmt.Errorf("%w: month %q", ErrBadValue, in)
		}
		return env.Resolver.ResolveExpression(laycan.WholeMonth{Month: time.Month(month), Year: year}, env.Anchor)
	}
	return transformLaycan(in, fm, env)
}

func transformVolume(in string, _ FieldMapping, env *Env) (any, error) {
	return volume(in, env.DefaultUnit, env)
}

func transformVolumeKT(in string, _ FieldMapping, env *Env) (any, error) {
	return volume(in, value.UnitKilotons, env)
}

func volume(in string, def value.Unit, env *Env) (any, error) {
	if helpers.IsUnknown(in) {
		return nil, nil
	}
	q, err := value.ParseQuantity(in, def)
	if err != nil {
		env.Logger.Warn("unparseable volume", "value", in, "error", err)
		return nil, nil
	}
	return q, nil
}

func transformNumber(in string, _ FieldMapping, _ *Env) (any, error) {
	if helpers.IsUnknown(in) {
		return nil, nil
	}
	f, err := value.Number(in)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func transformInt(in string, _ FieldMapping, _ *Env) (any, error) {
	if helpers.IsUnknown(in) {
		return nil, nil
	}
	f, err := value.Number(in)
	if err != nil {
		return nil, err
	}
	return int(f), nil
}

func transformRate(in string, _ FieldMapping, _ *Env) (any, error) {
	r := value.ParseRate(in)
	if r.Raw == "" {
		return nil, nil
	}
	return r, nil
}

// statusAliases maps fixture status columns to the canonical status.
var statusAliases = map[string]string{
	"FXD":         "fully_fixed",
	"FIXED":       "fully_fixed",
	"FF":          "fully_fixed",
	"FULLY FIXED": "fully_fixed",
	"CONF":        "fully_fixed",
	"SUBS":        "on_subs",
	"ON SUBS":     "on_subs",
	"S":           "on_subs",
	"FLD":         "failed",
	"FAILED":      "failed",
	"RPLC":        "replaced",
	"REPLACED":    "replaced",
	"RPL":         "replaced",
}

// transformStatus maps fixture status codes. Unknown codes leave the
// optional status unset instead of failing the record.
func transformStatus(in string, _ FieldMapping, env *Env) (any, error) {
	key := strings.ToUpper(helpers.NormalizeWhitespace(strings.Trim(in, "()[] ")))
	if s, ok := statusAliases[key]; ok {
		return s, nil
	}
	env.Logger.Warn("ignoring unknown status", "value", in)
	return nil, nil
}

var movementAliases = map[string]string{
	"L":         "load",
	"LOAD":      "load",
	"LOADING":   "load",
	"EXP":       "load",
	"EXPORT":    "load",
	"EMBARQUE":  "load",
	"D":         "discharge",
	"DISCH":     "discharge",
	"DISCHARGE": "discharge",
	"IMP":       "discharge",
	"IMPORT":    "discharge",
	"DESCARGA":  "discharge",
}

func transformMovement(in string, _ FieldMapping, env *Env) (any, error) {
	if m, ok := movementAliases[strings.ToUpper(strings.TrimSpace(in))]; ok {
		return m, nil
	}
	env.Logger.Warn("ignoring unknown cargo movement", "value", in)
	return nil, nil
}

var imoRegex = regexp.MustCompile(`(\d{7})`)

// transformIMO extracts a seven-digit IMO number and verifies its check
// digit. Invalid numbers are dropped rather than failing the record.
func transformIMO(in string, _ FieldMapping, env *Env) (any, error) {
	m := imoRegex.FindString(in)
	if m == "" || !value.ValidIMO(m) {
		env.Logger.Debug("ignoring invalid IMO number", "value", in)
		return nil, nil
	}
	return m, nil
}

var balanceAliases = map[string]string{
	"IMPORT":           "import",
	"IMPORTS":          "import",
	"EXPORT":           "export",
	"EXPORTS":          "export",
	"PRODUCTION":       "production",
	"PROD":             "production",
	"OUTPUT":           "production",
	"STOCKS":           "ending_stocks",
	"ENDING STOCKS":    "ending_stocks",
	"INVENTORY":        "ending_stocks",
	"CONSUMPTION":      "consumption",
	"DEMAND":           "consumption",
	"PRODUCT SUPPLIED": "consumption",
}

func transformBalance(in string, _ FieldMapping, env *Env) (any, error) {
	key := strings.ToUpper(helpers.NormalizeWhitespace(in))
	if b, ok := balanceAliases[key]; ok {
		return b, nil
	}
	env.Logger.Warn("ignoring unknown balance", "value", in)
	return nil, nil
}

func transformCountryType(in string, _ FieldMapping, _ *Env) (any, error) {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "country":
		return "country", nil
	case "region", "area", "padd":
		return "region", nil
	case "custom":
		return "custom", nil
	}
	return nil, fmt.Errorf("%w: country type %q", ErrBadValue, in)
}
