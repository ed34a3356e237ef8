// Package pipeline normalizes a batch of raw rows through one adapter.
//
// Each row is mapped, patched by rules, assembled and validated on its own.
// A row that fails at any step becomes a Rejection in the Result and the
// batch carries on; only OnInvalid=fail turns a validation failure into a
// batch error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seaport-data/fixturewalk/adapter"
	"github.com/seaport-data/fixturewalk/hub"
	"github.com/seaport-data/fixturewalk/mapping"
	"github.com/seaport-data/fixturewalk/schema"
)

// Pipeline errors.
var (
	ErrInvalidRecord = errors.New("invalid record")
	ErrPanic         = errors.New("panic during normalization")
	ErrOnInvalid     = errors.New("unknown on-invalid policy")
)

// StagePanic marks a row whose normalization panicked.
const StagePanic adapter.Stage = "panic"

// OnInvalid selects what happens to a record that fails schema validation.
type OnInvalid string

const (
	InvalidDrop        OnInvalid = "drop"
	InvalidPassthrough OnInvalid = "passthrough"
	InvalidFail        OnInvalid = "fail"
)

// ParseOnInvalid parses a policy name. The empty string is InvalidDrop.
func ParseOnInvalid(s string) (OnInvalid, error) {
	switch OnInvalid(s) {
	case "", InvalidDrop:
		return InvalidDrop, nil
	case InvalidPassthrough, InvalidFail:
		return OnInvalid(s), nil
	}
	return "", fmt.Errorf("%w %q", ErrOnInvalid, s)
}

// Options configures a batch run.
type Options struct {
	// Anchor is the batch reported date, used for rows without their own
	Anchor time.Time

	// Strict rejects rows with unmapped columns
	Strict bool

	// OnInvalid is the policy for records failing schema validation
	OnInvalid OnInvalid

	// Workers bounds concurrent rows; zero means GOMAXPROCS
	Workers int

	// CacheTTL enables the date resolver cache when positive
	CacheTTL time.Duration

	// Validator checks assembled records; nil uses the embedded schemas
	Validator schema.Validator

	// Logger receives per-row drop messages; nil uses slog.Default()
	Logger *slog.Logger
}

func (o Options) withDefaults() (Options, error) {
	var err error
	if o.OnInvalid, err = ParseOnInvalid(string(o.OnInvalid)); err != nil {
		return o, err
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Validator == nil {
		reg, err := schema.NewDefaultRegistry()
		if err != nil {
			return o, err
		}
		o.Validator = reg
	}
	return o, nil
}

// Rejection describes one row that did not produce a clean record.
type Rejection struct {
	ID      uuid.UUID
	Index   int
	Adapter string
	Stage   adapter.Stage
	// Rule names the profile rule that skipped the row, if any.
	Rule   string
	Reason string
	Raw    mapping.RawRecord
	Fields []schema.FieldError
	// Kept is set when the record was still emitted (OnInvalid=passthrough).
	Kept bool
}

// Result is the outcome of a batch: the records in input order and the rows
// rejected along the way, ordered by index.
type Result struct {
	Records  []hub.Record
	Rejected []Rejection
	// Total is the number of input rows.
	Total int
}

// Dropped returns the number of rows that produced no record.
func (r *Result) Dropped() int {
	n := 0
	for _, rej := range r.Rejected {
		if !rej.Kept {
			n++
		}
	}
	return n
}

// collector gathers rejections from concurrent workers.
type collector struct {
	mu       sync.Mutex
	rejected []Rejection
}

func (c *collector) add(r Rejection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejected = append(c.rejected, r)
}

func (c *collector) sorted() []Rejection {
	c.mu.Lock()
	defer c.mu.Unlock()
	sort.Slice(c.rejected, func(i, j int) bool {
		return c.rejected[i].Index < c.rejected[j].Index
	})
	return c.rejected
}

// Run normalizes records with the adapter. Rows are processed concurrently
// but the returned records keep input order. The error is non-nil only for
// bad options, a cancelled context or a validation failure under
// OnInvalid=fail.
func Run(ctx context.Context, a adapter.Adapter, records []mapping.RawRecord, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	envOpts := []mapping.EnvOption{
		mapping.WithAnchor(opts.Anchor),
		mapping.WithStrict(opts.Strict),
		mapping.WithLogger(opts.Logger),
	}
	if opts.CacheTTL > 0 {
		envOpts = append(envOpts, mapping.WithResolverCache(opts.CacheTTL))
	}
	env, err := a.NewEnv(envOpts...)
	if err != nil {
		return nil, fmt.Errorf("adapter %s: %w", a.Name(), err)
	}

	w := &worker{adapter: a, env: env, opts: opts}
	out := make([]hub.Record, len(records))
	rejects := &collector{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, raw := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, rej, err := w.process(i, raw)
			if err != nil {
				return err
			}
			if rej != nil {
				rejects.add(*rej)
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Total: len(records), Rejected: rejects.sorted()}
	for _, rec := range out {
		if rec != nil {
			result.Records = append(result.Records, rec)
		}
	}

	opts.Logger.Info("batch normalized",
		"adapter", a.Name(),
		"rows", result.Total,
		"records", len(result.Records),
		"rejected", len(result.Rejected))
	return result, nil
}

type worker struct {
	adapter adapter.Adapter
	env     *mapping.Env
	opts    Options
}

// process normalizes one row. A panic is recovered into a rejection.
func (w *worker) process(i int, raw mapping.RawRecord) (rec hub.Record, rej *Rejection, err error) {
	defer func() {
		if p := recover(); p != nil {
			rec, err = nil, nil
			rej = w.reject(i, raw, StagePanic, fmt.Errorf("%w: %v", ErrPanic, p))
			w.opts.Logger.Error("row panicked", "adapter", w.adapter.Name(), "index", i, "panic", p)
		}
	}()

	rec, err = w.adapter.Normalize(raw, w.env)
	if err != nil {
		stage := adapter.StageOf(err)
		if stage == "" {
			stage = adapter.StageMap
		}
		rej = w.reject(i, raw, stage, err)
		var ae *adapter.Error
		if errors.As(err, &ae) {
			rej.Rule = ae.Rule
		}
		w.log(rej)
		return nil, rej, nil
	}

	kind := string(rec.Kind())
	errs := w.opts.Validator.Validate(kind, rec.Fields())
	if len(errs) == 0 {
		return rec, nil, nil
	}

	verr := schema.AsError(kind, errs)
	if w.opts.OnInvalid == InvalidFail {
		return nil, nil, fmt.Errorf("%w: row %d: %w", ErrInvalidRecord, i, verr)
	}
	rej = w.reject(i, raw, adapter.StageValidate, verr)
	rej.Fields = errs
	w.log(rej)
	if w.opts.OnInvalid == InvalidPassthrough {
		rej.Kept = true
		return rec, rej, nil
	}
	return nil, rej, nil
}

func (w *worker) reject(i int, raw mapping.RawRecord, stage adapter.Stage, err error) *Rejection {
	return &Rejection{
		ID:      uuid.New(),
		Index:   i,
		Adapter: w.adapter.Name(),
		Stage:   stage,
		Reason:  err.Error(),
		Raw:     raw,
	}
}

// log reports a rejected row. Rows dropped for missing identity or by a
// rule are routine and logged at info; date and validation failures warn.
func (w *worker) log(rej *Rejection) {
	level := slog.LevelWarn
	if rej.Stage == adapter.StageAssemble || rej.Stage == adapter.StageRules {
		level = slog.LevelInfo
	}
	w.opts.Logger.Log(context.Background(), level, "row rejected",
		"adapter", rej.Adapter,
		"index", rej.Index,
		"stage", rej.Stage,
		"reason", rej.Reason)
}
