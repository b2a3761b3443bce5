// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a batch of raw records through normalization,
// rule evaluation, aggregation, identifier generation and audit tracing.
//
// Records are processed concurrently in two phases separated by a
// barrier. Phase one scores each record and registers its identifier;
// phase two looks up collisions and builds traces once every identifier
// in the batch is known, so collision reports do not depend on scheduling.
// Results keep input order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/governance-engine/internal/audit"
	"github.com/pdiddy/governance-engine/internal/fuzzy"
	"github.com/pdiddy/governance-engine/internal/governance"
	"github.com/pdiddy/governance-engine/internal/identity"
	"github.com/pdiddy/governance-engine/internal/metrics"
	"github.com/pdiddy/governance-engine/internal/normalize"
	"github.com/pdiddy/governance-engine/internal/rules"
	"github.com/pdiddy/governance-engine/pkg/types"
)

var tracer = otel.Tracer("governance-engine/pipeline")

// Options configures a Run. Only Config is required.
type Options struct {
	Config types.EngineConfig

	// Matcher is the fuzzy comparison strategy. Nil selects Levenshtein.
	Matcher fuzzy.Matcher

	// Registry receives every identifier source. Pass a seeded registry
	// to report collisions against earlier runs. Nil uses a fresh one.
	Registry *identity.Registry

	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// Status receives per-record status lines and the batch summary.
	// Nil discards them.
	Status io.Writer
}

// Output is the result of a batch.
type Output struct {
	// Results holds one entry per accepted record, in input order.
	Results []types.GovernanceResult

	// Rejected lists records excluded from scoring, in input order.
	Rejected []types.Rejection

	Counts types.ChannelCounts
}

// Total returns the number of input records processed.
func (o Output) Total() int {
	return len(o.Results) + len(o.Rejected)
}

// HasRejections reports whether any record was rejected.
func (o Output) HasRejections() bool {
	return len(o.Rejected) > 0
}

// Sources returns the identifier source of every result.
func (o Output) Sources() []identity.Source {
	out := make([]identity.Source, 0, len(o.Results))
	for _, r := range o.Results {
		out = append(out, identity.SourceFor(r.Identifier, r.Record))
	}
	return out
}

// Run evaluates raws. Per-record problems become rejections; Run returns
// an error only for an invalid configuration or a cancelled context.
func Run(ctx context.Context, raws []types.RawRecord, opts Options) (Output, error) {
	if err := opts.Config.Validate(); err != nil {
		return Output{}, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	status := opts.Status
	if status == nil {
		status = io.Discard
	}
	reg := opts.Registry
	if reg == nil {
		reg = identity.NewRegistry()
	}
	workers := opts.Config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.Int("records", len(raws)), attribute.Int("workers", workers))

	start := time.Now()
	b := &batch{
		norm:     normalize.New(opts.Config, opts.Matcher),
		set:      rules.DefaultSet(opts.Config, opts.Matcher),
		cfg:      opts.Config,
		reg:      reg,
		results:  make([]*types.GovernanceResult, len(raws)),
		rejected: make([]*types.Rejection, len(raws)),
	}

	if err := b.score(ctx, raws, workers); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scoring")
		return Output{}, fmt.Errorf("scoring batch: %w", err)
	}
	if err := b.trace(ctx, workers); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tracing")
		return Output{}, fmt.Errorf("tracing batch: %w", err)
	}

	out := Output{Counts: types.ChannelCounts{}}
	for i := range raws {
		switch {
		case b.results[i] != nil:
			res := *b.results[i]
			out.Results = append(out.Results, res)
			out.Counts[res.Channel]++
			opts.Metrics.ObserveResult(res)
			log.Debug("record scored",
				"row", res.Record.Row,
				"channel", res.Channel,
				"score", res.Score,
				"warnings", len(audit.Warnings(res.Trace)),
			)
		case b.rejected[i] != nil:
			rej := *b.rejected[i]
			out.Rejected = append(out.Rejected, rej)
			opts.Metrics.ObserveRejection(rej)
			fmt.Fprintf(status, "rejected row %d: %s %q: %s\n", rej.Row, rej.Field, rej.Value, rej.Reason)
			log.Debug("record rejected", "row", rej.Row, "field", rej.Field, "reason", rej.Reason)
		}
	}

	elapsed := time.Since(start)
	opts.Metrics.ObserveBatch(elapsed)
	span.SetAttributes(attribute.Int("scored", len(out.Results)), attribute.Int("rejected", len(out.Rejected)))

	fmt.Fprintf(status, "\nBatch summary: %d scored (%d green, %d grey, %d amber, %d red), %d rejected (total: %d)\n",
		len(out.Results), out.Counts[types.ChannelGreen], out.Counts[types.ChannelGrey],
		out.Counts[types.ChannelAmber], out.Counts[types.ChannelRed], len(out.Rejected), out.Total())
	log.Info("batch evaluated",
		"records", len(raws),
		"scored", len(out.Results),
		"rejected", len(out.Rejected),
		"identifiers", reg.Len(),
		"duration", elapsed,
	)
	return out, nil
}

// batch holds the per-run state shared by the two phases. Each worker
// writes only its own slot.
type batch struct {
	norm     *normalize.Normalizer
	set      []rules.Evaluator
	cfg      types.EngineConfig
	reg      *identity.Registry
	results  []*types.GovernanceResult
	rejected []*types.Rejection
}

func (b *batch) score(ctx context.Context, raws []types.RawRecord, workers int) error {
	ctx, span := tracer.Start(ctx, "pipeline.score")
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, raw := range raws {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return b.scoreOne(gctx, i, raw)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (b *batch) scoreOne(ctx context.Context, i int, raw types.RawRecord) error {
	rec, err := b.norm.Normalize(raw)
	if err != nil {
		var nerr *normalize.NormalizationError
		if !errors.As(err, &nerr) {
			return fmt.Errorf("row %d: %w", raw.Row, err)
		}
		rej := nerr.Rejection()
		b.rejected[i] = &rej
		trace.SpanFromContext(ctx).AddEvent("record rejected", trace.WithAttributes(
			attribute.Int("row", rej.Row),
			attribute.String("field", rej.Field),
		))
		return nil
	}

	outcomes, err := rules.EvaluateAll(b.set, rec)
	if err != nil {
		return fmt.Errorf("row %d: %w", raw.Row, err)
	}
	res := governance.Aggregate(rec, outcomes, b.cfg)
	res.Identifier = identity.ForRecord(rec)
	b.reg.Register(identity.SourceFor(res.Identifier, rec))
	b.results[i] = &res
	return nil
}

func (b *batch) trace(ctx context.Context, workers int) error {
	ctx, span := tracer.Start(ctx, "pipeline.trace")
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, res := range b.results {
		if res == nil {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Collisions = b.reg.Collisions(res.Identifier, identity.Fingerprint(res.Record))
			res.Trace = audit.Build(*res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
