// Package application orchestrates calculation sessions: it owns the
// sampling loop, the session state machine, and the YAML configuration
// surface that describes a calculation.
package application

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

// SessionParams holds the immutable inputs of a calculation session.
// All fields are validated before any sampling starts; invalid
// configuration fails fast with domain.ErrInvalidConfiguration.
type SessionParams struct {
	// Box is the axis-aligned sampling universe. Immutable for the
	// session's lifetime.
	Box domain.BoundingBox

	// Domains lists the tracked domain identifiers. The session tallies
	// hits only for these; points matched to other identifiers are
	// discarded like outside points.
	Domains []domain.DomainID `validate:"required,min=1"`

	// BatchSize is the number of points drawn per sampling round.
	BatchSize uint64 `validate:"required,min=1"`

	// MaxSamples bounds the total number of points drawn. With no
	// triggers attached it is the exact number of samples the session
	// runs before converging.
	MaxSamples uint64 `validate:"required,min=1"`

	// CheckInterval is the number of samples between trigger checks.
	// It must be a positive multiple of BatchSize and defaults to
	// BatchSize. Ignored when no triggers are attached.
	CheckInterval uint64

	// Workers caps the number of concurrent classification goroutines
	// per batch. Defaults to GOMAXPROCS. The worker count affects
	// throughput only; the sampled points are identical for any value.
	Workers int `validate:"omitempty,min=1,max=4096"`
}

// Option customizes optional session collaborators.
type Option func(*Session)

// WithTriggers attaches a trigger controller. Without one the session
// runs exactly MaxSamples samples and converges unconditionally.
func WithTriggers(tc ports.TriggerController) Option {
	return func(s *Session) { s.triggers = tc }
}

// WithLogger sets the structured logger. Defaults to a no-op logger so
// library consumers pay nothing unless they opt in.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics attaches a metrics collector for sampling throughput and
// convergence instrumentation.
func WithMetrics(m ports.MetricsCollector) Option {
	return func(s *Session) { s.metrics = m }
}

// WithObserver attaches a convergence observer invoked around every
// trigger check.
func WithObserver(o ports.ConvergenceObserver) Option {
	return func(s *Session) { s.observer = o }
}

// WithID overrides the generated session identifier, which is useful
// when resuming a named calculation or in tests.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session drives a single stochastic volume calculation: it draws
// batches of uniform points, classifies them against the domain oracle,
// accumulates per-domain hit counts, and stops when attached triggers
// are satisfied or the sample budget is exhausted.
//
// The session is single-use: Run may be called once. Within a batch,
// points are drawn in fixed-size chunks, each chunk from the sampler
// sub-stream forked at (batch, chunk). Worker goroutines pull chunks
// from a shared counter and tally into per-chunk count maps merged by
// commutative summation, so the sampled points and the final counts
// depend only on the seed and the sample index, never on goroutine
// scheduling or the worker count. Two sessions with the same seed,
// bounding box, batch size, and domain set produce identical count
// sequences batch by batch.
type Session struct {
	id         string
	params     SessionParams
	classifier ports.Classifier
	sampler    ports.PointSampler
	triggers   ports.TriggerController
	metrics    ports.MetricsCollector
	observer   ports.ConvergenceObserver
	logger     *zap.Logger

	tracked map[domain.DomainID]struct{}

	phase   atomic.Int32
	started atomic.Bool

	mu           sync.Mutex
	counts       map[domain.DomainID]uint64
	totalSamples uint64
	partial      bool
}

// NewSession constructs a validated, idle session. The classifier is
// the external point-classification oracle; the sampler supplies seeded
// uniform points within params.Box and owns the reproducibility seed.
func NewSession(
	params SessionParams,
	classifier ports.Classifier,
	sampler ports.PointSampler,
	opts ...Option,
) (*Session, error) {
	if classifier == nil {
		return nil, fmt.Errorf("%w: classifier is required", domain.ErrInvalidConfiguration)
	}
	if sampler == nil {
		return nil, fmt.Errorf("%w: sampler is required", domain.ErrInvalidConfiguration)
	}
	if params.CheckInterval == 0 {
		params.CheckInterval = params.BatchSize
	}
	if params.Workers == 0 {
		params.Workers = runtime.GOMAXPROCS(0)
	}

	s := &Session{
		id:         uuid.NewString(),
		params:     params,
		classifier: classifier,
		sampler:    sampler,
		logger:     zap.NewNop(),
		tracked:    make(map[domain.DomainID]struct{}, len(params.Domains)),
		counts:     make(map[domain.DomainID]uint64, len(params.Domains)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.validateParams(); err != nil {
		return nil, err
	}
	for _, id := range params.Domains {
		s.tracked[id] = struct{}{}
		s.counts[id] = 0
	}
	s.logger = s.logger.With(zap.String("session_id", s.id))
	return s, nil
}

// validateParams enforces the fail-fast configuration contract.
func (s *Session) validateParams() error {
	verr := domain.NewValidationError("session")

	if err := validate.Struct(s.params); err != nil {
		verr.AddError(err.Error())
	}
	if err := s.params.Box.Validate(); err != nil {
		verr.AddError(err.Error())
	}

	seen := make(map[domain.DomainID]struct{}, len(s.params.Domains))
	for _, id := range s.params.Domains {
		if _, dup := seen[id]; dup {
			verr.AddError(fmt.Sprintf("duplicate domain id %d", id))
		}
		seen[id] = struct{}{}
	}

	if s.params.BatchSize > 0 && s.params.CheckInterval%s.params.BatchSize != 0 {
		verr.AddError(fmt.Sprintf("check interval %d is not a multiple of batch size %d",
			s.params.CheckInterval, s.params.BatchSize))
	}

	if s.triggers != nil {
		for _, spec := range s.triggers.Specs() {
			if !spec.Kind.Valid() {
				verr.AddError(fmt.Sprintf("unknown trigger kind %q", spec.Kind))
			}
			if spec.Threshold <= 0 {
				verr.AddError(fmt.Sprintf("trigger threshold %g for domain %d must be positive",
					spec.Threshold, spec.Domain))
			}
			if _, ok := seen[spec.Domain]; !ok {
				verr.AddError(fmt.Sprintf("trigger references untracked domain %d", spec.Domain))
			}
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() domain.Phase { return domain.Phase(s.phase.Load()) }

func (s *Session) setPhase(p domain.Phase) { s.phase.Store(int32(p)) }

// TotalSamples returns the number of points drawn so far.
func (s *Session) TotalSamples() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSamples
}

func (s *Session) hasTriggers() bool {
	return s.triggers != nil && len(s.triggers.Specs()) > 0
}

// Run executes the session to a terminal phase and returns the frozen
// snapshot of its counts. Cancellation between or within batches stops
// the session cleanly: completed batches stay tallied, the returned
// snapshot is marked partial, and the context error is returned
// alongside it. A classifier failure aborts the session and is
// propagated without retry.
func (s *Session) Run(ctx context.Context) (domain.Snapshot, error) {
	if !s.started.CompareAndSwap(false, true) {
		if s.Phase().Terminal() {
			return domain.Snapshot{}, domain.ErrSessionFinished
		}
		return domain.Snapshot{}, domain.ErrSessionRunning
	}

	s.setPhase(domain.PhaseSampling)
	s.logger.Info("session started",
		zap.Uint64("batch_size", s.params.BatchSize),
		zap.Uint64("max_samples", s.params.MaxSamples),
		zap.Int("domains", len(s.params.Domains)),
		zap.Bool("triggers", s.hasTriggers()),
	)

	for batch := uint64(0); ; batch++ {
		if err := ctx.Err(); err != nil {
			return s.abort(err)
		}

		n := s.params.BatchSize
		if remaining := s.params.MaxSamples - s.totalSamples; remaining < n {
			n = remaining
		}

		start := time.Now()
		if err := s.runBatch(ctx, batch, n); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return s.abort(err)
			}
			s.logger.Error("session failed", zap.Uint64("batch", batch), zap.Error(err))
			return domain.Snapshot{}, err
		}

		s.mu.Lock()
		s.totalSamples += n
		total := s.totalSamples
		s.mu.Unlock()

		if s.metrics != nil {
			labels := map[string]string{"session_id": s.id}
			s.metrics.RecordCounter("samples_total", float64(n), labels)
			s.metrics.RecordLatency("batch", time.Since(start), labels)
		}

		exhausted := total >= s.params.MaxSamples

		if s.hasTriggers() && (total%s.params.CheckInterval == 0 || exhausted) {
			s.setPhase(domain.PhaseChecking)
			if s.check(ctx) {
				s.setPhase(domain.PhaseConverged)
				s.logger.Info("session converged", zap.Uint64("total_samples", total))
				break
			}
			if exhausted {
				s.mu.Lock()
				s.partial = true
				s.mu.Unlock()
				s.setPhase(domain.PhaseMaxSamples)
				s.logger.Warn("max samples reached before trigger satisfaction",
					zap.Uint64("total_samples", total))
				break
			}
			s.setPhase(domain.PhaseSampling)
			continue
		}

		if exhausted {
			// No triggers: the session ran exactly the requested samples.
			s.setPhase(domain.PhaseConverged)
			s.logger.Info("requested samples drawn", zap.Uint64("total_samples", total))
			break
		}
	}

	return s.Snapshot(), nil
}

// abort freezes partial state after cancellation. Completed batches
// remain statistically valid; the snapshot is flagged partial.
func (s *Session) abort(cause error) (domain.Snapshot, error) {
	s.mu.Lock()
	s.partial = true
	total := s.totalSamples
	s.mu.Unlock()
	s.logger.Warn("session aborted", zap.Uint64("total_samples", total), zap.Error(cause))
	return s.Snapshot(), cause
}

// chunkSize is the number of points drawn from one forked sampler
// stream. Chunks, not workers, own the sub-streams: chunk k of batch b
// always covers the same sample indices and the same forked stream, so
// the point sequence is invariant under the worker count.
const chunkSize = 1024

// runBatch draws and classifies n points in fixed-size chunks. Worker
// goroutines claim chunk indices from a shared counter; each chunk
// samples the sub-stream forked at (batch, chunk) and tallies into its
// own count map, so the merged counts do not depend on scheduling order
// or the degree of parallelism.
func (s *Session) runBatch(ctx context.Context, batch, n uint64) error {
	chunks := (n + chunkSize - 1) / chunkSize
	workers := uint64(s.params.Workers)
	if workers > chunks {
		workers = chunks
	}

	locals := make([]map[domain.DomainID]uint64, chunks)
	var next atomic.Uint64

	g, gctx := errgroup.WithContext(ctx)
	for w := uint64(0); w < workers; w++ {
		g.Go(func() error {
			for {
				k := next.Add(1) - 1
				if k >= chunks {
					return nil
				}
				size := uint64(chunkSize)
				if rem := n - k*chunkSize; rem < size {
					size = rem
				}

				pts := make([]domain.Point3, size)
				s.sampler.Fork(batch, k).Sample(pts)

				out := make([]domain.Classification, size)
				if err := classifyAll(gctx, s.classifier, pts, out); err != nil {
					return fmt.Errorf("batch %d chunk %d: %w", batch, k, err)
				}

				counts := make(map[domain.DomainID]uint64)
				for _, c := range out {
					if !c.Matched {
						continue
					}
					if _, ok := s.tracked[c.Domain]; ok {
						counts[c.Domain]++
					}
				}
				locals[k] = counts
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Merge by commutative summation so chunk ordering across workers
	// cannot affect the result.
	s.mu.Lock()
	for _, lc := range locals {
		for id, hits := range lc {
			s.counts[id] += hits
		}
	}
	s.mu.Unlock()

	if s.metrics != nil {
		for _, lc := range locals {
			for id, hits := range lc {
				s.metrics.RecordCounter("domain_hits_total", float64(hits), map[string]string{
					"session_id": s.id,
					"domain":     fmt.Sprintf("%d", id),
				})
			}
		}
	}
	return nil
}

// classifyAll classifies every point, preferring the batch path when
// the oracle implements it.
func classifyAll(
	ctx context.Context,
	c ports.Classifier,
	pts []domain.Point3,
	out []domain.Classification,
) error {
	if bc, ok := c.(ports.BatchClassifier); ok {
		if err := bc.ClassifyBatch(ctx, pts, out); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrClassifier, err)
		}
		return nil
	}
	for i, p := range pts {
		cl, err := c.Classify(ctx, p)
		if err != nil {
			return fmt.Errorf("%w: point %v: %w", domain.ErrClassifier, p, err)
		}
		out[i] = cl
	}
	return nil
}

// check evaluates every attached trigger against the current estimates.
func (s *Session) check(ctx context.Context) bool {
	ests := s.Estimates()
	list := sortedEstimates(ests)

	if s.observer != nil {
		s.observer.PreCheck(ctx, s.id, list)
	}
	start := time.Now()
	satisfied := s.triggers.Satisfied(ests)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.PostCheck(ctx, s.id, list, satisfied, elapsed)
	}

	if s.metrics != nil {
		labels := map[string]string{"session_id": s.id}
		s.metrics.RecordCounter("convergence_checks_total", 1, labels)
		for _, e := range list {
			s.metrics.RecordGauge("estimate_std_dev", e.StdDev(), map[string]string{
				"session_id": s.id,
				"domain":     fmt.Sprintf("%d", e.Domain),
			})
		}
	}
	s.logger.Debug("trigger check",
		zap.Uint64("total_samples", s.TotalSamples()),
		zap.Bool("satisfied", satisfied),
	)
	return satisfied
}

// Estimates returns the current volume estimates keyed by domain id.
// Every tracked domain is present, including zero-hit domains.
func (s *Session) Estimates() map[domain.DomainID]domain.VolumeEstimate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.DomainID]domain.VolumeEstimate, len(s.counts))
	for id, hits := range s.counts {
		out[id] = domain.VolumeEstimate{
			Domain:       id,
			Hits:         hits,
			TotalSamples: s.totalSamples,
			BoxVolume:    s.params.Box.Volume(),
		}
	}
	return out
}

// Snapshot freezes the session's counts into a persistable record.
// It may be taken at any time; mid-run snapshots reflect completed
// batches only.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make([]domain.DomainCount, 0, len(s.counts))
	for id, hits := range s.counts {
		counts = append(counts, domain.DomainCount{Domain: id, Hits: hits})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Domain < counts[j].Domain })

	return domain.Snapshot{
		SessionID:    s.id,
		BoxVolume:    s.params.Box.Volume(),
		TotalSamples: s.totalSamples,
		Partial:      s.partial,
		Counts:       counts,
		CreatedAt:    time.Now().UTC(),
	}
}

func sortedEstimates(m map[domain.DomainID]domain.VolumeEstimate) []domain.VolumeEstimate {
	out := make([]domain.VolumeEstimate, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}
