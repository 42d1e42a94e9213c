package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"raiap/internal/domain"
	"raiap/internal/platform/metrics"
	"raiap/internal/protocol/anchor"
	"raiap/internal/protocol/stream"
	"raiap/internal/store"
)

const (
	// maxRecordAttempts bounds how often Record rebuilds an anchor after
	// losing a race for the head.
	maxRecordAttempts = 5
	// defaultVerifyWorkers bounds VerifyAll concurrency.
	defaultVerifyWorkers = 4
)

// ErrNoCatalog is returned by VerifyAll when the store cannot list streams.
var ErrNoCatalog = errors.New("stream store cannot enumerate streams")

// Service appends and verifies anchor streams on a StreamStore.
type Service struct {
	store   domain.StreamStore
	log     *logrus.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	workers int

	mu   deadlock.Mutex
	open map[domain.StreamID]*stream.Stream
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option { return func(s *Service) { s.log = l } }

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithVerifyWorkers bounds how many streams VerifyAll checks at once.
func WithVerifyWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New returns a stream service backed by st.
func New(st domain.StreamStore, opts ...Option) *Service {
	s := &Service{
		store:   st,
		tracer:  otel.Tracer("raiap/services/stream"),
		workers: defaultVerifyWorkers,
		open:    make(map[domain.StreamID]*stream.Stream),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.New()
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	return s
}

// cached returns the open stream for id, loading it from the store on first use.
func (s *Service) cached(ctx context.Context, id domain.StreamID) (*stream.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.open[id]; ok {
		return st, nil
	}
	anchors, err := s.store.LoadStream(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load stream %s: %w", id, err)
	}
	st, err := stream.Load(id, profileOf(anchors), anchors)
	if err != nil {
		return nil, err
	}
	s.open[id] = st
	return st, nil
}

func (s *Service) forget(id domain.StreamID) {
	s.mu.Lock()
	delete(s.open, id)
	s.mu.Unlock()
}

// Load returns the stored anchors of id in order.
func (s *Service) Load(ctx context.Context, id domain.StreamID) ([]domain.Anchor, error) {
	anchors, err := s.store.LoadStream(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load stream %s: %w", id, err)
	}
	return anchors, nil
}

// Head returns the current head of id, or its genesis marker when empty.
func (s *Service) Head(ctx context.Context, id domain.StreamID) (domain.Digest, error) {
	st, err := s.cached(ctx, id)
	if err != nil {
		return domain.Digest{}, err
	}
	return st.Head(), nil
}

// Append persists a as the next anchor of id and returns the new head. An
// anchor built on a head another writer has already extended fails with
// ErrConflict.
func (s *Service) Append(ctx context.Context, id domain.StreamID, a domain.Anchor) (domain.Digest, error) {
	ctx, span := s.tracer.Start(ctx, "stream.Append",
		trace.WithAttributes(attribute.String("stream_id", id.String())))
	defer span.End()

	err := s.appendOnce(ctx, id, a)
	if errors.Is(err, domain.ErrChainBroken) {
		// The cached head may be stale when another process wrote the store.
		s.forget(id)
		err = s.appendOnce(ctx, id, a)
	}
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.forget(id)
			s.metrics.AppendConflicts.Inc()
		}
		return domain.Digest{}, fail(span, err)
	}

	s.metrics.AnchorsAppended.Inc()
	s.log.WithFields(logrus.Fields{
		"stream_id": id,
		"head":      a.Hash,
	}).Debug("anchor appended")
	return a.Hash, nil
}

func (s *Service) appendOnce(ctx context.Context, id domain.StreamID, a domain.Anchor) error {
	st, err := s.cached(ctx, id)
	if err != nil {
		return err
	}
	return st.AppendCommit(a, func(_ int, a domain.Anchor) error {
		return s.store.PersistAnchor(ctx, id, a)
	})
}

// stampFloor is implemented by signers that can be told the timestamp of the
// head they extend, so a lagging clock does not produce a regressed anchor.
type stampFloor interface {
	NotBefore(domain.Timestamp)
}

// Record signs ev for subject on top of the current head of id and appends
// it, rebuilding the anchor when another writer wins the head.
func (s *Service) Record(
	ctx context.Context,
	id domain.StreamID,
	subject anchor.Subject,
	ev domain.Event,
	signer anchor.Signer,
) (domain.Anchor, error) {
	var lastErr error
	for attempt := 0; attempt < maxRecordAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Anchor{}, err
		}
		st, err := s.cached(ctx, id)
		if err != nil {
			return domain.Anchor{}, err
		}
		head, last := st.Tip()
		if f, ok := signer.(stampFloor); ok {
			f.NotBefore(last)
		}
		a, err := anchor.Create(subject, head, ev, signer)
		if err != nil {
			return domain.Anchor{}, err
		}
		if _, err := s.Append(ctx, id, a); err != nil {
			if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrChainBroken) {
				lastErr = err
				continue
			}
			return domain.Anchor{}, err
		}
		return a, nil
	}
	return domain.Anchor{}, fmt.Errorf("record on stream %s: %w", id, lastErr)
}

// Verify checks the stored anchors of id against root and returns the
// verified head.
func (s *Service) Verify(ctx context.Context, id domain.StreamID, root domain.TrustRoot) (domain.Digest, error) {
	ctx, span := s.tracer.Start(ctx, "stream.Verify",
		trace.WithAttributes(attribute.String("stream_id", id.String())))
	defer span.End()

	start := time.Now()
	head, err := s.verify(ctx, id, root)
	s.metrics.ObserveVerify(start, err)
	if err != nil {
		fields := logrus.Fields{"stream_id": id, "kind": domain.KindOf(err).String()}
		if pos, ok := domain.PositionOf(err); ok {
			fields["position"] = pos
			span.SetAttributes(attribute.Int("position", pos))
		}
		s.log.WithFields(fields).WithError(err).Warn("stream verification failed")
		return domain.Digest{}, fail(span, err)
	}
	return head, nil
}

func (s *Service) verify(ctx context.Context, id domain.StreamID, root domain.TrustRoot) (domain.Digest, error) {
	anchors, err := s.store.LoadStream(ctx, id)
	if err != nil {
		return domain.Digest{}, fmt.Errorf("load stream %s: %w", id, err)
	}
	return stream.VerifyAnchors(id, anchors, root)
}

// VerifyAll verifies every stream the store holds against root. The result
// maps each stream to its verification error, nil for streams that verify.
func (s *Service) VerifyAll(ctx context.Context, root domain.TrustRoot) (map[domain.StreamID]error, error) {
	catalog, ok := s.store.(domain.StreamCatalog)
	if !ok {
		return nil, ErrNoCatalog
	}
	ids, err := catalog.ListStreams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}

	results := make([]error, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range ids {
		g.Go(func() error {
			_, results[i] = s.Verify(gctx, id, root)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[domain.StreamID]error, len(ids))
	for i, id := range ids {
		out[id] = results[i]
	}
	return out, nil
}

// DetectFork compares the stored copy of id with other and returns a
// *domain.ForkError at the first diverging position.
func (s *Service) DetectFork(ctx context.Context, id domain.StreamID, other []domain.Anchor) error {
	local, err := s.store.LoadStream(ctx, id)
	if err != nil {
		return fmt.Errorf("load stream %s: %w", id, err)
	}
	err = stream.DetectFork(local, other)
	var fork *domain.ForkError
	if errors.As(err, &fork) {
		s.metrics.ForksDetected.Inc()
		s.log.WithFields(logrus.Fields{
			"stream_id": id,
			"position":  fork.Position,
			"local":     fork.Left,
			"remote":    fork.Right,
		}).Warn("stream fork detected")
	}
	return err
}

// Export writes id as a compressed archive.
func (s *Service) Export(ctx context.Context, id domain.StreamID, w io.Writer) error {
	anchors, err := s.store.LoadStream(ctx, id)
	if err != nil {
		return fmt.Errorf("load stream %s: %w", id, err)
	}
	return store.WriteArchive(w, id, profileOf(anchors), anchors)
}

// Import reads an archive, verifies it against root and appends whatever the
// local copy lacks. An archive that forks from the local copy is refused.
// It returns the archive header and the number of anchors appended.
func (s *Service) Import(ctx context.Context, r io.Reader, root domain.TrustRoot) (store.ArchiveHeader, int, error) {
	ctx, span := s.tracer.Start(ctx, "stream.Import")
	defer span.End()

	hdr, anchors, err := store.ReadArchive(r)
	if err != nil {
		return store.ArchiveHeader{}, 0, fail(span, err)
	}
	span.SetAttributes(attribute.String("stream_id", hdr.StreamID.String()))

	start := time.Now()
	_, err = stream.VerifyAnchors(hdr.StreamID, anchors, root)
	s.metrics.ObserveVerify(start, err)
	if err != nil {
		return hdr, 0, fail(span, fmt.Errorf("archive %s: %w", hdr.StreamID, err))
	}
	if err := s.DetectFork(ctx, hdr.StreamID, anchors); err != nil {
		return hdr, 0, fail(span, err)
	}

	local, err := s.Load(ctx, hdr.StreamID)
	if err != nil {
		return hdr, 0, fail(span, err)
	}
	added := 0
	for _, a := range anchors[min(len(local), len(anchors)):] {
		if _, err := s.Append(ctx, hdr.StreamID, a); err != nil {
			return hdr, added, fail(span, err)
		}
		added++
	}
	s.log.WithFields(logrus.Fields{
		"stream_id": hdr.StreamID,
		"added":     added,
	}).Info("stream archive imported")
	return hdr, added, nil
}

// profileOf reads the profile pseudonym from the first anchor that carries
// a decodable event.
func profileOf(anchors []domain.Anchor) domain.ProfileID {
	for _, a := range anchors {
		if ev, err := anchor.Event(a); err == nil && ev.ProfileID != "" {
			return ev.ProfileID
		}
	}
	return ""
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Compile-time assertion that Service implements domain.StreamService.
var _ domain.StreamService = (*Service)(nil)
