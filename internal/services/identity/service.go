package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/platform/metrics"
	"raiap/internal/protocol/card"
	"raiap/internal/protocol/evolution"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
	// ErrIdentityExists is returned when CreateIdentity would overwrite a card.
	ErrIdentityExists = errors.New("an identity already exists")
)

// Existence is implemented by stores that can tell whether a card is saved.
type Existence interface {
	Exists() bool
}

// Service manages the Card and Evolution using a backing store.
type Service struct {
	store   domain.IdentityStore
	alg     domain.Algorithm
	log     *logrus.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	clock   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAlgorithm selects the algorithm for new master and operational keys.
func WithAlgorithm(alg domain.Algorithm) Option { return func(s *Service) { s.alg = alg } }

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option { return func(s *Service) { s.log = l } }

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithClock overrides the clock used for generation activation times.
func WithClock(clock func() time.Time) Option { return func(s *Service) { s.clock = clock } }

// New returns an identity service backed by the given store.
func New(store domain.IdentityStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		alg:    domain.AlgorithmEd25519,
		tracer: otel.Tracer("raiap/services/identity"),
		clock:  time.Now,
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

// Session is an unlocked identity. Close wipes the card secrets.
type Session struct {
	Card      *card.Card
	Evolution *evolution.Evolution
}

// Close wipes the master key from memory.
func (s *Session) Close() { s.Card.Wipe() }

// CreateIdentity mints a new card and generation 0 and saves both sealed
// under passphrase. It returns the card record and the master key
// fingerprint.
func (s *Service) CreateIdentity(ctx context.Context, passphrase string) (domain.CardRecord, domain.Fingerprint, error) {
	ctx, span := s.tracer.Start(ctx, "identity.CreateIdentity")
	defer span.End()

	if !isSecurePassphrase(passphrase) {
		return domain.CardRecord{}, "", ErrWeakPassphrase
	}
	if ex, ok := s.store.(Existence); ok && ex.Exists() {
		return domain.CardRecord{}, "", ErrIdentityExists
	}

	c, err := card.Create(s.alg)
	if err != nil {
		return domain.CardRecord{}, "", fail(span, err)
	}
	defer c.Wipe()
	kp, err := crypto.GenerateKeyPair(s.alg)
	if err != nil {
		return domain.CardRecord{}, "", fail(span, err)
	}
	defer crypto.WipePrivate(kp.Private)
	evo, err := evolution.Bootstrap(ctx, c, kp, evolution.WithClock(s.clock))
	if err != nil {
		return domain.CardRecord{}, "", fail(span, err)
	}

	secrets, err := c.Secrets()
	if err != nil {
		return domain.CardRecord{}, "", fail(span, err)
	}
	defer crypto.WipePrivate(secrets.Master)
	defer crypto.Wipe(secrets.PseudonymSecret)
	if err := s.store.SaveCard(passphrase, secrets); err != nil {
		return domain.CardRecord{}, "", fail(span, fmt.Errorf("save card: %w", err))
	}
	if err := s.store.SaveEvolution(passphrase, evo.State()); err != nil {
		return domain.CardRecord{}, "", fail(span, fmt.Errorf("save evolution: %w", err))
	}

	rec := c.Record()
	span.SetAttributes(attribute.String("identity_id", rec.IdentityID.String()))
	s.log.WithFields(logrus.Fields{
		"identity_id": rec.IdentityID,
		"algorithm":   s.alg.String(),
	}).Info("identity created")
	return rec, crypto.Fingerprint(rec.MasterPublicKey), nil
}

// Open unlocks the card and evolution. The caller must Close the session.
func (s *Service) Open(passphrase string) (*Session, error) {
	secrets, err := s.store.LoadCard(passphrase)
	if err != nil {
		return nil, fmt.Errorf("load card: %w", err)
	}
	c, err := card.FromSecrets(secrets)
	crypto.Wipe(secrets.PseudonymSecret)
	if err != nil {
		crypto.WipePrivate(secrets.Master)
		return nil, err
	}
	state, err := s.store.LoadEvolution(passphrase)
	if err != nil {
		c.Wipe()
		return nil, fmt.Errorf("load evolution: %w", err)
	}
	if state.Card.IdentityID != c.IdentityID() {
		c.Wipe()
		return nil, fmt.Errorf("evolution belongs to %s, card is %s: %w",
			state.Card.IdentityID, c.IdentityID(), domain.ErrLineageBroken)
	}
	evo, err := evolution.Restore(state, evolution.WithClock(s.clock))
	crypto.WipePrivate(state.ActiveKey)
	if err != nil {
		c.Wipe()
		return nil, err
	}
	return &Session{Card: c, Evolution: evo}, nil
}

// Fingerprint returns the master key fingerprint.
func (s *Service) Fingerprint(passphrase string) (domain.Fingerprint, error) {
	secrets, err := s.store.LoadCard(passphrase)
	if err != nil {
		return "", err
	}
	crypto.WipePrivate(secrets.Master)
	crypto.Wipe(secrets.PseudonymSecret)
	return crypto.Fingerprint(secrets.Record.MasterPublicKey), nil
}

// PublicState returns the card record and generations without secrets.
func (s *Service) PublicState(passphrase string) (domain.EvolutionState, error) {
	sess, err := s.Open(passphrase)
	if err != nil {
		return domain.EvolutionState{}, err
	}
	defer sess.Close()
	return sess.Evolution.PublicState(), nil
}

// Save persists the session's evolution, including the last timestamp it
// signed, sealed under passphrase.
func (s *Service) Save(passphrase string, sess *Session) error {
	if err := s.store.SaveEvolution(passphrase, sess.Evolution.State()); err != nil {
		return fmt.Errorf("save evolution: %w", err)
	}
	return nil
}

// Rotate installs a fresh operational key authorized by the master key.
func (s *Service) Rotate(ctx context.Context, passphrase string) (domain.Generation, error) {
	ctx, span := s.tracer.Start(ctx, "identity.Rotate")
	defer span.End()

	sess, err := s.Open(passphrase)
	if err != nil {
		return domain.Generation{}, fail(span, err)
	}
	defer sess.Close()

	kp, err := crypto.GenerateKeyPair(sess.Evolution.CurrentActiveKey().Algorithm)
	if err != nil {
		return domain.Generation{}, fail(span, err)
	}
	defer crypto.WipePrivate(kp.Private)
	auth, err := sess.Card.AuthorizeGeneration(ctx, kp.Public, sess.Evolution.NextIndex(), nil)
	if err != nil {
		return domain.Generation{}, fail(span, err)
	}
	g, err := sess.Evolution.Rotate(kp, auth)
	if err != nil {
		return domain.Generation{}, fail(span, err)
	}
	if err := s.store.SaveEvolution(passphrase, sess.Evolution.State()); err != nil {
		return domain.Generation{}, fail(span, fmt.Errorf("save evolution: %w", err))
	}

	s.metrics.Rotations.Inc()
	span.SetAttributes(attribute.Int64("generation", int64(g.Index)))
	s.log.WithFields(logrus.Fields{
		"identity_id": sess.Card.IdentityID(),
		"generation":  g.Index,
	}).Info("operational key rotated")
	return g, nil
}

// IssueRecoveryShares splits the active operational key and records the
// share set on the active generation.
func (s *Service) IssueRecoveryShares(ctx context.Context, passphrase string, threshold, total int) ([]domain.RecoveryShare, error) {
	_, span := s.tracer.Start(ctx, "identity.IssueRecoveryShares")
	defer span.End()

	sess, err := s.Open(passphrase)
	if err != nil {
		return nil, fail(span, err)
	}
	defer sess.Close()

	shares, err := sess.Evolution.IssueRecoveryShares(threshold, total)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := s.store.SaveEvolution(passphrase, sess.Evolution.State()); err != nil {
		return nil, fail(span, fmt.Errorf("save evolution: %w", err))
	}

	s.metrics.RecoverySharesIssued.Add(float64(len(shares)))
	s.log.WithFields(logrus.Fields{
		"identity_id": sess.Card.IdentityID(),
		"generation":  shares[0].GenerationIndex,
		"threshold":   threshold,
		"total":       total,
		"set_id":      shares[0].SetID,
	}).Info("recovery shares issued")
	return shares, nil
}

// Recover reconstructs the frontier key from shares and installs a fresh
// generation authorized by it.
func (s *Service) Recover(ctx context.Context, passphrase string, shares []domain.RecoveryShare) (domain.Generation, error) {
	_, span := s.tracer.Start(ctx, "identity.Recover")
	defer span.End()

	sess, err := s.Open(passphrase)
	if err != nil {
		return domain.Generation{}, fail(span, err)
	}
	defer sess.Close()
	return s.recover(span, passphrase, sess.Evolution, shares)
}

// RecoverLost is Recover for a device that no longer holds the operational
// key: the chain is rebuilt from a published public state, which must belong
// to the card unlocked by passphrase.
func (s *Service) RecoverLost(ctx context.Context, passphrase string, public domain.EvolutionState, shares []domain.RecoveryShare) (domain.Generation, error) {
	_, span := s.tracer.Start(ctx, "identity.RecoverLost")
	defer span.End()

	secrets, err := s.store.LoadCard(passphrase)
	if err != nil {
		return domain.Generation{}, fail(span, fmt.Errorf("load card: %w", err))
	}
	crypto.WipePrivate(secrets.Master)
	crypto.Wipe(secrets.PseudonymSecret)
	if public.Card.IdentityID != secrets.Record.IdentityID ||
		!public.Card.MasterPublicKey.Equal(secrets.Record.MasterPublicKey) {
		return domain.Generation{}, fail(span, fmt.Errorf("public state is for %s: %w",
			public.Card.IdentityID, domain.ErrLineageBroken))
	}
	public.ActiveKey = domain.PrivateKey{}
	evo, err := evolution.Restore(public, evolution.WithClock(s.clock))
	if err != nil {
		return domain.Generation{}, fail(span, err)
	}
	return s.recover(span, passphrase, evo, shares)
}

func (s *Service) recover(span trace.Span, passphrase string, evo *evolution.Evolution, shares []domain.RecoveryShare) (domain.Generation, error) {
	kp, err := crypto.GenerateKeyPair(evo.CurrentActiveKey().Algorithm)
	if err != nil {
		return domain.Generation{}, fail(span, err)
	}
	defer crypto.WipePrivate(kp.Private)

	g, err := evo.Recover(shares, kp)
	if err != nil {
		s.metrics.ObserveRecoveryFailure(err)
		s.log.WithFields(logrus.Fields{
			"identity_id": evo.IdentityID(),
			"kind":        domain.KindOf(err).String(),
		}).WithError(err).Warn("recovery failed")
		return domain.Generation{}, fail(span, err)
	}
	if err := s.store.SaveEvolution(passphrase, evo.State()); err != nil {
		return domain.Generation{}, fail(span, fmt.Errorf("save evolution: %w", err))
	}

	s.metrics.Recoveries.Inc()
	span.SetAttributes(attribute.Int64("generation", int64(g.Index)))
	s.log.WithFields(logrus.Fields{
		"identity_id": evo.IdentityID(),
		"generation":  g.Index,
	}).Warn("generation recovered; predecessor marked compromised")
	return g, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
