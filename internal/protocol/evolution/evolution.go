package evolution

import (
	"context"
	"fmt"
	"time"

	"github.com/sasha-s/go-deadlock"

	"raiap/internal/crypto"
	"raiap/internal/domain"
	"raiap/internal/protocol/card"
	"raiap/internal/protocol/wire"
)

// Option configures an Evolution.
type Option func(*options)

type options struct {
	clock    func() time.Time
	external domain.ExternalSigner
}

// WithClock overrides the wall clock used for activation and signing times.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithExternalSigner supplies the smart-card signer used to authorize
// generation 0 for a hardware-backed card.
func WithExternalSigner(s domain.ExternalSigner) Option {
	return func(o *options) { o.external = s }
}

func buildOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Evolution is the generation chain of one identity. The zero value is not
// usable; construct with Bootstrap or Restore.
type Evolution struct {
	mu        deadlock.Mutex
	card      domain.CardRecord
	gens      []domain.Generation
	active    domain.PrivateKey
	lastStamp domain.Timestamp
	clock     func() time.Time
}

// Bootstrap installs generation 0 for c with kp as its operational key.
func Bootstrap(ctx context.Context, c *card.Card, kp domain.KeyPair, opts ...Option) (*Evolution, error) {
	o := buildOptions(opts)
	if !crypto.MatchesPublic(kp) {
		return nil, fmt.Errorf("bootstrap: %w", domain.ErrKeyMismatch)
	}
	auth, err := c.AuthorizeGeneration(ctx, kp.Public, 0, o.external)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	rec := c.Record()
	g0 := domain.Generation{
		Index:           0,
		OperationalKey:  kp.Public.Clone(),
		PredecessorHash: RootMarker(rec.IdentityID),
		Authorization:   auth,
		Authority:       domain.AuthorityMaster,
		ActivatedAt:     domain.TimestampOf(o.clock()),
		Status:          domain.StatusActive,
	}
	return &Evolution{
		card:   rec,
		gens:   []domain.Generation{g0},
		active: clonePrivate(kp.Private),
		clock:  o.clock,
	}, nil
}

// Restore rebuilds an Evolution from persisted state after checking the full
// lineage and that the active key belongs to the frontier generation. A state
// without an active key restores a read-only chain: it can be rotated or
// recovered but cannot sign or issue shares until a new generation is
// installed.
func Restore(state domain.EvolutionState, opts ...Option) (*Evolution, error) {
	o := buildOptions(opts)
	if _, err := VerifyLineage(state.Card, state.Generations); err != nil {
		return nil, fmt.Errorf("restore %s: %w", state.Card.IdentityID, err)
	}
	frontier := state.Generations[len(state.Generations)-1]
	if !state.ActiveKey.IsZero() &&
		!crypto.MatchesPublic(domain.KeyPair{Public: frontier.OperationalKey, Private: state.ActiveKey}) {
		return nil, fmt.Errorf("restore %s: %w", state.Card.IdentityID, domain.ErrKeyMismatch)
	}

	gens := make([]domain.Generation, len(state.Generations))
	for i, g := range state.Generations {
		gens[i] = g.Clone()
	}
	return &Evolution{
		card:      state.Card,
		gens:      gens,
		active:    clonePrivate(state.ActiveKey),
		lastStamp: state.LastStamp,
		clock:     o.clock,
	}, nil
}

// IdentityID returns the identity this evolution belongs to.
func (e *Evolution) IdentityID() domain.IdentityID { return e.card.IdentityID }

// Card returns the public card record.
func (e *Evolution) Card() domain.CardRecord { return e.card }

// NextIndex is the index the next generation will take.
func (e *Evolution) NextIndex() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frontierLocked().Index + 1
}

// CurrentActiveKey returns the operational public key of the Active generation.
func (e *Evolution) CurrentActiveKey() domain.PublicKey {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frontierLocked().OperationalKey.Clone()
}

// Current returns a copy of the Active generation.
func (e *Evolution) Current() domain.Generation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frontierLocked().Clone()
}

// Generations returns a snapshot of every generation, oldest first.
func (e *Evolution) Generations() []domain.Generation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Generation, len(e.gens))
	for i, g := range e.gens {
		out[i] = g.Clone()
	}
	return out
}

// State exports everything needed to Restore this evolution, including the
// active private key. Callers must protect it at rest.
func (e *Evolution) State() domain.EvolutionState {
	gens := e.Generations()
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.EvolutionState{
		Card:        e.card,
		Generations: gens,
		ActiveKey:   clonePrivate(e.active),
		LastStamp:   e.lastStamp,
	}
}

// PublicState is State without the private key, suitable for verifiers.
func (e *Evolution) PublicState() domain.EvolutionState {
	state := e.State()
	crypto.WipePrivate(state.ActiveKey)
	state.ActiveKey = domain.PrivateKey{}
	return state
}

// LastStamp is the latest timestamp signed or observed.
func (e *Evolution) LastStamp() domain.Timestamp {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStamp
}

// Observe raises the stamp floor to ts. Callers pass the timestamp of the
// head they are about to extend so the next signature does not precede it
// even when this process's clock is behind the writer of that head.
func (e *Evolution) Observe(ts domain.Timestamp) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastStamp = max(e.lastStamp, ts)
}

// HoldsActiveKey reports whether the frontier's private key is present.
func (e *Evolution) HoldsActiveKey() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.active.IsZero()
}

// Rotate replaces the Active generation with kp. authorization must be the
// master key's signature over the authorization message for the next index.
func (e *Evolution) Rotate(kp domain.KeyPair, authorization []byte) (domain.Generation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.frontierLocked().Index + 1
	if err := e.checkCandidateLocked(kp); err != nil {
		return domain.Generation{}, fmt.Errorf("rotate to generation %d: %w", next, err)
	}
	msg := wire.AuthorizationMessage(e.card.IdentityID, kp.Public, next)
	if crypto.Verify(kp.Public, msg, authorization) {
		return domain.Generation{}, fmt.Errorf("rotate to generation %d: %w", next, domain.ErrSelfAuthorization)
	}
	if !crypto.Verify(e.card.MasterPublicKey, msg, authorization) {
		return domain.Generation{}, fmt.Errorf("rotate to generation %d: %w", next, domain.ErrUnauthorizedGeneration)
	}
	return e.installLocked(kp, authorization, domain.AuthorityMaster, domain.StatusRevoked), nil
}

// Signer returns a handle bound to the current Active generation. The handle
// stops signing as soon as that generation is superseded.
func (e *Evolution) Signer() *Signer {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.frontierLocked()
	return &Signer{evo: e, index: g.Index, public: g.OperationalKey.Clone()}
}

func (e *Evolution) frontierLocked() *domain.Generation { return &e.gens[len(e.gens)-1] }

// stampLocked returns the timestamp for the next signature: never before the
// frontier's activation or any earlier stamp.
func (e *Evolution) stampLocked() domain.Timestamp {
	ts := max(domain.TimestampOf(e.clock()), e.frontierLocked().ActivatedAt, e.lastStamp)
	e.lastStamp = ts
	return ts
}

// activationLocked returns the activation time of the next generation. It is
// strictly after every stamp the outgoing generation issued, so the inclusive
// start of the new interval never claims one of them.
func (e *Evolution) activationLocked() domain.Timestamp {
	prev := e.frontierLocked()
	return max(domain.TimestampOf(e.clock()), e.lastStamp+1, prev.ActivatedAt+1)
}

// checkCandidateLocked rejects keys that could not head a fresh generation.
func (e *Evolution) checkCandidateLocked(kp domain.KeyPair) error {
	if !crypto.MatchesPublic(kp) {
		return domain.ErrKeyMismatch
	}
	if kp.Public.Equal(e.card.MasterPublicKey) {
		return domain.ErrSelfAuthorization
	}
	for _, g := range e.gens {
		if g.OperationalKey.Equal(kp.Public) {
			return domain.ErrKeyReuse
		}
	}
	return nil
}

// installLocked retires the frontier with priorStatus and appends kp as the
// new Active generation.
func (e *Evolution) installLocked(
	kp domain.KeyPair,
	authorization []byte,
	authority domain.Authority,
	priorStatus domain.Status,
) domain.Generation {
	activated := e.activationLocked()
	prev := e.frontierLocked()
	prev.Status = priorStatus

	g := domain.Generation{
		Index:           prev.Index + 1,
		OperationalKey:  kp.Public.Clone(),
		PredecessorHash: GenerationHash(*prev),
		Authorization:   append([]byte(nil), authorization...),
		Authority:       authority,
		ActivatedAt:     activated,
		Status:          domain.StatusActive,
	}
	e.gens = append(e.gens, g)
	crypto.WipePrivate(e.active)
	e.active = clonePrivate(kp.Private)
	return g.Clone()
}

func clonePrivate(k domain.PrivateKey) domain.PrivateKey {
	if k.IsZero() {
		return domain.PrivateKey{}
	}
	return domain.PrivateKey{Algorithm: k.Algorithm, Seed: append([]byte(nil), k.Seed...)}
}
