package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"raiap/internal/domain"
	"raiap/internal/protocol/wire"
)

var (
	badgerAnchorPrefix = []byte("a/")
	badgerHeadPrefix   = []byte("h/")
)

// BadgerConfig configures an embedded stream store.
type BadgerConfig struct {
	Path     string
	InMemory bool
	Logger   *logrus.Logger
}

// BadgerStreams keeps streams in an embedded BadgerDB. Anchors are stored
// in their canonical wire form under a/<stream>/<position>; h/<stream> holds
// the length and head hash and is the key every append conflicts on.
type BadgerStreams struct {
	db  *badger.DB
	log *logrus.Logger
}

var (
	_ domain.StreamStore   = (*BadgerStreams)(nil)
	_ domain.StreamCatalog = (*BadgerStreams)(nil)
)

// OpenBadgerStreams opens or creates the database.
func OpenBadgerStreams(cfg BadgerConfig) (*BadgerStreams, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	opts := badger.DefaultOptions(cfg.Path).WithLogger(cfg.Logger)
	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}
	return &BadgerStreams{db: db, log: cfg.Logger}, nil
}

// Close releases the database.
func (b *BadgerStreams) Close() error { return b.db.Close() }

func anchorKey(id domain.StreamID, pos uint64) []byte {
	k := make([]byte, 0, len(badgerAnchorPrefix)+len(id)+9)
	k = append(k, badgerAnchorPrefix...)
	k = append(k, id...)
	k = append(k, '/')
	return binary.BigEndian.AppendUint64(k, pos)
}

func headKey(id domain.StreamID) []byte {
	return append(append([]byte{}, badgerHeadPrefix...), id...)
}

type headRecord struct {
	count uint64
	hash  domain.Digest
}

func (h headRecord) encode() []byte {
	out := binary.BigEndian.AppendUint64(nil, h.count)
	return append(out, h.hash[:]...)
}

func decodeHead(b []byte) (headRecord, error) {
	if len(b) != 8+len(domain.Digest{}) {
		return headRecord{}, fmt.Errorf("head record of %d bytes: %w", len(b), wire.ErrMalformed)
	}
	var h headRecord
	h.count = binary.BigEndian.Uint64(b)
	copy(h.hash[:], b[8:])
	return h, nil
}

func readHead(txn *badger.Txn, id domain.StreamID) (headRecord, error) {
	item, err := txn.Get(headKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return headRecord{hash: headOf(id, nil)}, nil
	}
	if err != nil {
		return headRecord{}, err
	}
	var h headRecord
	err = item.Value(func(v []byte) error {
		var derr error
		h, derr = decodeHead(v)
		return derr
	})
	return h, err
}

// LoadStream reads every anchor of id in position order.
func (b *BadgerStreams) LoadStream(_ context.Context, id domain.StreamID) ([]domain.Anchor, error) {
	if err := validStreamID(id); err != nil {
		return nil, err
	}
	var out []domain.Anchor
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := anchorKey(id, 0)[:len(badgerAnchorPrefix)+len(id)+1]
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 64})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				a, err := wire.UnmarshalAnchor(v)
				if err != nil {
					return err
				}
				out = append(out, a)
				return nil
			})
			if err != nil {
				return fmt.Errorf("stream %s position %d: %w", id, len(out), err)
			}
		}
		return nil
	})
	return out, err
}

// PersistAnchor appends a in one transaction that also moves the head. A
// concurrent append to the same stream makes one transaction fail with
// ErrConflict.
func (b *BadgerStreams) PersistAnchor(_ context.Context, id domain.StreamID, a domain.Anchor) error {
	if err := validStreamID(id); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		h, err := readHead(txn, id)
		if err != nil {
			return err
		}
		if err := checkExtends(id, h.hash, int(h.count), a); err != nil {
			return err
		}
		if err := txn.Set(anchorKey(id, h.count), wire.MarshalAnchor(a)); err != nil {
			return err
		}
		return txn.Set(headKey(id), headRecord{count: h.count + 1, hash: a.Hash}.encode())
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("stream %s: concurrent append: %w", id, domain.ErrConflict)
	}
	if err != nil {
		return err
	}
	b.log.WithFields(logrus.Fields{"stream_id": id, "anchor": a.Hash.String()}).Debug("anchor persisted")
	return nil
}

// ListStreams returns every stream that has a head record.
func (b *BadgerStreams) ListStreams(context.Context) ([]domain.StreamID, error) {
	var ids []domain.StreamID
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: badgerHeadPrefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, domain.StreamID(bytes.TrimPrefix(it.Item().Key(), badgerHeadPrefix)))
		}
		return nil
	})
	return ids, err
}
