package repositories

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"tasks-lab/codec"
	"tasks-lab/domain"
	"tasks-lab/errors"
)

const (
	eventPrefix   = "evt:"
	versionPrefix = "ver:"
)

type BadgerEventStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerEventStore(db *badger.DB, log *slog.Logger) *BadgerEventStore {
	return &BadgerEventStore{db: db, log: log}
}

// EventKey is formatted as "evt:{aggregate_id}:{version_padded}".
// The 19-digit zero padding keeps a stream sorted by version under a prefix scan.
func EventKey(aggregateID string, version int64) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d", eventPrefix, aggregateID, version))
}

func versionKey(aggregateID string) []byte {
	return []byte(versionPrefix + aggregateID)
}

// Append checks the head version and writes the events in the same transaction.
// A concurrent writer makes badger return ErrConflict, reported as a concurrency conflict.
func (s *BadgerEventStore) Append(_ context.Context, aggregateID string, expectedVersion int64, events []domain.EventEnvelope) error {
	if err := checkVersions(expectedVersion, events); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := readVersion(txn, aggregateID)
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return fmt.Errorf("%w: %s at version %d, expected %d",
				errors.ErrConcurrencyConflict, aggregateID, current, expectedVersion)
		}
		for _, env := range events {
			value, err := encodeEnvelope(env)
			if err != nil {
				return err
			}
			if err := txn.Set(EventKey(aggregateID, env.Context.Version), value); err != nil {
				return err
			}
		}
		head := make([]byte, 8)
		binary.BigEndian.PutUint64(head, uint64(expectedVersion+int64(len(events))))
		return txn.Set(versionKey(aggregateID), head)
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", errors.ErrConcurrencyConflict, err)
	}
	return err
}

func (s *BadgerEventStore) Load(_ context.Context, aggregateID string) ([]domain.EventEnvelope, error) {
	var events []domain.EventEnvelope
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(eventPrefix+aggregateID+":"), func(value []byte) error {
			env, err := decodeEnvelope(value)
			if err != nil {
				return err
			}
			events = append(events, env)
			return nil
		})
	})
	return events, err
}

// ReadAll iterates the whole "evt:" keyspace, which is sorted by aggregate id then version.
func (s *BadgerEventStore) ReadAll(ctx context.Context, fn func(domain.EventEnvelope) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(eventPrefix), func(value []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			env, err := decodeEnvelope(value)
			if err != nil {
				return err
			}
			return fn(env)
		})
	})
}

func readVersion(txn *badger.Txn, aggregateID string) (int64, error) {
	item, err := txn.Get(versionKey(aggregateID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var version int64
	err = item.Value(func(value []byte) error {
		version = int64(binary.BigEndian.Uint64(value))
		return nil
	})
	return version, err
}

func scan(txn *badger.Txn, prefix []byte, fn func(value []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func encodeEnvelope(env domain.EventEnvelope) ([]byte, error) {
	s, err := codec.EncodeEvent(env)
	if err != nil {
		return nil, err
	}
	return codec.MarshalBinary(s)
}

func decodeEnvelope(value []byte) (domain.EventEnvelope, error) {
	s, err := codec.UnmarshalBinary(value)
	if err != nil {
		return domain.EventEnvelope{}, err
	}
	return codec.DecodeEvent(s)
}
