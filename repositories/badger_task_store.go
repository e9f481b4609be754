package repositories

import (
	"context"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"tasks-lab/codec"
	"tasks-lab/domain"
	"tasks-lab/errors"
)

const taskPrefix = "task:"

type BadgerTaskStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerTaskStore(db *badger.DB, log *slog.Logger) *BadgerTaskStore {
	return &BadgerTaskStore{db: db, log: log}
}

func taskKey(id domain.TaskID) []byte {
	return []byte(taskPrefix + string(id))
}

func (s *BadgerTaskStore) Write(_ context.Context, task domain.Task) error {
	st, err := codec.EncodeTask(task)
	if err != nil {
		return err
	}
	value, err := codec.MarshalBinary(st)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(taskKey(task.ID), value)
	})
}

func (s *BadgerTaskStore) Read(_ context.Context, id domain.TaskID) (domain.Task, bool, error) {
	var task domain.Task
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(taskKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			task, err = decodeTask(value)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Task{}, false, nil
	}
	if err != nil {
		return domain.Task{}, false, err
	}
	return task, true, nil
}

func (s *BadgerTaskStore) ReadAll(_ context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(taskPrefix), func(value []byte) error {
			task, err := decodeTask(value)
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
			return nil
		})
	})
	return tasks, err
}

func decodeTask(value []byte) (domain.Task, error) {
	st, err := codec.UnmarshalBinary(value)
	if err != nil {
		return domain.Task{}, err
	}
	return codec.DecodeTask(st)
}
