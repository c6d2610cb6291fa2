package repository

import (
	"encoding/json"
	"errors"

	"github.com/fadilmartias/resumind/internal/apperror"
	"github.com/fadilmartias/resumind/internal/model"
)

// ErrNotFound signals that no record exists under the requested id.
var ErrNotFound = errors.New("submission record not found")

const recordKeyPrefix = "resume:"

// SubmissionStore maps submission records onto the key-value store
// under the resume:{id} key scheme, one JSON blob per record.
type SubmissionStore struct {
	kv KVStore
}

func NewSubmissionStore(kv KVStore) *SubmissionStore {
	return &SubmissionStore{kv: kv}
}

func recordKey(id string) string {
	return recordKeyPrefix + id
}

// Put overwrites whatever is stored under the record's id. Uniqueness
// is the caller's job; ids come from the generator, not from the store.
func (s *SubmissionStore) Put(record *model.SubmissionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return apperror.Wrap(apperror.KindStore, "cannot serialize submission record", err)
	}
	if err := s.kv.Set(recordKey(record.ID), string(data)); err != nil {
		return apperror.Wrap(apperror.KindStore, "cannot write submission record", err)
	}
	return nil
}

func (s *SubmissionStore) Get(id string) (*model.SubmissionRecord, error) {
	value, found, err := s.kv.Get(recordKey(id))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStore, "cannot read submission record", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	var record model.SubmissionRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, apperror.Wrap(apperror.KindParse, "stored submission record is malformed", err)
	}
	return &record, nil
}

// ListAll returns every well-formed record under the resume: prefix.
// A malformed entry is skipped and counted instead of aborting the
// listing; the listing drives a dashboard and must stay available.
func (s *SubmissionStore) ListAll() ([]model.SubmissionRecord, int, error) {
	entries, err := s.kv.ListPrefix(recordKeyPrefix)
	if err != nil {
		return nil, 0, apperror.Wrap(apperror.KindStore, "cannot list submission records", err)
	}
	records := make([]model.SubmissionRecord, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		var record model.SubmissionRecord
		if err := json.Unmarshal([]byte(entry.Value), &record); err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}
	return records, skipped, nil
}
