package repository

import (
	"sort"
	"strings"
	"testing"

	"github.com/fadilmartias/resumind/internal/apperror"
	"github.com/fadilmartias/resumind/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memKV is an in-memory KVStore used in place of the postgres-backed one.
type memKV struct {
	entries map[string]string
}

func newMemKV() *memKV {
	return &memKV{entries: make(map[string]string)}
}

func (m *memKV) Get(key string) (string, bool, error) {
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *memKV) Set(key, value string) error {
	m.entries[key] = value
	return nil
}

func (m *memKV) ListPrefix(prefix string) ([]model.KVEntry, error) {
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	entries := make([]model.KVEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, model.KVEntry{Key: key, Value: m.entries[key]})
	}
	return entries, nil
}

func pendingRecord(id string) *model.SubmissionRecord {
	return &model.SubmissionRecord{
		ID:             id,
		ResumePath:     id + "/resume.pdf",
		ImagePath:      id + "/preview.png",
		CompanyName:    "Acme",
		JobTitle:       "Engineer",
		JobDescription: "Build things",
	}
}

func completeRecord(id string) *model.SubmissionRecord {
	record := pendingRecord(id)
	record.Feedback = &model.Feedback{
		OverallScore: 64,
		ATS:          model.ATSCategory{Score: 60, Tips: []model.ATSTip{{Type: model.TipImprove, Tip: "Add keywords"}}},
		ToneAndStyle: model.Category{Score: 66, Tips: []model.Tip{{Type: model.TipGood, Tip: "Good tone", Explanation: "Reads well."}}},
		Content:      model.Category{Score: 61, Tips: []model.Tip{{Type: model.TipImprove, Tip: "More detail", Explanation: "Roles lack outcomes."}}},
		Structure:    model.Category{Score: 68, Tips: []model.Tip{{Type: model.TipGood, Tip: "Clean layout", Explanation: "Sections are easy to scan."}}},
		Skills:       model.Category{Score: 59, Tips: []model.Tip{{Type: model.TipImprove, Tip: "Match the posting", Explanation: "Key skills are buried."}}},
	}
	return record
}

func TestPutGetRoundTrip(t *testing.T) {
	kv := newMemKV()
	store := NewSubmissionStore(kv)
	record := completeRecord("id-1")

	require.NoError(t, store.Put(record))

	got, err := store.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, record, got)

	_, stored := kv.entries["resume:id-1"]
	assert.True(t, stored, "record must live under the resume: key scheme")
}

func TestPutOverwritesPriorValue(t *testing.T) {
	store := NewSubmissionStore(newMemKV())

	first := pendingRecord("id-1")
	require.NoError(t, store.Put(first))

	second := pendingRecord("id-1")
	second.CompanyName = "Globex"
	require.NoError(t, store.Put(second))

	got, err := store.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "Globex", got.CompanyName)
}

func TestGetNotFound(t *testing.T) {
	store := NewSubmissionStore(newMemKV())
	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMalformedValue(t *testing.T) {
	kv := newMemKV()
	kv.entries["resume:bad"] = "{not json"
	store := NewSubmissionStore(kv)

	_, err := store.Get("bad")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindParse))
}

func TestListAllSkipsMalformedEntries(t *testing.T) {
	kv := newMemKV()
	store := NewSubmissionStore(kv)

	require.NoError(t, store.Put(pendingRecord("a")))
	require.NoError(t, store.Put(pendingRecord("b")))
	kv.entries["resume:corrupt"] = "###"
	kv.entries["other:ignored"] = "outside the prefix"

	records, skipped, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, skipped)
}

func TestListAllPendingAndComplete(t *testing.T) {
	store := NewSubmissionStore(newMemKV())

	require.NoError(t, store.Put(completeRecord("a")))
	require.NoError(t, store.Put(pendingRecord("b")))

	records, skipped, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Zero(t, skipped)

	byID := map[string]model.SubmissionRecord{}
	for _, r := range records {
		byID[r.ID] = r
	}
	recordA, recordB := byID["a"], byID["b"]
	assert.True(t, recordA.Complete())
	assert.False(t, recordB.Complete())
}
