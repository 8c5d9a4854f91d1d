package prefs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jimezsa/clockedin/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) listen(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) all() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

func TestDecodeBlockListToleratesMalformedValues(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"missing", "", 0},
		{"null", "null", 0},
		{"object", `{"id":"1","companyName":"Acme"}`, 0},
		{"string", `"Acme"`, 0},
		{"mixed elements", `[{"id":"1","companyName":"Acme"}, "Beta", 3, {"id":"2","companyName":""}]`, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list := DecodeBlockList(json.RawMessage(tc.raw))
			require.NotNil(t, list)
			assert.Len(t, list, tc.want)
		})
	}
}

func TestDecodeBlockListLegacyField(t *testing.T) {
	list := DecodeBlockList(json.RawMessage(`[{"id":"1","company":"Acme"}]`))
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].CompanyName)
}

func TestMemoryStoreNotifiesOnChange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(AreaLocal)
	rec := &recorder{}
	cancel := s.Subscribe(rec.listen)

	require.NoError(t, s.Set(ctx, KeyCompanyTags, json.RawMessage(`[]`)))
	require.NoError(t, s.Set(ctx, KeyCompanyTags, json.RawMessage(` [ ] `)))
	require.NoError(t, s.Set(ctx, KeyCompanyTags, json.RawMessage(`[{"id":"1","companyName":"Acme"}]`)))

	changes := rec.all()
	require.Len(t, changes, 2, "rewriting an equal value is silent")
	assert.Nil(t, changes[0].OldValue)
	assert.JSONEq(t, `[]`, string(changes[0].NewValue))
	assert.JSONEq(t, `[]`, string(changes[1].OldValue))
	assert.Equal(t, AreaLocal, changes[1].Area)
	assert.Equal(t, KeyCompanyTags, changes[1].Key)

	cancel()
	require.NoError(t, s.Set(ctx, KeyCompanyTags, nil))
	assert.Len(t, rec.all(), 2)

	raw, err := s.Get(ctx, KeyCompanyTags)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	err := NewMemoryStore(AreaSync).Set(context.Background(), "", json.RawMessage(`1`))
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestBlockAndUnblockCompany(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(AreaLocal)

	_, err := BlockCompany(ctx, s, "   ")
	assert.ErrorIs(t, err, ErrEmptyCompany)

	acme, err := BlockCompany(ctx, s, " Acme ")
	require.NoError(t, err)
	assert.NotEmpty(t, acme.ID)
	assert.Equal(t, "Acme", acme.CompanyName)
	_, err = BlockCompany(ctx, s, "Beta")
	require.NoError(t, err)

	list, err := LoadBlockList(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Beta"}, list.Names())

	removed, err := UnblockCompany(ctx, s, "beta")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = UnblockCompany(ctx, s, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err = LoadBlockList(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSearchesRoundTripDropsInvalidVariants(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(AreaLocal)

	saved, err := AddSearch(ctx, s, models.SavedSearch{
		Kind:     models.KindLinkedIn,
		Keywords: "go developer",
		URL:      "https://www.linkedin.com/jobs/search/?keywords=go",
		LinkedIn: &models.LinkedInSearch{SearchRadius: 25, Time: models.TimeFrameHour, SortBy: models.SortMostRecent},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	raw, err := s.Get(ctx, KeySearches)
	require.NoError(t, err)
	var items []any
	require.NoError(t, json.Unmarshal(raw, &items))
	items = append(items, map[string]any{"id": "x", "kind": "manual"})
	raw, err = json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeySearches, raw))

	searches, err := LoadSearches(ctx, s)
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, saved.ID, searches[0].ID)

	ok, err := RemoveSearch(ctx, s, saved.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = RemoveSearch(ctx, s, saved.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateReminderKeepsOtherSettings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(AreaLocal)
	require.NoError(t, s.Set(ctx, KeySettings, json.RawMessage(`{"theme":"dark","reminderSettings":{"enabled":false,"frequency":15}}`)))

	reminder, err := UpdateReminder(ctx, s, func(r *models.ReminderSettings) { r.Enabled = true })
	require.NoError(t, err)
	assert.Equal(t, models.ReminderSettings{Enabled: true, Frequency: 15}, reminder)

	raw, err := s.Get(ctx, KeySettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark","reminderSettings":{"enabled":true,"frequency":15}}`, string(raw))
}

func TestFileStorePersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := NewFileStore(path, AreaLocal, zerolog.Nop())
	require.NoError(t, err)
	rec := &recorder{}
	s.Subscribe(rec.listen)

	_, err = BlockCompany(ctx, s, "Acme")
	require.NoError(t, err)
	require.Len(t, rec.all(), 1)

	reopened, err := NewFileStore(path, AreaLocal, zerolog.Nop())
	require.NoError(t, err)
	list, err := LoadBlockList(ctx, reopened)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, list.Names())

	s.Reload()
	assert.Len(t, rec.all(), 1, "reloading our own write is silent")
}

func TestFileStoreReloadSeesExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := NewFileStore(path, AreaSync, zerolog.Nop())
	require.NoError(t, err)
	rec := &recorder{}
	s.Subscribe(rec.listen)

	// JSON5: comments, unquoted keys and trailing commas are accepted.
	edited := `{
  // edited by hand
  companyTags: [{id: "1", companyName: "Acme",},],
}`
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))
	s.Reload()

	changes := rec.all()
	require.Len(t, changes, 1)
	assert.Equal(t, KeyCompanyTags, changes[0].Key)
	assert.Equal(t, AreaSync, changes[0].Area)
	assert.Equal(t, []string{"Acme"}, DecodeBlockList(changes[0].NewValue).Names())
}

func TestFileStoreReloadKeepsStateOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := NewFileStore(path, AreaLocal, zerolog.Nop())
	require.NoError(t, err)
	rec := &recorder{}
	s.Subscribe(rec.listen)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	s.Reload()
	assert.Empty(t, rec.all())

	_, err = s.Get(context.Background(), KeyCompanyTags)
	assert.Error(t, err)
}

func TestSQLiteStoreSharesStateAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	writer, err := NewSQLiteStore(path, AreaLocal, 0, zerolog.Nop())
	require.NoError(t, err)
	defer writer.Close()
	reader, err := NewSQLiteStore(path, AreaLocal, 0, zerolog.Nop())
	require.NoError(t, err)
	defer reader.Close()

	rec := &recorder{}
	reader.Subscribe(rec.listen)

	_, err = BlockCompany(ctx, writer, "Acme")
	require.NoError(t, err)

	list, err := LoadBlockList(ctx, reader)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, list.Names())

	reader.Reload(ctx)
	changes := rec.all()
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].OldValue)
	assert.Equal(t, []string{"Acme"}, DecodeBlockList(changes[0].NewValue).Names())

	reader.Reload(ctx)
	assert.Len(t, rec.all(), 1)
}

func TestSQLiteStoreAreasAreSeparate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	local, err := NewSQLiteStore(path, AreaLocal, 0, zerolog.Nop())
	require.NoError(t, err)
	defer local.Close()
	synced, err := NewSQLiteStore(path, AreaSync, 0, zerolog.Nop())
	require.NoError(t, err)
	defer synced.Close()

	require.NoError(t, local.Set(ctx, KeyCompanyTags, json.RawMessage(`[{"id":"1","companyName":"Acme"}]`)))
	raw, err := synced.Get(ctx, KeyCompanyTags)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "redis"})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	s, err := Open(Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.Equal(t, AreaLocal, s.Area())
}
