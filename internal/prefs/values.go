package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jimezsa/clockedin/internal/models"
)

var ErrEmptyCompany = errors.New("company name is required")

// DecodeBlockList turns a stored companyTags value into a block list. Any
// value that is not an array decodes to an empty list, and array elements
// that are not objects are skipped.
func DecodeBlockList(raw json.RawMessage) models.BlockList {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return models.BlockList{}
	}
	list := make(models.BlockList, 0, len(items))
	for _, item := range items {
		if !bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
			continue
		}
		var c models.BlockedCompany
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		list = append(list, c)
	}
	return list
}

// LoadBlockList reads the block list. A missing key is an empty list.
func LoadBlockList(ctx context.Context, s Store) (models.BlockList, error) {
	raw, err := s.Get(ctx, KeyCompanyTags)
	if err != nil {
		return nil, err
	}
	return DecodeBlockList(raw), nil
}

func SaveBlockList(ctx context.Context, s Store, list models.BlockList) error {
	if list == nil {
		list = models.BlockList{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyCompanyTags, raw)
}

// BlockCompany appends a new entry for name with a fresh ID.
func BlockCompany(ctx context.Context, s Store, name string) (models.BlockedCompany, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.BlockedCompany{}, ErrEmptyCompany
	}
	list, err := LoadBlockList(ctx, s)
	if err != nil {
		return models.BlockedCompany{}, err
	}
	entry := models.BlockedCompany{ID: uuid.NewString(), CompanyName: name}
	if err := SaveBlockList(ctx, s, append(list, entry)); err != nil {
		return models.BlockedCompany{}, err
	}
	return entry, nil
}

// UnblockCompany deletes every entry whose ID equals ref or whose name
// matches it case-insensitively, returning how many were deleted.
func UnblockCompany(ctx context.Context, s Store, ref string) (int, error) {
	list, err := LoadBlockList(ctx, s)
	if err != nil {
		return 0, err
	}
	next, removed := list.Without(ref)
	if removed == 0 {
		return 0, nil
	}
	return removed, SaveBlockList(ctx, s, next)
}

// LoadSearches reads saved searches, dropping records whose variant does
// not match their kind.
func LoadSearches(ctx context.Context, s Store) ([]models.SavedSearch, error) {
	raw, err := s.Get(ctx, KeySearches)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []models.SavedSearch{}, nil
	}
	out := make([]models.SavedSearch, 0, len(items))
	for _, item := range items {
		var search models.SavedSearch
		if err := json.Unmarshal(item, &search); err != nil || !search.Valid() {
			continue
		}
		out = append(out, search)
	}
	return out, nil
}

func SaveSearches(ctx context.Context, s Store, searches []models.SavedSearch) error {
	if searches == nil {
		searches = []models.SavedSearch{}
	}
	raw, err := json.Marshal(searches)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeySearches, raw)
}

// AddSearch prepends search to the saved list, filling ID and CreatedAt
// when they are empty.
func AddSearch(ctx context.Context, s Store, search models.SavedSearch) (models.SavedSearch, error) {
	if search.ID == "" {
		search.ID = uuid.NewString()
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = time.Now().UTC()
	}
	searches, err := LoadSearches(ctx, s)
	if err != nil {
		return search, err
	}
	searches = append([]models.SavedSearch{search}, searches...)
	return search, SaveSearches(ctx, s, searches)
}

// RemoveSearch deletes the saved search with id.
func RemoveSearch(ctx context.Context, s Store, id string) (bool, error) {
	searches, err := LoadSearches(ctx, s)
	if err != nil {
		return false, err
	}
	out := searches[:0]
	found := false
	for _, search := range searches {
		if search.ID == id {
			found = true
			continue
		}
		out = append(out, search)
	}
	if !found {
		return false, nil
	}
	return true, SaveSearches(ctx, s, out)
}

// DecodeSettings reads a stored settings value; malformed input yields the
// zero settings.
func DecodeSettings(raw json.RawMessage) models.Settings {
	var settings models.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return models.Settings{}
	}
	return settings
}

func LoadSettings(ctx context.Context, s Store) (models.Settings, error) {
	raw, err := s.Get(ctx, KeySettings)
	if err != nil {
		return models.Settings{}, err
	}
	return DecodeSettings(raw), nil
}

// UpdateReminder applies update to the stored reminder settings, keeping
// any other fields of the settings object untouched.
func UpdateReminder(ctx context.Context, s Store, update func(*models.ReminderSettings)) (models.ReminderSettings, error) {
	raw, err := s.Get(ctx, KeySettings)
	if err != nil {
		return models.ReminderSettings{}, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		fields = map[string]json.RawMessage{}
	}
	reminder := DecodeSettings(raw).Reminder
	update(&reminder)

	encoded, err := json.Marshal(reminder)
	if err != nil {
		return reminder, err
	}
	fields["reminderSettings"] = encoded
	next, err := json.Marshal(fields)
	if err != nil {
		return reminder, err
	}
	return reminder, s.Set(ctx, KeySettings, next)
}
