package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type mockDashboardPets struct {
	count  int
	recent []models.Pet
}

func (m *mockDashboardPets) Count(ctx context.Context) (int, error) { return m.count, nil }
func (m *mockDashboardPets) ListRecent(ctx context.Context, limit int) ([]models.Pet, error) {
	return m.recent, nil
}

type mockDashboardAdoptions struct {
	count     int
	recent    []models.Adoption
	lastOwner *string
}

func (m *mockDashboardAdoptions) Count(ctx context.Context, ownerID *string) (int, error) {
	m.lastOwner = ownerID
	return m.count, nil
}

func (m *mockDashboardAdoptions) ListRecent(ctx context.Context, ownerID *string, limit int) ([]models.Adoption, error) {
	return m.recent, nil
}

type mockDashboardDonations struct {
	count     int
	total     decimal.Decimal
	recent    []models.Donation
	lastOwner *string
}

func (m *mockDashboardDonations) Count(ctx context.Context, ownerID *string) (int, error) {
	m.lastOwner = ownerID
	return m.count, nil
}

func (m *mockDashboardDonations) TotalAmount(ctx context.Context, ownerID *string) (decimal.Decimal, error) {
	return m.total, nil
}

func (m *mockDashboardDonations) ListRecent(ctx context.Context, ownerID *string, limit int) ([]models.Donation, error) {
	return m.recent, nil
}

type mockDashboardMedical struct {
	count  int
	recent []models.MedicalRecord
}

func (m *mockDashboardMedical) Count(ctx context.Context) (int, error) { return m.count, nil }
func (m *mockDashboardMedical) ListRecent(ctx context.Context, limit int) ([]models.MedicalRecord, error) {
	return m.recent, nil
}

// memoryCache is a map-backed stand-in for the redis cache repository.
type memoryCache struct {
	entries map[string][]byte
	sets    int
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = raw
	m.sets++
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = nil
	return nil
}

func newDashboardService(donations *mockDashboardDonations, adoptions *mockDashboardAdoptions, cache *CacheService) *DashboardService {
	return NewDashboardService(
		&mockDashboardPets{count: 12},
		adoptions,
		donations,
		&mockDashboardMedical{count: 7},
		cache,
		nil,
		nil,
	)
}

func TestDashboardServiceAdminSeesGlobalCounts(t *testing.T) {
	donations := &mockDashboardDonations{count: 4, total: decimal.RequireFromString("310.50")}
	adoptions := &mockDashboardAdoptions{count: 3}
	svc := newDashboardService(donations, adoptions, nil)

	dashboard, err := svc.Get(context.Background(), adminSubject)
	require.NoError(t, err)
	assert.Equal(t, 12, dashboard.Counts.Pets)
	assert.Equal(t, 3, dashboard.Counts.Adoptions)
	assert.Equal(t, 4, dashboard.Counts.Donations)
	assert.Equal(t, 7, dashboard.Counts.MedicalRecords)
	assert.True(t, dashboard.Counts.DonationTotal.Equal(decimal.RequireFromString("310.50")))
	assert.Nil(t, donations.lastOwner)
	assert.Nil(t, adoptions.lastOwner)
}

func TestDashboardServiceEmployeeCountsAreScoped(t *testing.T) {
	donations := &mockDashboardDonations{count: 1, total: decimal.RequireFromString("25.00")}
	adoptions := &mockDashboardAdoptions{count: 1}
	svc := newDashboardService(donations, adoptions, nil)

	_, err := svc.Get(context.Background(), employeeSubject)
	require.NoError(t, err)
	require.NotNil(t, donations.lastOwner)
	assert.Equal(t, employeeSubject.UserID, *donations.lastOwner)
	require.NotNil(t, adoptions.lastOwner)
	assert.Equal(t, employeeSubject.UserID, *adoptions.lastOwner)
}

func TestDashboardServiceServesFromCache(t *testing.T) {
	store := &memoryCache{}
	cache := NewCacheService(store, time.Minute, true)
	donations := &mockDashboardDonations{count: 4, total: decimal.RequireFromString("310.50")}
	svc := newDashboardService(donations, &mockDashboardAdoptions{count: 3}, cache)

	first, err := svc.Get(context.Background(), adminSubject)
	require.NoError(t, err)
	assert.Equal(t, 1, store.sets)

	// A change in the underlying data is invisible until invalidation.
	donations.count = 99
	second, err := svc.Get(context.Background(), adminSubject)
	require.NoError(t, err)
	assert.Equal(t, first.Counts.Donations, second.Counts.Donations)
	assert.Equal(t, 1, store.sets)

	require.NoError(t, cache.Invalidate(context.Background(), "dashboard:*"))
	third, err := svc.Get(context.Background(), adminSubject)
	require.NoError(t, err)
	assert.Equal(t, 99, third.Counts.Donations)
}

func TestDashboardServiceCacheKeyIsPerSubject(t *testing.T) {
	store := &memoryCache{}
	cache := NewCacheService(store, time.Minute, true)
	svc := newDashboardService(&mockDashboardDonations{}, &mockDashboardAdoptions{}, cache)

	_, err := svc.Get(context.Background(), adminSubject)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), employeeSubject)
	require.NoError(t, err)
	assert.Equal(t, 2, store.sets)
}
