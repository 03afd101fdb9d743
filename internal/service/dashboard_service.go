package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/havenpaws/shelter-api/internal/authz"
	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type dashboardPetRepository interface {
	Count(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]models.Pet, error)
}

type dashboardAdoptionRepository interface {
	Count(ctx context.Context, ownerID *string) (int, error)
	ListRecent(ctx context.Context, ownerID *string, limit int) ([]models.Adoption, error)
}

type dashboardDonationRepository interface {
	Count(ctx context.Context, ownerID *string) (int, error)
	TotalAmount(ctx context.Context, ownerID *string) (decimal.Decimal, error)
	ListRecent(ctx context.Context, ownerID *string, limit int) ([]models.Donation, error)
}

type dashboardMedicalRecordRepository interface {
	Count(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]models.MedicalRecord, error)
}

const dashboardRecentLimit = 5

// DashboardService composes the operator dashboard. Counts and recents for
// donations and adoptions are scoped to the caller for employees.
type DashboardService struct {
	pets      dashboardPetRepository
	adoptions dashboardAdoptionRepository
	donations dashboardDonationRepository
	medical   dashboardMedicalRecordRepository
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(pets dashboardPetRepository, adoptions dashboardAdoptionRepository, donations dashboardDonationRepository, medical dashboardMedicalRecordRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{pets: pets, adoptions: adoptions, donations: donations, medical: medical, cache: cache, metrics: metrics, logger: logger}
}

// Get returns the dashboard for the calling subject, serving from cache when
// a fresh entry exists.
func (s *DashboardService) Get(ctx context.Context, sub authz.Subject) (*models.Dashboard, error) {
	if err := authz.Check(sub, authz.ActionRead, authz.ResourcePet, nil); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:%s:%s", sub.Role, sub.UserID)
	if s.cache.Enabled() {
		var cached models.Dashboard
		err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	dashboard, err := s.compose(ctx, sub)
	if err != nil {
		return nil, err
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, dashboard); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return dashboard, nil
}

func (s *DashboardService) compose(ctx context.Context, sub authz.Subject) (*models.Dashboard, error) {
	var ownerID *string
	if sub.Role == models.RoleEmployee {
		id := sub.UserID
		ownerID = &id
	}

	petCount, err := s.pets.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pets")
	}
	adoptionCount, err := s.adoptions.Count(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count adoptions")
	}
	donationCount, err := s.donations.Count(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count donations")
	}
	medicalCount, err := s.medical.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count medical records")
	}
	donationTotal, err := s.donations.TotalAmount(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum donations")
	}

	recentPets, err := s.pets.ListRecent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent pets")
	}
	recentAdoptions, err := s.adoptions.ListRecent(ctx, ownerID, dashboardRecentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent adoptions")
	}
	recentDonations, err := s.donations.ListRecent(ctx, ownerID, dashboardRecentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent donations")
	}
	recentMedical, err := s.medical.ListRecent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent medical records")
	}

	return &models.Dashboard{
		Counts: models.DashboardCounts{
			Pets:           petCount,
			Adoptions:      adoptionCount,
			Donations:      donationCount,
			MedicalRecords: medicalCount,
			DonationTotal:  donationTotal,
		},
		RecentPets:           recentPets,
		RecentAdoptions:      recentAdoptions,
		RecentDonations:      recentDonations,
		RecentMedicalRecords: recentMedical,
	}, nil
}
