package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/havenpaws/shelter-api/internal/authz"
	"github.com/havenpaws/shelter-api/internal/models"
	"github.com/havenpaws/shelter-api/internal/repository"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type adoptionRepository interface {
	List(ctx context.Context, filter models.AdoptionFilter) ([]models.Adoption, int, error)
	FindByID(ctx context.Context, id string) (*models.Adoption, error)
	Create(ctx context.Context, adoption *models.Adoption) error
	Update(ctx context.Context, adoption *models.Adoption) error
	Delete(ctx context.Context, id string) error
}

type petExistsChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CreateAdoptionRequest holds payload for processing adoptions.
type CreateAdoptionRequest struct {
	AdopterName  string  `json:"adopter_name" validate:"required,max=100"`
	AdopterEmail string  `json:"adopter_email" validate:"required,email"`
	AdopterPhone *string `json:"adopter_phone" validate:"omitempty,phone"`
	PetID        string  `json:"pet_id" validate:"required"`
	Address      *string `json:"address"`
}

// UpdateAdoptionRequest holds payload for updating adopter contact details.
// The pet reference is immutable once the adoption exists.
type UpdateAdoptionRequest struct {
	AdopterName  string  `json:"adopter_name" validate:"required,max=100"`
	AdopterEmail string  `json:"adopter_email" validate:"required,email"`
	AdopterPhone *string `json:"adopter_phone" validate:"omitempty,phone"`
	Address      *string `json:"address"`
}

// AdoptionService handles adoption use-cases with ownership-aware access.
type AdoptionService struct {
	repo      adoptionRepository
	pets      petExistsChecker
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
	metrics   *MetricsService
}

// NewAdoptionService constructs the adoption service.
func NewAdoptionService(repo adoptionRepository, pets petExistsChecker, validate *validator.Validate, logger *zap.Logger, cache *CacheService, metrics *MetricsService) *AdoptionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdoptionService{repo: repo, pets: pets, validator: validate, logger: logger, cache: cache, metrics: metrics}
}

// List returns adoptions visible to the subject. Employees only ever see
// rows they processed; admins see everything.
func (s *AdoptionService) List(ctx context.Context, sub authz.Subject, filter models.AdoptionFilter) ([]models.Adoption, *models.Pagination, error) {
	if err := authz.Check(sub, authz.ActionRead, authz.ResourceAdoption, nil); err != nil {
		return nil, nil, err
	}
	if sub.Role == models.RoleEmployee {
		owner := sub.UserID
		filter.OwnerID = &owner
	}
	adoptions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list adoptions")
	}
	return adoptions, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one adoption, treating non-owned rows as absent for employees.
func (s *AdoptionService) Get(ctx context.Context, sub authz.Subject, id string) (*models.Adoption, error) {
	return s.loadOwned(ctx, sub, authz.ActionRead, id)
}

// Create processes an adoption. The referenced pet must exist and be
// available; the status flip and the adoption insert commit atomically, so
// of two concurrent attempts against one pet exactly one succeeds and the
// other receives a conflict.
func (s *AdoptionService) Create(ctx context.Context, sub authz.Subject, req CreateAdoptionRequest) (*models.Adoption, error) {
	if err := authz.Check(sub, authz.ActionCreate, authz.ResourceAdoption, nil); err != nil {
		return nil, err
	}
	if verr := validateStruct(s.validator, req); verr != nil {
		return nil, verr
	}

	exists, err := s.pets.Exists(ctx, req.PetID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pet")
	}
	if !exists {
		return nil, appErrors.Reference("pet_id")
	}

	adoption := &models.Adoption{
		AdopterName:  req.AdopterName,
		AdopterEmail: req.AdopterEmail,
		AdopterPhone: req.AdopterPhone,
		PetID:        req.PetID,
		Address:      req.Address,
	}
	if sub.Role == models.RoleEmployee {
		owner := sub.UserID
		adoption.UserID = &owner
	}

	if err := s.repo.Create(ctx, adoption); err != nil {
		if errors.Is(err, repository.ErrPetNotAvailable) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "pet not available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create adoption")
	}

	s.invalidateDashboards(ctx)
	s.metrics.RecordAdoptionCreated()
	s.logger.Info("adoption processed", zap.String("adoption_id", adoption.ID), zap.String("pet_id", adoption.PetID))
	return adoption, nil
}

// Update replaces the adopter contact fields of an adoption the subject may
// edit.
func (s *AdoptionService) Update(ctx context.Context, sub authz.Subject, id string, req UpdateAdoptionRequest) (*models.Adoption, error) {
	adoption, err := s.loadOwned(ctx, sub, authz.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if verr := validateStruct(s.validator, req); verr != nil {
		return nil, verr
	}

	adoption.AdopterName = req.AdopterName
	adoption.AdopterEmail = req.AdopterEmail
	if req.AdopterPhone != nil {
		adoption.AdopterPhone = req.AdopterPhone
	}
	if req.Address != nil {
		adoption.Address = req.Address
	}

	if err := s.repo.Update(ctx, adoption); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "adoption not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update adoption")
	}

	s.invalidateDashboards(ctx)
	return adoption, nil
}

// Delete removes an adoption. Admin only per the policy table. Deleting an
// adoption does not revert the pet's status; that remains an explicit admin
// edit on the pet.
func (s *AdoptionService) Delete(ctx context.Context, sub authz.Subject, id string) error {
	if err := authz.Check(sub, authz.ActionDelete, authz.ResourceAdoption, nil); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "adoption not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete adoption")
	}
	s.invalidateDashboards(ctx)
	return nil
}

func (s *AdoptionService) loadOwned(ctx context.Context, sub authz.Subject, action authz.Action, id string) (*models.Adoption, error) {
	if err := authz.Check(sub, action, authz.ResourceAdoption, &sub.UserID); err != nil {
		return nil, err
	}
	adoption, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "adoption not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load adoption")
	}
	owner := ""
	if adoption.UserID != nil {
		owner = *adoption.UserID
	}
	if err := authz.Check(sub, action, authz.ResourceAdoption, &owner); err != nil {
		return nil, err
	}
	return adoption, nil
}

func (s *AdoptionService) invalidateDashboards(ctx context.Context) {
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
}
