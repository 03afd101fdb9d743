package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/havenpaws/shelter-api/internal/authz"
	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type medicalRecordRepository interface {
	List(ctx context.Context, filter models.MedicalRecordFilter) ([]models.MedicalRecord, int, error)
	FindByID(ctx context.Context, id string) (*models.MedicalRecord, error)
	Create(ctx context.Context, record *models.MedicalRecord) error
	Update(ctx context.Context, record *models.MedicalRecord) error
	Delete(ctx context.Context, id string) error
	ListByPet(ctx context.Context, petID string) ([]models.MedicalRecord, error)
}

type donationExistsChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

const treatDateLayout = "2006-01-02"

// CreateMedicalRecordRequest holds payload for creating medical records.
// TreatDate is a calendar date in YYYY-MM-DD form.
type CreateMedicalRecordRequest struct {
	PetID         string  `json:"pet_id" validate:"required"`
	TreatmentType string  `json:"treatment_type" validate:"required,max=200"`
	TreatDate     string  `json:"treat_date" validate:"required"`
	DonationID    *string `json:"donation_id"`
	Vaccines      *string `json:"vaccines"`
	Description   *string `json:"description"`
}

// UpdateMedicalRecordRequest holds payload for updating medical records.
type UpdateMedicalRecordRequest struct {
	PetID         string  `json:"pet_id" validate:"required"`
	TreatmentType string  `json:"treatment_type" validate:"required,max=200"`
	TreatDate     string  `json:"treat_date" validate:"required"`
	DonationID    *string `json:"donation_id"`
	Vaccines      *string `json:"vaccines"`
	Description   *string `json:"description"`
}

// MedicalRecordService handles medical record use-cases. Records are
// readable by both roles; mutations are admin only.
type MedicalRecordService struct {
	repo      medicalRecordRepository
	pets      petExistsChecker
	donations donationExistsChecker
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
}

// NewMedicalRecordService constructs the medical record service.
func NewMedicalRecordService(repo medicalRecordRepository, pets petExistsChecker, donations donationExistsChecker, validate *validator.Validate, logger *zap.Logger, cache *CacheService) *MedicalRecordService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MedicalRecordService{repo: repo, pets: pets, donations: donations, validator: validate, logger: logger, cache: cache}
}

// List returns medical records and pagination metadata.
func (s *MedicalRecordService) List(ctx context.Context, sub authz.Subject, filter models.MedicalRecordFilter) ([]models.MedicalRecord, *models.Pagination, error) {
	if err := authz.Check(sub, authz.ActionRead, authz.ResourceMedicalRecord, nil); err != nil {
		return nil, nil, err
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list medical records")
	}
	return records, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a medical record by id.
func (s *MedicalRecordService) Get(ctx context.Context, sub authz.Subject, id string) (*models.MedicalRecord, error) {
	if err := authz.Check(sub, authz.ActionRead, authz.ResourceMedicalRecord, nil); err != nil {
		return nil, err
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "medical record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load medical record")
	}
	return record, nil
}

// ListByPet returns the treatment history of one pet, most recent first.
func (s *MedicalRecordService) ListByPet(ctx context.Context, sub authz.Subject, petID string) ([]models.MedicalRecord, error) {
	if err := authz.Check(sub, authz.ActionRead, authz.ResourceMedicalRecord, nil); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByPet(ctx, petID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load medical history")
	}
	return records, nil
}

// Create stores a treatment entry after verifying its references.
func (s *MedicalRecordService) Create(ctx context.Context, sub authz.Subject, req CreateMedicalRecordRequest) (*models.MedicalRecord, error) {
	if err := authz.Check(sub, authz.ActionCreate, authz.ResourceMedicalRecord, nil); err != nil {
		return nil, err
	}

	verr := validateStruct(s.validator, req)
	treatDate, dateErrs := parseTreatDate(req.TreatDate)
	if verr = mergeDetails(verr, dateErrs); verr != nil {
		return nil, verr
	}

	if err := s.checkReferences(ctx, req.PetID, req.DonationID); err != nil {
		return nil, err
	}

	record := &models.MedicalRecord{
		PetID:         req.PetID,
		TreatmentType: req.TreatmentType,
		TreatDate:     treatDate,
		DonationID:    req.DonationID,
		Vaccines:      req.Vaccines,
		Description:   req.Description,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create medical record")
	}

	s.invalidateDashboards(ctx)
	s.logger.Info("medical record created", zap.String("record_id", record.ID), zap.String("pet_id", record.PetID))
	return record, nil
}

// Update replaces all mutable fields of a medical record.
func (s *MedicalRecordService) Update(ctx context.Context, sub authz.Subject, id string, req UpdateMedicalRecordRequest) (*models.MedicalRecord, error) {
	if err := authz.Check(sub, authz.ActionUpdate, authz.ResourceMedicalRecord, nil); err != nil {
		return nil, err
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "medical record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load medical record")
	}

	verr := validateStruct(s.validator, req)
	treatDate, dateErrs := parseTreatDate(req.TreatDate)
	if verr = mergeDetails(verr, dateErrs); verr != nil {
		return nil, verr
	}

	if err := s.checkReferences(ctx, req.PetID, req.DonationID); err != nil {
		return nil, err
	}

	record.PetID = req.PetID
	record.TreatmentType = req.TreatmentType
	record.TreatDate = treatDate
	if req.DonationID != nil {
		record.DonationID = req.DonationID
	}
	if req.Vaccines != nil {
		record.Vaccines = req.Vaccines
	}
	if req.Description != nil {
		record.Description = req.Description
	}

	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "medical record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update medical record")
	}

	s.invalidateDashboards(ctx)
	return record, nil
}

// Delete removes a medical record.
func (s *MedicalRecordService) Delete(ctx context.Context, sub authz.Subject, id string) error {
	if err := authz.Check(sub, authz.ActionDelete, authz.ResourceMedicalRecord, nil); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "medical record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete medical record")
	}
	s.invalidateDashboards(ctx)
	return nil
}

func (s *MedicalRecordService) checkReferences(ctx context.Context, petID string, donationID *string) error {
	exists, err := s.pets.Exists(ctx, petID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pet")
	}
	if !exists {
		return appErrors.Reference("pet_id")
	}
	if donationID != nil && *donationID != "" {
		exists, err := s.donations.Exists(ctx, *donationID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check donation")
		}
		if !exists {
			return appErrors.Reference("donation_id")
		}
	}
	return nil
}

func (s *MedicalRecordService) invalidateDashboards(ctx context.Context) {
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
}

func parseTreatDate(raw string) (time.Time, []appErrors.FieldError) {
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(treatDateLayout, raw)
	if err != nil {
		return time.Time{}, []appErrors.FieldError{{Field: "treat_date", Reason: "must be a calendar date in YYYY-MM-DD form"}}
	}
	return date, nil
}
