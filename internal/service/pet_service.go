package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/havenpaws/shelter-api/internal/authz"
	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type petRepository interface {
	List(ctx context.Context, filter models.PetFilter) ([]models.Pet, int, error)
	FindByID(ctx context.Context, id string) (*models.Pet, error)
	Create(ctx context.Context, pet *models.Pet) error
	Update(ctx context.Context, pet *models.Pet) error
	Delete(ctx context.Context, id string) error
}

type petMedicalRecordLister interface {
	ListByPet(ctx context.Context, petID string) ([]models.MedicalRecord, error)
}

// imageStore is the upload adapter boundary: it turns image bytes into a
// stored reference and disposes of replaced references.
type imageStore interface {
	Store(declaredFilename string, data []byte) (string, error)
	Delete(reference string) error
}

// ImageUpload carries inbound binary image data with its declared filename.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// CreatePetRequest holds payload for creating pets.
type CreatePetRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Breed       string  `json:"breed" validate:"required,max=100"`
	Age         int     `json:"age" validate:"gte=0"`
	Gender      string  `json:"gender" validate:"required,oneof=male female"`
	Status      string  `json:"status" validate:"omitempty,oneof=available adopted foster"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	ShelterCode *string `json:"shelter_code"`
}

// UpdatePetRequest holds payload for updating pets.
type UpdatePetRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Breed       string  `json:"breed" validate:"required,max=100"`
	Age         int     `json:"age" validate:"gte=0"`
	Gender      string  `json:"gender" validate:"required,oneof=male female"`
	Status      string  `json:"status" validate:"omitempty,oneof=available adopted foster"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	ShelterCode *string `json:"shelter_code"`
}

// PetDetail couples a pet with its medical history for the detail view.
type PetDetail struct {
	Pet            models.Pet             `json:"pet"`
	MedicalRecords []models.MedicalRecord `json:"medical_records"`
}

// PetService handles pet use-cases. Every operation takes the authenticated
// subject explicitly and evaluates the authorization policy before touching
// the repository.
type PetService struct {
	repo      petRepository
	medical   petMedicalRecordLister
	images    imageStore
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
}

// NewPetService constructs the pet service.
func NewPetService(repo petRepository, medical petMedicalRecordLister, images imageStore, validate *validator.Validate, logger *zap.Logger, cache *CacheService) *PetService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PetService{repo: repo, medical: medical, images: images, validator: validate, logger: logger, cache: cache}
}

// List returns pets and pagination metadata. Pets are readable by both roles.
func (s *PetService) List(ctx context.Context, sub authz.Subject, filter models.PetFilter) ([]models.Pet, *models.Pagination, error) {
	if err := authz.Check(sub, authz.ActionRead, authz.ResourcePet, nil); err != nil {
		return nil, nil, err
	}
	pets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pets")
	}
	return pets, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a pet together with its medical history.
func (s *PetService) Get(ctx context.Context, sub authz.Subject, id string) (*PetDetail, error) {
	if err := authz.Check(sub, authz.ActionRead, authz.ResourcePet, nil); err != nil {
		return nil, err
	}
	pet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pet")
	}
	records, err := s.medical.ListByPet(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load medical history")
	}
	return &PetDetail{Pet: *pet, MedicalRecords: records}, nil
}

// Create registers a new pet. Admin only.
func (s *PetService) Create(ctx context.Context, sub authz.Subject, req CreatePetRequest, image *ImageUpload) (*models.Pet, error) {
	if err := authz.Check(sub, authz.ActionCreate, authz.ResourcePet, nil); err != nil {
		return nil, err
	}
	if verr := validateStruct(s.validator, req); verr != nil {
		return nil, verr
	}

	imageURL := req.ImageURL
	if image != nil {
		stored, err := s.images.Store(image.Filename, image.Data)
		if err != nil {
			return nil, appErrors.FromError(err)
		}
		imageURL = &stored
	}

	status := models.PetStatus(req.Status)
	if status == "" {
		status = models.PetStatusAvailable
	}

	pet := &models.Pet{
		Name:        req.Name,
		Breed:       req.Breed,
		Age:         req.Age,
		Gender:      models.PetGender(req.Gender),
		Status:      status,
		Description: req.Description,
		ImageURL:    imageURL,
		ShelterCode: req.ShelterCode,
	}
	if err := s.repo.Create(ctx, pet); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create pet")
	}

	s.invalidateDashboards(ctx)
	s.logger.Info("pet created", zap.String("pet_id", pet.ID), zap.String("name", pet.Name))
	return pet, nil
}

// Update replaces all mutable fields of a pet. Optional attributes that are
// absent from the request keep their previous value; the stored image in
// particular survives unless a new one is supplied.
func (s *PetService) Update(ctx context.Context, sub authz.Subject, id string, req UpdatePetRequest, image *ImageUpload) (*models.Pet, error) {
	if err := authz.Check(sub, authz.ActionUpdate, authz.ResourcePet, nil); err != nil {
		return nil, err
	}
	if verr := validateStruct(s.validator, req); verr != nil {
		return nil, verr
	}

	pet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pet")
	}

	previousImage := pet.ImageURL
	imageURL := pet.ImageURL
	if image != nil {
		stored, err := s.images.Store(image.Filename, image.Data)
		if err != nil {
			return nil, appErrors.FromError(err)
		}
		imageURL = &stored
	} else if req.ImageURL != nil {
		imageURL = req.ImageURL
	}

	pet.Name = req.Name
	pet.Breed = req.Breed
	pet.Age = req.Age
	pet.Gender = models.PetGender(req.Gender)
	if req.Status != "" {
		pet.Status = models.PetStatus(req.Status)
	}
	if req.Description != nil {
		pet.Description = req.Description
	}
	if req.ShelterCode != nil {
		pet.ShelterCode = req.ShelterCode
	}
	pet.ImageURL = imageURL

	if err := s.repo.Update(ctx, pet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update pet")
	}

	// A replaced stored image is disposed of after the commit; a failure
	// here is logged but never surfaced.
	if image != nil && previousImage != nil && (imageURL == nil || *previousImage != *imageURL) {
		if err := s.images.Delete(*previousImage); err != nil {
			s.logger.Warn("failed to delete replaced pet image", zap.String("reference", *previousImage), zap.Error(err))
		}
	}

	s.invalidateDashboards(ctx)
	return pet, nil
}

// Delete removes a pet and cascades to its medical records and adoptions.
func (s *PetService) Delete(ctx context.Context, sub authz.Subject, id string) error {
	if err := authz.Check(sub, authz.ActionDelete, authz.ResourcePet, nil); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "pet not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete pet")
	}
	s.invalidateDashboards(ctx)
	s.logger.Info("pet deleted", zap.String("pet_id", id))
	return nil
}

func (s *PetService) invalidateDashboards(ctx context.Context) {
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
}

func paginationFor(page, pageSize, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
