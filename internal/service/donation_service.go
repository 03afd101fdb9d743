package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/havenpaws/shelter-api/internal/authz"
	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

type donationRepository interface {
	List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, int, error)
	FindByID(ctx context.Context, id string) (*models.Donation, error)
	Create(ctx context.Context, donation *models.Donation) error
	Update(ctx context.Context, donation *models.Donation) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.Donation, error)
}

// CreateDonationRequest holds payload for recording donations. Amount is a
// decimal string so precision is never lost to float parsing.
type CreateDonationRequest struct {
	Amount     string  `json:"amount" validate:"required"`
	Purpose    *string `json:"purpose"`
	DonorName  string  `json:"donor_name" validate:"required,max=100"`
	DonorEmail string  `json:"donor_email" validate:"required,email"`
	DonorPhone *string `json:"donor_phone" validate:"omitempty,phone"`
	Message    *string `json:"message"`
}

// UpdateDonationRequest holds payload for updating donations.
type UpdateDonationRequest struct {
	Amount     string  `json:"amount" validate:"required"`
	Purpose    *string `json:"purpose"`
	DonorName  string  `json:"donor_name" validate:"required,max=100"`
	DonorEmail string  `json:"donor_email" validate:"required,email"`
	DonorPhone *string `json:"donor_phone" validate:"omitempty,phone"`
	Message    *string `json:"message"`
}

// DonationService handles donation use-cases with ownership-aware access.
type DonationService struct {
	repo      donationRepository
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
	metrics   *MetricsService
}

// NewDonationService constructs the donation service.
func NewDonationService(repo donationRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, metrics *MetricsService) *DonationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonationService{repo: repo, validator: validate, logger: logger, cache: cache, metrics: metrics}
}

// List returns donations visible to the subject. Employees only ever see
// rows they recorded; admins see everything.
func (s *DonationService) List(ctx context.Context, sub authz.Subject, filter models.DonationFilter) ([]models.Donation, *models.Pagination, error) {
	if err := authz.Check(sub, authz.ActionRead, authz.ResourceDonation, nil); err != nil {
		return nil, nil, err
	}
	if sub.Role == models.RoleEmployee {
		owner := sub.UserID
		filter.OwnerID = &owner
	}
	donations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donations")
	}
	return donations, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one donation. A row the subject does not own surfaces as not
// found, exactly like an absent row.
func (s *DonationService) Get(ctx context.Context, sub authz.Subject, id string) (*models.Donation, error) {
	donation, err := s.loadOwned(ctx, sub, authz.ActionRead, id)
	if err != nil {
		return nil, err
	}
	return donation, nil
}

// Create records a donation. Employee-recorded rows carry the subject's id;
// admin-entered rows leave the recording user unset.
func (s *DonationService) Create(ctx context.Context, sub authz.Subject, req CreateDonationRequest) (*models.Donation, error) {
	if err := authz.Check(sub, authz.ActionCreate, authz.ResourceDonation, nil); err != nil {
		return nil, err
	}

	verr := validateStruct(s.validator, req)
	amount, amountErrs := parseAmount(req.Amount)
	if verr = mergeDetails(verr, amountErrs); verr != nil {
		return nil, verr
	}

	donation := &models.Donation{
		Amount:     amount,
		Purpose:    req.Purpose,
		DonorName:  req.DonorName,
		DonorEmail: req.DonorEmail,
		DonorPhone: req.DonorPhone,
		Message:    req.Message,
	}
	if sub.Role == models.RoleEmployee {
		owner := sub.UserID
		donation.UserID = &owner
	}

	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create donation")
	}

	s.invalidateDashboards(ctx)
	s.metrics.RecordDonationCreated()
	s.logger.Info("donation recorded", zap.String("donation_id", donation.ID), zap.String("amount", donation.Amount.StringFixed(2)))
	return donation, nil
}

// Update replaces the mutable fields of a donation the subject may edit.
func (s *DonationService) Update(ctx context.Context, sub authz.Subject, id string, req UpdateDonationRequest) (*models.Donation, error) {
	donation, err := s.loadOwned(ctx, sub, authz.ActionUpdate, id)
	if err != nil {
		return nil, err
	}

	verr := validateStruct(s.validator, req)
	amount, amountErrs := parseAmount(req.Amount)
	if verr = mergeDetails(verr, amountErrs); verr != nil {
		return nil, verr
	}

	donation.Amount = amount
	donation.DonorName = req.DonorName
	donation.DonorEmail = req.DonorEmail
	if req.Purpose != nil {
		donation.Purpose = req.Purpose
	}
	if req.DonorPhone != nil {
		donation.DonorPhone = req.DonorPhone
	}
	if req.Message != nil {
		donation.Message = req.Message
	}

	if err := s.repo.Update(ctx, donation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update donation")
	}

	s.invalidateDashboards(ctx)
	return donation, nil
}

// Delete removes a donation. Admin only per the policy table.
func (s *DonationService) Delete(ctx context.Context, sub authz.Subject, id string) error {
	if err := authz.Check(sub, authz.ActionDelete, authz.ResourceDonation, nil); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "donation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete donation")
	}
	s.invalidateDashboards(ctx)
	return nil
}

// ListByUser returns donations recorded by a specific user. Employees may
// only ask for their own; admins may ask for anyone's.
func (s *DonationService) ListByUser(ctx context.Context, sub authz.Subject, userID string) ([]models.Donation, error) {
	if err := authz.Check(sub, authz.ActionRead, authz.ResourceDonation, &userID); err != nil {
		return nil, err
	}
	donations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list donations by user")
	}
	return donations, nil
}

// loadOwned fetches a donation and applies the ownership-aware policy check.
// The policy runs on the row's recorded owner so an employee probing another
// employee's row gets the same NOT_FOUND as for an absent id.
func (s *DonationService) loadOwned(ctx context.Context, sub authz.Subject, action authz.Action, id string) (*models.Donation, error) {
	if err := authz.Check(sub, action, authz.ResourceDonation, &sub.UserID); err != nil {
		// Role-level rejection; ownership has not been consulted yet.
		return nil, err
	}
	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donation")
	}
	owner := ""
	if donation.UserID != nil {
		owner = *donation.UserID
	}
	if err := authz.Check(sub, action, authz.ResourceDonation, &owner); err != nil {
		return nil, err
	}
	return donation, nil
}

func (s *DonationService) invalidateDashboards(ctx context.Context) {
	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
}

// parseAmount validates the donation amount: a positive decimal with at most
// two fractional digits.
func parseAmount(raw string) (decimal.Decimal, []appErrors.FieldError) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, []appErrors.FieldError{{Field: "amount", Reason: "must be a valid decimal number"}}
	}
	if !amount.IsPositive() {
		return decimal.Zero, []appErrors.FieldError{{Field: "amount", Reason: "must be greater than zero"}}
	}
	if amount.Exponent() < -2 {
		return decimal.Zero, []appErrors.FieldError{{Field: "amount", Reason: "must have at most two decimal places"}}
	}
	return amount, nil
}
