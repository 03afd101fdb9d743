package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/havenpaws/shelter-api/internal/models"
)

const donationColumns = `id, amount, purpose, donor_name, donor_email, donor_phone, message, user_id, created_at`

// DonationRepository provides database access for donation records.
type DonationRepository struct {
	db *sqlx.DB
}

// NewDonationRepository creates a new instance of DonationRepository.
func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// List returns donations matching the filter with the total count, newest
// first by default.
func (r *DonationRepository) List(ctx context.Context, filter models.DonationFilter) ([]models.Donation, int, error) {
	baseQuery := `FROM donations WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, *filter.OwnerID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at %s LIMIT %d OFFSET %d", donationColumns, baseQuery, sortOrder, pageSize, offset)

	var donations []models.Donation
	if err := r.db.SelectContext(ctx, &donations, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list donations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count donations: %w", err)
	}

	return donations, total, nil
}

// FindByID returns a donation by identifier.
func (r *DonationRepository) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	query := fmt.Sprintf(`SELECT %s FROM donations WHERE id = $1 LIMIT 1`, donationColumns)
	var donation models.Donation
	if err := r.db.GetContext(ctx, &donation, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find donation by id: %w", err)
	}
	return &donation, nil
}

// Exists reports whether a donation row exists for the given id.
func (r *DonationRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM donations WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check donation exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new donation and fills in the generated identifier.
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	if donation.ID == "" {
		donation.ID = uuid.NewString()
	}
	if donation.CreatedAt.IsZero() {
		donation.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO donations (id, amount, purpose, donor_name, donor_email, donor_phone, message, user_id, created_at) VALUES (:id, :amount, :purpose, :donor_name, :donor_email, :donor_phone, :message, :user_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, donation); err != nil {
		return fmt.Errorf("create donation: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a donation. The recording user is
// immutable after creation.
func (r *DonationRepository) Update(ctx context.Context, donation *models.Donation) error {
	const query = `UPDATE donations SET amount = :amount, purpose = :purpose, donor_name = :donor_name, donor_email = :donor_email, donor_phone = :donor_phone, message = :message WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, donation)
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a donation row.
func (r *DonationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM donations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Count returns the number of donation rows, optionally scoped to an owner.
func (r *DonationRepository) Count(ctx context.Context, ownerID *string) (int, error) {
	var total int
	if ownerID != nil {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM donations WHERE user_id = $1`, *ownerID); err != nil {
			return 0, fmt.Errorf("count donations by user: %w", err)
		}
		return total, nil
	}
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM donations`); err != nil {
		return 0, fmt.Errorf("count donations: %w", err)
	}
	return total, nil
}

// TotalAmount sums donation amounts, optionally scoped to an owner.
func (r *DonationRepository) TotalAmount(ctx context.Context, ownerID *string) (decimal.Decimal, error) {
	var raw sql.NullString
	var err error
	if ownerID != nil {
		err = r.db.GetContext(ctx, &raw, `SELECT SUM(amount) FROM donations WHERE user_id = $1`, *ownerID)
	} else {
		err = r.db.GetContext(ctx, &raw, `SELECT SUM(amount) FROM donations`)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum donations: %w", err)
	}
	if !raw.Valid {
		return decimal.Zero, nil
	}
	total, err := decimal.NewFromString(raw.String)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse donation sum: %w", err)
	}
	return total, nil
}

// ListRecent returns the most recent donations, optionally scoped to an owner.
func (r *DonationRepository) ListRecent(ctx context.Context, ownerID *string, limit int) ([]models.Donation, error) {
	if limit <= 0 {
		limit = 5
	}
	var donations []models.Donation
	if ownerID != nil {
		query := fmt.Sprintf(`SELECT %s FROM donations WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, donationColumns)
		if err := r.db.SelectContext(ctx, &donations, query, *ownerID, limit); err != nil {
			return nil, fmt.Errorf("list recent donations by user: %w", err)
		}
		return donations, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM donations ORDER BY created_at DESC LIMIT $1`, donationColumns)
	if err := r.db.SelectContext(ctx, &donations, query, limit); err != nil {
		return nil, fmt.Errorf("list recent donations: %w", err)
	}
	return donations, nil
}

// ListAll returns up to limit donations without pagination, newest first.
// Used by the export path, which needs the whole dataset in one query.
func (r *DonationRepository) ListAll(ctx context.Context, limit int) ([]models.Donation, error) {
	query := fmt.Sprintf(`SELECT %s FROM donations ORDER BY created_at DESC LIMIT $1`, donationColumns)
	var donations []models.Donation
	if err := r.db.SelectContext(ctx, &donations, query, limit); err != nil {
		return nil, fmt.Errorf("list all donations: %w", err)
	}
	return donations, nil
}

// ListByUser returns every donation recorded by the given user, newest first.
func (r *DonationRepository) ListByUser(ctx context.Context, userID string) ([]models.Donation, error) {
	query := fmt.Sprintf(`SELECT %s FROM donations WHERE user_id = $1 ORDER BY created_at DESC`, donationColumns)
	var donations []models.Donation
	if err := r.db.SelectContext(ctx, &donations, query, userID); err != nil {
		return nil, fmt.Errorf("list donations by user: %w", err)
	}
	return donations, nil
}
