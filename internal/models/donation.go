package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation represents a monetary contribution stored in the donations table.
// UserID references the employee who recorded the donation and is nil for
// admin-entered rows.
type Donation struct {
	ID         string          `db:"id" json:"id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Purpose    *string         `db:"purpose" json:"purpose,omitempty"`
	DonorName  string          `db:"donor_name" json:"donor_name"`
	DonorEmail string          `db:"donor_email" json:"donor_email"`
	DonorPhone *string         `db:"donor_phone" json:"donor_phone,omitempty"`
	Message    *string         `db:"message" json:"message,omitempty"`
	UserID     *string         `db:"user_id" json:"user_id,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// DonationFilter captures filtering criteria for listing donations. OwnerID
// restricts results to rows recorded by that user.
type DonationFilter struct {
	OwnerID   *string
	Page      int
	PageSize  int
	SortOrder string
}
