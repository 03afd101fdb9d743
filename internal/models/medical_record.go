package models

import "time"

// MedicalRecord represents a treatment entry stored in the medical_records
// table. TreatDate is a calendar date; DonationID optionally ties the
// treatment to the donation that funded it.
type MedicalRecord struct {
	ID            string    `db:"id" json:"id"`
	PetID         string    `db:"pet_id" json:"pet_id"`
	TreatmentType string    `db:"treatment_type" json:"treatment_type"`
	TreatDate     time.Time `db:"treat_date" json:"treat_date"`
	DonationID    *string   `db:"donation_id" json:"donation_id,omitempty"`
	Vaccines      *string   `db:"vaccines" json:"vaccines,omitempty"`
	Description   *string   `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// MedicalRecordFilter captures filtering criteria for listing records.
// SortBy accepts created_at (default) or treat_date.
type MedicalRecordFilter struct {
	PetID     *string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}
