package models

import "github.com/shopspring/decimal"

// DashboardCounts aggregates entity totals for the operator dashboard. For
// employees, DonationCount and AdoptionCount cover only rows they recorded.
type DashboardCounts struct {
	Pets           int             `json:"pets"`
	Adoptions      int             `json:"adoptions"`
	Donations      int             `json:"donations"`
	MedicalRecords int             `json:"medical_records"`
	DonationTotal  decimal.Decimal `json:"donation_total"`
}

// Dashboard is the composed dashboard payload.
type Dashboard struct {
	Counts               DashboardCounts `json:"counts"`
	RecentPets           []Pet           `json:"recent_pets"`
	RecentAdoptions      []Adoption      `json:"recent_adoptions"`
	RecentDonations      []Donation      `json:"recent_donations"`
	RecentMedicalRecords []MedicalRecord `json:"recent_medical_records"`
}
