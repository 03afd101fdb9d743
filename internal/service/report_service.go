package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/havenpaws/shelter-api/internal/authz"
	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
	"github.com/havenpaws/shelter-api/pkg/export"
)

// ReportEntity names an exportable dataset.
type ReportEntity string

// ReportFormat names a supported output encoding.
type ReportFormat string

const (
	ReportEntityPets           ReportEntity = "pets"
	ReportEntityDonations      ReportEntity = "donations"
	ReportEntityAdoptions      ReportEntity = "adoptions"
	ReportEntityMedicalRecords ReportEntity = "medical_records"

	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

const reportRowLimit = 10000

// The export repositories bypass pagination on purpose: repository List
// clamps page sizes to interactive bounds, while an export needs every row
// up to the report limit.
type reportPetRepository interface {
	ListAll(ctx context.Context, limit int) ([]models.Pet, error)
}

type reportDonationRepository interface {
	ListAll(ctx context.Context, limit int) ([]models.Donation, error)
}

type reportAdoptionRepository interface {
	ListAll(ctx context.Context, limit int) ([]models.Adoption, error)
}

type reportMedicalRecordRepository interface {
	ListAll(ctx context.Context, limit int) ([]models.MedicalRecord, error)
}

// ReportFile is a rendered report ready to be sent as an attachment.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService renders administrative exports of shelter data.
type ReportService struct {
	pets      reportPetRepository
	donations reportDonationRepository
	adoptions reportAdoptionRepository
	medical   reportMedicalRecordRepository
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(pets reportPetRepository, donations reportDonationRepository, adoptions reportAdoptionRepository, medical reportMedicalRecordRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		pets:      pets,
		donations: donations,
		adoptions: adoptions,
		medical:   medical,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		now:       time.Now,
	}
}

// Generate renders the requested entity export. Reports are admin only.
func (s *ReportService) Generate(ctx context.Context, sub authz.Subject, entity ReportEntity, format ReportFormat) (*ReportFile, error) {
	if sub.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "reports require administrator access")
	}
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Validation([]appErrors.FieldError{{Field: "format", Reason: "must be one of: csv, pdf"}})
	}

	dataset, title, err := s.datasetFor(ctx, entity)
	if err != nil {
		return nil, err
	}

	var payload []byte
	var contentType string
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(*dataset)
		contentType = "text/csv"
	case ReportFormatPDF:
		payload, err = s.pdf.Render(*dataset, title)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	filename := fmt.Sprintf("%s_%s.%s", entity, s.now().UTC().Format("20060102_150405"), format)
	s.logger.Info("report generated", zap.String("entity", string(entity)), zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)))
	return &ReportFile{Filename: filename, ContentType: contentType, Data: payload}, nil
}

func (s *ReportService) datasetFor(ctx context.Context, entity ReportEntity) (*export.Dataset, string, error) {
	switch entity {
	case ReportEntityPets:
		pets, err := s.pets.ListAll(ctx, reportRowLimit)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pets")
		}
		return petDataset(pets), "Shelter Pets", nil
	case ReportEntityDonations:
		donations, err := s.donations.ListAll(ctx, reportRowLimit)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load donations")
		}
		return donationDataset(donations), "Donations", nil
	case ReportEntityAdoptions:
		adoptions, err := s.adoptions.ListAll(ctx, reportRowLimit)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load adoptions")
		}
		return adoptionDataset(adoptions), "Adoptions", nil
	case ReportEntityMedicalRecords:
		records, err := s.medical.ListAll(ctx, reportRowLimit)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load medical records")
		}
		return medicalRecordDataset(records), "Medical Records", nil
	default:
		return nil, "", appErrors.Validation([]appErrors.FieldError{{Field: "entity", Reason: "must be one of: pets, donations, adoptions, medical_records"}})
	}
}

func petDataset(pets []models.Pet) *export.Dataset {
	headers := []string{"ID", "Name", "Breed", "Age", "Gender", "Status", "Shelter Code", "Created"}
	rows := make([]map[string]string, 0, len(pets))
	for _, pet := range pets {
		rows = append(rows, map[string]string{
			"ID":           pet.ID,
			"Name":         pet.Name,
			"Breed":        pet.Breed,
			"Age":          strconv.Itoa(pet.Age),
			"Gender":       string(pet.Gender),
			"Status":       string(pet.Status),
			"Shelter Code": stringOrEmpty(pet.ShelterCode),
			"Created":      pet.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return &export.Dataset{Headers: headers, Rows: rows}
}

func donationDataset(donations []models.Donation) *export.Dataset {
	headers := []string{"ID", "Donor", "Email", "Amount", "Purpose", "Recorded By", "Created"}
	rows := make([]map[string]string, 0, len(donations))
	for _, donation := range donations {
		rows = append(rows, map[string]string{
			"ID":          donation.ID,
			"Donor":       donation.DonorName,
			"Email":       donation.DonorEmail,
			"Amount":      donation.Amount.StringFixed(2),
			"Purpose":     stringOrEmpty(donation.Purpose),
			"Recorded By": stringOrEmpty(donation.UserID),
			"Created":     donation.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return &export.Dataset{Headers: headers, Rows: rows}
}

func adoptionDataset(adoptions []models.Adoption) *export.Dataset {
	headers := []string{"ID", "Adopter", "Email", "Pet ID", "Recorded By", "Created"}
	rows := make([]map[string]string, 0, len(adoptions))
	for _, adoption := range adoptions {
		rows = append(rows, map[string]string{
			"ID":          adoption.ID,
			"Adopter":     adoption.AdopterName,
			"Email":       adoption.AdopterEmail,
			"Pet ID":      adoption.PetID,
			"Recorded By": stringOrEmpty(adoption.UserID),
			"Created":     adoption.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return &export.Dataset{Headers: headers, Rows: rows}
}

func medicalRecordDataset(records []models.MedicalRecord) *export.Dataset {
	headers := []string{"ID", "Pet ID", "Treatment", "Treat Date", "Donation ID", "Created"}
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, map[string]string{
			"ID":          record.ID,
			"Pet ID":      record.PetID,
			"Treatment":   record.TreatmentType,
			"Treat Date":  record.TreatDate.Format("2006-01-02"),
			"Donation ID": stringOrEmpty(record.DonationID),
			"Created":     record.CreatedAt.UTC().Format("2006-01-02"),
		})
	}
	return &export.Dataset{Headers: headers, Rows: rows}
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
