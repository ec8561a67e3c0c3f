package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/repository"
	"github.com/pulse-crm/crm-api/internal/storage"
	"go.uber.org/zap"
)

// Transfer formats accepted by import and export
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXML  = "xml"
)

var contactCSVHeader = []string{"Contact ID", "Full Name", "Email", "Phone", "Address", "Created By"}

// contactRecord is the serialized form of a contact in every transfer format
type contactRecord struct {
	XMLName   xml.Name `json:"-" xml:"contact"`
	ContactID int64    `json:"contact_id" xml:"contact_id"`
	Fullname  string   `json:"fullname" xml:"fullname" validate:"required,max=200"`
	Email     string   `json:"email" xml:"email" validate:"omitempty,email,max=255"`
	Phone     string   `json:"phone" xml:"phone" validate:"max=50"`
	Address   string   `json:"address" xml:"address" validate:"max=500"`
	CreatedBy int64    `json:"created_by" xml:"created_by"`
}

type contactList struct {
	XMLName  xml.Name        `xml:"contacts"`
	Contacts []contactRecord `xml:"contact"`
}

// ExportedDocument is a rendered export and where it was stored
type ExportedDocument struct {
	Result   domain.ExportResultDTO
	Filename string
	Body     []byte
}

// ContactTransferService imports and exports the company's contacts
type ContactTransferService struct {
	contactRepo *repository.ContactRepository
	store       storage.Storage
	validate    *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

func NewContactTransferService(
	contactRepo *repository.ContactRepository,
	store storage.Storage,
	logger *zap.Logger,
) *ContactTransferService {
	return &ContactTransferService{
		contactRepo: contactRepo,
		store:       store,
		validate:    validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

func contentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatXML:
		return "application/xml"
	default:
		return "application/json"
	}
}

// Export renders the company's contacts and stores the document in the exports
// bucket
func (s *ContactTransferService) Export(ctx context.Context, format string) (*ExportedDocument, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}

	contacts, err := s.contactRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list contacts")
	}
	records := make([]contactRecord, len(contacts))
	for i, c := range contacts {
		records[i] = contactRecord{
			ContactID: c.ID,
			Fullname:  c.Fullname,
			Email:     c.Email,
			Phone:     c.Phone,
			Address:   c.Address,
			CreatedBy: c.CreatedBy,
		}
	}

	body, err := renderContacts(records, format)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("contacts-%d-%s.%s", user.CompanyID, s.now().UTC().Format("20060102T150405Z"), format)
	key, _, err := s.store.Upload(ctx, storage.BucketExports, filename, contentType(format), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	s.logger.Info("contacts exported",
		zap.Int64("company_id", user.CompanyID),
		zap.String("format", format),
		zap.Int("count", len(records)),
		zap.String("storage_key", key),
	)

	return &ExportedDocument{
		Result: domain.ExportResultDTO{
			Format:      format,
			StorageKey:  key,
			Count:       len(records),
			ContentType: contentType(format),
		},
		Filename: filename,
		Body:     body,
	}, nil
}

func renderContacts(records []contactRecord, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		w := csv.NewWriter(&buf)
		if err := w.Write(contactCSVHeader); err != nil {
			return nil, err
		}
		for _, r := range records {
			row := []string{
				strconv.FormatInt(r.ContactID, 10),
				r.Fullname,
				r.Email,
				r.Phone,
				r.Address,
				strconv.FormatInt(r.CreatedBy, 10),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("failed to render csv: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return nil, fmt.Errorf("failed to render json: %w", err)
		}
	case FormatXML:
		buf.WriteString(xml.Header)
		enc := xml.NewEncoder(&buf)
		enc.Indent("", "  ")
		if err := enc.Encode(contactList{Contacts: records}); err != nil {
			return nil, fmt.Errorf("failed to render xml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q: %w", format, ErrInvalidInput)
	}
	return buf.Bytes(), nil
}

// Import parses a CSV or JSON document of contacts, validates each row and
// inserts the valid rows in one transaction as contacts created by the caller.
// Row numbers in the result are 1-based and exclude the CSV header.
func (s *ContactTransferService) Import(ctx context.Context, format string, r io.Reader) (*domain.ImportResultDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	var records []contactRecord
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV, "":
		records, err = parseContactCSV(r)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&records)
	default:
		return nil, fmt.Errorf("unsupported import format %q: %w", format, ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("malformed import document: %v: %w", err, ErrInvalidInput)
	}

	result := &domain.ImportResultDTO{Failed: []domain.ImportRowErr{}}
	contacts := make([]domain.Contact, 0, len(records))
	for i, rec := range records {
		rec.Fullname = strings.TrimSpace(rec.Fullname)
		rec.Email = strings.TrimSpace(rec.Email)
		if err := s.validate.Struct(rec); err != nil {
			result.Failed = append(result.Failed, domain.ImportRowErr{Row: i + 1, Error: describeRowError(err)})
			continue
		}
		contacts = append(contacts, domain.Contact{
			Fullname:  rec.Fullname,
			Email:     rec.Email,
			Phone:     rec.Phone,
			Address:   rec.Address,
			CreatedBy: user.ProfileID,
		})
	}

	if len(contacts) > 0 {
		if err := s.contactRepo.CreateBatch(ctx, contacts); err != nil {
			return nil, wrap(err, "import contacts")
		}
	}
	result.Imported = len(contacts)

	s.logger.Info("contacts imported",
		zap.Int64("profile_id", user.ProfileID),
		zap.Int("imported", result.Imported),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func parseContactCSV(r io.Reader) ([]contactRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[normalizeColumn(name)] = i
	}
	if _, ok := columns["fullname"]; !ok {
		return nil, errors.New("missing Full Name column")
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []contactRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, contactRecord{
			Fullname: field(row, "fullname"),
			Email:    field(row, "email"),
			Phone:    field(row, "phone"),
			Address:  field(row, "address"),
		})
	}
	return records, nil
}

// normalizeColumn maps "Full Name", "full_name" and "fullname" to one key
func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "").Replace(name)
}

func describeRowError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return strings.ToLower(fe.Field()) + ": " + domain.GetValidationMessage(fe.Tag())
	}
	return err.Error()
}
