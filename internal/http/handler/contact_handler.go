package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/service"
	"go.uber.org/zap"
)

const maxImportBody = 10 << 20

// ContactHandler handles HTTP requests for contacts
type ContactHandler struct {
	contactService  *service.ContactService
	transferService *service.ContactTransferService
	logger          *zap.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *service.ContactService, transferService *service.ContactTransferService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService:  contactService,
		transferService: transferService,
		logger:          logger,
	}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactService.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list contacts")
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondWithError(w, http.StatusBadRequest, "Missing search query")
		return
	}
	contacts, err := h.contactService.Search(r.Context(), q, queryLimit(r, 20, 100))
	if err != nil {
		respondServiceError(w, h.logger, err, "search contacts")
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.contactService.Stats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get contact stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	contact, err := h.contactService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get contact")
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	contact, err := h.contactService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create contact")
		return
	}
	w.Header().Set("Location", "/api/v1/contacts/"+strconv.FormatInt(contact.ID, 10))
	respondJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	contact, err := h.contactService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update contact")
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.contactService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export renders every contact of the company in the requested format and
// streams the stored document back as an attachment.
func (h *ContactHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.transferService.Export(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		respondServiceError(w, h.logger, err, "export contacts")
		return
	}

	w.Header().Set("Content-Type", doc.Result.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+doc.Filename+"\"")
	w.Header().Set("X-Storage-Key", doc.Result.StorageKey)
	w.Header().Set("X-Export-Count", strconv.Itoa(doc.Result.Count))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

// Import reads a CSV or JSON document from the request body
func (h *ContactHandler) Import(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		if strings.Contains(r.Header.Get("Content-Type"), "csv") {
			format = service.FormatCSV
		} else {
			format = service.FormatJSON
		}
	}

	result, err := h.transferService.Import(r.Context(), format, http.MaxBytesReader(w, r.Body, maxImportBody))
	if err != nil {
		respondServiceError(w, h.logger, err, "import contacts")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
