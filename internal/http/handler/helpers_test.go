package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/http/handler"
	"github.com/pulse-crm/crm-api/internal/repository"
	"github.com/pulse-crm/crm-api/internal/service"
	"github.com/pulse-crm/crm-api/internal/storage"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type handlers struct {
	db *gorm.DB

	company      *handler.CompanyHandler
	profile      *handler.ProfileHandler
	contact      *handler.ContactHandler
	deal         *handler.DealHandler
	task         *handler.TaskHandler
	room         *handler.RoomHandler
	discussion   *handler.DiscussionHandler
	notification *handler.NotificationHandler
	file         *handler.FileHandler
	dashboard    *handler.DashboardHandler
}

func newHandlers(t *testing.T) *handlers {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := zap.NewNop()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	scope := repository.NewScopeResolver(db)
	companyRepo := repository.NewCompanyRepository(db)
	contactRepo := repository.NewContactRepository(db, scope)
	dealRepo := repository.NewDealRepository(db, scope)
	productRepo := repository.NewProductRepository(db, scope)
	taskRepo := repository.NewTaskRepository(db, scope)
	interactionRepo := repository.NewInteractionRepository(db, scope)
	profileRepo := repository.NewProfileRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	viewRepo := repository.NewViewRepository(db)
	fileRepo := repository.NewFileRepository(db)

	messages := service.NewMessageService(messageRepo, viewRepo, roomRepo, fileRepo, logger)
	rooms := service.NewRoomService(roomRepo, messageRepo, messages, scope, logger)
	interactions := service.NewInteractionService(interactionRepo, dealRepo, scope, time.UTC, logger)

	return &handlers{
		db:      db,
		company: handler.NewCompanyHandler(service.NewCompanyService(companyRepo, logger), logger),
		profile: handler.NewProfileHandler(service.NewProfileService(profileRepo, dealRepo, taskRepo, interactionRepo, logger), logger),
		contact: handler.NewContactHandler(
			service.NewContactService(contactRepo, scope, logger),
			service.NewContactTransferService(contactRepo, store, logger),
			logger,
		),
		deal:         handler.NewDealHandler(service.NewDealService(dealRepo, scope, logger), interactions, logger),
		task:         handler.NewTaskHandler(service.NewTaskService(taskRepo, scope, logger), logger),
		room:         handler.NewRoomHandler(rooms, messages, logger),
		discussion:   handler.NewDiscussionHandler(service.NewDiscussionService(repository.NewDiscussionRepository(db), logger), logger),
		notification: handler.NewNotificationHandler(service.NewNotificationService(repository.NewNotificationRepository(db), logger), logger),
		file:         handler.NewFileHandler(service.NewFileService(fileRepo, store, logger), 5, logger),
		dashboard: handler.NewDashboardHandler(
			service.NewDashboardService(profileRepo, contactRepo, dealRepo, taskRepo, interactionRepo, messageRepo, rooms, logger),
			service.NewAnalyticsService(companyRepo, contactRepo, dealRepo, interactionRepo, productRepo, taskRepo, profileRepo, messages, time.UTC, logger),
			logger,
		),
	}
}

// call routes one request through a chi mux so URL params resolve, acting as
// the given profile (nil for anonymous)
func call(t *testing.T, method, pattern, path string, fn http.HandlerFunc, as *domain.Profile, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(t, method, pattern, fn, req, as)
}

func serve(t *testing.T, method, pattern string, fn http.HandlerFunc, req *http.Request, as *domain.Profile) *httptest.ResponseRecorder {
	t.Helper()
	if as != nil {
		req = req.WithContext(testutil.AsUser(req.Context(), as))
	}
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, fn)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}
