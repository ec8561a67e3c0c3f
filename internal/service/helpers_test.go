package service

import (
	"testing"
	"time"

	"github.com/pulse-crm/crm-api/internal/repository"
	"github.com/pulse-crm/crm-api/internal/storage"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fixedNow is 2024-03-15 14:30 UTC, a Friday
var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type testEnv struct {
	db    *gorm.DB
	store *storage.LocalStorage

	contacts      *ContactService
	transfer      *ContactTransferService
	deals         *DealService
	products      *ProductService
	tasks         *TaskService
	interactions  *InteractionService
	profiles      *ProfileService
	companies     *CompanyService
	messages      *MessageService
	rooms         *RoomService
	discussions   *DiscussionService
	notifications *NotificationService
	files         *FileService
	analytics     *AnalyticsService
	dashboard     *DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
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

	env := &testEnv{db: db, store: store}
	env.contacts = NewContactService(contactRepo, scope, logger)
	env.contacts.now = clock
	env.transfer = NewContactTransferService(contactRepo, store, logger)
	env.transfer.now = clock
	env.deals = NewDealService(dealRepo, scope, logger)
	env.products = NewProductService(productRepo, dealRepo, scope, logger)
	env.tasks = NewTaskService(taskRepo, scope, logger)
	env.tasks.now = clock
	env.interactions = NewInteractionService(interactionRepo, dealRepo, scope, time.UTC, logger)
	env.interactions.now = clock
	env.profiles = NewProfileService(profileRepo, dealRepo, taskRepo, interactionRepo, logger)
	env.companies = NewCompanyService(companyRepo, logger)
	env.messages = NewMessageService(messageRepo, viewRepo, roomRepo, fileRepo, logger)
	env.messages.now = clock
	env.rooms = NewRoomService(roomRepo, messageRepo, env.messages, scope, logger)
	env.discussions = NewDiscussionService(repository.NewDiscussionRepository(db), logger)
	env.notifications = NewNotificationService(repository.NewNotificationRepository(db), logger)
	env.notifications.now = clock
	env.files = NewFileService(fileRepo, store, logger)
	env.analytics = NewAnalyticsService(companyRepo, contactRepo, dealRepo, interactionRepo, productRepo, taskRepo, profileRepo, env.messages, time.UTC, logger)
	env.analytics.now = clock
	env.dashboard = NewDashboardService(profileRepo, contactRepo, dealRepo, taskRepo, interactionRepo, messageRepo, env.rooms, logger)
	env.dashboard.now = clock
	return env
}
