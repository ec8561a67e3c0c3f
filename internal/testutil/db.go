// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pulse-crm/crm-api/internal/auth"
	"github.com/pulse-crm/crm-api/internal/database"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory SQLite database with the full schema
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// QuerySpy records the table of every SELECT issued through a gorm handle
type QuerySpy struct {
	mu     sync.Mutex
	tables []string
}

// NewQuerySpy registers a query callback on db
func NewQuerySpy(t *testing.T, db *gorm.DB) *QuerySpy {
	t.Helper()
	spy := &QuerySpy{}
	err := db.Callback().Query().After("gorm:query").Register("testutil:query_spy", func(tx *gorm.DB) {
		spy.mu.Lock()
		defer spy.mu.Unlock()
		spy.tables = append(spy.tables, tx.Statement.Table)
	})
	require.NoError(t, err)
	return spy
}

// Count returns how many queries targeted table
func (s *QuerySpy) Count(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tables {
		if t == table {
			n++
		}
	}
	return n
}

// Reset forgets every recorded query
func (s *QuerySpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = nil
}

// AsUser returns a context carrying the identity of profile
func AsUser(ctx context.Context, profile *domain.Profile) context.Context {
	return auth.WithUserContext(ctx, auth.FromProfile(derefString(profile.UserID), profile))
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Date builds a date-only value
func Date(t time.Time) *datatypes.Date {
	d := datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	return &d
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 {
	return &v
}

func CreateCompany(t *testing.T, db *gorm.DB, name string) *domain.Company {
	t.Helper()
	company := &domain.Company{Name: name, Industry: "software"}
	require.NoError(t, db.Create(company).Error)
	return company
}

func CreateProfile(t *testing.T, db *gorm.DB, companyID int64, role domain.ProfileRole, fullname string) *domain.Profile {
	t.Helper()
	sub := uuid.NewString()
	profile := &domain.Profile{
		UserID:    &sub,
		CompanyID: companyID,
		Role:      role,
		Fullname:  fullname,
		Email:     fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func CreateContact(t *testing.T, db *gorm.DB, createdBy int64, fullname string, createdAt time.Time) *domain.Contact {
	t.Helper()
	contact := &domain.Contact{
		Fullname:  fullname,
		Email:     fmt.Sprintf("%s@customer.test", uuid.NewString()[:8]),
		CreatedBy: createdBy,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

func CreateDeal(t *testing.T, db *gorm.DB, ownerID int64, title string, stage domain.DealStage, value float64) *domain.Deal {
	t.Helper()
	deal := &domain.Deal{
		Title:     title,
		Stage:     stage,
		Value:     value,
		ProfileID: ownerID,
	}
	require.NoError(t, db.Omit("Owner", "Contact", "Product", "Interactions", "Tasks").Create(deal).Error)
	return deal
}

func CreateTask(t *testing.T, db *gorm.DB, createdBy int64, title string, status domain.TaskStatus, due *datatypes.Date) *domain.Task {
	t.Helper()
	task := &domain.Task{
		Title:      title,
		Status:     status,
		Priority:   domain.TaskPriorityMedium,
		DueDate:    due,
		AssignedTo: &createdBy,
		CreatedBy:  createdBy,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func CreateInteraction(t *testing.T, db *gorm.DB, createdBy int64, kind string, createdAt time.Time) *domain.Interaction {
	t.Helper()
	interaction := &domain.Interaction{
		Type:      kind,
		Note:      "note",
		CreatedBy: createdBy,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(interaction).Error)
	return interaction
}

func CreateProduct(t *testing.T, db *gorm.DB, createdBy int64, name string, price float64) *domain.Product {
	t.Helper()
	product := &domain.Product{Name: name, UnitPrice: price, CreatedBy: createdBy}
	require.NoError(t, db.Create(product).Error)
	return product
}

func CreateRoom(t *testing.T, db *gorm.DB, createdBy int64, name string, members ...int64) *domain.Room {
	t.Helper()
	room := &domain.Room{Name: name, CreatedBy: createdBy}
	require.NoError(t, db.Create(room).Error)
	for _, m := range append([]int64{createdBy}, members...) {
		require.NoError(t, db.Create(&domain.ProfileRoom{RoomID: room.ID, ProfileID: m}).Error)
	}
	return room
}

func CreateMessage(t *testing.T, db *gorm.DB, roomID, senderID int64, content string, sendAt time.Time) *domain.Message {
	t.Helper()
	message := &domain.Message{RoomID: roomID, SenderID: senderID, Content: content, SendAt: sendAt}
	require.NoError(t, db.Omit("Sender", "File", "ReplyToMessage").Create(message).Error)
	return message
}
