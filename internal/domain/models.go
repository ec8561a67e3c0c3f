package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ProfileRole is the access level of a CRM user inside its company
type ProfileRole string

const (
	ProfileRoleAdmin ProfileRole = "admin"
	ProfileRoleUser  ProfileRole = "user"
)

// ProfileRoles lists all roles in reporting order
var ProfileRoles = []ProfileRole{ProfileRoleAdmin, ProfileRoleUser}

// DealStage represents the position of a deal in the sales pipeline
type DealStage string

const (
	DealStageLead        DealStage = "lead"
	DealStageQualified   DealStage = "qualified"
	DealStageProposal    DealStage = "proposal"
	DealStageNegotiation DealStage = "negotiation"
	DealStageClosedWon   DealStage = "closed_won"
	DealStageClosedLost  DealStage = "closed_lost"
)

// DealStages is the pipeline in funnel order
var DealStages = []DealStage{
	DealStageLead,
	DealStageQualified,
	DealStageProposal,
	DealStageNegotiation,
	DealStageClosedWon,
	DealStageClosedLost,
}

// IsValid returns true if the stage is one of the pipeline stages
func (s DealStage) IsValid() bool {
	for _, stage := range DealStages {
		if s == stage {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the deal is closed
func (s DealStage) IsTerminal() bool {
	return s == DealStageClosedWon || s == DealStageClosedLost
}

// TaskStatus represents the workflow state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCanceled   TaskStatus = "canceled"
)

var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusCanceled,
}

// IsTerminal reports whether no further work is expected on the task
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCanceled
}

// TerminalTaskStatuses are excluded from overdue and open task queries
var TerminalTaskStatuses = []TaskStatus{TaskStatusCompleted, TaskStatusCanceled}

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

// Rank orders priorities for sorting; unknown priorities rank lowest
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	default:
		return 0
	}
}

// InteractionType is a free-form tag on an interaction. The constants below are
// the types always reported, even with zero occurrences.
type InteractionType string

const (
	InteractionTypeCall    InteractionType = "call"
	InteractionTypeEmail   InteractionType = "email"
	InteractionTypeMeeting InteractionType = "meeting"
	InteractionTypeNote    InteractionType = "note"
	InteractionTypeOther   InteractionType = "other"
)

var InteractionTypes = []InteractionType{
	InteractionTypeCall,
	InteractionTypeEmail,
	InteractionTypeMeeting,
	InteractionTypeNote,
	InteractionTypeOther,
}

// NotificationType values created by the system
const (
	NotificationTypeTaskOverdue = "task_overdue"
	NotificationTypeGeneral     = "general"
)

// Company is a CRM tenant
type Company struct {
	ID        int64     `gorm:"column:company_id;primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Industry  string    `gorm:"type:varchar(100)"`
	RoomID    *int64    `gorm:"column:room_id"`
	CreatedBy *int64    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Profile is a CRM user belonging to exactly one company
type Profile struct {
	ID        int64       `gorm:"column:profile_id;primaryKey;autoIncrement"`
	UserID    *string     `gorm:"column:user_id;type:varchar(255);uniqueIndex"`
	CompanyID int64       `gorm:"column:company_id;not null;index"`
	Role      ProfileRole `gorm:"type:varchar(20);not null;default:'user'"`
	Fullname  string      `gorm:"type:varchar(200);not null"`
	Email     string      `gorm:"type:varchar(255)"`
	Phone     string      `gorm:"type:varchar(50)"`
	AddedBy   *int64      `gorm:"column:added_by"`
	CreatedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Contact is a customer-side person. CompanyID is the contact's own company and
// never the CRM tenant; tenant ownership goes through CreatedBy.
type Contact struct {
	ID        int64     `gorm:"column:contact_id;primaryKey;autoIncrement"`
	CompanyID *int64    `gorm:"column:company_id"`
	Fullname  string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(50)"`
	Address   string    `gorm:"type:varchar(500)"`
	CreatedBy int64     `gorm:"column:created_by;not null;index"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// Product is an item that can be attached to deals
type Product struct {
	ID          int64     `gorm:"column:product_id;primaryKey;autoIncrement"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	UnitPrice   float64   `gorm:"column:unit_price;type:decimal(15,2);not null;default:0"`
	CreatedBy   int64     `gorm:"column:created_by;not null;index"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Deal is a sales opportunity owned by a profile
type Deal struct {
	ID                int64           `gorm:"column:deal_id;primaryKey;autoIncrement"`
	Title             string          `gorm:"type:varchar(200);not null"`
	Value             float64         `gorm:"type:decimal(15,2);not null;default:0"`
	Stage             DealStage       `gorm:"type:varchar(30);not null;default:'lead';index"`
	Probability       int             `gorm:"not null;default:0"`
	ProfileID         int64           `gorm:"column:profile_id;not null;index"`
	ContactID         *int64          `gorm:"column:contact_id"`
	ProductID         *int64          `gorm:"column:product_id"`
	Notes             string          `gorm:"type:text"`
	ExpectedCloseDate *datatypes.Date `gorm:"column:expected_close_date"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	Owner             *Profile        `gorm:"foreignKey:ProfileID"`
	Contact           *Contact        `gorm:"foreignKey:ContactID"`
	Product           *Product        `gorm:"foreignKey:ProductID"`
	Interactions      []Interaction   `gorm:"foreignKey:DealID"`
	Tasks             []Task          `gorm:"foreignKey:DealID"`
}

// Task is a unit of work assigned to a profile
type Task struct {
	ID          int64           `gorm:"column:task_id;primaryKey;autoIncrement"`
	Title       string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Priority    TaskPriority    `gorm:"type:varchar(20);not null;default:'medium'"`
	Status      TaskStatus      `gorm:"type:varchar(20);not null;default:'pending';index"`
	Type        string          `gorm:"type:varchar(50)"`
	DueDate     *datatypes.Date `gorm:"column:due_date"`
	AssignedTo  *int64          `gorm:"column:assigned_to;index"`
	CreatedBy   int64           `gorm:"column:created_by;not null;index"`
	DealID      *int64          `gorm:"column:deal_id;index"`
	ContactID   *int64          `gorm:"column:contact_id"`
	CompletedAt *time.Time      `gorm:"column:completed_at"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Interaction is an immutable record of a customer touchpoint
type Interaction struct {
	ID        int64     `gorm:"column:interaction_id;primaryKey;autoIncrement"`
	Type      string    `gorm:"type:varchar(50)"`
	Note      string    `gorm:"type:text"`
	DealID    *int64    `gorm:"column:deal_id;index"`
	ContactID *int64    `gorm:"column:contact_id"`
	CreatedBy int64     `gorm:"column:created_by;not null;index"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// Room is a chat room with profile members
type Room struct {
	ID        int64     `gorm:"column:room_id;primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(200);not null"`
	CreatedBy int64     `gorm:"column:created_by;not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// ProfileRoom is the room membership join row
type ProfileRoom struct {
	ID        int64     `gorm:"column:profiles_rooms_id;primaryKey;autoIncrement"`
	ProfileID int64     `gorm:"column:profile_id;not null;uniqueIndex:idx_profiles_rooms_member"`
	RoomID    int64     `gorm:"column:room_id;not null;uniqueIndex:idx_profiles_rooms_member;index"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	Profile   *Profile  `gorm:"foreignKey:ProfileID"`
}

func (ProfileRoom) TableName() string {
	return "profiles_rooms"
}

// Message is a chat message posted to a room
type Message struct {
	ID             int64     `gorm:"column:message_id;primaryKey;autoIncrement"`
	RoomID         int64     `gorm:"column:room_id;not null;index"`
	SenderID       int64     `gorm:"column:sender_id;not null;index"`
	Content        string    `gorm:"type:text;not null"`
	ReplyTo        *int64    `gorm:"column:reply_to"`
	FileID         *int64    `gorm:"column:file_id"`
	SendAt         time.Time `gorm:"column:send_at;not null;default:CURRENT_TIMESTAMP;index"`
	Sender         *Profile  `gorm:"foreignKey:SenderID"`
	File           *File     `gorm:"foreignKey:FileID"`
	ReplyToMessage *Message  `gorm:"foreignKey:ReplyTo"`
}

// View marks a message as seen by a profile
type View struct {
	ID        int64     `gorm:"column:view_id;primaryKey;autoIncrement"`
	MessageID int64     `gorm:"column:message_id;not null;uniqueIndex:idx_views_message_profile"`
	ProfileID int64     `gorm:"column:profile_id;not null;uniqueIndex:idx_views_message_profile;index"`
	SeenAt    time.Time `gorm:"column:seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// Discussion is an assistant conversation owned by one profile
type Discussion struct {
	ID        int64     `gorm:"column:discussion_id;primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(200);not null"`
	ProfileID int64     `gorm:"column:profile_id;not null;index"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	Chats     []Chat    `gorm:"foreignKey:DiscussionID;constraint:OnDelete:CASCADE"`
}

// Chat is one turn inside a discussion
type Chat struct {
	ID           int64     `gorm:"column:chat_id;primaryKey;autoIncrement"`
	DiscussionID int64     `gorm:"column:discussion_id;not null;index"`
	Content      string    `gorm:"type:text;not null"`
	IsAI         bool      `gorm:"column:is_ai;not null;default:false"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Notification is a message addressed to a single profile
type Notification struct {
	ID        int64      `gorm:"column:notification_id;primaryKey;autoIncrement"`
	ProfileID int64      `gorm:"column:profile_id;not null;index"`
	Content   string     `gorm:"type:text;not null"`
	Type      string     `gorm:"type:varchar(50);not null;default:'general'"`
	TaskID    *int64     `gorm:"column:task_id;index"`
	SeenAt    *time.Time `gorm:"column:seen_at"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// File pairs the name shown to users with the name of the stored object
type File struct {
	ID          int64     `gorm:"column:file_id;primaryKey;autoIncrement"`
	VName       string    `gorm:"column:v_name;type:varchar(255);not null"`
	PName       string    `gorm:"column:p_name;type:varchar(500);not null"`
	Bucket      string    `gorm:"type:varchar(100);not null;default:'shared'"`
	ContentType string    `gorm:"column:content_type;type:varchar(100)"`
	Size        int64     `gorm:"not null;default:0"`
	UploadedBy  int64     `gorm:"column:uploaded_by;not null"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
