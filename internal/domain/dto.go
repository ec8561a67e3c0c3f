package domain

// Timestamps in DTOs are ISO 8601 strings; date-only fields use YYYY-MM-DD.

type CompanyDTO struct {
	ID        int64  `json:"companyId"`
	Name      string `json:"name"`
	Industry  string `json:"industry"`
	RoomID    *int64 `json:"roomId"`
	CreatedBy *int64 `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
}

type ProfileDTO struct {
	ID        int64       `json:"profileId"`
	CompanyID int64       `json:"companyId"`
	Role      ProfileRole `json:"role"`
	Fullname  string      `json:"fullname"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	AddedBy   *int64      `json:"addedBy,omitempty"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
}

type ContactDTO struct {
	ID        int64  `json:"contactId"`
	CompanyID *int64 `json:"companyId,omitempty"`
	Fullname  string `json:"fullname"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedBy int64  `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
}

type ProductDTO struct {
	ID          int64   `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	UnitPrice   float64 `json:"unitPrice"`
	CreatedBy   int64   `json:"createdBy"`
	CreatedAt   string  `json:"createdAt"`
}

type DealDTO struct {
	ID                int64     `json:"dealId"`
	Title             string    `json:"title"`
	Value             float64   `json:"value"`
	Stage             DealStage `json:"stage"`
	Probability       int       `json:"probability"`
	ProfileID         int64     `json:"profileId"`
	OwnerName         string    `json:"ownerName,omitempty"`
	ContactID         *int64    `json:"contactId,omitempty"`
	ProductID         *int64    `json:"productId,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	ExpectedCloseDate string    `json:"expectedCloseDate,omitempty"`
	CreatedAt         string    `json:"createdAt"`
	UpdatedAt         string    `json:"updatedAt"`
}

// DealDetailDTO is a deal with its directly nested relations
type DealDetailDTO struct {
	DealDTO
	Owner        *ProfileDTO      `json:"owner,omitempty"`
	Contact      *ContactDTO      `json:"contact,omitempty"`
	Product      *ProductDTO      `json:"product,omitempty"`
	Interactions []InteractionDTO `json:"interactions"`
	Tasks        []TaskDTO        `json:"tasks"`
}

type TaskDTO struct {
	ID          int64        `json:"taskId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	Type        string       `json:"type,omitempty"`
	DueDate     string       `json:"dueDate,omitempty"`
	AssignedTo  *int64       `json:"assignedTo,omitempty"`
	CreatedBy   int64        `json:"createdBy"`
	DealID      *int64       `json:"dealId,omitempty"`
	ContactID   *int64       `json:"contactId,omitempty"`
	CompletedAt string       `json:"completedAt,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

type InteractionDTO struct {
	ID        int64  `json:"interactionId"`
	Type      string `json:"type"`
	Note      string `json:"note,omitempty"`
	DealID    *int64 `json:"dealId,omitempty"`
	ContactID *int64 `json:"contactId,omitempty"`
	CreatedBy int64  `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
}

type RoomDTO struct {
	ID        int64  `json:"roomId"`
	Name      string `json:"name"`
	CreatedBy int64  `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
}

// RoomOverviewDTO is a room with its latest message and the viewer's unread count
type RoomOverviewDTO struct {
	RoomDTO
	LatestMessage *MessageDTO `json:"latestMessage"`
	UnreadCount   int         `json:"unreadCount"`
}

type MessageDTO struct {
	ID         int64    `json:"messageId"`
	RoomID     int64    `json:"roomId"`
	SenderID   int64    `json:"senderId"`
	SenderName string   `json:"senderName,omitempty"`
	Content    string   `json:"content"`
	ReplyTo    *int64   `json:"replyTo,omitempty"`
	File       *FileDTO `json:"file,omitempty"`
	SendAt     string   `json:"sendAt"`
}

type MemberDTO struct {
	ProfileID int64       `json:"profileId"`
	Fullname  string      `json:"fullname"`
	Role      ProfileRole `json:"role"`
	JoinedAt  string      `json:"joinedAt"`
}

type DiscussionDTO struct {
	ID        int64    `json:"discussionId"`
	Name      string   `json:"name"`
	ProfileID int64    `json:"profileId"`
	ChatCount int      `json:"chatCount"`
	LastChat  *ChatDTO `json:"lastChat"`
	CreatedAt string   `json:"createdAt"`
}

type ChatDTO struct {
	ID           int64  `json:"chatId"`
	DiscussionID int64  `json:"discussionId"`
	Content      string `json:"content"`
	IsAI         bool   `json:"isAi"`
	CreatedAt    string `json:"createdAt"`
}

type NotificationDTO struct {
	ID        int64  `json:"notificationId"`
	ProfileID int64  `json:"profileId"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	TaskID    *int64 `json:"taskId,omitempty"`
	SeenAt    string `json:"seenAt,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type NotificationCountDTO struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

type FileDTO struct {
	ID          int64  `json:"fileId"`
	VName       string `json:"vName"`
	PName       string `json:"pName"`
	Bucket      string `json:"bucket"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
	UploadedBy  int64  `json:"uploadedBy"`
	CreatedAt   string `json:"createdAt"`
}

// Request DTOs. Update requests use pointer fields: nil means "leave unchanged".

type UpdateCompanyRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Industry *string `json:"industry,omitempty" validate:"omitempty,max=100"`
}

type UpdateProfileRequest struct {
	Fullname *string `json:"fullname,omitempty" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

type UpdateRoleRequest struct {
	Role ProfileRole `json:"role" validate:"required,oneof=admin user"`
}

type CreateContactRequest struct {
	CompanyID *int64 `json:"companyId,omitempty"`
	Fullname  string `json:"fullname" validate:"required,max=200"`
	Email     string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone     string `json:"phone,omitempty" validate:"max=50"`
	Address   string `json:"address,omitempty" validate:"max=500"`
}

type UpdateContactRequest struct {
	CompanyID *int64  `json:"companyId,omitempty"`
	Fullname  *string `json:"fullname,omitempty" validate:"omitempty,min=1,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type CreateDealRequest struct {
	Title             string    `json:"title" validate:"required,max=200"`
	Value             float64   `json:"value" validate:"gte=0"`
	Stage             DealStage `json:"stage,omitempty" validate:"omitempty,oneof=lead qualified proposal negotiation closed_won closed_lost"`
	Probability       int       `json:"probability" validate:"gte=0,lte=100"`
	ProfileID         *int64    `json:"profileId,omitempty"`
	ContactID         *int64    `json:"contactId,omitempty"`
	ProductID         *int64    `json:"productId,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	ExpectedCloseDate string    `json:"expectedCloseDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateDealRequest struct {
	Title             *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Value             *float64   `json:"value,omitempty" validate:"omitempty,gte=0"`
	Stage             *DealStage `json:"stage,omitempty" validate:"omitempty,oneof=lead qualified proposal negotiation closed_won closed_lost"`
	Probability       *int       `json:"probability,omitempty" validate:"omitempty,gte=0,lte=100"`
	ContactID         *int64     `json:"contactId,omitempty"`
	ProductID         *int64     `json:"productId,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	ExpectedCloseDate *string    `json:"expectedCloseDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description,omitempty"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
}

type CreateTaskRequest struct {
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed canceled"`
	Type        string       `json:"type,omitempty" validate:"max=50"`
	DueDate     string       `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AssignedTo  *int64       `json:"assignedTo,omitempty"`
	DealID      *int64       `json:"dealId,omitempty"`
	ContactID   *int64       `json:"contactId,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string       `json:"description,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status      *TaskStatus   `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed canceled"`
	Type        *string       `json:"type,omitempty" validate:"omitempty,max=50"`
	DueDate     *string       `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DealID      *int64        `json:"dealId,omitempty"`
	ContactID   *int64        `json:"contactId,omitempty"`
}

type AssignTaskRequest struct {
	ProfileID int64 `json:"profileId" validate:"required,gt=0"`
}

type CreateInteractionRequest struct {
	Type      string `json:"type" validate:"required,max=50"`
	Note      string `json:"note,omitempty"`
	DealID    *int64 `json:"dealId,omitempty"`
	ContactID *int64 `json:"contactId,omitempty"`
}

type UpdateInteractionRequest struct {
	Type *string `json:"type,omitempty" validate:"omitempty,min=1,max=50"`
	Note *string `json:"note,omitempty"`
}

type CreateRoomRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	MemberIDs []int64 `json:"memberIds,omitempty"`
}

type AddMemberRequest struct {
	ProfileID int64 `json:"profileId" validate:"required,gt=0"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
	ReplyTo *int64 `json:"replyTo,omitempty"`
	FileID  *int64 `json:"fileId,omitempty"`
}

type UpdateMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type MarkViewedRequest struct {
	MessageIDs []int64 `json:"messageIds" validate:"required,min=1,dive,gt=0"`
}

type CreateDiscussionRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type UpdateDiscussionRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type SendChatRequest struct {
	Content string `json:"content" validate:"required"`
	IsAI    bool   `json:"isAi"`
}

type CreateNotificationRequest struct {
	ProfileID int64  `json:"profileId" validate:"required,gt=0"`
	Content   string `json:"content" validate:"required"`
	Type      string `json:"type,omitempty" validate:"max=50"`
	TaskID    *int64 `json:"taskId,omitempty"`
}

type CreateFileRequest struct {
	VName       string `json:"vName" validate:"required,max=255"`
	PName       string `json:"pName" validate:"required,max=500"`
	Bucket      string `json:"bucket,omitempty" validate:"max=100"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
}

// ImportResultDTO reports the outcome of a contact import
type ImportResultDTO struct {
	Imported int            `json:"imported"`
	Failed   []ImportRowErr `json:"failed"`
}

type ImportRowErr struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ExportResultDTO struct {
	Format      string `json:"format"`
	StorageKey  string `json:"storageKey"`
	Count       int    `json:"count"`
	ContentType string `json:"contentType"`
}
