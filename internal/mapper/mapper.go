package mapper

import (
	"time"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/datatypes"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// FormatDate renders a date-only column, or "" when unset
func FormatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format(dateLayout)
}

// ParseDate parses YYYY-MM-DD into a date-only column value
func ParseDate(s string) (*datatypes.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	d := datatypes.Date(t)
	return &d, nil
}

// ToCompanyDTO converts Company to CompanyDTO
func ToCompanyDTO(c *domain.Company) domain.CompanyDTO {
	return domain.CompanyDTO{
		ID:        c.ID,
		Name:      c.Name,
		Industry:  c.Industry,
		RoomID:    c.RoomID,
		CreatedBy: c.CreatedBy,
		CreatedAt: formatTime(c.CreatedAt),
	}
}

// ToProfileDTO converts Profile to ProfileDTO
func ToProfileDTO(p *domain.Profile) domain.ProfileDTO {
	return domain.ProfileDTO{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Role:      p.Role,
		Fullname:  p.Fullname,
		Email:     p.Email,
		Phone:     p.Phone,
		AddedBy:   p.AddedBy,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func ToProfileDTOs(profiles []domain.Profile) []domain.ProfileDTO {
	out := make([]domain.ProfileDTO, 0, len(profiles))
	for i := range profiles {
		out = append(out, ToProfileDTO(&profiles[i]))
	}
	return out
}

// ToContactDTO converts Contact to ContactDTO
func ToContactDTO(c *domain.Contact) domain.ContactDTO {
	return domain.ContactDTO{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Fullname:  c.Fullname,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedBy: c.CreatedBy,
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func ToContactDTOs(contacts []domain.Contact) []domain.ContactDTO {
	out := make([]domain.ContactDTO, 0, len(contacts))
	for i := range contacts {
		out = append(out, ToContactDTO(&contacts[i]))
	}
	return out
}

// ToProductDTO converts Product to ProductDTO
func ToProductDTO(p *domain.Product) domain.ProductDTO {
	return domain.ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   formatTime(p.CreatedAt),
	}
}

func ToProductDTOs(products []domain.Product) []domain.ProductDTO {
	out := make([]domain.ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, ToProductDTO(&products[i]))
	}
	return out
}

// ToDealDTO converts Deal to DealDTO
func ToDealDTO(d *domain.Deal) domain.DealDTO {
	dto := domain.DealDTO{
		ID:                d.ID,
		Title:             d.Title,
		Value:             d.Value,
		Stage:             d.Stage,
		Probability:       d.Probability,
		ProfileID:         d.ProfileID,
		ContactID:         d.ContactID,
		ProductID:         d.ProductID,
		Notes:             d.Notes,
		ExpectedCloseDate: FormatDate(d.ExpectedCloseDate),
		CreatedAt:         formatTime(d.CreatedAt),
		UpdatedAt:         formatTime(d.UpdatedAt),
	}
	if d.Owner != nil {
		dto.OwnerName = d.Owner.Fullname
	}
	return dto
}

func ToDealDTOs(deals []domain.Deal) []domain.DealDTO {
	out := make([]domain.DealDTO, 0, len(deals))
	for i := range deals {
		out = append(out, ToDealDTO(&deals[i]))
	}
	return out
}

// ToDealDetailDTO converts a deal loaded with its relations
func ToDealDetailDTO(d *domain.Deal) domain.DealDetailDTO {
	dto := domain.DealDetailDTO{
		DealDTO:      ToDealDTO(d),
		Interactions: ToInteractionDTOs(d.Interactions),
		Tasks:        ToTaskDTOs(d.Tasks),
	}
	if d.Owner != nil {
		owner := ToProfileDTO(d.Owner)
		dto.Owner = &owner
	}
	if d.Contact != nil {
		contact := ToContactDTO(d.Contact)
		dto.Contact = &contact
	}
	if d.Product != nil {
		product := ToProductDTO(d.Product)
		dto.Product = &product
	}
	return dto
}

// ToTaskDTO converts Task to TaskDTO
func ToTaskDTO(t *domain.Task) domain.TaskDTO {
	return domain.TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		Type:        t.Type,
		DueDate:     FormatDate(t.DueDate),
		AssignedTo:  t.AssignedTo,
		CreatedBy:   t.CreatedBy,
		DealID:      t.DealID,
		ContactID:   t.ContactID,
		CompletedAt: formatOptionalTime(t.CompletedAt),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}

func ToTaskDTOs(tasks []domain.Task) []domain.TaskDTO {
	out := make([]domain.TaskDTO, 0, len(tasks))
	for i := range tasks {
		out = append(out, ToTaskDTO(&tasks[i]))
	}
	return out
}

// ToInteractionDTO converts Interaction to InteractionDTO
func ToInteractionDTO(i *domain.Interaction) domain.InteractionDTO {
	return domain.InteractionDTO{
		ID:        i.ID,
		Type:      i.Type,
		Note:      i.Note,
		DealID:    i.DealID,
		ContactID: i.ContactID,
		CreatedBy: i.CreatedBy,
		CreatedAt: formatTime(i.CreatedAt),
	}
}

func ToInteractionDTOs(interactions []domain.Interaction) []domain.InteractionDTO {
	out := make([]domain.InteractionDTO, 0, len(interactions))
	for i := range interactions {
		out = append(out, ToInteractionDTO(&interactions[i]))
	}
	return out
}

// ToRoomDTO converts Room to RoomDTO
func ToRoomDTO(r *domain.Room) domain.RoomDTO {
	return domain.RoomDTO{
		ID:        r.ID,
		Name:      r.Name,
		CreatedBy: r.CreatedBy,
		CreatedAt: formatTime(r.CreatedAt),
	}
}

// ToMessageDTO converts Message to MessageDTO
func ToMessageDTO(m *domain.Message) domain.MessageDTO {
	dto := domain.MessageDTO{
		ID:       m.ID,
		RoomID:   m.RoomID,
		SenderID: m.SenderID,
		Content:  m.Content,
		ReplyTo:  m.ReplyTo,
		SendAt:   formatTime(m.SendAt),
	}
	if m.Sender != nil {
		dto.SenderName = m.Sender.Fullname
	}
	if m.File != nil {
		file := ToFileDTO(m.File)
		dto.File = &file
	}
	return dto
}

func ToMessageDTOs(messages []domain.Message) []domain.MessageDTO {
	out := make([]domain.MessageDTO, 0, len(messages))
	for i := range messages {
		out = append(out, ToMessageDTO(&messages[i]))
	}
	return out
}

// ToMemberDTO converts a membership row with its profile preloaded
func ToMemberDTO(pr *domain.ProfileRoom) domain.MemberDTO {
	dto := domain.MemberDTO{
		ProfileID: pr.ProfileID,
		JoinedAt:  formatTime(pr.CreatedAt),
	}
	if pr.Profile != nil {
		dto.Fullname = pr.Profile.Fullname
		dto.Role = pr.Profile.Role
	}
	return dto
}

// ToChatDTO converts Chat to ChatDTO
func ToChatDTO(c *domain.Chat) domain.ChatDTO {
	return domain.ChatDTO{
		ID:           c.ID,
		DiscussionID: c.DiscussionID,
		Content:      c.Content,
		IsAI:         c.IsAI,
		CreatedAt:    formatTime(c.CreatedAt),
	}
}

func ToChatDTOs(chats []domain.Chat) []domain.ChatDTO {
	out := make([]domain.ChatDTO, 0, len(chats))
	for i := range chats {
		out = append(out, ToChatDTO(&chats[i]))
	}
	return out
}

// ToDiscussionDTO converts Discussion to DiscussionDTO
func ToDiscussionDTO(d *domain.Discussion, chatCount int, lastChat *domain.Chat) domain.DiscussionDTO {
	dto := domain.DiscussionDTO{
		ID:        d.ID,
		Name:      d.Name,
		ProfileID: d.ProfileID,
		ChatCount: chatCount,
		CreatedAt: formatTime(d.CreatedAt),
	}
	if lastChat != nil {
		chat := ToChatDTO(lastChat)
		dto.LastChat = &chat
	}
	return dto
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        n.ID,
		ProfileID: n.ProfileID,
		Content:   n.Content,
		Type:      n.Type,
		TaskID:    n.TaskID,
		SeenAt:    formatOptionalTime(n.SeenAt),
		CreatedAt: formatTime(n.CreatedAt),
	}
}

func ToNotificationDTOs(notifications []domain.Notification) []domain.NotificationDTO {
	out := make([]domain.NotificationDTO, 0, len(notifications))
	for i := range notifications {
		out = append(out, ToNotificationDTO(&notifications[i]))
	}
	return out
}

// ToFileDTO converts File to FileDTO
func ToFileDTO(f *domain.File) domain.FileDTO {
	return domain.FileDTO{
		ID:          f.ID,
		VName:       f.VName,
		PName:       f.PName,
		Bucket:      f.Bucket,
		ContentType: f.ContentType,
		Size:        f.Size,
		UploadedBy:  f.UploadedBy,
		CreatedAt:   formatTime(f.CreatedAt),
	}
}
