package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enum types
type UserRole string

const (
	RoleTraveller UserRole = "traveller"
	RoleAdmin     UserRole = "admin"
)

type PostStatus string

const (
	PostVisible PostStatus = "visible"
	PostHidden  PostStatus = "hidden"
)

type BuddyStatus string

const (
	BuddyPending  BuddyStatus = "pending"
	BuddyAccepted BuddyStatus = "accepted"
	BuddyDeclined BuddyStatus = "declined"
)

// JSONB type for GORM
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Base model with soft delete
type BaseModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func setUUIDIfEmpty(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// User is the profile row for an account held by the auth provider. ID is the
// provider's subject claim.
type User struct {
	BaseModel
	Username    string     `gorm:"type:varchar(30);not null;uniqueIndex" json:"username"`
	DisplayName string     `gorm:"type:varchar(100);not null" json:"display_name"`
	Bio         *string    `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL   *string    `gorm:"type:text" json:"avatar_url,omitempty"`
	Role        UserRole   `gorm:"type:varchar(20);not null;default:'traveller'" json:"role"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	HomeCity    *string    `gorm:"type:varchar(100)" json:"home_city,omitempty"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

func (User) TableName() string { return "users" }

// Post is a location-tagged entry.
type Post struct {
	BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Body         string     `gorm:"type:text;not null" json:"body"`
	ImageURL     *string    `gorm:"type:text" json:"image_url,omitempty"`
	Latitude     float64    `gorm:"not null;index:idx_posts_lat_lng" json:"latitude"`
	Longitude    float64    `gorm:"not null;index:idx_posts_lat_lng" json:"longitude"`
	LocationName string     `gorm:"type:varchar(200)" json:"location_name"`
	Status       PostStatus `gorm:"type:varchar(20);not null;default:'visible'" json:"status"`
	CommentCount int        `gorm:"not null;default:0" json:"comment_count"`
	User         *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Post) TableName() string { return "posts" }

// Comment
type Comment struct {
	BaseModel
	PostID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ParentCommentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_comment_id,omitempty"`
	Text            string     `gorm:"type:text;not null" json:"text"`
	Votes           int        `gorm:"not null;default:0" json:"votes"`
	IsHidden        bool       `gorm:"not null;default:false" json:"is_hidden"`
	HiddenReason    *string    `gorm:"type:text" json:"hidden_reason,omitempty"`
	HiddenBy        *uuid.UUID `gorm:"type:uuid" json:"hidden_by,omitempty"`
	User            *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Comment) TableName() string { return "comments" }

// CommentVote holds one voter's current vote on a comment.
type CommentVote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_votes_comment_user" json:"comment_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_votes_comment_user" json:"user_id"`
	VoteType  int       `gorm:"type:smallint;not null" json:"vote_type"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CommentVote) TableName() string { return "comment_votes" }

func (m *CommentVote) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

// BuddyConnection links two travellers who want to hear when they are near
// each other.
type BuddyConnection struct {
	BaseModel
	RequesterID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_buddy_pair" json:"requester_id"`
	AddresseeID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_buddy_pair" json:"addressee_id"`
	Status         BuddyStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	NotifyRadiusKm float64     `gorm:"not null;default:10" json:"notify_radius_km"`
	LastNotifiedAt *time.Time  `json:"last_notified_at,omitempty"`
	AcceptedAt     *time.Time  `json:"accepted_at,omitempty"`
	Requester      *User       `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Addressee      *User       `gorm:"foreignKey:AddresseeID" json:"addressee,omitempty"`
}

func (BuddyConnection) TableName() string { return "buddy_connections" }

// Other returns the id of the side of the connection that is not userID.
func (b *BuddyConnection) Other(userID uuid.UUID) uuid.UUID {
	if b.RequesterID == userID {
		return b.AddresseeID
	}
	return b.RequesterID
}

// Involves reports whether userID is either side of the connection.
func (b *BuddyConnection) Involves(userID uuid.UUID) bool {
	return b.RequesterID == userID || b.AddresseeID == userID
}

// UserLocation is the last position a user shared.
type UserLocation struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserLocation) TableName() string { return "user_locations" }

type NotificationType string

const (
	NotifNewComment     NotificationType = "new_comment"
	NotifReplyComment   NotificationType = "reply_comment"
	NotifBuddyRequest   NotificationType = "buddy_request"
	NotifBuddyAccepted  NotificationType = "buddy_accepted"
	NotifBuddyNearby    NotificationType = "buddy_nearby"
	NotifNewMessage     NotificationType = "new_message"
	NotifContentHidden  NotificationType = "content_hidden"
	NotifReportResolved NotificationType = "report_resolved"
)

// Notification
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   *string          `gorm:"type:text" json:"message,omitempty"`
	Data      JSONB            `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead    bool             `gorm:"default:false" json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

func (m *Notification) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

// ============================================================================
// MESSAGING MODELS
// ============================================================================

// Conversation - direct conversation between two users
type Conversation struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	LastMessagePreview *string    `gorm:"type:text" json:"last_message_preview,omitempty"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

func (m *Conversation) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

// ConversationParticipant - user membership in a conversation
type ConversationParticipant struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversation_id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	JoinedAt       time.Time  `gorm:"not null;autoCreateTime" json:"joined_at"`
	LastReadAt     *time.Time `json:"last_read_at,omitempty"`
	UnreadCount    int        `gorm:"not null;default:0" json:"unread_count"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ConversationParticipant) TableName() string { return "conversation_participants" }

func (m *ConversationParticipant) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

// Message - text message in a conversation
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

// ============================================================================
// MODERATION MODELS
// ============================================================================

type ReportTarget string

const (
	ReportTargetPost    ReportTarget = "post"
	ReportTargetComment ReportTarget = "comment"
)

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusReviewed ReportStatus = "reviewed"
	ReportStatusResolved ReportStatus = "resolved"
)

// Report is a user's flag on a post or comment, worked by admins.
type Report struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID uuid.UUID    `gorm:"type:uuid;not null;index" json:"reporter_id"`
	TargetType ReportTarget `gorm:"type:varchar(20);not null" json:"target_type"`
	TargetID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"target_id"`
	Reason     string       `gorm:"type:text;not null" json:"reason"`
	Status     ReportStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AdminNotes *string      `gorm:"type:text" json:"admin_notes,omitempty"`
	ResolvedBy *uuid.UUID   `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`
	Reporter   *User        `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
}

func (Report) TableName() string { return "reports" }

func (m *Report) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

// AllModels lists every table, in dependency order, for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Comment{},
		&CommentVote{},
		&BuddyConnection{},
		&UserLocation{},
		&Notification{},
		&Conversation{},
		&ConversationParticipant{},
		&Message{},
		&Report{},
	}
}
