package model

import "time"

// Announcement 公告表 — 对应 announcements
type Announcement struct {
	AnnouncementID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"announcement_id"`
	Title          string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string     `gorm:"type:text;not null"                             json:"content"`
	Category       string     `gorm:"type:varchar(50);not null;default:'general'"    json:"category"`
	Audience       string     `gorm:"type:varchar(20);not null;default:'all'"        json:"audience"` // all | students | faculty | committee
	Priority       string     `gorm:"type:varchar(10);not null;default:'medium'"     json:"priority"`
	AuthorID       string     `gorm:"type:uuid;not null"                             json:"author_id"`
	PublishedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"published_at"`
	ExpiresAt      *time.Time `                                                      json:"expires_at,omitempty"`
	BaseModel

	Author *User `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
}

// TableName 指定表名
func (Announcement) TableName() string { return "announcements" }

// OwnerID 作者
func (a *Announcement) OwnerID() string { return a.AuthorID }

// News 新闻表 — 对应 news
type News struct {
	NewsID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"news_id"`
	Title       string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Summary     string    `gorm:"type:varchar(500)"                              json:"summary,omitempty"`
	Content     string    `gorm:"type:text;not null"                             json:"content"`
	Category    string    `gorm:"type:varchar(50);not null;default:'general'"    json:"category"`
	ImageURL    string    `gorm:"type:varchar(500)"                              json:"image_url,omitempty"`
	AuthorID    string    `gorm:"type:uuid;not null"                             json:"author_id"`
	PublishedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"published_at"`
	BaseModel

	Author *User `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
}

// TableName 指定表名
func (News) TableName() string { return "news" }

// OwnerID 作者
func (n *News) OwnerID() string { return n.AuthorID }

// Event 活动表 — 对应 events
type Event struct {
	EventID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	Title        string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description  string    `gorm:"type:text"                                      json:"description,omitempty"`
	Category     string    `gorm:"type:varchar(50);not null;default:'general'"    json:"category"`
	Location     string    `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	StartAt      time.Time `gorm:"not null"                                       json:"start_at"`
	EndAt        time.Time `gorm:"not null"                                       json:"end_at"`
	OrganizerID  string    `gorm:"type:uuid;not null"                             json:"organizer_id"`
	DepartmentID *string   `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	BaseModel

	Organizer  *User       `gorm:"foreignKey:OrganizerID;references:UserID"        json:"organizer,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Event) TableName() string { return "events" }

// OwnerID 组织者
func (e *Event) OwnerID() string { return e.OrganizerID }

// Resource 教学资料表 — 对应 resources
type Resource struct {
	ResourceID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"resource_id"`
	Title        string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Description  string  `gorm:"type:text"                                      json:"description,omitempty"`
	Category     string  `gorm:"type:varchar(50);not null;default:'general'"    json:"category"`
	FileURL      string  `gorm:"type:varchar(500);not null"                     json:"file_url"`
	FileName     string  `gorm:"type:varchar(255);not null"                     json:"file_name"`
	FileSize     int64   `gorm:"not null;default:0"                             json:"file_size"`
	MimeType     string  `gorm:"type:varchar(100)"                              json:"mime_type,omitempty"`
	UploaderID   string  `gorm:"type:uuid;not null"                             json:"uploader_id"`
	DepartmentID *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	BaseModel

	Uploader   *User       `gorm:"foreignKey:UploaderID;references:UserID"         json:"uploader,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Resource) TableName() string { return "resources" }

// OwnerID 上传者
func (r *Resource) OwnerID() string { return r.UploaderID }
