package domain

import "time"

// Team is a registered hackathon team. Score is overwritten by admins; the
// leaderboard ranks by Score and breaks ties on the earlier UpdatedAt.
type Team struct {
	ID                 uint      `json:"id"                            gorm:"primaryKey;autoIncrement"`
	TeamName           string    `json:"team_name"                     gorm:"type:varchar(255);not null;uniqueIndex:ux_teams_name"`
	Members            []string  `json:"members"                       gorm:"type:text;not null;serializer:json"`
	ProjectName        *string   `json:"project_name,omitempty"        gorm:"type:varchar(255)"`
	ProjectDescription *string   `json:"project_description,omitempty" gorm:"type:text"`
	RepoLink           *string   `json:"repo_link,omitempty"           gorm:"type:varchar(512)"`
	Score              int64     `json:"score"                         gorm:"not null;index:idx_teams_score,sort:desc"`
	CreatedAt          time.Time `json:"created_at"                    gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time `json:"updated_at"                    gorm:"autoUpdateTime:false"`
}

// TableName returns the database table name for Team.
func (Team) TableName() string { return "teams" }

// Event is an admin announcement. Events are never deleted; Active only ever
// goes from true to false.
type Event struct {
	ID          uint          `json:"id"                 gorm:"primaryKey;autoIncrement"`
	Title       string        `json:"title"              gorm:"type:varchar(255);not null"`
	Description string        `json:"description"        gorm:"type:text;not null"`
	Kind        EventKind     `json:"event_type"         gorm:"type:varchar(32);not null;check:kind IN ('announcement','schedule_change','deadline','info')"`
	Priority    EventPriority `json:"priority"           gorm:"type:varchar(16);not null;index:idx_events_active_priority,priority:2;check:priority IN ('low','medium','high','urgent')"`
	StartAt     *time.Time    `json:"start_time,omitempty"`
	EndAt       *time.Time    `json:"end_time,omitempty"`
	Active      bool          `json:"is_active"          gorm:"not null;index:idx_events_active_priority,priority:1;index:idx_events_active_created,priority:1"`
	CreatedAt   time.Time     `json:"created_at"         gorm:"autoCreateTime:false;index:idx_events_active_created,priority:2"`
	CreatedBy   string        `json:"created_by"         gorm:"type:varchar(128);not null"`
}

// TableName returns the database table name for Event.
func (Event) TableName() string { return "events" }

// Prompt is a quick-start suggestion shown in the chat UI. The whole set is
// replaced at once; rows are never patched individually.
type Prompt struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title"      gorm:"type:varchar(255);not null"`
	Body      string    `json:"prompt"     gorm:"type:text;not null"`
	IconTag   string    `json:"icon"       gorm:"type:varchar(64);not null"`
	Active    bool      `json:"is_active"  gorm:"not null;index:idx_prompts_order,priority:1"`
	SortOrder int       `json:"sort_order" gorm:"not null;index:idx_prompts_order,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// TableName returns the database table name for Prompt.
func (Prompt) TableName() string { return "prompts" }

// SystemPrompt is a named instruction document sent to the inference server.
// "default" is the one the chat endpoint uses.
type SystemPrompt struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name"       gorm:"type:varchar(128);not null;uniqueIndex:ux_system_prompts_name"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	Active    bool      `json:"is_active"  gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// TableName returns the database table name for SystemPrompt.
func (SystemPrompt) TableName() string { return "system_prompts" }
