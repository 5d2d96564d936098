package models

import "time"

const (
	GenerationStatusPending  = "pending"
	GenerationStatusComplete = "complete"
	GenerationStatusFailed   = "failed"
)

// Supported output stacks for code generation.
const (
	StackHTMLTailwind  = "html_tailwind"
	StackHTMLCSS       = "html_css"
	StackReactTailwind = "react_tailwind"
)

// Generation is one screenshot-to-code run for a user: the stored screenshot,
// the requested output stack and the generated markup once complete.
type Generation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UUID          string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Stack         string    `gorm:"type:varchar(32);not null;default:'html_tailwind'" json:"stack" validate:"oneof=html_tailwind html_css react_tailwind"`
	ScreenshotKey string    `gorm:"type:varchar(255);not null" json:"screenshot_key"`
	Status        string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ResultHTML    string    `gorm:"type:longtext" json:"result_html,omitempty"`
	ErrorMessage  string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsValidStack reports whether the requested output stack is supported.
func IsValidStack(stack string) bool {
	switch stack {
	case StackHTMLTailwind, StackHTMLCSS, StackReactTailwind:
		return true
	default:
		return false
	}
}
