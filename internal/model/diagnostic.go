package model

import (
	"time"

	"gorm.io/gorm"
)

// Diagnostic 会话 store 操作失败的诊断记录
type Diagnostic struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SessionID string `gorm:"type:varchar(64);index" json:"session_id"`
	// 发起失败的 store 操作名（fetchConfig/runModel/...）
	Operation string `gorm:"type:varchar(64);not null;index" json:"operation"`
	// silent: 只记录不上抛；visible: 已返回给调用方
	Class string `gorm:"type:varchar(16);index" json:"class"`
	// 远端返回的 HTTP 状态码，传输层错误时为 0
	StatusCode int    `json:"status_code"`
	Message    string `gorm:"type:text;not null" json:"message"`
}
