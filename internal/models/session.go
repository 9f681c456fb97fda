package models

import (
	"database/sql"
	"time"
)

// SessionStatus 定義揮棒拍攝場次的狀態
type SessionStatus string

const (
	SessionStatusUploading      SessionStatus = "uploading"       // 初始狀態，等待揮棒影片上傳
	SessionStatusPendingPayment SessionStatus = "pending_payment" // 影片已齊全，等待付款
	SessionStatusAnalyzing      SessionStatus = "analyzing"       // 正在進行 4B 評分分析
	SessionStatusComplete       SessionStatus = "complete"        // 分析已完成
	SessionStatusFailed         SessionStatus = "failed"          // 分析失敗
)

// Session 對應 sessions 資料表。
// ID 由拍攝端 App 產生，場次記錄在拍攝開始時建立。
// 狀態只會往前推進，唯一的例外是明確標記失敗。
type Session struct {
	ID             string        `json:"id"`
	PlayerID       int64         `json:"player_id"`
	SwingsRequired int           `json:"swings_required"`
	Status         SessionStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Swing 對應 swings 資料表。
// (SessionID, SwingIndex) 唯一；同一索引重新上傳時更新既有記錄，不新增。
type Swing struct {
	ID               int64          `json:"id"`
	SessionID        string         `json:"session_id"`
	SwingIndex       int            `json:"swing_index"`
	VideoPath        string         `json:"video_path"`
	VideoURL         string         `json:"video_url"`
	OriginalFileName sql.NullString `json:"original_file_name"`
	UploadedAt       time.Time      `json:"uploaded_at"`
	Validated        bool           `json:"validated"`
}
