package models

import (
	"encoding/json"
	"time"
)

// AnalysisScores 對應 session_scores 資料表，一個場次一筆。
// 四個子分數採用產品的 4B 分類：Brain / Body / Bat / Ball。
type AnalysisScores struct {
	SessionID     string          `json:"-"`
	Brain         int             `json:"brain"`
	Body          int             `json:"body"`
	Bat           int             `json:"bat"`
	Ball          int             `json:"ball"`
	Composite     int             `json:"composite"`
	MotorProfile  *JsonNullString `json:"motor_profile,omitempty"`
	Leaks         json.RawMessage `json:"leaks,omitempty"` // 揮棒力學缺陷清單，例如 "late legs"
	PromptVersion string          `json:"-"`
	CreatedAt     time.Time       `json:"-"`
	UpdatedAt     time.Time       `json:"-"`
}
