package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// DrillStatus 定義訓練影片在內容管線中的狀態。
// 轉換是線性的：processing → {draft | analyzing} →
// {ready_for_review | published | processing_failed}，不允許往回走。
type DrillStatus string

const (
	DrillStatusProcessing       DrillStatus = "processing"        // 已匯入，等待逐字稿
	DrillStatusDraft            DrillStatus = "draft"             // 逐字稿已就緒，等待自動標記
	DrillStatusAnalyzing        DrillStatus = "analyzing"         // 正在進行 AI 自動標記
	DrillStatusReadyForReview   DrillStatus = "ready_for_review"  // 標記完成，等待人工審核
	DrillStatusPublished        DrillStatus = "published"         // 已發布
	DrillStatusProcessingFailed DrillStatus = "processing_failed" // 管線失敗，需人工介入
)

// DrillVideo 對應 drill_videos 資料表
type DrillVideo struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	SourceName   string          `json:"source_name"`
	SourceID     string          `json:"source_id"`
	MediaPath    string          `json:"media_path"`
	Transcript   JsonNullString  `json:"transcript"`
	Category     sql.NullString  `json:"category"`
	Tags         json.RawMessage `json:"tags"`
	Problems     json.RawMessage `json:"problems_addressed"`
	SkillLevel   sql.NullString  `json:"skill_level"`
	Summary      JsonNullString  `json:"summary"`
	Status       DrillStatus     `json:"status"`
	ErrorMessage sql.NullString  `json:"error_message"`
	DurationSecs sql.NullInt64   `json:"duration_secs"`
	PublishedAt  sql.NullTime    `json:"published_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DrillAnalysis 是自動標記階段從 Gemini 解析出的結構化回應
type DrillAnalysis struct {
	Category   string   `json:"category"`
	Problems   []string `json:"problems_addressed"`
	Tags       []string `json:"tags"`
	SkillLevel string   `json:"skill_level"`
	Summary    string   `json:"summary"`
}
