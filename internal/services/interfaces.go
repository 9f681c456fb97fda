package services

import (
	"SwingLab-backend/internal/clients/onform"
	"SwingLab-backend/internal/models"
	"context"
)

// MediaStorage 介面定義了影片儲存操作
type MediaStorage interface {
	SaveVideo(relativePath string, videoData []byte) (string, error)
	GetVideoAbsolutePath(relativePath string) (string, error)
	ReadVideo(relativePath string) ([]byte, error)
}

// SwingScorer 定義揮棒評分的上游（由 gemini.Client 實現）
type SwingScorer interface {
	ScoreSwings(ctx context.Context, videoPaths []string, prompt string) (*models.AnalysisScores, error)
}

// DrillTagger 定義逐字稿標記的上游（由 gemini.Client 實現）
type DrillTagger interface {
	TagDrillTranscript(ctx context.Context, transcript string, prompt string) (string, error)
}

// SMSSender 定義簡訊發送的上游（由 sms.Client 實現）
type SMSSender interface {
	SendSMS(ctx context.Context, toNumber string, body string) error
}

// ChatSender 定義聊天頻道發送的上游（由 slack.Client 實現）
type ChatSender interface {
	SendMessage(channelID string, text string) (string, error)
}

// RecordingSource 定義訓練影片匯入來源（由 onform.Client 實現）
type RecordingSource interface {
	ListRecordings(ctx context.Context, limit int) ([]onform.Recording, error)
	DownloadRecording(ctx context.Context, rec onform.Recording) ([]byte, error)
}
