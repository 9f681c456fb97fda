package handlers

import (
	"SwingLab-backend/internal/models"
	"database/sql"
	"time"
)

// DBStore 定義了應用程式需要的資料庫操作介面
type DBStore interface {
	Close() error

	// 場次帳本
	GetSessionByID(sessionID string) (*models.Session, error)
	GetSwingsBySession(sessionID string) ([]models.Swing, error)
	UpdateSessionStatus(sessionID string, status models.SessionStatus) error
	UpsertSwingTx(swing *models.Swing, swingsRequired int) (int, error)
	GetScoresBySession(sessionID string) (*models.AnalysisScores, error)
	SaveScores(scores *models.AnalysisScores) error

	// 訊息佇列與發送記錄
	GetMessageTemplate(triggerName string) (*models.MessageTemplate, error)
	InsertScheduledMessage(msg *models.ScheduledMessage) (int64, error)
	GetDueScheduledMessages(now time.Time, limit int) ([]models.ScheduledMessage, error)
	ClaimScheduledMessage(id int64, status models.ScheduledMessageStatus) (bool, error)
	FinishScheduledMessage(id int64, status models.ScheduledMessageStatus, errorMessage sql.NullString) error
	InsertMessageLog(entry *models.MessageLog) error

	// 球員
	GetPlayerByID(playerID int64) (*models.Player, error)
	SetPlayerEmailOptIn(playerID int64, optIn bool) error

	// 訓練影片目錄
	GetDrillVideoByID(videoID int64) (*models.DrillVideo, error)
	ListDrillVideos(searchTerm string, status models.DrillStatus, limit int, offset int) ([]models.DrillVideo, error)
	FindOrCreateDrillVideo(video *models.DrillVideo) (int64, error)
	UpdateDrillVideo(video *models.DrillVideo) error
	UpdateDrillVideoStatus(videoID int64, status models.DrillStatus, errorMessage sql.NullString) error
	GetDrillVideosPendingTagging(limit int) ([]models.DrillVideo, error)
	DeleteDrillVideo(videoID int64) error
}
