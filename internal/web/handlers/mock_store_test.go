package handlers

import (
	"SwingLab-backend/internal/models"
	"database/sql"
	"time"
)

// stubStore 以函式欄位實現 DBStore，各測試只填會用到的部分。
type stubStore struct {
	getSessionByIDFunc      func(sessionID string) (*models.Session, error)
	getSwingsBySessionFunc  func(sessionID string) ([]models.Swing, error)
	getPlayerByIDFunc       func(playerID int64) (*models.Player, error)
	setPlayerEmailOptInFunc func(playerID int64, optIn bool) error
	getDrillVideoByIDFunc   func(videoID int64) (*models.DrillVideo, error)
	listDrillVideosFunc     func(searchTerm string, status models.DrillStatus, limit int, offset int) ([]models.DrillVideo, error)

	optInUpdates []bool
}

func (s *stubStore) Close() error { return nil }

func (s *stubStore) GetSessionByID(sessionID string) (*models.Session, error) {
	if s.getSessionByIDFunc != nil {
		return s.getSessionByIDFunc(sessionID)
	}
	return nil, nil
}

func (s *stubStore) GetSwingsBySession(sessionID string) ([]models.Swing, error) {
	if s.getSwingsBySessionFunc != nil {
		return s.getSwingsBySessionFunc(sessionID)
	}
	return nil, nil
}

func (s *stubStore) UpdateSessionStatus(sessionID string, status models.SessionStatus) error {
	return nil
}

func (s *stubStore) UpsertSwingTx(swing *models.Swing, swingsRequired int) (int, error) {
	return 0, nil
}

func (s *stubStore) GetScoresBySession(sessionID string) (*models.AnalysisScores, error) {
	return nil, nil
}

func (s *stubStore) SaveScores(scores *models.AnalysisScores) error { return nil }

func (s *stubStore) GetMessageTemplate(triggerName string) (*models.MessageTemplate, error) {
	return nil, nil
}

func (s *stubStore) InsertScheduledMessage(msg *models.ScheduledMessage) (int64, error) {
	return 1, nil
}

func (s *stubStore) GetDueScheduledMessages(now time.Time, limit int) ([]models.ScheduledMessage, error) {
	return nil, nil
}

func (s *stubStore) ClaimScheduledMessage(id int64, status models.ScheduledMessageStatus) (bool, error) {
	return true, nil
}

func (s *stubStore) FinishScheduledMessage(id int64, status models.ScheduledMessageStatus, errorMessage sql.NullString) error {
	return nil
}

func (s *stubStore) InsertMessageLog(entry *models.MessageLog) error { return nil }

func (s *stubStore) GetPlayerByID(playerID int64) (*models.Player, error) {
	if s.getPlayerByIDFunc != nil {
		return s.getPlayerByIDFunc(playerID)
	}
	return nil, nil
}

func (s *stubStore) SetPlayerEmailOptIn(playerID int64, optIn bool) error {
	s.optInUpdates = append(s.optInUpdates, optIn)
	if s.setPlayerEmailOptInFunc != nil {
		return s.setPlayerEmailOptInFunc(playerID, optIn)
	}
	return nil
}

func (s *stubStore) GetDrillVideoByID(videoID int64) (*models.DrillVideo, error) {
	if s.getDrillVideoByIDFunc != nil {
		return s.getDrillVideoByIDFunc(videoID)
	}
	return nil, nil
}

func (s *stubStore) ListDrillVideos(searchTerm string, status models.DrillStatus, limit int, offset int) ([]models.DrillVideo, error) {
	if s.listDrillVideosFunc != nil {
		return s.listDrillVideosFunc(searchTerm, status, limit, offset)
	}
	return nil, nil
}

func (s *stubStore) FindOrCreateDrillVideo(video *models.DrillVideo) (int64, error) { return 1, nil }

func (s *stubStore) UpdateDrillVideo(video *models.DrillVideo) error { return nil }

func (s *stubStore) UpdateDrillVideoStatus(videoID int64, status models.DrillStatus, errorMessage sql.NullString) error {
	return nil
}

func (s *stubStore) GetDrillVideosPendingTagging(limit int) ([]models.DrillVideo, error) {
	return nil, nil
}

func (s *stubStore) DeleteDrillVideo(videoID int64) error { return nil }
