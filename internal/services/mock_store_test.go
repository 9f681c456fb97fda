package services

import (
	"SwingLab-backend/internal/models"
	"database/sql"
	"time"
)

// fakeStore 以函式欄位實現 handlers.DBStore，各測試只填會用到的部分。
type fakeStore struct {
	getSessionByIDFunc      func(sessionID string) (*models.Session, error)
	getSwingsBySessionFunc  func(sessionID string) ([]models.Swing, error)
	updateSessionStatusFunc func(sessionID string, status models.SessionStatus) error
	upsertSwingTxFunc       func(swing *models.Swing, swingsRequired int) (int, error)
	getScoresBySessionFunc  func(sessionID string) (*models.AnalysisScores, error)
	saveScoresFunc          func(scores *models.AnalysisScores) error

	getMessageTemplateFunc      func(triggerName string) (*models.MessageTemplate, error)
	insertScheduledMessageFunc  func(msg *models.ScheduledMessage) (int64, error)
	getDueScheduledMessagesFunc func(now time.Time, limit int) ([]models.ScheduledMessage, error)
	claimScheduledMessageFunc   func(id int64, status models.ScheduledMessageStatus) (bool, error)
	finishScheduledMessageFunc  func(id int64, status models.ScheduledMessageStatus, errorMessage sql.NullString) error
	insertMessageLogFunc        func(entry *models.MessageLog) error

	getPlayerByIDFunc       func(playerID int64) (*models.Player, error)
	setPlayerEmailOptInFunc func(playerID int64, optIn bool) error

	getDrillVideoByIDFunc            func(videoID int64) (*models.DrillVideo, error)
	listDrillVideosFunc              func(searchTerm string, status models.DrillStatus, limit int, offset int) ([]models.DrillVideo, error)
	findOrCreateDrillVideoFunc       func(video *models.DrillVideo) (int64, error)
	updateDrillVideoFunc             func(video *models.DrillVideo) error
	updateDrillVideoStatusFunc       func(videoID int64, status models.DrillStatus, errorMessage sql.NullString) error
	getDrillVideosPendingTaggingFunc func(limit int) ([]models.DrillVideo, error)
	deleteDrillVideoFunc             func(videoID int64) error

	statusUpdates []models.SessionStatus
	messageLogs   []models.MessageLog
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) GetSessionByID(sessionID string) (*models.Session, error) {
	if f.getSessionByIDFunc != nil {
		return f.getSessionByIDFunc(sessionID)
	}
	return nil, nil
}

func (f *fakeStore) GetSwingsBySession(sessionID string) ([]models.Swing, error) {
	if f.getSwingsBySessionFunc != nil {
		return f.getSwingsBySessionFunc(sessionID)
	}
	return nil, nil
}

func (f *fakeStore) UpdateSessionStatus(sessionID string, status models.SessionStatus) error {
	f.statusUpdates = append(f.statusUpdates, status)
	if f.updateSessionStatusFunc != nil {
		return f.updateSessionStatusFunc(sessionID, status)
	}
	return nil
}

func (f *fakeStore) UpsertSwingTx(swing *models.Swing, swingsRequired int) (int, error) {
	if f.upsertSwingTxFunc != nil {
		return f.upsertSwingTxFunc(swing, swingsRequired)
	}
	return 0, nil
}

func (f *fakeStore) GetScoresBySession(sessionID string) (*models.AnalysisScores, error) {
	if f.getScoresBySessionFunc != nil {
		return f.getScoresBySessionFunc(sessionID)
	}
	return nil, nil
}

func (f *fakeStore) SaveScores(scores *models.AnalysisScores) error {
	if f.saveScoresFunc != nil {
		return f.saveScoresFunc(scores)
	}
	return nil
}

func (f *fakeStore) GetMessageTemplate(triggerName string) (*models.MessageTemplate, error) {
	if f.getMessageTemplateFunc != nil {
		return f.getMessageTemplateFunc(triggerName)
	}
	return nil, nil
}

func (f *fakeStore) InsertScheduledMessage(msg *models.ScheduledMessage) (int64, error) {
	if f.insertScheduledMessageFunc != nil {
		return f.insertScheduledMessageFunc(msg)
	}
	return 1, nil
}

func (f *fakeStore) GetDueScheduledMessages(now time.Time, limit int) ([]models.ScheduledMessage, error) {
	if f.getDueScheduledMessagesFunc != nil {
		return f.getDueScheduledMessagesFunc(now, limit)
	}
	return nil, nil
}

func (f *fakeStore) ClaimScheduledMessage(id int64, status models.ScheduledMessageStatus) (bool, error) {
	if f.claimScheduledMessageFunc != nil {
		return f.claimScheduledMessageFunc(id, status)
	}
	return true, nil
}

func (f *fakeStore) FinishScheduledMessage(id int64, status models.ScheduledMessageStatus, errorMessage sql.NullString) error {
	if f.finishScheduledMessageFunc != nil {
		return f.finishScheduledMessageFunc(id, status, errorMessage)
	}
	return nil
}

func (f *fakeStore) InsertMessageLog(entry *models.MessageLog) error {
	f.messageLogs = append(f.messageLogs, *entry)
	if f.insertMessageLogFunc != nil {
		return f.insertMessageLogFunc(entry)
	}
	return nil
}

func (f *fakeStore) GetPlayerByID(playerID int64) (*models.Player, error) {
	if f.getPlayerByIDFunc != nil {
		return f.getPlayerByIDFunc(playerID)
	}
	return nil, nil
}

func (f *fakeStore) SetPlayerEmailOptIn(playerID int64, optIn bool) error {
	if f.setPlayerEmailOptInFunc != nil {
		return f.setPlayerEmailOptInFunc(playerID, optIn)
	}
	return nil
}

func (f *fakeStore) GetDrillVideoByID(videoID int64) (*models.DrillVideo, error) {
	if f.getDrillVideoByIDFunc != nil {
		return f.getDrillVideoByIDFunc(videoID)
	}
	return nil, nil
}

func (f *fakeStore) ListDrillVideos(searchTerm string, status models.DrillStatus, limit int, offset int) ([]models.DrillVideo, error) {
	if f.listDrillVideosFunc != nil {
		return f.listDrillVideosFunc(searchTerm, status, limit, offset)
	}
	return nil, nil
}

func (f *fakeStore) FindOrCreateDrillVideo(video *models.DrillVideo) (int64, error) {
	if f.findOrCreateDrillVideoFunc != nil {
		return f.findOrCreateDrillVideoFunc(video)
	}
	return 1, nil
}

func (f *fakeStore) UpdateDrillVideo(video *models.DrillVideo) error {
	if f.updateDrillVideoFunc != nil {
		return f.updateDrillVideoFunc(video)
	}
	return nil
}

func (f *fakeStore) UpdateDrillVideoStatus(videoID int64, status models.DrillStatus, errorMessage sql.NullString) error {
	if f.updateDrillVideoStatusFunc != nil {
		return f.updateDrillVideoStatusFunc(videoID, status, errorMessage)
	}
	return nil
}

func (f *fakeStore) GetDrillVideosPendingTagging(limit int) ([]models.DrillVideo, error) {
	if f.getDrillVideosPendingTaggingFunc != nil {
		return f.getDrillVideosPendingTaggingFunc(limit)
	}
	return nil, nil
}

func (f *fakeStore) DeleteDrillVideo(videoID int64) error {
	if f.deleteDrillVideoFunc != nil {
		return f.deleteDrillVideoFunc(videoID)
	}
	return nil
}

// fakeMedia 是記憶體版的 MediaStorage
type fakeMedia struct {
	saved     map[string][]byte
	saveErr   error
	absPrefix string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{saved: make(map[string][]byte), absPrefix: "/videos/"}
}

func (m *fakeMedia) SaveVideo(relativePath string, videoData []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved[relativePath] = videoData
	return relativePath, nil
}

func (m *fakeMedia) GetVideoAbsolutePath(relativePath string) (string, error) {
	return m.absPrefix + relativePath, nil
}

func (m *fakeMedia) ReadVideo(relativePath string) ([]byte, error) {
	return m.saved[relativePath], nil
}
