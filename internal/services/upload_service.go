package services

import (
	"SwingLab-backend/internal/models"
	"SwingLab-backend/internal/storage/media"
	"SwingLab-backend/internal/web/handlers"
	"database/sql"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"time"
)

// UploadService 是上傳編排器：驗證場次與索引、寫入影片、
// 在單一交易內更新帳本並推進場次狀態。
type UploadService struct {
	db            handlers.DBStore
	media         MediaStorage
	publicBaseURL string
}

// NewUploadService 建立 UploadService 實例
func NewUploadService(db handlers.DBStore, mediaStorage MediaStorage, publicBaseURL string) (*UploadService, error) {
	if db == nil {
		return nil, fmt.Errorf("UploadService：DBStore 不得為空")
	}
	if mediaStorage == nil {
		return nil, fmt.Errorf("UploadService：MediaStorage 不得為空")
	}
	if publicBaseURL == "" {
		return nil, fmt.Errorf("UploadService：PublicBaseURL 不得為空")
	}
	log.Println("資訊：UploadService 初始化完成。")
	return &UploadService{db: db, media: mediaStorage, publicBaseURL: publicBaseURL}, nil
}

// UploadSwing 處理單支揮棒影片的上傳。
// 影片先寫入儲存，帳本更新（upsert + 重算 + 狀態推進）在一個交易內完成；
// 儲存成功但交易失敗時會留下孤兒檔案，只記錄警告，不會弄髒帳本。
func (s *UploadService) UploadSwing(sessionID string, swingIndex int, fileName string, data []byte) (*models.UploadResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId 不得為空", models.ErrInvalidArgument)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: 影片內容不得為空", models.ErrInvalidArgument)
	}

	session, err := s.db.GetSessionByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("查詢場次失敗: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: 場次 %s 不存在", models.ErrNotFound, sessionID)
	}
	if swingIndex < 0 || swingIndex >= session.SwingsRequired {
		return nil, fmt.Errorf("%w: swingIndex %d 超出範圍 (需求 %d 支)", models.ErrInvalidArgument, swingIndex, session.SwingsRequired)
	}

	ext := filepath.Ext(fileName)
	relativePath := media.SwingVideoKey(sessionID, swingIndex, ext)
	storedPath, err := s.media.SaveVideo(relativePath, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	videoURL := s.publicBaseURL + path.Join("/media", filepath.ToSlash(storedPath))

	swing := &models.Swing{
		SessionID:        sessionID,
		SwingIndex:       swingIndex,
		VideoPath:        storedPath,
		VideoURL:         videoURL,
		OriginalFileName: sql.NullString{String: fileName, Valid: fileName != ""},
		UploadedAt:       time.Now(),
		Validated:        true,
	}
	uploaded, err := s.db.UpsertSwingTx(swing, session.SwingsRequired)
	if err != nil {
		log.Printf("警告：[UploadService] 影片已寫入 '%s' 但帳本更新失敗，留下孤兒檔案: %v", storedPath, err)
		return nil, fmt.Errorf("更新揮棒帳本失敗: %w", err)
	}

	return &models.UploadResult{
		SwingIndex:      swingIndex,
		SwingsUploaded:  uploaded,
		SwingsRequired:  session.SwingsRequired,
		ReadyForPayment: uploaded >= session.SwingsRequired,
		VideoURL:        videoURL,
	}, nil
}
