package services

import (
	"SwingLab-backend/internal/clients/onform"
	"SwingLab-backend/internal/config"
	"SwingLab-backend/internal/models"
	"SwingLab-backend/internal/storage/media"
	"SwingLab-backend/internal/web/handlers"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// autoTagBatchSize 是單次排程任務最多處理的待標記影片數
const autoTagBatchSize = 10

// sourceNameOnForm 是匯入來源的識別字串，寫入 drill_videos.source_name
const sourceNameOnForm = "onform"

// DrillService 是訓練影片內容管線：從外部來源匯入影片、
// 接收逐字稿、呼叫 Gemini 自動標記，並管理後台的審核與發布。
type DrillService struct {
	cfg       *config.Config
	db        handlers.DBStore
	media     MediaStorage
	tagger    DrillTagger
	recSource RecordingSource
}

// NewDrillService 建立 DrillService 實例。
// recSource 允許為 nil（未設定匯入來源時 ImportRecordings 會回報錯誤）。
func NewDrillService(cfg *config.Config, db handlers.DBStore, mediaStorage MediaStorage, tagger DrillTagger, recSource RecordingSource) (*DrillService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("DrillService：設定不得為空")
	}
	if db == nil {
		return nil, fmt.Errorf("DrillService：DBStore 不得為空")
	}
	if mediaStorage == nil {
		return nil, fmt.Errorf("DrillService：MediaStorage 不得為空")
	}
	if tagger == nil {
		return nil, fmt.Errorf("DrillService：DrillTagger 不得為空")
	}
	log.Println("資訊：DrillService 初始化完成。")
	return &DrillService{cfg: cfg, db: db, media: mediaStorage, tagger: tagger, recSource: recSource}, nil
}

// ImportRecordings 從匯入來源拉取最近的錄影並逐筆落地。
// 已匯入過的來源 ID 會直接重用既有記錄（冪等）；
// 個別失敗不中斷整批，逐筆記在彙總結果裡。
func (s *DrillService) ImportRecordings(ctx context.Context, limit int) (*models.ImportSummary, error) {
	if s.recSource == nil {
		return nil, fmt.Errorf("%w: 未設定影片匯入來源", models.ErrUpstream)
	}
	recordings, err := s.recSource.ListRecordings(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: 列出來源錄影失敗: %v", models.ErrUpstream, err)
	}

	summary := &models.ImportSummary{Total: len(recordings)}
	for _, rec := range recordings {
		item := models.ImportItemResult{SourceID: rec.ID, Title: rec.Title}
		videoID, err := s.importOne(ctx, rec)
		if err != nil {
			log.Printf("錯誤：[DrillService] 匯入錄影 %s 失敗: %v\n", rec.ID, err)
			item.Error = err.Error()
			summary.Failed++
		} else {
			item.VideoID = videoID
			item.Imported = true
			summary.Imported++
		}
		summary.Items = append(summary.Items, item)
	}
	log.Printf("資訊：[DrillService] 匯入完成：共 %d 筆，成功 %d，失敗 %d。\n",
		summary.Total, summary.Imported, summary.Failed)
	return summary, nil
}

// importOne 下載單筆錄影、寫入儲存並建立（或重用）目錄記錄
func (s *DrillService) importOne(ctx context.Context, rec onform.Recording) (int64, error) {
	data, err := s.recSource.DownloadRecording(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("下載錄影失敗: %w", err)
	}
	relativePath := media.DrillVideoKey(sourceNameOnForm, rec.ID, "video.mp4")
	storedPath, err := s.media.SaveVideo(relativePath, data)
	if err != nil {
		return 0, fmt.Errorf("儲存影片失敗: %w", err)
	}
	video := &models.DrillVideo{
		Title:        rec.Title,
		SourceName:   sourceNameOnForm,
		SourceID:     rec.ID,
		MediaPath:    storedPath,
		Status:       models.DrillStatusProcessing,
		DurationSecs: sql.NullInt64{Int64: rec.DurationSecs, Valid: rec.DurationSecs > 0},
	}
	return s.db.FindOrCreateDrillVideo(video)
}

// AttachTranscript 為處理中的影片掛上逐字稿，狀態推進為 draft。
func (s *DrillService) AttachTranscript(videoID int64, transcript string) (*models.DrillVideo, error) {
	if transcript == "" {
		return nil, fmt.Errorf("%w: 逐字稿不得為空", models.ErrInvalidArgument)
	}
	video, err := s.db.GetDrillVideoByID(videoID)
	if err != nil {
		return nil, fmt.Errorf("查詢訓練影片失敗: %w", err)
	}
	if video == nil {
		return nil, fmt.Errorf("%w: 訓練影片 %d 不存在", models.ErrNotFound, videoID)
	}
	video.Transcript = models.JsonNullString{NullString: sql.NullString{String: transcript, Valid: true}}
	if video.Status == models.DrillStatusProcessing {
		video.Status = models.DrillStatusDraft
	}
	if err := s.db.UpdateDrillVideo(video); err != nil {
		return nil, fmt.Errorf("更新訓練影片失敗: %w", err)
	}
	return video, nil
}

// AutoTag 對單支影片執行 AI 自動標記：draft → analyzing →
// ready_for_review（autoPublish 為真時直接 published）；
// 上游或解析失敗時標記為 processing_failed。
// 狀態只能往前推進：已審核或已發布的影片不得重新標記，
// processing_failed 例外，允許人工介入後重試。
func (s *DrillService) AutoTag(ctx context.Context, videoID int64, autoPublish bool) (*models.DrillVideo, error) {
	video, err := s.db.GetDrillVideoByID(videoID)
	if err != nil {
		return nil, fmt.Errorf("查詢訓練影片失敗: %w", err)
	}
	if video == nil {
		return nil, fmt.Errorf("%w: 訓練影片 %d 不存在", models.ErrNotFound, videoID)
	}
	if !isForwardTransition(video.Status, models.DrillStatusAnalyzing) && video.Status != models.DrillStatusProcessingFailed {
		return nil, fmt.Errorf("%w: 影片 %d 的狀態 %s 不允許自動標記", models.ErrInvalidArgument, videoID, video.Status)
	}
	if !video.Transcript.Valid || video.Transcript.String == "" {
		return nil, fmt.Errorf("%w: 訓練影片 %d 尚無逐字稿", models.ErrInvalidArgument, videoID)
	}

	promptVersionKey := s.cfg.Prompts.DrillTagging.CurrentVersion
	promptTemplate, ok := s.cfg.Prompts.DrillTagging.Versions[promptVersionKey]
	if !ok || promptTemplate == "" {
		return nil, fmt.Errorf("未設定有效的自動標記 Prompt (版本: %s)", promptVersionKey)
	}

	if err := s.db.UpdateDrillVideoStatus(videoID, models.DrillStatusAnalyzing, sql.NullString{}); err != nil {
		log.Printf("警告：[DrillService] 更新影片 %d 狀態為 analyzing 失敗: %v\n", videoID, err)
	}

	rawJSON, err := s.tagger.TagDrillTranscript(ctx, video.Transcript.String, promptTemplate)
	if err != nil {
		s.markFailed(videoID, err)
		return nil, fmt.Errorf("%w: 自動標記失敗: %v", models.ErrUpstream, err)
	}
	var analysis models.DrillAnalysis
	if err := json.Unmarshal([]byte(rawJSON), &analysis); err != nil {
		s.markFailed(videoID, err)
		return nil, fmt.Errorf("%w: 解析標記回應失敗: %v", models.ErrParse, err)
	}

	tagsJSON, err := json.Marshal(analysis.Tags)
	if err != nil {
		return nil, fmt.Errorf("序列化 tags 失敗: %w", err)
	}
	problemsJSON, err := json.Marshal(analysis.Problems)
	if err != nil {
		return nil, fmt.Errorf("序列化 problems 失敗: %w", err)
	}
	video.Category = sql.NullString{String: analysis.Category, Valid: analysis.Category != ""}
	video.Tags = tagsJSON
	video.Problems = problemsJSON
	video.SkillLevel = sql.NullString{String: analysis.SkillLevel, Valid: analysis.SkillLevel != ""}
	video.Summary = models.JsonNullString{NullString: sql.NullString{String: analysis.Summary, Valid: analysis.Summary != ""}}
	if autoPublish {
		video.Status = models.DrillStatusPublished
		video.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	} else {
		video.Status = models.DrillStatusReadyForReview
	}
	video.ErrorMessage = sql.NullString{}
	video.UpdatedAt = time.Now()

	if err := s.db.UpdateDrillVideo(video); err != nil {
		return nil, fmt.Errorf("儲存標記結果失敗: %w", err)
	}
	log.Printf("資訊：[DrillService] 影片 %d 自動標記完成 (分類: %s)。\n", videoID, analysis.Category)
	return video, nil
}

// RunPendingAutoTag 對所有等待標記的 draft 影片逐支執行自動標記，
// 供排程器定期呼叫。個別失敗不中斷整批。回傳成功標記的支數。
func (s *DrillService) RunPendingAutoTag(ctx context.Context) (int, error) {
	pending, err := s.db.GetDrillVideosPendingTagging(autoTagBatchSize)
	if err != nil {
		return 0, fmt.Errorf("查詢待標記影片失敗: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	log.Printf("資訊：[DrillService] 有 %d 支影片等待自動標記。\n", len(pending))
	tagged := 0
	for _, video := range pending {
		if !video.Transcript.Valid || video.Transcript.String == "" {
			continue
		}
		if _, err := s.AutoTag(ctx, video.ID, false); err != nil {
			log.Printf("錯誤：[DrillService] 影片 %d 自動標記失敗: %v\n", video.ID, err)
			continue
		}
		tagged++
	}
	return tagged, nil
}

// UpdateVideo 套用後台編輯。狀態只能沿管線往前推進，不允許往回走。
func (s *DrillService) UpdateVideo(video *models.DrillVideo) (*models.DrillVideo, error) {
	if video == nil || video.ID == 0 {
		return nil, fmt.Errorf("%w: 無效的影片 ID", models.ErrInvalidArgument)
	}
	existing, err := s.db.GetDrillVideoByID(video.ID)
	if err != nil {
		return nil, fmt.Errorf("查詢訓練影片失敗: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: 訓練影片 %d 不存在", models.ErrNotFound, video.ID)
	}
	if video.Status != "" && !isForwardTransition(existing.Status, video.Status) {
		return nil, fmt.Errorf("%w: 不允許的狀態轉換 %s → %s", models.ErrInvalidArgument, existing.Status, video.Status)
	}
	if video.Status == "" {
		video.Status = existing.Status
	}
	video.SourceName = existing.SourceName
	video.SourceID = existing.SourceID
	video.MediaPath = existing.MediaPath
	video.PublishedAt = existing.PublishedAt
	if video.Status == models.DrillStatusPublished && !existing.PublishedAt.Valid {
		video.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	if err := s.db.UpdateDrillVideo(video); err != nil {
		return nil, fmt.Errorf("更新訓練影片失敗: %w", err)
	}
	return s.db.GetDrillVideoByID(video.ID)
}

// DeleteVideo 刪除目錄記錄並嘗試移除媒體檔案
func (s *DrillService) DeleteVideo(videoID int64) error {
	video, err := s.db.GetDrillVideoByID(videoID)
	if err != nil {
		return fmt.Errorf("查詢訓練影片失敗: %w", err)
	}
	if video == nil {
		return fmt.Errorf("%w: 訓練影片 %d 不存在", models.ErrNotFound, videoID)
	}
	if err := s.db.DeleteDrillVideo(videoID); err != nil {
		return fmt.Errorf("刪除訓練影片記錄失敗: %w", err)
	}
	if fsStorage, ok := s.media.(interface{ DeleteVideo(string) error }); ok && video.MediaPath != "" {
		if err := fsStorage.DeleteVideo(video.MediaPath); err != nil {
			log.Printf("警告：[DrillService] 影片 %d 的媒體檔案移除失敗: %v\n", videoID, err)
		}
	}
	return nil
}

// drillStatusRank 給每個管線狀態一個序位，用於禁止往回走的檢查。
// processing_failed 視為終點旁支，任何狀態都可以進入它。
func drillStatusRank(status models.DrillStatus) int {
	switch status {
	case models.DrillStatusProcessing:
		return 0
	case models.DrillStatusDraft:
		return 1
	case models.DrillStatusAnalyzing:
		return 2
	case models.DrillStatusReadyForReview:
		return 3
	case models.DrillStatusPublished:
		return 4
	default:
		return -1
	}
}

func isForwardTransition(from, to models.DrillStatus) bool {
	if from == to {
		return true
	}
	if to == models.DrillStatusProcessingFailed {
		return true
	}
	fromRank := drillStatusRank(from)
	toRank := drillStatusRank(to)
	if fromRank < 0 || toRank < 0 {
		return false
	}
	return toRank > fromRank
}

func (s *DrillService) markFailed(videoID int64, cause error) {
	errMsg := sql.NullString{String: cause.Error(), Valid: true}
	if err := s.db.UpdateDrillVideoStatus(videoID, models.DrillStatusProcessingFailed, errMsg); err != nil {
		log.Printf("警告：[DrillService] 標記影片 %d 為 processing_failed 失敗: %v\n", videoID, err)
	}
}
