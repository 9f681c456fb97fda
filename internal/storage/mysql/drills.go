package mysql

import (
	"SwingLab-backend/internal/models"
	"database/sql"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// GetDrillVideoByID 查詢單一訓練影片；找不到時回傳 (nil, nil)
func (s *MySQLStore) GetDrillVideoByID(videoID int64) (*models.DrillVideo, error) {
	if videoID == 0 {
		return nil, fmt.Errorf("無效的 VideoID")
	}
	query := `SELECT id, title, source_name, source_id, media_path, transcript, category, tags, problems_addressed, skill_level, summary, status, error_message, duration_secs, published_at, created_at, updated_at FROM drill_videos WHERE id = ?;`
	row := s.db.QueryRow(query, videoID)
	v, err := scanDrillVideo(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("查詢訓練影片 %d 失敗: %w", videoID, err)
	}
	return v, nil
}

// scanDrillVideo 將一列查詢結果掃描進 DrillVideo，
// 供單筆查詢與列表查詢共用（欄位順序必須一致）。
func scanDrillVideo(scan func(dest ...interface{}) error) (*models.DrillVideo, error) {
	var v models.DrillVideo
	var transcriptSQL, summarySQL sql.NullString
	var tagsBytes, problemsBytes []byte
	err := scan(&v.ID, &v.Title, &v.SourceName, &v.SourceID, &v.MediaPath, &transcriptSQL, &v.Category, &tagsBytes, &problemsBytes, &v.SkillLevel, &summarySQL, &v.Status, &v.ErrorMessage, &v.DurationSecs, &v.PublishedAt, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.Transcript = models.JsonNullString{NullString: transcriptSQL}
	v.Summary = models.JsonNullString{NullString: summarySQL}
	if tagsBytes != nil {
		v.Tags = copyBytes(tagsBytes)
	}
	if problemsBytes != nil {
		v.Problems = copyBytes(problemsBytes)
	}
	return &v, nil
}

// ListDrillVideos 依搜尋字串與狀態過濾列出訓練影片。
// 動態 WHERE 用 squirrel 組裝，避免手工拼接佔位符。
func (s *MySQLStore) ListDrillVideos(searchTerm string, status models.DrillStatus, limit int, offset int) ([]models.DrillVideo, error) {
	builder := sq.Select(
		"id", "title", "source_name", "source_id", "media_path", "transcript",
		"category", "tags", "problems_addressed", "skill_level", "summary",
		"status", "error_message", "duration_secs", "published_at", "created_at", "updated_at",
	).From("drill_videos")
	if searchTerm != "" {
		like := "%" + searchTerm + "%"
		builder = builder.Where(sq.Or{
			sq.Like{"title": like},
			sq.Like{"transcript": like},
			sq.Like{"category": like},
		})
	}
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}
	builder = builder.OrderBy("created_at DESC").Limit(uint64(limit)).Offset(uint64(offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("組裝訓練影片列表查詢失敗: %w", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("查詢訓練影片列表失敗: %w", err)
	}
	defer rows.Close()
	var videos []models.DrillVideo
	for rows.Next() {
		v, err := scanDrillVideo(rows.Scan)
		if err != nil {
			log.Printf("錯誤：掃描訓練影片列表結果行失敗: %v", err)
			continue
		}
		videos = append(videos, *v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("處理訓練影片列表結果集時發生錯誤: %w", err)
	}
	log.Printf("資訊：查詢到 %d 個訓練影片。\n", len(videos))
	return videos, nil
}

// FindOrCreateDrillVideo 依 (source_name, source_id) 查找，不存在則新增。
// 匯入流程靠它達成重複匯入冪等。
func (s *MySQLStore) FindOrCreateDrillVideo(video *models.DrillVideo) (int64, error) {
	if video == nil {
		return 0, fmt.Errorf("傳入的 video 物件不得為 nil")
	}
	if video.SourceName == "" || video.SourceID == "" {
		return 0, fmt.Errorf("video 物件必須提供 SourceName 與 SourceID")
	}
	var videoID int64
	queryErr := s.db.QueryRow("SELECT id FROM drill_videos WHERE source_name = ? AND source_id = ?", video.SourceName, video.SourceID).Scan(&videoID)
	if queryErr == sql.ErrNoRows {
		log.Printf("資訊：資料庫中未找到訓練影片 (Source: %s, ID: %s)，正在新增記錄...\n", video.SourceName, video.SourceID)
		status := video.Status
		if status == "" {
			status = models.DrillStatusProcessing
		}
		now := time.Now()
		insertQuery := `INSERT INTO drill_videos (title, source_name, source_id, media_path, transcript, status, duration_secs, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
		res, insertErr := s.db.Exec(insertQuery, video.Title, video.SourceName, video.SourceID, video.MediaPath, video.Transcript, status, video.DurationSecs, now, now)
		if insertErr != nil {
			return 0, fmt.Errorf("插入新訓練影片記錄失敗 (Source: %s, ID: %s): %w", video.SourceName, video.SourceID, insertErr)
		}
		videoID, insertErr = res.LastInsertId()
		if insertErr != nil {
			return 0, fmt.Errorf("獲取新插入訓練影片的 ID 失敗: %w", insertErr)
		}
		log.Printf("資訊：新增訓練影片記錄成功，ID: %d (Source: %s, ID: %s)\n", videoID, video.SourceName, video.SourceID)
		return videoID, nil
	} else if queryErr != nil {
		return 0, fmt.Errorf("查找訓練影片失敗 (Source: %s, ID: %s): %w", video.SourceName, video.SourceID, queryErr)
	}
	log.Printf("資訊：訓練影片已存在，ID: %d (Source: %s, ID: %s)，跳過新增。\n", videoID, video.SourceName, video.SourceID)
	return videoID, nil
}

// UpdateDrillVideo 更新後台可編輯的欄位；狀態改為 published 時寫入 published_at
func (s *MySQLStore) UpdateDrillVideo(video *models.DrillVideo) error {
	if video == nil || video.ID == 0 {
		return fmt.Errorf("無效的訓練影片或 ID 為空")
	}
	publishedAt := video.PublishedAt
	if video.Status == models.DrillStatusPublished && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	query := `UPDATE drill_videos SET title = ?, transcript = ?, category = ?, tags = ?, problems_addressed = ?, skill_level = ?, summary = ?, status = ?, duration_secs = ?, published_at = ?, updated_at = ? WHERE id = ?;`
	_, err := s.db.Exec(query, video.Title, video.Transcript, video.Category, video.Tags, video.Problems, video.SkillLevel, video.Summary, video.Status, video.DurationSecs, publishedAt, time.Now(), video.ID)
	if err != nil {
		return fmt.Errorf("更新訓練影片 %d 失敗: %w", video.ID, err)
	}
	log.Printf("資訊：訓練影片 %d 已更新 (狀態: %s)。\n", video.ID, video.Status)
	return nil
}

// UpdateDrillVideoStatus 只更新管線狀態與錯誤訊息
func (s *MySQLStore) UpdateDrillVideoStatus(videoID int64, status models.DrillStatus, errorMessage sql.NullString) error {
	if videoID == 0 {
		return fmt.Errorf("無效的 VideoID")
	}
	query := "UPDATE drill_videos SET status = ?, error_message = ?, updated_at = ? WHERE id = ?"
	_, err := s.db.Exec(query, status, errorMessage, time.Now(), videoID)
	if err != nil {
		return fmt.Errorf("更新訓練影片狀態失敗 (VideoID: %d, Status: %s): %w", videoID, status, err)
	}
	log.Printf("資訊：訓練影片狀態已更新 (VideoID: %d, Status: %s)\n", videoID, status)
	return nil
}

// GetDrillVideosPendingTagging 查詢等待自動標記的訓練影片（已有逐字稿的 draft）
func (s *MySQLStore) GetDrillVideosPendingTagging(limit int) ([]models.DrillVideo, error) {
	return s.ListDrillVideos("", models.DrillStatusDraft, limit, 0)
}

// DeleteDrillVideo 刪除訓練影片記錄
func (s *MySQLStore) DeleteDrillVideo(videoID int64) error {
	if videoID == 0 {
		return fmt.Errorf("無效的 VideoID")
	}
	_, err := s.db.Exec("DELETE FROM drill_videos WHERE id = ?", videoID)
	if err != nil {
		return fmt.Errorf("刪除訓練影片 %d 失敗: %w", videoID, err)
	}
	log.Printf("資訊：訓練影片 %d 已刪除。\n", videoID)
	return nil
}
