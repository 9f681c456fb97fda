package mysql

import (
	"SwingLab-backend/internal/models"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// GetSessionByID 查詢單一場次；找不到時回傳 (nil, nil)
func (s *MySQLStore) GetSessionByID(sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("無效的 SessionID")
	}
	query := `SELECT id, player_id, swings_required, status, created_at, updated_at FROM sessions WHERE id = ?;`
	row := s.db.QueryRow(query, sessionID)
	var sess models.Session
	err := row.Scan(&sess.ID, &sess.PlayerID, &sess.SwingsRequired, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("查詢場次 %s 失敗: %w", sessionID, err)
	}
	return &sess, nil
}

// GetSwingsBySession 查詢場次的所有揮棒記錄，依索引排序
func (s *MySQLStore) GetSwingsBySession(sessionID string) ([]models.Swing, error) {
	query := `SELECT id, session_id, swing_index, video_path, video_url, original_file_name, uploaded_at, validated FROM swings WHERE session_id = ? ORDER BY swing_index ASC;`
	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("查詢場次 %s 的揮棒記錄失敗: %w", sessionID, err)
	}
	defer rows.Close()
	var swings []models.Swing
	for rows.Next() {
		var sw models.Swing
		if err := rows.Scan(&sw.ID, &sw.SessionID, &sw.SwingIndex, &sw.VideoPath, &sw.VideoURL, &sw.OriginalFileName, &sw.UploadedAt, &sw.Validated); err != nil {
			log.Printf("錯誤：掃描揮棒記錄失敗 (場次 %s): %v", sessionID, err)
			continue
		}
		swings = append(swings, sw)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("處理揮棒記錄結果集時發生錯誤: %w", err)
	}
	return swings, nil
}

// UpdateSessionStatus 更新場次狀態
func (s *MySQLStore) UpdateSessionStatus(sessionID string, status models.SessionStatus) error {
	if sessionID == "" {
		return fmt.Errorf("無效的 SessionID")
	}
	query := "UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?"
	_, err := s.db.Exec(query, status, time.Now(), sessionID)
	if err != nil {
		return fmt.Errorf("更新場次狀態失敗 (SessionID: %s, Status: %s): %w", sessionID, status, err)
	}
	log.Printf("資訊：場次狀態已更新 (SessionID: %s, Status: %s)\n", sessionID, status)
	return nil
}

// UpsertSwingTx 在單一交易內完成：揮棒記錄 upsert、重算已上傳數、
// 視門檻推進場次狀態。回傳上傳後的數量。
// (session_id, swing_index) 有唯一索引，重複上傳走 ON DUPLICATE KEY UPDATE。
func (s *MySQLStore) UpsertSwingTx(swing *models.Swing, swingsRequired int) (int, error) {
	if swing == nil || swing.SessionID == "" {
		return 0, fmt.Errorf("無效的揮棒記錄或 SessionID 為空")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("開啟交易失敗: %w", err)
	}
	defer tx.Rollback()

	upsertQuery := `
		INSERT INTO swings (session_id, swing_index, video_path, video_url, original_file_name, uploaded_at, validated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			video_path = VALUES(video_path), video_url = VALUES(video_url),
			original_file_name = VALUES(original_file_name),
			uploaded_at = VALUES(uploaded_at), validated = VALUES(validated);`
	uploadedAt := swing.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}
	if _, err := tx.Exec(upsertQuery, swing.SessionID, swing.SwingIndex, swing.VideoPath, swing.VideoURL, swing.OriginalFileName, uploadedAt, swing.Validated); err != nil {
		return 0, fmt.Errorf("upsert 揮棒記錄失敗 (SessionID: %s, Index: %d): %w", swing.SessionID, swing.SwingIndex, err)
	}

	var uploaded int
	if err := tx.QueryRow("SELECT COUNT(*) FROM swings WHERE session_id = ?", swing.SessionID).Scan(&uploaded); err != nil {
		return 0, fmt.Errorf("重算場次 %s 的揮棒數失敗: %w", swing.SessionID, err)
	}

	// 數量達標才允許推進到 pending_payment；已離開 uploading 的場次不再回寫
	newStatus := models.SessionStatusUploading
	if uploaded >= swingsRequired {
		newStatus = models.SessionStatusPendingPayment
	}
	statusQuery := "UPDATE sessions SET status = ?, updated_at = ? WHERE id = ? AND status IN (?, ?)"
	if _, err := tx.Exec(statusQuery, newStatus, time.Now(), swing.SessionID, models.SessionStatusUploading, models.SessionStatusPendingPayment); err != nil {
		return 0, fmt.Errorf("更新場次 %s 狀態失敗: %w", swing.SessionID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("提交揮棒上傳交易失敗 (SessionID: %s): %w", swing.SessionID, err)
	}
	log.Printf("資訊：揮棒記錄已寫入 (SessionID: %s, Index: %d, 已上傳: %d/%d)\n", swing.SessionID, swing.SwingIndex, uploaded, swingsRequired)
	return uploaded, nil
}

// GetScoresBySession 查詢場次的 4B 評分；找不到時回傳 (nil, nil)
func (s *MySQLStore) GetScoresBySession(sessionID string) (*models.AnalysisScores, error) {
	query := `SELECT session_id, brain, body, bat, ball, composite, motor_profile, leaks, prompt_version, created_at, updated_at FROM session_scores WHERE session_id = ?;`
	row := s.db.QueryRow(query, sessionID)
	var sc models.AnalysisScores
	var motorProfileSQL, promptVersionSQL sql.NullString
	var leaksBytes []byte
	err := row.Scan(&sc.SessionID, &sc.Brain, &sc.Body, &sc.Bat, &sc.Ball, &sc.Composite, &motorProfileSQL, &leaksBytes, &promptVersionSQL, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("查詢場次 %s 的評分失敗: %w", sessionID, err)
	}
	if motorProfileSQL.Valid {
		sc.MotorProfile = &models.JsonNullString{NullString: motorProfileSQL}
	}
	if leaksBytes != nil {
		sc.Leaks = copyBytes(leaksBytes)
	}
	if promptVersionSQL.Valid {
		sc.PromptVersion = promptVersionSQL.String
	}
	return &sc, nil
}

// SaveScores 寫入或覆寫場次評分（一個場次一筆）
func (s *MySQLStore) SaveScores(scores *models.AnalysisScores) error {
	if scores == nil || scores.SessionID == "" {
		return fmt.Errorf("無效的評分結果或 SessionID 為空")
	}
	query := `
		INSERT INTO session_scores (session_id, brain, body, bat, ball, composite, motor_profile, leaks, prompt_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			brain = VALUES(brain), body = VALUES(body), bat = VALUES(bat), ball = VALUES(ball),
			composite = VALUES(composite), motor_profile = VALUES(motor_profile),
			leaks = VALUES(leaks), prompt_version = VALUES(prompt_version), updated_at = VALUES(updated_at);`

	var motorProfile sql.NullString
	if scores.MotorProfile != nil {
		motorProfile = scores.MotorProfile.NullString
	}
	var promptVersion sql.NullString
	if scores.PromptVersion != "" {
		promptVersion = sql.NullString{String: scores.PromptVersion, Valid: true}
	}
	createdAt := scores.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := scores.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := s.db.Exec(query, scores.SessionID, scores.Brain, scores.Body, scores.Bat, scores.Ball, scores.Composite, motorProfile, scores.Leaks, promptVersion, createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("儲存評分到資料庫失敗 (SessionID: %s): %w", scores.SessionID, err)
	}
	log.Printf("資訊：評分已儲存 (SessionID: %s, PromptVersion: %s)\n", scores.SessionID, scores.PromptVersion)
	return nil
}
