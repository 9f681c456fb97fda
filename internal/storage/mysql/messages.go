package mysql

import (
	"SwingLab-backend/internal/models"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// GetMessageTemplate 查詢 trigger 的範本；找不到時回傳 (nil, nil)
func (s *MySQLStore) GetMessageTemplate(triggerName string) (*models.MessageTemplate, error) {
	if triggerName == "" {
		return nil, fmt.Errorf("無效的 TriggerName")
	}
	query := `SELECT trigger_name, delay_minutes, body FROM message_templates WHERE trigger_name = ?;`
	var tpl models.MessageTemplate
	err := s.db.QueryRow(query, triggerName).Scan(&tpl.TriggerName, &tpl.DelayMinutes, &tpl.Body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("查詢簡訊範本 '%s' 失敗: %w", triggerName, err)
	}
	return &tpl, nil
}

// InsertScheduledMessage 新增一筆待發送的延遲簡訊
func (s *MySQLStore) InsertScheduledMessage(msg *models.ScheduledMessage) (int64, error) {
	if msg == nil || msg.SessionID == "" || msg.TriggerName == "" {
		return 0, fmt.Errorf("無效的延遲簡訊記錄")
	}
	query := `INSERT INTO scheduled_messages (session_id, trigger_name, send_at, status, created_at) VALUES (?, ?, ?, ?, ?);`
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	status := msg.Status
	if status == "" {
		status = models.ScheduledPending
	}
	res, err := s.db.Exec(query, msg.SessionID, msg.TriggerName, msg.SendAt, status, createdAt)
	if err != nil {
		return 0, fmt.Errorf("新增延遲簡訊失敗 (SessionID: %s, Trigger: %s): %w", msg.SessionID, msg.TriggerName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("獲取新延遲簡訊的 ID 失敗: %w", err)
	}
	log.Printf("資訊：延遲簡訊已排入佇列 (ID: %d, SessionID: %s, Trigger: %s, SendAt: %s)\n", id, msg.SessionID, msg.TriggerName, msg.SendAt.Format(time.RFC3339))
	return id, nil
}

// GetDueScheduledMessages 查詢已到期且仍為 pending 的延遲簡訊
func (s *MySQLStore) GetDueScheduledMessages(now time.Time, limit int) ([]models.ScheduledMessage, error) {
	query := `SELECT id, session_id, trigger_name, send_at, status, error_message, created_at, sent_at FROM scheduled_messages WHERE status = ? AND send_at <= ? ORDER BY send_at ASC LIMIT ?;`
	rows, err := s.db.Query(query, models.ScheduledPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("查詢到期延遲簡訊失敗: %w", err)
	}
	defer rows.Close()
	var msgs []models.ScheduledMessage
	for rows.Next() {
		var m models.ScheduledMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.TriggerName, &m.SendAt, &m.Status, &m.ErrorMessage, &m.CreatedAt, &m.SentAt); err != nil {
			log.Printf("錯誤：掃描延遲簡訊記錄失敗: %v", err)
			continue
		}
		msgs = append(msgs, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("處理延遲簡訊結果集時發生錯誤: %w", err)
	}
	return msgs, nil
}

// ClaimScheduledMessage 以條件更新認領一筆 pending 的延遲簡訊。
// 回傳 false 表示已被其他發送者搶先，呼叫端應跳過。
func (s *MySQLStore) ClaimScheduledMessage(id int64, status models.ScheduledMessageStatus) (bool, error) {
	query := "UPDATE scheduled_messages SET status = ? WHERE id = ? AND status = ?"
	res, err := s.db.Exec(query, status, id, models.ScheduledPending)
	if err != nil {
		return false, fmt.Errorf("認領延遲簡訊 %d 失敗: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("讀取延遲簡訊 %d 的認領結果失敗: %w", id, err)
	}
	return affected == 1, nil
}

// FinishScheduledMessage 寫回延遲簡訊的最終狀態
func (s *MySQLStore) FinishScheduledMessage(id int64, status models.ScheduledMessageStatus, errorMessage sql.NullString) error {
	query := "UPDATE scheduled_messages SET status = ?, error_message = ?, sent_at = ? WHERE id = ?"
	_, err := s.db.Exec(query, status, errorMessage, sql.NullTime{Time: time.Now(), Valid: true}, id)
	if err != nil {
		return fmt.Errorf("更新延遲簡訊 %d 狀態失敗: %w", id, err)
	}
	return nil
}

// InsertMessageLog 記錄一次對外發送
func (s *MySQLStore) InsertMessageLog(entry *models.MessageLog) error {
	if entry == nil || entry.Recipient == "" {
		return fmt.Errorf("無效的發送記錄")
	}
	query := `INSERT INTO message_logs (session_id, channel, recipient, body, success, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?);`
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(query, entry.SessionID, entry.Channel, entry.Recipient, entry.Body, entry.Success, entry.ErrorMessage, createdAt)
	if err != nil {
		return fmt.Errorf("寫入發送記錄失敗 (Recipient: %s): %w", entry.Recipient, err)
	}
	return nil
}
