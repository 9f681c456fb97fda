package mysql

import (
	"SwingLab-backend/internal/models"
	"database/sql"
	"fmt"
	"log"
)

// GetPlayerByID 查詢球員；找不到時回傳 (nil, nil)
func (s *MySQLStore) GetPlayerByID(playerID int64) (*models.Player, error) {
	if playerID == 0 {
		return nil, fmt.Errorf("無效的 PlayerID")
	}
	query := `SELECT id, name, phone, email, email_opt_in, slack_user_id, created_at FROM players WHERE id = ?;`
	row := s.db.QueryRow(query, playerID)
	var p models.Player
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.EmailOptIn, &p.SlackUserID, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("查詢球員 %d 失敗: %w", playerID, err)
	}
	return &p, nil
}

// SetPlayerEmailOptIn 更新球員的電子郵件訂閱旗標
func (s *MySQLStore) SetPlayerEmailOptIn(playerID int64, optIn bool) error {
	if playerID == 0 {
		return fmt.Errorf("無效的 PlayerID")
	}
	query := "UPDATE players SET email_opt_in = ? WHERE id = ?"
	_, err := s.db.Exec(query, optIn, playerID)
	if err != nil {
		return fmt.Errorf("更新球員 %d 的訂閱旗標失敗: %w", playerID, err)
	}
	log.Printf("資訊：球員 %d 的 email_opt_in 已更新為 %t\n", playerID, optIn)
	return nil
}
