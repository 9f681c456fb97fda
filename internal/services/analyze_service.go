package services

import (
	"SwingLab-backend/internal/config"
	"SwingLab-backend/internal/models"
	"SwingLab-backend/internal/web/handlers"
	"context"
	"fmt"
	"log"
	"time"
)

// AnalyzeService 是分析觸發器：對已上傳齊全的場次計算 4B 評分，
// 已有評分且未要求重算時直接回傳快取結果。
type AnalyzeService struct {
	cfg    *config.Config
	db     handlers.DBStore
	media  MediaStorage
	scorer SwingScorer
	notify *NotifyService
}

// NewAnalyzeService 建立 AnalyzeService 實例。
// notify 為 nil 時分析完成後不發送結果通知。
func NewAnalyzeService(cfg *config.Config, db handlers.DBStore, mediaStorage MediaStorage, scorer SwingScorer, notify *NotifyService) (*AnalyzeService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("AnalyzeService：設定不得為空")
	}
	if db == nil {
		return nil, fmt.Errorf("AnalyzeService：DBStore 不得為空")
	}
	if mediaStorage == nil {
		return nil, fmt.Errorf("AnalyzeService：MediaStorage 不得為空")
	}
	if scorer == nil {
		return nil, fmt.Errorf("AnalyzeService：SwingScorer 不得為空")
	}
	log.Println("資訊：AnalyzeService 初始化完成。")
	return &AnalyzeService{cfg: cfg, db: db, media: mediaStorage, scorer: scorer, notify: notify}, nil
}

// AnalyzeSession 回傳場次的 4B 評分。
// 第二個回傳值表示結果是否來自快取；重複的非強制呼叫是冪等的。
func (s *AnalyzeService) AnalyzeSession(ctx context.Context, sessionID string, forceRecompute bool) (*models.AnalysisScores, bool, error) {
	if sessionID == "" {
		return nil, false, fmt.Errorf("%w: sessionId 不得為空", models.ErrInvalidArgument)
	}
	session, err := s.db.GetSessionByID(sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("查詢場次失敗: %w", err)
	}
	if session == nil {
		return nil, false, fmt.Errorf("%w: 場次 %s 不存在", models.ErrNotFound, sessionID)
	}

	if !forceRecompute {
		cached, err := s.db.GetScoresBySession(sessionID)
		if err != nil {
			return nil, false, fmt.Errorf("查詢既有評分失敗: %w", err)
		}
		if cached != nil {
			log.Printf("資訊：[AnalyzeService] 場次 %s 已有評分，回傳快取結果。\n", sessionID)
			return cached, true, nil
		}
	}

	swings, err := s.db.GetSwingsBySession(sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("查詢揮棒記錄失敗: %w", err)
	}
	if len(swings) == 0 {
		return nil, false, fmt.Errorf("%w: 場次 %s 沒有任何揮棒影片", models.ErrNotFound, sessionID)
	}

	if err := s.db.UpdateSessionStatus(sessionID, models.SessionStatusAnalyzing); err != nil {
		log.Printf("警告：[AnalyzeService] 更新場次 %s 狀態為 analyzing 失敗: %v\n", sessionID, err)
	}

	videoPaths := make([]string, 0, len(swings))
	for _, sw := range swings {
		absPath, err := s.media.GetVideoAbsolutePath(sw.VideoPath)
		if err != nil {
			s.db.UpdateSessionStatus(sessionID, models.SessionStatusFailed)
			return nil, false, fmt.Errorf("%w: 揮棒 %d 的影片遺失: %v", models.ErrStorage, sw.SwingIndex, err)
		}
		videoPaths = append(videoPaths, absPath)
	}

	promptVersionKey := s.cfg.Prompts.SwingScoring.CurrentVersion
	promptTemplate, ok := s.cfg.Prompts.SwingScoring.Versions[promptVersionKey]
	if !ok || promptTemplate == "" {
		return nil, false, fmt.Errorf("未設定有效的揮棒評分 Prompt (版本: %s)", promptVersionKey)
	}
	log.Printf("資訊：[AnalyzeService] 使用 SwingScoring Prompt 版本: %s\n", promptVersionKey)

	scores, err := s.scorer.ScoreSwings(ctx, videoPaths, promptTemplate)
	if err != nil {
		s.db.UpdateSessionStatus(sessionID, models.SessionStatusFailed)
		return nil, false, fmt.Errorf("%w: 揮棒評分失敗: %v", models.ErrUpstream, err)
	}
	if scores == nil {
		s.db.UpdateSessionStatus(sessionID, models.SessionStatusFailed)
		return nil, false, fmt.Errorf("%w: 評分上游回傳空結果", models.ErrUpstream)
	}

	scores.SessionID = sessionID
	scores.PromptVersion = promptVersionKey
	if scores.Composite == 0 {
		scores.Composite = (scores.Brain + scores.Body + scores.Bat + scores.Ball) / 4
	}
	now := time.Now()
	scores.CreatedAt = now
	scores.UpdatedAt = now

	if err := s.db.SaveScores(scores); err != nil {
		s.db.UpdateSessionStatus(sessionID, models.SessionStatusFailed)
		return nil, false, fmt.Errorf("儲存評分失敗: %w", err)
	}
	if err := s.db.UpdateSessionStatus(sessionID, models.SessionStatusComplete); err != nil {
		log.Printf("警告：[AnalyzeService] 更新場次 %s 狀態為 complete 失敗: %v\n", sessionID, err)
	}
	log.Printf("資訊：[AnalyzeService] 場次 %s 評分完成 (Composite: %d)。\n", sessionID, scores.Composite)

	// 結果通知是盡力而為：發送失敗不會回滾已完成的分析
	if s.notify != nil {
		if err := s.notify.SendResults(ctx, sessionID); err != nil {
			log.Printf("警告：[AnalyzeService] 場次 %s 結果通知發送失敗: %v\n", sessionID, err)
		}
	}
	return scores, false, nil
}
