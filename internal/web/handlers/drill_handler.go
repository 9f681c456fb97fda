package handlers

import (
	"SwingLab-backend/internal/models"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
)

// DrillContentPipeline 定義訓練影片內容管線（由 services.DrillService 實現）
type DrillContentPipeline interface {
	ImportRecordings(ctx context.Context, limit int) (*models.ImportSummary, error)
	AttachTranscript(videoID int64, transcript string) (*models.DrillVideo, error)
	AutoTag(ctx context.Context, videoID int64, autoPublish bool) (*models.DrillVideo, error)
	UpdateVideo(video *models.DrillVideo) (*models.DrillVideo, error)
	DeleteVideo(videoID int64) error
}

// DrillVideoHandler 處理 /api/admin/drill-video 的單筆 GET/PUT/DELETE
type DrillVideoHandler struct {
	db       DBStore
	pipeline DrillContentPipeline
}

// NewDrillVideoHandler 建立一個 DrillVideoHandler
func NewDrillVideoHandler(db DBStore, pipeline DrillContentPipeline) *DrillVideoHandler {
	if db == nil || pipeline == nil {
		log.Panicln("DrillVideoHandler：DBStore 與 DrillContentPipeline 不得為空")
	}
	return &DrillVideoHandler{db: db, pipeline: pipeline}
}

// drillUpdateRequest 是後台編輯的請求內容。
// 指標欄位區分「沒送這個欄位」與「送了空值」。
type drillUpdateRequest struct {
	Title        *string  `json:"title"`
	Transcript   *string  `json:"transcript"`
	Category     *string  `json:"category"`
	Tags         []string `json:"tags"`
	Problems     []string `json:"problems_addressed"`
	SkillLevel   *string  `json:"skill_level"`
	Summary      *string  `json:"summary"`
	Status       *string  `json:"status"`
	DurationSecs *int64   `json:"duration_secs"`
}

// ServeHTTP 實現 http.Handler 介面
func (h *DrillVideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r) {
		return
	}
	videoID, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || videoID <= 0 {
		writeError(w, fmt.Errorf("%w: 查詢參數 id 必須是正整數", models.ErrInvalidArgument))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, videoID)
	case http.MethodPut:
		h.update(w, r, videoID)
	case http.MethodDelete:
		h.delete(w, videoID)
	default:
		http.Error(w, "僅支援 GET、PUT、DELETE 方法", http.StatusMethodNotAllowed)
	}
}

func (h *DrillVideoHandler) get(w http.ResponseWriter, videoID int64) {
	video, err := h.db.GetDrillVideoByID(videoID)
	if err != nil {
		log.Printf("錯誤：[DrillVideoHandler] 查詢影片 %d 失敗: %v\n", videoID, err)
		writeError(w, err)
		return
	}
	if video == nil {
		writeError(w, fmt.Errorf("%w: 訓練影片 %d 不存在", models.ErrNotFound, videoID))
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (h *DrillVideoHandler) update(w http.ResponseWriter, r *http.Request, videoID int64) {
	var req drillUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: 解析請求內容失敗: %v", models.ErrInvalidArgument, err))
		return
	}

	existing, err := h.db.GetDrillVideoByID(videoID)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing == nil {
		writeError(w, fmt.Errorf("%w: 訓練影片 %d 不存在", models.ErrNotFound, videoID))
		return
	}

	// 逐字稿送入時先走逐字稿掛載流程 (processing → draft)
	if req.Transcript != nil && *req.Transcript != "" {
		existing, err = h.pipeline.AttachTranscript(videoID, *req.Transcript)
		if err != nil {
			log.Printf("錯誤：[DrillVideoHandler] 影片 %d 掛載逐字稿失敗: %v\n", videoID, err)
			writeError(w, err)
			return
		}
	}

	updated := *existing
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Category != nil {
		updated.Category = sql.NullString{String: *req.Category, Valid: *req.Category != ""}
	}
	if req.Tags != nil {
		tagsJSON, err := json.Marshal(req.Tags)
		if err != nil {
			writeError(w, fmt.Errorf("序列化 tags 失敗: %w", err))
			return
		}
		updated.Tags = tagsJSON
	}
	if req.Problems != nil {
		problemsJSON, err := json.Marshal(req.Problems)
		if err != nil {
			writeError(w, fmt.Errorf("序列化 problems_addressed 失敗: %w", err))
			return
		}
		updated.Problems = problemsJSON
	}
	if req.SkillLevel != nil {
		updated.SkillLevel = sql.NullString{String: *req.SkillLevel, Valid: *req.SkillLevel != ""}
	}
	if req.Summary != nil {
		updated.Summary = models.JsonNullString{NullString: sql.NullString{String: *req.Summary, Valid: *req.Summary != ""}}
	}
	if req.Status != nil {
		updated.Status = models.DrillStatus(*req.Status)
	}
	if req.DurationSecs != nil {
		updated.DurationSecs = sql.NullInt64{Int64: *req.DurationSecs, Valid: *req.DurationSecs > 0}
	}

	result, err := h.pipeline.UpdateVideo(&updated)
	if err != nil {
		log.Printf("錯誤：[DrillVideoHandler] 更新影片 %d 失敗: %v\n", videoID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *DrillVideoHandler) delete(w http.ResponseWriter, videoID int64) {
	if err := h.pipeline.DeleteVideo(videoID); err != nil {
		log.Printf("錯誤：[DrillVideoHandler] 刪除影片 %d 失敗: %v\n", videoID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DrillListHandler 處理 GET /api/admin/drill-videos 的列表查詢
type DrillListHandler struct {
	db DBStore
}

// NewDrillListHandler 建立一個 DrillListHandler
func NewDrillListHandler(db DBStore) *DrillListHandler {
	if db == nil {
		log.Panicln("DrillListHandler：DBStore 不得為空")
	}
	return &DrillListHandler{db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *DrillListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	videos, err := h.db.ListDrillVideos(q.Get("search"), models.DrillStatus(q.Get("status")), limit, offset)
	if err != nil {
		log.Printf("錯誤：[DrillListHandler] 查詢列表失敗: %v\n", err)
		writeError(w, err)
		return
	}
	if videos == nil {
		videos = []models.DrillVideo{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

// AutoTagHandler 處理 POST /api/admin/auto-tag
type AutoTagHandler struct {
	pipeline DrillContentPipeline
}

// NewAutoTagHandler 建立一個 AutoTagHandler
func NewAutoTagHandler(pipeline DrillContentPipeline) *AutoTagHandler {
	if pipeline == nil {
		log.Panicln("AutoTagHandler：DrillContentPipeline 不得為空")
	}
	return &AutoTagHandler{pipeline: pipeline}
}

type autoTagRequest struct {
	VideoID     int64 `json:"video_id"`
	AutoPublish bool  `json:"auto_publish"`
}

// ServeHTTP 實現 http.Handler 介面
func (h *AutoTagHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	var req autoTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: 解析請求內容失敗: %v", models.ErrInvalidArgument, err))
		return
	}

	log.Printf("資訊：[AutoTagHandler] 收到自動標記請求：影片 %d (autoPublish: %t)\n", req.VideoID, req.AutoPublish)
	video, err := h.pipeline.AutoTag(r.Context(), req.VideoID, req.AutoPublish)
	if err != nil {
		log.Printf("錯誤：[AutoTagHandler] 自動標記失敗: %v\n", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  video.Status,
		"analysis": map[string]interface{}{
			"category":           video.Category.String,
			"tags":               video.Tags,
			"problems_addressed": video.Problems,
			"skill_level":        video.SkillLevel.String,
			"summary":            video.Summary.String,
		},
		"message": "自動標記完成",
	})
}

// ImportHandler 處理 POST /api/admin/import
type ImportHandler struct {
	pipeline DrillContentPipeline
}

// NewImportHandler 建立一個 ImportHandler
func NewImportHandler(pipeline DrillContentPipeline) *ImportHandler {
	if pipeline == nil {
		log.Panicln("ImportHandler：DrillContentPipeline 不得為空")
	}
	return &ImportHandler{pipeline: pipeline}
}

type importRequest struct {
	Limit int `json:"limit"`
}

// ServeHTTP 實現 http.Handler 介面
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	var req importRequest
	if r.Body != nil {
		// 請求內容可省略，省略時使用預設筆數
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	summary, err := h.pipeline.ImportRecordings(r.Context(), req.Limit)
	if err != nil {
		log.Printf("錯誤：[ImportHandler] 匯入失敗: %v\n", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": summary,
	})
}
