package web

import (
	"SwingLab-backend/internal/config"
	"SwingLab-backend/internal/services"
	"SwingLab-backend/internal/web/handlers"
	"log"
	"net/http"
)

// SetupRouter 組裝全部 HTTP 路由。
// /api/admin/* 走 Bearer token 驗證，其餘路由公開。
func SetupRouter(
	appConfig *config.Config,
	db handlers.DBStore,
	uploadService *services.UploadService,
	analyzeService *services.AnalyzeService,
	scheduleService *services.ScheduleService,
	drillService *services.DrillService,
) http.Handler {
	if uploadService == nil || analyzeService == nil || scheduleService == nil || drillService == nil {
		log.Panicln("SetupRouter：各服務不得為空")
	}
	mux := http.NewServeMux()
	templateBasePath := "internal/web/templates"

	// 拍攝端 App 的公開 API
	mux.Handle("/api/upload-swing", handlers.NewUploadSwingHandler(uploadService))
	mux.Handle("/api/analyze-session", handlers.NewAnalyzeSessionHandler(analyzeService))
	mux.Handle("/api/session", handlers.NewSessionHandler(db))
	mux.Handle("/api/schedule-sms", handlers.NewScheduleSMSHandler(scheduleService))

	// 後台 API（Bearer token 保護）
	adminToken := appConfig.AdminToken
	mux.Handle("/api/admin/drill-video", handlers.AdminAuth(adminToken, handlers.NewDrillVideoHandler(db, drillService)))
	mux.Handle("/api/admin/drill-videos", handlers.AdminAuth(adminToken, handlers.NewDrillListHandler(db)))
	mux.Handle("/api/admin/auto-tag", handlers.AdminAuth(adminToken, handlers.NewAutoTagHandler(drillService)))
	mux.Handle("/api/admin/import", handlers.AdminAuth(adminToken, handlers.NewImportHandler(drillService)))

	// 影片串流服務路由
	videoHandler, err := handlers.NewVideoHandler(appConfig.Media)
	if err != nil {
		log.Fatalf("錯誤：無法建立 Video Handler: %v", err)
	}
	mux.Handle("/media/", videoHandler)

	// 電子郵件退訂頁
	unsubscribeHandler, err := handlers.NewUnsubscribeHandler(db, templateBasePath)
	if err != nil {
		log.Fatalf("錯誤：無法建立 Unsubscribe Handler: %v", err)
	}
	mux.Handle("/unsubscribe", unsubscribeHandler)

	log.Println("資訊：HTTP 路由設定完成。")
	return mux
}
