package models

import "errors"

// 服務層的錯誤類別。各服務以 fmt.Errorf("...: %w", Err...) 包裝後回傳，
// HTTP 處理器在邊界用 errors.Is 對應到狀態碼。
var (
	ErrInvalidArgument = errors.New("參數無效")
	ErrNotFound        = errors.New("找不到資料")
	ErrUpstream        = errors.New("上游服務錯誤")
	ErrParse           = errors.New("回應解析失敗")
	ErrStorage         = errors.New("儲存寫入失敗")
)
