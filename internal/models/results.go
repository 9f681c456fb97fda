package models

// UploadResult 是一次揮棒上傳的結果，直接序列化為 API 回應
type UploadResult struct {
	SwingIndex      int    `json:"swingIndex"`
	SwingsUploaded  int    `json:"swingsUploaded"`
	SwingsRequired  int    `json:"swingsRequired"`
	ReadyForPayment bool   `json:"readyForPayment"`
	VideoURL        string `json:"videoUrl"`
}

// ImportItemResult 是單筆錄影的匯入結果
type ImportItemResult struct {
	SourceID string `json:"sourceId"`
	Title    string `json:"title"`
	VideoID  int64  `json:"videoId,omitempty"`
	Imported bool   `json:"imported"`
	Error    string `json:"error,omitempty"`
}

// ImportSummary 是一次匯入的彙總結果
type ImportSummary struct {
	Total    int                `json:"total"`
	Imported int                `json:"imported"`
	Failed   int                `json:"failed"`
	Items    []ImportItemResult `json:"items"`
}
