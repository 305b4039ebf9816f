package models

// AnalysisResult - нормализованный результат анализа изображения бака
type AnalysisResult struct {
	OverflowLevel int      `json:"overflowLevel"`
	WasteTypes    []string `json:"wasteTypes"`
	Urgency       Urgency  `json:"urgency"`
	Description   string   `json:"description"`
	IsHazardous   bool     `json:"isHazardous"`
}
