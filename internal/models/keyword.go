package models

// Column names of the keyword trends sheet
var (
	ColKeyword  = []string{"palabra_clave", "keyword"}
	ColUses     = []string{"apariciones", "uses"}
	ColAvgViews = []string{"media_visitas", "avg_views"}
)

// Trend is the impact class of a keyword
type Trend string

const (
	TrendExplosive  Trend = "explosive"
	TrendRising     Trend = "rising"
	TrendSteady     Trend = "steady"
	TrendCooling    Trend = "cooling"
	TrendIrrelevant Trend = "irrelevant"
)

// KeywordRecord is a keyword trend row after normalization
type KeywordRecord struct {
	Keyword   string `json:"keyword"`
	Uses      int64  `json:"uses"`
	AvgViews  int64  `json:"avg_views"`
	Impact    int64  `json:"impact"`
	Trend     Trend  `json:"trend"`
	TrendIcon string `json:"trend_icon"`
}
