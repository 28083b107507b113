package ledger

import "gorm.io/datatypes"

// Record is one persisted decision with the account state it left behind.
// Timestamps are epoch milliseconds.
type Record struct {
	ID               int64   `json:"id"`
	Timestamp        int64   `json:"timestamp"`
	Decision         string  `json:"decision"`
	Percentage       float64 `json:"percentage"`
	Reason           string  `json:"reason"`
	AssetBalance     float64 `json:"asset_balance"`
	QuoteBalance     float64 `json:"quote_balance"`
	AssetAvgBuyPrice float64 `json:"asset_avg_buy_price"`
	AssetQuotePrice  float64 `json:"asset_quote_price"`
}

type decisionModel struct {
	ID               int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp        int64   `gorm:"column:timestamp;index"`
	Decision         string  `gorm:"column:decision"`
	Percentage       float64 `gorm:"column:percentage"`
	Reason           string  `gorm:"column:reason"`
	AssetBalance     float64 `gorm:"column:asset_balance"`
	QuoteBalance     float64 `gorm:"column:quote_balance"`
	AssetAvgBuyPrice float64 `gorm:"column:asset_avg_buy_price"`
	AssetQuotePrice  float64 `gorm:"column:asset_quote_price"`
}

func (decisionModel) TableName() string { return "decisions" }

// RunLog captures the full model exchange of one pipeline run for later
// inspection, including runs that produced no directive.
type RunLog struct {
	ID            int64          `json:"id"`
	Timestamp     int64          `json:"timestamp"`
	Symbol        string         `json:"symbol"`
	ProviderID    string         `json:"provider_id"`
	SystemPrompt  string         `json:"system_prompt"`
	UserPrompt    datatypes.JSON `json:"user_prompt"`
	RawOutput     string         `json:"raw_output"`
	Attempts      int            `json:"attempts"`
	ImageAttached bool           `json:"image_attached"`
	Outcome       string         `json:"outcome"`
	Detail        string         `json:"detail"`
	Error         string         `json:"error"`
}

type runLogModel struct {
	ID            int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp     int64          `gorm:"column:timestamp;index"`
	Symbol        string         `gorm:"column:symbol;index"`
	ProviderID    string         `gorm:"column:provider_id"`
	SystemPrompt  string         `gorm:"column:system_prompt"`
	UserPrompt    datatypes.JSON `gorm:"column:user_prompt"`
	RawOutput     string         `gorm:"column:raw_output"`
	Attempts      int            `gorm:"column:attempts"`
	ImageAttached bool           `gorm:"column:image_attached"`
	Outcome       string         `gorm:"column:outcome"`
	Detail        string         `gorm:"column:detail"`
	Error         string         `gorm:"column:error"`
}

func (runLogModel) TableName() string { return "run_logs" }
