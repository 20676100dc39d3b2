package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one exchange trade mirrored from the live stream.
type TradeRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Symbol  string `gorm:"type:text;not null;index:idx_trade_symbol;index:idx_symbol_trade_id,unique"`
	TradeID int64  `gorm:"not null;index:idx_symbol_trade_id,unique"`

	Price    decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity decimal.Decimal `gorm:"type:numeric;not null"`

	TradeTime time.Time `gorm:"not null;index:idx_trade_time"`
	Raw       string    `gorm:"type:text"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (TradeRecord) TableName() string {
	return "trade_record"
}
