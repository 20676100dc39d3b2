package postgres

import (
	"context"
	"fmt"
	"time"

	"tradelog/internal/stream"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

var _ stream.Archive = (*PostgresClient)(nil)

// ArchiveTrade stores ev. Replays of an already stored trade are ignored.
func (p *PostgresClient) ArchiveTrade(ctx context.Context, ev stream.TradeEvent) error {
	record, err := ToTradeRecord(ev)
	if err != nil {
		return err
	}
	return p.InsertTrade(ctx, record)
}

func (p *PostgresClient) InsertTrade(ctx context.Context, record *TradeRecord) error {
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "symbol"},
			{Name: "trade_id"},
		},
		DoNothing: true,
	}).Create(record)

	return tx.Error
}

func (p *PostgresClient) GetTrade(ctx context.Context, symbol string, tradeID int64) (*TradeRecord, error) {
	var trade TradeRecord
	err := p.DB.WithContext(ctx).
		Where("symbol = ? AND trade_id = ?", symbol, tradeID).
		First(&trade).Error

	if err != nil {
		return nil, err
	}
	return &trade, nil
}

func (p *PostgresClient) DeleteOldTrades(ctx context.Context, before time.Time) error {
	return p.DB.WithContext(ctx).
		Where("trade_time < ?", before).
		Delete(&TradeRecord{}).Error
}

// ToTradeRecord converts a stream trade into a TradeRecord for DB insertion.
func ToTradeRecord(ev stream.TradeEvent) (*TradeRecord, error) {
	price, err := decimal.NewFromString(ev.Price)
	if err != nil {
		return nil, fmt.Errorf("trade %d price: %w", ev.TradeID, err)
	}
	qty, err := decimal.NewFromString(ev.Quantity)
	if err != nil {
		return nil, fmt.Errorf("trade %d quantity: %w", ev.TradeID, err)
	}

	return &TradeRecord{
		Symbol:    ev.Symbol,
		TradeID:   ev.TradeID,
		Price:     price,
		Quantity:  qty,
		TradeTime: time.UnixMilli(ev.EventTimeMs),
		Raw:       string(ev.Raw),
	}, nil
}
