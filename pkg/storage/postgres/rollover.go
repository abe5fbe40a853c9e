package postgres

import (
	"context"
	"time"

	"watchdog/internal/watchdog/rollover"

	"gorm.io/gorm/clause"
)

// UpsertRollover writes one check record, overwriting any existing row for
// the same (contract_type, check_date). Re-running a check therefore
// updates instead of duplicating.
func (p *PostgresClient) UpsertRollover(ctx context.Context, rec rollover.Record) error {
	record := toRolloverRecord(rec)

	return p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "contract_type"},
			{Name: "check_date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"main_contract", "main_volume", "main_open_interest",
			"next_contract", "next_volume", "next_open_interest",
			"volume_ratio", "oi_ratio", "rollover_signal", "signal_reason",
		}),
	}).Create(record).Error
}

// GetRollover fetches one check record by its logical key.
func (p *PostgresClient) GetRollover(ctx context.Context, contractType string, checkDate time.Time) (*RolloverRecord, error) {
	var rec RolloverRecord
	err := p.DB.WithContext(ctx).
		Where("contract_type = ? AND check_date = ?", contractType, checkDate).
		First(&rec).Error

	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteOldRollovers prunes records checked before the given date.
func (p *PostgresClient) DeleteOldRollovers(ctx context.Context, before time.Time) error {
	return p.DB.WithContext(ctx).
		Where("check_date < ?", before).
		Delete(&RolloverRecord{}).Error
}

func toRolloverRecord(rec rollover.Record) *RolloverRecord {
	return &RolloverRecord{
		ContractType:     rec.ContractType,
		CheckDate:        rec.CheckDate,
		MainContract:     rec.MainContract,
		MainVolume:       rec.MainVolume,
		MainOpenInterest: rec.MainOpenInterest,
		NextContract:     rec.NextContract,
		NextVolume:       rec.NextVolume,
		NextOpenInterest: rec.NextOpenInterest,
		VolumeRatio:      rec.VolumeRatio,
		OIRatio:          rec.OIRatio,
		RolloverSignal:   rec.Signal,
		SignalReason:     rec.Reason,
	}
}
