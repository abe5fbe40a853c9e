package postgres

import "time"

// RolloverRecord is one futures rollover check stored in the database,
// logically keyed by (contract_type, check_date).
type RolloverRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	ContractType string    `gorm:"type:varchar(10);not null;index:idx_rollover_type_date,unique"`
	CheckDate    time.Time `gorm:"type:date;not null;index:idx_rollover_type_date,unique"`

	MainContract     string `gorm:"type:varchar(10);not null"`
	MainVolume       int64  `gorm:"not null"`
	MainOpenInterest int64  `gorm:"not null"`

	NextContract     string `gorm:"type:varchar(10);not null"`
	NextVolume       int64  `gorm:"not null"`
	NextOpenInterest int64  `gorm:"not null"`

	VolumeRatio    float64 `gorm:"type:numeric;not null"`
	OIRatio        float64 `gorm:"type:numeric;not null;column:oi_ratio"`
	RolloverSignal bool    `gorm:"not null"`
	SignalReason   string  `gorm:"type:text"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (RolloverRecord) TableName() string {
	return "futures_rollover"
}
