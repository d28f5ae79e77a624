package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Value records of the non-translated kinds. Each one is keyed by its setting
// and removed together with it.

// DateTimeSettingValue stores the value of a datetime setting.
type DateTimeSettingValue struct {
	SettingID uint64    `gorm:"primaryKey;autoIncrement:false"`
	Setting   *Setting  `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	Value     time.Time `gorm:"not null"`
}

// TableName specifies the database table name.
func (DateTimeSettingValue) TableName() string { return "datetime_setting_values" }

// DateSettingValue stores the value of a date setting.
type DateSettingValue struct {
	SettingID uint64         `gorm:"primaryKey;autoIncrement:false"`
	Setting   *Setting       `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	Value     datatypes.Date `gorm:"not null"`
}

// TableName specifies the database table name.
func (DateSettingValue) TableName() string { return "date_setting_values" }

// TimeSettingValue stores the value of a time-of-day setting.
type TimeSettingValue struct {
	SettingID uint64         `gorm:"primaryKey;autoIncrement:false"`
	Setting   *Setting       `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	Value     datatypes.Time `gorm:"not null"`
}

// TableName specifies the database table name.
func (TimeSettingValue) TableName() string { return "time_setting_values" }

// BooleanSettingValue stores the value of a boolean setting.
type BooleanSettingValue struct {
	SettingID uint64   `gorm:"primaryKey;autoIncrement:false"`
	Setting   *Setting `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	Value     bool     `gorm:"not null"`
}

// TableName specifies the database table name.
func (BooleanSettingValue) TableName() string { return "boolean_setting_values" }

// NumberSettingValue stores the value of an integer setting.
type NumberSettingValue struct {
	SettingID uint64   `gorm:"primaryKey;autoIncrement:false"`
	Setting   *Setting `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	Value     int32    `gorm:"not null"`
}

// TableName specifies the database table name.
func (NumberSettingValue) TableName() string { return "number_setting_values" }

// DecimalSettingValue stores the value of a fixed-point decimal setting.
type DecimalSettingValue struct {
	SettingID uint64          `gorm:"primaryKey;autoIncrement:false"`
	Setting   *Setting        `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	Value     decimal.Decimal `gorm:"type:decimal(9,4);not null"`
}

// TableName specifies the database table name.
func (DecimalSettingValue) TableName() string { return "decimal_setting_values" }

// EmailSettingValue stores the value of an email setting.
type EmailSettingValue struct {
	SettingID uint64   `gorm:"primaryKey;autoIncrement:false"`
	Setting   *Setting `gorm:"foreignKey:SettingID;constraint:OnDelete:CASCADE"`
	Value     string   `gorm:"size:254;not null"`
}

// TableName specifies the database table name.
func (EmailSettingValue) TableName() string { return "email_setting_values" }
