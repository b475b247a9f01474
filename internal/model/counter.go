package model

import "time"

// Counter 一条记录对应一个命名序列，LastIssued 为最近一次发出的编号。
type Counter struct {
	Name       string    `gorm:"primaryKey;size:64" json:"name"`
	LastIssued int64     `gorm:"not null;default:0" json:"last_issued"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Counter) TableName() string { return "counters" }
