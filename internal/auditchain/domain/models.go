package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Snapshot is one link of a partner's tamper-evident hash chain. Each payout
// transition seals one snapshot; rows are never mutated or deleted.
type Snapshot struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	PartnerID     snowflake.ID `gorm:"column:partner_id;not null;uniqueIndex:ux_audit_snapshots_partner_seq,priority:1" json:"partnerId"`
	PayoutEntryID snowflake.ID `gorm:"column:payout_entry_id;not null;index" json:"payoutEntryId"`
	Seq           int64        `gorm:"not null;uniqueIndex:ux_audit_snapshots_partner_seq,priority:2" json:"seq"`
	Transition    string       `gorm:"type:text;not null" json:"transition"`
	Payload       string       `gorm:"type:text;not null" json:"payload"`
	Hash          string       `gorm:"type:text;not null" json:"hash"`
	PrevHash      string       `gorm:"column:prev_hash;type:text;not null;default:''" json:"prevHash"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (Snapshot) TableName() string { return "audit_snapshots" }
