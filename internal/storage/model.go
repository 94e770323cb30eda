// internal/storage/model.go
//
// 定義「資料持久化層 (storage layer)」的結構模型。
// 此層只描述帳戶登錄簿 (registry) 的序列化格式，不涉入商業邏輯；
// bank 套件負責將記憶體中的鏈結串列轉成 Snapshot，以及由 Snapshot 還原。
package storage

import "time"

// Meta 為所有持久化快照的中繼資料 (metadata)。
type Meta struct {
	ID        string    `json:"id" yaml:"id"`                         // 每次產生快照時配發的 UUID
	Storage   string    `json:"storage" yaml:"storage"`               // 儲存類型，例如 "json_snapshot"
	Version   int       `json:"version" yaml:"version"`               // 結構版本號
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`           // 快照建立時間
	Note      string    `json:"note,omitempty" yaml:"note,omitempty"` // 備註
}

// PersistAccount 為帳戶在儲存層的序列化格式。
type PersistAccount struct {
	ID      int     `json:"id" yaml:"id" validate:"gte=1"`
	Name    string  `json:"name" yaml:"name"`
	Address string  `json:"address" yaml:"address"`
	SSN     string  `json:"ssn" yaml:"ssn"`
	Funds   float64 `json:"funds" yaml:"funds" validate:"gte=0"`
}

// Snapshot 為單一登錄簿的完整快照。
// Accounts 依鏈結串列目前的順序保存；合併後尚未排序的串列也原樣保存。
type Snapshot struct {
	Meta     Meta             `json:"_meta" yaml:"_meta"`
	Label    string           `json:"label" yaml:"label" validate:"required"`
	NextID   int              `json:"next_id" yaml:"next_id" validate:"gte=1"`
	FreedIDs []int            `json:"freed_ids" yaml:"freed_ids" validate:"dive,gte=1"`
	Accounts []PersistAccount `json:"accounts" yaml:"accounts" validate:"dive"`
}
