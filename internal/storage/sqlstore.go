// internal/storage/sqlstore.go
//
// SQLStore 以 bun 將快照寫入關聯式資料庫。
// 兩張表：registries（每個標籤一列，含分配器狀態）與 registry_accounts（依 seq 保存串列順序）。
// 每次 Save 在單一交易內整批覆寫該標籤的資料。
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// RegistryModel 對應 registries 表。
type RegistryModel struct {
	bun.BaseModel `bun:"table:registries"`
	Label         string    `bun:"label,pk"`
	NextID        int       `bun:"next_id,notnull"`
	FreedIDs      string    `bun:"freed_ids,notnull"` // JSON 陣列
	SnapshotID    string    `bun:"snapshot_id"`
	Version       int       `bun:"version"`
	SavedAt       time.Time `bun:"saved_at"`
}

// AccountModel 對應 registry_accounts 表。
type AccountModel struct {
	bun.BaseModel `bun:"table:registry_accounts"`
	Label         string  `bun:"label,pk"`
	Seq           int     `bun:"seq,pk"`
	AccountID     int     `bun:"account_id,notnull"`
	Name          string  `bun:"name"`
	Address       string  `bun:"address"`
	SSN           string  `bun:"ssn"`
	Funds         float64 `bun:"funds"`
}

// SQLStore 為 Store 的 bun 實作。
type SQLStore struct {
	db *bun.DB
}

// OpenSQLStore 依 dbType 開啟連線、建立 bun.DB 並建立資料表。
func OpenSQLStore(ctx context.Context, dbType, dsn string) (*SQLStore, error) {
	driverName := dbType
	switch dbType {
	case "postgres":
		// pgx stdlib 註冊的 driver 名稱為 "pgx"
		driverName = "pgx"
	case "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}
	if dbType == "sqlite" {
		// :memory: 每條連線各自獨立，限制為單一連線
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}
	s := &SQLStore{db: createBunDB(sqlDB, dbType)}
	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore 包裝既有的 bun.DB（測試或呼叫端自行管理連線時使用）。
func NewSQLStore(ctx context.Context, db *bun.DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, model := range []any{(*RegistryModel)(nil), (*AccountModel)(nil)} {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Save(ctx context.Context, snap Snapshot) error {
	freed, err := json.Marshal(snap.FreedIDs)
	if err != nil {
		return err
	}
	reg := &RegistryModel{
		Label:      snap.Label,
		NextID:     snap.NextID,
		FreedIDs:   string(freed),
		SnapshotID: snap.Meta.ID,
		Version:    snap.Meta.Version,
		SavedAt:    time.Now().UTC(),
	}
	rows := make([]AccountModel, 0, len(snap.Accounts))
	for i, a := range snap.Accounts {
		rows = append(rows, AccountModel{
			Label: snap.Label, Seq: i, AccountID: a.ID,
			Name: a.Name, Address: a.Address, SSN: a.SSN, Funds: a.Funds,
		})
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*AccountModel)(nil)).Where("label = ?", snap.Label).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*RegistryModel)(nil)).Where("label = ?", snap.Label).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(reg).Exec(ctx); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
}

func (s *SQLStore) Load(ctx context.Context, label string) (Snapshot, error) {
	var reg RegistryModel
	err := s.db.NewSelect().Model(&reg).Where("label = ?", label).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, label)
	}
	if err != nil {
		return Snapshot{}, err
	}
	var rows []AccountModel
	if err := s.db.NewSelect().Model(&rows).Where("label = ?", label).OrderExpr("seq ASC").Scan(ctx); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Meta: Meta{
			ID:        reg.SnapshotID,
			Storage:   "sql_snapshot",
			Version:   reg.Version,
			Timestamp: reg.SavedAt,
		},
		Label:    reg.Label,
		NextID:   reg.NextID,
		Accounts: make([]PersistAccount, 0, len(rows)),
	}
	if err := json.Unmarshal([]byte(reg.FreedIDs), &snap.FreedIDs); err != nil {
		return Snapshot{}, fmt.Errorf("corrupt freed_ids for %s: %w", label, err)
	}
	for _, r := range rows {
		snap.Accounts = append(snap.Accounts, PersistAccount{
			ID: r.AccountID, Name: r.Name, Address: r.Address, SSN: r.SSN, Funds: r.Funds,
		})
	}
	return snap, nil
}

func (s *SQLStore) Labels(ctx context.Context) ([]string, error) {
	var labels []string
	err := s.db.NewSelect().Model((*RegistryModel)(nil)).Column("label").OrderExpr("label ASC").Scan(ctx, &labels)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
