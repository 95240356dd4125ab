// Package sqlite implements a SQLite-based policystore driver using GORM.
// The policy tree is stored as a single serialized row: the wire form is
// already a small, fully-immutable blob per install, so one row keeps the
// write path a single atomic GORM transaction rather than a relational
// fan-out across Policy/Acl/Peer/Rule/Member tables.
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/openalljoyn/authzcore/internal/permpolicy"
	"github.com/openalljoyn/authzcore/internal/policystore"
)

func init() {
	policystore.Register("sqlite", NewDriver)
}

// policyRow is the single persisted row. GORM's default table name
// ("policy_rows") and primary key (ID) apply.
type policyRow struct {
	ID   uint `gorm:"primaryKey"`
	Data []byte
}

// Driver implements policystore.Driver using SQLite via GORM.
type Driver struct {
	dataDir string
	db      *gorm.DB
}

// NewDriver creates a new SQLite driver instance.
func NewDriver(cfg *policystore.DriverConfig) (policystore.Driver, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("policystore/sqlite: data_dir is required")
	}
	return &Driver{dataDir: cfg.DataDir}, nil
}

func (d *Driver) Name() string { return "sqlite" }

// Init opens the database and runs AutoMigrate.
func (d *Driver) Init(ctx context.Context) error {
	dbPath := filepath.Join(d.dataDir, "policy.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("policystore/sqlite: open database: %w", err)
	}
	if err := db.AutoMigrate(&policyRow{}); err != nil {
		return fmt.Errorf("policystore/sqlite: migrate: %w", err)
	}
	d.db = db
	return nil
}

func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Driver) Load(ctx context.Context) (permpolicy.Policy, error) {
	var row policyRow
	result := d.db.WithContext(ctx).First(&row, "id = ?", 1)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return permpolicy.Policy{}, policystore.ErrNotFound
		}
		return permpolicy.Policy{}, result.Error
	}

	var wire permpolicy.WirePolicy
	if err := json.Unmarshal(row.Data, &wire); err != nil {
		return permpolicy.Policy{}, fmt.Errorf("policystore/sqlite: decode stored policy: %w", err)
	}
	return permpolicy.FromWire(wire)
}

func (d *Driver) Save(ctx context.Context, policy permpolicy.Policy) error {
	data, err := json.Marshal(permpolicy.ToWire(policy))
	if err != nil {
		return fmt.Errorf("policystore/sqlite: encode policy: %w", err)
	}

	row := policyRow{ID: 1, Data: data}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

var _ policystore.Driver = (*Driver)(nil)
