// Package mirror implements a SQLite + JSON mirror policystore driver.
// SQLite is the source of truth; the JSON file is a one-way export for
// operator visibility. The driver MUST NOT read the JSON file as input —
// only Load() from SQLite is authoritative.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/openalljoyn/authzcore/internal/permpolicy"
	"github.com/openalljoyn/authzcore/internal/policystore"
)

func init() {
	policystore.Register("mirror", NewDriver)
}

type policyRow struct {
	ID   uint `gorm:"primaryKey"`
	Data []byte
}

// Driver implements policystore.Driver with SQLite + a JSON export.
type Driver struct {
	dataDir    string
	exportPath string
	db         *gorm.DB
	mu         sync.Mutex // serializes JSON export writes
}

// NewDriver creates a new mirror driver instance.
func NewDriver(cfg *policystore.DriverConfig) (policystore.Driver, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("policystore/mirror: data_dir is required")
	}
	exportPath := cfg.Mirror.ExportPath
	if exportPath == "" {
		exportPath = filepath.Join(cfg.DataDir, "mirror", "policy.json")
	}
	return &Driver{dataDir: cfg.DataDir, exportPath: exportPath}, nil
}

func (d *Driver) Name() string { return "mirror" }

func (d *Driver) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(d.exportPath), 0700); err != nil {
		return fmt.Errorf("policystore/mirror: create mirror dir: %w", err)
	}

	dbPath := filepath.Join(d.dataDir, "policy.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("policystore/mirror: open database: %w", err)
	}
	if err := db.AutoMigrate(&policyRow{}); err != nil {
		return fmt.Errorf("policystore/mirror: migrate: %w", err)
	}
	d.db = db

	if policy, loadErr := d.Load(ctx); loadErr == nil {
		return d.export(policy)
	} else if loadErr != policystore.ErrNotFound {
		return loadErr
	}
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
		return permpolicy.Policy{}, fmt.Errorf("policystore/mirror: decode stored policy: %w", err)
	}
	return permpolicy.FromWire(wire)
}

func (d *Driver) Save(ctx context.Context, policy permpolicy.Policy) error {
	data, err := json.Marshal(permpolicy.ToWire(policy))
	if err != nil {
		return fmt.Errorf("policystore/mirror: encode policy: %w", err)
	}

	row := policyRow{ID: 1, Data: data}
	if err := d.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return err
	}
	return d.export(policy)
}

// export writes the one-way JSON mirror. Never read back as input.
func (d *Driver) export(policy permpolicy.Policy) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := json.MarshalIndent(permpolicy.ToWire(policy), "", "  ")
	if err != nil {
		return fmt.Errorf("policystore/mirror: encode export: %w", err)
	}

	tempPath := d.exportPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("policystore/mirror: write export: %w", err)
	}
	if err := os.Rename(tempPath, d.exportPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("policystore/mirror: rename export: %w", err)
	}
	return nil
}

var _ policystore.Driver = (*Driver)(nil)
