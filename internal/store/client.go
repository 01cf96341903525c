package store

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/simply-kaspa/indexer-go/internal/log"
)

var logger = log.NewModuleLogger(log.Store)

// MinSupportedSchemaVersion is the lowest vars['schema_version'] this
// binary accepts at all; versions below CurrentSchemaVersion are only
// accepted with --upgrade-db (spec.md §9, "Config-driven schema check").
const MinSupportedSchemaVersion = 1

// CurrentSchemaVersion is the version EnsureSchemaVersion expects, and
// the value it writes to vars['schema_version'] when an upgrade is
// allowed, mirroring KaspaDbClient::SCHEMA_VERSION in
// original_source/database/src/client.rs.
const CurrentSchemaVersion = 9

// Client wraps a pooled *gorm.DB, grounded on storage/database/db_manager.go's
// role as the single persistence seam every pipeline stage shares.
type Client struct {
	db *gorm.DB
}

// New opens a MySQL connection pool sized for the indexer's batched
// write workload. A pool size of 10 matches
// original_source/database/src/client.rs's KaspaDbClient::new default.
func New(databaseURL string) (*Client, error) {
	return NewWithPoolSize(databaseURL, 10)
}

// NewWithPoolSize opens a MySQL connection pool with an explicit size.
func NewWithPoolSize(databaseURL string, poolSize int) (*Client, error) {
	db, err := gorm.Open("mysql", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "store: failed to open database")
	}
	db.DB().SetMaxOpenConns(poolSize)
	db.DB().SetMaxIdleConns(poolSize)
	db.DB().SetConnMaxLifetime(time.Hour)
	db.LogMode(false)
	logger.Info("connected to database", "poolSize", poolSize)
	return &Client{db: db}, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// DB exposes the underlying *gorm.DB for packages that need to compose
// transactions across multiple Client methods.
func (c *Client) DB() *gorm.DB {
	return c.db
}

// EnsureSchemaVersion checks vars['schema_version'] against
// MinSupportedSchemaVersion/CurrentSchemaVersion. Unlike the original's
// generated migration chain, this indexer expects the schema to already
// be at CurrentSchemaVersion; upgradeAllowed only permits recording
// CurrentSchemaVersion over an older (but supported) stored version,
// the tables themselves having been migrated out of band, matching
// spec.md §9's decision to keep schema DDL external to the binary. A
// missing schema_version row is an error.
func (c *Client) EnsureSchemaVersion(upgradeAllowed bool) error {
	value, err := c.SelectVar("schema_version")
	if err != nil {
		return errors.Wrap(err, "store: failed to read schema_version")
	}
	var version int
	if _, err := fmt.Sscanf(value, "%d", &version); err != nil {
		return errors.Wrapf(err, "store: invalid schema_version %q", value)
	}
	if version < MinSupportedSchemaVersion {
		return fmt.Errorf("store: schema version v%d is older than the minimum supported v%d", version, MinSupportedSchemaVersion)
	}
	if version < CurrentSchemaVersion {
		if !upgradeAllowed {
			return fmt.Errorf("store: schema version v%d is outdated, want v%d; rerun with --upgrade-db after applying migrations", version, CurrentSchemaVersion)
		}
		logger.Warn("schema version is outdated, recording upgrade", "from", version, "to", CurrentSchemaVersion)
		if err := c.UpsertVar("schema_version", fmt.Sprintf("%d", CurrentSchemaVersion)); err != nil {
			return err
		}
	}
	return nil
}
