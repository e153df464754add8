package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		token TEXT,
		points INTEGER NOT NULL DEFAULT 0,
		verified BOOLEAN NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'unverified',
		is_admin BOOLEAN NOT NULL DEFAULT 0,
		is_vendor BOOLEAN NOT NULL DEFAULT 0,
		joined_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTokenTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE token_bindings (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE unclaimed_tokens (
		token TEXT PRIMARY KEY,
		scanned_at DATETIME NOT NULL
	);`)
}

func createLedgerTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE ledger_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		vendor_id TEXT,
		points INTEGER NOT NULL,
		source TEXT,
		type TEXT NOT NULL,
		created_at DATETIME
	);`)
}

func createVerificationTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE email_verifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		token TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		verified_at DATETIME,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE pending_registrations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		token TEXT NOT NULL,
		verify_token TEXT NOT NULL,
		verify_expires DATETIME NOT NULL,
		created_at DATETIME
	);`)
}
