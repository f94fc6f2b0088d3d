// Package testutil はテスト用のDBとフィード。
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"ecshop/internal/infra/db"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB はマイグレーション済みのインメモリSQLiteを返す。
// 接続は1本だけ（:memory: は接続ごとに別DBになる）
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// Acme / Tools / Hammer 9.99
const AcmeFeed = `shop: Acme
categories:
  - id: 1
    name: Tools
goods:
  - name: Hammer
    category: 1
    quantity: 10
    price: 9.99
    price_rrc: 12.50
    parameters:
      weight: "0.5 kg"
      color: black
`

// 同じHammerを別のショップで売る
const BetaFeed = `shop: Beta Store
categories:
  - id: 1
    name: Tools
goods:
  - name: Hammer
    category: 1
    quantity: 3
    price: 8.50
    price_rrc: 12.50
    parameters:
      weight: "0.5 kg"
`

// WriteFeed はフィードを一時ファイルに書いてパスを返す
func WriteFeed(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "feed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}
