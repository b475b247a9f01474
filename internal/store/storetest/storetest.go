// Package storetest 为各包测试提供独立的内存 sqlite 库。
package storetest

import (
	"fmt"
	"testing"

	"order_desk/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New 每次返回一个全新的、已建表的内存库，测试结束自动关闭。
func New(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := store.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
