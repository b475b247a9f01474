package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:order_desk.db?_txlock=immediate&_busy_timeout=5000", SQLiteDSN("order_desk.db"))
	assert.Equal(t,
		"file:x?mode=memory&cache=shared&_txlock=immediate&_busy_timeout=5000",
		SQLiteDSN("file:x?mode=memory&cache=shared"))
	assert.Equal(t, "file:a.db?_txlock=deferred&_busy_timeout=100", SQLiteDSN("file:a.db?_txlock=deferred&_busy_timeout=100"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("postgres", "x")
	assert.Error(t, err)
}
