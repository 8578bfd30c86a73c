package database

import (
	"strings"
	"testing"

	"github.com/xelth-com/insalessync/internal/config"
)

func TestIsEmbedded(t *testing.T) {
	if !IsEmbedded(config.DatabaseConfig{Host: "localhost"}) {
		t.Error("localhost without password should use the embedded database")
	}
	if IsEmbedded(config.DatabaseConfig{Host: "localhost", Password: "secret"}) {
		t.Error("A password selects an external database")
	}
	if IsEmbedded(config.DatabaseConfig{Host: "db.internal"}) {
		t.Error("A remote host selects an external database")
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "h", Port: "5432", Username: "u", Password: "p", Database: "d"})
	for _, part := range []string{"host=h", "port=5432", "user=u", "password=p", "dbname=d", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q is missing %q", dsn, part)
		}
	}
}

func TestReadPID(t *testing.T) {
	pid, err := readPID([]byte("4242\n/var/lib/pg\n"))
	if err != nil || pid != 4242 {
		t.Errorf("Expected 4242, got %d (%v)", pid, err)
	}
	if _, err := readPID(nil); err == nil {
		t.Error("Expected error for empty pid file")
	}
}
