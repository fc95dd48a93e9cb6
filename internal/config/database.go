// internal/config/database.go
package config

import (
	"fmt"
	"strings"
)

// DSN builds the lib/pq keyword string. The application_name tag makes the
// storefront's sessions identifiable in pg_stat_activity, and the connect
// timeout keeps a down database from hanging startup.
func (d *DatabaseConfig) DSN() string {
	parts := []string{
		fmt.Sprintf("host=%s", d.Host),
		fmt.Sprintf("port=%s", d.Port),
		fmt.Sprintf("user=%s", d.User),
		fmt.Sprintf("password=%s", d.Password),
		fmt.Sprintf("dbname=%s", d.Database),
		fmt.Sprintf("sslmode=%s", d.SSLMode),
		"application_name=storefront-backend",
		"connect_timeout=5",
	}
	return strings.Join(parts, " ")
}
