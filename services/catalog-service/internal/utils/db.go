package utils

import (
	"strconv"
	"strings"
	"time"
)

var sslModes = map[string]struct{}{
	"disable":     {},
	"allow":       {},
	"prefer":      {},
	"require":     {},
	"verify-ca":   {},
	"verify-full": {},
}

// GenerateConnectionString собирает строку подключения к PostgreSQL в формате key=value.
// poolSize > 0 ограничивает размер пула pgxpool, timeout > 0 задает connect_timeout.
func GenerateConnectionString(
	host, user, password, dbName, sslMode string,
	port, poolSize int,
	timeout time.Duration,
) (string, error) {
	if host == "" {
		return "", ErrStorageEmptyHostName
	}
	if port <= 0 || port > 65535 {
		return "", ErrStorageInvalidPortNumber
	}
	if user == "" {
		return "", ErrStorageEmptyUsername
	}
	if password == "" {
		return "", ErrStorageEmptyPassword
	}
	if dbName == "" {
		return "", ErrStorageInvalidDatabaseName
	}
	if _, ok := sslModes[sslMode]; !ok {
		return "", ErrStorageInvalidSslMode
	}
	if timeout < 0 {
		return "", ErrStorageInvalidTimeout
	}
	if poolSize < 0 {
		return "", ErrStorageInvalidPoolSize
	}

	var conStr strings.Builder
	writeParam(&conStr, "host", host)
	writeParam(&conStr, "port", strconv.Itoa(port))
	writeParam(&conStr, "user", user)
	writeParam(&conStr, "password", password)
	writeParam(&conStr, "dbname", dbName)
	writeParam(&conStr, "sslmode", sslMode)

	if timeout > 0 {
		// connect_timeout задается в целых секундах, меньше секунды округляем вверх
		seconds := int((timeout + time.Second - 1) / time.Second)
		writeParam(&conStr, "connect_timeout", strconv.Itoa(seconds))
	}
	if poolSize > 0 {
		writeParam(&conStr, "pool_max_conns", strconv.Itoa(poolSize))
	}

	return conStr.String(), nil
}

// writeParam дописывает пару key=value, экранируя значение по правилам libpq
func writeParam(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(key)
	b.WriteByte('=')

	if value != "" && !strings.ContainsAny(value, " '\\\t\n") {
		b.WriteString(value)
		return
	}

	b.WriteByte('\'')
	for _, r := range value {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
}
