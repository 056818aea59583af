// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type SourceConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	// Replicas enables dbresolver read/write splitting when non-empty.
	Replicas []SourceConfig `mapstructure:"replicas"`
}

type ClickHouseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	DBName      string `mapstructure:"dbname"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	DialTimeout int    `mapstructure:"dialTimeout"` // seconds
	ReadTimeout int    `mapstructure:"readTimeout"` // seconds
}

// Enabled reports whether enough fields are set to open a connection.
func (c ClickHouseConfig) Enabled() bool {
	return c.Host != "" && c.DBName != "" && c.Username != ""
}

type Database struct {
	OutPut       bool `mapstructure:"output"`
	AutoMigrate  bool `mapstructure:"autoMigrate"`
	MaxOpenConns int  `mapstructure:"maxOpenConns"`
	MaxIdleConns int  `mapstructure:"maxIdleConns"`
	MaxLifetime  int  `mapstructure:"maxLifeTime"`
	MaxIdleTime  int  `mapstructure:"maxIdleTime"`

	MySQL MySQLConfig `mapstructure:"mysql"`
	// ClickHouse, when configured, stores the audit log.
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
}

func GetConnMaxLifetime(maxLifetime int) time.Duration {
	if maxLifetime > 0 {
		return time.Duration(maxLifetime) * time.Second
	}
	return 300 * time.Second
}

func GetConnMaxIdleTime(maxIdleTime int) time.Duration {
	if maxIdleTime > 0 {
		return time.Duration(maxIdleTime) * time.Second
	}
	return 60 * time.Second
}

// BuildMySQLDSN builds a go-sql-driver DSN. timeout is omitted when zero.
func BuildMySQLDSN(user, password, host, port, db string, timeout time.Duration) string {
	if port == "" {
		port = "3306"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, db)
	if timeout > 0 {
		dsn += fmt.Sprintf("&timeout=%s", timeout)
	}
	return dsn
}

// BuildClickHouseDSN builds a clickhouse:// DSN with dial and read timeouts in seconds.
func BuildClickHouseDSN(user, password, host string, port int, db string, dialTimeout, readTimeout int) string {
	if port == 0 {
		port = 9000
	}
	if dialTimeout <= 0 {
		dialTimeout = 10
	}
	if readTimeout <= 0 {
		readTimeout = 20
	}
	u := url.URL{
		Scheme:   "clickhouse",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + db,
		RawQuery: fmt.Sprintf("dial_timeout=%ds&read_timeout=%ds", dialTimeout, readTimeout),
	}
	return u.String()
}

func buildDialectors(configs []SourceConfig) ([]gorm.Dialector, error) {
	dialectors := make([]gorm.Dialector, 0, len(configs))
	for _, c := range configs {
		if c.Host == "" || c.User == "" || c.DBName == "" {
			return nil, fmt.Errorf("incomplete database source config: host, user, and dbname are required")
		}
		dialectors = append(dialectors, mysql.Open(BuildMySQLDSN(c.User, c.Password, c.Host, c.Port, c.DBName, 0)))
	}
	return dialectors, nil
}
