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

package repo

import (
	"github.com/go-arcade/ingest/pkg/database"
	"github.com/google/wire"
)

// ProviderSet 提供仓储层相关的依赖
var ProviderSet = wire.NewSet(ProvideRepositories)

// ProvideRepositories 提供仓储实例, 并在配置开启时迁移表结构
func ProvideRepositories(db database.IDatabase, conf database.Database) (*Repositories, error) {
	if conf.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return NewRepositories(db), nil
}
