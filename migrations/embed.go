package migrations

import "embed"

// FS содержит SQL миграции goose, применяются по возрастанию имени файла
//
//go:embed *.sql
var FS embed.FS
