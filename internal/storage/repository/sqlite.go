// Package repository реализует хранилище пользователей на SQLite.
//
// Время хранится в миллисекундах Unix, журнал в режиме WAL: читатели
// не блокируют писателя, а одновременные записи SQLite сериализует сам.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Регистрация драйвера sqlite (modernc) для database/sql.
	_ "modernc.org/sqlite"

	"github.com/magabrotheeeer/entitlement-gate/internal/migrations"
)

// Storage инкапсулирует соединение с базой SQLite.
type Storage struct {
	DB *sql.DB
}

// DSN собирает строку подключения с прагмами, которые применяются к каждому соединению.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate", path)
}

// New открывает базу по пути path, создаёт каталог при необходимости и применяет миграции.
func New(ctx context.Context, path string) (*Storage, error) {
	const op = "storage.New"

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// JournalMode возвращает текущий режим журнала, используется в проверках готовности.
func (s *Storage) JournalMode(ctx context.Context) (string, error) {
	const op = "storage.JournalMode"
	var mode string
	if err := s.DB.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return mode, nil
}

// Close закрывает соединение с базой.
func (s *Storage) Close() error {
	return s.DB.Close()
}
