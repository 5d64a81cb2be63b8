package tx

import (
	"context"
	"fmt"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txKey - ключ для хранения транзакции в контексте. Используем приватный тип, чтобы избежать коллизий.
type txKeyType struct{}

var txKey = txKeyType{}

// TxManager управляет жизненным циклом транзакций БД.
type TxManager interface {
	// Do выполняет переданную функцию `fn` внутри транзакции.
	// Если `fn` возвращает ошибку, транзакция откатывается (Rollback).
	// Если `fn` завершается успешно (возвращает nil), транзакция фиксируется (Commit).
	// Контекст, передаваемый в `fn`, будет содержать саму транзакцию.
	Do(ctx context.Context, fn func(ctx context.Context) error) error

	// DoSnapshot работает как Do, но открывает транзакцию только на чтение
	// с уровнем изоляции REPEATABLE READ: все чтения внутри fn видят один снимок данных.
	DoSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

// pgxTxManager - реализация TxManager для pgx.
type pgxTxManager struct {
	pool   *pgxpool.Pool
	logger interfaces.LoggerPort
}

// NewTxManager создает новый менеджер транзакций.
func NewTxManager(pool *pgxpool.Pool, logger interfaces.LoggerPort) TxManager {
	return &pgxTxManager{pool: pool, logger: logger}
}

// Do реализует метод интерфейса TxManager.
func (m *pgxTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, pgx.TxOptions{}, fn)
}

// DoSnapshot реализует метод интерфейса TxManager.
func (m *pgxTxManager) DoSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, fn)
}

func (m *pgxTxManager) run(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("tx.Begin failed: %w", err)
	}

	txCtx := WithTx(ctx, tx)

	// Rollback после Commit возвращает pgx.ErrTxClosed, его игнорируем.
	// defer нужен для случая паники внутри fn.
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(txCtx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && m.logger != nil {
			m.logger.WarnWithContext(ctx, "Не удалось откатить транзакцию после ошибки",
				interfaces.LogField{Key: "rollback_error", Value: rollbackErr.Error()},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit failed: %w", err)
	}

	return nil
}

// WithTx кладет транзакцию в контекст.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTxFromContext извлекает транзакцию из контекста.
// Репозитории используют ее, чтобы выполнять запросы в рамках текущей единицы работы.
func GetTxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}
