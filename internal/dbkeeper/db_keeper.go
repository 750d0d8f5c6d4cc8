package dbkeeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/drstein77/ordercalc/internal/models"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

type DBKeeper struct {
	pool *pgxpool.Pool
	log  Log
}

func NewDBKeeper(ctx context.Context, dsn func() string, migrationsDir string, log Log) (*DBKeeper, error) {
	addr := dsn()
	if addr == "" {
		return nil, errors.New("database dsn is empty")
	}

	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	if err := runMigrations(addr, migrationsDir, log); err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	log.Info("Connected!")

	return &DBKeeper{
		pool: pool,
		log:  log,
	}, nil
}

// inTx runs fn in a transaction, rolling back when fn or the commit fails.
func (kp *DBKeeper) inTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	if kp.pool == nil {
		return fmt.Errorf("database connection pool is nil")
	}

	tx, err := kp.pool.Begin(ctx)
	if err != nil {
		kp.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				kp.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		return err
	}
	return nil
}

// execBatch sends the queued statements and checks each result.
func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, execErr := br.Exec(); execErr != nil {
			br.Close()
			return fmt.Errorf("failed to execute batch query: %w", execErr)
		}
	}
	if closeErr := br.Close(); closeErr != nil {
		return fmt.Errorf("failed to close batch results: %w", closeErr)
	}
	return nil
}

func (kp *DBKeeper) SaveProducts(ctx context.Context, products []models.Product) error {
	err := kp.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM products`)
		for i, p := range products {
			batch.Queue(`
				INSERT INTO products (id, position, name, size, price, category, container)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				p.ID, i, p.Name, p.Size, p.Price.Float(), p.Category, string(p.Container))
		}
		return execBatch(ctx, tx, batch)
	})
	if err != nil {
		return err
	}

	kp.log.Info("Products saved", zap.Int("count", len(products)))
	return nil
}

func (kp *DBKeeper) LoadProducts(ctx context.Context) ([]models.Product, error) {
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	rows, err := kp.pool.Query(ctx, `
		SELECT id, name, size, price, category, container
		FROM products
		ORDER BY position
	`)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			product   models.Product
			price     float64
			container string
		)
		if err := rows.Scan(&product.ID, &product.Name, &product.Size, &price, &product.Category, &container); err != nil {
			kp.log.Error("Failed to scan row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		product.Price = models.Number(price)
		product.Container = models.Container(container)
		products = append(products, product)
	}

	if rows.Err() != nil {
		kp.log.Error("Error occurred during rows iteration", zap.Error(rows.Err()))
		return nil, fmt.Errorf("error during rows iteration: %w", rows.Err())
	}

	kp.log.Info("Successfully retrieved all products", zap.Int("count", len(products)))
	return products, nil
}

func (kp *DBKeeper) SaveHistory(ctx context.Context, history []models.Order) error {
	err := kp.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		// order_items go with their orders through ON DELETE CASCADE
		batch.Queue(`DELETE FROM orders`)
		for _, o := range history {
			batch.Queue(`INSERT INTO orders (created_at, total) VALUES ($1, $2)`, o.Date, o.Total)
			for i, item := range o.Items {
				batch.Queue(`
					INSERT INTO order_items (order_date, position, product_id, quantity, price, container)
					VALUES ($1, $2, $3, $4, $5, $6)`,
					o.Date, i, item.ID, item.Quantity.Float(), item.Price.Float(), string(item.Container))
			}
		}
		return execBatch(ctx, tx, batch)
	})
	if err != nil {
		return err
	}

	kp.log.Info("History saved", zap.Int("count", len(history)))
	return nil
}

func (kp *DBKeeper) LoadHistory(ctx context.Context) ([]models.Order, error) {
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	rows, err := kp.pool.Query(ctx, `SELECT created_at, total FROM orders ORDER BY created_at DESC`)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	var history []models.Order
	index := make(map[int64]int)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.Date, &o.Total); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Date = o.Date.UTC()
		index[o.Date.UnixNano()] = len(history)
		history = append(history, o)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", rows.Err())
	}

	rows, err = kp.pool.Query(ctx, `
		SELECT order_date, product_id, quantity, price, container
		FROM order_items
		ORDER BY order_date, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			date            time.Time
			item            models.LineItem
			quantity, price float64
			container       string
		)
		if err := rows.Scan(&date, &item.ID, &quantity, &price, &container); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		i, ok := index[date.UTC().UnixNano()]
		if !ok {
			continue
		}
		item.Quantity = models.Number(quantity)
		item.Price = models.Number(price)
		item.Container = models.Container(container)
		history[i].Items = append(history[i].Items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", rows.Err())
	}

	kp.log.Info("Successfully retrieved history", zap.Int("count", len(history)))
	return history, nil
}

func (kp *DBKeeper) LoadTheme(ctx context.Context) (string, error) {
	if kp.pool == nil {
		return "", fmt.Errorf("database connection pool is nil")
	}

	var theme string
	err := kp.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = 'theme'`).Scan(&theme)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	return theme, nil
}

func (kp *DBKeeper) SaveTheme(ctx context.Context, theme string) error {
	if kp.pool == nil {
		return fmt.Errorf("database connection pool is nil")
	}

	_, err := kp.pool.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ('theme', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, theme)
	if err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

func (kp *DBKeeper) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kp.pool.Ping(ctx); err != nil {
		kp.log.Error("Database ping failed", zap.Error(err))
		return false
	}

	return true
}

func (kp *DBKeeper) Close() bool {
	if kp.pool != nil {
		kp.pool.Close()
		kp.log.Info("Database connection pool closed")
		return true
	}
	kp.log.Info("Attempted to close a nil database connection pool")
	return false
}
