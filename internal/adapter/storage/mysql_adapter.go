package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ptl2504/text-vending/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS drinks (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(64) NOT NULL UNIQUE,
		cost INT NOT NULL,
		stock INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(64) NOT NULL UNIQUE,
		money INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS logs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		message TEXT NOT NULL
	)`,
}

var seedItems = []domain.Item{
	{Name: "soda", Cost: 5, Stock: 30},
	{Name: "orangejuice", Cost: 10, Stock: 5},
	{Name: "water", Cost: 2, Stock: 10},
}

// EnsureSchema creates the catalog, account, and audit tables when missing.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// Seed inserts the initial catalog and the single account, but only
// into empty tables. Safe to call on every startup.
func (m *MySQLAdapter) Seed(ctx context.Context, account string, balance int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx, `SELECT id FROM drinks LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		for _, item := range seedItems {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO drinks (name, cost, stock) VALUES (?, ?, ?)`,
				item.Name, item.Cost, item.Stock,
			); err != nil {
				return fmt.Errorf("seed drinks: %w", err)
			}
		}
	} else if err != nil {
		return fmt.Errorf("check drinks: %w", err)
	}

	err = tx.QueryRowContext(ctx, `SELECT id FROM users LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (name, money) VALUES (?, ?)`, account, balance,
		); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("check users: %w", err)
	}

	return tx.Commit()
}

func (m *MySQLAdapter) GetItem(ctx context.Context, name string) (*domain.Item, error) {
	var item domain.Item
	err := m.db.QueryRowContext(ctx, `
		SELECT name, cost, stock FROM drinks WHERE name = ?`, name,
	).Scan(&item.Name, &item.Cost, &item.Stock)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}

	return &item, nil
}

func (m *MySQLAdapter) GetAccount(ctx context.Context, name string) (*domain.Account, error) {
	var acct domain.Account
	err := m.db.QueryRowContext(ctx, `
		SELECT name, money FROM users WHERE name = ?`, name,
	).Scan(&acct.Name, &acct.Balance)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}

	return &acct, nil
}

// DeductBalance subtracts amount only when funds cover it, in one
// statement, so concurrent deductions cannot take the balance negative.
func (m *MySQLAdapter) DeductBalance(ctx context.Context, name string, amount int) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE users
		SET money = money - ?
		WHERE name = ? AND money >= ?`,
		amount, name, amount,
	)
	if err != nil {
		return false, fmt.Errorf("update balance: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (m *MySQLAdapter) SetBalance(ctx context.Context, name string, balance int) error {
	if _, err := m.db.ExecContext(ctx, `
		UPDATE users SET money = ? WHERE name = ?`, balance, name,
	); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

// Append adds one audit entry and returns its sequence id.
func (m *MySQLAdapter) Append(ctx context.Context, message string) (int64, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO logs (message) VALUES (?)`, message,
	)
	if err != nil {
		return 0, fmt.Errorf("insert log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("log insert id: %w", err)
	}
	return id, nil
}
