package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/soview/salesorders/internal/adapter/storage"
	"github.com/soview/salesorders/internal/core/domain"
)

const ordersTable = "sales_orders"
const itemsTable = "sales_order_items"

var orderColumns = []string{
	"id", "so_number", "customer_name", "customer_address",
	"order_date", "delivery_date", "total_amount", "status",
	"created_at", "updated_at",
}

var itemColumns = []string{
	"id", "order_id", "description", "quantity", "unit_price", "line_total",
}

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

func (or *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		statement := or.db.QueryBuilder.Insert(ordersTable).
			Columns(orderColumns...).
			Values(order.ID, order.Number, order.CustomerName, order.CustomerAddress,
				order.OrderDate, order.DeliveryDate, order.TotalAmount, order.Status,
				order.CreatedAt, order.UpdatedAt)

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}

		return or.insertItems(ctx, tx, order.Items)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}

	return order, nil
}

func (or *Repository) ReadOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return or.readOrder(ctx, or.db, orderID)
}

func (or *Repository) ReadOrderWithItems(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := or.readOrder(ctx, or.db, orderID)
	if err != nil {
		return nil, err
	}

	statement := or.db.QueryBuilder.
		Select(itemColumns...).
		From(itemsTable).
		Where(sq.Eq{"order_id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.Item, 0)
	for rows.Next() {
		item := domain.Item{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	order.Items = items
	return order, nil
}

func (or *Repository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns...).
		From(ordersTable).
		OrderBy("created_at")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order := domain.Order{}
		err := scanOrder(rows, &order)
		if err != nil {
			return nil, err
		}
		list = append(list, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// ReplaceOrder rewrites the header fields, swaps the whole item set for
// order.Items and re-derives the total from the inserted rows, all in one
// transaction holding the order row lock.
func (or *Repository) ReplaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var result *domain.Order
	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		if err := or.lockOrder(ctx, tx, order.ID); err != nil {
			return err
		}

		statement := or.db.QueryBuilder.Update(ordersTable).
			Set("customer_name", order.CustomerName).
			Set("customer_address", order.CustomerAddress).
			Set("order_date", order.OrderDate).
			Set("delivery_date", order.DeliveryDate).
			Set("status", order.Status).
			Set("updated_at", time.Now()).
			Where(sq.Eq{"id": order.ID})

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		deleteSt := or.db.QueryBuilder.Delete(itemsTable).
			Where(sq.Eq{"order_id": order.ID})
		sql, args, err = deleteSt.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		if err := or.insertItems(ctx, tx, order.Items); err != nil {
			return err
		}

		if err := or.recomputeTotal(ctx, tx, order.ID); err != nil {
			return err
		}

		result, err = or.readOrder(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	result.Items = order.Items
	return result, nil
}

func (or *Repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	statement := or.db.QueryBuilder.Update(ordersTable).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": orderID}).
		Suffix("RETURNING " + strings.Join(orderColumns, ", "))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order := domain.Order{}
	err = scanOrder(or.db.QueryRow(ctx, sql, args...), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (or *Repository) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		deleteItems := or.db.QueryBuilder.Delete(itemsTable).
			Where(sq.Eq{"order_id": orderID})
		sql, args, err := deleteItems.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		deleteOrder := or.db.QueryBuilder.Delete(ordersTable).
			Where(sq.Eq{"id": orderID})
		sql, args, err = deleteOrder.ToSql()
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrDataNotFound
		}
		return nil
	})
}

func (or *Repository) CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		if err := or.lockOrder(ctx, tx, item.OrderID); err != nil {
			return err
		}

		if err := or.insertItems(ctx, tx, []*domain.Item{item}); err != nil {
			return err
		}

		return or.recomputeTotal(ctx, tx, item.OrderID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem matches on both item id and owning order id, so an item id
// paired with an order it does not belong to reads as not found.
func (or *Repository) UpdateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		if err := or.lockOrder(ctx, tx, item.OrderID); err != nil {
			return err
		}

		statement := or.db.QueryBuilder.Update(itemsTable).
			Set("description", item.Description).
			Set("quantity", item.Quantity).
			Set("unit_price", item.UnitPrice).
			Set("line_total", item.LineTotal).
			Where(sq.Eq{"id": item.ID, "order_id": item.OrderID})

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrDataNotFound
		}

		return or.recomputeTotal(ctx, tx, item.OrderID)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (or *Repository) DeleteItem(ctx context.Context, orderID uuid.UUID, itemID uuid.UUID) error {
	return pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		if err := or.lockOrder(ctx, tx, orderID); err != nil {
			return err
		}

		statement := or.db.QueryBuilder.Delete(itemsTable).
			Where(sq.Eq{"id": itemID, "order_id": orderID})

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrDataNotFound
		}

		return or.recomputeTotal(ctx, tx, orderID)
	})
}

func (or *Repository) RecomputeTotal(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var result *domain.Order
	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		if err := or.lockOrder(ctx, tx, orderID); err != nil {
			return err
		}
		if err := or.recomputeTotal(ctx, tx, orderID); err != nil {
			return err
		}
		var err error
		result, err = or.readOrder(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockOrder takes the row lock that serializes concurrent writers of the
// same order. Returns ErrDataNotFound if the order no longer exists.
func (or *Repository) lockOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	statement := or.db.QueryBuilder.
		Select("id").
		From(ordersTable).
		Where(sq.Eq{"id": orderID}).
		Suffix("FOR UPDATE")

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ErrDataNotFound
		}
		return err
	}
	return nil
}

// recomputeTotal re-derives the order total from the item rows visible to
// tx and writes it to the header together with a fresh updated_at. Callers
// hold the order row lock, so the read-sum-write is not racy.
func (or *Repository) recomputeTotal(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	statement := or.db.QueryBuilder.
		Select("line_total").
		From(itemsTable).
		Where(sq.Eq{"order_id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var lineTotal decimal.Decimal
		if err := rows.Scan(&lineTotal); err != nil {
			return err
		}
		total, err = total.Add(lineTotal)
		if err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	update := or.db.QueryBuilder.Update(ordersTable).
		Set("total_amount", total).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": orderID})

	sql, args, err = update.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

func (or *Repository) insertItems(ctx context.Context, tx pgx.Tx, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	statement := or.db.QueryBuilder.Insert(itemsTable).
		Columns(itemColumns...)
	for _, item := range items {
		statement = statement.Values(item.ID, item.OrderID, item.Description,
			item.Quantity, item.UnitPrice, item.LineTotal)
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (or *Repository) readOrder(ctx context.Context, q rowQuerier, orderID uuid.UUID) (*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select(orderColumns...).
		From(ordersTable).
		Where(sq.Eq{"id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order := domain.Order{}
	err = scanOrder(q.QueryRow(ctx, sql, args...), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOrder(row scannable, order *domain.Order) error {
	return row.Scan(
		&order.ID,
		&order.Number,
		&order.CustomerName,
		&order.CustomerAddress,
		&order.OrderDate,
		&order.DeliveryDate,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}
