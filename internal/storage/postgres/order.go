package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/pizza-be/internal/models"
	"github.com/hongminglow/pizza-be/internal/storage"
	"github.com/jackc/pgx/v5"
)

// GetMenu returns the menu ordered by id.
func (s *Store) GetMenu(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, description, image, price FROM menu ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.MenuItem, error) {
		var it models.MenuItem
		err := row.Scan(&it.ID, &it.Title, &it.Description, &it.Image, &it.Price)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}
	return items, nil
}

// AddMenuItem inserts a menu item.
func (s *Store) AddMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	const query = `INSERT INTO menu (title, description, image, price) VALUES ($1, $2, $3, $4) RETURNING id;`
	if err := s.pool.QueryRow(ctx, query, item.Title, item.Description, item.Image, item.Price).Scan(&item.ID); err != nil {
		return models.MenuItem{}, fmt.Errorf("add menu item: %w", err)
	}
	return item, nil
}

// CreateOrder stores a new order and its items in the created state.
func (s *Store) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	order.Status = models.OrderCreated
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var exists bool
		const check = `SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1 AND franchise_id = $2);`
		if err := tx.QueryRow(ctx, check, order.StoreID, order.FranchiseID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return storage.ErrNotFound
		}

		const insert = `
		INSERT INTO orders (diner_id, franchise_id, store_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date;
		`
		if err := tx.QueryRow(ctx, insert, order.DinerID, order.FranchiseID, order.StoreID, string(order.Status)).Scan(&order.ID, &order.Date); err != nil {
			return err
		}
		for i := range order.Items {
			it := &order.Items[i]
			const insertItem = `INSERT INTO order_items (order_id, menu_id, description, price) VALUES ($1, $2, $3, $4) RETURNING id;`
			if err := tx.QueryRow(ctx, insertItem, order.ID, it.MenuID, it.Description, it.Price).Scan(&it.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Order{}, err
		}
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// CompleteOrder records the factory outcome and credits store revenue on success.
func (s *Store) CompleteOrder(ctx context.Context, id int64, status models.OrderStatus, factoryJWT, reportURL string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		const update = `
		UPDATE orders SET status = $2, factory_jwt = $3, report_url = $4
		WHERE id = $1 AND status = 'created'
		RETURNING store_id;
		`
		var storeID int64
		err := tx.QueryRow(ctx, update, id, string(status), factoryJWT, reportURL).Scan(&storeID)
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1);`, id).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return storage.ErrAlreadyExists
			}
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		if status != models.OrderFulfilled {
			return nil
		}
		const credit = `
		UPDATE stores SET total_revenue = total_revenue + (
			SELECT COALESCE(SUM(price), 0) FROM order_items WHERE order_id = $1
		) WHERE id = $2;
		`
		_, err = tx.Exec(ctx, credit, id, storeID)
		return err
	})
}

// ListOrders pages through a diner's orders, newest first.
func (s *Store) ListOrders(ctx context.Context, dinerID int64, page int) ([]models.Order, bool, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		return []models.Order{}, false, nil
	}
	const query = `
	SELECT id, diner_id, franchise_id, store_id, date, status, factory_jwt, report_url
	FROM orders WHERE diner_id = $1
	ORDER BY id DESC LIMIT $2 OFFSET $3;
	`
	rows, err := s.pool.Query(ctx, query, dinerID, storage.OrdersPerPage+1, int64(page-1)*storage.OrdersPerPage)
	if err != nil {
		return nil, false, fmt.Errorf("list orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Order, error) {
		var o models.Order
		var status string
		err := row.Scan(&o.ID, &o.DinerID, &o.FranchiseID, &o.StoreID, &o.Date, &status, &o.FactoryJWT, &o.ReportURL)
		o.Status = models.OrderStatus(status)
		return o, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("list orders: %w", err)
	}

	more := len(orders) > storage.OrdersPerPage
	if more {
		orders = orders[:storage.OrdersPerPage]
	}
	for i := range orders {
		items, err := s.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, false, err
		}
		orders[i].Items = items
	}
	return orders, more, nil
}

func (s *Store) orderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, menu_id, description, price FROM order_items WHERE order_id = $1 ORDER BY id;`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OrderItem, error) {
		var it models.OrderItem
		err := row.Scan(&it.ID, &it.MenuID, &it.Description, &it.Price)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return items, nil
}
