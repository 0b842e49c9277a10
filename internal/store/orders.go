package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/go-trip-orders/internal/database"
	"github.com/safar/go-trip-orders/internal/models"
)

const orderColumns = `order_id, placing_account_id, total_amount, status,
	cancellation_requests, refund_requests, order_timestamp`

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	var status string
	err := row.Scan(
		&o.OrderID,
		&o.PlacingAccountID,
		&o.TotalAmount,
		&status,
		pq.Array(&o.CancellationRequests),
		pq.Array(&o.RefundRequests),
		&o.OrderTimestamp,
	)
	o.Status = models.ParseOrderStatus(status)
	o.OrderTimestamp = o.OrderTimestamp.UTC()
	if o.CancellationRequests == nil {
		o.CancellationRequests = []string{}
	}
	if o.RefundRequests == nil {
		o.RefundRequests = []string{}
	}
	return o, err
}

func GetOrder(ctx context.Context, q querier, id string) (*models.Order, error) {
	orders, err := queryOrders(ctx, q,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(orders) == 0 {
		return nil, notFound(database.ErrOrderNotFound)
	}
	return &orders[0], nil
}

func ListOrders(ctx context.Context, q querier) ([]models.Order, error) {
	orders, err := queryOrders(ctx, q,
		`SELECT `+orderColumns+` FROM orders ORDER BY order_timestamp, order_id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListOrdersByAccount returns the account's orders, newest first.
func ListOrdersByAccount(ctx context.Context, q querier, accountID string) ([]models.Order, error) {
	orders, err := queryOrders(ctx, q,
		`SELECT `+orderColumns+` FROM orders
		 WHERE placing_account_id = $1
		 ORDER BY order_timestamp DESC, order_id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list orders for account: %w", err)
	}
	return orders, nil
}

func ListOrdersCursor(ctx context.Context, q querier, accountID, cursor string, limit int) (*CursorPage, error) {
	cursorData, ok, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	limit = clampLimit(limit)

	var orders []models.Order
	if ok {
		orders, err = queryOrders(ctx, q,
			`SELECT `+orderColumns+` FROM orders
			 WHERE placing_account_id = $1
			   AND (order_timestamp, order_id) < ($2, $3)
			 ORDER BY order_timestamp DESC, order_id DESC
			 LIMIT $4`,
			accountID, cursorData.OrderTimestamp, cursorData.OrderID, limit+1)
	} else {
		orders, err = queryOrders(ctx, q,
			`SELECT `+orderColumns+` FROM orders
			 WHERE placing_account_id = $1
			 ORDER BY order_timestamp DESC, order_id DESC
			 LIMIT $2`,
			accountID, limit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return buildPage(orders, limit), nil
}

// SaveOrder upserts the order, its line items and its payment in one
// transaction. A replaced payment attempt is deleted.
func SaveOrder(ctx context.Context, db *sql.DB, o *models.Order) error {
	o.UpdateTotalAmount()

	return database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO orders (order_id, placing_account_id, total_amount, status,
			                     cancellation_requests, refund_requests, order_timestamp, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			 ON CONFLICT (order_id) DO UPDATE
			 SET total_amount = EXCLUDED.total_amount,
			     status = EXCLUDED.status,
			     cancellation_requests = EXCLUDED.cancellation_requests,
			     refund_requests = EXCLUDED.refund_requests,
			     updated_at = NOW()`,
			o.OrderID, o.PlacingAccountID, o.TotalAmount, string(o.Status),
			pq.Array(nonNil(o.CancellationRequests)), pq.Array(nonNil(o.RefundRequests)),
			o.OrderTimestamp)
		if err != nil {
			return fmt.Errorf("save order: %w", err)
		}

		for i, li := range o.LineItems {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_line_items (line_item_id, order_id, position, item_id, item_type,
				                               item_name, quantity, unit_price, line_total, status)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				 ON CONFLICT (line_item_id) DO UPDATE
				 SET position = EXCLUDED.position,
				     quantity = EXCLUDED.quantity,
				     unit_price = EXCLUDED.unit_price,
				     line_total = EXCLUDED.line_total,
				     status = EXCLUDED.status`,
				li.LineItemID, o.OrderID, i, li.ItemID, string(li.ItemType),
				li.ItemName, li.Quantity, li.UnitPrice, li.LineTotal, string(li.Status))
			if err != nil {
				return fmt.Errorf("save line item %s: %w", li.LineItemID, err)
			}
		}

		if o.Payment == nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE order_id = $1`, o.OrderID); err != nil {
				return fmt.Errorf("clear payment: %w", err)
			}
			return nil
		}

		p := o.Payment
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM payments WHERE order_id = $1 AND payment_id <> $2`,
			o.OrderID, p.PaymentID); err != nil {
			return fmt.Errorf("replace payment: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO payments (payment_id, order_id, amount, paid_at, method_details, status)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (payment_id) DO UPDATE
			 SET amount = EXCLUDED.amount,
			     paid_at = EXCLUDED.paid_at,
			     method_details = EXCLUDED.method_details,
			     status = EXCLUDED.status`,
			p.PaymentID, o.OrderID, p.Amount, p.Timestamp, p.PaymentMethodDetails, string(p.Status))
		if err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		return nil
	})
}

func queryOrders(ctx context.Context, q querier, query string, args ...any) ([]models.Order, error) {
	orders, err := scanOrders(ctx, q, query, args...)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]*models.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].OrderID
		index[orders[i].OrderID] = &orders[i]
	}

	if err := attachLineItems(ctx, q, ids, index); err != nil {
		return nil, err
	}
	if err := attachPayments(ctx, q, ids, index); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].UpdateTotalAmount()
	}
	return orders, nil
}

func scanOrders(ctx context.Context, q querier, query string, args ...any) ([]models.Order, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.LineItems = []models.SalesLineItem{}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return orders, nil
}

func attachLineItems(ctx context.Context, q querier, ids []string, index map[string]*models.Order) error {
	rows, err := q.QueryContext(ctx,
		`SELECT order_id, line_item_id, item_id, item_type, item_name,
		        quantity, unit_price, line_total, status
		 FROM order_line_items
		 WHERE order_id = ANY($1)
		 ORDER BY order_id, position`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("get line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID, itemType, status string
			li                        models.SalesLineItem
		)
		err := rows.Scan(
			&orderID,
			&li.LineItemID,
			&li.ItemID,
			&itemType,
			&li.ItemName,
			&li.Quantity,
			&li.UnitPrice,
			&li.LineTotal,
			&status,
		)
		if err != nil {
			return fmt.Errorf("scan line item: %w", err)
		}
		li.ItemType = models.ItemType(itemType)
		li.Status = models.ParseLineItemStatus(status)
		li.CalculateLineTotal()
		if o, ok := index[orderID]; ok {
			o.LineItems = append(o.LineItems, li)
		}
	}

	return rows.Err()
}

func attachPayments(ctx context.Context, q querier, ids []string, index map[string]*models.Order) error {
	rows, err := q.QueryContext(ctx,
		`SELECT payment_id, order_id, amount, paid_at, method_details, status
		 FROM payments
		 WHERE order_id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("get payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p      models.Payment
			status string
		)
		err := rows.Scan(
			&p.PaymentID,
			&p.RelatedOrderID,
			&p.Amount,
			&p.Timestamp,
			&p.PaymentMethodDetails,
			&status,
		)
		if err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		p.Status = models.ParsePaymentStatus(status)
		p.Timestamp = p.Timestamp.UTC()
		if o, ok := index[p.RelatedOrderID]; ok {
			o.Payment = &p
		}
	}

	return rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
