package database

// Order table queries
const (
	InsertOrderTableSQL = `
		INSERT INTO order_table (number_of_guests, empty)
		VALUES ($1, $2)
		RETURNING id`

	GetOrderTableSQL = `
		SELECT id, number_of_guests, empty
		FROM order_table WHERE id = $1`

	GetOrderTableForShareSQL = `
		SELECT empty
		FROM order_table WHERE id = $1
		FOR SHARE`

	ListOrderTablesSQL = `
		SELECT id, number_of_guests, empty
		FROM order_table ORDER BY id`

	UpdateOrderTableEmptySQL = `
		UPDATE order_table SET empty = $1
		WHERE id = $2
		RETURNING id, number_of_guests, empty`
)

// Menu catalog queries
const (
	InsertMenuGroupSQL = `
		INSERT INTO menu_group (name) VALUES ($1)
		RETURNING id`

	ListMenuGroupsSQL = `
		SELECT id, name FROM menu_group ORDER BY id`

	MenuGroupExistsSQL = `
		SELECT EXISTS(SELECT 1 FROM menu_group WHERE id = $1)`

	InsertProductSQL = `
		INSERT INTO product (name, price) VALUES ($1, $2::numeric)
		RETURNING id`

	ListProductsSQL = `
		SELECT id, name, price::text FROM product ORDER BY id`

	CountProductsSQL = `
		SELECT COUNT(*) FROM product WHERE id = ANY($1)`

	InsertMenuSQL = `
		INSERT INTO menu (name, price, menu_group_id) VALUES ($1, $2::numeric, $3)
		RETURNING id`

	InsertMenuProductSQL = `
		INSERT INTO menu_product (menu_id, product_id, quantity) VALUES ($1, $2, $3)
		RETURNING seq`

	ListMenusSQL = `
		SELECT id, name, price::text, menu_group_id FROM menu ORDER BY id`

	ListMenuProductsSQL = `
		SELECT seq, menu_id, product_id, quantity FROM menu_product ORDER BY menu_id, seq`

	CountMenusSQL = `
		SELECT COUNT(*) FROM menu WHERE id = ANY($1)`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (order_table_id, order_status, ordered_time)
		VALUES ($1, $2, $3)
		RETURNING id`

	InsertOrderLineItemSQL = `
		INSERT INTO order_line_item (order_id, menu_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING seq`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`

	GetOrderSQL = `
		SELECT id, order_table_id, order_status, ordered_time
		FROM orders WHERE id = $1`

	GetOrderForUpdateSQL = `
		SELECT id, order_table_id, order_status, ordered_time
		FROM orders WHERE id = $1
		FOR UPDATE`

	ListOrdersSQL = `
		SELECT id, order_table_id, order_status, ordered_time
		FROM orders ORDER BY id`

	GetOrderLineItemsSQL = `
		SELECT seq, order_id, menu_id, quantity
		FROM order_line_item WHERE order_id = $1 ORDER BY seq`

	ListOrderLineItemsSQL = `
		SELECT seq, order_id, menu_id, quantity
		FROM order_line_item ORDER BY order_id, seq`

	UpdateOrderStatusSQL = `
		UPDATE orders SET order_status = $1
		WHERE id = $2`

	OrderExistsSQL = `
		SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`

	GetOrderStatusHistorySQL = `
		SELECT status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC`
)
