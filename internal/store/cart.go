package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"
)

// CartOwner identifies the owning cart: an authenticated user when
// UserID > 0, otherwise the anonymous session.
type CartOwner struct {
	SessionID string
	UserID    int64
}

func (o CartOwner) valid() bool {
	return o.UserID > 0 || o.SessionID != ""
}

// ownerClause returns the WHERE fragment and argument selecting this
// owner's cart rows, using the given placeholder index.
func (o CartOwner) ownerClause(n int) (string, interface{}) {
	if o.UserID > 0 {
		return fmt.Sprintf("user_id = $%d", n), o.UserID
	}
	return fmt.Sprintf("session_id = $%d", n), o.SessionID
}

// GetCartLines retrieves the owner's cart items joined with product data
func (s *Store) GetCartLines(ctx context.Context, owner CartOwner) ([]models.CartLine, error) {
	if !owner.valid() {
		return nil, fmt.Errorf("cart owner not identified")
	}

	clause, arg := owner.ownerClause(1)
	query := fmt.Sprintf(`
		SELECT ci.*, p.slug AS product_slug, p.name_uz AS product_name_uz,
		       p.name_ru AS product_name_ru, p.price AS unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.%s AND p.is_active = TRUE
		ORDER BY ci.created_at`, clause)

	var lines []models.CartLine
	err := s.db.SelectContext(ctx, &lines, query, arg)
	return lines, err
}

// GetCartItem retrieves a single cart item scoped to its owner
func (s *Store) GetCartItem(ctx context.Context, owner CartOwner, itemID int64) (*models.CartItem, error) {
	clause, arg := owner.ownerClause(2)
	var item models.CartItem
	err := s.db.GetContext(ctx, &item,
		fmt.Sprintf("SELECT * FROM cart_items WHERE id = $1 AND %s", clause), itemID, arg)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart item not found: %d", itemID)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertCartItem adds a product to the owner's cart. Re-adding an already
// carried product increments its quantity instead of duplicating the row.
func (s *Store) UpsertCartItem(ctx context.Context, owner CartOwner, productID int64, quantity int) (*models.CartItem, error) {
	if !owner.valid() {
		return nil, fmt.Errorf("cart owner not identified")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	clause, arg := owner.ownerClause(2)
	var item models.CartItem
	err = tx.GetContext(ctx, &item,
		fmt.Sprintf("SELECT * FROM cart_items WHERE product_id = $1 AND %s FOR UPDATE", clause),
		productID, arg)

	switch {
	case err == sql.ErrNoRows:
		sessionID := sql.NullString{String: owner.SessionID, Valid: owner.UserID == 0}
		userID := sql.NullInt64{Int64: owner.UserID, Valid: owner.UserID > 0}
		err = tx.GetContext(ctx, &item, `
			INSERT INTO cart_items (session_id, user_id, product_id, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING *`, sessionID, userID, productID, quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to insert cart item: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		err = tx.GetContext(ctx, &item, `
			UPDATE cart_items SET quantity = quantity + $1, updated_at = NOW()
			WHERE id = $2
			RETURNING *`, quantity, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to merge cart item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItemQuantity sets an absolute quantity on an owned cart item
func (s *Store) UpdateCartItemQuantity(ctx context.Context, owner CartOwner, itemID int64, quantity int) (*models.CartItem, error) {
	clause, arg := owner.ownerClause(3)
	var item models.CartItem
	err := s.db.GetContext(ctx, &item, fmt.Sprintf(`
		UPDATE cart_items SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND %s
		RETURNING *`, clause), quantity, itemID, arg)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart item not found: %d", itemID)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteCartItem removes an owned cart item
func (s *Store) DeleteCartItem(ctx context.Context, owner CartOwner, itemID int64) error {
	clause, arg := owner.ownerClause(2)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM cart_items WHERE id = $1 AND %s", clause), itemID, arg)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cart item not found: %d", itemID)
	}
	return nil
}

// ClearCart removes all of the owner's cart items
func (s *Store) ClearCart(ctx context.Context, owner CartOwner) error {
	if !owner.valid() {
		return fmt.Errorf("cart owner not identified")
	}
	clause, arg := owner.ownerClause(1)
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM cart_items WHERE %s", clause), arg)
	return err
}

// MergeCart folds an anonymous session cart into a user cart, summing
// quantities where the same product appears in both. The session rows are
// gone afterwards; the whole merge is one transaction.
func (s *Store) MergeCart(ctx context.Context, sessionID string, userID int64) error {
	if sessionID == "" || userID <= 0 {
		return fmt.Errorf("merge requires a session id and a user id")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE cart_items u
		SET quantity = u.quantity + a.quantity, updated_at = NOW()
		FROM cart_items a
		WHERE u.user_id = $1 AND a.session_id = $2 AND a.product_id = u.product_id`,
		userID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to merge overlapping cart lines: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM cart_items a
		WHERE a.session_id = $1
		  AND EXISTS (
			SELECT 1 FROM cart_items u
			WHERE u.user_id = $2 AND u.product_id = a.product_id)`,
		sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to drop merged session lines: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE cart_items
		SET user_id = $1, session_id = NULL, updated_at = NOW()
		WHERE session_id = $2`, userID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to adopt session lines: %w", err)
	}

	return tx.Commit()
}
