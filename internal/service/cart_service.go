package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// CartService implements the cart aggregator: idempotent-merge add,
// quantity update, remove, and the live minimum-order evaluation.
type CartService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store, redis *redisclient.Client) *CartService {
	return &CartService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// CartView is the storefront cart payload: lines plus the re-evaluated
// minimum-order gate, returned on every cart read and mutation.
type CartView struct {
	Items []models.CartLine `json:"items"`
	Count int               `json:"count"`
	Gate  GateResult        `json:"gate"`
}

// GetCart returns the owner's cart with the gate evaluated
func (cs *CartService) GetCart(ctx context.Context, owner store.CartOwner) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	lines, err := cs.store.GetCartLines(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cs.view(ctx, owner, lines), nil
}

// AddItem adds a product to the cart, merging with an existing line for
// the same product by incrementing its quantity.
func (cs *CartService) AddItem(ctx context.Context, owner store.CartOwner, productID int64, quantity int) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if quantity < 1 {
		quantity = 1
	}

	if _, err := cs.store.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	if _, err := cs.store.UpsertCartItem(ctx, owner, productID, quantity); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	util.CartItemsAddedTotal.Inc()
	return cs.GetCart(ctx, owner)
}

// UpdateQuantity sets an absolute quantity on a cart line; quantities
// below one are rejected (removal is a separate operation).
func (cs *CartService) UpdateQuantity(ctx context.Context, owner store.CartOwner, itemID int64, quantity int) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateQuantity")
	defer span.End()

	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	if _, err := cs.store.UpdateCartItemQuantity(ctx, owner, itemID, quantity); err != nil {
		return nil, err
	}
	return cs.GetCart(ctx, owner)
}

// RemoveItem removes a cart line
func (cs *CartService) RemoveItem(ctx context.Context, owner store.CartOwner, itemID int64) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	if err := cs.store.DeleteCartItem(ctx, owner, itemID); err != nil {
		return nil, err
	}
	return cs.GetCart(ctx, owner)
}

// CartCount returns the total quantity across the owner's cart lines,
// serving the storefront badge from the Redis cache when possible.
func (cs *CartService) CartCount(ctx context.Context, owner store.CartOwner) (int, error) {
	count, err := cs.redis.GetCartCount(ctx, cartCountKey(owner))
	if err != nil {
		cs.logger.Debug("Cart count cache read failed", zap.Error(err))
	}
	if count >= 0 {
		return count, nil
	}

	view, err := cs.GetCart(ctx, owner)
	if err != nil {
		return 0, err
	}
	return view.Count, nil
}

// ClearCart empties the owner's cart, typically after a successful
// checkout.
func (cs *CartService) ClearCart(ctx context.Context, owner store.CartOwner) error {
	if err := cs.store.ClearCart(ctx, owner); err != nil {
		return err
	}
	cs.redis.InvalidateCartCount(ctx, cartCountKey(owner))
	return nil
}

// MergeOnLogin folds the anonymous session cart into the user cart so a
// shopper's cart survives the anonymous-to-authenticated transition.
// Quantities are summed where the same product appears in both carts.
func (cs *CartService) MergeOnLogin(ctx context.Context, sessionID string, userID int64) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.MergeOnLogin")
	defer span.End()

	if err := cs.store.MergeCart(ctx, sessionID, userID); err != nil {
		return nil, fmt.Errorf("failed to merge cart: %w", err)
	}

	cs.logger.Info("Merged session cart into user cart",
		zap.String("session_id", sessionID),
		zap.Int64("user_id", userID))

	cs.redis.InvalidateCartCount(ctx, cartCountKey(store.CartOwner{SessionID: sessionID}))
	return cs.GetCart(ctx, store.CartOwner{UserID: userID})
}

func (cs *CartService) view(ctx context.Context, owner store.CartOwner, lines []models.CartLine) *CartView {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}

	if err := cs.redis.SetCartCount(ctx, cartCountKey(owner), count); err != nil {
		cs.logger.Debug("Failed to cache cart count", zap.Error(err))
	}

	return &CartView{
		Items: lines,
		Count: count,
		Gate:  EvaluateGate(lines),
	}
}

func cartCountKey(owner store.CartOwner) string {
	if owner.UserID > 0 {
		return fmt.Sprintf("user:%d", owner.UserID)
	}
	return fmt.Sprintf("session:%s", owner.SessionID)
}
