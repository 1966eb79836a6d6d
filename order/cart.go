package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"foodagent"
	"foodagent/allergen"
	"foodagent/catalog"
	"foodagent/store"
)

const (
	CartKey    = "cart"
	HistoryKey = "orders"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnknownProduct  = errors.New("unknown product")
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrNotInCart       = errors.New("product is not in the cart")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// ProductLookup resolves catalog products by ID.
type ProductLookup interface {
	Product(id string) (catalog.Product, bool)
}

// Cart is the persisted shopping cart of the active organization.
type Cart struct {
	store    store.Store
	products ProductLookup
	profiles foodagent.ProfileProvider
	slack    foodagent.SlackClient
	channel  string
	now      func() time.Time
	newID    func() string
}

type CartOption func(*Cart)

// WithSlack posts a confirmation to channel after each checkout.
func WithSlack(client foodagent.SlackClient, channel string) CartOption {
	return func(c *Cart) {
		c.slack = client
		c.channel = channel
	}
}

func NewCart(s store.Store, products ProductLookup, profiles foodagent.ProfileProvider, opts ...CartOption) *Cart {
	c := &Cart{
		store:    s,
		products: products,
		profiles: profiles,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add puts qty units of a product into the cart. When the product conflicts with
// the organization's allergen exclusions and override is false, the cart is left
// untouched and the check result is returned with allergen.ErrOverrideRequired.
func (c *Cart) Add(ctx context.Context, productID string, qty int, override bool) (allergen.Result, error) {
	if qty <= 0 {
		return allergen.Result{}, ErrInvalidQuantity
	}
	p, ok := c.products.Product(productID)
	if !ok {
		return allergen.Result{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	if !p.InStock {
		return allergen.Result{}, fmt.Errorf("%w: %s", ErrOutOfStock, p.Name)
	}

	prof, err := c.profiles.Profile(ctx)
	if err != nil {
		return allergen.Result{}, err
	}
	res := allergen.Check(allergen.FromProduct(p), prof)
	if res.HasViolation && !override {
		slog.Info("CART: Allergen violation, override required", "product", p.ID, "allergens", res.ViolatedAllergens)
		return res, allergen.ErrOverrideRequired
	}

	items, err := c.Items(ctx)
	if err != nil {
		return res, err
	}
	merged := false
	for i := range items {
		if items[i].Product.ID == p.ID {
			items[i].Quantity += qty
			items[i].Product = p
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, Item{Product: p, Quantity: qty})
	}
	if err := c.save(ctx, items); err != nil {
		return res, err
	}

	slog.Info("CART: Item added", "product", p.ID, "quantity", qty, "overridden", res.HasViolation)
	return res, nil
}

// SetQuantity replaces the quantity of a cart line. A quantity of zero or less
// removes the line.
func (c *Cart) SetQuantity(ctx context.Context, productID string, qty int) error {
	items, err := c.Items(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].Product.ID != productID {
			continue
		}
		if qty <= 0 {
			items = append(items[:i], items[i+1:]...)
		} else {
			items[i].Quantity = qty
		}
		return c.save(ctx, items)
	}
	return fmt.Errorf("%w: %s", ErrNotInCart, productID)
}

func (c *Cart) Remove(ctx context.Context, productID string) error {
	return c.SetQuantity(ctx, productID, 0)
}

// Items returns the cart lines in insertion order.
func (c *Cart) Items(ctx context.Context) ([]Item, error) {
	items, err := store.GetJSON(ctx, c.store, CartKey, []Item{})
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return items, nil
}

func (c *Cart) Total(ctx context.Context) (float64, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return 0, err
	}
	return Total(items), nil
}

func (c *Cart) Clear(ctx context.Context) error {
	return c.save(ctx, []Item{})
}

// Checkout turns the cart into a completed order, appends it to the history and
// empties the cart. A failed Slack notification is logged, not returned.
func (c *Cart) Checkout(ctx context.Context) (Order, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return Order{}, err
	}
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}

	o := Order{
		ID:        c.newID(),
		Timestamp: c.now().UTC(),
		Items:     items,
		Total:     Total(items),
		Status:    StatusCompleted,
	}

	history, err := c.History(ctx)
	if err != nil {
		return Order{}, err
	}
	history = append(history, o)
	if err := store.SetJSON(ctx, c.store, HistoryKey, history); err != nil {
		return Order{}, fmt.Errorf("save order history: %w", err)
	}
	if err := c.Clear(ctx); err != nil {
		return o, err
	}

	slog.Info("CART: Checkout complete", "order_id", o.ID, "items", len(o.Items), "total", o.Total)
	c.notify(ctx, o)
	return o, nil
}

// History returns every placed order, oldest first.
func (c *Cart) History(ctx context.Context) ([]Order, error) {
	history, err := store.GetJSON(ctx, c.store, HistoryKey, []Order{})
	if err != nil {
		return nil, fmt.Errorf("load order history: %w", err)
	}
	return history, nil
}

func (c *Cart) notify(ctx context.Context, o Order) {
	if c.slack == nil {
		return
	}
	var orgName string
	if prof, err := c.profiles.Profile(ctx); err == nil && prof != nil {
		orgName = prof.Name
	}
	if err := c.slack.PostMessage(ctx, c.channel, o.Summary(orgName)); err != nil {
		slog.Error("CART: Failed to post order confirmation", "error", err, "order_id", o.ID)
	}
}

func (c *Cart) save(ctx context.Context, items []Item) error {
	if err := store.SetJSON(ctx, c.store, CartKey, items); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
