package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/tiemmay/api/internal/domain"
	"github.com/tiemmay/api/internal/repositories"
)

var (
	ErrCartInvalidInput = errors.New("cart: invalid input")
	ErrCartLineNotFound = errors.New("cart: line not found")
)

// CartService keeps one session cart per authenticated user in process
// memory. Carts are scratch state: they are never persisted and an order
// snapshot is taken from them at checkout.
type CartService struct {
	products repositories.ProductRepository
	newID    func() string

	mu    sync.Mutex
	carts map[string]*domain.Cart
}

type CartServiceDeps struct {
	Products repositories.ProductRepository
	// NewID overrides cart line id generation, for tests.
	NewID func() string
}

func NewCartService(deps CartServiceDeps) (*CartService, error) {
	if deps.Products == nil {
		return nil, fmt.Errorf("cart service: product repository is required")
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &CartService{
		products: deps.Products,
		newID:    newID,
		carts:    make(map[string]*domain.Cart),
	}, nil
}

// Get returns a snapshot of the user's cart.
func (s *CartService) Get(ctx context.Context, userKey string) (domain.Cart, error) {
	if userKey == "" {
		return domain.Cart{}, fmt.Errorf("%w: user key is required", ErrCartInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart, ok := s.carts[userKey]; ok {
		return cart.Clone(), nil
	}
	return domain.Cart{}, nil
}

// AddItem resolves the product, materializes default selections under
// the caller's overrides, and adds the line. Lines matching an existing
// product and selection set merge by summing quantities. Returns the
// updated cart and the id of the line the item landed on.
func (s *CartService) AddItem(ctx context.Context, userKey string, productID int64, selections domain.SelectedOptions, quantity int) (domain.Cart, string, error) {
	if userKey == "" {
		return domain.Cart{}, "", fmt.Errorf("%w: user key is required", ErrCartInvalidInput)
	}
	if quantity <= 0 {
		return domain.Cart{}, "", fmt.Errorf("%w: quantity must be positive", ErrCartInvalidInput)
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return domain.Cart{}, "", err
	}
	resolved := product.DefaultSelections().Merge(selections)

	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.cartLocked(userKey)
	lineID := cart.AddLine(domain.CartLine{
		ID:         s.newID(),
		Product:    product,
		Selections: resolved,
		Quantity:   quantity,
	})
	return cart.Clone(), lineID, nil
}

// UpdateItem changes a line's selections and quantity. A quantity of
// zero removes the line; a selection change that collides with another
// line merges into it.
func (s *CartService) UpdateItem(ctx context.Context, userKey, lineID string, selections domain.SelectedOptions, quantity int) (domain.Cart, error) {
	if userKey == "" || lineID == "" {
		return domain.Cart{}, fmt.Errorf("%w: user key and line id are required", ErrCartInvalidInput)
	}
	if quantity < 0 {
		return domain.Cart{}, fmt.Errorf("%w: quantity must not be negative", ErrCartInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.cartLocked(userKey)

	var resolved domain.SelectedOptions
	if idx := cartLineIndex(cart, lineID); idx >= 0 {
		if selections == nil {
			// Quantity-only update keeps the current selections.
			resolved = cart.Lines[idx].Selections
		} else {
			resolved = cart.Lines[idx].Product.DefaultSelections().Merge(selections)
		}
	}

	if _, err := cart.UpdateLine(lineID, resolved, quantity); err != nil {
		if errors.Is(err, domain.ErrCartLineNotFound) {
			return domain.Cart{}, fmt.Errorf("%w: %s", ErrCartLineNotFound, lineID)
		}
		return domain.Cart{}, err
	}
	return cart.Clone(), nil
}

// RemoveItem deletes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userKey, lineID string) (domain.Cart, error) {
	if userKey == "" || lineID == "" {
		return domain.Cart{}, fmt.Errorf("%w: user key and line id are required", ErrCartInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.cartLocked(userKey)
	if err := cart.RemoveLine(lineID); err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %s", ErrCartLineNotFound, lineID)
	}
	return cart.Clone(), nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userKey string) error {
	if userKey == "" {
		return fmt.Errorf("%w: user key is required", ErrCartInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userKey)
	return nil
}

func (s *CartService) cartLocked(userKey string) *domain.Cart {
	cart, ok := s.carts[userKey]
	if !ok {
		cart = &domain.Cart{}
		s.carts[userKey] = cart
	}
	return cart
}

func cartLineIndex(cart *domain.Cart, lineID string) int {
	for i := range cart.Lines {
		if cart.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}
