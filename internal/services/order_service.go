package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/tiemmay/api/internal/domain"
	"github.com/tiemmay/api/internal/platform/events"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
	"github.com/tiemmay/api/internal/platform/requestctx"
	"github.com/tiemmay/api/internal/repositories"
)

var (
	ErrOrderInvalidInput = errors.New("order: invalid input")
	ErrOrderEmptyCart    = errors.New("order: cart is empty")
	ErrOrderNotFound     = errors.New("order: not found")
)

const maxNoteLength = 500

// OrderService assembles orders from session carts. An order document is
// written exactly once, fully populated, under a client-side generated
// id; the customer profile upsert happens before the order write so a
// failed order never leaves a dangling profile reference.
type OrderService struct {
	orders    repositories.OrderRepository
	customers repositories.CustomerRepository
	products  repositories.ProductRepository
	publisher events.Publisher
	clock     func() time.Time
	newID     func() string
	sanitizer *bluemonday.Policy
}

type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Customers repositories.CustomerRepository
	Products  repositories.ProductRepository
	Publisher events.Publisher
	// Clock and NewID override time and id generation, for tests.
	Clock func() time.Time
	NewID func() string
}

func NewOrderService(deps OrderServiceDeps) (*OrderService, error) {
	if deps.Orders == nil {
		return nil, fmt.Errorf("order service: order repository is required")
	}
	if deps.Customers == nil {
		return nil, fmt.Errorf("order service: customer repository is required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("order service: product repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &OrderService{
		orders:    deps.Orders,
		customers: deps.Customers,
		products:  deps.Products,
		publisher: deps.Publisher,
		clock:     clock,
		newID:     newID,
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

// CreateOrderInput carries the checkout payload next to the session cart
// it snapshots. StoreID is the pickup store the caller chose at checkout;
// it gates validation only and is not persisted on the order record.
type CreateOrderInput struct {
	PhoneNumber string
	UserName    string
	Address     string
	Note        string
	StoreID     string
	ReceiveAt   time.Time
	Cart        domain.Cart
}

// CreateOrder validates the input, upserts the customer profile, and
// persists the denormalised order in a single write.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (domain.Order, error) {
	phone := strings.TrimSpace(input.PhoneNumber)
	address := strings.TrimSpace(input.Address)
	if phone == "" {
		return domain.Order{}, fmt.Errorf("%w: phone number is required", ErrOrderInvalidInput)
	}
	if address == "" {
		return domain.Order{}, fmt.Errorf("%w: address is required", ErrOrderInvalidInput)
	}
	if strings.TrimSpace(input.StoreID) == "" {
		return domain.Order{}, fmt.Errorf("%w: store is not selected", ErrOrderInvalidInput)
	}
	if input.ReceiveAt.IsZero() {
		return domain.Order{}, fmt.Errorf("%w: receive time is required", ErrOrderInvalidInput)
	}
	if len(input.Cart.Lines) == 0 {
		return domain.Order{}, ErrOrderEmptyCart
	}
	note := strings.TrimSpace(s.sanitizer.Sanitize(input.Note))
	if len(note) > maxNoteLength {
		return domain.Order{}, fmt.Errorf("%w: note exceeds %d characters", ErrOrderInvalidInput, maxNoteLength)
	}

	customer := domain.Customer{
		PhoneNumber: phone,
		UserName:    strings.TrimSpace(input.UserName),
		Address:     address,
	}
	if err := s.customers.Upsert(ctx, customer); err != nil {
		return domain.Order{}, fmt.Errorf("upsert customer: %w", err)
	}

	now := s.clock().UTC()
	order := domain.Order{
		ID:          s.newID(),
		PhoneNumber: phone,
		Address:     address,
		Note:        note,
		CreatedAt:   now,
		ReceivedAt:  input.ReceiveAt.UTC(),
	}
	for _, line := range input.Cart.Lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID:    line.Product.ID,
			ProductName:  line.Product.Name,
			ProductImage: line.Product.Image,
			BasePrice:    line.Product.BasePrice,
			Selections:   line.Selections.Clone(),
			Quantity:     line.Quantity,
			FinalPrice:   line.UnitPrice(),
			LineTotal:    line.LineTotal(),
		})
	}
	order.TotalAmount = input.Cart.TotalPrice()

	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	if s.publisher != nil {
		payload := map[string]any{
			"order_id":     order.ID,
			"phone_number": order.PhoneNumber,
			"total_amount": order.TotalAmount,
			"created_at":   order.CreatedAt.Format(time.RFC3339),
		}
		if err := s.publisher.Publish(ctx, events.OrderCreated, payload); err != nil {
			requestctx.Logger(ctx).Warn("order event publish failed",
				zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	return order, nil
}

// ListByPhone returns the customer's orders newest first, degrading to
// an empty list when the backend read fails.
func (s *OrderService) ListByPhone(ctx context.Context, phoneNumber string) ([]domain.Order, error) {
	phone := strings.TrimSpace(phoneNumber)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone number is required", ErrOrderInvalidInput)
	}
	orders, err := s.orders.ListByPhone(ctx, phone)
	if err != nil {
		return degradeList[domain.Order](ctx, "list orders by phone", err)
	}
	return orders, nil
}

// ListAll returns every order for the admin view.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return degradeList[domain.Order](ctx, "list all orders", err)
	}
	return orders, nil
}

// GetCustomer loads the profile last saved for the phone number.
func (s *OrderService) GetCustomer(ctx context.Context, phoneNumber string) (domain.Customer, error) {
	phone := strings.TrimSpace(phoneNumber)
	if phone == "" {
		return domain.Customer{}, fmt.Errorf("%w: phone number is required", ErrOrderInvalidInput)
	}
	customer, err := s.customers.Get(ctx, phone)
	if err != nil {
		if platformfs.IsNotFound(err) {
			return domain.Customer{}, fmt.Errorf("%w: customer %s", ErrOrderNotFound, phone)
		}
		return domain.Customer{}, err
	}
	return customer, nil
}

// OrderTotal resolves the display total for an order. Denormalised
// orders carry their total; legacy id-list orders are priced against the
// current catalog, skipping products that no longer exist.
func (s *OrderService) OrderTotal(ctx context.Context, order domain.Order) (int64, error) {
	if !order.IsLegacy() {
		return order.TotalAmount, nil
	}
	var total int64
	for _, productID := range order.LegacyProductIDs {
		product, err := s.products.Get(ctx, productID)
		if err != nil {
			if platformfs.IsNotFound(err) {
				continue
			}
			return 0, err
		}
		total += domain.FinalPrice(product, product.DefaultSelections())
	}
	return total, nil
}
