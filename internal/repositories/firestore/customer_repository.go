package firestore

import (
	"context"
	"fmt"

	"github.com/tiemmay/api/internal/domain"
	platformfs "github.com/tiemmay/api/internal/platform/firestore"
)

const customerCollection = "customers"

// CustomerRepository keeps one profile document per phone number,
// merge-written so repeat orders only overwrite the fields they carry.
type CustomerRepository struct {
	base *platformfs.BaseRepository[domain.Customer]
}

func NewCustomerRepository(provider *platformfs.Provider) *CustomerRepository {
	return &CustomerRepository{
		base: platformfs.NewBaseRepository(provider, customerCollection, nil, decodeCustomer),
	}
}

func (r *CustomerRepository) Upsert(ctx context.Context, customer domain.Customer) error {
	if customer.PhoneNumber == "" {
		return fmt.Errorf("customer phone number is required")
	}
	fields := map[string]any{
		"phone_number": customer.PhoneNumber,
	}
	if customer.UserName != "" {
		fields["user_name"] = customer.UserName
	}
	if customer.Address != "" {
		fields["address"] = customer.Address
	}
	return r.base.Merge(ctx, customer.PhoneNumber, fields)
}

func (r *CustomerRepository) Get(ctx context.Context, phoneNumber string) (domain.Customer, error) {
	doc, err := r.base.Get(ctx, phoneNumber)
	if err != nil {
		return domain.Customer{}, err
	}
	return doc.Data, nil
}

func decodeCustomer(id string, data map[string]any) (domain.Customer, error) {
	c := domain.Customer{
		PhoneNumber: asString(data["phone_number"]),
		UserName:    asString(data["user_name"]),
		Address:     asString(data["address"]),
	}
	if c.PhoneNumber == "" {
		c.PhoneNumber = id
	}
	return c, nil
}
