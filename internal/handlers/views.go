package handlers

import (
	"time"

	"github.com/tiemmay/api/internal/domain"
)

type priceChangeView struct {
	Type    string  `json:"type"`
	Amount  int64   `json:"amount,omitempty"`
	Percent float64 `json:"percent,omitempty"`
}

func newPriceChangeView(change *domain.PriceChange) *priceChangeView {
	if change == nil {
		return nil
	}
	view := &priceChangeView{Type: string(change.Kind)}
	if change.Kind == domain.PriceChangePercent {
		view.Percent = change.Percent
	} else {
		view.Amount = change.Amount
	}
	return view
}

type optionView struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	PriceChange *priceChangeView `json:"price_change,omitempty"`
}

type variantView struct {
	ID      string       `json:"id"`
	Label   string       `json:"label"`
	Type    string       `json:"type"`
	Default any          `json:"default,omitempty"`
	Options []optionView `json:"options"`
}

type productView struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Image        string           `json:"image,omitempty"`
	Price        int64            `json:"price"`
	CurrentPrice int64            `json:"current_price"`
	Sale         *priceChangeView `json:"sale,omitempty"`
	CategoryID   string           `json:"category_id,omitempty"`
	Variants     []variantView    `json:"variants,omitempty"`
}

func newProductView(p domain.Product) productView {
	view := productView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Image:        p.Image,
		Price:        p.BasePrice,
		CurrentPrice: domain.FinalPrice(p, p.DefaultSelections()),
		Sale:         newPriceChangeView(p.Sale),
		CategoryID:   p.CategoryID,
	}
	for _, v := range p.Variants {
		variant := variantView{
			ID:    v.ID,
			Label: v.Label,
			Type:  string(v.Kind),
		}
		if v.Kind == domain.VariantMultiple {
			if len(v.DefaultOptions) > 0 {
				variant.Default = v.DefaultOptions
			}
		} else if v.DefaultOption != "" {
			variant.Default = v.DefaultOption
		}
		for _, opt := range v.Options {
			variant.Options = append(variant.Options, optionView{
				ID:          opt.ID,
				Label:       opt.Label,
				PriceChange: newPriceChangeView(opt.PriceChange),
			})
		}
		view.Variants = append(view.Variants, variant)
	}
	return view
}

type categoryView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type storeView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func newStoreView(s domain.Store) storeView {
	return storeView{ID: s.ID, Name: s.Name, Address: s.Address, Latitude: s.Lat, Longitude: s.Lng}
}

type cartLineView struct {
	ID              string         `json:"id"`
	ProductID       int64          `json:"product_id"`
	ProductName     string         `json:"product_name"`
	ProductImage    string         `json:"product_image,omitempty"`
	SelectedOptions map[string]any `json:"selected_options"`
	Quantity        int            `json:"quantity"`
	UnitPrice       int64          `json:"unit_price"`
	LineTotal       int64          `json:"line_total"`
}

type cartView struct {
	Lines         []cartLineView `json:"items"`
	TotalQuantity int            `json:"total_quantity"`
	TotalAmount   int64          `json:"total_amount"`
}

func newCartView(cart domain.Cart) cartView {
	view := cartView{
		Lines:         make([]cartLineView, 0, len(cart.Lines)),
		TotalQuantity: cart.TotalQuantity(),
		TotalAmount:   cart.TotalPrice(),
	}
	for _, line := range cart.Lines {
		view.Lines = append(view.Lines, cartLineView{
			ID:              line.ID,
			ProductID:       line.Product.ID,
			ProductName:     line.Product.Name,
			ProductImage:    line.Product.Image,
			SelectedOptions: selectionsView(line.Selections),
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice(),
			LineTotal:       line.LineTotal(),
		})
	}
	return view
}

type orderLineView struct {
	ProductID       int64          `json:"product_id"`
	ProductName     string         `json:"product_name"`
	ProductImage    string         `json:"product_image,omitempty"`
	SelectedOptions map[string]any `json:"selected_options"`
	Quantity        int            `json:"quantity"`
	FinalPrice      int64          `json:"final_price"`
	LineTotal       int64          `json:"line_total"`
}

type orderView struct {
	ID          string          `json:"id"`
	PhoneNumber string          `json:"phone_number"`
	Address     string          `json:"address"`
	Note        string          `json:"note,omitempty"`
	Items       []orderLineView `json:"cart_items"`
	ProductIDs  []int64         `json:"product_ids,omitempty"`
	TotalAmount int64           `json:"total_amount"`
	CreatedAt   string          `json:"created_at,omitempty"`
	ReceivedAt  string          `json:"received_at,omitempty"`
}

func newOrderView(order domain.Order, total int64) orderView {
	view := orderView{
		ID:          order.ID,
		PhoneNumber: order.PhoneNumber,
		Address:     order.Address,
		Note:        order.Note,
		Items:       make([]orderLineView, 0, len(order.Lines)),
		ProductIDs:  order.LegacyProductIDs,
		TotalAmount: total,
		CreatedAt:   formatTime(order.CreatedAt),
		ReceivedAt:  formatTime(order.ReceivedAt),
	}
	for _, line := range order.Lines {
		view.Items = append(view.Items, orderLineView{
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			ProductImage:    line.ProductImage,
			SelectedOptions: selectionsView(line.Selections),
			Quantity:        line.Quantity,
			FinalPrice:      line.FinalPrice,
			LineTotal:       line.LineTotal,
		})
	}
	return view
}

type customerView struct {
	PhoneNumber string `json:"phone_number"`
	UserName    string `json:"user_name,omitempty"`
	Address     string `json:"address,omitempty"`
}

type appointmentView struct {
	ID              string         `json:"id"`
	PhoneNumber     string         `json:"phone_number"`
	UserName        string         `json:"user_name,omitempty"`
	ProductID       int64          `json:"product_id"`
	ProductName     string         `json:"product_name"`
	ProductImage    string         `json:"product_image,omitempty"`
	SelectedOptions map[string]any `json:"selected_options"`
	StoreID         string         `json:"store_id"`
	StoreName       string         `json:"store_name"`
	StoreAddress    string         `json:"store_address"`
	Date            string         `json:"appointment_date"`
	Time            string         `json:"appointment_time"`
	Status          string         `json:"status"`
	Note            string         `json:"note,omitempty"`
	CreatedAt       string         `json:"created_at,omitempty"`
	UpdatedAt       string         `json:"updated_at,omitempty"`
}

func newAppointmentView(appt domain.Appointment) appointmentView {
	return appointmentView{
		ID:              appt.ID,
		PhoneNumber:     appt.PhoneNumber,
		UserName:        appt.UserName,
		ProductID:       appt.ProductID,
		ProductName:     appt.ProductName,
		ProductImage:    appt.ProductImage,
		SelectedOptions: selectionsView(appt.Selections),
		StoreID:         appt.StoreID,
		StoreName:       appt.StoreName,
		StoreAddress:    appt.StoreAddress,
		Date:            formatDate(appt.Date),
		Time:            formatTime(appt.Time),
		Status:          string(appt.Status),
		Note:            appt.Note,
		CreatedAt:       formatTime(appt.CreatedAt),
		UpdatedAt:       formatTime(appt.UpdatedAt),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
