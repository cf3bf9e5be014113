package model

import (
	"time"

	"gorm.io/gorm"
)

// OrderHeader 订单主表
type OrderHeader struct {
	OrderID    uint          `gorm:"column:order_id;primaryKey" json:"order_id"`
	OrderDate  time.Time     `gorm:"column:order_date;not null;index" json:"order_date"`
	CustomerID int64         `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Details    []OrderDetail `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

// OrderDetail 订单明细表
type OrderDetail struct {
	DetailID uint    `gorm:"column:detail_id;primaryKey" json:"detail_id"`
	OrderID  uint    `gorm:"column:order_id;not null;index" json:"order_id"`
	ItemID   int64   `gorm:"column:item_id;not null" json:"item_id"`
	Quantity float64 `gorm:"column:quantity;not null" json:"quantity"`
	UnitRate float64 `gorm:"column:unit_rate;not null" json:"unit_rate"`
	RowTotal float64 `gorm:"column:row_total;not null" json:"row_total"`
}

func (OrderHeader) TableName() string {
	return "order_headers"
}

func (OrderDetail) TableName() string {
	return "order_details"
}

// BeforeSave keeps row_total in step with quantity and unit_rate on every
// write path, including ones that bypass ApplyUpdate.
func (d *OrderDetail) BeforeSave(tx *gorm.DB) error {
	d.RowTotal = RowTotal(d.Quantity, d.UnitRate)
	return nil
}

func RowTotal(quantity, unitRate float64) float64 {
	return quantity * unitRate
}

// NewHeader builds a header from request fields. customer_id is required;
// order_date is resolved through dates.
func NewHeader(fields Fields, dates DatePolicy) (*OrderHeader, error) {
	raw, ok := fields[FieldCustomerID]
	if !ok {
		return nil, &ValidationError{Field: FieldCustomerID, Message: "Customer ID is required"}
	}
	customerID, err := positiveInt(raw, FieldCustomerID, "Customer ID")
	if err != nil {
		return nil, err
	}

	rawDate, present := fields[FieldOrderDate]
	orderDate, err := dates.Resolve(rawDate, present)
	if err != nil {
		return nil, err
	}

	return &OrderHeader{
		CustomerID: customerID,
		OrderDate:  orderDate,
	}, nil
}

// NewDetail builds a detail under orderID. item_id, quantity and unit_rate are
// all required; row_total is always derived.
func NewDetail(orderID uint, fields Fields) (*OrderDetail, error) {
	if missing := fields.missing(FieldItemID, FieldQuantity, FieldUnitRate); len(missing) > 0 {
		return nil, missingFields(missing)
	}

	itemID, err := positiveInt(fields[FieldItemID], FieldItemID, "Item ID")
	if err != nil {
		return nil, err
	}
	quantity, err := parseQuantity(fields[FieldQuantity])
	if err != nil {
		return nil, err
	}
	unitRate, err := parseUnitRate(fields[FieldUnitRate])
	if err != nil {
		return nil, err
	}

	return &OrderDetail{
		OrderID:  orderID,
		ItemID:   itemID,
		Quantity: quantity,
		UnitRate: unitRate,
		RowTotal: RowTotal(quantity, unitRate),
	}, nil
}

// ApplyUpdate assigns every recognized field present in fields. Nothing is
// assigned unless all present fields are valid. It reports whether any
// recognized field was present.
func (h *OrderHeader) ApplyUpdate(fields Fields, dates DatePolicy) (bool, error) {
	next := *h
	changed := false

	if raw, ok := fields[FieldCustomerID]; ok {
		customerID, err := positiveInt(raw, FieldCustomerID, "Customer ID")
		if err != nil {
			return false, err
		}
		next.CustomerID = customerID
		changed = true
	}

	if raw, ok := fields[FieldOrderDate]; ok {
		orderDate, err := dates.Resolve(raw, true)
		if err != nil {
			return false, err
		}
		next.OrderDate = orderDate
		changed = true
	}

	*h = next
	return changed, nil
}

// ApplyUpdate assigns item_id, quantity and unit_rate when present and
// recomputes row_total only when quantity or unit_rate was supplied. A
// client-supplied row_total is never honoured.
func (d *OrderDetail) ApplyUpdate(fields Fields) (bool, error) {
	next := *d
	changed := false
	recalculate := false

	if raw, ok := fields[FieldItemID]; ok {
		itemID, err := positiveInt(raw, FieldItemID, "Item ID")
		if err != nil {
			return false, err
		}
		next.ItemID = itemID
		changed = true
	}

	if raw, ok := fields[FieldQuantity]; ok {
		quantity, err := parseQuantity(raw)
		if err != nil {
			return false, err
		}
		next.Quantity = quantity
		changed, recalculate = true, true
	}

	if raw, ok := fields[FieldUnitRate]; ok {
		unitRate, err := parseUnitRate(raw)
		if err != nil {
			return false, err
		}
		next.UnitRate = unitRate
		changed, recalculate = true, true
	}

	if recalculate {
		next.RowTotal = RowTotal(next.Quantity, next.UnitRate)
	}

	*d = next
	return changed, nil
}

func parseQuantity(raw any) (float64, error) {
	quantity, ok := toFloat(raw)
	if !ok {
		return 0, &ValidationError{Field: FieldQuantity, Message: "Quantity must be a valid number"}
	}
	if quantity <= 0 {
		return 0, &ValidationError{Field: FieldQuantity, Message: "Quantity must be positive"}
	}
	return quantity, nil
}

func parseUnitRate(raw any) (float64, error) {
	unitRate, ok := toFloat(raw)
	if !ok {
		return 0, &ValidationError{Field: FieldUnitRate, Message: "Unit rate must be a valid number"}
	}
	if unitRate < 0 {
		return 0, &ValidationError{Field: FieldUnitRate, Message: "Unit rate cannot be negative"}
	}
	return unitRate, nil
}

func positiveInt(raw any, field, label string) (int64, error) {
	n, ok := toInt(raw)
	if !ok {
		return 0, &ValidationError{Field: field, Message: label + " must be a valid integer"}
	}
	if n <= 0 {
		return 0, &ValidationError{Field: field, Message: label + " must be a positive integer"}
	}
	return n, nil
}
