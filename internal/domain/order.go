package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Статусы заказа хранятся как свободная строка; ядро их не меняет.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// Order — снимок заказа.
//
// FindByID заполняет только идентификаторы связей. FindByIDWithDetails
// дополнительно разрешает Customer и ShippingAddress в рамках одного чтения,
// поэтому снимок самодостаточен и не требует обращений к хранилищу.
type Order struct {
	ID                int64
	CustomerID        int64
	EmployeeID        *int64
	ShippingAddressID *int64
	OrderDate         time.Time
	Status            string
	// TotalAmount соответствует DECIMAL(10,2).
	TotalAmount decimal.Decimal
	ItemIDs     []int64
	PaymentID   *int64
	ShipmentID  *int64

	Customer        *Customer
	ShippingAddress *Address
}

// DetailsLoaded сообщает, что заказ прочитан вместе со связями.
func (o *Order) DetailsLoaded() bool {
	return o != nil && o.Customer != nil && o.Customer.ID == o.CustomerID
}

// ValidateInvariants проверяет инварианты снимка и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID <= 0 {
		errs = append(errs, fmt.Errorf("%w: order customer_id is required", ErrInvalidInput))
	}
	if o.ShippingAddress != nil {
		if o.ShippingAddressID == nil || *o.ShippingAddressID != o.ShippingAddress.ID {
			errs = append(errs, fmt.Errorf("%w: shipping address reference mismatch", ErrInvalidInput))
		}
		if o.ShippingAddress.CustomerID != o.CustomerID {
			errs = append(errs, ErrCrossCustomerAddress)
		}
	}

	return errs
}

// Clone возвращает глубокую копию заказа, не разделяющую указатели с оригиналом.
func (o Order) Clone() Order {
	out := o
	out.EmployeeID = cloneID(o.EmployeeID)
	out.ShippingAddressID = cloneID(o.ShippingAddressID)
	out.PaymentID = cloneID(o.PaymentID)
	out.ShipmentID = cloneID(o.ShipmentID)
	if o.ItemIDs != nil {
		out.ItemIDs = append(make([]int64, 0, len(o.ItemIDs)), o.ItemIDs...)
	}
	if o.Customer != nil {
		c := *o.Customer
		out.Customer = &c
	}
	if o.ShippingAddress != nil {
		a := *o.ShippingAddress
		out.ShippingAddress = &a
	}
	return out
}

// IDRef возвращает указатель на копию идентификатора.
func IDRef(id int64) *int64 {
	return &id
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
