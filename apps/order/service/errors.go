package service

import (
	"errors"
	"fmt"

	"order-system/apps/order/model"
)

const (
	ResourceOrder  = "Order"
	ResourceDetail = "Order detail"
)

// NotFoundError 记录不存在
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// StoreError wraps a persistence failure. The attempted write has been
// rolled back by the time it is returned.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var ve *model.ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
