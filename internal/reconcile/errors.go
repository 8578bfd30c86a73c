package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrLocalNotFound is returned by stores when a local record does not exist
	ErrLocalNotFound = errors.New("local record not found")
	// ErrRunInProgress is returned when the configuration is already being synchronized
	ErrRunInProgress = errors.New("synchronization of this configuration is already running")
)

// UnknownRemoteFieldError means a quantity mapping names a key the remote variant does not have
type UnknownRemoteFieldError struct {
	Field string
}

func (e *UnknownRemoteFieldError) Error() string {
	return fmt.Sprintf("Unknown InSales field: %s", e.Field)
}

// VariantSkuMissingError means a remote variant carries no SKU to match on
type VariantSkuMissingError struct {
	ProductID int64
	VariantID int64
}

func (e *VariantSkuMissingError) Error() string {
	return fmt.Sprintf("Variant with InSales Product ID %d and Variant ID %d have no SKU", e.ProductID, e.VariantID)
}

// ProductNotFoundError covers both sides: no local variant for a SKU,
// or a remote product that could not be fetched.
type ProductNotFoundError struct {
	Ref string
	Err error
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product with InSales ID %s not found", e.Ref)
}

func (e *ProductNotFoundError) Unwrap() error { return e.Err }

// VariantNotFoundError means a remote variant could not be fetched
type VariantNotFoundError struct {
	VariantID int64
	Err       error
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("Variant with InSales Variant ID %d not found", e.VariantID)
}

func (e *VariantNotFoundError) Unwrap() error { return e.Err }

// MultipleProductError means a SKU matches more than one local variant
type MultipleProductError struct {
	SKU string
}

func (e *MultipleProductError) Error() string {
	return fmt.Sprintf("Multiple products with internal reference %s found in Odoo", e.SKU)
}

// AdditionalFieldIDError is returned when an additional field cannot be resolved on the shop
type AdditionalFieldIDError struct {
	Field string
	Err   error
}

func (e *AdditionalFieldIDError) Error() string {
	return fmt.Sprintf("Can't get additional field id: %s", e.Field)
}

func (e *AdditionalFieldIDError) Unwrap() error { return e.Err }

// IsRecordLevel reports whether err only concerns the current record,
// so batch processing can log it and move on.
func IsRecordLevel(err error) bool {
	var (
		unknownField *UnknownRemoteFieldError
		skuMissing   *VariantSkuMissingError
		notFound     *ProductNotFoundError
		multiple     *MultipleProductError
	)
	return errors.As(err, &unknownField) ||
		errors.As(err, &skuMissing) ||
		errors.As(err, &notFound) ||
		errors.As(err, &multiple)
}
