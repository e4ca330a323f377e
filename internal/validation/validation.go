package validation

import (
	"errors"
	"fmt"
	"strings"

	"kitchenpos/internal/models"
)

const maxNameLength = 255

// ValidationError reports which request field was rejected.
// Err is the domain error the rejection maps to.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// OrderFieldError maps a line item rule violation from models.NewOrder to the
// request field it concerns. Other errors are returned unchanged.
func OrderFieldError(err error) error {
	var lineErr *models.LineItemError
	if !errors.As(err, &lineErr) {
		return err
	}

	field := "orderLineItems"
	if lineErr.Index >= 0 {
		field = fmt.Sprintf("orderLineItems[%d].%s", lineErr.Index, lineErr.Field)
	}
	return ValidationError{
		Field:   field,
		Message: lineErr.Message,
		Err:     models.ErrInvalidOrder,
	}
}

// ValidateChangeOrderStatusRequest parses the requested status
func ValidateChangeOrderStatusRequest(req *models.ChangeOrderStatusRequest) (models.OrderStatus, error) {
	if req.OrderStatus == "" {
		return "", ValidationError{
			Field:   "orderStatus",
			Message: "order status is required",
			Err:     models.ErrInvalidOrderStatus,
		}
	}

	status, err := models.ParseOrderStatus(req.OrderStatus)
	if err != nil {
		return "", ValidationError{
			Field:   "orderStatus",
			Message: fmt.Sprintf("unknown order status %q", req.OrderStatus),
			Err:     models.ErrInvalidOrderStatus,
		}
	}
	return status, nil
}

func ValidateTableCreateRequest(req *models.TableCreateRequest) error {
	if req.NumberOfGuests < 0 {
		return ValidationError{
			Field:   "numberOfGuests",
			Message: "number of guests must not be negative",
			Err:     models.ErrInvalidTable,
		}
	}
	return nil
}

func ValidateMenuGroupCreateRequest(req *models.MenuGroupCreateRequest) error {
	return validateName(req.Name, models.ErrInvalidMenuGroup)
}

func ValidateProductCreateRequest(req *models.ProductCreateRequest) error {
	if err := validateName(req.Name, models.ErrInvalidProduct); err != nil {
		return err
	}
	if req.Price == nil {
		return ValidationError{Field: "price", Message: "price is required", Err: models.ErrInvalidProduct}
	}
	if req.Price.IsNegative() {
		return ValidationError{Field: "price", Message: "price must not be negative", Err: models.ErrInvalidProduct}
	}
	return nil
}

func ValidateMenuCreateRequest(req *models.MenuCreateRequest) error {
	if err := validateName(req.Name, models.ErrInvalidMenu); err != nil {
		return err
	}
	if req.Price == nil {
		return ValidationError{Field: "price", Message: "price is required", Err: models.ErrInvalidMenu}
	}
	if req.Price.IsNegative() {
		return ValidationError{Field: "price", Message: "price must not be negative", Err: models.ErrInvalidMenu}
	}
	if req.MenuGroupID <= 0 {
		return ValidationError{Field: "menuGroupId", Message: "menu group id is required", Err: models.ErrInvalidMenu}
	}
	if len(req.MenuProducts) == 0 {
		return ValidationError{
			Field:   "menuProducts",
			Message: "at least one menu product is required",
			Err:     models.ErrInvalidMenu,
		}
	}

	for i, mp := range req.MenuProducts {
		if mp.ProductID <= 0 {
			return ValidationError{
				Field:   fmt.Sprintf("menuProducts[%d].productId", i),
				Message: "product id is required",
				Err:     models.ErrInvalidMenu,
			}
		}
		if mp.Quantity <= 0 {
			return ValidationError{
				Field:   fmt.Sprintf("menuProducts[%d].quantity", i),
				Message: "quantity must be greater than 0",
				Err:     models.ErrInvalidMenu,
			}
		}
	}
	return nil
}

func validateName(name string, kind error) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "name", Message: "name is required", Err: kind}
	}
	if len(name) > maxNameLength {
		return ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("name must be at most %d characters", maxNameLength),
			Err:     kind,
		}
	}
	return nil
}
