package core

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

type (
	// Transaction is a single ledger entry. Positive amounts are revenues,
	// negative amounts are expenses.
	Transaction struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Amount      Amount `json:"amount"`
		Category    string `json:"category"`
		Date        string `json:"date"`
	}

	// TransactionInput carries the optional fields of a create or update
	// request. A nil field was absent (or null) in the request body.
	TransactionInput struct {
		Description *string `json:"description"`
		Amount      *Amount `json:"amount" validate:"-"`
		Category    *string `json:"category"`
		Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	}

	// TransactionPatch lists the fields an update overwrites.
	TransactionPatch struct {
		Description *string
		Amount      *Amount
		Category    *string
		Date        *string
	}

	// Credentials is the login request body.
	Credentials struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// User is the placeholder profile returned by login.
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	// LoginResult is the login response body.
	LoginResult struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator. Field names in its errors
// are the JSON names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

// ValidateCreate checks that description, amount and category are present,
// in that order, and that the date (when given) is a calendar date.
func (in TransactionInput) ValidateCreate() error {
	if in.Description == nil {
		return MissingField("description")
	}
	if in.Amount == nil {
		return MissingField("amount")
	}
	if in.Category == nil {
		return MissingField("category")
	}
	return in.validateFormat()
}

// ValidatePatch checks the format of the fields present in an update.
func (in TransactionInput) ValidatePatch() error {
	return in.validateFormat()
}

func (in TransactionInput) validateFormat() error {
	if in.Date != nil && *in.Date == "" {
		return &ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"}
	}
	err := Validator().Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Field() == "date" {
			return &ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"}
		}
		return &ValidationError{Field: fe.Field(), Message: "invalid value for field " + fe.Field()}
	}
	return err
}

// NewTransaction builds a transaction from a validated create input.
// The date defaults to today when absent.
func (in TransactionInput) NewTransaction(id string, now time.Time) Transaction {
	t := Transaction{
		ID:          id,
		Description: *in.Description,
		Amount:      *in.Amount,
		Category:    *in.Category,
		Date:        now.Format(DateLayout),
	}
	if in.Date != nil {
		t.Date = *in.Date
	}
	return t
}

// Patch returns the update described by the input.
func (in TransactionInput) Patch() TransactionPatch {
	return TransactionPatch{
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
	}
}

// Apply overwrites the present fields on t. The id is never touched.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.Category == nil && p.Date == nil
}

// Validate checks that both credentials are non-empty.
func (c Credentials) Validate() error {
	if err := Validator().Struct(c); err != nil {
		return &AuthError{Message: "email and password are required"}
	}
	return nil
}
