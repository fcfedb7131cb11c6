package registration

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/raffle-registry/internal/types"
)

// MinimumPayment is one unit of the platform's native currency expressed
// in its smallest denomination (10^24).
var MinimumPayment = new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports the first registration rule a request broke.
// Nothing is written when Register returns one.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field names as reported by ValidationError.Field.
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldNationalID   = "nationalId"
	FieldEmail        = "email"
	FieldTicketNumber = "ticketNumber"
	FieldPayment      = "payment"
)

var reasons = map[string]string{
	"FirstName":    "first name must contain 3 or more characters",
	"LastName":     "last name must contain 3 or more characters",
	"NationalID":   "national id is invalid",
	"Email":        "email must contain 7 or more characters",
	"TicketNumber": "ticket number is invalid",
}

var fieldNames = map[string]string{
	"FirstName":    FieldFirstName,
	"LastName":     FieldLastName,
	"NationalID":   FieldNationalID,
	"Email":        FieldEmail,
	"TicketNumber": FieldTicketNumber,
}

const paymentReason = "a payment of at least 1 unit is required to register"

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("utf16min", utf16Min); err != nil {
		panic(fmt.Sprintf("register utf16min: %v", err))
	}
	return v
}

// utf16Min reports whether a string field holds at least param UTF-16
// code units.
func utf16Min(fl validator.FieldLevel) bool {
	minLen, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(utf16.Encode([]rune(fl.Field().String()))) >= minLen
}

// check applies the participant rules in field order, then the payment
// rule. Only the first failure is returned.
func check(p types.Participant, payment *big.Int) error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return fmt.Errorf("validate participant: %w", err)
		}
		// The validator walks struct fields in declaration order, so the
		// first entry is the first rule broken.
		first := verrs[0].StructField()
		return &ValidationError{Field: fieldNames[first], Reason: reasons[first]}
	}

	if payment == nil || payment.Cmp(MinimumPayment) < 0 {
		return &ValidationError{Field: FieldPayment, Reason: paymentReason}
	}

	return nil
}
