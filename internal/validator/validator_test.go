package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingBody struct {
	LocationID  uint64 `json:"id_location" validate:"required"`
	BookingDate string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	Duration    int    `json:"duration" validate:"required,gte=1,lte=24"`
}

type discountBody struct {
	Value string `json:"discount_value" validate:"required,discount_value"`
}

func TestValidateStruct_ReportsJSONNames(t *testing.T) {
	fields := ValidateStruct(bookingBody{BookingDate: "01-11-2026", Duration: 30})
	require.Len(t, fields, 3)

	byField := map[string]*ErrorResponse{}
	for _, f := range fields {
		byField[f.FailedField] = f
	}
	assert.Equal(t, "required", byField["id_location"].Tag)
	assert.Equal(t, "datetime", byField["booking_date"].Tag)
	assert.Equal(t, "lte", byField["duration"].Tag)
	assert.Equal(t, "24", byField["duration"].Value)
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.Nil(t, ValidateStruct(bookingBody{LocationID: 1, BookingDate: "2026-11-01", Duration: 2}))
}

func TestDiscountValueRule(t *testing.T) {
	for _, ok := range []string{"15%", "12.5%", "10000", "0.5"} {
		assert.Nil(t, ValidateStruct(discountBody{Value: ok}), ok)
	}
	for _, bad := range []string{"abc", "-5", "15%%", "%", "1e3"} {
		assert.NotNil(t, ValidateStruct(discountBody{Value: bad}), bad)
	}
}

func TestEchoValidator(t *testing.T) {
	err := EchoValidator{}.Validate(bookingBody{LocationID: 1, BookingDate: "2026-11-01"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "duration failed required", ve.Error())

	assert.NoError(t, EchoValidator{}.Validate(bookingBody{LocationID: 1, BookingDate: "2026-11-01", Duration: 1}))
}
