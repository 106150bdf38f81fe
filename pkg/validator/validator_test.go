package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string `json:"name" binding:"notblank,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Barcode string `json:"barcode" binding:"barcode"`
	Key     string `json:"key" binding:"snakecase"`
	Kind    string `json:"kind" binding:"oneof=a b"`
}

func TestValidate(t *testing.T) {
	v := New()

	ok := sample{Name: "Ann", Email: "ann@example.com", Barcode: "RES-00AB12", Key: "fall_location", Kind: "a"}
	assert.NoError(t, v.Validate(ok))

	bad := sample{Name: "  ", Email: "nope", Barcode: "bad code!", Key: "FallLocation", Kind: "c"}
	err := v.Validate(bad)
	require.Error(t, err)

	verrs, isErrs := err.(*Errors)
	require.True(t, isErrs)
	assert.Contains(t, verrs.Fields, "name is required")
	assert.Contains(t, verrs.Fields, "email must be a valid email")
	assert.Contains(t, verrs.Fields, "barcode is not a valid barcode")
	assert.Contains(t, verrs.Fields, "key must be snake_case")
	assert.Contains(t, verrs.Fields, "kind must be one of [a b]")
}

func TestEmptyBarcodeIsAllowed(t *testing.T) {
	v := New()
	s := sample{Name: "Ann", Email: "ann@example.com", Key: "k", Kind: "b"}
	assert.NoError(t, v.Validate(s))
}
