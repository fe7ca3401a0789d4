package validator_test

import (
	"testing"

	"github.com/goto/lineage/core/validator"
	"gotest.tools/assert"
)

func TestValidateStruct(t *testing.T) {
	type Query struct {
		Direction string `json:"direction" validate:"required,oneof=UPSTREAM DOWNSTREAM"`
		MaxHops   int    `json:"max_hops" validate:"gte=0"`
	}

	type TestCase struct {
		Description string
		Struct      interface{}
		ErrString   string
	}

	testCases := []TestCase{
		{
			Description: "return error with supported values in oneof type validation",
			Struct: Query{
				Direction: "SIDEWAYS",
			},
			ErrString: "error value \"SIDEWAYS\" for key \"direction\" not recognized, only support \"UPSTREAM DOWNSTREAM\"",
		},
		{
			Description: "return error should greater than 0 in integer type validation",
			Struct: Query{
				Direction: "UPSTREAM",
				MaxHops:   -1,
			},
			ErrString: "max_hops cannot be less than 0",
		},
		{
			Description: "return joined errors for every violation",
			Struct: Query{
				MaxHops: -2,
			},
			ErrString: "direction is required and max_hops cannot be less than 0",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Description, func(t *testing.T) {
			err := validator.ValidateStruct(tc.Struct)
			assert.Equal(t, tc.ErrString, err.Error())
		})
	}

	t.Run("translate other violations to english", func(t *testing.T) {
		type Page struct {
			Count int `json:"count" validate:"lte=100"`
		}
		err := validator.ValidateStruct(Page{Count: 101})
		assert.Equal(t, "count must be 100 or less", err.Error())
	})

	t.Run("return nil for valid struct", func(t *testing.T) {
		assert.NilError(t, validator.ValidateStruct(Query{Direction: "DOWNSTREAM", MaxHops: 3}))
	})
}

func TestValidateOneOf(t *testing.T) {
	type TestCase struct {
		Description string
		Value       string
		Enums       []string
		ErrString   string
	}

	testCases := []TestCase{
		{
			Description: "return error with supported values",
			Value:       "random",
			Enums:       []string{"INCOMING", "OUTGOING", "UNDIRECTED"},
			ErrString:   "error value \"random\" not recognized, only support \"INCOMING OUTGOING UNDIRECTED\"",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Description, func(t *testing.T) {
			err := validator.ValidateOneOf(tc.Value, tc.Enums...)
			assert.Equal(t, tc.ErrString, err.Error())
		})
	}

	t.Run("accept empty value", func(t *testing.T) {
		assert.NilError(t, validator.ValidateOneOf("", "INCOMING"))
	})
}
