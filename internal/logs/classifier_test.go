package logs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laundry-station-backend/internal/apperr"
)

func TestParseCode(t *testing.T) {
	testCases := []struct {
		in      float64
		want    Code
		wantErr bool
	}{
		{1, 10, false},
		{2, 20, false},
		{3.1, 31, false},
		{3.2, 32, false},
		{4.1, 41, false},
		{5.2, 52, false},
		{99.9, 999, false},
		{0, 0, true},
		{-1, 0, true},
		{3.14, 0, true}, // two fractional digits
	}

	for _, tc := range testCases {
		got, err := ParseCode(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "code %v", tc.in)
			assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
		} else {
			require.NoError(t, err, "code %v", tc.in)
			assert.Equal(t, tc.want, got)
			assert.InDelta(t, tc.in, got.Float64(), 1e-9)
		}
	}
}

func TestClassify(t *testing.T) {
	t.Run("Known station codes map to their actions", func(t *testing.T) {
		assert.Equal(t, ActionPowerOff, Classify(ActorStation, 10).Action)
		assert.Equal(t, ActionPowerOn, Classify(ActorStation, 20).Action)
		assert.Equal(t, ActionStartManualWorking, Classify(ActorStation, 31).Action)
		assert.Equal(t, ActionUpdateWorkingProcess, Classify(ActorStation, 32).Action)
		assert.Equal(t, ActionStartMaintenance, Classify(ActorStation, 41).Action)
		assert.Equal(t, ActionEndMaintenance, Classify(ActorStation, 42).Action)
		assert.Equal(t, ActionHeaterOn, Classify(ActorStation, 51).Action)
		assert.Equal(t, ActionHeaterOff, Classify(ActorStation, 52).Action)
	})

	t.Run("Unknown codes classify to no action", func(t *testing.T) {
		c := Classify(ActorStation, 77)
		assert.Equal(t, ActionNone, c.Action)
		assert.Nil(t, c.Schema)
	})

	t.Run("Server entries never imply an action", func(t *testing.T) {
		assert.Equal(t, ActionNone, Classify(ActorServer, 10).Action)
	})
}

func TestClassifyError(t *testing.T) {
	t.Run("Scoped error codes resolve per scope", func(t *testing.T) {
		c := ClassifyError(ActorStation, 10, ScopePublic)
		assert.Equal(t, ActionRaiseError, c.Action)
		assert.Contains(t, c.Schema, "message")

		c = ClassifyError(ActorStation, 20, ScopeService)
		assert.Equal(t, ActionRaiseError, c.Action)
		assert.Contains(t, c.Schema, "component")
	})

	t.Run("A code registered for ALL matches any scope", func(t *testing.T) {
		assert.Equal(t, ActionRaiseError, ClassifyError(ActorStation, 30, ScopePublic).Action)
		assert.Equal(t, ActionRaiseError, ClassifyError(ActorStation, 30, ScopeService).Action)
	})

	t.Run("Scope mismatch classifies to no action", func(t *testing.T) {
		assert.Equal(t, ActionNone, ClassifyError(ActorStation, 10, ScopeService).Action)
		assert.Equal(t, ActionNone, ClassifyError(ActorStation, 20, ScopePublic).Action)
	})
}

func TestSchemaValidate(t *testing.T) {
	schema := Schema{
		"machine_number": TypeInt,
		"agent_number":   TypeInt,
		"volume":         TypeNumber,
	}

	t.Run("A complete payload passes", func(t *testing.T) {
		err := schema.Validate(Payload{
			"machine_number": float64(1), // JSON numbers decode to float64
			"agent_number":   float64(2),
			"volume":         2.5,
		})
		assert.NoError(t, err)
	})

	t.Run("A missing field fails", func(t *testing.T) {
		err := schema.Validate(Payload{"machine_number": float64(1), "agent_number": float64(2)})
		assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	})

	t.Run("A wrong type fails", func(t *testing.T) {
		err := schema.Validate(Payload{
			"machine_number": "one",
			"agent_number":   float64(2),
			"volume":         2.5,
		})
		assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	})

	t.Run("A fractional value is not an int", func(t *testing.T) {
		err := schema.Validate(Payload{
			"machine_number": 1.5,
			"agent_number":   float64(2),
			"volume":         2.5,
		})
		assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	})

	t.Run("An undeclared field fails", func(t *testing.T) {
		err := schema.Validate(Payload{
			"machine_number": float64(1),
			"agent_number":   float64(2),
			"volume":         2.5,
			"extra":          true,
		})
		assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	})

	t.Run("A nil schema admits only an empty payload", func(t *testing.T) {
		var none Schema
		assert.NoError(t, none.Validate(Payload{}))
		assert.NoError(t, none.Validate(nil))
		assert.Error(t, none.Validate(Payload{"anything": 1}))
	})

	t.Run("Int lists accept JSON arrays of integral numbers", func(t *testing.T) {
		queue := Schema{"machines_queue": TypeIntList}
		assert.NoError(t, queue.Validate(Payload{"machines_queue": []any{float64(1), float64(2)}}))
		assert.Error(t, queue.Validate(Payload{"machines_queue": []any{float64(1), "x"}}))
		assert.Error(t, queue.Validate(Payload{"machines_queue": "1,2"}))
	})
}

func TestPayloadAccessors(t *testing.T) {
	p := Payload{
		"machine_number": float64(3),
		"volume":         1.5,
		"message":        "drum jammed",
		"machines_queue": []any{float64(2), float64(4)},
	}
	assert.Equal(t, 3, p.Int("machine_number"))
	assert.Equal(t, 1.5, p.Float("volume"))
	assert.Equal(t, "drum jammed", p.String("message"))
	assert.Equal(t, []int{2, 4}, p.IntSlice("machines_queue"))
}
