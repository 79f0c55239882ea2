package storage

import (
	"testing"

	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
)

func TestCheckQuery(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *core.Selections)
		wantErr bool
	}{
		{"empty", func(*core.Selections) {}, false},
		{"canonical budget", func(s *core.Selections) { s.Set(core.FieldBudget, core.Budget2To5M) }, false},
		{"budget ignores case", func(s *core.Selections) { s.Set(core.FieldBudget, "$5m+") }, false},
		{"unknown budget", func(s *core.Selections) { s.Set(core.FieldBudget, "cheap") }, true},
		{"unknown field", func(s *core.Selections) { s.Values[core.Field("view")] = []string{"Sea"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := core.NewSelections()
			tt.setup(&sel)
			err := CheckQuery(sel)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
