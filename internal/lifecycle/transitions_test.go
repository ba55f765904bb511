package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railwatch/railwatch-go/internal/errors"
	"github.com/railwatch/railwatch-go/internal/model"
	"github.com/railwatch/railwatch-go/internal/session"
)

func TestCanTransitionGrid(t *testing.T) {
	tests := []struct {
		name       string
		role       session.Role
		status     model.Status
		transition Transition
		category   errors.ErrorCategory // empty means allowed
	}{
		{"stationmaster_resolves_open", session.RoleStationMaster, model.StatusOpen, TransitionResolve, ""},
		{"admin_resolves_open", session.RoleAdmin, model.StatusOpen, TransitionResolve, ""},
		{"resolve_requires_open", session.RoleAdmin, model.StatusResolved, TransitionResolve, errors.CategoryState},
		{"admin_reopens_resolved", session.RoleAdmin, model.StatusResolved, TransitionReopen, ""},
		{"reopen_requires_resolved", session.RoleAdmin, model.StatusOpen, TransitionReopen, errors.CategoryState},
		{"stationmaster_cannot_reopen", session.RoleStationMaster, model.StatusResolved, TransitionReopen, errors.CategoryAuthorization},
		{"admin_deletes_open", session.RoleAdmin, model.StatusOpen, TransitionDelete, ""},
		{"admin_deletes_resolved", session.RoleAdmin, model.StatusResolved, TransitionDelete, ""},
		{"stationmaster_cannot_delete", session.RoleStationMaster, model.StatusOpen, TransitionDelete, errors.CategoryAuthorization},
		{"admin_bulk_deletes", session.RoleAdmin, model.StatusOpen, TransitionBulkDelete, ""},
		{"stationmaster_cannot_bulk_delete", session.RoleStationMaster, model.StatusOpen, TransitionBulkDelete, errors.CategoryAuthorization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.role, tt.status, tt.transition)
			if tt.category == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, tt.category), "expected category %s, got %v", tt.category, err)
		})
	}
}

func TestCanTransitionRoleCheckedBeforeStatus(t *testing.T) {
	// A stationmaster reopening an open defect fails on authorization, not
	// on the status precondition
	err := CanTransition(session.RoleStationMaster, model.StatusOpen, TransitionReopen)
	require.Error(t, err)
	assert.True(t, errors.IsAuthorization(err))
}

func TestCanTransitionUnknownTransition(t *testing.T) {
	err := CanTransition(session.RoleAdmin, model.StatusOpen, Transition("escalate"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestFallbackMessage(t *testing.T) {
	assert.Equal(t, "Failed to mark defect as resolved", FallbackMessage(TransitionResolve))
	assert.Equal(t, "Failed to reopen defect", FallbackMessage(TransitionReopen))
	assert.Equal(t, "Failed to delete defect", FallbackMessage(TransitionDelete))
	assert.Equal(t, "Failed to delete defects", FallbackMessage(TransitionBulkDelete))
	assert.Equal(t, "Operation failed", FallbackMessage(Transition("escalate")))
}
