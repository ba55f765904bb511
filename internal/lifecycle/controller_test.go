package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railwatch/railwatch-go/internal/errors"
	"github.com/railwatch/railwatch-go/internal/model"
	"github.com/railwatch/railwatch-go/internal/session"
)

// fakeMutator records mutation calls and returns a scripted error.
type fakeMutator struct {
	err error

	resolved    []int
	reopened    []int
	deleted     []int
	bulkDeleted [][]int
}

func (f *fakeMutator) ResolveDefect(_ context.Context, id int) error {
	f.resolved = append(f.resolved, id)
	return f.err
}

func (f *fakeMutator) ReopenDefect(_ context.Context, id int) error {
	f.reopened = append(f.reopened, id)
	return f.err
}

func (f *fakeMutator) DeleteDefect(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeMutator) BulkDeleteDefects(_ context.Context, ids []int) error {
	f.bulkDeleted = append(f.bulkDeleted, ids)
	return f.err
}

// fakeSnapshots serves lookups from a fixed record set and counts
// invalidations.
type fakeSnapshots struct {
	records      map[int]model.Defect
	invalidation int
}

func (f *fakeSnapshots) Lookup(id int) (model.Defect, bool) {
	d, ok := f.records[id]
	return d, ok
}

func (f *fakeSnapshots) Invalidate() { f.invalidation++ }

// fakeSelection is a fixed id set with a cleared flag.
type fakeSelection struct {
	ids     []int
	cleared bool
}

func (f *fakeSelection) IDs() []int { return f.ids }
func (f *fakeSelection) Clear()     { f.cleared = true }

func newTestController(t *testing.T, role session.Role, api *fakeMutator, snapshots *fakeSnapshots) *Controller {
	t.Helper()
	sess, err := session.NewContext("operator", role, "test-token")
	require.NoError(t, err)
	return NewController(sess, api, snapshots, nil)
}

func openAndResolvedSnapshots() *fakeSnapshots {
	return &fakeSnapshots{records: map[int]model.Defect{
		1: {ID: 1, DefectType: "Crack", Status: model.StatusOpen},
		2: {ID: 2, DefectType: "Missing Fastener", Status: model.StatusResolved},
	}}
}

func TestResolveHappyPath(t *testing.T) {
	api := &fakeMutator{}
	snapshots := openAndResolvedSnapshots()
	c := newTestController(t, session.RoleStationMaster, api, snapshots)

	optimistic, err := c.Resolve(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, api.resolved)
	assert.Equal(t, 1, snapshots.invalidation)

	// Optimistic copy shows the new status but leaves the server-assigned
	// resolution instant unset
	assert.Equal(t, model.StatusResolved, optimistic.Status)
	assert.Nil(t, optimistic.ResolvedAt)

	// The snapshot itself is never patched in place
	stored, _ := snapshots.Lookup(1)
	assert.Equal(t, model.StatusOpen, stored.Status)
}

func TestResolveRejectsAlreadyResolvedBeforeDispatch(t *testing.T) {
	api := &fakeMutator{}
	snapshots := openAndResolvedSnapshots()
	c := newTestController(t, session.RoleAdmin, api, snapshots)

	_, err := c.Resolve(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))

	// Rejection happens before any network dispatch
	assert.Empty(t, api.resolved)
	assert.Zero(t, snapshots.invalidation)
}

func TestResolveUnknownID(t *testing.T) {
	api := &fakeMutator{}
	c := newTestController(t, session.RoleAdmin, api, openAndResolvedSnapshots())

	_, err := c.Resolve(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, api.resolved)
}

func TestReopenAdminOnly(t *testing.T) {
	api := &fakeMutator{}
	snapshots := openAndResolvedSnapshots()

	sm := newTestController(t, session.RoleStationMaster, api, snapshots)
	_, err := sm.Reopen(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, errors.IsAuthorization(err))
	assert.Empty(t, api.reopened)

	admin := newTestController(t, session.RoleAdmin, api, snapshots)
	optimistic, err := admin.Reopen(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, api.reopened)
	assert.Equal(t, model.StatusOpen, optimistic.Status)
	assert.Nil(t, optimistic.ResolvedAt)
}

func TestResolveServerFailureSkipsReconciliation(t *testing.T) {
	api := &fakeMutator{err: errors.Newf("detection service returned status 500").
		Category(errors.CategoryNetwork).Build()}
	snapshots := openAndResolvedSnapshots()
	c := newTestController(t, session.RoleAdmin, api, snapshots)

	_, err := c.Resolve(context.Background(), 1)
	require.Error(t, err)
	assert.Zero(t, snapshots.invalidation)
}

func TestDeleteAdminOnly(t *testing.T) {
	api := &fakeMutator{}
	snapshots := openAndResolvedSnapshots()

	sm := newTestController(t, session.RoleStationMaster, api, snapshots)
	err := sm.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.IsAuthorization(err))
	assert.Empty(t, api.deleted)

	admin := newTestController(t, session.RoleAdmin, api, snapshots)
	// Delete is status-agnostic: both open and resolved records qualify
	require.NoError(t, admin.Delete(context.Background(), 1))
	require.NoError(t, admin.Delete(context.Background(), 2))
	assert.Equal(t, []int{1, 2}, api.deleted)
	assert.Equal(t, 2, snapshots.invalidation)
}

func TestBulkDeleteEmptySelection(t *testing.T) {
	api := &fakeMutator{}
	c := newTestController(t, session.RoleAdmin, api, openAndResolvedSnapshots())

	err := c.BulkDelete(context.Background(), &fakeSelection{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	assert.Empty(t, api.bulkDeleted)
}

func TestBulkDeleteSuccessClearsSelectionAndResyncs(t *testing.T) {
	api := &fakeMutator{}
	snapshots := openAndResolvedSnapshots()
	c := newTestController(t, session.RoleAdmin, api, snapshots)

	sel := &fakeSelection{ids: []int{1, 2}}
	require.NoError(t, c.BulkDelete(context.Background(), sel))

	require.Len(t, api.bulkDeleted, 1)
	assert.Equal(t, []int{1, 2}, api.bulkDeleted[0])
	assert.True(t, sel.cleared)
	assert.Equal(t, 1, snapshots.invalidation)
}

func TestBulkDeleteFailureRetainsSelection(t *testing.T) {
	api := &fakeMutator{err: errors.Newf("detection service returned status 500").
		Category(errors.CategoryNetwork).Build()}
	snapshots := openAndResolvedSnapshots()
	c := newTestController(t, session.RoleAdmin, api, snapshots)

	sel := &fakeSelection{ids: []int{1, 2}}
	err := c.BulkDelete(context.Background(), sel)
	require.Error(t, err)

	// All-or-nothing: no removals assumed, selection kept for retry
	assert.False(t, sel.cleared)
	assert.Zero(t, snapshots.invalidation)
}

func TestBulkDeleteRequiresAdmin(t *testing.T) {
	api := &fakeMutator{}
	c := newTestController(t, session.RoleStationMaster, api, openAndResolvedSnapshots())

	sel := &fakeSelection{ids: []int{1}}
	err := c.BulkDelete(context.Background(), sel)
	require.Error(t, err)
	assert.True(t, errors.IsAuthorization(err))
	assert.Empty(t, api.bulkDeleted)
	assert.False(t, sel.cleared)
}
