package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyActionFulfill(t *testing.T) {
	o := &Order{Status: StatusOrdered}
	changed, msg, err := ApplyAction(o, ActionFulfill, "", "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, o.Fulfilled)
	assert.Equal(t, StatusProcessed, o.Status)
	assert.NotEmpty(t, msg)
}

func TestApplyActionCancel(t *testing.T) {
	o := &Order{Status: StatusOrdered}
	changed, _, err := ApplyAction(o, ActionCancel, "", "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestApplyActionCancelShippedRejected(t *testing.T) {
	o := &Order{Status: StatusShipped, TrackingNo: "TN1", TrackingLink: "https://track/TN1"}
	changed, _, err := ApplyAction(o, ActionCancel, "", "")
	assert.ErrorIs(t, err, ErrNotCancellable)
	assert.False(t, changed)
	assert.Equal(t, StatusShipped, o.Status)
}

func TestApplyActionCancelDeliveredRejected(t *testing.T) {
	o := &Order{Status: StatusDelivered}
	_, _, err := ApplyAction(o, ActionCancel, "", "")
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestApplyActionShippedRequiresTracking(t *testing.T) {
	o := &Order{Status: StatusProcessed}
	_, _, err := ApplyAction(o, ActionShipped, "", "")
	assert.ErrorIs(t, err, ErrTrackingRequired)
	assert.Equal(t, StatusProcessed, o.Status)
}

func TestApplyActionShippedWithTracking(t *testing.T) {
	o := &Order{Status: StatusProcessed}
	changed, _, err := ApplyAction(o, ActionShipped, "TN1", "https://track/TN1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusShipped, o.Status)
	assert.Equal(t, "TN1", o.TrackingNo)
}

func TestApplyActionTrackingPersistedRegardlessOfAction(t *testing.T) {
	o := &Order{Status: StatusOrdered}
	changed, _, err := ApplyAction(o, ActionFulfill, "TN9", "https://track/TN9")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "TN9", o.TrackingNo)
	assert.Equal(t, "https://track/TN9", o.TrackingLink)
}

func TestApplyActionUpdateTrackingKeepsStatus(t *testing.T) {
	o := &Order{Status: StatusOrdered}
	changed, _, err := ApplyAction(o, ActionUpdateTracking, "TN2", "https://track/TN2")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusOrdered, o.Status)
	assert.Equal(t, "TN2", o.TrackingNo)
}

func TestApplyActionNoOpDetected(t *testing.T) {
	o := &Order{Status: StatusDelivered}
	changed, _, err := ApplyAction(o, ActionDelivered, "", "")
	require.NoError(t, err)
	assert.False(t, changed)

	o = &Order{Status: StatusOrdered, TrackingNo: "TN3", TrackingLink: "https://track/TN3"}
	changed, _, err = ApplyAction(o, ActionUpdateTracking, "TN3", "https://track/TN3")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApplyActionRefundFlow(t *testing.T) {
	o := &Order{Status: StatusOrdered}
	_, _, err := ApplyAction(o, ActionRefund, "", "")
	require.NoError(t, err)
	assert.Equal(t, StatusRefundOnProcess, o.Status)

	_, _, err = ApplyAction(o, ActionRefunded, "", "")
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, o.Status)
}

func TestApplyActionRefundedRequiresRefundInProcess(t *testing.T) {
	o := &Order{Status: StatusOrdered}
	_, _, err := ApplyAction(o, ActionRefunded, "", "")
	assert.ErrorIs(t, err, ErrNotRefundable)
}

func TestApplyActionUnknownRejected(t *testing.T) {
	o := &Order{Status: StatusOrdered}
	_, _, err := ApplyAction(o, StatusAction("explode"), "", "")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, StatusOrdered, o.Status)
}
