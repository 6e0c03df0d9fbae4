package bridge_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentService/internal/bridge"
	mock_bridge "incidentService/internal/bridge/mocks"
	"incidentService/internal/domain"
	"incidentService/internal/workers"
	"incidentService/pkg/e"
)

func newBridge(t *testing.T) (*bridge.Bridge, *mock_bridge.MockIncidentService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := mock_bridge.NewMockIncidentService(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	pool := workers.NewPool(2, 4, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pool.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return bridge.New(svc, pool, time.Second, nil), svc
}

func TestBridge_UnsupportedAction(t *testing.T) {
	t.Parallel()

	b, _ := newBridge(t)

	reply, err := b.Dispatch(context.Background(), bridge.Request{Action: "deleteIncident"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrUnsupportedOperation))

	var opErr *e.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, -1, opErr.Code)
	assert.Equal(t, "Unsupported operation", opErr.Message)
	assert.Equal(t, bridge.Reply{}, reply)
}

func TestBridge_Incidents(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	items := []*domain.Incident{{ID: "a"}, {ID: "b"}}
	svc.EXPECT().Incidents(gomock.Any()).Return(items, nil).Times(1)

	reply, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionIncidents})
	require.NoError(t, err)
	assert.Equal(t, items, reply.Incidents)
}

func TestBridge_Incidents_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	svc.EXPECT().IncidentsByStatus(gomock.Any(), "RESCUED").Return(nil, nil).Times(1)

	reply, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionIncidentsByStatus, Status: "RESCUED"})
	require.NoError(t, err)
	require.NotNil(t, reply.Incidents)
	assert.Empty(t, reply.Incidents)
}

func TestBridge_IncidentByID(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	inc := &domain.Incident{ID: "incident1"}
	svc.EXPECT().IncidentByID(gomock.Any(), "incident1").Return(inc, nil).Times(1)

	reply, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionIncidentByID, IncidentID: "incident1"})
	require.NoError(t, err)
	assert.Same(t, inc, reply.Incident)
}

func TestBridge_IncidentByID_NotFoundIsEmptyReply(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	svc.EXPECT().IncidentByID(gomock.Any(), "nope").Return(nil, e.ErrNotFound).Times(1)

	reply, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionIncidentByID, IncidentID: "nope"})
	require.NoError(t, err)
	assert.Nil(t, reply.Incident)
}

func TestBridge_IncidentsByName(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	items := []*domain.Incident{{ID: "a", VictimName: "Jane Doe"}}
	svc.EXPECT().IncidentsByName(gomock.Any(), "Jane%").Return(items, nil).Times(1)

	reply, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionIncidentsByName, Name: "Jane%"})
	require.NoError(t, err)
	assert.Equal(t, items, reply.Incidents)
}

func TestBridge_Reset(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	svc.EXPECT().Reset(gomock.Any()).Return(nil).Times(1)

	reply, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionReset})
	require.NoError(t, err)
	assert.Equal(t, bridge.Reply{}, reply)
}

func TestBridge_CreateIncident_EmptyAck(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	name := "John Doe"
	patch := domain.IncidentPatch{VictimName: &name}
	svc.EXPECT().Create(gomock.Any(), patch).Return(&domain.Incident{ID: "minted"}, nil).Times(1)

	reply, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionCreateIncident, Incident: patch})
	require.NoError(t, err)
	assert.Equal(t, bridge.Reply{}, reply)
}

func TestBridge_CreateIncident_PublishFailureStillAcks(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	svc.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&domain.Incident{ID: "minted"}, e.ErrPublishFailed).Times(1)

	_, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionCreateIncident})
	require.NoError(t, err)
}

func TestBridge_CreateIncident_StoreFailure(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down")).Times(1)

	_, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionCreateIncident})
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrInternal))
}

func TestBridge_UpdateIncident_UsesPathID(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	status := "ASSIGNED"
	svc.EXPECT().
		Update(gomock.Any(), domain.IncidentPatch{ID: "incident2", Status: &status}).
		Return(&domain.Incident{ID: "incident2"}, nil).
		Times(1)

	reply, err := b.Dispatch(context.Background(), bridge.Request{
		Action:     domain.ActionUpdateIncident,
		IncidentID: "incident2",
		Incident:   domain.IncidentPatch{ID: "other", Status: &status},
	})
	require.NoError(t, err)
	assert.Equal(t, bridge.Reply{}, reply)
}

func TestBridge_UpdateIncident_NotFoundStillAcks(t *testing.T) {
	t.Parallel()

	b, svc := newBridge(t)
	svc.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil, e.ErrNotFound).Times(1)

	reply, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionUpdateIncident, IncidentID: "missing"})
	require.NoError(t, err)
	assert.Equal(t, bridge.Reply{}, reply)
}

func TestBridge_Timeout(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mock_bridge.NewMockIncidentService(ctrl)
	svc.EXPECT().Incidents(gomock.Any()).
		DoAndReturn(func(ctx context.Context) ([]*domain.Incident, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).
		Times(1)

	b := bridge.New(svc, nil, 20*time.Millisecond, nil)

	_, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionIncidents})
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrDeadline))
}

func TestBridge_RunnerIsUsed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mock_bridge.NewMockIncidentService(ctrl)
	runner := mock_bridge.NewMockRunner(ctrl)

	runner.EXPECT().Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, task workers.Task) error { return task(ctx) }).
		Times(1)
	svc.EXPECT().Reset(gomock.Any()).Return(nil).Times(1)

	b := bridge.New(svc, runner, 0, nil)
	_, err := b.Dispatch(context.Background(), bridge.Request{Action: domain.ActionReset})
	require.NoError(t, err)
}
