package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/go-ctap/vkapi/pkg/fprint"
	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/vkx"
	"github.com/go-ctap/vkapi/pkg/vkx/mocks"
)

func newMockDriver(t *testing.T, engine vkx.Engine, n fprint.Notifier) *Driver {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	drv, err := New(engine, n, options.WithLogger(discardLogger), options.WithContext(ctx))
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		<-drv.Done()
	})
	return drv
}

func TestLifecycle_CommandOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	rec := &recorder{}
	drv := newMockDriver(t, engine, rec)

	dev := &fprint.Device{ID: "mock", Driver: Info}
	dev.VerifyData = fprint.NewPrintData(dev, []byte("enrolled"))

	gomock.InOrder(
		engine.EXPECT().SetCallbacks(drv.Router()).Return(nil),
		engine.EXPECT().Connect().Return(vkx.VKX_RESULT_SUCCESS, nil),
		engine.EXPECT().CaptureVerifyTemplate().Return(nil),
		engine.EXPECT().Abort().DoAndReturn(func() error {
			// The operation is still registered while the engine aborts.
			assert.True(t, drv.Registry().Active(KindVerify).IsPresent())
			return nil
		}),
		engine.EXPECT().Disconnect().Return(nil),
	)

	require.NoError(t, drv.Open(dev))
	require.NoError(t, drv.VerifyStart(dev))
	require.NoError(t, drv.VerifyStop(dev))
	require.NoError(t, drv.Close(dev))

	assert.Equal(t, []string{"open-complete", "verify-stopped", "close-complete"}, rec.names())
}

func TestLifecycle_AbortErrorStillStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	rec := &recorder{}
	drv := newMockDriver(t, engine, rec)
	dev := &fprint.Device{ID: "mock", Driver: Info}

	engine.EXPECT().SetCallbacks(gomock.Any()).Return(nil)
	engine.EXPECT().Connect().Return(vkx.VKX_RESULT_SUCCESS, nil)
	engine.EXPECT().CaptureEnrollTemplate().Return(nil)
	engine.EXPECT().Abort().Return(errors.New("abort timed out"))

	require.NoError(t, drv.Open(dev))
	require.NoError(t, drv.EnrollStart(dev))
	require.NoError(t, drv.EnrollStop(dev))

	assert.True(t, drv.Registry().Active(KindEnroll).IsAbsent())
	assert.Equal(t, []string{"open-complete", "enroll-stopped"}, rec.names())
}

func TestLifecycle_ConnectionFailed(t *testing.T) {
	cases := []struct {
		name   string
		result vkx.Result
		err    error
	}{
		{"result fail", vkx.VKX_RESULT_FAIL, nil},
		{"not connected", vkx.VKX_RESULT_NOT_CONNECTED, nil},
		{"error", vkx.VKX_RESULT_SUCCESS, errors.New("no such device")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			engine := mocks.NewMockEngine(ctrl)
			rec := &recorder{}
			drv := newMockDriver(t, engine, rec)
			dev := &fprint.Device{ID: "mock", Driver: Info}

			engine.EXPECT().SetCallbacks(gomock.Any()).Return(nil)
			engine.EXPECT().Connect().Return(tc.result, tc.err)

			err := drv.Open(dev)
			require.ErrorIs(t, err, ErrConnectionFailed)
			assert.Empty(t, rec.names())
			assert.True(t, drv.Registry().Device().IsAbsent())
		})
	}
}

func TestLifecycle_SetCallbacksError(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	drv := newMockDriver(t, engine, &recorder{})

	engine.EXPECT().SetCallbacks(gomock.Any()).Return(vkx.ErrNotBound)

	err := drv.Open(&fprint.Device{ID: "mock", Driver: Info})
	require.ErrorIs(t, err, vkx.ErrNotBound)
}

func TestLifecycle_CloseDisconnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	rec := &recorder{}
	drv := newMockDriver(t, engine, rec)
	dev := &fprint.Device{ID: "mock", Driver: Info}

	engine.EXPECT().SetCallbacks(gomock.Any()).Return(nil)
	engine.EXPECT().Connect().Return(vkx.VKX_RESULT_SUCCESS, nil)
	engine.EXPECT().Disconnect().Return(errors.New("pipe closed"))

	require.NoError(t, drv.Open(dev))
	err := drv.Close(dev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipe closed")
	assert.Equal(t, []string{"open-complete", "close-complete"}, rec.names())
	assert.True(t, drv.Registry().Device().IsAbsent())
}
