package sugar

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ctap/vkapi/pkg/driver"
	"github.com/go-ctap/vkapi/pkg/fprint"
	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/sim"
	"github.com/go-ctap/vkapi/pkg/vkx"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func open(t *testing.T, engine *sim.Engine) *Session {
	t.Helper()
	s, err := Open(engine, &fprint.Device{ID: "sim", Driver: driver.Info}, options.WithLogger(discardLogger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSession_EnrollVerify(t *testing.T) {
	engine := sim.New()
	s := open(t, engine)

	var stages []int
	pd, err := s.Enroll(context.Background(), func(stage int) { stages = append(stages, stage) })
	require.NoError(t, err)
	require.NotNil(t, pd)
	assert.Equal(t, sim.DefaultTemplate, pd.Data)
	assert.Equal(t, []int{1, 2}, stages)

	match, err := s.Verify(context.Background(), pd)
	require.NoError(t, err)
	assert.True(t, match)

	engine.Present([]byte("someone else"))
	match, err = s.Verify(context.Background(), pd)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestSession_EnrollFailure(t *testing.T) {
	engine := sim.New()
	engine.Inject(vkx.VKX_RESULT_ENROLL_DUPLICATED)
	s := open(t, engine)

	_, err := s.Enroll(context.Background(), nil)
	assert.ErrorIs(t, err, driver.ErrOperationFailed)

	pd, err := s.Enroll(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, pd)
}

func TestSession_Cancel(t *testing.T) {
	engine := sim.New(sim.WithDelay(time.Hour))
	s := open(t, engine)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Enroll(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, engine.Running())
	assert.True(t, s.drv.Registry().Active(driver.KindEnroll).IsAbsent())
}

func TestSession_VerifyWithoutPrint(t *testing.T) {
	s := open(t, sim.New())

	_, err := s.Verify(context.Background(), nil)
	assert.ErrorIs(t, err, driver.ErrNoEnrolledPrint)
}

func TestOpen_ConnectionFailed(t *testing.T) {
	_, err := Open(sim.New(sim.WithConnectResult(vkx.VKX_RESULT_FAIL)), &fprint.Device{ID: "sim", Driver: driver.Info},
		options.WithLogger(discardLogger))
	assert.ErrorIs(t, err, driver.ErrConnectionFailed)
}

func TestSession_Busy(t *testing.T) {
	s := open(t, sim.New())
	require.NoError(t, s.begin(newWaiter(nil)))
	defer s.end()

	_, err := s.Enroll(context.Background(), nil)
	assert.ErrorIs(t, err, ErrBusy)
}

func enrollAsync(t *testing.T, ctx context.Context, s *Session) <-chan error {
	t.Helper()
	errs := make(chan error, 1)
	go func() {
		_, err := s.Enroll(ctx, nil)
		errs <- err
	}()
	require.Eventually(t, func() bool {
		return s.drv.Registry().Active(driver.KindEnroll).IsPresent()
	}, time.Second, 5*time.Millisecond)
	return errs
}

func awaitErr(t *testing.T, errs <-chan error) error {
	t.Helper()
	select {
	case err := <-errs:
		return err
	case <-time.After(2 * time.Second):
		require.FailNow(t, "enroll did not return")
		return nil
	}
}

func TestSession_CloseDuringEnroll(t *testing.T) {
	engine := sim.New(sim.WithDelay(time.Hour))
	s := open(t, engine)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	errs := enrollAsync(t, ctx, s)

	require.NoError(t, s.drv.Close(s.dev))
	assert.ErrorIs(t, awaitErr(t, errs), driver.ErrNotOpen)
	assert.False(t, engine.Running())
}

func TestSession_LoopStoppedDuringEnroll(t *testing.T) {
	engine := sim.New(sim.WithDelay(time.Hour))
	parent, cancelParent := context.WithCancel(context.Background())
	defer cancelParent()

	s, err := Open(engine, &fprint.Device{ID: "sim", Driver: driver.Info},
		options.WithLogger(discardLogger), options.WithContext(parent))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	errs := enrollAsync(t, context.Background(), s)

	cancelParent()
	assert.ErrorIs(t, awaitErr(t, errs), ErrStopped)
	assert.True(t, s.drv.Registry().Active(driver.KindEnroll).IsAbsent())
	assert.False(t, engine.Running())
}
