package sim

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ctap/vkapi/pkg/vkx"
)

// trace records callbacks as strings and keeps template copies.
type trace struct {
	mu        sync.Mutex
	events    []string
	templates [][]byte
	retry     func(vkx.Result) bool
	block     chan struct{}
}

func (t *trace) add(ev string) {
	t.mu.Lock()
	t.events = append(t.events, ev)
	t.mu.Unlock()
}

func (t *trace) all() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.events)
}

func (t *trace) OnStatus(s vkx.Status) {
	t.add(s.String())
	if s == vkx.STATUS_OPERATION_BEGIN && t.block != nil {
		<-t.block
	}
}

func (t *trace) OnError(code vkx.Result) bool {
	t.add(code.String())
	return t.retry != nil && t.retry(code)
}

func (t *trace) OnEnrollProgress(stage int) {
	t.add("progress")
}

func (t *trace) OnTemplate(template []byte) bool {
	t.mu.Lock()
	t.templates = append(t.templates, template)
	t.mu.Unlock()
	t.add("template")
	return false
}

func (t *trace) OnImage(int, int, []byte, int) bool { return false }

func waitIdle(t *testing.T, e *Engine) {
	t.Helper()
	require.Eventually(t, func() bool { return !e.Running() }, time.Second, time.Millisecond)
}

func connected(t *testing.T, opts ...Option) (*Engine, *trace) {
	t.Helper()
	tr := &trace{}
	e := New(opts...)
	require.NoError(t, e.SetCallbacks(tr))
	r, err := e.Connect()
	require.NoError(t, err)
	require.Equal(t, vkx.VKX_RESULT_SUCCESS, r)
	return e, tr
}

func TestEngine_ConnectWithoutCallbacks(t *testing.T) {
	_, err := New().Connect()
	assert.ErrorIs(t, err, vkx.ErrNotBound)
	assert.ErrorIs(t, New().CaptureEnrollTemplate(), vkx.ErrNotBound)
}

func TestEngine_ConnectResult(t *testing.T) {
	e := New(WithConnectResult(vkx.VKX_RESULT_NOT_CONNECTED))
	require.NoError(t, e.SetCallbacks(&trace{}))

	r, err := e.Connect()
	require.NoError(t, err)
	assert.Equal(t, vkx.VKX_RESULT_NOT_CONNECTED, r)
}

func TestEngine_Enroll(t *testing.T) {
	e, tr := connected(t, WithStages(2))

	require.NoError(t, e.CaptureEnrollTemplate())
	waitIdle(t, e)

	assert.Equal(t, []string{
		"STATUS_SENSOR_OPEN",
		"STATUS_OPERATION_BEGIN",
		"STATUS_FINGER_DETECTED",
		"progress",
		"STATUS_FINGER_DETECTED",
		"progress",
		"STATUS_IMAGE_READY",
		"template",
		"STATUS_OPERATION_END",
	}, tr.all())

	// The buffer is wiped once the callback returned.
	require.Len(t, tr.templates, 1)
	assert.Equal(t, make([]byte, len(DefaultTemplate)), tr.templates[0])
}

func TestEngine_Verify(t *testing.T) {
	e, tr := connected(t)
	e.Present([]byte("other"))

	require.NoError(t, e.CaptureVerifyTemplate())
	waitIdle(t, e)

	assert.NotContains(t, tr.all(), "progress")
	assert.Contains(t, tr.all(), "template")
}

func TestEngine_NotConnected(t *testing.T) {
	tr := &trace{}
	e := New()
	require.NoError(t, e.SetCallbacks(tr))

	require.NoError(t, e.CaptureVerifyTemplate())
	waitIdle(t, e)
	assert.Equal(t, []string{"VKX_RESULT_NOT_CONNECTED"}, tr.all())
}

func TestEngine_Busy(t *testing.T) {
	e, tr := connected(t)
	tr.block = make(chan struct{})

	require.NoError(t, e.CaptureEnrollTemplate())
	assert.ErrorIs(t, e.CaptureVerifyTemplate(), ErrBusy)
	close(tr.block)
	waitIdle(t, e)
}

func TestEngine_Abort(t *testing.T) {
	e, tr := connected(t, WithDelay(time.Hour))

	require.NoError(t, e.CaptureEnrollTemplate())
	require.NoError(t, e.Abort())

	assert.False(t, e.Running())
	assert.Equal(t, []string{"STATUS_USER_ABORT"}, tr.all())

	// Abort without a capture is a no-op.
	require.NoError(t, e.Abort())
	assert.Len(t, tr.all(), 1)
}

func TestEngine_InjectedFailure(t *testing.T) {
	e, tr := connected(t, WithStages(1))
	e.Inject(vkx.VKX_RESULT_ENROLL_DUPLICATED)

	require.NoError(t, e.CaptureEnrollTemplate())
	waitIdle(t, e)

	assert.Equal(t, []string{
		"STATUS_SENSOR_OPEN",
		"STATUS_OPERATION_BEGIN",
		"VKX_RESULT_ENROLL_DUPLICATED",
	}, tr.all())
}

func TestEngine_RetryAfterFailure(t *testing.T) {
	e, tr := connected(t, WithStages(1))
	tr.retry = func(vkx.Result) bool { return true }
	e.Inject(vkx.VKX_RESULT_ENROLL_FAIL)

	require.NoError(t, e.CaptureEnrollTemplate())
	waitIdle(t, e)

	events := tr.all()
	assert.Contains(t, events, "VKX_RESULT_ENROLL_FAIL")
	assert.Equal(t, "STATUS_OPERATION_END", events[len(events)-1])
}

func TestEngine_Compare(t *testing.T) {
	e := New()

	r, score, err := e.Compare([]byte("a"), []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, vkx.VKX_RESULT_MATCHED, r)
	assert.Equal(t, 100, score)

	r, _, err = e.Compare([]byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, vkx.VKX_RESULT_NOT_MATCHED, r)
}

func TestEngine_Disconnect(t *testing.T) {
	e, tr := connected(t, WithDelay(time.Hour))
	require.NoError(t, e.CaptureVerifyTemplate())

	require.NoError(t, e.Disconnect())
	assert.False(t, e.Running())
	assert.Equal(t, []string{"STATUS_SENSOR_CLOSE"}, tr.all())
}
