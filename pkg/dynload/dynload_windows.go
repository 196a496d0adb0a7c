package dynload

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/go-ctap/vkapi/pkg/vkx"
)

const DefaultLibrary = "vkapi.dll"

var (
	loadOnce sync.Once
	loadErr  error
	procs    *procTable
)

type procTable struct {
	connect             *windows.LazyProc
	disConnect          *windows.LazyProc
	abort               *windows.LazyProc
	captureVerify       *windows.LazyProc
	captureEnroll       *windows.LazyProc
	setEnrollProgress   *windows.LazyProc
	setStatusCallback   *windows.LazyProc
	setErrorCallback    *windows.LazyProc
	setTemplateCallback *windows.LazyProc
	setImageCallback    *windows.LazyProc
	verify              *windows.LazyProc
}

var (
	cbEnrollProgress = windows.NewCallback(func(pos uintptr) uintptr {
		dispatchProgress(int(int32(pos)))
		return 0
	})
	cbStatus = windows.NewCallback(func(status uintptr) uintptr {
		dispatchStatus(int(int32(status)))
		return 0
	})
	cbError = windows.NewCallback(func(code uintptr, retry *int32) uintptr {
		r := dispatchError(int(int32(code)))
		if retry != nil {
			*retry = r
		}
		return 0
	})
	cbTemplate = windows.NewCallback(func(feat *byte, size uintptr, retry *int32) uintptr {
		r := dispatchTemplate(borrow(feat, int(int32(size))))
		if retry != nil {
			*retry = r
		}
		return 0
	})
	cbImage = windows.NewCallback(func(width, height uintptr, img *byte, qty uintptr, retry *int32) uintptr {
		w, h := int(int32(width)), int(int32(height))
		pixels := borrow(img, imageSize(w, h))
		r := dispatchImage(w, h, pixels, int(int32(qty)))
		if retry != nil {
			*retry = r
		}
		return 0
	})
)

// Load binds the vendor DLL at path. The DLL is loaded once per process.
func Load(path string) (vkx.Engine, error) {
	loadOnce.Do(func() {
		dll := windows.NewLazyDLL(path)
		if err := dll.Load(); err != nil {
			loadErr = err
			return
		}

		t := &procTable{
			connect:             dll.NewProc("vkx_connect"),
			disConnect:          dll.NewProc("vkx_dis_connect"),
			abort:               dll.NewProc("vkx_abort"),
			captureVerify:       dll.NewProc("vkx_capture_verify_template"),
			captureEnroll:       dll.NewProc("vkx_capture_enroll_template"),
			setEnrollProgress:   dll.NewProc("vkx_set_enroll_progress"),
			setStatusCallback:   dll.NewProc("vkx_set_status_callback"),
			setErrorCallback:    dll.NewProc("vkx_set_error_callback"),
			setTemplateCallback: dll.NewProc("vkx_set_template_get_callback"),
			setImageCallback:    dll.NewProc("vkx_set_image_get_callback"),
			verify:              dll.NewProc("vkx_verify"),
		}
		for _, p := range []*windows.LazyProc{
			t.connect, t.disConnect, t.abort, t.captureVerify, t.captureEnroll,
			t.setEnrollProgress, t.setStatusCallback, t.setErrorCallback,
			t.setTemplateCallback, t.setImageCallback, t.verify,
		} {
			if p.Find() != nil {
				loadErr = ErrMissingSymbols
				return
			}
		}
		procs = t
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return native{}, nil
}

type native struct{}

func call(p *windows.LazyProc, args ...uintptr) int32 {
	r, _, _ := p.Call(args...)
	return int32(r)
}

func (native) SetCallbacks(cb vkx.Callbacks) error {
	register(cb)
	call(procs.setImageCallback, cbImage)
	call(procs.setTemplateCallback, cbTemplate)
	call(procs.setStatusCallback, cbStatus)
	call(procs.setErrorCallback, cbError)
	call(procs.setEnrollProgress, cbEnrollProgress)
	return nil
}

func (native) Connect() (vkx.Result, error) {
	return vkx.Result(call(procs.connect)), nil
}

func (native) Disconnect() error {
	call(procs.disConnect)
	return nil
}

func (native) Abort() error {
	call(procs.abort)
	return nil
}

func (native) CaptureVerifyTemplate() error {
	call(procs.captureVerify)
	return nil
}

func (native) CaptureEnrollTemplate() error {
	call(procs.captureEnroll)
	return nil
}

func (native) Compare(enrolled, probe []byte) (vkx.Result, int, error) {
	if len(enrolled) == 0 || len(probe) == 0 {
		return vkx.VKX_RESULT_NOT_MATCHED, 0, nil
	}

	var score int32
	r := call(procs.verify,
		uintptr(unsafe.Pointer(unsafe.SliceData(probe))),
		uintptr(unsafe.Pointer(unsafe.SliceData(enrolled))),
		uintptr(unsafe.Pointer(&score)),
		0,
	)
	return vkx.Result(r), int(score), nil
}
