//go:build vkapi_cgo && !windows

package dynload

/*
#cgo LDFLAGS: -ldl
#include <stdlib.h>
#include "vkapi_shim.h"
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-ctap/vkapi/pkg/vkx"
)

const DefaultLibrary = "vkapi.so"

var (
	loadOnce sync.Once
	loadErr  error
)

//export goVkEnrollProgress
func goVkEnrollProgress(pos C.int) {
	dispatchProgress(int(pos))
}

//export goVkStatus
func goVkStatus(status C.int) {
	dispatchStatus(int(status))
}

//export goVkError
func goVkError(code C.int, retry *C.int) {
	r := dispatchError(int(code))
	if retry != nil {
		*retry = C.int(r)
	}
}

//export goVkTemplate
func goVkTemplate(feat *C.uchar, size C.int, retry *C.int) {
	r := dispatchTemplate(borrow((*byte)(unsafe.Pointer(feat)), int(size)))
	if retry != nil {
		*retry = C.int(r)
	}
}

//export goVkImage
func goVkImage(width, height C.int, img *C.uchar, qty C.int, retry *C.int) {
	pixels := borrow((*byte)(unsafe.Pointer(img)), imageSize(int(width), int(height)))
	r := dispatchImage(int(width), int(height), pixels, int(qty))
	if retry != nil {
		*retry = C.int(r)
	}
}

type native struct{}

// Load opens the vendor library at path and resolves its entry points. The
// library is loaded once per process; later calls return the same binding.
func Load(path string) (vkx.Engine, error) {
	loadOnce.Do(func() {
		cPath := C.CString(path)
		defer C.free(unsafe.Pointer(cPath))

		var cErr *C.char
		switch C.vk_load(cPath, &cErr) {
		case 0:
		case -2:
			loadErr = ErrMissingSymbols
		default:
			loadErr = fmt.Errorf("dynload: cannot load %s: %s", path, C.GoString(cErr))
		}
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return native{}, nil
}

func (native) SetCallbacks(cb vkx.Callbacks) error {
	register(cb)
	C.vk_register()
	return nil
}

func (native) Connect() (vkx.Result, error) {
	return vkx.Result(C.vk_connect()), nil
}

func (native) Disconnect() error {
	C.vk_dis_connect()
	return nil
}

func (native) Abort() error {
	C.vk_abort()
	return nil
}

func (native) CaptureVerifyTemplate() error {
	C.vk_capture_verify_template()
	return nil
}

func (native) CaptureEnrollTemplate() error {
	C.vk_capture_enroll_template()
	return nil
}

func (native) Compare(enrolled, probe []byte) (vkx.Result, int, error) {
	cEnrolled := C.CBytes(enrolled)
	defer C.free(cEnrolled)
	cProbe := C.CBytes(probe)
	defer C.free(cProbe)

	var score C.int
	r := C.vk_verify((*C.uchar)(cProbe), (*C.uchar)(cEnrolled), &score)
	return vkx.Result(r), int(score), nil
}
