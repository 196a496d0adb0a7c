package vkx

import "strconv"

// Result is a return or error code of the vendor engine.
type Result int

const (
	VKX_RESULT_FAIL              Result = 0
	VKX_RESULT_SUCCESS           Result = 1
	VKX_RESULT_MATCHED                  = VKX_RESULT_SUCCESS
	VKX_RESULT_NOT_MATCHED              = VKX_RESULT_FAIL
	VKX_RESULT_ADD_DUPLICATE     Result = 4
	VKX_RESULT_DUPLICATE_FEATURE Result = 5
	VKX_RESULT_NOT_CONNECTED     Result = 6
	VKX_RESULT_LIMITED           Result = 7
	VKX_RESULT_ENROLL_FAIL       Result = -1001
	VKX_RESULT_ENROLL_DUPLICATED Result = -1009
)

func (r Result) String() string {
	switch r {
	case VKX_RESULT_FAIL:
		return "VKX_RESULT_FAIL"
	case VKX_RESULT_SUCCESS:
		return "VKX_RESULT_SUCCESS"
	case VKX_RESULT_ADD_DUPLICATE:
		return "VKX_RESULT_ADD_DUPLICATE"
	case VKX_RESULT_DUPLICATE_FEATURE:
		return "VKX_RESULT_DUPLICATE_FEATURE"
	case VKX_RESULT_NOT_CONNECTED:
		return "VKX_RESULT_NOT_CONNECTED"
	case VKX_RESULT_LIMITED:
		return "VKX_RESULT_LIMITED"
	case VKX_RESULT_ENROLL_FAIL:
		return "VKX_RESULT_ENROLL_FAIL"
	case VKX_RESULT_ENROLL_DUPLICATED:
		return "VKX_RESULT_ENROLL_DUPLICATED"
	default:
		return "Result(" + strconv.Itoa(int(r)) + ")"
	}
}

var results = []Result{
	VKX_RESULT_FAIL,
	VKX_RESULT_SUCCESS,
	VKX_RESULT_ADD_DUPLICATE,
	VKX_RESULT_DUPLICATE_FEATURE,
	VKX_RESULT_NOT_CONNECTED,
	VKX_RESULT_LIMITED,
	VKX_RESULT_ENROLL_FAIL,
	VKX_RESULT_ENROLL_DUPLICATED,
}

// ParseResult is the inverse of Result.String for known codes.
func ParseResult(s string) (Result, bool) {
	for _, r := range results {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}

// OperationType is the kind of operation the engine reports as running.
type OperationType int

const (
	OP_TYPE_ENROLL     OperationType = 101
	OP_TYPE_VERIFY     OperationType = 102
	OP_TYPE_NAVIGATION OperationType = 103
)

func (t OperationType) String() string {
	switch t {
	case OP_TYPE_ENROLL:
		return "OP_TYPE_ENROLL"
	case OP_TYPE_VERIFY:
		return "OP_TYPE_VERIFY"
	case OP_TYPE_NAVIGATION:
		return "OP_TYPE_NAVIGATION"
	default:
		return "OperationType(" + strconv.Itoa(int(t)) + ")"
	}
}

// Status is a lifecycle signal delivered through the status callback.
type Status int

const (
	STATUS_SENSOR_OPEN      Status = 1
	STATUS_SENSOR_CLOSE     Status = 2
	STATUS_IMAGE_FETCH      Status = 3
	STATUS_IMAGE_READY      Status = 4
	STATUS_IMAGE_BAD        Status = 5
	STATUS_FEATURE_LOW      Status = 6
	STATUS_OPERATION_BEGIN  Status = 7
	STATUS_OPERATION_END    Status = 8
	STATUS_IMAGE_FETCHING   Status = 9
	STATUS_FINGER_DETECTED  Status = 10
	STATUS_FINGER_REMOVED   Status = 11
	STATUS_SWIPE_TOO_FAST   Status = 12
	STATUS_SWIPE_TOO_SLOW   Status = 13
	STATUS_SWIPE_TOO_SHORT  Status = 14
	STATUS_SWIPE_TOO_SKEWED Status = 15
	STATUS_SWIPE_TOO_LEFT   Status = 16
	STATUS_SWIPE_TOO_RIGHT  Status = 17
	STATUS_SENSOR_UNPLUG    Status = 18
	STATUS_USER_TOO_FAR     Status = 19
	STATUS_USER_TOO_CLOSE   Status = 20
	STATUS_LUX_TOO_LOWER    Status = 21
	STATUS_LUX_TOO_HIGHER   Status = 22
	STATUS_FINGER_TOUCH     Status = 23
	STATUS_FINGER_REMOVE    Status = 24
	STATUS_SWIPE_TOO_WET    Status = 25
	STATUS_SWIPE_TOO_DRY    Status = 26
	STATUS_SENSOR_TIMEOUT   Status = 27
	STATUS_USER_ABORT       Status = 28
)

var statusNames = map[Status]string{
	STATUS_SENSOR_OPEN:      "STATUS_SENSOR_OPEN",
	STATUS_SENSOR_CLOSE:     "STATUS_SENSOR_CLOSE",
	STATUS_IMAGE_FETCH:      "STATUS_IMAGE_FETCH",
	STATUS_IMAGE_READY:      "STATUS_IMAGE_READY",
	STATUS_IMAGE_BAD:        "STATUS_IMAGE_BAD",
	STATUS_FEATURE_LOW:      "STATUS_FEATURE_LOW",
	STATUS_OPERATION_BEGIN:  "STATUS_OPERATION_BEGIN",
	STATUS_OPERATION_END:    "STATUS_OPERATION_END",
	STATUS_IMAGE_FETCHING:   "STATUS_IMAGE_FETCHING",
	STATUS_FINGER_DETECTED:  "STATUS_FINGER_DETECTED",
	STATUS_FINGER_REMOVED:   "STATUS_FINGER_REMOVED",
	STATUS_SWIPE_TOO_FAST:   "STATUS_SWIPE_TOO_FAST",
	STATUS_SWIPE_TOO_SLOW:   "STATUS_SWIPE_TOO_SLOW",
	STATUS_SWIPE_TOO_SHORT:  "STATUS_SWIPE_TOO_SHORT",
	STATUS_SWIPE_TOO_SKEWED: "STATUS_SWIPE_TOO_SKEWED",
	STATUS_SWIPE_TOO_LEFT:   "STATUS_SWIPE_TOO_LEFT",
	STATUS_SWIPE_TOO_RIGHT:  "STATUS_SWIPE_TOO_RIGHT",
	STATUS_SENSOR_UNPLUG:    "STATUS_SENSOR_UNPLUG",
	STATUS_USER_TOO_FAR:     "STATUS_USER_TOO_FAR",
	STATUS_USER_TOO_CLOSE:   "STATUS_USER_TOO_CLOSE",
	STATUS_LUX_TOO_LOWER:    "STATUS_LUX_TOO_LOWER",
	STATUS_LUX_TOO_HIGHER:   "STATUS_LUX_TOO_HIGHER",
	STATUS_FINGER_TOUCH:     "STATUS_FINGER_TOUCH",
	STATUS_FINGER_REMOVE:    "STATUS_FINGER_REMOVE",
	STATUS_SWIPE_TOO_WET:    "STATUS_SWIPE_TOO_WET",
	STATUS_SWIPE_TOO_DRY:    "STATUS_SWIPE_TOO_DRY",
	STATUS_SENSOR_TIMEOUT:   "STATUS_SENSOR_TIMEOUT",
	STATUS_USER_ABORT:       "STATUS_USER_ABORT",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// MaxBase64TemplateLength is the longest base64 template the engine emits.
const MaxBase64TemplateLength = 3072
