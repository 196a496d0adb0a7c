package fprint

// Driver is the contract between the framework and a device driver. Every
// Start and Stop call is answered asynchronously through a Notifier.
type Driver interface {
	Info() DriverInfo
	Open(dev *Device) error
	Close(dev *Device) error
	EnrollStart(dev *Device) error
	EnrollStop(dev *Device) error
	VerifyStart(dev *Device) error
	VerifyStop(dev *Device) error
}

// Notifier receives completion notifications from a driver. For a given
// operation exactly one of the terminal notifications is delivered:
// EnrollStageCompleted with EnrollComplete or EnrollFail, EnrollStopped,
// VerifyResultReported or VerifyStopped.
type Notifier interface {
	OpenComplete(dev *Device, err error)
	CloseComplete(dev *Device)
	EnrollStarted(dev *Device, err error)
	// EnrollStageCompleted carries the enrolled print when result is
	// EnrollComplete.
	EnrollStageCompleted(dev *Device, result EnrollResult, print *PrintData, err error)
	EnrollStopped(dev *Device)
	VerifyStarted(dev *Device, err error)
	VerifyResultReported(dev *Device, result VerifyResult, err error)
	VerifyStopped(dev *Device)
}

// NotifierFuncs adapts a set of optional functions to a Notifier. Nil
// fields are ignored.
type NotifierFuncs struct {
	OnOpenComplete         func(dev *Device, err error)
	OnCloseComplete        func(dev *Device)
	OnEnrollStarted        func(dev *Device, err error)
	OnEnrollStageCompleted func(dev *Device, result EnrollResult, print *PrintData, err error)
	OnEnrollStopped        func(dev *Device)
	OnVerifyStarted        func(dev *Device, err error)
	OnVerifyResultReported func(dev *Device, result VerifyResult, err error)
	OnVerifyStopped        func(dev *Device)
}

var _ Notifier = NotifierFuncs{}

func (f NotifierFuncs) OpenComplete(dev *Device, err error) {
	if f.OnOpenComplete != nil {
		f.OnOpenComplete(dev, err)
	}
}

func (f NotifierFuncs) CloseComplete(dev *Device) {
	if f.OnCloseComplete != nil {
		f.OnCloseComplete(dev)
	}
}

func (f NotifierFuncs) EnrollStarted(dev *Device, err error) {
	if f.OnEnrollStarted != nil {
		f.OnEnrollStarted(dev, err)
	}
}

func (f NotifierFuncs) EnrollStageCompleted(dev *Device, result EnrollResult, print *PrintData, err error) {
	if f.OnEnrollStageCompleted != nil {
		f.OnEnrollStageCompleted(dev, result, print, err)
	}
}

func (f NotifierFuncs) EnrollStopped(dev *Device) {
	if f.OnEnrollStopped != nil {
		f.OnEnrollStopped(dev)
	}
}

func (f NotifierFuncs) VerifyStarted(dev *Device, err error) {
	if f.OnVerifyStarted != nil {
		f.OnVerifyStarted(dev, err)
	}
}

func (f NotifierFuncs) VerifyResultReported(dev *Device, result VerifyResult, err error) {
	if f.OnVerifyResultReported != nil {
		f.OnVerifyResultReported(dev, result, err)
	}
}

func (f NotifierFuncs) VerifyStopped(dev *Device) {
	if f.OnVerifyStopped != nil {
		f.OnVerifyStopped(dev)
	}
}
