// Package printstore keeps enrolled prints in a directory, one sealed file
// per finger.
package printstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/samber/lo"

	"github.com/go-ctap/vkapi/pkg/crypto"
	"github.com/go-ctap/vkapi/pkg/fprint"
	"github.com/go-ctap/vkapi/pkg/options"
)

const (
	ext           = ".print"
	recordVersion = 1
)

var (
	ErrNotFound       = errors.New("printstore: no print stored for finger")
	ErrInvalidFinger  = errors.New("printstore: invalid finger")
	ErrUnknownVersion = errors.New("printstore: unknown record version")
)

type record struct {
	Version    int                 `cbor:"1,keyasint"`
	Finger     fprint.Finger       `cbor:"2,keyasint"`
	DriverID   uint16              `cbor:"3,keyasint"`
	DeviceType uint32              `cbor:"4,keyasint"`
	Sealed     *crypto.SealedPrint `cbor:"5,keyasint"`
}

type Store struct {
	dir     string
	secret  []byte
	encMode cbor.EncMode
	logger  *slog.Logger
}

// New opens the store rooted at dir, creating it if needed. Templates are
// sealed with keys derived from secret.
func New(dir string, secret []byte, opts ...options.Option) (*Store, error) {
	if len(secret) == 0 {
		return nil, crypto.ErrEmptySecret
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("printstore: %w", err)
	}

	oo := options.NewOptions(opts...)
	return &Store{
		dir:     dir,
		secret:  slices.Clone(secret),
		encMode: oo.EncMode,
		logger:  oo.Logger.With("component", "printstore"),
	}, nil
}

func (s *Store) path(finger fprint.Finger) (string, error) {
	if finger < fprint.LeftThumb || finger > fprint.RightLittle {
		return "", ErrInvalidFinger
	}
	return filepath.Join(s.dir, finger.String()+ext), nil
}

// Save seals pd and replaces whatever was stored for finger.
func (s *Store) Save(finger fprint.Finger, pd *fprint.PrintData) error {
	p, err := s.path(finger)
	if err != nil {
		return err
	}

	sealed, err := crypto.SealPrint(s.secret, pd.Data)
	if err != nil {
		return err
	}
	b, err := s.encMode.Marshal(&record{
		Version:    recordVersion,
		Finger:     finger,
		DriverID:   pd.DriverID,
		DeviceType: pd.DeviceType,
		Sealed:     sealed,
	})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+finger.String()+"-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return err
	}

	s.logger.Debug("print saved", "finger", finger.String(), "size", len(pd.Data))
	return nil
}

func (s *Store) Load(finger fprint.Finger) (*fprint.PrintData, error) {
	p, err := s.path(finger)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec record
	if err := cbor.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("printstore: %s: %w", filepath.Base(p), err)
	}
	if rec.Version != recordVersion {
		return nil, ErrUnknownVersion
	}
	if rec.Sealed == nil {
		return nil, fmt.Errorf("printstore: %s: missing sealed print", filepath.Base(p))
	}

	data, err := crypto.OpenPrint(s.secret, rec.Sealed)
	if err != nil {
		return nil, fmt.Errorf("printstore: cannot open print for %s: %w", finger, err)
	}

	return &fprint.PrintData{
		DriverID:   rec.DriverID,
		DeviceType: rec.DeviceType,
		Data:       data,
	}, nil
}

func (s *Store) Delete(finger fprint.Finger) error {
	p, err := s.path(finger)
	if err != nil {
		return err
	}

	if err := os.Remove(p); errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return nil
}

// List returns the fingers with a stored print in finger order.
func (s *Store) List() ([]fprint.Finger, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	fingers := lo.FilterMap(entries, func(e fs.DirEntry, _ int) (fprint.Finger, bool) {
		name, ok := strings.CutSuffix(e.Name(), ext)
		if !ok || e.IsDir() {
			return 0, false
		}
		return fprint.ParseFinger(name)
	})
	slices.Sort(fingers)
	return fingers, nil
}
