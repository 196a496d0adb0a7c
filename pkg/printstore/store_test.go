package printstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ctap/vkapi/pkg/crypto"
	"github.com/go-ctap/vkapi/pkg/fprint"
)

var secret = []byte("host secret for tests")

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "prints")
	s, err := New(dir, secret)
	require.NoError(t, err)
	return s, dir
}

func TestStore_SaveLoad(t *testing.T) {
	s, dir := newStore(t)
	pd := &fprint.PrintData{DriverID: 1, DeviceType: 7, Data: []byte("template bytes")}

	require.NoError(t, s.Save(fprint.RightIndex, pd))

	raw, err := os.ReadFile(filepath.Join(dir, "right-index.print"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "template bytes")

	got, err := s.Load(fprint.RightIndex)
	require.NoError(t, err)
	assert.Equal(t, pd, got)
}

func TestStore_Overwrite(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.Save(fprint.LeftThumb, &fprint.PrintData{Data: []byte("old")}))
	require.NoError(t, s.Save(fprint.LeftThumb, &fprint.PrintData{Data: []byte("new")}))

	got, err := s.Load(fprint.LeftThumb)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got.Data)
}

func TestStore_NotFound(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Load(fprint.LeftRing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(fprint.LeftRing), ErrNotFound)
}

func TestStore_InvalidFinger(t *testing.T) {
	s, _ := newStore(t)

	assert.ErrorIs(t, s.Save(fprint.Finger(0), &fprint.PrintData{}), ErrInvalidFinger)
	_, err := s.Load(fprint.Finger(11))
	assert.ErrorIs(t, err, ErrInvalidFinger)
}

func TestStore_WrongSecret(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, s.Save(fprint.RightThumb, &fprint.PrintData{Data: []byte("t")}))

	other, err := New(dir, []byte("someone else"))
	require.NoError(t, err)
	_, err = other.Load(fprint.RightThumb)
	assert.Error(t, err)
}

func TestStore_ListAndDelete(t *testing.T) {
	s, dir := newStore(t)
	for _, f := range []fprint.Finger{fprint.RightLittle, fprint.LeftIndex, fprint.RightThumb} {
		require.NoError(t, s.Save(f, &fprint.PrintData{Data: []byte(f.String())}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	fingers, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []fprint.Finger{fprint.LeftIndex, fprint.RightThumb, fprint.RightLittle}, fingers)

	require.NoError(t, s.Delete(fprint.RightThumb))
	fingers, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []fprint.Finger{fprint.LeftIndex, fprint.RightLittle}, fingers)
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := New(t.TempDir(), nil)
	assert.ErrorIs(t, err, crypto.ErrEmptySecret)
}
