package disk_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/host/disk"
	"github.com/ardanlabs/crowdpool/foundation/pool/codec"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	d, err := disk.NewDisk(t.TempDir())
	require.NoError(t, err)
	defer d.Close()

	account := host.NewAccount(host.NamedPubkey("pool"), host.NamedPubkey("program"), []byte{1, 2, 3})
	account.Lamports = 42
	require.NoError(t, d.Write(account))

	got, err := d.Read(account.Key)
	require.NoError(t, err)
	require.Equal(t, account.Key, got.Key)
	require.Equal(t, account.Owner, got.Owner)
	require.Equal(t, uint64(42), got.Lamports)
	require.True(t, got.IsWritable)
	require.Equal(t, []byte{1, 2, 3}, got.Data.Snapshot())

	// Overwrite with new contents.
	rm, err := account.Data.BorrowMut()
	require.NoError(t, err)
	rm.Set([]byte{9})
	rm.Release()
	require.NoError(t, d.Write(account))

	got, err = d.Read(account.Key)
	require.NoError(t, err)
	require.Equal(t, []byte{9}, got.Data.Snapshot())
}

func TestReadMissing(t *testing.T) {
	d, err := disk.NewDisk(t.TempDir())
	require.NoError(t, err)

	_, err = d.Read(host.NamedPubkey("nobody"))
	require.True(t, errors.Is(err, disk.ErrNotFound))
}

func TestReadCorrupt(t *testing.T) {
	dir := t.TempDir()
	d, err := disk.NewDisk(dir)
	require.NoError(t, err)

	key := host.NamedPubkey("pool")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key.String()+".acct"), key[:], 0600))

	_, err = d.Read(key)
	require.ErrorIs(t, err, codec.ErrTruncatedInput)
}

func TestKeysReset(t *testing.T) {
	dir := t.TempDir()
	d, err := disk.NewDisk(dir)
	require.NoError(t, err)

	a := host.NamedPubkey("a")
	b := host.NamedPubkey("b")
	require.NoError(t, d.Write(host.NewAccount(a, host.Pubkey{}, nil)))
	require.NoError(t, d.Write(host.NewAccount(b, host.Pubkey{}, nil)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))

	keys, err := d.Keys()
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.Negative(t, keys[0].Compare(keys[1]))

	require.NoError(t, d.Reset())
	keys, err = d.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestFileLayout(t *testing.T) {
	dir := t.TempDir()
	d, err := disk.NewDisk(dir)
	require.NoError(t, err)

	account := host.NewAccount(host.NamedPubkey("pool"), host.NamedPubkey("program"), []byte{7, 8})
	account.Lamports = 5
	require.NoError(t, d.Write(account))

	data, err := os.ReadFile(filepath.Join(dir, account.Key.String()+".acct"))
	require.NoError(t, err)

	var exp []byte
	exp = append(exp, account.Key[:]...)
	exp = append(exp, account.Owner[:]...)
	exp = append(exp, 5, 0, 0, 0, 0, 0, 0, 0) // lamports
	exp = append(exp, 2, 0, 0, 0, 7, 8)       // data
	require.Equal(t, exp, data)

	_, err = os.Stat(filepath.Join(dir, account.Key.String()+".acct.tmp"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}
