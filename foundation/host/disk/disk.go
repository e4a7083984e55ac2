// Package disk stores host accounts on disk, one file per account.
package disk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ardanlabs/crowdpool/foundation/pool/codec"
)

// ErrNotFound is returned when no file exists for the requested account.
var ErrNotFound = errors.New("account not found")

// fileExt is the extension of every account file.
const fileExt = ".acct"

// Disk represents the serialization implementation for reading and storing
// accounts in their own separate files on disk.
type Disk struct {
	dbPath string
}

// NewDisk constructs a Disk value rooted at dbPath, creating the folder if
// needed.
func NewDisk(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each write and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write stores the account in a file labeled with its key. The file is
// replaced atomically.
func (d *Disk) Write(account *host.Account) error {
	// Encode the account with the same codec used for the pool state.
	w := codec.NewWriter()
	w.WriteKey(account.Key)
	w.WriteKey(account.Owner)
	w.WriteU64(account.Lamports)
	w.WriteBytes(account.Data.Snapshot())

	// Write to a scratch file next to the account file.
	tmp := d.getPath(account.Key) + ".tmp"
	if err := os.WriteFile(tmp, w.Bytes(), 0600); err != nil {
		return err
	}

	// Move the new account file into place.
	return os.Rename(tmp, d.getPath(account.Key))
}

// Read locates and returns the account stored under key.
func (d *Disk) Read(key host.Pubkey) (*host.Account, error) {
	// Open the account file for the specified key.
	data, err := os.ReadFile(d.getPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Decode the contents of the account.
	r := codec.NewReader(data)

	var account host.Account
	if account.Key, err = r.ReadKey(); err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	if account.Owner, err = r.ReadKey(); err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	if account.Lamports, err = r.ReadU64(); err != nil {
		return nil, fmt.Errorf("lamports: %w", err)
	}
	state, err := r.ReadBytes()
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	if err := r.Finish(); err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}

	// A renamed file must not be served under another key.
	if account.Key != key {
		return nil, fmt.Errorf("file for %s holds account %s", key, account.Key)
	}

	// Return the account as a writable slot.
	account.IsWritable = true
	account.Data = host.NewBuffer(state)

	return &account, nil
}

// Keys returns the keys of every stored account in ascending order.
func (d *Disk) Keys() ([]host.Pubkey, error) {
	entries, err := os.ReadDir(d.dbPath)
	if err != nil {
		return nil, err
	}

	// Collect the key encoded in every account file name.
	var keys []host.Pubkey
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}

		key, err := host.ToPubkey(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	return keys, nil
}

// Reset will clear out every account on disk.
func (d *Disk) Reset() error {
	keys, err := d.Keys()
	if err != nil {
		return err
	}

	// Remove each account file. Other files in the folder are left alone.
	for _, key := range keys {
		if err := os.Remove(d.getPath(key)); err != nil {
			return err
		}
	}

	return nil
}

// getPath forms the path to the specified account.
func (d *Disk) getPath(key host.Pubkey) string {
	return path.Join(d.dbPath, key.String()+fileExt)
}
