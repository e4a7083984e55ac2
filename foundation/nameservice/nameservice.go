// Package nameservice reads a folder of key files and creates a name
// service lookup for the pool identities they control.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyExt is the extension of the key files read by the name service.
const KeyExt = ".ecdsa"

// NameService maintains a map of identities for name lookup.
type NameService struct {
	accounts map[host.Pubkey]string
	names    map[string]host.Pubkey
}

// New constructs a name service with identities from the key files under
// root.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[host.Pubkey]string),
		names:    make(map[string]host.Pubkey),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != KeyExt {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return err
		}

		key := host.PublicKeyToPubkey(privateKey.PublicKey)
		name := strings.TrimSuffix(path.Base(fileName), KeyExt)

		ns.accounts[key] = name
		ns.names[name] = key

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified identity.
func (ns *NameService) Lookup(key host.Pubkey) string {
	name, exists := ns.accounts[key]
	if !exists {
		return key.String()
	}
	return name
}

// Resolve returns the identity for the specified name. A hex identity is
// accepted as well.
func (ns *NameService) Resolve(name string) (host.Pubkey, error) {
	if key, exists := ns.names[name]; exists {
		return key, nil
	}

	key, err := host.ToPubkey(name)
	if err != nil {
		return host.Pubkey{}, fmt.Errorf("unknown account %q", name)
	}
	return key, nil
}

// Copy returns a copy of the map of names and identities.
func (ns *NameService) Copy() map[host.Pubkey]string {
	cpy := make(map[host.Pubkey]string, len(ns.accounts))
	for key, name := range ns.accounts {
		cpy[key] = name
	}
	return cpy
}
