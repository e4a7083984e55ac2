package host_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ardanlabs/crowdpool/foundation/host"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestBorrow(t *testing.T) {
	t.Log("Given the need to enforce the buffer borrow rules.")
	{
		buf := host.NewBuffer([]byte("state"))

		r1, err := buf.Borrow()
		if err != nil {
			t.Fatalf("\t%s\tShould take the first shared borrow: %v", failed, err)
		}
		r2, err := buf.Borrow()
		if err != nil {
			t.Fatalf("\t%s\tShould take a second shared borrow: %v", failed, err)
		}
		t.Logf("\t%s\tShould allow many shared borrows.", success)

		if _, err := buf.BorrowMut(); !errors.Is(err, host.ErrAccountBorrowFailed) {
			t.Fatalf("\t%s\tShould refuse an exclusive borrow while shared: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse an exclusive borrow while shared.", success)

		r1.Release()
		r1.Release()
		if _, err := buf.BorrowMut(); !errors.Is(err, host.ErrAccountBorrowFailed) {
			t.Fatalf("\t%s\tShould count a repeated release once: %v", failed, err)
		}
		r2.Release()
		t.Logf("\t%s\tShould count a repeated release once.", success)

		rm, err := buf.BorrowMut()
		if err != nil {
			t.Fatalf("\t%s\tShould take an exclusive borrow once released: %v", failed, err)
		}
		if _, err := buf.Borrow(); !errors.Is(err, host.ErrAccountBorrowFailed) {
			t.Fatalf("\t%s\tShould refuse a shared borrow while exclusive: %v", failed, err)
		}
		if _, err := buf.BorrowMut(); !errors.Is(err, host.ErrAccountBorrowFailed) {
			t.Fatalf("\t%s\tShould refuse a second exclusive borrow: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse every other borrow while exclusive.", success)

		data := []byte("next")
		rm.Set(data)
		data[0] = 'X'
		rm.Release()

		if got := string(buf.Snapshot()); got != "next" {
			t.Fatalf("\t%s\tShould hold a private copy: got %q", failed, got)
		}
		if buf.Borrowed() {
			t.Fatalf("\t%s\tShould have no borrows left.", failed)
		}
		t.Logf("\t%s\tShould hold a private copy with no borrows left.", success)
	}
}

func TestAccountIter(t *testing.T) {
	t.Log("Given the need to walk account slots.")
	{
		a := host.NewAccount(host.NamedPubkey("a"), host.Pubkey{}, nil)
		b := host.NewAccount(host.NamedPubkey("b"), host.Pubkey{}, nil)
		c := host.NewAccount(host.NamedPubkey("c"), host.Pubkey{}, nil)

		it := host.NewAccountIter([]*host.Account{a, b, c})

		got, err := it.Next()
		if err != nil || got != a {
			t.Fatalf("\t%s\tShould return the first slot: %v", failed, err)
		}
		if rest := it.Rest(); len(rest) != 2 || rest[0] != b {
			t.Fatalf("\t%s\tShould return the remaining slots.", failed)
		}
		t.Logf("\t%s\tShould return slots in order.", success)

		it.Next()
		it.Next()
		if _, err := it.Next(); !errors.Is(err, host.ErrNotEnoughAccountKeys) {
			t.Fatalf("\t%s\tShould fail once exhausted: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail once exhausted.", success)
	}
}

func TestCheckOwner(t *testing.T) {
	t.Log("Given the need to verify account ownership.")
	{
		programID := host.NamedPubkey("program")

		if err := host.CheckOwner(host.NewAccount(host.NamedPubkey("pool"), programID, nil), programID); err != nil {
			t.Fatalf("\t%s\tShould accept an owned account: %v", failed, err)
		}
		if err := host.CheckOwner(host.NewAccount(host.NamedPubkey("pool"), host.Pubkey{}, nil), programID); !errors.Is(err, host.ErrIncorrectProgramID) {
			t.Fatalf("\t%s\tShould reject a foreign account: %v", failed, err)
		}
		t.Logf("\t%s\tShould only accept owned accounts.", success)
	}
}

func TestProgramError(t *testing.T) {
	t.Log("Given the need to compare program errors by code.")
	{
		wrapped := fmt.Errorf("load: %w", host.Custom(5, "pool deadline passed"))

		if !errors.Is(wrapped, host.Custom(5, "")) {
			t.Fatalf("\t%s\tShould match on code through wrapping.", failed)
		}
		if errors.Is(wrapped, host.Custom(6, "pool deadline passed")) {
			t.Fatalf("\t%s\tShould not match a different code.", failed)
		}
		t.Logf("\t%s\tShould match on code through wrapping.", success)

		code, ok := host.Code(wrapped)
		if !ok || code != 5 {
			t.Fatalf("\t%s\tShould extract the code: got %d", failed, code)
		}
		if _, ok := host.Code(errors.New("plain")); ok {
			t.Fatalf("\t%s\tShould find no code in a plain error.", failed)
		}
		t.Logf("\t%s\tShould extract the code.", success)

		if host.ErrNotEnoughAccountKeys.IsCustom() || !host.Custom(17, "").IsCustom() {
			t.Fatalf("\t%s\tShould separate builtin and custom codes.", failed)
		}
		if host.ErrNotEnoughAccountKeys.Code != 11<<32 {
			t.Fatalf("\t%s\tShould shift builtin codes.", failed)
		}
		t.Logf("\t%s\tShould separate builtin and custom codes.", success)
	}
}

func TestPubkey(t *testing.T) {
	t.Log("Given the need to work with identities.")
	{
		kf := host.NewKeyFactory(1)
		seen := make(map[host.Pubkey]bool)
		for i := 0; i < 100; i++ {
			pk := kf.NewUnique()
			if seen[pk] || pk.IsZero() {
				t.Fatalf("\t%s\tShould hand out distinct identities.", failed)
			}
			seen[pk] = true
		}
		t.Logf("\t%s\tShould hand out distinct identities.", success)

		pk := host.NamedPubkey("alice")
		back, err := host.ToPubkey(pk.String())
		if err != nil || back != pk {
			t.Fatalf("\t%s\tShould parse the hex form: %v", failed, err)
		}
		if _, err := host.ToPubkey("0x0102"); err == nil {
			t.Fatalf("\t%s\tShould reject a short hex form.", failed)
		}
		t.Logf("\t%s\tShould round trip the hex form.", success)

		key, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould generate a key: %v", failed, err)
		}
		if host.PublicKeyToPubkey(key.PublicKey) != host.PublicKeyToPubkey(key.PublicKey) {
			t.Fatalf("\t%s\tShould derive a stable identity.", failed)
		}
		t.Logf("\t%s\tShould derive a stable identity from a public key.", success)

		if host.NamedPubkey("a").Compare(host.NamedPubkey("a")) != 0 {
			t.Fatalf("\t%s\tShould compare equal identities as equal.", failed)
		}
		t.Logf("\t%s\tShould compare equal identities as equal.", success)
	}
}
