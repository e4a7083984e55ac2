package host

import "bytes"

// Account represents an account slot handed to the program for a single
// invocation.
type Account struct {
	Key        Pubkey
	Owner      Pubkey
	IsSigner   bool
	IsWritable bool
	Lamports   uint64
	Data       *Buffer
}

// NewAccount constructs an account whose data buffer holds a copy of data.
func NewAccount(key Pubkey, owner Pubkey, data []byte) *Account {
	return &Account{
		Key:        key,
		Owner:      owner,
		IsWritable: true,
		Data:       NewBuffer(data),
	}
}

// CheckOwner validates the account is owned by the invoking program.
func CheckOwner(account *Account, programID Pubkey) error {
	if account.Owner != programID {
		return ErrIncorrectProgramID
	}
	return nil
}

// =============================================================================

// AccountIter yields account slots in order.
type AccountIter struct {
	accounts []*Account
	pos      int
}

// NewAccountIter constructs an iterator over the provided slots.
func NewAccountIter(accounts []*Account) *AccountIter {
	return &AccountIter{accounts: accounts}
}

// Next returns the next unread slot.
func (it *AccountIter) Next() (*Account, error) {
	if it.pos >= len(it.accounts) {
		return nil, ErrNotEnoughAccountKeys
	}

	acct := it.accounts[it.pos]
	it.pos++
	return acct, nil
}

// Rest returns every slot not yet read.
func (it *AccountIter) Rest() []*Account {
	return it.accounts[it.pos:]
}

// =============================================================================

// Buffer holds account data under a shared-read, exclusive-write borrow
// discipline. The zero value is an empty, unborrowed buffer. A Buffer is
// scoped to one invocation and is not safe for concurrent use.
type Buffer struct {
	data    []byte
	readers int
	writer  bool
}

// NewBuffer constructs a buffer holding a copy of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: bytes.Clone(data)}
}

// Len returns the size of the data. It does not require a borrow.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Snapshot returns a copy of the data. It does not require a borrow.
func (b *Buffer) Snapshot() []byte {
	return bytes.Clone(b.data)
}

// Borrow takes a shared borrow. It fails while an exclusive borrow is held.
func (b *Buffer) Borrow() (*Ref, error) {
	if b.writer {
		return nil, ErrAccountBorrowFailed
	}

	b.readers++
	return &Ref{buf: b}, nil
}

// BorrowMut takes an exclusive borrow. It fails while any other borrow is
// held.
func (b *Buffer) BorrowMut() (*RefMut, error) {
	if b.writer || b.readers > 0 {
		return nil, ErrAccountBorrowFailed
	}

	b.writer = true
	return &RefMut{buf: b}, nil
}

// Borrowed reports whether any borrow is outstanding.
func (b *Buffer) Borrowed() bool {
	return b.writer || b.readers > 0
}

// Ref is a shared borrow of a buffer.
type Ref struct {
	buf      *Buffer
	released bool
}

// Bytes returns the borrowed data. The slice must not be retained past
// Release.
func (r *Ref) Bytes() []byte {
	return r.buf.data
}

// Release ends the borrow. Calling it more than once is harmless.
func (r *Ref) Release() {
	if r.released {
		return
	}
	r.released = true
	r.buf.readers--
}

// RefMut is an exclusive borrow of a buffer.
type RefMut struct {
	buf      *Buffer
	released bool
}

// Bytes returns the borrowed data.
func (rm *RefMut) Bytes() []byte {
	return rm.buf.data
}

// Set replaces the buffer contents with a copy of data.
func (rm *RefMut) Set(data []byte) {
	rm.buf.data = bytes.Clone(data)
}

// Release ends the borrow. Calling it more than once is harmless.
func (rm *RefMut) Release() {
	if rm.released {
		return
	}
	rm.released = true
	rm.buf.writer = false
}
