package session

import "errors"

// Address is one shipping address on a user's profile.
type Address struct {
	ID         string `json:"_id,omitempty"`
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

// ErrAddressIndex is returned when an address index is out of bounds.
var ErrAddressIndex = errors.New("address index out of range")

// AddressBook holds the addresses used during checkout. At most one
// address is marked default, and the selection index always stays
// within the bounds of the current list.
type AddressBook struct {
	addresses []Address
	selected  int
}

// NewAddressBook normalizes a list of addresses: the first address
// marked default stays default, any later default flags are cleared,
// and the selection starts at the default (or the first entry).
func NewAddressBook(addresses []Address) *AddressBook {
	b := &AddressBook{addresses: make([]Address, len(addresses))}
	copy(b.addresses, addresses)

	defaultIdx := -1
	for i := range b.addresses {
		if b.addresses[i].IsDefault {
			if defaultIdx == -1 {
				defaultIdx = i
			} else {
				b.addresses[i].IsDefault = false
			}
		}
	}
	if defaultIdx >= 0 {
		b.selected = defaultIdx
	}
	return b
}

// Addresses returns a copy of the list.
func (b *AddressBook) Addresses() []Address {
	out := make([]Address, len(b.addresses))
	copy(out, b.addresses)
	return out
}

// Len returns the number of addresses.
func (b *AddressBook) Len() int { return len(b.addresses) }

// Add appends an address. A new default demotes the previous one.
func (b *AddressBook) Add(a Address) {
	if a.IsDefault {
		for i := range b.addresses {
			b.addresses[i].IsDefault = false
		}
	}
	b.addresses = append(b.addresses, a)
}

// Remove deletes the address at i and clamps the selection back into
// bounds.
func (b *AddressBook) Remove(i int) error {
	if i < 0 || i >= len(b.addresses) {
		return ErrAddressIndex
	}
	b.addresses = append(b.addresses[:i], b.addresses[i+1:]...)
	if b.selected >= len(b.addresses) {
		b.selected = len(b.addresses) - 1
	}
	if b.selected < 0 {
		b.selected = 0
	}
	return nil
}

// SetDefault marks the address at i as the single default.
func (b *AddressBook) SetDefault(i int) error {
	if i < 0 || i >= len(b.addresses) {
		return ErrAddressIndex
	}
	for j := range b.addresses {
		b.addresses[j].IsDefault = j == i
	}
	return nil
}

// Select picks the address at i for checkout.
func (b *AddressBook) Select(i int) error {
	if i < 0 || i >= len(b.addresses) {
		return ErrAddressIndex
	}
	b.selected = i
	return nil
}

// Selected returns the currently selected address, or nil when the book
// is empty.
func (b *AddressBook) Selected() *Address {
	if len(b.addresses) == 0 {
		return nil
	}
	a := b.addresses[b.selected]
	return &a
}

// AddressBook builds the address book from the current user's profile.
// An anonymous session yields an empty book.
func (m *Manager) AddressBook() *AddressBook {
	u := m.User()
	if u == nil {
		return NewAddressBook(nil)
	}
	return NewAddressBook(u.Addresses)
}
