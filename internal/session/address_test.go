package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddressBook_SingleDefault(t *testing.T) {
	b := NewAddressBook([]Address{
		{ID: "a1", City: "Oslo"},
		{ID: "a2", City: "Bergen", IsDefault: true},
		{ID: "a3", City: "Tromsø", IsDefault: true}, // second default is demoted
	})

	addrs := b.Addresses()
	require.Len(t, addrs, 3)
	assert.False(t, addrs[0].IsDefault)
	assert.True(t, addrs[1].IsDefault)
	assert.False(t, addrs[2].IsDefault, "at most one default survives normalization")

	require.NotNil(t, b.Selected())
	assert.Equal(t, "a2", b.Selected().ID, "selection starts at the default")
}

func TestAddressBook_SelectionBounds(t *testing.T) {
	b := NewAddressBook([]Address{{ID: "a1"}, {ID: "a2"}})

	assert.ErrorIs(t, b.Select(-1), ErrAddressIndex)
	assert.ErrorIs(t, b.Select(2), ErrAddressIndex)
	require.NoError(t, b.Select(1))
	assert.Equal(t, "a2", b.Selected().ID)
}

func TestAddressBook_RemoveClampsSelection(t *testing.T) {
	b := NewAddressBook([]Address{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}})
	require.NoError(t, b.Select(2))

	require.NoError(t, b.Remove(2))
	require.NotNil(t, b.Selected())
	assert.Equal(t, "a2", b.Selected().ID, "selection clamps to the new last entry")

	require.NoError(t, b.Remove(0))
	require.NoError(t, b.Remove(0))
	assert.Nil(t, b.Selected(), "empty book has no selection")
	assert.ErrorIs(t, b.Remove(0), ErrAddressIndex)
}

func TestAddressBook_SetDefaultDemotesOthers(t *testing.T) {
	b := NewAddressBook([]Address{{ID: "a1", IsDefault: true}, {ID: "a2"}})
	require.NoError(t, b.SetDefault(1))

	addrs := b.Addresses()
	assert.False(t, addrs[0].IsDefault)
	assert.True(t, addrs[1].IsDefault)

	assert.ErrorIs(t, b.SetDefault(5), ErrAddressIndex)
}

func TestAddressBook_AddDefaultDemotesExisting(t *testing.T) {
	b := NewAddressBook([]Address{{ID: "a1", IsDefault: true}})
	b.Add(Address{ID: "a2", IsDefault: true})

	addrs := b.Addresses()
	require.Len(t, addrs, 2)
	assert.False(t, addrs[0].IsDefault)
	assert.True(t, addrs[1].IsDefault)
}

func TestManager_AddressBookFromProfile(t *testing.T) {
	m := New("http://127.0.0.1:1", nil)
	assert.Equal(t, 0, m.AddressBook().Len(), "anonymous session yields an empty book")
}
