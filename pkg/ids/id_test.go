package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveDeterministic(t *testing.T) {
	owner := GenerateTestID()

	a := Derive([]byte("adslot"), owner.Bytes(), []byte("homepage-banner"))
	b := Derive([]byte("adslot"), owner.Bytes(), []byte("homepage-banner"))
	require.Equal(t, a, b)

	c := Derive([]byte("adslot"), owner.Bytes(), []byte("sidebar"))
	require.NotEqual(t, a, c)

	// Namespace separates otherwise identical seeds
	d := Derive([]byte("escrow"), owner.Bytes(), []byte("homepage-banner"))
	require.NotEqual(t, a, d)
}

func TestTextRoundTrip(t *testing.T) {
	id := GenerateTestID()

	text, err := id.MarshalText()
	require.NoError(t, err)

	var parsed ID
	require.NoError(t, parsed.UnmarshalText(text))
	require.Equal(t, id, parsed)
}

func TestFromString(t *testing.T) {
	id := GenerateTestID()
	parsed, err := FromString(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = FromString("not-hex")
	require.Error(t, err)

	_, err = FromString("abcd")
	require.Error(t, err)
}

func TestIsEmpty(t *testing.T) {
	require.True(t, Empty.IsEmpty())
	require.False(t, GenerateTestID().IsEmpty())
}
