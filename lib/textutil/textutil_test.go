package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "ngolokanté", NormalizeName(" N'Golo  Kanté "))
	require.Equal(t, "alexanderarnold", NormalizeName("Alexander-Arnold"))
}

func TestNameSimilarity(t *testing.T) {
	require.Equal(t, 1.0, NameSimilarity("Vinícius Jr.", "vinícius jr"))
	require.Greater(t, NameSimilarity("Mbappe", "Mbappé"), NameSimilarity("Mbappe", "Haaland"))
}
