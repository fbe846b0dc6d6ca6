package htmlutil

import (
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestFindInScripts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>
<script>var x = 1;</script>
<script>
  window.location = "https://example.com/next?code=1";
</script>
</body></html>`))
	require.NoError(t, err)

	re := regexp.MustCompile(`window\.location = "(.*)"`)
	match, ok := FindInScripts(doc, re)
	require.True(t, ok)
	require.Equal(t, "https://example.com/next?code=1", match)

	_, ok = FindInScripts(doc, regexp.MustCompile(`nothing (here)`))
	require.False(t, ok)
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "Kylian Mbappé", CleanText("  \n Kylian \t\t Mbappé\n"))
	require.Equal(t, "", CleanText("\u0000 "))
}
