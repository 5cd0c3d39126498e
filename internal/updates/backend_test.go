package updates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(""))
	assert.Equal(t, 1, CountLines("package-1\n"))
	assert.Equal(t, 1, CountLines("package-1"))
	assert.Equal(t, 3, CountLines("a\nb\nc\n"))
	// Interior blank lines still count as lines.
	assert.Equal(t, 3, CountLines("a\n\nb\n"))
}

func TestParseSkipHeader(t *testing.T) {
	// A 15-line listing with a 1-line header reports 14 updates.
	var b strings.Builder
	b.WriteString("Listing... Done\n")
	for i := 0; i < 14; i++ {
		b.WriteString("libfoo/stable 1.2.3 amd64 [upgradable from: 1.2.2]\n")
	}
	assert.Equal(t, 14, parseSkipHeader(b.String()))

	// Header only, or nothing at all, reports zero.
	assert.Equal(t, 0, parseSkipHeader("Listing... Done\n"))
	assert.Equal(t, 0, parseSkipHeader(""))
}

func TestParseEopkg(t *testing.T) {
	assert.Equal(t, 0, parseEopkg("No packages to upgrade.\n"))
	assert.Equal(t, 0, parseEopkg("No packages to upgrade.  \n\n"))
	assert.Equal(t, 2, parseEopkg("foo 1.0 -> 1.1\nbar 2.0 -> 2.1\n"))
	assert.Equal(t, 0, parseEopkg(""))
}

func TestParseZypper(t *testing.T) {
	// 2 blank lines, 4 header lines, then 34 data rows.
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString("Loading repository data...\n")
	b.WriteString("Reading installed packages...\n")
	b.WriteString("S | Repository | Name | Current Version | Available Version | Arch\n")
	b.WriteString("--+------------+------+-----------------+-------------------+-----\n")
	for i := 0; i < 34; i++ {
		b.WriteString("v | repo | pkg | 1.0 | 1.1 | x86_64\n")
	}
	assert.Equal(t, 34, parseZypper(b.String()))

	// Header only, or empty output, reports zero.
	assert.Equal(t, 0, parseZypper("a\nb\nc\nd\n"))
	assert.Equal(t, 0, parseZypper(""))
}

func TestRegistry_PkgDisabled(t *testing.T) {
	for _, spec := range Registry() {
		if spec.Name == "pkg" {
			assert.True(t, spec.Disabled)
			return
		}
	}
	t.Fatal("pkg not in registry")
}

func TestActiveBackends_AllPresent(t *testing.T) {
	backends := ActiveBackends(nil, func(Spec) bool { return true })

	var names []string
	for _, b := range backends {
		names = append(names, b.Name())
	}
	// Registry order, minus the disabled pkg entry.
	assert.Equal(t, []string{"pacman", "cower", "yay", "apk", "apt", "eopkg", "xbps", "zypper"}, names)
}

func TestActiveBackends_TemplateRefs(t *testing.T) {
	backends := ActiveBackends([]string{"apt", "pacman"}, func(Spec) bool { return true })

	require.Len(t, backends, 2)
	assert.Equal(t, "pacman", backends[0].Name())
	assert.Equal(t, "apt", backends[1].Name())
}

func TestActiveBackends_MissingBinary(t *testing.T) {
	avail := func(spec Spec) bool { return spec.Name == "apt" }
	backends := ActiveBackends(nil, avail)

	require.Len(t, backends, 1)
	assert.Equal(t, "apt", backends[0].Name())
}

func TestActiveBackends_UnknownNameIsIgnored(t *testing.T) {
	// A template referencing a name outside the registry selects nothing
	// for that name; known names keep their custom rules.
	backends := ActiveBackends([]string{"apt", "doesnotexist"}, func(Spec) bool { return true })

	require.Len(t, backends, 1)
	assert.Equal(t, "apt", backends[0].Name())
}

func TestActiveBackends_PkgNeverActive(t *testing.T) {
	backends := ActiveBackends([]string{"pkg"}, func(Spec) bool { return true })
	assert.Empty(t, backends)
}
