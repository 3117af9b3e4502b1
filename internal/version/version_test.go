package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionStrings(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Revision)

	assert.Contains(t, Short(), Version)
	assert.Contains(t, Detailed(), Revision)
	assert.Contains(t, Detailed(), "/")
	assert.True(t, strings.HasPrefix(UserAgent(), AppName+"/"+Version))
}

func TestFromBuildInfo(t *testing.T) {
	origVersion, origRevision := Version, Revision
	t.Cleanup(func() {
		Version, Revision = origVersion, origRevision
	})

	Version = devVersion
	Revision = "HEAD"

	fromBuildInfo("v1.2.3", map[string]string{
		"vcs.revision": "abcdef1234567890",
		"vcs.modified": "true",
	})

	assert.Equal(t, "1.2.3", Version)
	assert.Equal(t, "abcdef123456-dirty", Revision)
}

func TestFromBuildInfo_KeepsLdflags(t *testing.T) {
	origVersion, origRevision := Version, Revision
	t.Cleanup(func() {
		Version, Revision = origVersion, origRevision
	})

	Version = "2.0.0"
	Revision = "cafebabe"

	fromBuildInfo("(devel)", map[string]string{"vcs.revision": "0123456789abcdef"})

	assert.Equal(t, "2.0.0", Version)
	assert.Equal(t, "cafebabe", Revision)
}
