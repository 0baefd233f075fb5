package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	assert.Equal(t, "dev", Info{Version: "dev"}.Short())
	assert.Equal(t, "v1.0.0 (0123abcd)", Info{Version: "v1.0.0", VCSRevision: "0123abcdef99"}.Short())
	assert.Equal(t, "v1.0.0 (0123+dirty)", Info{Version: "v1.0.0", VCSRevision: "0123", VCSModified: true}.Short())
}

func TestString(t *testing.T) {
	s := Info{Version: "v2", BuildTime: "2024-05-01", GoVersion: "go1.25.0"}.String()
	assert.Equal(t, "finlens v2, built 2024-05-01, go1.25.0", s)

	s = Info{Version: "dev", BuildTime: "unknown"}.String()
	assert.Equal(t, "finlens dev", s)
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
