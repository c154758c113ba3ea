package contracts

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	info := Build()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, DataFormatVersion, info.DataFormat)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.Commit)

	s := info.String()
	assert.True(t, strings.HasPrefix(s, "bankprep "+Version+" "))
	assert.Contains(t, s, "artifacts "+DataFormatVersion)
}

func TestBuild_StampedCommitWins(t *testing.T) {
	old := GitCommit
	t.Cleanup(func() { GitCommit = old })

	GitCommit = "abc1234"
	assert.Equal(t, "abc1234", Build().Commit)
}
