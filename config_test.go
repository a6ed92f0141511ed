// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package kontrt_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/kontrt"
)

func TestLoadOptions(t *testing.T) {
	opts, err := kontrt.LoadOptions(strings.NewReader(`
autoServiceDiscovery: true
strictDiscovery: true
eagerBuild: true
validation:
  strict: true
`))
	require.NoError(t, err)
	assert.True(t, opts.AutoServiceDiscovery)
	assert.True(t, opts.StrictDiscovery)
	assert.True(t, opts.EagerBuild)
	assert.True(t, opts.Validation.Strict)
	assert.Nil(t, opts.Services)
}

func TestLoadOptionsEmpty(t *testing.T) {
	opts, err := kontrt.LoadOptions(strings.NewReader(""))
	require.NoError(t, err)
	assert.False(t, opts.AutoServiceDiscovery)
	assert.False(t, opts.Validation.Strict)
}

func TestLoadOptionsRejectsUnknownFields(t *testing.T) {
	_, err := kontrt.LoadOptions(strings.NewReader("autoDiscovery: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "autoDiscovery")
}

func TestLoadOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kontrt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("validation:\n  strict: true\n"), 0o600))

	opts, err := kontrt.LoadOptionsFile(path)
	require.NoError(t, err)
	assert.True(t, opts.Validation.Strict)

	_, err = kontrt.LoadOptionsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOptionsConfig(t *testing.T) {
	opts := kontrt.Options{
		MapValue:   func(v any) any { return v },
		MapError:   func(e any) kontrt.Either[any, any] { return kontrt.Left[any, any](e) },
		Validation: kontrt.ValidationOptions{Strict: true},
	}
	cfg := opts.Config()
	assert.NotNil(t, cfg.MapValue)
	assert.NotNil(t, cfg.MapError)
	assert.True(t, cfg.Validation.Strict)
}

func TestOptionsLoadOverlaysDefaults(t *testing.T) {
	opts := kontrt.Options{AutoServiceDiscovery: true, EagerBuild: true}
	require.NoError(t, opts.Load(strings.NewReader("validation:\n  strict: true\neagerBuild: false\n")))
	assert.True(t, opts.AutoServiceDiscovery, "absent keys keep their defaults")
	assert.False(t, opts.EagerBuild)
	assert.True(t, opts.Validation.Strict)

	require.NoError(t, opts.Load(strings.NewReader("")))
	assert.True(t, opts.AutoServiceDiscovery)

	err := opts.Load(strings.NewReader("autoServiceDiscovery: false\nbogus: 1\n"))
	require.Error(t, err)
	assert.True(t, opts.AutoServiceDiscovery, "failed load leaves options unchanged")
}

func TestOptionsLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kontrt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strictDiscovery: true\n"), 0o600))

	opts := kontrt.Options{AutoServiceDiscovery: true}
	require.NoError(t, opts.LoadFile(path))
	assert.True(t, opts.AutoServiceDiscovery)
	assert.True(t, opts.StrictDiscovery)
}
