// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package mrm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOifBackboneWithListener(t *testing.T) {
	listeners := NewListenerSet()
	group := mustAddr(t, "ff05::abcd")
	listeners.Add(group)

	oif, err := resolveOif(MifBackbone, group, listeners)
	require.NoError(t, err)
	assert.Equal(t, MifThread, oif)
}

func TestResolveOifBackboneWithoutListener(t *testing.T) {
	listeners := NewListenerSet()
	oif, err := resolveOif(MifBackbone, mustAddr(t, "ff05::beef"), listeners)
	require.NoError(t, err)
	assert.Equal(t, MifNone, oif)
}

func TestResolveOifThreadGlobalScope(t *testing.T) {
	oif, err := resolveOif(MifThread, mustAddr(t, "ff0e::1"), NewListenerSet())
	require.NoError(t, err)
	assert.Equal(t, MifBackbone, oif)
}

func TestResolveOifThreadRealmLocal(t *testing.T) {
	oif, err := resolveOif(MifThread, mustAddr(t, "ff03::fc"), NewListenerSet())
	require.NoError(t, err)
	assert.Equal(t, MifNone, oif)
}

func TestResolveOifInvalidIif(t *testing.T) {
	_, err := resolveOif(MifNone, mustAddr(t, "ff0e::1"), NewListenerSet())
	assert.Error(t, err)
}

func TestOifSet(t *testing.T) {
	assert.Nil(t, oifSet(MifNone))
	assert.Equal(t, []MifIndex{MifThread}, oifSet(MifThread))
}
