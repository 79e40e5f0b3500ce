package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageAlign_RoundsUpToWholePages(t *testing.T) {
	require.Equal(t, 4096, pageAlign(1))
	require.Equal(t, 4096, pageAlign(4096))
	require.Equal(t, 8192, pageAlign(4097))
}

func TestMapExecutable_RejectsEmptyCode(t *testing.T) {
	_, err := MapExecutable(nil)
	require.ErrorIs(t, err, ErrMappingFailed)
}
