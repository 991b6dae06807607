package service

import (
	"strings"
	"testing"

	"github.com/docuchat/docuchat/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestDummyPasswordHash(t *testing.T) {
	t.Parallel()

	hash := dummyPasswordHash()
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))
	require.Equal(t, hash, dummyPasswordHash())
	require.False(t, cryptox.CheckPassword(hash, "CorrectHorse9Battery"))
}
