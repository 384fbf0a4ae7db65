package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCorrectAnswer(t *testing.T) {
	g := NewSingleplayerGame(1, "alice", Dashes{ID: 3, Word: "cat"})

	cases := []struct {
		answer string
		want   bool
	}{
		{"cat", true},
		{"Cat", true},
		{"  CAT ", true},
		{"cats", false},
		{"", false},
		{"dog", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, g.IsCorrectAnswer(tc.answer), "answer %q", tc.answer)
	}
}

func TestNewMultiplayerGameCopiesLogins(t *testing.T) {
	logins := []string{"p2", "p3", "p1"}
	g := NewMultiplayerGame(5, "house", logins, "p1")

	logins[0] = "mallory"

	assert.Equal(t, []string{"p2", "p3", "p1"}, g.Logins)
	assert.True(t, g.HasParticipant("p1"))
	assert.False(t, g.HasParticipant("mallory"))
	require.NotNil(t, g.Multi)
	assert.Equal(t, "p1", g.Multi.Painter)
	assert.Nil(t, g.Single)

	parts := g.Participants()
	parts[0] = "x"
	assert.Equal(t, "p2", g.Logins[0])
}

func TestGameKindJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Kind GameKind `json:"type"`
	}{KindMultiplayer})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"mp"}`, string(b))
	assert.Equal(t, "sp", KindSingleplayer.String())
}
