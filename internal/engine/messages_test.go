package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tatianab/ripple-realms/internal/minigames"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&InvalidChoiceError{Label: "orb", Suggestions: []string{"Investigate the orb"}}, `"Investigate the orb"`},
		{fmt.Errorf("%w: user u1", ErrRealmNotFound), "Create one"},
		{fmt.Errorf("quest x: %w", minigames.ErrUnknownMinigame), "not available"},
		{fmt.Errorf("%w: %w", ErrPersistence, errors.New("disk full")), "try again"},
		{ErrZoneIncomplete, "still quests"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := Explain(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("Explain(%v) = %q, want it to contain %q", tt.err, got, tt.want)
		}
	}
}
