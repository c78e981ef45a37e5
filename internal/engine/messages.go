package engine

import (
	"errors"
	"fmt"

	"github.com/tatianab/ripple-realms/internal/minigames"
)

// Explain turns an engine error into a message fit for the player. Errors
// it does not know are returned as their own text.
func Explain(err error) string {
	var invalid *InvalidChoiceError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalid):
		if len(invalid.Suggestions) > 0 {
			return fmt.Sprintf("That is not one of the choices. Did you mean %q?", invalid.Suggestions[0])
		}
		return "That is not one of the choices."
	case errors.Is(err, ErrRealmNotFound):
		return "You do not have a realm yet. Create one to begin."
	case errors.Is(err, ErrNoQuestPresented):
		return "That quest is no longer on offer."
	case errors.Is(err, ErrMinigameInFlight):
		return "Finish the challenge in front of you first."
	case errors.Is(err, ErrNoMinigame):
		return "There is no challenge in progress."
	case errors.Is(err, ErrZoneIncomplete):
		return "There are still quests to finish here."
	case errors.Is(err, minigames.ErrUnknownMinigame):
		return "This challenge is not available right now."
	case errors.Is(err, ErrPersistence):
		return "Your progress could not be saved. Please try again."
	default:
		return err.Error()
	}
}
