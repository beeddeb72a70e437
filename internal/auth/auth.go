package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// EnvVar is the environment variable holding the OpenAI API key.
const EnvVar = "OPENAI_API_KEY"

// GetAPIKey retrieves the OpenAI API key from the environment.
// A missing key is a hard precondition failure: no network call may be
// attempted without one. Callers that can prompt interactively should fall
// back to their own prompt before giving up.
func GetAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv(EnvVar)); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	return "", fmt.Errorf("API key not found. Set %s or enter it when prompted", EnvVar)
}
