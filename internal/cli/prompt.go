package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForPath prompts the user interactively for a file or directory path.
func PromptForPath(label string) string {
	fmt.Printf("%s: ", label)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read input")
		return ""
	}

	return strings.TrimSpace(input)
}

// PromptForAPIKey prompts the user for an API key on stdin. The key is
// echoed; callers should prefer the environment variable.
func PromptForAPIKey() string {
	fmt.Print("Enter your OpenAI API key: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read API key input")
		return ""
	}

	return strings.TrimSpace(input)
}
