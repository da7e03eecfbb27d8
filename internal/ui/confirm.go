package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Input is where prompts read answers from.
var Input io.Reader = os.Stdin

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	fmt.Fprintf(Output, "%s [y/N]: ", StyleWarning.Render(prompt))
	return isYes(readLine(Input))
}

// ConfirmDanger is Confirm styled for irreversible actions such as
// deploying to mainnet or cancelling a proposal.
func ConfirmDanger(prompt string) bool {
	fmt.Fprintf(Output, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return isYes(readLine(Input))
}

// PromptInput asks for a line of text and returns it trimmed. def is
// returned for an empty answer.
func PromptInput(prompt, def string) string {
	if def != "" {
		fmt.Fprintf(Output, "%s %s: ", StyleValue.Render(prompt), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Fprintf(Output, "%s: ", StyleValue.Render(prompt))
	}
	line := strings.TrimSpace(readLine(Input))
	if line == "" {
		return def
	}
	return line
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "y" || s == "yes"
}

// readLine reads up to a newline one byte at a time, so successive prompts
// sharing Input never lose buffered answers.
func readLine(r io.Reader) string {
	var sb strings.Builder
	b := make([]byte, 1)
	for {
		n, err := r.Read(b)
		if n == 1 {
			if b[0] == '\n' {
				break
			}
			sb.WriteByte(b[0])
		}
		if err != nil {
			break
		}
	}
	return strings.TrimRight(sb.String(), "\r")
}
