// Package interactive provides terminal prompt helpers for commands that
// offer a choice when a flag is omitted.
package interactive

import (
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// Prompter abstracts interactive selection so commands stay testable.
type Prompter interface {
	// SelectFromList displays an interactive list and returns the
	// selected index and value. Returns promptui.ErrInterrupt when the
	// user cancels.
	SelectFromList(label string, items []string) (index int, value string, err error)
}

// PrompterAdapter implements Prompter using promptui.
type PrompterAdapter struct{}

// NewPrompterAdapter creates the production promptui-based prompter.
func NewPrompterAdapter() *PrompterAdapter {
	return &PrompterAdapter{}
}

// SelectFromList implements Prompter using promptui.Select.
func (p *PrompterAdapter) SelectFromList(label string, items []string) (int, string, error) {
	templates := &promptui.SelectTemplates{
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "✓ {{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Size:      10,
		Templates: templates,
	}

	return prompt.Run()
}

// IsTerminal reports whether stdin is an interactive terminal. Prompts are
// only offered on a TTY; non-interactive invocations (CI) take defaults.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
