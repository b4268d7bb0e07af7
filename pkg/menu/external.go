package menu

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// External selects through a dmenu style program: one line per item on
// stdin, the chosen line on stdout.
type External struct {
	// Command is the program and its arguments.
	Command []string
	// PromptFlag, if set, passes the prompt as its argument.
	PromptFlag string
}

// Select runs the program once. An empty reply, a reply matching no item or
// a non-zero exit means nothing was chosen.
func (e External) Select(prompt string, items []Item) (int, bool, error) {
	if len(e.Command) == 0 {
		return 0, false, fmt.Errorf("no menu command configured")
	}
	if len(items) == 0 {
		return 0, false, nil
	}

	lines := Lines(items)
	args := append([]string(nil), e.Command[1:]...)
	if e.PromptFlag != "" && prompt != "" {
		args = append(args, e.PromptFlag, prompt)
	}

	cmd := exec.Command(e.Command[0], args...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			// dmenu exits 1 when the user hits Escape.
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("running menu %q: %v", e.Command[0], err)
	}

	choice := strings.TrimRight(stdout.String(), "\r\n")
	if choice == "" {
		return 0, false, nil
	}
	for i, l := range lines {
		if l == choice {
			return i, true, nil
		}
	}
	return 0, false, nil
}
