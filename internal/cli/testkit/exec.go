package testkit

import (
	"bytes"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

// cobra mutates shared annotation maps while rendering help, so parallel
// tests serialize command execution.
var executeMu sync.Mutex

type Result struct {
	Stdout string
	Stderr string
	Err    error
}

func Execute(command *cobra.Command, stdin string, args ...string) Result {
	executeMu.Lock()
	defer executeMu.Unlock()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	command.SetOut(stdout)
	command.SetErr(stderr)
	command.SetIn(strings.NewReader(stdin))
	command.SetArgs(args)

	err := command.Execute()
	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// CommandPaths lists every registered command path below command, skipping
// help and the hidden completion helpers.
func CommandPaths(command *cobra.Command) []string {
	paths := make([]string, 0)
	var walk func(*cobra.Command, string)
	walk = func(current *cobra.Command, prefix string) {
		for _, child := range current.Commands() {
			name := child.Name()
			if name == "help" || strings.HasPrefix(name, "__") {
				continue
			}
			path := strings.TrimSpace(prefix + " " + name)
			paths = append(paths, path)
			walk(child, path)
		}
	}
	walk(command, "")
	return paths
}
