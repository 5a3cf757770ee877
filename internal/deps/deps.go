package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement describes an external command the daemon shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Requirement
	Available bool
	Detail    string
}

// Check evaluates the provided requirements against PATH.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		status := Status{Requirement: req}
		switch {
		case req.Command == "":
			status.Detail = "command not configured"
		case !available(req.Command):
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		default:
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

func available(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
