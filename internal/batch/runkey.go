// Package batch runs the EDA pipeline over every participant, task and
// session combination and collects one interval metrics record per
// successfully processed recording.
package batch

import "fmt"

// RunKey identifies one recording.
type RunKey struct {
	Participant string
	Task        string
	Session     string
}

// Condition is the task and session joined with an underscore.
func (k RunKey) Condition() string {
	return k.Task + "_" + k.Session
}

// Stem is the file name stem shared by the key's outputs.
func (k RunKey) Stem() string {
	return k.Participant + "_" + k.Task + "_" + k.Session
}

func (k RunKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Participant, k.Task, k.Session)
}

// Enumerate returns the cartesian product of the identifier lists,
// participant-major, then task, then session.
func Enumerate(participants, tasks, sessions []string) []RunKey {
	keys := make([]RunKey, 0, len(participants)*len(tasks)*len(sessions))
	for _, p := range participants {
		for _, t := range tasks {
			for _, s := range sessions {
				keys = append(keys, RunKey{Participant: p, Task: t, Session: s})
			}
		}
	}
	return keys
}
