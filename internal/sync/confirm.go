package sync

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Decision is the operator's answer to a proposed document write.
type Decision int

// Decisions.
const (
	Reject Decision = iota
	Accept
	AcceptAll
)

// Decider answers the two interactive questions a run can ask: whether a
// proposed document change should be written, and whether a partially
// completed enrichment pass should keep its results.
type Decider interface {
	// Confirm presents a proposed change to a named document and returns
	// the operator's decision.
	Confirm(name, diff string) (Decision, error)

	// KeepPartial asks whether the results of an interrupted or failed
	// pass, covering done of total entities, should be kept.
	KeepPartial(pass string, done, total int) (bool, error)
}

// Auto is a Decider that accepts everything without asking. Used by
// unattended runs and tests.
type Auto struct{}

// Confirm implements Decider.
func (Auto) Confirm(string, string) (Decision, error) { return Accept, nil }

// KeepPartial implements Decider.
func (Auto) KeepPartial(string, int, int) (bool, error) { return true, nil }

// Interactive is a Decider that prompts on a terminal. Answers: y accept,
// n reject, a accept this and everything after it.
type Interactive struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

// NewInteractive creates a terminal-backed Decider.
func NewInteractive(in io.Reader, out io.Writer) *Interactive {
	return &Interactive{In: in, Out: out}
}

func (i *Interactive) readLine() (string, error) {
	if i.scanner == nil {
		i.scanner = bufio.NewScanner(i.In)
	}
	if !i.scanner.Scan() {
		if err := i.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.ToLower(strings.TrimSpace(i.scanner.Text())), nil
}

// Confirm implements Decider.
func (i *Interactive) Confirm(name, diff string) (Decision, error) {
	fmt.Fprintf(i.Out, "\nproposed change to %s:\n%s", name, diff)
	for {
		fmt.Fprintf(i.Out, "save %s? [y]es / [n]o / [a]ll: ", name)
		answer, err := i.readLine()
		if err != nil {
			return Reject, err
		}
		switch answer {
		case "y", "yes":
			return Accept, nil
		case "n", "no":
			return Reject, nil
		case "a", "all":
			return AcceptAll, nil
		}
	}
}

// KeepPartial implements Decider.
func (i *Interactive) KeepPartial(pass string, done, total int) (bool, error) {
	for {
		fmt.Fprintf(i.Out, "%s pass stopped after %d of %d wikis; keep partial results? [y]es / [n]o: ", pass, done, total)
		answer, err := i.readLine()
		if err != nil {
			return false, err
		}
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
