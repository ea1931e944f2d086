package instance

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandKind enumerates the commands an instance accepts.
type CommandKind int

const (
	GotoFirst CommandKind = iota + 1
	GotoLatest
	GotoPrevious
	GotoNext
	GotoRandom
	GotoIndex
	Suspend
	Resume
)

var commandNames = map[CommandKind]string{
	GotoFirst:    "GOTO_FIRST",
	GotoLatest:   "GOTO_LATEST",
	GotoPrevious: "GOTO_PREVIOUS",
	GotoNext:     "GOTO_NEXT",
	GotoRandom:   "GOTO_RANDOM",
	GotoIndex:    "GOTO_INDEX",
	Suspend:      "SUSPEND",
	Resume:       "RESUME",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is one typed request for an instance.
type Command struct {
	Kind  CommandKind
	Index int // GotoIndex only
}

// Goto builds a GotoIndex command.
func Goto(n int) Command { return Command{Kind: GotoIndex, Index: n} }

func (c Command) String() string {
	if c.Kind == GotoIndex {
		return fmt.Sprintf("%s(%d)", c.Kind, c.Index)
	}
	return c.Kind.String()
}

// Navigational reports whether the command moves the current item.
func (c Command) Navigational() bool {
	return c.Kind >= GotoFirst && c.Kind <= GotoIndex
}

// ParseCommand reads a command word as typed on a command line: first,
// latest (or last), previous (or prev), next, random, suspend, resume or an
// integer index.
func ParseCommand(s string) (Command, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "first":
		return Command{Kind: GotoFirst}, nil
	case "latest", "last":
		return Command{Kind: GotoLatest}, nil
	case "previous", "prev":
		return Command{Kind: GotoPrevious}, nil
	case "next":
		return Command{Kind: GotoNext}, nil
	case "random":
		return Command{Kind: GotoRandom}, nil
	case "suspend":
		return Command{Kind: Suspend}, nil
	case "resume":
		return Command{Kind: Resume}, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return Command{}, fmt.Errorf("unknown command %q", s)
	}
	return Goto(n), nil
}
