package repl

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ardnew/hypereval/lang"
)

func helpMessage() string {
	return `
Commands (press Esc to toggle command mode, or prefix a line with ':'):

  help                 Print this help
  list [scope|host|builtins]
                       List variables and globals, host globals, or builtins
  set NAME VALUE       Bind NAME in the variable tier (VALUE is read as YAML)
  unset NAME           Remove NAME from the tier it resolves in
  edit                 Edit the variable tier as YAML in $EDITOR
  clear                Clear the screen
  quit                 Exit

Input:
  A line containing ${...} markers is interpolated as a template
  A line starting with '{' is evaluated as a JSON syntax tree
  Any other line is evaluated as a single template marker

Keys:
  Tab / Shift-Tab      Cycle completion candidates
  Space                Accept the current candidate
  Up / Down            History (switches mode to match the entry)
  Shift-Up / Shift-Down
                       History of the current mode only
  Alt-Up / Alt-Down    Command history (restores the input at the end)
  Ctrl-C on an empty line, or Ctrl-D, exits
`
}

// action is a side effect requested by a command.
type action int

const (
	actionNone action = iota
	actionQuit
	actionClear
	actionEdit
)

// reply is the outcome of a command.
type reply struct {
	text   string
	action action
}

// command executes one command line, without any leading ':'.
func (s *session) command(ctx context.Context, line string) (reply, error) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ":"))

	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "q", "quit", "exit":
		return reply{action: actionQuit}, nil

	case "h", "help", "?":
		return reply{text: helpMessage()}, nil

	case "c", "clear":
		return reply{action: actionClear}, nil

	case "e", "edit":
		return reply{action: actionEdit}, nil

	case "l", "list", "ls":
		text, err := s.list(rest)

		return reply{text: text}, err

	case "set":
		name, text, _ := strings.Cut(rest, " ")

		v, err := s.set(ctx, name, strings.TrimSpace(text))
		if err != nil {
			return reply{}, err
		}

		return reply{text: fmt.Sprintf("%s = %s", name, preview(v))}, nil

	case "unset":
		tier, err := s.unset(ctx, rest)
		if err != nil {
			return reply{}, err
		}

		switch tier {
		case lang.TierNone:
			return reply{text: rest + " is not defined"}, nil
		case lang.TierHost:
			return reply{text: rest + " is a host global and cannot be removed"}, nil
		}

		return reply{text: fmt.Sprintf("removed %s %s", tier, rest)}, nil
	}

	return reply{}, fmt.Errorf("%w: %s (try 'help')", ErrUnknownVerb, verb)
}

// list renders the target of a list command.
func (s *session) list(target string) (string, error) {
	var b strings.Builder

	switch target {
	case "", "scope":
		writeBindings(&b, s.bindings(false))

		for _, name := range slotNames {
			if v, _ := s.ec.Slot(name); v != nil {
				fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(v)+"  (slot)"))
			}
		}

	case "host":
		writeBindings(&b, s.bindings(true))

	case "builtins":
		groups := s.builtins()

		categories := make([]string, 0, len(groups))
		for category := range groups {
			categories = append(categories, category)
		}

		slices.Sort(categories)

		for _, category := range categories {
			fmt.Fprintf(&b, "%s:\n", category)

			for _, name := range groups[category] {
				fmt.Fprintf(&b, "  %s\n", name)
			}
		}

	default:
		return "", fmt.Errorf("%w: %s (expected one of %s)",
			ErrUnknownTarget, target, strings.Join(listTargets, ", "))
	}

	if b.Len() == 0 {
		return hintStyle.Render("(nothing defined)"), nil
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func writeBindings(b *strings.Builder, bindings []binding) {
	for _, e := range bindings {
		fmt.Fprintf(b, "  %s %s\n", e.name,
			hintStyle.Render(preview(e.value)+"  ("+e.tier.String()+")"))
	}
}
