package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/hypereval/lang"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It writes the variable tier to
// a temporary YAML file, opens it in the user's editor, and replaces the
// tier with the edited mapping. When the edited file does not decode, the
// user is asked whether to edit it again.
type editCommand struct {
	ctx     context.Context
	session *session
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer

	count     int  // number of variables after a successful edit
	cancelled bool // the user emptied the file
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

func (c *editCommand) Run() error {
	vars := c.session.rt.Variables()

	content := []byte("{}\n")
	if vars.Len() > 0 {
		var err error

		content, err = yaml.MarshalContext(c.ctx, lang.Export(vars.Snapshot()), yaml.Indent(2))
		if err != nil {
			return err
		}
	}

	f, err := os.CreateTemp("", "hypereval-variables-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return err
		}

		if err := c.runEditor(path); err != nil {
			return err
		}

		content, err = os.ReadFile(path)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(content)) == "" {
			c.cancelled = true

			return nil
		}

		edited, decodeErr := decodeVariables(c.ctx, content)

		c.session.logger.TraceContext(c.ctx, "variables edited",
			slog.Int("length", len(content)),
			slog.Bool("valid", decodeErr == nil),
		)

		if decodeErr == nil {
			vars.Clear()

			for name, v := range edited {
				vars.Set(name, v)
			}

			c.count = len(edited)

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", decodeErr)
		fmt.Fprint(c.stdout, "Edit again? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

func (c *editCommand) runEditor(path string) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(c.ctx, args[0], args[1:]...) //nolint:gosec
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	return cmd.Run()
}

// decodeVariables decodes a YAML mapping of variable names to values.
func decodeVariables(ctx context.Context, data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.UnmarshalContext(ctx, data, &m); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(m))
	for name, v := range m {
		out[name] = lang.Normalize(v)
	}

	return out, nil
}
