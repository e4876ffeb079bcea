package format

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrUnbalanced = errors.New("unbalanced braces")

// Renderer lays out flattened tokens as lines. Semicolons and braces
// end a line; braces move the indent level.
type Renderer struct {
	indentStr string
}

func NewRenderer() *Renderer {
	return &Renderer{indentStr: "    "}
}

// Render is NewRenderer().Render.
func Render(e Expression) (string, error) {
	return NewRenderer().Render(e)
}

func (r *Renderer) Render(e Expression) (string, error) {
	var (
		lines      []string
		current    []string
		indent     int
		afterClose bool
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		lines = append(lines, strings.Repeat(r.indentStr, indent)+strings.Join(current, " "))
		current = nil
	}

	for _, tok := range e.Tokens() {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		switch tok {
		case ";", ",":
			switch {
			case len(current) > 0:
				current[len(current)-1] += tok
			case afterClose:
				lines[len(lines)-1] += tok
			default:
				current = append(current, tok)
			}
			if tok == ";" {
				flush()
			}
			afterClose = false
		case "{":
			current = append(current, tok)
			flush()
			indent++
			afterClose = false
		case "}":
			flush()
			indent--
			if indent < 0 {
				return "", errors.Wrap(ErrUnbalanced, "closing brace without opening brace")
			}
			current = append(current, tok)
			flush()
			afterClose = true
		default:
			current = append(current, tok)
			afterClose = false
		}
	}
	flush()

	if indent != 0 {
		return "", errors.Wrapf(ErrUnbalanced, "%d blocks left open", indent)
	}
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// RenderTo renders e and writes the text to w.
func (r *Renderer) RenderTo(w io.Writer, e Expression) error {
	text, err := r.Render(e)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}
