package format

import (
	"strings"
)

type Kind int

const (
	KindLiteral Kind = iota
	KindSequence
	KindStatement
	KindBlock
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindSequence:
		return "sequence"
	case KindStatement:
		return "statement"
	case KindBlock:
		return "block"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Expression is a node of generated source. Literals carry Text; a
// List carries its separator in Text. An inline Sequence is rendered
// as a single token.
type Expression struct {
	Kind     Kind
	Text     string
	Children []Expression
	inline   bool
}

var (
	Space   = Literal(" ")
	Newline = Literal("\n")
	Empty   = Literal("")
)

func Literal(text string) Expression {
	return Expression{Kind: KindLiteral, Text: text}
}

// Words is a Sequence of one Literal per non-empty word.
func Words(words ...string) Expression {
	out := Expression{Kind: KindSequence}
	for _, w := range words {
		if w != "" {
			out.Children = append(out.Children, Literal(w))
		}
	}
	return out
}

func Sequence(children ...Expression) Expression {
	return Expression{Kind: KindSequence, Children: children}
}

// Inline is a Sequence whose children are concatenated without
// separators and emitted as one token.
func Inline(children ...Expression) Expression {
	return Expression{Kind: KindSequence, Children: children, inline: true}
}

// Statement terminates its children with a semicolon.
func Statement(children ...Expression) Expression {
	return Expression{Kind: KindStatement, Children: children}
}

func Block(statements ...Expression) Expression {
	return Expression{Kind: KindBlock, Children: statements}
}

func List(separator string, items ...Expression) Expression {
	return Expression{Kind: KindList, Text: separator, Children: items}
}

func (e Expression) IsInline() bool {
	return e.inline
}

// IsBlank reports whether the expression produces no visible text.
func (e Expression) IsBlank() bool {
	switch e.Kind {
	case KindLiteral:
		return strings.TrimSpace(e.Text) == ""
	case KindSequence:
		for _, c := range e.Children {
			if !c.IsBlank() {
				return false
			}
		}
		return true
	}
	return false
}

// Equal compares two expressions structurally.
func (e Expression) Equal(o Expression) bool {
	if e.Kind != o.Kind || e.Text != o.Text || e.inline != o.inline || len(e.Children) != len(o.Children) {
		return false
	}
	for i := range e.Children {
		if !e.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// String is the single-line form of the expression.
func (e Expression) String() string {
	var sb strings.Builder
	e.writeInline(&sb)
	return sb.String()
}

func (e Expression) writeInline(sb *strings.Builder) {
	switch e.Kind {
	case KindLiteral:
		sb.WriteString(e.Text)
	case KindSequence:
		if e.inline {
			for _, c := range e.Children {
				c.writeInline(sb)
			}
			return
		}
		writeSpaced(sb, e.Children)
	case KindStatement:
		writeSpaced(sb, e.Children)
		sb.WriteString(";")
	case KindBlock:
		sb.WriteString("{")
		for _, c := range e.Children {
			if c.IsBlank() {
				continue
			}
			sb.WriteString(" ")
			c.writeInline(sb)
		}
		sb.WriteString(" }")
	case KindList:
		for i, c := range e.Children {
			if i > 0 {
				sb.WriteString(e.Text)
			}
			c.writeInline(sb)
		}
	}
}

func writeSpaced(sb *strings.Builder, children []Expression) {
	first := true
	for _, c := range children {
		if c.IsBlank() {
			continue
		}
		if !first {
			sb.WriteString(" ")
		}
		c.writeInline(sb)
		first = false
	}
}

// Tokens flattens the expression into the atoms the Renderer lays out.
func (e Expression) Tokens() []string {
	return e.appendTokens(nil)
}

func (e Expression) appendTokens(out []string) []string {
	switch e.Kind {
	case KindLiteral:
		return append(out, e.Text)
	case KindSequence:
		if e.inline {
			return append(out, e.String())
		}
		for _, c := range e.Children {
			out = c.appendTokens(out)
		}
	case KindStatement:
		for _, c := range e.Children {
			out = c.appendTokens(out)
		}
		out = append(out, ";")
	case KindBlock:
		out = append(out, "{")
		for _, c := range e.Children {
			out = c.appendTokens(out)
		}
		out = append(out, "}")
	case KindList:
		sep := strings.TrimSpace(e.Text)
		for i, c := range e.Children {
			if i > 0 && sep != "" {
				out = append(out, sep)
			}
			out = c.appendTokens(out)
		}
	}
	return out
}
