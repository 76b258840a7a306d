/* Copyright (C) 2025, 2026 Studylog contributors
 *
 * This file is part of Studylog.
 *
 * Studylog is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * Studylog is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with Studylog.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package blocks converts between markdown text and the block list that the
// remote document store keeps as the body of a note.
package blocks

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Block types
const (
	TypeParagraph = "paragraph"
	TypeHeading1  = "heading_1"
	TypeHeading2  = "heading_2"
	TypeHeading3  = "heading_3"
	TypeBulleted  = "bulleted_list_item"
	TypeNumbered  = "numbered_list_item"
	TypeToDo      = "to_do"
	TypeCode      = "code"
	TypeQuote     = "quote"
	TypeDivider   = "divider"
)

const (
	maxHeadingLevel  = 3
	todoUnchecked    = "[ ] "
	todoChecked      = "[x] "
	todoCheckedUpper = "[X] "
)

// Block is one element of a document body. Inline markup is kept verbatim
// in Text.
type Block struct {
	Type     string  `json:"type"`
	Text     string  `json:"text,omitempty"`
	Checked  bool    `json:"checked,omitempty"`
	Language string  `json:"language,omitempty"`
	Children []Block `json:"children,omitempty"`
}

var md = goldmark.New()

// FromMarkdown parses markdown into blocks
func FromMarkdown(src string) []Block {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	ret := []Block{}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		ret = append(ret, convert(n, source)...)
	}

	return ret
}

func linesText(n ast.Node, source []byte) string {
	var sb strings.Builder

	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}

	return strings.TrimRight(sb.String(), "\n ")
}

func convert(n ast.Node, source []byte) []Block {
	switch node := n.(type) {
	case *ast.Heading:
		level := node.Level
		if level > maxHeadingLevel {
			level = maxHeadingLevel
		}
		return []Block{{Type: fmt.Sprintf("heading_%d", level), Text: linesText(node, source)}}
	case *ast.Paragraph, *ast.TextBlock, *ast.HTMLBlock:
		return []Block{{Type: TypeParagraph, Text: linesText(node, source)}}
	case *ast.FencedCodeBlock:
		return []Block{{Type: TypeCode, Text: linesText(node, source), Language: string(node.Language(source))}}
	case *ast.CodeBlock:
		return []Block{{Type: TypeCode, Text: linesText(node, source)}}
	case *ast.ThematicBreak:
		return []Block{{Type: TypeDivider}}
	case *ast.Blockquote:
		var parts []string
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			parts = append(parts, linesText(c, source))
		}
		return []Block{{Type: TypeQuote, Text: strings.Join(parts, "\n")}}
	case *ast.List:
		var ret []Block
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			ret = append(ret, listItem(item, node.IsOrdered(), source))
		}
		return ret
	}

	return nil
}

func listItem(item ast.Node, ordered bool, source []byte) Block {
	b := Block{Type: TypeBulleted}
	if ordered {
		b.Type = TypeNumbered
	}

	var texts []string
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.List); ok {
			b.Children = append(b.Children, convert(c, source)...)
			continue
		}
		texts = append(texts, linesText(c, source))
	}
	b.Text = strings.Join(texts, "\n")

	if !ordered {
		switch {
		case strings.HasPrefix(b.Text, todoUnchecked):
			b.Type = TypeToDo
			b.Text = strings.TrimPrefix(b.Text, todoUnchecked)
		case strings.HasPrefix(b.Text, todoChecked), strings.HasPrefix(b.Text, todoCheckedUpper):
			b.Type = TypeToDo
			b.Checked = true
			b.Text = b.Text[len(todoChecked):]
		}
	}

	return b
}

// sameList reports whether two consecutive blocks render into one markdown list
func sameList(a, b string) bool {
	bullet := func(t string) bool { return t == TypeBulleted || t == TypeToDo }

	return (bullet(a) && bullet(b)) || (a == TypeNumbered && b == TypeNumbered)
}

// ToMarkdown renders blocks as markdown
func ToMarkdown(blocks []Block) string {
	return render(blocks, "")
}

func render(blocks []Block, indent string) string {
	var sb strings.Builder

	number := 0
	for i, b := range blocks {
		if i > 0 {
			if sameList(blocks[i-1].Type, b.Type) {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}

		if b.Type == TypeNumbered {
			number++
		} else {
			number = 0
		}

		sb.WriteString(renderBlock(b, indent, number))
	}

	return sb.String()
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}

	return strings.Join(lines, "\n")
}

func renderBlock(b Block, indent string, number int) string {
	switch b.Type {
	case TypeHeading1:
		return indent + "# " + b.Text
	case TypeHeading2:
		return indent + "## " + b.Text
	case TypeHeading3:
		return indent + "### " + b.Text
	case TypeBulleted, TypeToDo, TypeNumbered:
		marker := "- "
		switch {
		case b.Type == TypeNumbered:
			marker = fmt.Sprintf("%d. ", number)
		case b.Type == TypeToDo && b.Checked:
			marker = "- " + todoChecked
		case b.Type == TypeToDo:
			marker = "- " + todoUnchecked
		}

		childIndent := indent + strings.Repeat(" ", len(strings.SplitN(marker, "[", 2)[0]))
		ret := prefixLines(b.Text, indent+marker, childIndent)
		if len(b.Children) > 0 {
			ret += "\n" + render(b.Children, childIndent)
		}
		return ret
	case TypeCode:
		return indent + "```" + b.Language + "\n" + prefixLines(b.Text, indent, indent) + "\n" + indent + "```"
	case TypeQuote:
		return prefixLines(b.Text, indent+"> ", indent+"> ")
	case TypeDivider:
		return indent + "---"
	}

	return prefixLines(b.Text, indent, indent)
}
