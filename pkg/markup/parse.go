// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wavetermdev/htmltoken"
)

// can tokenize markup into a Node tree (ElementTree-style text/tail)

func appendText(stack []*Node, text string) {
	if len(stack) == 0 || text == "" {
		return
	}
	cur := stack[len(stack)-1]
	if len(cur.Children) == 0 {
		cur.Text += text
		return
	}
	last := cur.Children[len(cur.Children)-1]
	last.Tail += text
}

func appendChildToStack(stack []*Node, child *Node) {
	if child == nil || len(stack) == 0 {
		return
	}
	parent := stack[len(stack)-1]
	parent.Children = append(parent.Children, child)
}

func curNodeTag(stack []*Node) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1].Tag
}

func tokenToNode(token htmltoken.Token) (*Node, error) {
	node := &Node{Tag: token.Data}
	for _, attr := range token.Attr {
		if attr.Key == "" {
			continue
		}
		if attr.IsJson {
			var val any
			if err := json.Unmarshal([]byte(attr.Val), &val); err != nil {
				return nil, fmt.Errorf("attribute %q on <%s>: invalid json: %w", attr.Key, token.Data, err)
			}
			node.Set(attr.Key, val)
			continue
		}
		node.Set(attr.Key, attr.Val)
	}
	return node, nil
}

// Parse reads a single-rooted markup document. Attribute values written as
// {json} are decoded; all others stay strings.
func Parse(r io.Reader) (*Node, error) {
	iter := htmltoken.NewTokenizer(r)
	// sentinel holding the document's top-level nodes
	doc := &Node{}
	stack := []*Node{doc}
	for {
		tokenType := iter.Next()
		token := iter.Token()
		switch tokenType {
		case htmltoken.StartTagToken:
			node, err := tokenToNode(token)
			if err != nil {
				return nil, err
			}
			appendChildToStack(stack, node)
			stack = append(stack, node)
		case htmltoken.EndTagToken:
			if len(stack) <= 1 {
				return nil, fmt.Errorf("end tag %q without start tag", token.Data)
			}
			if curNodeTag(stack) != token.Data {
				return nil, fmt.Errorf("end tag %q does not match start tag %q", token.Data, curNodeTag(stack))
			}
			stack = stack[:len(stack)-1]
		case htmltoken.SelfClosingTagToken:
			node, err := tokenToNode(token)
			if err != nil {
				return nil, err
			}
			appendChildToStack(stack, node)
		case htmltoken.TextToken:
			if len(stack) == 1 {
				if strings.TrimSpace(token.Data) != "" {
					return nil, errors.New("text outside of root element")
				}
				continue
			}
			appendText(stack, token.Data)
		case htmltoken.CommentToken:
			continue
		case htmltoken.DoctypeToken:
			return nil, errors.New("doctype not supported")
		case htmltoken.ErrorToken:
			if iter.Err() != io.EOF {
				return nil, iter.Err()
			}
			if len(stack) > 1 {
				return nil, fmt.Errorf("unclosed tag %q", curNodeTag(stack))
			}
			switch len(doc.Children) {
			case 0:
				return nil, errors.New("empty document")
			case 1:
				root := doc.Children[0]
				root.Tail = ""
				return root, nil
			default:
				return nil, fmt.Errorf("document has %d root elements", len(doc.Children))
			}
		}
	}
}

func ParseString(src string) (*Node, error) {
	return Parse(strings.NewReader(src))
}

func ParseFile(fileName string) (*Node, error) {
	fd, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	node, err := Parse(fd)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	return node, nil
}

// MustParse panics on error; for templates compiled into the binary.
func MustParse(src string) *Node {
	node, err := ParseString(src)
	if err != nil {
		panic(err)
	}
	return node
}
