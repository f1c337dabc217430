// Package markdown converts todo items to and from the editable text document.
//
// A document is a sequence of blocks separated by Divider. Each block is a
// header line followed by an optional free-form description:
//
//	# [X] Buy milk
//	two litres, semi-skimmed
//
// Ids are not part of the document.
package markdown

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/idilsaglam/todos/internal/model"
)

// Divider separates blocks inside a document.
const Divider = "\n\n<!---->\n\n"

const doneMarker = "X"

var headerRegexp = regexp.MustCompile(`^\s*#\s*\[([^\]]*)\]\s*(.*)`)

// ErrMalformedDocument matches every parse failure.
var ErrMalformedDocument = errors.New("malformed document")

// MalformedHeaderError reports a block whose first line is not a header.
type MalformedHeaderError struct {
	Block int // 1-based
	Line  string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("invalid TODO header in block %d: %q", e.Block, e.Line)
}

func (e *MalformedHeaderError) Is(target error) bool { return target == ErrMalformedDocument }

// Block renders one item.
func Block(it model.Item) string {
	marker := " "
	if it.Done {
		marker = doneMarker
	}
	return fmt.Sprintf("# [%s] %s\n%s", marker, it.Title, model.NormalizeDescription(it.Description))
}

// Serialize renders items as a document. No items means an empty document.
func Serialize(items []model.Item) string {
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		blocks = append(blocks, Block(it))
	}
	return strings.Join(blocks, Divider)
}

// Parse reads a document back into items. A malformed header anywhere fails
// the whole document and no items are returned.
func Parse(doc string) ([]model.Item, error) {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	if strings.TrimSpace(doc) == "" {
		return []model.Item{}, nil
	}

	var items []model.Item
	for i, raw := range strings.Split(doc, Divider) {
		lines := nonBlankLines(raw)
		if len(lines) == 0 {
			continue
		}
		it, err := parseBlock(lines)
		if err != nil {
			var mh *MalformedHeaderError
			if errors.As(err, &mh) {
				mh.Block = i + 1
			}
			return nil, err
		}
		items = append(items, it)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func parseBlock(lines []string) (model.Item, error) {
	m := headerRegexp.FindStringSubmatch(lines[0])
	if m == nil {
		return model.Item{}, &MalformedHeaderError{Line: lines[0]}
	}
	description := strings.Join(lines[1:], "\n")
	return model.New(m[2], description, m[1] == doneMarker), nil
}

func nonBlankLines(block string) []string {
	var out []string
	for _, ln := range strings.Split(block, "\n") {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		out = append(out, ln)
	}
	return out
}
