package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"todo-tracker/internal/model"
)

// LabelKey folds a category label for caseless comparison.
func LabelKey(label string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(label)))
}

// CategoryLabels resolves the free-text category label of a todo to one of the
// owner's categories. Labels are soft references and may not resolve.
type CategoryLabels struct {
	byKey map[string]model.Category
}

func NewCategoryLabels(categories []model.Category) CategoryLabels {
	byKey := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		key := LabelKey(c.Name)
		if _, ok := byKey[key]; !ok {
			byKey[key] = c
		}
	}
	return CategoryLabels{byKey: byKey}
}

func (l CategoryLabels) Resolve(label string) (model.Category, bool) {
	c, ok := l.byKey[LabelKey(label)]
	return c, ok
}

// Display returns the name to show for a todo's label: the matching
// category's name when there is one, else the label itself.
func (l CategoryLabels) Display(todo model.Todo) string {
	if todo.Category == nil {
		return ""
	}
	label := strings.TrimSpace(*todo.Category)
	if label == "" {
		return ""
	}
	if c, ok := l.Resolve(label); ok {
		return strings.TrimSpace(c.Name)
	}
	return label
}
