package css

import "github.com/ziracms/editor-sub001/lang"

type NameKind string

const (
	NameID    NameKind = "id"
	NameClass NameKind = "class"
	NameTag   NameKind = "tag"
)

// Name is an id, class or element name used in a selector. Name keeps the
// leading '#' or '.'; each name is recorded once, at its first use.
type Name struct {
	Name string   `json:"name"`
	Kind NameKind `json:"kind"`
	Line int      `json:"line"`
}

// Selector is the whitespace-collapsed prelude of a style rule.
type Selector struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

type Media struct {
	Name            string `json:"name"`
	SelectorIndexes []int  `json:"selectorIndexes,omitempty"`
	Line            int    `json:"line"`
}

type Keyframe struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// Font is a @font-face rule named by its font-family.
type Font struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// Variable is a custom property (--name) or an SCSS variable ($name).
type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Line  int    `json:"line"`
}

type Result struct {
	Names     []Name         `json:"names,omitempty"`
	Selectors []Selector     `json:"selectors,omitempty"`
	Medias    []Media        `json:"medias,omitempty"`
	Keyframes []Keyframe     `json:"keyframes,omitempty"`
	Fonts     []Font         `json:"fonts,omitempty"`
	Variables []Variable     `json:"variables,omitempty"`
	Comments  []lang.Comment `json:"comments,omitempty"`
	Errors    []lang.Error   `json:"errors,omitempty"`
}

func (r *Result) SelectorAt(i int) (Selector, bool) {
	if i < 0 || i >= len(r.Selectors) {
		return Selector{}, false
	}
	return r.Selectors[i], true
}

// FindName returns the index of the recorded name, '#' or '.' included, or -1.
func (r *Result) FindName(name string) int {
	for i := range r.Names {
		if r.Names[i].Name == name {
			return i
		}
	}
	return -1
}
