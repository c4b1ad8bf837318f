package js

import "github.com/ziracms/editor-sub001/lang"

// Class is an ES6 class or a constructor function that gained prototype
// members.
type Class struct {
	Name            string `json:"name"`
	Parent          string `json:"parent,omitempty"`
	FunctionIndexes []int  `json:"functionIndexes,omitempty"`
	VariableIndexes []int  `json:"variableIndexes,omitempty"`
	Comment         string `json:"comment,omitempty"`
	Line            int    `json:"line"`
}

type Function struct {
	Name            string          `json:"name"`
	ClsName         string          `json:"clsName,omitempty"`
	Args            string          `json:"args"`
	IsStatic        bool            `json:"isStatic,omitempty"`
	Visibility      lang.Visibility `json:"visibility,omitempty"`
	MinArgs         int             `json:"minArgs"`
	MaxArgs         int             `json:"maxArgs"`
	ReturnType      string          `json:"returnType,omitempty"`
	VariableIndexes []int           `json:"variableIndexes,omitempty"`
	ConstantIndexes []int           `json:"constantIndexes,omitempty"`
	Comment         string          `json:"comment,omitempty"`
	Line            int             `json:"line"`
}

// Variable is a class property when ClsName is set and FuncName is empty.
type Variable struct {
	Name       string          `json:"name"`
	ClsName    string          `json:"clsName,omitempty"`
	FuncName   string          `json:"funcName,omitempty"`
	IsStatic   bool            `json:"isStatic,omitempty"`
	Visibility lang.Visibility `json:"visibility,omitempty"`
	Type       string          `json:"type,omitempty"`
	Line       int             `json:"line"`
}

type Constant struct {
	Name     string `json:"name"`
	ClsName  string `json:"clsName,omitempty"`
	FuncName string `json:"funcName,omitempty"`
	Value    string `json:"value"`
	Line     int    `json:"line"`
}

type Result struct {
	Classes   []Class        `json:"classes,omitempty"`
	Functions []Function     `json:"functions,omitempty"`
	Variables []Variable     `json:"variables,omitempty"`
	Constants []Constant     `json:"constants,omitempty"`
	Comments  []lang.Comment `json:"comments,omitempty"`
	Errors    []lang.Error   `json:"errors,omitempty"`
}

func (r *Result) FunctionAt(i int) (Function, bool) {
	if i < 0 || i >= len(r.Functions) {
		return Function{}, false
	}
	return r.Functions[i], true
}

func (r *Result) VariableAt(i int) (Variable, bool) {
	if i < 0 || i >= len(r.Variables) {
		return Variable{}, false
	}
	return r.Variables[i], true
}

func (r *Result) ConstantAt(i int) (Constant, bool) {
	if i < 0 || i >= len(r.Constants) {
		return Constant{}, false
	}
	return r.Constants[i], true
}

// FindClass returns the index of the named class, or -1.
func (r *Result) FindClass(name string) int {
	for i := range r.Classes {
		if r.Classes[i].Name == name {
			return i
		}
	}
	return -1
}
