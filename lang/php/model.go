package php

import "github.com/ziracms/editor-sub001/lang"

type ImportKind string

const (
	ImportClass    ImportKind = "class"
	ImportFunction ImportKind = "function"
	ImportConstant ImportKind = "constant"
)

// Namespace names are stored without the leading backslash.
type Namespace struct {
	Name          string `json:"name"`
	Line          int    `json:"line"`
	ImportIndexes []int  `json:"importIndexes,omitempty"`
}

// Import is one alias introduced by a use statement.
type Import struct {
	Name string     `json:"name"`
	Path string     `json:"path"`
	Kind ImportKind `json:"type"`
	Line int        `json:"line"`
}

// Class covers classes, interfaces, traits and enums.
type Class struct {
	Name            string   `json:"name"`
	IsAbstract      bool     `json:"isAbstract,omitempty"`
	IsInterface     bool     `json:"isInterface,omitempty"`
	IsTrait         bool     `json:"isTrait,omitempty"`
	IsEnum          bool     `json:"isEnum,omitempty"`
	Parent          string   `json:"parent,omitempty"`
	Interfaces      []string `json:"interfaces,omitempty"`
	Traits          []string `json:"traits,omitempty"`
	FunctionIndexes []int    `json:"functionIndexes,omitempty"`
	VariableIndexes []int    `json:"variableIndexes,omitempty"`
	ConstantIndexes []int    `json:"constantIndexes,omitempty"`
	Comment         string   `json:"comment,omitempty"`
	Line            int      `json:"line"`
}

type Function struct {
	Name            string          `json:"name"`
	ClsName         string          `json:"clsName,omitempty"`
	Args            string          `json:"args"`
	IsStatic        bool            `json:"isStatic,omitempty"`
	IsAbstract      bool            `json:"isAbstract,omitempty"`
	Visibility      lang.Visibility `json:"visibility,omitempty"`
	MinArgs         int             `json:"minArgs"`
	MaxArgs         int             `json:"maxArgs"`
	ReturnType      string          `json:"returnType,omitempty"`
	VariableIndexes []int           `json:"variableIndexes,omitempty"`
	Comment         string          `json:"comment,omitempty"`
	Line            int             `json:"line"`
}

// Variable is a property when FuncName is empty and ClsName is set, a
// global when both are empty.
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
	Name    string `json:"name"`
	ClsName string `json:"clsName,omitempty"`
	Value   string `json:"value"`
	Line    int    `json:"line"`
}

// Result is everything one Parse call found. Index fields refer to the
// sibling slices of the same Result.
type Result struct {
	Namespaces []Namespace    `json:"namespaces,omitempty"`
	Imports    []Import       `json:"imports,omitempty"`
	Classes    []Class        `json:"classes,omitempty"`
	Functions  []Function     `json:"functions,omitempty"`
	Variables  []Variable     `json:"variables,omitempty"`
	Constants  []Constant     `json:"constants,omitempty"`
	Comments   []lang.Comment `json:"comments,omitempty"`
	Errors     []lang.Error   `json:"errors,omitempty"`
}

// FunctionAt returns the function at i, or false when i is out of range.
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

func (r *Result) ImportAt(i int) (Import, bool) {
	if i < 0 || i >= len(r.Imports) {
		return Import{}, false
	}
	return r.Imports[i], true
}

// FindClass returns the index of the class with the given absolute name.
func (r *Result) FindClass(name string) int {
	for i := range r.Classes {
		if r.Classes[i].Name == name {
			return i
		}
	}
	return -1
}
