package module

import (
	"fmt"
	"testing"

	"github.com/nmoraes/loomscript/ast"
)

type memSource map[string]string

func (m memSource) Read(path string) (string, error) {
	text, ok := m[path]
	if !ok {
		return "", fmt.Errorf("memSource: no such path %q", path)
	}
	return text, nil
}

func TestLoadExportsVariable(t *testing.T) {
	src := memSource{
		"greeting": `export var message = 'hi';`,
	}
	loader := NewLoader(src, nil)
	m, err := loader.Load("greeting", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	v, ok := m.Exported["message"]
	if !ok {
		t.Fatalf("message not exported")
	}
	if v != "hi" {
		t.Fatalf("message = %v, want hi", v)
	}
}

func TestLoadMemoizesByPath(t *testing.T) {
	src := memSource{
		"once": `var x = 1;`,
	}
	loader := NewLoader(src, nil)
	m1, err := loader.Load("once", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m2, err := loader.Load("once", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m1 != m2 {
		t.Fatalf("Load did not return the same memoized *Module")
	}
}

func TestImportReexportsTransitively(t *testing.T) {
	src := memSource{
		"base": `export var answer = 42;`,
		"mid":  `export import 'base';`,
		"top":  `import 'mid'; var derived = answer + 1;`,
	}
	loader := NewLoader(src, nil)
	m, err := loader.Load("top", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	v, err := m.Context.Access("derived")
	if err != nil {
		t.Fatalf("accessing derived: %v", err)
	}
	if v != 43 {
		t.Fatalf("derived = %v, want 43", v)
	}

	mid, err := loader.Load("mid", nil)
	if err != nil {
		t.Fatalf("Load mid: %v", err)
	}
	if _, ok := mid.Exported["answer"]; !ok {
		t.Fatalf("mid did not re-export answer")
	}
}

func TestUncaughtLoopControlAtTopLevel(t *testing.T) {
	src := memSource{
		"bad": `break;`,
	}
	loader := NewLoader(src, nil)
	_, err := loader.Load("bad", nil)
	if err == nil {
		t.Fatalf("Load: expected an error, got nil")
	}
	if _, ok := err.(*UncaughtLoopControl); !ok {
		t.Fatalf("Load: got %T, want *UncaughtLoopControl", err)
	}
}

func TestBuiltinsAreDeclaredAndExported(t *testing.T) {
	src := memSource{
		"uses_builtin": `var doubled = two * 2;`,
	}
	loader := NewLoader(src, nil)
	m, err := loader.Load("uses_builtin", map[string]interface{}{"two": 2})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	v, err := m.Context.Access("doubled")
	if err != nil {
		t.Fatalf("accessing doubled: %v", err)
	}
	if v != 4 {
		t.Fatalf("doubled = %v, want 4", v)
	}
	if m.Exported["two"] != 2 {
		t.Fatalf("builtin two not carried into Exported")
	}
}

func TestPrintBuiltinSideEffect(t *testing.T) {
	src := memSource{
		"squares": `var x; x = 2; print(x*x);`,
	}
	var printed []interface{}
	builtins := map[string]interface{}{
		"print": ast.Callable(func(args []interface{}) (interface{}, error) {
			printed = append(printed, args...)
			return nil, nil
		}),
	}
	loader := NewLoader(src, nil)
	if _, err := loader.Load("squares", builtins); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(printed) != 1 || printed[0] != 4 {
		t.Fatalf("print saw %v, want [4]", printed)
	}
}

func TestNoSourceConfiguredFailsToRead(t *testing.T) {
	loader := NewLoader(nil, nil)
	_, err := loader.Load("whatever", nil)
	if err == nil {
		t.Fatalf("Load: expected an error with no Source configured")
	}
}
