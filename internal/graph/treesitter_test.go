package graph

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// findEntity returns the first entity whose ID matches, or nil.
func findEntity(entities []Entity, id string) *Entity {
	for i := range entities {
		if entities[i].ID == id {
			return &entities[i]
		}
	}
	return nil
}

// findRef returns the first reference matching the given origin and name.
func findRef(refs []Reference, fromID, name string) *Reference {
	for i := range refs {
		if refs[i].FromID == fromID && refs[i].Name == name {
			return &refs[i]
		}
	}
	return nil
}

// importSpecs flattens import refs to their raw specifiers.
func importSpecs(imports []ImportRef) []string {
	var out []string
	for _, imp := range imports {
		out = append(out, imp.Spec)
	}
	return out
}

// readFixture reads a test fixture file relative to the project root.
// Tests run from internal/graph/, so the relative path is ../../testdata/...
func readFixture(t *testing.T, relPath string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../" + relPath)
	require.NoError(t, err, "reading fixture %s", relPath)
	return data
}

// assertLineRange checks that StartLine and EndLine are populated and valid.
func assertLineRange(t *testing.T, ent *Entity) {
	t.Helper()
	assert.Greater(t, ent.StartLine, 0, "StartLine should be > 0 for %s", ent.ID)
	assert.GreaterOrEqual(t, ent.EndLine, ent.StartLine, "StartLine <= EndLine for %s", ent.ID)
}

// ---------------------------------------------------------------------------
// TestTreeSitterParser_SupportedLanguages
// ---------------------------------------------------------------------------

func TestTreeSitterParser_SupportedLanguages(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()

	langs := p.SupportedLanguages()
	assert.Len(t, langs, 4, "should support exactly 4 languages")

	langSet := make(map[Language]bool, len(langs))
	for _, l := range langs {
		langSet[l] = true
	}
	assert.True(t, langSet[LangGo], "should support Go")
	assert.True(t, langSet[LangTypeScript], "should support TypeScript")
	assert.True(t, langSet[LangPython], "should support Python")
	assert.True(t, langSet[LangRust], "should support Rust")
}

// ---------------------------------------------------------------------------
// TestTreeSitterParser_Go
// ---------------------------------------------------------------------------

func TestTreeSitterParser_Go(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()
	ctx := context.Background()

	t.Run("model.go", func(t *testing.T) {
		src := readFixture(t, "testdata/fixtures/go_project/model.go")
		res, err := p.Parse(ctx, "model.go", src, LangGo)
		require.NoError(t, err)
		require.NotNil(t, res)

		assert.Equal(t, "model.go", res.File.Path)
		assert.Equal(t, LangGo, res.File.Language)
		assert.Greater(t, res.File.LOC, 0)

		user := findEntity(res.Entities, "model.go::User")
		require.NotNil(t, user, "User entity should exist")
		assert.Equal(t, EntityKindClass, user.Kind)
		assertLineRange(t, user)

		repo := findEntity(res.Entities, "model.go::Repository")
		require.NotNil(t, repo, "Repository interface should map to a class entity")
		assert.Equal(t, EntityKindClass, repo.Kind)

		newUser := findEntity(res.Entities, "model.go::newUser")
		require.NotNil(t, newUser)
		assert.Equal(t, EntityKindFunction, newUser.Kind)
		assert.Contains(t, newUser.Signature, "name, email string")
	})

	t.Run("service.go", func(t *testing.T) {
		src := readFixture(t, "testdata/fixtures/go_project/service.go")
		res, err := p.Parse(ctx, "service.go", src, LangGo)
		require.NoError(t, err)

		svc := findEntity(res.Entities, "service.go::UserService")
		require.NotNil(t, svc)
		assert.Equal(t, EntityKindClass, svc.Kind)

		getUser := findEntity(res.Entities, "service.go::UserService.GetUser")
		require.NotNil(t, getUser, "receiver methods should be qualified by type")
		assert.Equal(t, EntityKindMethod, getUser.Kind)
		assert.Equal(t, "service.go::UserService", getUser.ParentClass)

		assert.Contains(t, importSpecs(res.Imports), "fmt")

		// CreateUser calls the package-level constructor from model.go.
		ref := findRef(res.Refs, "service.go::UserService.CreateUser", "newUser")
		require.NotNil(t, ref, "CreateUser should record a call mention of newUser")
		assert.Equal(t, RefKindCall, ref.Kind)

		// Selector calls keep the final selector name.
		assert.NotNil(t, findRef(res.Refs, "service.go::UserService.GetUser", "FindByID"))
	})
}

// ---------------------------------------------------------------------------
// TestTreeSitterParser_Python
// ---------------------------------------------------------------------------

const pySample = `import os
from .sibling import helper

def top():
    value = helper()
    return value

def outer():
    def inner():
        pass
    inner()

class Base:
    pass

class Child(Base):
    def greet(self, name):
        return format_name(name)

top()
`

func TestTreeSitterParser_Python(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()

	res, err := p.Parse(context.Background(), "app.py", []byte(pySample), LangPython)
	require.NoError(t, err)

	top := findEntity(res.Entities, "app.py::top")
	require.NotNil(t, top)
	assert.Equal(t, EntityKindFunction, top.Kind)
	assert.Equal(t, "()", top.Signature)

	// A def nested in a function body is a plain function, not a method.
	inner := findEntity(res.Entities, "app.py::inner")
	require.NotNil(t, inner)
	assert.Equal(t, EntityKindFunction, inner.Kind)
	assert.Empty(t, inner.ParentClass)

	base := findEntity(res.Entities, "app.py::Base")
	require.NotNil(t, base)
	assert.Equal(t, EntityKindClass, base.Kind)

	greet := findEntity(res.Entities, "app.py::Child.greet")
	require.NotNil(t, greet)
	assert.Equal(t, EntityKindMethod, greet.Kind)
	assert.Equal(t, "app.py::Child", greet.ParentClass)
	assert.Equal(t, "(self, name)", greet.Signature)

	assert.ElementsMatch(t, []string{"os", ".sibling"}, importSpecs(res.Imports))

	assert.NotNil(t, findRef(res.Refs, "app.py::top", "helper"))
	assert.NotNil(t, findRef(res.Refs, "app.py::outer", "inner"))
	assert.NotNil(t, findRef(res.Refs, "app.py::Child.greet", "format_name"))

	inherit := findRef(res.Refs, "app.py::Child", "Base")
	require.NotNil(t, inherit, "superclass should be recorded as an inherit mention")
	assert.Equal(t, RefKindInherit, inherit.Kind)

	// The module-level call of top has no enclosing entity and is skipped.
	for _, ref := range res.Refs {
		assert.NotEmpty(t, ref.FromID)
	}
	assert.Nil(t, findRef(res.Refs, "app.py::top", "top"))
}

// ---------------------------------------------------------------------------
// TestTreeSitterParser_TypeScript
// ---------------------------------------------------------------------------

const tsSample = `import { helper } from "./util";

export function main(): void {
  helper();
}

const shortcut = (x: number) => helper(x);

interface Greeter {
  greet(): string;
}

class Base {}

class Service extends Base implements Greeter {
  greet(): string {
    return this.label();
  }

  label(): string {
    return "service";
  }
}
`

func TestTreeSitterParser_TypeScript(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()

	res, err := p.Parse(context.Background(), "service.ts", []byte(tsSample), LangTypeScript)
	require.NoError(t, err)

	main := findEntity(res.Entities, "service.ts::main")
	require.NotNil(t, main)
	assert.Equal(t, EntityKindFunction, main.Kind)

	shortcut := findEntity(res.Entities, "service.ts::shortcut")
	require.NotNil(t, shortcut, "arrow function consts should declare entities")
	assert.Equal(t, EntityKindFunction, shortcut.Kind)

	greeter := findEntity(res.Entities, "service.ts::Greeter")
	require.NotNil(t, greeter, "interfaces should map to class entities")
	assert.Equal(t, EntityKindClass, greeter.Kind)

	greet := findEntity(res.Entities, "service.ts::Service.greet")
	require.NotNil(t, greet)
	assert.Equal(t, EntityKindMethod, greet.Kind)
	assert.Equal(t, "service.ts::Service", greet.ParentClass)

	assert.Equal(t, []string{"./util"}, importSpecs(res.Imports))

	assert.NotNil(t, findRef(res.Refs, "service.ts::main", "helper"))
	assert.NotNil(t, findRef(res.Refs, "service.ts::shortcut", "helper"),
		"expression-bodied arrows should record calls")
	assert.NotNil(t, findRef(res.Refs, "service.ts::Service.greet", "label"),
		"member calls keep the final property name")

	extends := findRef(res.Refs, "service.ts::Service", "Base")
	require.NotNil(t, extends)
	assert.Equal(t, RefKindInherit, extends.Kind)

	implements := findRef(res.Refs, "service.ts::Service", "Greeter")
	require.NotNil(t, implements, "implements clauses should also produce inherit mentions")
	assert.Equal(t, RefKindInherit, implements.Kind)
}

// ---------------------------------------------------------------------------
// TestTreeSitterParser_Rust
// ---------------------------------------------------------------------------

const rsSample = `use crate::model::Widget;

pub struct Widget {
    size: u32,
}

pub trait Render {
    fn draw(&self);
}

impl Render for Widget {
    fn draw(&self) {
        helper();
    }
}

impl Widget {
    fn grow(&mut self) -> u32 {
        self.size + expand(self.size)
    }
}

fn helper() {}

fn expand(n: u32) -> u32 {
    compute::twice(n)
}
`

func TestTreeSitterParser_Rust(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()

	res, err := p.Parse(context.Background(), "lib.rs", []byte(rsSample), LangRust)
	require.NoError(t, err)

	widget := findEntity(res.Entities, "lib.rs::Widget")
	require.NotNil(t, widget)
	assert.Equal(t, EntityKindClass, widget.Kind)

	render := findEntity(res.Entities, "lib.rs::Render")
	require.NotNil(t, render, "traits should map to class entities")
	assert.Equal(t, EntityKindClass, render.Kind)

	draw := findEntity(res.Entities, "lib.rs::Widget.draw")
	require.NotNil(t, draw, "impl-block functions should attach to the impl target")
	assert.Equal(t, EntityKindMethod, draw.Kind)
	assert.Equal(t, "lib.rs::Widget", draw.ParentClass)

	grow := findEntity(res.Entities, "lib.rs::Widget.grow")
	require.NotNil(t, grow)
	assert.Contains(t, grow.Signature, "-> u32")

	assert.Equal(t, []string{"crate::model::Widget"}, importSpecs(res.Imports))

	inherit := findRef(res.Refs, "lib.rs::Widget", "Render")
	require.NotNil(t, inherit, "impl Trait for Type should record an inherit mention")
	assert.Equal(t, RefKindInherit, inherit.Kind)

	assert.NotNil(t, findRef(res.Refs, "lib.rs::Widget.draw", "helper"))
	assert.NotNil(t, findRef(res.Refs, "lib.rs::Widget.grow", "expand"))
	assert.NotNil(t, findRef(res.Refs, "lib.rs::expand", "twice"),
		"scoped calls keep the final path segment")
}

// ---------------------------------------------------------------------------
// TestTreeSitterParser_Errors
// ---------------------------------------------------------------------------

func TestTreeSitterParser_Errors(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()
	ctx := context.Background()

	t.Run("syntax error", func(t *testing.T) {
		src := readFixture(t, "testdata/fixtures/py_project/broken.py")
		_, err := p.Parse(ctx, "broken.py", src, LangPython)
		assert.Error(t, err, "a CST containing error nodes should be rejected")
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, err := p.Parse(ctx, "main.rb", []byte("puts 1"), Language("ruby"))
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := p.Parse(cctx, "a.py", []byte("x = 1"), LangPython)
		assert.Error(t, err)
	})
}
