package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// pyExtractor extracts entities and raw references from Python source files.
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) *FileExtraction {
	out := &FileExtraction{}
	e.visit(root, source, filePath, "", "", out)
	return out
}

// visit walks the CST tracking the enclosing class name and enclosing entity
// ID. Call mentions are recorded only inside a function or method body; a
// call at module level has no enclosing entity to attribute it to.
func (e *pyExtractor) visit(node *tree_sitter.Node, source []byte, filePath, class, enclosing string, out *FileExtraction) {
	switch node.Kind() {
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Utf8Text(source)
		kind := EntityKindFunction
		parent := ""
		if class != "" {
			kind = EntityKindMethod
			parent = EntityID(filePath, "", class)
		}
		id := EntityID(filePath, class, name)
		out.Entities = append(out.Entities, Entity{
			ID:          id,
			Kind:        kind,
			Name:        name,
			FilePath:    filePath,
			StartLine:   nodeLine(node),
			EndLine:     nodeEndLine(node),
			Language:    LangPython,
			ParentClass: parent,
			Signature:   pySignature(node, source),
		})
		// Nested defs inside a body are plain functions, not methods.
		if body := node.ChildByFieldName("body"); body != nil {
			e.visitChildren(body, source, filePath, "", id, out)
		}
		return

	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Utf8Text(source)
		id := EntityID(filePath, "", name)
		out.Entities = append(out.Entities, Entity{
			ID:        id,
			Kind:      EntityKindClass,
			Name:      name,
			FilePath:  filePath,
			StartLine: nodeLine(node),
			EndLine:   nodeEndLine(node),
			Language:  LangPython,
		})

		// Superclass list: class C(Base1, Base2).
		if supers := node.ChildByFieldName("superclasses"); supers != nil {
			for i := uint(0); i < supers.ChildCount(); i++ {
				child := supers.Child(i)
				if child == nil {
					continue
				}
				if child.Kind() == "identifier" || child.Kind() == "attribute" {
					base := child.Utf8Text(source)
					if k := child.Kind(); k == "attribute" {
						base = pyAttributeName(child, source)
					}
					if base != "" {
						out.Refs = append(out.Refs, Reference{
							FromID: id,
							Name:   base,
							Line:   nodeLine(child),
							Kind:   RefKindInherit,
						})
					}
				}
			}
		}

		if body := node.ChildByFieldName("body"); body != nil {
			e.visitChildren(body, source, filePath, name, enclosing, out)
		}
		return

	case "import_statement":
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "dotted_name":
				e.appendImport(child, source, filePath, out)
			case "aliased_import":
				if mod := child.ChildByFieldName("name"); mod != nil {
					e.appendImport(mod, source, filePath, out)
				}
			}
		}

	case "import_from_statement":
		mod := node.ChildByFieldName("module_name")
		if mod == nil {
			for i := uint(0); i < node.ChildCount(); i++ {
				child := node.Child(i)
				if child != nil && (child.Kind() == "dotted_name" || child.Kind() == "relative_import") {
					mod = child
					break
				}
			}
		}
		if mod != nil {
			e.appendImport(mod, source, filePath, out)
		}

	case "call":
		if enclosing != "" {
			if fn := node.ChildByFieldName("function"); fn != nil {
				var callee string
				switch fn.Kind() {
				case "identifier":
					callee = fn.Utf8Text(source)
				case "attribute":
					// obj.method(...): keep the final attribute name, matching
					// how names are declared in the symbol index.
					callee = pyAttributeName(fn, source)
				}
				if callee != "" {
					out.Refs = append(out.Refs, Reference{
						FromID: enclosing,
						Name:   callee,
						Line:   nodeLine(node),
						Kind:   RefKindCall,
					})
				}
			}
		}
	}

	e.visitChildren(node, source, filePath, class, enclosing, out)
}

func (e *pyExtractor) visitChildren(node *tree_sitter.Node, source []byte, filePath, class, enclosing string, out *FileExtraction) {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			e.visit(child, source, filePath, class, enclosing, out)
		}
	}
}

func (e *pyExtractor) appendImport(node *tree_sitter.Node, source []byte, filePath string, out *FileExtraction) {
	spec := node.Utf8Text(source)
	if spec == "" {
		return
	}
	out.Imports = append(out.Imports, ImportRef{
		FromPath: filePath,
		Spec:     spec,
		Line:     nodeLine(node),
	})
}

// pyAttributeName returns the final attribute of a dotted expression,
// e.g. "self.helper" -> "helper".
func pyAttributeName(node *tree_sitter.Node, source []byte) string {
	if attr := node.ChildByFieldName("attribute"); attr != nil {
		return attr.Utf8Text(source)
	}
	return ""
}

// pySignature returns the raw parameter list text of a function definition.
func pySignature(node *tree_sitter.Node, source []byte) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	sig := params.Utf8Text(source)
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig += " -> " + ret.Utf8Text(source)
	}
	return sig
}
