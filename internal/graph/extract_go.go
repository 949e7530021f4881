package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// goExtractor extracts entities and raw references from Go source files.
// Struct and interface type declarations map to class entities; methods
// attach to their receiver type.
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) *FileExtraction {
	out := &FileExtraction{}
	e.visit(root, source, filePath, "", out)
	return out
}

func (e *goExtractor) visit(node *tree_sitter.Node, source []byte, filePath, enclosing string, out *FileExtraction) {
	switch node.Kind() {
	case "function_declaration":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Utf8Text(source)
		id := EntityID(filePath, "", name)
		out.Entities = append(out.Entities, Entity{
			ID:        id,
			Kind:      EntityKindFunction,
			Name:      name,
			FilePath:  filePath,
			StartLine: nodeLine(node),
			EndLine:   nodeEndLine(node),
			Language:  LangGo,
			Signature: goSignature(node, source),
		})
		if body := node.ChildByFieldName("body"); body != nil {
			e.visitChildren(body, source, filePath, id, out)
		}
		return

	case "method_declaration":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Utf8Text(source)
		recv := goReceiverType(node, source)
		id := EntityID(filePath, recv, name)
		ent := Entity{
			ID:        id,
			Kind:      EntityKindMethod,
			Name:      name,
			FilePath:  filePath,
			StartLine: nodeLine(node),
			EndLine:   nodeEndLine(node),
			Language:  LangGo,
			Signature: goSignature(node, source),
		}
		if recv != "" {
			ent.ParentClass = EntityID(filePath, "", recv)
		}
		out.Entities = append(out.Entities, ent)
		if body := node.ChildByFieldName("body"); body != nil {
			e.visitChildren(body, source, filePath, id, out)
		}
		return

	case "type_declaration":
		// type_declaration contains one or more type_spec children; only
		// struct and interface types become class entities.
		for i := uint(0); i < node.ChildCount(); i++ {
			spec := node.Child(i)
			if spec == nil || spec.Kind() != "type_spec" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			typeNode := spec.ChildByFieldName("type")
			if nameNode == nil || typeNode == nil {
				continue
			}
			switch typeNode.Kind() {
			case "struct_type", "interface_type":
				name := nameNode.Utf8Text(source)
				out.Entities = append(out.Entities, Entity{
					ID:        EntityID(filePath, "", name),
					Kind:      EntityKindClass,
					Name:      name,
					FilePath:  filePath,
					StartLine: nodeLine(spec),
					EndLine:   nodeEndLine(spec),
					Language:  LangGo,
				})
			}
		}
		return

	case "import_spec":
		pathNode := node.ChildByFieldName("path")
		if pathNode == nil {
			for i := uint(0); i < node.ChildCount(); i++ {
				child := node.Child(i)
				if child != nil && child.Kind() == "interpreted_string_literal" {
					pathNode = child
					break
				}
			}
		}
		if pathNode != nil {
			spec := strings.Trim(pathNode.Utf8Text(source), "\"")
			if spec != "" {
				out.Imports = append(out.Imports, ImportRef{
					FromPath: filePath,
					Spec:     spec,
					Line:     nodeLine(node),
				})
			}
		}

	case "call_expression":
		if enclosing != "" {
			if fn := node.ChildByFieldName("function"); fn != nil {
				var callee string
				switch fn.Kind() {
				case "identifier":
					callee = fn.Utf8Text(source)
				case "selector_expression":
					// pkg.Func or recv.Method: keep the final selector name,
					// matching how entities are named in the symbol index.
					if field := fn.ChildByFieldName("field"); field != nil {
						callee = field.Utf8Text(source)
					}
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

	e.visitChildren(node, source, filePath, enclosing, out)
}

func (e *goExtractor) visitChildren(node *tree_sitter.Node, source []byte, filePath, enclosing string, out *FileExtraction) {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			e.visit(child, source, filePath, enclosing, out)
		}
	}
}

// goReceiverType extracts the bare receiver type name of a method
// declaration, stripping any pointer star and type parameters.
func goReceiverType(node *tree_sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	text := recv.Utf8Text(source)
	text = strings.Trim(text, "()")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	typ := fields[len(fields)-1]
	typ = strings.TrimPrefix(typ, "*")
	if idx := strings.Index(typ, "["); idx != -1 {
		typ = typ[:idx]
	}
	return typ
}

// goSignature returns the raw parameter and result text of a function or
// method declaration.
func goSignature(node *tree_sitter.Node, source []byte) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	sig := params.Utf8Text(source)
	if res := node.ChildByFieldName("result"); res != nil {
		sig += " " + res.Utf8Text(source)
	}
	return sig
}
