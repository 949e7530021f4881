package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rsExtractor extracts entities and raw references from Rust source files.
// Structs, enums, and traits map to class entities; impl-block functions
// become methods of the impl target; "impl Trait for Type" records an
// inherit reference from the type to the trait.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) *FileExtraction {
	out := &FileExtraction{}
	e.visit(root, source, filePath, "", "", out)
	return out
}

func (e *rsExtractor) visit(node *tree_sitter.Node, source []byte, filePath, class, enclosing string, out *FileExtraction) {
	switch node.Kind() {
	case "function_item":
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
			Language:    LangRust,
			ParentClass: parent,
			Signature:   rsSignature(node, source),
		})
		if body := node.ChildByFieldName("body"); body != nil {
			e.visitChildren(body, source, filePath, "", id, out)
		}
		return

	case "struct_item", "enum_item", "trait_item":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Utf8Text(source)
		out.Entities = append(out.Entities, Entity{
			ID:        EntityID(filePath, "", name),
			Kind:      EntityKindClass,
			Name:      name,
			FilePath:  filePath,
			StartLine: nodeLine(node),
			EndLine:   nodeEndLine(node),
			Language:  LangRust,
		})
		if node.Kind() == "trait_item" {
			if body := node.ChildByFieldName("body"); body != nil {
				e.visitChildren(body, source, filePath, name, enclosing, out)
			}
		}
		return

	case "impl_item":
		typeNode := node.ChildByFieldName("type")
		if typeNode == nil {
			return
		}
		typeName := rsBareTypeName(typeNode, source)

		// "impl Trait for Type": the type inherits the trait's contract.
		if traitNode := node.ChildByFieldName("trait"); traitNode != nil && typeName != "" {
			traitName := rsBareTypeName(traitNode, source)
			if traitName != "" {
				out.Refs = append(out.Refs, Reference{
					FromID: EntityID(filePath, "", typeName),
					Name:   traitName,
					Line:   nodeLine(node),
					Kind:   RefKindInherit,
				})
			}
		}

		if body := node.ChildByFieldName("body"); body != nil {
			e.visitChildren(body, source, filePath, typeName, enclosing, out)
		}
		return

	case "use_declaration":
		spec := ""
		if arg := node.ChildByFieldName("argument"); arg != nil {
			spec = arg.Utf8Text(source)
		}
		if spec != "" {
			out.Imports = append(out.Imports, ImportRef{
				FromPath: filePath,
				Spec:     spec,
				Line:     nodeLine(node),
			})
		}

	case "call_expression":
		if enclosing != "" {
			if fn := node.ChildByFieldName("function"); fn != nil {
				var callee string
				switch fn.Kind() {
				case "identifier":
					callee = fn.Utf8Text(source)
				case "scoped_identifier":
					if name := fn.ChildByFieldName("name"); name != nil {
						callee = name.Utf8Text(source)
					}
				case "field_expression":
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

	e.visitChildren(node, source, filePath, class, enclosing, out)
}

func (e *rsExtractor) visitChildren(node *tree_sitter.Node, source []byte, filePath, class, enclosing string, out *FileExtraction) {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			e.visit(child, source, filePath, class, enclosing, out)
		}
	}
}

// rsBareTypeName strips generic arguments from a type node's text,
// e.g. "Vec<String>" -> "Vec".
func rsBareTypeName(node *tree_sitter.Node, source []byte) string {
	text := node.Utf8Text(source)
	for i := 0; i < len(text); i++ {
		if text[i] == '<' {
			return text[:i]
		}
	}
	return text
}

// rsSignature returns the raw parameter and return text of a function item.
func rsSignature(node *tree_sitter.Node, source []byte) string {
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
