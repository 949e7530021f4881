package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tsExtractor extracts entities and raw references from TypeScript source
// files. Both extends and implements clauses become inherit references, so a
// class can carry several simultaneous parents.
type tsExtractor struct{}

func (e *tsExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) *FileExtraction {
	out := &FileExtraction{}
	e.visit(root, source, filePath, "", "", out)
	return out
}

func (e *tsExtractor) visit(node *tree_sitter.Node, source []byte, filePath, class, enclosing string, out *FileExtraction) {
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
			Language:  LangTypeScript,
			Signature: tsSignature(node, source),
		})
		if body := node.ChildByFieldName("body"); body != nil {
			e.visitChildren(body, source, filePath, "", id, out)
		}
		return

	case "class_declaration", "abstract_class_declaration", "interface_declaration":
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
			Language:  LangTypeScript,
		})
		e.extractHeritage(node, source, id, out)
		if body := node.ChildByFieldName("body"); body != nil {
			e.visitChildren(body, source, filePath, name, enclosing, out)
		}
		return

	case "method_definition":
		if class == "" {
			break
		}
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Utf8Text(source)
		id := EntityID(filePath, class, name)
		out.Entities = append(out.Entities, Entity{
			ID:          id,
			Kind:        EntityKindMethod,
			Name:        name,
			FilePath:    filePath,
			StartLine:   nodeLine(node),
			EndLine:     nodeEndLine(node),
			Language:    LangTypeScript,
			ParentClass: EntityID(filePath, "", class),
			Signature:   tsSignature(node, source),
		})
		if body := node.ChildByFieldName("body"); body != nil {
			e.visitChildren(body, source, filePath, "", id, out)
		}
		return

	case "lexical_declaration":
		// const foo = () => { ... } declares a function entity.
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil || child.Kind() != "variable_declarator" {
				continue
			}
			valueNode := child.ChildByFieldName("value")
			nameNode := child.ChildByFieldName("name")
			if valueNode == nil || nameNode == nil || valueNode.Kind() != "arrow_function" {
				continue
			}
			name := nameNode.Utf8Text(source)
			id := EntityID(filePath, "", name)
			out.Entities = append(out.Entities, Entity{
				ID:        id,
				Kind:      EntityKindFunction,
				Name:      name,
				FilePath:  filePath,
				StartLine: nodeLine(child),
				EndLine:   nodeEndLine(child),
				Language:  LangTypeScript,
				Signature: tsSignature(valueNode, source),
			})
			// An arrow body can be a bare expression rather than a block, so
			// visit the body node itself, not just its children.
			if body := valueNode.ChildByFieldName("body"); body != nil {
				e.visit(body, source, filePath, "", id, out)
			}
		}
		return

	case "import_statement":
		sourceNode := node.ChildByFieldName("source")
		if sourceNode == nil {
			for i := uint(0); i < node.ChildCount(); i++ {
				child := node.Child(i)
				if child != nil && child.Kind() == "string" {
					sourceNode = child
					break
				}
			}
		}
		if sourceNode != nil {
			spec := strings.Trim(sourceNode.Utf8Text(source), "\"'`")
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
				case "member_expression":
					if prop := fn.ChildByFieldName("property"); prop != nil {
						callee = prop.Utf8Text(source)
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

func (e *tsExtractor) visitChildren(node *tree_sitter.Node, source []byte, filePath, class, enclosing string, out *FileExtraction) {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			e.visit(child, source, filePath, class, enclosing, out)
		}
	}
}

// extractHeritage records extends/implements clauses of a class declaration
// as inherit references.
func (e *tsExtractor) extractHeritage(node *tree_sitter.Node, source []byte, classID string, out *FileExtraction) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		// class_heritage covers extends/implements on classes;
		// extends_type_clause covers extends on interfaces.
		if k := child.Kind(); k != "class_heritage" && k != "extends_type_clause" {
			continue
		}
		e.collectHeritageNames(child, source, classID, out)
	}
}

func (e *tsExtractor) collectHeritageNames(node *tree_sitter.Node, source []byte, classID string, out *FileExtraction) {
	switch node.Kind() {
	case "identifier", "type_identifier":
		name := node.Utf8Text(source)
		if name != "" {
			out.Refs = append(out.Refs, Reference{
				FromID: classID,
				Name:   name,
				Line:   nodeLine(node),
				Kind:   RefKindInherit,
			})
		}
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			e.collectHeritageNames(child, source, classID, out)
		}
	}
}

// tsSignature returns the raw parameter text of a function, method, or
// arrow function node.
func tsSignature(node *tree_sitter.Node, source []byte) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	sig := params.Utf8Text(source)
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig += ret.Utf8Text(source)
	}
	return sig
}
