package parser

import (
	"strings"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/syntax"
)

type namedVar struct {
	name string
	v    *lang.Var
}

// declaredVars resolves every declarator of a declaration-like node
// (declaration, parameter_declaration, field_declaration) into variables.
// It also reports how many declarators could not be resolved.
func declaredVars(ctx *ExtractionContext, node syntax.Node) ([]namedVar, int) {
	typeNode := node.ChildByField("type")
	if typeNode == nil {
		return nil, 1
	}
	primary := typeName(typeNode)

	var out []namedVar
	malformed := 0
	for _, d := range node.ChildrenByField("declarator") {
		nv, ok := declaredVar(ctx, primary, d)
		if !ok {
			malformed++
			continue
		}
		out = append(out, nv)
	}
	return out, malformed
}

func declaredVar(ctx *ExtractionContext, primary string, d syntax.Node) (namedVar, bool) {
	nameNode, qualifiers, ok := unwrapDeclarator(d)
	if !ok {
		return namedVar{}, false
	}
	return namedVar{
		name: nameNode.Text(),
		v: &lang.Var{
			PrimaryType: primary,
			Qualifiers:  qualifiers,
			Declaration: ctx.Location(nameNode),
			Unused:      true,
		},
	}, true
}

// FunctionQualifier marks a declarator that names a function pointer.
const FunctionQualifier = "()"

// unwrapDeclarator strips declarator wrappers down to the declared name.
// Qualifiers are appended after recursing so "a[2][3]" yields two in
// declaration order and "(*fp)(int)" yields "*" then "()".
func unwrapDeclarator(n syntax.Node) (syntax.Node, []string, bool) {
	switch n.Kind() {
	case "identifier", "field_identifier":
		return n, nil, true
	case "array_declarator":
		return wrapDeclarator(n.ChildByField("declarator"), lang.ArrayQualifier)
	case "pointer_declarator":
		return wrapDeclarator(n.ChildByField("declarator"), "*")
	case "function_declarator":
		return wrapDeclarator(n.ChildByField("declarator"), FunctionQualifier)
	case "init_declarator":
		inner := n.ChildByField("declarator")
		if inner == nil {
			return nil, nil, false
		}
		return unwrapDeclarator(inner)
	case "parenthesized_declarator":
		for _, child := range n.Children() {
			if declaratorKinds[child.Kind()] {
				return unwrapDeclarator(child)
			}
		}
		return nil, nil, false
	default:
		return nil, nil, false
	}
}

var declaratorKinds = map[string]bool{
	"identifier":               true,
	"field_identifier":         true,
	"array_declarator":         true,
	"pointer_declarator":       true,
	"function_declarator":      true,
	"parenthesized_declarator": true,
}

func wrapDeclarator(inner syntax.Node, qualifier string) (syntax.Node, []string, bool) {
	if inner == nil {
		return nil, nil, false
	}
	name, qualifiers, ok := unwrapDeclarator(inner)
	if !ok {
		return nil, nil, false
	}
	return name, append(qualifiers, qualifier), true
}

// typeName returns the name a type node refers to. Tagged types such as
// "struct S" resolve to their tag so they match the struct table.
func typeName(n syntax.Node) string {
	switch n.Kind() {
	case "struct_specifier", "union_specifier", "enum_specifier":
		if name := n.ChildByField("name"); name != nil {
			return name.Text()
		}
	}
	return strings.Join(strings.Fields(n.Text()), " ")
}

// functionDeclarator finds the function_declarator under a definition's
// declarator, looking through pointer return types.
func functionDeclarator(n syntax.Node) syntax.Node {
	for n != nil {
		switch n.Kind() {
		case "function_declarator":
			return n
		case "pointer_declarator":
			n = n.ChildByField("declarator")
		default:
			return nil
		}
	}
	return nil
}

// functionName returns the node naming the function a declarator declares,
// or nil when the declarator is not a plain function declarator. Function
// pointers such as "(*fp)(int)" have no plain name and yield nil.
func functionName(declarator syntax.Node) syntax.Node {
	fn := functionDeclarator(declarator)
	if fn == nil {
		return nil
	}
	nameNode := fn.ChildByField("declarator")
	if nameNode == nil {
		return nil
	}
	switch nameNode.Kind() {
	case "identifier", "field_identifier", "qualified_identifier":
		return nameNode
	}
	return nil
}

// functionSignature builds the Func described by a definition or prototype
// declarator and returns the node naming it.
func functionSignature(ctx *ExtractionContext, typeNode, declarator syntax.Node) (syntax.Node, *lang.Func, bool) {
	nameNode := functionName(declarator)
	if nameNode == nil {
		return nil, nil, false
	}

	f := &lang.Func{Declaration: ctx.Location(nameNode)}
	if typeNode != nil {
		f.ReturnType = typeName(typeNode)
	}
	if params := functionDeclarator(declarator).ChildByField("parameters"); params != nil {
		for _, p := range params.Children() {
			if p.Kind() != "parameter_declaration" {
				continue
			}
			vars, _ := declaredVars(ctx, p)
			for _, nv := range vars {
				f.Params = append(f.Params, lang.Param{Name: nv.name, Var: nv.v})
			}
		}
	}
	return nameNode, f, true
}

// handleDeclaration decides per declarator: a plain function declarator is a
// prototype, everything else declares a variable in the current scope.
// Parameter lists are never walked, so their names stay out of the scope.
func handleDeclaration(ctx *ExtractionContext, node syntax.Node) bool {
	typeNode := node.ChildByField("type")
	if typeNode == nil {
		ctx.skip()
		return true
	}
	ctx.Walk(typeNode)

	primary := typeName(typeNode)
	for _, d := range node.ChildrenByField("declarator") {
		if functionName(d) != nil {
			recordPrototype(ctx, typeNode, d)
			continue
		}
		nv, ok := declaredVar(ctx, primary, d)
		if !ok {
			ctx.skip()
			continue
		}
		ctx.Scope.Declare(nv.name, nv.v)
	}
	return true
}

// handleTypeDefinition visits only the aliased type, which may define a
// struct. The declarators name types, and any parameter lists under them
// belong to function pointer types.
func handleTypeDefinition(ctx *ExtractionContext, node syntax.Node) bool {
	if typeNode := node.ChildByField("type"); typeNode != nil {
		ctx.Walk(typeNode)
	}
	return true
}

// recordPrototype registers a function declared without a body unless the
// document already defined it.
func recordPrototype(ctx *ExtractionContext, typeNode, declarator syntax.Node) {
	nameNode, f, ok := functionSignature(ctx, typeNode, declarator)
	if !ok {
		ctx.skip()
		return
	}
	name := nameNode.Text()
	if existing, found := ctx.Symbols.Functions[name]; found && existing.Declaration != nil {
		return
	}
	ctx.Symbols.Functions[name] = f
}

func handleStruct(ctx *ExtractionContext, node syntax.Node) bool {
	nameNode := node.ChildByField("name")
	body := node.ChildByField("body")
	if nameNode == nil || body == nil {
		// Anonymous structs and bare references such as "struct S x;".
		return false
	}

	t := &lang.Type{
		Fields:      make(map[string]*lang.Var),
		Declaration: ctx.Location(nameNode),
		Desc:        strings.TrimSuffix(node.Kind(), "_specifier"),
		Builtin:     false,
	}
	for _, child := range body.Children() {
		if child.Kind() != "field_declaration" {
			continue
		}
		vars, malformed := declaredVars(ctx, child)
		ctx.Skipped += malformed
		for _, nv := range vars {
			t.Fields[nv.name] = nv.v
		}
		// Nested struct definitions still register.
		if typeNode := child.ChildByField("type"); typeNode != nil {
			ctx.Walk(typeNode)
		}
	}
	ctx.Symbols.Types[nameNode.Text()] = t
	return true
}

// handleFunctionDefinition opens the function's scope. Only the
// definition's own parameters are declared in it; the body is walked for
// locals.
func handleFunctionDefinition(ctx *ExtractionContext, node syntax.Node) bool {
	typeNode := node.ChildByField("type")
	if typeNode != nil {
		ctx.Walk(typeNode)
	}

	scope := lang.NewScope()
	if nameNode, f, ok := functionSignature(ctx, typeNode, node.ChildByField("declarator")); ok {
		ctx.Symbols.Functions[nameNode.Text()] = f
		for _, p := range f.Params {
			scope.Declare(p.Name, p.Var)
		}
	} else {
		ctx.skip()
	}

	parent := ctx.Scope
	ctx.Scope = scope
	if body := node.ChildByField("body"); body != nil {
		ctx.Walk(body)
	}
	ctx.Scope = parent

	span := node.Span()
	parent.Attach(span.Start.Row, span.End.Row, scope)
	return true
}

func handleDefine(ctx *ExtractionContext, node syntax.Node) bool {
	nameNode := node.ChildByField("name")
	if nameNode == nil {
		ctx.skip()
		return false
	}
	d := &lang.Define{Declaration: ctx.Location(nameNode)}
	if value := node.ChildByField("value"); value != nil {
		d.InsertText = strings.TrimSpace(value.Text())
	}
	ctx.Symbols.Defines[nameNode.Text()] = d
	return false
}
