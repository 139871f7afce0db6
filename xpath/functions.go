package xpath

import (
	"strings"

	"github.com/chrisuehlinger/vellum/tree"
)

// Function is the implementation of an XPath function. Arguments arrive
// evaluated; attribute references are passed as their value or nil when the
// attribute is absent.
type Function func(ctx EvaluationContext, args []any) (any, error)

var xpathFunctions = map[string]Function{}

// RegisterFunction makes fn callable in predicates under the given name,
// replacing a possibly existing implementation. Like all mutating
// operations it must not race with evaluations.
func RegisterFunction(name string, fn Function) {
	xpathFunctions[name] = fn
}

func init() {
	RegisterFunction("boolean", fnBoolean)
	RegisterFunction("concat", fnConcat)
	RegisterFunction("contains", fnContains)
	RegisterFunction("last", fnLast)
	RegisterFunction("name", fnName)
	RegisterFunction("not", fnNot)
	RegisterFunction("position", fnPosition)
	RegisterFunction("starts-with", fnStartsWith)
	RegisterFunction("text", fnText)
}

func requireArgs(name string, args []any, count int) error {
	if len(args) != count {
		return errEvaluation("%s() takes %d argument(s), got %d", name, count, len(args))
	}
	return nil
}

func fnBoolean(_ EvaluationContext, args []any) (any, error) {
	if err := requireArgs("boolean", args, 1); err != nil {
		return nil, err
	}
	return truthy(args[0]), nil
}

func fnConcat(_ EvaluationContext, args []any) (any, error) {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(toString(arg))
	}
	return b.String(), nil
}

func fnContains(_ EvaluationContext, args []any) (any, error) {
	if err := requireArgs("contains", args, 2); err != nil {
		return nil, err
	}
	return strings.Contains(toString(args[0]), toString(args[1])), nil
}

func fnLast(ctx EvaluationContext, args []any) (any, error) {
	if err := requireArgs("last", args, 0); err != nil {
		return nil, err
	}
	return ctx.Size, nil
}

// fnName yields the local name of the context node: a tag's local name or a
// processing instruction's target, an empty string for other variants.
func fnName(ctx EvaluationContext, args []any) (any, error) {
	if err := requireArgs("name", args, 0); err != nil {
		return nil, err
	}
	switch {
	case ctx.Node.Tag() != nil:
		return ctx.Node.Tag().LocalName(), nil
	case ctx.Node.ProcessingInstruction() != nil:
		return ctx.Node.ProcessingInstruction().Target(), nil
	}
	return "", nil
}

func fnNot(_ EvaluationContext, args []any) (any, error) {
	if err := requireArgs("not", args, 1); err != nil {
		return nil, err
	}
	return !truthy(args[0]), nil
}

func fnPosition(ctx EvaluationContext, args []any) (any, error) {
	if err := requireArgs("position", args, 0); err != nil {
		return nil, err
	}
	return ctx.Position, nil
}

func fnStartsWith(_ EvaluationContext, args []any) (any, error) {
	if err := requireArgs("starts-with", args, 2); err != nil {
		return nil, err
	}
	return strings.HasPrefix(toString(args[0]), toString(args[1])), nil
}

// fnText yields the content of the context node's first text child, or an
// empty string when there is none.
func fnText(ctx EvaluationContext, args []any) (any, error) {
	if err := requireArgs("text", args, 0); err != nil {
		return nil, err
	}
	if first := ctx.Node.FirstChild(tree.IsText); first != nil {
		return first.Text().Content(), nil
	}
	return "", nil
}
