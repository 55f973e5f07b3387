package graph

import (
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// Access is the gate decision for a GraphQL request.
type Access int

const (
	// AccessProtected requests need a verified caller.
	AccessProtected Access = iota
	// AccessPublic requests are registration or schema introspection only.
	AccessPublic
	// AccessInvalid requests cannot be executed; they run without an
	// identity so the executor reports the problem and resolves nothing.
	AccessInvalid
)

var publicMutations = map[string]bool{"createFriend": true}

var introspectionFields = map[string]bool{
	"__schema":   true,
	"__type":     true,
	"__typename": true,
}

type parsedRequest struct {
	op        *ast.OperationDefinition
	fragments map[string]*ast.FragmentDefinition
}

// selectOperation parses query and picks the operation the executor would
// run. ok is false when the document is invalid or the choice is ambiguous.
func selectOperation(query, operationName string) (parsedRequest, bool) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return parsedRequest{}, false
	}

	var (
		op      *ast.OperationDefinition
		opCount int
		req     = parsedRequest{fragments: map[string]*ast.FragmentDefinition{}}
	)
	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.OperationDefinition:
			opCount++
			if operationName == "" || (d.Name != nil && d.Name.Value == operationName) {
				if op == nil {
					op = d
				}
			}
		case *ast.FragmentDefinition:
			if d.Name != nil {
				req.fragments[d.Name.Value] = d
			}
		}
	}
	if op == nil || (operationName == "" && opCount > 1) {
		return parsedRequest{}, false
	}
	req.op = op
	return req, true
}

// IsMutation reports whether the selected operation is a mutation.
func IsMutation(query, operationName string) bool {
	req, ok := selectOperation(query, operationName)
	return ok && req.op.Operation == ast.OperationTypeMutation
}

// Classify decides the access level of the operation that would be executed
// for query and operationName. Only the top level fields of the selected
// operation matter; fragments are expanded.
func Classify(query, operationName string) Access {
	req, ok := selectOperation(query, operationName)
	if !ok {
		return AccessInvalid
	}
	op := req.op

	fields, ok := topLevelFields(op.SelectionSet, req.fragments, map[string]bool{})
	if !ok {
		return AccessInvalid
	}
	if len(fields) == 0 {
		return AccessProtected
	}

	var allowed map[string]bool
	switch op.Operation {
	case ast.OperationTypeMutation:
		allowed = publicMutations
	case ast.OperationTypeQuery:
		allowed = introspectionFields
	default:
		return AccessProtected
	}
	for _, name := range fields {
		if !allowed[name] {
			return AccessProtected
		}
	}
	return AccessPublic
}

func topLevelFields(set *ast.SelectionSet, fragments map[string]*ast.FragmentDefinition, seen map[string]bool) ([]string, bool) {
	if set == nil {
		return nil, true
	}
	var names []string
	for _, sel := range set.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			if s.Name != nil {
				names = append(names, s.Name.Value)
			}
		case *ast.InlineFragment:
			inner, ok := topLevelFields(s.SelectionSet, fragments, seen)
			if !ok {
				return nil, false
			}
			names = append(names, inner...)
		case *ast.FragmentSpread:
			if s.Name == nil {
				return nil, false
			}
			frag, ok := fragments[s.Name.Value]
			if !ok || seen[s.Name.Value] {
				return nil, false
			}
			seen[s.Name.Value] = true
			inner, ok := topLevelFields(frag.SelectionSet, fragments, seen)
			if !ok {
				return nil, false
			}
			names = append(names, inner...)
		}
	}
	return names, true
}
