package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
)

// kwPrefix tags the strings preprocessSource makes of :keywords.
const kwPrefix = "__kw_"

// keyword returns the name of a tagged keyword string.
func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return strings.TrimPrefix(str.S, kwPrefix), true
}

// callArgs splits a builtin's arguments into positional values and
// :keyword value pairs.
type callArgs struct {
	positional []zygo.Sexp
	kw         map[string]zygo.Sexp
}

// parseArgs splits args. Every keyword takes exactly one value, and a
// keyword may appear once per call.
func parseArgs(args []zygo.Sexp) (callArgs, error) {
	ca := callArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := keyword(args[i])
		if !ok {
			ca.positional = append(ca.positional, args[i])
			continue
		}
		if i+1 == len(args) {
			return ca, fmt.Errorf(":%s has no value", name)
		}
		if _, dup := ca.kw[name]; dup {
			return ca, fmt.Errorf(":%s given twice", name)
		}
		i++
		ca.kw[name] = args[i]
	}
	return ca, nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", s.SexpString(nil))
}

// toKeywordString accepts :name or "name" and returns name.
func toKeywordString(s zygo.Sexp) (string, error) {
	if name, ok := keyword(s); ok {
		return name, nil
	}
	str, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected keyword, got %s", s.SexpString(nil))
	}
	return str, nil
}

// listItems returns the elements of a list or array; nil is the empty list.
func listItems(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	}
	if s == zygo.SexpNull {
		return nil, nil
	}
	return nil, fmt.Errorf("expected list, got %s", s.SexpString(nil))
}
