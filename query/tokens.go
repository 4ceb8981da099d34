package query

// Operator is one of the query language's verbs.
type Operator string

const (
	OpIndex Operator = "" // no operator token present: pure navigation
	OpSet   Operator = "="
	OpAdd   Operator = "+"
	OpDel   Operator = "-"
	OpFind  Operator = "@"
	OpKeys  Operator = "--keys"
	OpRaw   Operator = "--set"
	OpEdit  Operator = "--edit"
	OpPrune Operator = "--del"
)

// aliases maps short-form operator tokens to their long form. Aliases
// are normalized before dispatch and before cache-key canonicalization.
var aliases = map[string]Operator{
	"-k": OpKeys,
	"-s": OpRaw,
	"-e": OpEdit,
	"-d": OpPrune,
}

var operatorTokens = map[Operator]bool{
	OpSet:   true,
	OpAdd:   true,
	OpDel:   true,
	OpFind:  true,
	OpKeys:  true,
	OpRaw:   true,
	OpEdit:  true,
	OpPrune: true,
}

// Normalize expands short aliases to their long form; every other
// token passes through unchanged.
func Normalize(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if op, ok := aliases[t]; ok {
			out[i] = string(op)
		} else {
			out[i] = t
		}
	}
	return out
}

// parsed is a query split into its verb, left path, and right payload.
type parsed struct {
	op      Operator
	left    []string
	payload []string
}

// parse scans the normalized token list left to right for operator
// tokens. Zero operators is a pure index query; exactly one splits the
// query into left path and right payload; more than one is a
// ClientError: a query carries exactly one operator.
func parse(tokens []string) (parsed, error) {
	opIdx := -1
	for i, t := range tokens {
		if operatorTokens[Operator(t)] {
			if opIdx != -1 {
				return parsed{}, clientErrorf("multiple operators in query")
			}
			opIdx = i
		}
	}

	if opIdx == -1 {
		if len(tokens) == 0 {
			return parsed{}, clientErrorf("empty query")
		}
		return parsed{op: OpIndex, left: tokens}, nil
	}

	return parsed{
		op:      Operator(tokens[opIdx]),
		left:    tokens[:opIdx],
		payload: tokens[opIdx+1:],
	}, nil
}

// OperatorName returns the verb a token list would dispatch to ("index"
// for no operator, "invalid" if the query fails to parse), for use as a
// metrics label.
func OperatorName(tokens []string) string {
	p, err := parse(Normalize(tokens))
	if err != nil {
		return "invalid"
	}
	if p.op == OpIndex {
		return "index"
	}
	return string(p.op)
}
