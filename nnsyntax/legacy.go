package nnsyntax

import "strings"

// legacyRule is one forward rewrite from an older NN token spelling to
// the current one, applied in order.
type legacyRule struct {
	from, to string
}

// legacyRules is indexed by the NN syntax version the input tokens
// were produced with; version "" (unversioned/oldest observed inputs)
// gets every rule applied. Newer versions only need the rules that
// postdate them.
var legacyRules = map[string][]legacyRule{
	"": {
		{from: "$undefined", to: "undefined"},
		{from: "argmax", to: "sort desc index 0"},
		{from: "argmin", to: "sort asc index 0"},
	},
	"1": {
		{from: "argmax", to: "sort desc index 0"},
		{from: "argmin", to: "sort asc index 0"},
	},
}

// UpgradeLegacy rewrites tokenStr produced under an older NN syntax
// version into the current token grammar, token-for-token. Unknown
// versions are treated as already current (no rewrite).
func UpgradeLegacy(tokenStr, version string) string {
	rules, ok := legacyRules[version]
	if !ok {
		return tokenStr
	}
	toks := tokenize(tokenStr)
	var out []string
	for _, t := range toks {
		rewritten := t
		for _, r := range rules {
			if t == r.from {
				rewritten = r.to
				break
			}
		}
		out = append(out, rewritten)
	}
	return strings.Join(out, " ")
}
