package php

import (
	"strings"

	"github.com/ziracms/editor-sub001/lang"
	"github.com/ziracms/editor-sub001/lang/scan"
)

type param struct {
	Name       string
	Type       string
	Visibility lang.Visibility
	Optional   bool
	Variadic   bool
	// Offset of the name relative to the start of the list.
	Offset int
}

type signature struct {
	Args    string
	MinArgs int
	MaxArgs int
	Params  []param
}

// parseParams reads a parameter list. clean is the list with literals
// blanked, orig the same span of the original text, used for the Args
// rendering so default string values stay readable.
func parseParams(clean, orig string) signature {
	var sig signature
	var rendered []string
	for _, span := range scan.SplitTopLevel(clean) {
		part := clean[span[0]:span[1]]
		if strings.TrimSpace(part) == "" {
			continue
		}
		loc := paramPattern.FindStringSubmatchIndex(part)
		if loc == nil {
			continue
		}
		prm := param{
			Name:     part[loc[6]:loc[7]],
			Variadic: loc[4] >= 0,
			Offset:   span[0] + loc[6],
		}
		head := attributePattern.ReplaceAllString(part[:loc[0]], " ")
		var hint []string
		for _, word := range strings.Fields(head) {
			if vis, ok := lang.ParseVisibility(strings.ToLower(word)); ok {
				prm.Visibility = vis
				continue
			}
			if strings.EqualFold(word, "readonly") {
				continue
			}
			hint = append(hint, word)
		}
		prm.Type = strings.Join(hint, "")
		prm.Optional = scan.TopLevelIndex(part[loc[1]:], '=') >= 0

		sig.Params = append(sig.Params, prm)
		sig.MaxArgs++
		if !prm.Optional && !prm.Variadic {
			sig.MinArgs++
		}
		rendered = append(rendered, scan.CollapseSpace(orig[span[0]:span[1]]))
	}
	sig.Args = strings.Join(rendered, ", ")
	return sig
}
