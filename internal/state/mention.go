package state

import (
	"regexp"
	"strconv"
)

var numberMention = regexp.MustCompile(`\B@(\d+)\b`)

// ReplaceMentions expands "@3" to the name of the third player and
// normalizes "@name" to the player's name as the server spells it.
func ReplaceMentions(text string, names []string) string {
	text = numberMention.ReplaceAllStringFunc(text, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(names) {
			return m
		}
		return names[n-1]
	})
	for _, name := range names {
		if name == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\B@` + regexp.QuoteMeta(name) + `\b`)
		if err != nil {
			continue
		}
		text = re.ReplaceAllLiteralString(text, name)
	}
	return text
}
