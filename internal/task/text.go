package task

import (
	"regexp"
	"strings"
)

// Wikipedia dump text uses PTB-style bracket tokens (-LRB-, -RSB-, ...) and
// LaTeX quotes. These helpers turn them back into readable text.

var (
	sentSquare    = regexp.MustCompile(` -LSB-.*?-RSB-`)
	evidSquare    = regexp.MustCompile(` -LSB-.*-RSB-`)
	emptyParens   = regexp.MustCompile(`\( *,? *\)`)
	leadingSepRe  = regexp.MustCompile(`\( *[;,]`)
	quoteReplacer = strings.NewReplacer("--", "-", "``", `"`, "''", `"`)
)

// ProcessSentence cleans claim text
func ProcessSentence(s string) string {
	s = sentSquare.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "-LRB- -RRB- ", "")
	s = strings.ReplaceAll(s, " -LRB-", " ( ")
	s = strings.ReplaceAll(s, "-RRB-", " )")
	return quoteReplacer.Replace(s)
}

// ProcessTitle turns a page id into a title
func ProcessTitle(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, " -LRB-", " ( ")
	s = strings.ReplaceAll(s, "-RRB-", " )")
	return strings.ReplaceAll(s, "-COLON-", ":")
}

// ProcessEvidence cleans an evidence sentence
func ProcessEvidence(s string) string {
	s = evidSquare.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " -LRB- -RRB- ", " ")
	s = strings.ReplaceAll(s, "-LRB-", "(")
	s = strings.ReplaceAll(s, "-RRB-", ")")
	s = strings.ReplaceAll(s, "-COLON-", ":")
	s = strings.ReplaceAll(s, "_", " ")
	s = emptyParens.ReplaceAllString(s, "")
	s = leadingSepRe.ReplaceAllString(s, "(")
	return quoteReplacer.Replace(s)
}
