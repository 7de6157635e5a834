package wiki

import (
	"strings"

	"golang.org/x/net/html"
)

var titleReplacer = strings.NewReplacer(" ", "_", "(", "-LRB-", ")", "-RRB-", ":", "-COLON-")

// PageID maps a Wikipedia title to the id used by the FEVER dump
// ("Savages (2012 film)" -> "Savages_-LRB-2012_film-RRB-")
func PageID(title string) string {
	return titleReplacer.Replace(title)
}

var phraseReplacer = strings.NewReplacer(
	"( ", "-LRB-",
	" )", "-RRB-",
	" - ", "-",
	" :", "-COLON-",
	" ,", ",",
	" 's", "'s",
)

// PhrasePageID maps a tokenised phrase straight to a candidate page id, for
// phrases that already name a page exactly
func PhrasePageID(phrase string) string {
	return strings.ReplaceAll(phraseReplacer.Replace(phrase), " ", "_")
}

// StripMarkup returns the text content of an HTML fragment such as a search
// snippet (`<span class="searchmatch">Paris</span> is ...`)
func StripMarkup(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
