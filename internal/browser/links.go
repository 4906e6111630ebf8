package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstLink returns the href of the first anchor in document order whose
// href contains pattern. found is false if there is no such anchor.
func FirstLink(htmlStr, pattern string) (href string, found bool, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return "", false, err
	}
	selector := fmt.Sprintf("a[href*=%q]", pattern)
	href, found = doc.Find(selector).First().Attr("href")
	return href, found, nil
}
