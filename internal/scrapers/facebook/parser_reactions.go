package facebook

import (
	"fbwatch/pkg/htmlutil"
	"strconv"
	"strings"
)

const reactionFetchPath = "/ufi/reaction/profile/browser/fetch/"

var nonUserLinks = []string{
	"add_friend",
	"/friends/add",
	"/ufi/reaction/",
	"/home.php",
}

// ParseReactionPage lists the people who reacted to a post, numeric profile
// links are reduced to the id and usernames are canonicalized.
func (p Parser) ParseReactionPage(content string) (ReactionResult, error) {
	doc, err := loadPage(content)
	if err != nil {
		return ReactionResult{}, err
	}

	container := doc.Find("#root").First()
	if container.Length() == 0 {
		container = doc.Find("#objects_container").First()
	}
	if container.Length() == 0 {
		return ReactionResult{}, unrecognized("no reaction container found")
	}

	result := ReactionResult{}
	seen := map[string]bool{}
	for _, anchor := range htmlutil.GetAnchors(container.Find("a")) {
		if htmlutil.HasAttr(anchor.Node, "role") {
			continue
		}
		href := anchor.Href
		if !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
			continue
		}
		if strings.HasPrefix(href, reactionFetchPath) {
			if result.ContinuationLink == "" {
				result.ContinuationLink = href
			}
			continue
		}
		if containsAny(href, nonUserLinks) {
			continue
		}

		liker := likerRef(href)
		if liker == "" || seen[liker] {
			continue
		}
		seen[liker] = true
		result.Likers = append(result.Likers, liker)
	}

	return result, nil
}

func likerRef(href string) string {
	if id, ok := NumericId(href); ok {
		return strconv.FormatInt(id, 10)
	}
	return strings.TrimPrefix(Canonicalize(href), "/")
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
