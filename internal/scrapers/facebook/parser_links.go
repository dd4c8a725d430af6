package facebook

import (
	"fbwatch/pkg/htmlutil"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	om "github.com/wk8/go-ordered-map/v2"
)

const (
	CATEGORY_FRIENDS        = "friends"
	CATEGORY_LIKES          = "likes"
	CATEGORY_MUTUAL_FRIENDS = "mutual_friends"
)

var (
	uidParam    = regexp.MustCompile(`uid=(\d+)`)
	profileLike = regexp.MustCompile(`^/(profile\.php\?id=\d+.*|[\w.\-]+/?(\?.*)?)$`)
	seeMoreText = regexp.MustCompile(`(?i)^(see|show) more`)
)

// first path segments that belong to the site itself and never to a profile
var reservedSegments = map[string]bool{
	"a": true, "allactivity": true, "bookmarks": true, "browse": true,
	"buddylist.php": true, "composer": true, "editprofile.php": true,
	"events": true, "findfriends": true, "friends": true, "groups": true,
	"help": true, "home.php": true, "language.php": true, "login": true,
	"login.php": true, "logout.php": true, "marketplace": true, "menu": true,
	"messages": true, "nearby": true, "notifications.php": true, "pages": true,
	"photo.php": true, "policies": true, "privacy": true, "privacyx": true,
	"profile.php": true, "r.php": true, "reg": true, "saved": true,
	"search": true, "settings": true, "story.php": true, "timeline": true,
	"ufi": true, "watch": true,
}

// IsProfileLink reports whether href points to a user or page profile.
func IsProfileLink(href string) bool {
	if !profileLike.MatchString(href) {
		return false
	}
	if strings.HasPrefix(href, "/profile.php?id=") {
		return true
	}
	segment := strings.TrimPrefix(href, "/")
	if idx := strings.IndexAny(segment, "/?"); idx >= 0 {
		segment = segment[:idx]
	}
	return !reservedSegments[segment]
}

func isSeeMore(anchor htmlutil.Anchor) bool {
	return seeMoreText.MatchString(anchor.Name)
}

type linkPage struct {
	category  string
	byHeading bool
}

func (p Parser) ParseFriendsPage(content string) (LinkMapResult, error) {
	return parseLinkPage(content, linkPage{category: CATEGORY_FRIENDS})
}

// ParseLikesPage groups liked pages under the heading preceding them.
func (p Parser) ParseLikesPage(content string) (LinkMapResult, error) {
	return parseLinkPage(content, linkPage{category: CATEGORY_LIKES, byHeading: true})
}

func (p Parser) ParseMutualFriendsPage(content string) (LinkMapResult, error) {
	return parseLinkPage(content, linkPage{category: CATEGORY_MUTUAL_FRIENDS})
}

func parseLinkPage(content string, page linkPage) (LinkMapResult, error) {
	doc, err := loadPage(content)
	if err != nil {
		return LinkMapResult{}, err
	}

	result := LinkMapResult{Content: NewLinkCategories()}
	add := func(category, link, name string) {
		links, ok := result.Content.Get(category)
		if !ok {
			links = om.New[string, string]()
			result.Content.Set(category, links)
		}
		links.Set(link, name)
	}

	// the friends center only identifies people by uid
	center := doc.Find("#friends_center_main").First()
	if center.Length() > 0 {
		for _, anchor := range htmlutil.GetAnchors(center.Find("a")) {
			if isSeeMore(anchor) {
				result.ContinuationLinks = append(result.ContinuationLinks, anchor.Href)
				continue
			}
			groups := uidParam.FindStringSubmatch(anchor.Href)
			if len(groups) < 2 {
				continue
			}
			add(page.category, groups[1], anchor.Name)
		}
		return result, nil
	}

	container := doc.Find("#root").First()
	if container.Length() == 0 {
		container = doc.Find("#objects_container").First()
	}
	if container.Length() == 0 {
		return LinkMapResult{}, unrecognized("no link container found")
	}

	category := page.category
	container.Find("h2, h3, h4, a").Each(func(_ int, sel *goquery.Selection) {
		if !sel.Is("a") {
			heading := htmlutil.Text(sel)
			if page.byHeading && heading != "" {
				category = heading
			}
			return
		}

		anchors := htmlutil.GetAnchors(sel)
		if len(anchors) == 0 {
			return
		}
		anchor := anchors[0]
		if isSeeMore(anchor) {
			result.ContinuationLinks = append(result.ContinuationLinks, anchor.Href)
			return
		}
		if anchor.Name == "" || !IsProfileLink(anchor.Href) {
			return
		}
		add(category, anchor.Href, anchor.Name)
	})

	return result, nil
}
