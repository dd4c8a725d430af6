package facebook

import (
	"fbwatch/pkg/htmlutil"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	om "github.com/wk8/go-ordered-map/v2"
)

// feed containers across the layouts the site has served, any of them may hold posts
var timelineContainers = strings.Join([]string{
	"#timelineBody",
	"#tlFeed",
	"#structured_composer_async_container",
	"#recent",
}, ", ")

const articleSelector = "article, div[role=article]"

var (
	reactionCount  = regexp.MustCompile(`(?i)(\d[\d,.]*)\s+reactions?`)
	commentCount   = regexp.MustCompile(`(?i)(\d[\d,.]*)\s+comments?`)
	timelineMore   = regexp.MustCompile(`(?i)^(show more|see more posts)`)
	yearLinkText   = regexp.MustCompile(`^\d{4}$`)
	groupSeparator = strings.NewReplacer(",", "", ".", "")
)

// ParseTimelinePage collects the posts of a timeline page. Articles without a
// date or without a reaction element are nested previews and are skipped.
func (p Parser) ParseTimelinePage(content string) (TimelineResult, error) {
	doc, err := loadPage(content)
	if err != nil {
		return TimelineResult{}, err
	}

	containers := doc.Find(timelineContainers)
	if containers.Length() == 0 {
		return TimelineResult{}, unrecognized("no timeline container found")
	}

	result := TimelineResult{Articles: om.New[int64, PostRecord]()}
	containers.Find(articleSelector).Each(func(_ int, article *goquery.Selection) {
		post, ok := p.parseArticle(article)
		if !ok {
			return
		}
		result.Articles.Set(post.PostId, post)
	})

	for _, anchor := range htmlutil.GetAnchors(doc.Find("a")) {
		if timelineMore.MatchString(anchor.Name) {
			result.ContinuationLink = anchor.Href
			break
		}
	}

	return result, nil
}

// ownFind finds the elements under article that do not belong to an article
// nested inside it.
func ownFind(article *goquery.Selection, selector string) *goquery.Selection {
	return article.Find(selector).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.Closest(articleSelector).IsSelection(article)
	})
}

func (p Parser) parseArticle(article *goquery.Selection) (PostRecord, bool) {
	date := ownFind(article, "abbr").First()
	if date.Length() == 0 {
		return PostRecord{}, false
	}
	like := ownFind(article, `[id^="like_"]`).First()
	if like.Length() == 0 {
		return PostRecord{}, false
	}
	likeId, _ := like.Attr("id")
	postId, err := strconv.ParseInt(strings.TrimPrefix(likeId, "like_"), 10, 64)
	if err != nil {
		return PostRecord{}, false
	}

	footer := ownFind(article, "footer").First()
	if footer.Length() == 0 {
		footer = like.Parent()
	}
	counts := htmlutil.Text(footer)
	if label, ok := like.Attr("aria-label"); ok {
		counts += " " + label
	}

	dateOrg := htmlutil.Text(date)
	return PostRecord{
		PostId:       postId,
		Date:         p.dates.Parse(dateOrg),
		DateOrg:      dateOrg,
		LikeCount:    countOf(reactionCount, counts),
		CommentCount: countOf(commentCount, counts),
	}, true
}

func countOf(pattern *regexp.Regexp, text string) int {
	groups := pattern.FindStringSubmatch(text)
	if len(groups) < 2 {
		return 0
	}
	n, err := strconv.Atoi(groupSeparator.Replace(groups[1]))
	if err != nil {
		return 0
	}
	return n
}

// ParseTimelineYearLinks returns the links of the year navigation, older
// posts are only reachable through them.
func (p Parser) ParseTimelineYearLinks(content string) ([]string, error) {
	doc, err := loadPage(content)
	if err != nil {
		return nil, err
	}

	var links []string
	seen := map[string]bool{}
	for _, anchor := range htmlutil.GetAnchors(doc.Find("a")) {
		if !yearLinkText.MatchString(anchor.Name) || seen[anchor.Href] {
			continue
		}
		seen[anchor.Href] = true
		links = append(links, anchor.Href)
	}
	return links, nil
}
