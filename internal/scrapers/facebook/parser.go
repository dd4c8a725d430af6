package facebook

import (
	"fbwatch/internal/components/chrono"
	"fbwatch/internal/components/telemetry"
	"fbwatch/pkg/htmlutil"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"github.com/goccy/go-json"
	om "github.com/wk8/go-ordered-map/v2"
)

const (
	report_parser_about_page = "parser.about-page"
)

// PageParser turns page content into typed results, every method is pure
// and returns a ParseError when the page is not what was expected.
//
// note: fault injection point
type PageParser interface {
	ParseBuddyList(content string) ([]PresenceRecord, error)
	ParseAboutPage(content string) (UserInfo, error)
	ParseFriendsPage(content string) (LinkMapResult, error)
	ParseLikesPage(content string) (LinkMapResult, error)
	ParseMutualFriendsPage(content string) (LinkMapResult, error)
	ParseTimelinePage(content string) (TimelineResult, error)
	ParseTimelineYearLinks(content string) ([]string, error)
	ParseReactionPage(content string) (ReactionResult, error)
}

// Parser is the PageParser for the basic mobile site.
type Parser struct {
	time  chrono.API
	dates DateParser
	tel   telemetry.API
}

func NewParser(time chrono.API, tel telemetry.API) Parser {
	tel = telemetry.NewScopedAPI("facebook_parser", tel)
	return Parser{
		time:  time,
		dates: NewDateParser(time, tel),
		tel:   tel,
	}
}

const errorPageMaxLen = 2000

var unavailablePhrases = []string{
	"temporarily unavailable",
	"content isn't available",
}

// loadPage parses html and rejects known error pages.
func loadPage(content string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, recoverable(fmt.Errorf("read html: %w", err))
	}

	if doc.Find(`form#login_form, input[name="pass"]`).Length() > 0 {
		return nil, ParseError{Kind: FAILURE_FATAL, Reason: ErrCookieExpired}
	}
	// error pages are short, long pages may quote the phrases in user content
	text := doc.Find("title").Text()
	if body := doc.Find("body").Text(); len(body) < errorPageMaxLen {
		text += " " + body
	}
	text = strings.ToLower(text)
	for _, phrase := range unavailablePhrases {
		if strings.Contains(text, phrase) {
			return nil, recoverable(ErrPageUnavailable)
		}
	}
	return doc, nil
}

const hijackingPrefix = "for (;;); "

// ParseBuddyList decodes the presence feed, users are sorted by id.
func (p Parser) ParseBuddyList(content string) ([]PresenceRecord, error) {
	payload := strings.Replace(content, hijackingPrefix, "", 1)

	var envelope struct {
		Ms []map[string]json.RawMessage `json:"ms"`
	}
	err := json.Unmarshal([]byte(payload), &envelope)
	if err != nil {
		return nil, unrecognized("decode presence payload: %v", err)
	}
	if envelope.Ms == nil {
		return nil, unrecognized("presence payload has no 'ms'")
	}

	merged := map[string]json.RawMessage{}
	for _, item := range envelope.Ms {
		for k, v := range item {
			merged[k] = v
		}
	}
	rawBuddies, ok := merged["buddyList"]
	if !ok {
		return nil, unrecognized("presence payload has no 'buddyList'")
	}

	var buddies map[string]struct {
		Lat *float64 `json:"lat"`
	}
	err = json.Unmarshal(rawBuddies, &buddies)
	if err != nil {
		return nil, unrecognized("decode buddy list: %v", err)
	}

	records := make([]PresenceRecord, 0, len(buddies))
	for userId, buddy := range buddies {
		record := PresenceRecord{UserId: userId, Times: []time.Time{}}
		if buddy.Lat != nil && int64(*buddy.Lat) != -1 {
			record.Times = append(record.Times, time.Unix(int64(*buddy.Lat), 0).In(p.time.Location()))
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UserId < records[j].UserId
	})
	return records, nil
}

// labeled fields of the about page, the label is the title attribute of the
// element holding the value.
var aboutFields = []string{
	"AIM", "Address", "BBM", "Birth Name", "Birthday",
	"Facebook", "Foursquare", "Gadu-Gadu", "Gender", "ICQ",
	"Instagram", "Interested in", "Languages", "LinkedIn",
	"Maiden Name", "Mobile", "Nickname", "Political Views",
	"Religious views", "Skype", "Snapchat", "Twitter", "VK",
	"Websites", "Windows Live Messenger", "Year of birth",
}

// ordered, the first phrase contained in the section wins
var relationshipStatuses = []string{
	"In an open relationship",
	"In a civil partnership",
	"In a domestic partnership",
	"In a relationship",
	"It's complicated",
	"Engaged",
	"Married",
	"Separated",
	"Divorced",
	"Widowed",
	"Single",
}

var aboutIdMarker = regexp.MustCompile(`lst=\d+%3A(\d+)%3A`)

func (p Parser) ParseAboutPage(content string) (UserInfo, error) {
	doc, err := loadPage(content)
	if err != nil {
		return UserInfo{}, err
	}

	groups := aboutIdMarker.FindStringSubmatch(content)
	if len(groups) < 2 {
		return UserInfo{}, unrecognized("about page has no profile id marker")
	}
	id, err := strconv.ParseInt(groups[1], 10, 64)
	if err != nil {
		return UserInfo{}, unrecognized("about page profile id: %v", err)
	}

	info := UserInfo{
		Id:      id,
		Name:    htmlutil.Text(doc.Find("title").First()),
		Contact: om.New[string, string](),
	}

	for _, field := range aboutFields {
		value := aboutField(doc, field)
		if value == "" {
			continue
		}
		switch field {
		case "Birthday":
			info.Birthday, info.YearOfBirth = p.splitBirthday(value)
		case "Year of birth":
			year, err := strconv.Atoi(value)
			if err != nil {
				p.tel.ReportWarning(report_parser_about_page, fmt.Errorf("year of birth %q: %w", value, err))
				continue
			}
			info.YearOfBirth = year
		case "Gender":
			info.Gender = value
		default:
			info.Contact.Set(field, value)
		}
	}

	info.Relationship = resolveRelationship(htmlutil.Text(doc.Find("div#relationship").First()))
	info.Work = firstEntry(doc.Find("div#work").First())
	info.Education = firstEntry(doc.Find("div#education").First())

	return info, nil
}

func aboutField(doc *goquery.Document, label string) string {
	sel := doc.Find(fmt.Sprintf(`div[title="%s"]`, label)).First()
	if sel.Length() == 0 {
		return ""
	}
	value := strings.Replace(sel.Text(), label, "", 1)
	value = strings.ReplaceAll(value, "\n", "")
	value = htmlutil.CleanText(value)
	value = strings.TrimSuffix(value, " · Edit")
	return strings.TrimSpace(value)
}

// splitBirthday separates "14 May 1984" into "14 May" and 1984, a birthday
// without a year is returned unchanged.
func (p Parser) splitBirthday(value string) (string, int) {
	parts := strings.Fields(value)
	if len(parts) != 3 {
		return value, 0
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		p.tel.ReportWarning(report_parser_about_page, fmt.Errorf("birthday %q: %w", value, err))
		return value, 0
	}
	return parts[0] + " " + parts[1], year
}

func resolveRelationship(section string) string {
	if section == "" {
		return ""
	}
	normalized := strings.ToLower(strings.ReplaceAll(section, "’", "'"))
	for _, status := range relationshipStatuses {
		if strings.Contains(normalized, strings.ToLower(status)) {
			return status
		}
	}

	value := strings.TrimSpace(strings.TrimPrefix(section, "Relationship"))
	best := ""
	bestScore := 0.0
	for _, status := range relationshipStatuses {
		score := matchr.JaroWinkler(strings.ToLower(value), strings.ToLower(status), false)
		if score > bestScore {
			best = status
			bestScore = score
		}
	}
	if bestScore >= 0.9 {
		return best
	}
	return ""
}

// firstEntry returns the first named link of an about page section.
func firstEntry(section *goquery.Selection) string {
	for _, anchor := range htmlutil.GetAnchors(section.Find("a")) {
		if anchor.Name == "" || strings.Contains(anchor.Href, "/editprofile") {
			continue
		}
		return anchor.Name
	}
	return ""
}
