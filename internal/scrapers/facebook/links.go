package facebook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	BaseUrl     = "https://mbasic.facebook.com"
	presenceUrl = "https://5-edge-chat.facebook.com/pull"
)

// BuildCookie returns the cookie header the site expects from a logged in browser.
func BuildCookie(userId, xs string) string {
	return fmt.Sprintf("c_user=%s; xs=%s; noscript=1;", userId, xs)
}

// PresenceUrl builds the buddy list feed url, seq=1 asks for the full list
// instead of a diff.
func PresenceUrl(userId, clientId string) string {
	return fmt.Sprintf(
		"%s?channel=p_%s&seq=1&partition=-2&clientid=%s&cb=ze0&idle=0&qp=yisq=129169&msgs_recv=0&uid=%s&viewer_uid=%s&sticky_token=1058&sticky_pool=lla1c22_chat-proxy&state=active",
		presenceUrl, userId, clientId, userId, userId,
	)
}

var profileIdRef = regexp.MustCompile(`^/?profile\.php\?id=(\d+)`)

// NumericId returns the numeric id of a user reference, which is either the
// id itself or a "profile.php?id=<id>" link.
func NumericId(ref string) (int64, bool) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err == nil {
		return id, true
	}
	groups := profileIdRef.FindStringSubmatch(ref)
	if len(groups) < 2 {
		return 0, false
	}
	id, err = strconv.ParseInt(groups[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func username(ref string) string {
	return strings.Trim(ref, "/")
}

func FriendsUrl(userId string) string {
	return fmt.Sprintf("%s/profile.php?v=friends&id=%s", BaseUrl, userId)
}

func LikesUrl(ref string) string {
	if id, ok := NumericId(ref); ok {
		return fmt.Sprintf("%s/profile.php?v=likes&id=%d", BaseUrl, id)
	}
	return fmt.Sprintf("%s/%s?v=likes", BaseUrl, username(ref))
}

func AboutUrl(ref string) string {
	if id, ok := NumericId(ref); ok {
		return fmt.Sprintf("%s/profile.php?v=info&id=%d", BaseUrl, id)
	}
	return fmt.Sprintf("%s/%s/about", BaseUrl, username(ref))
}

func MutualFriendsUrl(viewerId string, userId int64) string {
	return fmt.Sprintf(
		"%s/profile.php?v=friends&mutual=1&lst=%s:%d:1&id=%d",
		BaseUrl, viewerId, userId, userId,
	)
}

func TimelineUrl(ref string) string {
	if id, ok := NumericId(ref); ok {
		return fmt.Sprintf("%s/profile.php?id=%d&v=timeline", BaseUrl, id)
	}
	return fmt.Sprintf("%s/%s?v=timeline", BaseUrl, username(ref))
}

const limitPlaceholder = "{limit}"

// reactionUrlTemplate leaves the page size as a placeholder so that retries
// can shrink it.
func reactionUrlTemplate(articleId int64) string {
	return fmt.Sprintf(
		"%s/ufi/reaction/profile/browser/fetch/?limit=%s&total_count=1000000&ft_ent_identifier=%d",
		BaseUrl, limitPlaceholder, articleId,
	)
}

func fillLimit(template string, limit int) string {
	return strings.Replace(template, limitPlaceholder, strconv.Itoa(limit), 1)
}

var trackingMarkers = []string{"&fref", "?fref", "?refid", "&refid"}

// Canonicalize strips volatile tracking parameters from a link, everything
// from the first tracking marker onwards is removed.
func Canonicalize(link string) string {
	cut := len(link)
	for _, marker := range trackingMarkers {
		idx := strings.Index(link, marker)
		if idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return link[:cut]
}

// ResolveLink makes a site relative link absolute, absolute links are returned as is.
func ResolveLink(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if strings.HasPrefix(link, "/") {
		return BaseUrl + link
	}
	return BaseUrl + "/" + link
}

// IsNonUser reports whether a liker reference points to a page or a group
// instead of a person.
func IsNonUser(ref string) bool {
	return strings.HasSuffix(ref, "/") || strings.Contains(ref, "profile.php?fan")
}
