package facebook

import (
	"time"

	om "github.com/wk8/go-ordered-map/v2"
)

// PresenceRecord holds the last active times of one user, an empty Times
// means the presence feed reported no time for the user.
type PresenceRecord struct {
	UserId string      `json:"user_id"`
	Times  []time.Time `json:"times"`
}

type Friend struct {
	Name string `json:"name"`
}

// Friends maps a canonical profile link (without the leading slash) to the friend.
type Friends = *om.OrderedMap[string, Friend]

// LinkCategories maps a category name to canonical link -> display name.
type LinkCategories = *om.OrderedMap[string, *om.OrderedMap[string, string]]

func NewLinkCategories() LinkCategories {
	return om.New[string, *om.OrderedMap[string, string]]()
}

// LinkMapResult is a single friends, likes or mutual friends page.
type LinkMapResult struct {
	Content           LinkCategories
	ContinuationLinks []string
}

type UserInfo struct {
	Id            int64                          `json:"id"`
	Username      string                         `json:"username,omitempty"`
	Name          string                         `json:"name,omitempty"`
	Birthday      string                         `json:"birthday,omitempty"`
	YearOfBirth   int                            `json:"year_of_birth,omitempty"`
	Gender        string                         `json:"gender,omitempty"`
	Relationship  string                         `json:"relationship,omitempty"`
	Work          string                         `json:"work,omitempty"`
	Education     string                         `json:"education,omitempty"`
	Contact       *om.OrderedMap[string, string] `json:"contact,omitempty"`
	PagedLikes    LinkCategories                 `json:"paged_likes,omitempty"`
	MutualFriends Friends                        `json:"mutual_friends,omitempty"`
}

type PostRecord struct {
	PostId       int64     `json:"post_id"`
	Date         time.Time `json:"date"`
	DateOrg      string    `json:"date_org"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	// Page is the user reference whose timeline the post was found on.
	Page string `json:"page,omitempty"`
}

type Posts = *om.OrderedMap[int64, PostRecord]

type TimelineResult struct {
	Articles         Posts
	ContinuationLink string
}

type Timeline struct {
	Posts Posts `json:"posts"`
}

type ReactionResult struct {
	Likers []string
	// ContinuationLink is the "see more" link exactly as found in the page.
	ContinuationLink string
}

type UserReactions struct {
	Likes []PostRecord `json:"likes"`
}
