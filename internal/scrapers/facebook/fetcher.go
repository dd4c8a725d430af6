package facebook

import (
	"context"
	"fbwatch/internal/components/assert"
	"fbwatch/internal/components/telemetry"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	om "github.com/wk8/go-ordered-map/v2"
)

const (
	report_fetcher_last_active_times      = "fetcher.fetch-last-active-times"
	report_fetcher_content_recursively    = "fetcher.fetch-content-recursively"
	report_fetcher_user_infos             = "fetcher.fetch-user-infos"
	report_fetcher_articles_from_timeline = "fetcher.fetch-articles-from-timeline"
	report_fetcher_likers_for_article     = "fetcher.fetch-likers-for-article"
)

const (
	presenceTimeout = time.Second * 15
	presenceRetries = 5

	likersPageSize = 500
	likersAttempts = 5
)

// the site paginates reactions 10 at a time, a continuation link asking for
// anything else is not one we know how to resize
var likersSentinel = regexp.MustCompile(`([?&])limit=10(&|$)`)

type FetcherOptions struct {
	UserId   string
	CookieXs string
	ClientId string
	// Timeout applies to every page request.
	Timeout time.Duration
}

// Fetcher drives the parsers over paginated pages. Every method owns its
// frontier and accumulator, nothing is shared between calls.
type Fetcher struct {
	downloader  Downloader
	parser      PageParser
	tel         telemetry.API
	userId      string
	cookie      string
	presenceUrl string
	timeout     time.Duration
}

func NewFetcher(downloader Downloader, parser PageParser, tel telemetry.API, opts FetcherOptions) *Fetcher {
	assert.NotNil(downloader)
	assert.NotNil(parser)
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.UserId)
	assert.NotEmptyStr(opts.CookieXs)
	assert.NotEmptyStr(opts.ClientId)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 15
	}

	return &Fetcher{
		downloader:  downloader,
		parser:      parser,
		tel:         telemetry.NewScopedAPI("facebook_fetcher", tel),
		userId:      opts.UserId,
		cookie:      BuildCookie(opts.UserId, opts.CookieXs),
		presenceUrl: PresenceUrl(opts.UserId, opts.ClientId),
		timeout:     timeout,
	}
}

func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	res, err := f.downloader.Fetch(ctx, FetchRequest{
		Cookie:  f.cookie,
		Url:     url,
		Timeout: f.timeout,
		Retries: 1,
	})
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// safeParse turns a parser panic into a recoverable failure.
func safeParse[T any](parse func(string) (T, error), content string) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverable(fmt.Errorf("parser panic: %v", r))
		}
	}()
	return parse(content)
}

// FetchLastActiveTimes never fails, any error results in an empty list.
func (f *Fetcher) FetchLastActiveTimes(ctx context.Context) []PresenceRecord {
	res, err := f.downloader.Fetch(ctx, FetchRequest{
		Cookie:  f.cookie,
		Url:     f.presenceUrl,
		Timeout: presenceTimeout,
		Retries: presenceRetries,
	})
	if err != nil {
		f.tel.ReportBroken(report_fetcher_last_active_times, fmt.Errorf("fetch: %w", err))
		return []PresenceRecord{}
	}

	records, err := safeParse(f.parser.ParseBuddyList, res.Body)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_last_active_times, err)
		return []PresenceRecord{}
	}
	f.tel.ReportCount(report_fetcher_last_active_times, int64(len(records)))
	return records
}

// FetchContentRecursively walks seed and every continuation link found on the
// way, depth first. A page that fails to download or parse is skipped, a
// fatal parse failure ends the walk with what has been collected so far.
func (f *Fetcher) FetchContentRecursively(
	ctx context.Context,
	seed string,
	parse func(content string) (LinkMapResult, error),
) LinkCategories {
	acc := NewLinkCategories()
	frontier := []string{seed}

	for len(frontier) > 0 {
		if ctx.Err() != nil {
			f.tel.ReportWarning(report_fetcher_content_recursively, ctx.Err(), seed)
			break
		}

		url := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		content, err := f.fetch(ctx, url)
		if err != nil {
			f.tel.ReportWarning(report_fetcher_content_recursively, fmt.Errorf("fetch: %w", err), url)
			continue
		}
		result, err := safeParse(parse, content)
		if IsFatal(err) {
			f.tel.ReportBroken(report_fetcher_content_recursively, err, url)
			break
		}
		if err != nil {
			f.tel.ReportWarning(report_fetcher_content_recursively, err, url)
			continue
		}

		mergeCategories(acc, result.Content)
		for _, link := range result.ContinuationLinks {
			frontier = append(frontier, ResolveLink(link))
		}
	}

	return acc
}

// mergeCategories canonicalizes every link of page into acc, a link that is
// already present keeps its position and takes the new name.
func mergeCategories(acc, page LinkCategories) {
	if page == nil {
		return
	}
	for category := page.Oldest(); category != nil; category = category.Next() {
		links, ok := acc.Get(category.Key)
		if !ok {
			links = om.New[string, string]()
			acc.Set(category.Key, links)
		}
		if category.Value == nil {
			continue
		}
		for link := category.Value.Oldest(); link != nil; link = link.Next() {
			links.Set(Canonicalize(link.Key), link.Value)
		}
	}
}

// flattenFriends merges every category into one friend list keyed by the
// profile link without its leading slash.
func flattenFriends(content LinkCategories) Friends {
	friends := om.New[string, Friend]()
	for category := content.Oldest(); category != nil; category = category.Next() {
		for link := category.Value.Oldest(); link != nil; link = link.Next() {
			friends.Set(strings.TrimPrefix(link.Key, "/"), Friend{Name: link.Value})
		}
	}
	return friends
}

// FetchUserFriendList returns the friends of the logged in user.
func (f *Fetcher) FetchUserFriendList(ctx context.Context) Friends {
	content := f.FetchContentRecursively(ctx, FriendsUrl(f.userId), f.parser.ParseFriendsPage)
	return flattenFriends(content)
}

// FetchLikedPages returns the pages liked by a user grouped by category.
func (f *Fetcher) FetchLikedPages(ctx context.Context, ref string) LinkCategories {
	return f.FetchContentRecursively(ctx, LikesUrl(ref), f.parser.ParseLikesPage)
}

func (f *Fetcher) FetchMutualFriends(ctx context.Context, userId int64) Friends {
	content := f.FetchContentRecursively(
		ctx,
		MutualFriendsUrl(f.userId, userId),
		f.parser.ParseMutualFriendsPage,
	)
	return flattenFriends(content)
}

type UserInfoOptions struct {
	Likes         bool
	MutualFriends bool
}

// FetchUserInfos fetches the about page of every reference (numeric id,
// "profile.php?id=<id>" or username) in order. A reference whose page cannot
// be fetched or parsed yields a record holding only its id when the id is
// known, otherwise it is left out.
func (f *Fetcher) FetchUserInfos(ctx context.Context, refs []string, opts UserInfoOptions) *om.OrderedMap[string, UserInfo] {
	f.tel.ReportDebug("fetching user infos", len(refs))

	infos := om.New[string, UserInfo]()
	for _, ref := range refs {
		if ctx.Err() != nil {
			f.tel.ReportWarning(report_fetcher_user_infos, ctx.Err())
			break
		}

		info, err := f.fetchUserInfo(ctx, ref, opts)
		if IsFatal(err) {
			f.tel.ReportBroken(report_fetcher_user_infos, err, ref)
			break
		}
		if err != nil {
			f.tel.ReportWarning(report_fetcher_user_infos, err, ref)
			if id, ok := NumericId(ref); ok {
				infos.Set(ref, UserInfo{Id: id})
			}
			continue
		}
		infos.Set(ref, info)
	}
	return infos
}

func (f *Fetcher) fetchUserInfo(ctx context.Context, ref string, opts UserInfoOptions) (UserInfo, error) {
	content, err := f.fetch(ctx, AboutUrl(ref))
	if err != nil {
		return UserInfo{}, fmt.Errorf("fetch about page: %w", err)
	}
	info, err := safeParse(f.parser.ParseAboutPage, content)
	if err != nil {
		return UserInfo{}, err
	}
	if _, numeric := NumericId(ref); !numeric {
		info.Username = username(ref)
	}

	if opts.Likes {
		info.PagedLikes = f.FetchLikedPages(ctx, strconv.FormatInt(info.Id, 10))
	}
	if opts.MutualFriends {
		info.MutualFriends = f.FetchMutualFriends(ctx, info.Id)
	}
	return info, nil
}

// FetchArticlesFromTimeline collects the posts of every user's timeline.
// Each user is crawled on its own, a failing user does not affect the others.
func (f *Fetcher) FetchArticlesFromTimeline(ctx context.Context, refs []string) *om.OrderedMap[string, Timeline] {
	timelines := om.New[string, Timeline]()
	for _, ref := range refs {
		if ctx.Err() != nil {
			f.tel.ReportWarning(report_fetcher_articles_from_timeline, ctx.Err())
			break
		}
		posts, err := f.fetchTimeline(ctx, ref)
		timelines.Set(ref, Timeline{Posts: posts})
		if IsFatal(err) {
			f.tel.ReportBroken(report_fetcher_articles_from_timeline, err, ref)
			break
		}
	}
	return timelines
}

func (f *Fetcher) fetchTimeline(ctx context.Context, ref string) (Posts, error) {
	posts := om.New[int64, PostRecord]()
	frontier := []string{TimelineUrl(ref)}
	first := true

	for len(frontier) > 0 {
		if ctx.Err() != nil {
			return posts, ctx.Err()
		}

		url := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		isFirst := first
		first = false

		content, err := f.fetch(ctx, url)
		if err != nil {
			f.tel.ReportWarning(report_fetcher_articles_from_timeline, fmt.Errorf("fetch: %w", err), url)
			continue
		}

		// older posts are bucketed by year and only linked from the first page
		if isFirst {
			years, err := safeParse(f.parser.ParseTimelineYearLinks, content)
			if IsFatal(err) {
				return posts, err
			}
			if err != nil {
				f.tel.ReportWarning(report_fetcher_articles_from_timeline, fmt.Errorf("year links: %w", err), url)
			}
			for i := len(years) - 1; i >= 0; i-- {
				frontier = append(frontier, ResolveLink(years[i]))
			}
		}

		result, err := safeParse(f.parser.ParseTimelinePage, content)
		if IsFatal(err) {
			return posts, err
		}
		if err != nil {
			f.tel.ReportWarning(report_fetcher_articles_from_timeline, err, url)
			continue
		}

		if result.Articles != nil {
			for article := result.Articles.Oldest(); article != nil; article = article.Next() {
				post := article.Value
				post.Page = ref
				posts.Set(article.Key, post)
			}
		}
		if result.ContinuationLink != "" {
			frontier = append(frontier, ResolveLink(result.ContinuationLink))
		}
	}

	return posts, nil
}

// FetchLikersForArticle returns the sorted, deduplicated people who reacted
// to a post. A page that keeps failing is retried with a smaller page size
// each attempt before it is given up on.
func (f *Fetcher) FetchLikersForArticle(ctx context.Context, articleId int64) []string {
	likers := map[string]bool{}
	frontier := []string{reactionUrlTemplate(articleId)}

	for len(frontier) > 0 {
		if ctx.Err() != nil {
			f.tel.ReportWarning(report_fetcher_likers_for_article, ctx.Err(), articleId)
			break
		}

		template := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		content, err := f.fetchLikersPage(ctx, template)
		if err != nil {
			f.tel.ReportBroken(report_fetcher_likers_for_article, err, articleId)
			continue
		}

		result, err := safeParse(f.parser.ParseReactionPage, content)
		if IsFatal(err) {
			f.tel.ReportBroken(report_fetcher_likers_for_article, err, articleId)
			break
		}
		if err != nil {
			f.tel.ReportWarning(report_fetcher_likers_for_article, err, articleId)
			continue
		}

		for _, liker := range result.Likers {
			likers[liker] = true
		}

		if result.ContinuationLink == "" {
			continue
		}
		if !likersSentinel.MatchString(result.ContinuationLink) {
			f.tel.ReportWarning(
				report_fetcher_likers_for_article,
				fmt.Errorf("unrecognized continuation link %q", result.ContinuationLink),
				articleId,
			)
			continue
		}
		next := likersSentinel.ReplaceAllString(result.ContinuationLink, "${1}limit="+limitPlaceholder+"${2}")
		frontier = append(frontier, ResolveLink(next))
	}

	out := make([]string, 0, len(likers))
	for liker := range likers {
		out = append(out, liker)
	}
	sort.Strings(out)
	return out
}

// fetchLikersPage requests a page of reactions with page sizes of
// likersPageSize / attempt.
func (f *Fetcher) fetchLikersPage(ctx context.Context, template string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= likersAttempts; attempt++ {
		url := fillLimit(template, likersPageSize/attempt)
		content, err := f.fetch(ctx, url)
		if err == nil {
			return content, nil
		}
		lastErr = err
		f.tel.ReportWarning(report_fetcher_likers_for_article, fmt.Errorf("fetch: %w", err), url, "attempt", attempt)
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("gave up after %d attempts: %w", likersAttempts, lastErr)
}

// FetchReactionsPerUser inverts the likers of every article into the
// articles liked by every user, pages and groups are left out when
// excludeNonUsers is set.
func (f *Fetcher) FetchReactionsPerUser(ctx context.Context, articles []PostRecord, excludeNonUsers bool) *om.OrderedMap[string, *UserReactions] {
	reactions := om.New[string, *UserReactions]()
	for _, article := range articles {
		if ctx.Err() != nil {
			break
		}
		for _, liker := range f.FetchLikersForArticle(ctx, article.PostId) {
			if excludeNonUsers && IsNonUser(liker) {
				continue
			}
			entry, ok := reactions.Get(liker)
			if !ok {
				entry = &UserReactions{}
				reactions.Set(liker, entry)
			}
			entry.Likes = append(entry.Likes, article)
		}
	}
	return reactions
}
