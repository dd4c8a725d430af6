package facebook

import (
	"context"
	"errors"

	om "github.com/wk8/go-ordered-map/v2"
)

var errBoom = errors.New("boom")

type fakeResponse struct {
	body string
	err  error
}

func respond(body string) fakeResponse {
	return fakeResponse{body: body}
}

func fail() fakeResponse {
	return fakeResponse{err: TransportError{Url: "fake", Cause: errBoom}}
}

func repeat(n int, res fakeResponse) []fakeResponse {
	out := make([]fakeResponse, n)
	for i := range out {
		out[i] = res
	}
	return out
}

// fakeDownloader replies with the queued responses in order and records every request.
type fakeDownloader struct {
	responses []fakeResponse
	requests  []FetchRequest
}

func (d *fakeDownloader) Fetch(ctx context.Context, req FetchRequest) (Response, error) {
	d.requests = append(d.requests, req)
	if len(d.responses) == 0 {
		return Response{}, TransportError{Url: req.Url, Cause: errors.New("no response queued")}
	}
	res := d.responses[0]
	d.responses = d.responses[1:]
	if res.err != nil {
		return Response{}, res.err
	}
	return Response{Status: 200, Body: res.body}, nil
}

func (d *fakeDownloader) urls() []string {
	out := make([]string, len(d.requests))
	for i, req := range d.requests {
		out[i] = req.Url
	}
	return out
}

type step[T any] struct {
	result T
	err    error
	panics bool
}

func returns[T any](result T) step[T] {
	return step[T]{result: result}
}

func fails[T any]() step[T] {
	return step[T]{err: recoverable(ErrUnrecognizedPage)}
}

func panics[T any]() step[T] {
	return step[T]{panics: true}
}

// sequence hands out the queued steps in order and records the content
// every call was made with.
type sequence[T any] struct {
	steps []step[T]
	calls []string
}

func (s *sequence[T]) next(content string) (T, error) {
	s.calls = append(s.calls, content)
	var zero T
	if len(s.steps) == 0 {
		return zero, recoverable(errors.New("no result queued"))
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	if st.panics {
		panic("parser exploded")
	}
	return st.result, st.err
}

type fakeParser struct {
	buddyList sequence[[]PresenceRecord]
	about     sequence[UserInfo]
	friends   sequence[LinkMapResult]
	likes     sequence[LinkMapResult]
	mutual    sequence[LinkMapResult]
	timeline  sequence[TimelineResult]
	years     sequence[[]string]
	reactions sequence[ReactionResult]
}

func (p *fakeParser) ParseBuddyList(content string) ([]PresenceRecord, error) {
	return p.buddyList.next(content)
}

func (p *fakeParser) ParseAboutPage(content string) (UserInfo, error) {
	return p.about.next(content)
}

func (p *fakeParser) ParseFriendsPage(content string) (LinkMapResult, error) {
	return p.friends.next(content)
}

func (p *fakeParser) ParseLikesPage(content string) (LinkMapResult, error) {
	return p.likes.next(content)
}

func (p *fakeParser) ParseMutualFriendsPage(content string) (LinkMapResult, error) {
	return p.mutual.next(content)
}

func (p *fakeParser) ParseTimelinePage(content string) (TimelineResult, error) {
	return p.timeline.next(content)
}

func (p *fakeParser) ParseTimelineYearLinks(content string) ([]string, error) {
	return p.years.next(content)
}

func (p *fakeParser) ParseReactionPage(content string) (ReactionResult, error) {
	return p.reactions.next(content)
}

type linkEntry struct {
	Category string
	Link     string
	Name     string
}

// pageOf builds a LinkMapResult from entries, categories keep the order
// of their first entry.
func pageOf(continuation []string, entries ...linkEntry) LinkMapResult {
	content := NewLinkCategories()
	for _, e := range entries {
		links, ok := content.Get(e.Category)
		if !ok {
			links = om.New[string, string]()
			content.Set(e.Category, links)
		}
		links.Set(e.Link, e.Name)
	}
	return LinkMapResult{Content: content, ContinuationLinks: continuation}
}

func flattenLinks(content LinkCategories) []linkEntry {
	var out []linkEntry
	for category := content.Oldest(); category != nil; category = category.Next() {
		for link := category.Value.Oldest(); link != nil; link = link.Next() {
			out = append(out, linkEntry{Category: category.Key, Link: link.Key, Name: link.Value})
		}
	}
	return out
}

type friendEntry struct {
	Link string
	Name string
}

func flattenFriendList(friends Friends) []friendEntry {
	var out []friendEntry
	for pair := friends.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, friendEntry{Link: pair.Key, Name: pair.Value.Name})
	}
	return out
}

func postsOf(records ...PostRecord) Posts {
	posts := om.New[int64, PostRecord]()
	for _, r := range records {
		posts.Set(r.PostId, r)
	}
	return posts
}

func keysOf[K comparable, V any](m *om.OrderedMap[K, V]) []K {
	var out []K
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
