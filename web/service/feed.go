package service

import (
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
)

const feedCacheKey = "feed"

// FeedService renders a JSON feed of recent posts. The rendered document is
// cached briefly; permission state is never cached here or anywhere else.
type FeedService struct {
	postService PostService
}

var feedCache = gocache.New(time.Minute, 5*time.Minute)

type feedItem struct {
	Id       int    `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	URL      string `json:"url"`
}

type feed struct {
	Title string     `json:"title"`
	Items []feedItem `json:"items"`
}

// Get returns the rendered feed document.
func (s *FeedService) Get(basePath string) ([]byte, error) {
	if cached, ok := feedCache.Get(feedCacheKey); ok {
		return cached.([]byte), nil
	}

	posts, err := s.postService.RecentPosts(20)
	if err != nil {
		return nil, err
	}

	doc := feed{Title: "quill"}
	doc.Items = make([]feedItem, 0, len(posts))
	for _, post := range posts {
		item := feedItem{
			Id:       post.Id,
			Title:    post.Title,
			Subtitle: post.Subtitle,
			Date:     post.CreationDate,
			URL:      basePath + "post/" + strconv.Itoa(post.Id),
		}
		if post.Author != nil {
			item.Author = post.Author.Username
		}
		doc.Items = append(doc.Items, item)
	}

	rendered, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	feedCache.Set(feedCacheKey, rendered, gocache.DefaultExpiration)
	return rendered, nil
}

// Invalidate drops the cached document after a post mutation.
func (s *FeedService) Invalidate() {
	feedCache.Delete(feedCacheKey)
}
