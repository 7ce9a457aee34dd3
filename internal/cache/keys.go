package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	PostKeyPrefix    = "post:%d"
	FeaturedPostsKey = "posts:featured"
	ForumsKey        = "forums:list"
)

const (
	UserTTL     = 5 * time.Minute
	PostTTL     = 30 * time.Minute
	FeaturedTTL = 2 * time.Minute
	ForumsTTL   = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	// Ban and badge changes alter listing output, so the featured selection
	// cached from it has to go too.
	Invalidate(ctx, FeaturedPostsKey)
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, FeaturedPostsKey)
}
