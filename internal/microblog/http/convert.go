package http

import (
	"github.com/aussiebroadwan/microblog/internal/microblog/domain"
	"github.com/aussiebroadwan/microblog/pkg/microblogsdk"
)

const avatarSize = 128

func toUserResponse(u domain.User) microblogsdk.UserResponse {
	return microblogsdk.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		AboutMe:   u.AboutMe,
		AvatarURL: u.AvatarURL(avatarSize),
		LastSeen:  u.LastSeen,
		CreatedAt: u.CreatedAt,
	}
}

func toPostResponse(p domain.Post) microblogsdk.PostResponse {
	return microblogsdk.PostResponse{
		ID:        p.ID,
		Body:      p.Body,
		Timestamp: p.Timestamp,
		UserID:    p.UserID,
		Author:    p.Author,
		Language:  p.Language,
	}
}

func toPageResponse(pg domain.PostPage) microblogsdk.PostPageResponse {
	posts := make([]microblogsdk.PostResponse, 0, len(pg.Posts))
	for _, p := range pg.Posts {
		posts = append(posts, toPostResponse(p))
	}
	return microblogsdk.PostPageResponse{
		Posts:   posts,
		Page:    pg.Page,
		HasNext: pg.HasNext,
		HasPrev: pg.HasPrev,
	}
}
