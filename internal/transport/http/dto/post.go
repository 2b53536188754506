package dto

import "darkroom/internal/domain/models"

type CreatePostRequest struct {
	Title         string  `json:"title" validate:"required,min=1,max=300"`
	Slug          string  `json:"slug" validate:"omitempty,max=300"`
	Excerpt       string  `json:"excerpt"`
	Content       string  `json:"content" validate:"required"`
	FeaturedImage *string `json:"featured_image"`
	PostType      string  `json:"post_type" validate:"omitempty,oneof=article video audio"`
	VideoURL      *string `json:"video_url" validate:"omitempty,url"`
	AudioURL      *string `json:"audio_url" validate:"omitempty,url"`
	CategoryID    int64   `json:"category_id" validate:"required,gt=0"`
}

type UpdatePostRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=300"`
	Slug          *string `json:"slug" validate:"omitempty,max=300"`
	Excerpt       *string `json:"excerpt"`
	Content       *string `json:"content"`
	FeaturedImage *string `json:"featured_image"`
	PostType      *string `json:"post_type" validate:"omitempty,oneof=article video audio"`
	VideoURL      *string `json:"video_url"`
	AudioURL      *string `json:"audio_url"`
	CategoryID    *int64  `json:"category_id" validate:"omitempty,gt=0"`
	Status        *string `json:"status" validate:"omitempty,oneof=draft pending published"`
}

type PostResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Slug          string  `json:"slug"`
	Excerpt       string  `json:"excerpt,omitempty"`
	Content       string  `json:"content,omitempty"`
	FeaturedImage *string `json:"featured_image,omitempty"`
	PostType      string  `json:"post_type"`
	VideoURL      *string `json:"video_url,omitempty"`
	AudioURL      *string `json:"audio_url,omitempty"`
	CategoryID    int64   `json:"category_id"`
	Category      string  `json:"category,omitempty"`
	Status        string  `json:"status"`
	ViewCount     int64   `json:"view_count"`
	PublishedAt   *string `json:"published_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func NewPostResponse(p *models.Post) PostResponse {
	resp := PostResponse{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		Content:       p.Content,
		FeaturedImage: p.FeaturedImage,
		PostType:      string(p.PostType),
		VideoURL:      p.VideoURL,
		AudioURL:      p.AudioURL,
		CategoryID:    p.CategoryID,
		Status:        string(p.Status),
		ViewCount:     p.ViewCount,
		CreatedAt:     p.CreatedAt.Format(timeLayout),
		UpdatedAt:     p.UpdatedAt.Format(timeLayout),
	}
	if p.Category != nil {
		resp.Category = p.Category.Name
	}
	if p.PublishedAt != nil {
		s := p.PublishedAt.Format(timeLayout)
		resp.PublishedAt = &s
	}
	return resp
}

func NewPostListResponse(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, NewPostResponse(&posts[i]))
	}
	return out
}

type PostStatsResponse struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Pending   int64 `json:"pending"`
	Draft     int64 `json:"draft"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
	Slug string `json:"slug" validate:"omitempty,max=120"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func NewCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

type RepairSlugsResponse struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
}
