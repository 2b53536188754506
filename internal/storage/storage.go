package storage

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")

	ErrPostNotFound     = errors.New("post not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSettingNotFound  = errors.New("setting not found")

	// ErrSlugTaken is surfaced when the unique constraint on posts.slug
	// fires at insert/update time. The slug resolver treats it as a lost
	// race and re-resolves.
	ErrSlugTaken = errors.New("slug already taken")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)
