// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64        `json:"id"`
	TenantID     int64        `json:"tenant_id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Name         string       `json:"name"`
	IsActive     bool         `json:"is_active"`
	LastLoginAt  sql.NullTime `json:"last_login_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Category struct {
	ID          int64         `json:"id"`
	TenantID    int64         `json:"tenant_id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	ParentID    sql.NullInt64 `json:"parent_id"`
	Position    int64         `json:"position"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Tag struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Article struct {
	ID              int64         `json:"id"`
	UUID            string        `json:"uuid"`
	TenantID        int64         `json:"tenant_id"`
	Slug            string        `json:"slug"`
	Title           string        `json:"title"`
	Excerpt         string        `json:"excerpt"`
	Body            string        `json:"body"`
	BodyHTML        string        `json:"body_html"`
	Status          string        `json:"status"`
	Visibility      string        `json:"visibility"`
	PasswordHash    string        `json:"-"`
	PublishedAt     sql.NullTime  `json:"published_at"`
	ScheduledAt     sql.NullTime  `json:"scheduled_at"`
	ExpiresAt       sql.NullTime  `json:"expires_at"`
	ViewCount       int64         `json:"view_count"`
	ShareCount      int64         `json:"share_count"`
	CommentCount    int64         `json:"comment_count"`
	RatingAverage   float64       `json:"rating_average"`
	RatingCount     int64         `json:"rating_count"`
	MetaTitle       string        `json:"meta_title"`
	MetaDescription string        `json:"meta_description"`
	MetaKeywords    string        `json:"meta_keywords"`
	AuthorID        int64         `json:"author_id"`
	CreatedBy       int64         `json:"created_by"`
	UpdatedBy       sql.NullInt64 `json:"updated_by"`
	ReviewedBy      sql.NullInt64 `json:"reviewed_by"`
	ReviewedAt      sql.NullTime  `json:"reviewed_at"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	DeletedAt       sql.NullTime  `json:"deleted_at"`
}

// ArticleCategory is a category attached to an article with pivot data.
type ArticleCategory struct {
	ArticleID  int64  `json:"article_id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	IsPrimary  bool   `json:"is_primary"`
	SortOrder  int64  `json:"sort_order"`
}

// ArticleTag is a tag attached to an article with pivot data.
type ArticleTag struct {
	ArticleID int64  `json:"article_id"`
	TagID     int64  `json:"tag_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	SortOrder int64  `json:"sort_order"`
}

type Comment struct {
	ID         int64         `json:"id"`
	ArticleID  int64         `json:"article_id"`
	ParentID   sql.NullInt64 `json:"parent_id"`
	UserID     sql.NullInt64 `json:"user_id"`
	GuestName  string        `json:"guest_name"`
	GuestEmail string        `json:"guest_email"`
	Body       string        `json:"body"`
	Status     string        `json:"status"`
	IpAddress  string        `json:"ip_address"`
	UserAgent  string        `json:"user_agent"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	DeletedAt  sql.NullTime  `json:"deleted_at"`
}

type ArticleRating struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	UserID    int64     `json:"user_id"`
	Rating    int64     `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ArticleShare struct {
	ID          int64         `json:"id"`
	UUID        string        `json:"uuid"`
	ArticleID   int64         `json:"article_id"`
	UserID      sql.NullInt64 `json:"user_id"`
	Method      string        `json:"method"`
	Platform    string        `json:"platform"`
	CountryCode string        `json:"country_code"`
	Converted   bool          `json:"converted"`
	ConvertedAt sql.NullTime  `json:"converted_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	DeletedAt   sql.NullTime  `json:"deleted_at"`
}

type ArticleHistory struct {
	ID        int64         `json:"id"`
	ArticleID int64         `json:"article_id"`
	Action    string        `json:"action"`
	UserID    sql.NullInt64 `json:"user_id"`
	Changes   string        `json:"changes"`
	CreatedAt time.Time     `json:"created_at"`
}

type File struct {
	ID            int64     `json:"id"`
	TenantID      int64     `json:"tenant_id"`
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	MimeType      string    `json:"mime_type"`
	Size          int64     `json:"size"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type FileDownloadDaily struct {
	ID     int64  `json:"id"`
	FileID int64  `json:"file_id"`
	Day    string `json:"day"`
	Count  int64  `json:"count"`
}

type ContactMessage struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	IpAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

type NewsletterSubscriber struct {
	ID             int64        `json:"id"`
	TenantID       int64        `json:"tenant_id"`
	Email          string       `json:"email"`
	Name           string       `json:"name"`
	Token          string       `json:"-"`
	ConfirmedAt    sql.NullTime `json:"confirmed_at"`
	UnsubscribedAt sql.NullTime `json:"unsubscribed_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type Job struct {
	ID          int64        `json:"id"`
	Type        string       `json:"type"`
	Payload     string       `json:"payload"`
	Status      string       `json:"status"`
	Attempts    int64        `json:"attempts"`
	MaxAttempts int64        `json:"max_attempts"`
	LastError   string       `json:"last_error"`
	RunAt       time.Time    `json:"run_at"`
	LockedAt    sql.NullTime `json:"locked_at"`
	CompletedAt sql.NullTime `json:"completed_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Event struct {
	ID         int64         `json:"id"`
	Level      string        `json:"level"`
	Category   string        `json:"category"`
	Message    string        `json:"message"`
	UserID     sql.NullInt64 `json:"user_id"`
	Metadata   string        `json:"metadata"`
	IpAddress  string        `json:"ip_address"`
	RequestUrl string        `json:"request_url"`
	CreatedAt  time.Time     `json:"created_at"`
}

type ApiKey struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	KeyHash    string       `json:"key_hash"`
	KeyPrefix  string       `json:"key_prefix"`
	IsActive   bool         `json:"is_active"`
	LastUsedAt sql.NullTime `json:"last_used_at"`
	ExpiresAt  sql.NullTime `json:"expires_at"`
	CreatedBy  int64        `json:"created_by"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type Webhook struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Url       string    `json:"url"`
	Secret    string    `json:"secret"`
	Events    string    `json:"events"`
	Headers   string    `json:"headers"`
	IsActive  bool      `json:"is_active"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WebhookDelivery struct {
	ID           int64          `json:"id"`
	WebhookID    int64          `json:"webhook_id"`
	Event        string         `json:"event"`
	Payload      string         `json:"payload"`
	ResponseCode sql.NullInt64  `json:"response_code"`
	ResponseBody sql.NullString `json:"response_body"`
	Attempts     int64          `json:"attempts"`
	NextRetryAt  sql.NullTime   `json:"next_retry_at"`
	DeliveredAt  sql.NullTime   `json:"delivered_at"`
	Status       string         `json:"status"`
	ErrorMessage sql.NullString `json:"error_message"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
