// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Querier is the storage port consumed by services. *Queries implements it
// for both plain connections and transactions.
type Querier interface {
	AddCategoryToArticle(ctx context.Context, arg AddCategoryToArticleParams) error
	AddTagToArticle(ctx context.Context, arg AddTagToArticleParams) error
	AdjustArticleCounter(ctx context.Context, id int64, column CounterColumn, delta int64) (int64, error)
	ArticleSlugExists(ctx context.Context, tenantID int64, slug string) (int64, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	CategorySlugExists(ctx context.Context, tenantID int64, slug string) (int64, error)
	ClaimNextJob(ctx context.Context, now time.Time) (Job, error)
	ClearArticleCategories(ctx context.Context, articleID int64) error
	ClearArticleTags(ctx context.Context, articleID int64) error
	CompleteJob(ctx context.Context, id int64, now time.Time) error
	ConfirmSubscriber(ctx context.Context, id int64, now time.Time) error
	CountArticleHistory(ctx context.Context, articleID int64) (int64, error)
	CountArticles(ctx context.Context, arg ListArticlesParams) (int64, error)
	CountCommentsForArticle(ctx context.Context, articleID int64, status string) (int64, error)
	CountJobsByStatus(ctx context.Context, status, jobType string) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateAPIKey(ctx context.Context, arg CreateAPIKeyParams) (ApiKey, error)
	CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error)
	CreateArticleHistory(ctx context.Context, arg CreateArticleHistoryParams) error
	CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error)
	CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error)
	CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error)
	CreateEvent(ctx context.Context, arg CreateEventParams) (int64, error)
	CreateFile(ctx context.Context, arg CreateFileParams) (File, error)
	CreateJob(ctx context.Context, arg CreateJobParams) (int64, error)
	CreatePermission(ctx context.Context, name, description string, now time.Time) (Permission, error)
	CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error)
	CreateShare(ctx context.Context, arg CreateShareParams) (ArticleShare, error)
	CreateSubscriber(ctx context.Context, arg CreateSubscriberParams) (NewsletterSubscriber, error)
	CreateTag(ctx context.Context, arg CreateTagParams) (Tag, error)
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	CreateWebhook(ctx context.Context, arg CreateWebhookParams) (Webhook, error)
	CreateWebhookDelivery(ctx context.Context, arg CreateWebhookDeliveryParams) (WebhookDelivery, error)
	DeactivateAPIKey(ctx context.Context, id int64, now time.Time) error
	DeleteCategory(ctx context.Context, id int64) error
	DeleteFinishedJobs(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOldEvents(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteRating(ctx context.Context, articleID, userID int64) (int64, error)
	DeleteTag(ctx context.Context, id int64) error
	FailJob(ctx context.Context, id int64, lastError string, now time.Time) error
	GetAPIKeyByHash(ctx context.Context, keyHash string) (ApiKey, error)
	GetArticle(ctx context.Context, id int64) (Article, error)
	GetArticleBySlug(ctx context.Context, tenantID int64, slug string) (Article, error)
	GetArticleCounter(ctx context.Context, id int64, column CounterColumn) (int64, error)
	GetArticleWithTrashed(ctx context.Context, id int64) (Article, error)
	GetCategoriesForArticle(ctx context.Context, articleID int64) ([]ArticleCategory, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	GetCategoryBySlug(ctx context.Context, tenantID int64, slug string) (Category, error)
	GetComment(ctx context.Context, id int64) (Comment, error)
	GetCommentWithTrashed(ctx context.Context, id int64) (Comment, error)
	GetContactMessage(ctx context.Context, id int64) (ContactMessage, error)
	GetFile(ctx context.Context, id int64) (File, error)
	GetJob(ctx context.Context, id int64) (Job, error)
	GetPermissionByName(ctx context.Context, name string) (Permission, error)
	GetPermissionNamesForUser(ctx context.Context, userID int64) ([]string, error)
	GetRating(ctx context.Context, articleID, userID int64) (ArticleRating, error)
	GetRoleBySlug(ctx context.Context, slug string) (Role, error)
	GetRolesForUser(ctx context.Context, userID int64) ([]Role, error)
	GetShare(ctx context.Context, id int64) (ArticleShare, error)
	GetShareByUUID(ctx context.Context, uuid string) (ArticleShare, error)
	GetShareWithTrashed(ctx context.Context, id int64) (ArticleShare, error)
	GetSubscriberByEmail(ctx context.Context, tenantID int64, email string) (NewsletterSubscriber, error)
	GetSubscriberByToken(ctx context.Context, token string) (NewsletterSubscriber, error)
	GetTag(ctx context.Context, id int64) (Tag, error)
	GetTagsForArticle(ctx context.Context, articleID int64) ([]ArticleTag, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetWebhook(ctx context.Context, id int64) (Webhook, error)
	GetWebhookDelivery(ctx context.Context, id int64) (WebhookDelivery, error)
	GrantPermission(ctx context.Context, roleID, permissionID int64) error
	IncrementFileDownloadCount(ctx context.Context, id int64) (int64, error)
	InsertFileDownloadDaily(ctx context.Context, fileID int64, day string) error
	ListActiveSubscribers(ctx context.Context, tenantID int64) ([]NewsletterSubscriber, error)
	ListArticleHistory(ctx context.Context, articleID, limit, offset int64) ([]ArticleHistory, error)
	ListArticles(ctx context.Context, arg ListArticlesParams) ([]Article, error)
	ListCategories(ctx context.Context, tenantID int64) ([]Category, error)
	ListCommentsForArticle(ctx context.Context, arg ListCommentsForArticleParams) ([]Comment, error)
	ListContactMessages(ctx context.Context, tenantID, limit, offset int64) ([]ContactMessage, error)
	ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error)
	ListExpiredArticles(ctx context.Context, now time.Time) ([]Article, error)
	ListFileDownloadDaily(ctx context.Context, fileID int64, fromDay string) ([]FileDownloadDaily, error)
	ListDeliveriesForWebhook(ctx context.Context, webhookID, limit int64) ([]WebhookDelivery, error)
	ListPendingDeliveries(ctx context.Context, now time.Time, limit int64) ([]WebhookDelivery, error)
	ListScheduledArticlesDue(ctx context.Context, now time.Time) ([]Article, error)
	ListTags(ctx context.Context, tenantID int64) ([]Tag, error)
	ListWebhooks(ctx context.Context) ([]Webhook, error)
	ListWebhooksForEvent(ctx context.Context, event sql.NullString) ([]Webhook, error)
	MarkShareConverted(ctx context.Context, id int64, now time.Time) (int64, error)
	MoveShare(ctx context.Context, id, articleID int64, now time.Time) error
	RecalculateArticleRating(ctx context.Context, articleID int64, now time.Time) error
	RecountApprovedComments(ctx context.Context, articleID int64) error
	RecountShares(ctx context.Context, articleID int64) error
	RecoverStaleJobs(ctx context.Context, cutoff, now time.Time) (int64, error)
	RestoreArticle(ctx context.Context, id int64, userID sql.NullInt64, now time.Time) (int64, error)
	RestoreComment(ctx context.Context, id int64, now time.Time) (int64, error)
	RestoreShare(ctx context.Context, id int64, now time.Time) (int64, error)
	ResubscribeSubscriber(ctx context.Context, id int64, name, token string, now time.Time) error
	RetryJob(ctx context.Context, id int64, lastError string, runAt, now time.Time) error
	SetWebhookActive(ctx context.Context, id int64, active bool, now time.Time) (int64, error)
	ShareStatsForArticle(ctx context.Context, articleID int64) ([]ShareMethodCount, error)
	SoftDeleteArticle(ctx context.Context, id int64, userID sql.NullInt64, now time.Time) (int64, error)
	SoftDeleteComment(ctx context.Context, id int64, now time.Time) (int64, error)
	SoftDeleteShare(ctx context.Context, id int64, now time.Time) (int64, error)
	TagSlugExists(ctx context.Context, tenantID int64, slug string) (int64, error)
	UnsubscribeSubscriber(ctx context.Context, id int64, now time.Time) (int64, error)
	UpdateAPIKeyLastUsed(ctx context.Context, arg UpdateAPIKeyLastUsedParams) error
	UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error)
	UpdateArticleMeta(ctx context.Context, arg UpdateArticleMetaParams) error
	UpdateArticleStatus(ctx context.Context, arg UpdateArticleStatusParams) (int64, error)
	UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error)
	UpdateComment(ctx context.Context, arg UpdateCommentParams) (Comment, error)
	UpdateContactMessageStatus(ctx context.Context, id int64, status string) error
	UpdateDeliveryDead(ctx context.Context, arg UpdateDeliveryDeadParams) error
	UpdateDeliveryRetry(ctx context.Context, arg UpdateDeliveryRetryParams) error
	UpdateDeliverySuccess(ctx context.Context, arg UpdateDeliverySuccessParams) error
	UpdateFileDownloadDaily(ctx context.Context, fileID int64, day string) (int64, error)
	UpdateTag(ctx context.Context, arg UpdateTagParams) (Tag, error)
	UpdateUserLastLogin(ctx context.Context, id int64, now time.Time) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string, now time.Time) error
	UpsertRating(ctx context.Context, arg UpsertRatingParams) error
	UserHasPermission(ctx context.Context, userID int64, names []string) (bool, error)
	UserHasRole(ctx context.Context, userID int64, names []string) (bool, error)
}

var _ Querier = (*Queries)(nil)

// TxStore is a Querier that can also run several statements atomically.
type TxStore interface {
	Querier
	ExecTx(ctx context.Context, fn func(Querier) error) error
}

var _ TxStore = (*Store)(nil)
