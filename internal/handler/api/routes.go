// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/olib-go/internal/middleware"
)

// Routes returns the /api/v1 router. Authentication, CSRF and rate limiting
// are applied by the caller so health and metrics share them.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.With(h.login.Middleware()).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(middleware.RequireUser).Get("/me", h.Me)
		r.With(middleware.RequireUser).Post("/api-keys", h.CreateAPIKey)
	})

	r.Route("/articles", func(r chi.Router) {
		r.Get("/", h.ListArticles)
		r.With(middleware.RequireUser).Post("/", h.CreateArticle)
		r.Get("/slug/{slug}", h.GetArticleBySlug)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetArticle)
			r.Post("/unlock", h.UnlockArticle)
			r.Post("/views", h.RegisterView)
			r.Get("/comments", h.ListComments)
			r.Get("/shares/stats", h.ShareStats)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Patch("/", h.UpdateArticle)
				r.Delete("/", h.DeleteArticle)
				r.Post("/restore", h.RestoreArticle)
				r.Post("/submit", h.SubmitArticle)
				r.Post("/publish", h.PublishArticle)
				r.Post("/unpublish", h.UnpublishArticle)
				r.Post("/archive", h.ArchiveArticle)
				r.Post("/duplicate", h.DuplicateArticle)
				r.Get("/stats", h.ArticleStats)
				r.Get("/history", h.ArticleHistory)
				r.Get("/rating", h.MyRating)
				r.Put("/rating", h.Rate)
				r.Delete("/rating", h.RemoveRating)
			})
		})
	})

	r.Route("/comments", func(r chi.Router) {
		r.Post("/", h.CreateComment)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Patch("/{id}", h.UpdateComment)
			r.Post("/{id}/moderate", h.ModerateComment)
			r.Delete("/{id}", h.DeleteComment)
			r.Post("/{id}/restore", h.RestoreComment)
		})
	})

	r.Route("/shares", func(r chi.Router) {
		r.Post("/", h.CreateShare)
		r.Post("/{uuid}/convert", h.ConvertShare)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/{id}/move", h.MoveShare)
			r.Delete("/{id}", h.DeleteShare)
			r.Post("/{id}/restore", h.RestoreShare)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/", h.CreateCategory)
			r.Patch("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.ListTags)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/", h.CreateTag)
			r.Patch("/{id}", h.RenameTag)
			r.Delete("/{id}", h.DeleteTag)
		})
	})

	r.Get("/files/{id}/download", h.DownloadFile)
	r.With(middleware.RequireUser).Get("/files/{id}/stats", h.FileStats)

	r.Post("/contact", h.SubmitContact)

	r.Route("/newsletter", func(r chi.Router) {
		r.Post("/subscribe", h.Subscribe)
		r.Get("/confirm", h.ConfirmSubscription)
		r.Get("/unsubscribe", h.Unsubscribe)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/webhooks", h.ListWebhooks)
		r.Post("/webhooks", h.CreateWebhook)
		r.Patch("/webhooks/{id}", h.SetWebhookActive)
		r.Get("/webhooks/{id}/deliveries", h.ListDeliveries)
		r.Get("/contact", h.ListContactMessages)
		r.Post("/contact/{id}/read", h.MarkContactRead)
		r.Get("/events", h.ListEvents)
	})

	return r
}
