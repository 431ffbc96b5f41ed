package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
	"github.com/nongduongsteams-ai/app-chi-tieu/internal/session"
)

type categoryCard struct {
	ID           string
	CategoryName string
	Description  string
	Status       string
	TotalDisplay string
}

type categoriesData struct {
	pageData
	Categories []categoryCard
}

func (s *Server) handleCategoriesPage(w http.ResponseWriter, r *http.Request, u session.User) {
	var (
		categories    []core.CategoryRecord
		stats         core.Stats
		categoriesErr error
		statsErr      error
	)
	fetchPair(r.Context(),
		func(ctx context.Context) { categories, categoriesErr = s.fetchCategories(ctx) },
		func(ctx context.Context) { stats, statsErr = s.fetchStats(ctx) },
	)

	data := categoriesData{
		pageData: pageData{Active: "categories", User: u, Error: r.URL.Query().Get("error")},
	}
	if categoriesErr != nil {
		s.logger.ErrorContext(r.Context(), "Category list fetch failed", "error", categoriesErr)
		data.Error = categoriesErr.Error()
	}
	if statsErr != nil {
		s.logger.ErrorContext(r.Context(), "Stats fetch failed", "error", statsErr)
		if data.Error == "" {
			data.Error = statsErr.Error()
		}
	}

	for _, rec := range categories {
		// Totals come keyed by display name; a category with no
		// expenses simply reads zero.
		data.Categories = append(data.Categories, categoryCard{
			ID:           rec.ID.String(),
			CategoryName: rec.CategoryName,
			Description:  rec.Description,
			Status:       rec.Status,
			TotalDisplay: formatVND(stats.ByCategory[rec.CategoryName]),
		})
	}

	s.render(w, r, "categories.html", data)
}

func categoryFromForm(r *http.Request) (core.CategoryRecord, string) {
	name := sanitizeInput(r.PostFormValue("category_name"))
	if name == "" {
		return core.CategoryRecord{}, "Tên danh mục không được để trống"
	}
	status := r.PostFormValue("status")
	if status == "" {
		status = "active"
	}
	return core.CategoryRecord{
		CategoryName: name,
		Description:  sanitizeInput(r.PostFormValue("description")),
		Status:       status,
	}, ""
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request, u session.User) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/categories", "Biểu mẫu không hợp lệ")
		return
	}

	rec, msg := categoryFromForm(r)
	if msg != "" {
		redirectWithError(w, r, "/categories", msg)
		return
	}

	if err := s.store.AddCategory(r.Context(), rec); err != nil {
		s.logger.ErrorContext(r.Context(), "Add category failed", "error", err)
		redirectWithError(w, r, "/categories", err.Error())
		return
	}

	s.afterMutation(r.Context(), "addCategory", rec.ID, u.Email)
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (s *Server) handleEditCategory(w http.ResponseWriter, r *http.Request, u session.User) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/categories", "Biểu mẫu không hợp lệ")
		return
	}

	id := core.ID(strings.TrimSpace(r.PostFormValue("id")))
	if id == "" {
		redirectWithError(w, r, "/categories", "Thiếu mã danh mục")
		return
	}

	rec, msg := categoryFromForm(r)
	if msg != "" {
		redirectWithError(w, r, "/categories", msg)
		return
	}
	rec.ID = id

	if err := s.store.EditCategory(r.Context(), rec); err != nil {
		s.logger.ErrorContext(r.Context(), "Edit category failed", "error", err, "id", id.String())
		redirectWithError(w, r, "/categories", err.Error())
		return
	}

	s.afterMutation(r.Context(), "editCategory", id, u.Email)
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, u session.User) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/categories", "Biểu mẫu không hợp lệ")
		return
	}

	id := core.ID(strings.TrimSpace(r.PostFormValue("id")))
	if id == "" {
		redirectWithError(w, r, "/categories", "Thiếu mã danh mục")
		return
	}

	if err := s.store.DeleteCategory(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Delete category failed", "error", err, "id", id.String())
		redirectWithError(w, r, "/categories", err.Error())
		return
	}

	s.afterMutation(r.Context(), "deleteCategory", id, u.Email)
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}
