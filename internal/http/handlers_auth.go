package http

import (
	"net/http"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/session"
)

type loginData struct {
	GoogleClientID string
	Error          string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.Load(r.Context()); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, "login.html", loginData{
		GoogleClientID: s.googleClientID,
		Error:          r.URL.Query().Get("error"),
	})
}

// handleAuthCallback receives the sign-in provider's POST carrying the ID
// token in the credential form field, decodes the profile and opens the
// session.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/login", "Yêu cầu đăng nhập không hợp lệ")
		return
	}

	credential := r.PostFormValue("credential")
	if credential == "" {
		redirectWithError(w, r, "/login", "Thiếu thông tin đăng nhập")
		return
	}

	u, err := session.DecodeIdentity(credential)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Identity token decode failed", "error", err)
		redirectWithError(w, r, "/login", "Không đọc được thông tin đăng nhập")
		return
	}
	u.Platform = session.SniffPlatform(r.Header.Get("User-Agent"))

	if err := s.sessions.Save(r.Context(), u); err != nil {
		s.logger.ErrorContext(r.Context(), "Session save failed", "error", err, "email", u.Email)
		redirectWithError(w, r, "/login", "Không lưu được phiên đăng nhập")
		return
	}

	s.logger.InfoContext(r.Context(), "User signed in", "email", u.Email, "platform", u.Platform)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Session delete failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
