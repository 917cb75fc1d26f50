package http

import (
	"net/http"
	"time"

	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/m-mizutani/goerr/v2"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password" masq:"secret"`
}

type userResponse struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type loginResponse struct {
	Token     string       `json:"token" masq:"secret"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      userResponse `json:"user"`
}

func toUserResponse(token *auth.Token) userResponse {
	return userResponse{Sub: token.Sub, Name: token.Name, Role: token.Role}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := s.authUC.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	resp := loginResponse{
		Token: result.Bearer,
		User:  toUserResponse(result.Token),
	}
	if !result.Token.ExpiresAt.IsZero() {
		resp.ExpiresAt = &result.Token.ExpiresAt
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.authUC.Logout(ctx, bearerToken(r)); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, nil)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, err := auth.TokenFromContext(ctx)
	if err != nil {
		writeError(ctx, w, goerr.Wrap(model.ErrUnauthenticated, "no session", goerr.V("reason", err.Error())))
		return
	}
	writeJSON(ctx, w, http.StatusOK, toUserResponse(token))
}
