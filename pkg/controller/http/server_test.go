package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	server "github.com/incubo-lab/pitchreview/pkg/controller/http"
	"github.com/incubo-lab/pitchreview/pkg/repository/memory"
	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/m-mizutani/gt"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type client struct {
	t      *testing.T
	srv    http.Handler
	bearer string
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(c.t, err).Required()
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	w := httptest.NewRecorder()
	c.srv.ServeHTTP(w, req)

	var env envelope
	gt.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env)).Required()
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(env.Data, &v)).Required()
	return v
}

type project struct {
	ID           string   `json:"id"`
	ProjectName  string   `json:"project_name"`
	Status       string   `json:"status"`
	TotalScore   *float64 `json:"total_score"`
	ReviewResult string   `json:"review_result"`
}

type sheet struct {
	Version    int64   `json:"version"`
	TotalScore float64 `json:"total_score"`
	Dimensions []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"dimensions"`
}

type draft struct {
	Actor   string   `json:"actor"`
	State   string   `json:"state"`
	Draft   *sheet   `json:"draft"`
	Changed []string `json:"changed_dimensions"`
}

type commitResult struct {
	Sheet   sheet   `json:"sheet"`
	Project project `json:"project"`
}

func newNoAuthServer(t *testing.T) *client {
	t.Helper()
	uc := usecase.New(memory.New())
	return &client{t: t, srv: server.New(uc)}
}

func createProject(t *testing.T, c *client, name string) project {
	t.Helper()
	code, env := c.do(http.MethodPost, "/api/v1/projects", map[string]string{
		"enterprise_name": name + " Ltd.",
		"project_name":    name,
	})
	gt.V(t, code).Equal(http.StatusCreated)
	return decode[project](t, env)
}

func TestServer_ProjectCRUD(t *testing.T) {
	c := newNoAuthServer(t)

	p := createProject(t, c, "Robotics")
	gt.S(t, p.Status).Equal("processing")
	gt.V(t, p.TotalScore).Nil()

	code, env := c.do(http.MethodGet, "/api/v1/projects/"+p.ID, nil)
	gt.V(t, code).Equal(http.StatusOK)
	gt.S(t, decode[project](t, env).ProjectName).Equal("Robotics")

	code, env = c.do(http.MethodPut, "/api/v1/projects/"+p.ID, map[string]string{
		"enterprise_name": "Robotics Inc.",
		"project_name":    "Robotics v2",
	})
	gt.V(t, code).Equal(http.StatusOK)
	gt.S(t, decode[project](t, env).ProjectName).Equal("Robotics v2")

	code, _ = c.do(http.MethodPut, "/api/v1/projects/"+p.ID+"/team-members", map[string]string{
		"team_members": "Alice (CEO), Bob (CTO)",
	})
	gt.V(t, code).Equal(http.StatusOK)

	code, env = c.do(http.MethodGet, "/api/v1/projects?page=1&size=10&search=robot", nil)
	gt.V(t, code).Equal(http.StatusOK)
	page := decode[struct {
		Items []project `json:"items"`
		Total int       `json:"total"`
	}](t, env)
	gt.V(t, page.Total).Equal(1)

	code, env = c.do(http.MethodGet, "/api/v1/projects/statistics", nil)
	gt.V(t, code).Equal(http.StatusOK)
	stats := decode[struct {
		Counts map[string]int `json:"counts"`
		Total  int            `json:"total"`
	}](t, env)
	gt.V(t, stats.Total).Equal(1)
	gt.V(t, stats.Counts["processing"]).Equal(1)
	gt.V(t, stats.Counts["completed"]).Equal(0)

	code, _ = c.do(http.MethodDelete, "/api/v1/projects/"+p.ID, nil)
	gt.V(t, code).Equal(http.StatusOK)

	code, env = c.do(http.MethodGet, "/api/v1/projects/"+p.ID, nil)
	gt.V(t, code).Equal(http.StatusNotFound)
	gt.V(t, env.Code).Equal(http.StatusNotFound)
}

func TestServer_ValidationErrors(t *testing.T) {
	c := newNoAuthServer(t)

	code, env := c.do(http.MethodPost, "/api/v1/projects", map[string]string{"project_name": "x"})
	gt.V(t, code).Equal(http.StatusBadRequest)
	gt.A(t, env.Errors).Length(1)
	gt.S(t, env.Errors[0].Field).Equal("enterprise_name")

	code, _ = c.do(http.MethodGet, "/api/v1/projects?page=abc", nil)
	gt.V(t, code).Equal(http.StatusBadRequest)

	code, _ = c.do(http.MethodGet, "/api/v1/projects?page=1844674407370955161&size=10", nil)
	gt.V(t, code).Equal(http.StatusBadRequest)

	code, _ = c.do(http.MethodGet, "/api/v1/projects?status=archived", nil)
	gt.V(t, code).Equal(http.StatusBadRequest)

	code, _ = c.do(http.MethodPost, "/api/v1/projects", map[string]string{"unknown": "field"})
	gt.V(t, code).Equal(http.StatusBadRequest)

	code, _ = c.do(http.MethodPost, "/api/v1/projects", nil)
	gt.V(t, code).Equal(http.StatusBadRequest)

	code, _ = c.do(http.MethodGet, "/api/v1/nowhere", nil)
	gt.V(t, code).Equal(http.StatusNotFound)
}

func TestServer_ScoreEditFlow(t *testing.T) {
	c := newNoAuthServer(t)
	p := createProject(t, c, "Fintech")
	base := "/api/v1/projects/" + p.ID + "/scores"

	code, env := c.do(http.MethodPost, base+"/draft", nil)
	gt.V(t, code).Equal(http.StatusOK)
	d := decode[draft](t, env)
	gt.S(t, d.State).Equal("editing")
	gt.S(t, d.Actor).Equal("anonymous")

	for dim, score := range map[string]float64{
		"team": 28, "product_technology": 18, "market": 18, "business_model": 18, "financial": 6,
	} {
		code, _ = c.do(http.MethodPatch, base+"/draft/dimensions/"+dim, map[string]any{"score": score})
		gt.V(t, code).Equal(http.StatusOK)
	}

	code, env = c.do(http.MethodPatch, base+"/draft/dimensions/financial", map[string]any{"score": 999, "comment": "audited"})
	gt.V(t, code).Equal(http.StatusOK)
	d = decode[draft](t, env)
	gt.V(t, d.Draft.TotalScore).Equal(92.0)

	code, env = c.do(http.MethodPatch, base+"/draft/dimensions/financial", map[string]any{"score": 6})
	gt.V(t, code).Equal(http.StatusOK)

	code, _ = c.do(http.MethodPatch, base+"/draft/dimensions/legal", map[string]any{"score": 1})
	gt.V(t, code).Equal(http.StatusBadRequest)

	// committed scores are unchanged until commit
	code, env = c.do(http.MethodGet, base, nil)
	gt.V(t, code).Equal(http.StatusOK)
	gt.V(t, decode[sheet](t, env).TotalScore).Equal(0.0)

	code, env = c.do(http.MethodPost, base+"/draft/commit", map[string]string{"note": "initial review"})
	gt.V(t, code).Equal(http.StatusOK)
	result := decode[commitResult](t, env)
	gt.V(t, result.Sheet.TotalScore).Equal(88.0)
	gt.V(t, result.Sheet.Version).Equal(int64(1))
	gt.S(t, result.Project.Status).Equal("completed")
	gt.S(t, result.Project.ReviewResult).Equal("pass")

	code, _ = c.do(http.MethodGet, base+"/draft", nil)
	gt.V(t, code).Equal(http.StatusConflict)

	code, env = c.do(http.MethodGet, base+"/history", nil)
	gt.V(t, code).Equal(http.StatusOK)
	gt.A(t, decode[[]map[string]any](t, env)).Length(1)

	code, env = c.do(http.MethodGet, base+"/summary", nil)
	gt.V(t, code).Equal(http.StatusOK)
	summary := decode[struct {
		OverallPercentage float64 `json:"overall_percentage"`
		Status            string  `json:"status"`
	}](t, env)
	gt.V(t, summary.OverallPercentage).Equal(88.0)
	gt.S(t, summary.Status).Equal("completed")

	// cancel discards a second draft
	code, _ = c.do(http.MethodPost, base+"/draft", nil)
	gt.V(t, code).Equal(http.StatusOK)
	code, _ = c.do(http.MethodPatch, base+"/draft/dimensions/market", map[string]any{"score": 1})
	gt.V(t, code).Equal(http.StatusOK)
	code, _ = c.do(http.MethodDelete, base+"/draft", nil)
	gt.V(t, code).Equal(http.StatusOK)

	code, env = c.do(http.MethodGet, base, nil)
	gt.V(t, code).Equal(http.StatusOK)
	gt.V(t, decode[sheet](t, env).TotalScore).Equal(88.0)
}

func TestServer_ConcurrentCommit(t *testing.T) {
	c := newNoAuthServer(t)
	p := createProject(t, c, "Race")
	base := "/api/v1/projects/" + p.ID + "/scores"

	code, _ := c.do(http.MethodPost, base+"/draft", nil)
	gt.V(t, code).Equal(http.StatusOK)
	code, _ = c.do(http.MethodPatch, base+"/draft/dimensions/market", map[string]any{"score": 10})
	gt.V(t, code).Equal(http.StatusOK)

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, base+"/draft/commit", nil)
			w := httptest.NewRecorder()
			c.srv.ServeHTTP(w, req)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	gt.V(t, ok).Equal(1)
	gt.V(t, conflict).Equal(n - 1)
}

func TestServer_ReplaceScoresAndReport(t *testing.T) {
	c := newNoAuthServer(t)
	p := createProject(t, c, "Biotech")
	base := "/api/v1/projects/" + p.ID

	code, env := c.do(http.MethodPut, base+"/scores", map[string]any{
		"dimensions": []map[string]any{
			{"dimension": "team", "sub_dimensions": []map[string]any{
				{"name": "core team background", "score": 9},
				{"name": "team completeness", "score": 8},
				{"name": "team execution", "score": 8},
			}},
			{"dimension": "market", "score": 15, "comment": "growing"},
			{"dimension": "business_model", "score": 15},
		},
		"note": "import",
	})
	gt.V(t, code).Equal(http.StatusOK)
	result := decode[commitResult](t, env)
	gt.V(t, result.Sheet.TotalScore).Equal(55.0)
	gt.S(t, result.Project.Status).Equal("failed")

	code, _ = c.do(http.MethodPost, base+"/missing-information", map[string]string{
		"dimension":        "financial",
		"information_type": "statement",
		"description":      "cash flow forecast",
	})
	gt.V(t, code).Equal(http.StatusCreated)

	code, _ = c.do(http.MethodPost, base+"/missing-information", map[string]string{
		"dimension":        "financial",
		"information_type": "statement",
		"description":      "cash flow forecast",
	})
	gt.V(t, code).Equal(http.StatusConflict)

	code, env = c.do(http.MethodGet, base+"/missing-information", nil)
	gt.V(t, code).Equal(http.StatusOK)
	items := decode[[]struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env)
	gt.A(t, items).Length(1)
	gt.S(t, items[0].Status).Equal("pending")

	code, env = c.do(http.MethodGet, base+"/missing-information/"+items[0].ID, nil)
	gt.V(t, code).Equal(http.StatusOK)
	one := decode[struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	}](t, env)
	gt.S(t, one.ID).Equal(items[0].ID)
	gt.S(t, one.Description).Equal("cash flow forecast")

	code, env = c.do(http.MethodGet, base+"/reports", nil)
	gt.V(t, code).Equal(http.StatusOK)
	report := decode[struct {
		Project     project          `json:"project"`
		MissingInfo []map[string]any `json:"missing_information"`
		History     []map[string]any `json:"history"`
		Summary     struct {
			Recommendation string `json:"recommendation"`
		} `json:"summary"`
	}](t, env)
	gt.S(t, report.Project.ID).Equal(p.ID)
	gt.A(t, report.MissingInfo).Length(1)
	gt.A(t, report.History).Length(1)
	gt.S(t, report.Summary.Recommendation).NotEqual("")

	code, _ = c.do(http.MethodDelete, base+"/missing-information/"+items[0].ID, nil)
	gt.V(t, code).Equal(http.StatusOK)
	code, _ = c.do(http.MethodDelete, base+"/missing-information/"+items[0].ID, nil)
	gt.V(t, code).Equal(http.StatusNotFound)
	code, _ = c.do(http.MethodGet, base+"/missing-information/"+items[0].ID, nil)
	gt.V(t, code).Equal(http.StatusNotFound)
}

func TestServer_Authentication(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	gt.NoError(t, err).Required()

	repo := memory.New()
	authUC, err := usecase.NewAuthUseCase(repo, []byte("0123456789abcdef0123456789abcdef"), []usecase.Credential{
		{Username: "alice", Name: "Alice", Role: "reviewer", PasswordHash: string(hash)},
	})
	gt.NoError(t, err).Required()
	uc := usecase.New(repo, usecase.WithAuth(authUC))
	c := &client{t: t, srv: server.New(uc)}

	code, env := c.do(http.MethodGet, "/api/v1/projects", nil)
	gt.V(t, code).Equal(http.StatusUnauthorized)
	gt.V(t, env.Code).Equal(http.StatusUnauthorized)

	code, _ = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "alice", "password": "wrong"})
	gt.V(t, code).Equal(http.StatusUnauthorized)

	code, env = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "alice", "password": "s3cret"})
	gt.V(t, code).Equal(http.StatusOK)
	login := decode[struct {
		Token string `json:"token"`
		User  struct {
			Sub string `json:"sub"`
		} `json:"user"`
	}](t, env)
	gt.S(t, login.User.Sub).Equal("alice")
	c.bearer = login.Token

	code, env = c.do(http.MethodGet, "/api/v1/auth/me", nil)
	gt.V(t, code).Equal(http.StatusOK)
	gt.S(t, decode[struct {
		Name string `json:"name"`
	}](t, env).Name).Equal("Alice")

	p := createProject(t, c, "Secured")
	code, env = c.do(http.MethodPost, "/api/v1/projects/"+p.ID+"/scores/draft", nil)
	gt.V(t, code).Equal(http.StatusOK)
	gt.S(t, decode[draft](t, env).Actor).Equal("alice")

	code, _ = c.do(http.MethodPost, "/api/v1/auth/logout", nil)
	gt.V(t, code).Equal(http.StatusOK)

	code, _ = c.do(http.MethodGet, "/api/v1/projects", nil)
	gt.V(t, code).Equal(http.StatusUnauthorized)

	c.bearer = "garbage"
	code, _ = c.do(http.MethodGet, "/api/v1/projects", nil)
	gt.V(t, code).Equal(http.StatusUnauthorized)
}
