package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/wordlebot/internal/adapters/export"
	"github.com/okian/wordlebot/internal/adapters/http/api"
	"github.com/okian/wordlebot/internal/adapters/repository"
	service "github.com/okian/wordlebot/internal/app"
	"github.com/okian/wordlebot/internal/domain/leaderboard"
	"github.com/okian/wordlebot/internal/domain/model"
	"github.com/okian/wordlebot/internal/domain/parser"
	"github.com/okian/wordlebot/internal/domain/scoring"
	"github.com/okian/wordlebot/internal/domain/types"
	"github.com/okian/wordlebot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var weekStart = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

// mockService is an in-memory stand-in for the service.
type mockService struct {
	mu        sync.Mutex
	parser    *parser.Parser
	seen      map[string]bool // user|puzzle
	records   []model.ScoreRecord
	submitted []model.Message
	submitOK  bool
	err       error
}

func newMockService() *mockService {
	return &mockService{parser: parser.New(), seen: map[string]bool{}, submitOK: true}
}

func (m *mockService) Parse(text string) (parser.Result, bool) { return m.parser.Parse(text) }

func (m *mockService) Record(_ context.Context, msg model.Message) (model.Outcome, error) { //nolint:gocritic // hugeParam: test double
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.OutcomeNoMatch, m.err
	}
	res, ok := m.parser.Parse(msg.Content)
	if !ok {
		return model.OutcomeNoMatch, nil
	}
	key := fmt.Sprintf("%s|%d", msg.AuthorID, res.PuzzleNumber)
	if m.seen[key] {
		return model.OutcomeDuplicate, nil
	}
	m.seen[key] = true
	m.records = append(m.records, model.ScoreRecord{
		ID:           int64(len(m.records) + 1),
		UserID:       msg.AuthorID,
		DisplayName:  msg.AuthorName,
		PuzzleNumber: res.PuzzleNumber,
		Score:        res.Score,
		RecordedAt:   weekStart.Add(time.Duration(len(m.records)) * time.Hour),
	})
	return model.OutcomeInserted, nil
}

func (m *mockService) Submit(_ context.Context, msg model.Message) bool { //nolint:gocritic // hugeParam: test double
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.submitOK {
		return false
	}
	m.submitted = append(m.submitted, msg)
	return true
}

func (m *mockService) Window(scope service.Scope) leaderboard.Window {
	if scope == service.ScopeAll {
		return leaderboard.AllTime()
	}
	return leaderboard.Window{Since: weekStart, Until: weekStart.AddDate(0, 0, 7)}
}

func (m *mockService) Leaderboard(_ context.Context, _ string, _ service.Scope) (leaderboard.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return leaderboard.Board{}, m.err
	}
	return leaderboard.Rank(m.records), nil
}

func (m *mockService) Records(_ context.Context, _ string, _ service.Scope) ([]model.ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ScoreRecord(nil), m.records...), m.err
}

func (m *mockService) Stats(_ context.Context, _, userID string) (repository.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return repository.Stats{}, m.err
	}
	st := repository.Stats{UserID: userID}
	for _, r := range m.records {
		if r.UserID == userID {
			st.DisplayName = r.DisplayName
			st.Mean.Add(r.Score)
		}
	}
	if st.Mean.Count == 0 {
		return repository.Stats{}, fmt.Errorf("stats for %s: %w", userID, repository.ErrNotFound)
	}
	return st, nil
}

func (m *mockService) FailedScore() int { return scoring.FailedScore }

func (m *mockService) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]interface{}{"started": true, "totalScores": len(m.records)}
}

func newMux(svc *mockService) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc, 2).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func post(mux *http.ServeMux, user, content string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"user_id":%q,"user_name":%q,"content":%q}`, user, user+"-name", content)
	return do(mux, http.MethodPost, "/messages", body)
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(newMockService())

		Convey("Then health serves the metrics exposition", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "wordle_tracker_")
		})

		Convey("Then stats serves the service statistics", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got["started"], ShouldEqual, true)
			So(got, ShouldContainKey, "uptimeSeconds")
		})

		Convey("Then wrong methods are rejected", func() {
			So(do(mux, http.MethodPost, "/leaderboard", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodGet, "/messages", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodDelete, "/stats", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Then registering on a nil mux panics", func() {
			So(func() { api.NewServer(newMockService(), 10).Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}

func TestMessagesHandler(t *testing.T) {
	Convey("Given the messages endpoint", t, func() {
		svc := newMockService()
		mux := newMux(svc)

		Convey("When a result is posted twice", func() {
			first := post(mux, "u1", "Wordle 1,234 3/6")
			second := post(mux, "u1", "Wordle 1234 4/6")

			Convey("Then the first is created and the second is a duplicate", func() {
				So(first.Code, ShouldEqual, http.StatusCreated)
				var resp types.MessageResponse
				So(json.Unmarshal(first.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Outcome, ShouldEqual, "inserted")
				So(resp.PuzzleNumber, ShouldEqual, 1234)
				So(resp.Score, ShouldEqual, 3)

				So(second.Code, ShouldEqual, http.StatusOK)
				So(json.Unmarshal(second.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Outcome, ShouldEqual, "duplicate")
			})
		})

		Convey("When a message has no result", func() {
			w := post(mux, "u1", "hello there")

			Convey("Then no_match is reported", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"outcome":"no_match"`)
			})
		})

		Convey("When the body is invalid", func() {
			Convey("Then malformed JSON is a bad request", func() {
				So(do(mux, http.MethodPost, "/messages", "{").Code, ShouldEqual, http.StatusBadRequest)
			})
			Convey("Then missing fields are a bad request", func() {
				So(do(mux, http.MethodPost, "/messages", `{"content":"Wordle 1 1/6"}`).Code, ShouldEqual, http.StatusBadRequest)
				So(do(mux, http.MethodPost, "/messages", `{"user_id":"u1"}`).Code, ShouldEqual, http.StatusBadRequest)
			})
			Convey("Then an oversized body is rejected as too large", func() {
				body := `{"user_id":"u1","content":"` + strings.Repeat("x", 20<<10) + `"}`
				w := do(mux, http.MethodPost, "/messages", body)
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(w.Body.String(), ShouldContainSubstring, "payload_too_large")
				So(len(svc.records), ShouldEqual, 0)
			})
		})

		Convey("When posting asynchronously", func() {
			body := `{"message_id":"m1","user_id":"u1","content":"Wordle 5 2/6"}`

			Convey("Then the message is queued", func() {
				w := do(mux, http.MethodPost, "/messages?async=true", body)
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(len(svc.submitted), ShouldEqual, 1)
				So(svc.submitted[0].AuthorName, ShouldEqual, "u1")
			})

			Convey("Then a missing message id is a bad request", func() {
				w := do(mux, http.MethodPost, "/messages?async=1", `{"user_id":"u1","content":"Wordle 5 2/6"}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then a full queue is backpressure", func() {
				svc.submitOK = false
				w := do(mux, http.MethodPost, "/messages?async=true", body)
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("When storage is unavailable", func() {
			svc.err = fmt.Errorf("record score: %w", repository.ErrUnavailable)
			w := post(mux, "u1", "Wordle 9 2/6")

			Convey("Then 503 is returned without internals", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldNotContainSubstring, "record score")
			})
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given three ranked users", t, func() {
		svc := newMockService()
		mux := newMux(svc)
		So(post(mux, "u1", "Wordle 1 2/6").Code, ShouldEqual, http.StatusCreated)
		So(post(mux, "u2", "Wordle 1 4/6").Code, ShouldEqual, http.StatusCreated)
		So(post(mux, "u3", "Wordle 1 5/6").Code, ShouldEqual, http.StatusCreated)

		decode := func(w *httptest.ResponseRecorder) types.Leaderboard {
			var lb types.Leaderboard
			So(json.Unmarshal(w.Body.Bytes(), &lb), ShouldBeNil)
			return lb
		}

		Convey("When no limit is given", func() {
			w := do(mux, http.MethodGet, "/leaderboard", "")

			Convey("Then the configured default applies to the weekly board", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				lb := decode(w)
				So(lb.Scope, ShouldEqual, "weekly")
				So(lb.Since, ShouldNotBeNil)
				So(lb.Since.Equal(weekStart), ShouldBeTrue)
				So(len(lb.Entries), ShouldEqual, 2)
				So(lb.Entries[0].UserID, ShouldEqual, "u1")
				So(lb.Entries[0].Medal, ShouldEqual, "🥇")
				So(lb.Entries[0].Mean, ShouldEqual, "2.00")
			})
		})

		Convey("When the all-time board is requested with a limit", func() {
			w := do(mux, http.MethodGet, "/leaderboard?scope=all&limit=3", "")

			Convey("Then every user is returned without a since bound", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				lb := decode(w)
				So(lb.Scope, ShouldEqual, "all")
				So(lb.Since, ShouldBeNil)
				So(len(lb.Entries), ShouldEqual, 3)
				So(lb.Entries[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When the limit is invalid", func() {
			So(do(mux, http.MethodGet, "/leaderboard?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/leaderboard?limit=abc", "").Code, ShouldEqual, http.StatusBadRequest)
			w := do(mux, http.MethodGet, fmt.Sprintf("/leaderboard?limit=%d", api.MaxLimit+1), "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "limit_exceeded")
		})

		Convey("When the store fails", func() {
			svc.err = errors.New("boom")
			w := do(mux, http.MethodGet, "/leaderboard", "")

			Convey("Then it should return internal server error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestUserHandler(t *testing.T) {
	Convey("Given a user with two results", t, func() {
		svc := newMockService()
		mux := newMux(svc)
		post(mux, "u1", "Wordle 1 2/6")
		post(mux, "u1", "Wordle 2 5/6")

		Convey("When the stats are requested", func() {
			w := do(mux, http.MethodGet, "/users/u1/stats", "")

			Convey("Then mean and game count are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var st types.UserStats
				So(json.Unmarshal(w.Body.Bytes(), &st), ShouldBeNil)
				So(st.UserID, ShouldEqual, "u1")
				So(st.DisplayName, ShouldEqual, "u1-name")
				So(st.Games, ShouldEqual, 2)
				So(st.Average, ShouldEqual, 3.5)
			})
		})

		Convey("When the user is unknown", func() {
			So(do(mux, http.MethodGet, "/users/ghost/stats", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path is malformed", func() {
			So(do(mux, http.MethodGet, "/users/u1", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/users/a/b/stats", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestExportHandler(t *testing.T) {
	Convey("Given recorded results", t, func() {
		svc := newMockService()
		mux := newMux(svc)
		post(mux, "u1", "Wordle 1 2/6")
		post(mux, "u2", "Wordle 1 X/6")

		Convey("When the workbook is downloaded", func() {
			w := do(mux, http.MethodGet, "/export.xlsx", "")

			Convey("Then it is a readable workbook", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, export.ContentType)
				So(w.Header().Get("Content-Disposition"), ShouldStartWith, "attachment;")

				f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
				So(err, ShouldBeNil)
				defer func() { _ = f.Close() }()
				rows, err := f.GetRows(export.ScoresSheet)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
			})
		})
	})
}
