package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/ratefit/internal/adapters/http/api"
	"github.com/okian/ratefit/internal/adapters/repository"
	"github.com/okian/ratefit/internal/domain/model"
	"github.com/okian/ratefit/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	board   *repository.Leaderboard
	models  model.Models
	topNErr error
}

func newMockDeps() *mockDeps {
	ctx := context.Background()
	board := repository.NewLeaderboard()
	board.Replace(ctx,
		map[string]float64{"tourist": 3800, "snuke": 3200, "newbie": 100},
		map[string]int{"tourist": 40, "snuke": 30, "newbie": 1})
	return &mockDeps{
		board: board,
		models: model.Models{
			"abc100_a": {Difficulty: model.Float(-800), Discrimination: model.Float(0.004)},
		},
	}
}

func (m *mockDeps) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if m.topNErr != nil {
		return nil, m.topNErr
	}
	return m.board.TopN(ctx, n)
}

func (m *mockDeps) Rank(ctx context.Context, contestant string) (types.Entry, error) {
	return m.board.Rank(ctx, contestant)
}

func (m *mockDeps) Models(ctx context.Context) (model.Models, error) {
	return m.models, nil
}

func (m *mockDeps) Model(ctx context.Context, problemID string) (model.ProblemModel, error) {
	pm, ok := m.models[problemID]
	if !ok {
		return model.ProblemModel{}, fmt.Errorf("problem %s: %w", problemID, repository.ErrNotFound)
	}
	return pm, nil
}

func (m *mockDeps) Stats(ctx context.Context) types.Stats {
	return types.Stats{RunID: "run-1", Contests: 2, Contestants: m.board.Count(ctx), Models: len(m.models)}
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newMockDeps()
		h := api.NewServer(deps, 2).Handler()

		Convey("Then /healthz exposes metrics", func() {
			w := serve(h, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "ratefit_")
		})

		Convey("Then /stats reports the run", func() {
			w := serve(h, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats types.Stats
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats.RunID, ShouldEqual, "run-1")
			So(stats.Contestants, ShouldEqual, 3)
		})

		Convey("When asking for the leaderboard", func() {
			Convey("Then a valid limit returns ranked entries", func() {
				w := serve(h, "/leaderboard?limit=2")
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []types.Entry
				So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Contestant, ShouldEqual, "tourist")
				So(entries[1].Rank, ShouldEqual, 2)
			})

			Convey("Then a missing limit falls back to the cap", func() {
				w := serve(h, "/leaderboard")
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("Then bad limits are refused", func() {
				So(serve(h, "/leaderboard?limit=0").Code, ShouldEqual, http.StatusBadRequest)
				So(serve(h, "/leaderboard?limit=abc").Code, ShouldEqual, http.StatusBadRequest)
				w := serve(h, "/leaderboard?limit=3")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "limit_exceeded")
			})

			Convey("Then store failures are internal errors", func() {
				deps.topNErr = errors.New("boom")
				So(serve(h, "/leaderboard?limit=1").Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When looking up a contestant", func() {
			Convey("Then a known contestant is returned", func() {
				w := serve(h, "/rating/snuke")
				So(w.Code, ShouldEqual, http.StatusOK)
				var e types.Entry
				So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
				So(e.Rank, ShouldEqual, 2)
				So(e.Rating, ShouldEqual, 3200)
			})

			Convey("Then an unknown contestant is 404", func() {
				So(serve(h, "/rating/ghost").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When reading models", func() {
			Convey("Then the document is returned whole", func() {
				w := serve(h, "/models")
				So(w.Code, ShouldEqual, http.StatusOK)
				var got model.Models
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(*got["abc100_a"].Difficulty, ShouldEqual, -800)
			})

			Convey("Then single problems resolve or 404", func() {
				So(serve(h, "/models/abc100_a").Code, ShouldEqual, http.StatusOK)
				So(serve(h, "/models/abc999_z").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("Then writes are not routed", func() {
			req := httptest.NewRequest(http.MethodPost, "/stats", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(serve(h, "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
